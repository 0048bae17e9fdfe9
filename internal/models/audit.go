package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// JSONMap is a JSONB column holding action-specific audit details
type JSONMap map[string]interface{}

// Value implements driver.Valuer for JSONB storage
func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	return json.Marshal(m)
}

// Scan implements sql.Scanner for JSONB retrieval
func (m *JSONMap) Scan(value interface{}) error {
	if value == nil {
		*m = nil
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		str, ok := value.(string)
		if !ok {
			return errors.New("unsupported type for JSONMap")
		}
		bytes = []byte(str)
	}
	return json.Unmarshal(bytes, m)
}

// AuditLog is one entry in the hash-chained admin audit trail.
//
// Each entry's hash covers the previous entry's hash, so editing any
// historical row invalidates every row after it. Rows are append-only;
// there is no update or delete path anywhere in the codebase, and the
// retention engine explicitly excludes this table.
type AuditLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ActorID   *uint     `gorm:"index" json:"actor_id"`  // nil for system-initiated actions
	ActorRole *string   `gorm:"size:20" json:"actor_role"`
	Action    string    `gorm:"size:80;not null;index" json:"action"` // e.g. commission_change_approved
	Entity    string    `gorm:"size:50;not null" json:"entity"`       // Order, Payout, CommissionRateChange...
	EntityID  *uint     `json:"entity_id"`
	Message   string    `gorm:"type:text" json:"message"`
	Meta      JSONMap   `gorm:"type:jsonb" json:"meta"`
	PrevHash  *string   `gorm:"size:64" json:"prev_hash"` // nil only for the first entry ever written
	EntryHash string    `gorm:"size:64;not null" json:"entry_hash"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`

	// Associations
	Actor *User `gorm:"foreignKey:ActorID" json:"actor,omitempty"`
}

// TableName specifies the table name for AuditLog
func (AuditLog) TableName() string {
	return "audit_logs"
}

// Audit action constants
const (
	AuditCommissionChangeRequested = "commission_change_requested"
	AuditCommissionChangeApproved  = "commission_change_approved"
	AuditCommissionChangeRejected  = "commission_change_rejected"
	AuditPayoutApprovalRequested   = "payout_approval_requested"
	AuditPayoutApproved            = "payout_approved"
	AuditPayoutRetryBlocked        = "payout_retry_blocked"
	AuditOrderLegalHoldSet         = "order_legal_hold_set"
	AuditOrderLegalHoldReleased    = "order_legal_hold_released"
	AuditRetentionPreview          = "retention.preview"
	AuditRetentionRun              = "retention.run"
	AuditUserCreated               = "user_created"
	AuditUserStatusToggled         = "user_status_toggled"
	AuditUserDeleted               = "user_deleted"
	AuditUserRestored              = "user_restored"
	AuditProductArchived           = "product_archived"
	AuditComplianceExported        = "compliance_export"
)

// AuditLogResponse is the JSON response format for audit entries.
// Hashes are exposed as opaque hex strings for offline verification.
type AuditLogResponse struct {
	ID        uint      `json:"id"`
	ActorID   *uint     `json:"actor_id"`
	ActorRole *string   `json:"actor_role"`
	ActorName string    `json:"actor_name,omitempty"`
	Action    string    `json:"action"`
	Entity    string    `json:"entity"`
	EntityID  *uint     `json:"entity_id"`
	Message   string    `json:"message"`
	Meta      JSONMap   `json:"meta"`
	PrevHash  *string   `json:"prev_hash"`
	EntryHash string    `json:"entry_hash"`
	CreatedAt time.Time `json:"created_at"`
}

// ToResponse converts AuditLog to AuditLogResponse
func (a *AuditLog) ToResponse() AuditLogResponse {
	resp := AuditLogResponse{
		ID:        a.ID,
		ActorID:   a.ActorID,
		ActorRole: a.ActorRole,
		Action:    a.Action,
		Entity:    a.Entity,
		EntityID:  a.EntityID,
		Message:   a.Message,
		Meta:      a.Meta,
		PrevHash:  a.PrevHash,
		EntryHash: a.EntryHash,
		CreatedAt: a.CreatedAt,
	}
	if a.Actor != nil && a.Actor.ID != 0 {
		resp.ActorName = a.Actor.FullName
	}
	return resp
}
