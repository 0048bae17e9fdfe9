package models

import (
	"time"
)

// CommissionRateChange represents a requested change to the platform
// commission rate, either for a single seller or the platform default.
// Changes take financial effect only after a second admin approves them.
type CommissionRateChange struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	SellerID    *uint      `gorm:"index" json:"seller_id"` // nil = default rate for all sellers
	PctBps      int        `gorm:"not null" json:"pct_bps"`
	EffectiveAt time.Time  `gorm:"not null;index" json:"effective_at"`
	Status      string     `gorm:"default:pending;not null;index" json:"status"`
	RequestedBy uint       `gorm:"not null" json:"requested_by"`
	ApprovedBy  *uint      `json:"approved_by"`
	ApprovedAt  *time.Time `json:"approved_at"`
	Note        *string    `gorm:"type:text" json:"note"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	// Associations
	Seller    *User `gorm:"foreignKey:SellerID" json:"seller,omitempty"`
	Requester User  `gorm:"foreignKey:RequestedBy" json:"requester,omitempty"`
	Approver  *User `gorm:"foreignKey:ApprovedBy" json:"approver,omitempty"`
}

// TableName specifies the table name for CommissionRateChange
func (CommissionRateChange) TableName() string {
	return "commission_rate_changes"
}

// Commission rate change status constants
const (
	CommissionStatusPending    = "pending"
	CommissionStatusApproved   = "approved"
	CommissionStatusRejected   = "rejected"
	CommissionStatusSuperseded = "superseded"
)

// MayApprove returns true if the change can be approved
func (c *CommissionRateChange) MayApprove() bool {
	return c.Status == CommissionStatusPending
}

// MayReject returns true if the change can be rejected
func (c *CommissionRateChange) MayReject() bool {
	return c.Status == CommissionStatusPending
}

// IsInEffect returns true if the change is approved and effective at t
func (c *CommissionRateChange) IsInEffect(t time.Time) bool {
	return c.Status == CommissionStatusApproved && !c.EffectiveAt.After(t)
}

// CommissionRateChangeResponse is the JSON response format
type CommissionRateChangeResponse struct {
	ID            uint       `json:"id"`
	SellerID      *uint      `json:"seller_id"`
	SellerName    string     `json:"seller_name,omitempty"`
	PctBps        int        `json:"pct_bps"`
	EffectiveAt   time.Time  `json:"effective_at"`
	Status        string     `json:"status"`
	RequestedBy   uint       `json:"requested_by"`
	RequesterName string     `json:"requester_name,omitempty"`
	ApprovedBy    *uint      `json:"approved_by"`
	ApproverName  string     `json:"approver_name,omitempty"`
	ApprovedAt    *time.Time `json:"approved_at"`
	Note          *string    `json:"note"`
	CreatedAt     time.Time  `json:"created_at"`
}

// ToResponse converts CommissionRateChange to CommissionRateChangeResponse
func (c *CommissionRateChange) ToResponse() CommissionRateChangeResponse {
	resp := CommissionRateChangeResponse{
		ID:          c.ID,
		SellerID:    c.SellerID,
		PctBps:      c.PctBps,
		EffectiveAt: c.EffectiveAt,
		Status:      c.Status,
		RequestedBy: c.RequestedBy,
		ApprovedBy:  c.ApprovedBy,
		ApprovedAt:  c.ApprovedAt,
		Note:        c.Note,
		CreatedAt:   c.CreatedAt,
	}
	if c.Seller != nil && c.Seller.ID != 0 {
		resp.SellerName = c.Seller.FullName
	}
	if c.Requester.ID != 0 {
		resp.RequesterName = c.Requester.FullName
	}
	if c.Approver != nil && c.Approver.ID != 0 {
		resp.ApproverName = c.Approver.FullName
	}
	return resp
}
