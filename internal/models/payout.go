package models

import (
	"time"
)

// Payout represents a transfer of accumulated sales proceeds to a seller
type Payout struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	SellerID      uint       `gorm:"not null;index" json:"seller_id"`
	AmountCents   int64      `gorm:"not null" json:"amount_cents"`
	Currency      string     `gorm:"size:3;default:EUR" json:"currency"`
	Status        string     `gorm:"default:pending;not null;index" json:"status"`
	FailureReason *string    `gorm:"type:text" json:"failure_reason,omitempty"`
	LegalHold     bool       `gorm:"default:false;index" json:"legal_hold"`
	RequestedBy   *uint      `json:"requested_by"`
	PaidAt        *time.Time `json:"paid_at"`
	CreatedAt     time.Time  `gorm:"index" json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`

	// Associations
	Seller User `gorm:"foreignKey:SellerID" json:"seller,omitempty"`
}

// TableName specifies the table name for Payout
func (Payout) TableName() string {
	return "payouts"
}

// Payout status constants
const (
	PayoutStatusPending    = "pending"
	PayoutStatusProcessing = "processing"
	PayoutStatusPaid       = "paid"
	PayoutStatusFailed     = "failed"
)

// MayRequestApproval returns true if an approval request may be recorded
// for this payout. Only payouts that have not yet moved money (pending)
// or that failed to move money qualify.
func (p *Payout) MayRequestApproval() bool {
	return p.Status == PayoutStatusPending || p.Status == PayoutStatusFailed
}

// IsFailed returns true if the payout transfer failed
func (p *Payout) IsFailed() bool {
	return p.Status == PayoutStatusFailed
}

// PayoutResponse is the JSON response format for payouts
type PayoutResponse struct {
	ID            uint       `json:"id"`
	SellerID      uint       `json:"seller_id"`
	SellerName    string     `json:"seller_name,omitempty"`
	ShopName      *string    `json:"shop_name,omitempty"`
	AmountCents   int64      `json:"amount_cents"`
	Currency      string     `json:"currency"`
	Status        string     `json:"status"`
	FailureReason *string    `json:"failure_reason,omitempty"`
	LegalHold     bool       `json:"legal_hold"`
	PaidAt        *time.Time `json:"paid_at"`
	CreatedAt     time.Time  `json:"created_at"`
}

// ToResponse converts Payout to PayoutResponse
func (p *Payout) ToResponse() PayoutResponse {
	resp := PayoutResponse{
		ID:            p.ID,
		SellerID:      p.SellerID,
		AmountCents:   p.AmountCents,
		Currency:      p.Currency,
		Status:        p.Status,
		FailureReason: p.FailureReason,
		LegalHold:     p.LegalHold,
		PaidAt:        p.PaidAt,
		CreatedAt:     p.CreatedAt,
	}
	if p.Seller.ID != 0 {
		resp.SellerName = p.Seller.FullName
		resp.ShopName = p.Seller.ShopName
	}
	return resp
}
