package models

import (
	"time"
)

// Order represents a buyer's purchase from a single seller's shop
type Order struct {
	ID                 uint       `gorm:"primaryKey" json:"id"`
	GUID               string     `gorm:"size:36;uniqueIndex" json:"guid"`
	BuyerID            uint       `gorm:"not null;index" json:"buyer_id"`
	SellerID           uint       `gorm:"not null;index" json:"seller_id"`
	ProductID          uint       `gorm:"not null;index" json:"product_id"`
	Quantity           int        `gorm:"not null;default:1" json:"quantity"`
	TotalCents         int64      `gorm:"not null" json:"total_cents"`
	Currency           string     `gorm:"size:3;default:EUR" json:"currency"`
	CommissionBps      int        `gorm:"not null" json:"commission_bps"` // snapshotted at order time
	Status             string     `gorm:"default:placed;not null;index" json:"status"`
	DeliveryDate       *time.Time `gorm:"type:date" json:"delivery_date"`
	DeliveryNote       *string    `gorm:"type:text" json:"delivery_note"`
	LegalHold          bool       `gorm:"default:false;index" json:"legal_hold"`
	DeliveredAt        *time.Time `json:"delivered_at"`
	CancelledAt        *time.Time `json:"cancelled_at"`
	CreatedAt          time.Time  `gorm:"index" json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`

	// Associations
	Buyer   User    `gorm:"foreignKey:BuyerID" json:"buyer,omitempty"`
	Seller  User    `gorm:"foreignKey:SellerID" json:"seller,omitempty"`
	Product Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}

// TableName specifies the table name for Order
func (Order) TableName() string {
	return "orders"
}

// Order status constants
const (
	OrderStatusPlaced    = "placed"
	OrderStatusPreparing = "preparing"
	OrderStatusDelivered = "delivered"
	OrderStatusCancelled = "cancelled"
)

// IsDelivered returns true if the order has been delivered
func (o *Order) IsDelivered() bool {
	return o.Status == OrderStatusDelivered
}

// CommissionCents returns the platform's cut of the order total
func (o *Order) CommissionCents() int64 {
	return o.TotalCents * int64(o.CommissionBps) / 10000
}

// OrderResponse is the JSON response format for orders
type OrderResponse struct {
	ID              uint       `json:"id"`
	GUID            string     `json:"guid"`
	BuyerID         uint       `json:"buyer_id"`
	BuyerName       string     `json:"buyer_name,omitempty"`
	SellerID        uint       `json:"seller_id"`
	ShopName        *string    `json:"shop_name,omitempty"`
	ProductID       uint       `json:"product_id"`
	ProductName     string     `json:"product_name,omitempty"`
	Quantity        int        `json:"quantity"`
	TotalCents      int64      `json:"total_cents"`
	Currency        string     `json:"currency"`
	CommissionBps   int        `json:"commission_bps"`
	CommissionCents int64      `json:"commission_cents"`
	Status          string     `json:"status"`
	DeliveryDate    *time.Time `json:"delivery_date"`
	DeliveryNote    *string    `json:"delivery_note"`
	LegalHold       bool       `json:"legal_hold"`
	DeliveredAt     *time.Time `json:"delivered_at"`
	CreatedAt       time.Time  `json:"created_at"`
}

// ToResponse converts Order to OrderResponse
func (o *Order) ToResponse() OrderResponse {
	resp := OrderResponse{
		ID:              o.ID,
		GUID:            o.GUID,
		BuyerID:         o.BuyerID,
		SellerID:        o.SellerID,
		ProductID:       o.ProductID,
		Quantity:        o.Quantity,
		TotalCents:      o.TotalCents,
		Currency:        o.Currency,
		CommissionBps:   o.CommissionBps,
		CommissionCents: o.CommissionCents(),
		Status:          o.Status,
		DeliveryDate:    o.DeliveryDate,
		DeliveryNote:    o.DeliveryNote,
		LegalHold:       o.LegalHold,
		DeliveredAt:     o.DeliveredAt,
		CreatedAt:       o.CreatedAt,
	}
	if o.Buyer.ID != 0 {
		resp.BuyerName = o.Buyer.FullName
	}
	if o.Seller.ID != 0 {
		resp.ShopName = o.Seller.ShopName
	}
	if o.Product.ID != 0 {
		resp.ProductName = o.Product.Name
	}
	return resp
}
