package models

import (
	"time"
)

// Product represents a listing in a seller's shop (bouquet, arrangement,
// subscription...)
type Product struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	SellerID    uint       `gorm:"not null;index" json:"seller_id"`
	Name        string     `gorm:"not null" json:"name"`
	Description *string    `gorm:"type:text" json:"description"`
	PriceCents  int64      `gorm:"not null" json:"price_cents"`
	Currency    string     `gorm:"size:3;default:EUR" json:"currency"`
	Stock       int        `gorm:"default:0" json:"stock"`
	Status      string     `gorm:"default:active;not null;index" json:"status"`
	ArchivedAt  *time.Time `gorm:"index" json:"-"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	// Associations
	Seller User `gorm:"foreignKey:SellerID" json:"seller,omitempty"`
}

// TableName specifies the table name for Product
func (Product) TableName() string {
	return "products"
}

// Product status constants
const (
	ProductStatusActive   = "active"
	ProductStatusInactive = "inactive"
	ProductStatusArchived = "archived"
)

// IsAvailable returns true if the product can be ordered
func (p *Product) IsAvailable() bool {
	return p.Status == ProductStatusActive && p.Stock > 0
}

// ProductResponse is the JSON response format for products
type ProductResponse struct {
	ID          uint      `json:"id"`
	SellerID    uint      `json:"seller_id"`
	ShopName    *string   `json:"shop_name,omitempty"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	PriceCents  int64     `json:"price_cents"`
	Currency    string    `json:"currency"`
	Stock       int       `json:"stock"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ToResponse converts Product to ProductResponse
func (p *Product) ToResponse() ProductResponse {
	resp := ProductResponse{
		ID:          p.ID,
		SellerID:    p.SellerID,
		Name:        p.Name,
		Description: p.Description,
		PriceCents:  p.PriceCents,
		Currency:    p.Currency,
		Stock:       p.Stock,
		Status:      p.Status,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
	if p.Seller.ID != 0 {
		resp.ShopName = p.Seller.ShopName
	}
	return resp
}
