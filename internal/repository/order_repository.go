package repository

import (
	"context"

	"github.com/fleuri/fleuri-api/internal/models"
	"gorm.io/gorm"
)

// OrderRepository defines the interface for order data access
type OrderRepository interface {
	FindByID(ctx context.Context, id uint) (*models.Order, error)
	Create(ctx context.Context, order *models.Order) error
	Update(ctx context.Context, order *models.Order) error
	List(ctx context.Context, query *ListQuery) ([]models.Order, int64, error)
	FindByBuyer(ctx context.Context, buyerID uint, query *ListQuery) ([]models.Order, int64, error)
	FindBySeller(ctx context.Context, sellerID uint, query *ListQuery) ([]models.Order, int64, error)
	SetLegalHold(ctx context.Context, id uint, hold bool) error
}

type orderRepository struct {
	db *gorm.DB
}

// NewOrderRepository creates a new order repository
func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) FindByID(ctx context.Context, id uint) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Buyer").
		Preload("Seller").
		Preload("Product").
		First(&order, id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) Create(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *orderRepository) Update(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Save(order).Error
}

func (r *orderRepository) List(ctx context.Context, query *ListQuery) ([]models.Order, int64, error) {
	var orders []models.Order
	var total int64

	db := r.db.WithContext(ctx).Model(&models.Order{})
	db = applyOrderFilters(db, query)

	db.Count(&total)

	db = db.Preload("Buyer").Preload("Seller").Preload("Product").
		Order("created_at DESC")

	if query.PerPage > 0 {
		db = db.Offset((query.Page - 1) * query.PerPage).Limit(query.PerPage)
	}

	err := db.Find(&orders).Error
	return orders, total, err
}

func (r *orderRepository) FindByBuyer(ctx context.Context, buyerID uint, query *ListQuery) ([]models.Order, int64, error) {
	q := *query
	q.Filters["buyer_id"] = ""
	db := r.db.WithContext(ctx).Model(&models.Order{}).Where("buyer_id = ?", buyerID)
	db = applyOrderFilters(db, &q)

	var orders []models.Order
	var total int64
	db.Count(&total)

	db = db.Preload("Seller").Preload("Product").Order("created_at DESC")
	if q.PerPage > 0 {
		db = db.Offset((q.Page - 1) * q.PerPage).Limit(q.PerPage)
	}

	err := db.Find(&orders).Error
	return orders, total, err
}

func (r *orderRepository) FindBySeller(ctx context.Context, sellerID uint, query *ListQuery) ([]models.Order, int64, error) {
	q := *query
	q.Filters["seller_id"] = ""
	db := r.db.WithContext(ctx).Model(&models.Order{}).Where("seller_id = ?", sellerID)
	db = applyOrderFilters(db, &q)

	var orders []models.Order
	var total int64
	db.Count(&total)

	db = db.Preload("Buyer").Preload("Product").Order("created_at DESC")
	if q.PerPage > 0 {
		db = db.Offset((q.Page - 1) * q.PerPage).Limit(q.PerPage)
	}

	err := db.Find(&orders).Error
	return orders, total, err
}

func (r *orderRepository) SetLegalHold(ctx context.Context, id uint, hold bool) error {
	return r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", id).
		Update("legal_hold", hold).Error
}

func applyOrderFilters(db *gorm.DB, query *ListQuery) *gorm.DB {
	if query.Filters["status"] != "" {
		db = db.Where("status = ?", query.Filters["status"])
	}
	if query.Filters["seller_id"] != "" {
		db = db.Where("seller_id = ?", query.Filters["seller_id"])
	}
	if query.Filters["buyer_id"] != "" {
		db = db.Where("buyer_id = ?", query.Filters["buyer_id"])
	}
	return db
}
