package repository

import (
	"context"

	"github.com/fleuri/fleuri-api/internal/models"
	"gorm.io/gorm"
)

// PayoutRepository defines the interface for payout data access
type PayoutRepository interface {
	FindByID(ctx context.Context, id uint) (*models.Payout, error)
	Create(ctx context.Context, payout *models.Payout) error
	Update(ctx context.Context, payout *models.Payout) error
	List(ctx context.Context, query *ListQuery) ([]models.Payout, int64, error)
	FindBySeller(ctx context.Context, sellerID uint, query *ListQuery) ([]models.Payout, int64, error)
}

type payoutRepository struct {
	db *gorm.DB
}

// NewPayoutRepository creates a new payout repository
func NewPayoutRepository(db *gorm.DB) PayoutRepository {
	return &payoutRepository{db: db}
}

func (r *payoutRepository) FindByID(ctx context.Context, id uint) (*models.Payout, error) {
	var payout models.Payout
	err := r.db.WithContext(ctx).
		Preload("Seller").
		First(&payout, id).Error
	if err != nil {
		return nil, err
	}
	return &payout, nil
}

func (r *payoutRepository) Create(ctx context.Context, payout *models.Payout) error {
	return r.db.WithContext(ctx).Create(payout).Error
}

func (r *payoutRepository) Update(ctx context.Context, payout *models.Payout) error {
	return r.db.WithContext(ctx).Save(payout).Error
}

func (r *payoutRepository) List(ctx context.Context, query *ListQuery) ([]models.Payout, int64, error) {
	var payouts []models.Payout
	var total int64

	db := r.db.WithContext(ctx).Model(&models.Payout{})

	if query.Filters["status"] != "" {
		db = db.Where("status = ?", query.Filters["status"])
	}
	if query.Filters["seller_id"] != "" {
		db = db.Where("seller_id = ?", query.Filters["seller_id"])
	}

	db.Count(&total)

	db = db.Preload("Seller").Order("created_at DESC")

	if query.PerPage > 0 {
		db = db.Offset((query.Page - 1) * query.PerPage).Limit(query.PerPage)
	}

	err := db.Find(&payouts).Error
	return payouts, total, err
}

func (r *payoutRepository) FindBySeller(ctx context.Context, sellerID uint, query *ListQuery) ([]models.Payout, int64, error) {
	q := *query
	if q.Filters == nil {
		q.Filters = make(map[string]string)
	}
	db := r.db.WithContext(ctx).Model(&models.Payout{}).Where("seller_id = ?", sellerID)

	if q.Filters["status"] != "" {
		db = db.Where("status = ?", q.Filters["status"])
	}

	var payouts []models.Payout
	var total int64
	db.Count(&total)

	db = db.Order("created_at DESC")
	if q.PerPage > 0 {
		db = db.Offset((q.Page - 1) * q.PerPage).Limit(q.PerPage)
	}

	err := db.Find(&payouts).Error
	return payouts, total, err
}
