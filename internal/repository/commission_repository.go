package repository

import (
	"context"
	"time"

	"github.com/fleuri/fleuri-api/internal/models"
	"gorm.io/gorm"
)

// CommissionRepository defines the interface for commission rate change data access
type CommissionRepository interface {
	FindByID(ctx context.Context, id uint) (*models.CommissionRateChange, error)
	Create(ctx context.Context, change *models.CommissionRateChange) error
	Update(ctx context.Context, change *models.CommissionRateChange) error
	List(ctx context.Context, query *ListQuery) ([]models.CommissionRateChange, int64, error)
	FindEffective(ctx context.Context, sellerID *uint, at time.Time) (*models.CommissionRateChange, error)
}

type commissionRepository struct {
	db *gorm.DB
}

// NewCommissionRepository creates a new commission repository
func NewCommissionRepository(db *gorm.DB) CommissionRepository {
	return &commissionRepository{db: db}
}

func (r *commissionRepository) FindByID(ctx context.Context, id uint) (*models.CommissionRateChange, error) {
	var change models.CommissionRateChange
	err := r.db.WithContext(ctx).
		Preload("Seller").
		Preload("Requester").
		Preload("Approver").
		First(&change, id).Error
	if err != nil {
		return nil, err
	}
	return &change, nil
}

func (r *commissionRepository) Create(ctx context.Context, change *models.CommissionRateChange) error {
	return r.db.WithContext(ctx).Create(change).Error
}

func (r *commissionRepository) Update(ctx context.Context, change *models.CommissionRateChange) error {
	return r.db.WithContext(ctx).Save(change).Error
}

func (r *commissionRepository) List(ctx context.Context, query *ListQuery) ([]models.CommissionRateChange, int64, error) {
	var changes []models.CommissionRateChange
	var total int64

	db := r.db.WithContext(ctx).Model(&models.CommissionRateChange{})

	if query.Filters["status"] != "" {
		db = db.Where("status = ?", query.Filters["status"])
	}
	if query.Filters["seller_id"] != "" {
		db = db.Where("seller_id = ?", query.Filters["seller_id"])
	}

	db.Count(&total)

	db = db.Preload("Seller").Preload("Requester").Preload("Approver").
		Order("created_at DESC")

	if query.PerPage > 0 {
		db = db.Offset((query.Page - 1) * query.PerPage).Limit(query.PerPage)
	}

	err := db.Find(&changes).Error
	return changes, total, err
}

// FindEffective returns the approved change in effect for a seller at the
// given time. When sellerID is non-nil the query is scoped to that seller's
// rate only; pass nil to resolve the platform default. Callers resolve
// precedence (seller rate beats default) by trying both.
func (r *commissionRepository) FindEffective(ctx context.Context, sellerID *uint, at time.Time) (*models.CommissionRateChange, error) {
	var change models.CommissionRateChange

	db := r.db.WithContext(ctx).
		Where("status = ? AND effective_at <= ?", models.CommissionStatusApproved, at)

	if sellerID != nil {
		db = db.Where("seller_id = ?", *sellerID)
	} else {
		db = db.Where("seller_id IS NULL")
	}

	err := db.Order("effective_at DESC, id DESC").First(&change).Error
	if err != nil {
		return nil, err
	}
	return &change, nil
}
