package repository

import (
	"context"

	"github.com/fleuri/fleuri-api/internal/models"
	"gorm.io/gorm"
)

// ProductRepository defines the interface for product data access
type ProductRepository interface {
	FindByID(ctx context.Context, id uint) (*models.Product, error)
	Create(ctx context.Context, product *models.Product) error
	Update(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, query *ListQuery) ([]models.Product, int64, error)
	FindBySeller(ctx context.Context, sellerID uint, query *ListQuery) ([]models.Product, int64, error)
}

type productRepository struct {
	db *gorm.DB
}

// NewProductRepository creates a new product repository
func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) FindByID(ctx context.Context, id uint) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Preload("Seller").
		First(&product, id).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepository) Create(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

func (r *productRepository) Update(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Save(product).Error
}

func (r *productRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Product{}, id).Error
}

func (r *productRepository) List(ctx context.Context, query *ListQuery) ([]models.Product, int64, error) {
	var products []models.Product
	var total int64

	db := r.db.WithContext(ctx).Model(&models.Product{})

	if query.Search != "" {
		search := "%" + query.Search + "%"
		db = db.Where("name ILIKE ? OR description ILIKE ?", search, search)
	}
	if query.Filters["status"] != "" {
		db = db.Where("status = ?", query.Filters["status"])
	}

	db.Count(&total)

	db = db.Preload("Seller").Order("created_at DESC")

	if query.PerPage > 0 {
		db = db.Offset((query.Page - 1) * query.PerPage).Limit(query.PerPage)
	}

	err := db.Find(&products).Error
	return products, total, err
}

func (r *productRepository) FindBySeller(ctx context.Context, sellerID uint, query *ListQuery) ([]models.Product, int64, error) {
	db := r.db.WithContext(ctx).Model(&models.Product{}).Where("seller_id = ?", sellerID)

	if query.Filters["status"] != "" {
		db = db.Where("status = ?", query.Filters["status"])
	}

	var products []models.Product
	var total int64
	db.Count(&total)

	db = db.Order("created_at DESC")
	if query.PerPage > 0 {
		db = db.Offset((query.Page - 1) * query.PerPage).Limit(query.PerPage)
	}

	err := db.Find(&products).Error
	return products, total, err
}
