package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fleuri/fleuri-api/internal/models"
	"github.com/fleuri/fleuri-api/internal/repository"
	"gorm.io/gorm"
)

// ProductService handles product business logic
type ProductService struct {
	repo     repository.ProductRepository
	userRepo repository.UserRepository
	auditSvc *AuditService
}

// NewProductService creates a new product service
func NewProductService(repo repository.ProductRepository, userRepo repository.UserRepository, auditSvc *AuditService) *ProductService {
	return &ProductService{
		repo:     repo,
		userRepo: userRepo,
		auditSvc: auditSvc,
	}
}

// FindByID retrieves a product by ID
func (s *ProductService) FindByID(ctx context.Context, id uint) (*models.Product, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return product, nil
}

// List retrieves products with pagination and filtering
func (s *ProductService) List(ctx context.Context, query *repository.ListQuery) ([]models.Product, int64, error) {
	return s.repo.List(ctx, query)
}

// ListBySeller retrieves a seller's products
func (s *ProductService) ListBySeller(ctx context.Context, sellerID uint, query *repository.ListQuery) ([]models.Product, int64, error) {
	return s.repo.FindBySeller(ctx, sellerID, query)
}

// Create creates a new product for a seller's shop
func (s *ProductService) Create(ctx context.Context, product *models.Product) error {
	seller, err := s.userRepo.FindByID(ctx, product.SellerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	if seller.Role != models.RoleSeller {
		return ErrForbidden
	}
	if product.Status == "" {
		product.Status = models.ProductStatusActive
	}
	return s.repo.Create(ctx, product)
}

// Update updates a product's fields
func (s *ProductService) Update(ctx context.Context, product *models.Product) error {
	existing, err := s.repo.FindByID(ctx, product.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	if existing.Status == models.ProductStatusArchived {
		return ErrInvalidState
	}
	return s.repo.Update(ctx, product)
}

// Archive removes a product from sale while preserving order history.
// Archived products stay in the database so past orders keep a valid
// reference; the action is recorded in the audit trail.
func (s *ProductService) Archive(ctx context.Context, id uint, actorID uint) error {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	if product.Status == models.ProductStatusArchived {
		return ErrConflict
	}

	now := time.Now().UTC()
	product.Status = models.ProductStatusArchived
	product.ArchivedAt = &now
	if err := s.repo.Update(ctx, product); err != nil {
		return err
	}

	s.auditSvc.Log(ctx, AuditEntry{
		ActorID:  &actorID,
		Action:   models.AuditProductArchived,
		Entity:   "product",
		EntityID: &product.ID,
		Message:  fmt.Sprintf("product archived: %s", product.Name),
		Meta: models.JSONMap{
			"seller_id": product.SellerID,
		},
	})
	return nil
}
