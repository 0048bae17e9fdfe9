package services

import (
	"context"
	"testing"
	"time"

	"github.com/fleuri/fleuri-api/internal/config"
	"github.com/fleuri/fleuri-api/internal/models"
	"github.com/fleuri/fleuri-api/internal/repository"
	"github.com/fleuri/fleuri-api/pkg/logger"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

type mockOrderRepo struct {
	repository.OrderRepository
	mockFindByID     func(ctx context.Context, id uint) (*models.Order, error)
	mockCreate       func(ctx context.Context, order *models.Order) error
	mockUpdate       func(ctx context.Context, order *models.Order) error
	mockSetLegalHold func(ctx context.Context, id uint, hold bool) error
}

func (m *mockOrderRepo) FindByID(ctx context.Context, id uint) (*models.Order, error) {
	return m.mockFindByID(ctx, id)
}

func (m *mockOrderRepo) Create(ctx context.Context, order *models.Order) error {
	if m.mockCreate != nil {
		return m.mockCreate(ctx, order)
	}
	return nil
}

func (m *mockOrderRepo) Update(ctx context.Context, order *models.Order) error {
	if m.mockUpdate != nil {
		return m.mockUpdate(ctx, order)
	}
	return nil
}

func (m *mockOrderRepo) SetLegalHold(ctx context.Context, id uint, hold bool) error {
	if m.mockSetLegalHold != nil {
		return m.mockSetLegalHold(ctx, id, hold)
	}
	return nil
}

type mockProductRepo struct {
	repository.ProductRepository
	mockFindByID func(ctx context.Context, id uint) (*models.Product, error)
	mockUpdate   func(ctx context.Context, product *models.Product) error
}

func (m *mockProductRepo) FindByID(ctx context.Context, id uint) (*models.Product, error) {
	return m.mockFindByID(ctx, id)
}

func (m *mockProductRepo) Update(ctx context.Context, product *models.Product) error {
	if m.mockUpdate != nil {
		return m.mockUpdate(ctx, product)
	}
	return nil
}

func newOrderServiceForTest(repo *mockOrderRepo, productRepo *mockProductRepo, commissionRepo *mockCommissionRepo, auditRepo *mockAuditRepo) *OrderService {
	logger.Setup("test")
	cfg := &config.Config{DefaultCommissionBps: 1000}
	auditSvc := NewAuditService(auditRepo)
	commissionSvc := NewCommissionService(commissionRepo, &mockUserRepo{}, nil, nil, auditSvc, cfg)
	notifSvc := NewNotificationService(&mockNotificationRepo{}, &mockUserRepo{})
	return NewOrderService(repo, productRepo, &mockUserRepo{}, commissionSvc, notifSvc, auditSvc)
}

func TestOrderService_Create_SnapshotsCommissionRate(t *testing.T) {
	repo := &mockOrderRepo{}
	productRepo := &mockProductRepo{}
	commissionRepo := &mockCommissionRepo{}
	auditRepo := &mockAuditRepo{}
	service := newOrderServiceForTest(repo, productRepo, commissionRepo, auditRepo)

	productRepo.mockFindByID = func(ctx context.Context, id uint) (*models.Product, error) {
		return &models.Product{
			ID:         id,
			SellerID:   5,
			Name:       "Peony Bouquet",
			PriceCents: 4500,
			Currency:   "EUR",
			Stock:      10,
			Status:     models.ProductStatusActive,
		}, nil
	}
	commissionRepo.mockFindEffective = func(ctx context.Context, sellerID *uint, at time.Time) (*models.CommissionRateChange, error) {
		if sellerID != nil {
			return &models.CommissionRateChange{PctBps: 850, Status: models.CommissionStatusApproved}, nil
		}
		return nil, gorm.ErrRecordNotFound
	}

	order, err := service.Create(context.Background(), CreateOrderInput{
		BuyerID:   9,
		ProductID: 3,
		Quantity:  2,
	})
	assert.NoError(t, err)
	assert.Equal(t, 850, order.CommissionBps)
	assert.Equal(t, int64(9000), order.TotalCents)
	assert.Equal(t, int64(765), order.CommissionCents())
	assert.Equal(t, models.OrderStatusPlaced, order.Status)
	assert.NotEmpty(t, order.GUID)
}

func TestOrderService_Create_FallsBackToDefaultRate(t *testing.T) {
	repo := &mockOrderRepo{}
	productRepo := &mockProductRepo{}
	commissionRepo := &mockCommissionRepo{}
	auditRepo := &mockAuditRepo{}
	service := newOrderServiceForTest(repo, productRepo, commissionRepo, auditRepo)

	productRepo.mockFindByID = func(ctx context.Context, id uint) (*models.Product, error) {
		return &models.Product{
			ID: id, SellerID: 5, PriceCents: 4500, Currency: "EUR",
			Stock: 10, Status: models.ProductStatusActive,
		}, nil
	}

	order, err := service.Create(context.Background(), CreateOrderInput{BuyerID: 9, ProductID: 3, Quantity: 1})
	assert.NoError(t, err)
	assert.Equal(t, 1000, order.CommissionBps)
}

func TestOrderService_Create_DecrementsStock(t *testing.T) {
	repo := &mockOrderRepo{}
	productRepo := &mockProductRepo{}
	commissionRepo := &mockCommissionRepo{}
	auditRepo := &mockAuditRepo{}
	service := newOrderServiceForTest(repo, productRepo, commissionRepo, auditRepo)

	product := &models.Product{
		ID: 3, SellerID: 5, PriceCents: 4500, Currency: "EUR",
		Stock: 10, Status: models.ProductStatusActive,
	}
	productRepo.mockFindByID = func(ctx context.Context, id uint) (*models.Product, error) {
		return product, nil
	}
	var savedStock int
	productRepo.mockUpdate = func(ctx context.Context, p *models.Product) error {
		savedStock = p.Stock
		return nil
	}

	_, err := service.Create(context.Background(), CreateOrderInput{BuyerID: 9, ProductID: 3, Quantity: 4})
	assert.NoError(t, err)
	assert.Equal(t, 6, savedStock)
}

func TestOrderService_Create_InsufficientStock(t *testing.T) {
	repo := &mockOrderRepo{}
	productRepo := &mockProductRepo{}
	commissionRepo := &mockCommissionRepo{}
	auditRepo := &mockAuditRepo{}
	service := newOrderServiceForTest(repo, productRepo, commissionRepo, auditRepo)

	productRepo.mockFindByID = func(ctx context.Context, id uint) (*models.Product, error) {
		return &models.Product{
			ID: id, SellerID: 5, PriceCents: 4500,
			Stock: 1, Status: models.ProductStatusActive,
		}, nil
	}

	order, err := service.Create(context.Background(), CreateOrderInput{BuyerID: 9, ProductID: 3, Quantity: 2})
	assert.Nil(t, order)
	assert.ErrorIs(t, err, ErrConflict)
}

func TestOrderService_SetLegalHold_AuditsBothTransitions(t *testing.T) {
	repo := &mockOrderRepo{}
	productRepo := &mockProductRepo{}
	commissionRepo := &mockCommissionRepo{}
	auditRepo := &mockAuditRepo{}
	service := newOrderServiceForTest(repo, productRepo, commissionRepo, auditRepo)

	held := false
	repo.mockFindByID = func(ctx context.Context, id uint) (*models.Order, error) {
		return &models.Order{ID: id, Status: models.OrderStatusDelivered, LegalHold: held}, nil
	}

	order, err := service.SetLegalHold(context.Background(), 1, true, 42, "pending litigation")
	assert.NoError(t, err)
	assert.True(t, order.LegalHold)

	held = true
	order, err = service.SetLegalHold(context.Background(), 1, false, 42, "case closed")
	assert.NoError(t, err)
	assert.False(t, order.LegalHold)

	assert.Len(t, auditRepo.entries, 2)
	assert.Equal(t, models.AuditOrderLegalHoldSet, auditRepo.entries[0].Action)
	assert.Equal(t, "pending litigation", auditRepo.entries[0].Meta["reason"])
	assert.Equal(t, models.AuditOrderLegalHoldReleased, auditRepo.entries[1].Action)
}

func TestOrderService_SetLegalHold_NoopIsConflict(t *testing.T) {
	repo := &mockOrderRepo{}
	productRepo := &mockProductRepo{}
	commissionRepo := &mockCommissionRepo{}
	auditRepo := &mockAuditRepo{}
	service := newOrderServiceForTest(repo, productRepo, commissionRepo, auditRepo)

	repo.mockFindByID = func(ctx context.Context, id uint) (*models.Order, error) {
		return &models.Order{ID: id, LegalHold: true}, nil
	}

	order, err := service.SetLegalHold(context.Background(), 1, true, 42, "duplicate request")
	assert.Nil(t, order)
	assert.ErrorIs(t, err, ErrConflict)
	assert.Empty(t, auditRepo.entries)
}

func TestOrderService_Cancel_Restocks(t *testing.T) {
	repo := &mockOrderRepo{}
	productRepo := &mockProductRepo{}
	commissionRepo := &mockCommissionRepo{}
	auditRepo := &mockAuditRepo{}
	service := newOrderServiceForTest(repo, productRepo, commissionRepo, auditRepo)

	repo.mockFindByID = func(ctx context.Context, id uint) (*models.Order, error) {
		return &models.Order{ID: id, ProductID: 3, Quantity: 2, Status: models.OrderStatusPlaced}, nil
	}
	productRepo.mockFindByID = func(ctx context.Context, id uint) (*models.Product, error) {
		return &models.Product{ID: id, Stock: 4}, nil
	}
	var savedStock int
	productRepo.mockUpdate = func(ctx context.Context, p *models.Product) error {
		savedStock = p.Stock
		return nil
	}

	order, err := service.Cancel(context.Background(), 1)
	assert.NoError(t, err)
	assert.Equal(t, models.OrderStatusCancelled, order.Status)
	assert.NotNil(t, order.CancelledAt)
	assert.Equal(t, 6, savedStock)
}

func TestOrderService_Cancel_DeliveredOrder(t *testing.T) {
	repo := &mockOrderRepo{}
	productRepo := &mockProductRepo{}
	commissionRepo := &mockCommissionRepo{}
	auditRepo := &mockAuditRepo{}
	service := newOrderServiceForTest(repo, productRepo, commissionRepo, auditRepo)

	repo.mockFindByID = func(ctx context.Context, id uint) (*models.Order, error) {
		return &models.Order{ID: id, Status: models.OrderStatusDelivered}, nil
	}

	order, err := service.Cancel(context.Background(), 1)
	assert.Nil(t, order)
	assert.ErrorIs(t, err, ErrConflict)
}
