package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fleuri/fleuri-api/internal/models"
	"github.com/fleuri/fleuri-api/internal/repository"
	"github.com/fleuri/fleuri-api/pkg/logger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OrderService handles order business logic
type OrderService struct {
	repo            repository.OrderRepository
	productRepo     repository.ProductRepository
	userRepo        repository.UserRepository
	commissionSvc   *CommissionService
	notificationSvc *NotificationService
	auditSvc        *AuditService
}

// NewOrderService creates a new order service
func NewOrderService(
	repo repository.OrderRepository,
	productRepo repository.ProductRepository,
	userRepo repository.UserRepository,
	commissionSvc *CommissionService,
	notificationSvc *NotificationService,
	auditSvc *AuditService,
) *OrderService {
	return &OrderService{
		repo:            repo,
		productRepo:     productRepo,
		userRepo:        userRepo,
		commissionSvc:   commissionSvc,
		notificationSvc: notificationSvc,
		auditSvc:        auditSvc,
	}
}

// CreateOrderInput carries the fields of a new order
type CreateOrderInput struct {
	BuyerID      uint
	ProductID    uint
	Quantity     int
	DeliveryDate *time.Time
	DeliveryNote *string
}

// FindByID retrieves an order by ID
func (s *OrderService) FindByID(ctx context.Context, id uint) (*models.Order, error) {
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return order, nil
}

// List retrieves orders with pagination and filtering
func (s *OrderService) List(ctx context.Context, query *repository.ListQuery) ([]models.Order, int64, error) {
	return s.repo.List(ctx, query)
}

// ListByBuyer retrieves a buyer's orders
func (s *OrderService) ListByBuyer(ctx context.Context, buyerID uint, query *repository.ListQuery) ([]models.Order, int64, error) {
	return s.repo.FindByBuyer(ctx, buyerID, query)
}

// ListBySeller retrieves orders placed against a seller's shop
func (s *OrderService) ListBySeller(ctx context.Context, sellerID uint, query *repository.ListQuery) ([]models.Order, int64, error) {
	return s.repo.FindBySeller(ctx, sellerID, query)
}

// Create places a new order. The commission rate in effect for the
// seller at placement time is snapshotted onto the order, so later rate
// changes never alter what an existing order owes the platform.
func (s *OrderService) Create(ctx context.Context, input CreateOrderInput) (*models.Order, error) {
	if input.Quantity < 1 {
		return nil, fmt.Errorf("%w: quantity must be at least 1", ErrConflict)
	}

	product, err := s.productRepo.FindByID(ctx, input.ProductID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !product.IsAvailable() {
		return nil, fmt.Errorf("%w: product is not available", ErrConflict)
	}
	if product.Stock < input.Quantity {
		return nil, fmt.Errorf("%w: insufficient stock", ErrConflict)
	}

	rateBps, err := s.commissionSvc.EffectiveRateBps(ctx, product.SellerID, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	order := &models.Order{
		GUID:          uuid.New().String(),
		BuyerID:       input.BuyerID,
		SellerID:      product.SellerID,
		ProductID:     product.ID,
		Quantity:      input.Quantity,
		TotalCents:    product.PriceCents * int64(input.Quantity),
		Currency:      product.Currency,
		CommissionBps: rateBps,
		Status:        models.OrderStatusPlaced,
		DeliveryDate:  input.DeliveryDate,
		DeliveryNote:  input.DeliveryNote,
	}
	if err := s.repo.Create(ctx, order); err != nil {
		return nil, err
	}

	product.Stock -= input.Quantity
	if err := s.productRepo.Update(ctx, product); err != nil {
		logger.Error("failed to decrement product stock", "error", err, "product_id", product.ID)
	}

	if err := s.notificationSvc.NotifyOrderPlaced(ctx, order, product); err != nil {
		logger.Error("failed to notify seller of new order", "error", err, "order_id", order.ID)
	}

	return order, nil
}

// MarkPreparing moves a placed order into preparation
func (s *OrderService) MarkPreparing(ctx context.Context, id uint) (*models.Order, error) {
	return s.transition(ctx, id, models.OrderStatusPlaced, models.OrderStatusPreparing)
}

// MarkDelivered marks an order as delivered, starting its retention clock
func (s *OrderService) MarkDelivered(ctx context.Context, id uint) (*models.Order, error) {
	order, err := s.transition(ctx, id, models.OrderStatusPreparing, models.OrderStatusDelivered)
	if err != nil {
		return nil, err
	}

	if err := s.notificationSvc.NotifyOrderDelivered(ctx, order); err != nil {
		logger.Error("failed to notify buyer of delivery", "error", err, "order_id", order.ID)
	}
	return order, nil
}

// Cancel cancels an order that has not been delivered yet
func (s *OrderService) Cancel(ctx context.Context, id uint) (*models.Order, error) {
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if order.Status == models.OrderStatusDelivered || order.Status == models.OrderStatusCancelled {
		return nil, ErrConflict
	}

	now := time.Now().UTC()
	order.Status = models.OrderStatusCancelled
	order.CancelledAt = &now
	if err := s.repo.Update(ctx, order); err != nil {
		return nil, err
	}

	// restock the cancelled quantity
	if product, perr := s.productRepo.FindByID(ctx, order.ProductID); perr == nil {
		product.Stock += order.Quantity
		if uerr := s.productRepo.Update(ctx, product); uerr != nil {
			logger.Error("failed to restock cancelled order", "error", uerr, "order_id", order.ID)
		}
	}

	return order, nil
}

// SetLegalHold flags an order for litigation or a compliance inquiry.
// Held orders are skipped by the retention purge until the hold is
// released, and both transitions are recorded in the audit trail.
func (s *OrderService) SetLegalHold(ctx context.Context, id uint, hold bool, actorID uint, reason string) (*models.Order, error) {
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if order.LegalHold == hold {
		return nil, ErrConflict
	}

	if err := s.repo.SetLegalHold(ctx, id, hold); err != nil {
		return nil, err
	}
	order.LegalHold = hold

	action := models.AuditOrderLegalHoldSet
	message := fmt.Sprintf("legal hold set on order #%d", order.ID)
	if !hold {
		action = models.AuditOrderLegalHoldReleased
		message = fmt.Sprintf("legal hold released on order #%d", order.ID)
	}
	s.auditSvc.Log(ctx, AuditEntry{
		ActorID:  &actorID,
		Action:   action,
		Entity:   "Order",
		EntityID: &order.ID,
		Message:  message,
		Meta: models.JSONMap{
			"reason": reason,
		},
	})

	return order, nil
}

func (s *OrderService) transition(ctx context.Context, id uint, from, to string) (*models.Order, error) {
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if order.Status != from {
		return nil, ErrConflict
	}

	order.Status = to
	if to == models.OrderStatusDelivered {
		now := time.Now().UTC()
		order.DeliveredAt = &now
	}
	if err := s.repo.Update(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}
