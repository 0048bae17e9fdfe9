package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fleuri/fleuri-api/internal/models"
	"github.com/fleuri/fleuri-api/internal/repository"
	"github.com/fleuri/fleuri-api/internal/statemachine"
	"gorm.io/gorm"
)

// PayoutService manages seller payouts. Moving money is the most
// sensitive action in the platform, so every path that could re-trigger
// a transfer funnels through the two-person approval flow: requesting
// approval is audit-logged here, and the direct retry path is
// permanently closed (see Retry).
type PayoutService struct {
	repo            repository.PayoutRepository
	userRepo        repository.UserRepository
	notificationSvc *NotificationService
	auditSvc        *AuditService
}

// NewPayoutService creates a new payout service
func NewPayoutService(
	repo repository.PayoutRepository,
	userRepo repository.UserRepository,
	notificationSvc *NotificationService,
	auditSvc *AuditService,
) *PayoutService {
	return &PayoutService{
		repo:            repo,
		userRepo:        userRepo,
		notificationSvc: notificationSvc,
		auditSvc:        auditSvc,
	}
}

// FindByID retrieves a payout
func (s *PayoutService) FindByID(ctx context.Context, id uint) (*models.Payout, error) {
	payout, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return payout, nil
}

// List retrieves payouts with filters
func (s *PayoutService) List(ctx context.Context, query *repository.ListQuery) ([]models.Payout, int64, error) {
	return s.repo.List(ctx, query)
}

// ListBySeller retrieves a seller's own payouts
func (s *PayoutService) ListBySeller(ctx context.Context, sellerID uint, query *repository.ListQuery) ([]models.Payout, int64, error) {
	return s.repo.FindBySeller(ctx, sellerID, query)
}

// Create records a new pending payout request by a seller
func (s *PayoutService) Create(ctx context.Context, sellerID uint, amountCents int64, currency string) (*models.Payout, error) {
	if amountCents <= 0 {
		return nil, fmt.Errorf("amount must be positive")
	}
	if currency == "" {
		currency = "EUR"
	}

	payout := &models.Payout{
		SellerID:    sellerID,
		AmountCents: amountCents,
		Currency:    currency,
		Status:      models.PayoutStatusPending,
	}

	if err := s.repo.Create(ctx, payout); err != nil {
		return nil, err
	}

	s.notificationSvc.NotifyPayoutRequested(ctx, payout)

	return payout, nil
}

// RequestApproval records that an admin wants this payout (re)processed.
// It is permitted only for payouts that have not moved money (pending) or
// failed to; the payout status itself is untouched. A second, distinct
// admin performs the actual approval out of band.
func (s *PayoutService) RequestApproval(ctx context.Context, payoutID uint, actorID uint) (*models.Payout, error) {
	payout, err := s.repo.FindByID(ctx, payoutID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if !payout.MayRequestApproval() {
		return nil, ErrConflict
	}

	payout.RequestedBy = &actorID
	if err := s.repo.Update(ctx, payout); err != nil {
		return nil, err
	}

	role := models.RoleAdmin
	s.auditSvc.Log(ctx, AuditEntry{
		ActorID:   &actorID,
		ActorRole: &role,
		Action:    models.AuditPayoutApprovalRequested,
		Entity:    "Payout",
		EntityID:  &payout.ID,
		Message:   "payout approval requested",
		Meta: models.JSONMap{
			"seller_id":    payout.SellerID,
			"amount_cents": payout.AmountCents,
			"currency":     payout.Currency,
			"status":       payout.Status,
		},
	})

	return payout, nil
}

// Retry always refuses to re-trigger a failed payout directly. This is
// not a stub: a single admin credential must never be able to re-fire a
// money transfer, so even a correctly-failed payout is only retriable
// through RequestApproval plus a second admin's approval. The refusal is
// itself audit-logged so repeated attempts are visible.
func (s *PayoutService) Retry(ctx context.Context, payoutID uint, actorID uint) error {
	payout, err := s.repo.FindByID(ctx, payoutID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}

	if !payout.IsFailed() {
		return ErrConflict
	}

	role := models.RoleAdmin
	s.auditSvc.Log(ctx, AuditEntry{
		ActorID:   &actorID,
		ActorRole: &role,
		Action:    models.AuditPayoutRetryBlocked,
		Entity:    "Payout",
		EntityID:  &payout.ID,
		Message:   "direct payout retry blocked",
		Meta: models.JSONMap{
			"seller_id":    payout.SellerID,
			"amount_cents": payout.AmountCents,
			"status":       payout.Status,
		},
	})

	return ErrRetryViaApproval
}

// Approve moves a requested payout into processing. The approver must be
// a different admin than the one who requested approval; a payout nobody
// requested cannot be approved at all.
func (s *PayoutService) Approve(ctx context.Context, payoutID uint, approverID uint) (*models.Payout, error) {
	payout, err := s.repo.FindByID(ctx, payoutID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if payout.RequestedBy == nil {
		return nil, ErrConflict
	}
	if *payout.RequestedBy == approverID {
		return nil, ErrSecondPersonRequired
	}

	psm := statemachine.NewPayoutFSM(payout)
	if err := psm.Process(ctx); err != nil {
		return nil, ErrConflict
	}
	if err := s.repo.Update(ctx, payout); err != nil {
		return nil, err
	}

	role := models.RoleAdmin
	s.auditSvc.Log(ctx, AuditEntry{
		ActorID:   &approverID,
		ActorRole: &role,
		Action:    models.AuditPayoutApproved,
		Entity:    "Payout",
		EntityID:  &payout.ID,
		Message:   "payout approved for processing",
		Meta: models.JSONMap{
			"seller_id":    payout.SellerID,
			"amount_cents": payout.AmountCents,
			"requested_by": *payout.RequestedBy,
		},
	})

	return payout, nil
}

// Settle records a successful transfer reported by the payment rails
func (s *PayoutService) Settle(ctx context.Context, payoutID uint) (*models.Payout, error) {
	payout, err := s.repo.FindByID(ctx, payoutID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	psm := statemachine.NewPayoutFSM(payout)
	if err := psm.Settle(ctx); err != nil {
		return nil, ErrConflict
	}
	now := time.Now().UTC()
	payout.PaidAt = &now
	payout.FailureReason = nil
	if err := s.repo.Update(ctx, payout); err != nil {
		return nil, err
	}

	s.notificationSvc.NotifyPayoutPaid(ctx, payout)

	return payout, nil
}

// Fail records a failed transfer reported by the payment rails. The
// payout stays retriable only through the approval flow.
func (s *PayoutService) Fail(ctx context.Context, payoutID uint, reason string) (*models.Payout, error) {
	payout, err := s.repo.FindByID(ctx, payoutID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	psm := statemachine.NewPayoutFSM(payout)
	if err := psm.Fail(ctx, reason); err != nil {
		return nil, ErrConflict
	}
	if err := s.repo.Update(ctx, payout); err != nil {
		return nil, err
	}

	s.notificationSvc.NotifyPayoutFailed(ctx, payout, reason)

	return payout, nil
}
