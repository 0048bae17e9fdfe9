package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fleuri/fleuri-api/internal/config"
	"github.com/fleuri/fleuri-api/internal/models"
	"github.com/fleuri/fleuri-api/internal/repository"
	"github.com/fleuri/fleuri-api/internal/statemachine"
	"gorm.io/gorm"
)

// CommissionService manages commission rate changes under the two-person
// rule: any admin may request a change, but only a different admin may
// approve it. Approval is the only path to a rate taking financial effect.
type CommissionService struct {
	repo            repository.CommissionRepository
	userRepo        repository.UserRepository
	notificationSvc *NotificationService
	emailSvc        *EmailService
	auditSvc        *AuditService
	cfg             *config.Config
}

// NewCommissionService creates a new commission service
func NewCommissionService(
	repo repository.CommissionRepository,
	userRepo repository.UserRepository,
	notificationSvc *NotificationService,
	emailSvc *EmailService,
	auditSvc *AuditService,
	cfg *config.Config,
) *CommissionService {
	return &CommissionService{
		repo:            repo,
		userRepo:        userRepo,
		notificationSvc: notificationSvc,
		emailSvc:        emailSvc,
		auditSvc:        auditSvc,
		cfg:             cfg,
	}
}

// RequestChangeInput carries the fields of a new commission rate change
type RequestChangeInput struct {
	SellerID    *uint
	PctBps      int
	EffectiveAt time.Time
	Note        *string
}

// RequestChange creates a pending commission rate change. Any admin may
// request; the two-person rule is enforced at approval time, not here.
func (s *CommissionService) RequestChange(ctx context.Context, input RequestChangeInput, requesterID uint) (*models.CommissionRateChange, error) {
	if input.PctBps < 0 || input.PctBps > 10000 {
		return nil, fmt.Errorf("pct_bps must be between 0 and 10000")
	}

	if input.SellerID != nil {
		seller, err := s.userRepo.FindByID(ctx, *input.SellerID)
		if err != nil {
			return nil, ErrNotFound
		}
		if !seller.IsSeller() {
			return nil, fmt.Errorf("user %d is not a seller", seller.ID)
		}
	}

	change := &models.CommissionRateChange{
		SellerID:    input.SellerID,
		PctBps:      input.PctBps,
		EffectiveAt: input.EffectiveAt,
		Status:      models.CommissionStatusPending,
		RequestedBy: requesterID,
		Note:        input.Note,
	}

	if err := s.repo.Create(ctx, change); err != nil {
		return nil, err
	}

	role := models.RoleAdmin
	s.auditSvc.Log(ctx, AuditEntry{
		ActorID:   &requesterID,
		ActorRole: &role,
		Action:    models.AuditCommissionChangeRequested,
		Entity:    "CommissionRateChange",
		EntityID:  &change.ID,
		Message:   "commission rate change requested",
		Meta: models.JSONMap{
			"seller_id":    change.SellerID,
			"pct_bps":      change.PctBps,
			"effective_at": change.EffectiveAt,
		},
	})

	return change, nil
}

// Approve applies a pending change. The approver must be a different
// admin than the requester; violating either precondition is a conflict,
// not an internal error, and leaves the change untouched.
func (s *CommissionService) Approve(ctx context.Context, id uint, approverID uint) (*models.CommissionRateChange, error) {
	change, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if !change.MayApprove() {
		return nil, ErrConflict
	}

	if change.RequestedBy == approverID {
		return nil, ErrSecondPersonRequired
	}

	// Resolve the change this approval replaces while the newest approved
	// change is still the old one; once this one is approved it would match
	// its own effective-rate query.
	previous := s.previousEffective(ctx, change)

	csm := statemachine.NewCommissionFSM(change)
	if err := csm.Approve(ctx); err != nil {
		return nil, ErrConflict
	}

	now := time.Now()
	change.ApprovedBy = &approverID
	change.ApprovedAt = &now

	if err := s.repo.Update(ctx, change); err != nil {
		return nil, err
	}

	// Mark the replaced change superseded. Done after the update so a
	// failure here never blocks the approval itself.
	s.supersede(ctx, previous)

	role := models.RoleAdmin
	s.auditSvc.Log(ctx, AuditEntry{
		ActorID:   &approverID,
		ActorRole: &role,
		Action:    models.AuditCommissionChangeApproved,
		Entity:    "CommissionRateChange",
		EntityID:  &change.ID,
		Message:   "commission rate change approved",
		Meta: models.JSONMap{
			"seller_id":    change.SellerID,
			"pct_bps":      change.PctBps,
			"effective_at": change.EffectiveAt,
			"requested_by": change.RequestedBy,
		},
	})

	s.notifyDecision(ctx, change, true)

	return change, nil
}

// Reject declines a pending change
func (s *CommissionService) Reject(ctx context.Context, id uint, reviewerID uint, note *string) (*models.CommissionRateChange, error) {
	change, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if !change.MayReject() {
		return nil, ErrConflict
	}

	csm := statemachine.NewCommissionFSM(change)
	if err := csm.Reject(ctx); err != nil {
		return nil, ErrConflict
	}

	if note != nil {
		change.Note = note
	}

	if err := s.repo.Update(ctx, change); err != nil {
		return nil, err
	}

	role := models.RoleAdmin
	s.auditSvc.Log(ctx, AuditEntry{
		ActorID:   &reviewerID,
		ActorRole: &role,
		Action:    models.AuditCommissionChangeRejected,
		Entity:    "CommissionRateChange",
		EntityID:  &change.ID,
		Message:   "commission rate change rejected",
		Meta: models.JSONMap{
			"seller_id": change.SellerID,
			"pct_bps":   change.PctBps,
		},
	})

	s.notifyDecision(ctx, change, false)

	return change, nil
}

// FindByID retrieves a commission rate change
func (s *CommissionService) FindByID(ctx context.Context, id uint) (*models.CommissionRateChange, error) {
	change, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return change, nil
}

// List retrieves commission rate changes with filters
func (s *CommissionService) List(ctx context.Context, query *repository.ListQuery) ([]models.CommissionRateChange, int64, error) {
	return s.repo.List(ctx, query)
}

// EffectiveRateBps resolves the commission rate for a seller at a point
// in time. A seller-specific approved rate beats the platform default
// change; with neither, the configured fallback applies.
func (s *CommissionService) EffectiveRateBps(ctx context.Context, sellerID uint, at time.Time) (int, error) {
	change, err := s.repo.FindEffective(ctx, &sellerID, at)
	if err == nil {
		return change.PctBps, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, err
	}

	change, err = s.repo.FindEffective(ctx, nil, at)
	if err == nil {
		return change.PctBps, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, err
	}

	return s.cfg.DefaultCommissionBps, nil
}

// previousEffective returns the approved change currently in effect for
// the same scope (seller or platform default), or nil when there is none.
// Must be called before the incoming change is approved.
func (s *CommissionService) previousEffective(ctx context.Context, change *models.CommissionRateChange) *models.CommissionRateChange {
	previous, err := s.repo.FindEffective(ctx, change.SellerID, change.EffectiveAt)
	if err != nil || previous.ID == change.ID {
		return nil
	}
	return previous
}

// supersede retires a replaced change. Purely a bookkeeping convention;
// EffectiveRateBps already picks the newest effective change regardless.
func (s *CommissionService) supersede(ctx context.Context, previous *models.CommissionRateChange) {
	if previous == nil {
		return
	}

	csm := statemachine.NewCommissionFSM(previous)
	if err := csm.Supersede(ctx); err != nil {
		return
	}
	_ = s.repo.Update(ctx, previous)
}

func (s *CommissionService) notifyDecision(ctx context.Context, change *models.CommissionRateChange, approved bool) {
	requester, err := s.userRepo.FindByID(ctx, change.RequestedBy)
	if err != nil {
		return
	}

	if err := s.notificationSvc.NotifyCommissionDecision(ctx, requester.ID, change, approved); err != nil {
		return
	}
	s.emailSvc.SendCommissionDecision(ctx, requester, change)
}
