package services

import (
	"context"
	"testing"

	"github.com/fleuri/fleuri-api/internal/models"
	"github.com/fleuri/fleuri-api/internal/repository"
	"github.com/fleuri/fleuri-api/pkg/logger"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

type mockPayoutRepo struct {
	repository.PayoutRepository
	mockFindByID func(ctx context.Context, id uint) (*models.Payout, error)
	mockUpdate   func(ctx context.Context, payout *models.Payout) error
	updateCalls  int
}

func (m *mockPayoutRepo) FindByID(ctx context.Context, id uint) (*models.Payout, error) {
	return m.mockFindByID(ctx, id)
}

func (m *mockPayoutRepo) Update(ctx context.Context, payout *models.Payout) error {
	m.updateCalls++
	if m.mockUpdate != nil {
		return m.mockUpdate(ctx, payout)
	}
	return nil
}

type mockNotificationRepo struct {
	repository.NotificationRepository
	created []models.Notification
}

func (m *mockNotificationRepo) Create(ctx context.Context, notification *models.Notification) error {
	m.created = append(m.created, *notification)
	return nil
}

func newPayoutServiceForTest(repo *mockPayoutRepo, auditRepo *mockAuditRepo) *PayoutService {
	logger.Setup("test")
	notifSvc := NewNotificationService(&mockNotificationRepo{}, &mockUserRepo{})
	return NewPayoutService(repo, &mockUserRepo{}, notifSvc, NewAuditService(auditRepo))
}

func TestPayoutService_Retry_AlwaysBlocked(t *testing.T) {
	repo := &mockPayoutRepo{}
	auditRepo := &mockAuditRepo{}
	service := newPayoutServiceForTest(repo, auditRepo)

	reason := "bank account closed"
	repo.mockFindByID = func(ctx context.Context, id uint) (*models.Payout, error) {
		return &models.Payout{
			ID:            id,
			SellerID:      5,
			AmountCents:   120000,
			Currency:      "EUR",
			Status:        models.PayoutStatusFailed,
			FailureReason: &reason,
		}, nil
	}

	err := service.Retry(context.Background(), 1, 42)
	assert.ErrorIs(t, err, ErrRetryViaApproval)

	// The payout row is never touched
	assert.Zero(t, repo.updateCalls)

	// The refusal itself lands in the audit chain
	assert.Len(t, auditRepo.entries, 1)
	assert.Equal(t, models.AuditPayoutRetryBlocked, auditRepo.entries[0].Action)
	assert.Equal(t, uint(42), *auditRepo.entries[0].ActorID)
}

func TestPayoutService_Retry_NonFailedPayout(t *testing.T) {
	repo := &mockPayoutRepo{}
	auditRepo := &mockAuditRepo{}
	service := newPayoutServiceForTest(repo, auditRepo)

	repo.mockFindByID = func(ctx context.Context, id uint) (*models.Payout, error) {
		return &models.Payout{ID: id, Status: models.PayoutStatusPaid}, nil
	}

	err := service.Retry(context.Background(), 1, 42)
	assert.ErrorIs(t, err, ErrConflict)
	assert.Empty(t, auditRepo.entries)
}

func TestPayoutService_Retry_NotFound(t *testing.T) {
	repo := &mockPayoutRepo{}
	auditRepo := &mockAuditRepo{}
	service := newPayoutServiceForTest(repo, auditRepo)

	repo.mockFindByID = func(ctx context.Context, id uint) (*models.Payout, error) {
		return nil, gorm.ErrRecordNotFound
	}

	err := service.Retry(context.Background(), 999, 42)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPayoutService_RequestApproval_RecordsRequester(t *testing.T) {
	repo := &mockPayoutRepo{}
	auditRepo := &mockAuditRepo{}
	service := newPayoutServiceForTest(repo, auditRepo)

	repo.mockFindByID = func(ctx context.Context, id uint) (*models.Payout, error) {
		return &models.Payout{ID: id, SellerID: 5, Status: models.PayoutStatusFailed}, nil
	}

	payout, err := service.RequestApproval(context.Background(), 1, 42)
	assert.NoError(t, err)
	assert.NotNil(t, payout.RequestedBy)
	assert.Equal(t, uint(42), *payout.RequestedBy)

	// The status only moves when a second admin approves
	assert.Equal(t, models.PayoutStatusFailed, payout.Status)

	assert.Len(t, auditRepo.entries, 1)
	assert.Equal(t, models.AuditPayoutApprovalRequested, auditRepo.entries[0].Action)
}

func TestPayoutService_RequestApproval_PaidPayout(t *testing.T) {
	repo := &mockPayoutRepo{}
	auditRepo := &mockAuditRepo{}
	service := newPayoutServiceForTest(repo, auditRepo)

	repo.mockFindByID = func(ctx context.Context, id uint) (*models.Payout, error) {
		return &models.Payout{ID: id, Status: models.PayoutStatusPaid}, nil
	}

	payout, err := service.RequestApproval(context.Background(), 1, 42)
	assert.Nil(t, payout)
	assert.ErrorIs(t, err, ErrConflict)
}

func TestPayoutService_Approve_RequiresPriorRequest(t *testing.T) {
	repo := &mockPayoutRepo{}
	auditRepo := &mockAuditRepo{}
	service := newPayoutServiceForTest(repo, auditRepo)

	repo.mockFindByID = func(ctx context.Context, id uint) (*models.Payout, error) {
		return &models.Payout{ID: id, Status: models.PayoutStatusPending}, nil
	}

	payout, err := service.Approve(context.Background(), 1, 43)
	assert.Nil(t, payout)
	assert.ErrorIs(t, err, ErrConflict)
}

func TestPayoutService_Approve_RejectsSameAdmin(t *testing.T) {
	repo := &mockPayoutRepo{}
	auditRepo := &mockAuditRepo{}
	service := newPayoutServiceForTest(repo, auditRepo)

	requester := uint(42)
	repo.mockFindByID = func(ctx context.Context, id uint) (*models.Payout, error) {
		return &models.Payout{ID: id, Status: models.PayoutStatusFailed, RequestedBy: &requester}, nil
	}

	payout, err := service.Approve(context.Background(), 1, 42)
	assert.Nil(t, payout)
	assert.ErrorIs(t, err, ErrSecondPersonRequired)
	assert.Zero(t, repo.updateCalls)
}

func TestPayoutService_Approve_SecondAdminSucceeds(t *testing.T) {
	repo := &mockPayoutRepo{}
	auditRepo := &mockAuditRepo{}
	service := newPayoutServiceForTest(repo, auditRepo)

	requester := uint(42)
	repo.mockFindByID = func(ctx context.Context, id uint) (*models.Payout, error) {
		return &models.Payout{
			ID:          id,
			SellerID:    5,
			AmountCents: 120000,
			Status:      models.PayoutStatusFailed,
			RequestedBy: &requester,
		}, nil
	}

	payout, err := service.Approve(context.Background(), 1, 43)
	assert.NoError(t, err)
	assert.Equal(t, models.PayoutStatusProcessing, payout.Status)
	assert.Equal(t, 1, repo.updateCalls)

	assert.Len(t, auditRepo.entries, 1)
	assert.Equal(t, models.AuditPayoutApproved, auditRepo.entries[0].Action)
	assert.Equal(t, uint(43), *auditRepo.entries[0].ActorID)
}

func TestPayoutService_Settle_MarksPaidAndClearsFailure(t *testing.T) {
	repo := &mockPayoutRepo{}
	auditRepo := &mockAuditRepo{}
	notifRepo := &mockNotificationRepo{}
	logger.Setup("test")
	notifSvc := NewNotificationService(notifRepo, &mockUserRepo{})
	service := NewPayoutService(repo, &mockUserRepo{}, notifSvc, NewAuditService(auditRepo))

	reason := "insufficient funds"
	repo.mockFindByID = func(ctx context.Context, id uint) (*models.Payout, error) {
		return &models.Payout{
			ID:            id,
			SellerID:      5,
			AmountCents:   120000,
			Currency:      "EUR",
			Status:        models.PayoutStatusProcessing,
			FailureReason: &reason,
		}, nil
	}

	payout, err := service.Settle(context.Background(), 1)
	assert.NoError(t, err)
	assert.Equal(t, models.PayoutStatusPaid, payout.Status)
	assert.NotNil(t, payout.PaidAt)
	assert.Nil(t, payout.FailureReason)

	assert.Len(t, notifRepo.created, 1)
	assert.Equal(t, uint(5), notifRepo.created[0].UserID)
}

func TestPayoutService_Settle_RequiresProcessing(t *testing.T) {
	repo := &mockPayoutRepo{}
	auditRepo := &mockAuditRepo{}
	service := newPayoutServiceForTest(repo, auditRepo)

	repo.mockFindByID = func(ctx context.Context, id uint) (*models.Payout, error) {
		return &models.Payout{ID: id, Status: models.PayoutStatusPending}, nil
	}

	payout, err := service.Settle(context.Background(), 1)
	assert.Nil(t, payout)
	assert.ErrorIs(t, err, ErrConflict)
}
