package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fleuri/fleuri-api/internal/config"
	"github.com/fleuri/fleuri-api/internal/models"
	"github.com/fleuri/fleuri-api/internal/repository"
	"github.com/fleuri/fleuri-api/pkg/logger"
	"github.com/stretchr/testify/assert"
)

type mockRetentionRepo struct {
	repository.RetentionRepository
	mockCount   func(ctx context.Context, target repository.RetentionTarget, cutoff time.Time) (int64, error)
	mockDelete  func(ctx context.Context, target repository.RetentionTarget, cutoff time.Time) (int64, error)
	deleteCalls []string
}

func (m *mockRetentionRepo) CountCandidates(ctx context.Context, target repository.RetentionTarget, cutoff time.Time) (int64, error) {
	return m.mockCount(ctx, target, cutoff)
}

func (m *mockRetentionRepo) DeleteCandidates(ctx context.Context, target repository.RetentionTarget, cutoff time.Time) (int64, error) {
	m.deleteCalls = append(m.deleteCalls, target.Table)
	return m.mockDelete(ctx, target, cutoff)
}

func newRetentionServiceForTest(repo *mockRetentionRepo, auditRepo *mockAuditRepo) *RetentionService {
	logger.Setup("test")
	cfg := &config.Config{
		NotificationRetentionDays: 180,
		RefreshTokenRetentionDays: 30,
		OrderRetentionDays:        2555,
	}
	return NewRetentionService(repo, NewAuditService(auditRepo), cfg)
}

func TestRetentionService_Run_DryRunNeverDeletes(t *testing.T) {
	repo := &mockRetentionRepo{}
	auditRepo := &mockAuditRepo{}
	service := newRetentionServiceForTest(repo, auditRepo)

	repo.mockCount = func(ctx context.Context, target repository.RetentionTarget, cutoff time.Time) (int64, error) {
		return 17, nil
	}

	actorID := uint(42)
	result, err := service.Run(context.Background(), RunOptions{DryRun: true, ActorID: &actorID})
	assert.NoError(t, err)
	assert.True(t, result.DryRun)
	assert.Len(t, result.Tables, 3)
	for _, table := range result.Tables {
		assert.Equal(t, int64(17), table.CandidateCount)
		assert.Zero(t, table.DeletedCount)
		assert.Nil(t, table.Error)
	}
	assert.Empty(t, repo.deleteCalls)

	assert.Len(t, auditRepo.entries, 1)
	assert.Equal(t, models.AuditRetentionPreview, auditRepo.entries[0].Action)
	assert.Equal(t, uint(42), *auditRepo.entries[0].ActorID)
}

func TestRetentionService_Run_DeletesPastCutoff(t *testing.T) {
	repo := &mockRetentionRepo{}
	auditRepo := &mockAuditRepo{}
	service := newRetentionServiceForTest(repo, auditRepo)

	repo.mockCount = func(ctx context.Context, target repository.RetentionTarget, cutoff time.Time) (int64, error) {
		return 8, nil
	}
	repo.mockDelete = func(ctx context.Context, target repository.RetentionTarget, cutoff time.Time) (int64, error) {
		return 8, nil
	}

	reason := "quarterly cleanup"
	actorID := uint(42)
	result, err := service.Run(context.Background(), RunOptions{ActorID: &actorID, Reason: &reason})
	assert.NoError(t, err)
	assert.False(t, result.DryRun)
	assert.Len(t, repo.deleteCalls, 3)
	for _, table := range result.Tables {
		assert.Equal(t, int64(8), table.DeletedCount)
	}

	assert.Len(t, auditRepo.entries, 1)
	assert.Equal(t, models.AuditRetentionRun, auditRepo.entries[0].Action)
	assert.Equal(t, "quarterly cleanup", auditRepo.entries[0].Meta["reason"])
}

func TestRetentionService_Run_SkipsDeleteWhenNoCandidates(t *testing.T) {
	repo := &mockRetentionRepo{}
	auditRepo := &mockAuditRepo{}
	service := newRetentionServiceForTest(repo, auditRepo)

	repo.mockCount = func(ctx context.Context, target repository.RetentionTarget, cutoff time.Time) (int64, error) {
		return 0, nil
	}

	result, err := service.Run(context.Background(), RunOptions{})
	assert.NoError(t, err)
	assert.Empty(t, repo.deleteCalls)
	assert.Len(t, result.Tables, 3)
}

func TestRetentionService_Run_IsolatesTableFailures(t *testing.T) {
	repo := &mockRetentionRepo{}
	auditRepo := &mockAuditRepo{}
	service := newRetentionServiceForTest(repo, auditRepo)

	repo.mockCount = func(ctx context.Context, target repository.RetentionTarget, cutoff time.Time) (int64, error) {
		if target.Table == "notifications" {
			return 0, errors.New("relation locked")
		}
		return 4, nil
	}
	repo.mockDelete = func(ctx context.Context, target repository.RetentionTarget, cutoff time.Time) (int64, error) {
		return 4, nil
	}

	result, err := service.Run(context.Background(), RunOptions{})
	assert.NoError(t, err)
	assert.Len(t, result.Tables, 3)

	assert.NotNil(t, result.Tables[0].Error)
	assert.Equal(t, "notifications", result.Tables[0].Table)

	// Remaining tables still processed
	assert.Nil(t, result.Tables[1].Error)
	assert.Nil(t, result.Tables[2].Error)
	assert.Equal(t, []string{"refresh_tokens", "orders"}, repo.deleteCalls)
}

func TestRetentionService_Run_NeverTargetsAuditLog(t *testing.T) {
	repo := &mockRetentionRepo{}
	auditRepo := &mockAuditRepo{}
	service := newRetentionServiceForTest(repo, auditRepo)

	repo.mockCount = func(ctx context.Context, target repository.RetentionTarget, cutoff time.Time) (int64, error) {
		assert.NotEqual(t, "audit_logs", target.Table)
		return 0, nil
	}

	result, err := service.Run(context.Background(), RunOptions{DryRun: true})
	assert.NoError(t, err)
	for _, table := range result.Tables {
		assert.NotEqual(t, "audit_logs", table.Table)
	}
}

func TestRetentionService_OrdersGuardExcludesLegalHold(t *testing.T) {
	repo := &mockRetentionRepo{}
	auditRepo := &mockAuditRepo{}
	service := newRetentionServiceForTest(repo, auditRepo)

	var ordersGuard string
	repo.mockCount = func(ctx context.Context, target repository.RetentionTarget, cutoff time.Time) (int64, error) {
		if target.Table == "orders" {
			ordersGuard = target.Guard
		}
		return 0, nil
	}

	_, err := service.Run(context.Background(), RunOptions{DryRun: true})
	assert.NoError(t, err)
	assert.Contains(t, ordersGuard, "legal_hold = FALSE")
	assert.Contains(t, ordersGuard, "status = 'delivered'")
}
