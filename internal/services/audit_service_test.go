package services

import (
	"context"
	"testing"
	"time"

	"github.com/fleuri/fleuri-api/internal/models"
	"github.com/fleuri/fleuri-api/internal/repository"
	"github.com/fleuri/fleuri-api/pkg/logger"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

type mockAuditRepo struct {
	repository.AuditRepository
	entries   []models.AuditLog
	createErr error
}

func (m *mockAuditRepo) Create(ctx context.Context, entry *models.AuditLog) error {
	if m.createErr != nil {
		return m.createErr
	}
	entry.ID = uint(len(m.entries) + 1)
	m.entries = append(m.entries, *entry)
	return nil
}

func (m *mockAuditRepo) FindLatest(ctx context.Context) (*models.AuditLog, error) {
	if len(m.entries) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	latest := m.entries[len(m.entries)-1]
	return &latest, nil
}

func (m *mockAuditRepo) FindAllChained(ctx context.Context) ([]models.AuditLog, error) {
	return m.entries, nil
}

func (m *mockAuditRepo) List(ctx context.Context, query *repository.ListQuery) ([]models.AuditLog, int64, error) {
	return m.entries, int64(len(m.entries)), nil
}

func TestAuditService_Log_FirstEntryHasNoPrevHash(t *testing.T) {
	logger.Setup("test")
	repo := &mockAuditRepo{}
	service := NewAuditService(repo)

	actorID := uint(1)
	service.Log(context.Background(), AuditEntry{
		ActorID: &actorID,
		Action:  models.AuditCommissionChangeRequested,
		Entity:  "CommissionRateChange",
		Message: "commission rate change requested",
	})

	assert.Len(t, repo.entries, 1)
	assert.Nil(t, repo.entries[0].PrevHash)
	assert.Len(t, repo.entries[0].EntryHash, 64)
}

func TestAuditService_Log_LinksToPreviousEntry(t *testing.T) {
	logger.Setup("test")
	repo := &mockAuditRepo{}
	service := NewAuditService(repo)

	actorID := uint(1)
	service.Log(context.Background(), AuditEntry{
		ActorID: &actorID,
		Action:  models.AuditPayoutApprovalRequested,
		Entity:  "Payout",
	})
	service.Log(context.Background(), AuditEntry{
		ActorID: &actorID,
		Action:  models.AuditPayoutApproved,
		Entity:  "Payout",
	})

	assert.Len(t, repo.entries, 2)
	assert.NotNil(t, repo.entries[1].PrevHash)
	assert.Equal(t, repo.entries[0].EntryHash, *repo.entries[1].PrevHash)
	assert.NotEqual(t, repo.entries[0].EntryHash, repo.entries[1].EntryHash)
}

func TestAuditService_Log_SwallowsWriteFailure(t *testing.T) {
	logger.Setup("test")
	repo := &mockAuditRepo{createErr: gorm.ErrInvalidDB}
	service := NewAuditService(repo)

	// Must not panic and must not block the caller
	service.Log(context.Background(), AuditEntry{
		Action: models.AuditRetentionRun,
		Entity: "Retention",
	})

	assert.Empty(t, repo.entries)
}

func TestAuditService_VerifyChain_ValidChain(t *testing.T) {
	logger.Setup("test")
	repo := &mockAuditRepo{}
	service := NewAuditService(repo)

	actorID := uint(7)
	for i := 0; i < 5; i++ {
		service.Log(context.Background(), AuditEntry{
			ActorID: &actorID,
			Action:  models.AuditOrderLegalHoldSet,
			Entity:  "Order",
			Meta:    models.JSONMap{"reason": "dispute"},
		})
	}

	result, err := service.VerifyChain(context.Background())
	assert.NoError(t, err)
	assert.True(t, result.Valid)
	assert.Equal(t, 5, result.Entries)
	assert.Nil(t, result.BrokenAtID)
}

func TestAuditService_VerifyChain_DetectsTamperedEntry(t *testing.T) {
	logger.Setup("test")
	repo := &mockAuditRepo{}
	service := NewAuditService(repo)

	actorID := uint(7)
	for i := 0; i < 3; i++ {
		service.Log(context.Background(), AuditEntry{
			ActorID: &actorID,
			Action:  models.AuditPayoutRetryBlocked,
			Entity:  "Payout",
			Message: "direct payout retry blocked",
		})
	}

	// Rewrite a stored field after the fact
	repo.entries[1].Message = "payout retried successfully"

	result, err := service.VerifyChain(context.Background())
	assert.NoError(t, err)
	assert.False(t, result.Valid)
	assert.NotNil(t, result.BrokenAtID)
	assert.Equal(t, repo.entries[1].ID, *result.BrokenAtID)
	assert.Contains(t, result.Reason, "entry_hash")
}

func TestAuditService_VerifyChain_DetectsBrokenLinkage(t *testing.T) {
	logger.Setup("test")
	repo := &mockAuditRepo{}
	service := NewAuditService(repo)

	actorID := uint(7)
	for i := 0; i < 3; i++ {
		service.Log(context.Background(), AuditEntry{
			ActorID: &actorID,
			Action:  models.AuditUserDeleted,
			Entity:  "User",
		})
	}

	// Simulate a deleted row: drop the middle entry, leaving the third
	// entry's prev_hash pointing at a ghost
	repo.entries = append(repo.entries[:1], repo.entries[2])

	result, err := service.VerifyChain(context.Background())
	assert.NoError(t, err)
	assert.False(t, result.Valid)
	assert.NotNil(t, result.BrokenAtID)
	assert.Equal(t, "prev_hash does not reference the preceding entry", result.Reason)
}

func TestAuditService_VerifyChain_EmptyChainIsValid(t *testing.T) {
	repo := &mockAuditRepo{}
	service := NewAuditService(repo)

	result, err := service.VerifyChain(context.Background())
	assert.NoError(t, err)
	assert.True(t, result.Valid)
	assert.Equal(t, 0, result.Entries)
}

func TestComputeEntryHash_Deterministic(t *testing.T) {
	prev := "abc123"
	canonical, err := canonicalize(AuditEntry{
		Action:  models.AuditRetentionPreview,
		Entity:  "Retention",
		Message: "retention purge previewed",
	}, time.Date(2026, 3, 14, 9, 26, 53, 589793000, time.UTC))
	assert.NoError(t, err)

	first := ComputeEntryHash(&prev, canonical)
	second := ComputeEntryHash(&prev, canonical)
	assert.Equal(t, first, second)
	assert.NotEqual(t, first, ComputeEntryHash(nil, canonical))
}
