package services

import (
	"context"
	"strings"
	"testing"

	"github.com/fleuri/fleuri-api/internal/models"
	"github.com/fleuri/fleuri-api/internal/repository"
	"github.com/fleuri/fleuri-api/internal/storage"
	"github.com/fleuri/fleuri-api/pkg/logger"
	"github.com/stretchr/testify/assert"
)

func newComplianceServiceForTest(t *testing.T, auditRepo *mockAuditRepo) *ComplianceService {
	t.Helper()
	logger.Setup("test")
	store, err := storage.NewLocalStorage(t.TempDir())
	assert.NoError(t, err)
	return NewComplianceService(NewAuditService(auditRepo), store)
}

func seedAuditEntries(repo *mockAuditRepo, n int) {
	service := NewAuditService(repo)
	actorID := uint(42)
	for i := 0; i < n; i++ {
		service.Log(context.Background(), AuditEntry{
			ActorID: &actorID,
			Action:  models.AuditCommissionChangeApproved,
			Entity:  "CommissionRateChange",
			Message: "commission rate change approved",
		})
	}
}

func TestComplianceService_Export_CSV(t *testing.T) {
	auditRepo := &mockAuditRepo{}
	service := newComplianceServiceForTest(t, auditRepo)
	seedAuditEntries(auditRepo, 3)

	data, filename, err := service.Export(context.Background(), "csv", repository.NewListQuery(), 42)
	assert.NoError(t, err)
	assert.True(t, strings.HasPrefix(filename, "audit_trail_"))
	assert.True(t, strings.HasSuffix(filename, ".csv"))

	body := string(data)
	assert.Contains(t, body, "Entry Hash")
	assert.Contains(t, body, models.AuditCommissionChangeApproved)

	// The export itself lands in the audit trail
	last := auditRepo.entries[len(auditRepo.entries)-1]
	assert.Equal(t, models.AuditComplianceExported, last.Action)
	assert.Equal(t, "csv", last.Meta["format"])
}

func TestComplianceService_Export_UnsupportedFormat(t *testing.T) {
	auditRepo := &mockAuditRepo{}
	service := newComplianceServiceForTest(t, auditRepo)

	data, _, err := service.Export(context.Background(), "docx", repository.NewListQuery(), 42)
	assert.Nil(t, data)
	assert.ErrorIs(t, err, ErrConflict)
}

func TestComplianceService_Export_XLSX(t *testing.T) {
	auditRepo := &mockAuditRepo{}
	service := newComplianceServiceForTest(t, auditRepo)
	seedAuditEntries(auditRepo, 2)

	data, filename, err := service.Export(context.Background(), "xlsx", repository.NewListQuery(), 42)
	assert.NoError(t, err)
	assert.NotEmpty(t, data)
	assert.True(t, strings.HasSuffix(filename, ".xlsx"))
}

func TestComplianceService_Export_PDF(t *testing.T) {
	auditRepo := &mockAuditRepo{}
	service := newComplianceServiceForTest(t, auditRepo)
	seedAuditEntries(auditRepo, 2)

	data, filename, err := service.Export(context.Background(), "pdf", repository.NewListQuery(), 42)
	assert.NoError(t, err)
	assert.True(t, strings.HasSuffix(filename, ".pdf"))
	assert.True(t, strings.HasPrefix(string(data), "%PDF"))
}

func TestComplianceService_VerifyChain_Delegates(t *testing.T) {
	auditRepo := &mockAuditRepo{}
	service := newComplianceServiceForTest(t, auditRepo)
	seedAuditEntries(auditRepo, 4)

	result, err := service.VerifyChain(context.Background())
	assert.NoError(t, err)
	assert.True(t, result.Valid)
	assert.Equal(t, 4, result.Entries)
}
