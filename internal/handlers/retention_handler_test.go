package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fleuri/fleuri-api/internal/config"
	"github.com/fleuri/fleuri-api/internal/models"
	"github.com/fleuri/fleuri-api/internal/repository"
	"github.com/fleuri/fleuri-api/internal/services"
	"github.com/fleuri/fleuri-api/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

type stubRetentionRepo struct {
	deleteCalls int
}

func (s *stubRetentionRepo) CountCandidates(ctx context.Context, target repository.RetentionTarget, cutoff time.Time) (int64, error) {
	return 4, nil
}

func (s *stubRetentionRepo) DeleteCandidates(ctx context.Context, target repository.RetentionTarget, cutoff time.Time) (int64, error) {
	s.deleteCalls++
	return 4, nil
}

type stubAuditRepo struct {
	repository.AuditRepository
}

func (s *stubAuditRepo) Create(ctx context.Context, entry *models.AuditLog) error {
	return nil
}

func (s *stubAuditRepo) FindLatest(ctx context.Context) (*models.AuditLog, error) {
	return nil, gorm.ErrRecordNotFound
}

func newRetentionTestRouter(repo *stubRetentionRepo) *gin.Engine {
	gin.SetMode(gin.TestMode)
	logger.Setup("test")

	cfg := &config.Config{
		NotificationRetentionDays: 180,
		RefreshTokenRetentionDays: 30,
		OrderRetentionDays:        2555,
	}
	svc := services.NewRetentionService(repo, services.NewAuditService(&stubAuditRepo{}), cfg)
	h := NewRetentionHandler(svc)

	r := gin.New()
	r.GET("/admin/retention/preview", h.Preview)
	r.POST("/admin/retention/run", h.Run)
	return r
}

type retentionEnvelope struct {
	OK        bool                  `json:"ok"`
	Retention *services.PurgeResult `json:"retention"`
}

func postRetentionRun(t *testing.T, router *gin.Engine, body string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/admin/retention/run", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	return w
}

func TestRetentionHandler_Run_ReasonIsOptional(t *testing.T) {
	repo := &stubRetentionRepo{}
	router := newRetentionTestRouter(repo)

	w := postRetentionRun(t, router, `{"dry_run": true}`)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp retentionEnvelope
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.OK)
	assert.NotNil(t, resp.Retention)
	assert.True(t, resp.Retention.DryRun)
	assert.Len(t, resp.Retention.Tables, 3)
	assert.Equal(t, 0, repo.deleteCalls)
}

func TestRetentionHandler_Run_ShortReasonRejected(t *testing.T) {
	repo := &stubRetentionRepo{}
	router := newRetentionTestRouter(repo)

	w := postRetentionRun(t, router, `{"dry_run": true, "reason": "ab"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 0, repo.deleteCalls)
}

func TestRetentionHandler_Run_DestructiveWithReason(t *testing.T) {
	repo := &stubRetentionRepo{}
	router := newRetentionTestRouter(repo)

	w := postRetentionRun(t, router, `{"reason": "quarterly cleanup"}`)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp retentionEnvelope
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.OK)
	assert.False(t, resp.Retention.DryRun)
	assert.Equal(t, 3, repo.deleteCalls)
}

func TestRetentionHandler_Preview_NeverDeletes(t *testing.T) {
	repo := &stubRetentionRepo{}
	router := newRetentionTestRouter(repo)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/admin/retention/preview", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp retentionEnvelope
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.OK)
	assert.True(t, resp.Retention.DryRun)
	assert.Equal(t, 0, repo.deleteCalls)
}
