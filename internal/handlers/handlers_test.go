package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fleuri/fleuri-api/internal/services"
	"github.com/fleuri/fleuri-api/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestRespondError_StatusMapping(t *testing.T) {
	gin.SetMode(gin.TestMode)
	logger.Setup("test")

	tests := []struct {
		name           string
		err            error
		expectedStatus int
	}{
		{"Not found", services.ErrNotFound, http.StatusNotFound},
		{"Second person required", services.ErrSecondPersonRequired, http.StatusConflict},
		{"Retry via approval", services.ErrRetryViaApproval, http.StatusBadRequest},
		{"Conflict", services.ErrConflict, http.StatusConflict},
		{"Invalid state", services.ErrInvalidState, http.StatusConflict},
		{"Duplicate", services.ErrDuplicate, http.StatusConflict},
		{"Unauthorized", services.ErrUnauthorized, http.StatusUnauthorized},
		{"Forbidden", services.ErrForbidden, http.StatusForbidden},
		{"Unknown error", errors.New("database on fire"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)

			respondError(c, tt.err)
			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}

func TestRespondError_WrappedErrorsStillMap(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	wrapped := errors.Join(errors.New("quantity must be at least 1"), services.ErrConflict)
	respondError(c, wrapped)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestRespondError_RetryMessagePointsAtApprovalFlow(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	respondError(c, services.ErrRetryViaApproval)
	assert.Contains(t, w.Body.String(), "second admin")
}
