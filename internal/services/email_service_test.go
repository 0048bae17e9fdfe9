package services

import (
	"context"
	"testing"
	"time"

	"github.com/fleuri/fleuri-api/internal/config"
	"github.com/fleuri/fleuri-api/internal/models"
	"github.com/fleuri/fleuri-api/pkg/logger"
	"github.com/stretchr/testify/assert"
)

func TestEmailService_SkipsWhenResendNotConfigured(t *testing.T) {
	logger.Setup("test")

	cfg := &config.Config{ResendAPIKey: ""}
	service := NewEmailService(cfg)
	user := &models.User{ID: 1, Email: "seller@example.com", FullName: "Test Seller"}

	// Without an API key the send is logged and skipped, never an error
	err := service.SendRecoveryCode(context.Background(), user, "482913")
	assert.Nil(t, err)

	err = service.SendAccountCreated(context.Background(), user)
	assert.Nil(t, err)
}

func TestEmailService_renderTemplate(t *testing.T) {
	logger.Setup("test")

	cfg := &config.Config{ResendAPIKey: ""}
	service := NewEmailService(cfg)

	body, err := service.renderTemplate("reset_code.html", struct {
		Name    string
		Code    string
		Minutes int
	}{Name: "Test Seller", Code: "482913", Minutes: 15})
	assert.NoError(t, err)
	assert.Contains(t, body, "482913")
	assert.Contains(t, body, "Test Seller")

	body, err = service.renderTemplate("commission_decision.html", struct {
		Name        string
		ChangeID    uint
		Status      string
		PctBps      int
		EffectiveAt string
		AppURL      string
	}{
		Name:        "Test Admin",
		ChangeID:    7,
		Status:      models.CommissionStatusApproved,
		PctBps:      1250,
		EffectiveAt: time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC).Format("2006-01-02"),
		AppURL:      "https://app.fleuri.app",
	})
	assert.NoError(t, err)
	assert.Contains(t, body, "approved")
	assert.Contains(t, body, "1250")

	_, err = service.renderTemplate("missing.html", nil)
	assert.Error(t, err)
}
