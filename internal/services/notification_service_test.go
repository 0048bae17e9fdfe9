package services

import (
	"context"
	"testing"

	"github.com/fleuri/fleuri-api/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestNotificationService_NotifyOrderPlaced_TargetsSeller(t *testing.T) {
	repo := &mockNotificationRepo{}
	service := NewNotificationService(repo, &mockUserRepo{})

	order := &models.Order{ID: 7, BuyerID: 2, SellerID: 5, Quantity: 3}
	product := &models.Product{ID: 9, SellerID: 5, Name: "Peony Bouquet"}

	err := service.NotifyOrderPlaced(context.Background(), order, product)
	assert.NoError(t, err)
	assert.Len(t, repo.created, 1)
	assert.Equal(t, uint(5), repo.created[0].UserID)
	assert.Equal(t, models.NotificationTypeOrderPlaced, *repo.created[0].NotificationType)
	assert.Contains(t, repo.created[0].Message, "Peony Bouquet")
}

func TestNotificationService_NotifyPayoutFailed_CarriesReason(t *testing.T) {
	repo := &mockNotificationRepo{}
	service := NewNotificationService(repo, &mockUserRepo{})

	payout := &models.Payout{ID: 3, SellerID: 5, AmountCents: 12500, Currency: "EUR"}

	err := service.NotifyPayoutFailed(context.Background(), payout, "bank account closed")
	assert.NoError(t, err)
	assert.Len(t, repo.created, 1)
	assert.Equal(t, uint(5), repo.created[0].UserID)
	assert.Equal(t, models.NotificationTypePayoutFailed, *repo.created[0].NotificationType)
	assert.Contains(t, repo.created[0].Message, "bank account closed")
}

func TestNotificationService_NotifyCommissionDecision(t *testing.T) {
	repo := &mockNotificationRepo{}
	service := NewNotificationService(repo, &mockUserRepo{})

	change := &models.CommissionRateChange{ID: 4, PctBps: 1250, Status: models.CommissionStatusApproved}

	err := service.NotifyCommissionDecision(context.Background(), 42, change, true)
	assert.NoError(t, err)
	assert.Len(t, repo.created, 1)
	assert.Equal(t, uint(42), repo.created[0].UserID)
	assert.Equal(t, "Commission change approved", repo.created[0].Title)
	assert.Equal(t, models.NotificationTypeCommissionApproved, *repo.created[0].NotificationType)
}
