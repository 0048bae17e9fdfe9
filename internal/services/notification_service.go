package services

import (
	"context"
	"fmt"

	"github.com/fleuri/fleuri-api/internal/models"
	"github.com/fleuri/fleuri-api/internal/repository"
)

type NotificationService struct {
	repo     repository.NotificationRepository
	userRepo repository.UserRepository
}

func NewNotificationService(repo repository.NotificationRepository, userRepo repository.UserRepository) *NotificationService {
	return &NotificationService{repo: repo, userRepo: userRepo}
}

func (s *NotificationService) FindByID(ctx context.Context, id uint) (*models.Notification, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *NotificationService) FindByUser(ctx context.Context, userID uint, query *repository.ListQuery) ([]models.Notification, int64, error) {
	return s.repo.FindByUser(ctx, userID, query)
}

func (s *NotificationService) Create(ctx context.Context, notification *models.Notification) error {
	return s.repo.Create(ctx, notification)
}

func (s *NotificationService) MarkAsRead(ctx context.Context, id uint) error {
	notification, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	notification.MarkAsRead()
	return s.repo.Update(ctx, notification)
}

func (s *NotificationService) MarkAllAsRead(ctx context.Context, userID uint) error {
	return s.repo.MarkAllAsRead(ctx, userID)
}

func (s *NotificationService) Delete(ctx context.Context, id uint) error {
	return s.repo.Delete(ctx, id)
}

func (s *NotificationService) NotifyUser(ctx context.Context, userID uint, title, message, notifType string) error {
	notification := &models.Notification{
		UserID:           userID,
		Title:            title,
		Message:          message,
		NotificationType: &notifType,
	}
	return s.repo.Create(ctx, notification)
}

func (s *NotificationService) NotifyAdmins(ctx context.Context, title, message, notifType string) error {
	admins, err := s.userRepo.FindAdmins(ctx)
	if err != nil {
		return err
	}
	for _, admin := range admins {
		notification := &models.Notification{
			UserID:           admin.ID,
			Title:            title,
			Message:          message,
			NotificationType: &notifType,
		}
		s.repo.Create(ctx, notification)
	}
	return nil
}

// NotifyOrderPlaced tells the seller their stock moved
func (s *NotificationService) NotifyOrderPlaced(ctx context.Context, order *models.Order, product *models.Product) error {
	return s.NotifyUser(ctx, product.SellerID,
		"New Order",
		fmt.Sprintf("New order #%d: %d x %s", order.ID, order.Quantity, product.Name),
		models.NotificationTypeOrderPlaced)
}

// NotifyOrderDelivered tells the buyer their order arrived
func (s *NotificationService) NotifyOrderDelivered(ctx context.Context, order *models.Order) error {
	return s.NotifyUser(ctx, order.BuyerID,
		"Order Delivered",
		fmt.Sprintf("Your order #%d has been delivered", order.ID),
		models.NotificationTypeOrderDelivered)
}

// NotifyPayoutRequested fans out to every admin so a second pair of eyes
// can pick the payout up.
func (s *NotificationService) NotifyPayoutRequested(ctx context.Context, payout *models.Payout) error {
	return s.NotifyAdmins(ctx, "Payout requested",
		fmt.Sprintf("Seller #%d requested a payout of %d %s cents.", payout.SellerID, payout.AmountCents, payout.Currency),
		models.NotificationTypePayoutRequested)
}

// NotifyPayoutPaid tells the seller the transfer settled
func (s *NotificationService) NotifyPayoutPaid(ctx context.Context, payout *models.Payout) error {
	return s.NotifyUser(ctx, payout.SellerID, "Payout paid",
		fmt.Sprintf("Your payout of %d %s cents has been paid out.", payout.AmountCents, payout.Currency),
		models.NotificationTypePayoutPaid)
}

// NotifyPayoutFailed tells the seller the transfer bounced
func (s *NotificationService) NotifyPayoutFailed(ctx context.Context, payout *models.Payout, reason string) error {
	return s.NotifyUser(ctx, payout.SellerID, "Payout failed",
		fmt.Sprintf("Your payout of %d %s cents failed: %s", payout.AmountCents, payout.Currency, reason),
		models.NotificationTypePayoutFailed)
}

// NotifyCommissionDecision tells the requesting admin how the review went
func (s *NotificationService) NotifyCommissionDecision(ctx context.Context, requesterID uint, change *models.CommissionRateChange, approved bool) error {
	notifType := models.NotificationTypeCommissionRejected
	title := "Commission change rejected"
	if approved {
		notifType = models.NotificationTypeCommissionApproved
		title = "Commission change approved"
	}
	return s.NotifyUser(ctx, requesterID, title,
		fmt.Sprintf("Your commission rate change #%d (%d bps) has been %s.", change.ID, change.PctBps, change.Status),
		notifType)
}
