package services

import (
	"github.com/fleuri/fleuri-api/internal/config"
	"github.com/fleuri/fleuri-api/internal/jobs"
	"github.com/fleuri/fleuri-api/internal/repository"
	"github.com/fleuri/fleuri-api/internal/storage"
)

// Services holds all service instances
type Services struct {
	Auth         *AuthService
	User         *UserService
	Product      *ProductService
	Order        *OrderService
	Payout       *PayoutService
	Commission   *CommissionService
	Audit        *AuditService
	Compliance   *ComplianceService
	Retention    *RetentionService
	Notification *NotificationService
	Email        *EmailService
	Job          *JobService
}

// NewServices creates all service instances
func NewServices(repos *repository.Repositories, worker *jobs.Worker, storage *storage.LocalStorage, cfg *config.Config) *Services {
	notificationSvc := NewNotificationService(repos.Notification, repos.User)
	emailSvc := NewEmailService(cfg)
	auditSvc := NewAuditService(repos.Audit)

	commissionSvc := NewCommissionService(repos.Commission, repos.User, notificationSvc, emailSvc, auditSvc, cfg)

	return &Services{
		Auth:         NewAuthService(repos.User, repos.RefreshToken, cfg),
		User:         NewUserService(repos.User, worker, emailSvc, auditSvc),
		Product:      NewProductService(repos.Product, repos.User, auditSvc),
		Order:        NewOrderService(repos.Order, repos.Product, repos.User, commissionSvc, notificationSvc, auditSvc),
		Payout:       NewPayoutService(repos.Payout, repos.User, notificationSvc, auditSvc),
		Commission:   commissionSvc,
		Audit:        auditSvc,
		Compliance:   NewComplianceService(auditSvc, storage),
		Retention:    NewRetentionService(repos.Retention, auditSvc, cfg),
		Notification: notificationSvc,
		Email:        emailSvc,
		Job:          NewJobService(worker),
	}
}
