package repository

import (
	"gorm.io/gorm"
)

// Repositories holds all repository instances
type Repositories struct {
	User         UserRepository
	Product      ProductRepository
	Order        OrderRepository
	Payout       PayoutRepository
	Commission   CommissionRepository
	Audit        AuditRepository
	Notification NotificationRepository
	RefreshToken RefreshTokenRepository
	Retention    RetentionRepository
}

// NewRepositories creates all repository instances
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		User:         NewUserRepository(db),
		Product:      NewProductRepository(db),
		Order:        NewOrderRepository(db),
		Payout:       NewPayoutRepository(db),
		Commission:   NewCommissionRepository(db),
		Audit:        NewAuditRepository(db),
		Notification: NewNotificationRepository(db),
		RefreshToken: NewRefreshTokenRepository(db),
		Retention:    NewRetentionRepository(db),
	}
}
