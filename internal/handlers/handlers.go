package handlers

import (
	"errors"
	"net/http"

	"github.com/fleuri/fleuri-api/internal/services"
	"github.com/fleuri/fleuri-api/pkg/logger"
	"github.com/gin-gonic/gin"
)

// Handlers holds all handler instances
type Handlers struct {
	Health       *HealthHandler
	Auth         *AuthHandler
	User         *UserHandler
	Product      *ProductHandler
	Order        *OrderHandler
	Payout       *PayoutHandler
	Commission   *CommissionHandler
	Retention    *RetentionHandler
	Audit        *AuditHandler
	Notification *NotificationHandler
	Job          *JobHandler
}

// NewHandlers creates all handler instances
func NewHandlers(svcs *services.Services) *Handlers {
	return &Handlers{
		Health:       NewHealthHandler(),
		Auth:         NewAuthHandler(svcs.Auth),
		User:         NewUserHandler(svcs.User),
		Product:      NewProductHandler(svcs.Product),
		Order:        NewOrderHandler(svcs.Order),
		Payout:       NewPayoutHandler(svcs.Payout),
		Commission:   NewCommissionHandler(svcs.Commission),
		Retention:    NewRetentionHandler(svcs.Retention),
		Audit:        NewAuditHandler(svcs.Audit, svcs.Compliance),
		Notification: NewNotificationHandler(svcs.Notification),
		Job:          NewJobHandler(svcs.Job),
	}
}

// respondError maps service-layer errors to HTTP status codes so every
// handler reports the same failure the same way.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Resource not found"})
	case errors.Is(err, services.ErrSecondPersonRequired):
		c.JSON(http.StatusConflict, gin.H{"error": "Approval requires a second admin: the requester cannot approve their own change"})
	case errors.Is(err, services.ErrRetryViaApproval):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Direct retry is disabled; request approval so a second admin can re-process this payout"})
	case errors.Is(err, services.ErrConflict), errors.Is(err, services.ErrInvalidState), errors.Is(err, services.ErrDuplicate):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrUnauthorized), errors.Is(err, services.ErrInvalidPassword):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "You do not have access to this resource"})
	default:
		// internal detail stays in logs and Sentry, never in the response
		logger.Error("request failed", "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
