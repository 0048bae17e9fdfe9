package services

import "errors"

// Common service errors
var (
	ErrNotFound            = errors.New("record not found")
	ErrInvalidPassword     = errors.New("invalid password")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrForbidden           = errors.New("forbidden")
	ErrConflict            = errors.New("conflict with current state")
	ErrInvalidState        = errors.New("invalid state transition")
	ErrDuplicate           = errors.New("duplicate record")
	ErrInvalidRecoveryCode = errors.New("invalid or expired recovery code")

	// ErrSecondPersonRequired is returned when the admin approving a
	// financial change is the same admin who requested it
	ErrSecondPersonRequired = errors.New("second-person approval required")

	// ErrRetryViaApproval is returned by every payout retry attempt:
	// failed payouts can only be re-triggered through the approval flow
	ErrRetryViaApproval = errors.New("direct retry is disabled: request approval from a second administrator instead")
)
