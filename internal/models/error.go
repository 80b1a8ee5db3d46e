package models

import (
	"errors"
	"fmt"
)

// ==============================================
// CUSTOM ERROR TYPES
// ==============================================

// AppError represents a structured application error
type AppError struct {
	Code    string // Error code for client
	Message string // Human-readable message
	Err     error  // Underlying error (for logging)
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new AppError
func NewAppError(code, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// ==============================================
// PREDEFINED ERRORS
// ==============================================

// Validation errors. Always surfaced to the caller with a specific message.
var (
	ErrIdentifierRequired = errors.New("identifier is required")
	ErrPasswordMismatch   = errors.New("password confirmation does not match")
	ErrPasswordTooShort   = errors.New("password is too short")
)

// Account errors. ErrUserNotFound is internal only on the issue/verify paths:
// the HTTP layer must never let callers distinguish it from a wrong code.
var (
	ErrUserNotFound    = errors.New("user not found")
	ErrAccountInactive = errors.New("account is inactive")
)

// Reset code errors
var (
	ErrCodeInvalid = errors.New("invalid reset code")
	ErrCodeExpired = errors.New("reset code has expired")
	ErrCodeUsed    = errors.New("reset code already used")
)

// Delivery errors
var (
	ErrEmailDelivery = errors.New("failed to deliver email")
)

// ==============================================
// ERROR CODES (for API responses)
// ==============================================
const (
	ErrCodeValidationFailed = "VALIDATION_FAILED"
	ErrCodeResetInvalid     = "RESET_CODE_INVALID"
	ErrCodeResetExpired     = "RESET_CODE_EXPIRED"
	ErrCodeResetUsed        = "RESET_CODE_USED"
	ErrCodeNotFound         = "NOT_FOUND"
	ErrCodeEmailDelivery    = "EMAIL_DELIVERY_FAILED"
	ErrCodeInternalError    = "INTERNAL_ERROR"
)

// ==============================================
// HELPER FUNCTIONS
// ==============================================

// IsValidationError checks if error is validation-related
func IsValidationError(err error) bool {
	return errors.Is(err, ErrIdentifierRequired) ||
		errors.Is(err, ErrPasswordMismatch) ||
		errors.Is(err, ErrPasswordTooShort)
}

// IsCodeError checks if error belongs to the reset-code taxonomy
func IsCodeError(err error) bool {
	return errors.Is(err, ErrCodeInvalid) ||
		errors.Is(err, ErrCodeExpired) ||
		errors.Is(err, ErrCodeUsed)
}
