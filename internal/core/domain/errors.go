package domain

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by a service wraps exactly one of these.
var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("resource not found")
	ErrConflict     = errors.New("duplicate entry")
	ErrBadRequest   = errors.New("invalid input")
	ErrUpstream     = errors.New("upstream unavailable")
)

// Auth errors
var (
	ErrInvalidCredentials = fmt.Errorf("%w: Invalid credentials", ErrBadRequest)
	ErrTokenMissing       = fmt.Errorf("%w: No token, authorization denied", ErrUnauthorized)
	ErrTokenExpired       = fmt.Errorf("%w: Token has expired", ErrUnauthorized)
	ErrTokenInvalid       = fmt.Errorf("%w: Invalid token", ErrUnauthorized)
	ErrInsufficientRole   = fmt.Errorf("%w: Access denied. Insufficient role.", ErrForbidden)
	ErrAdminRequired      = fmt.Errorf("%w: Access denied. Admin role required.", ErrForbidden)
)

// User errors
var (
	ErrUserNotFound      = fmt.Errorf("%w: User not found", ErrNotFound)
	ErrUserAlreadyExists = fmt.Errorf("%w: User already exists", ErrConflict)
	ErrEmailInUse        = fmt.Errorf("%w: Email already in use", ErrConflict)
	ErrCannotDeleteSelf  = fmt.Errorf("%w: Cannot delete your own account", ErrForbidden)
	ErrInvalidUserID     = fmt.Errorf("%w: Invalid user ID", ErrBadRequest)
)

// Equipment errors
var (
	ErrEquipmentNotFound  = fmt.Errorf("%w: Equipment not found", ErrNotFound)
	ErrInvalidEquipmentID = fmt.Errorf("%w: Invalid equipment ID", ErrBadRequest)
	ErrSerialExists       = fmt.Errorf("%w: Serial Number already exists. Please use a unique serial number.", ErrConflict)
	ErrCategoryRequired   = fmt.Errorf("%w: Category is required", ErrBadRequest)
	ErrAssetTagConflict   = fmt.Errorf("%w: Could not allocate a unique asset ID. Please try again.", ErrConflict)
)

// Password reset errors
var (
	ErrNoAccountForEmail = fmt.Errorf("%w: No account found with that email address.", ErrNotFound)
	ErrResetTokenInvalid = fmt.Errorf("%w: Invalid or expired reset token", ErrBadRequest)
	ErrResetTokenExpired = fmt.Errorf("%w: Reset token has expired", ErrBadRequest)
	ErrResetTokenForeign = fmt.Errorf("%w: Invalid token for this email address", ErrBadRequest)
	ErrResetEmailNotSent = fmt.Errorf("%w: Failed to send reset email. Please try again later.", ErrUpstream)
	ErrMailNotConfigured = fmt.Errorf("%w: SMTP credentials not configured", ErrUpstream)
	ErrPasswordTooShort  = fmt.Errorf("%w: Password must be at least 6 characters", ErrBadRequest)
)

// Message returns the user-facing part of a wrapped error,
// e.g. "Invalid credentials" for ErrInvalidCredentials.
func Message(err error) string {
	for _, kind := range []error{ErrUnauthorized, ErrForbidden, ErrNotFound, ErrConflict, ErrBadRequest, ErrUpstream} {
		prefix := kind.Error() + ": "
		if msg := err.Error(); len(msg) > len(prefix) && msg[:len(prefix)] == prefix {
			return msg[len(prefix):]
		}
	}
	return err.Error()
}
