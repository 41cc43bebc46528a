package domain

import (
	"errors"
	"fmt"
)

// Common errors. Every mutation either succeeds or returns one of these
// (possibly wrapped); callers match them with errors.Is.
var (
	ErrNotAuthenticated   = errors.New("not authenticated")
	ErrNotAuthorized      = errors.New("not authorized to perform this action")
	ErrNotFound           = errors.New("not found")
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAlreadyMember      = errors.New("user is already a member of this group")
	ErrGroupFull          = errors.New("group is full")
	ErrInvalidStatus      = errors.New("invalid status")
	ErrInvalidInput       = errors.New("invalid input")
	ErrCreatorCannotLeave = errors.New("group creator cannot leave the group")
	ErrSessionCanceled    = errors.New("session is canceled")
)

// Entity-specific not-found errors; each one matches ErrNotFound as well.
var (
	ErrUserNotFound         = fmt.Errorf("user %w", ErrNotFound)
	ErrGroupNotFound        = fmt.Errorf("group %w", ErrNotFound)
	ErrSessionNotFound      = fmt.Errorf("session %w", ErrNotFound)
	ErrNotificationNotFound = fmt.Errorf("notification %w", ErrNotFound)
)

var codes = []struct {
	err  error
	code string
}{
	{ErrNotAuthenticated, "NOT_AUTHENTICATED"},
	{ErrNotAuthorized, "NOT_AUTHORIZED"},
	{ErrNotFound, "NOT_FOUND"},
	{ErrDuplicateEmail, "DUPLICATE_EMAIL"},
	{ErrInvalidCredentials, "INVALID_CREDENTIALS"},
	{ErrAlreadyMember, "ALREADY_MEMBER"},
	{ErrGroupFull, "GROUP_FULL"},
	{ErrInvalidStatus, "INVALID_STATUS"},
	{ErrInvalidInput, "INVALID_INPUT"},
	{ErrCreatorCannotLeave, "CREATOR_CANNOT_LEAVE"},
	{ErrSessionCanceled, "SESSION_CANCELED"},
}

// Code returns the failure tag for err, or "INTERNAL_ERROR" when err is not a
// domain failure.
func Code(err error) string {
	for _, c := range codes {
		if errors.Is(err, c.err) {
			return c.code
		}
	}
	return "INTERNAL_ERROR"
}

// Invalid builds an ErrInvalidInput carrying a field-specific reason.
func Invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
