// Package apierror maps domain failures onto the JSON error envelope.
package apierror

import (
	"errors"
	"net/http"

	"github.com/fkhayef/studyhub/internal/domain"
	"github.com/fkhayef/studyhub/pkg/response"
)

// Status returns the HTTP status for a domain failure.
func Status(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotAuthenticated), errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrNotAuthorized):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrDuplicateEmail),
		errors.Is(err, domain.ErrAlreadyMember),
		errors.Is(err, domain.ErrGroupFull),
		errors.Is(err, domain.ErrCreatorCannotLeave),
		errors.Is(err, domain.ErrSessionCanceled):
		return http.StatusConflict
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrInvalidStatus):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Write sends err as an error response. Non-domain failures are reported
// with the fallback message so internals do not leak to clients.
func Write(w http.ResponseWriter, err error, fallback string) {
	status := Status(err)
	if status == http.StatusInternalServerError {
		response.InternalError(w, fallback)
		return
	}
	response.Error(w, status, domain.Code(err), err.Error())
}
