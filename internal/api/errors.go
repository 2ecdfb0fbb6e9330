package api

import (
	"errors"
	"net/http"

	"github.com/tnguyen/storefront/internal/api/shared"
	"github.com/tnguyen/storefront/internal/service"
	"github.com/tnguyen/storefront/internal/store"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Not found errors
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	// Conflict errors
	case errors.Is(err, store.ErrDuplicate):
		return http.StatusConflict

	// Bad request errors
	case errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, store.ErrInvalidField):
		return http.StatusBadRequest

	// Default: internal server error
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	case errors.Is(err, store.ErrUserNotFound):
		return "User not found"

	case errors.Is(err, store.ErrProductNotFound):
		return "Product not found"

	case errors.Is(err, store.ErrNotFound):
		return "Resource not found"

	case errors.Is(err, store.ErrEmailExists):
		return "Email already exists"

	case errors.Is(err, store.ErrDuplicate):
		return "Resource already exists"

	case errors.Is(err, store.ErrInvalidField):
		return "Invalid field in request"

	case errors.Is(err, store.ErrInvalidEntity):
		return "Invalid request data"

	default:
		return "An unexpected error occurred"
	}
}

// HandleServiceError writes the enveloped response for a service failure,
// logging the raw error and sending only the sanitized message. Bulk
// NotFound errors name the missing IDs: that list is part of the
// bulk-operation contract and safe to expose.
func HandleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status := MapErrorToStatusCode(err)

	var missing *service.MissingIDsError
	if errors.As(err, &missing) {
		shared.RespondWithError(w, r, status, missing.Error(),
			map[string]any{"missingIds": missing.IDs})
		return
	}

	shared.RespondWithErrorAndLog(w, r, status, GetSafeErrorMessage(err), err)
}
