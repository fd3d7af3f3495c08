// Package handlers holds what the per-resource handler packages share:
// the mapping from workflow error kinds to HTTP status codes.
package handlers

import (
	"errors"
	"net/http"

	"github.com/aanand-mishra/student-records/internal/records"
)

// StatusFor picks the HTTP status for a workflow error.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, records.ErrValidation),
		errors.Is(err, records.ErrInvalidCredentials),
		errors.Is(err, records.ErrSamePassword),
		errors.Is(err, records.ErrInvalidFile):
		return http.StatusBadRequest
	case errors.Is(err, records.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, records.ErrDuplicate):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
