package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/hospilock/hospilock-api/internal/audit"
	"github.com/hospilock/hospilock-api/internal/auth"
	"github.com/hospilock/hospilock-api/internal/lock"
)

// Error represents a structured error response.
type Error struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Common error codes.
const (
	ErrCodeBadRequest   = "bad_request"
	ErrCodeNotFound     = "not_found"
	ErrCodeUnauthorized = "unauthorised"
	ErrCodeForbidden    = "forbidden"
	ErrCodeConflict     = "conflict"
	ErrCodeUpstream     = "device_unavailable"
	ErrCodeInternal     = "internal_error"
	ErrCodeValidation   = "validation_error"
)

// writeJSON writes a JSON response with the given status code and payload.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		//nolint:errcheck // Best-effort write to response; connection may be closed
		json.NewEncoder(w).Encode(v)
	}
}

// writeError writes a structured error response.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, Error{
		Status:  status,
		Code:    code,
		Message: message,
	})
}

// writeBadRequest writes a 400 error response.
func writeBadRequest(w http.ResponseWriter, message string) {
	writeError(w, http.StatusBadRequest, ErrCodeBadRequest, message)
}

// writeUnauthorized writes a 401 error response.
func writeUnauthorized(w http.ResponseWriter, message string) {
	writeError(w, http.StatusUnauthorized, ErrCodeUnauthorized, message)
}

// writeConflict writes a 409 error response.
func writeConflict(w http.ResponseWriter, message string) {
	writeError(w, http.StatusConflict, ErrCodeConflict, message)
}

// writeInternalError writes a 500 error response.
func writeInternalError(w http.ResponseWriter, message string) {
	writeError(w, http.StatusInternalServerError, ErrCodeInternal, message)
}

// writeDomainError maps sentinel errors from the domain packages onto
// the HTTP taxonomy. Unknown errors become a 500 with a generic body.
//
// Missing records map to 400, not 404: the dashboard and device
// firmware predate this service and treat 404 strictly as "no such
// route".
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, auth.ErrMissingFields),
		errors.Is(err, auth.ErrInvalidEmail):
		writeError(w, http.StatusBadRequest, ErrCodeValidation, err.Error())
	case errors.Is(err, audit.ErrInvalidTimestamp),
		errors.Is(err, audit.ErrInvalidStatus),
		errors.Is(err, lock.ErrInvalidIP):
		writeError(w, http.StatusBadRequest, ErrCodeValidation, err.Error())
	case errors.Is(err, auth.ErrAccountNotFound):
		writeBadRequest(w, "no such account")
	case errors.Is(err, lock.ErrLockNotFound):
		writeBadRequest(w, "no such lock")
	case errors.Is(err, lock.ErrNoLock):
		writeBadRequest(w, "no lock assigned")
	case errors.Is(err, auth.ErrInvalidCredentials):
		writeUnauthorized(w, "wrong password")
	case errors.Is(err, auth.ErrAccountExists):
		writeConflict(w, "account already exists")
	case errors.Is(err, lock.ErrLockOwned):
		writeConflict(w, "lock already assigned")
	case errors.Is(err, lock.ErrUserHasLock):
		writeConflict(w, "account already has a lock")
	case errors.Is(err, auth.ErrForbidden):
		writeError(w, http.StatusForbidden, ErrCodeForbidden, "insufficient permissions")
	case errors.Is(err, lock.ErrDeviceUnavailable):
		writeError(w, http.StatusBadGateway, ErrCodeUpstream, "lock device unavailable")
	default:
		writeInternalError(w, "internal server error")
	}
}
