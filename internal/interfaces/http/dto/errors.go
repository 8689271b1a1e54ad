package dto

import "net/http"

// Error codes surfaced by the HTTP layer itself
const (
	ErrCodeBadRequest   = "BAD_REQUEST"
	ErrCodeUnauthorized = "UNAUTHORIZED"
	ErrCodeNotFound     = "NOT_FOUND"
	ErrCodeInternal     = "INTERNAL_ERROR"
)

// errorCodeHTTPStatus maps domain error codes to HTTP status codes.
// Codes not listed here default to 500.
var errorCodeHTTPStatus = map[string]int{
	// Malformed or invalid input -> 400
	ErrCodeBadRequest:  http.StatusBadRequest,
	"VALIDATION_ERROR": http.StatusBadRequest,

	// Authentication failures -> 401
	ErrCodeUnauthorized:  http.StatusUnauthorized,
	"INVALID_CREDENTIALS": http.StatusUnauthorized,
	"ACCOUNT_SUSPENDED":   http.StatusUnauthorized,
	"TOKEN_EXPIRED":       http.StatusUnauthorized,
	"TOKEN_INVALID":       http.StatusUnauthorized,
	"TOKEN_REVOKED":       http.StatusUnauthorized,
	"TOKEN_MAX_REFRESH":   http.StatusUnauthorized,
	"TOKEN_ERROR":         http.StatusUnauthorized,

	"FORBIDDEN": http.StatusForbidden,

	// Missing resources -> 404
	ErrCodeNotFound:      http.StatusNotFound,
	"CUSTOMER_NOT_FOUND": http.StatusNotFound,
	"USER_NOT_FOUND":     http.StatusNotFound,

	// Conflicts -> 409
	"ALREADY_EXISTS":    http.StatusConflict,
	"EMAIL_TAKEN":       http.StatusConflict,
	"DUPLICATE_NUMBER":  http.StatusConflict,
	"NUMBER_CONTENTION": http.StatusConflict,

	// Lifecycle rule violations -> 422
	"INVALID_STATE": http.StatusUnprocessableEntity,

	// Free tier limit -> 429
	"QUOTA_EXCEEDED": http.StatusTooManyRequests,

	// Server-side failures -> 500
	ErrCodeInternal:  http.StatusInternalServerError,
	"DATA_INTEGRITY": http.StatusInternalServerError,
	"RENDER_FAILED":  http.StatusInternalServerError,
}

// GetHTTPStatus returns the HTTP status code for a domain error code.
func GetHTTPStatus(code string) int {
	if status, ok := errorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
