package dto

import (
	"net/http"

	"github.com/erp/erpcore/internal/domain/shared"
)

// Transport error codes. Domain codes are defined in the shared package.
const (
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "BAD_REQUEST"
	// ErrCodeRequestTooLarge is used when the body exceeds the configured limit
	ErrCodeRequestTooLarge = "REQUEST_TOO_LARGE"
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "INTERNAL_ERROR"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	shared.CodeUnknownEntity:    http.StatusNotFound,
	shared.CodeNotFound:         http.StatusNotFound,
	shared.CodeConflict:         http.StatusConflict,
	shared.CodeInvalidReference: http.StatusUnprocessableEntity,
	shared.CodeValidation:       http.StatusBadRequest,
	shared.CodeStoreUnavailable: http.StatusServiceUnavailable,

	ErrCodeBadRequest:      http.StatusBadRequest,
	ErrCodeRequestTooLarge: http.StatusRequestEntityTooLarge,
	ErrCodeInternal:        http.StatusInternalServerError,
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
