package dto

import "net/http"

// Error codes, formatted ERR_<CATEGORY>_<DESCRIPTION>
const (
	ErrCodeInternal = "ERR_INTERNAL"

	ErrCodeValidation       = "ERR_VALIDATION"
	ErrCodeValidationPeriod = "ERR_VALIDATION_PERIOD"
	ErrCodeValidationTime   = "ERR_VALIDATION_TIME"

	ErrCodeBadRequest      = "ERR_BAD_REQUEST"
	ErrCodeRequestTooLarge = "ERR_REQUEST_TOO_LARGE"
	ErrCodeRateLimited     = "ERR_RATE_LIMITED"

	ErrCodeNotFound     = "ERR_NOT_FOUND"
	ErrCodeInvalidState = "ERR_INVALID_STATE"
)

// Print pipeline error codes
const (
	ErrCodeRenderFailed       = "ERR_RENDER_FAILED"
	ErrCodeRenderTimeout      = "ERR_RENDER_TIMEOUT"
	ErrCodeRendererDisabled   = "ERR_RENDERER_DISABLED"
	ErrCodeStorageFailed      = "ERR_STORAGE_FAILED"
	ErrCodeStorageDisabled    = "ERR_STORAGE_DISABLED"
	ErrCodeInvalidPrintConfig = "ERR_INVALID_PRINT_CONFIG"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal: http.StatusInternalServerError,

	ErrCodeValidation:       http.StatusBadRequest,
	ErrCodeValidationPeriod: http.StatusBadRequest,
	ErrCodeValidationTime:   http.StatusBadRequest,

	ErrCodeBadRequest:      http.StatusBadRequest,
	ErrCodeRequestTooLarge: http.StatusRequestEntityTooLarge,
	ErrCodeRateLimited:     http.StatusTooManyRequests,

	ErrCodeNotFound:     http.StatusNotFound,
	ErrCodeInvalidState: http.StatusUnprocessableEntity,

	ErrCodeRenderFailed:       http.StatusInternalServerError,
	ErrCodeRenderTimeout:      http.StatusGatewayTimeout,
	ErrCodeRendererDisabled:   http.StatusServiceUnavailable,
	ErrCodeStorageFailed:      http.StatusBadGateway,
	ErrCodeStorageDisabled:    http.StatusServiceUnavailable,
	ErrCodeInvalidPrintConfig: http.StatusInternalServerError,
}

// GetHTTPStatus returns the HTTP status code for an error code, 500 when
// the code is unknown.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DomainErrorCodeMapping maps domain and infrastructure error codes to API codes
var DomainErrorCodeMapping = map[string]string{
	"NOT_FOUND":               ErrCodeNotFound,
	"INVALID_STATE":           ErrCodeInvalidState,
	"INVALID_TIME":            ErrCodeValidationTime,
	"INVALID_PERIOD":          ErrCodeValidationPeriod,
	"INVALID_PRINT_CONSTANTS": ErrCodeInvalidPrintConfig,
	"RENDER_FAILED":           ErrCodeRenderFailed,
	"RENDER_TIMEOUT":          ErrCodeRenderTimeout,
	"INVALID_HTML":            ErrCodeRenderFailed,
	"RENDERER_DISABLED":       ErrCodeRendererDisabled,
	"STORAGE_FAILED":          ErrCodeStorageFailed,
	"STORAGE_DISABLED":        ErrCodeStorageDisabled,
}

// NormalizeErrorCode converts a domain error code to its API form. Codes
// that are already in API form or unknown are returned as is.
func NormalizeErrorCode(code string) string {
	if apiCode, ok := DomainErrorCodeMapping[code]; ok {
		return apiCode
	}
	return code
}
