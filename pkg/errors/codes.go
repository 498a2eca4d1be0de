package errors

import (
	"net/http"
	"strings"
)

// ErrorCode is a string representation of a specific error condition.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common Error Codes
const (
	ErrCodeInternal           ErrorCode = "COMMON_001"
	ErrCodeBadRequest         ErrorCode = "COMMON_002"
	ErrCodeNotFound           ErrorCode = "COMMON_005"
	ErrCodeConflict           ErrorCode = "COMMON_006"
	ErrCodeTooManyRequests    ErrorCode = "COMMON_007"
	ErrCodeServiceUnavailable ErrorCode = "COMMON_008"
	ErrCodeTimeout            ErrorCode = "COMMON_009"
	ErrCodeValidation         ErrorCode = "COMMON_010"
	ErrCodeSerialization      ErrorCode = "COMMON_011"
	ErrCodeDatabaseError      ErrorCode = "COMMON_012"
	ErrCodeCacheError         ErrorCode = "COMMON_013"
	ErrCodeMessageQueueError  ErrorCode = "COMMON_017"
	ErrCodeStorageError       ErrorCode = "COMMON_018"
)

const (
	CodeOK           ErrorCode = "OK"
	CodeUnknown      ErrorCode = "UNKNOWN"
	CodeInternal               = ErrCodeInternal
	CodeInvalidParam           = ErrCodeBadRequest
	CodeNotFound               = ErrCodeNotFound
	CodeConflict               = ErrCodeConflict
	CodeRateLimit              = ErrCodeTooManyRequests
)

// Chemistry Error Codes
const (
	// ErrCodeChemParseFailed: the input cannot form a statement (empty, too
	// long, more than one arrow).
	ErrCodeChemParseFailed ErrorCode = "CHEM_001"
	// ErrCodeChemNotEquation: an equation-only operation got an expression.
	ErrCodeChemNotEquation ErrorCode = "CHEM_002"
	// ErrCodeChemUnbalanceable: no positive integer coefficients exist.
	ErrCodeChemUnbalanceable ErrorCode = "CHEM_003"
	// ErrCodeChemContainsError: the statement holds unparseable terms.
	ErrCodeChemContainsError ErrorCode = "CHEM_004"
	ErrCodeChemBatchTooLarge  ErrorCode = "CHEM_005"
	ErrCodeSubmissionNotFound ErrorCode = "CHEM_006"
)

// ErrorCodeHTTPStatus maps ErrorCodes to HTTP status codes.
var ErrorCodeHTTPStatus = map[ErrorCode]int{
	ErrCodeInternal:           http.StatusInternalServerError,
	ErrCodeBadRequest:         http.StatusBadRequest,
	ErrCodeNotFound:           http.StatusNotFound,
	ErrCodeConflict:           http.StatusConflict,
	ErrCodeTooManyRequests:    http.StatusTooManyRequests,
	ErrCodeServiceUnavailable: http.StatusServiceUnavailable,
	ErrCodeTimeout:            http.StatusGatewayTimeout,
	ErrCodeValidation:         http.StatusUnprocessableEntity,
	ErrCodeSerialization:      http.StatusInternalServerError,
	ErrCodeDatabaseError:      http.StatusInternalServerError,
	ErrCodeCacheError:         http.StatusInternalServerError,
	ErrCodeMessageQueueError:  http.StatusInternalServerError,
	ErrCodeStorageError:       http.StatusInternalServerError,

	ErrCodeChemParseFailed:    http.StatusBadRequest,
	ErrCodeChemNotEquation:    http.StatusUnprocessableEntity,
	ErrCodeChemUnbalanceable:  http.StatusUnprocessableEntity,
	ErrCodeChemContainsError:  http.StatusUnprocessableEntity,
	ErrCodeChemBatchTooLarge:  http.StatusRequestEntityTooLarge,
	ErrCodeSubmissionNotFound: http.StatusNotFound,
}

// ErrorCodeMessage maps ErrorCodes to default messages.
var ErrorCodeMessage = map[ErrorCode]string{
	ErrCodeInternal:           "internal server error",
	ErrCodeBadRequest:         "bad request",
	ErrCodeNotFound:           "resource not found",
	ErrCodeConflict:           "resource conflict",
	ErrCodeTooManyRequests:    "too many requests",
	ErrCodeServiceUnavailable: "service unavailable",
	ErrCodeTimeout:            "request timeout",
	ErrCodeValidation:         "validation failed",
	ErrCodeSerialization:      "serialization failed",
	ErrCodeDatabaseError:      "database error",
	ErrCodeCacheError:         "cache error",
	ErrCodeMessageQueueError:  "message queue error",
	ErrCodeStorageError:       "object storage error",

	ErrCodeChemParseFailed:    "failed to parse chemistry input",
	ErrCodeChemNotEquation:    "an equation is required",
	ErrCodeChemUnbalanceable:  "equation cannot be balanced",
	ErrCodeChemContainsError:  "statement contains unparseable terms",
	ErrCodeChemBatchTooLarge:  "batch exceeds the configured size",
	ErrCodeSubmissionNotFound: "submission not found",
}

// HTTPStatusForCode returns the HTTP status code for an ErrorCode.
func HTTPStatusForCode(code ErrorCode) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DefaultMessageForCode returns the default message for an ErrorCode.
func DefaultMessageForCode(code ErrorCode) string {
	if msg, ok := ErrorCodeMessage[code]; ok {
		return msg
	}
	return "unknown error"
}

// IsClientError returns true if the ErrorCode corresponds to a 4xx HTTP status.
func IsClientError(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 400 && status < 500
}

// IsServerError returns true if the ErrorCode corresponds to a 5xx HTTP status.
func IsServerError(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 500 && status < 600
}

// ModuleForCode returns the module prefix of an ErrorCode.
func ModuleForCode(code ErrorCode) string {
	parts := strings.Split(string(code), "_")
	if len(parts) > 1 && parts[0] != "" {
		return parts[0]
	}
	return "UNKNOWN"
}
