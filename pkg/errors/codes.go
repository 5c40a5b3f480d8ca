package errors

import (
	"net/http"
	"strings"
)

// ErrorCode is a string identifier of a failure category, prefixed by module.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common codes.
const (
	ErrCodeOK                 ErrorCode = "OK"
	ErrCodeUnknown            ErrorCode = "UNKNOWN"
	ErrCodeInternal           ErrorCode = "COMMON_001"
	ErrCodeBadRequest         ErrorCode = "COMMON_002"
	ErrCodeUnauthorized       ErrorCode = "COMMON_003"
	ErrCodeForbidden          ErrorCode = "COMMON_004"
	ErrCodeNotFound           ErrorCode = "COMMON_005"
	ErrCodeConflict           ErrorCode = "COMMON_006"
	ErrCodeServiceUnavailable ErrorCode = "COMMON_008"
	ErrCodeTimeout            ErrorCode = "COMMON_009"
	ErrCodeValidation         ErrorCode = "COMMON_010"
	ErrCodeSerialization      ErrorCode = "COMMON_011"
	ErrCodeDatabaseError      ErrorCode = "COMMON_012"
	ErrCodeCacheError         ErrorCode = "COMMON_013"
	ErrCodeExternalService    ErrorCode = "COMMON_014"
)

// Plan codes.
const (
	ErrCodePlanNotFound      ErrorCode = "PLN_001"
	ErrCodePlanDiscarded     ErrorCode = "PLN_002"
	ErrCodePlanInvalid       ErrorCode = "PLN_003"
	ErrCodeCheckpointUnknown ErrorCode = "PLN_004"
)

// Binding codes.
const (
	ErrCodeBindingNotFound ErrorCode = "BND_001"
	ErrCodeBindingExists   ErrorCode = "BND_002"
	ErrCodeDateInvalid     ErrorCode = "BND_003"
	ErrCodeCurrentConflict ErrorCode = "BND_004"
)

// Submission codes.
const (
	ErrCodeSubmissionDuplicate      ErrorCode = "SUB_001"
	ErrCodeSubmissionMissingAnswers ErrorCode = "SUB_002"
	ErrCodeSubmissionNotFound       ErrorCode = "SUB_003"
)

// ErrorCodeHTTPStatus maps codes to HTTP statuses.
var ErrorCodeHTTPStatus = map[ErrorCode]int{
	ErrCodeOK:                 http.StatusOK,
	ErrCodeUnknown:            http.StatusInternalServerError,
	ErrCodeInternal:           http.StatusInternalServerError,
	ErrCodeBadRequest:         http.StatusBadRequest,
	ErrCodeUnauthorized:       http.StatusUnauthorized,
	ErrCodeForbidden:          http.StatusForbidden,
	ErrCodeNotFound:           http.StatusNotFound,
	ErrCodeConflict:           http.StatusConflict,
	ErrCodeServiceUnavailable: http.StatusServiceUnavailable,
	ErrCodeTimeout:            http.StatusGatewayTimeout,
	ErrCodeValidation:         http.StatusUnprocessableEntity,
	ErrCodeSerialization:      http.StatusInternalServerError,
	ErrCodeDatabaseError:      http.StatusInternalServerError,
	ErrCodeCacheError:         http.StatusInternalServerError,
	ErrCodeExternalService:    http.StatusBadGateway,

	ErrCodePlanNotFound:      http.StatusNotFound,
	ErrCodePlanDiscarded:     http.StatusBadRequest,
	ErrCodePlanInvalid:       http.StatusBadRequest,
	ErrCodeCheckpointUnknown: http.StatusBadRequest,

	ErrCodeBindingNotFound: http.StatusNotFound,
	ErrCodeBindingExists:   http.StatusConflict,
	ErrCodeDateInvalid:     http.StatusBadRequest,
	ErrCodeCurrentConflict: http.StatusConflict,

	ErrCodeSubmissionDuplicate:      http.StatusConflict,
	ErrCodeSubmissionMissingAnswers: http.StatusBadRequest,
	ErrCodeSubmissionNotFound:       http.StatusNotFound,
}

// ErrorCodeMessage maps codes to default messages.
var ErrorCodeMessage = map[ErrorCode]string{
	ErrCodeInternal:           "internal server error",
	ErrCodeBadRequest:         "bad request",
	ErrCodeUnauthorized:       "unauthorized",
	ErrCodeForbidden:          "forbidden",
	ErrCodeNotFound:           "resource not found",
	ErrCodeConflict:           "resource conflict",
	ErrCodeServiceUnavailable: "service unavailable",
	ErrCodeTimeout:            "request timeout",
	ErrCodeValidation:         "validation failed",
	ErrCodeSerialization:      "serialization failed",
	ErrCodeDatabaseError:      "database error",
	ErrCodeCacheError:         "cache error",
	ErrCodeExternalService:    "external service error",

	ErrCodePlanNotFound:      "follow-up plan not found",
	ErrCodePlanDiscarded:     "follow-up plan has been discarded",
	ErrCodePlanInvalid:       "invalid follow-up plan",
	ErrCodeCheckpointUnknown: "unknown checkpoint",

	ErrCodeBindingNotFound: "plan binding not found",
	ErrCodeBindingExists:   "plan already bound",
	ErrCodeDateInvalid:     "invalid calendar date",
	ErrCodeCurrentConflict: "current plan changed concurrently",

	ErrCodeSubmissionDuplicate:      "follow-up record already submitted for this checkpoint",
	ErrCodeSubmissionMissingAnswers: "required answers are missing",
	ErrCodeSubmissionNotFound:       "follow-up record not found",
}

// HTTPStatusForCode returns the HTTP status for code, 500 when unmapped.
func HTTPStatusForCode(code ErrorCode) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DefaultMessageForCode returns the default message for code.
func DefaultMessageForCode(code ErrorCode) string {
	if msg, ok := ErrorCodeMessage[code]; ok {
		return msg
	}
	return "unknown error"
}

// IsClientError reports whether code maps to a 4xx status.
func IsClientError(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 400 && status < 500
}

// IsServerError reports whether code maps to a 5xx status.
func IsServerError(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 500 && status < 600
}

// ModuleForCode returns the module prefix of code.
func ModuleForCode(code ErrorCode) string {
	parts := strings.SplitN(string(code), "_", 2)
	if len(parts) == 2 && parts[0] != "" {
		return parts[0]
	}
	return "UNKNOWN"
}
