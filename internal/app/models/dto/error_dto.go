package dto

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// ErrorCode represents standardized error codes
type ErrorCode string

// Standard error codes for the application
const (
	// Authentication errors
	ErrorCodeInvalidCredentials ErrorCode = "AUTH_001"
	ErrorCodeInvalidToken       ErrorCode = "AUTH_005"
	ErrorCodeExpiredToken       ErrorCode = "AUTH_006"
	ErrorCodeTokenNotFound      ErrorCode = "AUTH_007"
	ErrorCodeUnauthorized       ErrorCode = "AUTH_008"
	ErrorCodeForbidden          ErrorCode = "AUTH_009"

	// Resource errors
	ErrorCodeResourceNotFound      ErrorCode = "RES_001"
	ErrorCodeResourceAlreadyExists ErrorCode = "RES_002"
	ErrorCodeResourceInvalid       ErrorCode = "RES_003"
	ErrorCodeConflict              ErrorCode = "RES_004"

	// Validation errors
	ErrorCodeValidationFailed ErrorCode = "VAL_001"
	ErrorCodeBadRequest       ErrorCode = "VAL_002"

	// Server errors
	ErrorCodeInternalServer ErrorCode = "SRV_001"
)

// ErrorSeverity represents the severity level of an error
type ErrorSeverity string

// Severity levels
const (
	ErrorSeverityInfo     ErrorSeverity = "INFO"
	ErrorSeverityWarning  ErrorSeverity = "WARNING"
	ErrorSeverityError    ErrorSeverity = "ERROR"
	ErrorSeverityCritical ErrorSeverity = "CRITICAL"
)

// ErrorDetail represents detailed error information
type ErrorDetail struct {
	Code     ErrorCode     `json:"code" example:"RES_001"`
	Message  string        `json:"message" example:"Không tìm thấy hóa đơn"`
	Field    string        `json:"field,omitempty" example:"email"`
	Severity ErrorSeverity `json:"severity" example:"ERROR"`
	Details  interface{}   `json:"details,omitempty"`
}

// ErrorResponse represents the standard error response structure
type ErrorResponse struct {
	Success   bool         `json:"success" example:"false"`
	Error     *ErrorDetail `json:"error"`
	Timestamp time.Time    `json:"timestamp" example:"2025-04-23T12:01:05.123Z"`
}

// NewErrorDetail creates a new error detail
func NewErrorDetail(code ErrorCode, message string) *ErrorDetail {
	return &ErrorDetail{
		Code:     code,
		Message:  message,
		Severity: ErrorSeverityError,
	}
}

// WithField adds a field name to the error detail
func (e *ErrorDetail) WithField(field string) *ErrorDetail {
	e.Field = field
	return e
}

// WithSeverity sets the severity level of the error
func (e *ErrorDetail) WithSeverity(severity ErrorSeverity) *ErrorDetail {
	e.Severity = severity
	return e
}

// WithDetails adds additional details to the error
func (e *ErrorDetail) WithDetails(details interface{}) *ErrorDetail {
	e.Details = details
	return e
}

// NewErrorResponse creates a standard error response
func NewErrorResponse(errorDetail *ErrorDetail) *ErrorResponse {
	return &ErrorResponse{
		Success:   false,
		Error:     errorDetail,
		Timestamp: time.Now(),
	}
}

// FieldError is one failed field of a request body
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// HandleValidationError converts a binding error into an ErrorDetail with Vietnamese messages
func HandleValidationError(err error) *ErrorDetail {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fields := make([]FieldError, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, FieldError{Field: fe.Field(), Message: FormatFieldError(fe)})
		}
		return NewErrorDetail(ErrorCodeValidationFailed, fields[0].Message).
			WithField(fields[0].Field).
			WithDetails(fields)
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &typeErr):
		return NewErrorDetail(ErrorCodeValidationFailed, fmt.Sprintf("Trường %s có kiểu dữ liệu không hợp lệ", typeErr.Field)).
			WithField(typeErr.Field)
	case errors.As(err, &syntaxErr):
		return NewErrorDetail(ErrorCodeValidationFailed, "JSON không hợp lệ")
	}
	return NewErrorDetail(ErrorCodeValidationFailed, "Dữ liệu yêu cầu không hợp lệ").WithDetails(err.Error())
}

// FormatFieldError renders one validator failure as a Vietnamese sentence
func FormatFieldError(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s là bắt buộc", e.Field())
	case "min":
		return fmt.Sprintf("%s phải có giá trị hoặc độ dài tối thiểu %s", e.Field(), e.Param())
	case "max":
		return fmt.Sprintf("%s chỉ được có giá trị hoặc độ dài tối đa %s", e.Field(), e.Param())
	case "gt":
		return fmt.Sprintf("%s phải lớn hơn %s", e.Field(), e.Param())
	case "gte":
		return fmt.Sprintf("%s phải lớn hơn hoặc bằng %s", e.Field(), e.Param())
	case "email":
		return fmt.Sprintf("%s không phải là email hợp lệ", e.Field())
	case "oneof":
		return fmt.Sprintf("%s phải là một trong: %s", e.Field(), e.Param())
	case "url":
		return fmt.Sprintf("%s phải là URL hợp lệ", e.Field())
	case "vnphone":
		return fmt.Sprintf("%s không phải là số điện thoại hợp lệ", e.Field())
	case "hhmm":
		return fmt.Sprintf("%s phải có định dạng HH:MM", e.Field())
	case "isodate":
		return fmt.Sprintf("%s phải có định dạng YYYY-MM-DD", e.Field())
	default:
		return fmt.Sprintf("%s không hợp lệ (%s)", e.Field(), e.Tag())
	}
}
