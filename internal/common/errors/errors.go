// Package errors provides standardized error handling for the professionals
// API client and its BPMN workflow integration.
package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

// Local validation errors. These are raised before any network call.
const (
	ErrCodeNoEligibleRows         ErrorCode = "NO_ELIGIBLE_ROWS"
	ErrCodeInvalidFileType        ErrorCode = "INVALID_FILE_TYPE"
	ErrCodeMissingFile            ErrorCode = "MISSING_FILE"
	ErrCodeInvalidSource          ErrorCode = "INVALID_SOURCE"
	ErrCodeInputValidationFailed  ErrorCode = "INPUT_VALIDATION_FAILED"
	ErrCodeInputParsingFailed     ErrorCode = "INPUT_PARSING_FAILED"
	ErrCodeInvalidCredentials     ErrorCode = "INVALID_CREDENTIALS"
	ErrCodeNotAuthenticated       ErrorCode = "NOT_AUTHENTICATED"
	ErrCodeSessionStoreFailed     ErrorCode = "SESSION_STORE_FAILED"
	ErrCodeAPIUnavailable         ErrorCode = "API_UNAVAILABLE"
	ErrCodeAPIRequestRejected     ErrorCode = "API_REQUEST_REJECTED"
	ErrCodeAPIServerError         ErrorCode = "API_SERVER_ERROR"
	ErrCodeUnexpectedResponseBody ErrorCode = "UNEXPECTED_RESPONSE_BODY"
	ErrCodeInternal               ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// ==========================
// 2. BPMN Error Integration
// ==========================

// BPMNError represents an error that can be thrown to the Camunda workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns a map suitable for setting Camunda job fail variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}

	for k, v := range e.ErrorVariables {
		vars[k] = v
	}

	return vars
}

// ==========================
// 3. Error Constructors
// ==========================

func NewNoEligibleRowsError(submitted int) *StandardError {
	return &StandardError{
		Code:      ErrCodeNoEligibleRows,
		Message:   "Add at least one row with a full name and source.",
		Details:   fmt.Sprintf("submitted rows: %d", submitted),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewInvalidFileTypeError(contentType string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidFileType,
		Message:   "Only .pdf files are allowed.",
		Details:   fmt.Sprintf("contentType: %q", contentType),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewMissingFileError() *StandardError {
	return &StandardError{
		Code:      ErrCodeMissingFile,
		Message:   "Please choose a .pdf file.",
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewInvalidSourceError(source string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidSource,
		Message:   "Source must be one of direct, partner or internal",
		Details:   fmt.Sprintf("source: %q", source),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewInputValidationError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInputValidationFailed,
		Message:   "Input validation failed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewInputParsingError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeInputParsingFailed,
		Message:   "Failed to parse job variables",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewInvalidCredentialsError(hint string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidCredentials,
		Message:   hint,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewNotAuthenticatedError() *StandardError {
	return &StandardError{
		Code:      ErrCodeNotAuthenticated,
		Message:   "Not logged in",
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewSessionStoreError(op string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeSessionStoreFailed,
		Message:   fmt.Sprintf("Session store %s failed", op),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewUnexpectedResponseError(path string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeUnexpectedResponseBody,
		Message:   "Unexpected response body",
		Details:   fmt.Sprintf("path: %s, error: %s", path, err.Error()),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 4. BPMN Mapping
// ==========================

var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeNoEligibleRows:         "BULK_NO_ELIGIBLE_ROWS",
	ErrCodeInvalidFileType:        "RESUME_INVALID_FILE_TYPE",
	ErrCodeMissingFile:            "RESUME_MISSING_FILE",
	ErrCodeInvalidSource:          "INVALID_SOURCE",
	ErrCodeInputValidationFailed:  "INPUT_VALIDATION_FAILED",
	ErrCodeInputParsingFailed:     "INPUT_PARSING_FAILED",
	ErrCodeAPIUnavailable:         "PROFESSIONALS_API_UNAVAILABLE",
	ErrCodeAPIRequestRejected:     "PROFESSIONALS_API_REJECTED",
	ErrCodeAPIServerError:         "PROFESSIONALS_API_ERROR",
	ErrCodeUnexpectedResponseBody: "PROFESSIONALS_API_ERROR",
}

// GetRetryCount returns how many engine-level retries a code is allowed.
// Requests to the professionals API are never retried.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeSessionStoreFailed:
		return 3
	default:
		return 0
	}
}

func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	bpmnCode, exists := BPMNErrorMapping[stdErr.Code]
	if !exists {
		bpmnCode = string(stdErr.Code)
	}

	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	vars := map[string]interface{}{
		"originalErrorCode": string(stdErr.Code),
		"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
	}
	if status, ok := stdErr.Metadata["status"]; ok {
		vars["httpStatus"] = status
	}
	if body, ok := stdErr.Metadata["body"]; ok {
		vars["responseBody"] = body
	}

	return &BPMNError{
		Code:           bpmnCode,
		Message:        stdErr.Message,
		Details:        stdErr.Details,
		Retryable:      stdErr.Retryable,
		Retries:        retries,
		ErrorVariables: vars,
	}
}

// ToStandardError normalizes any error into a StandardError.
func ToStandardError(err error) *StandardError {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr
	}
	var apiErr *APIError
	if stderrors.As(err, &apiErr) {
		return apiErr.ToStandardError()
	}
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   "Unexpected error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// IsLocalValidationError reports whether err was raised before any request
// was sent.
func IsLocalValidationError(err error) bool {
	var stdErr *StandardError
	if !stderrors.As(err, &stdErr) {
		return false
	}
	switch stdErr.Code {
	case ErrCodeNoEligibleRows, ErrCodeInvalidFileType, ErrCodeMissingFile,
		ErrCodeInvalidSource, ErrCodeInputValidationFailed:
		return true
	}
	return false
}

func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.HasPrefix(codeStr, "API_") || codeStr == string(ErrCodeUnexpectedResponseBody):
		return "TRANSPORT"
	case strings.Contains(codeStr, "CREDENTIALS") || strings.Contains(codeStr, "AUTHENTICATED") ||
		strings.Contains(codeStr, "SESSION"):
		return "AUTH"
	case strings.Contains(codeStr, "INVALID") || strings.Contains(codeStr, "VALIDATION") ||
		strings.Contains(codeStr, "ELIGIBLE") || strings.Contains(codeStr, "MISSING") ||
		strings.Contains(codeStr, "PARSING"):
		return "VALIDATION"
	default:
		return "OTHER"
	}
}
