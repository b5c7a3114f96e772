package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIError_Message(t *testing.T) {
	tests := []struct {
		name     string
		err      *APIError
		expected string
	}{
		{
			name:     "parsed json body",
			err:      NewAPIError("GET", "/professionals", 400, map[string]interface{}{"detail": "bad source"}),
			expected: `GET /professionals failed: 400 {"detail":"bad source"}`,
		},
		{
			name:     "raw text fallback body",
			err:      NewAPIError("POST", "/professionals/bulk", 502, map[string]interface{}{"raw": "Bad Gateway"}),
			expected: `POST /professionals/bulk failed: 502 {"raw":"Bad Gateway"}`,
		},
		{
			name:     "empty body",
			err:      NewAPIError("POST", "/professionals", 500, nil),
			expected: "POST /professionals failed: 500 null",
		},
		{
			name:     "transport failure",
			err:      NewTransportError("GET", "/professionals", fmt.Errorf("connection refused")),
			expected: "GET /professionals failed: connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestAPIError_Unwrap(t *testing.T) {
	cause := fmt.Errorf("dial tcp: connection refused")
	err := fmt.Errorf("listing: %w", NewTransportError("GET", "/professionals", cause))

	assert.True(t, stderrors.Is(err, cause))

	var apiErr *APIError
	require.True(t, stderrors.As(err, &apiErr))
	assert.Equal(t, 0, apiErr.Status)
}

func TestAPIError_ToStandardError(t *testing.T) {
	tests := []struct {
		name         string
		err          *APIError
		expectedCode ErrorCode
	}{
		{"no response", NewTransportError("GET", "/professionals", fmt.Errorf("timeout")), ErrCodeAPIUnavailable},
		{"client error", NewAPIError("POST", "/professionals", 400, nil), ErrCodeAPIRequestRejected},
		{"server error", NewAPIError("POST", "/professionals", 503, nil), ErrCodeAPIServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stdErr := tt.err.ToStandardError()
			assert.Equal(t, tt.expectedCode, stdErr.Code)
			assert.False(t, stdErr.Retryable)
			assert.Equal(t, tt.err.Status, stdErr.Metadata["status"])
		})
	}
}

func TestConvertToBPMNError(t *testing.T) {
	body := map[string]interface{}{"email": []interface{}{"Enter a valid email address."}}
	stdErr := NewAPIError("POST", "/professionals", 400, body).ToStandardError()

	bpmnErr := ConvertToBPMNError(stdErr)

	assert.Equal(t, "PROFESSIONALS_API_REJECTED", bpmnErr.Code)
	assert.Equal(t, 0, bpmnErr.Retries)
	assert.Equal(t, 400, bpmnErr.ErrorVariables["httpStatus"])
	assert.Equal(t, body, bpmnErr.ErrorVariables["responseBody"])

	vars := bpmnErr.ToErrorVariables()
	assert.Equal(t, "PROFESSIONALS_API_REJECTED", vars["errorCode"])
	assert.Equal(t, "API_REQUEST_REJECTED", vars["originalErrorCode"])
}

func TestConvertToBPMNError_UnmappedCodeFallsBack(t *testing.T) {
	bpmnErr := ConvertToBPMNError(NewSessionStoreError("get", fmt.Errorf("redis down")))

	assert.Equal(t, "SESSION_STORE_FAILED", bpmnErr.Code)
	assert.Equal(t, 3, bpmnErr.Retries)
}

func TestToStandardError(t *testing.T) {
	local := NewNoEligibleRowsError(2)
	assert.Same(t, local, ToStandardError(fmt.Errorf("wrapped: %w", local)))

	apiStd := ToStandardError(NewAPIError("GET", "/professionals", 404, nil))
	assert.Equal(t, ErrCodeAPIRequestRejected, apiStd.Code)

	other := ToStandardError(fmt.Errorf("boom"))
	assert.Equal(t, ErrCodeInternal, other.Code)
	assert.Equal(t, "boom", other.Details)
}

func TestIsLocalValidationError(t *testing.T) {
	assert.True(t, IsLocalValidationError(NewNoEligibleRowsError(0)))
	assert.True(t, IsLocalValidationError(NewInvalidFileTypeError("text/plain")))
	assert.True(t, IsLocalValidationError(NewMissingFileError()))
	assert.False(t, IsLocalValidationError(NewAPIError("GET", "/professionals", 400, nil)))
	assert.False(t, IsLocalValidationError(fmt.Errorf("boom")))
}

func TestLocalErrorMessages(t *testing.T) {
	assert.Equal(t, "Add at least one row with a full name and source.", NewNoEligibleRowsError(3).Message)
	assert.Equal(t, "Only .pdf files are allowed.", NewInvalidFileTypeError("image/png").Message)
	assert.Equal(t, "Please choose a .pdf file.", NewMissingFileError().Message)
}

func TestGetErrorCategory(t *testing.T) {
	tests := map[ErrorCode]string{
		ErrCodeAPIUnavailable:         "TRANSPORT",
		ErrCodeAPIServerError:         "TRANSPORT",
		ErrCodeUnexpectedResponseBody: "TRANSPORT",
		ErrCodeInvalidCredentials:     "AUTH",
		ErrCodeSessionStoreFailed:     "AUTH",
		ErrCodeNoEligibleRows:         "VALIDATION",
		ErrCodeInvalidFileType:        "VALIDATION",
		ErrCodeMissingFile:            "VALIDATION",
		ErrCodeInternal:               "OTHER",
	}

	for code, expected := range tests {
		t.Run(string(code), func(t *testing.T) {
			assert.Equal(t, expected, GetErrorCategory(code))
		})
	}
}
