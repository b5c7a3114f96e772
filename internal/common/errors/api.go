package errors

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// APIError is returned for any non-2xx response or transport failure when
// talking to the professionals API. Status is 0 when no response arrived.
type APIError struct {
	Method string
	Path   string
	Status int
	Body   interface{}
	Err    error
}

func NewAPIError(method, path string, status int, body interface{}) *APIError {
	return &APIError{Method: method, Path: path, Status: status, Body: body}
}

func NewTransportError(method, path string, err error) *APIError {
	return &APIError{Method: method, Path: path, Err: err}
}

func (e *APIError) Error() string {
	if e.Status == 0 && e.Err != nil {
		return fmt.Sprintf("%s %s failed: %v", e.Method, e.Path, e.Err)
	}
	return fmt.Sprintf("%s %s failed: %d %s", e.Method, e.Path, e.Status, e.bodyString())
}

func (e *APIError) Unwrap() error {
	return e.Err
}

func (e *APIError) bodyString() string {
	if e.Body == nil {
		return "null"
	}
	b, err := json.Marshal(e.Body)
	if err != nil {
		return fmt.Sprintf("%v", e.Body)
	}
	return string(b)
}

// ToStandardError maps the failure onto the API error codes, carrying the
// status and body in Metadata.
func (e *APIError) ToStandardError() *StandardError {
	code := ErrCodeAPIRequestRejected
	message := fmt.Sprintf("%s %s was rejected", e.Method, e.Path)
	switch {
	case e.Status == 0:
		code = ErrCodeAPIUnavailable
		message = fmt.Sprintf("%s %s could not be sent", e.Method, e.Path)
	case e.Status >= http.StatusInternalServerError:
		code = ErrCodeAPIServerError
		message = fmt.Sprintf("%s %s failed on the server", e.Method, e.Path)
	}

	return &StandardError{
		Code:      code,
		Message:   message,
		Details:   e.Error(),
		Retryable: false,
		Metadata: map[string]interface{}{
			"method": e.Method,
			"path":   e.Path,
			"status": e.Status,
			"body":   e.Body,
		},
		Timestamp: time.Now().UTC(),
	}
}
