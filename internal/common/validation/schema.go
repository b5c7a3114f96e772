package validation

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// ValidateDocument checks document against a JSON schema given as a decoded
// map, a Go struct, or a raw JSON string.
func ValidateDocument(schema interface{}, document interface{}) (*ValidationResult, error) {
	var schemaLoader gojsonschema.JSONLoader
	switch s := schema.(type) {
	case string:
		schemaLoader = gojsonschema.NewStringLoader(s)
	case []byte:
		schemaLoader = gojsonschema.NewBytesLoader(s)
	default:
		schemaLoader = gojsonschema.NewGoLoader(s)
	}

	var documentLoader gojsonschema.JSONLoader
	switch d := document.(type) {
	case string:
		documentLoader = gojsonschema.NewStringLoader(d)
	case []byte:
		documentLoader = gojsonschema.NewBytesLoader(d)
	default:
		documentLoader = gojsonschema.NewGoLoader(d)
	}

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return nil, fmt.Errorf("validation error: %w", err)
	}

	out := &ValidationResult{Valid: result.Valid()}
	for _, desc := range result.Errors() {
		out.Errors = append(out.Errors, ValidationError{
			Field:   desc.Field(),
			Message: desc.Description(),
			Code:    desc.Type(),
		})
	}
	return out, nil
}

// GetErrorMessages returns a simple list of error messages
func (vr *ValidationResult) GetErrorMessages() []string {
	messages := make([]string, len(vr.Errors))
	for i, err := range vr.Errors {
		messages[i] = fmt.Sprintf("%s: %s", err.Field, err.Message)
	}
	return messages
}

// HasErrors checks if validation has errors for specific field
func (vr *ValidationResult) HasErrors(field string) bool {
	for _, err := range vr.Errors {
		if err.Field == field {
			return true
		}
	}
	return false
}

// GetErrorsForField returns errors for a specific field
func (vr *ValidationResult) GetErrorsForField(field string) []ValidationError {
	var fieldErrors []ValidationError
	for _, err := range vr.Errors {
		if err.Field == field || strings.HasPrefix(err.Field, field+".") {
			fieldErrors = append(fieldErrors, err)
		}
	}
	return fieldErrors
}
