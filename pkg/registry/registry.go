package registry

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"professionals-admin/internal/common/validation"
)

//go:embed activities.json
var defaultRegistry []byte

// DefaultPath is where the registry file lives in the source tree.
const DefaultPath = "pkg/registry/activities.json"

// Default returns the registry compiled into the binary.
func Default() (*ActivityRegistry, error) {
	return Parse(defaultRegistry)
}

func LoadRegistry(path string) (*ActivityRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

func Parse(data []byte) (*ActivityRegistry, error) {
	var reg ActivityRegistry
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("parse registry: %w", err)
	}
	return &reg, nil
}

// Find returns the activity registered for a job type.
func (r *ActivityRegistry) Find(taskType string) (*Activity, bool) {
	if r == nil {
		return nil, false
	}
	for i := range r.Activities {
		if r.Activities[i].TaskType == taskType {
			return &r.Activities[i], true
		}
	}
	return nil, false
}

// Validate checks required fields, duplicate ids and that every input and
// output schema compiles.
func (r *ActivityRegistry) Validate() error {
	if len(r.Activities) == 0 {
		return fmt.Errorf("registry contains no activities")
	}

	ids := make(map[string]bool)
	taskTypes := make(map[string]bool)
	for _, activity := range r.Activities {
		if activity.ID == "" {
			return fmt.Errorf("activity missing required field: ID")
		}
		if ids[activity.ID] {
			return fmt.Errorf("duplicate activity ID: %s", activity.ID)
		}
		ids[activity.ID] = true

		if activity.DisplayName == "" {
			return fmt.Errorf("activity %s missing required field: DisplayName", activity.ID)
		}
		if activity.TaskType == "" {
			return fmt.Errorf("activity %s missing required field: TaskType", activity.ID)
		}
		if taskTypes[activity.TaskType] {
			return fmt.Errorf("duplicate task type: %s", activity.TaskType)
		}
		taskTypes[activity.TaskType] = true

		if activity.Category == "" {
			return fmt.Errorf("activity %s missing required field: Category", activity.ID)
		}
		if _, err := activity.TimeoutDuration(); err != nil {
			return fmt.Errorf("activity %s: %w", activity.ID, err)
		}
		if _, err := activity.ValidateInput(map[string]interface{}{}); err != nil {
			return fmt.Errorf("activity %s has an invalid input schema: %w", activity.ID, err)
		}
		if _, err := activity.ValidateOutput(map[string]interface{}{}); err != nil {
			return fmt.Errorf("activity %s has an invalid output schema: %w", activity.ID, err)
		}
	}
	return nil
}

// ValidateInput checks job variables against the activity's input schema. An
// activity without a schema accepts anything.
func (a *Activity) ValidateInput(variables map[string]interface{}) (*validation.ValidationResult, error) {
	if len(a.InputSchema) == 0 {
		return &validation.ValidationResult{Valid: true}, nil
	}
	return validation.ValidateDocument(a.InputSchema, variables)
}

// ValidateOutput checks job results against the activity's output schema.
func (a *Activity) ValidateOutput(variables map[string]interface{}) (*validation.ValidationResult, error) {
	if len(a.OutputSchema) == 0 {
		return &validation.ValidationResult{Valid: true}, nil
	}
	return validation.ValidateDocument(a.OutputSchema, variables)
}

// TimeoutDuration parses Timeout, zero when unset.
func (a *Activity) TimeoutDuration() (time.Duration, error) {
	if a.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(a.Timeout)
	if err != nil {
		return 0, fmt.Errorf("invalid timeout %q: %w", a.Timeout, err)
	}
	return d, nil
}
