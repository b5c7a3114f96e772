package main

import (
	"encoding/json"
	stderrors "errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"professionals-admin/pkg/registry"
)

// Implementation statuses that claim a running worker.
var liveStatuses = map[string]bool{"completed": true, "verified": true}

func (t *tool) flagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(t.out)
	fs.StringVar(&t.path, "path", t.path, "Path to registry file")
	return fs
}

func (t *tool) list(args []string) error {
	fs := t.flagSet("list")
	if err := fs.Parse(args); err != nil {
		return err
	}
	reg, err := registry.LoadRegistry(t.path)
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}

	tw := tabwriter.NewWriter(t.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTASK TYPE\tSTATUS\tTIMEOUT\tWORKER")
	for _, a := range reg.Activities {
		worker := "-"
		if t.serves(a.TaskType) {
			worker = "yes"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", a.ID, a.TaskType, a.ImplementationStatus, a.Timeout, worker)
	}
	return tw.Flush()
}

func (t *tool) add(args []string) error {
	fs := t.flagSet("add")
	id := fs.String("id", "", "Activity ID (e.g., archive-professional)")
	displayName := fs.String("displayName", "", "Display Name (e.g., Archive Professional)")
	description := fs.String("description", "", "Description")
	category := fs.String("category", "professionals", "Category")
	taskType := fs.String("taskType", "", "Zeebe job type, defaults to the id")
	version := fs.String("version", "1.0.0", "Version")
	status := fs.String("status", "planned", "Implementation Status (planned, in-progress, completed, verified)")
	timeout := fs.String("timeout", "10s", "Job timeout as a Go duration")
	inputSchema := fs.String("input-schema", "", "JSON file holding the input schema")
	outputSchema := fs.String("output-schema", "", "JSON file holding the output schema")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id == "" || *displayName == "" || *description == "" {
		fs.Usage()
		return fmt.Errorf("id, displayName and description are required for add")
	}
	if *taskType == "" {
		*taskType = *id
	}

	in, err := readSchema(*inputSchema)
	if err != nil {
		return err
	}
	out, err := readSchema(*outputSchema)
	if err != nil {
		return err
	}

	reg, err := registry.LoadRegistry(t.path)
	if err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to load registry: %w", err)
		}
		reg = &registry.ActivityRegistry{Version: "1.0.0"}
	}
	for _, existing := range reg.Activities {
		if existing.ID == *id {
			return fmt.Errorf("activity with ID %s already exists", *id)
		}
	}

	reg.Activities = append(reg.Activities, registry.Activity{
		ID:                   *id,
		DisplayName:          *displayName,
		Description:          *description,
		Category:             *category,
		Version:              *version,
		TaskType:             *taskType,
		ImplementationStatus: *status,
		InputSchema:          in,
		OutputSchema:         out,
		ErrorCodes:           []string{},
		Timeout:              *timeout,
		Workflows:            []string{},
		Tags:                 []string{},
	})
	if err := t.save(reg); err != nil {
		return err
	}
	fmt.Fprintf(t.out, "Added activity: %s\n", *id)
	return nil
}

func (t *tool) update(args []string) error {
	fs := t.flagSet("update")
	id := fs.String("id", "", "Activity ID to update")
	field := fs.String("field", "", "Field to update (status, version, displayName, description, category, taskType, timeout, retries, tags)")
	value := fs.String("value", "", "New value for the field")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id == "" || *field == "" || *value == "" {
		fs.Usage()
		return fmt.Errorf("id, field and value are required for update")
	}

	reg, err := registry.LoadRegistry(t.path)
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}
	var activity *registry.Activity
	for i := range reg.Activities {
		if reg.Activities[i].ID == *id {
			activity = &reg.Activities[i]
			break
		}
	}
	if activity == nil {
		return fmt.Errorf("activity with ID %s not found", *id)
	}
	if err := setField(activity, *field, *value); err != nil {
		return err
	}
	if err := t.save(reg); err != nil {
		return err
	}
	fmt.Fprintf(t.out, "Updated activity %s, field %s to %s\n", *id, *field, *value)
	return nil
}

func (t *tool) validate(args []string) error {
	fs := t.flagSet("validate")
	if err := fs.Parse(args); err != nil {
		return err
	}
	reg, err := registry.LoadRegistry(t.path)
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}
	if err := t.check(reg); err != nil {
		return err
	}
	fmt.Fprintf(t.out, "Registry validation passed. Found %d activities, %d served by workers.\n",
		len(reg.Activities), len(t.served))
	return nil
}

// check runs the registry's own validation, then compares it with the job
// types the worker manager serves.
func (t *tool) check(reg *registry.ActivityRegistry) error {
	if err := reg.Validate(); err != nil {
		return err
	}

	var problems []error
	for _, taskType := range t.served {
		if _, ok := reg.Find(taskType); !ok {
			problems = append(problems, fmt.Errorf("no activity registered for worker %s", taskType))
		}
	}
	for _, a := range reg.Activities {
		if liveStatuses[a.ImplementationStatus] && !t.serves(a.TaskType) {
			problems = append(problems, fmt.Errorf("activity %s is %s but no worker serves %s",
				a.ID, a.ImplementationStatus, a.TaskType))
		}
	}
	return stderrors.Join(problems...)
}

func (t *tool) serves(taskType string) bool {
	for _, s := range t.served {
		if s == taskType {
			return true
		}
	}
	return false
}

// save checks the registry and writes it. Nothing is written when the check fails.
func (t *tool) save(reg *registry.ActivityRegistry) error {
	if err := t.check(reg); err != nil {
		return err
	}
	reg.LastUpdated = t.now().UTC().Format(time.RFC3339)

	data, err := json.MarshalIndent(reg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal registry: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(t.path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(t.path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("failed to write registry file: %w", err)
	}
	return nil
}

func setField(a *registry.Activity, field, value string) error {
	switch field {
	case "status":
		a.ImplementationStatus = value
	case "version":
		a.Version = value
	case "displayName":
		a.DisplayName = value
	case "description":
		a.Description = value
	case "category":
		a.Category = value
	case "taskType":
		a.TaskType = value
	case "timeout":
		a.Timeout = value
	case "retries":
		retries, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid retries value: %w", err)
		}
		a.Retries = retries
	case "tags":
		a.Tags = strings.Split(value, ",")
	default:
		return fmt.Errorf("unknown field: %s", field)
	}
	return nil
}

// readSchema loads a JSON schema file. No path means an open object schema.
func readSchema(path string) (map[string]interface{}, error) {
	if path == "" {
		return map[string]interface{}{"type": "object"}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema: %w", err)
	}
	var schema map[string]interface{}
	if err := json.Unmarshal(data, &schema); err != nil {
		return nil, fmt.Errorf("schema %s is not a JSON object: %w", path, err)
	}
	return schema, nil
}
