package main

import (
	"bytes"
	"fmt"
	"go/format"
	"sort"
	"strings"
	"text/template"
	"time"
	"unicode"

	"professionals-admin/pkg/registry"
)

// WorkerData holds data for templates
type WorkerData struct {
	Module       string
	Name         string
	PackageName  string
	TaskType     string
	Category     string
	Description  string
	Timeout      time.Duration
	InputFields  []Field
	OutputFields []Field
}

type Field struct {
	Name    string
	GoType  string
	JSONTag string
	Comment string
}

func newWorkerData(a *registry.Activity, module string) (*WorkerData, error) {
	timeout, err := a.TimeoutDuration()
	if err != nil {
		return nil, err
	}
	category := strings.ToLower(a.Category)
	if category == "" {
		category = "professionals"
	}
	return &WorkerData{
		Module:       module,
		Name:         a.DisplayName,
		PackageName:  strings.ReplaceAll(a.ID, "-", ""),
		TaskType:     a.TaskType,
		Category:     category,
		Description:  a.Description,
		Timeout:      timeout,
		InputFields:  schemaFields(a.InputSchema),
		OutputFields: schemaFields(a.OutputSchema),
	}, nil
}

// schemaFields turns the top-level properties of a JSON schema into struct
// fields, sorted by property name. Properties not listed as required get
// omitempty.
func schemaFields(schema map[string]interface{}) []Field {
	props, _ := schema["properties"].(map[string]interface{})
	required := map[string]bool{}
	if list, ok := schema["required"].([]interface{}); ok {
		for _, r := range list {
			if name, ok := r.(string); ok {
				required[name] = true
			}
		}
	}

	names := make([]string, 0, len(props))
	for name := range props {
		names = append(names, name)
	}
	sort.Strings(names)

	fields := make([]Field, 0, len(names))
	for _, name := range names {
		details, _ := props[name].(map[string]interface{})
		tag := name
		if !required[name] {
			tag += ",omitempty"
		}
		desc, _ := details["description"].(string)
		fields = append(fields, Field{
			Name:    exportedName(name),
			GoType:  goType(details["type"]),
			JSONTag: fmt.Sprintf("`json:\"%s\"`", tag),
			Comment: desc,
		})
	}
	return fields
}

// goType maps a JSON schema type to a Go type. A type list such as
// ["string","null"] becomes a pointer.
func goType(jsonType interface{}) string {
	switch t := jsonType.(type) {
	case string:
		switch t {
		case "string":
			return "string"
		case "integer":
			return "int64"
		case "number":
			return "float64"
		case "boolean":
			return "bool"
		case "object":
			return "map[string]interface{}"
		case "array":
			return "[]interface{}"
		}
	case []interface{}:
		var base interface{}
		nullable := false
		for _, v := range t {
			if v == "null" {
				nullable = true
				continue
			}
			base = v
		}
		if base == nil {
			return "interface{}"
		}
		gt := goType(base)
		if nullable && !strings.HasPrefix(gt, "[]") && !strings.HasPrefix(gt, "map") {
			return "*" + gt
		}
		return gt
	}
	return "interface{}"
}

// exportedName turns camelCase or snake_case into an exported identifier,
// upper-casing a trailing Id or Url.
func exportedName(name string) string {
	var b strings.Builder
	upper := true
	for _, r := range name {
		if r == '_' || r == '-' {
			upper = true
			continue
		}
		if upper {
			r = unicode.ToUpper(r)
			upper = false
		}
		b.WriteRune(r)
	}
	out := b.String()
	for _, initialism := range []string{"Id", "Url"} {
		if strings.HasSuffix(out, initialism) {
			out = strings.TrimSuffix(out, initialism) + strings.ToUpper(initialism)
		}
	}
	return out
}

var templates = map[string]string{
	"config.go":  configTemplate,
	"models.go":  modelsTemplate,
	"handler.go": handlerTemplate,
}

// render executes every template and gofmts the result.
func render(data *WorkerData) (map[string][]byte, error) {
	files := make(map[string][]byte, len(templates))
	for name, text := range templates {
		tmpl, err := template.New(name).Parse(text)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		var buf bytes.Buffer
		if err := tmpl.Execute(&buf, data); err != nil {
			return nil, fmt.Errorf("execute %s: %w", name, err)
		}
		src, err := format.Source(buf.Bytes())
		if err != nil {
			return nil, fmt.Errorf("format %s: %w", name, err)
		}
		files[name] = src
	}
	return files, nil
}

const configTemplate = `package {{ .PackageName }}

import (
	"fmt"
	"time"
)

type Config struct {
	Timeout time.Duration
}

func DefaultConfig() *Config {
	return &Config{Timeout: {{ printf "%d" .Timeout.Milliseconds }} * time.Millisecond}
}

func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	return nil
}
`

const modelsTemplate = `package {{ .PackageName }}

type Input struct {
{{- range .InputFields }}
{{- if .Comment }}
	// {{ .Comment }}
{{- end }}
	{{ .Name }} {{ .GoType }} {{ .JSONTag }}
{{- end }}
}

type Output struct {
{{- range .OutputFields }}
{{- if .Comment }}
	// {{ .Comment }}
{{- end }}
	{{ .Name }} {{ .GoType }} {{ .JSONTag }}
{{- end }}
}
`

const handlerTemplate = `// Package {{ .PackageName }} runs {{ .Name }} jobs.{{ if .Description }} {{ .Description }}{{ end }}
package {{ .PackageName }}

import (
	"context"
	"fmt"
	"time"

	"{{ .Module }}/internal/common/errors"
	"{{ .Module }}/internal/common/logger"
	"{{ .Module }}/internal/common/metrics"
	"{{ .Module }}/pkg/registry"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "{{ .TaskType }}"

type Backend interface {
	Execute(ctx context.Context, input *Input) (*Output, error)
}

type Handler struct {
	config     *Config
	backend    Backend
	activity   *registry.Activity
	errHandler *errors.ErrorHandler
	logger     logger.Logger
}

type HandlerOptions struct {
	Config   *Config
	Backend  Backend
	Registry *registry.ActivityRegistry
	Logger   logger.Logger
}

func NewHandler(opts HandlerOptions) (*Handler, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration for %s: %w", TaskType, err)
	}
	if opts.Backend == nil {
		return nil, fmt.Errorf("%s needs a backend", TaskType)
	}
	activity, ok := opts.Registry.Find(TaskType)
	if !ok {
		return nil, fmt.Errorf("activity %s is not registered", TaskType)
	}

	log := opts.Logger
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})

	return &Handler{
		config:     cfg,
		backend:    opts.Backend,
		activity:   activity,
		errHandler: errors.NewErrorHandler(log),
		logger:     log,
	}, nil
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	startTime := time.Now()
	metrics.WorkerJobsActive.WithLabelValues(TaskType).Inc()
	defer metrics.WorkerJobsActive.WithLabelValues(TaskType).Dec()

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	input, err := h.parseInput(job)
	if err != nil {
		h.failJob(ctx, client, job, err)
		return
	}

	output, err := h.backend.Execute(ctx, input)
	if err != nil {
		h.failJob(ctx, client, job, err)
		return
	}

	cmd, err := client.NewCompleteJobCommand().JobKey(job.GetKey()).VariablesFromObject(output)
	if err != nil {
		h.failJob(ctx, client, job, err)
		return
	}
	if _, err := cmd.Send(ctx); err != nil {
		h.logger.Error("failed to complete job", map[string]interface{}{"jobKey": job.GetKey(), "error": err.Error()})
		return
	}
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(startTime).Seconds())
}

func (h *Handler) parseInput(job entities.Job) (*Input, error) {
	variables, err := job.GetVariablesAsMap()
	if err != nil {
		return nil, errors.NewInputParsingError(err)
	}
	result, err := h.activity.ValidateInput(variables)
	if err != nil {
		return nil, errors.NewInputParsingError(err)
	}
	if !result.Valid {
		return nil, errors.NewInputValidationError(fmt.Sprintf("%v", result.GetErrorMessages()))
	}

	var input Input
	if err := job.GetVariablesAs(&input); err != nil {
		return nil, errors.NewInputParsingError(err)
	}
	return &input, nil
}

func (h *Handler) failJob(ctx context.Context, client worker.JobClient, job entities.Job, err error) {
	stdErr := h.errHandler.HandleJobError(ctx, client, job, err)
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(stdErr.Code)).Inc()
}
`
