package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"professionals-admin/pkg/registry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

// newTestTool copies the shipped registry into a temp dir.
func newTestTool(t *testing.T) (*tool, *bytes.Buffer) {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("..", "..", "..", registry.DefaultPath))
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "activities.json")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	out := &bytes.Buffer{}
	return &tool{
		path:   path,
		out:    out,
		now:    func() time.Time { return fixedNow },
		served: servedTaskTypes,
	}, out
}

func load(t *testing.T, path string) *registry.ActivityRegistry {
	t.Helper()
	reg, err := registry.LoadRegistry(path)
	require.NoError(t, err)
	return reg
}

func writeSchema(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "schema.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestValidate_ShippedRegistry(t *testing.T) {
	tl, out := newTestTool(t)

	require.NoError(t, tl.run("validate", nil))
	assert.Contains(t, out.String(), "Found 4 activities, 4 served by workers.")
}

func TestValidate_WorkerCoverage(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*registry.ActivityRegistry)
		errMsg string
	}{
		{
			name: "worker without activity",
			mutate: func(r *registry.ActivityRegistry) {
				r.Activities = r.Activities[:len(r.Activities)-1]
			},
			errMsg: "no activity registered for worker upload-resume",
		},
		{
			name: "completed activity without worker",
			mutate: func(r *registry.ActivityRegistry) {
				r.Activities = append(r.Activities, registry.Activity{
					ID: "archive-professional", DisplayName: "Archive Professional",
					Category: "professionals", TaskType: "archive-professional",
					ImplementationStatus: "completed", Timeout: "10s",
				})
			},
			errMsg: "activity archive-professional is completed but no worker serves archive-professional",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tl, _ := newTestTool(t)
			reg := load(t, tl.path)
			require.Equal(t, "upload-resume", reg.Activities[len(reg.Activities)-1].TaskType)
			tt.mutate(reg)

			err := tl.check(reg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestAdd(t *testing.T) {
	tl, out := newTestTool(t)
	schema := writeSchema(t, `{"type":"object","required":["professionalId"],"properties":{"professionalId":{"type":"integer"}}}`)

	err := tl.run("add", []string{
		"-id", "archive-professional",
		"-displayName", "Archive Professional",
		"-description", "Archives a professional record",
		"-input-schema", schema,
	})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Added activity: archive-professional")

	reg := load(t, tl.path)
	assert.Equal(t, fixedNow.Format(time.RFC3339), reg.LastUpdated)
	activity, ok := reg.Find("archive-professional")
	require.True(t, ok)
	assert.Equal(t, "planned", activity.ImplementationStatus)
	assert.Equal(t, "professionals", activity.Category)
	assert.Equal(t, map[string]interface{}{"type": "object"}, activity.OutputSchema)

	result, err := activity.ValidateInput(map[string]interface{}{})
	require.NoError(t, err)
	assert.False(t, result.Valid)

	err = tl.run("add", []string{"-id", "archive-professional", "-displayName", "Again", "-description", "dup"})
	assert.ErrorContains(t, err, "already exists")
}

func TestAdd_RejectedChangesAreNotSaved(t *testing.T) {
	tests := []struct {
		name   string
		args   []string
		errMsg string
	}{
		{
			name:   "schema that does not compile",
			args:   []string{"-input-schema", `{"type": 12}`},
			errMsg: "invalid input schema",
		},
		{
			name:   "output schema that does not compile",
			args:   []string{"-output-schema", `{"type": 12}`},
			errMsg: "invalid output schema",
		},
		{
			name:   "completed without a worker",
			args:   []string{"-status", "completed"},
			errMsg: "no worker serves archive-professional",
		},
		{
			name:   "bad timeout",
			args:   []string{"-timeout", "soon"},
			errMsg: "invalid timeout",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tl, _ := newTestTool(t)
			before, err := os.ReadFile(tl.path)
			require.NoError(t, err)

			args := []string{"-id", "archive-professional", "-displayName", "Archive Professional", "-description", "Archives"}
			for i := 0; i < len(tt.args); i += 2 {
				value := tt.args[i+1]
				if tt.args[i] == "-input-schema" || tt.args[i] == "-output-schema" {
					value = writeSchema(t, value)
				}
				args = append(args, tt.args[i], value)
			}

			err = tl.run("add", args)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)

			after, err := os.ReadFile(tl.path)
			require.NoError(t, err)
			assert.Equal(t, before, after)
		})
	}
}

func TestAdd_RequiresFields(t *testing.T) {
	tl, _ := newTestTool(t)
	err := tl.run("add", []string{"-id", "archive-professional"})
	assert.ErrorContains(t, err, "required for add")
}

func TestUpdate(t *testing.T) {
	tl, out := newTestTool(t)

	require.NoError(t, tl.run("update", []string{"-id", "upload-resume", "-field", "timeout", "-value", "90s"}))
	assert.Contains(t, out.String(), "Updated activity upload-resume, field timeout to 90s")

	activity, ok := load(t, tl.path).Find("upload-resume")
	require.True(t, ok)
	d, err := activity.TimeoutDuration()
	require.NoError(t, err)
	assert.Equal(t, 90*time.Second, d)

	require.NoError(t, tl.run("update", []string{"-id", "upload-resume", "-field", "tags", "-value", "write,file"}))
	activity, _ = load(t, tl.path).Find("upload-resume")
	assert.Equal(t, []string{"write", "file"}, activity.Tags)
}

func TestUpdate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		args   []string
		errMsg string
	}{
		{"unknown activity", []string{"-id", "nope", "-field", "status", "-value", "planned"}, "not found"},
		{"unknown field", []string{"-id", "upload-resume", "-field", "owner", "-value", "ops"}, "unknown field"},
		{"bad retries", []string{"-id", "upload-resume", "-field", "retries", "-value", "many"}, "invalid retries"},
		{"task type a worker no longer matches", []string{"-id", "upload-resume", "-field", "taskType", "-value", "upload-cv"}, "no activity registered for worker upload-resume"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tl, _ := newTestTool(t)
			err := tl.run("update", tt.args)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)

			_, ok := load(t, tl.path).Find("upload-resume")
			assert.True(t, ok)
		})
	}
}

func TestList(t *testing.T) {
	tl, out := newTestTool(t)

	require.NoError(t, tl.run("list", nil))
	for _, taskType := range servedTaskTypes {
		assert.Contains(t, out.String(), taskType)
	}
	assert.Contains(t, out.String(), "yes")
}

func TestRun_UnknownCommand(t *testing.T) {
	tl, out := newTestTool(t)

	err := tl.run("remove", nil)
	assert.ErrorContains(t, err, `unknown command "remove"`)
	assert.Contains(t, out.String(), "Usage: registry-updater")
}
