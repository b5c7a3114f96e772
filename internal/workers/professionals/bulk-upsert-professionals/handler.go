package bulkupsertprofessionals

import (
	"context"
	"fmt"
	"time"

	"professionals-admin/internal/common/errors"
	"professionals-admin/internal/common/logger"
	"professionals-admin/internal/common/metrics"
	"professionals-admin/internal/professionals"
	"professionals-admin/pkg/registry"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "bulk-upsert-professionals"

type BulkSubmitter interface {
	EligibleDrafts(drafts []professionals.Draft) []professionals.Draft
	SubmitBulk(ctx context.Context, drafts []professionals.Draft) (*professionals.BulkResult, error)
}

type Handler struct {
	config     *Config
	submitter  BulkSubmitter
	activity   *registry.Activity
	observer   professionals.SubmissionObserver
	errHandler *errors.ErrorHandler
	logger     logger.Logger
}

type HandlerOptions struct {
	Config    *Config
	Submitter BulkSubmitter
	Registry  *registry.ActivityRegistry
	Observer  professionals.SubmissionObserver
	Logger    logger.Logger
}

func NewHandler(opts HandlerOptions) (*Handler, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration for %s: %w", TaskType, err)
	}
	if opts.Submitter == nil {
		return nil, fmt.Errorf("%s needs a professionals client", TaskType)
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
		submitter:  opts.Submitter,
		activity:   activity,
		observer:   opts.Observer,
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

	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":             job.GetKey(),
		"processInstanceKey": job.GetProcessInstanceKey(),
	})

	input, err := h.parseInput(job)
	if err != nil {
		h.failJob(ctx, client, job, err)
		return
	}

	output, err := h.Execute(ctx, input)
	if err != nil {
		h.failJob(ctx, client, job, err)
		return
	}

	h.completeJob(ctx, client, job, output)
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
	if h.config.MaxDrafts > 0 && len(input.Drafts) > h.config.MaxDrafts {
		return nil, errors.NewInputValidationError(
			fmt.Sprintf("drafts: %d rows exceeds the limit of %d", len(input.Drafts), h.config.MaxDrafts))
	}
	return &input, nil
}

// Execute submits the drafts once. Rows that failed on the server are part
// of the output, not an error.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	drafts := input.toDrafts()
	submitted := len(h.submitter.EligibleDrafts(professionals.NormalizeDrafts(drafts)))

	var result *professionals.BulkResult
	submission := professionals.NewSubmission(professionals.KindBulk, h.observer)
	err := submission.Run(ctx, func(ctx context.Context) error {
		var err error
		result, err = h.submitter.SubmitBulk(ctx, drafts)
		return err
	})
	if err != nil {
		return nil, err
	}

	rows := make([]RowOutcome, 0, result.Total())
	failed := 0
	for _, item := range result.Results {
		p := professionals.PresentStatus(item.Status)
		if p.Indicator == professionals.IndicatorError {
			failed++
		}
		rows = append(rows, RowOutcome{Index: item.Index, Status: p.Label, Indicator: p.Indicator, Error: item.Error})
	}

	h.logger.Info("bulk upsert finished", map[string]interface{}{
		"submitted":    submitted,
		"skipped":      len(drafts) - submitted,
		"created":      result.Created,
		"updated":      result.Updated,
		"failed":       result.Failed,
		"rowsReported": len(rows),
		"elapsedMs":    submission.Elapsed().Milliseconds(),
	})
	return &Output{
		BulkResult: result,
		Rows:       rows,
		Submitted:  submitted,
		Skipped:    len(drafts) - submitted,
		Failed:     failed,
	}, nil
}

func (h *Handler) completeJob(ctx context.Context, client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().JobKey(job.GetKey()).VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"jobKey": job.GetKey(),
			"error":  err.Error(),
		})
		return
	}
	if _, err := cmd.Send(ctx); err != nil {
		h.logger.Error("failed to complete job", map[string]interface{}{
			"jobKey": job.GetKey(),
			"error":  err.Error(),
		})
		return
	}
	h.logger.Info("job completed", map[string]interface{}{
		"jobKey":    job.GetKey(),
		"submitted": output.Submitted,
		"failed":    output.Failed,
	})
}

func (h *Handler) failJob(ctx context.Context, client worker.JobClient, job entities.Job, err error) {
	stdErr := h.errHandler.HandleJobError(ctx, client, job, err)
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(stdErr.Code)).Inc()
}
