package listprofessionals

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

const TaskType = "list-professionals"

// Lister is the part of professionals.Client this worker needs.
type Lister interface {
	List(ctx context.Context, opts professionals.ListOptions) ([]professionals.Professional, error)
}

type Handler struct {
	config     *Config
	lister     Lister
	activity   *registry.Activity
	errHandler *errors.ErrorHandler
	logger     logger.Logger
}

type HandlerOptions struct {
	Config   *Config
	Lister   Lister
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
	if opts.Lister == nil {
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
		lister:     opts.Lister,
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
	return &input, nil
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	source, ok := professionals.ParseSource(input.Source)
	if !ok {
		return nil, errors.NewInvalidSourceError(input.Source)
	}

	includeResume := h.config.IncludeResume
	if input.IncludeResume != nil {
		includeResume = *input.IncludeResume
	}

	list, err := h.lister.List(ctx, professionals.ListOptions{Source: source, IncludeResume: includeResume})
	if err != nil {
		return nil, err
	}

	h.logger.Info("professionals listed", map[string]interface{}{
		"source": string(source),
		"count":  len(list),
	})
	return &Output{Professionals: list, Count: len(list)}, nil
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
	h.logger.Info("job completed", map[string]interface{}{"jobKey": job.GetKey(), "count": output.Count})
}

func (h *Handler) failJob(ctx context.Context, client worker.JobClient, job entities.Job, err error) {
	stdErr := h.errHandler.HandleJobError(ctx, client, job, err)
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(stdErr.Code)).Inc()
}
