package createprofessional

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

const TaskType = "create-professional"

type Creator interface {
	Create(ctx context.Context, in professionals.CreateInput) (*professionals.Professional, error)
}

type Handler struct {
	config     *Config
	creator    Creator
	activity   *registry.Activity
	observer   professionals.SubmissionObserver
	errHandler *errors.ErrorHandler
	logger     logger.Logger
}

type HandlerOptions struct {
	Config   *Config
	Creator  Creator
	Registry *registry.ActivityRegistry
	// Observer receives the outcome of each submission. Optional.
	Observer professionals.SubmissionObserver
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
	if opts.Creator == nil {
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
		creator:    opts.Creator,
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
	return &input, nil
}

// Execute creates the record as one single-shot submission.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	var created *professionals.Professional
	submission := professionals.NewSubmission(professionals.KindCreate, h.observer)
	err := submission.Run(ctx, func(ctx context.Context) error {
		var err error
		created, err = h.creator.Create(ctx, input.toCreateInput())
		return err
	})
	if err != nil {
		return nil, err
	}

	h.logger.Info("professional created", map[string]interface{}{
		"professionalId": created.ID,
		"source":         string(created.Source),
		"elapsedMs":      submission.Elapsed().Milliseconds(),
	})
	return &Output{ProfessionalID: created.ID, Professional: created}, nil
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
		"jobKey":         job.GetKey(),
		"professionalId": output.ProfessionalID,
	})
}

func (h *Handler) failJob(ctx context.Context, client worker.JobClient, job entities.Job, err error) {
	stdErr := h.errHandler.HandleJobError(ctx, client, job, err)
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(stdErr.Code)).Inc()
}
