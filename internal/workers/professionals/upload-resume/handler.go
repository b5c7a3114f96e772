package uploadresume

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"professionals-admin/internal/common/errors"
	"professionals-admin/internal/common/logger"
	"professionals-admin/internal/common/metrics"
	"professionals-admin/internal/dataprovider"
	"professionals-admin/internal/professionals"
	"professionals-admin/pkg/registry"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/gabriel-vasile/mimetype"
)

const TaskType = "upload-resume"

const defaultFileName = "resume.pdf"

type ResumeUploader interface {
	UploadResume(ctx context.Context, id int64, file professionals.ResumeFile) (*dataprovider.Result, error)
}

type Handler struct {
	config     *Config
	uploader   ResumeUploader
	activity   *registry.Activity
	observer   professionals.SubmissionObserver
	errHandler *errors.ErrorHandler
	logger     logger.Logger
}

type HandlerOptions struct {
	Config   *Config
	Uploader ResumeUploader
	Registry *registry.ActivityRegistry
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
	if opts.Uploader == nil {
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
		uploader:   opts.Uploader,
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

// decodeFile turns the job variables into an upload. A missing content type
// is detected from the bytes, so only real PDFs pass the type check.
func (h *Handler) decodeFile(input *Input) (professionals.ResumeFile, error) {
	data, err := base64.StdEncoding.DecodeString(input.ContentBase64)
	if err != nil {
		return professionals.ResumeFile{}, errors.NewInputValidationError(fmt.Sprintf("contentBase64: %v", err))
	}
	if h.config.MaxFileBytes > 0 && len(data) > h.config.MaxFileBytes {
		return professionals.ResumeFile{}, errors.NewInputValidationError(
			fmt.Sprintf("contentBase64: %d bytes exceeds the limit of %d", len(data), h.config.MaxFileBytes))
	}

	file := professionals.ResumeFile{
		Name:        input.FileName,
		ContentType: input.ContentType,
	}
	if file.Name == "" {
		file.Name = defaultFileName
	}
	if len(data) > 0 {
		file.Content = bytes.NewReader(data)
		if file.ContentType == "" {
			file.ContentType = mimetype.Detect(data).String()
		}
	}
	return file, nil
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	file, err := h.decodeFile(input)
	if err != nil {
		return nil, err
	}

	var result *dataprovider.Result
	submission := professionals.NewSubmission(professionals.KindUpload, h.observer)
	err = submission.Run(ctx, func(ctx context.Context) error {
		var err error
		result, err = h.uploader.UploadResume(ctx, input.ProfessionalID, file)
		return err
	})
	if err != nil {
		return nil, err
	}

	h.logger.Info("resume uploaded", map[string]interface{}{
		"professionalId": input.ProfessionalID,
		"fileName":       file.Name,
		"httpStatus":     result.Status,
		"elapsedMs":      submission.Elapsed().Milliseconds(),
	})
	return &Output{ResumeUploaded: true, HTTPStatus: result.Status, Response: result.Data}, nil
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
	h.logger.Info("job completed", map[string]interface{}{"jobKey": job.GetKey()})
}

func (h *Handler) failJob(ctx context.Context, client worker.JobClient, job entities.Job, err error) {
	stdErr := h.errHandler.HandleJobError(ctx, client, job, err)
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(stdErr.Code)).Inc()
}
