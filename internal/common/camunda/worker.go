package camunda

import (
	"time"

	"professionals-admin/internal/common/config"

	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
	"go.uber.org/zap"
)

// Workers holds the job workers opened by the manager so they can be closed
// together on shutdown.
type Workers struct {
	client  zbc.Client
	logger  *zap.Logger
	workers map[string]worker.JobWorker
}

func NewWorkers(client zbc.Client, logger *zap.Logger) *Workers {
	return &Workers{
		client:  client,
		logger:  logger,
		workers: make(map[string]worker.JobWorker),
	}
}

// Start opens a job worker for taskType unless it is disabled in config.
func (w *Workers) Start(taskType string, wcfg config.WorkerConfig, handler worker.JobHandler) {
	if !wcfg.Enabled {
		w.logger.Info("worker disabled", zap.String("taskType", taskType))
		return
	}

	w.workers[taskType] = w.client.NewJobWorker().
		JobType(taskType).
		Handler(handler).
		MaxJobsActive(wcfg.MaxJobsActive).
		Timeout(time.Duration(wcfg.Timeout) * time.Millisecond).
		Name(taskType + "-worker").
		Open()

	w.logger.Info("worker started",
		zap.String("taskType", taskType),
		zap.Int("maxJobsActive", wcfg.MaxJobsActive),
		zap.Int("timeout_ms", wcfg.Timeout),
	)
}

func (w *Workers) Count() int {
	return len(w.workers)
}

// Close stops every worker and waits for in-flight jobs to finish.
func (w *Workers) Close() {
	for taskType, jw := range w.workers {
		w.logger.Info("stopping worker", zap.String("taskType", taskType))
		jw.Close()
		jw.AwaitClose()
	}
	w.workers = map[string]worker.JobWorker{}
}
