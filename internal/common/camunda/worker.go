// internal/common/camunda/worker.go
package camunda

import (
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
	"go.uber.org/zap"
)

// HandlerFunc is the job callback shape shared by all task handlers. Handlers
// complete or fail their own jobs through the JobClient.
type HandlerFunc func(client worker.JobClient, job entities.Job)

// Worker wraps an open Zeebe job worker for one task type.
type Worker struct {
	worker   worker.JobWorker
	logger   *zap.Logger
	taskType string
}

// WorkerOptions carries the per-task-type polling settings from config.
type WorkerOptions struct {
	MaxJobsActive int
	Timeout       time.Duration
}

func NewWorker(client zbc.Client, taskType string, opts WorkerOptions, handler HandlerFunc, logger *zap.Logger) *Worker {
	jobWorker := client.NewJobWorker().
		JobType(taskType).
		Handler(worker.JobHandler(handler)).
		MaxJobsActive(opts.MaxJobsActive).
		Timeout(opts.Timeout).
		Open()

	logger.Info("worker started",
		zap.String("taskType", taskType),
		zap.Int("maxJobsActive", opts.MaxJobsActive),
		zap.Duration("timeout", opts.Timeout),
	)

	return &Worker{
		worker:   jobWorker,
		logger:   logger,
		taskType: taskType,
	}
}

// Close drains in-flight jobs and stops polling.
func (w *Worker) Close() {
	w.logger.Info("stopping worker", zap.String("taskType", w.taskType))
	w.worker.Close()
}
