package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"github.com/docuvault/docuvault/internal/pipeline"
	"github.com/docuvault/docuvault/pkg/logger"
	"github.com/docuvault/docuvault/pkg/queue"
)

// DocumentWorker consumes document processing tasks and runs them through
// the pipeline. Reprocess tasks take the same path; the pipeline recomputes
// from the stored file either way.
type DocumentWorker struct {
	BaseWorker
	pipeline *pipeline.Pipeline
	statuses queue.Queue
}

// NewDocumentWorker builds the worker and registers its handlers.
func NewDocumentWorker(cfg *Config, p *pipeline.Pipeline, statuses queue.Queue, log logger.Logger) (*DocumentWorker, error) {
	server := asynq.NewServer(
		asynq.RedisClientOpt{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB},
		asynq.Config{
			Concurrency: cfg.Concurrency,
			RetryDelayFunc: func(n int, err error, task *asynq.Task) time.Duration {
				return time.Duration(n) * time.Minute
			},
		},
	)

	w := &DocumentWorker{
		BaseWorker: BaseWorker{
			server: server,
			mux:    asynq.NewServeMux(),
			logger: log,
		},
		pipeline: p,
		statuses: statuses,
	}
	w.mux.HandleFunc(queue.TaskTypeDocumentProcess, w.handleDocumentProcess)
	w.mux.HandleFunc(queue.TaskTypeDocumentReprocess, w.handleDocumentProcess)
	return w, nil
}

func (w *DocumentWorker) handleDocumentProcess(ctx context.Context, t *asynq.Task) error {
	var task queue.Task
	if err := json.Unmarshal(t.Payload(), &task); err != nil {
		w.logger.Error("Failed to unmarshal task",
			logger.Error(err),
			logger.String("payload", string(t.Payload())),
		)
		return fmt.Errorf("unmarshal task: %w", err)
	}

	documentID := task.Payload["documentId"]
	if documentID == "" {
		return fmt.Errorf("task %s has no document id", task.ID)
	}

	w.logger.Info("Processing document task",
		logger.String("taskId", task.ID),
		logger.String("documentId", documentID),
	)
	started := time.Now()

	err := w.pipeline.Process(ctx, documentID)

	status := &queue.TaskStatus{
		TaskID:     task.ID,
		Status:     "completed",
		StartedAt:  started,
		FinishedAt: time.Now(),
	}
	if err != nil {
		status.Status = "failed"
		status.Error = err.Error()
	}
	if saveErr := w.statuses.SaveFinalStatus(ctx, status); saveErr != nil {
		w.logger.Error("Failed to save task status",
			logger.String("taskId", task.ID),
			logger.Error(saveErr),
		)
	}

	return err
}

// Start runs the server until the context is cancelled.
func (w *DocumentWorker) Start(ctx context.Context) error {
	go func() {
		if err := w.server.Run(w.mux); err != nil {
			w.logger.Error("Worker server stopped", logger.Error(err))
		}
	}()
	go func() {
		<-ctx.Done()
		w.Stop()
	}()
	return nil
}
