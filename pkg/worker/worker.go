// Package worker runs the background consumer side of the task queue.
package worker

import (
	"context"

	"github.com/hibiken/asynq"

	"github.com/docuvault/docuvault/pkg/logger"
)

// Worker is a long-running task consumer.
type Worker interface {
	Start(ctx context.Context) error
	Stop() error
}

// Config tunes the asynq server shared by all workers.
type Config struct {
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	Concurrency   int
}

// BaseWorker holds the asynq server plumbing workers share.
type BaseWorker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	logger logger.Logger
}

// Stop signals the server to finish in-flight tasks and shut down.
func (w *BaseWorker) Stop() error {
	w.server.Stop()
	w.server.Shutdown()
	return nil
}
