// Package queue hands document-processing work from the API server to the
// worker through Redis. asynq carries the tasks; final statuses are mirrored
// into plain Redis keys with a TTL so the API can answer status queries after
// asynq has pruned the task.
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/docuvault/docuvault/config"
)

const (
	TaskTypeDocumentProcess   = "document:process"
	TaskTypeDocumentReprocess = "document:reprocess"
)

// ErrTaskNotFound reports a task unknown to both asynq and the status mirror.
var ErrTaskNotFound = errors.New("task not found")

// Queue is the producer-side interface the document service depends on.
type Queue interface {
	Enqueue(ctx context.Context, task *Task) error
	GetTaskStatus(ctx context.Context, taskID string) (*TaskStatus, error)
	CancelTask(ctx context.Context, taskID string) error
	SaveFinalStatus(ctx context.Context, status *TaskStatus) error
}

// Task is the unit of queued work. Payload carries the document ID and
// whatever else the handler needs.
type Task struct {
	ID        string            `json:"id"`
	Type      string            `json:"type"`
	Payload   map[string]string `json:"payload"`
	CreatedAt time.Time         `json:"createdAt"`
}

// TaskStatus is the externally visible state of a task.
type TaskStatus struct {
	TaskID     string    `json:"taskId"`
	Status     string    `json:"status"` // pending, running, completed, failed
	Error      string    `json:"error,omitempty"`
	StartedAt  time.Time `json:"startedAt"`
	FinishedAt time.Time `json:"finishedAt,omitempty"`
}

// AsynqQueue is the Redis-backed implementation.
type AsynqQueue struct {
	client    *asynq.Client
	inspector *asynq.Inspector
	redis     *redis.Client
	statusTTL time.Duration
}

// New connects the queue client to Redis.
func New(cfg config.RedisConfig) (*AsynqQueue, error) {
	redisOpt := asynq.RedisClientOpt{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	}
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return &AsynqQueue{
		client:    asynq.NewClient(redisOpt),
		inspector: asynq.NewInspector(redisOpt),
		redis:     redisClient,
		statusTTL: cfg.StatusTTL,
	}, nil
}

// Close releases the underlying connections.
func (q *AsynqQueue) Close() error {
	if err := q.client.Close(); err != nil {
		return err
	}
	return q.redis.Close()
}

// Enqueue schedules the task on the default queue under its own ID, so the
// caller can poll status with the same identifier it generated.
func (q *AsynqQueue) Enqueue(ctx context.Context, task *Task) error {
	payload, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("marshal task: %w", err)
	}

	t := asynq.NewTask(task.Type, payload,
		asynq.TaskID(task.ID),
		asynq.MaxRetry(3),
		asynq.Timeout(10*time.Minute),
	)
	if _, err := q.client.EnqueueContext(ctx, t); err != nil {
		return fmt.Errorf("enqueue task: %w", err)
	}
	return nil
}

// GetTaskStatus checks the status mirror first, then falls back to asking
// asynq directly for tasks still in flight.
func (q *AsynqQueue) GetTaskStatus(ctx context.Context, taskID string) (*TaskStatus, error) {
	data, err := q.redis.Get(ctx, statusKey(taskID)).Bytes()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("get status from redis: %w", err)
	}
	if err == nil {
		var status TaskStatus
		if err := json.Unmarshal(data, &status); err != nil {
			return nil, fmt.Errorf("unmarshal status: %w", err)
		}
		return &status, nil
	}

	info, err := q.inspector.GetTaskInfo("default", taskID)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrTaskNotFound, taskID)
	}
	return convertAsynqStatus(info), nil
}

// CancelTask removes a not-yet-finished task from the queue.
func (q *AsynqQueue) CancelTask(ctx context.Context, taskID string) error {
	if err := q.inspector.DeleteTask("default", taskID); err != nil {
		return fmt.Errorf("cancel task %s: %w", taskID, err)
	}
	return nil
}

// SaveFinalStatus writes the status mirror entry. Called by the worker when a
// task finishes either way.
func (q *AsynqQueue) SaveFinalStatus(ctx context.Context, status *TaskStatus) error {
	data, err := json.Marshal(status)
	if err != nil {
		return fmt.Errorf("marshal status: %w", err)
	}
	if err := q.redis.Set(ctx, statusKey(status.TaskID), data, q.statusTTL).Err(); err != nil {
		return fmt.Errorf("save status: %w", err)
	}
	return nil
}

func statusKey(taskID string) string {
	return "task_status:" + taskID
}

func convertAsynqStatus(info *asynq.TaskInfo) *TaskStatus {
	status := &TaskStatus{
		TaskID:    info.ID,
		StartedAt: info.NextProcessAt,
	}
	switch info.State {
	case asynq.TaskStatePending, asynq.TaskStateScheduled:
		status.Status = "pending"
	case asynq.TaskStateActive:
		status.Status = "running"
	case asynq.TaskStateCompleted:
		status.Status = "completed"
		status.FinishedAt = info.CompletedAt
	case asynq.TaskStateRetry, asynq.TaskStateArchived:
		status.Status = "failed"
		status.Error = info.LastErr
	default:
		status.Status = "pending"
	}
	return status
}
