// Package queue enqueues and schedules the background tasks run by cmd/worker.
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"cinenacional-backend/internal/shared"

	"github.com/hibiken/asynq"
)

// Enqueuer is what request handlers depend on to hand work to the worker.
type Enqueuer interface {
	Enqueue(ctx context.Context, taskType string, payload any) error
}

// taskOptions are the per-type defaults applied on enqueue.
var taskOptions = map[string][]asynq.Option{
	shared.TypeProcessImage: {asynq.Queue(shared.QueueImages), asynq.MaxRetry(3), asynq.Timeout(2 * time.Minute)},
	shared.TypeDeleteImages: {asynq.Queue(shared.QueueImages), asynq.MaxRetry(5), asynq.Timeout(time.Minute)},
	shared.TypeSlugAudit:    {asynq.Queue(shared.QueueMaintenance), asynq.MaxRetry(1), asynq.Timeout(10 * time.Minute)},
}

// Options returns the enqueue options for taskType.
func Options(taskType string) []asynq.Option {
	return taskOptions[taskType]
}

// NewTask marshals payload into an asynq task.
func NewTask(taskType string, payload any) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", taskType, err)
	}
	return asynq.NewTask(taskType, data), nil
}

// Decode unmarshals a task payload. A malformed payload never succeeds on
// retry, so the error wraps asynq.SkipRetry.
func Decode(t *asynq.Task, dest any) error {
	if err := json.Unmarshal(t.Payload(), dest); err != nil {
		return fmt.Errorf("decode %s payload: %v: %w", t.Type(), err, asynq.SkipRetry)
	}
	return nil
}

type Client struct {
	client *asynq.Client
}

func NewClient(opt asynq.RedisClientOpt) *Client {
	return &Client{client: asynq.NewClient(opt)}
}

func (c *Client) Enqueue(ctx context.Context, taskType string, payload any) error {
	task, err := NewTask(taskType, payload)
	if err != nil {
		return err
	}
	if _, err := c.client.EnqueueContext(ctx, task, Options(taskType)...); err != nil {
		return fmt.Errorf("enqueue %s: %w", taskType, err)
	}
	return nil
}

func (c *Client) Close() error {
	return c.client.Close()
}
