package scheduler

import (
	"context"
	"errors"
	"time"

	"leadscore_backend/platform/config"
	"leadscore_backend/platform/redisopt"

	"github.com/hibiken/asynq"
)

const defaultUniqueWindow = time.Hour

type taskEnqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
	Close() error
}

type Client struct {
	client taskEnqueuer
	queue  string
	unique time.Duration
}

// RescoreEnqueuer hands a lead to the background rescore worker.
type RescoreEnqueuer interface {
	EnqueueRescore(ctx context.Context, payload RescorePayload) error
}

func NewClient(cfg config.SchedulerConfig) (*Client, error) {
	opt, err := redisopt.Asynq(cfg)
	if err != nil {
		return nil, err
	}

	return newClient(asynq.NewClient(opt), cfg.GetAsynqQueueName(), cfg.GetRescoreInterval()), nil
}

func newClient(enqueuer taskEnqueuer, queue string, unique time.Duration) *Client {
	if queue == "" {
		queue = "default"
	}
	if unique <= 0 {
		unique = defaultUniqueWindow
	}
	return &Client{client: enqueuer, queue: queue, unique: unique}
}

func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

// EnqueueRescore queues a rescore for one lead. A lead already queued within
// the uniqueness window is not queued twice.
func (c *Client) EnqueueRescore(ctx context.Context, payload RescorePayload) error {
	if c == nil || c.client == nil {
		return nil
	}

	task, err := NewRescoreTask(payload)
	if err != nil {
		return err
	}

	_, err = c.client.EnqueueContext(ctx, task, asynq.Queue(c.queue), asynq.Unique(c.unique))
	if errors.Is(err, asynq.ErrDuplicateTask) {
		return nil
	}
	return err
}
