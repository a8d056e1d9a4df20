package taskqueue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// QueueName is the single list all recomputation tasks flow through.
const QueueName = "recompute"

// pendingTTL bounds how long a dedup marker can outlive a lost payload.
const pendingTTL = time.Hour

// Store is the subset of the redis client the queue relies on.
type Store interface {
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	Del(ctx context.Context, keys ...string) error
	LPush(ctx context.Context, key string, values ...any) error
	BRPop(ctx context.Context, timeout time.Duration, keys ...string) ([]string, error)
	TaskQueueKey(queue string) string
	TaskPendingKey(kind, entityKey string) string
}

// Task is the unit of work carried through the queue.
type Task struct {
	Kind       string    `json:"kind"`
	Key        string    `json:"key"`
	EnqueuedAt time.Time `json:"enqueued_at"`
}

// Queue is a fire-and-forget work queue with at-most-one pending task per
// (kind, key) pair. Enqueueing a task whose dedup marker is already set is a
// no-op; the eventual run recomputes from current persisted state, so a
// coalesced enqueue loses nothing.
type Queue struct {
	store Store
}

// NewQueue builds a queue backed by the provided store.
func NewQueue(store Store) (*Queue, error) {
	if store == nil {
		return nil, fmt.Errorf("task store required")
	}
	return &Queue{store: store}, nil
}

// Enqueue schedules a task unless one is already pending for the same kind/key.
func (q *Queue) Enqueue(ctx context.Context, kind, key string) error {
	if kind == "" || key == "" {
		return fmt.Errorf("task kind and key are required")
	}

	created, err := q.store.SetNX(ctx, q.store.TaskPendingKey(kind, key), "1", pendingTTL)
	if err != nil {
		return fmt.Errorf("set pending marker: %w", err)
	}
	if !created {
		return nil
	}

	payload, err := json.Marshal(Task{Kind: kind, Key: key, EnqueuedAt: time.Now().UTC()})
	if err != nil {
		return fmt.Errorf("marshal task: %w", err)
	}
	if err := q.store.LPush(ctx, q.store.TaskQueueKey(QueueName), string(payload)); err != nil {
		// Roll the marker back so a later mutation can re-enqueue.
		_ = q.store.Del(ctx, q.store.TaskPendingKey(kind, key))
		return fmt.Errorf("push task: %w", err)
	}
	return nil
}

// Pop blocks up to timeout for the next task. The dedup marker is cleared
// before the task is returned, so a mutation racing the handler run schedules
// a fresh recompute instead of being swallowed. The marker therefore bounds
// pending tasks, not in-flight ones: with concurrent workers two runs for the
// same key can overlap, and handlers must recompute from a consistent
// snapshot rather than carry state across runs.
func (q *Queue) Pop(ctx context.Context, timeout time.Duration) (*Task, error) {
	values, err := q.store.BRPop(ctx, timeout, q.store.TaskQueueKey(QueueName))
	if err != nil {
		return nil, err
	}
	if len(values) < 2 {
		return nil, fmt.Errorf("unexpected brpop reply of length %d", len(values))
	}

	var task Task
	if err := json.Unmarshal([]byte(values[1]), &task); err != nil {
		return nil, fmt.Errorf("unmarshal task: %w", err)
	}
	if err := q.store.Del(ctx, q.store.TaskPendingKey(task.Kind, task.Key)); err != nil {
		return nil, fmt.Errorf("clear pending marker: %w", err)
	}
	return &task, nil
}
