package taskqueue

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/atelierno/storefront-backend/pkg/logger"
	"github.com/atelierno/storefront-backend/pkg/metrics"
	"github.com/atelierno/storefront-backend/pkg/redis"
)

// Handler processes a single task. Errors are logged and swallowed; the task
// is not retried.
type Handler func(ctx context.Context, key string) error

// Worker drains the queue and dispatches tasks to registered handlers.
type Worker struct {
	queue       *Queue
	logg        *logger.Logger
	metrics     *metrics.TaskMetrics
	popTimeout  time.Duration
	concurrency int

	mu       sync.RWMutex
	handlers map[string]Handler
}

// WorkerParams groups the worker dependencies.
type WorkerParams struct {
	Queue       *Queue
	Logger      *logger.Logger
	Metrics     *metrics.TaskMetrics
	PopTimeout  time.Duration
	Concurrency int
}

// NewWorker builds a worker with the provided queue and settings.
func NewWorker(params WorkerParams) (*Worker, error) {
	if params.Queue == nil {
		return nil, fmt.Errorf("queue required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.PopTimeout <= 0 {
		params.PopTimeout = 5 * time.Second
	}
	if params.Concurrency <= 0 {
		params.Concurrency = 1
	}
	return &Worker{
		queue:       params.Queue,
		logg:        params.Logger,
		metrics:     params.Metrics,
		popTimeout:  params.PopTimeout,
		concurrency: params.Concurrency,
		handlers:    make(map[string]Handler),
	}, nil
}

// Register binds a handler to a task kind. Registering a kind twice replaces
// the previous handler.
func (w *Worker) Register(kind string, handler Handler) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.handlers[kind] = handler
}

// Run consumes tasks until the context is canceled. Each goroutine holds its
// own blocking pop, so concurrency bounds in-flight handlers.
func (w *Worker) Run(ctx context.Context) error {
	var wg sync.WaitGroup
	for i := 0; i < w.concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w.loop(ctx)
		}()
	}
	wg.Wait()
	return ctx.Err()
}

func (w *Worker) loop(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}

		task, err := w.queue.Pop(ctx, w.popTimeout)
		if err != nil {
			if redis.IsNil(err) || errors.Is(err, context.Canceled) {
				continue
			}
			w.logg.Error(ctx, "task.pop_failed", err)
			continue
		}

		w.dispatch(ctx, task)
	}
}

func (w *Worker) dispatch(ctx context.Context, task *Task) {
	w.mu.RLock()
	handler, ok := w.handlers[task.Kind]
	w.mu.RUnlock()

	taskCtx := w.logg.WithTask(ctx, task.Kind, task.Key)
	if !ok {
		w.logg.Warn(taskCtx, "task.unknown_kind")
		return
	}

	start := time.Now()
	err := handler(taskCtx, task.Key)
	w.metrics.ObserveDuration(task.Kind, time.Since(start))

	if err != nil {
		w.metrics.IncFailure(task.Kind)
		w.logg.Error(taskCtx, "task.failed", err)
		return
	}
	w.metrics.IncSuccess(task.Kind)
	w.logg.Info(taskCtx, "task.completed")
}
