package taskqueue

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

func TestEnqueueDeduplicatesPerKey(t *testing.T) {
	store := newFakeStore()
	queue, err := NewQueue(store)
	if err != nil {
		t.Fatalf("NewQueue: %v", err)
	}
	ctx := context.Background()

	if err := queue.Enqueue(ctx, "order.recalculate_total", "order-1"); err != nil {
		t.Fatalf("first enqueue: %v", err)
	}
	if err := queue.Enqueue(ctx, "order.recalculate_total", "order-1"); err != nil {
		t.Fatalf("second enqueue: %v", err)
	}
	if err := queue.Enqueue(ctx, "order.recalculate_total", "order-2"); err != nil {
		t.Fatalf("distinct key enqueue: %v", err)
	}

	if got := store.queueLen(); got != 2 {
		t.Fatalf("expected 2 queued tasks after coalescing, got %d", got)
	}
}

func TestPopClearsPendingMarker(t *testing.T) {
	store := newFakeStore()
	queue, _ := NewQueue(store)
	ctx := context.Background()

	if err := queue.Enqueue(ctx, "product.aggregate_reviews", "prod-9"); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	task, err := queue.Pop(ctx, time.Second)
	if err != nil {
		t.Fatalf("pop: %v", err)
	}
	if task.Kind != "product.aggregate_reviews" || task.Key != "prod-9" {
		t.Fatalf("unexpected task %+v", task)
	}

	// The marker is gone, so the same key can be scheduled again.
	if err := queue.Enqueue(ctx, "product.aggregate_reviews", "prod-9"); err != nil {
		t.Fatalf("re-enqueue: %v", err)
	}
	if got := store.queueLen(); got != 1 {
		t.Fatalf("expected re-enqueue to queue a fresh task, got %d", got)
	}
}

func TestEnqueueRejectsEmptyKinds(t *testing.T) {
	queue, _ := NewQueue(newFakeStore())
	if err := queue.Enqueue(context.Background(), "", "key"); err == nil {
		t.Fatal("expected error for empty kind")
	}
	if err := queue.Enqueue(context.Background(), "kind", ""); err == nil {
		t.Fatal("expected error for empty key")
	}
}

type fakeStore struct {
	mu      sync.Mutex
	markers map[string]struct{}
	lists   map[string][]string
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		markers: make(map[string]struct{}),
		lists:   make(map[string][]string),
	}
}

func (f *fakeStore) SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.markers[key]; ok {
		return false, nil
	}
	f.markers[key] = struct{}{}
	return true, nil
}

func (f *fakeStore) Del(ctx context.Context, keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, key := range keys {
		delete(f.markers, key)
	}
	return nil
}

func (f *fakeStore) LPush(ctx context.Context, key string, values ...any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, v := range values {
		f.lists[key] = append([]string{fmt.Sprint(v)}, f.lists[key]...)
	}
	return nil
}

func (f *fakeStore) BRPop(ctx context.Context, timeout time.Duration, keys ...string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, key := range keys {
		list := f.lists[key]
		if len(list) == 0 {
			continue
		}
		last := list[len(list)-1]
		f.lists[key] = list[:len(list)-1]
		return []string{key, last}, nil
	}
	return nil, goredis.Nil
}

func (f *fakeStore) TaskQueueKey(queue string) string {
	return "sf:task:queue:" + queue
}

func (f *fakeStore) TaskPendingKey(kind, entityKey string) string {
	return "sf:task:pending:" + kind + ":" + entityKey
}

func (f *fakeStore) queueLen() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	total := 0
	for _, list := range f.lists {
		total += len(list)
	}
	return total
}
