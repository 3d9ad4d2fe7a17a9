package queue

import (
	"context"
	"sync"
)

const defaultMemorySize = 64

// Memory is a channel backed queue for a single process. Failed messages are
// dropped.
type Memory struct {
	ch     chan string
	mu     sync.RWMutex
	closed bool
}

func NewMemory(size int) *Memory {
	if size <= 0 {
		size = defaultMemorySize
	}
	return &Memory{ch: make(chan string, size)}
}

func (q *Memory) Publish(ctx context.Context, runID string) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return ErrClosed
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case q.ch <- runID:
		return nil
	}
}

func (q *Memory) Consume(ctx context.Context, workers int, handler Handler) error {
	if workers <= 0 {
		workers = 1
	}
	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case runID, ok := <-q.ch:
					if !ok {
						return
					}
					_ = handler(ctx, runID)
				}
			}
		}()
	}
	wg.Wait()
	if err := ctx.Err(); err != nil {
		return err
	}
	return ErrClosed
}

func (q *Memory) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if !q.closed {
		close(q.ch)
		q.closed = true
	}
	return nil
}
