package queue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	defaultRedisQueue = "paycrew:runs"
	defaultBlockWait  = 5 * time.Second
)

type RedisConfig struct {
	Address   string
	Password  string
	DB        int
	Queue     string
	BlockWait time.Duration
}

// Redis is a list backed queue: LPUSH to publish, BRPOP to consume.
type Redis struct {
	client *redis.Client
	queue  string
	wait   time.Duration
}

func NewRedis(ctx context.Context, cfg RedisConfig) (*Redis, error) {
	if cfg.Address == "" {
		return nil, errors.New("redis address is required")
	}
	name := cfg.Queue
	if name == "" {
		name = defaultRedisQueue
	}
	wait := cfg.BlockWait
	if wait <= 0 {
		wait = defaultBlockWait
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	return &Redis{client: client, queue: name, wait: wait}, nil
}

func (q *Redis) Publish(ctx context.Context, runID string) error {
	if err := q.client.LPush(ctx, q.queue, runID).Err(); err != nil {
		return fmt.Errorf("redis publish: %w", err)
	}
	return nil
}

func (q *Redis) Consume(ctx context.Context, workers int, handler Handler) error {
	if workers <= 0 {
		workers = 1
	}
	errCh := make(chan error, workers)
	for range workers {
		go func() {
			errCh <- q.work(ctx, handler)
		}()
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}

func (q *Redis) work(ctx context.Context, handler Handler) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		values, err := q.client.BRPop(ctx, q.wait, q.queue).Result()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, redis.ErrClosed) {
				return err
			}
			return fmt.Errorf("redis consume: %w", err)
		}
		if len(values) != 2 {
			continue
		}
		runID := values[1]
		if handlerErr := handler(ctx, runID); handlerErr != nil {
			_ = q.client.RPush(context.WithoutCancel(ctx), q.queue, runID).Err()
		}
	}
}

func (q *Redis) Close() error {
	if q == nil || q.client == nil {
		return nil
	}
	return q.client.Close()
}
