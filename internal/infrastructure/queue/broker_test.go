package queue_test

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Xausdorf/paycrew/internal/infrastructure/queue"
)

func TestNew_UnknownDriver(t *testing.T) {
	_, err := queue.New(context.Background(), queue.Config{Driver: "kafka"})
	assert.Error(t, err)
}

func TestNew_BrokersNeedAddress(t *testing.T) {
	_, err := queue.New(context.Background(), queue.Config{Driver: queue.DriverRedis})
	assert.Error(t, err)

	_, err = queue.New(context.Background(), queue.Config{Driver: queue.DriverRabbitMQ})
	assert.Error(t, err)
}

// redeliversFailed publishes one id, fails its first delivery and expects the
// broker to hand it over again.
func redeliversFailed(t *testing.T, q queue.Queue) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	runID := uuid.NewString()
	var (
		mu       sync.Mutex
		attempts int
		done     = make(chan struct{})
	)
	consumed := make(chan error, 1)
	go func() {
		consumed <- q.Consume(ctx, 2, func(_ context.Context, got string) error {
			if got != runID {
				return nil
			}
			mu.Lock()
			defer mu.Unlock()
			attempts++
			if attempts == 1 {
				return errors.New("first delivery fails")
			}
			if attempts == 2 {
				close(done)
			}
			return nil
		})
	}()

	require.NoError(t, q.Publish(ctx, runID))

	select {
	case <-done:
	case <-ctx.Done():
		t.Fatal("message was not redelivered")
	}
	cancel()
	assert.ErrorIs(t, <-consumed, context.Canceled)
}

func TestRedis_Redelivers(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR is not set")
	}
	q, err := queue.New(context.Background(), queue.Config{
		Driver:    queue.DriverRedis,
		Name:      "paycrew:test:" + uuid.NewString(),
		RedisAddr: addr,
		BlockWait: 100 * time.Millisecond,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = q.Close() })

	redeliversFailed(t, q)
}

func TestRabbitMQ_Redelivers(t *testing.T) {
	url := os.Getenv("TEST_AMQP_URL")
	if url == "" {
		t.Skip("TEST_AMQP_URL is not set")
	}
	q, err := queue.NewRabbitMQ(queue.RabbitMQConfig{
		URL:        url,
		Queue:      "paycrew.test." + uuid.NewString(),
		Prefetch:   4,
		AutoDelete: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = q.Close() })

	redeliversFailed(t, q)
}
