// Package dispatch runs queued workflow runs in the background.
package dispatch

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

const defaultRunTimeout = 2 * time.Minute

type Processor interface {
	Process(ctx context.Context, runID uuid.UUID) error
}

type Consumer interface {
	Consume(ctx context.Context, workers int, handler func(ctx context.Context, runID string) error) error
}

type Producer interface {
	Publish(ctx context.Context, runID string) error
}

// Publisher adapts a string queue to the run id publisher used by transfer.
type Publisher struct {
	producer Producer
}

func NewPublisher(p Producer) *Publisher {
	return &Publisher{producer: p}
}

func (p *Publisher) Publish(ctx context.Context, runID uuid.UUID) error {
	return p.producer.Publish(ctx, runID.String())
}

type Worker struct {
	processor  Processor
	consumer   Consumer
	workers    int
	runTimeout time.Duration
	logger     *slog.Logger
}

type Option func(*Worker)

func WithWorkers(n int) Option {
	return func(w *Worker) {
		if n > 0 {
			w.workers = n
		}
	}
}

func WithRunTimeout(d time.Duration) Option {
	return func(w *Worker) {
		if d > 0 {
			w.runTimeout = d
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(w *Worker) {
		if logger != nil {
			w.logger = logger
		}
	}
}

func NewWorker(processor Processor, consumer Consumer, opts ...Option) *Worker {
	w := &Worker{
		processor:  processor,
		consumer:   consumer,
		workers:    1,
		runTimeout: defaultRunTimeout,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(w)
		}
	}
	return w
}

// Start blocks until ctx is done or the consumer stops.
func (w *Worker) Start(ctx context.Context) error {
	w.logger.InfoContext(ctx, "dispatch worker starting", slog.Int("workers", w.workers))
	err := w.consumer.Consume(ctx, w.workers, w.handle)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (w *Worker) handle(ctx context.Context, raw string) error {
	runID, err := uuid.Parse(raw)
	if err != nil {
		w.logger.WarnContext(ctx, "dropping malformed run id", slog.String("payload", raw))
		return nil
	}

	runCtx, cancel := context.WithTimeout(ctx, w.runTimeout)
	defer cancel()

	started := time.Now()
	if err := w.processor.Process(runCtx, runID); err != nil {
		w.logger.ErrorContext(ctx, "run processing failed",
			slog.String("run_id", raw),
			slog.Any("error", err),
		)
		return err
	}
	w.logger.DebugContext(ctx, "run processed",
		slog.String("run_id", raw),
		slog.Duration("took", time.Since(started)),
	)
	return nil
}
