// Package queue carries run ids from the HTTP layer to the dispatch workers.
package queue

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var ErrClosed = errors.New("queue closed")

// Handler processes one run id. A non-nil error asks the driver to redeliver
// the message when it supports redelivery.
type Handler = func(ctx context.Context, runID string) error

type Producer interface {
	Publish(ctx context.Context, runID string) error
	Close() error
}

type Consumer interface {
	Consume(ctx context.Context, workers int, handler Handler) error
	Close() error
}

type Queue interface {
	Producer
	Consumer
}

type Driver string

const (
	DriverMemory   Driver = "memory"
	DriverRedis    Driver = "redis"
	DriverRabbitMQ Driver = "rabbitmq"
)

type Config struct {
	Driver        Driver
	Name          string
	Size          int
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	BlockWait     time.Duration
	AMQPURL       string
	Prefetch      int
}

// New opens the queue selected by cfg.Driver.
func New(ctx context.Context, cfg Config) (Queue, error) {
	switch cfg.Driver {
	case "", DriverMemory:
		return NewMemory(cfg.Size), nil
	case DriverRedis:
		return NewRedis(ctx, RedisConfig{
			Address:   cfg.RedisAddr,
			Password:  cfg.RedisPassword,
			DB:        cfg.RedisDB,
			Queue:     cfg.Name,
			BlockWait: cfg.BlockWait,
		})
	case DriverRabbitMQ:
		return NewRabbitMQ(RabbitMQConfig{
			URL:      cfg.AMQPURL,
			Queue:    cfg.Name,
			Prefetch: cfg.Prefetch,
			Durable:  true,
		})
	default:
		return nil, fmt.Errorf("unknown queue driver %q", cfg.Driver)
	}
}
