package repository

//go:generate mockgen -source=repository.go -destination=../../usecase/transfer/mocks/mock_repository.go -package=mocks

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/Xausdorf/paycrew/internal/domain/entity"
)

var ErrNotFound = errors.New("not found")

type RunRepository interface {
	Create(ctx context.Context, run *entity.Run) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Run, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Run, error)
	Update(ctx context.Context, run *entity.Run) error
}

type IdempotencyRepository interface {
	Find(ctx context.Context, key string) (*entity.IdempotencyRecord, error)
	// Save stores the record, replacing the response of an existing key.
	Save(ctx context.Context, record *entity.IdempotencyRecord) error
	Delete(ctx context.Context, key string) error
	Lock(ctx context.Context, key string) error
}
