package repository

//go:generate mockgen -source=unit_of_work.go -destination=../../usecase/transfer/mocks/mock_unit_of_work.go -package=mocks

import "context"

type UnitOfWork interface {
	Begin(ctx context.Context) (UnitOfWork, error)
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error

	Runs() RunRepository
	Idempotency() IdempotencyRepository
}
