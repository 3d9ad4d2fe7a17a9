package transfer

//go:generate mockgen -source=transfer.go -destination=mocks/mock_transfer.go -package=mocks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/Xausdorf/paycrew/internal/domain/entity"
	"github.com/Xausdorf/paycrew/internal/domain/payerr"
	"github.com/Xausdorf/paycrew/internal/domain/repository"
)

var (
	ErrMissingKey   = payerr.New(payerr.KindValidation, payerr.CodeInvalidRequest, "idempotency key is required")
	ErrMissingInput = payerr.New(payerr.KindValidation, payerr.CodeInvalidRequest, "payment request is required")
	ErrAsyncOff     = errors.New("async submission is not configured")
)

type Runner interface {
	Execute(ctx context.Context, run *entity.Run) (*entity.PaymentResult, error)
}

type Publisher interface {
	Publish(ctx context.Context, runID uuid.UUID) error
}

type Request struct {
	IdempotencyKey string
	Payment        *entity.PaymentRequest
}

type Response struct {
	RunID          uuid.UUID
	State          entity.State
	Status         entity.PaymentStatus
	ConfirmationID string
	FailedAt       entity.State
	ErrorKind      payerr.Kind
	ErrorCode      payerr.Code
	ErrorMessage   string
}

type responseCache struct {
	RunID          string `json:"run_id"`
	State          string `json:"state"`
	Status         string `json:"status"`
	ConfirmationID string `json:"confirmation_id,omitempty"`
	FailedAt       string `json:"failed_at,omitempty"`
	ErrorKind      string `json:"error_kind,omitempty"`
	ErrorCode      string `json:"error_code,omitempty"`
	ErrorMessage   string `json:"error_message,omitempty"`
}

type UseCase struct {
	uow       repository.UnitOfWork
	runner    Runner
	publisher Publisher
	logger    *slog.Logger
}

type Option func(*UseCase)

func WithPublisher(p Publisher) Option {
	return func(uc *UseCase) {
		uc.publisher = p
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(uc *UseCase) {
		if logger != nil {
			uc.logger = logger
		}
	}
}

func NewUseCase(uow repository.UnitOfWork, runner Runner, opts ...Option) *UseCase {
	uc := &UseCase{uow: uow, runner: runner, logger: slog.Default()}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// Execute runs the workflow inline. A key that already has a stored response
// gets that response back and never starts a second run.
//
// The run and a pending response are committed before the provider is
// called, so a failure while recording the outcome leaves the run in init
// under the key. A retry drives that same run again and the provider
// deduplicates the send by run id.
func (uc *UseCase) Execute(ctx context.Context, req Request) (*Response, error) {
	key, err := validate(req)
	if err != nil {
		return nil, err
	}

	resp, err := uc.admit(ctx, key, req.Payment)
	if err != nil {
		return nil, err
	}
	if resp.State != entity.StateInit {
		return resp, nil
	}
	return uc.finish(ctx, key, resp.RunID)
}

// Submit stores a run in init and hands it to the queue. Resubmitting a key
// whose run has not started yet publishes it again.
func (uc *UseCase) Submit(ctx context.Context, req Request) (*Response, error) {
	if uc.publisher == nil {
		return nil, ErrAsyncOff
	}
	key, err := validate(req)
	if err != nil {
		return nil, err
	}

	resp, err := uc.admit(ctx, key, req.Payment)
	if err != nil {
		return nil, err
	}
	if resp.State == entity.StateInit {
		if err := uc.publisher.Publish(ctx, resp.RunID); err != nil {
			return nil, fmt.Errorf("publish run %s: %w", resp.RunID, err)
		}
	}
	return resp, nil
}

// admit returns the response stored under key, or commits a new run in init
// together with a pending response for it.
func (uc *UseCase) admit(ctx context.Context, key string, payment *entity.PaymentRequest) (*Response, error) {
	cached, err := uc.uow.Idempotency().Find(ctx, key)
	if err != nil {
		return nil, err
	}
	if cached != nil {
		return uc.fromCache(ctx, uc.uow, cached)
	}

	tx, err := uc.uow.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(context.WithoutCancel(ctx)) }()

	if err := tx.Idempotency().Lock(ctx, key); err != nil {
		return nil, err
	}

	cached, err = tx.Idempotency().Find(ctx, key)
	if err != nil {
		return nil, err
	}
	if cached != nil {
		return uc.fromCache(ctx, tx, cached)
	}

	run := entity.NewRun(uuid.New(), payment)
	if err := tx.Runs().Create(ctx, run); err != nil {
		return nil, err
	}

	resp := newResponse(run)
	if err := save(ctx, tx, key, resp); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return resp, nil
}

// finish claims a committed run, drives it and records the outcome under key.
// Transient failures drop the key so the next attempt starts a fresh run.
func (uc *UseCase) finish(ctx context.Context, key string, runID uuid.UUID) (*Response, error) {
	tx, err := uc.uow.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(context.WithoutCancel(ctx)) }()

	run, err := tx.Runs().FindByIDForUpdate(ctx, runID)
	if err != nil {
		return nil, err
	}
	if run.State() != entity.StateInit {
		return newResponse(run), nil
	}

	if _, runErr := uc.runner.Execute(ctx, run); runErr != nil && run.State() != entity.StateFailed {
		return nil, runErr
	}

	// Recorded even if the caller went away.
	persistCtx := context.WithoutCancel(ctx)
	if err := tx.Runs().Update(persistCtx, run); err != nil {
		return nil, err
	}

	resp := newResponse(run)
	if cacheable(run) {
		err = save(persistCtx, tx, key, resp)
	} else {
		uc.logger.InfoContext(ctx, "transient failure not cached",
			slog.String("run_id", run.ID().String()),
			slog.String("failed_at", string(run.FailedAt())),
		)
		err = tx.Idempotency().Delete(persistCtx, key)
	}
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(persistCtx); err != nil {
		return nil, err
	}
	return resp, nil
}

// Process claims a queued run and drives it to a terminal state. Unknown and
// already started runs are skipped so redelivered messages are harmless.
func (uc *UseCase) Process(ctx context.Context, runID uuid.UUID) error {
	logger := uc.logger.With(slog.String("run_id", runID.String()))

	tx, err := uc.uow.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(context.WithoutCancel(ctx)) }()

	run, err := tx.Runs().FindByIDForUpdate(ctx, runID)
	if errors.Is(err, repository.ErrNotFound) {
		logger.WarnContext(ctx, "queued run not found")
		return nil
	}
	if err != nil {
		return err
	}
	if run.State() != entity.StateInit {
		logger.DebugContext(ctx, "run already processed", slog.String("state", string(run.State())))
		return nil
	}

	if _, runErr := uc.runner.Execute(ctx, run); runErr != nil && run.State() != entity.StateFailed {
		return runErr
	}

	persistCtx := context.WithoutCancel(ctx)
	if err := tx.Runs().Update(persistCtx, run); err != nil {
		return err
	}
	return tx.Commit(persistCtx)
}

func (uc *UseCase) Status(ctx context.Context, runID uuid.UUID) (*Response, error) {
	run, err := uc.uow.Runs().FindByID(ctx, runID)
	if err != nil {
		return nil, err
	}
	return newResponse(run), nil
}

// fromCache decodes a stored response. Pending responses are refreshed from
// the run itself, because the worker finishes runs after the key was stored.
func (uc *UseCase) fromCache(ctx context.Context, uow repository.UnitOfWork, record *entity.IdempotencyRecord) (*Response, error) {
	var cache responseCache
	if err := json.Unmarshal(record.ResponseBody(), &cache); err != nil {
		return nil, err
	}

	if entity.PaymentStatus(cache.Status) == entity.PaymentPending && record.RunID() != uuid.Nil {
		run, err := uow.Runs().FindByID(ctx, record.RunID())
		if err != nil {
			return nil, err
		}
		return newResponse(run), nil
	}

	runID, err := uuid.Parse(cache.RunID)
	if err != nil {
		return nil, err
	}
	return &Response{
		RunID:          runID,
		State:          entity.State(cache.State),
		Status:         entity.PaymentStatus(cache.Status),
		ConfirmationID: cache.ConfirmationID,
		FailedAt:       entity.State(cache.FailedAt),
		ErrorKind:      payerr.Kind(cache.ErrorKind),
		ErrorCode:      payerr.Code(cache.ErrorCode),
		ErrorMessage:   cache.ErrorMessage,
	}, nil
}

func save(ctx context.Context, tx repository.UnitOfWork, key string, resp *Response) error {
	body, err := json.Marshal(responseCache{
		RunID:          resp.RunID.String(),
		State:          string(resp.State),
		Status:         string(resp.Status),
		ConfirmationID: resp.ConfirmationID,
		FailedAt:       string(resp.FailedAt),
		ErrorKind:      string(resp.ErrorKind),
		ErrorCode:      string(resp.ErrorCode),
		ErrorMessage:   resp.ErrorMessage,
	})
	if err != nil {
		return err
	}

	record := entity.NewIdempotencyRecord(key, resp.RunID, statusToCode(resp.Status), body)
	return tx.Idempotency().Save(ctx, record)
}

func newResponse(run *entity.Run) *Response {
	resp := &Response{
		RunID:          run.ID(),
		State:          run.State(),
		Status:         entity.PaymentPending,
		ConfirmationID: run.ConfirmationID(),
		FailedAt:       run.FailedAt(),
	}
	switch run.State() {
	case entity.StateCompleted:
		resp.Status = entity.PaymentConfirmed
	case entity.StateFailed:
		resp.Status = entity.PaymentFailed
	}
	if detail := run.Error(); detail != nil {
		resp.ErrorKind = detail.Kind
		resp.ErrorCode = detail.Code
		resp.ErrorMessage = detail.Message
	}
	return resp
}

// cacheable is false for transport failures before the send step, so the
// same key may run again.
func cacheable(run *entity.Run) bool {
	if run.State() != entity.StateFailed || run.FailedAt() == entity.StateExecuted {
		return true
	}
	detail := run.Error()
	return detail == nil || detail.Kind != payerr.KindProviderTransport
}

func validate(req Request) (string, error) {
	key := strings.TrimSpace(req.IdempotencyKey)
	if key == "" {
		return "", ErrMissingKey
	}
	if req.Payment == nil {
		return "", ErrMissingInput
	}
	return key, nil
}

const (
	statusCodeUnspecified = 0
	statusCodePending     = 1
	statusCodeConfirmed   = 2
	statusCodeFailed      = 3
)

func statusToCode(s entity.PaymentStatus) int {
	switch s {
	case entity.PaymentPending:
		return statusCodePending
	case entity.PaymentConfirmed:
		return statusCodeConfirmed
	case entity.PaymentFailed:
		return statusCodeFailed
	default:
		return statusCodeUnspecified
	}
}
