// Package workflow sequences data preparation, payee resolution, balance
// verification and payment execution for one PaymentRequest at a time.
//
// A run moves Init -> DataReady -> PayeeResolved -> BalanceVerified ->
// Executed -> Completed, or to Failed from any of them. Each step's output is
// the next step's input, so steps never run in parallel inside a run.
// Independent runs may execute concurrently and share only the provider
// client behind the collaborators.
package workflow

//go:generate mockgen -source=workflow.go -destination=mocks/mock_workflow.go -package=mocks

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Xausdorf/paycrew/internal/domain/entity"
	"github.com/Xausdorf/paycrew/internal/domain/payerr"
	"github.com/Xausdorf/paycrew/internal/usecase/payout"
)

const defaultStepTimeout = 30 * time.Second

// DataGenerator fabricates bank details for a recipient who supplied none.
type DataGenerator interface {
	Generate(recipientName string) entity.BankDetails
}

// PayeeResolver returns the provider id of the recipient, creating the payee
// when no match exists.
type PayeeResolver interface {
	Resolve(ctx context.Context, name, email string, bank entity.BankDetails) (string, error)
}

// BalanceVerifier compares the available balance against amount.
type BalanceVerifier interface {
	Check(ctx context.Context, amount decimal.Decimal) (*entity.BalanceCheck, error)
}

// PaymentExecutor performs the single send of a run. Provider rejections come
// back as a failed result rather than an error.
type PaymentExecutor interface {
	Execute(ctx context.Context, o payout.Order) (*entity.PaymentResult, error)
}

// Observer is notified after every state change. It must not block.
type Observer interface {
	Transition(run *entity.Run, from, to entity.State, took time.Duration)
}

var ErrInsufficientFunds = payerr.New(payerr.KindProviderBusiness, payerr.CodeInsufficientFunds, "insufficient funds")

// RunError carries the run context of a failed workflow.
type RunError struct {
	RunID   uuid.UUID
	State   entity.State
	Request *entity.PaymentRequest
	Err     error
}

func (e *RunError) Error() string {
	return fmt.Sprintf("workflow run %s failed at %s: %v", e.RunID, e.State, e.Err)
}

func (e *RunError) Unwrap() error {
	return e.Err
}

// Engine drives runs through the payment states. It holds no per-run state
// and is safe for concurrent use.
type Engine struct {
	generator   DataGenerator
	resolver    PayeeResolver
	verifier    BalanceVerifier
	executor    PaymentExecutor
	selector    StepSelector
	observer    Observer
	logger      *slog.Logger
	stepTimeout time.Duration
}

// Option configures an Engine.
type Option func(*Engine)

func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithStepTimeout bounds every provider call of a step. Non-positive values
// keep the default of 30s.
func WithStepTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.stepTimeout = d
		}
	}
}

// WithSelector replaces the sequential step order.
func WithSelector(s StepSelector) Option {
	return func(e *Engine) {
		if s != nil {
			e.selector = s
		}
	}
}

func WithObserver(o Observer) Option {
	return func(e *Engine) {
		e.observer = o
	}
}

// NewEngine builds an engine from its four step components.
func NewEngine(
	generator DataGenerator,
	resolver PayeeResolver,
	verifier BalanceVerifier,
	executor PaymentExecutor,
	opts ...Option,
) *Engine {
	e := &Engine{
		generator:   generator,
		resolver:    resolver,
		verifier:    verifier,
		executor:    executor,
		selector:    SequentialSelector{},
		logger:      slog.Default(),
		stepTimeout: defaultStepTimeout,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

// Run executes a fresh run for req. Exactly one of the results is non-nil:
// failures return a *RunError. Use Execute to keep the run and read its failed
// result.
func (e *Engine) Run(ctx context.Context, req *entity.PaymentRequest) (*entity.PaymentResult, error) {
	if req == nil {
		return nil, payerr.Validation(payerr.CodeInvalidRequest, "payment request is required")
	}
	return e.Execute(ctx, entity.NewRun(uuid.New(), req))
}

// scratch holds the typed outputs threaded from one step to the next.
type scratch struct {
	bank    entity.BankDetails
	payeeID string
	balance *entity.BalanceCheck
	result  *entity.PaymentResult
}

// Execute drives an existing run in StateInit to a terminal state.
func (e *Engine) Execute(ctx context.Context, run *entity.Run) (*entity.PaymentResult, error) {
	if run == nil || run.Request() == nil {
		return nil, payerr.Validation(payerr.CodeInvalidRequest, "payment request is required")
	}
	if run.State() != entity.StateInit {
		return nil, e.runError(run, run.State(),
			payerr.State(payerr.CodeInvalidTransition, "run %s already started (state %s)", run.ID(), run.State()))
	}

	logger := e.logger.With(slog.String("run_id", run.ID().String()))
	var s scratch

	for {
		step, err := e.selector.Next(run)
		if err != nil {
			return nil, e.fail(ctx, logger, run, run.State(), err)
		}
		if step == StepDone {
			break
		}

		target := step.Target()
		if err := run.Expect(target); err != nil {
			return nil, e.fail(ctx, logger, run, target, err)
		}
		if err := ctx.Err(); err != nil {
			return nil, e.fail(ctx, logger, run, target,
				payerr.Transport(payerr.CodeCanceled, err, "run canceled before %s", step))
		}

		started := time.Now()
		if err := e.perform(ctx, run, step, &s); err != nil {
			return nil, e.fail(ctx, logger, run, target, err)
		}

		from := run.State()
		if err := run.Advance(target); err != nil {
			return nil, e.fail(ctx, logger, run, target, err)
		}
		if err := e.attach(run, step, &s); err != nil {
			return nil, e.fail(ctx, logger, run, target, err)
		}
		e.notify(run, from, target, time.Since(started))
		logger.DebugContext(ctx, "workflow step done", slog.String("step", step.String()), slog.String("state", string(target)))
	}

	if run.State() != entity.StateCompleted {
		return nil, e.fail(ctx, logger, run, run.State(),
			payerr.State(payerr.CodeInvalidTransition, "selector finished run in state %s", run.State()))
	}

	logger.InfoContext(ctx, "payment completed", slog.String("confirmation_id", run.ConfirmationID()))
	return run.Result(), nil
}

func (e *Engine) perform(ctx context.Context, run *entity.Run, step Step, s *scratch) error {
	req := run.Request()

	switch step {
	case StepPrepareData:
		if bank, ok := req.BankDetails(); ok {
			s.bank = bank
			return nil
		}
		s.bank = e.generator.Generate(req.RecipientName())
		return nil

	case StepResolvePayee:
		stepCtx, cancel := context.WithTimeout(ctx, e.stepTimeout)
		defer cancel()
		id, err := e.resolver.Resolve(stepCtx, req.RecipientName(), req.RecipientEmail(), s.bank)
		if err != nil {
			return err
		}
		s.payeeID = id
		return nil

	case StepVerifyBalance:
		stepCtx, cancel := context.WithTimeout(ctx, e.stepTimeout)
		defer cancel()
		check, err := e.verifier.Check(stepCtx, req.Amount())
		if err != nil {
			return err
		}
		if !check.Sufficient {
			return fmt.Errorf("%w: available %s %s, required %s",
				ErrInsufficientFunds, check.Available, check.Currency, check.Required)
		}
		s.balance = check
		return nil

	case StepExecute:
		if s.payeeID == "" || s.balance == nil || !s.balance.Sufficient {
			return payerr.State(payerr.CodeMissingPrecondition, "execute requires a resolved payee and a sufficient balance check")
		}
		stepCtx, cancel := context.WithTimeout(ctx, e.stepTimeout)
		defer cancel()
		res, err := e.executor.Execute(stepCtx, payout.Order{
			Amount:         req.Amount(),
			Currency:       req.Currency(),
			PayeeID:        s.payeeID,
			Memo:           req.Memo(),
			IdempotencyKey: run.ID().String(),
		})
		if err != nil {
			return err
		}
		if res == nil {
			return payerr.State(payerr.CodeMissingPrecondition, "executor returned no result")
		}
		if res.Status != entity.PaymentConfirmed {
			if cause := res.Error.Cause(); cause != nil {
				return cause
			}
			return payerr.Business(payerr.CodePaymentRejected, "payment not confirmed")
		}
		s.result = res
		return nil

	case StepComplete:
		if s.result == nil || s.result.Status != entity.PaymentConfirmed {
			return payerr.State(payerr.CodeMissingPrecondition, "completion requires a confirmed payment")
		}
		return nil
	}

	return payerr.State(payerr.CodeInvalidTransition, "unknown step %s", step)
}

func (e *Engine) attach(run *entity.Run, step Step, s *scratch) error {
	switch step {
	case StepResolvePayee:
		return run.AttachPayee(s.payeeID)
	case StepExecute:
		return run.AttachConfirmation(s.result.ConfirmationID)
	}
	return nil
}

func (e *Engine) fail(ctx context.Context, logger *slog.Logger, run *entity.Run, at entity.State, cause error) error {
	from := run.State()
	if !from.Terminal() {
		if err := run.Fail(at, cause); err == nil {
			e.notify(run, from, entity.StateFailed, 0)
		}
	}

	level := slog.LevelWarn
	if payerr.IsKind(cause, payerr.KindWorkflowState) {
		level = slog.LevelError
	}
	logger.Log(ctx, level, "payment workflow failed",
		slog.String("failed_at", string(at)),
		slog.String("kind", string(payerr.KindOf(cause))),
		slog.String("code", string(payerr.CodeOf(cause))),
		slog.Any("error", cause),
	)
	return e.runError(run, at, cause)
}

func (e *Engine) runError(run *entity.Run, at entity.State, cause error) error {
	var re *RunError
	if errors.As(cause, &re) {
		return cause
	}
	return &RunError{RunID: run.ID(), State: at, Request: run.Request(), Err: cause}
}

func (e *Engine) notify(run *entity.Run, from, to entity.State, took time.Duration) {
	if e.observer != nil {
		e.observer.Transition(run, from, to, took)
	}
}
