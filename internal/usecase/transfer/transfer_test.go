package transfer_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/Xausdorf/paycrew/internal/domain/entity"
	"github.com/Xausdorf/paycrew/internal/domain/payerr"
	"github.com/Xausdorf/paycrew/internal/domain/repository"
	"github.com/Xausdorf/paycrew/internal/usecase/transfer"
	"github.com/Xausdorf/paycrew/internal/usecase/transfer/mocks"
)

func paymentRequest(t *testing.T) *entity.PaymentRequest {
	t.Helper()
	req, err := entity.NewPaymentRequest(entity.PaymentRequestParams{
		Amount:         decimal.RequireFromString("100.00"),
		RecipientName:  "John Doe",
		RecipientEmail: "john@example.com",
	})
	require.NoError(t, err)
	return req
}

func completeRun(run *entity.Run, confirmation string) (*entity.PaymentResult, error) {
	for _, s := range []entity.State{entity.StateDataReady, entity.StatePayeeResolved} {
		if err := run.Advance(s); err != nil {
			return nil, err
		}
	}
	if err := run.AttachPayee("pd_1"); err != nil {
		return nil, err
	}
	for _, s := range []entity.State{entity.StateBalanceVerified, entity.StateExecuted} {
		if err := run.Advance(s); err != nil {
			return nil, err
		}
	}
	if err := run.AttachConfirmation(confirmation); err != nil {
		return nil, err
	}
	if err := run.Advance(entity.StateCompleted); err != nil {
		return nil, err
	}
	return run.Result(), nil
}

func failRun(run *entity.Run, at entity.State, cause error) (*entity.PaymentResult, error) {
	_ = run.Fail(at, cause)
	return nil, cause
}

type fixture struct {
	uow      *mocks.MockUnitOfWork
	txUow    *mocks.MockUnitOfWork
	finUow   *mocks.MockUnitOfWork
	runs     *mocks.MockRunRepository
	idem     *mocks.MockIdempotencyRepository
	runner   *mocks.MockRunner
	pub      *mocks.MockPublisher
	useCase  *transfer.UseCase
	noPubUse *transfer.UseCase
	created  *entity.Run
}

func newFixture(t *testing.T) *fixture {
	ctrl := gomock.NewController(t)
	f := &fixture{
		uow:    mocks.NewMockUnitOfWork(ctrl),
		txUow:  mocks.NewMockUnitOfWork(ctrl),
		finUow: mocks.NewMockUnitOfWork(ctrl),
		runs:   mocks.NewMockRunRepository(ctrl),
		idem:   mocks.NewMockIdempotencyRepository(ctrl),
		runner: mocks.NewMockRunner(ctrl),
		pub:    mocks.NewMockPublisher(ctrl),
	}
	f.useCase = transfer.NewUseCase(f.uow, f.runner, transfer.WithPublisher(f.pub))
	f.noPubUse = transfer.NewUseCase(f.uow, f.runner)
	return f
}

func (f *fixture) expectLockedMiss(key string) {
	f.uow.EXPECT().Idempotency().Return(f.idem)
	f.idem.EXPECT().Find(gomock.Any(), key).Return(nil, nil)

	f.uow.EXPECT().Begin(gomock.Any()).Return(f.txUow, nil)
	f.txUow.EXPECT().Rollback(gomock.Any()).Return(nil)

	f.idem.EXPECT().Lock(gomock.Any(), key).Return(nil)
	f.idem.EXPECT().Find(gomock.Any(), key).Return(nil, nil)
}

// expectAdmitted expects a new run committed in init with a pending response
// under key. The run is kept in f.created.
func (f *fixture) expectAdmitted(t *testing.T, key string) {
	t.Helper()
	f.expectLockedMiss(key)

	f.txUow.EXPECT().Idempotency().Return(f.idem).Times(3)
	f.txUow.EXPECT().Runs().Return(f.runs)
	f.runs.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, run *entity.Run) error {
		assert.Equal(t, entity.StateInit, run.State())
		f.created = run
		return nil
	})
	f.idem.EXPECT().Save(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, r *entity.IdempotencyRecord) error {
		assert.Equal(t, key, r.Key())
		assert.Equal(t, f.created.ID(), r.RunID())
		assert.Equal(t, 1, r.ResponseCode())
		return nil
	})
	f.txUow.EXPECT().Commit(gomock.Any()).Return(nil)
}

// expectClaimed expects the second transaction to lock the admitted run.
func (f *fixture) expectClaimed() {
	f.uow.EXPECT().Begin(gomock.Any()).Return(f.finUow, nil)
	f.finUow.EXPECT().Rollback(gomock.Any()).Return(nil)
	f.finUow.EXPECT().Runs().Return(f.runs).AnyTimes()
	f.runs.EXPECT().FindByIDForUpdate(gomock.Any(), gomock.Any()).DoAndReturn(func(context.Context, uuid.UUID) (*entity.Run, error) {
		return f.created, nil
	})
}

func cachedRecord(t *testing.T, key string, runID uuid.UUID, body map[string]string) *entity.IdempotencyRecord {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	return entity.ReconstructIdempotencyRecord(key, runID, 2, raw, time.Time{})
}

func TestTransferUseCase_Execute_Idempotency(t *testing.T) {
	f := newFixture(t)
	runID := uuid.New()
	record := cachedRecord(t, "test-key", runID, map[string]string{
		"run_id":          runID.String(),
		"state":           "completed",
		"status":          "confirmed",
		"confirmation_id": "pay_cached",
	})

	f.uow.EXPECT().Idempotency().Return(f.idem)
	f.idem.EXPECT().Find(gomock.Any(), "test-key").Return(record, nil)

	resp, err := f.useCase.Execute(context.Background(), transfer.Request{
		IdempotencyKey: "test-key",
		Payment:        paymentRequest(t),
	})

	require.NoError(t, err)
	assert.Equal(t, runID, resp.RunID)
	assert.Equal(t, entity.PaymentConfirmed, resp.Status)
	assert.Equal(t, "pay_cached", resp.ConfirmationID)
}

func TestTransferUseCase_Execute_CachedPendingIsRefreshed(t *testing.T) {
	f := newFixture(t)
	req := paymentRequest(t)
	run := entity.NewRun(uuid.New(), req)
	_, err := completeRun(run, "pay_late")
	require.NoError(t, err)

	record := cachedRecord(t, "async-key", run.ID(), map[string]string{
		"run_id": run.ID().String(),
		"state":  "init",
		"status": "pending",
	})

	f.uow.EXPECT().Idempotency().Return(f.idem)
	f.idem.EXPECT().Find(gomock.Any(), "async-key").Return(record, nil)
	f.uow.EXPECT().Runs().Return(f.runs)
	f.runs.EXPECT().FindByID(gomock.Any(), run.ID()).Return(run, nil)

	resp, err := f.useCase.Execute(context.Background(), transfer.Request{IdempotencyKey: "async-key", Payment: req})

	require.NoError(t, err)
	assert.Equal(t, entity.StateCompleted, resp.State)
	assert.Equal(t, "pay_late", resp.ConfirmationID)
}

func TestTransferUseCase_Execute_CompletedRun(t *testing.T) {
	f := newFixture(t)
	f.expectAdmitted(t, "new-key")
	f.expectClaimed()

	f.runner.EXPECT().Execute(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, run *entity.Run) (*entity.PaymentResult, error) {
		return completeRun(run, "pay_1")
	})
	f.runs.EXPECT().Update(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, run *entity.Run) error {
		assert.Equal(t, entity.StateCompleted, run.State())
		return nil
	})
	f.finUow.EXPECT().Idempotency().Return(f.idem)
	f.idem.EXPECT().Save(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, r *entity.IdempotencyRecord) error {
		assert.Equal(t, "new-key", r.Key())
		assert.Equal(t, f.created.ID(), r.RunID())
		assert.Equal(t, 2, r.ResponseCode())
		assert.JSONEq(t, `{"run_id":"`+f.created.ID().String()+`","state":"completed","status":"confirmed","confirmation_id":"pay_1"}`, string(r.ResponseBody()))
		return nil
	})
	f.finUow.EXPECT().Commit(gomock.Any()).Return(nil)

	resp, err := f.useCase.Execute(context.Background(), transfer.Request{
		IdempotencyKey: "new-key",
		Payment:        paymentRequest(t),
	})

	require.NoError(t, err)
	assert.Equal(t, entity.PaymentConfirmed, resp.Status)
	assert.Equal(t, entity.StateCompleted, resp.State)
	assert.Equal(t, "pay_1", resp.ConfirmationID)
}

func TestTransferUseCase_Execute_BusinessFailureIsCached(t *testing.T) {
	f := newFixture(t)
	f.expectAdmitted(t, "insufficient-key")
	f.expectClaimed()

	f.runner.EXPECT().Execute(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, run *entity.Run) (*entity.PaymentResult, error) {
		return failRun(run, entity.StateBalanceVerified, payerr.Business(payerr.CodeInsufficientFunds, "available 50.00"))
	})
	f.runs.EXPECT().Update(gomock.Any(), gomock.Any()).Return(nil)
	f.finUow.EXPECT().Idempotency().Return(f.idem)
	f.idem.EXPECT().Save(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, r *entity.IdempotencyRecord) error {
		assert.Equal(t, 3, r.ResponseCode())
		return nil
	})
	f.finUow.EXPECT().Commit(gomock.Any()).Return(nil)

	resp, err := f.useCase.Execute(context.Background(), transfer.Request{
		IdempotencyKey: "insufficient-key",
		Payment:        paymentRequest(t),
	})

	require.NoError(t, err)
	assert.Equal(t, entity.PaymentFailed, resp.Status)
	assert.Equal(t, entity.StateBalanceVerified, resp.FailedAt)
	assert.Equal(t, payerr.KindProviderBusiness, resp.ErrorKind)
	assert.Equal(t, payerr.CodeInsufficientFunds, resp.ErrorCode)
}

func TestTransferUseCase_Execute_TransportFailureNotCached(t *testing.T) {
	f := newFixture(t)
	f.expectAdmitted(t, "flaky-key")
	f.expectClaimed()

	f.runner.EXPECT().Execute(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, run *entity.Run) (*entity.PaymentResult, error) {
		_ = run.Advance(entity.StateDataReady)
		return failRun(run, entity.StatePayeeResolved, payerr.Transport(payerr.CodeServerError, nil, "503"))
	})
	f.runs.EXPECT().Update(gomock.Any(), gomock.Any()).Return(nil)
	f.finUow.EXPECT().Idempotency().Return(f.idem)
	f.idem.EXPECT().Delete(gomock.Any(), "flaky-key").Return(nil)
	f.finUow.EXPECT().Commit(gomock.Any()).Return(nil)

	resp, err := f.useCase.Execute(context.Background(), transfer.Request{
		IdempotencyKey: "flaky-key",
		Payment:        paymentRequest(t),
	})

	require.NoError(t, err)
	assert.Equal(t, entity.PaymentFailed, resp.Status)
	assert.Equal(t, payerr.CodeServerError, resp.ErrorCode)
}

func TestTransferUseCase_Execute_TransportFailureAfterSendIsCached(t *testing.T) {
	f := newFixture(t)
	f.expectAdmitted(t, "send-key")
	f.expectClaimed()

	f.runner.EXPECT().Execute(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, run *entity.Run) (*entity.PaymentResult, error) {
		return failRun(run, entity.StateExecuted, payerr.Transport(payerr.CodeTimeout, context.DeadlineExceeded, "send"))
	})
	f.runs.EXPECT().Update(gomock.Any(), gomock.Any()).Return(nil)
	f.finUow.EXPECT().Idempotency().Return(f.idem)
	f.idem.EXPECT().Save(gomock.Any(), gomock.Any()).Return(nil)
	f.finUow.EXPECT().Commit(gomock.Any()).Return(nil)

	resp, err := f.useCase.Execute(context.Background(), transfer.Request{
		IdempotencyKey: "send-key",
		Payment:        paymentRequest(t),
	})

	require.NoError(t, err)
	assert.Equal(t, entity.StateExecuted, resp.FailedAt)
}

func TestTransferUseCase_Execute_RunnerErrorKeepsRunPending(t *testing.T) {
	f := newFixture(t)
	f.expectAdmitted(t, "broken-key")
	f.expectClaimed()

	f.runner.EXPECT().Execute(gomock.Any(), gomock.Any()).Return(nil, errors.New("engine misconfigured"))

	_, err := f.useCase.Execute(context.Background(), transfer.Request{
		IdempotencyKey: "broken-key",
		Payment:        paymentRequest(t),
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "engine misconfigured")
	assert.Equal(t, entity.StateInit, f.created.State())
}

func TestTransferUseCase_Execute_UpdateFailureRetriesSameRun(t *testing.T) {
	f := newFixture(t)
	req := paymentRequest(t)
	f.expectAdmitted(t, "retry-key")
	f.expectClaimed()

	var sentWith []uuid.UUID
	confirm := func(_ context.Context, run *entity.Run) (*entity.PaymentResult, error) {
		sentWith = append(sentWith, run.ID())
		return completeRun(run, "pay_once")
	}

	f.runner.EXPECT().Execute(gomock.Any(), gomock.Any()).DoAndReturn(confirm)
	f.runs.EXPECT().Update(gomock.Any(), gomock.Any()).Return(errors.New("connection reset"))

	_, err := f.useCase.Execute(context.Background(), transfer.Request{IdempotencyKey: "retry-key", Payment: req})
	require.Error(t, err)
	require.NotNil(t, f.created)

	// The committed row is still in init with its pending key.
	firstID := f.created.ID()
	stored := entity.NewRun(firstID, req)
	pending := cachedRecord(t, "retry-key", firstID, map[string]string{
		"run_id": firstID.String(),
		"state":  "init",
		"status": "pending",
	})
	retryTx := mocks.NewMockUnitOfWork(gomock.NewController(t))

	f.uow.EXPECT().Idempotency().Return(f.idem)
	f.idem.EXPECT().Find(gomock.Any(), "retry-key").Return(pending, nil)
	f.uow.EXPECT().Runs().Return(f.runs)
	f.runs.EXPECT().FindByID(gomock.Any(), firstID).Return(stored, nil)
	f.uow.EXPECT().Begin(gomock.Any()).Return(retryTx, nil)
	retryTx.EXPECT().Rollback(gomock.Any()).Return(nil)
	retryTx.EXPECT().Runs().Return(f.runs).Times(2)
	f.runs.EXPECT().FindByIDForUpdate(gomock.Any(), firstID).Return(stored, nil)
	f.runner.EXPECT().Execute(gomock.Any(), stored).DoAndReturn(confirm)
	f.runs.EXPECT().Update(gomock.Any(), stored).Return(nil)
	retryTx.EXPECT().Idempotency().Return(f.idem)
	f.idem.EXPECT().Save(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, r *entity.IdempotencyRecord) error {
		assert.Equal(t, firstID, r.RunID())
		assert.Equal(t, 2, r.ResponseCode())
		return nil
	})
	retryTx.EXPECT().Commit(gomock.Any()).Return(nil)

	resp, err := f.useCase.Execute(context.Background(), transfer.Request{IdempotencyKey: "retry-key", Payment: req})

	require.NoError(t, err)
	assert.Equal(t, firstID, resp.RunID)
	assert.Equal(t, "pay_once", resp.ConfirmationID)
	assert.Equal(t, []uuid.UUID{firstID, firstID}, sentWith)
}

func TestTransferUseCase_Execute_RunFinishedElsewhere(t *testing.T) {
	f := newFixture(t)
	req := paymentRequest(t)
	run := entity.NewRun(uuid.New(), req)
	record := cachedRecord(t, "race-key", run.ID(), map[string]string{
		"run_id": run.ID().String(),
		"state":  "init",
		"status": "pending",
	})
	done := entity.NewRun(run.ID(), req)
	_, err := completeRun(done, "pay_worker")
	require.NoError(t, err)

	f.uow.EXPECT().Idempotency().Return(f.idem)
	f.idem.EXPECT().Find(gomock.Any(), "race-key").Return(record, nil)
	f.uow.EXPECT().Runs().Return(f.runs)
	f.runs.EXPECT().FindByID(gomock.Any(), run.ID()).Return(run, nil)
	f.uow.EXPECT().Begin(gomock.Any()).Return(f.finUow, nil)
	f.finUow.EXPECT().Rollback(gomock.Any()).Return(nil)
	f.finUow.EXPECT().Runs().Return(f.runs)
	f.runs.EXPECT().FindByIDForUpdate(gomock.Any(), run.ID()).Return(done, nil)

	resp, err := f.useCase.Execute(context.Background(), transfer.Request{IdempotencyKey: "race-key", Payment: req})

	require.NoError(t, err)
	assert.Equal(t, entity.StateCompleted, resp.State)
	assert.Equal(t, "pay_worker", resp.ConfirmationID)
}

func TestTransferUseCase_Execute_CreateFails(t *testing.T) {
	f := newFixture(t)
	f.expectLockedMiss("db-key")

	f.txUow.EXPECT().Idempotency().Return(f.idem).Times(2)
	f.txUow.EXPECT().Runs().Return(f.runs)
	f.runs.EXPECT().Create(gomock.Any(), gomock.Any()).Return(errors.New("connection reset"))

	_, err := f.useCase.Execute(context.Background(), transfer.Request{
		IdempotencyKey: "db-key",
		Payment:        paymentRequest(t),
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
}

func TestTransferUseCase_Execute_Validation(t *testing.T) {
	f := newFixture(t)

	_, err := f.useCase.Execute(context.Background(), transfer.Request{IdempotencyKey: "  ", Payment: paymentRequest(t)})
	assert.ErrorIs(t, err, transfer.ErrMissingKey)

	assert.NotErrorIs(t, err, transfer.ErrMissingInput)

	_, err = f.useCase.Execute(context.Background(), transfer.Request{IdempotencyKey: "k"})
	assert.ErrorIs(t, err, transfer.ErrMissingInput)
	assert.NotErrorIs(t, err, transfer.ErrMissingKey)
	assert.Equal(t, payerr.KindValidation, payerr.KindOf(err))
}

func TestTransferUseCase_Submit(t *testing.T) {
	f := newFixture(t)
	f.expectLockedMiss("queued-key")

	var created uuid.UUID
	f.txUow.EXPECT().Idempotency().Return(f.idem).Times(3)
	f.txUow.EXPECT().Runs().Return(f.runs)
	f.runs.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, run *entity.Run) error {
		created = run.ID()
		return nil
	})
	f.idem.EXPECT().Save(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, r *entity.IdempotencyRecord) error {
		assert.Equal(t, 1, r.ResponseCode())
		return nil
	})
	f.txUow.EXPECT().Commit(gomock.Any()).Return(nil)
	f.pub.EXPECT().Publish(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, id uuid.UUID) error {
		assert.Equal(t, created, id)
		return nil
	})

	resp, err := f.useCase.Submit(context.Background(), transfer.Request{
		IdempotencyKey: "queued-key",
		Payment:        paymentRequest(t),
	})

	require.NoError(t, err)
	assert.Equal(t, entity.StateInit, resp.State)
	assert.Equal(t, entity.PaymentPending, resp.Status)
}

func TestTransferUseCase_Submit_RepublishesPendingRun(t *testing.T) {
	f := newFixture(t)
	run := entity.NewRun(uuid.New(), paymentRequest(t))
	record := cachedRecord(t, "queued-key", run.ID(), map[string]string{
		"run_id": run.ID().String(),
		"state":  "init",
		"status": "pending",
	})

	f.uow.EXPECT().Idempotency().Return(f.idem)
	f.idem.EXPECT().Find(gomock.Any(), "queued-key").Return(record, nil)
	f.uow.EXPECT().Runs().Return(f.runs)
	f.runs.EXPECT().FindByID(gomock.Any(), run.ID()).Return(run, nil)
	f.pub.EXPECT().Publish(gomock.Any(), run.ID()).Return(nil)

	resp, err := f.useCase.Submit(context.Background(), transfer.Request{
		IdempotencyKey: "queued-key",
		Payment:        paymentRequest(t),
	})

	require.NoError(t, err)
	assert.Equal(t, run.ID(), resp.RunID)
}

func TestTransferUseCase_Submit_WithoutPublisher(t *testing.T) {
	f := newFixture(t)

	_, err := f.noPubUse.Submit(context.Background(), transfer.Request{
		IdempotencyKey: "k",
		Payment:        paymentRequest(t),
	})

	assert.ErrorIs(t, err, transfer.ErrAsyncOff)
}

func TestTransferUseCase_Process(t *testing.T) {
	f := newFixture(t)
	run := entity.NewRun(uuid.New(), paymentRequest(t))

	f.uow.EXPECT().Begin(gomock.Any()).Return(f.txUow, nil)
	f.txUow.EXPECT().Rollback(gomock.Any()).Return(nil)
	f.txUow.EXPECT().Runs().Return(f.runs).Times(2)
	f.runs.EXPECT().FindByIDForUpdate(gomock.Any(), run.ID()).Return(run, nil)
	f.runner.EXPECT().Execute(gomock.Any(), run).DoAndReturn(func(_ context.Context, r *entity.Run) (*entity.PaymentResult, error) {
		return completeRun(r, "pay_async")
	})
	f.runs.EXPECT().Update(gomock.Any(), run).Return(nil)
	f.txUow.EXPECT().Commit(gomock.Any()).Return(nil)

	require.NoError(t, f.useCase.Process(context.Background(), run.ID()))
	assert.Equal(t, "pay_async", run.ConfirmationID())
}

func TestTransferUseCase_Process_SkipsStartedRun(t *testing.T) {
	f := newFixture(t)
	run := entity.NewRun(uuid.New(), paymentRequest(t))
	_, err := completeRun(run, "pay_done")
	require.NoError(t, err)

	f.uow.EXPECT().Begin(gomock.Any()).Return(f.txUow, nil)
	f.txUow.EXPECT().Rollback(gomock.Any()).Return(nil)
	f.txUow.EXPECT().Runs().Return(f.runs)
	f.runs.EXPECT().FindByIDForUpdate(gomock.Any(), run.ID()).Return(run, nil)

	assert.NoError(t, f.useCase.Process(context.Background(), run.ID()))
}

func TestTransferUseCase_Process_UnknownRun(t *testing.T) {
	f := newFixture(t)
	id := uuid.New()

	f.uow.EXPECT().Begin(gomock.Any()).Return(f.txUow, nil)
	f.txUow.EXPECT().Rollback(gomock.Any()).Return(nil)
	f.txUow.EXPECT().Runs().Return(f.runs)
	f.runs.EXPECT().FindByIDForUpdate(gomock.Any(), id).Return(nil, repository.ErrNotFound)

	assert.NoError(t, f.useCase.Process(context.Background(), id))
}

func TestTransferUseCase_Status(t *testing.T) {
	f := newFixture(t)
	run := entity.NewRun(uuid.New(), paymentRequest(t))
	_, _ = failRun(run, entity.StateDataReady, payerr.Validation(payerr.CodeInvalidPayee, "bad routing"))

	f.uow.EXPECT().Runs().Return(f.runs)
	f.runs.EXPECT().FindByID(gomock.Any(), run.ID()).Return(run, nil)

	resp, err := f.useCase.Status(context.Background(), run.ID())

	require.NoError(t, err)
	assert.Equal(t, entity.StateFailed, resp.State)
	assert.Equal(t, entity.PaymentFailed, resp.Status)
	assert.Equal(t, payerr.KindValidation, resp.ErrorKind)
}
