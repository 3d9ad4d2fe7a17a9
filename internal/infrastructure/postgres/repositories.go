package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"hash/fnv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/Xausdorf/paycrew/internal/domain/entity"
	"github.com/Xausdorf/paycrew/internal/domain/repository"
)

var errNoTx = errors.New("operation requires a transaction")

type UnitOfWork struct {
	pool *pgxpool.Pool
	tx   pgx.Tx
}

func NewUnitOfWork(pool *pgxpool.Pool) *UnitOfWork {
	return &UnitOfWork{pool: pool}
}

func (u *UnitOfWork) Begin(ctx context.Context) (repository.UnitOfWork, error) {
	tx, err := u.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	return &UnitOfWork{pool: u.pool, tx: tx}, nil
}

func (u *UnitOfWork) Commit(ctx context.Context) error {
	if u.tx == nil {
		return nil
	}
	return u.tx.Commit(ctx)
}

func (u *UnitOfWork) Rollback(ctx context.Context) error {
	if u.tx == nil {
		return nil
	}
	return u.tx.Rollback(ctx)
}

func (u *UnitOfWork) Runs() repository.RunRepository {
	return &RunRepo{tx: u.tx, pool: u.pool}
}

func (u *UnitOfWork) Idempotency() repository.IdempotencyRepository {
	return &IdempotencyRepo{tx: u.tx, pool: u.pool}
}

func pick(tx pgx.Tx, pool *pgxpool.Pool) querier {
	if tx != nil {
		return tx
	}
	return pool
}

type RunRepo struct {
	tx   pgx.Tx
	pool *pgxpool.Pool
}

const selectRun = `SELECT id, amount::text, currency, recipient_name, recipient_email, memo, bank_details,
	state, failed_at, payee_id, confirmation_id, error, history, created_at, updated_at
	FROM payment_runs WHERE id = $1`

func (r *RunRepo) Create(ctx context.Context, run *entity.Run) error {
	req := run.Request()

	var bank []byte
	if details, ok := req.BankDetails(); ok {
		b, err := json.Marshal(details)
		if err != nil {
			return err
		}
		bank = b
	}
	errBody, history, err := encodeOutcome(run)
	if err != nil {
		return err
	}

	_, err = pick(r.tx, r.pool).Exec(ctx,
		`INSERT INTO payment_runs (id, amount, currency, recipient_name, recipient_email, memo, bank_details,
			state, failed_at, payee_id, confirmation_id, error, history, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		run.ID(), req.Amount().String(), req.Currency(), req.RecipientName(), req.RecipientEmail(), req.Memo(), bank,
		string(run.State()), string(run.FailedAt()), run.PayeeID(), run.ConfirmationID(), errBody, history,
		run.CreatedAt(), run.UpdatedAt(),
	)
	return err
}

func (r *RunRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.Run, error) {
	return scanRun(pick(r.tx, r.pool).QueryRow(ctx, selectRun, id))
}

func (r *RunRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Run, error) {
	if r.tx == nil {
		return nil, errNoTx
	}
	return scanRun(r.tx.QueryRow(ctx, selectRun+` FOR UPDATE`, id))
}

func (r *RunRepo) Update(ctx context.Context, run *entity.Run) error {
	errBody, history, err := encodeOutcome(run)
	if err != nil {
		return err
	}

	tag, err := pick(r.tx, r.pool).Exec(ctx,
		`UPDATE payment_runs
		 SET state = $2, failed_at = $3, payee_id = $4, confirmation_id = $5, error = $6, history = $7, updated_at = $8
		 WHERE id = $1`,
		run.ID(), string(run.State()), string(run.FailedAt()), run.PayeeID(), run.ConfirmationID(),
		errBody, history, run.UpdatedAt(),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func encodeOutcome(run *entity.Run) (errBody, history []byte, err error) {
	if detail := run.Error(); detail != nil {
		if errBody, err = json.Marshal(detail); err != nil {
			return nil, nil, err
		}
	}
	transitions := run.History()
	if transitions == nil {
		transitions = []entity.Transition{}
	}
	if history, err = json.Marshal(transitions); err != nil {
		return nil, nil, err
	}
	return errBody, history, nil
}

func scanRun(row pgx.Row) (*entity.Run, error) {
	var (
		snap                         entity.RunSnapshot
		amount, currency, name, mail string
		memo, state, failedAt        string
		bank, errBody, history       []byte
		createdAt, updatedAt         time.Time
	)
	err := row.Scan(&snap.ID, &amount, &currency, &name, &mail, &memo, &bank,
		&state, &failedAt, &snap.PayeeID, &snap.ConfirmationID, &errBody, &history, &createdAt, &updatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	value, err := decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("run %s: amount %q: %w", snap.ID, amount, err)
	}
	params := entity.PaymentRequestParams{
		Amount:         value,
		Currency:       currency,
		RecipientName:  name,
		RecipientEmail: mail,
		Memo:           memo,
	}
	if len(bank) > 0 {
		var details entity.BankDetails
		if err := json.Unmarshal(bank, &details); err != nil {
			return nil, fmt.Errorf("run %s: bank details: %w", snap.ID, err)
		}
		params.BankDetails = &details
	}
	if snap.Request, err = entity.NewPaymentRequest(params); err != nil {
		return nil, fmt.Errorf("run %s: stored request: %w", snap.ID, err)
	}

	if len(errBody) > 0 {
		snap.Error = &entity.ErrorDetail{}
		if err := json.Unmarshal(errBody, snap.Error); err != nil {
			return nil, fmt.Errorf("run %s: error detail: %w", snap.ID, err)
		}
	}
	if err := json.Unmarshal(history, &snap.History); err != nil {
		return nil, fmt.Errorf("run %s: history: %w", snap.ID, err)
	}

	snap.State = entity.State(state)
	snap.FailedAt = entity.State(failedAt)
	snap.CreatedAt = createdAt
	snap.UpdatedAt = updatedAt
	return entity.ReconstructRun(snap), nil
}

type IdempotencyRepo struct {
	tx   pgx.Tx
	pool *pgxpool.Pool
}

func (r *IdempotencyRepo) Find(ctx context.Context, key string) (*entity.IdempotencyRecord, error) {
	var (
		runID     *uuid.UUID
		code      int
		body      []byte
		createdAt time.Time
	)
	err := pick(r.tx, r.pool).QueryRow(ctx,
		`SELECT run_id, response_code, response_body, created_at FROM idempotency_keys WHERE key = $1`,
		key,
	).Scan(&runID, &code, &body, &createdAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	id := uuid.Nil
	if runID != nil {
		id = *runID
	}
	return entity.ReconstructIdempotencyRecord(key, id, code, body, createdAt), nil
}

func (r *IdempotencyRepo) Save(ctx context.Context, record *entity.IdempotencyRecord) error {
	var runID *uuid.UUID
	if id := record.RunID(); id != uuid.Nil {
		runID = &id
	}
	_, err := pick(r.tx, r.pool).Exec(ctx,
		`INSERT INTO idempotency_keys (key, run_id, response_code, response_body, created_at)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (key) DO UPDATE
		 SET run_id = EXCLUDED.run_id, response_code = EXCLUDED.response_code, response_body = EXCLUDED.response_body`,
		record.Key(), runID, record.ResponseCode(), record.ResponseBody(), record.CreatedAt(),
	)
	return err
}

func (r *IdempotencyRepo) Delete(ctx context.Context, key string) error {
	_, err := pick(r.tx, r.pool).Exec(ctx, `DELETE FROM idempotency_keys WHERE key = $1`, key)
	return err
}

// Lock serializes transactions on key until the surrounding transaction ends.
func (r *IdempotencyRepo) Lock(ctx context.Context, key string) error {
	if r.tx == nil {
		return errNoTx
	}
	h := fnv.New64a()
	_, _ = h.Write([]byte(key))
	_, err := r.tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(h.Sum64()))
	return err
}
