package entity

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Xausdorf/paycrew/internal/domain/payerr"
)

type State string

const (
	StateInit            State = "init"
	StateDataReady       State = "data_ready"
	StatePayeeResolved   State = "payee_resolved"
	StateBalanceVerified State = "balance_verified"
	StateExecuted        State = "executed"
	StateCompleted       State = "completed"
	StateFailed          State = "failed"
)

var stateOrder = []State{
	StateInit,
	StateDataReady,
	StatePayeeResolved,
	StateBalanceVerified,
	StateExecuted,
	StateCompleted,
}

// Next returns the only state reachable from s on success.
func (s State) Next() (State, bool) {
	for i := 0; i < len(stateOrder)-1; i++ {
		if stateOrder[i] == s {
			return stateOrder[i+1], true
		}
	}
	return "", false
}

func (s State) Terminal() bool {
	return s == StateCompleted || s == StateFailed
}

var ErrInvalidTransition = payerr.New(payerr.KindWorkflowState, payerr.CodeInvalidTransition, "invalid state transition")

type Transition struct {
	From State     `json:"from"`
	To   State     `json:"to"`
	At   time.Time `json:"at"`
}

// Run is one execution of the payment workflow for one PaymentRequest.
type Run struct {
	id             uuid.UUID
	request        *PaymentRequest
	state          State
	failedAt       State
	payeeID        string
	confirmationID string
	errDetail      *ErrorDetail
	history        []Transition
	createdAt      time.Time
	updatedAt      time.Time
}

func NewRun(id uuid.UUID, req *PaymentRequest) *Run {
	now := time.Now()
	return &Run{
		id:        id,
		request:   req,
		state:     StateInit,
		createdAt: now,
		updatedAt: now,
	}
}

type RunSnapshot struct {
	ID             uuid.UUID
	Request        *PaymentRequest
	State          State
	FailedAt       State
	PayeeID        string
	ConfirmationID string
	Error          *ErrorDetail
	History        []Transition
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func ReconstructRun(s RunSnapshot) *Run {
	return &Run{
		id:             s.ID,
		request:        s.Request,
		state:          s.State,
		failedAt:       s.FailedAt,
		payeeID:        s.PayeeID,
		confirmationID: s.ConfirmationID,
		errDetail:      s.Error,
		history:        append([]Transition(nil), s.History...),
		createdAt:      s.CreatedAt,
		updatedAt:      s.UpdatedAt,
	}
}

func (r *Run) ID() uuid.UUID {
	return r.id
}

func (r *Run) Request() *PaymentRequest {
	return r.request
}

func (r *Run) State() State {
	return r.state
}

// FailedAt is the state the run was trying to reach when it failed.
func (r *Run) FailedAt() State {
	return r.failedAt
}

func (r *Run) PayeeID() string {
	return r.payeeID
}

func (r *Run) ConfirmationID() string {
	return r.confirmationID
}

func (r *Run) Error() *ErrorDetail {
	return r.errDetail
}

func (r *Run) History() []Transition {
	return append([]Transition(nil), r.history...)
}

func (r *Run) CreatedAt() time.Time {
	return r.createdAt
}

func (r *Run) UpdatedAt() time.Time {
	return r.updatedAt
}

// Expect reports whether to is the next legal state, without moving.
func (r *Run) Expect(to State) error {
	next, ok := r.state.Next()
	if !ok || next != to {
		return fmt.Errorf("%w: run %s cannot move from %s to %s", ErrInvalidTransition, r.id, r.state, to)
	}
	return nil
}

func (r *Run) Advance(to State) error {
	if err := r.Expect(to); err != nil {
		return err
	}
	r.record(to)
	return nil
}

func (r *Run) AttachPayee(id string) error {
	if r.state != StatePayeeResolved {
		return fmt.Errorf("%w: payee attached in state %s", ErrInvalidTransition, r.state)
	}
	if id == "" {
		return payerr.State(payerr.CodeMissingPrecondition, "empty payee id")
	}
	r.payeeID = id
	return nil
}

func (r *Run) AttachConfirmation(id string) error {
	if r.state != StateExecuted {
		return fmt.Errorf("%w: confirmation attached in state %s", ErrInvalidTransition, r.state)
	}
	r.confirmationID = id
	return nil
}

// Fail moves the run to StateFailed from any non terminal state.
func (r *Run) Fail(at State, err error) error {
	if r.state.Terminal() {
		return fmt.Errorf("%w: run %s already %s", ErrInvalidTransition, r.id, r.state)
	}
	r.failedAt = at
	r.errDetail = NewErrorDetail(err)
	r.record(StateFailed)
	return nil
}

// Result is the terminal artifact of the run, nil while it is still running.
func (r *Run) Result() *PaymentResult {
	switch r.state {
	case StateCompleted:
		return Confirmed(r.confirmationID)
	case StateFailed:
		return &PaymentResult{Status: PaymentFailed, Error: r.errDetail}
	default:
		return nil
	}
}

func (r *Run) record(to State) {
	now := time.Now()
	r.history = append(r.history, Transition{From: r.state, To: to, At: now})
	r.state = to
	r.updatedAt = now
}
