package workflow

import (
	"github.com/Xausdorf/paycrew/internal/domain/entity"
	"github.com/Xausdorf/paycrew/internal/domain/payerr"
)

type Step int

const (
	StepDone Step = iota
	StepPrepareData
	StepResolvePayee
	StepVerifyBalance
	StepExecute
	StepComplete
)

func (s Step) String() string {
	switch s {
	case StepDone:
		return "done"
	case StepPrepareData:
		return "prepare_data"
	case StepResolvePayee:
		return "resolve_payee"
	case StepVerifyBalance:
		return "verify_balance"
	case StepExecute:
		return "execute"
	case StepComplete:
		return "complete"
	default:
		return "unknown"
	}
}

// Target is the state a run enters when the step succeeds.
func (s Step) Target() entity.State {
	switch s {
	case StepPrepareData:
		return entity.StateDataReady
	case StepResolvePayee:
		return entity.StatePayeeResolved
	case StepVerifyBalance:
		return entity.StateBalanceVerified
	case StepExecute:
		return entity.StateExecuted
	case StepComplete:
		return entity.StateCompleted
	default:
		return ""
	}
}

// StepSelector picks the next step for a run. Whatever it returns is checked
// against the run's state machine before any side effect happens.
type StepSelector interface {
	Next(run *entity.Run) (Step, error)
}

// SequentialSelector walks the fixed pipeline.
type SequentialSelector struct{}

func (SequentialSelector) Next(run *entity.Run) (Step, error) {
	switch run.State() {
	case entity.StateInit:
		return StepPrepareData, nil
	case entity.StateDataReady:
		return StepResolvePayee, nil
	case entity.StatePayeeResolved:
		return StepVerifyBalance, nil
	case entity.StateBalanceVerified:
		return StepExecute, nil
	case entity.StateExecuted:
		return StepComplete, nil
	case entity.StateCompleted:
		return StepDone, nil
	default:
		return StepDone, payerr.State(payerr.CodeInvalidTransition, "no step after state %s", run.State())
	}
}
