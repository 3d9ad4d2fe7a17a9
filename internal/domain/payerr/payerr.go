// Package payerr defines the typed errors shared by the payment workflow and
// the provider clients.
package payerr

import (
	"errors"
	"fmt"
)

// Kind groups error codes by how callers are expected to react to them.
type Kind string

const (
	KindValidation        Kind = "validation"
	KindProviderTransport Kind = "provider_transport"
	KindProviderBusiness  Kind = "provider_business"
	KindWorkflowState     Kind = "workflow_state"
	KindUnknown           Kind = "unknown"
)

// Code identifies a concrete failure inside a Kind.
type Code string

const (
	CodeInvalidRequest Code = "invalid_request"
	CodeInvalidPayee   Code = "invalid_payee"

	CodeRateLimited Code = "rate_limited"
	CodeServerError Code = "server_error"
	CodeNetwork     Code = "network"
	CodeTimeout     Code = "timeout"
	CodeCanceled    Code = "canceled"

	CodeUnauthorized      Code = "unauthorized"
	CodeNotFound          Code = "not_found"
	CodeDuplicate         Code = "duplicate"
	CodeInsufficientFunds Code = "insufficient_funds"
	CodePaymentRejected   Code = "payment_rejected"

	CodeInvalidTransition   Code = "invalid_transition"
	CodeMissingPrecondition Code = "missing_precondition"

	CodeUnknown Code = "unknown"
)

type Error struct {
	kind    Kind
	code    Code
	message string
	cause   error
}

func New(kind Kind, code Code, message string) *Error {
	return &Error{kind: kind, code: code, message: message}
}

func Wrap(kind Kind, code Code, cause error, message string) *Error {
	return &Error{kind: kind, code: code, message: message, cause: cause}
}

// Validation builds a non-retryable error for malformed input.
func Validation(code Code, format string, args ...any) *Error {
	return New(KindValidation, code, fmt.Sprintf(format, args...))
}

// Business builds a terminal error reported by the provider.
func Business(code Code, format string, args ...any) *Error {
	return New(KindProviderBusiness, code, fmt.Sprintf(format, args...))
}

// Transport wraps a network level failure talking to the provider.
func Transport(code Code, cause error, format string, args ...any) *Error {
	return Wrap(KindProviderTransport, code, cause, fmt.Sprintf(format, args...))
}

// State reports a broken workflow invariant. It always indicates a defect.
func State(code Code, format string, args ...any) *Error {
	return New(KindWorkflowState, code, fmt.Sprintf(format, args...))
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.cause != nil {
		return fmt.Sprintf("%s/%s: %s: %v", e.kind, e.code, e.message, e.cause)
	}
	return fmt.Sprintf("%s/%s: %s", e.kind, e.code, e.message)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

// Is matches the same *Error, or an equal one: kind, code and message all
// agree. Sentinels sharing a code stay distinct; use CodeOf to match a class.
func (e *Error) Is(target error) bool {
	if e == nil {
		return false
	}
	t, ok := target.(*Error)
	if !ok || t == nil {
		return false
	}
	if e == t {
		return true
	}
	return e.kind == t.kind && e.code == t.code && e.message == t.message
}

func (e *Error) Kind() Kind {
	if e == nil {
		return KindUnknown
	}
	return e.kind
}

func (e *Error) Code() Code {
	if e == nil {
		return CodeUnknown
	}
	return e.code
}

func (e *Error) Message() string {
	if e == nil {
		return ""
	}
	return e.message
}

// Retryable reports whether repeating the same call may succeed. Only
// transport failures qualify; cancellation never does.
func (e *Error) Retryable() bool {
	if e == nil {
		return false
	}
	return e.kind == KindProviderTransport && e.code != CodeCanceled
}

// From returns the first *Error found in err's chain.
func From(err error) (*Error, bool) {
	if err == nil {
		return nil, false
	}
	var target *Error
	if errors.As(err, &target) {
		return target, true
	}
	return nil, false
}

func KindOf(err error) Kind {
	if e, ok := From(err); ok {
		return e.Kind()
	}
	return KindUnknown
}

func CodeOf(err error) Code {
	if e, ok := From(err); ok {
		return e.Code()
	}
	return CodeUnknown
}

func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

func IsRetryable(err error) bool {
	if e, ok := From(err); ok {
		return e.Retryable()
	}
	return false
}
