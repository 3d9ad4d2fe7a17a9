package entity

import "github.com/Xausdorf/paycrew/internal/domain/payerr"

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentConfirmed PaymentStatus = "confirmed"
	PaymentFailed    PaymentStatus = "failed"
)

type ErrorDetail struct {
	Kind    payerr.Kind `json:"kind"`
	Code    payerr.Code `json:"code"`
	Message string      `json:"message"`

	cause error
}

func NewErrorDetail(err error) *ErrorDetail {
	if err == nil {
		return nil
	}
	return &ErrorDetail{
		Kind:    payerr.KindOf(err),
		Code:    payerr.CodeOf(err),
		Message: err.Error(),
		cause:   err,
	}
}

// Cause returns the original error when the detail was built in process.
func (d *ErrorDetail) Cause() error {
	if d == nil {
		return nil
	}
	return d.cause
}

type PaymentResult struct {
	Status         PaymentStatus
	ConfirmationID string
	Error          *ErrorDetail
}

func Confirmed(confirmationID string) *PaymentResult {
	return &PaymentResult{Status: PaymentConfirmed, ConfirmationID: confirmationID}
}

func Failed(err error) *PaymentResult {
	return &PaymentResult{Status: PaymentFailed, Error: NewErrorDetail(err)}
}
