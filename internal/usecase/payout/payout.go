package payout

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/Xausdorf/paycrew/internal/domain/entity"
	"github.com/Xausdorf/paycrew/internal/domain/payerr"
	"github.com/Xausdorf/paycrew/internal/domain/provider"
)

type Order struct {
	Amount         decimal.Decimal
	Currency       string
	PayeeID        string
	Memo           string
	IdempotencyKey string
}

// Executor performs exactly one send per call. Retries belong to the
// transport and only happen when an idempotency key is present.
type Executor struct {
	client     provider.Client
	customerID string
	currency   string
}

// NewExecutor debits the account scoped by customerID, the agent wallet when
// it is empty. It must match the scope of the balance verifier.
func NewExecutor(client provider.Client, customerID, currency string) *Executor {
	if currency == "" {
		currency = entity.DefaultCurrency
	}
	return &Executor{client: client, customerID: customerID, currency: currency}
}

// Execute returns an error only for broken preconditions. Provider failures
// come back as a failed PaymentResult.
func (e *Executor) Execute(ctx context.Context, o Order) (*entity.PaymentResult, error) {
	if o.PayeeID == "" {
		return nil, payerr.State(payerr.CodeMissingPrecondition, "payment executed without a resolved payee")
	}
	if !o.Amount.IsPositive() {
		return nil, payerr.State(payerr.CodeMissingPrecondition, "payment executed with non-positive amount %s", o.Amount)
	}

	currency := o.Currency
	if currency == "" {
		currency = e.currency
	}

	res, err := e.client.SendPayment(ctx, provider.SendPayment{
		Amount:         o.Amount,
		Currency:       currency,
		DestinationID:  o.PayeeID,
		CustomerID:     e.customerID,
		Memo:           o.Memo,
		IdempotencyKey: o.IdempotencyKey,
	})
	if err != nil {
		return entity.Failed(err), nil
	}
	if res == nil || res.ConfirmationID == "" {
		return entity.Failed(payerr.Business(payerr.CodePaymentRejected, "provider returned no confirmation id")), nil
	}
	return entity.Confirmed(res.ConfirmationID), nil
}
