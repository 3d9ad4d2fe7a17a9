package balance

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/Xausdorf/paycrew/internal/domain/entity"
	"github.com/Xausdorf/paycrew/internal/domain/provider"
)

var ErrQuery = errors.New("balance query failed")

// Verifier compares the spendable balance with a requested amount. An unknown
// balance is always an error, never "sufficient".
type Verifier struct {
	client     provider.Client
	customerID string
	currency   string
}

func NewVerifier(client provider.Client, customerID, currency string) *Verifier {
	if currency == "" {
		currency = entity.DefaultCurrency
	}
	return &Verifier{client: client, customerID: customerID, currency: currency}
}

func (v *Verifier) Check(ctx context.Context, amount decimal.Decimal) (*entity.BalanceCheck, error) {
	bal, err := v.Available(ctx, v.customerID, v.currency)
	if err != nil {
		return nil, err
	}
	return entity.NewBalanceCheck(bal.Available, amount, bal.Currency), nil
}

// Available returns the spendable balance, optionally scoped to a customer.
func (v *Verifier) Available(ctx context.Context, customerID, currency string) (*provider.Balance, error) {
	if currency == "" {
		currency = v.currency
	}
	bal, err := v.client.GetBalance(ctx, provider.BalanceQuery{CustomerID: customerID, Currency: currency})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrQuery, err)
	}
	if bal == nil {
		return nil, fmt.Errorf("%w: empty response", ErrQuery)
	}
	if bal.Currency == "" {
		bal.Currency = currency
	}
	return bal, nil
}
