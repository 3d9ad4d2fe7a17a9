package sandbox_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Xausdorf/paycrew/internal/domain/entity"
	"github.com/Xausdorf/paycrew/internal/domain/payerr"
	"github.com/Xausdorf/paycrew/internal/domain/provider"
	"github.com/Xausdorf/paycrew/internal/infrastructure/sandbox"
)

func validPayee() provider.NewPayee {
	return provider.NewPayee{
		Type: entity.PayeeTypeUSACH,
		Name: "John Doe",
		BankDetails: &entity.BankDetails{
			RoutingNumber:     "011000015",
			AccountNumber:     "1234567890",
			AccountType:       entity.AccountTypeSavings,
			AccountHolderName: "John Doe",
		},
		Contact: &provider.ContactDetails{Email: "john@example.com"},
	}
}

func TestProvider_PayeeLifecycle(t *testing.T) {
	ctx := context.Background()
	p := sandbox.New()

	created, err := p.AddPayee(ctx, validPayee())
	require.NoError(t, err)

	found, err := p.SearchPayees(ctx, provider.PayeeSearch{ContactEmail: "JOHN@example.com"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, created.ID(), found[0].ID())

	none, err := p.SearchPayees(ctx, provider.PayeeSearch{Type: entity.PayeeTypeCryptoAddress})
	require.NoError(t, err)
	assert.Empty(t, none)
	assert.Equal(t, 2, p.Calls(sandbox.OpSearchPayees))
}

func TestProvider_AddPayeeValidation(t *testing.T) {
	bad := validPayee()
	bad.BankDetails.AccountNumber = ""

	_, err := sandbox.New().AddPayee(context.Background(), bad)

	assert.Equal(t, payerr.KindValidation, payerr.KindOf(err))
}

func TestProvider_SendPaymentDebitsOncePerIdempotencyKey(t *testing.T) {
	ctx := context.Background()
	p := sandbox.New(sandbox.WithBalance(decimal.RequireFromString("500.00")))
	payee, err := p.AddPayee(ctx, validPayee())
	require.NoError(t, err)

	send := provider.SendPayment{
		Amount:         decimal.RequireFromString("100.00"),
		DestinationID:  payee.ID(),
		IdempotencyKey: "run-1",
	}
	first, err := p.SendPayment(ctx, send)
	require.NoError(t, err)
	second, err := p.SendPayment(ctx, send)
	require.NoError(t, err)

	assert.Equal(t, first.ConfirmationID, second.ConfirmationID)
	assert.Len(t, p.Payments(), 1)

	bal, err := p.GetBalance(ctx, provider.BalanceQuery{})
	require.NoError(t, err)
	assert.True(t, bal.Available.Equal(decimal.RequireFromString("400.00")))
}

func TestProvider_SendPaymentErrors(t *testing.T) {
	ctx := context.Background()
	p := sandbox.New(sandbox.WithBalance(decimal.RequireFromString("50.00")))
	payee, err := p.AddPayee(ctx, validPayee())
	require.NoError(t, err)

	_, err = p.SendPayment(ctx, provider.SendPayment{Amount: decimal.NewFromInt(100), DestinationID: payee.ID()})
	assert.Equal(t, payerr.CodeInsufficientFunds, payerr.CodeOf(err))

	_, err = p.SendPayment(ctx, provider.SendPayment{Amount: decimal.NewFromInt(1), DestinationID: "missing"})
	assert.Equal(t, payerr.CodeNotFound, payerr.CodeOf(err))
}

func TestProvider_FailWith(t *testing.T) {
	p := sandbox.New()
	injected := payerr.Transport(payerr.CodeServerError, nil, "boom")
	p.FailWith(sandbox.OpGetBalance, injected)

	_, err := p.GetBalance(context.Background(), provider.BalanceQuery{})
	assert.ErrorIs(t, err, injected)

	p.FailWith(sandbox.OpGetBalance, nil)
	_, err = p.GetBalance(context.Background(), provider.BalanceQuery{})
	assert.NoError(t, err)
}

func TestProvider_RequestPayment(t *testing.T) {
	p := sandbox.New(sandbox.WithCheckoutBaseURL("https://pay.example.com/c/"))

	link, err := p.RequestPayment(context.Background(), provider.MoneyRequest{
		Amount:     decimal.NewFromInt(20),
		CustomerID: "cus_1",
	})
	require.NoError(t, err)
	assert.Contains(t, link.URL, "https://pay.example.com/c/")

	_, err = p.RequestPayment(context.Background(), provider.MoneyRequest{Amount: decimal.NewFromInt(20)})
	assert.Equal(t, payerr.KindValidation, payerr.KindOf(err))
}
