// Package provider describes the boundary to the external payment service.
package provider

//go:generate mockgen -source=provider.go -destination=mocks/mock_provider.go -package=mocks

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/Xausdorf/paycrew/internal/domain/entity"
	"github.com/Xausdorf/paycrew/internal/domain/payerr"
)

type BalanceQuery struct {
	CustomerID string
	Currency   string
}

type Balance struct {
	Available decimal.Decimal
	Currency  string
}

type PayeeSearch struct {
	Name         string
	ContactEmail string
	Type         entity.PayeeType
}

type ContactDetails struct {
	Email string
	Phone string
}

type NewPayee struct {
	Type          entity.PayeeType
	Name          string
	BankDetails   *entity.BankDetails
	CryptoAddress string
	Currency      string
	Contact       *ContactDetails
}

// Validate enforces the fields the provider requires for each payee type.
func (p NewPayee) Validate() error {
	switch p.Type {
	case entity.PayeeTypeUSACH:
		if p.BankDetails == nil {
			return payerr.Validation(payerr.CodeInvalidPayee, "bank details are required for %s", p.Type)
		}
		return p.BankDetails.Validate()
	case entity.PayeeTypeCryptoAddress:
		return entity.ValidateCryptoAddress(p.CryptoAddress)
	default:
		return payerr.Validation(payerr.CodeInvalidPayee, "unsupported payee type %q", p.Type)
	}
}

type SendPayment struct {
	Amount         decimal.Decimal
	Currency       string
	DestinationID  string
	Destination    *NewPayee
	CustomerID     string
	CustomerEmail  string
	CustomerName   string
	Memo           string
	IdempotencyKey string
}

func (s SendPayment) Validate() error {
	if !s.Amount.IsPositive() {
		return payerr.Validation(payerr.CodeInvalidRequest, "amount must be positive")
	}
	if s.DestinationID == "" && s.Destination == nil {
		return payerr.Validation(payerr.CodeInvalidRequest, "destination id or destination is required")
	}
	if s.Destination != nil {
		return s.Destination.Validate()
	}
	return nil
}

type SendResult struct {
	ConfirmationID string
	Status         string
}

type MoneyRequest struct {
	Amount        decimal.Decimal
	Currency      string
	CustomerID    string
	CustomerEmail string
	CustomerName  string
	Memo          string
}

func (m MoneyRequest) Validate() error {
	if !m.Amount.IsPositive() {
		return payerr.Validation(payerr.CodeInvalidRequest, "amount must be positive")
	}
	if m.CustomerID == "" {
		return payerr.Validation(payerr.CodeInvalidRequest, "customer id is required")
	}
	return nil
}

type CheckoutLink struct {
	URL string
}

// Client must be safe for concurrent use; workflow runs share one instance.
// Implementations return *payerr.Error values.
type Client interface {
	GetBalance(ctx context.Context, q BalanceQuery) (*Balance, error)
	SearchPayees(ctx context.Context, q PayeeSearch) ([]*entity.Payee, error)
	AddPayee(ctx context.Context, p NewPayee) (*entity.Payee, error)
	SendPayment(ctx context.Context, p SendPayment) (*SendResult, error)
	RequestPayment(ctx context.Context, r MoneyRequest) (*CheckoutLink, error)
}
