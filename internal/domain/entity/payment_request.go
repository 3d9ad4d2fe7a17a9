package entity

import (
	"net/mail"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Xausdorf/paycrew/internal/domain/payerr"
)

const DefaultCurrency = "USD"

var (
	ErrNonPositiveAmount = payerr.New(payerr.KindValidation, payerr.CodeInvalidRequest, "amount must be positive")
	ErrRecipientRequired = payerr.New(payerr.KindValidation, payerr.CodeInvalidRequest, "recipient name is required")
)

// PaymentRequest is the immutable input of a single workflow run.
type PaymentRequest struct {
	amount         decimal.Decimal
	currency       string
	recipientName  string
	recipientEmail string
	memo           string
	bankDetails    *BankDetails
}

type PaymentRequestParams struct {
	Amount         decimal.Decimal
	Currency       string
	RecipientName  string
	RecipientEmail string
	Memo           string
	BankDetails    *BankDetails
}

func NewPaymentRequest(p PaymentRequestParams) (*PaymentRequest, error) {
	if !p.Amount.IsPositive() {
		return nil, ErrNonPositiveAmount
	}
	if !p.Amount.Equal(p.Amount.Round(2)) {
		return nil, payerr.Validation(payerr.CodeInvalidRequest, "amount %s has more than two fractional digits", p.Amount)
	}

	name := strings.TrimSpace(p.RecipientName)
	if name == "" {
		return nil, ErrRecipientRequired
	}

	email := strings.TrimSpace(p.RecipientEmail)
	if email != "" {
		addr, err := mail.ParseAddress(email)
		if err != nil {
			return nil, payerr.Validation(payerr.CodeInvalidRequest, "invalid recipient email %q", email)
		}
		email = addr.Address
	}

	currency := strings.ToUpper(strings.TrimSpace(p.Currency))
	if currency == "" {
		currency = DefaultCurrency
	}

	var bank *BankDetails
	if p.BankDetails != nil {
		b := *p.BankDetails
		bank = &b
	}

	return &PaymentRequest{
		amount:         p.Amount,
		currency:       currency,
		recipientName:  name,
		recipientEmail: email,
		memo:           strings.TrimSpace(p.Memo),
		bankDetails:    bank,
	}, nil
}

func (r *PaymentRequest) Amount() decimal.Decimal {
	return r.amount
}

func (r *PaymentRequest) Currency() string {
	return r.currency
}

func (r *PaymentRequest) RecipientName() string {
	return r.recipientName
}

func (r *PaymentRequest) RecipientEmail() string {
	return r.recipientEmail
}

func (r *PaymentRequest) Memo() string {
	return r.memo
}

// BankDetails returns the caller supplied bank details, if any.
func (r *PaymentRequest) BankDetails() (BankDetails, bool) {
	if r.bankDetails == nil {
		return BankDetails{}, false
	}
	return *r.bankDetails, true
}
