package checkout

import (
	"context"
	"log/slog"
	"net/mail"
	"net/url"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Xausdorf/paycrew/internal/domain/entity"
	"github.com/Xausdorf/paycrew/internal/domain/payerr"
	"github.com/Xausdorf/paycrew/internal/domain/provider"
	"github.com/Xausdorf/paycrew/internal/domain/qrcode"
)

type Request struct {
	Amount        decimal.Decimal
	Currency      string
	CustomerID    string
	CustomerEmail string
	CustomerName  string
	Memo          string
}

type Response struct {
	URL      string
	Amount   decimal.Decimal
	Currency string
}

// UseCase asks a customer for money through a hosted checkout link.
type UseCase struct {
	client   provider.Client
	qr       qrcode.Generator
	currency string
	logger   *slog.Logger
}

type Option func(*UseCase)

func WithCurrency(currency string) Option {
	return func(uc *UseCase) {
		if currency != "" {
			uc.currency = strings.ToUpper(currency)
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(uc *UseCase) {
		if logger != nil {
			uc.logger = logger
		}
	}
}

func NewUseCase(client provider.Client, qr qrcode.Generator, opts ...Option) *UseCase {
	uc := &UseCase{
		client:   client,
		qr:       qr,
		currency: entity.DefaultCurrency,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

func (uc *UseCase) Execute(ctx context.Context, req Request) (*Response, error) {
	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = uc.currency
	}

	email := strings.TrimSpace(req.CustomerEmail)
	if email != "" {
		addr, err := mail.ParseAddress(email)
		if err != nil {
			return nil, payerr.Validation(payerr.CodeInvalidRequest, "invalid customer email %q", email)
		}
		email = addr.Address
	}

	mr := provider.MoneyRequest{
		Amount:        req.Amount,
		Currency:      currency,
		CustomerID:    strings.TrimSpace(req.CustomerID),
		CustomerEmail: email,
		CustomerName:  strings.TrimSpace(req.CustomerName),
		Memo:          req.Memo,
	}
	if err := mr.Validate(); err != nil {
		return nil, err
	}

	link, err := uc.client.RequestPayment(ctx, mr)
	if err != nil {
		return nil, err
	}
	if link == nil || link.URL == "" {
		return nil, payerr.Business(payerr.CodePaymentRejected, "provider returned no checkout link")
	}

	uc.logger.InfoContext(ctx, "checkout link created",
		slog.String("customer_id", mr.CustomerID),
		slog.String("amount", mr.Amount.StringFixed(2)),
	)
	return &Response{URL: link.URL, Amount: mr.Amount, Currency: currency}, nil
}

// QRCode renders an absolute http(s) checkout link as a PNG.
func (uc *UseCase) QRCode(link string) ([]byte, error) {
	u, err := url.Parse(strings.TrimSpace(link))
	if err != nil || !u.IsAbs() || (u.Scheme != "https" && u.Scheme != "http") || u.Host == "" {
		return nil, payerr.Validation(payerr.CodeInvalidRequest, "checkout link must be an absolute http(s) url")
	}
	return uc.qr.Generate(u.String())
}
