// Package sandbox is an in-memory payment provider. It backs local runs and
// end to end tests and counts every call it receives.
package sandbox

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Xausdorf/paycrew/internal/domain/entity"
	"github.com/Xausdorf/paycrew/internal/domain/payerr"
	"github.com/Xausdorf/paycrew/internal/domain/provider"
)

const defaultCheckoutBaseURL = "https://sandbox.paycrew.local/checkout"

type Operation string

const (
	OpGetBalance     Operation = "get_balance"
	OpSearchPayees   Operation = "search_payees"
	OpAddPayee       Operation = "add_payee"
	OpSendPayment    Operation = "send_payment"
	OpRequestPayment Operation = "request_payment"
)

type Payment struct {
	ConfirmationID string
	PayeeID        string
	Amount         decimal.Decimal
	Currency       string
	Memo           string
}

type Provider struct {
	mu              sync.Mutex
	balances        map[string]decimal.Decimal
	payees          []*entity.Payee
	payments        []Payment
	byIdempotency   map[string]string
	failures        map[Operation]error
	calls           map[Operation]int
	checkoutBaseURL string
}

type Option func(*Provider)

// WithBalance sets the spendable balance of the agent wallet.
func WithBalance(amount decimal.Decimal) Option {
	return func(p *Provider) {
		p.balances[""] = amount
	}
}

func WithCustomerBalance(customerID string, amount decimal.Decimal) Option {
	return func(p *Provider) {
		p.balances[customerID] = amount
	}
}

func WithPayee(payee *entity.Payee) Option {
	return func(p *Provider) {
		p.payees = append(p.payees, payee)
	}
}

func WithCheckoutBaseURL(url string) Option {
	return func(p *Provider) {
		if url != "" {
			p.checkoutBaseURL = strings.TrimRight(url, "/")
		}
	}
}

func New(opts ...Option) *Provider {
	p := &Provider{
		balances:        map[string]decimal.Decimal{"": decimal.Zero},
		byIdempotency:   make(map[string]string),
		failures:        make(map[Operation]error),
		calls:           make(map[Operation]int),
		checkoutBaseURL: defaultCheckoutBaseURL,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// FailWith makes every following call of op return err. A nil err clears it.
func (p *Provider) FailWith(op Operation, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err == nil {
		delete(p.failures, op)
		return
	}
	p.failures[op] = err
}

func (p *Provider) Calls(op Operation) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls[op]
}

func (p *Provider) Payments() []Payment {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Payment(nil), p.payments...)
}

func (p *Provider) Payees() []*entity.Payee {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]*entity.Payee(nil), p.payees...)
}

func (p *Provider) enter(ctx context.Context, op Operation) error {
	p.calls[op]++
	if err := ctx.Err(); err != nil {
		return payerr.Transport(payerr.CodeCanceled, err, "%s canceled", op)
	}
	return p.failures[op]
}

func (p *Provider) GetBalance(ctx context.Context, q provider.BalanceQuery) (*provider.Balance, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.enter(ctx, OpGetBalance); err != nil {
		return nil, err
	}

	amount, ok := p.balances[q.CustomerID]
	if !ok {
		return nil, payerr.Business(payerr.CodeNotFound, "customer %q not found", q.CustomerID)
	}
	currency := q.Currency
	if currency == "" {
		currency = entity.DefaultCurrency
	}
	return &provider.Balance{Available: amount, Currency: currency}, nil
}

func (p *Provider) SearchPayees(ctx context.Context, q provider.PayeeSearch) ([]*entity.Payee, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.enter(ctx, OpSearchPayees); err != nil {
		return nil, err
	}

	var out []*entity.Payee
	for _, payee := range p.payees {
		if q.Type != "" && payee.Type() != q.Type {
			continue
		}
		if q.ContactEmail != "" && !strings.EqualFold(payee.ContactEmail(), q.ContactEmail) {
			continue
		}
		if q.Name != "" && !strings.EqualFold(payee.Name(), q.Name) {
			continue
		}
		out = append(out, payee)
	}
	return out, nil
}

func (p *Provider) AddPayee(ctx context.Context, np provider.NewPayee) (*entity.Payee, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.enter(ctx, OpAddPayee); err != nil {
		return nil, err
	}
	if err := np.Validate(); err != nil {
		return nil, err
	}

	var email string
	if np.Contact != nil {
		email = np.Contact.Email
	}
	var bank *entity.BankDetails
	if np.BankDetails != nil {
		b := *np.BankDetails
		bank = &b
	}

	payee := entity.ReconstructPayee("pd_"+uuid.NewString(), np.Type, np.Name, email, bank, np.CryptoAddress)
	p.payees = append(p.payees, payee)
	return payee, nil
}

func (p *Provider) SendPayment(ctx context.Context, sp provider.SendPayment) (*provider.SendResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.enter(ctx, OpSendPayment); err != nil {
		return nil, err
	}
	if err := sp.Validate(); err != nil {
		return nil, err
	}

	if sp.IdempotencyKey != "" {
		if conf, ok := p.byIdempotency[sp.IdempotencyKey]; ok {
			return &provider.SendResult{ConfirmationID: conf, Status: "completed"}, nil
		}
	}

	payeeID := sp.DestinationID
	if payeeID != "" && !p.hasPayee(payeeID) {
		return nil, payerr.Business(payerr.CodeNotFound, "payment destination %q not found", payeeID)
	}
	if sp.Destination != nil {
		payee := entity.ReconstructPayee("pd_"+uuid.NewString(), sp.Destination.Type, sp.Destination.Name, "", sp.Destination.BankDetails, sp.Destination.CryptoAddress)
		p.payees = append(p.payees, payee)
		payeeID = payee.ID()
	}

	available := p.balances[sp.CustomerID]
	if available.LessThan(sp.Amount) {
		return nil, payerr.Business(payerr.CodeInsufficientFunds, "available %s, requested %s", available, sp.Amount)
	}
	p.balances[sp.CustomerID] = available.Sub(sp.Amount)

	conf := "pay_" + uuid.NewString()
	p.payments = append(p.payments, Payment{
		ConfirmationID: conf,
		PayeeID:        payeeID,
		Amount:         sp.Amount,
		Currency:       sp.Currency,
		Memo:           sp.Memo,
	})
	if sp.IdempotencyKey != "" {
		p.byIdempotency[sp.IdempotencyKey] = conf
	}
	return &provider.SendResult{ConfirmationID: conf, Status: "completed"}, nil
}

func (p *Provider) RequestPayment(ctx context.Context, r provider.MoneyRequest) (*provider.CheckoutLink, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.enter(ctx, OpRequestPayment); err != nil {
		return nil, err
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return &provider.CheckoutLink{URL: p.checkoutBaseURL + "/" + uuid.NewString()}, nil
}

func (p *Provider) hasPayee(id string) bool {
	for _, payee := range p.payees {
		if payee.ID() == id {
			return true
		}
	}
	return false
}

var _ provider.Client = (*Provider)(nil)
