package payee

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Xausdorf/paycrew/internal/domain/entity"
	"github.com/Xausdorf/paycrew/internal/domain/provider"
)

var (
	ErrLookup   = errors.New("payee lookup failed")
	ErrCreation = errors.New("payee creation failed")
)

// Resolver finds or creates the US ACH destination for a recipient.
//
// Search then create is not atomic: two concurrent resolutions for the same
// new recipient may both create a payee.
type Resolver struct {
	client   provider.Client
	currency string
	logger   *slog.Logger
}

type Option func(*Resolver)

func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

func WithCurrency(currency string) Option {
	return func(r *Resolver) {
		if currency != "" {
			r.currency = currency
		}
	}
}

func NewResolver(client provider.Client, opts ...Option) *Resolver {
	r := &Resolver{
		client:   client,
		currency: entity.DefaultCurrency,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Resolver) Resolve(ctx context.Context, name, email string, bank entity.BankDetails) (string, error) {
	query := provider.PayeeSearch{Type: entity.PayeeTypeUSACH}
	if email != "" {
		query.ContactEmail = email
	} else {
		query.Name = name
	}

	found, err := r.client.SearchPayees(ctx, query)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrLookup, err)
	}

	if existing := pick(found, query); existing != nil {
		r.logger.InfoContext(ctx, "payee found", "payee_id", existing.ID())
		return existing.ID(), nil
	}

	req := provider.NewPayee{
		Type:        entity.PayeeTypeUSACH,
		Name:        name,
		BankDetails: &bank,
		Currency:    r.currency,
	}
	if email != "" {
		req.Contact = &provider.ContactDetails{Email: email}
	}

	created, err := r.client.AddPayee(ctx, req)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrCreation, err)
	}
	if created == nil || created.ID() == "" {
		return "", fmt.Errorf("%w: provider returned no payee id", ErrCreation)
	}

	r.logger.InfoContext(ctx, "payee created", "payee_id", created.ID())
	return created.ID(), nil
}

func pick(payees []*entity.Payee, q provider.PayeeSearch) *entity.Payee {
	for _, p := range payees {
		if p == nil || p.ID() == "" {
			continue
		}
		if q.ContactEmail != "" && strings.EqualFold(p.ContactEmail(), q.ContactEmail) {
			return p
		}
		if q.Name != "" && strings.EqualFold(strings.TrimSpace(p.Name()), strings.TrimSpace(q.Name)) {
			return p
		}
	}
	return nil
}
