// Package payman is the HTTP client for the Payman agent payments API.
package payman

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Xausdorf/paycrew/internal/domain/entity"
	"github.com/Xausdorf/paycrew/internal/domain/payerr"
	"github.com/Xausdorf/paycrew/internal/domain/provider"
)

const (
	secretHeader      = "x-payman-api-secret"
	idempotencyHeader = "Idempotency-Key"

	defaultTimeout = 10 * time.Second
	defaultBackoff = 200 * time.Millisecond
	maxBackoff     = 5 * time.Second
	maxErrorBody   = 64 << 10
)

type Config struct {
	BaseURL    string
	APISecret  string
	Timeout    time.Duration
	Retries    int
	Backoff    time.Duration
	HTTPClient *http.Client
	Logger     *slog.Logger
}

type Client struct {
	baseURL string
	secret  string
	retries int
	backoff time.Duration
	http    *http.Client
	logger  *slog.Logger
}

func New(cfg Config) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid payman base url %q", cfg.BaseURL)
	}
	if cfg.APISecret == "" {
		return nil, errors.New("payman api secret is required")
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	backoff := cfg.Backoff
	if backoff <= 0 {
		backoff = defaultBackoff
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		baseURL: base.String(),
		secret:  cfg.APISecret,
		retries: max(cfg.Retries, 0),
		backoff: backoff,
		http:    httpClient,
		logger:  logger,
	}, nil
}

func (c *Client) GetBalance(ctx context.Context, q provider.BalanceQuery) (*provider.Balance, error) {
	params := url.Values{}
	if q.CustomerID != "" {
		params.Set("customerId", q.CustomerID)
	}
	currency := q.Currency
	if currency == "" {
		currency = entity.DefaultCurrency
	}
	params.Set("currency", currency)

	var resp balanceResponse
	if err := c.do(ctx, call{method: http.MethodGet, path: "/balances/spendable", query: params, retry: true}, &resp); err != nil {
		return nil, err
	}
	if resp.Currency == "" {
		resp.Currency = currency
	}
	return &provider.Balance{Available: resp.SpendableBalance, Currency: resp.Currency}, nil
}

func (c *Client) SearchPayees(ctx context.Context, q provider.PayeeSearch) ([]*entity.Payee, error) {
	params := url.Values{}
	if q.Name != "" {
		params.Set("name", q.Name)
	}
	if q.ContactEmail != "" {
		params.Set("contactEmail", q.ContactEmail)
	}
	if q.Type != "" {
		params.Set("type", string(q.Type))
	}

	var resp []destination
	if err := c.do(ctx, call{method: http.MethodGet, path: "/payment-destinations", query: params, retry: true}, &resp); err != nil {
		return nil, err
	}
	payees := make([]*entity.Payee, 0, len(resp))
	for _, d := range resp {
		payees = append(payees, d.toPayee())
	}
	return payees, nil
}

func (c *Client) AddPayee(ctx context.Context, p provider.NewPayee) (*entity.Payee, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	var resp destination
	if err := c.do(ctx, call{method: http.MethodPost, path: "/payment-destinations", body: toDestination(p)}, &resp); err != nil {
		return nil, err
	}
	if resp.ID == "" {
		return nil, payerr.Transport(payerr.CodeServerError, nil, "payment destination created without id")
	}
	return resp.toPayee(), nil
}

// SendPayment is retried on transport failures only when the request carries
// an idempotency key.
func (c *Client) SendPayment(ctx context.Context, p provider.SendPayment) (*provider.SendResult, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	body := sendRequest{
		AmountDecimal:        p.Amount,
		Currency:             p.Currency,
		PaymentDestinationID: p.DestinationID,
		CustomerID:           p.CustomerID,
		CustomerEmail:        p.CustomerEmail,
		CustomerName:         p.CustomerName,
		Memo:                 p.Memo,
	}
	if p.Destination != nil {
		body.PaymentDestination = toDestination(*p.Destination)
	}

	var resp sendResponse
	err := c.do(ctx, call{
		method:         http.MethodPost,
		path:           "/payments/send",
		body:           body,
		idempotencyKey: p.IdempotencyKey,
		retry:          p.IdempotencyKey != "",
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &provider.SendResult{ConfirmationID: resp.Reference, Status: resp.Status}, nil
}

func (c *Client) RequestPayment(ctx context.Context, r provider.MoneyRequest) (*provider.CheckoutLink, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	body := checkoutRequest{
		AmountDecimal: r.Amount,
		Currency:      r.Currency,
		CustomerID:    r.CustomerID,
		CustomerEmail: r.CustomerEmail,
		CustomerName:  r.CustomerName,
		Memo:          r.Memo,
	}

	var resp checkoutResponse
	if err := c.do(ctx, call{method: http.MethodPost, path: "/payments/checkout-links", body: body}, &resp); err != nil {
		return nil, err
	}
	return &provider.CheckoutLink{URL: resp.CheckoutURL}, nil
}

type call struct {
	method         string
	path           string
	query          url.Values
	body           any
	idempotencyKey string
	retry          bool
}

func (c *Client) do(ctx context.Context, cl call, out any) error {
	var payload []byte
	if cl.body != nil {
		var err error
		if payload, err = json.Marshal(cl.body); err != nil {
			return payerr.Wrap(payerr.KindValidation, payerr.CodeInvalidRequest, err, "encode request")
		}
	}

	for attempt := 0; ; attempt++ {
		err := c.once(ctx, cl, payload, out)
		if err == nil {
			return nil
		}
		if !cl.retry || attempt >= c.retries || !payerr.IsRetryable(err) {
			return err
		}

		delay := c.delay(attempt)
		c.logger.DebugContext(ctx, "retrying provider call",
			slog.String("path", cl.path),
			slog.Int("attempt", attempt+1),
			slog.Duration("delay", delay),
			slog.String("error", err.Error()),
		)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return payerr.Transport(payerr.CodeCanceled, ctx.Err(), "%s %s canceled", cl.method, cl.path)
		case <-timer.C:
		}
	}
}

func (c *Client) delay(attempt int) time.Duration {
	d := c.backoff << attempt
	if d <= 0 || d > maxBackoff {
		return maxBackoff
	}
	return d
}

func (c *Client) once(ctx context.Context, cl call, payload []byte, out any) error {
	target := c.baseURL + cl.path
	if len(cl.query) > 0 {
		target += "?" + cl.query.Encode()
	}

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, cl.method, target, body)
	if err != nil {
		return payerr.Wrap(payerr.KindValidation, payerr.CodeInvalidRequest, err, "build request")
	}
	req.Header.Set(secretHeader, c.secret)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if cl.idempotencyKey != "" {
		req.Header.Set(idempotencyHeader, cl.idempotencyKey)
	}

	res, err := c.http.Do(req)
	if err != nil {
		return transportError(ctx, cl, err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(res.Body, maxErrorBody))
		return statusError(res.StatusCode, raw)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return payerr.Transport(payerr.CodeServerError, err, "decode %s %s response", cl.method, cl.path)
	}
	return nil
}

func transportError(ctx context.Context, cl call, err error) error {
	switch {
	case errors.Is(ctx.Err(), context.Canceled):
		return payerr.Transport(payerr.CodeCanceled, err, "%s %s canceled", cl.method, cl.path)
	case errors.Is(err, context.DeadlineExceeded):
		return payerr.Transport(payerr.CodeTimeout, err, "%s %s timed out", cl.method, cl.path)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return payerr.Transport(payerr.CodeTimeout, err, "%s %s timed out", cl.method, cl.path)
	}
	return payerr.Transport(payerr.CodeNetwork, err, "%s %s failed", cl.method, cl.path)
}

func statusError(status int, raw []byte) error {
	message := http.StatusText(status)
	var body errorResponse
	if json.Unmarshal(raw, &body) == nil && body.ErrorMessage != "" {
		message = body.ErrorMessage
	}

	switch {
	case status == http.StatusBadRequest || status == http.StatusUnprocessableEntity:
		return payerr.Validation(payerr.CodeInvalidRequest, "%s", message)
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return payerr.Business(payerr.CodeUnauthorized, "%s", message)
	case status == http.StatusPaymentRequired:
		return payerr.Business(payerr.CodeInsufficientFunds, "%s", message)
	case status == http.StatusNotFound:
		return payerr.Business(payerr.CodeNotFound, "%s", message)
	case status == http.StatusConflict:
		return payerr.Business(payerr.CodeDuplicate, "%s", message)
	case status == http.StatusTooManyRequests:
		return payerr.Transport(payerr.CodeRateLimited, nil, "%s", message)
	case status >= http.StatusInternalServerError:
		return payerr.Transport(payerr.CodeServerError, nil, "status %d: %s", status, message)
	default:
		return payerr.Business(payerr.CodePaymentRejected, "status %d: %s", status, message)
	}
}

var _ provider.Client = (*Client)(nil)
