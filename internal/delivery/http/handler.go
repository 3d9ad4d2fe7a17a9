package http

//go:generate mockgen -source=handler.go -destination=mocks/mock_handler.go -package=mocks

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Xausdorf/paycrew/internal/domain/entity"
	"github.com/Xausdorf/paycrew/internal/domain/payerr"
	"github.com/Xausdorf/paycrew/internal/domain/provider"
	"github.com/Xausdorf/paycrew/internal/usecase/checkout"
	"github.com/Xausdorf/paycrew/internal/usecase/transfer"
)

const idempotencyHeader = "X-Idempotency-Key"

type Payments interface {
	Execute(ctx context.Context, req transfer.Request) (*transfer.Response, error)
	Submit(ctx context.Context, req transfer.Request) (*transfer.Response, error)
	Status(ctx context.Context, runID uuid.UUID) (*transfer.Response, error)
}

type Checkout interface {
	Execute(ctx context.Context, req checkout.Request) (*checkout.Response, error)
	QRCode(link string) ([]byte, error)
}

type Balances interface {
	Available(ctx context.Context, customerID, currency string) (*provider.Balance, error)
}

type Handler struct {
	payments Payments
	checkout Checkout
	balances Balances
}

func NewHandler(payments Payments, checkout Checkout, balances Balances) *Handler {
	return &Handler{
		payments: payments,
		checkout: checkout,
		balances: balances,
	}
}

type BankDetailsRequest struct {
	RoutingNumber     string `json:"routing_number"`
	AccountNumber     string `json:"account_number"`
	AccountType       string `json:"account_type"`
	AccountHolderName string `json:"account_holder_name"`
}

type PaymentRequest struct {
	Amount         decimal.Decimal     `json:"amount"`
	Currency       string              `json:"currency"`
	RecipientName  string              `json:"recipient_name"`
	RecipientEmail string              `json:"recipient_email"`
	Memo           string              `json:"memo"`
	BankDetails    *BankDetailsRequest `json:"bank_details"`
}

type ErrorBody struct {
	Kind    string `json:"kind,omitempty"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}

type PaymentResponse struct {
	RunID          string     `json:"run_id"`
	State          string     `json:"state"`
	Status         string     `json:"status"`
	ConfirmationID string     `json:"confirmation_id,omitempty"`
	FailedAt       string     `json:"failed_at,omitempty"`
	Error          *ErrorBody `json:"error,omitempty"`
}

type BalanceResponse struct {
	Available string `json:"available"`
	Currency  string `json:"currency"`
}

type CheckoutRequest struct {
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	CustomerID    string          `json:"customer_id"`
	CustomerEmail string          `json:"customer_email"`
	CustomerName  string          `json:"customer_name"`
	Memo          string          `json:"memo"`
}

type CheckoutResponse struct {
	URL      string `json:"url"`
	Amount   string `json:"amount"`
	Currency string `json:"currency"`
	QRURL    string `json:"qr_url"`
}

func (h *Handler) HandleCreatePayment(w http.ResponseWriter, r *http.Request) {
	idempotencyKey := r.Header.Get(idempotencyHeader)
	if idempotencyKey == "" {
		writeError(w, http.StatusBadRequest, errors.New(idempotencyHeader+" header required"))
		return
	}

	var req PaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, errors.New("invalid json"))
		return
	}

	payment, err := entity.NewPaymentRequest(entity.PaymentRequestParams{
		Amount:         req.Amount,
		Currency:       req.Currency,
		RecipientName:  req.RecipientName,
		RecipientEmail: req.RecipientEmail,
		Memo:           req.Memo,
		BankDetails:    req.BankDetails.toEntity(),
	})
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}

	async, _ := strconv.ParseBool(r.URL.Query().Get("async"))
	run := h.payments.Execute
	if async {
		run = h.payments.Submit
	}

	resp, err := run(r.Context(), transfer.Request{IdempotencyKey: idempotencyKey, Payment: payment})
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, statusForRun(resp), toPaymentResponse(resp))
}

func (h *Handler) HandleGetPayment(w http.ResponseWriter, r *http.Request) {
	runID, err := uuid.Parse(chi.URLParam(r, "run_id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, errors.New("invalid run_id"))
		return
	}

	resp, err := h.payments.Status(r.Context(), runID)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, toPaymentResponse(resp))
}

func (h *Handler) HandleBalance(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	bal, err := h.balances.Available(r.Context(), q.Get("customer_id"), q.Get("currency"))
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, BalanceResponse{
		Available: bal.Available.StringFixed(2),
		Currency:  bal.Currency,
	})
}

func (h *Handler) HandleCreatePaymentRequest(w http.ResponseWriter, r *http.Request) {
	var req CheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, errors.New("invalid json"))
		return
	}

	resp, err := h.checkout.Execute(r.Context(), checkout.Request{
		Amount:        req.Amount,
		Currency:      req.Currency,
		CustomerID:    req.CustomerID,
		CustomerEmail: req.CustomerEmail,
		CustomerName:  req.CustomerName,
		Memo:          req.Memo,
	})
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}

	writeJSON(w, http.StatusCreated, CheckoutResponse{
		URL:      resp.URL,
		Amount:   resp.Amount.StringFixed(2),
		Currency: resp.Currency,
		QRURL:    "/api/payment-requests/qr?link=" + url.QueryEscape(resp.URL),
	})
}

func (h *Handler) HandleQR(w http.ResponseWriter, r *http.Request) {
	link := r.URL.Query().Get("link")
	if link == "" {
		writeError(w, http.StatusBadRequest, errors.New("link query param required"))
		return
	}

	png, err := h.checkout.QRCode(link)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	_, _ = w.Write(png)
}

func (b *BankDetailsRequest) toEntity() *entity.BankDetails {
	if b == nil {
		return nil
	}
	return &entity.BankDetails{
		RoutingNumber:     b.RoutingNumber,
		AccountNumber:     b.AccountNumber,
		AccountType:       entity.AccountType(b.AccountType),
		AccountHolderName: b.AccountHolderName,
	}
}

func toPaymentResponse(resp *transfer.Response) PaymentResponse {
	out := PaymentResponse{
		RunID:          resp.RunID.String(),
		State:          string(resp.State),
		Status:         string(resp.Status),
		ConfirmationID: resp.ConfirmationID,
		FailedAt:       string(resp.FailedAt),
	}
	if resp.ErrorCode != "" || resp.ErrorMessage != "" {
		out.Error = &ErrorBody{
			Kind:    string(resp.ErrorKind),
			Code:    string(resp.ErrorCode),
			Message: resp.ErrorMessage,
		}
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	body := ErrorBody{Message: err.Error()}
	if pe, ok := payerr.From(err); ok {
		body = ErrorBody{Kind: string(pe.Kind()), Code: string(pe.Code()), Message: pe.Message()}
	}
	writeJSON(w, status, body)
}
