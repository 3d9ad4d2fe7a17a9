package http //nolint:revive // directory-based package name, imported with alias

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const requestTimeout = 30 * time.Second

// NewRouter mounts the API. metrics may be nil.
func NewRouter(h *Handler, metrics http.Handler) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(requestTimeout))

	r.Route("/api", func(r chi.Router) {
		r.Post("/payments", h.HandleCreatePayment)
		r.Get("/payments/{run_id}", h.HandleGetPayment)
		r.Get("/balance", h.HandleBalance)
		r.Post("/payment-requests", h.HandleCreatePaymentRequest)
		r.Get("/payment-requests/qr", h.HandleQR)
	})

	if metrics != nil {
		r.Method(http.MethodGet, "/metrics", metrics)
	}
	return r
}
