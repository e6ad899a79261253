package rest

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/JoeShih716/go-bank-ledger/internal/app/core/usecase"
)

// Handler HTTP driving adapter
type Handler struct {
	core     *usecase.Core
	logger   *slog.Logger
	loc      *time.Location
	currency string
}

type Option func(*Handler)

func WithLogger(logger *slog.Logger) Option {
	return func(h *Handler) { h.logger = logger }
}

// WithLocation 解析報表日期 (YYYY-MM-DD) 所用的時區
func WithLocation(loc *time.Location) Option {
	return func(h *Handler) { h.loc = loc }
}

func WithCurrency(currency string) Option {
	return func(h *Handler) { h.currency = currency }
}

// NewRouter 建立 chi router，所有路由同時掛在 /api/v1 與 /
func NewRouter(core *usecase.Core, opts ...Option) http.Handler {
	h := &Handler{core: core, logger: slog.Default(), loc: time.UTC, currency: "PEN"}
	for _, opt := range opts {
		opt(h)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(h.logger))
	r.Use(middleware.Recoverer)

	r.Get("/health", h.health)
	r.Route("/api/v1", h.routes)
	r.Group(h.routes)
	return r
}

func (h *Handler) routes(r chi.Router) {
	r.Route("/accounts", func(r chi.Router) {
		r.Get("/", h.listAccounts)
		r.Post("/", h.createAccount)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.getAccount)
			r.Put("/", h.updateAccount)
			r.Delete("/", h.deleteAccount)
			r.Get("/balance", h.accountBalance)
			r.Post("/deposit", h.deposit)
			r.Post("/withdraw", h.withdraw)
			r.Get("/movements", h.accountMovements)
		})
	})

	r.Post("/transfers/own", h.transferOwn)
	r.Post("/transfers/third-party", h.transferThirdParty)

	r.Get("/reports/customers/{id}/daily-balance", h.dailyBalance)
	r.Get("/reports/commissions", h.commissions)

	r.Route("/customers", func(r chi.Router) {
		r.Get("/", h.listCustomers)
		r.Post("/", h.createCustomer)
		r.Get("/{id}", h.getCustomer)
		r.Put("/{id}", h.updateCustomer)
		r.Delete("/{id}", h.deleteCustomer)
	})

	r.Route("/cards", func(r chi.Router) {
		r.Get("/", h.listCards)
		r.Post("/", h.createCard)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.getCard)
			r.Put("/", h.updateCard)
			r.Delete("/", h.deleteCard)
			r.Post("/charge", h.chargeCard)
			r.Post("/pay", h.payCard)
			r.Get("/balance", h.cardBalance)
		})
	})

	r.Route("/credits", func(r chi.Router) {
		r.Get("/", h.listCredits)
		r.Post("/", h.createCredit)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.getCredit)
			r.Put("/", h.updateCredit)
			r.Delete("/", h.deleteCredit)
			r.Post("/pay", h.payCredit)
		})
	})

	r.Route("/transactions", func(r chi.Router) {
		r.Post("/", h.recordTransaction)
		r.Get("/{id}", h.getTransaction)
		r.Get("/by-product/{productId}", h.transactionsByProduct)
	})
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, h.logger, http.StatusOK, map[string]string{"status": "ok"})
}

// requestLogger 存取紀錄 (含 chi request id)
func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			logger.LogAttrs(r.Context(), slog.LevelInfo, "http request",
				slog.String("request_id", middleware.GetReqID(r.Context())),
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", ww.Status()),
				slog.Int("bytes", ww.BytesWritten()),
				slog.Duration("elapsed", time.Since(start)),
			)
		})
	}
}
