/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

ROUTER: chi
  Chi was chosen for:
  - Lightweight and fast
  - Context-based
  - Middleware support
  - RESTful route patterns

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for frontend

ROUTE GROUPS:
  /api/wallets/*            Wallet management and balance adjustment
  /api/transactions/*       Transaction CRUD
  /api/transfers            Wallet-to-wallet transfers
  /api/credit-payments      Credit-card payments
  /api/debts/*              Debt lifecycle and payments
  /api/debt-categories/*    Debt grouping labels
  /api/templates/*          Quick-action templates
  /api/shortcut/*           Phone-automation quick capture
  /api/import/*             Statement import
  /api/scenarios/*          Demo scenarios

SECURITY NOTE:
  The interactive routes trust the X-User-ID header; there is no session
  layer here. The quick-capture route authenticates with a shared secret
  instead.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, allowedOrigins []string) *chi.Mux {
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}

	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-User-ID"},
		AllowCredentials: true,
	}))

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Wallet routes
		r.Route("/wallets", func(r chi.Router) {
			r.Get("/", h.ListWallets)
			r.Post("/", h.CreateWallet)
			r.Get("/{id}", h.GetWallet)
			r.Put("/{id}", h.UpdateWallet)
			r.Delete("/{id}", h.DeleteWallet)
			r.Post("/{id}/adjust", h.AdjustBalance)
		})

		// Transaction routes
		r.Route("/transactions", func(r chi.Router) {
			r.Get("/", h.ListTransactions)
			r.Post("/", h.CreateTransaction)
			r.Get("/{id}", h.GetTransaction)
			r.Put("/{id}", h.UpdateTransaction)
			r.Delete("/{id}", h.DeleteTransaction)
		})

		// Derived operations
		r.Post("/transfers", h.Transfer)
		r.Post("/credit-payments", h.PayCreditCard)

		// Debt routes
		r.Route("/debts", func(r chi.Router) {
			r.Get("/", h.ListDebts)
			r.Post("/", h.CreateDebt)
			r.Put("/{id}", h.UpdateDebt)
			r.Delete("/{id}", h.DeleteDebt)
			r.Post("/{id}/payments", h.ProcessDebtPayment)
			r.Post("/{id}/toggle", h.ToggleDebtStatus)
		})

		// Debt category routes
		r.Route("/debt-categories", func(r chi.Router) {
			r.Get("/", h.ListDebtCategories)
			r.Post("/", h.CreateDebtCategory)
			r.Delete("/{id}", h.DeleteDebtCategory)
		})

		// Template routes
		r.Route("/templates", func(r chi.Router) {
			r.Get("/", h.ListTemplates)
			r.Post("/", h.CreateTemplate)
			r.Delete("/{id}", h.DeleteTemplate)
			r.Post("/{id}/execute", h.ExecuteTemplate)
		})

		// Ingestion routes
		r.Post("/shortcut/transaction", h.ShortcutTransaction)
		r.Post("/import/transactions", h.ImportTransactions)

		// Scenario routes (demo seeding)
		r.Route("/scenarios", func(r chi.Router) {
			r.Get("/", h.ListScenarios)
			r.Get("/current", h.GetCurrentScenario)
			r.Post("/load", h.LoadScenario)
		})
	})

	return r
}
