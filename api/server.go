/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the chi router, middleware stack, and route definitions. This is
  the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for the frontend

SECURITY NOTE:
  No authentication middleware. Auth/session handling lives outside this
  service by design.

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
func NewRouter(h *Handler, corsOrigins []string) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   corsOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(r chi.Router) {
		// Student + tuition ledger routes
		r.Route("/students", func(r chi.Router) {
			r.Get("/", h.ListStudents)
			r.Post("/", h.CreateStudent)
			r.Get("/{id}", h.GetStudent)
			r.Get("/{id}/rates", h.ListFeeRates)
			r.Post("/{id}/rates", h.ChangeRate)
			r.Get("/{id}/ledger", h.GetLedger)
			r.Post("/{id}/ledger/generate", h.GenerateDues)
			r.Post("/{id}/payments", h.RecordPayment)
			r.Post("/{id}/pause", h.PauseMonth)
			r.Get("/{id}/summary", h.GetSummary)
			r.Get("/{id}/due-info", h.GetDueInfo)
		})

		// Payment deletion (the one allowed ledger deletion)
		r.Route("/payments", func(r chi.Router) {
			r.Delete("/{id}", h.DeletePayment)
		})

		// Lending routes
		r.Route("/loans", func(r chi.Router) {
			r.Post("/", h.CreateLoan)
			r.Get("/{id}", h.GetLoan)
			r.Get("/{id}/summary", h.GetLoanSummary)
			r.Post("/{id}/payments", h.RecordLoanPayment)
			r.Post("/{id}/settle", h.SettleLoan)
		})

		r.Route("/borrowers", func(r chi.Router) {
			r.Get("/{id}/loans", h.ListBorrowerLoans)
			r.Get("/{id}/entries", h.ListBorrowerEntries)
			r.Get("/{id}/summary", h.GetBorrowerSummary)
		})

		// Demo scenarios (reset the database; development only)
		r.Route("/scenarios", func(r chi.Router) {
			r.Get("/", h.ListScenarios)
			r.Post("/load", h.LoadScenario)
		})
	})

	return r
}
