package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/horizongaming/reconciler/internal/pipeline"
	"github.com/horizongaming/reconciler/internal/repository"
)

// NewRouter creates the Chi router with all API routes mounted.
func NewRouter(
	runRepo *repository.RunRepo,
	recordRepo *repository.RecordRepo,
	ghostRepo *repository.GhostRepo,
	pipelineSvc *pipeline.Service,
) http.Handler {
	h := &Handlers{
		runRepo:     runRepo,
		recordRepo:  recordRepo,
		ghostRepo:   ghostRepo,
		pipelineSvc: pipelineSvc,
	}

	r := chi.NewRouter()

	// Middleware.
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.SetHeader("Content-Type", "application/json"))

	r.Route("/api/v1/reconciliation", func(r chi.Router) {
		r.Post("/run", h.TriggerRun)

		// Runs.
		r.Get("/runs", h.ListRuns)
		r.Get("/runs/{id}", h.GetRun)

		// Reconciled records.
		r.Get("/records", h.ListRecords)
		r.Get("/records/{transactionID}", h.GetRecord)

		// Ghost settlements.
		r.Get("/ghost-settlements", h.ListGhostSettlements)

		// Analysis.
		r.Get("/summary", h.GetSummary)
		r.Get("/dashboard", h.GetDashboard)
	})

	return r
}
