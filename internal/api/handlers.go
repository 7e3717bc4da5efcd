package api

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/horizongaming/reconciler/internal/analysis"
	"github.com/horizongaming/reconciler/internal/pipeline"
	"github.com/horizongaming/reconciler/internal/repository"
)

// Handlers groups all HTTP handler methods and their dependencies.
type Handlers struct {
	runRepo     *repository.RunRepo
	recordRepo  *repository.RecordRepo
	ghostRepo   *repository.GhostRepo
	pipelineSvc *pipeline.Service
}

// --- helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[api] encode error: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < 1 {
		return def
	}
	return v
}

// resolveRunID returns the requested run ID, defaulting to the latest run.
func (h *Handlers) resolveRunID(requested string) (string, error) {
	if requested != "" {
		return requested, nil
	}
	latest, err := h.runRepo.GetLatest()
	if err != nil {
		return "", err
	}
	if latest == nil {
		return "", errors.New("no reconciliation run recorded yet")
	}
	return latest.ID, nil
}

// --- TriggerRun ---

func (h *Handlers) TriggerRun(w http.ResponseWriter, r *http.Request) {
	out, err := h.pipelineSvc.Execute()
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// --- Runs ---

func (h *Handlers) ListRuns(w http.ResponseWriter, r *http.Request) {
	limit := parseIntDefault(r.URL.Query().Get("limit"), 20)
	runs, err := h.runRepo.List(limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"runs": runs})
}

func (h *Handlers) GetRun(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	run, err := h.runRepo.GetByID(id)
	if err != nil {
		writeError(w, http.StatusNotFound, "run not found")
		return
	}
	writeJSON(w, http.StatusOK, run)
}

// --- ListRecords ---

func (h *Handlers) ListRecords(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	runID, err := h.resolveRunID(q.Get("run_id"))
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	filter := repository.RecordFilter{
		RunID:         runID,
		Status:        q.Get("status"),
		Provider:      q.Get("provider"),
		PaymentMethod: q.Get("payment_method"),
		Currency:      q.Get("currency"),
		Page:          parseIntDefault(q.Get("page"), 1),
		Limit:         parseIntDefault(q.Get("limit"), 50),
	}
	if v := q.Get("timing_anomaly"); v != "" {
		b := v == "true" || v == "1"
		filter.TimingAnomaly = &b
	}

	records, total, err := h.recordRepo.List(filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"run_id":  runID,
		"records": records,
		"total":   total,
		"page":    filter.Page,
		"limit":   filter.Limit,
	})
}

// --- GetRecord ---

func (h *Handlers) GetRecord(w http.ResponseWriter, r *http.Request) {
	txnID := chi.URLParam(r, "transactionID")
	if txnID == "" {
		writeError(w, http.StatusBadRequest, "transaction id is required")
		return
	}

	runID, err := h.resolveRunID(r.URL.Query().Get("run_id"))
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	rec, err := h.recordRepo.GetByTransactionID(runID, txnID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeError(w, http.StatusNotFound, "record not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"run_id": runID, "record": rec})
}

// --- ListGhostSettlements ---

func (h *Handlers) ListGhostSettlements(w http.ResponseWriter, r *http.Request) {
	runID, err := h.resolveRunID(r.URL.Query().Get("run_id"))
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	ghosts, err := h.ghostRepo.ListByRun(runID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"run_id":            runID,
		"ghost_settlements": ghosts,
		"total":             len(ghosts),
	})
}

// --- GetSummary ---

func (h *Handlers) GetSummary(w http.ResponseWriter, r *http.Request) {
	runID, err := h.resolveRunID(r.URL.Query().Get("run_id"))
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	run, err := h.runRepo.GetByID(runID)
	if err != nil {
		writeError(w, http.StatusNotFound, "run not found")
		return
	}

	var report analysis.Report
	if err := json.Unmarshal([]byte(run.ReportJSON), &report); err != nil {
		writeError(w, http.StatusInternalServerError, "corrupt report: "+err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"run_id": runID, "report": report})
}

// --- GetDashboard ---

func (h *Handlers) GetDashboard(w http.ResponseWriter, r *http.Request) {
	runID, err := h.resolveRunID(r.URL.Query().Get("run_id"))
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	run, err := h.runRepo.GetByID(runID)
	if err != nil {
		writeError(w, http.StatusNotFound, "run not found")
		return
	}

	var report analysis.Report
	if err := json.Unmarshal([]byte(run.ReportJSON), &report); err != nil {
		writeError(w, http.StatusInternalServerError, "corrupt report: "+err.Error())
		return
	}

	dashboard := map[string]any{
		"run": map[string]any{
			"id":          run.ID,
			"started_at":  run.StartedAt,
			"finished_at": run.FinishedAt,
		},
		"transactions": map[string]int{
			"total":            run.TotalTransactions,
			"matched":          run.Matched,
			"missing":          run.Missing,
			"missing_expected": run.MissingExpected,
			"discrepancy":      run.Discrepancy,
			"not_applicable":   run.NotApplicable,
		},
		"settlements": map[string]int{
			"total":              run.TotalSettlements,
			"ghosts":             run.GhostSettlements,
			"timing_anomalies":   run.TimingAnomalies,
			"duplicates_ignored": run.DuplicatesIgnored,
		},
		"revenue":     report.Overall,
		"by_provider": report.ByProvider,
		"patterns":    report.Patterns,
	}

	writeJSON(w, http.StatusOK, dashboard)
}
