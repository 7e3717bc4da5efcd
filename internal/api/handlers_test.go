package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/horizongaming/reconciler/internal/config"
	"github.com/horizongaming/reconciler/internal/pipeline"
	"github.com/horizongaming/reconciler/internal/repository"
)

const (
	testTransactionsCSV = `transaction_id,timestamp,amount,currency,status,provider,payment_method,country,customer_id
TXN_001,2026-02-01 10:00:00,100.00,BRL,captured,stripe_br,credit_card,BR,CUST_001
TXN_002,2026-02-01 11:00:00,200.00,MXN,captured,dlocal,bank_transfer,MX,CUST_002
TXN_003,2026-02-01 12:00:00,50.00,BRL,declined,stripe_br,credit_card,BR,CUST_003
`
	testSettlementsCSV = `settlement_id,transaction_id,settlement_date,settled_amount,currency,provider
SET_001,TXN_001,2026-02-03 10:00:00,96.80,BRL,stripe_br
SET_999,TXN_999,2026-02-05 10:00:00,500.00,BRL,stripe_br
`
)

func newTestServer(t *testing.T) http.Handler {
	t.Helper()

	dir := t.TempDir()
	txnPath := filepath.Join(dir, "transactions.csv")
	settPath := filepath.Join(dir, "settlements.csv")
	require.NoError(t, os.WriteFile(txnPath, []byte(testTransactionsCSV), 0o644))
	require.NoError(t, os.WriteFile(settPath, []byte(testSettlementsCSV), 0o644))

	cfg := config.Default()
	cfg.Data.TransactionsPath = txnPath
	cfg.Data.SettlementsPath = settPath

	db, err := repository.InitDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	runRepo := repository.NewRunRepo(db)
	recordRepo := repository.NewRecordRepo(db)
	ghostRepo := repository.NewGhostRepo(db)
	svc := pipeline.NewService(cfg, runRepo, recordRepo, ghostRepo)

	return NewRouter(runRepo, recordRepo, ghostRepo, svc)
}

func doRequest(t *testing.T, h http.Handler, method, path string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	req := httptest.NewRequest(method, path, nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	var body map[string]any
	if rr.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	}
	return rr, body
}

func triggerRun(t *testing.T, h http.Handler) map[string]any {
	t.Helper()
	rr, body := doRequest(t, h, http.MethodPost, "/api/v1/reconciliation/run")
	require.Equal(t, http.StatusOK, rr.Code)
	return body
}

func TestTriggerRun(t *testing.T) {
	h := newTestServer(t)

	body := triggerRun(t, h)

	run := body["run"].(map[string]any)
	assert.Equal(t, float64(3), run["total_transactions"])
	assert.Equal(t, float64(2), run["total_settlements"])
	assert.Equal(t, float64(1), run["matched"])
	assert.Equal(t, float64(1), run["missing"])
	assert.Equal(t, float64(1), run["not_applicable"])
	assert.Equal(t, float64(1), run["ghost_settlements"])
	assert.NotNil(t, body["report"])
}

func TestListRunsAndGetRun(t *testing.T) {
	h := newTestServer(t)

	body := triggerRun(t, h)
	runID := body["run"].(map[string]any)["run_id"].(string)

	rr, list := doRequest(t, h, http.MethodGet, "/api/v1/reconciliation/runs")
	require.Equal(t, http.StatusOK, rr.Code)
	runs := list["runs"].([]any)
	require.Len(t, runs, 1)

	rr, got := doRequest(t, h, http.MethodGet, "/api/v1/reconciliation/runs/"+runID)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, runID, got["run_id"])

	rr, _ = doRequest(t, h, http.MethodGet, "/api/v1/reconciliation/runs/RUN-nope")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestListRecordsDefaultsToLatestRun(t *testing.T) {
	h := newTestServer(t)
	triggerRun(t, h)

	rr, body := doRequest(t, h, http.MethodGet, "/api/v1/reconciliation/records")
	require.Equal(t, http.StatusOK, rr.Code)

	assert.Equal(t, float64(3), body["total"])
	records := body["records"].([]any)
	require.Len(t, records, 3)
}

func TestListRecordsFilterByStatus(t *testing.T) {
	h := newTestServer(t)
	triggerRun(t, h)

	rr, body := doRequest(t, h, http.MethodGet, "/api/v1/reconciliation/records?status=missing")
	require.Equal(t, http.StatusOK, rr.Code)

	records := body["records"].([]any)
	require.Len(t, records, 1)
	rec := records[0].(map[string]any)
	assert.Equal(t, "TXN_002", rec["transaction_id"])
	assert.Equal(t, "missing", rec["settlement_status"])
}

func TestGetRecord(t *testing.T) {
	h := newTestServer(t)
	triggerRun(t, h)

	rr, body := doRequest(t, h, http.MethodGet, "/api/v1/reconciliation/records/TXN_001")
	require.Equal(t, http.StatusOK, rr.Code)

	rec := body["record"].(map[string]any)
	assert.Equal(t, "TXN_001", rec["transaction_id"])
	assert.Equal(t, "matched", rec["settlement_status"])
	assert.Equal(t, "SET_001", rec["settlement_id"])

	rr, _ = doRequest(t, h, http.MethodGet, "/api/v1/reconciliation/records/TXN_404")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestListGhostSettlements(t *testing.T) {
	h := newTestServer(t)
	triggerRun(t, h)

	rr, body := doRequest(t, h, http.MethodGet, "/api/v1/reconciliation/ghost-settlements")
	require.Equal(t, http.StatusOK, rr.Code)

	assert.Equal(t, float64(1), body["total"])
	ghosts := body["ghost_settlements"].([]any)
	require.Len(t, ghosts, 1)
	ghost := ghosts[0].(map[string]any)
	assert.Equal(t, "SET_999", ghost["settlement_id"])
	assert.Equal(t, "TXN_999", ghost["transaction_id"])
	assert.Equal(t, "ghost_settlement", ghost["anomaly_type"])
}

func TestGetSummary(t *testing.T) {
	h := newTestServer(t)
	triggerRun(t, h)

	rr, body := doRequest(t, h, http.MethodGet, "/api/v1/reconciliation/summary")
	require.Equal(t, http.StatusOK, rr.Code)

	report := body["report"].(map[string]any)
	overall := report["overall"].(map[string]any)
	assert.Equal(t, float64(3), overall["total_transactions"])
	assert.NotEmpty(t, report["categories"])
}

func TestGetDashboard(t *testing.T) {
	h := newTestServer(t)
	triggerRun(t, h)

	rr, body := doRequest(t, h, http.MethodGet, "/api/v1/reconciliation/dashboard")
	require.Equal(t, http.StatusOK, rr.Code)

	txns := body["transactions"].(map[string]any)
	assert.Equal(t, float64(3), txns["total"])
	assert.Equal(t, float64(1), txns["matched"])

	setts := body["settlements"].(map[string]any)
	assert.Equal(t, float64(1), setts["ghosts"])
}

func TestEndpointsBeforeFirstRun(t *testing.T) {
	h := newTestServer(t)

	for _, path := range []string{
		"/api/v1/reconciliation/records",
		"/api/v1/reconciliation/ghost-settlements",
		"/api/v1/reconciliation/summary",
		"/api/v1/reconciliation/dashboard",
	} {
		rr, body := doRequest(t, h, http.MethodGet, path)
		assert.Equal(t, http.StatusNotFound, rr.Code, path)
		assert.Contains(t, body["error"], "no reconciliation run", path)
	}
}
