// Package pipeline orchestrates a full reconciliation run: load both input
// batches, run the engine, analyze the output and persist everything for the
// API surface.
package pipeline

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/horizongaming/reconciler/internal/analysis"
	"github.com/horizongaming/reconciler/internal/config"
	"github.com/horizongaming/reconciler/internal/currency"
	"github.com/horizongaming/reconciler/internal/ingestion"
	"github.com/horizongaming/reconciler/internal/reconciliation"
	"github.com/horizongaming/reconciler/internal/repository"
)

// Service executes reconciliation runs end to end.
type Service struct {
	cfg      *config.Config
	ingest   *ingestion.Service
	engine   *reconciliation.Engine
	analyzer *analysis.Service

	runRepo    *repository.RunRepo
	recordRepo *repository.RecordRepo
	ghostRepo  *repository.GhostRepo
}

// NewService wires a pipeline from a configuration and the three repos.
func NewService(
	cfg *config.Config,
	runRepo *repository.RunRepo,
	recordRepo *repository.RecordRepo,
	ghostRepo *repository.GhostRepo,
) *Service {
	return &Service{
		cfg:        cfg,
		ingest:     ingestion.NewService(cfg),
		engine:     reconciliation.NewEngine(cfg),
		analyzer:   analysis.NewService(currency.NewConverter(cfg.Currency)),
		runRepo:    runRepo,
		recordRepo: recordRepo,
		ghostRepo:  ghostRepo,
	}
}

// RunOutput bundles everything one run produced.
type RunOutput struct {
	Run    *repository.Run  `json:"run"`
	Report *analysis.Report `json:"report"`
}

// Execute performs one full reconciliation run and persists its output.
func (s *Service) Execute() (*RunOutput, error) {
	started := time.Now().UTC()

	txns, setts, err := s.ingest.LoadBatches()
	if err != nil {
		return nil, fmt.Errorf("load batches: %w", err)
	}

	result := s.engine.Run(txns, setts)
	report := s.analyzer.Analyze(result)

	reportJSON, err := json.Marshal(report)
	if err != nil {
		return nil, fmt.Errorf("marshal report: %w", err)
	}

	runID := "RUN-" + uuid.NewString()
	run := repository.NewRun(runID, started, time.Now().UTC(), result.Summary, string(reportJSON))

	if err := s.runRepo.Insert(run); err != nil {
		return nil, fmt.Errorf("persist run: %w", err)
	}
	if _, err := s.recordRepo.BulkInsert(runID, result.Records); err != nil {
		return nil, fmt.Errorf("persist records: %w", err)
	}
	if _, err := s.ghostRepo.BulkInsert(runID, result.Ghosts); err != nil {
		return nil, fmt.Errorf("persist ghosts: %w", err)
	}

	log.Printf("[pipeline] Run %s complete: %d records, %d ghosts, %d anomalies",
		runID, len(result.Records), len(result.Ghosts), len(report.Anomalies))

	return &RunOutput{Run: run, Report: report}, nil
}
