package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/horizongaming/reconciler/internal/domain"
	"github.com/horizongaming/reconciler/internal/reconciliation"
)

// Run is one persisted reconciliation run: its verdict counts plus the
// serialized analysis report.
type Run struct {
	ID                string    `json:"run_id"`
	StartedAt         time.Time `json:"started_at"`
	FinishedAt        time.Time `json:"finished_at"`
	TotalTransactions int       `json:"total_transactions"`
	TotalSettlements  int       `json:"total_settlements"`
	Matched           int       `json:"matched"`
	Missing           int       `json:"missing"`
	MissingExpected   int       `json:"missing_expected"`
	Discrepancy       int       `json:"discrepancy"`
	NotApplicable     int       `json:"not_applicable"`
	TimingAnomalies   int       `json:"timing_anomalies"`
	GhostSettlements  int       `json:"ghost_settlements"`
	DuplicatesIgnored int       `json:"duplicates_ignored"`
	ReportJSON        string    `json:"-"`
}

// NewRun builds a Run row from an engine summary.
func NewRun(id string, started, finished time.Time, summary reconciliation.Summary, reportJSON string) *Run {
	return &Run{
		ID:                id,
		StartedAt:         started,
		FinishedAt:        finished,
		TotalTransactions: summary.TotalTransactions,
		TotalSettlements:  summary.TotalSettlements,
		Matched:           summary.ByStatus[domain.SettlementMatched],
		Missing:           summary.ByStatus[domain.SettlementMissing],
		MissingExpected:   summary.ByStatus[domain.SettlementMissingExpected],
		Discrepancy:       summary.ByStatus[domain.SettlementDiscrepancy],
		NotApplicable:     summary.ByStatus[domain.SettlementNotApplicable],
		TimingAnomalies:   summary.TimingAnomalies,
		GhostSettlements:  summary.GhostSettlements,
		DuplicatesIgnored: summary.DuplicatesIgnored,
		ReportJSON:        reportJSON,
	}
}

type RunRepo struct {
	db *sql.DB
}

func NewRunRepo(db *sql.DB) *RunRepo {
	return &RunRepo{db: db}
}

func (r *RunRepo) Insert(run *Run) error {
	_, err := r.db.Exec(
		`INSERT INTO runs
		(id, started_at, finished_at, total_transactions, total_settlements,
		 matched, missing, missing_expected, discrepancy, not_applicable,
		 timing_anomalies, ghost_settlements, duplicates_ignored, report_json)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		run.ID, run.StartedAt.Format(time.RFC3339), run.FinishedAt.Format(time.RFC3339),
		run.TotalTransactions, run.TotalSettlements,
		run.Matched, run.Missing, run.MissingExpected, run.Discrepancy, run.NotApplicable,
		run.TimingAnomalies, run.GhostSettlements, run.DuplicatesIgnored, run.ReportJSON,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

func (r *RunRepo) GetByID(id string) (*Run, error) {
	row := r.db.QueryRow("SELECT * FROM runs WHERE id = ?", id)
	return scanRun(row)
}

// GetLatest returns the most recent run, or nil when none exist.
func (r *RunRepo) GetLatest() (*Run, error) {
	row := r.db.QueryRow("SELECT * FROM runs ORDER BY started_at DESC, id DESC LIMIT 1")
	run, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return run, err
}

func (r *RunRepo) List(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.db.Query(
		"SELECT * FROM runs ORDER BY started_at DESC, id DESC LIMIT ?", limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRunRows(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

type runScanner interface {
	Scan(dest ...any) error
}

func scanRunFrom(s runScanner) (*Run, error) {
	var run Run
	var startedAt, finishedAt string

	err := s.Scan(
		&run.ID, &startedAt, &finishedAt,
		&run.TotalTransactions, &run.TotalSettlements,
		&run.Matched, &run.Missing, &run.MissingExpected,
		&run.Discrepancy, &run.NotApplicable,
		&run.TimingAnomalies, &run.GhostSettlements, &run.DuplicatesIgnored,
		&run.ReportJSON,
	)
	if err != nil {
		return nil, err
	}

	run.StartedAt, _ = time.Parse(time.RFC3339, startedAt)
	run.FinishedAt, _ = time.Parse(time.RFC3339, finishedAt)
	return &run, nil
}

func scanRun(row *sql.Row) (*Run, error)       { return scanRunFrom(row) }
func scanRunRows(rows *sql.Rows) (*Run, error) { return scanRunFrom(rows) }
