package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/horizongaming/reconciler/internal/domain"
)

type GhostRepo struct {
	db *sql.DB
}

func NewGhostRepo(db *sql.DB) *GhostRepo {
	return &GhostRepo{db: db}
}

func (r *GhostRepo) BulkInsert(runID string, ghosts []domain.GhostSettlement) (int, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(
		`INSERT INTO ghost_settlements
		(run_id, settlement_id, transaction_id, settlement_date, settled_amount,
		 currency, provider, anomaly_type)
		VALUES (?,?,?,?,?,?,?,?)`,
	)
	if err != nil {
		return 0, fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	inserted := 0
	for i := range ghosts {
		g := &ghosts[i]
		res, err := stmt.Exec(
			runID, g.ID, g.TransactionID, g.SettlementDate.Format(time.RFC3339),
			g.SettledAmount, g.Currency, g.Provider, g.AnomalyType,
		)
		if err != nil {
			return inserted, fmt.Errorf("insert %d: %w", i, err)
		}
		ra, _ := res.RowsAffected()
		inserted += int(ra)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return inserted, nil
}

// ListByRun returns a run's ghost settlements in settlement ID order.
func (r *GhostRepo) ListByRun(runID string) ([]domain.GhostSettlement, error) {
	rows, err := r.db.Query(
		"SELECT * FROM ghost_settlements WHERE run_id = ? ORDER BY settlement_id", runID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanGhosts(rows)
}

func scanGhosts(rows *sql.Rows) ([]domain.GhostSettlement, error) {
	var ghosts []domain.GhostSettlement
	for rows.Next() {
		var g domain.GhostSettlement
		var runID, date string

		err := rows.Scan(
			&runID, &g.ID, &g.TransactionID, &date, &g.SettledAmount,
			&g.Currency, &g.Provider, &g.AnomalyType,
		)
		if err != nil {
			return nil, err
		}

		g.SettlementDate, _ = time.Parse(time.RFC3339, date)
		ghosts = append(ghosts, g)
	}
	return ghosts, rows.Err()
}
