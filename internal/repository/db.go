package repository

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// InitDB opens (or creates) a SQLite database at the given path and ensures
// all required tables exist. Pass ":memory:" for an in-memory database.
func InitDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set wal mode: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	if err := createTables(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}

	return db, nil
}

func createTables(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			started_at DATETIME NOT NULL,
			finished_at DATETIME NOT NULL,
			total_transactions INTEGER NOT NULL,
			total_settlements INTEGER NOT NULL,
			matched INTEGER NOT NULL,
			missing INTEGER NOT NULL,
			missing_expected INTEGER NOT NULL,
			discrepancy INTEGER NOT NULL,
			not_applicable INTEGER NOT NULL,
			timing_anomalies INTEGER NOT NULL,
			ghost_settlements INTEGER NOT NULL,
			duplicates_ignored INTEGER NOT NULL,
			report_json TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at)`,

		`CREATE TABLE IF NOT EXISTS reconciled_records (
			run_id TEXT NOT NULL,
			transaction_id TEXT NOT NULL,
			timestamp DATETIME NOT NULL,
			amount REAL NOT NULL,
			currency TEXT NOT NULL,
			status TEXT NOT NULL,
			provider TEXT NOT NULL,
			payment_method TEXT NOT NULL,
			country TEXT NOT NULL,
			customer_id TEXT NOT NULL,
			expected_settled_amount REAL NOT NULL,
			settlement_id TEXT,
			settlement_date DATETIME,
			settled_amount REAL,
			discrepancy_amount REAL,
			discrepancy_percent REAL,
			days_to_settle INTEGER,
			timing_anomaly INTEGER NOT NULL,
			settlement_status TEXT NOT NULL,
			expected_settlement_date DATETIME NOT NULL,
			PRIMARY KEY (run_id, transaction_id),
			FOREIGN KEY (run_id) REFERENCES runs(id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_records_status ON reconciled_records(settlement_status)`,
		`CREATE INDEX IF NOT EXISTS idx_records_provider ON reconciled_records(provider)`,
		`CREATE INDEX IF NOT EXISTS idx_records_txn ON reconciled_records(transaction_id)`,

		`CREATE TABLE IF NOT EXISTS ghost_settlements (
			run_id TEXT NOT NULL,
			settlement_id TEXT NOT NULL,
			transaction_id TEXT NOT NULL,
			settlement_date DATETIME NOT NULL,
			settled_amount REAL NOT NULL,
			currency TEXT NOT NULL,
			provider TEXT NOT NULL,
			anomaly_type TEXT NOT NULL,
			PRIMARY KEY (run_id, settlement_id),
			FOREIGN KEY (run_id) REFERENCES runs(id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_ghosts_provider ON ghost_settlements(provider)`,
	}

	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("exec %q: %w", stmt[:60], err)
		}
	}

	return nil
}
