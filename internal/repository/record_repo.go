package repository

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/horizongaming/reconciler/internal/domain"
)

type RecordRepo struct {
	db *sql.DB
}

func NewRecordRepo(db *sql.DB) *RecordRepo {
	return &RecordRepo{db: db}
}

func (r *RecordRepo) BulkInsert(runID string, records []domain.ReconciledRecord) (int, error) {
	sqlTx, err := r.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer sqlTx.Rollback()

	stmt, err := sqlTx.Prepare(
		`INSERT INTO reconciled_records
		(run_id, transaction_id, timestamp, amount, currency, status, provider,
		 payment_method, country, customer_id, expected_settled_amount,
		 settlement_id, settlement_date, settled_amount,
		 discrepancy_amount, discrepancy_percent, days_to_settle,
		 timing_anomaly, settlement_status, expected_settlement_date)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
	)
	if err != nil {
		return 0, fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	inserted := 0
	for i := range records {
		rec := &records[i]
		res, err := stmt.Exec(
			runID, rec.TransactionID, rec.Timestamp.Format(time.RFC3339),
			rec.Amount, rec.Currency, string(rec.Status), rec.Provider,
			string(rec.PaymentMethod), rec.Country, rec.CustomerID,
			rec.ExpectedSettledAmount,
			nullableString(rec.SettlementID), nullableTime(rec.SettlementDate),
			nullableFloat(rec.SettledAmount), nullableFloat(rec.DiscrepancyAmount),
			nullableFloat(rec.DiscrepancyPercent), nullableInt(rec.DaysToSettle),
			boolToInt(rec.TimingAnomaly), string(rec.SettlementStatus),
			rec.ExpectedSettlementDate.Format(time.RFC3339),
		)
		if err != nil {
			return inserted, fmt.Errorf("insert row %d: %w", i, err)
		}
		ra, _ := res.RowsAffected()
		inserted += int(ra)
	}

	if err := sqlTx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return inserted, nil
}

type RecordFilter struct {
	RunID         string
	Status        string
	Provider      string
	PaymentMethod string
	Currency      string
	TimingAnomaly *bool
	Page          int
	Limit         int
}

func (r *RecordRepo) List(f RecordFilter) ([]domain.ReconciledRecord, int, error) {
	where, args := buildRecordWhere(f)

	var total int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM reconciled_records"+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count: %w", err)
	}

	if f.Limit <= 0 {
		f.Limit = 50
	}
	if f.Page <= 0 {
		f.Page = 1
	}
	offset := (f.Page - 1) * f.Limit

	q := "SELECT * FROM reconciled_records" + where + " ORDER BY timestamp, transaction_id LIMIT ? OFFSET ?"
	args = append(args, f.Limit, offset)

	rows, err := r.db.Query(q, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	var records []domain.ReconciledRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan: %w", err)
		}
		records = append(records, *rec)
	}
	return records, total, rows.Err()
}

// GetByTransactionID returns the record for one transaction within a run.
func (r *RecordRepo) GetByTransactionID(runID, txnID string) (*domain.ReconciledRecord, error) {
	rows, err := r.db.Query(
		"SELECT * FROM reconciled_records WHERE run_id = ? AND transaction_id = ?",
		runID, txnID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, sql.ErrNoRows
	}
	return scanRecord(rows)
}

// --- helpers ---

func buildRecordWhere(f RecordFilter) (string, []any) {
	var clauses []string
	var args []any

	if f.RunID != "" {
		clauses = append(clauses, "run_id = ?")
		args = append(args, f.RunID)
	}
	if f.Status != "" {
		clauses = append(clauses, "settlement_status = ?")
		args = append(args, f.Status)
	}
	if f.Provider != "" {
		clauses = append(clauses, "provider = ?")
		args = append(args, f.Provider)
	}
	if f.PaymentMethod != "" {
		clauses = append(clauses, "payment_method = ?")
		args = append(args, f.PaymentMethod)
	}
	if f.Currency != "" {
		clauses = append(clauses, "currency = ?")
		args = append(args, f.Currency)
	}
	if f.TimingAnomaly != nil {
		clauses = append(clauses, "timing_anomaly = ?")
		args = append(args, boolToInt(*f.TimingAnomaly))
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func nullableString(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Format(time.RFC3339)
}

func nullableFloat(f *float64) any {
	if f == nil {
		return nil
	}
	return *f
}

func nullableInt(i *int) any {
	if i == nil {
		return nil
	}
	return *i
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func scanRecord(rows *sql.Rows) (*domain.ReconciledRecord, error) {
	var rec domain.ReconciledRecord
	var runID, ts, status, method, settStatus, expectedDate string
	var settIDNull, settDateNull sql.NullString
	var settAmountNull, discAmountNull, discPctNull sql.NullFloat64
	var daysNull sql.NullInt64
	var timingAnomaly int

	err := rows.Scan(
		&runID, &rec.TransactionID, &ts, &rec.Amount, &rec.Currency, &status,
		&rec.Provider, &method, &rec.Country, &rec.CustomerID,
		&rec.ExpectedSettledAmount,
		&settIDNull, &settDateNull, &settAmountNull,
		&discAmountNull, &discPctNull, &daysNull,
		&timingAnomaly, &settStatus, &expectedDate,
	)
	if err != nil {
		return nil, err
	}

	rec.Status = domain.TransactionStatus(status)
	rec.PaymentMethod = domain.PaymentMethod(method)
	rec.SettlementStatus = domain.SettlementStatus(settStatus)
	rec.Timestamp, _ = time.Parse(time.RFC3339, ts)
	rec.ExpectedSettlementDate, _ = time.Parse(time.RFC3339, expectedDate)
	rec.TimingAnomaly = timingAnomaly != 0

	if settIDNull.Valid {
		v := settIDNull.String
		rec.SettlementID = &v
	}
	if settDateNull.Valid {
		t, _ := time.Parse(time.RFC3339, settDateNull.String)
		rec.SettlementDate = &t
	}
	if settAmountNull.Valid {
		v := settAmountNull.Float64
		rec.SettledAmount = &v
	}
	if discAmountNull.Valid {
		v := discAmountNull.Float64
		rec.DiscrepancyAmount = &v
	}
	if discPctNull.Valid {
		v := discPctNull.Float64
		rec.DiscrepancyPercent = &v
	}
	if daysNull.Valid {
		v := int(daysNull.Int64)
		rec.DaysToSettle = &v
	}

	return &rec, nil
}
