// Package reconciliation implements the core engine that joins a batch of
// gateway transactions against provider settlement records and produces one
// authoritative verdict per transaction, plus the list of ghost settlements.
//
// The engine is a pure in-memory batch transformation: it reads both input
// collections, never mutates them, and returns new output records. Runs over
// different batches may execute concurrently; the engine holds no mutable
// state across calls.
package reconciliation

import (
	"log"

	"github.com/horizongaming/reconciler/internal/config"
	"github.com/horizongaming/reconciler/internal/domain"
	"github.com/horizongaming/reconciler/internal/fees"
)

// Result is the complete output of one reconciliation run.
type Result struct {
	Records []domain.ReconciledRecord `json:"records"`
	Ghosts  []domain.GhostSettlement  `json:"ghost_settlements"`

	Summary Summary `json:"summary"`
}

// Summary counts the run's outcomes by verdict.
type Summary struct {
	TotalTransactions int                             `json:"total_transactions"`
	TotalSettlements  int                             `json:"total_settlements"`
	ByStatus          map[domain.SettlementStatus]int `json:"by_status"`
	TimingAnomalies   int                             `json:"timing_anomalies"`
	GhostSettlements  int                             `json:"ghost_settlements"`
	DuplicatesIgnored int                             `json:"duplicates_ignored"`
}

// Engine performs settlement reconciliation. Configuration is supplied
// explicitly so parallel runs with different parameters stay isolated.
type Engine struct {
	cfg        *config.Config
	feeCalc    *fees.Calculator
	classifier *Classifier
}

// NewEngine creates an engine from an explicit configuration object.
func NewEngine(cfg *config.Config) *Engine {
	return &Engine{
		cfg:        cfg,
		feeCalc:    fees.NewCalculator(cfg.Fees),
		classifier: NewClassifier(),
	}
}

// Run reconciles the full transaction batch against the full settlement
// batch. Every transaction yields exactly one reconciled record; every
// settlement ends up either attached to exactly one record or in the ghost
// list, never both and never neither.
func (e *Engine) Run(txns []domain.Transaction, setts []domain.Settlement) *Result {
	// Index settlements by transaction ID. At most one settlement per
	// transaction is assumed; on duplicates the first in input order wins
	// and the rest surface as orphaned settlements so money is never
	// silently dropped.
	byTxnID := make(map[string]*domain.Settlement, len(setts))
	duplicates := 0
	for i := range setts {
		s := &setts[i]
		if prev, ok := byTxnID[s.TransactionID]; ok {
			duplicates++
			log.Printf("[reconciliation] WARNING: duplicate settlement %s for transaction %s (keeping %s)",
				s.ID, s.TransactionID, prev.ID)
			continue
		}
		byTxnID[s.TransactionID] = s
	}

	records := make([]domain.ReconciledRecord, 0, len(txns))
	matchedIDs := make(map[string]bool, len(setts))

	for i := range txns {
		rec := e.reconcile(&txns[i], byTxnID[txns[i].ID])
		if rec.SettlementID != nil {
			matchedIDs[*rec.SettlementID] = true
		}
		records = append(records, rec)
	}

	ghosts := detectGhosts(setts, matchedIDs)

	summary := Summary{
		TotalTransactions: len(txns),
		TotalSettlements:  len(setts),
		ByStatus:          make(map[domain.SettlementStatus]int),
		GhostSettlements:  len(ghosts),
		DuplicatesIgnored: duplicates,
	}
	for i := range records {
		summary.ByStatus[records[i].SettlementStatus]++
		if records[i].TimingAnomaly {
			summary.TimingAnomalies++
		}
	}

	log.Printf("[reconciliation] Reconciled %d transactions against %d settlements: matched=%d missing=%d discrepancy=%d ghosts=%d",
		len(txns), len(setts),
		summary.ByStatus[domain.SettlementMatched],
		summary.ByStatus[domain.SettlementMissing],
		summary.ByStatus[domain.SettlementDiscrepancy],
		len(ghosts))

	return &Result{Records: records, Ghosts: ghosts, Summary: summary}
}

// reconcile builds the single reconciled record for one transaction. sett is
// nil when no settlement references the transaction.
func (e *Engine) reconcile(txn *domain.Transaction, sett *domain.Settlement) domain.ReconciledRecord {
	rec := domain.ReconciledRecord{
		TransactionID: txn.ID,
		Timestamp:     txn.Timestamp,
		Amount:        txn.Amount,
		Currency:      txn.Currency,
		Status:        txn.Status,
		Provider:      txn.Provider,
		PaymentMethod: txn.PaymentMethod,
		Country:       txn.Country,
		CustomerID:    txn.CustomerID,

		ExpectedSettledAmount:  e.feeCalc.ExpectedSettlement(txn.Amount, txn.PaymentMethod),
		ExpectedSettlementDate: expectedSettlementDate(txn, e.cfg.Settlement),
	}

	if sett != nil {
		// The transaction's provider and currency stay authoritative for
		// reporting dimensions; only settlement-specific fields are copied.
		id := sett.ID
		date := sett.SettlementDate
		amount := sett.SettledAmount
		rec.SettlementID = &id
		rec.SettlementDate = &date
		rec.SettledAmount = &amount

		applyDiscrepancy(&rec)
		applyTiming(&rec, e.cfg.Settlement)
	}

	rec.SettlementStatus = e.classifier.Classify(&rec)
	return rec
}

// applyDiscrepancy computes the signed and percentage gap between the
// expected and actual settled amount. Only called for matched records; the
// percent stays nil when the expected amount is zero.
func applyDiscrepancy(rec *domain.ReconciledRecord) {
	diff := rec.ExpectedSettledAmount - *rec.SettledAmount
	rec.DiscrepancyAmount = &diff

	if rec.ExpectedSettledAmount != 0 {
		pct := diff / rec.ExpectedSettledAmount * 100
		rec.DiscrepancyPercent = &pct
	}
}

// detectGhosts returns the settlements that were not attached to any
// transaction, in input order, tagged as ghost settlements.
func detectGhosts(setts []domain.Settlement, matchedIDs map[string]bool) []domain.GhostSettlement {
	var ghosts []domain.GhostSettlement
	for i := range setts {
		if matchedIDs[setts[i].ID] {
			continue
		}
		ghosts = append(ghosts, domain.GhostSettlement{
			Settlement:  setts[i],
			AnomalyType: domain.AnomalyTypeGhostSettlement,
		})
	}
	return ghosts
}
