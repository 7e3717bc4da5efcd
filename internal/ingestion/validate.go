package ingestion

import (
	"fmt"
	"log"

	"github.com/horizongaming/reconciler/internal/domain"
)

// ValidationReport collects structural errors and data-quality warnings for
// one input batch. Errors reject the batch; warnings do not, matching the
// degrade-don't-crash policy for unknown enumerated values.
type ValidationReport struct {
	Errors   []string
	Warnings []string
}

// OK reports whether the batch is acceptable.
func (r *ValidationReport) OK() bool { return len(r.Errors) == 0 }

func (r *ValidationReport) errorf(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *ValidationReport) warnf(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// ValidateTransactions checks a transaction batch. Missing identifiers,
// duplicate identifiers, non-positive amounts and missing timestamps are
// errors; unknown statuses, methods and currencies are warnings only.
func ValidateTransactions(txns []domain.Transaction, knownCurrencies map[string]float64) *ValidationReport {
	report := &ValidationReport{}

	statuses := make(map[domain.TransactionStatus]bool, len(domain.ValidStatuses))
	for _, s := range domain.ValidStatuses {
		statuses[s] = true
	}
	methods := make(map[domain.PaymentMethod]bool, len(domain.ValidMethods))
	for _, m := range domain.ValidMethods {
		methods[m] = true
	}

	seen := make(map[string]bool, len(txns))
	for i := range txns {
		t := &txns[i]
		if seen[t.ID] {
			report.errorf("duplicate transaction_id %s", t.ID)
		}
		seen[t.ID] = true

		if t.Timestamp.IsZero() {
			report.errorf("transaction %s: missing timestamp", t.ID)
		}
		if t.Amount <= 0 {
			report.errorf("transaction %s: non-positive amount %.2f", t.ID, t.Amount)
		}
		if !statuses[t.Status] {
			report.warnf("transaction %s: unknown status %q", t.ID, t.Status)
		}
		if !methods[t.PaymentMethod] {
			report.warnf("transaction %s: unknown payment method %q", t.ID, t.PaymentMethod)
		}
		if _, ok := knownCurrencies[t.Currency]; !ok {
			report.warnf("transaction %s: unknown currency %q", t.ID, t.Currency)
		}
	}

	return report
}

// ValidateSettlements checks a settlement batch. Duplicate settlement IDs
// and non-negative-amount violations are errors; ghost references are not
// flagged here at all since detecting them is the engine's job.
func ValidateSettlements(setts []domain.Settlement) *ValidationReport {
	report := &ValidationReport{}

	seen := make(map[string]bool, len(setts))
	for i := range setts {
		s := &setts[i]
		if seen[s.ID] {
			report.errorf("duplicate settlement_id %s", s.ID)
		}
		seen[s.ID] = true

		if s.SettlementDate.IsZero() {
			report.errorf("settlement %s: missing settlement_date", s.ID)
		}
		if s.SettledAmount < 0 {
			report.errorf("settlement %s: negative settled_amount %.2f", s.ID, s.SettledAmount)
		}
	}

	return report
}

// logWarnings emits a batch's warnings as data-quality signals.
func logWarnings(name string, report *ValidationReport) {
	for _, w := range report.Warnings {
		log.Printf("[ingestion] WARNING: %s: %s", name, w)
	}
}
