package reconciliation

import (
	"math"
	"time"

	"github.com/horizongaming/reconciler/internal/config"
	"github.com/horizongaming/reconciler/internal/domain"
)

// applyTiming computes settlement latency in whole days and flags the record
// when the latency strictly exceeds the payment method's SLA threshold. Only
// called for matched records.
func applyTiming(rec *domain.ReconciledRecord, sla config.SettlementConfig) {
	days := daysBetween(rec.Timestamp, *rec.SettlementDate)
	rec.DaysToSettle = &days

	window := sla.WindowFor(string(rec.PaymentMethod))
	rec.TimingAnomaly = days > window.ThresholdDays
}

// expectedSettlementDate projects when a settlement should land for this
// transaction: the transaction timestamp plus the midpoint of the method's
// normal settlement window. Computed for every record, settled or not, to
// support SLA-breach projection on unsettled transactions.
func expectedSettlementDate(txn *domain.Transaction, sla config.SettlementConfig) time.Time {
	w := sla.WindowFor(string(txn.PaymentMethod))
	avgDays := float64(w.MinDays+w.MaxDays) / 2
	return txn.Timestamp.Add(time.Duration(avgDays * 24 * float64(time.Hour)))
}

// daysBetween floors the elapsed time between two instants to whole days.
func daysBetween(from, to time.Time) int {
	return int(math.Floor(to.Sub(from).Hours() / 24))
}
