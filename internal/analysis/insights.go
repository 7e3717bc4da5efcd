package analysis

import (
	"fmt"
	"math"
	"sort"

	"github.com/horizongaming/reconciler/internal/domain"
)

const maxPatterns = 5
const maxAnomalies = 50

// identifyPatterns distills the dimensional rollups into a short list of
// high-risk findings, worst first.
func (s *Service) identifyPatterns(records []domain.ReconciledRecord, report *Report) []string {
	var patterns []string

	if worst, ok := worstByRate(report.ByProvider); ok {
		patterns = append(patterns, fmt.Sprintf(
			"Provider %q has the highest missing settlement rate at %.1f%% ($%.2f USD)",
			worst.Key, worst.DiscrepancyRatePercent, worst.MissingRevenueUSD))
	}

	if method, count := mostDelayedMethod(records); count > 0 {
		patterns = append(patterns, fmt.Sprintf(
			"Payment method %q has the most timing delays with %d delayed settlements",
			method, count))
	}

	if worst, ok := worstByRate(report.ByCountry); ok {
		patterns = append(patterns, fmt.Sprintf(
			"Country %q has the highest discrepancy rate at %.1f%% ($%.2f USD)",
			worst.Key, worst.DiscrepancyRatePercent, worst.MissingRevenueUSD))
	}

	if cat, ok := report.Categories["missing_settlements"]; ok && cat.AmountUSD > 0 {
		patterns = append(patterns, fmt.Sprintf(
			"Critical issue: missing settlements account for $%.2f USD in missing revenue",
			cat.AmountUSD))
	}
	if cat, ok := report.Categories["ghost_settlements"]; ok && cat.Count > 0 {
		patterns = append(patterns, fmt.Sprintf(
			"%d ghost settlements totalling $%.2f USD reference no known transaction",
			cat.Count, cat.AmountUSD))
	}

	if len(patterns) > maxPatterns {
		patterns = patterns[:maxPatterns]
	}
	return patterns
}

func worstByRate(dims []DimensionMetrics) (DimensionMetrics, bool) {
	var worst DimensionMetrics
	found := false
	for _, d := range dims {
		if !found || d.DiscrepancyRatePercent > worst.DiscrepancyRatePercent {
			worst = d
			found = true
		}
	}
	if !found || worst.MissingRevenueUSD == 0 {
		return DimensionMetrics{}, false
	}
	return worst, true
}

func mostDelayedMethod(records []domain.ReconciledRecord) (string, int) {
	counts := make(map[string]int)
	for i := range records {
		if records[i].TimingAnomaly {
			counts[string(records[i].PaymentMethod)]++
		}
	}

	best := ""
	bestCount := 0
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if counts[k] > bestCount {
			best = k
			bestCount = counts[k]
		}
	}
	return best, bestCount
}

// prioritizedAnomalies flattens the run's findings into a single list ranked
// by USD impact, capped at maxAnomalies.
func (s *Service) prioritizedAnomalies(records []domain.ReconciledRecord) []Anomaly {
	var anomalies []Anomaly

	add := func(a Anomaly) {
		a.AnomalyID = fmt.Sprintf("ANO_%04d", len(anomalies)+1)
		anomalies = append(anomalies, a)
	}

	for i := range records {
		r := &records[i]
		base := Anomaly{
			TransactionID: r.TransactionID,
			Date:          r.Timestamp.Format("2006-01-02"),
			Provider:      r.Provider,
			PaymentMethod: string(r.PaymentMethod),
			Country:       r.Country,
			Amount:        roundUSD(r.Amount),
			Currency:      r.Currency,
		}

		switch {
		case r.SettlementStatus == domain.SettlementMissing:
			a := base
			a.AnomalyType = "missing_settlement"
			a.Category = "missing_settlements"
			a.AmountUSD = roundUSD(s.conv.ToUSD(r.Amount, r.Currency))
			a.Severity = SeverityCritical
			a.SuggestedAction = fmt.Sprintf(
				"Contact %s to investigate missing settlement for transaction %s",
				r.Provider, r.TransactionID)
			add(a)

		case r.SettlementStatus == domain.SettlementDiscrepancy && r.DiscrepancyAmount != nil:
			a := base
			a.AnomalyType = "fee_discrepancy"
			a.Category = "unexpected_fees"
			a.AmountUSD = roundUSD(s.conv.ToUSD(math.Abs(*r.DiscrepancyAmount), r.Currency))
			a.Severity = SeverityHigh
			a.SuggestedAction = fmt.Sprintf(
				"Review fee agreement with %s for unexpected charges", r.Provider)
			add(a)
		}

		// Timing delays are reported even when the amount matched.
		if r.TimingAnomaly {
			a := base
			a.AnomalyType = "timing_delay"
			a.Category = "timing_delays"
			a.AmountUSD = roundUSD(s.conv.ToUSD(r.Amount, r.Currency))
			if r.DaysToSettle != nil {
				a.DaysDelayed = *r.DaysToSettle
			}
			a.Severity = SeverityMedium
			a.SuggestedAction = fmt.Sprintf(
				"Escalate delayed settlement with %s (settled %d days after transaction)",
				r.Provider, a.DaysDelayed)
			add(a)
		}
	}

	sort.SliceStable(anomalies, func(i, j int) bool {
		return anomalies[i].AmountUSD > anomalies[j].AmountUSD
	})

	if len(anomalies) > maxAnomalies {
		anomalies = anomalies[:maxAnomalies]
	}

	// Re-number after sorting so IDs follow priority order.
	for i := range anomalies {
		anomalies[i].AnomalyID = fmt.Sprintf("ANO_%04d", i+1)
	}
	return anomalies
}
