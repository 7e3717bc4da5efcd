package analysis

import (
	"math"
	"sort"

	"github.com/horizongaming/reconciler/internal/currency"
	"github.com/horizongaming/reconciler/internal/domain"
	"github.com/horizongaming/reconciler/internal/reconciliation"
)

// Service builds analysis reports from reconciliation output.
type Service struct {
	conv *currency.Converter
}

// NewService creates an analysis service using the given currency converter.
func NewService(conv *currency.Converter) *Service {
	return &Service{conv: conv}
}

// Analyze produces the full report for one reconciliation run. The input is
// read-only; amounts are converted to USD for cross-currency aggregation.
func (s *Service) Analyze(res *reconciliation.Result) *Report {
	report := &Report{
		Overall:         s.overallMetrics(res.Records),
		ByProvider:      s.dimensionMetrics(res.Records, func(r *domain.ReconciledRecord) string { return r.Provider }),
		ByPaymentMethod: s.dimensionMetrics(res.Records, func(r *domain.ReconciledRecord) string { return string(r.PaymentMethod) }),
		ByCountry:       s.dimensionMetrics(res.Records, func(r *domain.ReconciledRecord) string { return r.Country }),
		Categories:      s.categorize(res),
	}
	report.Patterns = s.identifyPatterns(res.Records, report)
	report.Anomalies = s.prioritizedAnomalies(res.Records)
	return report
}

func (s *Service) overallMetrics(records []domain.ReconciledRecord) OverallMetrics {
	m := OverallMetrics{TotalTransactions: len(records)}

	for i := range records {
		r := &records[i]
		usd := s.conv.ToUSD(r.Amount, r.Currency)
		m.TotalAmountUSD += usd

		switch r.SettlementStatus {
		case domain.SettlementMatched:
			if r.SettledAmount != nil {
				m.TotalSettledUSD += s.conv.ToUSD(*r.SettledAmount, r.Currency)
			}
		case domain.SettlementMissing:
			m.MissingRevenueUSD += usd
		case domain.SettlementDiscrepancy:
			if r.DiscrepancyAmount != nil {
				m.DiscrepancyAmountUSD += s.conv.ToUSD(math.Abs(*r.DiscrepancyAmount), r.Currency)
			}
		}
	}

	m.TotalAmountUSD = roundUSD(m.TotalAmountUSD)
	m.TotalSettledUSD = roundUSD(m.TotalSettledUSD)
	m.MissingRevenueUSD = roundUSD(m.MissingRevenueUSD)
	m.DiscrepancyAmountUSD = roundUSD(m.DiscrepancyAmountUSD)
	m.TotalDiscrepancyUSD = roundUSD(m.MissingRevenueUSD + m.DiscrepancyAmountUSD)
	return m
}

func (s *Service) dimensionMetrics(records []domain.ReconciledRecord, keyOf func(*domain.ReconciledRecord) string) []DimensionMetrics {
	byKey := make(map[string]*DimensionMetrics)

	for i := range records {
		r := &records[i]
		key := keyOf(r)
		dm, ok := byKey[key]
		if !ok {
			dm = &DimensionMetrics{Key: key}
			byKey[key] = dm
		}

		usd := s.conv.ToUSD(r.Amount, r.Currency)
		dm.TotalTransactions++
		dm.TotalVolumeUSD += usd
		if r.SettlementStatus == domain.SettlementMissing {
			dm.MissingSettlements++
			dm.MissingRevenueUSD += usd
		}
	}

	out := make([]DimensionMetrics, 0, len(byKey))
	for _, dm := range byKey {
		if dm.TotalVolumeUSD > 0 {
			dm.DiscrepancyRatePercent = roundUSD(dm.MissingRevenueUSD / dm.TotalVolumeUSD * 100)
		}
		dm.TotalVolumeUSD = roundUSD(dm.TotalVolumeUSD)
		dm.MissingRevenueUSD = roundUSD(dm.MissingRevenueUSD)
		out = append(out, *dm)
	}

	// Worst offenders first; key order breaks ties so output is stable.
	sort.Slice(out, func(i, j int) bool {
		if out[i].MissingRevenueUSD != out[j].MissingRevenueUSD {
			return out[i].MissingRevenueUSD > out[j].MissingRevenueUSD
		}
		return out[i].Key < out[j].Key
	})
	return out
}

func (s *Service) categorize(res *reconciliation.Result) map[string]Category {
	records := res.Records

	sum := func(filter func(*domain.ReconciledRecord) bool) (int, float64) {
		count := 0
		total := 0.0
		for i := range records {
			if filter(&records[i]) {
				count++
				total += s.conv.ToUSD(records[i].Amount, records[i].Currency)
			}
		}
		return count, roundUSD(total)
	}

	categories := make(map[string]Category)

	count, usd := sum(func(r *domain.ReconciledRecord) bool { return r.Status == domain.StatusAuthorized })
	categories["unsettled_authorizations"] = Category{
		Count: count, AmountUSD: usd, Severity: SeverityLow,
		Description: "Authorized but not captured transactions (abandoned carts - expected)",
	}

	count, usd = sum(func(r *domain.ReconciledRecord) bool { return r.SettlementStatus == domain.SettlementMissing })
	categories["missing_settlements"] = Category{
		Count: count, AmountUSD: usd, Severity: SeverityCritical,
		Description: "Captured transactions with no settlement record",
	}

	// Unexpected fees are measured by the discrepancy itself, not the gross.
	feeCount := 0
	feeUSD := 0.0
	for i := range records {
		r := &records[i]
		if r.SettlementStatus == domain.SettlementDiscrepancy && r.DiscrepancyAmount != nil {
			feeCount++
			feeUSD += s.conv.ToUSD(math.Abs(*r.DiscrepancyAmount), r.Currency)
		}
	}
	categories["unexpected_fees"] = Category{
		Count: feeCount, AmountUSD: roundUSD(feeUSD), Severity: SeverityHigh,
		Description: "Settlement amounts differ from expected fees",
	}

	count, usd = sum(func(r *domain.ReconciledRecord) bool { return r.Status == domain.StatusChargedback })
	categories["chargebacks"] = Category{
		Count: count, AmountUSD: usd, Severity: SeverityMedium,
		Description: "Transactions reversed due to customer disputes",
	}

	count, usd = sum(func(r *domain.ReconciledRecord) bool { return r.Status == domain.StatusRefunded })
	categories["refunds"] = Category{
		Count: count, AmountUSD: usd, Severity: SeverityLow,
		Description: "Transactions refunded to customers",
	}

	count, usd = sum(func(r *domain.ReconciledRecord) bool { return r.TimingAnomaly })
	categories["timing_delays"] = Category{
		Count: count, AmountUSD: usd, Severity: SeverityMedium,
		Description: "Settlements delayed beyond expected timeframe",
	}

	ghostUSD := 0.0
	for i := range res.Ghosts {
		g := &res.Ghosts[i]
		ghostUSD += s.conv.ToUSD(g.SettledAmount, g.Currency)
	}
	categories["ghost_settlements"] = Category{
		Count: len(res.Ghosts), AmountUSD: roundUSD(ghostUSD), Severity: SeverityHigh,
		Description: "Settlements with no matching transaction record",
	}

	return categories
}
