// Package analysis aggregates the reconciliation engine's output into USD
// metrics, categorized revenue impact and prioritized anomalies. It consumes
// the engine's records and ghost settlements verbatim and never re-derives a
// status or discrepancy value.
package analysis

import "math"

type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// OverallMetrics summarizes the whole batch in USD.
type OverallMetrics struct {
	TotalTransactions    int     `json:"total_transactions"`
	TotalAmountUSD       float64 `json:"total_amount_usd"`
	TotalSettledUSD      float64 `json:"total_settled_usd"`
	MissingRevenueUSD    float64 `json:"missing_revenue_usd"`
	DiscrepancyAmountUSD float64 `json:"discrepancy_amount_usd"`
	TotalDiscrepancyUSD  float64 `json:"total_discrepancy_usd"`
}

// DimensionMetrics carries per-provider, per-method or per-country rollups.
type DimensionMetrics struct {
	Key                    string  `json:"key"`
	TotalTransactions      int     `json:"total_transactions"`
	TotalVolumeUSD         float64 `json:"total_volume_usd"`
	MissingSettlements     int     `json:"missing_settlements"`
	MissingRevenueUSD      float64 `json:"missing_revenue_usd"`
	DiscrepancyRatePercent float64 `json:"discrepancy_rate_percent"`
}

// Category is one bucket of categorized revenue impact.
type Category struct {
	Count       int      `json:"count"`
	AmountUSD   float64  `json:"amount_usd"`
	Severity    Severity `json:"severity"`
	Description string   `json:"description"`
}

// Anomaly is one prioritized finding with a suggested follow-up.
type Anomaly struct {
	AnomalyID       string   `json:"anomaly_id"`
	TransactionID   string   `json:"transaction_id"`
	Date            string   `json:"date"`
	Provider        string   `json:"provider"`
	PaymentMethod   string   `json:"payment_method"`
	Country         string   `json:"country"`
	AnomalyType     string   `json:"anomaly_type"`
	Category        string   `json:"category"`
	Amount          float64  `json:"amount"`
	Currency        string   `json:"currency"`
	AmountUSD       float64  `json:"amount_usd"`
	DaysDelayed     int      `json:"days_delayed,omitempty"`
	Severity        Severity `json:"severity"`
	SuggestedAction string   `json:"suggested_action"`
}

// Report is the full analysis output for one reconciliation run.
type Report struct {
	Overall         OverallMetrics      `json:"overall"`
	ByProvider      []DimensionMetrics  `json:"by_provider"`
	ByPaymentMethod []DimensionMetrics  `json:"by_payment_method"`
	ByCountry       []DimensionMetrics  `json:"by_country"`
	Categories      map[string]Category `json:"categories"`
	Patterns        []string            `json:"patterns"`
	Anomalies       []Anomaly           `json:"anomalies"`
}

func roundUSD(v float64) float64 {
	return math.Round(v*100) / 100
}
