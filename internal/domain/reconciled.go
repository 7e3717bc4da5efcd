package domain

import "time"

// SettlementStatus is the engine's per-transaction verdict. Exactly one of
// these values is assigned to every reconciled record.
type SettlementStatus string

const (
	// SettlementMatched means a settlement was found within tolerance.
	SettlementMatched SettlementStatus = "matched"
	// SettlementMissing means money should have settled but did not.
	SettlementMissing SettlementStatus = "missing"
	// SettlementMissingExpected is an acceptable absence (refund/chargeback).
	SettlementMissingExpected SettlementStatus = "missing_expected"
	// SettlementDiscrepancy means the settled amount is out of tolerance.
	SettlementDiscrepancy SettlementStatus = "discrepancy"
	// SettlementNotApplicable means no settlement is ever expected.
	SettlementNotApplicable SettlementStatus = "not_applicable"
)

// ReconciledRecord is the engine's output, one per input transaction. It
// carries every transaction field plus the matched settlement fields (nil
// when no settlement was attached) and the derived verdict fields. Immutable
// once classification completes.
type ReconciledRecord struct {
	TransactionID string            `json:"transaction_id"`
	Timestamp     time.Time         `json:"timestamp"`
	Amount        float64           `json:"amount"`
	Currency      string            `json:"currency"`
	Status        TransactionStatus `json:"status"`
	Provider      string            `json:"provider"`
	PaymentMethod PaymentMethod     `json:"payment_method"`
	Country       string            `json:"country"`
	CustomerID    string            `json:"customer_id"`

	ExpectedSettledAmount float64 `json:"expected_settled_amount"`

	SettlementID   *string    `json:"settlement_id,omitempty"`
	SettlementDate *time.Time `json:"settlement_date,omitempty"`
	SettledAmount  *float64   `json:"settled_amount,omitempty"`

	DiscrepancyAmount  *float64 `json:"discrepancy_amount,omitempty"`
	DiscrepancyPercent *float64 `json:"discrepancy_percent,omitempty"`

	DaysToSettle  *int `json:"days_to_settle,omitempty"`
	TimingAnomaly bool `json:"timing_anomaly"`

	SettlementStatus       SettlementStatus `json:"settlement_status"`
	ExpectedSettlementDate time.Time        `json:"expected_settlement_date"`
}

// Settled reports whether a settlement was attached to this record.
func (r *ReconciledRecord) Settled() bool {
	return r.SettlementID != nil
}
