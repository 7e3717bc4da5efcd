package domain

import "time"

// Settlement is a payout record reported by a provider. TransactionID may
// reference a transaction that does not exist (a ghost settlement).
type Settlement struct {
	ID             string    `json:"settlement_id"`
	TransactionID  string    `json:"transaction_id"`
	SettlementDate time.Time `json:"settlement_date"`
	SettledAmount  float64   `json:"settled_amount"`
	Currency       string    `json:"currency"`
	Provider       string    `json:"provider"`
}

// AnomalyTypeGhostSettlement tags settlements with no originating transaction.
const AnomalyTypeGhostSettlement = "ghost_settlement"

// GhostSettlement is a settlement whose transaction ID matched nothing in the
// transaction batch. No transaction-side fields exist for these records.
type GhostSettlement struct {
	Settlement
	AnomalyType string `json:"anomaly_type"`
}
