package reconciliation

import (
	"math"

	"github.com/horizongaming/reconciler/internal/domain"
)

// Default amount tolerances: a settlement only counts as a discrepancy when
// the gap exceeds BOTH the absolute and the relative threshold. The AND is
// intentional business policy: small percentages on large amounts and large
// percentages on trivial amounts are both acceptable noise.
const (
	DefaultAmountTolerance  = 1.0 // currency units
	DefaultPercentTolerance = 1.0 // percent
)

// rule is one row of the classification decision table.
type rule struct {
	name    string
	applies func(*domain.ReconciledRecord) bool
	status  domain.SettlementStatus
}

// Classifier assigns each reconciled record exactly one settlement status by
// evaluating an ordered decision table, first match wins. The order encodes
// a deliberate priority: lifecycle exclusions beat settlement-presence
// checks, which beat amount-tolerance checks.
type Classifier struct {
	AmountTolerance  float64
	PercentTolerance float64

	rules []rule
}

// NewClassifier builds a classifier with the default tolerances.
func NewClassifier() *Classifier {
	c := &Classifier{
		AmountTolerance:  DefaultAmountTolerance,
		PercentTolerance: DefaultPercentTolerance,
	}

	c.rules = []rule{
		{
			name: "lifecycle excludes settlement",
			applies: func(r *domain.ReconciledRecord) bool {
				return r.Status == domain.StatusAuthorized || r.Status == domain.StatusDeclined
			},
			status: domain.SettlementNotApplicable,
		},
		{
			name: "captured but unsettled",
			applies: func(r *domain.ReconciledRecord) bool {
				return !r.Settled() && r.Status == domain.StatusCaptured
			},
			status: domain.SettlementMissing,
		},
		{
			name: "reversed and unsettled",
			applies: func(r *domain.ReconciledRecord) bool {
				return !r.Settled() &&
					(r.Status == domain.StatusRefunded || r.Status == domain.StatusChargedback)
			},
			status: domain.SettlementMissingExpected,
		},
		{
			name: "unsettled, unknown lifecycle",
			applies: func(r *domain.ReconciledRecord) bool {
				return !r.Settled()
			},
			status: domain.SettlementNotApplicable,
		},
		{
			name:    "settled out of tolerance",
			applies: c.outOfTolerance,
			status:  domain.SettlementDiscrepancy,
		},
	}

	return c
}

// Classify returns the settlement status for a record. The record must
// already carry its discrepancy fields.
func (c *Classifier) Classify(rec *domain.ReconciledRecord) domain.SettlementStatus {
	for _, r := range c.rules {
		if r.applies(rec) {
			return r.status
		}
	}
	return domain.SettlementMatched
}

// outOfTolerance reports whether a settled record's discrepancy exceeds both
// the absolute and the relative tolerance.
func (c *Classifier) outOfTolerance(rec *domain.ReconciledRecord) bool {
	if rec.DiscrepancyAmount == nil || rec.DiscrepancyPercent == nil {
		return false
	}
	return math.Abs(*rec.DiscrepancyAmount) > c.AmountTolerance &&
		math.Abs(*rec.DiscrepancyPercent) > c.PercentTolerance
}
