// Package fees implements the per-method processing fee model.
//
// Fee structure (defaults):
//   - Credit/Debit Cards: 2.9% + $0.30 per transaction
//   - Bank Transfers: 1.5% of transaction amount
//   - Cash Vouchers: 3.5% of transaction amount
//
// Unknown methods fall back to the card schedule rather than failing; this is
// a deliberate permissive policy so unexpected method labels never stop the
// pipeline. Callers should treat the fallback as a data-quality signal.
package fees

import (
	"github.com/horizongaming/reconciler/internal/config"
	"github.com/horizongaming/reconciler/internal/domain"
)

// Schedule is one fee schedule: a percentage of the amount plus a fixed fee.
type Schedule struct {
	Percent float64 // expressed as a percentage, 2.9 means 2.9%
	Fixed   float64
}

// Fee computes the processing fee for a given amount under this schedule.
func (s Schedule) Fee(amount float64) float64 {
	return amount*s.Percent/100 + s.Fixed
}

// Calculator maps payment methods to fee schedules. Build one from config
// with NewCalculator; it is immutable and safe for concurrent use.
type Calculator struct {
	schedules map[domain.PaymentMethod]Schedule
	fallback  Schedule
}

// NewCalculator builds the schedule table from configuration. The card
// schedule is also the fallback for unrecognized methods.
func NewCalculator(cfg config.FeesConfig) *Calculator {
	card := Schedule{Percent: cfg.CardPercent, Fixed: cfg.CardFixed}
	return &Calculator{
		schedules: map[domain.PaymentMethod]Schedule{
			domain.MethodCreditCard:   card,
			domain.MethodDebitCard:    card,
			domain.MethodBankTransfer: {Percent: cfg.BankPercent},
			domain.MethodCashVoucher:  {Percent: cfg.VoucherPercent},
		},
		fallback: card,
	}
}

// ScheduleFor returns the schedule for a payment method, falling back to the
// card schedule for unknown methods.
func (c *Calculator) ScheduleFor(method domain.PaymentMethod) Schedule {
	if s, ok := c.schedules[method]; ok {
		return s
	}
	return c.fallback
}

// Fee returns the processing fee for an amount and payment method. Defined
// for any non-negative amount, including zero.
func (c *Calculator) Fee(amount float64, method domain.PaymentMethod) float64 {
	return c.ScheduleFor(method).Fee(amount)
}

// ExpectedSettlement returns the amount the provider is expected to pay out
// after deducting its processing fee.
func (c *Calculator) ExpectedSettlement(amount float64, method domain.PaymentMethod) float64 {
	return amount - c.Fee(amount, method)
}
