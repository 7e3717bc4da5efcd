package fees

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/horizongaming/reconciler/internal/config"
	"github.com/horizongaming/reconciler/internal/domain"
)

func defaultCalculator() *Calculator {
	return NewCalculator(config.Default().Fees)
}

func TestCardFee(t *testing.T) {
	c := defaultCalculator()

	// 2.9% + 0.30
	assert.InDelta(t, 3.20, c.Fee(100.0, domain.MethodCreditCard), 1e-9)
	assert.InDelta(t, 1.75, c.Fee(50.0, domain.MethodDebitCard), 1e-9)
}

func TestBankAndVoucherFees(t *testing.T) {
	c := defaultCalculator()

	assert.InDelta(t, 1.5, c.Fee(100.0, domain.MethodBankTransfer), 1e-9)
	assert.InDelta(t, 15.0, c.Fee(1000.0, domain.MethodBankTransfer), 1e-9)
	assert.InDelta(t, 3.5, c.Fee(100.0, domain.MethodCashVoucher), 1e-9)
	assert.InDelta(t, 17.5, c.Fee(500.0, domain.MethodCashVoucher), 1e-9)
}

func TestUnknownMethodFallsBackToCardSchedule(t *testing.T) {
	c := defaultCalculator()

	assert.InDelta(t, c.Fee(100.0, domain.MethodCreditCard), c.Fee(100.0, "crypto"), 1e-9)
}

func TestZeroAmountStillChargesFixedCardFee(t *testing.T) {
	c := defaultCalculator()

	assert.InDelta(t, 0.30, c.Fee(0, domain.MethodCreditCard), 1e-9)
	assert.InDelta(t, 0, c.Fee(0, domain.MethodBankTransfer), 1e-9)
}

func TestExpectedSettlement(t *testing.T) {
	c := defaultCalculator()

	assert.InDelta(t, 96.80, c.ExpectedSettlement(100.0, domain.MethodCreditCard), 1e-9)
	assert.InDelta(t, 98.5, c.ExpectedSettlement(100.0, domain.MethodBankTransfer), 1e-9)

	// Expected settlement is always strictly below the gross amount for any
	// method with a non-zero schedule.
	for _, m := range domain.ValidMethods {
		assert.Less(t, c.ExpectedSettlement(250.0, m), 250.0, "method %s", m)
	}
}

func TestCustomSchedule(t *testing.T) {
	c := NewCalculator(config.FeesConfig{CardPercent: 5, CardFixed: 1, BankPercent: 2, VoucherPercent: 4})

	assert.InDelta(t, 6.0, c.Fee(100.0, domain.MethodCreditCard), 1e-9)
	assert.InDelta(t, 2.0, c.Fee(100.0, domain.MethodBankTransfer), 1e-9)
	assert.InDelta(t, 4.0, c.Fee(100.0, domain.MethodCashVoucher), 1e-9)
}
