package ingestion

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/horizongaming/reconciler/internal/domain"
)

const txnCSV = `transaction_id,timestamp,amount,currency,status,provider,payment_method,country,customer_id
TXN_000001,2026-02-01 10:00:00,100.00,BRL,captured,PayBridge,credit_card,Brazil,CUST_1001
TXN_000002,2026-02-02 14:30:00,2500.50,MXN,authorized,LatamPay,bank_transfer,Mexico,CUST_2044
`

const settCSV = `settlement_id,transaction_id,settlement_date,settled_amount,currency,provider
SET_000001,TXN_000001,2026-02-03 10:00:00,96.80,BRL,PayBridge
SET_000999,TXN_GHOST,2026-02-04 09:00:00,42.00,MXN,LatamPay
`

func TestParseTransactionsCSV(t *testing.T) {
	txns, err := ParseTransactionsCSV([]byte(txnCSV))
	require.NoError(t, err)
	require.Len(t, txns, 2)

	assert.Equal(t, "TXN_000001", txns[0].ID)
	assert.Equal(t, time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC), txns[0].Timestamp)
	assert.InDelta(t, 100.00, txns[0].Amount, 1e-9)
	assert.Equal(t, domain.StatusCaptured, txns[0].Status)
	assert.Equal(t, domain.MethodCreditCard, txns[0].PaymentMethod)
	assert.Equal(t, "CUST_2044", txns[1].CustomerID)
}

func TestParseSettlementsCSV(t *testing.T) {
	setts, err := ParseSettlementsCSV([]byte(settCSV))
	require.NoError(t, err)
	require.Len(t, setts, 2)

	assert.Equal(t, "SET_000001", setts[0].ID)
	assert.Equal(t, "TXN_000001", setts[0].TransactionID)
	assert.InDelta(t, 96.80, setts[0].SettledAmount, 1e-9)
	assert.Equal(t, "TXN_GHOST", setts[1].TransactionID)
}

func TestMalformedRowRejectsBatch(t *testing.T) {
	bad := `transaction_id,timestamp,amount,currency,status,provider,payment_method,country,customer_id
TXN_1,2026-02-01 10:00:00,not-a-number,BRL,captured,PayBridge,credit_card,Brazil,CUST_1
`
	_, err := ParseTransactionsCSV([]byte(bad))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
}

func TestWrongHeaderRejected(t *testing.T) {
	_, err := ParseTransactionsCSV([]byte("id,when,how_much\n"))
	require.Error(t, err)

	_, err = ParseSettlementsCSV([]byte(txnCSV))
	require.Error(t, err)
}

func TestRFC3339TimestampsAccepted(t *testing.T) {
	csv := `settlement_id,transaction_id,settlement_date,settled_amount,currency,provider
SET_1,TXN_1,2026-02-03T10:00:00Z,10.00,BRL,PayBridge
`
	setts, err := ParseSettlementsCSV([]byte(csv))
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 2, 3, 10, 0, 0, 0, time.UTC), setts[0].SettlementDate)
}
