package domain

import "time"

// TransactionStatus is the lifecycle status reported by the payment gateway.
type TransactionStatus string

const (
	StatusAuthorized  TransactionStatus = "authorized"
	StatusCaptured    TransactionStatus = "captured"
	StatusDeclined    TransactionStatus = "declined"
	StatusRefunded    TransactionStatus = "refunded"
	StatusChargedback TransactionStatus = "chargedback"
)

// ValidStatuses lists every lifecycle status the gateway emits.
var ValidStatuses = []TransactionStatus{
	StatusAuthorized, StatusCaptured, StatusDeclined, StatusRefunded, StatusChargedback,
}

type PaymentMethod string

const (
	MethodCreditCard   PaymentMethod = "credit_card"
	MethodDebitCard    PaymentMethod = "debit_card"
	MethodBankTransfer PaymentMethod = "bank_transfer"
	MethodCashVoucher  PaymentMethod = "cash_voucher"
)

// ValidMethods lists every payment method with a dedicated fee schedule.
var ValidMethods = []PaymentMethod{
	MethodCreditCard, MethodDebitCard, MethodBankTransfer, MethodCashVoucher,
}

// Transaction is an immutable gateway record. The engine never mutates it.
type Transaction struct {
	ID            string            `json:"transaction_id"`
	Timestamp     time.Time         `json:"timestamp"`
	Amount        float64           `json:"amount"`
	Currency      string            `json:"currency"`
	Status        TransactionStatus `json:"status"`
	Provider      string            `json:"provider"`
	PaymentMethod PaymentMethod     `json:"payment_method"`
	Country       string            `json:"country"`
	CustomerID    string            `json:"customer_id"`
}
