package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentGateway is the channel a payment is made through.
// vnpay and momo are labels only; no gateway API is called.
type PaymentGateway string

const (
	GatewayVNPay        PaymentGateway = "vnpay"
	GatewayMoMo         PaymentGateway = "momo"
	GatewayBankTransfer PaymentGateway = "bank_transfer"
	GatewayCash         PaymentGateway = "cash"
)

// Valid reports whether g is a known gateway
func (g PaymentGateway) Valid() bool {
	switch g {
	case GatewayVNPay, GatewayMoMo, GatewayBankTransfer, GatewayCash:
		return true
	}
	return false
}

// TransactionStatus is the state of a payment attempt
type TransactionStatus string

const (
	TransactionPending   TransactionStatus = "pending"
	TransactionCompleted TransactionStatus = "completed"
	TransactionFailed    TransactionStatus = "failed"
	TransactionCancelled TransactionStatus = "cancelled"
)

// Transaction is a payment attempt against an invoice
type Transaction struct {
	ID              int64             `json:"id" db:"id"`
	InvoiceID       int64             `json:"invoiceId" db:"invoice_id"`
	UserID          int64             `json:"userId" db:"user_id"`
	Gateway         PaymentGateway    `json:"gateway" db:"gateway"`
	TransactionCode string            `json:"transactionCode" db:"transaction_code"`
	Amount          decimal.Decimal   `json:"amount" db:"amount"`
	Status          TransactionStatus `json:"status" db:"status"`
	ExpiresAt       *time.Time        `json:"expiresAt,omitempty" db:"expires_at"`
	PaidAt          *time.Time        `json:"paidAt,omitempty" db:"paid_at"`
	Note            string            `json:"note" db:"note"`
	CreatedAt       time.Time         `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time         `json:"updatedAt" db:"updated_at"`
}

// Expired reports whether the nominal payment window has passed
func (t *Transaction) Expired(now time.Time) bool {
	return t.ExpiresAt != nil && now.After(*t.ExpiresAt)
}

// TransactionFilter narrows transaction listings
type TransactionFilter struct {
	UserID    *int64
	InvoiceID *int64
	Status    *TransactionStatus
	Page      int
	PageSize  int
}

// MonthlyRevenue is the paid total of one calendar month
type MonthlyRevenue struct {
	Month int             `json:"month"`
	Total decimal.Decimal `json:"total"`
}
