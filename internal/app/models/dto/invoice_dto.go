package dto

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/stayease/stayease-api/internal/app/models"
)

// CreateInvoiceRequest issues an invoice to a resident. DueDate is YYYY-MM-DD or RFC3339.
type CreateInvoiceRequest struct {
	UserID      int64              `json:"userId" binding:"required,min=1"`
	ApartmentID int64              `json:"apartmentId" binding:"required,min=1"`
	Type        models.InvoiceType `json:"type" binding:"required,oneof=rent utilities maintenance parking other"`
	Amount      *decimal.Decimal   `json:"amount" binding:"required"`
	DueDate     string             `json:"dueDate" binding:"required"`
	Description string             `json:"description" binding:"max=500"`
}

// CreatePaymentURLRequest asks for a payment link for an invoice
type CreatePaymentURLRequest struct {
	Gateway   models.PaymentGateway `json:"gateway" binding:"omitempty,oneof=vnpay momo bank_transfer"`
	ReturnURL string                `json:"returnUrl" binding:"omitempty,url"`
}

// PaymentURLResponse is a freshly minted payment link
type PaymentURLResponse struct {
	TransactionCode string                `json:"transactionCode"`
	PaymentURL      string                `json:"paymentUrl"`
	Gateway         models.PaymentGateway `json:"gateway"`
	Amount          decimal.Decimal       `json:"amount"`
	ExpiresAt       time.Time             `json:"expiresAt"`
	QRPayload       string                `json:"qrPayload"`
}

// PaymentCallbackRequest is posted by the payment channel
type PaymentCallbackRequest struct {
	TransactionCode string           `json:"transactionCode" binding:"required"`
	Amount          *decimal.Decimal `json:"amount" binding:"required"`
	Status          string           `json:"status" binding:"required,oneof=SUCCESS FAILED CANCELLED"`
	Signature       string           `json:"signature" binding:"required"`
}

// PaymentCallbackResponse reports the state after a callback
type PaymentCallbackResponse struct {
	TransactionCode   string                   `json:"transactionCode"`
	TransactionStatus models.TransactionStatus `json:"transactionStatus"`
	InvoiceID         int64                    `json:"invoiceId"`
	InvoiceStatus     models.InvoiceStatus     `json:"invoiceStatus"`
	AlreadyProcessed  bool                     `json:"alreadyProcessed"`
}

// ConfirmPaymentRequest records a manual bank transfer confirmation
type ConfirmPaymentRequest struct {
	TransactionCode string `json:"transactionCode" binding:"required,max=50"`
	Note            string `json:"note" binding:"max=500"`
}

// MarkOverdueResponse reports how many invoices moved to overdue
type MarkOverdueResponse struct {
	Updated int64 `json:"updated"`
}

// RevenueResponse aggregates paid invoices of a year
type RevenueResponse struct {
	Year    int                                    `json:"year"`
	Total   decimal.Decimal                        `json:"total"`
	Monthly []models.MonthlyRevenue                `json:"monthly"`
	ByType  map[models.InvoiceType]decimal.Decimal `json:"byType"`
}
