package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceType is what an invoice bills for
type InvoiceType string

const (
	InvoiceRent        InvoiceType = "rent"
	InvoiceUtilities   InvoiceType = "utilities"
	InvoiceMaintenance InvoiceType = "maintenance"
	InvoiceParking     InvoiceType = "parking"
	InvoiceOther       InvoiceType = "other"
)

// InvoiceTypes lists every invoice type in display order
var InvoiceTypes = []InvoiceType{InvoiceRent, InvoiceUtilities, InvoiceMaintenance, InvoiceParking, InvoiceOther}

// InvoiceStatus is the lifecycle state of an invoice.
//
//	pending -> paid | overdue | cancelled
//	overdue -> paid | cancelled
type InvoiceStatus string

const (
	InvoicePending   InvoiceStatus = "pending"
	InvoicePaid      InvoiceStatus = "paid"
	InvoiceOverdue   InvoiceStatus = "overdue"
	InvoiceCancelled InvoiceStatus = "cancelled"
)

// Payable reports whether money can still be applied to an invoice in this state
func (s InvoiceStatus) Payable() bool {
	return s == InvoicePending || s == InvoiceOverdue
}

// Invoice is a billable record owed by a resident
type Invoice struct {
	ID            int64           `json:"id" db:"id"`
	InvoiceNumber string          `json:"invoiceNumber" db:"invoice_number"`
	UserID        int64           `json:"userId" db:"user_id"`
	ApartmentID   int64           `json:"apartmentId" db:"apartment_id"`
	Type          InvoiceType     `json:"type" db:"type"`
	Amount        decimal.Decimal `json:"amount" db:"amount"`
	IssueDate     time.Time       `json:"issueDate" db:"issue_date"`
	DueDate       time.Time       `json:"dueDate" db:"due_date"`
	Status        InvoiceStatus   `json:"status" db:"status"`
	PaidDate      *time.Time      `json:"paidDate,omitempty" db:"paid_date"`
	Description   string          `json:"description" db:"description"`
	CreatedAt     time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time       `json:"updatedAt" db:"updated_at"`

	// Joined for display
	ApartmentNumber string `json:"apartmentNumber,omitempty" db:"-"`
	ResidentName    string `json:"residentName,omitempty" db:"-"`
}

// InvoiceFilter narrows invoice listings
type InvoiceFilter struct {
	UserID      *int64
	ApartmentID *int64
	Status      *InvoiceStatus
	Type        *InvoiceType
	Page        int
	PageSize    int
}

// InvoiceTotals aggregates invoices in one status
type InvoiceTotals struct {
	Count int64           `json:"count"`
	Total decimal.Decimal `json:"total"`
}

// InvoiceSummary aggregates unpaid invoices
type InvoiceSummary struct {
	Pending InvoiceTotals `json:"pending"`
	Overdue InvoiceTotals `json:"overdue"`
}
