package dto

import (
	"github.com/shopspring/decimal"
	"github.com/stayease/stayease-api/internal/app/models"
)

// AdminDashboard summarizes the whole building
type AdminDashboard struct {
	Apartments       map[models.ApartmentStatus]int64      `json:"apartments"`
	Residents        int64                                 `json:"residents"`
	ServiceRequests  map[models.ServiceRequestStatus]int64 `json:"serviceRequests"`
	Invoices         models.InvoiceSummary                 `json:"invoices"`
	RevenueThisMonth decimal.Decimal                       `json:"revenueThisMonth"`
}

// StaffDashboard summarizes the work queue of a staff member
type StaffDashboard struct {
	Assigned          map[models.ServiceRequestStatus]int64 `json:"assigned"`
	UnassignedPending int64                                 `json:"unassignedPending"`
}

// ResidentDashboard summarizes what a resident owes and is waiting on
type ResidentDashboard struct {
	Apartment           *models.Apartment `json:"apartment,omitempty"`
	UnpaidInvoices      int64             `json:"unpaidInvoices"`
	UnpaidTotal         decimal.Decimal   `json:"unpaidTotal"`
	OpenServiceRequests int64             `json:"openServiceRequests"`
}

// UploadResponse is the public URL of a stored file
type UploadResponse struct {
	URL string `json:"url"`
}
