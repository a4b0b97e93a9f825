package services

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"github.com/stayease/stayease-api/internal/app/models"
	"github.com/stayease/stayease-api/internal/app/models/dto"
	"github.com/stayease/stayease-api/internal/pkg/apperrors"
	"github.com/stayease/stayease-api/internal/pkg/helpers"
)

// DashboardService builds per-role summaries
type DashboardService struct {
	users      UserStore
	apartments ApartmentStore
	invoices   InvoiceStore
	requests   ServiceRequestStore
	logger     zerolog.Logger
	now        func() time.Time
}

// NewDashboardService creates a new DashboardService
func NewDashboardService(users UserStore, apartments ApartmentStore, invoices InvoiceStore, requests ServiceRequestStore, logger zerolog.Logger) *DashboardService {
	return &DashboardService{
		users:      users,
		apartments: apartments,
		invoices:   invoices,
		requests:   requests,
		logger:     logger,
		now:        time.Now,
	}
}

// Admin summarizes the whole building
func (s *DashboardService) Admin(ctx context.Context) (*dto.AdminDashboard, error) {
	apartments, err := s.apartments.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	residents, err := s.users.CountByRole(ctx, models.RoleResident)
	if err != nil {
		return nil, err
	}
	requests, err := s.requests.CountByStatus(ctx, models.ServiceRequestFilter{})
	if err != nil {
		return nil, err
	}
	invoices, err := s.invoices.Summary(ctx, nil)
	if err != nil {
		return nil, err
	}

	from, to := helpers.MonthRange(s.now())
	byType, err := s.invoices.PaidTotalsByType(ctx, from, to)
	if err != nil {
		return nil, err
	}
	d := &dto.AdminDashboard{
		Apartments:      apartments,
		Residents:       residents,
		ServiceRequests: requests,
		Invoices:        invoices,
	}
	for _, v := range byType {
		d.RevenueThisMonth = d.RevenueThisMonth.Add(v)
	}
	return d, nil
}

// Staff summarizes the work queue of a staff member
func (s *DashboardService) Staff(ctx context.Context, staffID int64) (*dto.StaffDashboard, error) {
	assigned, err := s.requests.CountByStatus(ctx, models.ServiceRequestFilter{AssignedTo: &staffID})
	if err != nil {
		return nil, err
	}
	unassigned, err := s.requests.CountUnassignedPending(ctx)
	if err != nil {
		return nil, err
	}
	return &dto.StaffDashboard{Assigned: assigned, UnassignedPending: unassigned}, nil
}

// Resident summarizes what a resident owes and is waiting on
func (s *DashboardService) Resident(ctx context.Context, userID int64) (*dto.ResidentDashboard, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	d := &dto.ResidentDashboard{}
	if user.ApartmentID != nil {
		apt, err := s.apartments.GetByID(ctx, *user.ApartmentID)
		if err != nil && !errors.Is(err, apperrors.ErrApartmentNotFound) {
			return nil, err
		}
		d.Apartment = apt
	}

	summary, err := s.invoices.Summary(ctx, &userID)
	if err != nil {
		return nil, err
	}
	d.UnpaidInvoices = summary.Pending.Count + summary.Overdue.Count
	d.UnpaidTotal = summary.Pending.Total.Add(summary.Overdue.Total)

	counts, err := s.requests.CountByStatus(ctx, models.ServiceRequestFilter{UserID: &userID})
	if err != nil {
		return nil, err
	}
	d.OpenServiceRequests = counts[models.RequestPending] + counts[models.RequestInProgress]
	return d, nil
}
