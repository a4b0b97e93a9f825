package services

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	appauth "github.com/stayease/stayease-api/internal/app/auth"
	"github.com/stayease/stayease-api/internal/app/models"
	"github.com/stayease/stayease-api/internal/app/models/dto"
	"github.com/stayease/stayease-api/internal/pkg/apperrors"
	"github.com/stayease/stayease-api/internal/pkg/email"
	"github.com/stayease/stayease-api/internal/pkg/helpers"
)

// InvoiceService handles invoice issuing, listing and aggregation
type InvoiceService struct {
	tx           Transactor
	invoices     InvoiceStore
	transactions TransactionStore
	users        UserStore
	apartments   ApartmentStore
	mailer       email.EmailService
	logger       zerolog.Logger
	now          func() time.Time
	loc          *time.Location
}

// NewInvoiceService creates a new InvoiceService
func NewInvoiceService(
	tx Transactor,
	invoices InvoiceStore,
	transactions TransactionStore,
	users UserStore,
	apartments ApartmentStore,
	mailer email.EmailService,
	logger zerolog.Logger,
) *InvoiceService {
	return &InvoiceService{
		tx:           tx,
		invoices:     invoices,
		transactions: transactions,
		users:        users,
		apartments:   apartments,
		mailer:       mailer,
		logger:       logger,
		now:          time.Now,
		loc:          time.Local,
	}
}

// Create issues a pending invoice to a resident and notifies them by email
func (s *InvoiceService) Create(ctx context.Context, actor appauth.Actor, req *dto.CreateInvoiceRequest) (*models.Invoice, error) {
	if err := actor.RequireAdmin(); err != nil {
		return nil, err
	}
	if req.Amount == nil {
		return nil, apperrors.ErrInvoiceAmountNotPositive
	}
	amount := req.Amount.Round(2)
	if !amount.IsPositive() {
		return nil, apperrors.ErrInvoiceAmountNotPositive
	}

	issued := helpers.StartOfDay(s.now().In(s.loc))
	due, err := helpers.ParseDate(strings.TrimSpace(req.DueDate), s.loc)
	if err != nil {
		return nil, apperrors.NewValidationError("Hạn thanh toán không hợp lệ, định dạng YYYY-MM-DD")
	}
	due = helpers.StartOfDay(due)
	if due.Before(issued) {
		return nil, apperrors.ErrInvoiceDueBeforeIssue
	}

	resident, err := s.users.GetByID(ctx, req.UserID)
	if err != nil {
		return nil, err
	}
	if resident.Role != models.RoleResident {
		return nil, apperrors.ErrNotAResident
	}
	apt, err := s.apartments.GetByID(ctx, req.ApartmentID)
	if err != nil {
		return nil, err
	}

	inv := &models.Invoice{
		UserID:      resident.ID,
		ApartmentID: apt.ID,
		Type:        req.Type,
		Amount:      amount,
		IssueDate:   issued,
		DueDate:     due,
		Status:      models.InvoicePending,
		Description: strings.TrimSpace(req.Description),
	}
	err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		number, err := s.invoices.NextNumber(ctx, issued)
		if err != nil {
			return err
		}
		inv.InvoiceNumber = number
		return s.invoices.Create(ctx, inv)
	})
	if err != nil {
		return nil, err
	}
	inv.ApartmentNumber = apt.ApartmentNumber
	inv.ResidentName = resident.FullName

	s.logger.Info().
		Int64("invoiceID", inv.ID).
		Str("number", inv.InvoiceNumber).
		Str("amount", inv.Amount.String()).
		Msg("Invoice issued")

	if s.mailer != nil {
		notice := email.InvoiceNotice{
			InvoiceNumber:   inv.InvoiceNumber,
			ApartmentNumber: apt.ApartmentNumber,
			Type:            string(inv.Type),
			Amount:          inv.Amount,
			DueDate:         inv.DueDate,
			Description:     inv.Description,
		}
		if err := s.mailer.SendInvoiceIssued(resident.Email, resident.FullName, notice); err != nil {
			s.logger.Warn().Err(err).Int64("invoiceID", inv.ID).Msg("Failed to send invoice email")
		}
	}
	return inv, nil
}

// Get returns an invoice visible to actor. Other residents' invoices look absent.
func (s *InvoiceService) Get(ctx context.Context, actor appauth.Actor, id int64) (*models.Invoice, error) {
	inv, err := s.invoices.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.CanViewInvoice(inv) {
		return nil, apperrors.ErrInvoiceNotFound
	}
	return inv, nil
}

// List returns a page of invoices; non-admins only see their own
func (s *InvoiceService) List(ctx context.Context, actor appauth.Actor, filter models.InvoiceFilter) (*dto.ListResponse[*models.Invoice], error) {
	if !actor.IsAdmin() {
		own := actor.UserID
		filter.UserID = &own
	}
	filter.Page, filter.PageSize = helpers.NormalizePage(filter.Page, filter.PageSize)

	items, total, err := s.invoices.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []*models.Invoice{}
	}
	return &dto.ListResponse[*models.Invoice]{
		Items:      items,
		Pagination: helpers.NewPaginationInfo(total, filter.Page, filter.PageSize),
	}, nil
}

// Cancel voids an unpaid invoice together with its pending transactions
func (s *InvoiceService) Cancel(ctx context.Context, actor appauth.Actor, id int64) (*models.Invoice, error) {
	if err := actor.RequireAdmin(); err != nil {
		return nil, err
	}

	var inv *models.Invoice
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		var err error
		inv, err = s.invoices.GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		switch inv.Status {
		case models.InvoicePaid:
			return apperrors.ErrInvoiceAlreadyPaid
		case models.InvoiceCancelled:
			return apperrors.ErrInvoiceCancelled
		}

		if err := s.invoices.UpdateStatus(ctx, id, models.InvoiceCancelled, nil); err != nil {
			return err
		}
		inv.Status = models.InvoiceCancelled
		_, err = s.transactions.CancelPending(ctx, id, 0)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Int64("invoiceID", id).Msg("Invoice cancelled")
	return inv, nil
}

// MarkOverdue moves pending invoices whose due date is before today to overdue
func (s *InvoiceService) MarkOverdue(ctx context.Context) (int64, error) {
	asOf := helpers.StartOfDay(s.now().In(s.loc))
	n, err := s.invoices.MarkOverdue(ctx, asOf)
	if err != nil {
		return 0, err
	}
	s.logger.Info().Int64("updated", n).Time("asOf", asOf).Msg("Overdue invoices marked")
	return n, nil
}

// Revenue aggregates paid invoices of a calendar year by month and by type
func (s *InvoiceService) Revenue(ctx context.Context, year int) (*dto.RevenueResponse, error) {
	if year < 2000 || year > 9999 {
		return nil, apperrors.NewValidationError("Năm không hợp lệ")
	}
	from := time.Date(year, time.January, 1, 0, 0, 0, 0, s.loc)
	to := from.AddDate(1, 0, 0)

	byMonth, err := s.invoices.PaidTotalsByMonth(ctx, from, to)
	if err != nil {
		return nil, err
	}
	byType, err := s.invoices.PaidTotalsByType(ctx, from, to)
	if err != nil {
		return nil, err
	}

	resp := &dto.RevenueResponse{
		Year:    year,
		Total:   decimal.Zero,
		Monthly: make([]models.MonthlyRevenue, 12),
		ByType:  make(map[models.InvoiceType]decimal.Decimal, len(models.InvoiceTypes)),
	}
	for m := 1; m <= 12; m++ {
		total, ok := byMonth[m]
		if !ok {
			total = decimal.Zero
		}
		resp.Monthly[m-1] = models.MonthlyRevenue{Month: m, Total: total}
		resp.Total = resp.Total.Add(total)
	}
	for _, t := range models.InvoiceTypes {
		total, ok := byType[t]
		if !ok {
			total = decimal.Zero
		}
		resp.ByType[t] = total
	}
	return resp, nil
}

// ListTransactions returns a page of payment transactions; non-admins only see their own
func (s *InvoiceService) ListTransactions(ctx context.Context, actor appauth.Actor, filter models.TransactionFilter) (*dto.ListResponse[*models.Transaction], error) {
	if !actor.IsAdmin() {
		own := actor.UserID
		filter.UserID = &own
	}
	filter.Page, filter.PageSize = helpers.NormalizePage(filter.Page, filter.PageSize)

	items, total, err := s.transactions.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []*models.Transaction{}
	}
	return &dto.ListResponse[*models.Transaction]{
		Items:      items,
		Pagination: helpers.NewPaginationInfo(total, filter.Page, filter.PageSize),
	}, nil
}
