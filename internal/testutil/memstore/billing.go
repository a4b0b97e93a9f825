package memstore

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stayease/stayease-api/internal/app/models"
	"github.com/stayease/stayease-api/internal/pkg/apperrors"
)

// Invoices implements services.InvoiceStore
type Invoices struct{ db *DB }

func (s *Invoices) NextNumber(_ context.Context, issued time.Time) (string, error) {
	defer s.db.lock()()
	s.db.t.invoiceSeq++
	return fmt.Sprintf("INV-%s-%06d", issued.Format("20060102"), s.db.t.invoiceSeq), nil
}

func (s *Invoices) Create(_ context.Context, inv *models.Invoice) error {
	defer s.db.lock()()
	if !inv.Amount.IsPositive() {
		return fmt.Errorf("invoices_amount_check: amount %s must be positive", inv.Amount)
	}
	for _, other := range s.db.t.invoices {
		if other.InvoiceNumber == inv.InvoiceNumber {
			return apperrors.NewConflictError("Số hóa đơn đã tồn tại")
		}
	}
	_, userOK := s.db.t.users[inv.UserID]
	_, aptOK := s.db.t.apartments[inv.ApartmentID]
	if !userOK || !aptOK {
		return apperrors.NewBadRequestError("Cư dân hoặc căn hộ không tồn tại")
	}
	inv.ID = s.db.nextID()
	inv.CreatedAt = s.db.Now()
	inv.UpdatedAt = inv.CreatedAt
	stored := *inv
	stored.ApartmentNumber, stored.ResidentName = "", ""
	s.db.t.invoices[inv.ID] = stored
	return nil
}

// joined fills the display columns the repository joins in
func (s *Invoices) joined(inv models.Invoice) *models.Invoice {
	if a, ok := s.db.t.apartments[inv.ApartmentID]; ok {
		inv.ApartmentNumber = a.ApartmentNumber
	}
	if u, ok := s.db.t.users[inv.UserID]; ok {
		inv.ResidentName = u.FullName
	}
	return &inv
}

func (s *Invoices) GetByID(_ context.Context, id int64) (*models.Invoice, error) {
	defer s.db.lock()()
	inv, ok := s.db.t.invoices[id]
	if !ok {
		return nil, apperrors.ErrInvoiceNotFound
	}
	return s.joined(inv), nil
}

func (s *Invoices) GetByIDForUpdate(_ context.Context, id int64) (*models.Invoice, error) {
	defer s.db.lock()()
	inv, ok := s.db.t.invoices[id]
	if !ok {
		return nil, apperrors.ErrInvoiceNotFound
	}
	return &inv, nil
}

func (s *Invoices) List(_ context.Context, f models.InvoiceFilter) ([]*models.Invoice, int64, error) {
	defer s.db.lock()()
	var out []*models.Invoice
	for _, inv := range s.db.t.invoices {
		if f.UserID != nil && inv.UserID != *f.UserID {
			continue
		}
		if f.ApartmentID != nil && inv.ApartmentID != *f.ApartmentID {
			continue
		}
		if f.Status != nil && inv.Status != *f.Status {
			continue
		}
		if f.Type != nil && inv.Type != *f.Type {
			continue
		}
		out = append(out, s.joined(inv))
	}
	total := int64(len(out))
	less := func(a, b *models.Invoice) bool {
		if !a.IssueDate.Equal(b.IssueDate) {
			return a.IssueDate.After(b.IssueDate)
		}
		return a.ID > b.ID
	}
	return page(out, less, f.Page, f.PageSize), total, nil
}

func (s *Invoices) UpdateStatus(_ context.Context, id int64, status models.InvoiceStatus, paidDate *time.Time) error {
	defer s.db.lock()()
	inv, ok := s.db.t.invoices[id]
	if !ok {
		return apperrors.ErrInvoiceNotFound
	}
	inv.Status = status
	inv.PaidDate = paidDate
	inv.UpdatedAt = s.db.Now()
	s.db.t.invoices[id] = inv
	return nil
}

func (s *Invoices) MarkOverdue(_ context.Context, asOf time.Time) (int64, error) {
	defer s.db.lock()()
	var n int64
	for id, inv := range s.db.t.invoices {
		if inv.Status == models.InvoicePending && inv.DueDate.Before(asOf) {
			inv.Status = models.InvoiceOverdue
			inv.UpdatedAt = s.db.Now()
			s.db.t.invoices[id] = inv
			n++
		}
	}
	return n, nil
}

func (s *Invoices) ExistsForUser(_ context.Context, userID int64) (bool, error) {
	defer s.db.lock()()
	for _, inv := range s.db.t.invoices {
		if inv.UserID == userID {
			return true, nil
		}
	}
	return false, nil
}

func (s *Invoices) paidBetween(from, to time.Time, fn func(inv models.Invoice)) {
	for _, inv := range s.db.t.invoices {
		if inv.Status != models.InvoicePaid || inv.PaidDate == nil {
			continue
		}
		if inv.PaidDate.Before(from) || !inv.PaidDate.Before(to) {
			continue
		}
		fn(inv)
	}
}

func (s *Invoices) PaidTotalsByMonth(_ context.Context, from, to time.Time) (map[int]decimal.Decimal, error) {
	defer s.db.lock()()
	out := map[int]decimal.Decimal{}
	s.paidBetween(from, to, func(inv models.Invoice) {
		m := int(inv.PaidDate.In(from.Location()).Month())
		out[m] = out[m].Add(inv.Amount)
	})
	return out, nil
}

func (s *Invoices) PaidTotalsByType(_ context.Context, from, to time.Time) (map[models.InvoiceType]decimal.Decimal, error) {
	defer s.db.lock()()
	out := map[models.InvoiceType]decimal.Decimal{}
	s.paidBetween(from, to, func(inv models.Invoice) {
		out[inv.Type] = out[inv.Type].Add(inv.Amount)
	})
	return out, nil
}

func (s *Invoices) Summary(_ context.Context, userID *int64) (models.InvoiceSummary, error) {
	defer s.db.lock()()
	sum := models.InvoiceSummary{
		Pending: models.InvoiceTotals{Total: decimal.Zero},
		Overdue: models.InvoiceTotals{Total: decimal.Zero},
	}
	for _, inv := range s.db.t.invoices {
		if userID != nil && inv.UserID != *userID {
			continue
		}
		switch inv.Status {
		case models.InvoicePending:
			sum.Pending.Count++
			sum.Pending.Total = sum.Pending.Total.Add(inv.Amount)
		case models.InvoiceOverdue:
			sum.Overdue.Count++
			sum.Overdue.Total = sum.Overdue.Total.Add(inv.Amount)
		}
	}
	return sum, nil
}

// Transactions implements services.TransactionStore
type Transactions struct {
	db *DB

	// ForceCodeCollisions makes the next n inserts report a taken code
	ForceCodeCollisions int
}

func (s *Transactions) Create(_ context.Context, t *models.Transaction) error {
	defer s.db.lock()()
	if s.ForceCodeCollisions > 0 {
		s.ForceCodeCollisions--
		return apperrors.ErrTransactionCodeExists
	}
	for _, other := range s.db.t.transactions {
		if other.TransactionCode == t.TransactionCode {
			return apperrors.ErrTransactionCodeExists
		}
	}
	if _, ok := s.db.t.invoices[t.InvoiceID]; !ok {
		return apperrors.ErrInvoiceNotFound
	}
	t.ID = s.db.nextID()
	t.CreatedAt = s.db.Now()
	t.UpdatedAt = t.CreatedAt
	s.db.t.transactions[t.ID] = *t
	return nil
}

func (s *Transactions) GetByCode(_ context.Context, code string) (*models.Transaction, error) {
	defer s.db.lock()()
	for _, t := range s.db.t.transactions {
		if t.TransactionCode == code {
			return &t, nil
		}
	}
	return nil, apperrors.ErrTransactionNotFound
}

func (s *Transactions) GetByCodeForUpdate(ctx context.Context, code string) (*models.Transaction, error) {
	return s.GetByCode(ctx, code)
}

func (s *Transactions) Complete(_ context.Context, id int64, paidAt time.Time, note string) error {
	defer s.db.lock()()
	t, ok := s.db.t.transactions[id]
	if !ok {
		return apperrors.ErrTransactionNotFound
	}
	t.Status = models.TransactionCompleted
	t.PaidAt = &paidAt
	if note != "" {
		t.Note = note
	}
	t.UpdatedAt = s.db.Now()
	s.db.t.transactions[id] = t
	return nil
}

func (s *Transactions) UpdateStatus(_ context.Context, id int64, status models.TransactionStatus) error {
	defer s.db.lock()()
	t, ok := s.db.t.transactions[id]
	if !ok || t.Status != models.TransactionPending {
		return apperrors.ErrTransactionFinalized
	}
	t.Status = status
	t.UpdatedAt = s.db.Now()
	s.db.t.transactions[id] = t
	return nil
}

func (s *Transactions) CancelPending(_ context.Context, invoiceID, exceptID int64) (int64, error) {
	defer s.db.lock()()
	var n int64
	for id, t := range s.db.t.transactions {
		if t.InvoiceID == invoiceID && t.Status == models.TransactionPending && id != exceptID {
			t.Status = models.TransactionCancelled
			t.UpdatedAt = s.db.Now()
			s.db.t.transactions[id] = t
			n++
		}
	}
	return n, nil
}

func (s *Transactions) List(_ context.Context, f models.TransactionFilter) ([]*models.Transaction, int64, error) {
	defer s.db.lock()()
	var out []*models.Transaction
	for _, t := range s.db.t.transactions {
		if f.UserID != nil && t.UserID != *f.UserID {
			continue
		}
		if f.InvoiceID != nil && t.InvoiceID != *f.InvoiceID {
			continue
		}
		if f.Status != nil && t.Status != *f.Status {
			continue
		}
		out = append(out, ptr(t))
	}
	total := int64(len(out))
	return page(out, func(a, b *models.Transaction) bool { return a.ID > b.ID }, f.Page, f.PageSize), total, nil
}
