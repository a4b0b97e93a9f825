package services

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stayease/stayease-api/internal/app/models"
	"github.com/stayease/stayease-api/internal/app/models/dto"
	"github.com/stayease/stayease-api/internal/pkg/apperrors"
)

func TestInvoiceService_CreateValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.admin(t)
	resident, home := f.resident(t)
	amount := decimal.NewFromInt(500_000)
	due := time.Now().AddDate(0, 0, 5).Format("2006-01-02")

	tests := []struct {
		name string
		mut  func(r *dto.CreateInvoiceRequest)
		want error
	}{
		{"zero amount", func(r *dto.CreateInvoiceRequest) { z := decimal.Zero; r.Amount = &z }, apperrors.ErrInvoiceAmountNotPositive},
		{"rounds to zero", func(r *dto.CreateInvoiceRequest) { d := decimal.RequireFromString("0.004"); r.Amount = &d }, apperrors.ErrInvoiceAmountNotPositive},
		{"negative amount", func(r *dto.CreateInvoiceRequest) { n := decimal.NewFromInt(-1); r.Amount = &n }, apperrors.ErrInvoiceAmountNotPositive},
		{"due before issue", func(r *dto.CreateInvoiceRequest) { r.DueDate = time.Now().AddDate(0, 0, -1).Format("2006-01-02") }, apperrors.ErrInvoiceDueBeforeIssue},
		{"bad date", func(r *dto.CreateInvoiceRequest) { r.DueDate = "31/12/2026" }, apperrors.ErrValidationFailed},
		{"not a resident", func(r *dto.CreateInvoiceRequest) { r.UserID = admin.UserID }, apperrors.ErrNotAResident},
		{"unknown apartment", func(r *dto.CreateInvoiceRequest) { r.ApartmentID = 9999 }, apperrors.ErrApartmentNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := &dto.CreateInvoiceRequest{
				UserID:      resident.UserID,
				ApartmentID: home.ID,
				Type:        models.InvoiceUtilities,
				Amount:      &amount,
				DueDate:     due,
			}
			tt.mut(req)
			_, err := f.invoices.Create(ctx, admin, req)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	_, err := f.invoices.Create(ctx, resident, &dto.CreateInvoiceRequest{
		UserID: resident.UserID, ApartmentID: home.ID, Type: models.InvoiceRent, Amount: &amount, DueDate: due,
	})
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	// due today is allowed
	today := time.Now().Format("2006-01-02")
	inv, err := f.invoices.Create(ctx, admin, &dto.CreateInvoiceRequest{
		UserID: resident.UserID, ApartmentID: home.ID, Type: models.InvoiceRent, Amount: &amount, DueDate: today,
	})
	require.NoError(t, err)
	assert.Equal(t, home.ApartmentNumber, inv.ApartmentNumber)
}

func TestInvoiceService_NumbersAreUnique(t *testing.T) {
	f := newFixture(t)
	admin := f.admin(t)
	resident, home := f.resident(t)

	seen := map[string]bool{}
	for i := 0; i < 5; i++ {
		inv := f.invoice(t, admin, resident, home.ID, 100_000)
		assert.False(t, seen[inv.InvoiceNumber], inv.InvoiceNumber)
		seen[inv.InvoiceNumber] = true
	}
}

func TestInvoiceService_ListScoping(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.admin(t)
	alice, aliceHome := f.resident(t)
	bob, bobHome := f.resident(t)
	f.invoice(t, admin, alice, aliceHome.ID, 100_000)
	f.invoice(t, admin, alice, aliceHome.ID, 200_000)
	bobs := f.invoice(t, admin, bob, bobHome.ID, 300_000)

	all, err := f.invoices.List(ctx, admin, models.InvoiceFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(3), all.Pagination.TotalItems)

	// a resident asking for someone else's invoices still only gets their own
	mine, err := f.invoices.List(ctx, alice, models.InvoiceFilter{UserID: &bob.UserID})
	require.NoError(t, err)
	assert.Len(t, mine.Items, 2)
	for _, inv := range mine.Items {
		assert.Equal(t, alice.UserID, inv.UserID)
	}

	_, err = f.invoices.Get(ctx, alice, bobs.ID)
	assert.ErrorIs(t, err, apperrors.ErrInvoiceNotFound)
	got, err := f.invoices.Get(ctx, bob, bobs.ID)
	require.NoError(t, err)
	assert.Equal(t, bob.UserID, got.UserID)

	staff := f.staff(t)
	_, err = f.invoices.Get(ctx, staff, bobs.ID)
	assert.ErrorIs(t, err, apperrors.ErrInvoiceNotFound)
}

func TestInvoiceService_MarkOverdue(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.admin(t)
	resident, home := f.resident(t)
	inv := f.invoice(t, admin, resident, home.ID, 400_000)

	n, err := f.invoices.MarkOverdue(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	f.invoices.now = func() time.Time { return time.Now().AddDate(0, 0, 30) }
	n, err = f.invoices.MarkOverdue(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	got, _ := f.invoices.Get(ctx, admin, inv.ID)
	assert.Equal(t, models.InvoiceOverdue, got.Status)

	n, err = f.invoices.MarkOverdue(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	// overdue invoices can still be paid
	_, err = f.payments.CreatePaymentURL(ctx, resident, inv.ID, &dto.CreatePaymentURLRequest{})
	require.NoError(t, err)

	d, err := f.dashboard.Resident(ctx, resident.UserID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), d.UnpaidInvoices)
	assert.True(t, d.UnpaidTotal.Equal(decimal.NewFromInt(400_000)))
}

func TestInvoiceService_RevenueEmptyYear(t *testing.T) {
	f := newFixture(t)
	resp, err := f.invoices.Revenue(context.Background(), 2020)
	require.NoError(t, err)
	assert.Len(t, resp.Monthly, 12)
	assert.True(t, resp.Total.IsZero())
	assert.Len(t, resp.ByType, len(models.InvoiceTypes))

	_, err = f.invoices.Revenue(context.Background(), 1999)
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}

func TestInvoiceService_ListTransactionsScoping(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := newPaymentSetup(t, f, 100_000)
	b := newPaymentSetup(t, f, 200_000)
	_, err := f.payments.CreatePaymentURL(ctx, a.resident, a.invoice.ID, &dto.CreatePaymentURLRequest{})
	require.NoError(t, err)
	_, err = f.payments.CreatePaymentURL(ctx, b.resident, b.invoice.ID, &dto.CreatePaymentURLRequest{})
	require.NoError(t, err)

	all, err := f.invoices.ListTransactions(ctx, a.admin, models.TransactionFilter{})
	require.NoError(t, err)
	assert.Len(t, all.Items, 2)

	own, err := f.invoices.ListTransactions(ctx, a.resident, models.TransactionFilter{})
	require.NoError(t, err)
	require.Len(t, own.Items, 1)
	assert.Equal(t, a.invoice.ID, own.Items[0].InvoiceID)
}
