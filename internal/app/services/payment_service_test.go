package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appauth "github.com/stayease/stayease-api/internal/app/auth"
	"github.com/stayease/stayease-api/internal/app/models"
	"github.com/stayease/stayease-api/internal/app/models/dto"
	"github.com/stayease/stayease-api/internal/pkg/apperrors"
	"github.com/stayease/stayease-api/internal/pkg/paycode"
)

func signedCallback(code string, amount decimal.Decimal, status string) *dto.PaymentCallbackRequest {
	return &dto.PaymentCallbackRequest{
		TransactionCode: code,
		Amount:          &amount,
		Status:          status,
		Signature:       paycode.Sign(testCallbackSecret, code, amount, status),
	}
}

type paymentSetup struct {
	admin    appauth.Actor
	resident appauth.Actor
	invoice  *models.Invoice
}

func newPaymentSetup(t *testing.T, f *fixture, amount int64) paymentSetup {
	t.Helper()
	admin := f.admin(t)
	resident, home := f.resident(t)
	return paymentSetup{admin: admin, resident: resident, invoice: f.invoice(t, admin, resident, home.ID, amount)}
}

func (f *fixture) transaction(t *testing.T, code string) *models.Transaction {
	t.Helper()
	txn, err := f.db.Transactions.GetByCode(context.Background(), code)
	require.NoError(t, err)
	return txn
}

func TestPayment_EndToEnd(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s := newPaymentSetup(t, f, 5_000_000)

	assert.Regexp(t, `^INV-\d{8}-\d{6}$`, s.invoice.InvoiceNumber)
	assert.Equal(t, models.InvoicePending, s.invoice.Status)
	require.Len(t, f.mailer.invoices, 1)
	assert.Equal(t, s.invoice.InvoiceNumber, f.mailer.invoices[0].InvoiceNumber)

	link, err := f.payments.CreatePaymentURL(ctx, s.resident, s.invoice.ID, &dto.CreatePaymentURLRequest{Gateway: models.GatewayVNPay})
	require.NoError(t, err)
	assert.True(t, paycode.Valid(link.TransactionCode), link.TransactionCode)
	assert.True(t, strings.HasPrefix(link.TransactionCode, "STAY-"))
	assert.Contains(t, link.PaymentURL, "http://localhost:8080/payment/")
	assert.Contains(t, link.PaymentURL, "txn="+link.TransactionCode)
	assert.True(t, link.Amount.Equal(decimal.NewFromInt(5_000_000)))
	assert.NotEmpty(t, link.QRPayload)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), link.ExpiresAt, time.Minute)

	resp, err := f.payments.ProcessCallback(ctx, signedCallback(link.TransactionCode, decimal.NewFromInt(5_000_000), CallbackSuccess))
	require.NoError(t, err)
	assert.False(t, resp.AlreadyProcessed)
	assert.Equal(t, models.InvoicePaid, resp.InvoiceStatus)
	assert.Equal(t, models.TransactionCompleted, resp.TransactionStatus)

	inv, err := f.invoices.Get(ctx, s.resident, s.invoice.ID)
	require.NoError(t, err)
	assert.Equal(t, models.InvoicePaid, inv.Status)
	require.NotNil(t, inv.PaidDate)
	txn := f.transaction(t, link.TransactionCode)
	assert.Equal(t, models.TransactionCompleted, txn.Status)
	assert.NotNil(t, txn.PaidAt)
	assert.Equal(t, 1, f.mailer.paymentCount())

	// the same notification again changes nothing
	resp, err = f.payments.ProcessCallback(ctx, signedCallback(link.TransactionCode, decimal.NewFromInt(5_000_000), CallbackSuccess))
	require.NoError(t, err)
	assert.True(t, resp.AlreadyProcessed)
	assert.Equal(t, 1, f.mailer.paymentCount())
	again, _ := f.invoices.Get(ctx, s.admin, s.invoice.ID)
	assert.Equal(t, inv.PaidDate, again.PaidDate)

	_, err = f.payments.CreatePaymentURL(ctx, s.resident, s.invoice.ID, &dto.CreatePaymentURLRequest{})
	assert.ErrorIs(t, err, apperrors.ErrInvoiceAlreadyPaid)

	revenue, err := f.invoices.Revenue(ctx, inv.PaidDate.Year())
	require.NoError(t, err)
	assert.True(t, revenue.Total.Equal(decimal.NewFromInt(5_000_000)))
	month := revenue.Monthly[int(inv.PaidDate.Month())-1]
	assert.True(t, month.Total.Equal(decimal.NewFromInt(5_000_000)))
	assert.True(t, revenue.ByType[models.InvoiceRent].Equal(decimal.NewFromInt(5_000_000)))
	assert.True(t, revenue.ByType[models.InvoiceParking].IsZero())
	assert.Len(t, revenue.Monthly, 12)
}

func TestPayment_CreatePaymentURL_Scoping(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s := newPaymentSetup(t, f, 1_000_000)
	stranger, _ := f.resident(t)

	_, err := f.payments.CreatePaymentURL(ctx, stranger, s.invoice.ID, &dto.CreatePaymentURLRequest{})
	assert.ErrorIs(t, err, apperrors.ErrInvoiceNotFound)

	_, err = f.payments.CreatePaymentURL(ctx, s.resident, s.invoice.ID, &dto.CreatePaymentURLRequest{Gateway: models.GatewayCash})
	assert.ErrorIs(t, err, apperrors.ErrInvalidPaymentGateway)

	_, err = f.payments.CreatePaymentURL(ctx, s.resident, 9999, &dto.CreatePaymentURLRequest{})
	assert.ErrorIs(t, err, apperrors.ErrInvoiceNotFound)
}

func TestPayment_NewLinkCancelsPrevious(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s := newPaymentSetup(t, f, 1_000_000)

	first, err := f.payments.CreatePaymentURL(ctx, s.resident, s.invoice.ID, &dto.CreatePaymentURLRequest{})
	require.NoError(t, err)
	second, err := f.payments.CreatePaymentURL(ctx, s.resident, s.invoice.ID, &dto.CreatePaymentURLRequest{})
	require.NoError(t, err)
	assert.NotEqual(t, first.TransactionCode, second.TransactionCode)
	assert.Equal(t, models.GatewayBankTransfer, second.Gateway)

	assert.Equal(t, models.TransactionCancelled, f.transaction(t, first.TransactionCode).Status)
	assert.Equal(t, models.TransactionPending, f.transaction(t, second.TransactionCode).Status)
}

func TestPayment_CodeCollisions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s := newPaymentSetup(t, f, 1_000_000)

	f.db.Transactions.ForceCodeCollisions = 2
	_, err := f.payments.CreatePaymentURL(ctx, s.resident, s.invoice.ID, &dto.CreatePaymentURLRequest{})
	require.NoError(t, err)

	f.db.Transactions.ForceCodeCollisions = maxCodeAttempts
	_, err = f.payments.CreatePaymentURL(ctx, s.resident, s.invoice.ID, &dto.CreatePaymentURLRequest{})
	assert.ErrorIs(t, err, apperrors.ErrTransactionCodeExists)
}

func TestPayment_CallbackRejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s := newPaymentSetup(t, f, 2_500_000)
	link, err := f.payments.CreatePaymentURL(ctx, s.resident, s.invoice.ID, &dto.CreatePaymentURLRequest{})
	require.NoError(t, err)

	forged := signedCallback(link.TransactionCode, decimal.NewFromInt(2_500_000), CallbackSuccess)
	forged.Signature = strings.Repeat("0", 64)
	_, err = f.payments.ProcessCallback(ctx, forged)
	assert.ErrorIs(t, err, apperrors.ErrInvalidSignature)

	tampered := signedCallback(link.TransactionCode, decimal.NewFromInt(2_500_000), CallbackSuccess)
	lower := decimal.NewFromInt(1_000)
	tampered.Amount = &lower
	_, err = f.payments.ProcessCallback(ctx, tampered)
	assert.ErrorIs(t, err, apperrors.ErrInvalidSignature)

	_, err = f.payments.ProcessCallback(ctx, signedCallback(link.TransactionCode, decimal.NewFromInt(1_000), CallbackSuccess))
	assert.ErrorIs(t, err, apperrors.ErrAmountMismatch)

	_, err = f.payments.ProcessCallback(ctx, signedCallback("STAY-20260101-ZZZZZZ", decimal.NewFromInt(2_500_000), CallbackSuccess))
	assert.ErrorIs(t, err, apperrors.ErrTransactionNotFound)

	// correctly signed but not a code this service could have minted
	_, err = f.payments.ProcessCallback(ctx, signedCallback("bogus", decimal.NewFromInt(2_500_000), CallbackSuccess))
	assert.ErrorIs(t, err, apperrors.ErrTransactionNotFound)

	inv, _ := f.invoices.Get(ctx, s.admin, s.invoice.ID)
	assert.Equal(t, models.InvoicePending, inv.Status)
	assert.Equal(t, models.TransactionPending, f.transaction(t, link.TransactionCode).Status)
	assert.Zero(t, f.mailer.paymentCount())
}

func TestPayment_CallbackWithoutSecret(t *testing.T) {
	f := newFixture(t)
	f.payments.config.CallbackSecret = ""
	_, err := f.payments.ProcessCallback(context.Background(), signedCallback("STAY-20260101-AAAAAA", decimal.NewFromInt(1), CallbackSuccess))
	assert.ErrorIs(t, err, apperrors.ErrCallbackNotConfigured)
}

func TestPayment_CallbackFailed(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s := newPaymentSetup(t, f, 700_000)
	link, err := f.payments.CreatePaymentURL(ctx, s.resident, s.invoice.ID, &dto.CreatePaymentURLRequest{})
	require.NoError(t, err)

	resp, err := f.payments.ProcessCallback(ctx, signedCallback(link.TransactionCode, decimal.NewFromInt(700_000), CallbackFailed))
	require.NoError(t, err)
	assert.Equal(t, models.TransactionFailed, resp.TransactionStatus)
	assert.Equal(t, models.InvoicePending, resp.InvoiceStatus)

	resp, err = f.payments.ProcessCallback(ctx, signedCallback(link.TransactionCode, decimal.NewFromInt(700_000), CallbackFailed))
	require.NoError(t, err)
	assert.True(t, resp.AlreadyProcessed)

	_, err = f.payments.ProcessCallback(ctx, signedCallback(link.TransactionCode, decimal.NewFromInt(700_000), CallbackCancelled))
	assert.ErrorIs(t, err, apperrors.ErrTransactionFinalized)
}

func TestPayment_ConfirmPayment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s := newPaymentSetup(t, f, 3_000_000)
	link, err := f.payments.CreatePaymentURL(ctx, s.resident, s.invoice.ID, &dto.CreatePaymentURLRequest{})
	require.NoError(t, err)

	_, err = f.payments.ConfirmPayment(ctx, s.resident, s.invoice.ID, &dto.ConfirmPaymentRequest{TransactionCode: "FT26001"})
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	result, err := f.payments.ConfirmPayment(ctx, s.admin, s.invoice.ID, &dto.ConfirmPaymentRequest{TransactionCode: "FT26001", Note: "VCB statement"})
	require.NoError(t, err)
	assert.Equal(t, models.InvoicePaid, result.Invoice.Status)
	assert.Equal(t, models.GatewayBankTransfer, result.Transaction.Gateway)
	assert.Equal(t, "VCB statement", result.Transaction.Note)

	// the minted link was superseded by the manual payment
	assert.Equal(t, models.TransactionCancelled, f.transaction(t, link.TransactionCode).Status)

	again, err := f.payments.ConfirmPayment(ctx, s.admin, s.invoice.ID, &dto.ConfirmPaymentRequest{TransactionCode: "FT26001"})
	require.NoError(t, err)
	assert.True(t, again.AlreadyProcessed)

	_, err = f.payments.ConfirmPayment(ctx, s.admin, s.invoice.ID, &dto.ConfirmPaymentRequest{TransactionCode: "FT26002"})
	assert.ErrorIs(t, err, apperrors.ErrInvoiceDuplicatePayment)

	// a late gateway success for the superseded link cannot pay twice
	_, err = f.payments.ProcessCallback(ctx, signedCallback(link.TransactionCode, decimal.NewFromInt(3_000_000), CallbackSuccess))
	assert.ErrorIs(t, err, apperrors.ErrInvoiceDuplicatePayment)
	assert.Equal(t, 1, f.mailer.paymentCount())
}

func TestPayment_ConfirmWrongInvoice(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := newPaymentSetup(t, f, 1_000_000)
	b := newPaymentSetup(t, f, 1_000_000)
	link, err := f.payments.CreatePaymentURL(ctx, a.resident, a.invoice.ID, &dto.CreatePaymentURLRequest{})
	require.NoError(t, err)

	_, err = f.payments.ConfirmPayment(ctx, b.admin, b.invoice.ID, &dto.ConfirmPaymentRequest{TransactionCode: link.TransactionCode})
	assert.ErrorIs(t, err, apperrors.ErrTransactionMismatch)
}

func TestPayment_CancelledInvoice(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s := newPaymentSetup(t, f, 1_200_000)
	link, err := f.payments.CreatePaymentURL(ctx, s.resident, s.invoice.ID, &dto.CreatePaymentURLRequest{})
	require.NoError(t, err)

	inv, err := f.invoices.Cancel(ctx, s.admin, s.invoice.ID)
	require.NoError(t, err)
	assert.Equal(t, models.InvoiceCancelled, inv.Status)
	assert.Equal(t, models.TransactionCancelled, f.transaction(t, link.TransactionCode).Status)

	_, err = f.payments.ProcessCallback(ctx, signedCallback(link.TransactionCode, decimal.NewFromInt(1_200_000), CallbackSuccess))
	assert.ErrorIs(t, err, apperrors.ErrInvoiceCancelled)

	_, err = f.invoices.Cancel(ctx, s.admin, s.invoice.ID)
	assert.ErrorIs(t, err, apperrors.ErrInvoiceCancelled)
}

func TestPayment_PageAndQR(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s := newPaymentSetup(t, f, 900_000)
	link, err := f.payments.CreatePaymentURL(ctx, s.resident, s.invoice.ID, &dto.CreatePaymentURLRequest{})
	require.NoError(t, err)

	page, err := f.payments.PaymentPage(ctx, s.invoice.ID, link.TransactionCode)
	require.NoError(t, err)
	assert.Equal(t, s.invoice.InvoiceNumber, page.InvoiceNumber)
	assert.True(t, strings.HasPrefix(page.QRDataURI, "data:image/png;base64,"))
	assert.False(t, page.Expired)

	png, err := f.payments.TransactionQR(ctx, s.resident, link.TransactionCode)
	require.NoError(t, err)
	assert.Equal(t, "\x89PNG", string(png[:4]))

	stranger, _ := f.resident(t)
	_, err = f.payments.TransactionQR(ctx, stranger, link.TransactionCode)
	assert.ErrorIs(t, err, apperrors.ErrTransactionNotFound)

	other := newPaymentSetup(t, f, 100_000)
	_, err = f.payments.PaymentPage(ctx, other.invoice.ID, link.TransactionCode)
	assert.ErrorIs(t, err, apperrors.ErrTransactionMismatch)

	_, err = f.payments.ProcessCallback(ctx, signedCallback(link.TransactionCode, decimal.NewFromInt(900_000), CallbackSuccess))
	require.NoError(t, err)
	page, err = f.payments.PaymentPage(ctx, s.invoice.ID, link.TransactionCode)
	require.NoError(t, err)
	assert.Equal(t, models.InvoicePaid, page.InvoiceStatus)
	assert.Empty(t, page.QRDataURI)
}
