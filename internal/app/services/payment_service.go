package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	appauth "github.com/stayease/stayease-api/internal/app/auth"
	"github.com/stayease/stayease-api/internal/app/models"
	"github.com/stayease/stayease-api/internal/app/models/dto"
	"github.com/stayease/stayease-api/internal/pkg/apperrors"
	"github.com/stayease/stayease-api/internal/pkg/email"
	"github.com/stayease/stayease-api/internal/pkg/paycode"
	"github.com/stayease/stayease-api/internal/pkg/qrpay"
)

// Callback statuses posted by the payment channel
const (
	CallbackSuccess   = "SUCCESS"
	CallbackFailed    = "FAILED"
	CallbackCancelled = "CANCELLED"
)

const maxCodeAttempts = 5

// PaymentConfig configures payment links, QR codes and callback verification
type PaymentConfig struct {
	BaseURL        string
	CallbackSecret string
	QRExpiry       time.Duration
	CodePrefix     string
	Account        qrpay.Account
}

// PaymentService mints payment links and settles invoices
type PaymentService struct {
	tx           Transactor
	invoices     InvoiceStore
	transactions TransactionStore
	users        UserStore
	mailer       email.EmailService
	config       PaymentConfig
	logger       zerolog.Logger
	now          func() time.Time
}

// NewPaymentService creates a new PaymentService
func NewPaymentService(
	tx Transactor,
	invoices InvoiceStore,
	transactions TransactionStore,
	users UserStore,
	mailer email.EmailService,
	config PaymentConfig,
	logger zerolog.Logger,
) *PaymentService {
	if config.QRExpiry <= 0 {
		config.QRExpiry = 15 * time.Minute
	}
	if config.CodePrefix == "" {
		config.CodePrefix = "STAY"
	}
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")
	return &PaymentService{
		tx:           tx,
		invoices:     invoices,
		transactions: transactions,
		users:        users,
		mailer:       mailer,
		config:       config,
		logger:       logger,
		now:          time.Now,
	}
}

// CreatePaymentURL mints a transaction code for the owner of an unpaid invoice.
// Earlier pending transactions of the invoice are cancelled.
func (s *PaymentService) CreatePaymentURL(ctx context.Context, actor appauth.Actor, invoiceID int64, req *dto.CreatePaymentURLRequest) (*dto.PaymentURLResponse, error) {
	gateway := req.Gateway
	if gateway == "" {
		gateway = models.GatewayBankTransfer
	}
	if !gateway.Valid() || gateway == models.GatewayCash {
		return nil, apperrors.ErrInvalidPaymentGateway
	}

	var txn *models.Transaction
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		inv, err := s.invoices.GetByIDForUpdate(ctx, invoiceID)
		if err != nil {
			return err
		}
		if inv.UserID != actor.UserID {
			return apperrors.ErrInvoiceNotFound
		}
		if err := payable(inv); err != nil {
			return err
		}

		if _, err := s.transactions.CancelPending(ctx, inv.ID, 0); err != nil {
			return err
		}

		now := s.now()
		expires := now.Add(s.config.QRExpiry)
		txn = &models.Transaction{
			InvoiceID: inv.ID,
			UserID:    inv.UserID,
			Gateway:   gateway,
			Amount:    inv.Amount,
			Status:    models.TransactionPending,
			ExpiresAt: &expires,
		}
		return s.insertWithFreshCode(ctx, txn, now)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Int64("invoiceID", invoiceID).
		Str("code", txn.TransactionCode).
		Str("gateway", string(gateway)).
		Msg("Payment link created")

	return &dto.PaymentURLResponse{
		TransactionCode: txn.TransactionCode,
		PaymentURL:      s.paymentURL(invoiceID, txn.TransactionCode, req.ReturnURL),
		Gateway:         gateway,
		Amount:          txn.Amount,
		ExpiresAt:       *txn.ExpiresAt,
		QRPayload:       s.qrPayload(txn),
	}, nil
}

// insertWithFreshCode inserts txn under a newly drawn code, drawing again while the
// unique constraint on transaction_code rejects it.
func (s *PaymentService) insertWithFreshCode(ctx context.Context, txn *models.Transaction, now time.Time) error {
	for i := 0; i < maxCodeAttempts; i++ {
		code, err := paycode.NewCode(s.config.CodePrefix, now)
		if err != nil {
			return err
		}
		txn.TransactionCode = code
		err = s.transactions.Create(ctx, txn)
		if !errors.Is(err, apperrors.ErrTransactionCodeExists) {
			return err
		}
		s.logger.Debug().Str("code", code).Msg("Transaction code taken, drawing again")
	}
	return apperrors.ErrTransactionCodeExists
}

func (s *PaymentService) paymentURL(invoiceID int64, code, returnURL string) string {
	q := url.Values{}
	q.Set("txn", code)
	if returnURL != "" {
		q.Set("returnUrl", returnURL)
	}
	return fmt.Sprintf("%s/payment/%d?%s", s.config.BaseURL, invoiceID, q.Encode())
}

// qrPayload returns the VietQR payload of a transaction, or "" when no bank account is configured
func (s *PaymentService) qrPayload(t *models.Transaction) string {
	payload, err := qrpay.Payload(s.config.Account, qrpay.Transfer{Amount: t.Amount, Content: t.TransactionCode})
	if err != nil {
		s.logger.Debug().Err(err).Msg("QR payload unavailable")
		return ""
	}
	return payload
}

// ProcessCallback applies a signed payment notification. A repeated SUCCESS is a no-op.
func (s *PaymentService) ProcessCallback(ctx context.Context, req *dto.PaymentCallbackRequest) (*dto.PaymentCallbackResponse, error) {
	if s.config.CallbackSecret == "" {
		s.logger.Warn().Str("code", req.TransactionCode).Msg("Payment callback rejected: no secret configured")
		return nil, apperrors.ErrCallbackNotConfigured
	}
	if req.Amount == nil {
		return nil, apperrors.ErrAmountMismatch
	}
	status := strings.ToUpper(req.Status)
	if !paycode.Verify(s.config.CallbackSecret, req.TransactionCode, *req.Amount, status, req.Signature) {
		s.logger.Warn().Str("code", req.TransactionCode).Msg("Payment callback rejected: bad signature")
		return nil, apperrors.ErrInvalidSignature
	}

	// gateways only echo codes minted here
	if !paycode.Valid(req.TransactionCode) {
		return nil, apperrors.ErrTransactionNotFound
	}
	txn, err := s.transactions.GetByCode(ctx, req.TransactionCode)
	if err != nil {
		return nil, err
	}

	switch status {
	case CallbackSuccess:
		if !req.Amount.Equal(txn.Amount) {
			s.logger.Warn().
				Str("code", txn.TransactionCode).
				Str("expected", txn.Amount.String()).
				Str("got", req.Amount.String()).
				Msg("Payment callback rejected: amount mismatch")
			return nil, apperrors.ErrAmountMismatch
		}
		result, err := s.SettleInvoice(ctx, txn.InvoiceID, txn.TransactionCode, "gateway callback", nil)
		if err != nil {
			return nil, err
		}
		return callbackResponse(result), nil

	case CallbackFailed, CallbackCancelled:
		target := models.TransactionFailed
		if status == CallbackCancelled {
			target = models.TransactionCancelled
		}
		return s.abandon(ctx, txn, target)
	}
	return nil, apperrors.NewValidationError("Trạng thái callback không hợp lệ")
}

// abandon flips a pending transaction to failed or cancelled
func (s *PaymentService) abandon(ctx context.Context, txn *models.Transaction, target models.TransactionStatus) (*dto.PaymentCallbackResponse, error) {
	var result *Settlement
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		inv, err := s.invoices.GetByIDForUpdate(ctx, txn.InvoiceID)
		if err != nil {
			return err
		}
		current, err := s.transactions.GetByCodeForUpdate(ctx, txn.TransactionCode)
		if err != nil {
			return err
		}

		result = &Settlement{Invoice: inv, Transaction: current}
		switch current.Status {
		case target:
			result.AlreadyProcessed = true
			return nil
		case models.TransactionPending:
			if err := s.transactions.UpdateStatus(ctx, current.ID, target); err != nil {
				return err
			}
			current.Status = target
			return nil
		}
		return apperrors.ErrTransactionFinalized
	})
	if err != nil {
		return nil, err
	}
	return callbackResponse(result), nil
}

// ConfirmPayment records a payment seen by an admin, e.g. a bank transfer. A code
// not yet known is recorded as a completed bank_transfer transaction.
func (s *PaymentService) ConfirmPayment(ctx context.Context, actor appauth.Actor, invoiceID int64, req *dto.ConfirmPaymentRequest) (*Settlement, error) {
	if err := actor.RequireAdmin(); err != nil {
		return nil, err
	}
	code := strings.TrimSpace(req.TransactionCode)
	if code == "" {
		return nil, apperrors.NewValidationError("Mã giao dịch là bắt buộc")
	}

	note := strings.TrimSpace(req.Note)
	if note == "" {
		note = fmt.Sprintf("confirmed by admin #%d", actor.UserID)
	}
	manual := func(inv *models.Invoice) *models.Transaction {
		return &models.Transaction{
			InvoiceID:       inv.ID,
			UserID:          inv.UserID,
			Gateway:         models.GatewayBankTransfer,
			TransactionCode: code,
			Amount:          inv.Amount,
			Status:          models.TransactionCompleted,
			Note:            note,
		}
	}
	return s.SettleInvoice(ctx, invoiceID, code, note, manual)
}

// Settlement is the outcome of SettleInvoice
type Settlement struct {
	Invoice          *models.Invoice     `json:"invoice"`
	Transaction      *models.Transaction `json:"transaction"`
	AlreadyProcessed bool                `json:"alreadyProcessed"`
}

// SettleInvoice is the only transition of an invoice to paid. In one database
// transaction with the invoice row locked it completes the transaction, marks the
// invoice paid and cancels its other pending transactions. When code is unknown and
// manual is set, the transaction manual returns is recorded instead.
func (s *PaymentService) SettleInvoice(ctx context.Context, invoiceID int64, code, note string, manual func(*models.Invoice) *models.Transaction) (*Settlement, error) {
	var result *Settlement
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		inv, err := s.invoices.GetByIDForUpdate(ctx, invoiceID)
		if err != nil {
			return err
		}

		txn, err := s.transactions.GetByCodeForUpdate(ctx, code)
		switch {
		case errors.Is(err, apperrors.ErrTransactionNotFound) && manual != nil:
			txn = nil
		case err != nil:
			return err
		case txn.InvoiceID != inv.ID:
			return apperrors.ErrTransactionMismatch
		case txn.Status == models.TransactionCompleted:
			result = &Settlement{Invoice: inv, Transaction: txn, AlreadyProcessed: true}
			return nil
		}

		if err := payable(inv); err != nil {
			if inv.Status == models.InvoicePaid {
				return apperrors.ErrInvoiceDuplicatePayment
			}
			return err
		}

		paidAt := s.now()
		if txn == nil {
			txn = manual(inv)
			txn.Status = models.TransactionCompleted
			txn.PaidAt = &paidAt
			if err := s.transactions.Create(ctx, txn); err != nil {
				return err
			}
		} else {
			if err := s.transactions.Complete(ctx, txn.ID, paidAt, note); err != nil {
				return err
			}
			txn.Status = models.TransactionCompleted
			txn.PaidAt = &paidAt
			if note != "" {
				txn.Note = note
			}
		}

		if err := s.invoices.UpdateStatus(ctx, inv.ID, models.InvoicePaid, &paidAt); err != nil {
			return err
		}
		inv.Status = models.InvoicePaid
		inv.PaidDate = &paidAt

		if _, err := s.transactions.CancelPending(ctx, inv.ID, txn.ID); err != nil {
			return err
		}

		result = &Settlement{Invoice: inv, Transaction: txn}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if !result.AlreadyProcessed {
		s.logger.Info().
			Int64("invoiceID", result.Invoice.ID).
			Str("code", result.Transaction.TransactionCode).
			Str("amount", result.Transaction.Amount.String()).
			Msg("Invoice settled")
		s.notifyPaid(ctx, result)
	}
	return result, nil
}

func (s *PaymentService) notifyPaid(ctx context.Context, r *Settlement) {
	if s.mailer == nil {
		return
	}
	user, err := s.users.GetByID(ctx, r.Invoice.UserID)
	if err != nil {
		s.logger.Warn().Err(err).Int64("invoiceID", r.Invoice.ID).Msg("Could not load resident for payment email")
		return
	}
	notice := email.PaymentNotice{
		InvoiceNumber:   r.Invoice.InvoiceNumber,
		TransactionCode: r.Transaction.TransactionCode,
		Amount:          r.Transaction.Amount,
		PaidAt:          *r.Transaction.PaidAt,
	}
	if err := s.mailer.SendPaymentConfirmed(user.Email, user.FullName, notice); err != nil {
		s.logger.Warn().Err(err).Int64("invoiceID", r.Invoice.ID).Msg("Failed to send payment email")
	}
}

// TransactionQR renders the VietQR PNG of a transaction visible to actor
func (s *PaymentService) TransactionQR(ctx context.Context, actor appauth.Actor, code string) ([]byte, error) {
	txn, err := s.transactions.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if !actor.CanViewTransaction(txn) {
		return nil, apperrors.ErrTransactionNotFound
	}
	payload, err := qrpay.Payload(s.config.Account, qrpay.Transfer{Amount: txn.Amount, Content: txn.TransactionCode})
	if err != nil {
		return nil, apperrors.NewCustomError(apperrors.ErrConflict, "Tài khoản nhận thanh toán chưa được cấu hình")
	}
	return qrpay.PNG(payload, qrpay.DefaultSize)
}

// PaymentPage is what the public payment page shows for one transaction
type PaymentPage struct {
	InvoiceNumber   string
	InvoiceStatus   models.InvoiceStatus
	Amount          decimal.Decimal
	DueDate         time.Time
	TransactionCode string
	Status          models.TransactionStatus
	Gateway         models.PaymentGateway
	ExpiresAt       *time.Time
	Expired         bool
	QRDataURI       string
	BankBIN         string
	AccountNumber   string
	AccountName     string
}

// PaymentPage loads the page data for a code minted for invoiceID
func (s *PaymentService) PaymentPage(ctx context.Context, invoiceID int64, code string) (*PaymentPage, error) {
	inv, err := s.invoices.GetByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	txn, err := s.transactions.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if txn.InvoiceID != inv.ID {
		return nil, apperrors.ErrTransactionMismatch
	}

	page := &PaymentPage{
		InvoiceNumber:   inv.InvoiceNumber,
		InvoiceStatus:   inv.Status,
		Amount:          txn.Amount,
		DueDate:         inv.DueDate,
		TransactionCode: txn.TransactionCode,
		Status:          txn.Status,
		Gateway:         txn.Gateway,
		ExpiresAt:       txn.ExpiresAt,
		Expired:         txn.Expired(s.now()),
		BankBIN:         s.config.Account.BankBIN,
		AccountNumber:   s.config.Account.AccountNumber,
		AccountName:     s.config.Account.AccountName,
	}
	if txn.Status == models.TransactionPending {
		if payload := s.qrPayload(txn); payload != "" {
			uri, err := qrpay.DataURI(payload, qrpay.DefaultSize)
			if err != nil {
				s.logger.Warn().Err(err).Str("code", code).Msg("Failed to render QR code")
			} else {
				page.QRDataURI = uri
			}
		}
	}
	return page, nil
}

func payable(inv *models.Invoice) error {
	switch inv.Status {
	case models.InvoicePaid:
		return apperrors.ErrInvoiceAlreadyPaid
	case models.InvoiceCancelled:
		return apperrors.ErrInvoiceCancelled
	}
	if !inv.Status.Payable() {
		return apperrors.ErrInvoiceNotPayable
	}
	return nil
}

func callbackResponse(r *Settlement) *dto.PaymentCallbackResponse {
	return &dto.PaymentCallbackResponse{
		TransactionCode:   r.Transaction.TransactionCode,
		TransactionStatus: r.Transaction.Status,
		InvoiceID:         r.Invoice.ID,
		InvoiceStatus:     r.Invoice.Status,
		AlreadyProcessed:  r.AlreadyProcessed,
	}
}
