package services

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	appauth "github.com/stayease/stayease-api/internal/app/auth"
	"github.com/stayease/stayease-api/internal/app/models"
	"github.com/stayease/stayease-api/internal/app/models/dto"
	"github.com/stayease/stayease-api/internal/pkg/auth"
	"github.com/stayease/stayease-api/internal/pkg/email"
	"github.com/stayease/stayease-api/internal/pkg/qrpay"
	"github.com/stayease/stayease-api/internal/pkg/websocket"
	"github.com/stayease/stayease-api/internal/testutil/memstore"
)

const testCallbackSecret = "callback-secret"

// The in-memory stores stand in for every repository
var (
	_ Transactor          = (*memstore.DB)(nil)
	_ UserStore           = (*memstore.Users)(nil)
	_ TokenStore          = (*memstore.Tokens)(nil)
	_ ApartmentStore      = (*memstore.Apartments)(nil)
	_ AmenityStore        = (*memstore.Amenities)(nil)
	_ InvoiceStore        = (*memstore.Invoices)(nil)
	_ TransactionStore    = (*memstore.Transactions)(nil)
	_ PostStore           = (*memstore.Posts)(nil)
	_ ServiceRequestStore = (*memstore.ServiceRequests)(nil)
)

type fakeMailer struct {
	mu       sync.Mutex
	welcome  []string
	invoices []email.InvoiceNotice
	payments []email.PaymentNotice
	err      error
}

func (m *fakeMailer) SendWelcomeEmail(toEmail, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.welcome = append(m.welcome, toEmail)
	return m.err
}

func (m *fakeMailer) SendInvoiceIssued(_, _ string, n email.InvoiceNotice) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.invoices = append(m.invoices, n)
	return m.err
}

func (m *fakeMailer) SendPaymentConfirmed(_, _ string, n email.PaymentNotice) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.payments = append(m.payments, n)
	return m.err
}

func (m *fakeMailer) paymentCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.payments)
}

type fakeHub struct {
	mu   sync.Mutex
	msgs []*websocket.Message
}

func (h *fakeHub) Broadcast(msg *websocket.Message) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.msgs = append(h.msgs, msg)
}

func (h *fakeHub) messages() []*websocket.Message {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]*websocket.Message(nil), h.msgs...)
}

type fixture struct {
	db     *memstore.DB
	mailer *fakeMailer
	hub    *fakeHub
	jwt    *auth.JWTService

	auth       *AuthService
	users      *UserService
	apartments *ApartmentService
	amenities  *AmenityService
	invoices   *InvoiceService
	payments   *PaymentService
	posts      *PostService
	requests   *ServiceRequestService
	dashboard  *DashboardService

	seq int64
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := memstore.New()
	log := zerolog.Nop()
	f := &fixture{
		db:     db,
		mailer: &fakeMailer{},
		hub:    &fakeHub{},
		jwt: auth.NewJWTService(auth.JWTConfig{
			SecretKey:       "test-secret",
			AccessTokenExp:  15 * time.Minute,
			RefreshTokenExp: 24 * time.Hour,
			TokenIssuer:     "stayease-test",
		}),
	}
	f.auth = NewAuthService(db.Users, db.Tokens, f.jwt, f.mailer, log)
	f.users = NewUserService(db, db.Users, db.Apartments, db.Invoices, db.Tokens, log)
	f.apartments = NewApartmentService(db, db.Apartments, db.Users, log)
	f.amenities = NewAmenityService(db.Amenities, log)
	f.invoices = NewInvoiceService(db, db.Invoices, db.Transactions, db.Users, db.Apartments, f.mailer, log)
	f.payments = NewPaymentService(db, db.Invoices, db.Transactions, db.Users, f.mailer, PaymentConfig{
		BaseURL:        "http://localhost:8080/",
		CallbackSecret: testCallbackSecret,
		Account:        qrpay.Account{BankBIN: "970436", AccountNumber: "0011001234567", AccountName: "STAYEASE"},
	}, log)
	f.posts = NewPostService(db.Posts, log)
	f.requests = NewServiceRequestService(db, db.ServiceRequests, db.Users, f.hub, log)
	f.dashboard = NewDashboardService(db.Users, db.Apartments, db.Invoices, db.ServiceRequests, log)
	return f
}

func (f *fixture) next() int64 {
	return atomic.AddInt64(&f.seq, 1)
}

func (f *fixture) user(t *testing.T, role models.Role) appauth.Actor {
	t.Helper()
	n := f.next()
	u, err := f.users.Create(context.Background(), &dto.CreateUserRequest{
		Email:    fmt.Sprintf("%s%d@stayease.vn", role, n),
		Password: "password123",
		FullName: fmt.Sprintf("%s %d", role, n),
		Role:     role,
	})
	require.NoError(t, err)
	return appauth.Actor{UserID: u.ID, Role: u.Role}
}

func (f *fixture) admin(t *testing.T) appauth.Actor { return f.user(t, models.RoleAdmin) }
func (f *fixture) staff(t *testing.T) appauth.Actor { return f.user(t, models.RoleStaff) }

func (f *fixture) apartment(t *testing.T) *models.Apartment {
	t.Helper()
	area, rent := decimal.NewFromInt(70), decimal.NewFromInt(5_000_000)
	apt, err := f.apartments.Create(context.Background(), &dto.CreateApartmentRequest{
		ApartmentNumber: fmt.Sprintf("A-%03d", f.next()),
		Building:        "A",
		Floor:           1,
		Area:            &area,
		Bedrooms:        2,
		Bathrooms:       1,
		RentPrice:       &rent,
	})
	require.NoError(t, err)
	return apt
}

// resident creates a resident living in a fresh apartment
func (f *fixture) resident(t *testing.T) (appauth.Actor, *models.Apartment) {
	t.Helper()
	apt := f.apartment(t)
	n := f.next()
	u, err := f.users.CreateResident(context.Background(), &dto.CreateResidentRequest{
		Email:       fmt.Sprintf("resident%d@stayease.vn", n),
		Password:    "password123",
		FullName:    fmt.Sprintf("Resident %d", n),
		ApartmentID: &apt.ID,
	})
	require.NoError(t, err)
	return appauth.Actor{UserID: u.ID, Role: models.RoleResident}, apt
}

func (f *fixture) invoice(t *testing.T, admin, resident appauth.Actor, aptID int64, amount int64) *models.Invoice {
	t.Helper()
	a := decimal.NewFromInt(amount)
	inv, err := f.invoices.Create(context.Background(), admin, &dto.CreateInvoiceRequest{
		UserID:      resident.UserID,
		ApartmentID: aptID,
		Type:        models.InvoiceRent,
		Amount:      &a,
		DueDate:     time.Now().AddDate(0, 0, 10).Format("2006-01-02"),
	})
	require.NoError(t, err)
	return inv
}
