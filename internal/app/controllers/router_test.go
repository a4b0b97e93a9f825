package controllers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/stayease/stayease-api/internal/app/controllers"
	"github.com/stayease/stayease-api/internal/app/models"
	"github.com/stayease/stayease-api/internal/app/models/dto"
	"github.com/stayease/stayease-api/internal/app/routes"
	"github.com/stayease/stayease-api/internal/app/services"
	"github.com/stayease/stayease-api/internal/middleware"
	"github.com/stayease/stayease-api/internal/pkg/auth"
	"github.com/stayease/stayease-api/internal/pkg/email"
	"github.com/stayease/stayease-api/internal/pkg/filestorage"
	"github.com/stayease/stayease-api/internal/pkg/qrpay"
	"github.com/stayease/stayease-api/internal/pkg/validation"
	"github.com/stayease/stayease-api/internal/pkg/websocket"
	"github.com/stayease/stayease-api/internal/testutil/memstore"
)

const callbackSecret = "router-test-secret"

func init() {
	gin.SetMode(gin.TestMode)
	if err := validation.RegisterGinValidators(); err != nil {
		panic(err)
	}
}

type nopMailer struct{}

func (nopMailer) SendWelcomeEmail(string, string) error { return nil }
func (nopMailer) SendInvoiceIssued(string, string, email.InvoiceNotice) error { return nil }
func (nopMailer) SendPaymentConfirmed(string, string, email.PaymentNotice) error { return nil }

var _ email.EmailService = nopMailer{}

type testApp struct {
	router     *gin.Engine
	db         *memstore.DB
	jwt        *auth.JWTService
	users      *services.UserService
	apartments *services.ApartmentService
	seq        int
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	db := memstore.New()
	log := zerolog.Nop()
	jwtService := auth.NewJWTService(auth.JWTConfig{
		SecretKey:       "router-test",
		AccessTokenExp:  15 * time.Minute,
		RefreshTokenExp: time.Hour,
		TokenIssuer:     "stayease-test",
	})
	storage, err := filestorage.NewLocalStorage(t.TempDir(), "/uploads", 1<<20)
	require.NoError(t, err)

	hub := websocket.NewHub(log)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)

	users := services.NewUserService(db, db.Users, db.Apartments, db.Invoices, db.Tokens, log)
	apartments := services.NewApartmentService(db, db.Apartments, db.Users, log)
	requests := services.NewServiceRequestService(db, db.ServiceRequests, db.Users, hub, log)
	hub.SetInbound(requests.HandleInbound)

	c := routes.Controllers{
		Auth:      controllers.NewAuthController(services.NewAuthService(db.Users, db.Tokens, jwtService, nopMailer{}, log), log),
		User:      controllers.NewUserController(users),
		Apartment: controllers.NewApartmentController(apartments),
		Amenity:   controllers.NewAmenityController(services.NewAmenityService(db.Amenities, log)),
		Invoice: controllers.NewInvoiceController(
			services.NewInvoiceService(db, db.Invoices, db.Transactions, db.Users, db.Apartments, nopMailer{}, log)),
		Payment: controllers.NewPaymentController(services.NewPaymentService(db, db.Invoices, db.Transactions, db.Users, nopMailer{},
			services.PaymentConfig{
				BaseURL:        "http://stayease.test",
				CallbackSecret: callbackSecret,
				Account:        qrpay.Account{BankBIN: "970436", AccountNumber: "0011001234567", AccountName: "STAYEASE"},
			}, log), log),
		Post:           controllers.NewPostController(services.NewPostService(db.Posts, log)),
		ServiceRequest: controllers.NewServiceRequestController(requests, hub, log),
		Dashboard:      controllers.NewDashboardController(services.NewDashboardService(db.Users, db.Apartments, db.Invoices, db.ServiceRequests, log)),
		Upload:         controllers.NewUploadController(services.NewUploadService(storage, log)),
	}

	router := gin.New()
	router.Use(middleware.Recovery(), middleware.JSONCase())
	router.NoRoute(middleware.NoRoute)
	routes.SetupRouter(router, c, middleware.NewAuthMiddleware(jwtService), t.TempDir())

	return &testApp{router: router, db: db, jwt: jwtService, users: users, apartments: apartments}
}

// login creates a user with role and returns a bearer token for it
func (a *testApp) login(t *testing.T, role models.Role) (*models.User, string) {
	t.Helper()
	a.seq++
	u, err := a.users.Create(context.Background(), &dto.CreateUserRequest{
		Email:    fmt.Sprintf("%s%d@stayease.vn", role, a.seq),
		Password: "password123",
		FullName: fmt.Sprintf("%s %d", role, a.seq),
		Role:     role,
	})
	require.NoError(t, err)
	return u, a.token(t, u)
}

func (a *testApp) token(t *testing.T, u *models.User) string {
	t.Helper()
	pair, err := a.jwt.GenerateTokenPair(u)
	require.NoError(t, err)
	return pair.AccessToken
}

func (a *testApp) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

type envelope struct {
	Success bool             `json:"success"`
	Message string           `json:"message"`
	Data    json.RawMessage  `json:"data"`
	Error   *dto.ErrorDetail `json:"error"`
}

// decode unmarshals the envelope and its data into out, which may be nil
func decode(t *testing.T, w *httptest.ResponseRecorder, out interface{}) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	if out != nil {
		require.NoError(t, json.Unmarshal(env.Data, out), string(env.Data))
	}
	return env
}
