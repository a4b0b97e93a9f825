package bootstrap

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	appControllers "github.com/stayease/stayease-api/internal/app/controllers"
	appMigrations "github.com/stayease/stayease-api/internal/app/migrations"
	appRepos "github.com/stayease/stayease-api/internal/app/repositories"
	appRoutes "github.com/stayease/stayease-api/internal/app/routes"
	appServices "github.com/stayease/stayease-api/internal/app/services"
	"github.com/stayease/stayease-api/internal/config"
	"github.com/stayease/stayease-api/internal/db"
	appMiddleware "github.com/stayease/stayease-api/internal/middleware"
	pkgAuth "github.com/stayease/stayease-api/internal/pkg/auth"
	"github.com/stayease/stayease-api/internal/pkg/email"
	"github.com/stayease/stayease-api/internal/pkg/filestorage"
	"github.com/stayease/stayease-api/internal/pkg/helpers"
	"github.com/stayease/stayease-api/internal/pkg/logger"
	"github.com/stayease/stayease-api/internal/pkg/qrpay"
	"github.com/stayease/stayease-api/internal/pkg/validation"
	"github.com/stayease/stayease-api/internal/pkg/websocket"
	"github.com/stayease/stayease-api/migrations"
)

// The PostgreSQL repositories back every store the services depend on
var (
	_ appServices.Transactor          = (*db.PostgresDB)(nil)
	_ appServices.UserStore           = (*appRepos.UserRepository)(nil)
	_ appServices.TokenStore          = (*appRepos.TokenRepository)(nil)
	_ appServices.ApartmentStore      = (*appRepos.ApartmentRepository)(nil)
	_ appServices.AmenityStore        = (*appRepos.AmenityRepository)(nil)
	_ appServices.InvoiceStore        = (*appRepos.InvoiceRepository)(nil)
	_ appServices.TransactionStore    = (*appRepos.TransactionRepository)(nil)
	_ appServices.PostStore           = (*appRepos.PostRepository)(nil)
	_ appServices.ServiceRequestStore = (*appRepos.ServiceRequestRepository)(nil)
)

// DefaultConfigPath is where the config file is looked up relative to the working directory
var DefaultConfigPath = filepath.Join("configs", "config.yaml")

// Dependencies holds all the application dependencies
type Dependencies struct {
	DB    *db.PostgresDB
	Repos *appRepos.Repositories
	Hub   *websocket.Hub

	JWTService  *pkgAuth.JWTService
	Mailer      email.EmailService
	FileStorage *filestorage.LocalStorage

	AuthService           *appServices.AuthService
	UserService           *appServices.UserService
	ApartmentService      *appServices.ApartmentService
	AmenityService        *appServices.AmenityService
	InvoiceService        *appServices.InvoiceService
	PaymentService        *appServices.PaymentService
	PostService           *appServices.PostService
	ServiceRequestService *appServices.ServiceRequestService
	DashboardService      *appServices.DashboardService
	UploadService         *appServices.UploadService

	AuthMiddleware *appMiddleware.AuthMiddleware
	Controllers    appRoutes.Controllers
	Logger         zerolog.Logger
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger(configPath string) (*config.Config, zerolog.Logger, error) {
	if configPath == "" {
		configPath = DefaultConfigPath
	}
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Str("path", configPath).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	lgr := logger.Configure(logger.ConfigFromStrings(cfg.Logging.Level, cfg.Logging.Format))
	lgr.Info().Str("logLevel", cfg.Logging.Level).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// ConnectDatabase opens the connection pool
func ConnectDatabase(cfg *config.Config, lgr zerolog.Logger) (*db.PostgresDB, error) {
	lgr.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}
	lgr.Info().Msg("Database connection successfully established.")
	return database, nil
}

// RunMigrations applies the embedded SQL migrations
func RunMigrations(ctx context.Context, database *db.PostgresDB, lgr zerolog.Logger) error {
	lgr.Info().Msg("Running database migrations...")
	migrator := appMigrations.NewMigrator(database.Pool, lgr.With().Str("component", "migrator").Logger())
	if err := migrator.Migrate(ctx, migrations.FS); err != nil {
		lgr.Error().Err(err).Msg("Database migration error")
		return fmt.Errorf("database migrations failed: %w", err)
	}
	lgr.Info().Msg("Database migrations successfully applied.")
	return nil
}

// SetupDatabase connects and migrates
func SetupDatabase(cfg *config.Config, lgr zerolog.Logger) (*db.PostgresDB, error) {
	database, err := ConnectDatabase(cfg, lgr)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	if err := RunMigrations(ctx, database, lgr); err != nil {
		database.Close()
		return nil, err
	}
	return database, nil
}

// BuildDependencies initializes application repositories, services, and controllers.
func BuildDependencies(cfg *config.Config, database *db.PostgresDB, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{DB: database, Logger: lgr}
	deps.Repos = appRepos.NewRepositories(database)

	if err := validation.RegisterGinValidators(); err != nil {
		return nil, fmt.Errorf("failed to register validators: %w", err)
	}

	var err error
	deps.FileStorage, err = filestorage.NewLocalStorage(cfg.Server.StoragePath, "/uploads", cfg.Upload.MaxImageSize)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to initialize file storage")
		return nil, fmt.Errorf("failed to initialize file storage: %w", err)
	}

	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:       cfg.JWT.Secret,
		AccessTokenExp:  helpers.ParseDuration(cfg.JWT.AccessTokenExpiration, 1*time.Hour),
		RefreshTokenExp: helpers.ParseDuration(cfg.JWT.RefreshTokenExpiration, 720*time.Hour),
		TokenIssuer:     cfg.JWT.Issuer,
	})

	deps.Mailer = email.NewEmailService(email.SMTPConfig{
		Host:      cfg.SMTP.Host,
		Port:      cfg.SMTP.Port,
		Username:  cfg.SMTP.Username,
		Password:  cfg.SMTP.Password,
		FromName:  cfg.SMTP.FromName,
		FromEmail: cfg.SMTP.FromEmail,
		UseTLS:    cfg.SMTP.UseTLS,
		BaseURL:   cfg.Server.BaseURL,
	}, logger.Component("email"))

	websocket.SetAllowedOrigins(cfg.Origins())
	deps.Hub = websocket.NewHub(logger.Component("websocket"))

	repos := deps.Repos
	deps.AuthService = appServices.NewAuthService(repos.Users, repos.Tokens, deps.JWTService, deps.Mailer, logger.Component("auth"))
	deps.UserService = appServices.NewUserService(database, repos.Users, repos.Apartments, repos.Invoices, repos.Tokens, logger.Component("users"))
	deps.ApartmentService = appServices.NewApartmentService(database, repos.Apartments, repos.Users, logger.Component("apartments"))
	deps.AmenityService = appServices.NewAmenityService(repos.Amenities, logger.Component("amenities"))
	deps.InvoiceService = appServices.NewInvoiceService(database, repos.Invoices, repos.Transactions, repos.Users, repos.Apartments,
		deps.Mailer, logger.Component("invoices"))
	deps.PaymentService = appServices.NewPaymentService(database, repos.Invoices, repos.Transactions, repos.Users, deps.Mailer,
		appServices.PaymentConfig{
			BaseURL:        cfg.Server.BaseURL,
			CallbackSecret: cfg.Payment.CallbackSecret,
			QRExpiry:       helpers.ParseDuration(cfg.Payment.QRExpiry, 15*time.Minute),
			CodePrefix:     cfg.Payment.TransactionPref,
			Account: qrpay.Account{
				BankBIN:       cfg.Payment.BankBIN,
				AccountNumber: cfg.Payment.AccountNumber,
				AccountName:   cfg.Payment.AccountName,
			},
		}, logger.Component("payments"))
	deps.PostService = appServices.NewPostService(repos.Posts, logger.Component("posts"))
	deps.ServiceRequestService = appServices.NewServiceRequestService(database, repos.ServiceRequests, repos.Users, deps.Hub,
		logger.Component("service_requests"))
	deps.DashboardService = appServices.NewDashboardService(repos.Users, repos.Apartments, repos.Invoices, repos.ServiceRequests,
		logger.Component("dashboard"))
	deps.UploadService = appServices.NewUploadService(deps.FileStorage, logger.Component("upload"))

	// Messages typed into an open socket are stored like REST ones
	deps.Hub.SetInbound(deps.ServiceRequestService.HandleInbound)

	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.JWTService)

	deps.Controllers = appRoutes.Controllers{
		Auth:           appControllers.NewAuthController(deps.AuthService, lgr),
		User:           appControllers.NewUserController(deps.UserService),
		Apartment:      appControllers.NewApartmentController(deps.ApartmentService),
		Amenity:        appControllers.NewAmenityController(deps.AmenityService),
		Invoice:        appControllers.NewInvoiceController(deps.InvoiceService),
		Payment:        appControllers.NewPaymentController(deps.PaymentService, logger.Component("payments")),
		Post:           appControllers.NewPostController(deps.PostService),
		ServiceRequest: appControllers.NewServiceRequestController(deps.ServiceRequestService, deps.Hub, logger.Component("websocket")),
		Dashboard:      appControllers.NewDashboardController(deps.DashboardService),
		Upload:         appControllers.NewUploadController(deps.UploadService),
	}

	return deps, nil
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) *gin.Engine {
	if strings.ToLower(cfg.Server.Mode) == "production" {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	} else {
		gin.SetMode(gin.DebugMode)
		lgr.Info().Msg("Setting Gin mode to debug")
	}

	router := gin.New()
	router.Use(
		appMiddleware.Recovery(),
		appMiddleware.RequestLogger(logger.Component("http")),
		appMiddleware.CORS(cfg.Origins()),
		appMiddleware.JSONCase(),
	)
	router.NoRoute(appMiddleware.NoRoute)

	appRoutes.SetupRouter(router, deps.Controllers, deps.AuthMiddleware, cfg.Server.StoragePath)

	return router
}
