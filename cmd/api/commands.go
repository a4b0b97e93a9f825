package main

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/stayease/stayease-api/internal/bootstrap"
	"github.com/stayease/stayease-api/internal/config"
	"github.com/stayease/stayease-api/internal/db"
	"github.com/stayease/stayease-api/internal/seed"
	"github.com/stayease/stayease-api/internal/server"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run migrations and serve the HTTP API",
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, lgr, err := bootstrap.LoadConfigAndSetupLogger(configPath)
	if err != nil {
		return err
	}
	srv, err := server.NewServer(cfg, lgr)
	if err != nil {
		return fmt.Errorf("failed to initialize server: %w", err)
	}
	if err := srv.Run(); err != nil {
		return err
	}
	lgr.Info().Msg("Application finished gracefully.")
	return nil
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDatabase(func(ctx context.Context, _ *config.Config, database *db.PostgresDB, lgr zerolog.Logger) error {
				return bootstrap.RunMigrations(ctx, database, lgr)
			})
		},
	}
}

func seedCmd() *cobra.Command {
	var adminOnly bool
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create the admin account and sample apartments and amenities",
		Long: `Create the admin account configured under seed.admin_email / seed.admin_password
(SEED_ADMIN_EMAIL, SEED_ADMIN_PASSWORD) plus a few sample apartments and amenities.
Existing rows are left untouched, so the command can be run repeatedly.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDependencies(func(ctx context.Context, cfg *config.Config, deps *bootstrap.Dependencies) error {
				if adminOnly {
					return seed.EnsureAdmin(ctx, deps.UserService, cfg.Seed.AdminEmail, cfg.Seed.AdminPassword, deps.Logger)
				}
				return seed.CreateDefaultData(ctx, seed.Services{
					Users:      deps.UserService,
					Apartments: deps.ApartmentService,
					Amenities:  deps.AmenityService,
				}, cfg.Seed.AdminEmail, cfg.Seed.AdminPassword, deps.Logger)
			})
		},
	}
	cmd.Flags().BoolVar(&adminOnly, "admin-only", false, "only create the admin account")
	return cmd
}

func invoicesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "invoices",
		Short: "Invoice maintenance tasks",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "mark-overdue",
		Short: "Mark pending invoices past their due date as overdue (run daily from cron)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDependencies(func(ctx context.Context, _ *config.Config, deps *bootstrap.Dependencies) error {
				n, err := deps.InvoiceService.MarkOverdue(ctx)
				if err != nil {
					return err
				}
				deps.Logger.Info().Int64("updated", n).Msg("Overdue invoices marked")
				return nil
			})
		},
	})
	return cmd
}

// withDatabase loads config and opens the pool for a one-shot command
func withDatabase(fn func(ctx context.Context, cfg *config.Config, database *db.PostgresDB, lgr zerolog.Logger) error) error {
	cfg, lgr, err := bootstrap.LoadConfigAndSetupLogger(configPath)
	if err != nil {
		return err
	}
	database, err := bootstrap.ConnectDatabase(cfg, lgr)
	if err != nil {
		return err
	}
	defer database.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	return fn(ctx, cfg, database, lgr)
}

// withDependencies additionally migrates and builds the services
func withDependencies(fn func(ctx context.Context, cfg *config.Config, deps *bootstrap.Dependencies) error) error {
	return withDatabase(func(ctx context.Context, cfg *config.Config, database *db.PostgresDB, lgr zerolog.Logger) error {
		if err := bootstrap.RunMigrations(ctx, database, lgr); err != nil {
			return err
		}
		deps, err := bootstrap.BuildDependencies(cfg, database, lgr)
		if err != nil {
			return err
		}
		return fn(ctx, cfg, deps)
	})
}
