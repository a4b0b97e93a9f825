package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/stayease/stayease-api/internal/pkg/logger"
)

// @title StayEase API
// @version 1.0
// @description API for the StayEase apartment management platform

// @BasePath /api
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT token for authorization

var configPath string

func main() {
	rootCmd := &cobra.Command{
		Use:           "stayease",
		Short:         "StayEase apartment management API",
		SilenceUsage:  true,
		SilenceErrors: true,
		// Running without a subcommand serves the API
		RunE: runServe,
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config.yaml (default configs/config.yaml)")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(seedCmd())
	rootCmd.AddCommand(invoicesCmd())

	if err := rootCmd.Execute(); err != nil {
		logger.Error().Err(err).Msg("Command failed")
		os.Exit(1)
	}
}
