// Package main is the entry point for the profiler administration CLI.
package main

import (
	"context"
	"fmt"
	"os"

	"profileapp/cmd/adm/commands"
	"profileapp/internal/config"
	"profileapp/internal/database"
	"profileapp/internal/observability"
	"profileapp/internal/services"

	"github.com/spf13/cobra"
)

func main() {
	ctx := context.Background()

	cfg, err := config.NewConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// CLI runs are short-lived; keep logs quiet and skip OTLP export
	cfg.Server.LogLevel = "error"
	cfg.OpenTelemetry.EnableTracing = false
	cfg.OpenTelemetry.EnableMetrics = false
	cfg.OpenTelemetry.EnableLogging = false

	tp, mp, logger, err := observability.SetupObservability(&cfg.OpenTelemetry, "profiler-admin")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize observability: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		if tp, ok := tp.(interface{ Shutdown(context.Context) error }); ok {
			if err := tp.Shutdown(context.TODO()); err != nil {
				logger.Warn(ctx, "Error shutting down tracer provider", map[string]interface{}{"error": err.Error(), "provider": "tracer"})
			}
		}
		if mp != nil {
			if err := mp.Shutdown(context.TODO()); err != nil {
				logger.Warn(ctx, "Error shutting down meter provider", map[string]interface{}{"error": err.Error(), "provider": "meter"})
			}
		}
	}()

	dbManager := database.NewManager(logger)
	db, err := dbManager.InitDBWithoutMigrations(cfg.Database)
	if err != nil {
		logger.Error(ctx, "Failed to connect to database", err, map[string]interface{}{"db_url": cfg.Database.URL})
		os.Exit(1)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Warn(ctx, "Failed to close database connection", map[string]interface{}{"error": err.Error()})
		}
	}()

	visitorService := services.NewVisitorService(db, cfg, logger)
	responseService := services.NewResponseService(db, cfg, logger)
	aiService := services.NewAIService(cfg, logger, responseService)
	profileService := services.NewProfileService(cfg, logger, visitorService, responseService, aiService)

	rootCmd := &cobra.Command{
		Use:   "adm",
		Short: "Visitor Profiler Administration Tool",
		Long: `Visitor Profiler Administration Tool

CLI for inspecting the visitor ledger and generating profile summaries.`,

		Run: func(cmd *cobra.Command, _ []string) {
			if err := cmd.Help(); err != nil {
				fmt.Printf("Error showing help: %v\n", err)
			}
		},
	}

	rootCmd.AddCommand(commands.VisitorCommands(visitorService, responseService, logger))
	rootCmd.AddCommand(commands.ProfileCommands(profileService, logger))

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
