// Package main provides the entry point for the analysis API server.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/stock-compass/internal/api"
	"github.com/yourusername/stock-compass/internal/config"
	"github.com/yourusername/stock-compass/internal/database"
	"github.com/yourusername/stock-compass/internal/datasource"
	applogger "github.com/yourusername/stock-compass/internal/logger"
	"github.com/yourusername/stock-compass/internal/metrics"
	"github.com/yourusername/stock-compass/internal/repository"
	"github.com/yourusername/stock-compass/internal/service"
)

func main() {
	configPath := "config/config.yaml"
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		configPath = path
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if os.Getenv("AWS_SECRETS_ENABLED") == "true" {
		region := os.Getenv("AWS_REGION")
		secretName := os.Getenv("AWS_SECRET_NAME")
		if region == "" || secretName == "" {
			log.Fatalf("AWS_REGION and AWS_SECRET_NAME environment variables must be set when AWS_SECRETS_ENABLED is true")
		}
		if err := config.LoadSecretsFromAWS(cfg, region, secretName); err != nil {
			log.Fatalf("Failed to load secrets: %v", err)
		}
	}

	if err := config.Validate(cfg); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logger := applogger.NewLogger(cfg.App.LogLevel)
	metrics.InitRegistry()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewDB(ctx, &cfg.Database)
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to database")
	}
	defer db.Close()

	repos, err := repository.NewRepositories(db)
	if err != nil {
		logger.WithError(err).Fatal("Failed to create repositories")
	}

	sources, err := datasource.NewFactory(cfg, logger).NewSources()
	if err != nil {
		logger.WithError(err).Fatal("Failed to create data sources")
	}
	defer sources.Close()

	analysisSvc := service.NewAnalysisService(repos, cfg.Analysis, logger)
	collectionSvc := service.NewCollectionService(sources, repos, cfg.Analysis.NewsLookbackDays, logger)
	backtestSvc := service.NewBacktestService(repos.Price, repos.BacktestRun, cfg.Backtest.WorkerCount, logger)

	server := api.NewServer(cfg.API, repos.Stock, analysisSvc, backtestSvc, collectionSvc, logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	logger.WithFields(logrus.Fields{
		"environment": cfg.App.Environment,
		"addr":        cfg.APIAddress(),
	}).Info("Stock Compass API server running")

	select {
	case err := <-errCh:
		if err != nil {
			logger.WithError(err).Error("API server failed")
		}
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("API server shutdown failed")
	}
}
