// Package main provides the entry point for the backtesting CLI tool.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/stock-compass/internal/backtest"
	"github.com/yourusername/stock-compass/internal/config"
	"github.com/yourusername/stock-compass/internal/database"
	"github.com/yourusername/stock-compass/internal/metrics"
	"github.com/yourusername/stock-compass/internal/repository"
	"github.com/yourusername/stock-compass/internal/service"
)

func main() {
	var (
		configPath = flag.String("config", "config/config.yaml", "Path to config file")
		stockCode  = flag.String("stock", "", "Stock code to backtest (comma-separated for a batch)")
		startDate  = flag.String("start-date", "", "Start date (YYYY-MM-DD), defaults to one year ago")
		endDate    = flag.String("end-date", "", "End date (YYYY-MM-DD), defaults to today")
		buy        = flag.Float64("buy-threshold", -1, "Override buy threshold")
		sell       = flag.Float64("sell-threshold", -1, "Override sell threshold")
		capital    = flag.Float64("capital", 0, "Override initial capital")
		output     = flag.String("output", "", "Write the full JSON report to this path")
		csvOutput  = flag.String("csv", "", "Write the trade log CSV to this path")
	)
	flag.Parse()

	logger := newLogger()
	ctx := context.Background()

	if *stockCode == "" {
		logger.Fatal("-stock is required")
	}
	codes := splitCodes(*stockCode)

	cfg := loadConfigWithSecrets(*configPath, logger)
	metrics.InitRegistry()

	db, err := database.NewDB(ctx, &cfg.Database)
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to database")
	}
	defer db.Close()

	repos, err := repository.NewRepositories(db)
	if err != nil {
		logger.WithError(err).Fatal("Failed to create repositories")
	}

	params, err := buildParams(cfg, codes[0], *startDate, *endDate, *buy, *sell, *capital)
	if err != nil {
		logger.WithError(err).Fatal("Invalid parameters")
	}

	svc := service.NewBacktestService(repos.Price, repos.BacktestRun, cfg.Backtest.WorkerCount, logger)

	if len(codes) == 1 {
		runSingle(ctx, svc, params, *output, *csvOutput, logger)
		return
	}
	runBatch(ctx, svc, params, codes, logger)
}

func runSingle(ctx context.Context, svc *service.BacktestService, params backtest.Params, output, csvOutput string, logger *logrus.Logger) {
	report, err := svc.Run(ctx, params)
	if err != nil {
		logger.WithError(err).Fatal("Backtest failed")
	}

	fmt.Print(backtest.GenerateConsoleReport(report))

	if output != "" {
		if err := backtest.WriteJSONReport(report, output); err != nil {
			logger.WithError(err).Fatal("Failed to write JSON report")
		}
		logger.WithField("path", output).Info("JSON report written")
	}
	if csvOutput != "" {
		if err := backtest.GenerateCSVExport(report, csvOutput); err != nil {
			logger.WithError(err).Fatal("Failed to write CSV export")
		}
		logger.WithField("path", csvOutput).Info("CSV export written")
	}
}

func runBatch(ctx context.Context, svc *service.BacktestService, template backtest.Params, codes []string, logger *logrus.Logger) {
	results := svc.RunBatch(ctx, template, codes)

	failed := 0
	for _, result := range results {
		if result.Err != nil {
			failed++
			logger.WithError(result.Err).WithField("stock_code", result.StockCode).Error("Backtest failed")
			continue
		}
		m := result.Report.Metrics
		fmt.Printf("%s  return %7.2f%%  drawdown %6.2f%%  sharpe %5.2f  trades %d\n",
			result.StockCode, m.TotalReturn*100, m.MaxDrawdown*100, m.SharpeRatio, m.TradeCount)
	}
	if failed > 0 {
		logger.WithField("failed", failed).Warn("Some backtests failed")
		os.Exit(1)
	}
}

func buildParams(cfg *config.Config, stockCode, startDate, endDate string, buy, sell, capital float64) (backtest.Params, error) {
	end := time.Now()
	if endDate != "" {
		parsed, err := time.Parse("2006-01-02", endDate)
		if err != nil {
			return backtest.Params{}, fmt.Errorf("parsing end date: %w", err)
		}
		end = parsed
	}

	start := end.AddDate(-1, 0, 0)
	if startDate != "" {
		parsed, err := time.Parse("2006-01-02", startDate)
		if err != nil {
			return backtest.Params{}, fmt.Errorf("parsing start date: %w", err)
		}
		start = parsed
	}

	params := backtest.DefaultParams(stockCode, start, end)
	params.InitialCapital = cfg.Backtest.InitialCapital
	params.BuyThreshold = cfg.Backtest.BuyThreshold
	params.SellThreshold = cfg.Backtest.SellThreshold
	params.CommissionRate = cfg.Backtest.CommissionRate
	params.TaxRate = cfg.Backtest.TaxRate
	params.RiskFreeRate = cfg.Backtest.RiskFreeRate
	if cfg.Backtest.LookbackDays > 0 {
		params.LookbackDays = cfg.Backtest.LookbackDays
	}

	// Flag overrides beat config values
	if buy >= 0 {
		params.BuyThreshold = buy
	}
	if sell >= 0 {
		params.SellThreshold = sell
	}
	if capital > 0 {
		params.InitialCapital = capital
	}

	return params, nil
}

func splitCodes(raw string) []string {
	parts := strings.Split(raw, ",")
	codes := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			codes = append(codes, trimmed)
		}
	}
	return codes
}

func newLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	return logger
}

func loadConfigWithSecrets(path string, logger *logrus.Logger) *config.Config {
	cfg, err := config.Load(path)
	if err != nil {
		logger.WithError(err).Fatal("Failed to load config")
	}

	if os.Getenv("AWS_SECRETS_ENABLED") == "true" {
		region := os.Getenv("AWS_REGION")
		secretName := os.Getenv("AWS_SECRET_NAME")
		if region == "" || secretName == "" {
			logger.Fatal("AWS_REGION and AWS_SECRET_NAME must be set when AWS_SECRETS_ENABLED is true")
		}
		if err := config.LoadSecretsFromAWS(cfg, region, secretName); err != nil {
			logger.WithError(err).Fatal("Failed to load secrets")
		}
	}

	if err := config.Validate(cfg); err != nil {
		logger.WithError(err).Fatal("Invalid configuration")
	}

	return cfg
}
