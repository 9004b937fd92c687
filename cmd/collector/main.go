// Package main provides the data collection CLI and daemon.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/stock-compass/internal/config"
	"github.com/yourusername/stock-compass/internal/database"
	"github.com/yourusername/stock-compass/internal/datasource"
	"github.com/yourusername/stock-compass/internal/health"
	applogger "github.com/yourusername/stock-compass/internal/logger"
	"github.com/yourusername/stock-compass/internal/metrics"
	"github.com/yourusername/stock-compass/internal/repository"
	"github.com/yourusername/stock-compass/internal/scheduler"
	"github.com/yourusername/stock-compass/internal/service"
)

// Build information - set via ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
)

var (
	configFile string
	stockCode  string

	logger        *logrus.Logger
	cfg           *config.Config
	db            *database.DB
	repos         *repository.Repositories
	sources       *datasource.Sources
	collectionSvc *service.CollectionService
	analysisSvc   *service.AnalysisService
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "config/config.yaml", "Path to configuration file")
	rootCmd.PersistentFlags().StringVarP(&stockCode, "stock", "s", "", "Limit the run to one stock code")
}

var rootCmd = &cobra.Command{
	Use:   "collector",
	Short: "Collect prices, financials and news for the stock universe",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := loadConfig(); err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		return setupDependencies(cmd.Context())
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		teardownDependencies()
	},
}

var pricesCmd = &cobra.Command{
	Use:   "prices",
	Short: "Collect daily price bars",
	RunE: func(cmd *cobra.Command, args []string) error {
		return forEachStock(cmd.Context(), func(ctx context.Context, code string) error {
			n, err := collectionSvc.CollectPrices(ctx, code)
			if err != nil {
				return err
			}
			logger.WithFields(logrus.Fields{"stock_code": code, "bars": n}).Info("Prices collected")
			return nil
		})
	},
}

var financialsCmd = &cobra.Command{
	Use:   "financials",
	Short: "Collect fundamental snapshots",
	RunE: func(cmd *cobra.Command, args []string) error {
		return forEachStock(cmd.Context(), func(ctx context.Context, code string) error {
			return collectionSvc.CollectFinancials(ctx, code)
		})
	},
}

var newsCmd = &cobra.Command{
	Use:   "news",
	Short: "Collect and classify recent headlines",
	RunE: func(cmd *cobra.Command, args []string) error {
		return forEachStock(cmd.Context(), func(ctx context.Context, code string) error {
			n, err := collectionSvc.CollectNews(ctx, code)
			if err != nil {
				return err
			}
			logger.WithFields(logrus.Fields{"stock_code": code, "items": n}).Info("News collected")
			return nil
		})
	},
}

var allCmd = &cobra.Command{
	Use:   "all",
	Short: "Run a full collection pass over every stock",
	RunE: func(cmd *cobra.Command, args []string) error {
		summary, err := collectionSvc.CollectAll(cmd.Context())
		if err != nil {
			return err
		}
		logger.WithFields(logrus.Fields{
			"stocks":     summary.Stocks,
			"price_bars": summary.PriceBars,
			"news_items": summary.NewsItems,
			"financials": summary.Financials,
			"errors":     summary.Errors,
			"duration":   summary.Duration.String(),
		}).Info("Collection pass completed")
		return nil
	},
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Score every stock from stored data",
	RunE: func(cmd *cobra.Command, args []string) error {
		if stockCode != "" {
			result, err := analysisSvc.AnalyzeStock(cmd.Context(), stockCode)
			if err != nil {
				return err
			}
			fmt.Printf("%s  score %.1f  grade %s\n", result.StockCode, result.TotalScore, result.Grade)
			return nil
		}

		result, err := analysisSvc.AnalyzeAll(cmd.Context())
		if err != nil {
			return err
		}
		logger.WithFields(logrus.Fields{
			"completed": result.Completed,
			"failed":    result.Failed,
			"duration":  result.Duration.String(),
		}).Info("Analysis pass completed")
		return nil
	},
}

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Run collection and analysis on the configured schedule",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDaemon(cmd.Context())
	},
}

func main() {
	rootCmd.AddCommand(pricesCmd, financialsCmd, newsCmd, allCmd, analyzeCmd, daemonCmd)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func runDaemon(ctx context.Context) error {
	if !cfg.Scheduler.Enabled {
		return fmt.Errorf("scheduler is disabled in configuration")
	}

	sched := scheduler.NewScheduler(cfg.Scheduler, collectionSvc, analysisSvc, logger)
	if err := sched.ScheduleJobs(); err != nil {
		return err
	}

	healthServer := health.NewServer(health.Config{
		ServiceName: "stock-compass-collector",
		Version:     Version,
		Commit:      GitCommit,
		Port:        fmt.Sprintf("%d", cfg.Scheduler.HealthPort),
		Logger:      logger,
		DB:          db,
	})
	healthServer.RegisterCheck("scheduler", func(ctx context.Context) error {
		if !sched.IsRunning() {
			return fmt.Errorf("scheduler not running")
		}
		return nil
	})
	if err := healthServer.Start(ctx); err != nil {
		return err
	}

	if err := sched.Start(); err != nil {
		return err
	}
	healthServer.SetReady(true)
	logger.WithField("next_run", sched.NextRun()).Info("Collector daemon running")

	<-ctx.Done()
	logger.Info("Shutdown signal received")
	healthServer.SetReady(false)

	return sched.Stop()
}

func forEachStock(ctx context.Context, fn func(ctx context.Context, code string) error) error {
	if stockCode != "" {
		return fn(ctx, stockCode)
	}

	stocks, err := repos.Stock.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("listing stocks: %w", err)
	}

	failures := 0
	for _, stock := range stocks {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(ctx, stock.Code); err != nil {
			failures++
			logger.WithError(err).WithField("stock_code", stock.Code).Error("Collection failed")
		}
	}
	if failures > 0 {
		return fmt.Errorf("%d of %d stocks failed", failures, len(stocks))
	}
	return nil
}

func loadConfig() error {
	loaded, err := config.Load(configFile)
	if err != nil {
		return err
	}

	if os.Getenv("AWS_SECRETS_ENABLED") == "true" {
		region := os.Getenv("AWS_REGION")
		secretName := os.Getenv("AWS_SECRET_NAME")
		if region == "" || secretName == "" {
			return fmt.Errorf("AWS_REGION and AWS_SECRET_NAME must be set when AWS_SECRETS_ENABLED is true")
		}
		if err := config.LoadSecretsFromAWS(loaded, region, secretName); err != nil {
			return err
		}
	}

	if err := config.Validate(loaded); err != nil {
		return err
	}

	cfg = loaded
	return nil
}

func setupDependencies(ctx context.Context) error {
	logger = applogger.NewLogger(cfg.App.LogLevel)
	metrics.InitRegistry()

	var err error
	db, err = database.NewDB(ctx, &cfg.Database)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}

	repos, err = repository.NewRepositories(db)
	if err != nil {
		return fmt.Errorf("creating repositories: %w", err)
	}

	sources, err = datasource.NewFactory(cfg, logger).NewSources()
	if err != nil {
		return fmt.Errorf("creating data sources: %w", err)
	}

	collectionSvc = service.NewCollectionService(sources, repos, cfg.Analysis.NewsLookbackDays, logger)
	analysisSvc = service.NewAnalysisService(repos, cfg.Analysis, logger)

	return nil
}

func teardownDependencies() {
	if sources != nil {
		sources.Close()
	}
	if db != nil {
		db.Close()
	}
}
