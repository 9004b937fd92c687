// Package main provides a one-shot scoring CLI over stored data.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/stock-compass/internal/config"
	"github.com/yourusername/stock-compass/internal/database"
	applogger "github.com/yourusername/stock-compass/internal/logger"
	"github.com/yourusername/stock-compass/internal/metrics"
	"github.com/yourusername/stock-compass/internal/models"
	"github.com/yourusername/stock-compass/internal/repository"
	"github.com/yourusername/stock-compass/internal/service"
)

func main() {
	var (
		configPath = flag.String("config", "config/config.yaml", "Path to config file")
		stockCode  = flag.String("stock", "", "Stock code to score")
		ranking    = flag.Bool("ranking", false, "Print the score ranking instead of scoring one stock")
		limit      = flag.Int("limit", 20, "Ranking size")
		date       = flag.String("date", "", "Ranking date (YYYY-MM-DD), defaults to today")
	)
	flag.Parse()

	logger := applogger.NewLogger("warn")
	ctx := context.Background()

	if *stockCode == "" && !*ranking {
		fmt.Fprintln(os.Stderr, "either -stock or -ranking is required")
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.WithError(err).Fatal("Failed to load config")
	}
	if err := config.Validate(cfg); err != nil {
		logger.WithError(err).Fatal("Invalid configuration")
	}
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

	svc := service.NewAnalysisService(repos, cfg.Analysis, logger)

	if *ranking {
		printRanking(ctx, svc, *date, *limit, logger)
		return
	}
	printScore(ctx, svc, *stockCode, logger)
}

func printScore(ctx context.Context, svc *service.AnalysisService, stockCode string, logger *logrus.Logger) {
	result, err := svc.AnalyzeStock(ctx, stockCode)
	if err != nil {
		logger.WithError(err).Fatal("Analysis failed")
	}

	fmt.Printf("Stock: %s\n", result.StockCode)
	fmt.Printf("Total Score: %.1f (%s)\n", result.TotalScore, result.Grade)
	fmt.Printf("  Technical:   %5.1f / %.0f\n", result.Breakdown.Technical.Value, result.Breakdown.Technical.Max)
	fmt.Printf("  Fundamental: %5.1f / %.0f\n", result.Breakdown.Fundamental.Value, result.Breakdown.Fundamental.Max)
	fmt.Printf("  Sentiment:   %5.1f / %.0f (%s)\n", result.Breakdown.Sentiment.Value, result.Breakdown.Sentiment.Max, result.SentimentSource)
	fmt.Printf("  Liquidity:   %5.1f\n", result.Breakdown.LiquidityPenalty.Value)
	if result.IsLossCompany {
		fmt.Println("  Flag: loss-making company")
	}
	if result.DataInsufficient {
		fmt.Println("  Flag: insufficient data, components scored at midpoints")
	}
}

func printRanking(ctx context.Context, svc *service.AnalysisService, rawDate string, limit int, logger *logrus.Logger) {
	date := time.Now()
	if rawDate != "" {
		parsed, err := time.Parse("2006-01-02", rawDate)
		if err != nil {
			logger.WithError(err).Fatal("Invalid -date")
		}
		date = parsed
	}

	results, err := svc.GetRanking(ctx, date, limit)
	if err != nil {
		logger.WithError(err).Fatal("Ranking query failed")
	}
	if len(results) == 0 {
		fmt.Printf("No analysis results for %s\n", date.Format("2006-01-02"))
		return
	}

	fmt.Printf("Ranking for %s\n", date.Format("2006-01-02"))
	for i, result := range results {
		fmt.Printf("%3d. %s  %5.1f  %-2s%s\n", i+1, result.StockCode, result.TotalScore, result.Grade, lossMarker(result))
	}
}

func lossMarker(result *models.AnalysisResult) string {
	if result.IsLossCompany {
		return "  (loss)"
	}
	return ""
}
