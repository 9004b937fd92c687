package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/stock-compass/internal/backtest"
	"github.com/yourusername/stock-compass/internal/metrics"
	"github.com/yourusername/stock-compass/internal/models"
	"github.com/yourusername/stock-compass/internal/repository"
)

// BacktestService runs threshold-strategy simulations from stored
// prices and persists their outcomes.
type BacktestService struct {
	priceRepo repository.PriceRepository
	runRepo   repository.BacktestRunRepository
	logger    *logrus.Logger

	workerCount int
}

// BatchRunResult pairs a stock code with its run outcome
type BatchRunResult struct {
	StockCode string
	Report    *backtest.Report
	Err       error
}

// NewBacktestService creates a new backtest service
func NewBacktestService(
	priceRepo repository.PriceRepository,
	runRepo repository.BacktestRunRepository,
	workerCount int,
	logger *logrus.Logger,
) *BacktestService {
	if workerCount <= 0 {
		workerCount = 2
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &BacktestService{
		priceRepo:   priceRepo,
		runRepo:     runRepo,
		workerCount: workerCount,
		logger:      logger,
	}
}

// Run executes one backtest. Price history is loaded from the start
// date minus the lookback window so the first simulated day can score.
func (s *BacktestService) Run(ctx context.Context, params backtest.Params) (*backtest.Report, error) {
	engine, err := backtest.NewEngine(params, nil, s.logger)
	if err != nil {
		return nil, err
	}
	params = engine.Params()

	started := time.Now()

	historyStart := params.StartDate.AddDate(0, 0, -params.LookbackDays)
	bars, err := s.priceRepo.GetRange(ctx, params.StockCode, historyStart, params.EndDate)
	if err != nil {
		return nil, fmt.Errorf("loading prices for %s: %w", params.StockCode, err)
	}
	if len(bars) == 0 {
		return nil, models.ErrNoPriceData
	}

	report, err := engine.Run(bars)
	if err != nil {
		metrics.RecordBacktestRun("failure", time.Since(started).Seconds())
		return nil, err
	}
	metrics.RecordBacktestRun("success", time.Since(started).Seconds())
	metrics.RecordBacktestReturn(report.Metrics.TotalReturn)

	if err := s.persistRun(ctx, report); err != nil {
		// The simulation itself succeeded; surface the report anyway
		s.logger.WithError(err).WithField("stock_code", params.StockCode).Error("failed to persist backtest run")
	}

	return report, nil
}

// RunBatch executes the same parameter template across several stocks
// in parallel. Each engine owns its ledger, so runs are independent.
func (s *BacktestService) RunBatch(ctx context.Context, template backtest.Params, stockCodes []string) []BatchRunResult {
	jobs := make(chan string)
	results := make([]BatchRunResult, 0, len(stockCodes))
	var mu sync.Mutex
	var wg sync.WaitGroup

	for i := 0; i < s.workerCount; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for code := range jobs {
				params := template
				params.StockCode = code
				report, err := s.Run(ctx, params)

				mu.Lock()
				results = append(results, BatchRunResult{StockCode: code, Report: report, Err: err})
				mu.Unlock()
			}
		}()
	}

	for _, code := range stockCodes {
		select {
		case jobs <- code:
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return results
		}
	}
	close(jobs)
	wg.Wait()

	return results
}

// GetRun returns a persisted run by id
func (s *BacktestService) GetRun(ctx context.Context, id uuid.UUID) (*models.BacktestRun, error) {
	return s.runRepo.GetByID(ctx, id)
}

// ListRuns returns recent persisted runs for a stock
func (s *BacktestService) ListRuns(ctx context.Context, stockCode string, limit int) ([]*models.BacktestRun, error) {
	return s.runRepo.GetByStock(ctx, stockCode, limit)
}

func (s *BacktestService) persistRun(ctx context.Context, report *backtest.Report) error {
	payload, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}

	run := &models.BacktestRun{
		ID:               uuid.New(),
		StockCode:        report.StockCode,
		StartDate:        report.Params.StartDate,
		EndDate:          report.Params.EndDate,
		InitialCapital:   report.Params.InitialCapital,
		BuyThreshold:     report.Params.BuyThreshold,
		SellThreshold:    report.Params.SellThreshold,
		TotalReturn:      report.Metrics.TotalReturn,
		AnnualizedReturn: report.Metrics.AnnualizedReturn,
		MaxDrawdown:      report.Metrics.MaxDrawdown,
		SharpeRatio:      report.Metrics.SharpeRatio,
		WinRate:          report.Metrics.WinRate,
		TradeCount:       report.Metrics.TradeCount,
		FinalValue:       report.Metrics.FinalValue,
		Report:           payload,
		CreatedAt:        time.Now(),
	}

	return s.runRepo.Save(ctx, run)
}
