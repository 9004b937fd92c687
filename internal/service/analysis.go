package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/stock-compass/internal/config"
	"github.com/yourusername/stock-compass/internal/logger"
	"github.com/yourusername/stock-compass/internal/metrics"
	"github.com/yourusername/stock-compass/internal/models"
	"github.com/yourusername/stock-compass/internal/repository"
	"github.com/yourusername/stock-compass/internal/scoring"
)

// AnalysisService computes and persists composite scores
type AnalysisService struct {
	stockRepo     repository.StockRepository
	priceRepo     repository.PriceRepository
	financialRepo repository.FinancialRepository
	newsRepo      repository.NewsRepository
	analysisRepo  repository.AnalysisRepository
	scorer        *scoring.Scorer
	cache         *ResultCache
	log           *logger.AnalysisLogger

	workerCount      int
	newsLookbackDays int
	priceHistoryDays int
}

// BatchResult summarizes a full-universe analysis pass
type BatchResult struct {
	Completed int           `json:"completed"`
	Failed    int           `json:"failed"`
	Duration  time.Duration `json:"duration"`
}

// NewAnalysisService creates a new analysis service
func NewAnalysisService(
	repos *repository.Repositories,
	cfg config.AnalysisConfig,
	baseLogger *logrus.Logger,
) *AnalysisService {
	workerCount := cfg.WorkerCount
	if workerCount <= 0 {
		workerCount = 4
	}

	return &AnalysisService{
		stockRepo:        repos.Stock,
		priceRepo:        repos.Price,
		financialRepo:    repos.Financial,
		newsRepo:         repos.News,
		analysisRepo:     repos.Analysis,
		scorer:           scoring.NewScorer(),
		cache:            NewResultCache(time.Duration(cfg.CacheTTLSeconds) * time.Second),
		log:              logger.NewAnalysisLogger(baseLogger),
		workerCount:      workerCount,
		newsLookbackDays: cfg.NewsLookbackDays,
		priceHistoryDays: cfg.PriceHistoryDays,
	}
}

// AnalyzeStock scores one stock from its stored prices, financials and
// news, persists the result and caches it. Missing financials or news
// are scored as absent data, not treated as failures. A code that is
// not registered at all fails with models.ErrUnknownStock.
func (s *AnalysisService) AnalyzeStock(ctx context.Context, stockCode string) (*models.AnalysisResult, error) {
	if cached := s.cache.Get(stockCode); cached != nil {
		return cached, nil
	}

	if _, err := s.stockRepo.GetByCode(ctx, stockCode); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", models.ErrUnknownStock, stockCode)
		}
		return nil, fmt.Errorf("loading stock %s: %w", stockCode, err)
	}

	started := time.Now()

	bars, err := s.priceRepo.GetRecent(ctx, stockCode, s.priceHistoryDays)
	if err != nil {
		return nil, fmt.Errorf("loading prices for %s: %w", stockCode, err)
	}

	var snapshot models.FinancialSnapshot
	if fin, err := s.financialRepo.GetByCode(ctx, stockCode); err == nil {
		snapshot = *fin
	} else if !errors.Is(err, models.ErrNotFound) {
		return nil, fmt.Errorf("loading financials for %s: %w", stockCode, err)
	}
	snapshot.StockCode = stockCode

	since := time.Now().AddDate(0, 0, -s.newsLookbackDays)
	news, err := s.newsRepo.GetRecent(ctx, stockCode, since)
	if err != nil {
		return nil, fmt.Errorf("loading news for %s: %w", stockCode, err)
	}

	result := s.scorer.ScoreStock(stockCode, time.Now(), bars, snapshot, news)

	if err := s.analysisRepo.Save(ctx, &result); err != nil {
		return nil, fmt.Errorf("saving analysis for %s: %w", stockCode, err)
	}

	s.cache.Set(stockCode, &result)
	metrics.RecordAnalysis("success", string(result.SentimentSource), time.Since(started).Seconds())
	metrics.RecordCompositeScore(result.TotalScore)
	s.log.LogScoreComputed(
		stockCode,
		result.TotalScore,
		string(result.Grade),
		string(result.SentimentSource),
		result.DataInsufficient,
		float64(time.Since(started).Milliseconds()),
	)

	return &result, nil
}

// AnalyzeAll scores every known stock through a worker pool. One
// stock's failure never aborts the batch.
func (s *AnalysisService) AnalyzeAll(ctx context.Context) (*BatchResult, error) {
	stocks, err := s.stockRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing stocks: %w", err)
	}

	started := time.Now()
	codes := make(chan string)
	var wg sync.WaitGroup
	var mu sync.Mutex
	result := &BatchResult{}
	gradeCounts := make(map[string]int)

	for i := 0; i < s.workerCount; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for code := range codes {
				scored, err := s.AnalyzeStock(ctx, code)

				mu.Lock()
				if err != nil {
					result.Failed++
					metrics.RecordAnalysis("failure", "", 0)
					s.log.LogScoringFailure(code, err)
				} else {
					result.Completed++
					gradeCounts[string(scored.Grade)]++
				}
				done := result.Completed + result.Failed
				if done%50 == 0 || done == len(stocks) {
					s.log.LogBatchProgress(result.Completed, len(stocks), result.Failed)
				}
				mu.Unlock()
			}
		}()
	}

	for _, stock := range stocks {
		select {
		case codes <- stock.Code:
		case <-ctx.Done():
			close(codes)
			wg.Wait()
			return result, ctx.Err()
		}
	}
	close(codes)
	wg.Wait()

	for grade, count := range gradeCounts {
		metrics.UpdateGradeCount(grade, float64(count))
	}

	result.Duration = time.Since(started)
	return result, nil
}

// GetLatest returns the most recent stored result for a stock,
// preferring the cache.
func (s *AnalysisService) GetLatest(ctx context.Context, stockCode string) (*models.AnalysisResult, error) {
	if cached := s.cache.Get(stockCode); cached != nil {
		return cached, nil
	}
	return s.analysisRepo.GetLatest(ctx, stockCode)
}

// GetRanking returns the top scored stocks for a date
func (s *AnalysisService) GetRanking(ctx context.Context, date time.Time, limit int) ([]*models.AnalysisResult, error) {
	return s.analysisRepo.GetRanking(ctx, date, limit)
}

// RateNews stores a manual rating for a news item and invalidates the
// stock's cached score so the override takes effect on the next read.
// A nil rating clears the manual override for that article.
func (s *AnalysisService) RateNews(ctx context.Context, stockCode string, newsID uuid.UUID, rating *float64) error {
	if rating != nil && (*rating < -10 || *rating > 10) {
		return fmt.Errorf("rating %.1f outside [-10, 10]", *rating)
	}

	if err := s.newsRepo.SetRating(ctx, newsID, rating); err != nil {
		return fmt.Errorf("setting rating: %w", err)
	}

	s.cache.Invalidate(stockCode)

	if rating != nil {
		rated, err := s.newsRepo.GetRated(ctx, stockCode)
		if err == nil {
			var sum float64
			count := 0
			for _, item := range rated {
				if item.IsRated() {
					sum += *item.Rating
					count++
				}
			}
			if count > 0 {
				s.log.LogManualOverride(stockCode, count, sum/float64(count))
			}
		}
	}

	return nil
}
