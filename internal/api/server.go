// Package api exposes the analysis and backtest services over HTTP.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/stock-compass/internal/backtest"
	"github.com/yourusername/stock-compass/internal/config"
	"github.com/yourusername/stock-compass/internal/metrics"
	"github.com/yourusername/stock-compass/internal/models"
	"github.com/yourusername/stock-compass/internal/repository"
	"github.com/yourusername/stock-compass/internal/service"
)

// AnalysisAPI is the slice of the analysis service the handlers use.
type AnalysisAPI interface {
	AnalyzeStock(ctx context.Context, stockCode string) (*models.AnalysisResult, error)
	AnalyzeAll(ctx context.Context) (*service.BatchResult, error)
	GetLatest(ctx context.Context, stockCode string) (*models.AnalysisResult, error)
	GetRanking(ctx context.Context, date time.Time, limit int) ([]*models.AnalysisResult, error)
	RateNews(ctx context.Context, stockCode string, newsID uuid.UUID, rating *float64) error
}

// BacktestAPI is the slice of the backtest service the handlers use.
type BacktestAPI interface {
	Run(ctx context.Context, params backtest.Params) (*backtest.Report, error)
	GetRun(ctx context.Context, id uuid.UUID) (*models.BacktestRun, error)
	ListRuns(ctx context.Context, stockCode string, limit int) ([]*models.BacktestRun, error)
}

// CollectionAPI is the slice of the collection service the handlers use.
type CollectionAPI interface {
	CollectAll(ctx context.Context) (*service.CollectionSummary, error)
}

// Server is the HTTP API server
type Server struct {
	cfg        config.APIConfig
	engine     *gin.Engine
	httpServer *http.Server
	logger     *logrus.Logger

	stocks     repository.StockRepository
	analysis   AnalysisAPI
	backtests  BacktestAPI
	collection CollectionAPI
}

// NewServer creates the API server and registers all routes
func NewServer(
	cfg config.APIConfig,
	stocks repository.StockRepository,
	analysis AnalysisAPI,
	backtests BacktestAPI,
	collection CollectionAPI,
	logger *logrus.Logger,
) *Server {
	if logger == nil {
		logger = logrus.New()
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(requestLogger(logger))

	s := &Server{
		cfg:        cfg,
		engine:     engine,
		logger:     logger,
		stocks:     stocks,
		analysis:   analysis,
		backtests:  backtests,
		collection: collection,
	}
	s.registerRoutes()

	return s
}

func (s *Server) registerRoutes() {
	s.engine.GET("/healthz", s.handleHealthz)
	s.engine.GET("/metrics", gin.WrapH(metrics.Handler()))

	v1 := s.engine.Group("/api/v1")
	{
		v1.GET("/stocks", s.handleListStocks)
		v1.POST("/stocks", s.handleCreateStock)
		v1.GET("/stocks/:code", s.handleGetStock)
		v1.DELETE("/stocks/:code", s.handleDeleteStock)

		v1.GET("/stocks/:code/analysis", s.handleGetAnalysis)
		v1.POST("/stocks/:code/analysis", s.handleRunAnalysis)
		v1.GET("/ranking", s.handleRanking)
		v1.PUT("/news/:id/rating", s.handleRateNews)

		v1.POST("/backtest", s.handleRunBacktest)
		v1.GET("/backtest/:id", s.handleGetBacktest)
		v1.GET("/stocks/:code/backtests", s.handleListBacktests)

		v1.POST("/admin/collect", s.handleCollectAll)
		v1.POST("/admin/analyze", s.handleAnalyzeAll)

		if s.cfg.EnableWebSocket {
			v1.GET("/ws/backtest", s.handleBacktestStream)
		}
	}
}

// Handler returns the underlying http.Handler, used by tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Start begins serving requests. It blocks until the listener fails or
// Shutdown is called.
func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:         s.addr(),
		Handler:      s.engine,
		ReadTimeout:  time.Duration(s.cfg.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(s.cfg.WriteTimeoutSeconds) * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.WithField("addr", s.httpServer.Addr).Info("API server starting")

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests and stops the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	s.logger.Info("API server shutting down")
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) addr() string {
	return fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
}

// requestLogger logs one line per request with latency and status
func requestLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		entry := logger.WithFields(logrus.Fields{
			"method":  c.Request.Method,
			"path":    c.FullPath(),
			"status":  c.Writer.Status(),
			"latency": time.Since(start).String(),
		})
		if len(c.Errors) > 0 {
			entry.Warn(c.Errors.String())
		} else {
			entry.Debug("request handled")
		}
	}
}
