package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yourusername/stock-compass/internal/backtest"
	"github.com/yourusername/stock-compass/internal/models"
)

const (
	defaultRankingLimit  = 20
	defaultBacktestLimit = 20
	dateLayout           = "2006-01-02"
)

type createStockRequest struct {
	Code   string `json:"code" binding:"required,len=6"`
	Name   string `json:"name" binding:"required"`
	Market string `json:"market" binding:"required,oneof=KOSPI KOSDAQ"`
	Sector string `json:"sector"`
}

type rateNewsRequest struct {
	StockCode string   `json:"stockCode" binding:"required"`
	Rating    *float64 `json:"rating"`
}

type backtestRequest struct {
	StockCode      string   `json:"stockCode" binding:"required"`
	StartDate      string   `json:"startDate" binding:"required"`
	EndDate        string   `json:"endDate" binding:"required"`
	InitialCapital *float64 `json:"initialCapital"`
	BuyThreshold   *float64 `json:"buyThreshold"`
	SellThreshold  *float64 `json:"sellThreshold"`
	CommissionRate *float64 `json:"commissionRate"`
	TaxRate        *float64 `json:"taxRate"`
	LookbackDays   *int     `json:"lookbackDays"`
	RiskFreeRate   *float64 `json:"riskFreeRate"`
}

// toParams fills defaults for every field the request leaves unset
func (r backtestRequest) toParams() (backtest.Params, error) {
	start, err := time.Parse(dateLayout, r.StartDate)
	if err != nil {
		return backtest.Params{}, errors.New("startDate must be formatted as " + dateLayout)
	}
	end, err := time.Parse(dateLayout, r.EndDate)
	if err != nil {
		return backtest.Params{}, errors.New("endDate must be formatted as " + dateLayout)
	}

	params := backtest.DefaultParams(r.StockCode, start, end)
	if r.InitialCapital != nil {
		params.InitialCapital = *r.InitialCapital
	}
	if r.BuyThreshold != nil {
		params.BuyThreshold = *r.BuyThreshold
	}
	if r.SellThreshold != nil {
		params.SellThreshold = *r.SellThreshold
	}
	if r.CommissionRate != nil {
		params.CommissionRate = *r.CommissionRate
	}
	if r.TaxRate != nil {
		params.TaxRate = *r.TaxRate
	}
	if r.LookbackDays != nil {
		params.LookbackDays = *r.LookbackDays
	}
	if r.RiskFreeRate != nil {
		params.RiskFreeRate = *r.RiskFreeRate
	}
	return params, nil
}

func (s *Server) handleHealthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "stock-compass",
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleListStocks(c *gin.Context) {
	limit := queryInt(c, "limit", 0)

	var (
		stocks []*models.Stock
		err    error
	)
	if market := c.Query("market"); market != "" {
		stocks, err = s.stocks.List(c.Request.Context(), models.Market(market), limit)
	} else {
		stocks, err = s.stocks.ListAll(c.Request.Context())
	}
	if err != nil {
		s.respondError(c, http.StatusInternalServerError, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"stocks": stocks, "count": len(stocks)})
}

func (s *Server) handleCreateStock(c *gin.Context) {
	var req createStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}

	now := time.Now()
	stock := &models.Stock{
		ID:        uuid.New(),
		Code:      req.Code,
		Name:      req.Name,
		Market:    models.Market(req.Market),
		Sector:    req.Sector,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.stocks.Create(c.Request.Context(), stock); err != nil {
		if errors.Is(err, models.ErrDuplicateKey) {
			s.respondError(c, http.StatusConflict, err)
			return
		}
		s.respondError(c, http.StatusInternalServerError, err)
		return
	}

	c.JSON(http.StatusCreated, stock)
}

func (s *Server) handleGetStock(c *gin.Context) {
	stock, err := s.stocks.GetByCode(c.Request.Context(), c.Param("code"))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			s.respondError(c, http.StatusNotFound, err)
			return
		}
		s.respondError(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, stock)
}

func (s *Server) handleDeleteStock(c *gin.Context) {
	if err := s.stocks.Delete(c.Request.Context(), c.Param("code")); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			s.respondError(c, http.StatusNotFound, err)
			return
		}
		s.respondError(c, http.StatusInternalServerError, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// handleGetAnalysis returns the latest stored score. With ?refresh=true
// it recomputes from stored data instead.
func (s *Server) handleGetAnalysis(c *gin.Context) {
	ctx := c.Request.Context()
	code := c.Param("code")

	var (
		result *models.AnalysisResult
		err    error
	)
	if c.Query("refresh") == "true" {
		result, err = s.analysis.AnalyzeStock(ctx, code)
	} else {
		result, err = s.analysis.GetLatest(ctx, code)
	}
	if err != nil {
		if errors.Is(err, models.ErrNotFound) || errors.Is(err, models.ErrUnknownStock) {
			s.respondError(c, http.StatusNotFound, err)
			return
		}
		s.respondError(c, http.StatusInternalServerError, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (s *Server) handleRunAnalysis(c *gin.Context) {
	result, err := s.analysis.AnalyzeStock(c.Request.Context(), c.Param("code"))
	if err != nil {
		if errors.Is(err, models.ErrUnknownStock) {
			s.respondError(c, http.StatusNotFound, err)
			return
		}
		s.respondError(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) handleRanking(c *gin.Context) {
	date := time.Now()
	if raw := c.Query("date"); raw != "" {
		parsed, err := time.Parse(dateLayout, raw)
		if err != nil {
			s.respondError(c, http.StatusBadRequest, errors.New("date must be formatted as "+dateLayout))
			return
		}
		date = parsed
	}
	limit := queryInt(c, "limit", defaultRankingLimit)

	ranking, err := s.analysis.GetRanking(c.Request.Context(), date, limit)
	if err != nil {
		s.respondError(c, http.StatusInternalServerError, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"date":    date.Format(dateLayout),
		"ranking": ranking,
		"count":   len(ranking),
	})
}

// handleRateNews stores a manual sentiment rating for one article. A
// null rating clears the override.
func (s *Server) handleRateNews(c *gin.Context) {
	newsID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		s.respondError(c, http.StatusBadRequest, fmt.Errorf("%w: news id must be a UUID", models.ErrInvalidID))
		return
	}

	var req rateNewsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}

	if err := s.analysis.RateNews(c.Request.Context(), req.StockCode, newsID, req.Rating); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			s.respondError(c, http.StatusNotFound, err)
			return
		}
		s.respondError(c, http.StatusBadRequest, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "rated"})
}

func (s *Server) handleRunBacktest(c *gin.Context) {
	var req backtestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}

	params, err := req.toParams()
	if err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}

	report, err := s.backtests.Run(c.Request.Context(), params)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrNoPriceData):
			s.respondError(c, http.StatusNotFound, err)
		case errors.Is(err, models.ErrInvalidParams):
			s.respondError(c, http.StatusBadRequest, err)
		default:
			s.respondError(c, http.StatusInternalServerError, err)
		}
		return
	}

	c.JSON(http.StatusOK, report)
}

func (s *Server) handleGetBacktest(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		s.respondError(c, http.StatusBadRequest, fmt.Errorf("%w: run id must be a UUID", models.ErrInvalidID))
		return
	}

	run, err := s.backtests.GetRun(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			s.respondError(c, http.StatusNotFound, err)
			return
		}
		s.respondError(c, http.StatusInternalServerError, err)
		return
	}

	c.JSON(http.StatusOK, run)
}

func (s *Server) handleListBacktests(c *gin.Context) {
	limit := queryInt(c, "limit", defaultBacktestLimit)

	runs, err := s.backtests.ListRuns(c.Request.Context(), c.Param("code"), limit)
	if err != nil {
		s.respondError(c, http.StatusInternalServerError, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"runs": runs, "count": len(runs)})
}

func (s *Server) handleCollectAll(c *gin.Context) {
	summary, err := s.collection.CollectAll(c.Request.Context())
	if err != nil {
		s.respondError(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (s *Server) handleAnalyzeAll(c *gin.Context) {
	result, err := s.analysis.AnalyzeAll(c.Request.Context())
	if err != nil {
		s.respondError(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) respondError(c *gin.Context, status int, err error) {
	c.Error(err)
	c.JSON(status, gin.H{"error": err.Error()})
}

func queryInt(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return fallback
	}
	return value
}
