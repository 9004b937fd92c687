package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/yourusername/stock-compass/internal/backtest"
)

const wsWriteTimeout = 10 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		// The API sits behind the deployment's ingress
		return true
	},
}

// backtestStreamRequest is the single message a client sends after
// connecting. The same parameter template runs against every listed
// stock.
type backtestStreamRequest struct {
	StockCodes     []string `json:"stockCodes"`
	StartDate      string   `json:"startDate"`
	EndDate        string   `json:"endDate"`
	InitialCapital *float64 `json:"initialCapital"`
	BuyThreshold   *float64 `json:"buyThreshold"`
	SellThreshold  *float64 `json:"sellThreshold"`
	CommissionRate *float64 `json:"commissionRate"`
	TaxRate        *float64 `json:"taxRate"`
	LookbackDays   *int     `json:"lookbackDays"`
	RiskFreeRate   *float64 `json:"riskFreeRate"`
}

type backtestStreamMessage struct {
	Type      string                       `json:"type"`
	StockCode string                       `json:"stockCode,omitempty"`
	Metrics   *backtest.PerformanceMetrics `json:"metrics,omitempty"`
	Error     string                       `json:"error,omitempty"`
	Completed int                          `json:"completed,omitempty"`
	Failed    int                          `json:"failed,omitempty"`
}

// handleBacktestStream runs one backtest per requested stock and pushes
// each outcome as it completes, so large batches report progress
// instead of a single response at the end.
func (s *Server) handleBacktestStream(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade already wrote the error response
		s.logger.WithError(err).Warn("websocket upgrade failed")
		return
	}
	defer conn.Close()

	var req backtestStreamRequest
	if err := conn.ReadJSON(&req); err != nil {
		s.writeStreamMessage(conn, backtestStreamMessage{Type: "error", Error: "invalid request: " + err.Error()})
		return
	}
	if len(req.StockCodes) == 0 {
		s.writeStreamMessage(conn, backtestStreamMessage{Type: "error", Error: "stockCodes must not be empty"})
		return
	}

	template, err := backtestRequest{
		StockCode:      req.StockCodes[0],
		StartDate:      req.StartDate,
		EndDate:        req.EndDate,
		InitialCapital: req.InitialCapital,
		BuyThreshold:   req.BuyThreshold,
		SellThreshold:  req.SellThreshold,
		CommissionRate: req.CommissionRate,
		TaxRate:        req.TaxRate,
		LookbackDays:   req.LookbackDays,
		RiskFreeRate:   req.RiskFreeRate,
	}.toParams()
	if err != nil {
		s.writeStreamMessage(conn, backtestStreamMessage{Type: "error", Error: err.Error()})
		return
	}

	ctx := c.Request.Context()
	completed, failed := 0, 0

	for _, code := range req.StockCodes {
		if ctx.Err() != nil {
			return
		}

		params := template
		params.StockCode = code

		report, err := s.backtests.Run(ctx, params)
		if err != nil {
			failed++
			if !s.writeStreamMessage(conn, backtestStreamMessage{Type: "result", StockCode: code, Error: err.Error()}) {
				return
			}
			continue
		}

		completed++
		if !s.writeStreamMessage(conn, backtestStreamMessage{Type: "result", StockCode: code, Metrics: &report.Metrics}) {
			return
		}
	}

	s.writeStreamMessage(conn, backtestStreamMessage{Type: "done", Completed: completed, Failed: failed})
}

func (s *Server) writeStreamMessage(conn *websocket.Conn, msg backtestStreamMessage) bool {
	conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	if err := conn.WriteJSON(msg); err != nil {
		s.logger.WithError(err).Debug("websocket write failed, client likely gone")
		return false
	}
	return true
}
