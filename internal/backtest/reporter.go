package backtest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// GenerateConsoleReport formats a run summary for terminal output
func GenerateConsoleReport(report *Report) string {
	var builder strings.Builder
	builder.WriteString("Backtest Report\n")
	builder.WriteString("================\n")
	builder.WriteString(fmt.Sprintf("Stock: %s\n", report.StockCode))
	builder.WriteString(fmt.Sprintf("Period: %s to %s\n",
		report.Params.StartDate.Format("2006-01-02"),
		report.Params.EndDate.Format("2006-01-02")))
	builder.WriteString(fmt.Sprintf("Thresholds: buy >= %.1f, sell < %.1f\n",
		report.Params.BuyThreshold, report.Params.SellThreshold))
	builder.WriteString(fmt.Sprintf("Total Return: %.2f%%\n", report.Metrics.TotalReturn*100))
	builder.WriteString(fmt.Sprintf("Annualized Return: %.2f%%\n", report.Metrics.AnnualizedReturn*100))
	builder.WriteString(fmt.Sprintf("Max Drawdown: %.2f%%\n", report.Metrics.MaxDrawdown*100))
	builder.WriteString(fmt.Sprintf("Sharpe Ratio: %.2f\n", report.Metrics.SharpeRatio))
	builder.WriteString(fmt.Sprintf("Win Rate: %.2f%%\n", report.Metrics.WinRate*100))
	builder.WriteString(fmt.Sprintf("Trades: %d\n", report.Metrics.TradeCount))
	builder.WriteString(fmt.Sprintf("Final Value: %.0f\n", report.Metrics.FinalValue))
	builder.WriteString(fmt.Sprintf("Buy & Hold: %.2f%%\n", report.Benchmark.BuyHoldReturn*100))
	return builder.String()
}

// WriteJSONReport writes the full report, daily ledger included, to
// outputPath, creating parent directories as needed.
func WriteJSONReport(report *Report, outputPath string) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal backtest report: %w", err)
	}
	return os.WriteFile(outputPath, data, 0o644)
}

// GenerateCSVExport exports the trade log for spreadsheets
func GenerateCSVExport(report *Report, outputPath string) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}

	var builder strings.Builder
	builder.WriteString("type,date,price,shares,score,portfolio_value_after,profit,profit_pct\n")
	for _, t := range report.Trades {
		profit, profitPct := "", ""
		if t.Profit != nil {
			profit = fmt.Sprintf("%.2f", *t.Profit)
		}
		if t.ProfitPct != nil {
			profitPct = fmt.Sprintf("%.4f", *t.ProfitPct)
		}
		builder.WriteString(fmt.Sprintf("%s,%s,%.2f,%.6f,%.1f,%.2f,%s,%s\n",
			t.Type, t.Date.Format("2006-01-02"), t.Price, t.Shares, t.Score,
			t.PortfolioValueAfter, profit, profitPct))
	}
	return os.WriteFile(outputPath, []byte(builder.String()), 0o644)
}
