package backtest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// GenerateConsoleReport formats the report for terminal output
func GenerateConsoleReport(report Report) string {
	var builder strings.Builder
	builder.WriteString("Backtest Report\n")
	builder.WriteString("================\n")
	builder.WriteString(fmt.Sprintf("Run ID: %s\n", report.RunID))
	builder.WriteString(fmt.Sprintf("Strategy: %s\n", report.Strategy))
	builder.WriteString(fmt.Sprintf("Period: %s to %s (%d trading days)\n",
		report.StartDate.Format("2006-01-02"), report.EndDate.Format("2006-01-02"), report.TradingDays))
	builder.WriteString(fmt.Sprintf("Total Trades: %d\n", report.TotalTrades))
	builder.WriteString(fmt.Sprintf("Win Rate: %.2f%%\n", report.WinRate))
	builder.WriteString(fmt.Sprintf("Average Return: %.2f%%\n", report.AvgReturnPct))
	builder.WriteString(fmt.Sprintf("Total Return: %.2f%%\n", report.TotalReturnPct))
	builder.WriteString(fmt.Sprintf("Max Drawdown: %.2f%%\n", report.MaxDrawdownPct))
	if report.TotalTrades > 0 {
		builder.WriteString(fmt.Sprintf("Profit Factor: %.2f\n", report.ProfitFactor))
		builder.WriteString(fmt.Sprintf("Sharpe Ratio: %.2f\n", report.SharpeRatio))
		builder.WriteString(fmt.Sprintf("Best Trade: %.2f%%\n", report.BestTradePct))
		builder.WriteString(fmt.Sprintf("Worst Trade: %.2f%%\n", report.WorstTradePct))
		builder.WriteString(fmt.Sprintf("Avg Holding Days: %.1f\n", report.AvgHoldingDays))
	}
	return builder.String()
}

// WriteJSONReport persists the full report, trades included
func WriteJSONReport(report Report, outputPath string) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(outputPath, data, 0o644)
}

// GenerateCSVExport exports trade rows for spreadsheets
func GenerateCSVExport(report Report, outputPath string) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	var builder strings.Builder
	builder.WriteString("entry_date,exit_date,days_held,return_pct,reason,codes\n")
	for _, trade := range report.Trades {
		codes := make([]string, len(trade.Holdings))
		for i, h := range trade.Holdings {
			codes[i] = h.Code
		}
		builder.WriteString(fmt.Sprintf("%s,%s,%d,%.4f,%s,%s\n",
			trade.EntryDate.Format("2006-01-02"),
			trade.ExitDate.Format("2006-01-02"),
			trade.DaysHeld,
			trade.ReturnPct,
			trade.Reason,
			strings.Join(codes, "|"),
		))
	}
	return os.WriteFile(outputPath, []byte(builder.String()), 0o644)
}
