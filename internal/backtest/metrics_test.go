package backtest

import (
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
)

func reportConfig() BacktestConfig {
	return BacktestConfig{
		StartDate:         time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:           time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC),
		HoldingPeriodDays: 10,
		PositionMode:      PositionModeEqual,
	}
}

func TestCalculateReport(t *testing.T) {
	state := NewSimState()
	state.Trades = []TradeRecord{
		{ReturnPct: 10, DaysHeld: 5, Reason: ExitTakeProfit},
		{ReturnPct: -5, DaysHeld: 10, Reason: ExitHoldingPeriod},
	}

	report := CalculateReport(state, reportConfig(), "technical", 120)

	if report.RunID == uuid.Nil {
		t.Error("report should carry a run ID")
	}
	if report.Strategy != "technical" || report.TradingDays != 120 {
		t.Errorf("report header = %+v", report)
	}
	if report.TotalTrades != 2 || report.WinningTrades != 1 || report.LosingTrades != 1 {
		t.Errorf("trade counts = %d/%d/%d", report.TotalTrades, report.WinningTrades, report.LosingTrades)
	}
	if report.WinRate != 50 {
		t.Errorf("win rate = %v, want 50", report.WinRate)
	}
	if report.AvgReturnPct != 2.5 {
		t.Errorf("avg return = %v, want 2.5", report.AvgReturnPct)
	}
	// 1.10 * 0.95 = 1.045
	if math.Abs(report.TotalReturnPct-4.5) > 1e-9 {
		t.Errorf("total return = %v, want 4.5", report.TotalReturnPct)
	}
	// Peak 1.10, trough 1.045.
	if math.Abs(report.MaxDrawdownPct-5.0) > 1e-9 {
		t.Errorf("max drawdown = %v, want 5", report.MaxDrawdownPct)
	}
	// Gross win 10 over gross loss 5.
	if math.Abs(report.ProfitFactor-2.0) > 1e-9 {
		t.Errorf("profit factor = %v, want 2", report.ProfitFactor)
	}
	// Mean 2.5 over population stddev 7.5.
	if math.Abs(report.SharpeRatio-2.5/7.5) > 1e-9 {
		t.Errorf("sharpe = %v", report.SharpeRatio)
	}
	if report.BestTradePct != 10 || report.WorstTradePct != -5 {
		t.Errorf("best/worst = %v/%v", report.BestTradePct, report.WorstTradePct)
	}
	if report.AvgHoldingDays != 7.5 {
		t.Errorf("avg holding days = %v, want 7.5", report.AvgHoldingDays)
	}
}

func TestCalculateReportNoTrades(t *testing.T) {
	report := CalculateReport(NewSimState(), reportConfig(), "technical", 120)
	if report.TotalTrades != 0 || report.WinRate != 0 || report.TotalReturnPct != 0 {
		t.Errorf("empty report = %+v", report)
	}
	if report.RunID == uuid.Nil {
		t.Error("empty report should still carry a run ID")
	}
}

func TestReportToJSON(t *testing.T) {
	report := CalculateReport(NewSimState(), reportConfig(), "technical", 1)
	out := report.ToJSON()
	if out == "" || out[0] != '{' {
		t.Errorf("unexpected JSON: %q", out)
	}
}
