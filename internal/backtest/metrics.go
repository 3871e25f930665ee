package backtest

import (
	"encoding/json"
	"math"
	"time"

	"github.com/google/uuid"
)

// Report represents backtest performance over the whole run
type Report struct {
	RunID          uuid.UUID     `json:"run_id"`
	Strategy       string        `json:"strategy"`
	StartDate      time.Time     `json:"start_date"`
	EndDate        time.Time     `json:"end_date"`
	TradingDays    int           `json:"trading_days"`
	TotalTrades    int           `json:"total_trades"`
	WinningTrades  int           `json:"winning_trades"`
	LosingTrades   int           `json:"losing_trades"`
	WinRate        float64       `json:"win_rate"`
	AvgReturnPct   float64       `json:"avg_return_pct"`
	TotalReturnPct float64       `json:"total_return_pct"`
	MaxDrawdownPct float64       `json:"max_drawdown_pct"`
	ProfitFactor   float64       `json:"profit_factor"`
	SharpeRatio    float64       `json:"sharpe_ratio"`
	BestTradePct   float64       `json:"best_trade_pct"`
	WorstTradePct  float64       `json:"worst_trade_pct"`
	AvgHoldingDays float64       `json:"avg_holding_days"`
	Trades         []TradeRecord `json:"trades"`
}

// CalculateReport derives the performance report from completed trades.
// Total return compounds the trades sequentially; drawdown is measured
// on that compounded equity path.
func CalculateReport(state *SimState, cfg BacktestConfig, strategy string, tradingDays int) Report {
	report := Report{
		RunID:       uuid.New(),
		Strategy:    strategy,
		StartDate:   cfg.StartDate,
		EndDate:     cfg.EndDate,
		TradingDays: tradingDays,
	}
	if state == nil || len(state.Trades) == 0 {
		return report
	}

	report.Trades = state.Trades
	report.TotalTrades = len(state.Trades)

	equity := 1.0
	peak := 1.0
	sumReturn := 0.0
	sumDays := 0
	grossWin := 0.0
	grossLoss := 0.0
	report.BestTradePct = math.Inf(-1)
	report.WorstTradePct = math.Inf(1)
	for _, trade := range state.Trades {
		if trade.ReturnPct > 0 {
			report.WinningTrades++
			grossWin += trade.ReturnPct
		} else if trade.ReturnPct < 0 {
			report.LosingTrades++
			grossLoss += -trade.ReturnPct
		}
		sumReturn += trade.ReturnPct
		sumDays += trade.DaysHeld
		if trade.ReturnPct > report.BestTradePct {
			report.BestTradePct = trade.ReturnPct
		}
		if trade.ReturnPct < report.WorstTradePct {
			report.WorstTradePct = trade.ReturnPct
		}

		equity *= 1 + trade.ReturnPct/100
		if equity > peak {
			peak = equity
		}
		if peak > 0 {
			drawdown := (peak - equity) / peak * 100
			if drawdown > report.MaxDrawdownPct {
				report.MaxDrawdownPct = drawdown
			}
		}
	}

	report.WinRate = float64(report.WinningTrades) / float64(report.TotalTrades) * 100
	report.AvgReturnPct = sumReturn / float64(report.TotalTrades)
	report.TotalReturnPct = (equity - 1) * 100
	report.AvgHoldingDays = float64(sumDays) / float64(report.TotalTrades)
	// Left at zero when no losing trades; +Inf does not survive JSON.
	if grossLoss > 0 {
		report.ProfitFactor = grossWin / grossLoss
	}
	report.SharpeRatio = sharpeRatio(state.Trades, report.AvgReturnPct)
	return report
}

// sharpeRatio is the per-trade mean return over its population standard
// deviation, unannualized. Zero when returns have no variance.
func sharpeRatio(trades []TradeRecord, mean float64) float64 {
	if len(trades) < 2 {
		return 0
	}
	variance := 0.0
	for _, trade := range trades {
		diff := trade.ReturnPct - mean
		variance += diff * diff
	}
	variance /= float64(len(trades))
	if variance == 0 {
		return 0
	}
	return mean / math.Sqrt(variance)
}

// ToJSON exports the report to JSON
func (r Report) ToJSON() string {
	data, _ := json.Marshal(r)
	return string(data)
}
