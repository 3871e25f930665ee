// Package backtest replays the screening strategy over historical
// bars, day by day, with no access to future data at decision time.
package backtest

import (
	"fmt"
	"time"

	"github.com/yourusername/stock-screener/internal/config"
)

// Position sizing modes.
const (
	PositionModeTop   = "top"   // full weight on the highest-scored pick
	PositionModeEqual = "equal" // equal weight across the whole selection
)

// BacktestConfig extends core config with simulation settings
type BacktestConfig struct {
	StartDate         time.Time
	EndDate           time.Time
	HoldingPeriodDays int
	StopLossPct       float64
	TakeProfitPct     float64
	PositionMode      string
	OutputPath        string
}

// FromConfig converts app config to backtest config
func FromConfig(cfg *config.BacktestConfig) (BacktestConfig, error) {
	if cfg == nil {
		return BacktestConfig{}, fmt.Errorf("backtest config is required")
	}
	start, err := time.Parse("2006-01-02", cfg.StartDate)
	if err != nil {
		return BacktestConfig{}, fmt.Errorf("invalid start date: %w", err)
	}
	end, err := time.Parse("2006-01-02", cfg.EndDate)
	if err != nil {
		return BacktestConfig{}, fmt.Errorf("invalid end date: %w", err)
	}

	bt := BacktestConfig{
		StartDate:         start,
		EndDate:           end,
		HoldingPeriodDays: cfg.HoldingPeriodDays,
		StopLossPct:       cfg.StopLossPct,
		TakeProfitPct:     cfg.TakeProfitPct,
		PositionMode:      cfg.PositionMode,
		OutputPath:        cfg.OutputPath,
	}

	return bt, bt.Validate()
}

// Validate validates backtest config parameters
func (b BacktestConfig) Validate() error {
	if b.StartDate.After(b.EndDate) {
		return fmt.Errorf("start date must be before end date")
	}
	if b.HoldingPeriodDays <= 0 {
		return fmt.Errorf("holding period must be positive")
	}
	if b.StopLossPct < 0 || b.StopLossPct >= 100 {
		return fmt.Errorf("stop loss must be in [0, 100)")
	}
	if b.TakeProfitPct < 0 {
		return fmt.Errorf("take profit cannot be negative")
	}
	if b.PositionMode != PositionModeTop && b.PositionMode != PositionModeEqual {
		return fmt.Errorf("position mode must be %q or %q", PositionModeTop, PositionModeEqual)
	}
	return nil
}
