package backtest

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/stock-screener/internal/config"
	"github.com/yourusername/stock-screener/internal/logger"
	"github.com/yourusername/stock-screener/internal/marketdata"
	"github.com/yourusername/stock-screener/internal/metrics"
	"github.com/yourusername/stock-screener/internal/models"
	"github.com/yourusername/stock-screener/internal/screener"
)

// Engine orchestrates backtest runs
type Engine struct {
	config   BacktestConfig
	source   marketdata.Source
	pipeline *screener.Pipeline
	profile  config.StrategyProfile
	logger   *logrus.Entry

	// series for the currently held basket, fetched at entry time
	held map[string]models.PriceSeries
}

// NewEngine creates a new backtest engine
func NewEngine(cfg BacktestConfig, source marketdata.Source, pipeline *screener.Pipeline, profile config.StrategyProfile, lg *logrus.Logger) (*Engine, error) {
	if source == nil {
		return nil, fmt.Errorf("market data source is required")
	}
	if pipeline == nil {
		return nil, fmt.Errorf("screening pipeline is required")
	}
	if lg == nil {
		lg = logrus.New()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := profile.Validate(); err != nil {
		return nil, err
	}

	return &Engine{
		config:   cfg,
		source:   source,
		pipeline: pipeline,
		profile:  profile,
		logger:   logger.WithComponent(lg, "backtest"),
		held:     map[string]models.PriceSeries{},
	}, nil
}

// Config returns the backtest configuration
func (e *Engine) Config() BacktestConfig {
	return e.config
}

// Run walks the trading calendar one day at a time. On each day the
// simulator either looks for an entry or manages the open basket; the
// screening pipeline only ever sees bars dated at or before that day.
func (e *Engine) Run(ctx context.Context) (*SimState, Report, error) {
	started := time.Now()
	e.logger.WithFields(logrus.Fields{
		"start":    e.config.StartDate.Format("2006-01-02"),
		"end":      e.config.EndDate.Format("2006-01-02"),
		"strategy": e.profile.Name,
	}).Info("Starting backtest run")

	days, err := e.source.TradingDays(ctx, e.config.StartDate, e.config.EndDate)
	if err != nil {
		return nil, Report{}, fmt.Errorf("loading trading calendar: %w", err)
	}
	if len(days) == 0 {
		return nil, Report{}, fmt.Errorf("no trading days between %s and %s",
			e.config.StartDate.Format("2006-01-02"), e.config.EndDate.Format("2006-01-02"))
	}

	state := NewSimState()
	for _, day := range days {
		if err := ctx.Err(); err != nil {
			return nil, Report{}, err
		}
		if state.Phase == PhaseHolding {
			if err := e.manageHolding(state, day); err != nil {
				return nil, Report{}, err
			}
			continue
		}
		if err := e.tryEnter(ctx, state, day); err != nil {
			return nil, Report{}, err
		}
	}

	// Force close anything still open at the horizon.
	if state.Phase == PhaseHolding {
		last := days[len(days)-1]
		if err := state.Exit(last, e.basketReturn(state.Position, last), ExitHorizon); err != nil {
			return nil, Report{}, err
		}
	}

	report := CalculateReport(state, e.config, e.profile.Name, len(days))
	metrics.RecordBacktestRun(time.Since(started).Seconds(), report.TotalTrades)

	e.logger.WithFields(logrus.Fields{
		"trades":   report.TotalTrades,
		"win_rate": report.WinRate,
		"duration": time.Since(started).Round(time.Millisecond),
	}).Info("Backtest run complete")
	return state, report, nil
}

// tryEnter runs the screening pass for day and opens a basket when the
// selection is non-empty. An empty selection is a normal no-trade day.
func (e *Engine) tryEnter(ctx context.Context, state *SimState, day time.Time) error {
	selection, err := e.pipeline.Screen(ctx, day, e.profile)
	if err != nil {
		return fmt.Errorf("screening on %s: %w", day.Format("2006-01-02"), err)
	}
	if selection.Empty() {
		return nil
	}

	picks := selection.Results
	if e.config.PositionMode == PositionModeTop {
		picks = picks[:1]
	}

	holdings := make([]Holding, 0, len(picks))
	for _, pick := range picks {
		series, err := e.source.GetPriceSeries(ctx, pick.Code, day, e.config.EndDate)
		if err != nil {
			e.logger.WithError(err).WithField("code", pick.Code).Warn("Dropping pick without forward quotes")
			continue
		}
		if pick.Price <= 0 {
			continue
		}
		holdings = append(holdings, Holding{
			Code:       pick.Code,
			Name:       pick.Name,
			EntryPrice: pick.Price,
		})
		e.held[pick.Code] = series
	}
	if len(holdings) == 0 {
		return nil
	}
	for i := range holdings {
		holdings[i].Weight = 1.0 / float64(len(holdings))
	}

	e.logger.WithFields(logrus.Fields{
		"date":  day.Format("2006-01-02"),
		"picks": len(holdings),
	}).Debug("Entering position")
	return state.Enter(day, holdings)
}

// manageHolding ages the open basket by one day and applies the exit
// rules in order: stop loss, take profit, holding period.
func (e *Engine) manageHolding(state *SimState, day time.Time) error {
	state.Position.DaysHeld++
	ret := e.basketReturn(state.Position, day)

	var reason ExitReason
	switch {
	case e.config.StopLossPct > 0 && ret <= -e.config.StopLossPct:
		reason = ExitStopLoss
	case e.config.TakeProfitPct > 0 && ret >= e.config.TakeProfitPct:
		reason = ExitTakeProfit
	case state.Position.DaysHeld >= e.config.HoldingPeriodDays:
		reason = ExitHoldingPeriod
	default:
		return nil
	}

	e.logger.WithFields(logrus.Fields{
		"date":   day.Format("2006-01-02"),
		"return": ret,
		"reason": reason,
	}).Debug("Exiting position")
	e.held = map[string]models.PriceSeries{}
	return state.Exit(day, ret, reason)
}

// basketReturn values the basket at day using each holding's last
// close at or before day, so suspended stocks carry their last print.
func (e *Engine) basketReturn(pos *Position, day time.Time) float64 {
	total := 0.0
	for _, h := range pos.Holdings {
		price := h.EntryPrice
		if series, ok := e.held[h.Code]; ok {
			if bar, ok := series.Prefix(day).Last(); ok {
				price = bar.Close
			}
		}
		total += h.Weight * (price/h.EntryPrice - 1) * 100
	}
	return total
}
