package backtest

import (
	"context"
	"math"
	"reflect"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/stock-screener/internal/config"
	"github.com/yourusername/stock-screener/internal/marketdata"
	"github.com/yourusername/stock-screener/internal/models"
	"github.com/yourusername/stock-screener/internal/scoring"
	"github.com/yourusername/stock-screener/internal/screener"
)

var btBase = time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)

// driftSeries holds close at 10 for the first 40 bars, then compounds
// dailyPct per bar.
func driftSeries(code string, n int, dailyPct float64) models.PriceSeries {
	series := models.PriceSeries{Code: code}
	price := 10.0
	for i := 0; i < n; i++ {
		if i >= 40 {
			price *= 1 + dailyPct/100
		}
		series.Bars = append(series.Bars, models.Bar{
			Date:   btBase.AddDate(0, 0, i),
			Open:   price,
			High:   price,
			Low:    price,
			Close:  price,
			Volume: 1000,
		})
	}
	return series
}

func btProfile() config.StrategyProfile {
	return config.StrategyProfile{
		Name:             "test",
		MACDWeight:       25,
		RSIWeight:        20,
		KDJWeight:        20,
		BollingerWeight:  15,
		VolumeWeight:     10,
		MAWeight:         10,
		MinScore:         0,
		MaxStocks:        10,
		VolumeMultiplier: 2.0,
		AnalysisPeriod:   40,
	}
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func newTestEngine(t *testing.T, cfg BacktestConfig, series map[string]models.PriceSeries) *Engine {
	t.Helper()
	universe := make([]models.StockMeta, 0, len(series))
	for code := range series {
		universe = append(universe, models.StockMeta{Code: code, Name: code})
	}
	source, err := marketdata.NewStaticSource(universe, series)
	if err != nil {
		t.Fatalf("building static source: %v", err)
	}
	pipeline := screener.NewPipeline(source, source, scoring.NewScorer(), quietLogger(), 2)
	engine, err := NewEngine(cfg, source, pipeline, btProfile(), quietLogger())
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}
	return engine
}

func baseConfig(totalBars int) BacktestConfig {
	return BacktestConfig{
		StartDate:         btBase.AddDate(0, 0, 45),
		EndDate:           btBase.AddDate(0, 0, totalBars-1),
		HoldingPeriodDays: 5,
		PositionMode:      PositionModeTop,
	}
}

func TestRunUptrendWinsEveryTrade(t *testing.T) {
	series := map[string]models.PriceSeries{
		"000010": driftSeries("000010", 80, 1.0),
	}
	state, report, err := newTestEngine(t, baseConfig(80), series).Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if report.TotalTrades < 3 {
		t.Fatalf("expected several round trips, got %d", report.TotalTrades)
	}
	if report.WinRate != 100 {
		t.Errorf("uptrend win rate = %v, want 100", report.WinRate)
	}
	for _, trade := range state.Trades {
		if trade.ReturnPct <= 0 {
			t.Errorf("uptrend trade lost: %+v", trade)
		}
		if trade.Reason != ExitHoldingPeriod && trade.Reason != ExitHorizon {
			t.Errorf("unexpected exit reason %s", trade.Reason)
		}
	}
	if state.Phase != PhaseNoPosition {
		t.Error("run should end with the position closed")
	}
}

func TestRunForcedCloseAtHorizon(t *testing.T) {
	series := map[string]models.PriceSeries{
		"000010": driftSeries("000010", 80, 0.5),
	}
	cfg := baseConfig(80)
	cfg.HoldingPeriodDays = 500 // never reached inside the window

	_, report, err := newTestEngine(t, cfg, series).Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if report.TotalTrades != 1 {
		t.Fatalf("expected exactly one forced trade, got %d", report.TotalTrades)
	}
	trade := report.Trades[0]
	if trade.Reason != ExitHorizon {
		t.Errorf("exit reason = %s, want %s", trade.Reason, ExitHorizon)
	}
	if !trade.ExitDate.Equal(cfg.EndDate) {
		t.Errorf("forced close date = %v, want %v", trade.ExitDate, cfg.EndDate)
	}
	if trade.ReturnPct <= 0 {
		t.Errorf("uptrend forced close should be positive, got %v", trade.ReturnPct)
	}
	if report.WinRate != 100 {
		t.Errorf("single winning trade win rate = %v, want 100", report.WinRate)
	}
}

func TestRunStopLoss(t *testing.T) {
	series := map[string]models.PriceSeries{
		"000010": driftSeries("000010", 80, -3.0),
	}
	cfg := baseConfig(80)
	cfg.HoldingPeriodDays = 50
	cfg.StopLossPct = 8

	_, report, err := newTestEngine(t, cfg, series).Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if report.TotalTrades == 0 {
		t.Fatal("expected at least one stopped-out trade")
	}
	first := report.Trades[0]
	if first.Reason != ExitStopLoss {
		t.Errorf("exit reason = %s, want %s", first.Reason, ExitStopLoss)
	}
	if first.ReturnPct > -8 {
		t.Errorf("stop loss fired above the threshold: %v", first.ReturnPct)
	}
}

func TestRunTakeProfit(t *testing.T) {
	series := map[string]models.PriceSeries{
		"000010": driftSeries("000010", 80, 5.0),
	}
	cfg := baseConfig(80)
	cfg.HoldingPeriodDays = 50
	cfg.TakeProfitPct = 10

	_, report, err := newTestEngine(t, cfg, series).Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if report.TotalTrades == 0 {
		t.Fatal("expected at least one take-profit trade")
	}
	first := report.Trades[0]
	if first.Reason != ExitTakeProfit {
		t.Errorf("exit reason = %s, want %s", first.Reason, ExitTakeProfit)
	}
	if first.ReturnPct < 10 {
		t.Errorf("take profit fired below the threshold: %v", first.ReturnPct)
	}
}

func TestRunIsDeterministic(t *testing.T) {
	series := map[string]models.PriceSeries{
		"000010": driftSeries("000010", 80, 1.0),
		"000011": driftSeries("000011", 80, 0.2),
	}
	cfg := baseConfig(80)
	cfg.PositionMode = PositionModeEqual

	first, firstReport, err := newTestEngine(t, cfg, series).Run(context.Background())
	if err != nil {
		t.Fatalf("first run failed: %v", err)
	}
	second, secondReport, err := newTestEngine(t, cfg, series).Run(context.Background())
	if err != nil {
		t.Fatalf("second run failed: %v", err)
	}

	if !reflect.DeepEqual(first.Trades, second.Trades) {
		t.Error("identical inputs should reproduce the same trades")
	}
	if math.Abs(firstReport.TotalReturnPct-secondReport.TotalReturnPct) > 1e-12 {
		t.Error("identical inputs should reproduce the same totals")
	}
}

func TestRunEqualWeightBasket(t *testing.T) {
	series := map[string]models.PriceSeries{
		"000010": driftSeries("000010", 80, 1.0),
		"000011": driftSeries("000011", 80, 1.0),
	}
	cfg := baseConfig(80)
	cfg.PositionMode = PositionModeEqual

	state, _, err := newTestEngine(t, cfg, series).Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(state.Trades) == 0 {
		t.Fatal("expected trades")
	}
	first := state.Trades[0]
	if len(first.Holdings) != 2 {
		t.Fatalf("equal mode basket size = %d, want 2", len(first.Holdings))
	}
	for _, h := range first.Holdings {
		if h.Weight != 0.5 {
			t.Errorf("holding weight = %v, want 0.5", h.Weight)
		}
	}
}

func TestNewEngineValidation(t *testing.T) {
	series := map[string]models.PriceSeries{"000010": driftSeries("000010", 80, 1.0)}
	source, err := marketdata.NewStaticSource([]models.StockMeta{{Code: "000010"}}, series)
	if err != nil {
		t.Fatal(err)
	}
	pipeline := screener.NewPipeline(source, source, scoring.NewScorer(), quietLogger(), 1)

	bad := baseConfig(80)
	bad.PositionMode = "weird"
	if _, err := NewEngine(bad, source, pipeline, btProfile(), quietLogger()); err == nil {
		t.Error("invalid position mode should be rejected")
	}
	if _, err := NewEngine(baseConfig(80), nil, pipeline, btProfile(), quietLogger()); err == nil {
		t.Error("nil source should be rejected")
	}
	if _, err := NewEngine(baseConfig(80), source, nil, btProfile(), quietLogger()); err == nil {
		t.Error("nil pipeline should be rejected")
	}
}
