// Package metrics provides the centralized Prometheus metrics registry
// for the stock screener.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// Counter metrics
var (
	ScreeningRunsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "stock_screener",
		Name:      "screening_runs_total",
		Help:      "Total number of screening passes executed",
	})
	CandidatesScoredTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "stock_screener",
		Name:      "candidates_scored_total",
		Help:      "Total number of candidates scored",
	})
	CandidatesSkippedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "stock_screener",
		Name:      "candidates_skipped_total",
		Help:      "Total number of candidates skipped, by reason",
	}, []string{"reason"})
	SelectionsEmittedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "stock_screener",
		Name:      "selections_emitted_total",
		Help:      "Total number of stocks emitted across all selections",
	})
	DataSourceErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "stock_screener",
		Name:      "data_source_errors_total",
		Help:      "Total number of market data source failures, by source",
	}, []string{"source"})
	BacktestTradesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "stock_screener",
		Name:      "backtest_trades_total",
		Help:      "Total number of simulated trades recorded",
	})
)

// Gauge metrics
var (
	LastSelectionSize = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "stock_screener",
		Name:      "last_selection_size",
		Help:      "Number of stocks in the most recent selection",
	})
	LastTopScore = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "stock_screener",
		Name:      "last_top_score",
		Help:      "Highest score in the most recent selection",
	})
)

// Histogram metrics
var (
	ScreeningDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "stock_screener",
		Name:      "screening_duration_seconds",
		Help:      "Duration of screening passes in seconds",
		Buckets:   prometheus.DefBuckets,
	})
	BacktestDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "stock_screener",
		Name:      "backtest_duration_seconds",
		Help:      "Duration of backtest runs in seconds",
		Buckets:   []float64{1, 5, 10, 30, 60, 300, 600, 1800},
	})
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		registry.MustRegister(ScreeningRunsTotal)
		registry.MustRegister(CandidatesScoredTotal)
		registry.MustRegister(CandidatesSkippedTotal)
		registry.MustRegister(SelectionsEmittedTotal)
		registry.MustRegister(DataSourceErrorsTotal)
		registry.MustRegister(BacktestTradesTotal)

		registry.MustRegister(LastSelectionSize)
		registry.MustRegister(LastTopScore)

		registry.MustRegister(ScreeningDuration)
		registry.MustRegister(BacktestDuration)
	})
	return registry
}

// GetRegistry returns the global Prometheus registry.
func GetRegistry() *prometheus.Registry {
	if registry == nil {
		return InitRegistry()
	}
	return registry
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.HandlerFor(GetRegistry(), promhttp.HandlerOpts{})
}

// RecordScreeningRun records a completed screening pass.
func RecordScreeningRun(durationSeconds float64, selectionSize int, topScore float64) {
	ScreeningRunsTotal.Inc()
	ScreeningDuration.Observe(durationSeconds)
	LastSelectionSize.Set(float64(selectionSize))
	LastTopScore.Set(topScore)
	SelectionsEmittedTotal.Add(float64(selectionSize))
}

// RecordCandidateSkipped records a candidate excluded from scoring.
func RecordCandidateSkipped(reason string) {
	CandidatesSkippedTotal.WithLabelValues(reason).Inc()
}

// RecordDataSourceError records a market data source failure.
func RecordDataSourceError(source string) {
	DataSourceErrorsTotal.WithLabelValues(source).Inc()
}

// RecordBacktestRun records a completed backtest run.
func RecordBacktestRun(durationSeconds float64, trades int) {
	BacktestDuration.Observe(durationSeconds)
	BacktestTradesTotal.Add(float64(trades))
}
