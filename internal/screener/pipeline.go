// Package screener implements the daily screening pipeline: universe
// filtering, concurrent scoring, ranking, and truncation.
package screener

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/stock-screener/internal/config"
	"github.com/yourusername/stock-screener/internal/indicators"
	"github.com/yourusername/stock-screener/internal/logger"
	"github.com/yourusername/stock-screener/internal/marketdata"
	"github.com/yourusername/stock-screener/internal/metrics"
	"github.com/yourusername/stock-screener/internal/models"
	"github.com/yourusername/stock-screener/internal/scoring"
)

const (
	// DefaultWorkers bounds the number of concurrent scoring workers.
	DefaultWorkers = 8

	// recentGainBars is the trailing window for the run-up filter.
	recentGainBars = 20

	// fetchMultiplier widens the history request to a multiple of the
	// analysis period so enough trading days survive weekends and
	// holidays.
	fetchMultiplier = 2
)

// Pipeline runs one screening pass: filter the universe, score the
// survivors, rank and truncate. A pass over the same inputs always
// produces the same selection.
type Pipeline struct {
	source   marketdata.Source
	universe marketdata.UniverseProvider
	scorer   *scoring.Scorer
	logger   *logrus.Entry
	workers  int
}

// NewPipeline creates a screening pipeline.
func NewPipeline(source marketdata.Source, universe marketdata.UniverseProvider, scorer *scoring.Scorer, lg *logrus.Logger, workers int) *Pipeline {
	if lg == nil {
		lg = logrus.New()
	}
	if workers <= 0 {
		workers = DefaultWorkers
	}
	return &Pipeline{
		source:   source,
		universe: universe,
		scorer:   scorer,
		logger:   logger.WithComponent(lg, "screener"),
		workers:  workers,
	}
}

// Screen produces the ranked selection for asOf under the given
// profile. Per-candidate failures (unknown symbols, short history) are
// skipped and logged; universe failures and provider outages abort the
// pass, so an outage is never mistaken for an empty selection.
func (p *Pipeline) Screen(ctx context.Context, asOf time.Time, profile config.StrategyProfile) (models.SelectionResult, error) {
	if err := profile.Validate(); err != nil {
		return models.SelectionResult{}, err
	}

	started := time.Now()
	selection := models.SelectionResult{Date: asOf, Strategy: profile.Name}

	listing, err := p.universe.ListUniverse(ctx, asOf)
	if err != nil {
		metrics.RecordDataSourceError(p.source.Name())
		return models.SelectionResult{}, fmt.Errorf("listing universe: %w", err)
	}

	eligible := filterUniverse(listing, profile)
	p.logger.WithFields(logrus.Fields{
		"strategy": profile.Name,
		"as_of":    asOf.Format("2006-01-02"),
		"universe": len(listing),
		"eligible": len(eligible),
	}).Info("Screening universe filtered")

	scored, err := p.scoreAll(ctx, asOf, eligible, profile)
	if err != nil {
		return models.SelectionResult{}, err
	}

	for _, result := range scored {
		if result.Total >= profile.MinScore {
			selection.Results = append(selection.Results, result)
		}
	}
	models.SortResults(selection.Results)
	if len(selection.Results) > profile.MaxStocks {
		selection.Results = selection.Results[:profile.MaxStocks]
	}

	topScore := 0.0
	if len(selection.Results) > 0 {
		topScore = selection.Results[0].Total
	}
	metrics.RecordScreeningRun(time.Since(started).Seconds(), len(selection.Results), topScore)

	p.logger.WithFields(logrus.Fields{
		"strategy": profile.Name,
		"selected": len(selection.Results),
		"duration": time.Since(started).Round(time.Millisecond),
	}).Info("Screening pass complete")
	return selection, nil
}

// filterUniverse applies the metadata filters that need no price data.
func filterUniverse(listing []models.StockMeta, profile config.StrategyProfile) []models.StockMeta {
	eligible := make([]models.StockMeta, 0, len(listing))
	for _, meta := range listing {
		if meta.DelistingRisk {
			metrics.RecordCandidateSkipped("delisting_risk")
			continue
		}
		if profile.MinMarketCap > 0 && meta.MarketCap < profile.MinMarketCap {
			metrics.RecordCandidateSkipped("market_cap")
			continue
		}
		eligible = append(eligible, meta)
	}
	return eligible
}

// scoreAll fans the eligible codes across a worker pool. Each worker
// fetches history, applies the price-dependent filters, and scores.
func (p *Pipeline) scoreAll(ctx context.Context, asOf time.Time, eligible []models.StockMeta, profile config.StrategyProfile) ([]models.ScoreResult, error) {
	jobs := make(chan models.StockMeta)
	results := make(chan models.ScoreResult, len(eligible))

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		fatalErr error
	)
	for w := 0; w < p.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for meta := range jobs {
				mu.Lock()
				aborted := fatalErr != nil
				mu.Unlock()
				if aborted {
					continue
				}
				result, ok, err := p.scoreOne(ctx, asOf, meta, profile)
				if err != nil {
					mu.Lock()
					if fatalErr == nil {
						fatalErr = err
					}
					mu.Unlock()
					continue
				}
				if ok {
					results <- result
				}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, meta := range eligible {
			select {
			case jobs <- meta:
			case <-ctx.Done():
				return
			}
		}
	}()

	wg.Wait()
	close(results)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if fatalErr != nil {
		return nil, fatalErr
	}

	scored := make([]models.ScoreResult, 0, len(eligible))
	for result := range results {
		scored = append(scored, result)
	}
	return scored, nil
}

// scoreOne evaluates a single candidate. Unknown symbols and short
// history are candidate boundaries: the stock is skipped and the pass
// continues. A provider outage is fatal for the whole pass.
func (p *Pipeline) scoreOne(ctx context.Context, asOf time.Time, meta models.StockMeta, profile config.StrategyProfile) (models.ScoreResult, bool, error) {
	start := asOf.AddDate(0, 0, -profile.AnalysisPeriod*fetchMultiplier)
	series, err := p.source.GetPriceSeries(ctx, meta.Code, start, asOf)
	if err != nil {
		if errors.Is(err, models.ErrDataSourceUnavailable) {
			metrics.RecordDataSourceError(p.source.Name())
			return models.ScoreResult{}, false, fmt.Errorf("fetching history for %s: %w", meta.Code, err)
		}
		p.skip(meta.Code, "fetch", err)
		return models.ScoreResult{}, false, nil
	}

	// Drop any bar after asOf so the scoring inputs never include
	// future data, whatever the provider returned.
	series = series.Prefix(asOf)
	if series.Len() < indicators.MinSnapshotBars {
		p.skip(meta.Code, "insufficient_history", models.ErrInsufficientHistory)
		return models.ScoreResult{}, false, nil
	}

	recentGain := series.GainPct(recentGainBars)
	if profile.MaxRecentGain > 0 && recentGain > profile.MaxRecentGain {
		metrics.RecordCandidateSkipped("recent_gain")
		return models.ScoreResult{}, false, nil
	}

	snap, err := indicators.ComputeSnapshot(series)
	if err != nil {
		p.skip(meta.Code, "snapshot", err)
		return models.ScoreResult{}, false, nil
	}

	last, _ := series.Last()
	candidate := models.StockCandidate{
		Code:          meta.Code,
		Name:          meta.Name,
		MarketCap:     meta.MarketCap,
		LatestPrice:   last.Close,
		RecentGainPct: recentGain,
		Series:        series,
		AsOf:          asOf,
	}

	result := p.scorer.Score(candidate, snap, profile)
	metrics.CandidatesScoredTotal.Inc()
	return result, true, nil
}

func (p *Pipeline) skip(code, stage string, err error) {
	switch {
	case errors.Is(err, models.ErrInsufficientHistory):
		metrics.RecordCandidateSkipped("insufficient_history")
	case errors.Is(err, models.ErrUnknownSymbol):
		metrics.RecordCandidateSkipped("unknown_symbol")
	default:
		metrics.RecordCandidateSkipped("other")
	}
	p.logger.WithError(err).WithFields(logrus.Fields{
		"code":  code,
		"stage": stage,
	}).Debug("Candidate skipped")
}
