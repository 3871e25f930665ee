package marketdata

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/yourusername/stock-screener/internal/models"
)

// StaticSource is an in-memory Source and UniverseProvider backed by
// preloaded series, used by backtests over fixed datasets and by
// tests. Series are read-only once loaded.
type StaticSource struct {
	series   map[string]models.PriceSeries
	universe []models.StockMeta
}

// NewStaticSource builds a static source from preloaded data. Every
// series must satisfy the ordering contract.
func NewStaticSource(universe []models.StockMeta, series map[string]models.PriceSeries) (*StaticSource, error) {
	for code, s := range series {
		if err := s.Validate(); err != nil {
			return nil, err
		}
		if s.Code != code {
			return nil, fmt.Errorf("series keyed %s carries code %s", code, s.Code)
		}
	}
	return &StaticSource{series: series, universe: universe}, nil
}

// Name returns the name of the data source
func (s *StaticSource) Name() string { return "static" }

// GetPriceSeries returns the bars within [start, end] for code.
func (s *StaticSource) GetPriceSeries(ctx context.Context, code string, start, end time.Time) (models.PriceSeries, error) {
	if err := ctx.Err(); err != nil {
		return models.PriceSeries{}, err
	}
	full, ok := s.series[code]
	if !ok {
		return models.PriceSeries{}, fmt.Errorf("code %s: %w", code, models.ErrUnknownSymbol)
	}
	out := models.PriceSeries{Code: code}
	for _, bar := range full.Bars {
		if bar.Date.Before(start) || bar.Date.After(end) {
			continue
		}
		out.Bars = append(out.Bars, bar)
	}
	return out, nil
}

// TradingDays returns the union of bar dates across all series within
// [start, end], in chronological order.
func (s *StaticSource) TradingDays(ctx context.Context, start, end time.Time) ([]time.Time, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	seen := map[string]time.Time{}
	for _, series := range s.series {
		for _, bar := range series.Bars {
			if bar.Date.Before(start) || bar.Date.After(end) {
				continue
			}
			seen[bar.Date.Format("2006-01-02")] = bar.Date
		}
	}
	days := make([]time.Time, 0, len(seen))
	for _, day := range seen {
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })
	return days, nil
}

// ListUniverse returns the static universe listing.
func (s *StaticSource) ListUniverse(ctx context.Context, asOf time.Time) ([]models.StockMeta, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]models.StockMeta, len(s.universe))
	copy(out, s.universe)
	return out, nil
}
