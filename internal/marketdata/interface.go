// Package marketdata supplies price history and universe listings from
// external providers. The screening core treats providers as
// collaborators: a failed request fails loudly, never silently
// returning partial or stale data.
package marketdata

import (
	"context"
	"time"

	"github.com/yourusername/stock-screener/internal/models"
)

// Source supplies daily price history per stock code.
type Source interface {
	// GetPriceSeries retrieves the daily bars for code within
	// [start, end], ordered by date with no duplicates. It fails with
	// models.ErrUnknownSymbol for codes the provider does not know and
	// models.ErrDataSourceUnavailable for provider failures.
	GetPriceSeries(ctx context.Context, code string, start, end time.Time) (models.PriceSeries, error)

	// TradingDays lists the trading days within [start, end] in
	// chronological order.
	TradingDays(ctx context.Context, start, end time.Time) ([]time.Time, error)

	// Name returns the name of the data source
	Name() string
}

// UniverseProvider supplies the full list of eligible stock codes with
// static metadata as of a given date.
type UniverseProvider interface {
	ListUniverse(ctx context.Context, asOf time.Time) ([]models.StockMeta, error)
}
