package screener

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/stock-screener/internal/marketdata"
	"github.com/yourusername/stock-screener/internal/models"
)

func sampleSelection(date time.Time) models.SelectionResult {
	return models.SelectionResult{
		Date:     date,
		Strategy: "technical",
		Results: []models.ScoreResult{
			{Code: "600519", Name: "Moutai", Total: 85, Price: 10, Reason: "MACD bullish crossover"},
			{Code: "000001", Name: "PAB", Total: 65, Price: 20, Reason: "RSI neutral"},
		},
	}
}

func TestStoreSaveLoadRoundTrip(t *testing.T) {
	store, err := NewStore(t.TempDir(), quietLogger())
	require.NoError(t, err)

	date := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	require.NoError(t, store.Save(sampleSelection(date)))

	stored, err := store.Load("2025-06-10", "technical")
	require.NoError(t, err)
	assert.Equal(t, "2025-06-10", stored.Date)
	assert.Equal(t, "technical", stored.Strategy)
	require.Len(t, stored.Results, 2)
	assert.Equal(t, "600519", stored.Results[0].Code)

	assert.Equal(t, 2, stored.Summary.Count)
	assert.Equal(t, 85.0, stored.Summary.TopScore)
	assert.Equal(t, 75.0, stored.Summary.AvgScore)
}

func TestStoreSaveEmptySelection(t *testing.T) {
	store, err := NewStore(t.TempDir(), quietLogger())
	require.NoError(t, err)

	date := time.Date(2025, 6, 11, 0, 0, 0, 0, time.UTC)
	require.NoError(t, store.Save(models.SelectionResult{Date: date, Strategy: "technical"}))

	stored, err := store.Load("2025-06-11", "technical")
	require.NoError(t, err)
	assert.Zero(t, stored.Summary.Count)
	assert.Empty(t, stored.Results)
}

func TestStoreLoadMissing(t *testing.T) {
	store, err := NewStore(t.TempDir(), quietLogger())
	require.NoError(t, err)

	_, err = store.Load("2025-01-01", "technical")
	require.Error(t, err)
}

func TestStoreLoadRecentFiltersWindowAndStrategy(t *testing.T) {
	store, err := NewStore(t.TempDir(), quietLogger())
	require.NoError(t, err)

	recent := time.Now().AddDate(0, 0, -2)
	old := time.Now().AddDate(0, 0, -90)
	require.NoError(t, store.Save(sampleSelection(recent)))
	require.NoError(t, store.Save(sampleSelection(old)))

	other := sampleSelection(recent)
	other.Strategy = "comprehensive"
	require.NoError(t, store.Save(other))

	stored, err := store.LoadRecent("technical", 30)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, recent.Format("2006-01-02"), stored[0].Date)
}

func TestRecentPerformance(t *testing.T) {
	store, err := NewStore(t.TempDir(), quietLogger())
	require.NoError(t, err)

	pickDate := time.Now().AddDate(0, 0, -5)
	require.NoError(t, store.Save(sampleSelection(pickDate)))

	// Latest closes: 600519 at 12 (+20% from 10), 000001 at 19 (-5% from 20).
	now := time.Now()
	series := map[string]models.PriceSeries{
		"600519": {Code: "600519", Bars: []models.Bar{
			{Date: now.AddDate(0, 0, -2).Truncate(24 * time.Hour), Close: 11},
			{Date: now.AddDate(0, 0, -1).Truncate(24 * time.Hour), Close: 12},
		}},
		"000001": {Code: "000001", Bars: []models.Bar{
			{Date: now.AddDate(0, 0, -1).Truncate(24 * time.Hour), Close: 19},
		}},
	}
	source, err := marketdata.NewStaticSource(nil, series)
	require.NoError(t, err)

	report, err := store.RecentPerformance(context.Background(), source, "technical", 30)
	require.NoError(t, err)
	require.Len(t, report.Entries, 2)

	assert.InDelta(t, 20.0, report.Entries[0].ReturnPct, 1e-9)
	assert.InDelta(t, -5.0, report.Entries[1].ReturnPct, 1e-9)
	assert.InDelta(t, 7.5, report.AvgReturnPct, 1e-9)
	assert.InDelta(t, 50.0, report.WinRate, 1e-9)
}
