package marketdata

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/yourusername/stock-screener/internal/models"
)

func day(d int) time.Time {
	return time.Date(2025, 5, 5, 0, 0, 0, 0, time.UTC).AddDate(0, 0, d)
}

func fixtureSeries(code string, days ...int) models.PriceSeries {
	series := models.PriceSeries{Code: code}
	for i, d := range days {
		series.Bars = append(series.Bars, models.Bar{
			Date:   day(d),
			Open:   10,
			High:   11,
			Low:    9,
			Close:  10 + float64(i),
			Volume: 1000,
		})
	}
	return series
}

func newFixtureSource(t *testing.T) *StaticSource {
	t.Helper()
	source, err := NewStaticSource(
		[]models.StockMeta{
			{Code: "600519", Name: "Moutai", MarketCap: 2e12},
			{Code: "000001", Name: "PAB", MarketCap: 3e11},
		},
		map[string]models.PriceSeries{
			"600519": fixtureSeries("600519", 0, 1, 2, 3),
			"000001": fixtureSeries("000001", 1, 2, 4),
		},
	)
	if err != nil {
		t.Fatalf("NewStaticSource failed: %v", err)
	}
	return source
}

func TestStaticSourceRejectsBadSeries(t *testing.T) {
	bad := fixtureSeries("600519", 2, 1)
	_, err := NewStaticSource(nil, map[string]models.PriceSeries{"600519": bad})
	if err == nil {
		t.Fatal("out-of-order fixture should be rejected")
	}

	mismatched := fixtureSeries("000001", 0, 1)
	_, err = NewStaticSource(nil, map[string]models.PriceSeries{"600519": mismatched})
	if err == nil {
		t.Fatal("mismatched map key should be rejected")
	}
}

func TestStaticGetPriceSeriesWindow(t *testing.T) {
	source := newFixtureSource(t)
	ctx := context.Background()

	series, err := source.GetPriceSeries(ctx, "600519", day(1), day(2))
	if err != nil {
		t.Fatalf("GetPriceSeries failed: %v", err)
	}
	if series.Len() != 2 {
		t.Errorf("window [1,2] length = %d, want 2", series.Len())
	}

	_, err = source.GetPriceSeries(ctx, "999999", day(0), day(3))
	if !errors.Is(err, models.ErrUnknownSymbol) {
		t.Errorf("unknown code should wrap ErrUnknownSymbol, got %v", err)
	}
}

func TestStaticTradingDaysIsSortedUnion(t *testing.T) {
	source := newFixtureSource(t)

	days, err := source.TradingDays(context.Background(), day(0), day(10))
	if err != nil {
		t.Fatalf("TradingDays failed: %v", err)
	}
	want := []time.Time{day(0), day(1), day(2), day(3), day(4)}
	if len(days) != len(want) {
		t.Fatalf("got %d trading days, want %d", len(days), len(want))
	}
	for i := range want {
		if !days[i].Equal(want[i]) {
			t.Errorf("days[%d] = %v, want %v", i, days[i], want[i])
		}
	}
}

func TestStaticListUniverse(t *testing.T) {
	source := newFixtureSource(t)
	universe, err := source.ListUniverse(context.Background(), day(3))
	if err != nil {
		t.Fatalf("ListUniverse failed: %v", err)
	}
	if len(universe) != 2 {
		t.Errorf("universe size = %d, want 2", len(universe))
	}
}

func TestLoadStaticDir(t *testing.T) {
	dir := t.TempDir()
	universe := []models.StockMeta{{Code: "600519", Name: "Moutai", MarketCap: 2e12}}
	writeJSON(t, filepath.Join(dir, "universe.json"), universe)

	if err := os.MkdirAll(filepath.Join(dir, "series"), 0o755); err != nil {
		t.Fatal(err)
	}
	writeJSON(t, filepath.Join(dir, "series", "600519.json"), fixtureSeries("600519", 0, 1, 2))

	source, err := LoadStaticDir(dir)
	if err != nil {
		t.Fatalf("LoadStaticDir failed: %v", err)
	}
	series, err := source.GetPriceSeries(context.Background(), "600519", day(0), day(2))
	if err != nil {
		t.Fatalf("GetPriceSeries failed: %v", err)
	}
	if series.Len() != 3 {
		t.Errorf("loaded series length = %d, want 3", series.Len())
	}
}

func TestLoadStaticDirMissingUniverse(t *testing.T) {
	if _, err := LoadStaticDir(t.TempDir()); err == nil {
		t.Fatal("missing universe.json should fail")
	}
}

func writeJSON(t *testing.T, path string, v any) {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
}
