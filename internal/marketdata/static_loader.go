package marketdata

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/yourusername/stock-screener/internal/models"
)

// LoadStaticDir builds a StaticSource from a fixture directory:
//
//	<dir>/universe.json   []models.StockMeta
//	<dir>/series/*.json   one models.PriceSeries per stock
//
// Used for offline backtests over exported datasets.
func LoadStaticDir(dir string) (*StaticSource, error) {
	universePath := filepath.Join(dir, "universe.json")
	data, err := os.ReadFile(universePath)
	if err != nil {
		return nil, fmt.Errorf("reading universe at %s: %w", universePath, err)
	}
	var universe []models.StockMeta
	if err := json.Unmarshal(data, &universe); err != nil {
		return nil, fmt.Errorf("decoding universe: %w", err)
	}

	paths, err := filepath.Glob(filepath.Join(dir, "series", "*.json"))
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no series files under %s", filepath.Join(dir, "series"))
	}

	series := make(map[string]models.PriceSeries, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading series %s: %w", path, err)
		}
		var s models.PriceSeries
		if err := json.Unmarshal(data, &s); err != nil {
			return nil, fmt.Errorf("decoding series %s: %w", path, err)
		}
		if s.Code == "" {
			s.Code = strings.TrimSuffix(filepath.Base(path), ".json")
		}
		series[s.Code] = s
	}

	return NewStaticSource(universe, series)
}
