package screener

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/stock-screener/internal/marketdata"
	"github.com/yourusername/stock-screener/internal/models"
)

// SelectionSummary is the aggregate attached to a stored selection.
type SelectionSummary struct {
	Count    int     `json:"count"`
	TopScore float64 `json:"top_score"`
	AvgScore float64 `json:"avg_score"`
}

// StoredSelection is the on-disk shape of one screening pass.
type StoredSelection struct {
	Date     string               `json:"date"`
	Strategy string               `json:"strategy"`
	Results  []models.ScoreResult `json:"results"`
	Summary  SelectionSummary     `json:"summary"`
}

// Store persists selections as one JSON file per pass so later runs
// and the performance report can read them back.
type Store struct {
	dir    string
	logger *logrus.Logger
}

// NewStore creates a selection store rooted at dir.
func NewStore(dir string, logger *logrus.Logger) (*Store, error) {
	if logger == nil {
		logger = logrus.New()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating results dir %s: %w", dir, err)
	}
	return &Store{dir: dir, logger: logger}, nil
}

// Save writes the selection to selection_<date>_<strategy>.json and
// refreshes latest.json.
func (s *Store) Save(selection models.SelectionResult) error {
	stored := StoredSelection{
		Date:     selection.Date.Format("2006-01-02"),
		Strategy: selection.Strategy,
		Results:  selection.Results,
		Summary:  summarize(selection.Results),
	}

	data, err := json.MarshalIndent(stored, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding selection: %w", err)
	}

	path := s.path(stored.Date, stored.Strategy)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing selection to %s: %w", path, err)
	}
	if err := os.WriteFile(filepath.Join(s.dir, "latest.json"), data, 0o644); err != nil {
		return fmt.Errorf("writing latest selection: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"path":     path,
		"selected": stored.Summary.Count,
	}).Info("Selection saved")
	return nil
}

// Load reads back the selection for one date and strategy.
func (s *Store) Load(date, strategy string) (StoredSelection, error) {
	return s.read(s.path(date, strategy))
}

// LoadRecent returns the stored selections for the given strategy from
// the trailing window, oldest first.
func (s *Store) LoadRecent(strategy string, days int) ([]StoredSelection, error) {
	pattern := filepath.Join(s.dir, fmt.Sprintf("selection_*_%s.json", strategy))
	paths, err := filepath.Glob(pattern)
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)

	cutoff := time.Now().AddDate(0, 0, -days).Format("2006-01-02")
	var out []StoredSelection
	for _, path := range paths {
		stored, err := s.read(path)
		if err != nil {
			s.logger.WithError(err).WithField("path", path).Warn("Skipping unreadable selection file")
			continue
		}
		if stored.Date < cutoff {
			continue
		}
		out = append(out, stored)
	}
	return out, nil
}

func (s *Store) path(date, strategy string) string {
	return filepath.Join(s.dir, fmt.Sprintf("selection_%s_%s.json", date, strategy))
}

func (s *Store) read(path string) (StoredSelection, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return StoredSelection{}, fmt.Errorf("reading selection %s: %w", path, err)
	}
	var stored StoredSelection
	if err := json.Unmarshal(data, &stored); err != nil {
		return StoredSelection{}, fmt.Errorf("decoding selection %s: %w", path, err)
	}
	return stored, nil
}

func summarize(results []models.ScoreResult) SelectionSummary {
	summary := SelectionSummary{Count: len(results)}
	if len(results) == 0 {
		return summary
	}
	total := 0.0
	for _, r := range results {
		total += r.Total
		if r.Total > summary.TopScore {
			summary.TopScore = r.Total
		}
	}
	summary.AvgScore = total / float64(len(results))
	return summary
}

// PerformanceEntry tracks one past pick against its current price.
type PerformanceEntry struct {
	Date       string  `json:"date"`
	Code       string  `json:"code"`
	Name       string  `json:"name"`
	Score      float64 `json:"score"`
	EntryPrice float64 `json:"entry_price"`
	LastPrice  float64 `json:"last_price"`
	ReturnPct  float64 `json:"return_pct"`
}

// PerformanceReport aggregates how the trailing window of picks has
// fared since selection.
type PerformanceReport struct {
	Strategy     string             `json:"strategy"`
	WindowDays   int                `json:"window_days"`
	Entries      []PerformanceEntry `json:"entries"`
	AvgReturnPct float64            `json:"avg_return_pct"`
	WinRate      float64            `json:"win_rate"`
}

// RecentPerformance prices every pick from the trailing window at the
// latest available close. Picks whose quotes cannot be fetched are
// skipped with a warning.
func (s *Store) RecentPerformance(ctx context.Context, source marketdata.Source, strategy string, days int) (PerformanceReport, error) {
	stored, err := s.LoadRecent(strategy, days)
	if err != nil {
		return PerformanceReport{}, err
	}

	report := PerformanceReport{Strategy: strategy, WindowDays: days}
	now := time.Now()
	wins := 0
	for _, sel := range stored {
		for _, pick := range sel.Results {
			series, err := source.GetPriceSeries(ctx, pick.Code, now.AddDate(0, 0, -14), now)
			if err != nil {
				s.logger.WithError(err).WithField("code", pick.Code).Warn("Skipping pick in performance report")
				continue
			}
			last, ok := series.Last()
			if !ok || pick.Price == 0 {
				continue
			}
			entry := PerformanceEntry{
				Date:       sel.Date,
				Code:       pick.Code,
				Name:       pick.Name,
				Score:      pick.Total,
				EntryPrice: pick.Price,
				LastPrice:  last.Close,
				ReturnPct:  (last.Close/pick.Price - 1) * 100,
			}
			report.Entries = append(report.Entries, entry)
			report.AvgReturnPct += entry.ReturnPct
			if entry.ReturnPct > 0 {
				wins++
			}
		}
	}
	if len(report.Entries) > 0 {
		report.AvgReturnPct /= float64(len(report.Entries))
		report.WinRate = float64(wins) / float64(len(report.Entries)) * 100
	}
	return report, nil
}
