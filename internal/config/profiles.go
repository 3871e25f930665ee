package config

import (
	"bytes"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/viper"

	"github.com/yourusername/stock-screener/internal/models"
)

// StrategyProfile is one named set of scoring weights and filter
// thresholds. Profiles are data, not code: they are loaded from a
// user-editable YAML table and validated once at load time.
type StrategyProfile struct {
	Name        string `mapstructure:"-"`
	DisplayName string `mapstructure:"display_name"`

	// Category weights, in points. The total score is capped by their sum.
	MACDWeight      float64 `mapstructure:"macd_weight"`
	RSIWeight       float64 `mapstructure:"rsi_weight"`
	KDJWeight       float64 `mapstructure:"kdj_weight"`
	BollingerWeight float64 `mapstructure:"bollinger_weight"`
	VolumeWeight    float64 `mapstructure:"volume_weight"`
	MAWeight        float64 `mapstructure:"ma_weight"`

	// Selection thresholds.
	MinScore  float64 `mapstructure:"min_score"`
	MaxStocks int     `mapstructure:"max_stocks"`

	// Universe filters.
	MinMarketCap  float64 `mapstructure:"min_market_cap"`
	MaxRecentGain float64 `mapstructure:"max_recent_gain"`

	// Indicator thresholds.
	VolumeMultiplier float64 `mapstructure:"volume_multiplier"`
	AnalysisPeriod   int     `mapstructure:"analysis_period"`
}

// WeightSum returns the total points available across all categories.
func (p StrategyProfile) WeightSum() float64 {
	return p.MACDWeight + p.RSIWeight + p.KDJWeight + p.BollingerWeight + p.VolumeWeight + p.MAWeight
}

// Validate checks the profile invariants. Violations wrap
// models.ErrInvalidStrategyConfig and abort the run before any scoring.
func (p StrategyProfile) Validate() error {
	weights := map[string]float64{
		"macd_weight":      p.MACDWeight,
		"rsi_weight":       p.RSIWeight,
		"kdj_weight":       p.KDJWeight,
		"bollinger_weight": p.BollingerWeight,
		"volume_weight":    p.VolumeWeight,
		"ma_weight":        p.MAWeight,
	}
	for name, w := range weights {
		if w < 0 {
			return fmt.Errorf("profile %s: %s is negative (%.2f): %w", p.Name, name, w, models.ErrInvalidStrategyConfig)
		}
	}
	if p.WeightSum() <= 0 {
		return fmt.Errorf("profile %s: category weights sum to zero: %w", p.Name, models.ErrInvalidStrategyConfig)
	}
	if p.WeightSum() > 100 {
		return fmt.Errorf("profile %s: category weights sum to %.2f, must not exceed 100: %w", p.Name, p.WeightSum(), models.ErrInvalidStrategyConfig)
	}
	if p.MinScore < 0 || p.MinScore > 100 {
		return fmt.Errorf("profile %s: min_score %.2f outside [0,100]: %w", p.Name, p.MinScore, models.ErrInvalidStrategyConfig)
	}
	if p.MaxStocks < 1 {
		return fmt.Errorf("profile %s: max_stocks must be positive: %w", p.Name, models.ErrInvalidStrategyConfig)
	}
	if p.MinMarketCap < 0 {
		return fmt.Errorf("profile %s: min_market_cap is negative: %w", p.Name, models.ErrInvalidStrategyConfig)
	}
	if p.VolumeMultiplier <= 0 {
		return fmt.Errorf("profile %s: volume_multiplier must be positive: %w", p.Name, models.ErrInvalidStrategyConfig)
	}
	if p.AnalysisPeriod < 35 {
		return fmt.Errorf("profile %s: analysis_period %d shorter than the longest indicator warm-up: %w", p.Name, p.AnalysisPeriod, models.ErrInvalidStrategyConfig)
	}
	return nil
}

// Profiles is the validated strategy profile table keyed by name.
type Profiles map[string]StrategyProfile

// Get resolves a named profile.
func (p Profiles) Get(name string) (StrategyProfile, error) {
	profile, ok := p[name]
	if !ok {
		return StrategyProfile{}, fmt.Errorf("unknown strategy profile %q (have %v): %w", name, p.Names(), models.ErrInvalidStrategyConfig)
	}
	return profile, nil
}

// Names returns the profile names in sorted order.
func (p Profiles) Names() []string {
	names := make([]string, 0, len(p))
	for name := range p {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LoadProfiles reads the strategy profile table from a YAML file and
// validates every entry. The file maps profile names to their numeric
// configuration; users extend it without touching the engine.
func LoadProfiles(path string) (Profiles, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read strategy profiles at %s: %w", path, err)
	}

	v := viper.New()
	v.SetConfigType("yaml")
	if err := v.ReadConfig(bytes.NewBuffer(data)); err != nil {
		return nil, fmt.Errorf("failed to parse strategy profiles: %w", err)
	}

	raw := map[string]StrategyProfile{}
	if err := v.Unmarshal(&raw); err != nil {
		return nil, fmt.Errorf("failed to unmarshal strategy profiles: %w", err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("strategy profile table at %s is empty: %w", path, models.ErrInvalidStrategyConfig)
	}

	profiles := make(Profiles, len(raw))
	for name, profile := range raw {
		profile.Name = name
		if profile.VolumeMultiplier == 0 {
			profile.VolumeMultiplier = 2.0
		}
		if profile.AnalysisPeriod == 0 {
			profile.AnalysisPeriod = 60
		}
		if err := profile.Validate(); err != nil {
			return nil, err
		}
		profiles[name] = profile
	}
	return profiles, nil
}
