package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/stock-screener/internal/models"
)

const validConfigYAML = `
app:
  name: stock-screener
  environment: development
  log_level: info
market_data:
  provider: eastmoney
  base_url: https://quotes.example.com
  timeout_seconds: 30
  max_retries: 3
  rate_limit: 5.0
  cache_ttl_seconds: 300
screener:
  strategy: technical
  profiles_path: config/strategies.yaml
  results_dir: results
  workers: 4
backtest:
  start_date: "2025-01-01"
  end_date: "2025-06-30"
  holding_period_days: 10
  stop_loss_pct: 8.0
  take_profit_pct: 15.0
  position_mode: equal
  output_path: output/report.json
metrics:
  enabled: true
  port: 9100
  path: /metrics
`

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadValidConfig(t *testing.T) {
	cfg, err := Load(writeTempConfig(t, validConfigYAML))
	require.NoError(t, err)
	require.NoError(t, Validate(cfg))

	assert.Equal(t, "stock-screener", cfg.App.Name)
	assert.Equal(t, "eastmoney", cfg.MarketData.Provider)
	assert.Equal(t, "technical", cfg.Screener.Strategy)
	assert.True(t, cfg.IsDevelopment())
	assert.False(t, cfg.IsProduction())
	assert.Equal(t, ":9100", cfg.MetricsAddress())
}

func TestLoadExpandsEnvironmentVariables(t *testing.T) {
	t.Setenv("TEST_SCREENER_BASE_URL", "https://mirror.example.com")
	path := writeTempConfig(t, `
app:
  name: stock-screener
  environment: development
  log_level: info
market_data:
  provider: eastmoney
  base_url: ${TEST_SCREENER_BASE_URL}
  timeout_seconds: 30
  max_retries: 3
  rate_limit: 5.0
  cache_ttl_seconds: 300
screener:
  strategy: technical
  profiles_path: config/strategies.yaml
  results_dir: results
backtest:
  start_date: "2025-01-01"
  end_date: "2025-06-30"
  holding_period_days: 10
  position_mode: top
  output_path: output/report.json
metrics:
  enabled: true
  port: 9100
  path: /metrics
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://mirror.example.com", cfg.MarketData.BaseURL)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestValidateRejectsBadEnvironment(t *testing.T) {
	cfg, err := Load(writeTempConfig(t, validConfigYAML))
	require.NoError(t, err)

	cfg.App.Environment = "sandbox"
	err = Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Environment")
}

func TestValidateCrossFieldRules(t *testing.T) {
	base := func(t *testing.T) *Config {
		cfg, err := Load(writeTempConfig(t, validConfigYAML))
		require.NoError(t, err)
		return cfg
	}

	t.Run("backtest dates reversed", func(t *testing.T) {
		cfg := base(t)
		cfg.Backtest.StartDate = "2025-07-01"
		cfg.Backtest.EndDate = "2025-01-01"
		assert.Error(t, Validate(cfg))
	})

	t.Run("eastmoney requires base url", func(t *testing.T) {
		cfg := base(t)
		cfg.MarketData.BaseURL = ""
		assert.Error(t, Validate(cfg))
	})

	t.Run("static requires data dir", func(t *testing.T) {
		cfg := base(t)
		cfg.MarketData.Provider = "static"
		cfg.MarketData.DataDir = ""
		assert.Error(t, Validate(cfg))
	})

	t.Run("schedule requires cron", func(t *testing.T) {
		cfg := base(t)
		cfg.Schedule.Enabled = true
		cfg.Schedule.Cron = ""
		assert.Error(t, Validate(cfg))
	})

	t.Run("notify requires webhook", func(t *testing.T) {
		cfg := base(t)
		cfg.Notify.Enabled = true
		cfg.Notify.WebhookURL = ""
		assert.Error(t, Validate(cfg))
	})
}

func TestLoadWithDefaults(t *testing.T) {
	cfg, err := LoadWithDefaults(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "stock-screener", cfg.App.Name)
	assert.Equal(t, "development", cfg.App.Environment)
	assert.Equal(t, "eastmoney", cfg.MarketData.Provider)
	assert.Equal(t, 9100, cfg.Metrics.Port)
}

const validProfilesYAML = `
technical:
  display_name: Technical momentum
  macd_weight: 25
  rsi_weight: 20
  kdj_weight: 20
  bollinger_weight: 15
  volume_weight: 10
  ma_weight: 10
  min_score: 60
  max_stocks: 10
  min_market_cap: 5000000000
  max_recent_gain: 30
  volume_multiplier: 2.0
  analysis_period: 60
comprehensive:
  display_name: Comprehensive quality
  macd_weight: 25
  rsi_weight: 20
  kdj_weight: 20
  bollinger_weight: 15
  volume_weight: 10
  ma_weight: 10
  min_score: 75
  max_stocks: 8
  min_market_cap: 8000000000
  max_recent_gain: 25
  analysis_period: 90
`

func writeTempProfiles(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "strategies.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadProfiles(t *testing.T) {
	profiles, err := LoadProfiles(writeTempProfiles(t, validProfilesYAML))
	require.NoError(t, err)
	require.Len(t, profiles, 2)

	technical, err := profiles.Get("technical")
	require.NoError(t, err)
	assert.Equal(t, "technical", technical.Name)
	assert.Equal(t, 100.0, technical.WeightSum())
	assert.Equal(t, 60.0, technical.MinScore)

	comprehensive, err := profiles.Get("comprehensive")
	require.NoError(t, err)
	// volume_multiplier omitted: defaulted
	assert.Equal(t, 2.0, comprehensive.VolumeMultiplier)

	assert.Equal(t, []string{"comprehensive", "technical"}, profiles.Names())
}

func TestLoadProfilesUnknownName(t *testing.T) {
	profiles, err := LoadProfiles(writeTempProfiles(t, validProfilesYAML))
	require.NoError(t, err)

	_, err = profiles.Get("aggressive")
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrInvalidStrategyConfig))
}

func TestProfileValidation(t *testing.T) {
	valid := StrategyProfile{
		Name:             "p",
		MACDWeight:       25,
		RSIWeight:        20,
		KDJWeight:        20,
		BollingerWeight:  15,
		VolumeWeight:     10,
		MAWeight:         10,
		MinScore:         60,
		MaxStocks:        10,
		VolumeMultiplier: 2,
		AnalysisPeriod:   60,
	}
	require.NoError(t, valid.Validate())

	cases := []struct {
		name   string
		mutate func(*StrategyProfile)
	}{
		{"negative weight", func(p *StrategyProfile) { p.RSIWeight = -1 }},
		{"weights sum above 100", func(p *StrategyProfile) { p.MACDWeight = 60 }},
		{"zero weights", func(p *StrategyProfile) {
			p.MACDWeight, p.RSIWeight, p.KDJWeight = 0, 0, 0
			p.BollingerWeight, p.VolumeWeight, p.MAWeight = 0, 0, 0
		}},
		{"min score out of range", func(p *StrategyProfile) { p.MinScore = 120 }},
		{"max stocks below one", func(p *StrategyProfile) { p.MaxStocks = 0 }},
		{"zero volume multiplier", func(p *StrategyProfile) { p.VolumeMultiplier = 0 }},
		{"analysis period below warmup", func(p *StrategyProfile) { p.AnalysisPeriod = 20 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := valid
			tc.mutate(&p)
			err := p.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, models.ErrInvalidStrategyConfig))
		})
	}
}
