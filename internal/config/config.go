// Package config provides configuration management for the stock screener.
package config

import "fmt"

// Config represents the complete application configuration
type Config struct {
	App        AppConfig        `mapstructure:"app" validate:"required"`
	MarketData MarketDataConfig `mapstructure:"market_data" validate:"required"`
	Screener   ScreenerConfig   `mapstructure:"screener" validate:"required"`
	Backtest   BacktestConfig   `mapstructure:"backtest" validate:"required"`
	Metrics    MetricsConfig    `mapstructure:"metrics" validate:"required"`
	Schedule   ScheduleConfig   `mapstructure:"schedule"`
	Notify     NotifyConfig     `mapstructure:"notify"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
}

// MarketDataConfig represents the market-data provider configuration
type MarketDataConfig struct {
	Provider        string  `mapstructure:"provider" validate:"required,oneof=eastmoney static"`
	BaseURL         string  `mapstructure:"base_url" validate:"omitempty,url"`
	DataDir         string  `mapstructure:"data_dir"`
	TimeoutSeconds  int     `mapstructure:"timeout_seconds" validate:"required,gt=0"`
	MaxRetries      int     `mapstructure:"max_retries" validate:"gte=0"`
	RateLimit       float64 `mapstructure:"rate_limit" validate:"required,gt=0"`
	CacheTTLSeconds int     `mapstructure:"cache_ttl_seconds" validate:"required,gt=0"`
}

// ScreenerConfig represents the screening pipeline configuration
type ScreenerConfig struct {
	Strategy     string `mapstructure:"strategy" validate:"required"`
	ProfilesPath string `mapstructure:"profiles_path" validate:"required"`
	ResultsDir   string `mapstructure:"results_dir" validate:"required"`
	Workers      int    `mapstructure:"workers" validate:"gte=0"`
}

// BacktestConfig represents backtesting configuration
type BacktestConfig struct {
	StartDate         string  `mapstructure:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate           string  `mapstructure:"end_date" validate:"required,datetime=2006-01-02"`
	HoldingPeriodDays int     `mapstructure:"holding_period_days" validate:"required,gt=0"`
	StopLossPct       float64 `mapstructure:"stop_loss_pct" validate:"gte=0"`
	TakeProfitPct     float64 `mapstructure:"take_profit_pct" validate:"gte=0"`
	PositionMode      string  `mapstructure:"position_mode" validate:"required,oneof=top equal"`
	OutputPath        string  `mapstructure:"output_path" validate:"required"`
}

// MetricsConfig represents metrics and monitoring configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Port    int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Path    string `mapstructure:"path" validate:"required"`
}

// ScheduleConfig represents the daily screening schedule
type ScheduleConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Cron     string `mapstructure:"cron"`
	Timezone string `mapstructure:"timezone"`
}

// NotifyConfig represents selection notification delivery
type NotifyConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	WebhookURL string `mapstructure:"webhook_url" validate:"omitempty,url"`
}

// IsDevelopment checks if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsProduction checks if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// MetricsAddress returns the listen address for the metrics endpoint
func (c *Config) MetricsAddress() string {
	return fmt.Sprintf(":%d", c.Metrics.Port)
}
