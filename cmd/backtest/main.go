// Package main provides the entry point for the backtesting CLI tool.
package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/stock-screener/internal/backtest"
	"github.com/yourusername/stock-screener/internal/config"
	"github.com/yourusername/stock-screener/internal/logger"
	"github.com/yourusername/stock-screener/internal/marketdata"
	"github.com/yourusername/stock-screener/internal/metrics"
	"github.com/yourusername/stock-screener/internal/scoring"
	"github.com/yourusername/stock-screener/internal/screener"
)

func main() {
	var (
		configPath   = flag.String("config", "config/config.yaml", "Path to config file")
		strategyName = flag.String("strategy", "", "Strategy profile name (overrides config)")
		startDate    = flag.String("start-date", "", "Override start date (YYYY-MM-DD)")
		endDate      = flag.String("end-date", "", "Override end date (YYYY-MM-DD)")
		output       = flag.String("output", "", "Output path for the JSON report (overrides config)")
		csvExport    = flag.String("csv", "", "Optional CSV trade export path")
	)
	flag.Parse()

	ctx := context.Background()

	cfg := loadConfig(*configPath)
	lg := logger.NewLogger(cfg.App.LogLevel)
	metrics.InitRegistry()

	btConfig := buildBacktestConfig(cfg, *output, *startDate, *endDate, lg)
	profile := resolveProfile(cfg, *strategyName, lg)
	engine := buildEngine(cfg, btConfig, profile, lg)

	lg.WithFields(logrus.Fields{"strategy": profile.Name}).Info("Starting backtest")
	_, report, err := engine.Run(ctx)
	if err != nil {
		lg.Fatalf("Backtest failed: %v", err)
	}

	fmt.Print(backtest.GenerateConsoleReport(report))
	if btConfig.OutputPath != "" {
		if err := backtest.WriteJSONReport(report, btConfig.OutputPath); err != nil {
			lg.Fatalf("Failed to write report: %v", err)
		}
		lg.WithField("path", btConfig.OutputPath).Info("Report written")
	}
	if *csvExport != "" {
		if err := backtest.GenerateCSVExport(report, *csvExport); err != nil {
			lg.Fatalf("Failed to write CSV export: %v", err)
		}
	}
}

func loadConfig(path string) *config.Config {
	cfg, err := config.Load(path)
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}
	if err := config.Validate(cfg); err != nil {
		logrus.Fatalf("Invalid configuration: %v", err)
	}
	return cfg
}

func buildBacktestConfig(cfg *config.Config, output, startOverride, endOverride string, lg *logrus.Logger) backtest.BacktestConfig {
	btConfig, err := backtest.FromConfig(&cfg.Backtest)
	if err != nil {
		lg.Fatalf("Invalid backtest config: %v", err)
	}
	if output != "" {
		btConfig.OutputPath = output
	}
	if startOverride != "" {
		parsed, err := time.Parse("2006-01-02", startOverride)
		if err != nil {
			lg.Fatalf("Invalid start date: %v", err)
		}
		btConfig.StartDate = parsed
	}
	if endOverride != "" {
		parsed, err := time.Parse("2006-01-02", endOverride)
		if err != nil {
			lg.Fatalf("Invalid end date: %v", err)
		}
		btConfig.EndDate = parsed
	}
	return btConfig
}

func resolveProfile(cfg *config.Config, override string, lg *logrus.Logger) config.StrategyProfile {
	profiles, err := config.LoadProfiles(cfg.Screener.ProfilesPath)
	if err != nil {
		lg.Fatalf("Failed to load strategy profiles: %v", err)
	}
	name := cfg.Screener.Strategy
	if override != "" {
		name = override
	}
	profile, err := profiles.Get(name)
	if err != nil {
		lg.Fatalf("Unknown strategy: %v", err)
	}
	return profile
}

func buildEngine(cfg *config.Config, btConfig backtest.BacktestConfig, profile config.StrategyProfile, lg *logrus.Logger) *backtest.Engine {
	var (
		source   marketdata.Source
		universe marketdata.UniverseProvider
	)
	switch cfg.MarketData.Provider {
	case "static":
		static, err := marketdata.LoadStaticDir(cfg.MarketData.DataDir)
		if err != nil {
			lg.Fatalf("Failed to load static market data: %v", err)
		}
		source, universe = static, static
	default:
		httpCfg := marketdata.DefaultHTTPClientConfig()
		httpCfg.Timeout = time.Duration(cfg.MarketData.TimeoutSeconds) * time.Second
		httpCfg.MaxRetries = cfg.MarketData.MaxRetries
		httpCfg.RateLimit = cfg.MarketData.RateLimit
		client := marketdata.NewRateLimitedHTTPClient(httpCfg, lg)
		em := marketdata.NewEastmoneySource(marketdata.EastmoneyConfig{
			BaseURL:  cfg.MarketData.BaseURL,
			CacheTTL: time.Duration(cfg.MarketData.CacheTTLSeconds) * time.Second,
		}, client, lg)
		source, universe = em, em
	}

	pipeline := screener.NewPipeline(source, universe, scoring.NewScorer(), lg, cfg.Screener.Workers)
	engine, err := backtest.NewEngine(btConfig, source, pipeline, profile, lg)
	if err != nil {
		lg.Fatalf("Failed to create engine: %v", err)
	}
	return engine
}
