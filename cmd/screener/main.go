// Package main provides the stock screener CLI: one-shot screening
// runs, the scheduled daemon, and the recent-performance report.
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/stock-screener/internal/config"
	"github.com/yourusername/stock-screener/internal/health"
	"github.com/yourusername/stock-screener/internal/logger"
	"github.com/yourusername/stock-screener/internal/marketdata"
	"github.com/yourusername/stock-screener/internal/metrics"
	"github.com/yourusername/stock-screener/internal/models"
	"github.com/yourusername/stock-screener/internal/notify"
	"github.com/yourusername/stock-screener/internal/scheduler"
	"github.com/yourusername/stock-screener/internal/scoring"
	"github.com/yourusername/stock-screener/internal/screener"
)

// Build information - set via ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var (
	configFile   string
	strategyFlag string
	dateFlag     string
	daysFlag     int

	cfg *config.Config
	lg  *logrus.Logger
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "config/config.yaml", "Path to configuration file")
	rootCmd.PersistentFlags().StringVarP(&strategyFlag, "strategy", "s", "", "Strategy profile name (overrides config)")

	runCmd.Flags().StringVar(&dateFlag, "date", "", "Screen as of this date (YYYY-MM-DD, default today)")
	performanceCmd.Flags().IntVar(&daysFlag, "days", 30, "Trailing window in days")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(performanceCmd)
	rootCmd.AddCommand(versionCmd)
}

var rootCmd = &cobra.Command{
	Use:   "screener",
	Short: "Daily A-share technical screener",
	Long:  `Screens the stock universe with technical indicator scoring and emits a ranked daily selection.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "version" {
			return nil
		}
		var err error
		cfg, err = config.LoadWithDefaults(configFile)
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		if err := config.Validate(cfg); err != nil {
			return err
		}
		lg = logger.NewLogger(cfg.App.LogLevel)
		metrics.InitRegistry()
		return nil
	},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one screening pass and save the selection",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
		defer cancel()

		asOf := time.Now()
		if dateFlag != "" {
			parsed, err := time.Parse("2006-01-02", dateFlag)
			if err != nil {
				return fmt.Errorf("invalid --date: %w", err)
			}
			asOf = parsed
		}

		deps, err := buildDeps()
		if err != nil {
			return err
		}
		selection, err := runScreen(ctx, deps, asOf)
		if err != nil {
			return err
		}
		fmt.Print(notify.Digest(notify.BuildPayload(selection)))
		return nil
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the scheduled screener with a metrics endpoint",
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, err := buildDeps()
		if err != nil {
			return err
		}

		if cfg.Metrics.Enabled {
			go serveMetrics()
		}

		if !cfg.Schedule.Enabled {
			return fmt.Errorf("schedule is disabled in configuration; use 'screener run' for one-shot passes")
		}

		healthCtx, stopHealth := context.WithCancel(context.Background())
		defer stopHealth()
		healthSrv := health.NewServer(health.Config{
			ServiceName: cfg.App.Name,
			Version:     Version,
			Commit:      GitCommit,
			Logger:      lg,
		})
		healthSrv.AddCheck("market_data", func(ctx context.Context) error {
			_, err := deps.source.TradingDays(ctx, time.Now().AddDate(0, 0, -10), time.Now())
			return err
		})
		if err := healthSrv.Start(healthCtx); err != nil {
			return err
		}

		sched := scheduler.NewScheduler(cfg.Schedule.Timezone, lg)
		err = sched.ScheduleDailyScreen(cfg.Schedule.Cron, func(ctx context.Context) error {
			_, err := runScreen(ctx, deps, time.Now())
			return err
		})
		if err != nil {
			return err
		}
		if err := sched.Start(); err != nil {
			return err
		}
		healthSrv.SetReady(true)
		lg.WithField("next_run", sched.GetNextRun()).Info("Screener daemon started")

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		lg.Info("Shutting down")
		return sched.Stop()
	},
}

var performanceCmd = &cobra.Command{
	Use:   "performance",
	Short: "Report how recent selections have performed since pick",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()

		deps, err := buildDeps()
		if err != nil {
			return err
		}
		report, err := deps.store.RecentPerformance(ctx, deps.source, deps.profile.Name, daysFlag)
		if err != nil {
			return err
		}

		fmt.Printf("Performance of %s picks over the last %d days\n", report.Strategy, report.WindowDays)
		if len(report.Entries) == 0 {
			fmt.Println("No tracked picks in the window.")
			return nil
		}
		for _, entry := range report.Entries {
			fmt.Printf("%s  %s %s  score %.1f  %.2f -> %.2f  %+.2f%%\n",
				entry.Date, entry.Code, entry.Name, entry.Score, entry.EntryPrice, entry.LastPrice, entry.ReturnPct)
		}
		fmt.Printf("Average return: %+.2f%%  Win rate: %.1f%%\n", report.AvgReturnPct, report.WinRate)
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print build information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("screener %s (commit %s, built %s)\n", Version, GitCommit, BuildDate)
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

type deps struct {
	source   marketdata.Source
	universe marketdata.UniverseProvider
	profile  config.StrategyProfile
	pipeline *screener.Pipeline
	store    *screener.Store
	notifier *notify.Notifier
}

func buildDeps() (*deps, error) {
	profiles, err := config.LoadProfiles(cfg.Screener.ProfilesPath)
	if err != nil {
		return nil, err
	}
	strategy := cfg.Screener.Strategy
	if strategyFlag != "" {
		strategy = strategyFlag
	}
	profile, err := profiles.Get(strategy)
	if err != nil {
		return nil, err
	}

	source, universe, err := buildSource(cfg, lg)
	if err != nil {
		return nil, err
	}
	store, err := screener.NewStore(cfg.Screener.ResultsDir, lg)
	if err != nil {
		return nil, err
	}

	webhook := ""
	if cfg.Notify.Enabled {
		webhook = cfg.Notify.WebhookURL
	}

	return &deps{
		source:   source,
		universe: universe,
		profile:  profile,
		pipeline: screener.NewPipeline(source, universe, scoring.NewScorer(), lg, cfg.Screener.Workers),
		store:    store,
		notifier: notify.NewNotifier(webhook, lg),
	}, nil
}

func buildSource(cfg *config.Config, lg *logrus.Logger) (marketdata.Source, marketdata.UniverseProvider, error) {
	switch cfg.MarketData.Provider {
	case "static":
		static, err := marketdata.LoadStaticDir(cfg.MarketData.DataDir)
		if err != nil {
			return nil, nil, err
		}
		return static, static, nil
	default:
		httpCfg := marketdata.DefaultHTTPClientConfig()
		httpCfg.Timeout = time.Duration(cfg.MarketData.TimeoutSeconds) * time.Second
		httpCfg.MaxRetries = cfg.MarketData.MaxRetries
		httpCfg.RateLimit = cfg.MarketData.RateLimit
		client := marketdata.NewRateLimitedHTTPClient(httpCfg, lg)
		source := marketdata.NewEastmoneySource(marketdata.EastmoneyConfig{
			BaseURL:  cfg.MarketData.BaseURL,
			CacheTTL: time.Duration(cfg.MarketData.CacheTTLSeconds) * time.Second,
		}, client, lg)
		return source, source, nil
	}
}

func runScreen(ctx context.Context, deps *deps, asOf time.Time) (models.SelectionResult, error) {
	selection, err := deps.pipeline.Screen(ctx, asOf, deps.profile)
	if err != nil {
		return models.SelectionResult{}, err
	}
	if err := deps.store.Save(selection); err != nil {
		return models.SelectionResult{}, err
	}
	if err := deps.notifier.Send(ctx, notify.BuildPayload(selection)); err != nil {
		lg.WithError(err).Warn("Notification delivery failed")
	}
	return selection, nil
}

func serveMetrics() {
	mux := http.NewServeMux()
	mux.Handle(cfg.Metrics.Path, metrics.Handler())
	lg.WithField("addr", cfg.MetricsAddress()).Info("Metrics endpoint listening")
	if err := http.ListenAndServe(cfg.MetricsAddress(), mux); err != nil {
		lg.WithError(err).Error("Metrics endpoint failed")
	}
}
