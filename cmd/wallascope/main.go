package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/go-pkgz/lgr"
	"github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"

	"github.com/wallascope/wallascope/pkg/classifier"
	"github.com/wallascope/wallascope/pkg/config"
	"github.com/wallascope/wallascope/pkg/enrich"
	"github.com/wallascope/wallascope/pkg/notify"
	"github.com/wallascope/wallascope/pkg/pipeline"
	"github.com/wallascope/wallascope/pkg/repository"
	"github.com/wallascope/wallascope/pkg/scraper"
	"github.com/wallascope/wallascope/pkg/warehouse"
)

// Opts with all CLI options
type Opts struct {
	Config  string `short:"c" long:"config" env:"CONFIG" default:"config.yml" description:"config file path"`
	Search  string `short:"s" long:"search" env:"SEARCH_TERM" description:"ad-hoc search term added to the configured ones"`
	Visible bool   `long:"visible" env:"VISIBLE" description:"run the browser with a visible window"`
	Scrolls int    `long:"scrolls" env:"SCROLLS" description:"override the number of result page scrolls"`

	// Common options
	Debug   bool `long:"dbg" env:"DEBUG" description:"debug mode"`
	Version bool `short:"V" long:"version" description:"show version info"`
	NoColor bool `long:"no-color" env:"NO_COLOR" description:"disable color output"`
}

var revision = "unknown"

func main() {
	var opts Opts
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	if opts.Version {
		fmt.Printf("Version: %s\nGolang: %s\n", revision, runtime.Version())
		os.Exit(0)
	}

	setupLog(opts.Debug, opts.NoColor)

	lgr.Printf("[INFO] starting wallascope version %s", revision)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// handle termination signals
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan
		lgr.Printf("[INFO] termination signal received")
		cancel()
	}()

	if err := run(ctx, opts); err != nil {
		lgr.Printf("[ERROR] run failed: %v", err)
		os.Exit(1)
	}

	lgr.Printf("[INFO] shutdown complete")
}

func run(ctx context.Context, opts Opts) error {
	// secrets come from the environment, optionally via a local .env file
	if err := godotenv.Load(); err != nil {
		lgr.Printf("[DEBUG] no .env file loaded: %v", err)
	}

	over := config.Overrides{SearchTerm: opts.Search}
	if opts.Visible {
		headless := false
		over.Headless = &headless
	}
	if opts.Scrolls > 0 {
		over.Scrolls = &opts.Scrolls
	}

	cfg, err := config.Load(opts.Config, over)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	repos, err := repository.NewRepositories(ctx, repository.Config{
		DSN:             cfg.Database.DSN,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: time.Duration(cfg.Database.ConnMaxLifetime) * time.Second,
	})
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer repos.Close()

	browser, err := scraper.NewBrowser(scraper.BrowserConfig{
		Headless:  cfg.Scraping.Headless,
		UserAgent: cfg.Scraping.UserAgent,
		Timeout:   cfg.Scraping.NavigateTimeout,
	})
	if err != nil {
		return fmt.Errorf("start browser: %w", err)
	}
	defer browser.Close()

	engine := scraper.NewEngine(browser, scraper.Options{
		Scrolls:          cfg.Scraping.Scrolls,
		LoadMoreAttempts: cfg.Scraping.LoadMoreAttempts,
		JitterMin:        cfg.Scraping.JitterMin,
		JitterMax:        cfg.Scraping.JitterMax,
	}, scraper.NewDiagWriter(cfg.Paths.DiagDir), nil)

	intents := cfg.Intents()

	var enricher pipeline.Enricher
	if cfg.LLM.APIKey != "" {
		enricher = enrich.NewExtractor(enrich.Config{
			Endpoint:    cfg.LLM.Endpoint,
			APIKey:      cfg.LLM.APIKey,
			Model:       cfg.LLM.Model,
			Temperature: cfg.LLM.Temperature,
			MaxTokens:   cfg.LLM.MaxTokens,
			Timeout:     cfg.LLM.Timeout,
			BatchPause:  cfg.LLM.BatchPause,
		})
	} else {
		lgr.Printf("[WARN] no llm api key configured, enrichment disabled")
	}

	var syncer pipeline.WarehouseSyncer
	if cfg.Warehouse.Enabled {
		wh, err := warehouse.NewSyncer(warehouse.Config{
			DSN:           cfg.Warehouse.DSN,
			IncludedTable: cfg.Warehouse.IncludedTable,
			ExcludedTable: cfg.Warehouse.ExcludedTable,
		})
		if err != nil {
			lgr.Printf("[WARN] warehouse unavailable, sync disabled: %v", err)
		} else {
			defer wh.Close()
			syncer = wh
		}
	}

	pipe := pipeline.New(pipeline.Params{
		Harvester:  engine,
		Classifier: classifier.NewEngine(intents),
		Business:   classifier.NewBusinessFilterFromFiles(cfg.Filter.BlacklistFile, cfg.Filter.WhitelistFile),
		Enricher:   enricher,
		Warehouse:  syncer,
		Notifier:   notify.NewTelegram(cfg.Telegram.Token, cfg.Telegram.ChatID),
		Tracker:    repos.Tracker,
		Listings:   repos.Listings,
		Intents:    intents,
		Config: pipeline.Config{
			OnIntentFailure: cfg.Pipeline.OnIntentFailure,
			IntentRetries:   cfg.Pipeline.IntentRetries,
			IntentBackoff:   cfg.Pipeline.IntentBackoff,
			StageRetries:    cfg.Pipeline.StageRetries,
			StageBackoff:    cfg.Pipeline.StageBackoff,
			DataDir:         cfg.Paths.DataDir,
		},
	})

	res, err := pipe.Run(ctx)
	if err != nil {
		return fmt.Errorf("pipeline: %w", err)
	}
	lgr.Printf("[INFO] run %d done, %d listings exported to %s", res.RunID, res.Final, res.ExportPath)
	return nil
}

func setupLog(dbg, noColor bool) {
	logOpts := []lgr.Option{lgr.Msec, lgr.LevelBraces}
	if dbg {
		logOpts = append(logOpts, lgr.Debug, lgr.StackTraceOnError)
	}

	if !noColor {
		colorizer := lgr.Mapper{
			ErrorFunc:  func(s string) string { return color.New(color.FgHiRed).Sprint(s) },
			WarnFunc:   func(s string) string { return color.New(color.FgRed).Sprint(s) },
			InfoFunc:   func(s string) string { return color.New(color.FgYellow).Sprint(s) },
			DebugFunc:  func(s string) string { return color.New(color.FgWhite).Sprint(s) },
			CallerFunc: func(s string) string { return color.New(color.FgBlue).Sprint(s) },
			TimeFunc:   func(s string) string { return color.New(color.FgCyan).Sprint(s) },
		}
		logOpts = append(logOpts, lgr.Map(colorizer))
	}

	lgr.SetupStdLogger(logOpts...)
	lgr.Setup(logOpts...)
}
