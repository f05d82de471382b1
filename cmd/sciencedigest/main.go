package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/sciencedigest/internal/app"
)

func main() {
	// Logging setup
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	var (
		envFiles    string
		feedsFlag   string
		topicOrder  string
		every       time.Duration
		noFeatured  bool
		showVersion bool
		cfg         app.Config
	)

	flag.StringVar(&envFiles, "env", ".env", "Comma-separated dotenv files loaded before reading the environment")
	flag.StringVar(&cfg.InputPath, "input", "", "JSON or YAML file of articles; when empty the feeds are read")
	flag.StringVar(&cfg.ConfigPath, "config", os.Getenv("DIGEST_CONFIG"), "YAML or JSON config file")
	flag.StringVar(&cfg.TablesPath, "tables", "", "YAML file replacing the topic, paywall and vocabulary tables")
	flag.StringVar(&cfg.OutputPath, "output", "digest.md", "Path to write the Markdown digest")
	flag.StringVar(&cfg.JSONPath, "json", "", "Optional path to write the digest as JSON")
	flag.StringVar(&cfg.PDFPath, "pdf", "", "Optional path to write the digest as PDF")
	flag.StringVar(&cfg.ExplainPath, "explain", "", "Optional path to write the distillation trace of published articles")
	flag.StringVar(&cfg.Title, "title", "", "Digest title")
	flag.StringVar(&feedsFlag, "feeds", "", "Comma-separated feed URLs, optionally TOPIC=URL; replaces the default feeds")
	flag.BoolVar(&noFeatured, "no-featured", false, "Skip the featured section")
	flag.StringVar(&cfg.DBPath, "db", "", "SQLite history database path")
	flag.BoolVar(&cfg.SkipSeen, "skip-seen", false, "Skip articles published by an earlier run (needs -db)")
	flag.StringVar(&cfg.CacheDir, "cache.dir", ".sciencedigest-cache", "HTTP cache directory; empty disables caching")
	flag.DurationVar(&cfg.CacheMaxAge, "cache.maxAge", 0, "Max age for cache entries before purge (e.g. 24h); 0 disables")
	flag.BoolVar(&cfg.CacheClear, "cache.clear", false, "Clear cache directory before run")
	flag.BoolVar(&cfg.CacheStrictPerms, "cache.strictPerms", false, "Restrict cache permissions (0700 dirs, 0600 files)")
	flag.StringVar(&cfg.UserAgent, "ua", "", "User-Agent for feed and page requests")
	flag.Float64Var(&cfg.Rate, "rate", 2, "Requests per second across all hosts; 0 disables the limit")
	flag.BoolVar(&cfg.NoPageFetch, "no-pages", false, "Use feed summaries without fetching article pages")
	flag.BoolVar(&cfg.IgnoreRobots, "ignore-robots", false, "Fetch article pages without consulting robots.txt")
	flag.IntVar(&cfg.Workers, "workers", 4, "Parallel page fetches and article workers")
	flag.IntVar(&cfg.PerTopic, "per-topic", 4, "Maximum articles per topic")
	flag.IntVar(&cfg.PerDomain, "per-domain", 0, "Maximum articles per host within a topic; 0 disables")
	flag.IntVar(&cfg.MaxTotal, "max", 0, "Maximum articles in the digest; 0 disables")
	flag.StringVar(&topicOrder, "topics", "", "Comma-separated topic display order")
	flag.BoolVar(&cfg.PreferImages, "prefer-images", true, "Prefer articles with an image within a topic")
	flag.BoolVar(&cfg.PreferStatistics, "prefer-stats", false, "Prefer articles with a statistic within a topic")
	flag.BoolVar(&cfg.IgnoreTopicHint, "ignore-topic-hint", false, "Keep articles whose topic differs from their feed's topic")
	flag.DurationVar(&every, "every", 0, "Rebuild the digest at this interval until interrupted; 0 runs once")
	flag.BoolVar(&cfg.Verbose, "v", false, "Verbose logging")
	flag.BoolVar(&showVersion, "version", false, "Print version and exit")
	flag.Parse()

	if showVersion {
		fmt.Printf("sciencedigest %s (%s, %s)\n", app.BuildVersion, app.BuildCommit, app.BuildDate)
		return
	}

	if err := app.LoadEnvFiles(app.SplitList(envFiles)...); err != nil {
		log.Warn().Err(err).Msg("dotenv not loaded")
	}
	app.ApplyEnvToConfig(&cfg)
	if cfg.ConfigPath != "" {
		fc, err := app.LoadConfigFile(cfg.ConfigPath)
		if err != nil {
			log.Error().Err(err).Str("config", cfg.ConfigPath).Msg("load config")
			os.Exit(1)
		}
		app.ApplyFileConfig(&cfg, fc)
	}
	if feedsFlag != "" {
		cfg.Feeds = app.ParseFeeds(feedsFlag)
	}
	if s := app.SplitList(topicOrder); len(s) > 0 {
		cfg.TopicOrder = s
	}
	if cfg.InputPath == "" {
		if len(cfg.Feeds) == 0 {
			cfg.Feeds = app.DefaultFeeds
		}
		if len(cfg.Featured) == 0 && !noFeatured {
			cfg.Featured = app.DefaultFeatured
		}
	}
	if noFeatured {
		cfg.Featured = nil
	}

	if cfg.Verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	if err := app.ValidateConfig(cfg); err != nil {
		log.Error().Err(err).Msg("invalid configuration")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := run(ctx, cfg)
	if every > 0 {
		err = loop(ctx, cfg, every, err)
	}
	if err != nil {
		log.Error().Err(err).Msg("run failed")
		// Exit code policy: 2 when nothing was publishable, 1 for failures.
		if errors.Is(err, app.ErrNoArticles) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

// loop rebuilds the digest every interval. A failed build is logged and
// retried on the next tick.
func loop(ctx context.Context, cfg app.Config, every time.Duration, first error) error {
	if first != nil {
		log.Warn().Err(first).Msg("digest build failed; will retry")
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("stopped")
			return nil
		case <-ticker.C:
			if err := run(ctx, cfg); err != nil && !errors.Is(err, context.Canceled) {
				log.Warn().Err(err).Msg("digest build failed; will retry")
			}
		}
	}
}

func run(ctx context.Context, cfg app.Config) error {
	a, err := app.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("init app: %w", err)
	}
	defer a.Close()

	return a.Run(ctx)
}
