package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/hyperifyio/sciencedigest/internal/access"
	"github.com/hyperifyio/sciencedigest/internal/aggregate"
	"github.com/hyperifyio/sciencedigest/internal/cache"
	"github.com/hyperifyio/sciencedigest/internal/config"
	"github.com/hyperifyio/sciencedigest/internal/digest"
	"github.com/hyperifyio/sciencedigest/internal/distill"
	"github.com/hyperifyio/sciencedigest/internal/extract"
	"github.com/hyperifyio/sciencedigest/internal/feed"
	"github.com/hyperifyio/sciencedigest/internal/fetch"
	"github.com/hyperifyio/sciencedigest/internal/render"
	"github.com/hyperifyio/sciencedigest/internal/robots"
	sel "github.com/hyperifyio/sciencedigest/internal/select"
	"github.com/hyperifyio/sciencedigest/internal/store"
)

// ErrNoArticles is returned when no article survives access checks,
// classification and selection. The CLI maps it to exit code 2.
var ErrNoArticles = errors.New("no articles to publish")

// dropSeen counts candidates skipped because an earlier run published them.
const dropSeen = "already published"

type App struct {
	cfg       Config
	tables    config.Tables
	gate      *access.Gate
	distiller *distill.Distiller
	pipeline  *digest.Pipeline
	client    *fetch.Client
	extractor extract.Extractor
	robots    *robots.Checker
	httpCache *cache.HTTPCache
	history   *store.Store
	now       func() time.Time
}

func New(ctx context.Context, cfg Config) (*App, error) {
	tables, err := config.LoadTables(cfg.TablesPath)
	if err != nil {
		return nil, fmt.Errorf("load tables: %w", err)
	}
	a := &App{cfg: cfg, tables: tables, gate: tables.Gate(), now: time.Now}
	a.distiller = distill.New(tables.Simplifier(), distill.Options{})
	a.pipeline, err = digest.NewPipeline(a.gate, tables.Classifier(), a.distiller, digest.Options{
		Workers:         cfg.Workers,
		IgnoreTopicHint: cfg.IgnoreTopicHint,
	})
	if err != nil {
		return nil, err
	}

	if cfg.CacheDir != "" {
		if cfg.CacheClear {
			if err := cache.ClearDir(cfg.CacheDir); err != nil {
				log.Warn().Err(err).Str("dir", cfg.CacheDir).Msg("cache clear failed")
			}
		}
		if n, err := cache.PurgeOlderThan(cfg.CacheDir, cfg.CacheMaxAge); err == nil && n > 0 {
			log.Debug().Int("removed", n).Msg("purged stale cache entries")
		}
		// pages from hosts added to the deny list since the last run
		if n, err := cache.Purge(cfg.CacheDir, func(e cache.Entry) bool { return a.gate.IsBlockedURL(e.URL) }); err == nil && n > 0 {
			log.Debug().Int("removed", n).Msg("purged cached pages of blocked hosts")
		}
		if _, err := cache.Trim(cfg.CacheDir, cfg.CacheMaxBytes, cfg.CacheMaxEntries); err != nil {
			log.Warn().Err(err).Msg("cache limits not enforced")
		}
		a.httpCache = &cache.HTTPCache{Dir: cfg.CacheDir, StrictPerms: cfg.CacheStrictPerms}
	}

	var limiter *rate.Limiter
	if cfg.Rate > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.Rate), max(1, int(cfg.Rate)))
	}
	a.client = &fetch.Client{
		HTTPClient:        newHTTPClient(cfg.Workers),
		UserAgent:         cfg.UserAgent,
		MaxAttempts:       2,
		PerRequestTimeout: 15 * time.Second,
		Cache:             a.httpCache,
		RedirectMaxHops:   5,
		MaxConcurrent:     8,
		Limiter:           limiter,
		Deny:              a.gate.IsBlockedURL,
	}
	if !cfg.IgnoreRobots {
		ua := cfg.UserAgent
		if ua == "" {
			ua = fetch.DefaultUserAgent
		}
		a.robots = &robots.Checker{Getter: a.client, UserAgent: ua}
	}
	a.extractor = extract.Chain{Extractors: []extract.Extractor{
		extract.SelectorExtractor{Gate: a.gate},
		extract.ReadabilityExtractor{},
		extract.HeuristicExtractor{},
	}}

	if cfg.DBPath != "" {
		a.history, err = store.Open(cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("open history: %w", err)
		}
		if last, err := a.history.LastRun(ctx); err == nil && !last.IsZero() {
			log.Info().Time("last_run", last).Msg("history opened")
		}
	}
	return a, nil
}

func (a *App) Close() {
	if a.history != nil {
		if err := a.history.Close(); err != nil {
			log.Warn().Err(err).Msg("close history")
		}
	}
}

func (a *App) Run(ctx context.Context) error {
	started := a.now()
	runID := store.NewRunID()
	logger := log.With().Str("run", runID).Logger()
	dropped := map[string]int{}
	reader := &feed.Reader{Getter: a.client}

	// 1) Collect candidates from the input file or the configured feeds
	var groups [][]digest.RawArticle
	if a.cfg.InputPath != "" {
		list, err := readInput(a.cfg.InputPath)
		if err != nil {
			return err
		}
		groups = append(groups, list)
	} else {
		groups = reader.ReadAll(ctx, a.cfg.Feeds)
	}

	// 2) Merge duplicates across feeds
	candidates := aggregate.MergeAndNormalize(groups)
	logger.Info().Int("candidates", len(candidates)).Msg("candidates collected")

	// 3) Skip what an earlier run already published
	if a.cfg.SkipSeen && a.history != nil {
		fresh := candidates[:0:0]
		for _, c := range candidates {
			seen, err := a.history.Seen(ctx, c.URL)
			if err != nil {
				return fmt.Errorf("history lookup: %w", err)
			}
			if seen {
				dropped[dropSeen]++
				continue
			}
			fresh = append(fresh, c)
		}
		candidates = fresh
	}

	// 4) Fetch and extract each page; failures keep the feed summary
	articles := candidates
	if !a.cfg.NoPageFetch {
		var allow func(context.Context, string) bool
		if a.robots != nil {
			allow = a.robots.Allowed
		}
		articles = fetchPages(ctx, a.client, a.extractor, allow, candidates, a.cfg.Workers)
	}

	// 5) Access check, classification and distillation
	outcomes, err := a.pipeline.ProcessAll(ctx, articles)
	if err != nil {
		return fmt.Errorf("process: %w", err)
	}
	for _, o := range outcomes {
		if !o.OK() {
			dropped[string(o.Dropped)]++
		}
	}

	// 6) Select per topic
	order := a.cfg.TopicOrder
	if len(order) == 0 {
		order = a.tables.TopicNames()
	}
	selected := sel.Select(digest.Records(outcomes), sel.Options{
		PerTopic:         a.cfg.PerTopic,
		MaxTotal:         a.cfg.MaxTotal,
		PerDomain:        a.cfg.PerDomain,
		TopicOrder:       order,
		PreferImages:     a.cfg.PreferImages,
		PreferStatistics: a.cfg.PreferStatistics,
	})
	if len(selected) == 0 {
		logger.Warn().Int("candidates", len(candidates)).Msg("no articles left after filtering")
		return ErrNoArticles
	}

	// 7) Remember what was published
	if a.history != nil {
		n, err := a.history.Save(ctx, selected)
		if err != nil {
			return fmt.Errorf("save history: %w", err)
		}
		if err := a.history.RecordRun(ctx, runID, started, n); err != nil {
			logger.Warn().Err(err).Msg("record run")
		}
	}

	// 8) Render the digest
	d := render.Digest{
		Title:       a.cfg.Title,
		GeneratedAt: a.now().UTC(),
		Topics:      render.Group(selected, order),
		Meta: render.Meta{
			RunID:      runID,
			Feeds:      len(groups),
			Candidates: len(candidates),
			Published:  len(selected),
			Dropped:    dropped,
			HTTPCache:  a.httpCache != nil,
			Tables:     a.tablesName(),
		},
	}
	if len(a.cfg.Featured) > 0 {
		d.Featured = reader.Featured(ctx, a.cfg.Featured, 4)
	}
	if err := a.write(d); err != nil {
		return err
	}

	// 9) Optional distillation trace for the published articles
	if a.cfg.ExplainPath != "" {
		if err := a.writeExplain(articles, outcomes, selected); err != nil {
			return err
		}
	}
	return nil
}

func (a *App) write(d render.Digest) error {
	if a.cfg.OutputPath != "" {
		if err := os.WriteFile(a.cfg.OutputPath, []byte(render.Markdown(d)), 0o644); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		log.Info().Str("out", a.cfg.OutputPath).Int("articles", d.Count()).Msg("wrote output")
	}
	if a.cfg.JSONPath != "" {
		f, err := os.Create(a.cfg.JSONPath)
		if err != nil {
			return fmt.Errorf("write json: %w", err)
		}
		err = render.JSON(f, d)
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return fmt.Errorf("write json: %w", err)
		}
		log.Info().Str("out", a.cfg.JSONPath).Msg("wrote json")
	}
	if a.cfg.PDFPath != "" {
		if err := render.WritePDF(d, a.cfg.PDFPath); err != nil {
			return fmt.Errorf("write pdf: %w", err)
		}
		log.Info().Str("out", a.cfg.PDFPath).Msg("wrote pdf")
	}
	return nil
}

func (a *App) writeExplain(articles []digest.RawArticle, outcomes []digest.Outcome, selected []digest.ArticleRecord) error {
	published := make(map[string]struct{}, len(selected))
	for _, r := range selected {
		published[r.URL] = struct{}{}
	}
	var entries []explainEntry
	for i, o := range outcomes {
		if _, ok := published[o.Record.URL]; !ok || !o.OK() {
			continue
		}
		art := articles[i]
		summary := strings.TrimSpace(art.Summary)
		if summary == "" {
			summary = o.Record.Title
		}
		entries = append(entries, explainEntry{
			Title: o.Record.Title,
			URL:   o.Record.URL,
			Trace: a.distiller.Trace(o.Record.Title, summary, art.FullText),
		})
	}
	if err := os.WriteFile(a.cfg.ExplainPath, []byte(formatExplain(entries)), 0o644); err != nil {
		return fmt.Errorf("write explain: %w", err)
	}
	log.Info().Str("out", a.cfg.ExplainPath).Int("articles", len(entries)).Msg("wrote distillation trace")
	return nil
}

func (a *App) tablesName() string {
	if a.cfg.TablesPath != "" {
		return a.cfg.TablesPath
	}
	return "embedded"
}
