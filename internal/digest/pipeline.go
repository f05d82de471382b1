package digest

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/hyperifyio/sciencedigest/internal/access"
	"github.com/hyperifyio/sciencedigest/internal/classify"
	"github.com/hyperifyio/sciencedigest/internal/distill"
	"github.com/hyperifyio/sciencedigest/internal/readlevel"
	"github.com/hyperifyio/sciencedigest/internal/readtime"
	"github.com/hyperifyio/sciencedigest/internal/stats"
)

// ErrIncomplete is returned by NewPipeline when a stage is missing.
var ErrIncomplete = errors.New("pipeline needs a gate, a classifier and a distiller")

// Options tune a Pipeline. Zero values select the defaults.
type Options struct {
	// Workers bounds ProcessAll concurrency (4).
	Workers int
	// IgnoreTopicHint keeps articles whose classified topic differs from
	// the topic of the feed they came from.
	IgnoreTopicHint bool
	// Level is checked against each explanation; violations are logged.
	// The zero value uses readlevel.DefaultLimits.
	Level readlevel.Limits
	// Now stamps FetchedAt; defaults to time.Now.
	Now func() time.Time
}

// Pipeline runs the per-article stages in order. It holds only read-only
// collaborators and is safe for concurrent use.
type Pipeline struct {
	gate       *access.Gate
	classifier *classify.Classifier
	distiller  *distill.Distiller
	opts       Options
}

// NewPipeline wires the stages together.
func NewPipeline(g *access.Gate, c *classify.Classifier, d *distill.Distiller, opts Options) (*Pipeline, error) {
	if g == nil || c == nil || d == nil {
		return nil, ErrIncomplete
	}
	if opts.Workers <= 0 {
		opts.Workers = 4
	}
	if opts.Level == (readlevel.Limits{}) {
		opts.Level = readlevel.DefaultLimits
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Pipeline{gate: g, classifier: c, distiller: d, opts: opts}, nil
}

// Process runs one article through every stage. The deny list is checked
// before anything else so no record can exist for a paywalled URL.
func (p *Pipeline) Process(a RawArticle) Outcome {
	if p.gate.IsBlockedURL(a.URL) {
		return Outcome{Dropped: DropBlockedURL}
	}
	if a.PageBlocked {
		return Outcome{Dropped: DropBlockedPage}
	}
	title := strings.TrimSpace(a.Title)
	summary := strings.TrimSpace(a.Summary)
	if summary == "" {
		summary = title
	}
	if strings.TrimSpace(a.FullText) == "" && summary == title {
		return Outcome{Dropped: DropNoContent}
	}

	res := p.classifier.Classify(title, summary)
	if !res.Classified() {
		return Outcome{Dropped: DropNoTopic, Scores: res.Scores}
	}
	if a.TopicHint != "" && !p.opts.IgnoreTopicHint && !strings.EqualFold(a.TopicHint, res.Topic) {
		return Outcome{Dropped: DropTopicHint, Scores: res.Scores}
	}

	exp := p.distiller.Distill(title, summary, a.FullText)
	stat, hasStat := stats.ExtractStatistic(a.FullText, title)
	report, err := readlevel.Check(strings.Join(exp.Plain(), " "), p.opts.Level)
	if err != nil {
		log.Debug().Err(err).Str("url", a.URL).Msg("explanation above target reading level")
	}

	rec := ArticleRecord{
		Title:          title,
		Source:         a.Source,
		URL:            a.URL,
		Topic:          res.Topic,
		Explanation:    exp,
		Statistic:      stat,
		HasStatistic:   hasStat,
		ImageURL:       a.ImageURL,
		ReadingMinutes: readtime.Estimate(a.FullText),
		ReadingGrade:   report.Grade,
		FetchedAt:      p.opts.Now().UTC(),
	}
	return Outcome{Record: rec, Scores: res.Scores}
}

// ProcessAll processes articles with bounded parallelism. Outcomes are in
// input order. It stops early only when ctx is cancelled.
func (p *Pipeline) ProcessAll(ctx context.Context, articles []RawArticle) ([]Outcome, error) {
	outcomes := make([]Outcome, len(articles))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.opts.Workers)
	for i := range articles {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			outcomes[i] = p.Process(articles[i])
			if d := outcomes[i].Dropped; d != Kept {
				log.Debug().Str("url", articles[i].URL).Str("reason", string(d)).Msg("article dropped")
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	kept := len(Records(outcomes))
	log.Info().Int("articles", len(articles)).Int("kept", kept).Msg("pipeline finished")
	return outcomes, nil
}
