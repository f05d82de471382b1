// Package distill turns a headline, a summary and optional article text
// into one to three plain, self-contained bullet sentences.
//
// The stages run in a fixed order: simplify, segment, drop restatements of
// the headline, scrub entities, reject broken fragments, score, select with
// near-duplicate suppression, then fall back when too little survives.
package distill

import (
	"html"
	"slices"
	"strings"

	"github.com/hyperifyio/sciencedigest/internal/simplify"
	"github.com/hyperifyio/sciencedigest/internal/textnorm"
)

// Placeholder is emitted when neither the article nor its summary yields a
// usable sentence.
const Placeholder = "Scientists made new discoveries in this field of research, described in the full article."

// Options tune the distiller. Zero values select the defaults.
type Options struct {
	MinFragment     int     // segments of this many runes or fewer are dropped (50)
	MinSentence     int     // scrubbed sentences shorter than this are rejected (60)
	MaxScored       int     // longer sentences are not scored (300)
	MaxBullets      int     // (3)
	MinBullets      int     // backfill target (2)
	TitleOverlap    float64 // restatement threshold (0.6)
	DuplicateShare  float64 // near-duplicate threshold (0.5)
	MinSummary      int     // summary fallback needs at least this many runes (60)
	PlaceholderText string
}

func (o Options) withDefaults() Options {
	if o.MinFragment <= 0 {
		o.MinFragment = 50
	}
	if o.MinSentence <= 0 {
		o.MinSentence = 60
	}
	if o.MaxScored <= 0 {
		o.MaxScored = 300
	}
	if o.MaxBullets <= 0 {
		o.MaxBullets = 3
	}
	if o.MinBullets <= 0 {
		o.MinBullets = 2
	}
	if o.MinBullets > o.MaxBullets {
		o.MinBullets = o.MaxBullets
	}
	if o.TitleOverlap <= 0 {
		o.TitleOverlap = 0.6
	}
	if o.DuplicateShare <= 0 {
		o.DuplicateShare = 0.5
	}
	if o.MinSummary <= 0 {
		o.MinSummary = o.MinSentence
	}
	if strings.TrimSpace(o.PlaceholderText) == "" {
		o.PlaceholderText = Placeholder
	}
	return o
}

// Distiller is immutable after New and safe for concurrent use.
type Distiller struct {
	simplifier *simplify.Simplifier
	opts       Options
}

// New returns a Distiller that simplifies its input with s.
func New(s *simplify.Simplifier, opts Options) *Distiller {
	return &Distiller{simplifier: s, opts: opts.withDefaults()}
}

// Explanation is the distilled bullet list. Bullets carry the HTML
// entities produced by text normalization.
type Explanation struct {
	Bullets []string `json:"bullets"`
}

// HTML renders the bullets as a list with class "summary-bullets".
func (e Explanation) HTML() string {
	var b strings.Builder
	b.WriteString(`<ul class="summary-bullets">`)
	for _, p := range e.Bullets {
		b.WriteString("\n<li>")
		b.WriteString(p)
		b.WriteString("</li>")
	}
	b.WriteString("\n</ul>")
	return b.String()
}

// Markdown renders one "- " line per bullet with entities decoded.
func (e Explanation) Markdown() string {
	var b strings.Builder
	for _, p := range e.Bullets {
		b.WriteString("- ")
		b.WriteString(html.UnescapeString(p))
		b.WriteString("\n")
	}
	return b.String()
}

// Plain returns the bullets with entities decoded.
func (e Explanation) Plain() []string {
	out := make([]string, len(e.Bullets))
	for i, p := range e.Bullets {
		out[i] = html.UnescapeString(p)
	}
	return out
}

// Distill always returns between one and three bullets.
func (d *Distiller) Distill(title, summary, fullText string) Explanation {
	return d.Trace(title, summary, fullText).Explanation
}

// Rejection records a scrubbed sentence that failed the structural checks.
type Rejection struct {
	Text   string
	Reason string
}

// Fallback names how the bullets were filled in.
type Fallback string

const (
	FallbackNone        Fallback = ""
	FallbackBackfill    Fallback = "backfill"
	FallbackSummary     Fallback = "summary"
	FallbackPlaceholder Fallback = "placeholder"
)

// Trace holds every intermediate list of one Distill run.
type Trace struct {
	Segments    []string
	Restating   []string // dropped as restatements of the title
	Rejected    []Rejection
	Cleaned     []Candidate
	Scored      []Candidate
	Selected    []Candidate
	Fallback    Fallback
	Explanation Explanation
}

// Trace runs Distill and keeps the intermediate results.
func (d *Distiller) Trace(title, summary, fullText string) Trace {
	var tr Trace
	all := d.simplifier.Simplify(strings.TrimSpace(summary + " " + fullText))
	tr.Segments = segment(all, d.opts.MinFragment)

	titleSet := titleWords(d.simplifier.Simplify(title))
	for _, seg := range tr.Segments {
		if restatesTitle(titleWords(seg), titleSet, d.opts.TitleOverlap) {
			tr.Restating = append(tr.Restating, seg)
			continue
		}
		cleaned := Scrub(seg)
		if reason := reject(cleaned, d.opts.MinSentence); reason != "" {
			tr.Rejected = append(tr.Rejected, Rejection{Text: cleaned, Reason: reason})
			continue
		}
		cleaned = finish(cleaned)
		tr.Cleaned = append(tr.Cleaned, Candidate{
			Text:  cleaned,
			Index: len(tr.Cleaned),
			Words: wordSet(cleaned),
		})
	}

	for _, c := range tr.Cleaned {
		if runeLen(c.Text) > d.opts.MaxScored {
			continue
		}
		c.Score = score(c.Text)
		tr.Scored = append(tr.Scored, c)
	}
	tr.Selected = selectWithOverlap(tr.Scored, d.opts.MaxBullets, d.opts.DuplicateShare)

	chosen := slices.Clone(tr.Selected)
	// Backfill ignores score but never admits a near-duplicate.
	for _, c := range tr.Cleaned {
		if len(chosen) >= d.opts.MinBullets {
			break
		}
		if slices.ContainsFunc(chosen, func(p Candidate) bool { return p.Text == c.Text }) ||
			redundant(c, chosen, d.opts.DuplicateShare) {
			continue
		}
		chosen = append(chosen, c)
		tr.Fallback = FallbackBackfill
	}
	bullets := make([]string, 0, d.opts.MaxBullets)
	for _, c := range chosen {
		bullets = append(bullets, c.Text)
	}
	if len(bullets) == 0 {
		s := d.simplifier.Simplify(summary)
		if runeLen(s) >= d.opts.MinSummary {
			bullets = append(bullets, finish(s))
			tr.Fallback = FallbackSummary
		} else {
			bullets = append(bullets, d.opts.PlaceholderText)
			tr.Fallback = FallbackPlaceholder
		}
	}
	if len(bullets) > d.opts.MaxBullets {
		bullets = bullets[:d.opts.MaxBullets]
	}
	for i, b := range bullets {
		bullets[i] = textnorm.FixSpacingArtifacts(b)
	}
	tr.Explanation = Explanation{Bullets: bullets}
	return tr
}
