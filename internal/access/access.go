// Package access decides whether an article is reachable without a
// subscription. All checks are pure predicates over strings and parsed
// markup.
package access

import (
	"bytes"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Config is the static deny-list data. Empty fields disable the
// corresponding check.
type Config struct {
	// Domains are matched as case-insensitive substrings of the URL host.
	Domains []string `yaml:"domains" json:"domains"`
	// Indicators are lower-case phrases that suggest a paywall prompt.
	Indicators []string `yaml:"indicators" json:"indicators"`
	// Selectors mark paywall styling; a hit is needed before an
	// indicator phrase counts.
	Selectors []string `yaml:"selectors" json:"selectors"`
	// HardSelectors block a page on their own.
	HardSelectors []string `yaml:"hard_selectors" json:"hard_selectors"`
}

// Gate holds a normalized copy of Config. It is read-only after New.
type Gate struct {
	domains    []string
	indicators []string
	selector   string
	hard       string
}

// Verdict explains a CheckPage result. Reason is empty when not blocked.
type Verdict struct {
	Blocked bool
	Reason  string
}

const (
	ReasonDomain   = "paywalled domain"
	ReasonMarkers  = "paywall markers"
	ReasonSelector = "paywall element"
)

// New lower-cases and trims the configured lists.
func New(cfg Config) *Gate {
	g := &Gate{
		domains:    lowerAll(cfg.Domains),
		indicators: lowerAll(cfg.Indicators),
		selector:   joinSelectors(cfg.Selectors),
		hard:       joinSelectors(cfg.HardSelectors),
	}
	return g
}

func lowerAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.ToLower(strings.TrimSpace(s))
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

func joinSelectors(in []string) string {
	parts := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, ", ")
}

// IsBlockedURL reports whether rawURL's host contains a deny-listed domain.
// Unparsable URLs are matched on their lower-cased raw text.
func (g *Gate) IsBlockedURL(rawURL string) bool {
	if g == nil || rawURL == "" {
		return false
	}
	target := strings.ToLower(strings.TrimSpace(rawURL))
	if u, err := url.Parse(target); err == nil && u.Host != "" {
		target = u.Hostname()
	}
	for _, d := range g.domains {
		if strings.Contains(target, d) {
			return true
		}
	}
	return false
}

// HasPaywallMarkers requires both an indicator phrase in pageText and at
// least one paywall-styled element; a phrase alone is too common in
// ordinary prose.
func (g *Gate) HasPaywallMarkers(pageText string, selectorHits int) bool {
	if g == nil || selectorHits <= 0 || pageText == "" {
		return false
	}
	lower := strings.ToLower(pageText)
	for _, ind := range g.indicators {
		if strings.Contains(lower, ind) {
			return true
		}
	}
	return false
}

// SelectorHits counts elements of doc matching the paywall-styling
// selectors.
func (g *Gate) SelectorHits(doc *goquery.Document) int {
	if g == nil || doc == nil || g.selector == "" {
		return 0
	}
	return doc.Find(g.selector).Length()
}

// HardHits counts elements that block a page regardless of its text.
func (g *Gate) HardHits(doc *goquery.Document) int {
	if g == nil || doc == nil || g.hard == "" {
		return 0
	}
	return doc.Find(g.hard).Length()
}

// CheckPage runs the URL check, then the marker check, then the hard
// selector check against the parsed page.
func (g *Gate) CheckPage(pageURL string, html []byte) Verdict {
	if g.IsBlockedURL(pageURL) {
		return Verdict{Blocked: true, Reason: ReasonDomain}
	}
	if g == nil || len(html) == 0 {
		return Verdict{}
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return Verdict{}
	}
	return g.CheckDocument(doc)
}

// CheckDocument is CheckPage for an already parsed page, without the URL
// check.
func (g *Gate) CheckDocument(doc *goquery.Document) Verdict {
	if g == nil || doc == nil {
		return Verdict{}
	}
	if g.HasPaywallMarkers(doc.Text(), g.SelectorHits(doc)) {
		return Verdict{Blocked: true, Reason: ReasonMarkers}
	}
	if g.HardHits(doc) > 0 {
		return Verdict{Blocked: true, Reason: ReasonSelector}
	}
	return Verdict{}
}
