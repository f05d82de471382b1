package access

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

func testGate() *Gate {
	return New(Config{
		Domains:       []string{"nature.com", "Science.org", " wsj.com ", ""},
		Indicators:    []string{"subscribe to read", "Already a Subscriber"},
		Selectors:     []string{`[class*="paywall"]`, `[class*="subscribe"]`, `[id*="paywall"]`},
		HardSelectors: []string{`[class*="paywall"]`, `[data-paywall]`, `.subscription-required`, `[class*="locked-content"]`},
	})
}

func TestIsBlockedURL(t *testing.T) {
	g := testGate()
	cases := map[string]bool{
		"https://www.nature.com/articles/x":      true,
		"https://WWW.NATURE.COM/articles/x":      true,
		"http://science.org/doi/10.1126/x":       true,
		"https://www.wsj.com/science":            true,
		"nature.com/articles/no-scheme":          true,
		"https://phys.org/news/x":                false,
		"https://example.com/?ref=nature.com":    false,
		"":                                       false,
		"https://www.sciencedaily.com/news/x":    false,
		"https://blog.example.org/nature-column": false,
	}
	for in, want := range cases {
		if got := g.IsBlockedURL(in); got != want {
			t.Errorf("IsBlockedURL(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestIsBlockedURL_NilGate(t *testing.T) {
	var g *Gate
	if g.IsBlockedURL("https://www.nature.com/") {
		t.Fatalf("nil gate must allow everything")
	}
}

func TestHasPaywallMarkers_NeedsBothSignals(t *testing.T) {
	g := testGate()
	text := "Great story. Subscribe to read the rest."
	if g.HasPaywallMarkers(text, 0) {
		t.Fatalf("phrase without styled element must not block")
	}
	if !g.HasPaywallMarkers(text, 2) {
		t.Fatalf("phrase plus styled element must block")
	}
	if g.HasPaywallMarkers("A free article about stars.", 3) {
		t.Fatalf("styled element without phrase must not block")
	}
	if !g.HasPaywallMarkers("ALREADY A SUBSCRIBER? Log in", 1) {
		t.Fatalf("indicator match must be case-insensitive")
	}
}

func TestSelectorHits(t *testing.T) {
	g := testGate()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(
		`<html><body><div class="site-paywall">x</div><a class="subscribe-btn">y</a><p>z</p></body></html>`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if n := g.SelectorHits(doc); n != 2 {
		t.Fatalf("expected 2 hits, got %d", n)
	}
	if n := g.HardHits(doc); n != 0 {
		t.Fatalf("expected no hard hits, got %d", n)
	}
}

func TestCheckPage(t *testing.T) {
	g := testGate()
	cases := []struct {
		name   string
		url    string
		html   string
		reason string
	}{
		{"domain", "https://www.nature.com/articles/x", `<p>free</p>`, ReasonDomain},
		{"markers", "https://phys.org/a", `<div class="paywall">Subscribe to read more</div>`, ReasonMarkers},
		{"hard-selector", "https://phys.org/b", `<div data-paywall="1">Story</div>`, ReasonSelector},
		{"locked", "https://phys.org/c", `<section class="article locked-content">Story</section>`, ReasonSelector},
		{"bare-paywall-class", "https://phys.org/g", `<div class="article-paywall">Story text</div>`, ReasonSelector},
		{"phrase-only", "https://phys.org/d", `<p>Why we never ask you to subscribe to read our news.</p>`, ""},
		{"clean", "https://phys.org/e", `<article><p>Stars form in clouds.</p></article>`, ""},
		{"empty", "https://phys.org/f", ``, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			v := g.CheckPage(tc.url, []byte(tc.html))
			if v.Blocked != (tc.reason != "") || v.Reason != tc.reason {
				t.Fatalf("CheckPage = %+v, want reason %q", v, tc.reason)
			}
		})
	}
}
