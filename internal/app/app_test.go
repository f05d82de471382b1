package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hyperifyio/sciencedigest/internal/feed"
)

const marsPage = `<html><head><title>Rover finds lake</title>
<meta property="og:image" content="https://img.example.org/lake.jpg"></head>
<body><nav>Home | News</nav><article>
<p>The rover drilled into rock layers that formed in standing water billions of years ago, according to the mission team.</p>
<p>Scientists found that the lake held water for millions of years, which could have supported simple life on the planet.</p>
<p>The team measured 30 percent more clay in the crater floor than in the rock layers that surround the old lake bed.</p>
</article><footer>Copyright</footer></body></html>`

const paywalledPage = `<html><body><article>
<p>The telescope team reported a new view of a distant planet that orbits a small red star.</p>
<div class="paywall">Subscribe to read the full story.</div>
</article></body></html>`

func digestServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	var srv *httptest.Server
	mux.HandleFunc("/rss", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		fmt.Fprintf(w, `<?xml version="1.0"?><rss version="2.0"><channel><title>Test Science</title>
<item><title>Mars rover finds ancient lake</title><link>%[1]s/mars</link>
<description>A rover on Mars found signs of an ancient lake bed on the red planet.</description></item>
<item><title>Telescope spots distant planet</title><link>%[1]s/locked</link>
<description>A telescope spotted a planet around a red star far from the Sun.</description></item>
<item><title>Quarterly earnings beat forecasts</title><link>%[1]s/money</link>
<description>The company posted strong revenue growth in the quarter.</description></item>
</channel></rss>`, srv.URL)
	})
	mux.HandleFunc("/mars", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(marsPage))
	})
	mux.HandleFunc("/locked", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(paywalledPage))
	})
	mux.HandleFunc("/money", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html><body><p>Revenue rose.</p></body></html>"))
	})
	srv = httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestRun_FromFeeds(t *testing.T) {
	srv := digestServer(t)
	dir := t.TempDir()
	cfg := Config{
		Feeds:       []feed.Source{{Name: "Test Science", URL: srv.URL + "/rss", Topic: "Astronomy"}},
		OutputPath:  filepath.Join(dir, "digest.md"),
		JSONPath:    filepath.Join(dir, "digest.json"),
		ExplainPath: filepath.Join(dir, "explain.md"),
		CacheDir:    filepath.Join(dir, "cache"),
		Workers:     2,
	}
	a, err := New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	defer a.Close()
	if err := a.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}

	md, err := os.ReadFile(cfg.OutputPath)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	out := string(md)
	for _, want := range []string{"## Astronomy", "Mars rover finds ancient lake", "https://img.example.org/lake.jpg", "By the numbers"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Telescope spots distant planet") {
		t.Fatalf("paywalled article was published:\n%s", out)
	}
	if !strings.Contains(out, "paywalled page:1") || !strings.Contains(out, "no topic:1") {
		t.Fatalf("footer does not account for drops:\n%s", out)
	}

	var doc struct {
		Topics []struct {
			Name    string `json:"name"`
			Records []struct {
				URL string `json:"url"`
			} `json:"records"`
		} `json:"topics"`
	}
	raw, err := os.ReadFile(cfg.JSONPath)
	if err != nil {
		t.Fatalf("read json: %v", err)
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		t.Fatalf("decode json: %v", err)
	}
	if len(doc.Topics) != 1 || len(doc.Topics[0].Records) != 1 || !strings.HasSuffix(doc.Topics[0].Records[0].URL, "/mars") {
		t.Fatalf("unexpected json digest: %+v", doc)
	}

	trace, err := os.ReadFile(cfg.ExplainPath)
	if err != nil {
		t.Fatalf("read explain: %v", err)
	}
	if !strings.Contains(string(trace), "# Distillation trace") || !strings.Contains(string(trace), "Bullets:") {
		t.Fatalf("unexpected trace:\n%s", trace)
	}
}

func writeInput(t *testing.T, dir string, v any) string {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal input: %v", err)
	}
	p := filepath.Join(dir, "articles.json")
	if err := os.WriteFile(p, b, 0o644); err != nil {
		t.Fatalf("write input: %v", err)
	}
	return p
}

var inputArticles = []map[string]string{
	{
		"title":     "Glacier melt speeds up in the Arctic",
		"summary":   "Arctic glacier ice is melting faster than expected as the climate warms.",
		"full_text": "Researchers measured the ice sheet every summer for ten years. The data show that the glacier lost 12 percent of its mass in that time. Warmer ocean water is eating away at the ice from below the surface.",
		"url":       "https://example.org/glacier?utm_source=feed",
		"source":    "Example News",
	},
	{
		"title":   "Locked story about a planet",
		"summary": "A telescope found a planet.",
		"url":     "https://www.nature.com/articles/planet",
	},
}

func TestRun_InputFileAndHistory(t *testing.T) {
	dir := t.TempDir()
	cfg := Config{
		InputPath:   writeInput(t, dir, inputArticles),
		OutputPath:  filepath.Join(dir, "digest.md"),
		DBPath:      filepath.Join(dir, "history.db"),
		SkipSeen:    true,
		NoPageFetch: true,
	}
	run := func() error {
		a, err := New(context.Background(), cfg)
		if err != nil {
			t.Fatalf("new app: %v", err)
		}
		defer a.Close()
		return a.Run(context.Background())
	}
	if err := run(); err != nil {
		t.Fatalf("first run: %v", err)
	}
	md, _ := os.ReadFile(cfg.OutputPath)
	if !strings.Contains(string(md), "## Climate") || strings.Contains(string(md), "utm_source") {
		t.Fatalf("unexpected digest:\n%s", md)
	}
	if err := run(); !errors.Is(err, ErrNoArticles) {
		t.Fatalf("second run should find nothing new, got %v", err)
	}
}

func TestRun_NothingPublishable(t *testing.T) {
	dir := t.TempDir()
	cfg := Config{
		InputPath:   writeInput(t, dir, inputArticles[1:]),
		OutputPath:  filepath.Join(dir, "digest.md"),
		NoPageFetch: true,
	}
	a, err := New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	defer a.Close()
	if err := a.Run(context.Background()); !errors.Is(err, ErrNoArticles) {
		t.Fatalf("expected ErrNoArticles, got %v", err)
	}
	if _, err := os.Stat(cfg.OutputPath); !os.IsNotExist(err) {
		t.Fatalf("no output expected, stat err=%v", err)
	}
}

func TestNew_BadTables(t *testing.T) {
	if _, err := New(context.Background(), Config{TablesPath: filepath.Join(t.TempDir(), "missing.yaml")}); err == nil {
		t.Fatalf("expected error for missing tables file")
	}
}
