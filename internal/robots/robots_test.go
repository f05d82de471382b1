package robots

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/hyperifyio/sciencedigest/internal/fetch"
)

const sample = `
# comment
User-agent: *
Disallow: /private
Allow: /private/open

User-agent: sciencedigest
Disallow: /news/*.pdf$
Disallow: /drafts
`

func TestIsAllowed_AgentAndPathDecisions(t *testing.T) {
	r := Parse(sample)
	cases := []struct {
		ua, path string
		want     bool
	}{
		{"OtherBot/1.0", "/private/x", false},
		{"OtherBot/1.0", "/private/open/page", true},
		{"OtherBot/1.0", "/drafts/a", true},
		{"sciencedigest/1.0 (+https://example.org)", "/drafts/a", false},
		{"sciencedigest/1.0", "/private/x", true},
		{"sciencedigest/1.0", "/news/2024/report.pdf", false},
		{"sciencedigest/1.0", "/news/2024/report.pdf?dl=1", true},
		{"sciencedigest/1.0", "/news/2024/report.html", true},
	}
	for _, tc := range cases {
		if got := r.IsAllowed(tc.ua, tc.path); got != tc.want {
			t.Errorf("%s %s: got %v want %v", tc.ua, tc.path, got, tc.want)
		}
	}
}

func TestMatches(t *testing.T) {
	cases := []struct {
		pattern, path string
		want          bool
	}{
		{"/a", "/abc", true},
		{"/a$", "/abc", false},
		{"/a$", "/a", true},
		{"/*.gif$", "/img/x.gif", true},
		{"/*.gif$", "/img/x.gif?v=2", false},
		{"/p*q*r", "/p1q2r3", true},
		{"/p*q*r", "/p1r2q3", false},
	}
	for _, tc := range cases {
		if got := matches(tc.pattern, tc.path); got != tc.want {
			t.Errorf("matches(%q, %q) = %v, want %v", tc.pattern, tc.path, got, tc.want)
		}
	}
}

func TestParse_EmptyAllowsEverything(t *testing.T) {
	if !Parse("").IsAllowed("any", "/x") {
		t.Fatalf("empty robots.txt should allow")
	}
	if !Parse("User-agent: *\nDisallow:\n").IsAllowed("any", "/x") {
		t.Fatalf("empty Disallow should allow")
	}
}

func robotsServer(t *testing.T, status int, body string) (*httptest.Server, *int32) {
	t.Helper()
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/robots.txt" {
			http.NotFound(w, r)
			return
		}
		atomic.AddInt32(&calls, 1)
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func TestChecker_FetchesOncePerOrigin(t *testing.T) {
	srv, calls := robotsServer(t, http.StatusOK, "User-agent: *\nDisallow: /private\n")
	c := &Checker{Getter: &fetch.Client{MaxAttempts: 1}, UserAgent: "sciencedigest"}

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if !c.Allowed(context.Background(), srv.URL+"/news/a") {
				t.Errorf("expected /news/a allowed")
			}
		}()
	}
	wg.Wait()
	if c.Allowed(context.Background(), srv.URL+"/private/b") {
		t.Fatalf("expected /private/b disallowed")
	}
	if n := atomic.LoadInt32(calls); n != 1 {
		t.Fatalf("expected one robots.txt fetch, got %d", n)
	}
}

func TestChecker_Missing404Allows(t *testing.T) {
	srv, _ := robotsServer(t, http.StatusNotFound, "")
	c := &Checker{Getter: &fetch.Client{MaxAttempts: 1}}
	if !c.Allowed(context.Background(), srv.URL+"/any") {
		t.Fatalf("missing robots.txt should allow")
	}
}

func TestChecker_ServerErrorDisallowsUntilExpiry(t *testing.T) {
	srv, calls := robotsServer(t, http.StatusServiceUnavailable, "")
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := &Checker{Getter: &fetch.Client{MaxAttempts: 1}, Expiry: time.Minute}
	c.now = func() time.Time { return now }

	if c.Allowed(context.Background(), srv.URL+"/a") {
		t.Fatalf("5xx robots.txt should disallow")
	}
	_ = c.Allowed(context.Background(), srv.URL+"/b")
	if n := atomic.LoadInt32(calls); n != 1 {
		t.Fatalf("expected cached verdict, got %d fetches", n)
	}
	now = now.Add(2 * time.Minute)
	_ = c.Allowed(context.Background(), srv.URL+"/c")
	if n := atomic.LoadInt32(calls); n != 2 {
		t.Fatalf("expected refetch after expiry, got %d fetches", n)
	}
}

func TestChecker_BadURL(t *testing.T) {
	c := &Checker{}
	if c.Allowed(context.Background(), "not a url") {
		t.Fatalf("relative input should not be allowed")
	}
}
