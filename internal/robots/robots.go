// Package robots decides whether a page may be fetched according to the
// robots.txt of its host.
package robots

import (
	"bufio"
	"context"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"github.com/hyperifyio/sciencedigest/internal/fetch"
)

// Getter fetches a URL. *fetch.Client satisfies it.
type Getter interface {
	Get(ctx context.Context, url string) ([]byte, string, error)
}

// Rules is a parsed robots.txt.
type Rules struct {
	Groups []Group
}

// Group is one User-agent block.
type Group struct {
	Agents   []string
	Allow    []string
	Disallow []string
}

// disallowAll stands in for a robots.txt that could not be read because of
// a server error or timeout.
var disallowAll = Rules{Groups: []Group{{Agents: []string{"*"}, Disallow: []string{"/"}}}}

// Checker fetches robots.txt once per origin and remembers it for Expiry.
// It is safe for concurrent use.
type Checker struct {
	Getter    Getter
	UserAgent string
	// Expiry defaults to 30 minutes.
	Expiry time.Duration

	mu     sync.Mutex
	origin map[string]entry
	flight singleflight.Group
	now    func() time.Time
}

type entry struct {
	rules  Rules
	expiry time.Time
}

// Allowed reports whether rawURL may be fetched. A missing robots.txt
// allows everything; an unreachable one disallows the host until the
// entry expires.
func (c *Checker) Allowed(ctx context.Context, rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return false
	}
	rules := c.rulesFor(ctx, u.Scheme+"://"+u.Host)
	path := u.EscapedPath()
	if path == "" {
		path = "/"
	}
	if u.RawQuery != "" {
		path += "?" + u.RawQuery
	}
	return rules.IsAllowed(c.UserAgent, path)
}

func (c *Checker) rulesFor(ctx context.Context, origin string) Rules {
	c.mu.Lock()
	if c.now == nil {
		c.now = time.Now
	}
	if e, ok := c.origin[origin]; ok && c.now().Before(e.expiry) {
		c.mu.Unlock()
		return e.rules
	}
	c.mu.Unlock()

	v, _, _ := c.flight.Do(origin, func() (any, error) {
		rules := c.load(ctx, origin)
		expiry := c.Expiry
		if expiry <= 0 {
			expiry = 30 * time.Minute
		}
		c.mu.Lock()
		if c.origin == nil {
			c.origin = make(map[string]entry)
		}
		c.origin[origin] = entry{rules: rules, expiry: c.now().Add(expiry)}
		c.mu.Unlock()
		return rules, nil
	})
	return v.(Rules)
}

func (c *Checker) load(ctx context.Context, origin string) Rules {
	if c.Getter == nil {
		return Rules{}
	}
	body, _, err := c.Getter.Get(ctx, origin+"/robots.txt")
	if err == nil {
		return Parse(string(body))
	}
	code := fetch.StatusCode(err)
	if code >= 400 && code < 500 && code != http.StatusTooManyRequests {
		return Rules{}
	}
	log.Debug().Err(err).Str("origin", origin).Msg("robots.txt unavailable; host disallowed for now")
	return disallowAll
}

// Parse reads robots.txt text. Unknown directives are ignored.
func Parse(text string) Rules {
	scanner := bufio.NewScanner(strings.NewReader(text))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	var rules Rules
	var cur Group
	inRules := false
	for scanner.Scan() {
		line := scanner.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		key, val, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		val = strings.TrimSpace(val)
		switch strings.ToLower(strings.TrimSpace(key)) {
		case "user-agent", "useragent":
			if inRules {
				rules.Groups = append(rules.Groups, cur)
				cur, inRules = Group{}, false
			}
			cur.Agents = append(cur.Agents, strings.ToLower(val))
		case "allow":
			cur.Allow = append(cur.Allow, val)
			inRules = true
		case "disallow":
			cur.Disallow = append(cur.Disallow, val)
			inRules = true
		}
	}
	if len(cur.Agents) > 0 || inRules {
		rules.Groups = append(rules.Groups, cur)
	}
	return rules
}

// IsAllowed applies the group that best matches userAgent to path. The
// longest matching pattern decides; Allow wins a tie; no match allows.
func (r Rules) IsAllowed(userAgent, path string) bool {
	g, ok := r.group(userAgent)
	if !ok {
		return true
	}
	best, allow := -1, true
	consider := func(patterns []string, isAllow bool) {
		for _, p := range patterns {
			if p == "" || !matches(p, path) {
				continue
			}
			n := specificity(p)
			if n > best || (n == best && isAllow) {
				best, allow = n, isAllow
			}
		}
	}
	consider(g.Disallow, false)
	consider(g.Allow, true)
	return allow
}

// group picks the longest agent token contained in userAgent, with "*"
// as the fallback. Ties keep the first group.
func (r Rules) group(userAgent string) (Group, bool) {
	ua := strings.ToLower(userAgent)
	idx, score := -1, -1
	for i, g := range r.Groups {
		for _, a := range g.Agents {
			s := -1
			switch {
			case a == "*":
				s = 0
			case a != "" && strings.Contains(ua, a):
				s = len(a)
			}
			if s > score {
				idx, score = i, s
			}
		}
	}
	if idx < 0 {
		return Group{}, false
	}
	return r.Groups[idx], true
}

// matches reports whether a robots pattern matches path from its start.
// '*' matches any run of characters; a trailing '$' anchors the end.
func matches(pattern, path string) bool {
	anchored := strings.HasSuffix(pattern, "$")
	pattern = strings.TrimSuffix(pattern, "$")
	parts := strings.Split(pattern, "*")
	if !strings.HasPrefix(path, parts[0]) {
		return false
	}
	rest := path[len(parts[0]):]
	for i, part := range parts[1:] {
		last := i == len(parts)-2
		if last && anchored {
			return strings.HasSuffix(rest, part)
		}
		j := strings.Index(rest, part)
		if j < 0 {
			return false
		}
		rest = rest[j+len(part):]
	}
	if anchored && len(parts) == 1 {
		return rest == ""
	}
	return true
}

func specificity(pattern string) int {
	return len(strings.ReplaceAll(strings.TrimSuffix(pattern, "$"), "*", ""))
}
