// Package cache keeps fetched feeds and pages on disk together with their
// HTTP validators so a later run can revalidate instead of downloading
// again. Entries are grouped in one directory per host:
//
//	<dir>/<host>/<hash>.json   metadata (Entry)
//	<dir>/<host>/<hash>.body   response body
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	metaExt = ".json"
	bodyExt = ".body"
)

// Entry describes one cached response.
type Entry struct {
	URL          string    `json:"url"`
	ContentType  string    `json:"content_type"`
	ETag         string    `json:"etag,omitempty"`
	LastModified string    `json:"last_modified,omitempty"`
	Size         int64     `json:"size"`
	StoredAt     time.Time `json:"stored_at"`
}

// Conditional reports whether the entry carries a validator for a
// conditional request.
func (e Entry) Conditional() bool { return e.ETag != "" || e.LastModified != "" }

// HTTPCache is safe for concurrent use by one process; writers of the same
// URL race harmlessly because metadata is renamed into place.
type HTTPCache struct {
	Dir string
	// StrictPerms writes directories as 0700 and files as 0600.
	StrictPerms bool
}

var errNoDir = errors.New("cache dir not configured")

func (c *HTTPCache) perms() (dir, file os.FileMode) {
	if c.StrictPerms {
		return 0o700, 0o600
	}
	return 0o755, 0o644
}

// paths returns the metadata and body file for rawURL.
func (c *HTTPCache) paths(rawURL string) (meta, body string) {
	sum := sha256.Sum256([]byte(rawURL))
	base := filepath.Join(c.Dir, hostDir(rawURL), hex.EncodeToString(sum[:16]))
	return base + metaExt, base + bodyExt
}

// hostDir maps the URL host to one safe path element.
func hostDir(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return "_"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '.', r == '-':
			return r
		}
		return '_'
	}, strings.ToLower(u.Hostname()))
}

// Lookup returns the metadata stored for rawURL.
func (c *HTTPCache) Lookup(_ context.Context, rawURL string) (*Entry, error) {
	if c == nil || c.Dir == "" {
		return nil, errNoDir
	}
	meta, _ := c.paths(rawURL)
	data, err := os.ReadFile(meta)
	if err != nil {
		return nil, err
	}
	var e Entry
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("decode %s: %w", filepath.Base(meta), err)
	}
	return &e, nil
}

// Body returns the stored body for rawURL and marks it as recently used,
// which Trim reads as the eviction order.
func (c *HTTPCache) Body(_ context.Context, rawURL string) ([]byte, error) {
	if c == nil || c.Dir == "" {
		return nil, errNoDir
	}
	_, p := c.paths(rawURL)
	b, err := os.ReadFile(p)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	_ = os.Chtimes(p, now, now)
	return b, nil
}

// Store writes body and then e. StoredAt and Size are filled in.
func (c *HTTPCache) Store(_ context.Context, e Entry, body []byte) error {
	if c == nil || c.Dir == "" {
		return errNoDir
	}
	dirMode, fileMode := c.perms()
	meta, bodyPath := c.paths(e.URL)
	hostPath := filepath.Dir(meta)
	if err := os.MkdirAll(hostPath, dirMode); err != nil {
		return err
	}
	if c.StrictPerms {
		for _, d := range []string{c.Dir, hostPath} {
			if err := os.Chmod(d, dirMode); err != nil {
				return err
			}
		}
	}
	if err := writeFile(bodyPath, body, fileMode); err != nil {
		return fmt.Errorf("write body: %w", err)
	}
	e.Size = int64(len(body))
	e.StoredAt = time.Now().UTC()
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode entry: %w", err)
	}
	tmp := meta + ".tmp"
	if err := writeFile(tmp, data, fileMode); err != nil {
		return fmt.Errorf("write entry: %w", err)
	}
	return os.Rename(tmp, meta)
}

func writeFile(path string, data []byte, mode os.FileMode) error {
	if err := os.WriteFile(path, data, mode); err != nil {
		return err
	}
	return os.Chmod(path, mode)
}
