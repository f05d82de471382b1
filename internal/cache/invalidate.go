package cache

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"
)

// ClearDir empties dir, leaving the directory itself in place.
func ClearDir(dir string) error {
	if strings.TrimSpace(dir) == "" {
		return errors.New("empty dir")
	}
	if err := os.RemoveAll(dir); err != nil {
		return err
	}
	return os.MkdirAll(dir, 0o755)
}

// Purge removes every entry under dir for which drop returns true and
// reports how many went. Unreadable metadata is left alone.
func Purge(dir string, drop func(Entry) bool) (int, error) {
	removed := 0
	err := walkEntries(dir, func(meta string) {
		b, err := os.ReadFile(meta)
		if err != nil {
			return
		}
		var e Entry
		if json.Unmarshal(b, &e) != nil || !drop(e) {
			return
		}
		remove(meta)
		removed++
	})
	return removed, err
}

// PurgeOlderThan removes entries stored more than maxAge ago. A
// non-positive maxAge removes nothing.
func PurgeOlderThan(dir string, maxAge time.Duration) (int, error) {
	if maxAge <= 0 {
		return 0, nil
	}
	cutoff := time.Now().UTC().Add(-maxAge)
	return Purge(dir, func(e Entry) bool { return e.StoredAt.Before(cutoff) })
}

// Trim evicts least recently read entries until at most maxEntries remain
// and their bodies total at most maxBytes. Zero limits are ignored.
func Trim(dir string, maxBytes int64, maxEntries int) (int, error) {
	if maxBytes <= 0 && maxEntries <= 0 {
		return 0, nil
	}
	type used struct {
		meta string
		size int64
		at   time.Time
	}
	var all []used
	var total int64
	err := walkEntries(dir, func(meta string) {
		info, err := os.Stat(bodyOf(meta))
		if err != nil {
			return
		}
		all = append(all, used{meta: meta, size: info.Size(), at: info.ModTime()})
		total += info.Size()
	})
	if err != nil {
		return 0, err
	}
	slices.SortFunc(all, func(a, b used) int { return a.at.Compare(b.at) })

	removed := 0
	for _, u := range all {
		if (maxEntries <= 0 || len(all)-removed <= maxEntries) && (maxBytes <= 0 || total <= maxBytes) {
			break
		}
		remove(u.meta)
		total -= u.size
		removed++
	}
	return removed, nil
}

func walkEntries(dir string, fn func(meta string)) error {
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && filepath.Ext(path) == metaExt {
			fn(path)
		}
		return nil
	})
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

func bodyOf(meta string) string { return strings.TrimSuffix(meta, metaExt) + bodyExt }

func remove(meta string) {
	_ = os.Remove(meta)
	_ = os.Remove(bodyOf(meta))
}
