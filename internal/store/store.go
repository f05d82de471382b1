// Package store keeps the history of published articles in SQLite so a
// later run can skip what an earlier digest already carried.
//
// Store is safe for concurrent use; database/sql pools and serializes the
// connections. Save runs in one transaction, other calls are single
// statements.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"

	"github.com/hyperifyio/sciencedigest/internal/digest"
	"github.com/hyperifyio/sciencedigest/internal/distill"
)

// timeLayout sorts lexically in UTC.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// ErrClosed is returned by every call after Close.
var ErrClosed = errors.New("store is closed")

// Store persists ArticleRecords keyed by URL.
type Store struct {
	db     *sql.DB
	closed atomic.Bool
}

// Open creates or opens the database at path and applies migrations.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	return s, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS articles (
	url TEXT PRIMARY KEY,
	title TEXT NOT NULL,
	source TEXT,
	topic TEXT NOT NULL,
	bullets TEXT NOT NULL,
	statistic TEXT,
	image_url TEXT,
	reading_minutes INTEGER NOT NULL DEFAULT 1,
	reading_grade REAL NOT NULL DEFAULT 0,
	fetched_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_articles_topic ON articles(topic, fetched_at DESC);

CREATE TABLE IF NOT EXISTS runs (
	id INTEGER PRIMARY KEY,
	run_id TEXT NOT NULL UNIQUE,
	started_at TEXT NOT NULL,
	articles INTEGER NOT NULL DEFAULT 0
);
`

func (s *Store) migrate() error {
	_, err := s.db.Exec(schema)
	return err
}

// Close releases the database. Calling it twice is harmless.
func (s *Store) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	return s.db.Close()
}

func (s *Store) check() error {
	if s == nil || s.closed.Load() {
		return ErrClosed
	}
	return nil
}

// Save upserts records in one transaction and returns how many were
// written. Records without a URL are skipped.
func (s *Store) Save(ctx context.Context, records []digest.ArticleRecord) (int, error) {
	if err := s.check(); err != nil {
		return 0, err
	}
	if len(records) == 0 {
		return 0, nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO articles (url, title, source, topic, bullets, statistic, image_url, reading_minutes, reading_grade, fetched_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(url) DO UPDATE SET
			title = excluded.title,
			bullets = excluded.bullets,
			statistic = excluded.statistic,
			image_url = excluded.image_url,
			fetched_at = excluded.fetched_at
	`)
	if err != nil {
		return 0, fmt.Errorf("prepare statement: %w", err)
	}
	defer stmt.Close()

	saved := 0
	for _, r := range records {
		if r.URL == "" {
			continue
		}
		bullets, err := json.Marshal(r.Explanation.Bullets)
		if err != nil {
			return saved, fmt.Errorf("encode bullets: %w", err)
		}
		if _, err := stmt.ExecContext(ctx,
			r.URL, r.Title, r.Source, r.Topic, string(bullets), r.Statistic, r.ImageURL,
			r.ReadingMinutes, r.ReadingGrade, r.FetchedAt.UTC().Format(timeLayout),
		); err != nil {
			return saved, fmt.Errorf("save %s: %w", r.URL, err)
		}
		saved++
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	log.Debug().Int("saved", saved).Msg("history updated")
	return saved, nil
}

// Seen reports whether url was saved by an earlier run.
func (s *Store) Seen(ctx context.Context, url string) (bool, error) {
	if err := s.check(); err != nil {
		return false, err
	}
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM articles WHERE url = ?", url).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("query seen: %w", err)
	}
	return n > 0, nil
}

// Recent returns up to limit records, newest first. An empty topic matches
// every topic.
func (s *Store) Recent(ctx context.Context, topic string, limit int) ([]digest.ArticleRecord, error) {
	if err := s.check(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT url, title, source, topic, bullets, statistic, image_url, reading_minutes, reading_grade, fetched_at
		FROM articles
		WHERE ? = '' OR topic = ?
		ORDER BY fetched_at DESC, url
		LIMIT ?`, topic, topic, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent: %w", err)
	}
	defer rows.Close()

	var out []digest.ArticleRecord
	for rows.Next() {
		var (
			r                                  digest.ArticleRecord
			source, stat, image, bullets, when sql.NullString
		)
		if err := rows.Scan(&r.URL, &r.Title, &source, &r.Topic, &bullets, &stat, &image,
			&r.ReadingMinutes, &r.ReadingGrade, &when); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		r.Source, r.Statistic, r.ImageURL = source.String, stat.String, image.String
		r.HasStatistic = r.Statistic != ""
		var b []string
		if err := json.Unmarshal([]byte(bullets.String), &b); err != nil {
			return nil, fmt.Errorf("decode bullets for %s: %w", r.URL, err)
		}
		r.Explanation = distill.Explanation{Bullets: b}
		if t, err := time.Parse(timeLayout, when.String); err == nil {
			r.FetchedAt = t
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// NewRunID returns a fresh identifier for RecordRun.
func NewRunID() string { return uuid.NewString() }

// RecordRun notes a finished run and the number of articles it published.
func (s *Store) RecordRun(ctx context.Context, runID string, started time.Time, articles int) error {
	if err := s.check(); err != nil {
		return err
	}
	if runID == "" {
		runID = NewRunID()
	}
	_, err := s.db.ExecContext(ctx, "INSERT INTO runs (run_id, started_at, articles) VALUES (?, ?, ?)",
		runID, started.UTC().Format(timeLayout), articles)
	if err != nil {
		return fmt.Errorf("record run: %w", err)
	}
	return nil
}

// LastRun returns the start time of the most recent run, or the zero time.
func (s *Store) LastRun(ctx context.Context) (time.Time, error) {
	if err := s.check(); err != nil {
		return time.Time{}, err
	}
	var when sql.NullString
	err := s.db.QueryRowContext(ctx, "SELECT started_at FROM runs ORDER BY id DESC LIMIT 1").Scan(&when)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("query last run: %w", err)
	}
	t, err := time.Parse(timeLayout, when.String)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse last run: %w", err)
	}
	return t, nil
}
