package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/hyperifyio/sciencedigest/internal/digest"
	"github.com/hyperifyio/sciencedigest/internal/distill"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func record(url, topic string, at time.Time) digest.ArticleRecord {
	return digest.ArticleRecord{
		Title:          "Title " + url,
		Source:         "Example",
		URL:            url,
		Topic:          topic,
		Explanation:    distill.Explanation{Bullets: []string{"First bullet about the finding.", "Second bullet about what it means."}},
		Statistic:      "40 percent of the ice",
		HasStatistic:   true,
		ReadingMinutes: 3,
		ReadingGrade:   7.5,
		FetchedAt:      at,
	}
}

func TestStore_SaveSeenRecent(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	recs := []digest.ArticleRecord{
		record("https://a.org/1", "Climate", base),
		record("https://a.org/2", "Climate", base.Add(time.Hour)),
		record("https://a.org/3", "Astronomy", base.Add(2*time.Hour)),
		{Title: "no url", Topic: "Climate"},
	}
	n, err := s.Save(ctx, recs)
	if err != nil || n != 3 {
		t.Fatalf("save: %d %v", n, err)
	}
	seen, err := s.Seen(ctx, "https://a.org/2")
	if err != nil || !seen {
		t.Fatalf("expected seen, got %v %v", seen, err)
	}
	if seen, _ := s.Seen(ctx, "https://a.org/unknown"); seen {
		t.Fatalf("unexpected seen for unknown url")
	}

	got, err := s.Recent(ctx, "Climate", 10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(got) != 2 || got[0].URL != "https://a.org/2" {
		t.Fatalf("expected newest climate record first, got %+v", got)
	}
	r := got[0]
	if len(r.Explanation.Bullets) != 2 || !r.HasStatistic || r.ReadingMinutes != 3 || r.ReadingGrade != 7.5 {
		t.Fatalf("record did not round-trip: %+v", r)
	}
	if !r.FetchedAt.Equal(base.Add(time.Hour)) {
		t.Fatalf("fetched at: %v", r.FetchedAt)
	}
	all, err := s.Recent(ctx, "", 2)
	if err != nil || len(all) != 2 || all[0].Topic != "Astronomy" {
		t.Fatalf("expected the 2 newest across topics, got %+v %v", all, err)
	}
}

func TestStore_UpsertKeepsOneRow(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()
	now := time.Now().UTC()
	if _, err := s.Save(ctx, []digest.ArticleRecord{record("https://b.org/1", "Biology", now)}); err != nil {
		t.Fatalf("save: %v", err)
	}
	updated := record("https://b.org/1", "Biology", now.Add(time.Minute))
	updated.Explanation.Bullets = []string{"Only one bullet now, with enough words to be useful."}
	if _, err := s.Save(ctx, []digest.ArticleRecord{updated}); err != nil {
		t.Fatalf("save again: %v", err)
	}
	got, err := s.Recent(ctx, "Biology", 10)
	if err != nil || len(got) != 1 || len(got[0].Explanation.Bullets) != 1 {
		t.Fatalf("expected one updated row, got %+v %v", got, err)
	}
}

func TestStore_Runs(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()
	last, err := s.LastRun(ctx)
	if err != nil || !last.IsZero() {
		t.Fatalf("expected zero time before any run, got %v %v", last, err)
	}
	started := time.Date(2024, 6, 2, 8, 0, 0, 0, time.UTC)
	if err := s.RecordRun(ctx, NewRunID(), started, 12); err != nil {
		t.Fatalf("record run: %v", err)
	}
	if err := s.RecordRun(ctx, "", started.Add(-time.Hour), 3); err != nil {
		t.Fatalf("record run without id: %v", err)
	}
	last, err = s.LastRun(ctx)
	if err != nil || !last.Equal(started) {
		t.Fatalf("last run: %v %v", last, err)
	}
}

func TestStore_Closed(t *testing.T) {
	s := openTemp(t)
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
	if _, err := s.Seen(context.Background(), "x"); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
	if _, err := s.Save(context.Background(), nil); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed from Save, got %v", err)
	}
}

func TestStore_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "h.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := s.Save(context.Background(), []digest.ArticleRecord{record("https://c.org/1", "Wildlife", time.Now())}); err != nil {
		t.Fatalf("save: %v", err)
	}
	_ = s.Close()
	s2, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s2.Close()
	if seen, err := s2.Seen(context.Background(), "https://c.org/1"); err != nil || !seen {
		t.Fatalf("expected history to persist, got %v %v", seen, err)
	}
}
