package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hyperifyio/sciencedigest/internal/app"
)

// Smoke test: run writes a digest from a local input file.
func TestRun_WritesOutput(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "articles.yaml")
	out := filepath.Join(dir, "digest.md")
	input := `- title: Comet brightens as it nears the Sun
  summary: A comet in the night sky grew brighter as its orbit carried it close to the Sun.
  full_text: Astronomers tracked the comet with a telescope for three weeks. They found that it grew about 40 percent brighter as the ice in its core turned to gas.
  url: https://example.org/comet
`
	if err := os.WriteFile(in, []byte(input), 0o644); err != nil {
		t.Fatalf("write input: %v", err)
	}
	cfg := app.Config{InputPath: in, OutputPath: out, NoPageFetch: true}
	if err := run(context.Background(), cfg); err != nil {
		t.Fatalf("run error: %v", err)
	}
	b, err := os.ReadFile(out)
	if err != nil || !strings.Contains(string(b), "## Astronomy") {
		t.Fatalf("expected digest with an Astronomy section, err=%v:\n%s", err, b)
	}
}

// Ensures the exit code policy condition is surfaced as an error from run().
func TestRun_NoArticles_Error(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "articles.json")
	if err := os.WriteFile(in, []byte(`[{"title":"Paywalled","url":"https://www.wsj.com/science/x"}]`), 0o644); err != nil {
		t.Fatalf("write input: %v", err)
	}
	cfg := app.Config{InputPath: in, OutputPath: filepath.Join(dir, "out.md"), NoPageFetch: true}
	if err := run(context.Background(), cfg); !errors.Is(err, app.ErrNoArticles) {
		t.Fatalf("expected ErrNoArticles, got %v", err)
	}
}

func TestLoop_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := loop(ctx, app.Config{}, 0x7fffffff, errors.New("first")); err != nil {
		t.Fatalf("loop should end cleanly on cancel, got %v", err)
	}
}
