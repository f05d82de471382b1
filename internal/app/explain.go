package app

import (
    "fmt"
    "strings"

    "github.com/hyperifyio/sciencedigest/internal/distill"
)

// explainEntry pairs an article with its distillation trace.
type explainEntry struct {
    Title string
    URL   string
    Trace distill.Trace
}

// formatExplain renders traces as Markdown: one section per article listing
// what was dropped and why, the scores and the bullets chosen.
func formatExplain(entries []explainEntry) string {
    var b strings.Builder
    b.WriteString("# Distillation trace\n")
    for _, e := range entries {
        tr := e.Trace
        fmt.Fprintf(&b, "\n## %s\n\n%s\n\n", strings.TrimSpace(e.Title), e.URL)
        fmt.Fprintf(&b, "Segments: %d; restating title: %d; rejected: %d; scored: %d\n",
            len(tr.Segments), len(tr.Restating), len(tr.Rejected), len(tr.Scored))
        if tr.Fallback != distill.FallbackNone {
            fmt.Fprintf(&b, "Fallback: %s\n", tr.Fallback)
        }
        if len(tr.Rejected) > 0 {
            b.WriteString("\nRejected:\n")
            for _, r := range tr.Rejected {
                fmt.Fprintf(&b, "- (%s) %s\n", r.Reason, clip(r.Text, 120))
            }
        }
        if len(tr.Scored) > 0 {
            b.WriteString("\nScores:\n")
            for _, c := range tr.Scored {
                fmt.Fprintf(&b, "- %d: %s\n", c.Score, clip(c.Text, 120))
            }
        }
        b.WriteString("\nBullets:\n")
        for _, line := range tr.Explanation.Plain() {
            b.WriteString("- ")
            b.WriteString(line)
            b.WriteString("\n")
        }
    }
    return b.String()
}

func clip(s string, n int) string {
    r := []rune(s)
    if len(r) <= n {
        return s
    }
    return string(r[:n]) + "..."
}
