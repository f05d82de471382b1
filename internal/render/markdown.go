package render

import (
	"fmt"
	"html"
	"slices"
	"strconv"
	"strings"
	"time"
	"unicode"
)

// minToCSections is the section count at which a table of contents is
// added.
const minToCSections = 3

// Markdown renders the digest. Bullets are written with entities decoded.
func Markdown(d Digest) string {
	var b strings.Builder
	b.WriteString("# ")
	b.WriteString(d.title())
	b.WriteString("\n\n")
	if !d.GeneratedAt.IsZero() {
		b.WriteString("_Generated ")
		b.WriteString(GeneratedStamp(d.GeneratedAt))
		b.WriteString("_\n\n")
	}

	if len(d.Topics) >= minToCSections {
		b.WriteString("## Contents\n\n")
		for _, s := range d.Topics {
			fmt.Fprintf(&b, "- [%s](#%s) (%d)\n", s.Name, slug(s.Name), len(s.Records))
		}
		b.WriteString("\n")
	}

	if len(d.Featured) > 0 {
		b.WriteString("## Featured\n\n")
		for _, f := range d.Featured {
			b.WriteString("- ")
			b.WriteString(link(f.Title, f.URL))
			if f.Source != "" {
				b.WriteString(" (" + f.Source + ")")
			}
			if f.ImageURL != "" {
				b.WriteString("  \n  ![](" + f.ImageURL + ")")
			}
			if f.Description != "" {
				b.WriteString("  \n  " + f.Description)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	for _, s := range d.Topics {
		b.WriteString("## ")
		b.WriteString(s.Name)
		b.WriteString("\n\n")
		for _, r := range s.Records {
			b.WriteString("### ")
			b.WriteString(link(r.Title, r.URL))
			b.WriteString("\n\n")
			b.WriteString("_" + byline(r.Source, r.ReadingMinutes) + "_\n\n")
			if r.ImageURL != "" {
				b.WriteString("![](" + r.ImageURL + ")\n\n")
			}
			b.WriteString(r.Explanation.Markdown())
			if r.HasStatistic {
				b.WriteString("\n> **By the numbers:** ")
				b.WriteString(html.UnescapeString(r.Statistic))
				b.WriteString("\n")
			}
			b.WriteString("\n")
		}
	}

	b.WriteString(footer(d.Meta))
	return b.String()
}

func link(text, url string) string {
	text = strings.TrimSpace(html.UnescapeString(text))
	if url == "" {
		return text
	}
	return "[" + strings.ReplaceAll(text, "]", "\\]") + "](" + url + ")"
}

func byline(source string, minutes int) string {
	read := strconv.Itoa(max(1, minutes)) + " min read"
	if source == "" {
		return read
	}
	return source + " · " + read
}

// footer records what fed the digest, for auditing a run.
func footer(m Meta) string {
	var b strings.Builder
	b.WriteString("---\n")
	fmt.Fprintf(&b, "Sources: feeds=%d; candidates=%d; published=%d; http_cache=%t",
		m.Feeds, m.Candidates, m.Published, m.HTTPCache)
	if m.RunID != "" {
		b.WriteString("; run=" + m.RunID)
	}
	if len(m.Dropped) > 0 {
		b.WriteString("; dropped=")
		b.WriteString(droppedSummary(m.Dropped))
	}
	b.WriteString("\n")
	return b.String()
}

func droppedSummary(dropped map[string]int) string {
	keys := make([]string, 0, len(dropped))
	for k := range dropped {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+":"+strconv.Itoa(dropped[k]))
	}
	return strings.Join(parts, ",")
}

// slug builds a GitHub-style heading anchor.
func slug(s string) string {
	var b strings.Builder
	lastHyphen := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastHyphen = false
		case r == ' ' || r == '-' || r == '_':
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.Trim(b.String(), "-")
}

// GeneratedStamp formats t the way the Markdown header does.
func GeneratedStamp(t time.Time) string {
	return t.UTC().Format("2006-01-02 15:04 UTC")
}
