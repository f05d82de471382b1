package extract

import (
    "net/url"
    "strings"
    "unicode/utf8"
)

// Extractor turns a fetched page into a Document. Implementations are
// deterministic and never fail; an unusable page yields an empty Text.
type Extractor interface {
    Extract(pageURL string, input []byte) Document
}

// HeuristicExtractor wraps FromHTML and resolves the image URL against
// the page URL.
type HeuristicExtractor struct{}

func (HeuristicExtractor) Extract(pageURL string, input []byte) Document {
    doc := FromHTML(input)
    doc.ImageURL = resolve(pageURL, doc.ImageURL)
    return doc
}

// Chain tries each extractor in order and returns the first document whose
// text reaches MinText runes. A blocked verdict ends the chain at once.
// When nothing is long enough the longest text wins.
type Chain struct {
    Extractors []Extractor
    MinText    int
}

// DefaultMinText is the text length a Chain accepts without trying the
// next strategy.
const DefaultMinText = 300

func (c Chain) Extract(pageURL string, input []byte) Document {
    minText := c.MinText
    if minText <= 0 {
        minText = DefaultMinText
    }
    var best Document
    for _, e := range c.Extractors {
        doc := e.Extract(pageURL, input)
        if doc.Blocked {
            return doc
        }
        if best.Title == "" {
            best.Title = doc.Title
        }
        if best.ImageURL == "" {
            best.ImageURL = doc.ImageURL
        }
        if utf8.RuneCountInString(doc.Text) >= minText {
            doc.Title = firstNonEmpty(doc.Title, best.Title)
            doc.ImageURL = firstNonEmpty(doc.ImageURL, best.ImageURL)
            return doc
        }
        if utf8.RuneCountInString(doc.Text) > utf8.RuneCountInString(best.Text) {
            best.Text = doc.Text
        }
    }
    return best
}

func firstNonEmpty(a, b string) string {
    if a != "" {
        return a
    }
    return b
}

// resolve makes ref absolute against pageURL. Unparseable input is
// dropped.
func resolve(pageURL, ref string) string {
    ref = strings.TrimSpace(ref)
    if ref == "" {
        return ""
    }
    r, err := url.Parse(ref)
    if err != nil {
        return ""
    }
    if r.IsAbs() {
        return r.String()
    }
    base, err := url.Parse(pageURL)
    if err != nil || !base.IsAbs() {
        return ""
    }
    return base.ResolveReference(r).String()
}

// truncateRunes cuts s to at most n runes.
func truncateRunes(s string, n int) string {
    if n <= 0 || utf8.RuneCountInString(s) <= n {
        return s
    }
    return string([]rune(s)[:n])
}
