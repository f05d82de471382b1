package extract

import (
    "bytes"
    "net/url"
    "strings"

    readability "github.com/go-shiori/go-readability"
)

// ReadabilityExtractor applies the Readability algorithm. It handles pages
// whose markup matches none of the paragraph selectors.
type ReadabilityExtractor struct {
    MaxText int // (2500)
}

func (r ReadabilityExtractor) Extract(pageURL string, input []byte) Document {
    u, err := url.Parse(pageURL)
    if err != nil || !u.IsAbs() {
        return Document{}
    }
    article, err := readability.FromReader(bytes.NewReader(input), u)
    if err != nil {
        return Document{}
    }
    maxText := r.MaxText
    if maxText <= 0 {
        maxText = 2500
    }
    return Document{
        Title:    strings.TrimSpace(article.Title),
        Text:     truncateRunes(strings.Join(strings.Fields(article.TextContent), " "), maxText),
        ImageURL: resolve(pageURL, article.Image),
    }
}
