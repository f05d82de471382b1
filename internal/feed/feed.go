// Package feed reads RSS and Atom feeds into raw articles.
package feed

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"
	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/sciencedigest/internal/digest"
)

// MaxSummary bounds the summary taken from an item description, in runes.
const MaxSummary = 400

// Source is one configured feed. Topic is a hint only: articles are still
// classified and dropped when the classifier disagrees.
type Source struct {
	Name  string `yaml:"name" json:"name"`
	URL   string `yaml:"url" json:"url"`
	Topic string `yaml:"topic,omitempty" json:"topic,omitempty"`
	// Limit caps the items taken from the top of the feed. Zero means 6.
	Limit int `yaml:"limit,omitempty" json:"limit,omitempty"`
}

// Getter fetches a URL. *fetch.Client satisfies it.
type Getter interface {
	Get(ctx context.Context, url string) ([]byte, string, error)
}

// Reader fetches and parses feeds.
type Reader struct {
	Getter Getter
	// Parser defaults to gofeed.NewParser().
	Parser *gofeed.Parser
}

func (r *Reader) parser() *gofeed.Parser {
	if r.Parser != nil {
		return r.Parser
	}
	return gofeed.NewParser()
}

// Read fetches src and converts its first Limit items.
func (r *Reader) Read(ctx context.Context, src Source) ([]digest.RawArticle, error) {
	f, err := r.fetch(ctx, src.URL)
	if err != nil {
		return nil, err
	}
	limit := src.Limit
	if limit <= 0 {
		limit = 6
	}
	name := src.Name
	if name == "" {
		name = strings.TrimSpace(f.Title)
	}
	out := make([]digest.RawArticle, 0, min(limit, len(f.Items)))
	for _, item := range f.Items {
		if len(out) >= limit {
			break
		}
		title := strings.TrimSpace(item.Title)
		if title == "" {
			continue
		}
		summary := truncate(htmlText(item.Description), MaxSummary)
		if summary == "" {
			summary = truncate(htmlText(item.Content), MaxSummary)
		}
		out = append(out, digest.RawArticle{
			Title:     title,
			Summary:   summary,
			URL:       strings.TrimSpace(item.Link),
			ImageURL:  ItemImage(item),
			Source:    name,
			TopicHint: src.Topic,
		})
	}
	return out, nil
}

// ReadAll reads every source in order. A failing feed is logged and
// skipped; the result has one group per source that succeeded.
func (r *Reader) ReadAll(ctx context.Context, sources []Source) [][]digest.RawArticle {
	groups := make([][]digest.RawArticle, 0, len(sources))
	for _, src := range sources {
		if ctx.Err() != nil {
			break
		}
		items, err := r.Read(ctx, src)
		if err != nil {
			log.Warn().Err(err).Str("feed", src.URL).Msg("feed skipped")
			continue
		}
		log.Info().Str("feed", src.URL).Int("items", len(items)).Msg("feed read")
		groups = append(groups, items)
	}
	return groups
}

func (r *Reader) fetch(ctx context.Context, url string) (*gofeed.Feed, error) {
	if r.Getter == nil {
		return nil, fmt.Errorf("feed %s: no getter configured", url)
	}
	body, _, err := r.Getter.Get(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("fetch feed: %w", err)
	}
	f, err := r.parser().Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse feed %s: %w", url, err)
	}
	return f, nil
}

// ItemImage looks at the item image, media:content, media:thumbnail, an
// image enclosure, then the first <img> in the description.
func ItemImage(item *gofeed.Item) string {
	if item == nil {
		return ""
	}
	if item.Image != nil && item.Image.URL != "" {
		return item.Image.URL
	}
	if media, ok := item.Extensions["media"]; ok {
		for _, name := range []string{"content", "thumbnail"} {
			for _, e := range media[name] {
				if u := e.Attrs["url"]; u != "" {
					return u
				}
			}
		}
	}
	for _, enc := range item.Enclosures {
		if enc == nil || enc.URL == "" {
			continue
		}
		if enc.Type == "" || strings.Contains(enc.Type, "image") {
			return enc.URL
		}
	}
	return firstImg(item.Description)
}

func firstImg(fragment string) string {
	if !strings.Contains(fragment, "<img") {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return ""
	}
	src, _ := doc.Find("img").First().Attr("src")
	return strings.TrimSpace(src)
}

// htmlText strips markup from a description fragment.
func htmlText(fragment string) string {
	if fragment == "" {
		return ""
	}
	text := fragment
	if strings.ContainsAny(fragment, "<&") {
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
		if err == nil {
			text = doc.Text()
		}
	}
	return strings.Join(strings.Fields(text), " ")
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
