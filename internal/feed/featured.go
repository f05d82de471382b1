package feed

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"
)

// FeaturedItem is a picture-led feed entry shown above the topic sections.
type FeaturedItem struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	ImageURL    string `json:"image_url,omitempty"`
	Description string `json:"description,omitempty"`
	Source      string `json:"source"`
}

const (
	featuredPerFeed = 3
	featuredDesc    = 150
)

// Featured reads the top items of each source as featured entries. Failing
// feeds are logged and skipped.
func (r *Reader) Featured(ctx context.Context, sources []Source, n int) []FeaturedItem {
	var items []FeaturedItem
	for _, src := range sources {
		f, err := r.fetch(ctx, src.URL)
		if err != nil {
			log.Warn().Err(err).Str("feed", src.URL).Msg("featured feed skipped")
			continue
		}
		name := src.Name
		if name == "" {
			name = strings.TrimSpace(f.Title)
		}
		for i, item := range f.Items {
			if i >= featuredPerFeed {
				break
			}
			desc := htmlText(item.Description)
			if len([]rune(desc)) > featuredDesc {
				desc = truncate(desc, featuredDesc) + "..."
			}
			items = append(items, FeaturedItem{
				Title:       strings.TrimSpace(item.Title),
				URL:         strings.TrimSpace(item.Link),
				ImageURL:    ItemImage(item),
				Description: desc,
				Source:      name,
			})
		}
	}
	return FeaturedItems(items, n)
}

// FeaturedItems puts items with an image first, keeps the first item per
// title and returns at most n (4 when n is zero).
func FeaturedItems(items []FeaturedItem, n int) []FeaturedItem {
	if n <= 0 {
		n = 4
	}
	ordered := make([]FeaturedItem, 0, len(items))
	for _, it := range items {
		if it.ImageURL != "" {
			ordered = append(ordered, it)
		}
	}
	for _, it := range items {
		if it.ImageURL == "" {
			ordered = append(ordered, it)
		}
	}
	seen := map[string]struct{}{}
	out := make([]FeaturedItem, 0, n)
	for _, it := range ordered {
		if it.Title == "" {
			continue
		}
		if _, ok := seen[it.Title]; ok {
			continue
		}
		seen[it.Title] = struct{}{}
		out = append(out, it)
		if len(out) == n {
			break
		}
	}
	return out
}
