package app

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/hyperifyio/sciencedigest/internal/digest"
	"github.com/hyperifyio/sciencedigest/internal/extract"
	"github.com/hyperifyio/sciencedigest/internal/fetch"
)

// pageGetter abstracts the minimal fetch method used for tests.
type pageGetter interface {
	Get(ctx context.Context, url string) ([]byte, string, error)
}

// fetchPages retrieves the page of every article that has no full text
// and extracts its body, lead image and paywall verdict. Failures are
// isolated per URL: the article keeps its feed summary. When allow is set,
// pages it rejects are not requested.
func fetchPages(ctx context.Context, g pageGetter, ex extract.Extractor, allow func(context.Context, string) bool, articles []digest.RawArticle, workers int) []digest.RawArticle {
	out := make([]digest.RawArticle, len(articles))
	copy(out, articles)

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(max(1, workers))
	for i := range out {
		a := &out[i]
		if a.URL == "" || strings.TrimSpace(a.FullText) != "" {
			continue
		}
		eg.Go(func() error {
			if allow != nil && !allow(ctx, a.URL) {
				log.Debug().Str("url", a.URL).Msg("page excluded by robots.txt")
				return nil
			}
			body, ct, err := g.Get(ctx, a.URL)
			switch {
			case errors.Is(err, fetch.ErrBlocked):
				// the page or a redirect target is on the deny list
				a.PageBlocked = true
				return nil
			case err != nil:
				log.Warn().Err(err).Str("url", a.URL).Msg("page fetch failed; using feed summary")
				return nil
			case !isHTML(ct):
				log.Debug().Str("url", a.URL).Str("content_type", ct).Msg("not an html page")
				return nil
			}
			doc := ex.Extract(a.URL, body)
			if doc.Blocked {
				a.PageBlocked = true
				return nil
			}
			a.FullText = doc.Text
			if a.ImageURL == "" {
				a.ImageURL = doc.ImageURL
			}
			if strings.TrimSpace(a.Title) == "" {
				a.Title = doc.Title
			}
			return nil
		})
	}
	_ = eg.Wait()
	return out
}

func isHTML(contentType string) bool {
	ct := strings.ToLower(contentType)
	return strings.Contains(ct, "html")
}
