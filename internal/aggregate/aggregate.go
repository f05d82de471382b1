// Package aggregate merges article lists from several feeds or input files
// into one de-duplicated list.
package aggregate

import (
	"net/url"
	"strings"

	"github.com/hyperifyio/sciencedigest/internal/digest"
)

// trackingParams are dropped from query strings before comparing URLs.
var trackingParams = []string{
	"utm_source", "utm_medium", "utm_campaign", "utm_term", "utm_content", "utm_id",
	"gclid", "fbclid", "mc_cid", "mc_eid", "rss", "ref",
}

// MergeAndNormalize flattens groups in order, canonicalizes URLs and drops
// repeats by URL or by title. The first occurrence wins; a later duplicate
// only fills fields the first one left empty.
func MergeAndNormalize(groups [][]digest.RawArticle) []digest.RawArticle {
	byURL := map[string]int{}
	byTitle := map[string]int{}
	out := make([]digest.RawArticle, 0, 64)
	for _, g := range groups {
		for _, a := range g {
			a.Title = strings.TrimSpace(a.Title)
			if a.Title == "" {
				continue
			}
			a.URL = CanonicalURL(a.URL)
			titleKey := strings.ToLower(strings.Join(strings.Fields(a.Title), " "))
			idx, dup := byTitle[titleKey]
			if !dup && a.URL != "" {
				idx, dup = byURL[a.URL]
			}
			if dup {
				fillMissing(&out[idx], a)
				continue
			}
			byTitle[titleKey] = len(out)
			if a.URL != "" {
				byURL[a.URL] = len(out)
			}
			out = append(out, a)
		}
	}
	return out
}

func fillMissing(dst *digest.RawArticle, src digest.RawArticle) {
	if dst.Summary == "" || dst.Summary == dst.Title {
		dst.Summary = src.Summary
	}
	if dst.FullText == "" {
		dst.FullText = src.FullText
	}
	if dst.ImageURL == "" {
		dst.ImageURL = src.ImageURL
	}
	if dst.URL == "" {
		dst.URL = src.URL
	}
	if dst.Source == "" {
		dst.Source = src.Source
	}
}

// CanonicalURL drops the fragment, default ports and tracking parameters
// and lower-cases the host. Unparseable or relative input is returned
// trimmed.
func CanonicalURL(raw string) string {
	raw = strings.TrimSpace(raw)
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return raw
	}
	u.Fragment = ""
	u.Host = strings.ToLower(u.Host)
	if (u.Scheme == "http" && u.Port() == "80") || (u.Scheme == "https" && u.Port() == "443") {
		u.Host = u.Hostname()
	}
	if u.RawQuery != "" {
		q := u.Query()
		for _, p := range trackingParams {
			q.Del(p)
		}
		u.RawQuery = q.Encode()
	}
	return u.String()
}
