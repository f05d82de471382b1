// Package selecter picks the records that make it into a digest: a capped
// number per topic, grouped in the configured topic order.
package selecter

import (
	"sort"
	"strings"

	"github.com/hyperifyio/sciencedigest/internal/aggregate"
	"github.com/hyperifyio/sciencedigest/internal/digest"
)

// Options configures selection constraints.
type Options struct {
	// PerTopic caps records per topic. Zero means 4.
	PerTopic int
	// MaxTotal caps the whole digest. Zero means no cap.
	MaxTotal int
	// PerDomain caps records from one host within a topic. Zero disables.
	PerDomain int
	// TopicOrder lists topics in display order. Topics not listed follow
	// in order of first appearance.
	TopicOrder []string
	// PreferImages moves records with an image ahead of those without,
	// keeping input order otherwise.
	PreferImages bool
	// PreferStatistics does the same for records with a statistic.
	PreferStatistics bool
}

// Select returns the chosen records grouped by topic. Records repeating a
// canonical URL already chosen are skipped.
func Select(records []digest.ArticleRecord, opt Options) []digest.ArticleRecord {
	if opt.PerTopic <= 0 {
		opt.PerTopic = 4
	}
	sorted := make([]digest.ArticleRecord, len(records))
	copy(sorted, records)
	if opt.PreferImages || opt.PreferStatistics {
		sort.SliceStable(sorted, func(i, j int) bool {
			return rank(sorted[i], opt) > rank(sorted[j], opt)
		})
	}

	byTopic := map[string][]digest.ArticleRecord{}
	hostCounts := map[string]int{}
	seenURL := map[string]struct{}{}
	for _, r := range sorted {
		if r.Topic == "" {
			continue
		}
		if len(byTopic[r.Topic]) >= opt.PerTopic {
			continue
		}
		if r.URL != "" {
			canon := aggregate.CanonicalURL(r.URL)
			if _, ok := seenURL[canon]; ok {
				continue
			}
			host := r.Topic + "|" + hostOf(canon)
			if opt.PerDomain > 0 && hostCounts[host] >= opt.PerDomain {
				continue
			}
			seenURL[canon] = struct{}{}
			hostCounts[host]++
		}
		byTopic[r.Topic] = append(byTopic[r.Topic], r)
	}

	out := make([]digest.ArticleRecord, 0, len(records))
	for _, topic := range TopicOrder(records, opt.TopicOrder) {
		for _, r := range byTopic[topic] {
			if opt.MaxTotal > 0 && len(out) >= opt.MaxTotal {
				return out
			}
			out = append(out, r)
		}
	}
	return out
}

// TopicOrder returns the configured topics followed by any other topic
// present in records, in order of first appearance.
func TopicOrder(records []digest.ArticleRecord, configured []string) []string {
	seen := map[string]struct{}{}
	order := make([]string, 0, len(configured))
	for _, t := range configured {
		if _, ok := seen[t]; ok || t == "" {
			continue
		}
		seen[t] = struct{}{}
		order = append(order, t)
	}
	for _, r := range records {
		if _, ok := seen[r.Topic]; ok || r.Topic == "" {
			continue
		}
		seen[r.Topic] = struct{}{}
		order = append(order, r.Topic)
	}
	return order
}

func rank(r digest.ArticleRecord, opt Options) int {
	n := 0
	if opt.PreferImages && r.HasImage() {
		n += 2
	}
	if opt.PreferStatistics && r.HasStatistic {
		n++
	}
	return n
}

func hostOf(canon string) string {
	rest, ok := strings.CutPrefix(canon, "https://")
	if !ok {
		rest = strings.TrimPrefix(canon, "http://")
	}
	host, _, _ := strings.Cut(rest, "/")
	return host
}
