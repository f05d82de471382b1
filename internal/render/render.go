// Package render writes a finished digest as Markdown, JSON or PDF.
package render

import (
	"time"

	"github.com/hyperifyio/sciencedigest/internal/digest"
	"github.com/hyperifyio/sciencedigest/internal/feed"
	selecter "github.com/hyperifyio/sciencedigest/internal/select"
)

// DefaultTitle heads every rendering unless Digest.Title is set.
const DefaultTitle = "Science Digest"

// TopicSection is one topic heading and its records.
type TopicSection struct {
	Name    string                 `json:"name"`
	Records []digest.ArticleRecord `json:"records"`
}

// Meta summarizes the run that produced the digest.
type Meta struct {
	RunID      string         `json:"run_id,omitempty"`
	Feeds      int            `json:"feeds"`
	Candidates int            `json:"candidates"`
	Published  int            `json:"published"`
	Dropped    map[string]int `json:"dropped,omitempty"`
	HTTPCache  bool           `json:"http_cache"`
	Tables     string         `json:"tables,omitempty"`
}

// Digest is the complete document.
type Digest struct {
	Title       string              `json:"title"`
	GeneratedAt time.Time           `json:"generated_at"`
	Featured    []feed.FeaturedItem `json:"featured,omitempty"`
	Topics      []TopicSection      `json:"topics"`
	Meta        Meta                `json:"meta"`
}

// Group splits records into sections in topic order. Topics without
// records get no section.
func Group(records []digest.ArticleRecord, order []string) []TopicSection {
	byTopic := map[string][]digest.ArticleRecord{}
	for _, r := range records {
		byTopic[r.Topic] = append(byTopic[r.Topic], r)
	}
	var out []TopicSection
	for _, name := range selecter.TopicOrder(records, order) {
		if len(byTopic[name]) == 0 {
			continue
		}
		out = append(out, TopicSection{Name: name, Records: byTopic[name]})
	}
	return out
}

// Count returns the number of records across all sections.
func (d Digest) Count() int {
	n := 0
	for _, s := range d.Topics {
		n += len(s.Records)
	}
	return n
}

func (d Digest) title() string {
	if d.Title != "" {
		return d.Title
	}
	return DefaultTitle
}
