// Package digest turns retrieved articles into enriched records: the
// access check, topic assignment, distillation and the reading metadata.
package digest

import (
	"time"

	"github.com/hyperifyio/sciencedigest/internal/classify"
	"github.com/hyperifyio/sciencedigest/internal/distill"
)

// RawArticle is what the retrieval layer hands over for one article.
type RawArticle struct {
	Title    string `json:"title" yaml:"title"`
	Summary  string `json:"summary,omitempty" yaml:"summary,omitempty"`
	FullText string `json:"full_text,omitempty" yaml:"full_text,omitempty"`
	URL      string `json:"url" yaml:"url"`
	ImageURL string `json:"image_url,omitempty" yaml:"image_url,omitempty"`
	Source   string `json:"source,omitempty" yaml:"source,omitempty"`
	// PageBlocked is set when the fetched page showed paywall markup.
	PageBlocked bool `json:"page_blocked,omitempty" yaml:"page_blocked,omitempty"`
	// TopicHint is the topic of the feed the article came from, if any.
	TopicHint string `json:"topic_hint,omitempty" yaml:"topic_hint,omitempty"`
}

// ArticleRecord is one accepted article, ready for rendering. Topic is set
// when the record is built and never changed afterwards.
type ArticleRecord struct {
	Title          string              `json:"title"`
	Source         string              `json:"source,omitempty"`
	URL            string              `json:"url"`
	Topic          string              `json:"topic"`
	Explanation    distill.Explanation `json:"explanation"`
	Statistic      string              `json:"statistic,omitempty"`
	HasStatistic   bool                `json:"has_statistic"`
	ImageURL       string              `json:"image_url,omitempty"`
	ReadingMinutes int                 `json:"reading_minutes"`
	ReadingGrade   float64             `json:"reading_grade"`
	FetchedAt      time.Time           `json:"fetched_at"`
}

// HasImage reports whether the record carries an image URL.
func (r ArticleRecord) HasImage() bool { return r.ImageURL != "" }

// Drop names why an article produced no record. The zero value means kept.
type Drop string

const (
	Kept            Drop = ""
	DropBlockedURL  Drop = "paywalled url"
	DropBlockedPage Drop = "paywalled page"
	DropNoContent   Drop = "no accessible content"
	DropNoTopic     Drop = "no topic"
	DropTopicHint   Drop = "topic differs from source"
)

// Outcome is the result of processing one RawArticle.
type Outcome struct {
	Record  ArticleRecord
	Dropped Drop
	// Scores are the classifier hit counts; empty when dropped before
	// classification.
	Scores []classify.Score
}

// OK reports whether the article produced a record.
func (o Outcome) OK() bool { return o.Dropped == Kept }

// Records returns the records of the kept outcomes in order.
func Records(outcomes []Outcome) []ArticleRecord {
	out := make([]ArticleRecord, 0, len(outcomes))
	for _, o := range outcomes {
		if o.OK() {
			out = append(out, o.Record)
		}
	}
	return out
}
