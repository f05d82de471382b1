package app

import (
	"strings"
	"time"

	"github.com/hyperifyio/sciencedigest/internal/feed"
)

// Config holds the settings of one digest run. Zero values are filled by
// flag defaults in main and by ApplyFileConfig.
type Config struct {
	// InputPath is a JSON or YAML list of articles. When empty, Feeds are read.
	InputPath  string
	ConfigPath string
	// TablesPath replaces the embedded topic, access and vocabulary tables.
	TablesPath string

	OutputPath string
	JSONPath   string
	PDFPath    string
	Title      string

	Feeds    []feed.Source
	Featured []feed.Source

	DBPath   string
	SkipSeen bool

	CacheDir         string
	CacheMaxAge      time.Duration
	CacheClear       bool
	CacheStrictPerms bool
	CacheMaxBytes    int64
	CacheMaxEntries  int

	UserAgent string
	// Rate is the request rate across all hosts, per second. Zero disables.
	Rate    float64
	Workers int

	PerTopic         int
	PerDomain        int
	MaxTotal         int
	TopicOrder       []string
	IgnoreTopicHint  bool
	NoPageFetch      bool
	IgnoreRobots     bool
	PreferImages     bool
	PreferStatistics bool

	// ExplainPath receives the distillation trace of every kept article.
	ExplainPath string
	Verbose     bool
}

// DefaultFeeds are open-access science feeds, one topic hint each.
var DefaultFeeds = []feed.Source{
	{Name: "ScienceDaily", URL: "https://www.sciencedaily.com/rss/space_time.xml", Topic: "Astronomy"},
	{Name: "Phys.org", URL: "https://phys.org/rss-feed/space-news/", Topic: "Astronomy"},
	{Name: "NASA", URL: "https://www.nasa.gov/news-release/feed/", Topic: "Astronomy"},
	{Name: "ScienceDaily", URL: "https://www.sciencedaily.com/rss/plants_animals.xml", Topic: "Biology"},
	{Name: "Phys.org", URL: "https://phys.org/rss-feed/biology-news/", Topic: "Biology"},
	{Name: "ScienceDaily", URL: "https://www.sciencedaily.com/rss/earth_climate.xml", Topic: "Climate"},
	{Name: "Phys.org", URL: "https://phys.org/rss-feed/earth-news/", Topic: "Climate"},
}

// DefaultFeatured feed the image-led featured section.
var DefaultFeatured = []feed.Source{
	{Name: "Smithsonian", URL: "https://www.smithsonianmag.com/rss/science-nature/"},
	{Name: "BBC", URL: "https://feeds.bbci.co.uk/news/science_and_environment/rss.xml"},
}

// SplitList splits a comma-separated list, dropping blank items.
func SplitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if v := strings.TrimSpace(p); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// ParseFeeds reads a comma-separated list of "URL" or "Topic=URL" entries.
func ParseFeeds(s string) []feed.Source {
	var out []feed.Source
	for _, item := range SplitList(s) {
		src := feed.Source{URL: item}
		if topic, u, ok := strings.Cut(item, "="); ok && !strings.Contains(topic, "://") {
			src = feed.Source{Topic: strings.TrimSpace(topic), URL: strings.TrimSpace(u)}
		}
		out = append(out, src)
	}
	return out
}
