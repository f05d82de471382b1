// Package classify assigns an article to one topic by keyword hits.
package classify

import "strings"

// None is the topic of an article no keyword set matched.
const None = "none"

// Topic is a named keyword set. Keywords are matched as lower-case
// substrings, so "star" also hits "stars" and "starlight".
type Topic struct {
	Name     string   `yaml:"name" json:"name"`
	Keywords []string `yaml:"keywords" json:"keywords"`
}

// Score is the number of distinct keywords of one topic found in the text.
type Score struct {
	Topic string
	Hits  int
}

// Result is the chosen topic plus every topic's score in declared order.
type Result struct {
	Topic  string
	Scores []Score
}

// Classified reports whether a topic was assigned.
func (r Result) Classified() bool { return r.Topic != "" && r.Topic != None }

// Classifier holds the ordered topic list. Declared order breaks ties.
type Classifier struct {
	topics []Topic
}

// New copies topics, lower-casing and de-duplicating keywords within each
// topic so repeated entries cannot inflate a score.
func New(topics []Topic) *Classifier {
	c := &Classifier{topics: make([]Topic, 0, len(topics))}
	for _, t := range topics {
		if strings.TrimSpace(t.Name) == "" {
			continue
		}
		seen := make(map[string]struct{}, len(t.Keywords))
		kws := make([]string, 0, len(t.Keywords))
		for _, kw := range t.Keywords {
			kw = strings.ToLower(strings.TrimSpace(kw))
			if kw == "" {
				continue
			}
			if _, dup := seen[kw]; dup {
				continue
			}
			seen[kw] = struct{}{}
			kws = append(kws, kw)
		}
		c.topics = append(c.topics, Topic{Name: t.Name, Keywords: kws})
	}
	return c
}

// Topics returns the topic names in declared order.
func (c *Classifier) Topics() []string {
	names := make([]string, 0, len(c.topics))
	for _, t := range c.topics {
		names = append(names, t.Name)
	}
	return names
}

// Classify scores title and summary against every topic. The strictly
// highest score wins, the first declared topic wins a tie, and a best score
// of zero yields None.
func (c *Classifier) Classify(title, summary string) Result {
	text := strings.ToLower(title + " " + summary)
	res := Result{Topic: None, Scores: make([]Score, 0, len(c.topics))}
	best := 0
	for _, t := range c.topics {
		hits := 0
		for _, kw := range t.Keywords {
			if strings.Contains(text, kw) {
				hits++
			}
		}
		res.Scores = append(res.Scores, Score{Topic: t.Name, Hits: hits})
		if hits > best {
			best = hits
			res.Topic = t.Name
		}
	}
	return res
}
