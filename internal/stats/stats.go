// Package stats pulls one quantitative highlight out of article text.
package stats

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// MaxLength bounds a pattern match; longer matches are skipped.
const MaxLength = 60

// patterns are tried in priority order.
var patterns = []struct {
	name string
	re   *regexp.Regexp
}{
	{"percentage", regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(?:percent|%)\s+(?:of\s+)?([a-zA-Z\s]{5,40})`)},
	{"multiplier", regexp.MustCompile(`(?i)(\d+(?:,\d{3})*(?:\.\d+)?)\s*(?:times?|x)\s+(?:more\s+|less\s+|faster\s+|slower\s+)?([a-zA-Z\s]{3,30})`)},
	{"large-number", regexp.MustCompile(`(?i)(\d+(?:,\d{3})*(?:\.\d+)?)\s*(million|billion|trillion|thousand)\s+([a-zA-Z\s]{3,30})`)},
	{"age", regexp.MustCompile(`(?i)(\d+(?:,\d{3})*(?:\.\d+)?)\s*(?:year|million year|billion year)s?\s+(?:old|ago)`)},
	{"distance", regexp.MustCompile(`(?i)(\d+(?:,\d{3})*(?:\.\d+)?)\s*(light[- ]?years?|miles?|kilometers?|km|meters?|feet)\s+(?:away|from|across|wide|long)`)},
	{"temperature", regexp.MustCompile(`(?i)(\d+(?:,\d{3})*(?:\.\d+)?)\s*(?:degrees?|\x{00B0})\s*(?:Celsius|Fahrenheit|C|F)\b`)},
	{"count", regexp.MustCompile(`(?i)(?:more than\s+|over\s+|about\s+)?(\d+(?:,\d{3})*)\s+(?:new\s+)?(?:species|discoveries|stars?|planets?|galaxies)`)},
}

var (
	spaceRe      = regexp.MustCompile(`\s+`)
	sentenceRe   = regexp.MustCompile(`[.!?]`)
	bigNumberRe  = regexp.MustCompile(`\b\d{2,}(?:,\d{3})*\b`)
	percentageRe = regexp.MustCompile(`\d+\s*%`)
)

// ExtractStatistic returns the first pattern match in content and title
// that is shorter than MaxLength, or failing that the first sentence with a
// two-digit number or a percentage whose length is between 20 and 80
// characters. An empty content does not stop the title from being
// searched.
func ExtractStatistic(content, title string) (string, bool) {
	_, stat, ok := find(content, title)
	return stat, ok
}

// find also names the rule that produced the statistic: a pattern name or
// "sentence" for the fallback. Lengths are counted in runes.
func find(content, title string) (kind, stat string, ok bool) {
	text := strings.TrimSpace(content + " " + title)
	if text == "" {
		return "", "", false
	}
	for _, p := range patterns {
		m := p.re.FindString(text)
		if m == "" {
			continue
		}
		m = spaceRe.ReplaceAllString(strings.TrimSpace(m), " ")
		if utf8.RuneCountInString(m) < MaxLength {
			return p.name, m, true
		}
	}
	for _, sent := range sentenceRe.Split(text, -1) {
		if !bigNumberRe.MatchString(sent) && !percentageRe.MatchString(sent) {
			continue
		}
		sent = strings.TrimSpace(sent)
		if n := utf8.RuneCountInString(sent); n > 20 && n < 80 {
			return "sentence", sent, true
		}
	}
	return "", "", false
}
