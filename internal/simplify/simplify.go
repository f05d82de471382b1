// Package simplify swaps complex vocabulary for plain words after the text
// has been repaired by textnorm.
package simplify

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/hyperifyio/sciencedigest/internal/textnorm"
)

// Substitution maps a complex word or phrase to a simpler one.
type Substitution struct {
	From string `yaml:"from" json:"from"`
	To   string `yaml:"to" json:"to"`
}

type compiled struct {
	re *regexp.Regexp
	to string
}

// Simplifier applies a fixed substitution table. It is immutable after New
// and safe for concurrent use.
type Simplifier struct {
	table []compiled
}

var whitespaceRe = regexp.MustCompile(`\s+`)

// New compiles table. Multi-word phrases are moved ahead of single words so
// a phrase is never split by one of its own words; otherwise the declared
// order is kept. Empty entries are ignored.
func New(table []Substitution) *Simplifier {
	ordered := make([]Substitution, 0, len(table))
	for _, s := range table {
		if strings.TrimSpace(s.From) == "" {
			continue
		}
		ordered = append(ordered, s)
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		return wordCount(ordered[i].From) > 1 && wordCount(ordered[j].From) == 1
	})
	s := &Simplifier{table: make([]compiled, 0, len(ordered))}
	for _, sub := range ordered {
		parts := strings.Fields(sub.From)
		for i, p := range parts {
			parts[i] = regexp.QuoteMeta(p)
		}
		phrase := strings.Join(parts, `\s+`)
		s.table = append(s.table, compiled{
			re: regexp.MustCompile(`(?i)\b` + phrase + `\b`),
			to: sub.To,
		})
	}
	return s
}

func wordCount(s string) int { return len(strings.Fields(s)) }

// Simplify repairs encoding and spacing damage, collapses whitespace and
// then runs the substitution table once, top to bottom.
func (s *Simplifier) Simplify(text string) string {
	text = textnorm.Normalize(text)
	text = textnorm.FixSpacingArtifacts(text)
	text = strings.TrimSpace(whitespaceRe.ReplaceAllString(text, " "))
	if s == nil {
		return text
	}
	for _, c := range s.table {
		to := c.to
		text = c.re.ReplaceAllStringFunc(text, func(m string) string {
			return matchCase(m, to)
		})
	}
	return text
}

// Len reports the number of active substitutions.
func (s *Simplifier) Len() int {
	if s == nil {
		return 0
	}
	return len(s.table)
}

// matchCase capitalizes repl when the matched text starts with an upper-case
// letter, so sentence-initial words stay sentence-initial.
func matchCase(matched, repl string) string {
	r, _ := utf8.DecodeRuneInString(matched)
	if !unicode.IsUpper(r) || repl == "" {
		return repl
	}
	first, size := utf8.DecodeRuneInString(repl)
	return string(unicode.ToUpper(first)) + repl[size:]
}
