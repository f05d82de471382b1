// Package rules holds the ordered (pattern, replacement) tables used by the
// text cleanup stages. Tables are plain slices so rule order stays visible
// at the declaration site and each table can be tested on its own.
package rules

import (
	"regexp"
	"strings"
)

// Rule is one regex rewrite. When Fn is set it is used instead of Replace
// and receives the full match; Groups receives the match and its
// submatches, "" for groups that did not participate.
type Rule struct {
	Name    string
	Pattern *regexp.Regexp
	Replace string
	Fn      func(match string) string
	Groups  func(groups []string) string
}

// New compiles a Rule and panics on a bad pattern, like regexp.MustCompile.
func New(name, pattern, replace string) Rule {
	return Rule{Name: name, Pattern: regexp.MustCompile(pattern), Replace: replace}
}

// Func compiles a Rule whose replacement is computed from the match.
func Func(name, pattern string, fn func(match string) string) Rule {
	return Rule{Name: name, Pattern: regexp.MustCompile(pattern), Fn: fn}
}

// Groups compiles a Rule whose replacement is computed from the submatches.
func Groups(name, pattern string, fn func(groups []string) string) Rule {
	return Rule{Name: name, Pattern: regexp.MustCompile(pattern), Groups: fn}
}

// Apply runs every rule of table over text in order.
func Apply(text string, table []Rule) string {
	for _, r := range table {
		text = r.apply(text)
	}
	return text
}

func (r Rule) apply(text string) string {
	if r.Pattern == nil {
		return text
	}
	if r.Groups != nil {
		return replaceGroups(r.Pattern, text, r.Groups)
	}
	if r.Fn != nil {
		return r.Pattern.ReplaceAllStringFunc(text, r.Fn)
	}
	return r.Pattern.ReplaceAllString(text, r.Replace)
}

func replaceGroups(re *regexp.Regexp, text string, fn func([]string) string) string {
	locs := re.FindAllStringSubmatchIndex(text, -1)
	if len(locs) == 0 {
		return text
	}
	var b strings.Builder
	b.Grow(len(text))
	last := 0
	for _, loc := range locs {
		groups := make([]string, len(loc)/2)
		for i := range groups {
			if loc[2*i] >= 0 {
				groups[i] = text[loc[2*i]:loc[2*i+1]]
			}
		}
		b.WriteString(text[last:loc[0]])
		b.WriteString(fn(groups))
		last = loc[1]
	}
	b.WriteString(text[last:])
	return b.String()
}

// FirstMatch returns the name of the first rule whose pattern matches text.
func FirstMatch(text string, table []Rule) (string, bool) {
	for _, r := range table {
		if r.Pattern != nil && r.Pattern.MatchString(text) {
			return r.Name, true
		}
	}
	return "", false
}

// Literal is a plain substring replacement.
type Literal struct {
	From string
	To   string
}

// ApplyLiterals replaces every From with To, in table order.
func ApplyLiterals(text string, table []Literal) string {
	for _, l := range table {
		if l.From == "" {
			continue
		}
		text = strings.ReplaceAll(text, l.From, l.To)
	}
	return text
}

// Words builds whole-word rules from a literal table. Matching is case
// sensitive and bounded by \b on both sides.
func Words(name string, table []Literal) []Rule {
	out := make([]Rule, 0, len(table))
	for _, l := range table {
		out = append(out, New(name+":"+l.From, `\b`+regexp.QuoteMeta(l.From)+`\b`, l.To))
	}
	return out
}
