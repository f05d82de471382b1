// Package textnorm repairs scraped text before any pattern matching runs on
// it: mis-decoded UTF-8 ("mojibake"), typographic punctuation, and the
// spacing damage left behind by HTML-to-text conversion.
package textnorm

import (
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/unicode/norm"

	"github.com/hyperifyio/sciencedigest/internal/rules"
)

const (
	apos  = "&#39;"
	quote = "&quot;"
)

// mojibakeTargets lists the characters whose UTF-8 bytes commonly arrive
// decoded as a single-byte Western encoding, with the ASCII or entity form
// each one is repaired to.
var mojibakeTargets = []rules.Literal{
	{From: "\u2019", To: apos},
	{From: "\u2018", To: apos},
	{From: "\u201C", To: quote},
	{From: "\u201D", To: quote},
	{From: "\u2013", To: "-"},
	{From: "\u2014", To: "-"},
	{From: "\u2026", To: "..."},
	{From: "\u00A0", To: " "},
}

// mojibakeTable is mojibakeTargets re-encoded through Latin-1 and
// Windows-1252, the two decodings scrapers most often get wrong.
var mojibakeTable = buildMojibakeTable(mojibakeTargets, charmap.ISO8859_1, charmap.Windows1252)

func buildMojibakeTable(targets []rules.Literal, encs ...encoding.Encoding) []rules.Literal {
	seen := map[string]struct{}{}
	out := make([]rules.Literal, 0, len(targets)*len(encs))
	for _, t := range targets {
		for _, enc := range encs {
			garbled, err := enc.NewDecoder().String(t.From)
			if err != nil || garbled == t.From {
				continue
			}
			if containsRuneError(garbled) {
				continue
			}
			if _, ok := seen[garbled]; ok {
				continue
			}
			seen[garbled] = struct{}{}
			out = append(out, rules.Literal{From: garbled, To: t.To})
		}
	}
	return out
}

func containsRuneError(s string) bool {
	for _, r := range s {
		if r == utf8.RuneError {
			return true
		}
	}
	return false
}

// residualSweeps catch corrupted sequences the table did not know about:
// a stray UTF-8 lead byte rendered as "â" followed by a continuation-looking
// rune, and a euro sign standing in for an apostrophe.
var residualSweeps = []rules.Rule{
	rules.New("lead-byte-euro", `\x{00E2}[\x{0080}\x{20AC}].?`, apos),
	rules.New("lead-byte-cont", `\x{00E2}[\x{0080}-\x{00BF}\x{2013}-\x{203A}\x{2122}\x{0152}\x{0153}\x{0160}\x{0161}\x{0178}\x{017D}\x{017E}\x{0192}\x{02C6}\x{02DC}]`, apos),
	// spacing includes NBSP, which the punctuation map later turns into a space
	rules.New("euro-apostrophe", `\x{20AC}[\s\x{00A0}]*([A-Za-z])`, apos+"${1}"),
	rules.New("quote-euro", `'\x{20AC}[\s\x{00A0}]*`, apos),
}

var smartPunctuation = []rules.Literal{
	{From: "\u2018", To: apos},  // left single quote
	{From: "\u2019", To: apos},  // right single quote
	{From: "\u201C", To: quote}, // left double quote
	{From: "\u201D", To: quote}, // right double quote
	{From: "\u2032", To: apos},  // prime
	{From: "\u2033", To: quote}, // double prime
	{From: "\u0060", To: apos},  // grave accent
	{From: "\u00B4", To: apos},  // acute accent
	{From: "\u2013", To: "-"},
	{From: "\u2014", To: "-"},
	{From: "\u2015", To: "-"},
	{From: "\u2012", To: "-"},
	{From: "\u00A0", To: " "},
	{From: "\u00E2", To: apos}, // stray lead byte left after the sweeps
	{From: "\u2026", To: "..."},
	{From: "\u00AB", To: quote},
	{From: "\u00BB", To: quote},
	{From: "\u201A", To: apos},
	{From: "\u201E", To: quote},
}

var finalSweeps = []rules.Rule{
	rules.New("single-quotes", `[\x{2018}\x{2019}\x{201A}\x{201B}]`, apos),
	rules.New("double-quotes", `[\x{201C}\x{201D}\x{201E}\x{201F}]`, quote),
}

// Normalize repairs character-level corruption. It never fails, is a no-op
// on empty input, and Normalize(Normalize(s)) == Normalize(s).
func Normalize(text string) string {
	if text == "" {
		return text
	}
	text = norm.NFC.String(text)
	text = rules.ApplyLiterals(text, mojibakeTable)
	text = rules.Apply(text, residualSweeps)
	text = rules.ApplyLiterals(text, smartPunctuation)
	return rules.Apply(text, finalSweeps)
}
