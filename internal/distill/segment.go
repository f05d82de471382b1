package distill

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// segment splits text after '.', '!' or '?' when whitespace and then an
// upper-case letter follow. Fragments of minLen runes or fewer are dropped.
func segment(text string, minLen int) []string {
	var out []string
	keep := func(s string) {
		s = strings.TrimSpace(s)
		if runeLen(s) > minLen {
			out = append(out, s)
		}
	}
	start := 0
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '.', '!', '?':
		default:
			continue
		}
		j := i + 1
		for j < len(text) {
			r, size := utf8.DecodeRuneInString(text[j:])
			if !unicode.IsSpace(r) {
				break
			}
			j += size
		}
		if j == i+1 || j >= len(text) {
			continue
		}
		if r, _ := utf8.DecodeRuneInString(text[j:]); !unicode.IsUpper(r) {
			continue
		}
		keep(text[start : i+1])
		start = j
		i = j - 1
	}
	keep(text[start:])
	return out
}

var titleWordRe = regexp.MustCompile(`\b\w{4,}\b`)

// titleWords is the set of case-folded words of four or more letters.
func titleWords(s string) map[string]struct{} {
	set := map[string]struct{}{}
	for _, w := range titleWordRe.FindAllString(strings.ToLower(s), -1) {
		set[w] = struct{}{}
	}
	return set
}

// restatesTitle reports whether the shared long words make up more than
// threshold of the smaller set. Empty sets never match.
func restatesTitle(sentence, title map[string]struct{}, threshold float64) bool {
	if len(sentence) == 0 || len(title) == 0 {
		return false
	}
	shared := overlap(sentence, title)
	return float64(shared)/float64(min(len(sentence), len(title))) > threshold
}

func overlap(a, b map[string]struct{}) int {
	if len(b) < len(a) {
		a, b = b, a
	}
	n := 0
	for w := range a {
		if _, ok := b[w]; ok {
			n++
		}
	}
	return n
}

// wordSet splits on whitespace after case folding.
func wordSet(s string) map[string]struct{} {
	fields := strings.Fields(strings.ToLower(s))
	set := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		set[f] = struct{}{}
	}
	return set
}

func runeLen(s string) int { return utf8.RuneCountInString(s) }
