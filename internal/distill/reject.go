package distill

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/hyperifyio/sciencedigest/internal/rules"
)

// Rejection reasons reported by Trace.
const (
	RejectShort      = "too short"
	RejectFragment   = "starts mid-sentence"
	RejectHeader     = "section header"
	RejectIncomplete = "incomplete"
)

var headerRe = regexp.MustCompile(`^[A-Z][a-z]+(?:\s+[A-Z][a-z]+){1,5}\s*$`)

// incomplete lists signatures of sentences the scrubbing rules cut short.
var incomplete = []rules.Rule{
	rules.New("describe-as-a", `(?i)\b(?:describe|describes|described)\s+as\s+(?:being\s+)?(?:in\s+)?a\s*[.!?]?$`, ""),
	rules.New("describe-as-that", `(?i)\bbecome\s+what\s+scientists\s+describe\s+as\s+That\b`, ""),
	rules.New("in-this-context", `(?i)\bIn\s+this\s+context,\s*$`, ""),
	rules.New("says-that", `(?i)\b(?:say|says)\s+that\s*[.!?]?$`, ""),
	rules.New("say-as", `(?i)\bResearchers\s+say\.\s+As\b`, ""),
	rules.New("first-person", `(?i)\b(?:we|I)\s+(?:picked|think|believe|wanted|hope|expect|were\s+surprised)\b`, ""),
	rules.New("published-on", `(?i)\bpublished\s+on\s*(?:\.|$)`, ""),
	rules.New("oral-session", `(?i)\bduring\s+an?\s+(?:oral|poster)\b`, ""),
	rules.New("header-then-the", `^[A-Z][a-z]+(?:\s+[a-z]+){2,12}\s+The\s+`, ""),
	// only unpunctuated tails; a lone capital A is a name, as in "vitamin A"
	rules.New("dangling-word", `\b(?:(?i:in|at|on|of|by|with|from|to|the|an)|a)\s*$`, ""),
	rules.New("dangling-comma", `,\s*$`, ""),
}

// reject returns why a scrubbed sentence cannot be used, or "" when it can.
func reject(s string, minLen int) string {
	if runeLen(s) < minLen {
		return RejectShort
	}
	r, _ := utf8.DecodeRuneInString(s)
	if unicode.IsLower(r) || strings.ContainsRune(`"'(&`+"\u201c\u2018", r) {
		return RejectFragment
	}
	if headerRe.MatchString(s) {
		return RejectHeader
	}
	if name, ok := rules.FirstMatch(s, incomplete); ok {
		return RejectIncomplete + ": " + name
	}
	return ""
}
