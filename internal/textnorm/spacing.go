package textnorm

import (
	"strings"

	"github.com/hyperifyio/sciencedigest/internal/rules"
)

// boilerplate strips page chrome that leaks into scraped paragraphs.
var boilerplate = []rules.Rule{
	rules.New("media-marker", `(?i)\[\s*(?:video|image|photo|audio|gallery|graphic)[^\]]{0,40}\]`, " "),
	rules.New("pagination", `(?i)\b(?:previous|next)\s+(?:article|page|story|slide|post)\b`, " "),
	rules.New("page-n-of-m", `(?i)\bpage\s+\d+\s+of\s+\d+\b`, " "),
	rules.New("share-prompt", `(?i)\b(?:share\s+(?:this|on)\s+(?:article|story|page|facebook|twitter|linkedin|email|reddit)|click\s+to\s+(?:share|enlarge|expand|print))\b`, " "),
	rules.New("credit-label", `(?i)\b(?:image|photo|video)\s+credits?\s*:\s*[A-Z][\w./&-]*(?:\s+(?:[A-Z][\w./&-]*|of|and|the))*`, " "),
	rules.New("caption-label", `(?i)\b(?:caption|photo|credit)\s*:\s*`, " "),
	rules.New("advertisement", `\b(?:ADVERTISEMENT|Advertisement)\b`, " "),
	rules.New("read-more", `(?i)\b(?:read\s+more|continue\s+reading|skip\s+to\s+content)\b\s*[:>]*`, " "),
}

// boundaries re-inserts spaces lost when adjacent DOM nodes were joined.
var boundaries = []rules.Rule{
	rules.New("digit-word", `(\d)([A-Za-z]{3,})`, "${1} ${2}"),
	rules.New("word-digit", `([a-z]{3,})(\d)`, "${1} ${2}"),
	rules.New("lower-upper", `([a-z]{2,})([A-Z][a-z])`, "${1} ${2}"),
	rules.New("sentence-capital", `([.!?])([A-Z][a-z])`, "${1} ${2}"),
	rules.New("comma-word", `,([A-Za-z])`, ", ${1}"),
}

// concatenations are specific glued word pairs seen in scraped feeds.
var concatenations = rules.Words("glue", []rules.Literal{
	{From: "ofthe", To: "of the"},
	{From: "inthe", To: "in the"},
	{From: "tothe", To: "to the"},
	{From: "andthe", To: "and the"},
	{From: "onthe", To: "on the"},
	{From: "forthe", To: "for the"},
	{From: "fromthe", To: "from the"},
	{From: "withthe", To: "with the"},
	{From: "isthe", To: "is the"},
	{From: "atthe", To: "at the"},
	{From: "bythe", To: "by the"},
	{From: "thatthe", To: "that the"},
	{From: "ofa", To: "of a"},
	{From: "ina", To: "in a"},
})

var collapse = []rules.Rule{
	rules.New("whitespace", `\s+`, " "),
	rules.New("space-before-punct", ` ([,.!?])`, "${1}"),
	rules.New("repeated-comma", `,{2,}`, ","),
	rules.New("repeated-bang", `([!?]){2,}`, "${1}"),
	rules.Func("period-runs", `\.{2,}`, periodRun),
}

// periodRun keeps a three-dot ellipsis, folds a doubled period to one and
// longer runs to an ellipsis.
func periodRun(m string) string {
	if len(m) == 2 {
		return "."
	}
	return "..."
}

// FixSpacingArtifacts repairs spacing lost during scraping. It must run
// before sentence segmentation, which depends on punctuation followed by
// whitespace.
func FixSpacingArtifacts(text string) string {
	if text == "" {
		return text
	}
	text = rules.Apply(text, boilerplate)
	text = rules.Apply(text, boundaries)
	text = rules.Apply(text, concatenations)
	text = rules.Apply(text, collapse)
	return strings.TrimSpace(text)
}
