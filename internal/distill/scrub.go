package distill

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/hyperifyio/sciencedigest/internal/rules"
)

// Neutral tokens the scrubbing rules substitute for removed entities.
const (
	tokResearchers = "researchers"
	tokScientists  = "scientists"
	tokInstitution = "a research institution"
	tokJournal     = "a scientific journal"
	tokNewResearch = "new research"
	tokObject      = "the object"
	tokCluster     = "the cluster"
)

const months = `(?:January|February|March|April|May|June|July|August|September|October|November|December)`

// capWords matches a run of capitalized words such as a journal title,
// allowing joining "of", "and" and "&amp;".
const capWords = `[A-Z][A-Za-z]+(?:\s+(?:of\s+|and\s+|&amp;\s+|the\s+)?[A-Z][A-Za-z]+)*`

// notNames are capitalized words that start ordinary sentences. Rules that
// take a capitalized word for a person's name leave these alone.
var notNames = map[string]struct{}{
	"The": {}, "This": {}, "That": {}, "These": {}, "Those": {}, "It": {}, "Its": {},
	"A": {}, "An": {}, "Our": {}, "Their": {}, "His": {}, "Her": {}, "We": {},
	"They": {}, "He": {}, "She": {}, "Which": {}, "There": {}, "Here": {},
	"Data": {}, "Study": {}, "Research": {}, "Results": {}, "Findings": {},
	"Researchers": {}, "Scientists": {}, "Many": {}, "Some": {}, "Most": {},
	"Other": {}, "Several": {}, "Both": {}, "All": {}, "Each": {}, "Another": {},
	"New": {}, "Two": {}, "Three": {}, "Four": {}, "Local": {}, "International": {},
	"Previous": {}, "Earlier": {}, "Such": {}, "When": {}, "While": {}, "But": {},
	"And": {}, "Now": {}, "Then": {}, "Also": {}, "However": {}, "Experiments": {},
	"Models": {}, "Observations": {}, "Simulations": {}, "Analysis": {}, "Work": {},
}

func isName(word string) bool {
	_, common := notNames[word]
	return !common
}

// quotes removes direct speech. Normalization has already turned curly
// quotes into &quot; entities.
var quotes = []rules.Rule{
	rules.New("quote-straight", `"[^"]*"`, ""),
	rules.New("quote-entity", `&quot;.*?&quot;`, ""),
	rules.New("quote-curly", `\x{201C}[^\x{201D}]*\x{201D}`, ""),
	rules.New("quote-unclosed", `(?:"|&quot;|\x{201C})[^"\x{201D}]*$`, ""),
}

// people replaces named individuals with "researchers". It runs after
// organizations so "X University found" is not read as a person.
var people = []rules.Rule{
	rules.New("honorific", `\b(?:Dr\.|Prof\.|Professor)\s+[A-Z][a-z]+(?:\s+[A-Z][a-z]+)?`, tokResearchers),
	rules.Groups("name-colleagues", `\b([A-Z][a-z]+)\s+(?:and\s+)?(?:colleagues|co-authors|team)\b`, func(g []string) string {
		if !isName(g[1]) {
			return g[0]
		}
		return tokResearchers
	}),
	rules.Groups("name-says", `\b([A-Z][a-z]+)\s+(?:explains?|notes?|says?|adds?)\b`, func(g []string) string {
		if !isName(g[1]) {
			return g[0]
		}
		return "Researchers say"
	}),
	rules.Groups("name-verb", `\b([A-Z][a-z]{2,15})\s+(shared|presented|described|reported|argued|proposed|suggested|published|found|showed)\b`, func(g []string) string {
		if !isName(g[1]) {
			return g[0]
		}
		return "Researchers " + g[2]
	}),
	rules.Groups("name-and-their", `\b([A-Z][a-z]{2,15})\s+and\s+(?:his|her|their)\s+`, func(g []string) string {
		if !isName(g[1]) {
			return g[0]
		}
		return "Researchers and their "
	}),
	rules.Groups("name-before-role", `\b([A-Z][a-z]{2,10})\s+(researchers|scientists|team)\b`, func(g []string) string {
		if !isName(g[1]) {
			return g[0]
		}
		return g[2]
	}),
	rules.New("author-clause", `,?\s*[A-Z][a-z]+\s+[A-Z][a-z]+,?\s*(?:a |the )?(?:lead |co-)?author[^,.]*[,.]?`, ""),
	rules.New("author-name", `\b(?:lead |co-)?author\s+[A-Z][a-z]+\s+[A-Z][a-z]+`, tokResearchers),
}

// organizations replaces institutions and agencies.
var organizations = []rules.Rule{
	rules.New("institution-named", `\b(?:[A-Z][a-z]+\s+){1,3}(?:University|Institute|College)(?:\s+(?:of|for)\s+`+capWords+`)?\b`, tokInstitution),
	rules.New("institution-of", `\b(?:University|Institute|College|Center|Centre)\s+(?:of|for)\s+`+capWords, tokInstitution),
	rules.New("institution-state", `\b[A-Z][a-z]+\s+State\b`, tokInstitution),
	rules.New("eth-zurich", `\bETH\s+Zurich\b`, tokInstitution),
	rules.New("institution-listed", `\b(?:Swiss Federal Institute|National Research Council|Max Planck Society)[^,.]*`, tokInstitution),
	rules.New("vrije-universiteit", `\bVrije Universiteit\s+\w+`, tokInstitution),
	rules.New("agency-role", `\b(?:NASA|NOAA|NSF|NIH|ESA|JAXA|CNES|USGS)\s+(researchers|scientists|team|engineers)\b`, "${1}"),
	rules.New("agency", `\b(?:NASA|NOAA|NSF|NIH|ESA|JAXA|CNES|USGS)\b`, tokScientists),
	rules.New("eth-researchers", `\bETH\s+researchers\b`, tokResearchers),
	rules.New("led-team", `\bthe\s+researchers-led\s+team\b`, "the research team"),
	rules.New("paren-abbrev", `\s*\([A-Z]{2,6}\)`, ""),
}

// venues removes conferences, places and journals.
var venues = []rules.Rule{
	rules.New("city-state", `\s+in\s+[A-Z][a-z]+(?:\s+[A-Z][a-z]+)?,\s+[A-Z][a-z]+(?:\s+[A-Z][a-z]+)?\s*([.!?]?)\s*$`, "${1}"),
	rules.New("agu-meeting", `\bAGU(?:'s|&#39;s)?\s+\d{4}\s+Annual\s+Meeting[^,.]*`, ""),
	rules.New("meeting", `\b(?:at|during)\s+(?:the\s+)?(?:[A-Z]{2,6}(?:'s|&#39;s)?\s+)?(?:\d{4}\s+)?(?:Annual\s+|Fall\s+|Spring\s+)?(?:Meeting|Conference|Symposium|Congress)\b[^,.]*`, ""),
	rules.New("at-acronym-meeting", `\bat\s+AGU\d*\b`, ""),
	rules.New("published-in-journal", `\b(?:published|appears?|reported)\s+(?:in|on)\s+(?:the\s+)?(?:AGU\s+)?journal\s+`+capWords, "published"),
	rules.New("in-the-journal", `\bin\s+the\s+(?:AGU\s+)?journal\s+`+capWords, ""),
	rules.New("agu-journal", `\bthe\s+AGU\s+journal\s+`+capWords, ""),
	rules.New("named-journal", `\b(?:Geophysical Research Letters|Astrophysical Journal(?: Letters)?|Monthly Notices of the Royal Astronomical Society|Proceedings of the National Academy of Sciences|Journal of Geophysical Research|Current Biology|Nature (?:Communications|Geoscience|Astronomy|Climate Change|Ecology (?:and|&amp;) Evolution)|Science Advances|Scientific Reports|PLOS ONE|PLoS ONE|eLife)\b`, tokJournal),
	rules.New("short-journal", `\b(in|by|to)\s+(?:the\s+journal\s+)?(?:Science|Nature|PNAS|Cell)\b`, "${1} "+tokJournal),
	rules.New("proceedings", `\bin\s+the\s+Proceedings\s+of\s+[^,.]+`, ""),
	rules.New("cf-paren", `\(cf\.[^)]+\)`, ""),
	rules.New("cf", `\bcf\.\s*[A-Z][a-zA-Z\s]+`, ""),
}

// dates removes calendar references. The more specific forms run first.
var dates = []rules.Rule{
	rules.New("published-on-date", `\bpublished\s+(?:on\s+)?`+months+`\s+\d{1,2}(?:,?\s+\d{4})?\b`, "published"),
	rules.New("date-at-meeting", `\b`+months+`\s+\d{1,2}\s+at\s+[A-Z]{2,6}\d*\b`, ""),
	rules.New("on-date", `\bon\s+`+months+`\s+\d{1,2}(?:,?\s+\d{4})?\b`, ""),
	rules.New("month-day-year", `\b`+months+`\s+\d{1,2},?\s+\d{4}\b`, ""),
	rules.New("day-month-year", `\b\d{1,2}\s+`+months+`\s+\d{4}\b`, ""),
	rules.New("month-year", `\b(?:in\s+)?`+months+`\s+\d{4}\b`, ""),
	rules.New("year-study", `\b\d{4}\s+(?:study|research|paper|report)\b`, tokNewResearch),
	rules.New("in-year", `\bIn\s+\d{4},\s*`, ""),
	rules.New("month-day", `\b`+months+`\s+\d{1,2}\b`, ""),
}

// catalogs replaces survey and catalog designations.
var catalogs = []rules.Rule{
	rules.New("rm-cluster", `\bRM\s+J[\d.+]+`, tokCluster),
	rules.New("survey-id", `\b[A-Z]{1,3}\s+J?\d{4,}[\d.+\-]+`, tokObject),
	rules.New("catalog-id", `\b(?:NGC|IC|HD|HIP|TOI|GJ|WASP|HAT-P|K2)[- ]?\d+[A-Za-z]?\b`, tokObject),
	rules.New("named-catalog-id", `\b(?:Kepler|TRAPPIST|Gliese|LHS)-\d+[a-z]?\b`, tokObject),
}

// headers drops section titles glued to the start of a sentence.
var headers = []rules.Rule{
	rules.New("header-before-subject", `\b[A-Z][a-z]+(?:\s+[A-Z][a-z]+){1,4}\s+([A-Z][a-z]+\s+(?:study|research|team|scientists|researchers|found|shows?)\b)`, "${1}"),
	rules.New("header-before-sentence", `^[A-Z][a-z]+(?:\s+[a-z]+){0,6}\s+((?:The|This|These|Researchers|Scientists)\s)`, "${1}"),
}

// attributions removes trailing "said X" and "according to Y" clauses.
var attributions = []rules.Rule{
	rules.New("trailing-said", `(?i),\s*(?:said|says|noted|added|explained)\s+[\w\s.,]+$`, ""),
	rules.New("trailing-according", `(?i),\s*(?:according to|led by)\s+[\w\s.,]+$`, ""),
	rules.New("said-name", `\s+said\s+[A-Z][a-z]+(?:\s+[A-Z][a-z]+)?\s*[.!?]?$`, ""),
}

// artifacts repairs the debris the rules above leave behind.
var artifacts = []rules.Rule{
	rules.New("spaces", `\s+`, " "),
	rules.New("colon-the", `:the\b`, ": the"),
	rules.New("trailing-colon", `\s*:\s*$`, "."),
	rules.New("space-before-punct", `\s+([.,;:!?])`, "${1}"),
	rules.New("period-runs", `\.{2,}`, "."),
	rules.New("double-comma", `,\s*,`, ","),
	rules.New("leading-punct", `^\s*[,;:]\s*`, ""),
	rules.New("comma-period", `,\s*\.`, "."),
	rules.New("doubled-researchers", `\b([Rr])esearchers researchers\b`, "${1}esearchers"),
	rules.New("doubled-scientists", `\b([Ss])cientists scientists\b`, "${1}cientists"),
	rules.New("article-new-research", `\b[Aa] new research\b`, "new research"),
	rules.New("doubled-the", `\b([Tt])he the\b`, "${1}he"),
	rules.New("doubled-a", `\b([Aa]) a\b`, "${1}"),
	rules.New("in-the-institution", `\b(?:in|at) the a research institution\b`, "at a research institution"),
	rules.New("swiss-institution", `\bthe Swiss a research institution\b`, "a Swiss research institution"),
	rules.New("The-a-token", `\bThe a (research institution|scientific journal)\b`, "A ${1}"),
	rules.New("the-a-token", `\bthe a (research institution|scientific journal)\b`, "a ${1}"),
	rules.New("led-by-institutions", `\bled by researchers,\s*a research institution[^,.]*,?\s*(?:and\s+)?a research institution[^,.]*`, "led by researchers at various institutions"),
	rules.New("led-by-institution", `\bled by researchers,\s*a research institution[^,.]*`, "led by researchers"),
	rules.New("institution-list", `\ba research institution(?:(?:,\s*(?:and\s+)?|\s+and\s+)a research institution)+`, "several research institutions"),
	rules.New("their-colleagues", `\b([Rr])esearchers and their colleagues\b`, "${1}esearchers"),
	rules.New("comma-and-comma", `,\s*and\s*,`, " and"),
	rules.New("at-comma", `\bat\s*,`, "in"),
	rules.New("possessive-plural", `\b(scientists|researchers)(&#39;|')s\b`, "${1}${2}"),
	rules.New("empty-parens", `\(\s*\)`, ""),
	rules.New("spaces-again", `\s+`, " "),
	rules.New("space-before-punct-again", `\s+([.,;:!?])`, "${1}"),
	rules.Func("capitalize-token", `^(?:researchers|scientists|a research institution|a scientific journal|new research|the object|the cluster)\b`, capitalize),
}

// scrubTables lists every table in application order.
var scrubTables = [][]rules.Rule{quotes, organizations, people, venues, dates, catalogs, headers, attributions, artifacts}

// Scrub removes quotations, names, organizations, venues, dates, catalog
// identifiers and attributions from one sentence.
func Scrub(sentence string) string {
	for _, t := range scrubTables {
		sentence = rules.Apply(sentence, t)
	}
	return strings.TrimSpace(sentence)
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError || !unicode.IsLower(r) {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

// finish guarantees terminal punctuation and an upper-case first letter.
func finish(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return s
	}
	if !strings.ContainsAny(s[len(s)-1:], ".!?") {
		s += "."
	}
	return capitalize(s)
}
