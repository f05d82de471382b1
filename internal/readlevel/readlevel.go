// Package readlevel measures how hard a passage is for a general reader.
package readlevel

import (
    "fmt"
    "math"
    "regexp"
    "strings"
    "unicode"
)

// Report holds the raw counts and the derived scores for one passage.
type Report struct {
    Words        int
    Sentences    int
    Syllables    int
    Grade        float64 // Flesch-Kincaid grade level
    JargonPer100 float64 // acronyms and lexicon hits per 100 words
}

// Assess counts words, sentences and syllables and derives the grade and
// jargon density. Empty text yields a zero Report.
func Assess(text string) Report {
    words := CountWords(text)
    if words == 0 {
        return Report{}
    }
    r := Report{Words: words, Sentences: countSentences(text)}
    for _, w := range strings.Fields(text) {
        r.Syllables += countSyllables(w)
    }
    r.Grade = fleschKincaid(r.Words, r.Sentences, r.Syllables)
    r.JargonPer100 = jargonDensity(text, words)
    return r
}

// Limits are the thresholds Check enforces. Zero disables a limit.
type Limits struct {
    MaxGrade  float64
    MaxJargon float64
}

// DefaultLimits target a seventh-grade reader.
var DefaultLimits = Limits{MaxGrade: 9, MaxJargon: 4}

// Check reports every limit the passage exceeds.
func Check(text string, lim Limits) (Report, error) {
    r := Assess(text)
    var issues []string
    if lim.MaxGrade > 0 && r.Grade > lim.MaxGrade {
        issues = append(issues, fmt.Sprintf("grade %.1f above %.1f", r.Grade, lim.MaxGrade))
    }
    // Heuristic threshold: >4 jargon/acronym hits per 100 words is high
    if lim.MaxJargon > 0 && r.JargonPer100 > lim.MaxJargon {
        issues = append(issues, fmt.Sprintf("high jargon density (%.1f per 100 words)", r.JargonPer100))
    }
    if len(issues) == 0 {
        return r, nil
    }
    return r, fmt.Errorf("reading level issues: %s", strings.Join(issues, "; "))
}

func fleschKincaid(words, sentences, syllables int) float64 {
    if words == 0 {
        return 0
    }
    if sentences == 0 {
        sentences = 1
    }
    g := 0.39*float64(words)/float64(sentences) + 11.8*float64(syllables)/float64(words) - 15.59
    return math.Round(g*10) / 10
}

var sentenceEndRe = regexp.MustCompile(`[.!?]+(?:\s|$)`)

func countSentences(s string) int {
    n := len(sentenceEndRe.FindAllStringIndex(strings.TrimSpace(s), -1))
    if n == 0 {
        return 1
    }
    return n
}

// countSyllables estimates syllables as vowel groups, dropping a silent
// trailing "e". Every word with a letter counts at least one.
func countSyllables(word string) int {
    w := strings.ToLower(strings.TrimFunc(word, func(r rune) bool { return !unicode.IsLetter(r) }))
    if w == "" {
        return 0
    }
    n := 0
    prevVowel := false
    for _, r := range w {
        v := strings.ContainsRune("aeiouy", r)
        if v && !prevVowel {
            n++
        }
        prevVowel = v
    }
    if strings.HasSuffix(w, "e") && !strings.HasSuffix(w, "le") && n > 1 {
        n--
    }
    if n == 0 {
        n = 1
    }
    return n
}

var acronymRe = regexp.MustCompile(`\b[A-Z]{2,6}\b`)

// Minimal list of research jargon tokens. Lowercase compare.
var jargonLexicon = []string{
    "spectroscopy", "spectrometer", "phylogenetic", "genomic", "genome-wide", "isotope", "isotopic", "biomarker", "metabolite", "in vitro", "in vivo", "peer-reviewed", "statistically significant", "meta-analysis", "cohort", "longitudinal", "redshift", "photometry", "interferometry", "magnetohydrodynamic", "exoplanetary", "protoplanetary", "paleoclimate", "anthropogenic", "radiative forcing", "albedo", "biogeochemical", "morphology", "taxonomic", "phenotype", "genotype", "allele", "transcriptome", "proteome", "catalysis", "stoichiometry", "quantum", "spatiotemporal",
}

func jargonDensity(text string, words int) float64 {
    if words == 0 {
        return 0
    }
    hits := 0
    for _, m := range acronymRe.FindAllString(text, -1) {
        // whitelist short forms a general reader already knows
        switch m {
        case "NASA", "DNA", "US", "UK", "TV", "AI", "CO":
            continue
        }
        hits++
    }
    low := strings.ToLower(text)
    for _, j := range jargonLexicon {
        if strings.Contains(low, j) {
            hits++
        }
    }
    return (float64(hits) / float64(words)) * 100.0
}

// CountWords counts whitespace-separated tokens.
func CountWords(s string) int {
    n := 0
    in := false
    for i := 0; i < len(s); i++ {
        b := s[i]
        if b == ' ' || b == '\n' || b == '\t' || b == '\r' {
            if in {
                n++
                in = false
            }
        } else {
            in = true
        }
    }
    if in {
        n++
    }
    return n
}
