package extract

import (
    "bytes"
    "strings"
    "unicode/utf8"

    "github.com/PuerkitoBio/goquery"

    "github.com/hyperifyio/sciencedigest/internal/access"
)

// bodySelectors are tried in order; the first that yields enough text wins.
var bodySelectors = []string{
    "article p",
    ".article-body p",
    ".post-content p",
    ".entry-content p",
    ".story-body p",
    ".article-content p",
    "#text p",
    ".article__body p",
    "main p",
    ".content p",
}

// imageSelectors are consulted after the meta tags.
var imageSelectors = []string{
    "article img",
    ".article-image img",
    ".featured-image img",
    ".post-thumbnail img",
    ".entry-image img",
    "#leadimage img",
    ".lead-image img",
    "figure img",
    ".hero-image img",
    "main img",
}

// imageSkip marks icons and tracking pixels.
var imageSkip = []string{"icon", "logo", "avatar", "1x1", "pixel"}

const removedChrome = "script, style, nav, header, footer, aside, .ad, .advertisement"

// SelectorExtractor reads the body from the first matching paragraph
// selector. When Gate is set the page is checked for paywall markup
// first and a blocked page yields no text.
type SelectorExtractor struct {
    Gate          *access.Gate
    MaxParagraphs int // per selector (8)
    MinText       int // stop trying selectors past this many runes (300)
    MinParagraph  int // fallback keeps paragraphs longer than this (50)
    MaxText       int // result is truncated to this many runes (2500)
}

func (s SelectorExtractor) withDefaults() SelectorExtractor {
    if s.MaxParagraphs <= 0 {
        s.MaxParagraphs = 8
    }
    if s.MinText <= 0 {
        s.MinText = 300
    }
    if s.MinParagraph <= 0 {
        s.MinParagraph = 50
    }
    if s.MaxText <= 0 {
        s.MaxText = 2500
    }
    return s
}

func (s SelectorExtractor) Extract(pageURL string, input []byte) Document {
    s = s.withDefaults()
    doc, err := goquery.NewDocumentFromReader(bytes.NewReader(input))
    if err != nil {
        return Document{}
    }
    out := Document{Title: strings.TrimSpace(doc.Find("title").First().Text())}
    if s.Gate != nil {
        out.PaywallHits = s.Gate.SelectorHits(doc)
        if v := s.Gate.CheckDocument(doc); v.Blocked {
            out.Blocked = true
            return out
        }
    }
    out.ImageURL = resolve(pageURL, leadImage(doc))

    doc.Find(removedChrome).Remove()
    var text string
    for _, sel := range bodySelectors {
        paras := doc.Find(sel)
        if paras.Length() == 0 {
            continue
        }
        text = joinParagraphs(paras.Slice(0, min(paras.Length(), s.MaxParagraphs)), 0)
        if utf8.RuneCountInString(text) > s.MinText {
            break
        }
    }
    if utf8.RuneCountInString(text) < s.MinText {
        text = joinParagraphs(doc.Find("p"), s.MinParagraph, s.MaxParagraphs)
    }
    out.Text = truncateRunes(text, s.MaxText)
    return out
}

// joinParagraphs joins the trimmed text of paragraphs longer than minLen.
// An optional limit caps how many are kept.
func joinParagraphs(sel *goquery.Selection, minLen int, limit ...int) string {
    var parts []string
    sel.EachWithBreak(func(_ int, p *goquery.Selection) bool {
        t := strings.Join(strings.Fields(p.Text()), " ")
        if utf8.RuneCountInString(t) > minLen {
            parts = append(parts, t)
        }
        return len(limit) == 0 || len(parts) < limit[0]
    })
    return strings.Join(parts, " ")
}

// leadImage looks at og:image (absolute only), twitter:image and
// itemprop=image, then the image selectors.
func leadImage(doc *goquery.Document) string {
    if og := metaAttr(doc, `meta[property="og:image"]`); strings.HasPrefix(og, "http") {
        return og
    }
    if tw := metaAttr(doc, `meta[name="twitter:image"]`); tw != "" {
        return tw
    }
    if sc := metaAttr(doc, `meta[itemprop="image"]`); sc != "" {
        return sc
    }
    for _, sel := range imageSelectors {
        img := doc.Find(sel).First()
        if img.Length() == 0 {
            continue
        }
        src := firstAttr(img, "src", "data-src", "data-lazy-src")
        if len(src) > 10 && !skipImage(src) {
            return src
        }
    }
    return ""
}

func metaAttr(doc *goquery.Document, sel string) string {
    v, _ := doc.Find(sel).First().Attr("content")
    return strings.TrimSpace(v)
}

func firstAttr(s *goquery.Selection, names ...string) string {
    for _, n := range names {
        if v, ok := s.Attr(n); ok && strings.TrimSpace(v) != "" {
            return strings.TrimSpace(v)
        }
    }
    return ""
}

func skipImage(src string) bool {
    src = strings.ToLower(src)
    for _, s := range imageSkip {
        if strings.Contains(src, s) {
            return true
        }
    }
    return false
}
