// Package extract pulls the article body, title and lead image out of a
// fetched page. Several strategies are available and can be chained.
package extract

import (
    "bytes"
    "strings"

    "golang.org/x/net/html"
)

// Document is the readable part of one page.
type Document struct {
    Title    string
    Text     string
    ImageURL string
    // PaywallHits counts elements matching the paywall selectors.
    PaywallHits int
    // Blocked is set when the page was judged to be behind a paywall; Text
    // is then empty.
    Blocked bool
}

// FromHTML walks the parsed tree and keeps the text of <main>, else
// <article>, else <body>. Headings, paragraphs and list items become their
// own lines; navigation, footers and consent banners are skipped. The
// og:image meta tag, when absolute, becomes ImageURL.
func FromHTML(input []byte) Document {
    root, err := html.Parse(bytes.NewReader(input))
    if err != nil || root == nil {
        return Document{}
    }
    doc := Document{}
    if head := findFirst(root, "head"); head != nil {
        doc.Title = strings.TrimSpace(textOf(findFirst(head, "title")))
        doc.ImageURL = metaContent(head, "property", "og:image")
    }
    content := findFirst(root, "main")
    if content == nil {
        content = findFirst(root, "article")
    }
    if content == nil {
        content = findFirst(root, "body")
    }
    if content != nil {
        var b strings.Builder
        collectText(&b, content)
        doc.Text = tidyLines(b.String())
    }
    return doc
}

func textOf(n *html.Node) string {
    if n == nil || n.FirstChild == nil {
        return ""
    }
    return n.FirstChild.Data
}

// metaContent returns the content of the first <meta key=value> in n.
func metaContent(n *html.Node, key, value string) string {
    var out string
    walk(n, func(cur *html.Node) bool {
        if cur.Type != html.ElementNode || cur.Data != "meta" || attr(cur, key) != value {
            return true
        }
        out = strings.TrimSpace(attr(cur, "content"))
        return false
    })
    return out
}

func attr(n *html.Node, key string) string {
    for _, a := range n.Attr {
        if strings.EqualFold(a.Key, key) {
            return a.Val
        }
    }
    return ""
}

// walk visits nodes depth first until fn returns false.
func walk(n *html.Node, fn func(*html.Node) bool) bool {
    if !fn(n) {
        return false
    }
    for c := n.FirstChild; c != nil; c = c.NextSibling {
        if !walk(c, fn) {
            return false
        }
    }
    return true
}

func findFirst(n *html.Node, tag string) *html.Node {
    var res *html.Node
    walk(n, func(cur *html.Node) bool {
        if cur.Type == html.ElementNode && strings.EqualFold(cur.Data, tag) {
            res = cur
            return false
        }
        return true
    })
    return res
}

var skippedTags = map[string]bool{
    "script": true, "style": true, "noscript": true, "nav": true, "header": true,
    "footer": true, "aside": true, "iframe": true, "form": true, "figcaption": true,
}

var blockTags = map[string]bool{
    "p": true, "h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
    "li": true, "ul": true, "ol": true, "blockquote": true, "div": true, "br": true,
}

func collectText(b *strings.Builder, n *html.Node) {
    if n.Type == html.ElementNode {
        name := strings.ToLower(n.Data)
        if skippedTags[name] || isBoilerplateContainer(n) {
            return
        }
        if blockTags[name] {
            b.WriteString("\n")
        }
    }
    if n.Type == html.TextNode {
        b.WriteString(n.Data)
    }
    for c := n.FirstChild; c != nil; c = c.NextSibling {
        collectText(b, c)
    }
    if n.Type == html.ElementNode && blockTags[strings.ToLower(n.Data)] {
        b.WriteString("\n")
    }
}

var boilerplateMarkers = []string{"cookie", "consent", "gdpr", "newsletter", "related-", "share-", "social", "advert"}

// isBoilerplateContainer reports whether the element's id, class or role
// marks it as a banner, share bar or ad slot.
func isBoilerplateContainer(n *html.Node) bool {
    for _, a := range n.Attr {
        key := strings.ToLower(a.Key)
        if key != "id" && key != "class" && key != "role" && key != "aria-label" && !strings.HasPrefix(key, "data-") {
            continue
        }
        val := strings.ToLower(a.Val)
        for _, m := range boilerplateMarkers {
            if strings.Contains(val, m) {
                return true
            }
        }
    }
    return false
}

// tidyLines collapses whitespace inside lines and drops empty ones.
func tidyLines(s string) string {
    lines := strings.Split(s, "\n")
    out := lines[:0]
    for _, line := range lines {
        if f := strings.Fields(line); len(f) > 0 {
            out = append(out, strings.Join(f, " "))
        }
    }
    return strings.Join(out, "\n")
}
