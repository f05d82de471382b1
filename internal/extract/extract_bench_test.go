package extract

import (
    "strings"
    "testing"
)

// BenchmarkExtractors compares the strategies on pages of growing size.
func BenchmarkExtractors(b *testing.B) {
	small := []byte("<html><head><title>t</title></head><body><main><p>a</p></main></body></html>")
	medium := makeHTML(50, 60)
	large := makeHTML(200, 200)

	pages := []struct {
		name string
		html []byte
	}{{"small", small}, {"medium", medium}, {"large", large}}
	strategies := []struct {
		name string
		ex   Extractor
	}{
		{"heuristic", HeuristicExtractor{}},
		{"selector", SelectorExtractor{}},
		{"readability", ReadabilityExtractor{}},
	}
	for _, s := range strategies {
		for _, p := range pages {
			b.Run(s.name+"/"+p.name, func(b *testing.B) {
				for i := 0; i < b.N; i++ {
					_ = s.ex.Extract("https://example.org/page", p.html)
				}
			})
		}
	}
}

func makeHTML(paras int, itemsPerList int) []byte {
    builder := new(strings.Builder)
	builder.WriteString("<html><head><title>demo</title></head><body><main>")
	for i := 0; i < paras; i++ {
		builder.WriteString("<h2>Comet update</h2><p>")
		builder.WriteString(sampleText)
		builder.WriteString("</p>")
	}
	builder.WriteString("<ul>")
	for i := 0; i < itemsPerList; i++ {
		builder.WriteString("<li>")
		builder.WriteString(sampleText)
		builder.WriteString("</li>")
	}
	builder.WriteString("</ul></main></body></html>")
	return []byte(builder.String())
}

const sampleText = "Astronomers tracked the comet for three weeks as it brightened near the Sun and shed a long tail of dust."