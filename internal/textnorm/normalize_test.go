package textnorm

import (
	"strings"
	"testing"
)

func TestNormalize_EmptyIsNoop(t *testing.T) {
	if got := Normalize(""); got != "" {
		t.Fatalf("expected empty, got %q", got)
	}
}

func TestNormalize_RepairsLatin1Mojibake(t *testing.T) {
	in := "The planet\u00e2\u0080\u0099s orbit \u00e2\u0080\u009cwobbles\u00e2\u0080\u009d \u00e2\u0080\u0094 a lot\u00e2\u0080\u00a6"
	got := Normalize(in)
	want := "The planet&#39;s orbit &quot;wobbles&quot; - a lot..."
	if got != want {
		t.Fatalf("got %q\nwant %q", got, want)
	}
}

func TestNormalize_RepairsWindows1252Mojibake(t *testing.T) {
	// U+2019 and U+2013 as UTF-8 bytes read through Windows-1252.
	in := "Earth\u00e2\u20ac\u2122s crust \u00e2\u20ac\u201c thin"
	got := Normalize(in)
	if got != "Earth&#39;s crust - thin" {
		t.Fatalf("unexpected: %q", got)
	}
}

func TestNormalize_ResidualLeadByte(t *testing.T) {
	got := Normalize("it\u00e2\u0080s here")
	if strings.ContainsRune(got, '\u00e2') {
		t.Fatalf("expected lead byte removed, got %q", got)
	}
	if !strings.Contains(got, "&#39;") {
		t.Fatalf("expected apostrophe entity, got %q", got)
	}
}

func TestNormalize_EuroStandsForApostrophe(t *testing.T) {
	if got := Normalize("don\u20act stop"); got != "don&#39;t stop" {
		t.Fatalf("unexpected: %q", got)
	}
	if got := Normalize("cost \u20ac\u00a0apples"); got != "cost &#39;apples" {
		t.Fatalf("no-break space after the euro sign: %q", got)
	}
	if got := Normalize("cost 5\u20ac"); got != "cost 5\u20ac" {
		t.Fatalf("expected currency sign left alone, got %q", got)
	}
}

func TestNormalize_SmartPunctuation(t *testing.T) {
	cases := map[string]string{
		"\u201cHi\u201d":          "&quot;Hi&quot;",
		"it\u2019s":                "it&#39;s",
		"a\u2013b":                 "a-b",
		"a\u2014b\u2015c\u2012d":     "a-b-c-d",
		"wait\u2026":               "wait...",
		"\u00abbonjour\u00bb":     "&quot;bonjour&quot;",
		"6\u2032 2\u2033":         "6&#39; 2&quot;",
		"x\u00a0y":                 "x y",
		"\u201alow\u201e":         "&#39;low&quot;",
		"reversed \u201bquote":     "reversed &#39;quote",
		"low \u201fdouble":         "low &quot;double",
		"grave `and\u00b4 acute":   "grave &#39;and&#39; acute",
		"stray \u00e2 byte":       "stray &#39; byte",
	}
	for in, want := range cases {
		if got := Normalize(in); got != want {
			t.Errorf("Normalize(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNormalize_ComposesDecomposedAccents(t *testing.T) {
	if got := Normalize("cafe\u0301"); got != "caf\u00e9" {
		t.Fatalf("expected NFC composition, got %q", got)
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{
		"",
		"plain ascii text.",
		"The planet\u00e2\u0080\u0099s orbit",
		"Earth\u00e2\u20ac\u2122s \u00e2\u20ac\u0153core\u00e2\u20ac\u009d",
		"a\u20ac\u20acb\u20acc",
		"\u201cQuoted\u201d \u2018single\u2019 \u2014 dash\u2026",
		"\u00e2\u00e2\u0080\u0099\u00e2",
		"\u00c2\u00a0spaced\u00a0out",
		"cost \u20ac\u00a0apples",
		"it'\u20ac\u00a0s",
		"ch\u00e2teau",
	}
	for _, in := range inputs {
		once := Normalize(in)
		twice := Normalize(once)
		if once != twice {
			t.Errorf("not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}

func TestMojibakeTable_CoversBothDecodings(t *testing.T) {
	var latin1, cp1252 bool
	for _, l := range mojibakeTable {
		if l.From == "\u00e2\u0080\u0099" {
			latin1 = true
		}
		if l.From == "\u00e2\u20ac\u2122" {
			cp1252 = true
		}
	}
	if !latin1 || !cp1252 {
		t.Fatalf("expected both decodings of U+2019 in table (latin1=%v cp1252=%v)", latin1, cp1252)
	}
}

func BenchmarkNormalize(b *testing.B) {
	in := strings.Repeat("The planet\u00e2\u0080\u0099s \u201corbit\u201d \u2014 wobbles\u2026 ", 50)
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = Normalize(in)
	}
}
