package simplify

import "testing"

var sample = []Substitution{
	{From: "approximately", To: "about"},
	{From: "order", To: "sequence"},
	{From: "obtain", To: "get"},
	{From: "in order to", To: "to"},
	{From: "due to the fact that", To: "because"},
	{From: "", To: "ignored"},
}

func TestSimplify_Substitutes(t *testing.T) {
	s := New(sample)
	cases := []struct{ in, want string }{
		{"It weighs approximately 40 tons.", "It weighs about 40 tons."},
		{"Approximately 40 stars were seen.", "About 40 stars were seen."},
		{"They dug in order to obtain samples.", "They dug to get samples."},
		{"The order was odd.", "The sequence was odd."},
		{"It failed due to the  fact that ice melted.", "It failed because ice melted."},
		{"The data is obtainable online.", "The data is obtainable online."},
	}
	for _, tc := range cases {
		if got := s.Simplify(tc.in); got != tc.want {
			t.Errorf("Simplify(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestNew_PhrasesBeforeWords(t *testing.T) {
	s := New(sample)
	if s.Len() != 5 {
		t.Fatalf("expected empty entry dropped, got %d", s.Len())
	}
	if s.table[0].to != "to" || s.table[1].to != "because" {
		t.Fatalf("expected multi-word phrases first in declared order, got %q %q", s.table[0].to, s.table[1].to)
	}
	if s.table[2].to != "about" {
		t.Fatalf("expected single words to keep declared order, got %q", s.table[2].to)
	}
}

func TestSimplify_RepairsTextFirst(t *testing.T) {
	s := New(sample)
	got := s.Simplify("It\u2019s approximately   30percent.")
	if got != "It&#39;s about 30 percent." {
		t.Fatalf("unexpected: %q", got)
	}
}

func TestSimplify_NilSimplifierStillCleans(t *testing.T) {
	var s *Simplifier
	if got := s.Simplify("  a  b  "); got != "a b" {
		t.Fatalf("unexpected: %q", got)
	}
}

func TestSimplify_StableOnNeutralTokens(t *testing.T) {
	s := New(sample)
	in := "Researchers at a research institution found new research about the object."
	if got := s.Simplify(in); got != in {
		t.Fatalf("expected neutral tokens untouched, got %q", got)
	}
}
