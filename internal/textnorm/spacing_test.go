package textnorm

import "testing"

func TestFixSpacingArtifacts(t *testing.T) {
	cases := []struct {
		name, in, want string
	}{
		{"empty", "", ""},
		{"digit-word", "about 30percent of ice", "about 30 percent of ice"},
		{"glued-pair", "most ofthe ice melted", "most of the ice melted"},
		{"lower-upper", "global warmingScientists said", "global warming Scientists said"},
		{"sentence-capital", "It ended.Next day it rained.", "It ended. Next day it rained."},
		{"comma-word", "red,green and blue", "red, green and blue"},
		{"space-before-punct", "a , b .", "a, b."},
		{"double-period", "Wait.. what", "Wait. what"},
		{"long-period-run", "Hmm..... ok", "Hmm... ok"},
		{"repeated-bang", "Really!!! yes", "Really! yes"},
		{"boilerplate", "Ice melts. [Video: glacier calving] Read more: Seas rise.", "Ice melts. Seas rise."},
		{"pagination", "Page 2 of 5 The ice sheet thinned.", "The ice sheet thinned."},
		{"advertisement", "ADVERTISEMENT The ice sheet thinned.", "The ice sheet thinned."},
		{"brand-casing", "the iPhone and McDonald stayed", "the iPhone and McDonald stayed"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := FixSpacingArtifacts(tc.in); got != tc.want {
				t.Fatalf("FixSpacingArtifacts(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestFixSpacingArtifacts_Idempotent(t *testing.T) {
	for _, in := range []string{
		"about 30percent ofthe ice.Scientists said,quietly.. ok",
		"Hmm..... ok!!",
	} {
		once := FixSpacingArtifacts(in)
		if twice := FixSpacingArtifacts(once); twice != once {
			t.Fatalf("not idempotent: %q then %q", once, twice)
		}
	}
}
