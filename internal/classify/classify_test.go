package classify

import "testing"

func fixture() *Classifier {
	return New([]Topic{
		{Name: "Astronomy", Keywords: []string{"space", "planet", "star", "nasa", "exoplanet", "telescope", "black hole"}},
		{Name: "Biology", Keywords: []string{"animal", "species", "cell", "dna", "forest", "insect"}},
		{Name: "Wildlife", Keywords: []string{"wildlife", "species", "beetle", "rainforest", "Species", " "}},
		{Name: "Climate", Keywords: []string{"climate", "ice", "warming", "glacier"}},
	})
}

func TestClassify_Astronomy(t *testing.T) {
	res := fixture().Classify("NASA discovers new exoplanet", "Astronomers used a telescope.")
	if res.Topic != "Astronomy" {
		t.Fatalf("expected Astronomy, got %q (%+v)", res.Topic, res.Scores)
	}
	if !res.Classified() {
		t.Fatalf("expected classified")
	}
}

func TestClassify_OverlappingTopicsPickOne(t *testing.T) {
	res := fixture().Classify("New species of beetle found in rainforest", "")
	if res.Topic != "Wildlife" {
		t.Fatalf("expected Wildlife with more distinct hits, got %q (%+v)", res.Topic, res.Scores)
	}
}

func TestClassify_TieGoesToDeclaredOrder(t *testing.T) {
	// Biology: species, forest. Wildlife: species, rainforest.
	res := fixture().Classify("Species thrive in the rainforest", "")
	if res.Topic != "Biology" {
		t.Fatalf("expected Biology to win the tie, got %q (%+v)", res.Topic, res.Scores)
	}
}

func TestClassify_DistinctKeywordsOnly(t *testing.T) {
	res := fixture().Classify("Ice ice ice", "more ice")
	for _, s := range res.Scores {
		if s.Topic == "Climate" && s.Hits != 1 {
			t.Fatalf("expected one distinct hit, got %d", s.Hits)
		}
	}
}

func TestClassify_EmptyIsNone(t *testing.T) {
	res := fixture().Classify("", "")
	if res.Topic != None || res.Classified() {
		t.Fatalf("expected none, got %q", res.Topic)
	}
	if len(res.Scores) != 4 {
		t.Fatalf("expected a score per topic, got %d", len(res.Scores))
	}
	for _, s := range res.Scores {
		if s.Hits != 0 {
			t.Fatalf("expected zero hits, got %+v", s)
		}
	}
}

func TestNew_DropsDuplicateAndBlankKeywords(t *testing.T) {
	c := fixture()
	if got := len(c.topics[2].Keywords); got != 4 {
		t.Fatalf("expected 4 wildlife keywords, got %d: %v", got, c.topics[2].Keywords)
	}
	if names := c.Topics(); len(names) != 4 || names[0] != "Astronomy" || names[3] != "Climate" {
		t.Fatalf("unexpected topic order %v", names)
	}
}

func BenchmarkClassify(b *testing.B) {
	c := fixture()
	for i := 0; i < b.N; i++ {
		_ = c.Classify("Webb telescope spots water on a distant exoplanet", "The space observatory measured the planet's atmosphere.")
	}
}
