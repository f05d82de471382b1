package selecter

import (
	"fmt"
	"testing"

	"github.com/hyperifyio/sciencedigest/internal/digest"
)

func rec(topic, url string) digest.ArticleRecord {
	return digest.ArticleRecord{Title: url, Topic: topic, URL: url}
}

func TestSelect_PerTopicCap(t *testing.T) {
	var in []digest.ArticleRecord
	for i := 0; i < 6; i++ {
		in = append(in, rec("Astronomy", fmt.Sprintf("https://a.com/%d", i)))
		in = append(in, rec("Biology", fmt.Sprintf("https://b.com/%d", i)))
	}
	out := Select(in, Options{})
	counts := map[string]int{}
	for _, r := range out {
		counts[r.Topic]++
	}
	if counts["Astronomy"] != 4 || counts["Biology"] != 4 {
		t.Fatalf("expected 4 per topic, got %v", counts)
	}
	if out[0].URL != "https://a.com/0" || out[3].URL != "https://a.com/3" {
		t.Fatalf("expected input order kept within a topic: %v %v", out[0].URL, out[3].URL)
	}
}

func TestSelect_TopicOrder(t *testing.T) {
	in := []digest.ArticleRecord{
		rec("Wildlife", "https://w.org/1"),
		rec("Climate", "https://c.org/1"),
		rec("Astronomy", "https://a.org/1"),
		rec("Geology", "https://g.org/1"),
	}
	out := Select(in, Options{TopicOrder: []string{"Astronomy", "Climate", "Wildlife"}})
	var got []string
	for _, r := range out {
		got = append(got, r.Topic)
	}
	want := []string{"Astronomy", "Climate", "Wildlife", "Geology"}
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Fatalf("got %v want %v", got, want)
	}
}

func TestSelect_PreferImagesIsStable(t *testing.T) {
	in := []digest.ArticleRecord{
		rec("Astronomy", "https://a.org/1"),
		rec("Astronomy", "https://a.org/2"),
		rec("Astronomy", "https://a.org/3"),
	}
	in[2].ImageURL = "https://a.org/3.jpg"
	out := Select(in, Options{PerTopic: 2, PreferImages: true})
	if len(out) != 2 || out[0].URL != "https://a.org/3" || out[1].URL != "https://a.org/1" {
		t.Fatalf("unexpected selection %+v", out)
	}
	out = Select(in, Options{PerTopic: 2})
	if out[0].URL != "https://a.org/1" || out[1].URL != "https://a.org/2" {
		t.Fatalf("expected input order without preference, got %+v", out)
	}
}

func TestSelect_SkipsDuplicateURLsAndDomainCap(t *testing.T) {
	in := []digest.ArticleRecord{
		rec("Climate", "https://x.org/a?utm_source=feed"),
		rec("Climate", "https://X.org/a"),
		rec("Climate", "https://x.org/b"),
		rec("Climate", "https://y.org/a"),
		rec("", "https://z.org/untopiced"),
	}
	out := Select(in, Options{PerDomain: 1})
	if len(out) != 2 || out[0].URL != "https://x.org/a?utm_source=feed" || out[1].URL != "https://y.org/a" {
		t.Fatalf("unexpected selection %+v", out)
	}
}

func TestSelect_MaxTotal(t *testing.T) {
	in := []digest.ArticleRecord{
		rec("Astronomy", "https://a.org/1"),
		rec("Biology", "https://b.org/1"),
		rec("Climate", "https://c.org/1"),
	}
	if out := Select(in, Options{MaxTotal: 2}); len(out) != 2 {
		t.Fatalf("expected 2, got %d", len(out))
	}
}
