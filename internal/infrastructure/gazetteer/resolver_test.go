package gazetteer

import (
	"reflect"
	"testing"
)

func testResolver() *Resolver {
	return NewResolver(
		[]string{"zurich", "new york", "st. moritz", "st moritz", "paris"},
		[]string{"switzerland", "france", "united kingdom"},
		map[string]string{
			"zurich":     "switzerland",
			"st. moritz": "switzerland",
			"st moritz":  "switzerland",
			"paris":      "france",
			"kyoto":      "japan",
		},
	)
}

func TestNamespaceForNormalizes(t *testing.T) {
	r := testResolver()
	cases := map[string]string{
		"Zurich":         "zurich",
		"New York":       "new-york",
		"St. Moritz":     "st-moritz",
		"united_kingdom": "united-kingdom",
		"  General  ":    "general",
		"":               "general",
		"!!!":            "general",
	}
	for in, want := range cases {
		if got := r.NamespaceFor(in); got != want {
			t.Fatalf("NamespaceFor(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNamespaceForCapsLength(t *testing.T) {
	r := testResolver()
	long := "a-very-long-destination-name-that-keeps-going-and-going-and-going"
	got := r.NamespaceFor(long)
	if len(got) != 50 {
		t.Fatalf("expected 50-char namespace, got %d (%q)", len(got), got)
	}
}

func TestResolveCityIncludesCountryAndGeneral(t *testing.T) {
	r := testResolver()
	got := r.Resolve("Zurich")
	want := []string{"zurich", "switzerland", "general"}
	if !reflect.DeepEqual([]string(got), want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestResolveCountryDoesNotInventCities(t *testing.T) {
	r := testResolver()
	got := r.Resolve("Switzerland")
	want := []string{"switzerland", "general"}
	if !reflect.DeepEqual([]string(got), want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestResolveUnknownKeepsOwnNamespace(t *testing.T) {
	r := testResolver()
	got := r.Resolve("Atlantis Town")
	want := []string{"atlantis-town", "general"}
	if !reflect.DeepEqual([]string(got), want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestResolveEmptyIsGeneralOnly(t *testing.T) {
	r := testResolver()
	for _, in := range []string{"", "general", "General"} {
		got := r.Resolve(in)
		if len(got) != 1 || got[0] != "general" {
			t.Fatalf("Resolve(%q) = %v, want [general]", in, got)
		}
	}
}

func TestWriteNamespaceMostSpecific(t *testing.T) {
	r := testResolver()
	if got := r.WriteNamespace("Zurich"); got != "zurich" {
		t.Fatalf("expected city namespace, got %q", got)
	}
	if got := r.WriteNamespace("Switzerland"); got != "switzerland" {
		t.Fatalf("expected country namespace, got %q", got)
	}
	if got := r.WriteNamespace(""); got != "general" {
		t.Fatalf("expected general, got %q", got)
	}
}

func TestIsCityCoversResolutionTable(t *testing.T) {
	r := testResolver()
	if !r.IsCity("Zurich") {
		t.Fatal("zurich should be a city")
	}
	if !r.IsCity("Kyoto") {
		t.Fatal("kyoto resolves through the city table and counts as a city")
	}
	if r.IsCity("Switzerland") {
		t.Fatal("switzerland is not a city")
	}
}

func TestMatchOrderAndDedup(t *testing.T) {
	r := testResolver()
	got := r.Match("Zurich and Switzerland offer great hiking. Zurich again.")
	want := []string{"Zurich", "Switzerland"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestMatchTextOrderNotGazetteerOrder(t *testing.T) {
	r := testResolver()
	got := r.Match("Switzerland first, then Zurich")
	want := []string{"Switzerland", "Zurich"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestMatchRequiresWordBoundaries(t *testing.T) {
	r := testResolver()
	if got := r.Match("comparison"); len(got) != 0 {
		t.Fatalf("expected no hits inside words, got %v", got)
	}
}

func TestMatchLongestWins(t *testing.T) {
	r := NewResolver([]string{"york", "new york"}, nil, nil)
	got := r.Match("flights to New York")
	want := []string{"New York"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestMatchShorterNameStandingAloneLater(t *testing.T) {
	r := NewResolver([]string{"york", "new york"}, nil, nil)
	got := r.Match("New York is loud, but York itself is quiet")
	want := []string{"New York", "York"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestDisplayForms(t *testing.T) {
	cases := map[string]string{
		"zurich":     "Zurich",
		"new york":   "New York",
		"st. moritz": "St. Moritz",
		"uk":         "Uk",
	}
	for in, want := range cases {
		if got := Display(in); got != want {
			t.Fatalf("Display(%q) = %q, want %q", in, got, want)
		}
	}
}
