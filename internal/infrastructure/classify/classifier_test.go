package classify

import (
	"context"
	"reflect"
	"testing"

	"github.com/paradise-voice/travel-knowledge/internal/core/domain"
	"github.com/paradise-voice/travel-knowledge/internal/infrastructure/gazetteer"
)

func testClassifier() *Classifier {
	gaz := gazetteer.NewResolver(
		[]string{"zurich", "geneva", "new york", "tokyo", "paris"},
		[]string{"switzerland", "france", "japan"},
		map[string]string{"zurich": "switzerland", "geneva": "switzerland", "paris": "france", "tokyo": "japan"},
	)
	return NewClassifier(gaz)
}

func TestClassifyTravelGuideFromFilename(t *testing.T) {
	c := testClassifier()
	cls, err := c.Classify(context.Background(), "zurich-travel-guide.pdf", "Zurich and Switzerland offer great hiking")
	if err != nil {
		t.Fatalf("classify: %v", err)
	}
	if cls.Type != domain.TypeTravelGuide {
		t.Fatalf("expected travel_guide, got %s", cls.Type)
	}
	want := []string{"Zurich", "Switzerland"}
	if !reflect.DeepEqual(cls.Destinations, want) {
		t.Fatalf("expected destinations %v, got %v", want, cls.Destinations)
	}
	if cls.Primary != "Zurich" {
		t.Fatalf("expected primary Zurich, got %q", cls.Primary)
	}
	if cls.Title != "Zurich Travel Guide" {
		t.Fatalf("expected title Zurich Travel Guide, got %q", cls.Title)
	}
}

func TestClassifyRestaurantBeatsHotelInFilename(t *testing.T) {
	c := testClassifier()
	cls, _ := c.Classify(context.Background(), "geneva_dining.txt", "")
	if cls.Type != domain.TypeRestaurantGuide {
		t.Fatalf("expected restaurant_guide, got %s", cls.Type)
	}
	if cls.Primary != "Geneva" {
		t.Fatalf("expected primary Geneva, got %q", cls.Primary)
	}
}

func TestClassifyHotelFromFilename(t *testing.T) {
	c := testClassifier()
	cls, _ := c.Classify(context.Background(), "tokyo-hotels.md", "Places to sleep in Tokyo")
	if cls.Type != domain.TypeHotelGuide {
		t.Fatalf("expected hotel_guide, got %s", cls.Type)
	}
}

func TestClassifyContentFallbackWithHotelGuard(t *testing.T) {
	c := testClassifier()

	cls, _ := c.Classify(context.Background(), "notes.txt", "The best dining spots and cuisine in Paris.")
	if cls.Type != domain.TypeRestaurantGuide {
		t.Fatalf("expected restaurant_guide from content, got %s", cls.Type)
	}

	// A hotel mention early in the text vetoes the restaurant verdict.
	cls, _ = c.Classify(context.Background(), "notes.txt", "Our hotel offers fine dining and local cuisine.")
	if cls.Type != domain.TypeHotelGuide {
		t.Fatalf("expected hotel_guide when hotel appears first, got %s", cls.Type)
	}
}

func TestClassifyAmbiguousDefaultsToTravelGuide(t *testing.T) {
	c := testClassifier()
	cls, err := c.Classify(context.Background(), "misc-notes.txt", "Nothing recognizable here.")
	if err != nil {
		t.Fatalf("ambiguity must not error: %v", err)
	}
	if cls.Type != domain.TypeTravelGuide {
		t.Fatalf("expected travel_guide default, got %s", cls.Type)
	}
	if !reflect.DeepEqual(cls.Destinations, []string{"general"}) {
		t.Fatalf("expected [general], got %v", cls.Destinations)
	}
	if cls.Primary != "general" {
		t.Fatalf("expected primary general, got %q", cls.Primary)
	}
}

func TestClassifyMergesFilenameAndContentDestinations(t *testing.T) {
	c := testClassifier()
	cls, _ := c.Classify(context.Background(), "paris-guide.pdf", "Paris is lovely, but Tokyo and Japan call too.")
	want := []string{"Paris", "Tokyo", "Japan"}
	if !reflect.DeepEqual(cls.Destinations, want) {
		t.Fatalf("expected %v, got %v", want, cls.Destinations)
	}
}

func TestClassifyPrimaryPrefersCityOverCountry(t *testing.T) {
	c := testClassifier()
	cls, _ := c.Classify(context.Background(), "alpine.txt", "Switzerland is home, Geneva its jewel. A travel guide.")
	if !reflect.DeepEqual(cls.Destinations, []string{"Switzerland", "Geneva"}) {
		t.Fatalf("unexpected destinations %v", cls.Destinations)
	}
	if cls.Primary != "Geneva" {
		t.Fatalf("expected city-level primary, got %q", cls.Primary)
	}
}

func TestClassifyCountryOnlyDocument(t *testing.T) {
	c := testClassifier()
	cls, _ := c.Classify(context.Background(), "japan-guide.pdf", "Japan by rail.")
	if !reflect.DeepEqual(cls.Destinations, []string{"Japan"}) {
		t.Fatalf("unexpected destinations %v", cls.Destinations)
	}
	if cls.Primary != "Japan" {
		t.Fatalf("expected country primary, got %q", cls.Primary)
	}
}

func TestClassifyMultiWordCityInFilename(t *testing.T) {
	c := testClassifier()
	cls, _ := c.Classify(context.Background(), "new-york-travel.pdf", "")
	if !reflect.DeepEqual(cls.Destinations, []string{"New York"}) {
		t.Fatalf("expected [New York], got %v", cls.Destinations)
	}
}

func TestExtractDestinationsFromQuery(t *testing.T) {
	c := testClassifier()
	got := c.ExtractDestinations("What should I see in Zurich or maybe Geneva?")
	want := []string{"Zurich", "Geneva"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}
