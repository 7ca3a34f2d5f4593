package classify

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/paradise-voice/travel-knowledge/internal/core/domain"
	"github.com/paradise-voice/travel-knowledge/internal/infrastructure/gazetteer"
)

const (
	contentTypeWindow  = 1000
	hotelGuardWindow   = 500
	destinationsWindow = 2000
)

// Classifier derives document type, destinations and title from the filename
// and the leading text. It is purely keyword driven: no I/O, no errors, and
// ambiguous input always falls back instead of failing.
type Classifier struct {
	gaz *gazetteer.Resolver
}

func NewClassifier(gaz *gazetteer.Resolver) *Classifier {
	return &Classifier{gaz: gaz}
}

func (c *Classifier) Classify(_ context.Context, filename, text string) (domain.Classification, error) {
	stem := fileStem(filename)
	spaced := strings.ToLower(despace(stem))

	docType := typeFromFilename(spaced)
	if docType == "" {
		docType = typeFromContent(strings.ToLower(leading(text, contentTypeWindow)))
	}
	if docType == "" {
		// Travel guide is the default verdict; most uploads are guides and
		// the broad chunk window suits unrecognized prose.
		docType = domain.TypeTravelGuide
	}

	destinations := c.mergeDestinations(
		c.gaz.Match(spaced),
		c.gaz.Match(leading(text, destinationsWindow)),
	)
	if len(destinations) == 0 {
		destinations = []string{"general"}
	}

	return domain.Classification{
		Type:         docType,
		Destinations: destinations,
		Primary:      c.primary(destinations),
		Title:        gazetteer.Display(spaced),
	}, nil
}

// ExtractDestinations scans free text (typically a spoken query) for known
// destinations, preserving encounter order.
func (c *Classifier) ExtractDestinations(text string) []string {
	return c.gaz.Match(text)
}

// mergeDestinations keeps filename hits first, then appends unseen content
// hits, deduplicating case-insensitively.
func (c *Classifier) mergeDestinations(fromFilename, fromContent []string) []string {
	seen := map[string]struct{}{}
	var out []string
	for _, list := range [][]string{fromFilename, fromContent} {
		for _, d := range list {
			key := strings.ToLower(d)
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, d)
		}
	}
	return out
}

// primary picks the chunk-tagging destination: the first city, else the
// first destination of any kind.
func (c *Classifier) primary(destinations []string) string {
	for _, d := range destinations {
		if c.gaz.IsCity(d) {
			return d
		}
	}
	if len(destinations) > 0 {
		return destinations[0]
	}
	return "general"
}

func typeFromFilename(name string) domain.DocumentType {
	switch {
	case containsAny(name, "restaurant", "dining", "food", "eat", "cuisine"):
		return domain.TypeRestaurantGuide
	case containsAny(name, "hotel", "accommodation", "lodging", "stay"):
		return domain.TypeHotelGuide
	case containsAny(name, "travel", "guide", "visit", "tour", "itinerary"):
		return domain.TypeTravelGuide
	}
	return ""
}

func typeFromContent(head string) domain.DocumentType {
	switch {
	case containsAny(head, "restaurant", "dining", "cuisine") &&
		!strings.Contains(leading(head, hotelGuardWindow), "hotel"):
		return domain.TypeRestaurantGuide
	case containsAny(head, "hotel", "accommodation", "resort"):
		return domain.TypeHotelGuide
	case containsAny(head, "travel guide", "visitor guide", "tourism", "itinerary"):
		return domain.TypeTravelGuide
	}
	return ""
}

func containsAny(s string, keywords ...string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}

func fileStem(filename string) string {
	base := filepath.Base(filename)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func despace(s string) string {
	s = strings.ReplaceAll(s, "-", " ")
	s = strings.ReplaceAll(s, "_", " ")
	return strings.Join(strings.Fields(s), " ")
}

// leading returns the first n runes of s.
func leading(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
