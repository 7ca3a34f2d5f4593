package classify

import (
	"regexp"
	"strings"

	"github.com/paradise-voice/travel-knowledge/internal/core/domain"
)

const maxHeadingLen = 64

// sectionPatterns is evaluated in order; the first section with a matching
// keyword wins. Keywords match on word boundaries and tolerate a plural s.
var sectionPatterns = []struct {
	section domain.Section
	pattern *regexp.Regexp
}{
	{domain.SectionRestaurants, keywordPattern("restaurant", "dining", "cuisine", "food", "eat", "menu", "cafe", "bar")},
	{domain.SectionHotels, keywordPattern("hotel", "accommodation", "lodging", "stay", "check-in", "resort")},
	{domain.SectionTransport, keywordPattern("transport", "airport", "train", "bus", "metro", "subway", "taxi", "getting around")},
	{domain.SectionAttractions, keywordPattern("attraction", "sight", "monument", "museum", "landmark", "must-see", "visit")},
	{domain.SectionCulture, keywordPattern("culture", "tradition", "custom", "festival", "history", "heritage")},
	{domain.SectionTips, keywordPattern("tip", "advice", "recommendation", "should know", "important", "note")},
}

func keywordPattern(keywords ...string) *regexp.Regexp {
	quoted := make([]string, len(keywords))
	for i, kw := range keywords {
		quoted[i] = regexp.QuoteMeta(kw) + "s?"
	}
	return regexp.MustCompile(`\b(?:` + strings.Join(quoted, "|") + `)\b`)
}

var headingPrefix = regexp.MustCompile(`^[#*\d.)\s-]+`)

// HeadingSection decides whether a line is a section heading. Headings are
// short, carry no sentence punctuation beyond a trailing colon, and contain
// a section keyword.
func HeadingSection(line string) (domain.Section, bool) {
	trimmed := strings.TrimSpace(line)
	trimmed = headingPrefix.ReplaceAllString(trimmed, "")
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), ":")
	if trimmed == "" || len([]rune(trimmed)) > maxHeadingLen {
		return "", false
	}
	if strings.ContainsAny(trimmed, ".,;!?") {
		return "", false
	}
	if len(strings.Fields(trimmed)) > 6 {
		return "", false
	}
	return matchSection(strings.ToLower(trimmed))
}

// QuerySection infers a section filter from query wording, e.g. "where
// should I eat" implies restaurants. Reported as a hint only; no match
// means retrieval runs unfiltered.
func QuerySection(text string) (domain.Section, bool) {
	return matchSection(strings.ToLower(text))
}

func matchSection(lower string) (domain.Section, bool) {
	for _, sp := range sectionPatterns {
		if sp.pattern.MatchString(lower) {
			return sp.section, true
		}
	}
	return "", false
}
