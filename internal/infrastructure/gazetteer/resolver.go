package gazetteer

import (
	"regexp"
	"sort"
	"strings"

	"github.com/paradise-voice/travel-knowledge/internal/core/domain"
)

const maxNamespaceLen = 50

// Resolver knows the destination gazetteer and the city->country table and
// maps destinations onto the namespace hierarchy. It is immutable after
// construction and safe for concurrent use.
type Resolver struct {
	cities      map[string]struct{}
	countries   map[string]struct{}
	cityCountry map[string]string
	entries     []entry
}

type entry struct {
	name    string
	city    bool
	pattern *regexp.Regexp
}

// NewResolver builds a resolver from lowercase gazetteer tables. Cities are
// matched before countries when hits tie on length and position.
func NewResolver(cities, countries []string, cityCountry map[string]string) *Resolver {
	r := &Resolver{
		cities:      make(map[string]struct{}, len(cities)),
		countries:   make(map[string]struct{}, len(countries)),
		cityCountry: make(map[string]string, len(cityCountry)),
	}
	for _, c := range cities {
		c = strings.ToLower(strings.TrimSpace(c))
		if c == "" {
			continue
		}
		r.cities[c] = struct{}{}
		r.entries = append(r.entries, entry{name: c, city: true, pattern: wordPattern(c)})
	}
	for _, c := range countries {
		c = strings.ToLower(strings.TrimSpace(c))
		if c == "" {
			continue
		}
		r.countries[c] = struct{}{}
		r.entries = append(r.entries, entry{name: c, pattern: wordPattern(c)})
	}
	for city, country := range cityCountry {
		r.cityCountry[strings.ToLower(strings.TrimSpace(city))] = strings.ToLower(strings.TrimSpace(country))
	}
	// Longest first so overlapping hits resolve to the longer name.
	sort.SliceStable(r.entries, func(i, j int) bool {
		return len(r.entries[i].name) > len(r.entries[j].name)
	})
	return r
}

func wordPattern(name string) *regexp.Regexp {
	return regexp.MustCompile(`\b` + regexp.QuoteMeta(name) + `\b`)
}

// NamespaceFor normalizes a destination into a backend-safe namespace:
// lowercase, spaces and underscores become hyphens, everything outside
// [a-z0-9-] is stripped, capped at 50 chars. Empty input maps to "general".
func (r *Resolver) NamespaceFor(destination string) string {
	ns := strings.ToLower(strings.TrimSpace(destination))
	ns = strings.ReplaceAll(ns, " ", "-")
	ns = strings.ReplaceAll(ns, "_", "-")
	var b strings.Builder
	for _, c := range ns {
		if (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') || c == '-' {
			b.WriteRune(c)
		}
	}
	ns = b.String()
	if len(ns) > maxNamespaceLen {
		ns = ns[:maxNamespaceLen]
	}
	if ns == "" {
		return "general"
	}
	return ns
}

// Resolve builds the read cascade for a destination: the destination's own
// namespace, the country namespace when the destination is a known city, and
// always "general" last. Unknown destinations keep their own namespace; a
// bare country never expands into cities.
func (r *Resolver) Resolve(destination string) domain.NamespacePath {
	path := domain.NamespacePath{}
	seen := map[string]struct{}{}
	add := func(ns string) {
		if _, ok := seen[ns]; ok {
			return
		}
		seen[ns] = struct{}{}
		path = append(path, ns)
	}

	add(r.NamespaceFor(destination))
	if country, ok := r.cityCountry[strings.ToLower(strings.TrimSpace(destination))]; ok {
		add(r.NamespaceFor(country))
	}
	add("general")
	return path
}

// WriteNamespace is the single most specific namespace for a destination,
// used as the ingest target.
func (r *Resolver) WriteNamespace(destination string) string {
	return r.NamespaceFor(destination)
}

// IsCity reports whether a destination is city-level: either listed as a
// gazetteer city or resolvable through the city->country table.
func (r *Resolver) IsCity(destination string) bool {
	key := strings.ToLower(strings.TrimSpace(destination))
	if _, ok := r.cities[key]; ok {
		return true
	}
	_, ok := r.cityCountry[key]
	return ok
}

// Match scans text for gazetteer destinations. Hits come back in first
// occurrence order, deduplicated case-insensitively, overlaps resolved
// longest-match-wins, in display form ("new york" -> "New York").
func (r *Resolver) Match(text string) []string {
	lower := strings.ToLower(text)

	type hit struct {
		start, end int
		name       string
	}
	var accepted []hit
	for _, e := range r.entries {
		// Take the first occurrence that does not overlap a longer hit;
		// a name swallowed by one mention may stand alone elsewhere.
		for _, loc := range e.pattern.FindAllStringIndex(lower, -1) {
			overlaps := false
			for _, a := range accepted {
				if loc[0] < a.end && a.start < loc[1] {
					overlaps = true
					break
				}
			}
			if !overlaps {
				accepted = append(accepted, hit{start: loc[0], end: loc[1], name: e.name})
				break
			}
		}
	}
	sort.SliceStable(accepted, func(i, j int) bool { return accepted[i].start < accepted[j].start })

	out := make([]string, 0, len(accepted))
	for _, h := range accepted {
		out = append(out, Display(h.name))
	}
	return out
}

// Display renders a lowercase gazetteer name for user-facing output:
// multi-word names are title-cased, single words capitalized.
func Display(name string) string {
	if !strings.Contains(name, " ") {
		return capitalize(name)
	}
	var b strings.Builder
	upperNext := true
	for _, c := range name {
		if upperNext && c >= 'a' && c <= 'z' {
			b.WriteRune(c - 32)
			upperNext = false
			continue
		}
		if c < 'a' || c > 'z' {
			upperNext = true
		} else {
			upperNext = false
		}
		b.WriteRune(c)
	}
	return b.String()
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	if s[0] >= 'a' && s[0] <= 'z' {
		return string(s[0]-32) + s[1:]
	}
	return s
}
