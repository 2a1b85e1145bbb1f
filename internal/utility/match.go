package utility

import (
	"strings"

	"dialogue-orchestrator/internal/extractor"
	"dialogue-orchestrator/internal/models"
)

// MatchItem returns the first item, in listing order, whose name contains
// mention or is contained in it. Both sides are compared lowercased and
// singularized, so "biryanis" finds "Chicken Biryani".
func MatchItem(items []models.MenuItem, mention string) (models.MenuItem, bool) {
	names := make([]string, len(items))
	for i, item := range items {
		names[i] = item.Name
	}
	if i := MatchName(names, mention); i >= 0 {
		return items[i], true
	}
	return models.MenuItem{}, false
}

// MatchName is MatchItem over bare names. It returns -1 when nothing matches.
func MatchName(names []string, mention string) int {
	m := matchForm(mention)
	if m == "" {
		return -1
	}
	for i, name := range names {
		n := matchForm(name)
		if n == "" {
			continue
		}
		if strings.Contains(n, m) || strings.Contains(m, n) {
			return i
		}
	}
	return -1
}

func matchForm(s string) string {
	return extractor.Singularize(strings.ToLower(strings.TrimSpace(s)))
}
