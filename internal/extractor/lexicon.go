package extractor

import (
	"context"
	"sort"
	"strings"

	"dialogue-orchestrator/internal/store"
)

// Lexicon is the vocabulary the extractor recognizes by name.
type Lexicon struct {
	Restaurants []string
	Cuisines    []string
	Categories  []string
}

var defaultCuisines = []string{
	"indian", "north indian", "south indian", "hyderabadi", "chinese", "italian", "mexican",
	"thai", "japanese", "continental", "american", "mughlai", "healthy", "cafe",
}

var defaultCategories = []string{
	"biryani", "pizza", "burger", "dessert", "beverage", "salad", "starter", "main course",
	"noodles", "pasta", "sandwich", "soup", "rice", "bread", "curry",
}

func DefaultLexicon() Lexicon {
	return Lexicon{
		Cuisines:   append([]string(nil), defaultCuisines...),
		Categories: append([]string(nil), defaultCategories...),
	}
}

// LexiconFromCatalog extends the default vocabulary with every restaurant,
// cuisine and category the catalog lists.
func LexiconFromCatalog(ctx context.Context, catalog store.Catalog) (Lexicon, error) {
	lex := DefaultLexicon()

	restaurants, err := catalog.ListRestaurants(ctx, store.RestaurantFilter{})
	if err != nil {
		return lex, err
	}
	for _, r := range restaurants {
		lex.Restaurants = append(lex.Restaurants, r.Name)
		lex.Cuisines = append(lex.Cuisines, r.Cuisine)
	}

	items, err := catalog.ListMenuItems(ctx, store.MenuFilter{})
	if err != nil {
		return lex, err
	}
	for _, item := range items {
		lex.Categories = append(lex.Categories, item.Category)
	}
	return lex.normalized(), nil
}

// normalized lowercases, dedupes and orders each list longest first so
// that "north indian" is tried before "indian".
func (l Lexicon) normalized() Lexicon {
	return Lexicon{
		Restaurants: normalizeTerms(l.Restaurants),
		Cuisines:    normalizeTerms(l.Cuisines),
		Categories:  normalizeTerms(l.Categories),
	}
}

func normalizeTerms(terms []string) []string {
	seen := make(map[string]bool, len(terms))
	out := make([]string, 0, len(terms))
	for _, t := range terms {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return len(out[i]) > len(out[j])
	})
	return out
}
