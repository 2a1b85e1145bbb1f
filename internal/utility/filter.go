// Package utility holds the stateless catalog transformations behind the
// comparison, filtering, sorting and nutrition intents.
package utility

import (
	"sort"
	"strings"

	"dialogue-orchestrator/internal/models"
)

type SortKey string

const (
	SortByPrice    SortKey = "price"
	SortByRating   SortKey = "rating"
	SortByCalories SortKey = "calories"
	SortBySpice    SortKey = "spice"
	SortByName     SortKey = "name"
)

func (k SortKey) Valid() bool {
	switch k {
	case SortByPrice, SortByRating, SortByCalories, SortBySpice, SortByName:
		return true
	}
	return false
}

// Criteria are hard filters; a zero field does not filter.
type Criteria struct {
	RestaurantID     string
	Category         string
	MaxPrice         *float64
	MinRating        float64
	Vegetarian       *bool
	MaxSpice         *int
	MaxCalories      *int
	ExcludeAllergens []string
	ExcludeTerms     []string
	AvailableOnly    bool
}

// Filter keeps the items that satisfy every criterion, in input order.
func Filter(items []models.MenuItem, c Criteria) []models.MenuItem {
	out := make([]models.MenuItem, 0, len(items))
	for _, item := range items {
		if Matches(item, c) {
			out = append(out, item)
		}
	}
	return out
}

func Matches(item models.MenuItem, c Criteria) bool {
	if c.RestaurantID != "" && item.RestaurantID != c.RestaurantID {
		return false
	}
	if c.Category != "" && !containsFold(item.Category, c.Category) {
		return false
	}
	if c.MaxPrice != nil && item.Price > *c.MaxPrice {
		return false
	}
	if item.Rating < c.MinRating {
		return false
	}
	if c.Vegetarian != nil && item.IsVegetarian != *c.Vegetarian {
		return false
	}
	if c.MaxSpice != nil && item.SpiceLevel != nil && *item.SpiceLevel > *c.MaxSpice {
		return false
	}
	if c.MaxCalories != nil && (item.Calories == nil || *item.Calories > *c.MaxCalories) {
		return false
	}
	if c.AvailableOnly && !item.Available {
		return false
	}
	for _, a := range c.ExcludeAllergens {
		if item.ContainsAllergen(a) {
			return false
		}
	}
	for _, term := range c.ExcludeTerms {
		term = strings.TrimSpace(term)
		if term == "" {
			continue
		}
		if containsFold(item.Name, term) || containsFold(item.Category, term) {
			return false
		}
	}
	return true
}

// Sort returns a stably sorted copy. Items without calories or spice data
// sort last for those keys regardless of direction. An unknown key returns
// the items in their original order.
func Sort(items []models.MenuItem, key SortKey, descending bool) []models.MenuItem {
	out := append([]models.MenuItem(nil), items...)
	var less func(a, b models.MenuItem) (bool, bool)
	switch key {
	case SortByPrice:
		less = func(a, b models.MenuItem) (bool, bool) { return a.Price < b.Price, a.Price == b.Price }
	case SortByRating:
		less = func(a, b models.MenuItem) (bool, bool) { return a.Rating < b.Rating, a.Rating == b.Rating }
	case SortByName:
		less = func(a, b models.MenuItem) (bool, bool) {
			an, bn := strings.ToLower(a.Name), strings.ToLower(b.Name)
			return an < bn, an == bn
		}
	case SortByCalories:
		return sortOptional(out, func(m models.MenuItem) *int { return m.Calories }, descending)
	case SortBySpice:
		return sortOptional(out, func(m models.MenuItem) *int { return m.SpiceLevel }, descending)
	default:
		return out
	}

	sort.SliceStable(out, func(i, j int) bool {
		lt, eq := less(out[i], out[j])
		if eq {
			return false
		}
		if descending {
			return !lt
		}
		return lt
	})
	return out
}

func sortOptional(items []models.MenuItem, field func(models.MenuItem) *int, descending bool) []models.MenuItem {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := field(items[i]), field(items[j])
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		case descending:
			return *a > *b
		default:
			return *a < *b
		}
	})
	return items
}

// Cheapest returns the n lowest priced items.
func Cheapest(items []models.MenuItem, n int) []models.MenuItem {
	return truncate(Sort(items, SortByPrice, false), n)
}

// HighestRated returns the n best rated items.
func HighestRated(items []models.MenuItem, n int) []models.MenuItem {
	return truncate(Sort(items, SortByRating, true), n)
}

func truncate(items []models.MenuItem, n int) []models.MenuItem {
	if n > 0 && len(items) > n {
		return items[:n]
	}
	return items
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
