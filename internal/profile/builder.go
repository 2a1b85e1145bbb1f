// Package profile derives a taste profile from stored preferences, falling
// back to order history when the user has stated none.
package profile

import (
	"context"
	"sort"
	"strconv"
	"strings"

	"dialogue-orchestrator/internal/common/logger"
	"dialogue-orchestrator/internal/models"
	"dialogue-orchestrator/internal/store"
)

const (
	inferenceOrderWindow = 20
	inferenceLineWindow  = 50
	inferredCuisines     = 3
	inferredCategories   = 5
	usualsLineWindow     = 200
)

// MemoryReader is the part of the memory store the builder needs.
type MemoryReader interface {
	Get(ctx context.Context, userID string) *models.UserMemory
}

type Builder struct {
	memory MemoryReader
	orders store.Orders
	logger logger.Logger
}

func NewBuilder(memory MemoryReader, orders store.Orders, log logger.Logger) *Builder {
	return &Builder{
		memory: memory,
		orders: orders,
		logger: log.WithFields(map[string]interface{}{"component": "profile"}),
	}
}

// Build loads the user's memory and derives the profile from it.
func (b *Builder) Build(ctx context.Context, userID string) *models.TasteProfile {
	return b.BuildFrom(ctx, userID, b.memory.Get(ctx, userID))
}

// BuildFrom derives the profile from an already loaded memory.
func (b *Builder) BuildFrom(ctx context.Context, userID string, mem *models.UserMemory) *models.TasteProfile {
	p := FromPreferences(userID, mem)
	if len(p.Cuisines) == 0 && len(p.FavoriteCategories) == 0 {
		b.infer(ctx, p)
	}
	return p
}

// FromPreferences buckets the preference entries of mem by type. It does
// not consult order history.
func FromPreferences(userID string, mem *models.UserMemory) *models.TasteProfile {
	p := models.DefaultTasteProfile(userID)
	prefs := mem.Kind(models.MemoryPreference)

	for _, key := range mem.Keys(models.MemoryPreference) {
		value := strings.TrimSpace(prefs[key])
		prefType := models.PreferenceType(key)
		if i := strings.Index(key, ":"); i >= 0 {
			prefType = models.PreferenceType(key[:i])
			if value == "" {
				value = key[i+1:]
			}
		}
		if value == "" {
			continue
		}

		switch prefType {
		case models.PreferenceSpiceLevel:
			if level, err := strconv.Atoi(value); err == nil {
				p.SpiceLevel = clampSpice(level)
			}
		case models.PreferencePriceRange:
			if lo, hi, ok := parsePriceRange(value); ok {
				p.PriceMin, p.PriceMax = lo, hi
			}
		case models.PreferenceCuisine:
			p.Cuisines = appendUnique(p.Cuisines, value)
		case models.PreferenceDiet:
			p.Dietary = appendUnique(p.Dietary, value)
		case models.PreferenceAllergen:
			p.Allergens = appendUnique(p.Allergens, value)
		case models.PreferenceCategory:
			p.FavoriteCategories = appendUnique(p.FavoriteCategories, value)
		case models.PreferenceDislike:
			p.Dislikes = appendUnique(p.Dislikes, value)
		}
	}
	return p
}

func (b *Builder) infer(ctx context.Context, p *models.TasteProfile) {
	orders, err := b.orders.ListOrders(ctx, p.UserID, inferenceOrderWindow)
	if err != nil {
		b.logger.Warn("order history unavailable for profile inference", map[string]interface{}{
			"userId": p.UserID,
			"error":  err,
		})
		return
	}
	cuisines := make([]string, 0, len(orders))
	for _, o := range orders {
		cuisines = append(cuisines, o.Cuisine)
	}

	lines, err := b.orders.ListOrderLines(ctx, p.UserID, inferenceLineWindow)
	if err != nil {
		b.logger.Warn("order lines unavailable for profile inference", map[string]interface{}{
			"userId": p.UserID,
			"error":  err,
		})
		lines = nil
	}
	categories := make([]string, 0, len(lines))
	for _, l := range lines {
		categories = append(categories, l.Category)
	}

	p.Cuisines = topByFrequency(cuisines, inferredCuisines)
	p.FavoriteCategories = topByFrequency(categories, inferredCategories)
	p.Inferred = len(p.Cuisines) > 0 || len(p.FavoriteCategories) > 0
}

// topByFrequency ranks values by count descending, ties by first
// appearance, and returns at most n of them. Blank values are ignored.
func topByFrequency(values []string, n int) []string {
	counts := make(map[string]int)
	var order []string
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, seen := counts[v]; !seen {
			order = append(order, v)
		}
		counts[v]++
	}
	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})
	if len(order) > n {
		order = order[:n]
	}
	if order == nil {
		return []string{}
	}
	return order
}

func clampSpice(level int) int {
	if level < 1 {
		return 1
	}
	if level > 5 {
		return 5
	}
	return level
}

// parsePriceRange accepts "min-max" or a single ceiling.
func parsePriceRange(value string) (float64, float64, bool) {
	parts := strings.SplitN(value, "-", 2)
	if len(parts) == 1 {
		hi, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
		if err != nil || hi <= 0 {
			return 0, 0, false
		}
		return models.DefaultPriceMin, hi, true
	}
	lo, err1 := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	hi, err2 := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err1 != nil || err2 != nil || lo < 0 || hi < lo {
		return 0, 0, false
	}
	return lo, hi, true
}

func appendUnique(list []string, value string) []string {
	for _, v := range list {
		if strings.EqualFold(v, value) {
			return list
		}
	}
	return append(list, value)
}
