// Package recommendation scores catalog items against a taste profile and
// derives trending, similar-item and combo suggestions.
package recommendation

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"dialogue-orchestrator/internal/common/logger"
	"dialogue-orchestrator/internal/models"
	"dialogue-orchestrator/internal/store"
	"dialogue-orchestrator/internal/utility"
)

const (
	DefaultLimit        = 10
	DefaultSimilarLimit = 5

	baseScore          = 50
	cuisineBonus       = 20
	categoryBonus      = 15
	topRatingBonus     = 15
	goodRatingBonus    = 10
	priceBonus         = 5
	spiceBonus         = 10
	healthyBonus       = 10
	maxScore           = 100
	trendingBaseScore  = 80
	trendingCountCap   = 20
	similarScore       = 75
	beverageComboScore = 70
	dessertComboScore  = 65

	trendingWindow      = 7 * 24 * time.Hour
	similarPriceBand    = 0.30
	budgetFriendlyRatio = 0.70
	healthyCalorieLimit = 500
)

// Options narrow and bias a recommendation request. Nil pointers and zero
// values mean not specified.
type Options struct {
	Budget                *float64
	Category              string
	Cuisine               string
	Vegetarian            *bool
	MaxSpice              *int
	Healthy               bool
	RestaurantID          string
	Limit                 int
	DisableAllergenFilter bool
}

// ProfileSource builds the taste profile a request is scored against.
type ProfileSource interface {
	Build(ctx context.Context, userID string) *models.TasteProfile
}

type Engine struct {
	catalog  store.Catalog
	orders   store.Orders
	profiles ProfileSource
	now      func() time.Time
	logger   logger.Logger
}

func NewEngine(catalog store.Catalog, orders store.Orders, profiles ProfileSource, log logger.Logger) *Engine {
	return &Engine{
		catalog:  catalog,
		orders:   orders,
		profiles: profiles,
		now:      time.Now,
		logger:   log.WithFields(map[string]interface{}{"component": "recommendation"}),
	}
}

// WithClock replaces the clock used for the trending window.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

// Recommend builds the user's profile and scores the catalog against it.
func (e *Engine) Recommend(ctx context.Context, userID string, opts Options) ([]models.RecommendedItem, error) {
	return e.RecommendFor(ctx, e.profiles.Build(ctx, userID), opts)
}

// RecommendFor scores the catalog against an already built profile.
func (e *Engine) RecommendFor(ctx context.Context, profile *models.TasteProfile, opts Options) ([]models.RecommendedItem, error) {
	if profile == nil {
		profile = models.DefaultTasteProfile("")
	}
	restaurants, err := e.restaurantIndex(ctx)
	if err != nil {
		return nil, err
	}
	items, err := e.catalog.ListMenuItems(ctx, store.MenuFilter{
		RestaurantID:  opts.RestaurantID,
		AvailableOnly: true,
	})
	if err != nil {
		return nil, fmt.Errorf("list menu items: %w", err)
	}

	candidates := utility.Filter(items, criteriaFor(profile, opts))

	scored := make([]models.RecommendedItem, 0, len(candidates))
	for _, item := range candidates {
		restaurant := restaurants[item.RestaurantID]
		rec := models.NewRecommendedItem(item, restaurant.Name)
		rec.MatchScore, rec.MatchReason = Score(item, restaurant, profile, opts)
		scored = append(scored, rec)
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].MatchScore > scored[j].MatchScore
	})

	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	if len(scored) > limit {
		scored = scored[:limit]
	}
	return scored, nil
}

func criteriaFor(profile *models.TasteProfile, opts Options) utility.Criteria {
	c := utility.Criteria{
		Category:      opts.Category,
		MaxPrice:      opts.Budget,
		Vegetarian:    opts.Vegetarian,
		MaxSpice:      opts.MaxSpice,
		ExcludeTerms:  profile.Dislikes,
		AvailableOnly: true,
	}
	if c.Vegetarian == nil && profile.IsVegetarian() {
		veg := true
		c.Vegetarian = &veg
	}
	if !opts.DisableAllergenFilter {
		c.ExcludeAllergens = profile.Allergens
	}
	return c
}

// Score applies the additive bonuses to one item and explains the largest
// contributors. The result is clamped to [0, 100].
func Score(item models.MenuItem, restaurant models.Restaurant, profile *models.TasteProfile, opts Options) (int, string) {
	score := baseScore
	var reasons []string

	cuisines := profile.Cuisines
	if opts.Cuisine != "" {
		cuisines = append(append([]string(nil), cuisines...), opts.Cuisine)
	}
	if restaurant.Cuisine != "" && containsFold(cuisines, restaurant.Cuisine) {
		score += cuisineBonus
		reasons = append(reasons, fmt.Sprintf("you enjoy %s food", restaurant.Cuisine))
	}
	if containsFold(profile.FavoriteCategories, item.Category) {
		score += categoryBonus
		reasons = append(reasons, fmt.Sprintf("one of your favourite %s picks", strings.ToLower(item.Category)))
	}

	switch {
	case item.Rating >= 4.5:
		score += topRatingBonus
		reasons = append(reasons, fmt.Sprintf("highly rated at %.1f", item.Rating))
	case item.Rating >= 4.0:
		score += goodRatingBonus
	}

	maxBudget := profile.PriceMax
	if opts.Budget != nil {
		maxBudget = *opts.Budget
	}
	if maxBudget > 0 && item.Price <= budgetFriendlyRatio*maxBudget {
		score += priceBonus
		reasons = append(reasons, "easy on the budget")
	}

	if item.SpiceLevel != nil && absInt(*item.SpiceLevel-profile.SpiceLevel) <= 1 {
		score += spiceBonus
		reasons = append(reasons, "matches your spice level")
	}

	if opts.Healthy && item.Calories != nil && *item.Calories < healthyCalorieLimit {
		score += healthyBonus
		reasons = append(reasons, fmt.Sprintf("light at %d calories", *item.Calories))
	}

	score = clamp(score)
	if len(reasons) == 0 {
		return score, "Popular choice"
	}
	return score, capitalize(strings.Join(reasons, ", "))
}

// Trending ranks items by how often they were ordered in the last week.
func (e *Engine) Trending(ctx context.Context, limit int) ([]models.RecommendedItem, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	lines, err := e.orders.ListOrderLinesSince(ctx, e.now().Add(-trendingWindow))
	if err != nil {
		return nil, fmt.Errorf("list recent order lines: %w", err)
	}

	counts := make(map[string]int)
	var order []string
	for _, l := range lines {
		if _, seen := counts[l.MenuItemID]; !seen {
			order = append(order, l.MenuItemID)
		}
		counts[l.MenuItemID]++
	}
	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})

	restaurants, err := e.restaurantIndex(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]models.RecommendedItem, 0, limit)
	for _, id := range order {
		if len(out) >= limit {
			break
		}
		item, err := e.catalog.GetMenuItem(ctx, id)
		if err != nil || !item.Available {
			continue
		}
		count := counts[id]
		rec := models.NewRecommendedItem(*item, restaurants[item.RestaurantID].Name)
		rec.MatchScore = clamp(trendingBaseScore + minInt(count, trendingCountCap))
		rec.MatchReason = "Ordered " + utility.Times(count) + " this week"
		out = append(out, rec)
	}
	return out, nil
}

// SimilarTo returns items in the same category priced within 30% of the
// reference item.
func (e *Engine) SimilarTo(ctx context.Context, itemID string, limit int) ([]models.RecommendedItem, error) {
	if limit <= 0 {
		limit = DefaultSimilarLimit
	}
	ref, err := e.catalog.GetMenuItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	items, err := e.catalog.ListMenuItems(ctx, store.MenuFilter{Category: ref.Category, AvailableOnly: true})
	if err != nil {
		return nil, fmt.Errorf("list menu items: %w", err)
	}
	restaurants, err := e.restaurantIndex(ctx)
	if err != nil {
		return nil, err
	}

	lo, hi := ref.Price*(1-similarPriceBand), ref.Price*(1+similarPriceBand)
	out := make([]models.RecommendedItem, 0, limit)
	for _, item := range items {
		if len(out) >= limit {
			break
		}
		if item.ID == ref.ID || !strings.EqualFold(item.Category, ref.Category) {
			continue
		}
		if item.Price < lo || item.Price > hi {
			continue
		}
		rec := models.NewRecommendedItem(item, restaurants[item.RestaurantID].Name)
		rec.MatchScore = similarScore
		rec.MatchReason = fmt.Sprintf("Similar to %s", ref.Name)
		out = append(out, rec)
	}
	return out, nil
}

// ComboSuggestions completes a cart that holds a main course with the best
// rated beverage and dessert it is missing.
func (e *Engine) ComboSuggestions(ctx context.Context, cart []models.CartLine) ([]models.RecommendedItem, error) {
	var hasMain, hasBeverage, hasDessert bool
	for _, line := range cart {
		item, err := e.catalog.GetMenuItem(ctx, line.MenuItemID)
		if err != nil {
			e.logger.Debug("cart item missing from catalog", map[string]interface{}{
				"menuItemId": line.MenuItemID,
				"error":      err,
			})
			continue
		}
		switch {
		case IsBeverage(item.Category):
			hasBeverage = true
		case IsDessert(item.Category):
			hasDessert = true
		case IsMainCourse(item.Category):
			hasMain = true
		}
	}
	if !hasMain {
		return []models.RecommendedItem{}, nil
	}

	items, err := e.catalog.ListMenuItems(ctx, store.MenuFilter{AvailableOnly: true})
	if err != nil {
		return nil, fmt.Errorf("list menu items: %w", err)
	}
	restaurants, err := e.restaurantIndex(ctx)
	if err != nil {
		return nil, err
	}

	out := []models.RecommendedItem{}
	if !hasBeverage {
		if best, ok := bestRated(items, IsBeverage); ok {
			rec := models.NewRecommendedItem(best, restaurants[best.RestaurantID].Name)
			rec.MatchScore = beverageComboScore
			rec.MatchReason = "A drink to go with your meal"
			out = append(out, rec)
		}
	}
	if !hasDessert {
		if best, ok := bestRated(items, IsDessert); ok {
			rec := models.NewRecommendedItem(best, restaurants[best.RestaurantID].Name)
			rec.MatchScore = dessertComboScore
			rec.MatchReason = "Something sweet to finish"
			out = append(out, rec)
		}
	}
	return out, nil
}

func (e *Engine) restaurantIndex(ctx context.Context) (map[string]models.Restaurant, error) {
	restaurants, err := e.catalog.ListRestaurants(ctx, store.RestaurantFilter{})
	if err != nil {
		return nil, fmt.Errorf("list restaurants: %w", err)
	}
	index := make(map[string]models.Restaurant, len(restaurants))
	for _, r := range restaurants {
		index[r.ID] = r
	}
	return index, nil
}

// bestRated picks the highest rated item of a class; the first one wins ties.
func bestRated(items []models.MenuItem, class func(string) bool) (models.MenuItem, bool) {
	var best models.MenuItem
	found := false
	for _, item := range items {
		if !class(item.Category) {
			continue
		}
		if !found || item.Rating > best.Rating {
			best, found = item, true
		}
	}
	return best, found
}

var mainCourseCategories = []string{
	"main", "biryani", "pizza", "noodles", "curry", "burger", "pasta", "rice", "thali", "entree", "bowl",
}

func IsMainCourse(category string) bool {
	c := strings.ToLower(category)
	for _, m := range mainCourseCategories {
		if strings.Contains(c, m) {
			return true
		}
	}
	return false
}

func IsBeverage(category string) bool {
	c := strings.ToLower(category)
	return strings.Contains(c, "beverage") || strings.Contains(c, "drink")
}

func IsDessert(category string) bool {
	c := strings.ToLower(category)
	return strings.Contains(c, "dessert") || strings.Contains(c, "sweet")
}

func containsFold(list []string, value string) bool {
	for _, v := range list {
		if strings.EqualFold(strings.TrimSpace(v), strings.TrimSpace(value)) {
			return true
		}
	}
	return false
}

func clamp(score int) int {
	return int(math.Max(0, math.Min(maxScore, float64(score))))
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
