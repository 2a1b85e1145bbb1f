package supervisor

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	commonerrors "dialogue-orchestrator/internal/common/errors"
	"dialogue-orchestrator/internal/extractor"
	"dialogue-orchestrator/internal/models"
	"dialogue-orchestrator/internal/store"
	"dialogue-orchestrator/internal/utility"
)

const agentCatalog = "catalog"

var withoutRe = regexp.MustCompile(`\b(?:without|excluding|except|free of)\s+([a-z][a-z ]*?)(?:\s+(?:and|or|at|from|in|under|below|sorted|please)\b|$)`)

func (s *Supervisor) compareItems(ctx context.Context, t turn) models.OrchestrationResult {
	targets := t.entities.CompareTargets
	if len(targets) < 2 && len(t.entities.Items) >= 2 {
		targets = []string{t.entities.Items[0].Name, t.entities.Items[1].Name}
	}
	if len(targets) < 2 {
		return reply(models.ResultGuidance, msgCompareItems)
	}

	items, err := s.deps.Catalog.ListMenuItems(ctx, store.MenuFilter{})
	if err != nil {
		return s.fail(ctx, agentCatalog, t, err)
	}
	a, ok := utility.MatchItem(items, targets[0])
	if !ok {
		return s.notFound(t, commonerrors.NewMenuItemNotFoundError(targets[0]),
			fmt.Sprintf("I couldn't find %q on any menu. %s", targets[0], msgCompareItems))
	}
	b, ok := utility.MatchItem(items, targets[1])
	if !ok {
		return s.notFound(t, commonerrors.NewMenuItemNotFoundError(targets[1]),
			fmt.Sprintf("I couldn't find %q on any menu. %s", targets[1], msgCompareItems))
	}
	if a.ID == b.ID {
		return reply(models.ResultGuidance, msgCompareItems)
	}

	cmp := utility.CompareItems(a, b)
	response := fmt.Sprintf("%s (₹%.0f, ★%.1f) vs %s (₹%.0f, ★%.1f): %s",
		a.Name, a.Price, a.Rating, b.Name, b.Price, b.Rating, cmp.Summary)
	return models.OrchestrationResult{Type: models.ResultComparison, Response: response, Data: cmp}
}

func (s *Supervisor) compareRestaurants(ctx context.Context, t turn) models.OrchestrationResult {
	targets := t.entities.CompareTargets
	if len(targets) < 2 {
		return reply(models.ResultGuidance, msgCompareRestaurant)
	}

	pair := make([]models.Restaurant, 2)
	for i, name := range targets[:2] {
		r, err := s.deps.Catalog.FindRestaurantByName(ctx, name)
		if errors.Is(err, store.ErrNotFound) {
			return s.notFound(t, commonerrors.NewRestaurantNotFoundError(name),
				fmt.Sprintf("I couldn't find a restaurant called %q. %s", name, msgCompareRestaurant))
		}
		if err != nil {
			return s.fail(ctx, agentCatalog, t, err)
		}
		pair[i] = *r
	}

	cmp := utility.CompareRestaurants(pair[0], pair[1])
	response := describeRestaurant(pair[0]) + "\n" + describeRestaurant(pair[1]) + "\n" + cmp.Summary
	return models.OrchestrationResult{Type: models.ResultComparison, Response: response, Data: cmp}
}

func (s *Supervisor) restaurantInfo(ctx context.Context, t turn) models.OrchestrationResult {
	name := t.entities.Restaurant
	if name == "" {
		return reply(models.ResultGuidance, msgRestaurantInfo)
	}
	r, err := s.deps.Catalog.FindRestaurantByName(ctx, name)
	if errors.Is(err, store.ErrNotFound) {
		return s.notFound(t, commonerrors.NewRestaurantNotFoundError(name), fmt.Sprintf("I couldn't find a restaurant called %q.", name))
	}
	if err != nil {
		return s.fail(ctx, agentCatalog, t, err)
	}
	return models.OrchestrationResult{Type: models.ResultRestaurantInfo, Response: describeRestaurant(*r), Data: r}
}

// notFound answers a lookup miss. The structured error travels in Data so
// API callers can branch on its code.
func (s *Supervisor) notFound(t turn, err *commonerrors.StandardError, response string) models.OrchestrationResult {
	s.logger.Info("lookup missed", map[string]interface{}{
		"userId":  t.userID,
		"intent":  t.intent,
		"code":    err.Code,
		"details": err.Details,
	})
	return models.OrchestrationResult{Type: models.ResultNotFound, Response: response, Data: err}
}

func describeRestaurant(r models.Restaurant) string {
	parts := []string{}
	if r.Cuisine != "" {
		parts = append(parts, r.Cuisine)
	}
	if r.Rating > 0 {
		parts = append(parts, fmt.Sprintf("rated %.1f", r.Rating))
	}
	if r.DeliveryTimeMinutes > 0 {
		parts = append(parts, fmt.Sprintf("delivers in about %d min", r.DeliveryTimeMinutes))
	}
	if r.DeliveryFee > 0 {
		parts = append(parts, fmt.Sprintf("₹%.0f delivery fee", r.DeliveryFee))
	} else {
		parts = append(parts, "free delivery")
	}
	if r.MinOrder > 0 {
		parts = append(parts, fmt.Sprintf("minimum order ₹%.0f", r.MinOrder))
	}
	return fmt.Sprintf("%s: %s.", r.Name, strings.Join(parts, ", "))
}

// menuUtility serves sort, filter, cheapest and highest rated requests over
// the available menu, scoped to a restaurant when one is named.
func (s *Supervisor) menuUtility(ctx context.Context, t turn) models.OrchestrationResult {
	var scope *models.Restaurant
	if name := t.entities.Restaurant; name != "" {
		r, err := s.deps.Catalog.FindRestaurantByName(ctx, name)
		switch {
		case errors.Is(err, store.ErrNotFound):
			if !t.entities.RestaurantFromHistory {
				return s.notFound(t, commonerrors.NewRestaurantNotFoundError(name), fmt.Sprintf("I couldn't find a restaurant called %q.", name))
			}
		case err != nil:
			return s.fail(ctx, agentCatalog, t, err)
		default:
			scope = r
		}
	}

	filter := store.MenuFilter{AvailableOnly: true}
	if scope != nil {
		filter.RestaurantID = scope.ID
	}
	items, err := s.deps.Catalog.ListMenuItems(ctx, filter)
	if err != nil {
		return s.fail(ctx, agentCatalog, t, err)
	}
	names, err := s.restaurantNames(ctx)
	if err != nil {
		return s.fail(ctx, agentCatalog, t, err)
	}

	items = utility.Filter(items, menuCriteria(t))
	limit := s.config.MenuLimit
	var heading string
	switch t.intent {
	case models.IntentCheapest:
		items = utility.Cheapest(items, s.config.DisplayLimit)
		heading = "Cheapest options"
	case models.IntentHighestRated:
		items = utility.HighestRated(items, s.config.DisplayLimit)
		heading = "Top rated"
	case models.IntentSortMenu:
		key, desc := sortOrder(t.entities)
		items = utility.Sort(items, key, desc)
		heading = fmt.Sprintf("Sorted by %s (%s)", key, direction(key, desc))
	default:
		heading = "Here's what matches"
	}
	if len(items) == 0 {
		return reply(models.ResultMenuItems, msgNoMenuMatches)
	}
	if scope != nil {
		heading += " at " + scope.Name
	}
	return models.OrchestrationResult{
		Type:     models.ResultMenuItems,
		Response: heading + ":\n" + renderMenuItems(items, names, scope == nil, limit),
		Data:     items,
	}
}

func menuCriteria(t turn) utility.Criteria {
	c := utility.Criteria{
		Category:      t.entities.Category,
		MaxPrice:      t.entities.Budget,
		Vegetarian:    t.entities.Vegetarian,
		AvailableOnly: true,
	}
	if lvl := t.entities.SpiceLevel; lvl != nil && *lvl <= mildSpiceCeiling {
		c.MaxSpice = lvl
	}
	if m := withoutRe.FindStringSubmatch(t.text); m != nil {
		for _, term := range splitTerms(m[1]) {
			if a := allergenMention(term); a != "" {
				c.ExcludeAllergens = append(c.ExcludeAllergens, a)
				continue
			}
			c.ExcludeTerms = append(c.ExcludeTerms, extractor.Singularize(term))
		}
	}
	return c
}

// sortOrder defaults to price ascending. Rating sorts best first unless the
// user asked otherwise.
func sortOrder(ent models.Entities) (utility.SortKey, bool) {
	key := utility.SortKey(ent.SortKey)
	if !key.Valid() {
		key = utility.SortByPrice
	}
	desc := key == utility.SortByRating
	if ent.SortDescending != nil {
		desc = *ent.SortDescending
	}
	return key, desc
}

func direction(key utility.SortKey, desc bool) string {
	switch {
	case key == utility.SortByName && desc:
		return "Z to A"
	case key == utility.SortByName:
		return "A to Z"
	case desc:
		return "high to low"
	}
	return "low to high"
}

// findItem locates the dish a question is about. The longest catalog name
// spelled out in the utterance wins, then the extracted mentions are
// matched loosely.
func (s *Supervisor) findItem(ctx context.Context, t turn) (models.MenuItem, bool, error) {
	items, err := s.deps.Catalog.ListMenuItems(ctx, store.MenuFilter{})
	if err != nil {
		return models.MenuItem{}, false, err
	}

	best := -1
	for i, item := range items {
		name := strings.ToLower(item.Name)
		if name == "" || !strings.Contains(t.text, name) {
			continue
		}
		if best < 0 || len(name) > len(items[best].Name) {
			best = i
		}
	}
	if best >= 0 {
		return items[best], true, nil
	}

	var mentions []string
	for _, m := range t.entities.Items {
		mentions = append(mentions, m.Name)
	}
	mentions = append(mentions, t.entities.CompareTargets...)
	for _, m := range mentions {
		if item, ok := utility.MatchItem(items, m); ok {
			return item, true, nil
		}
	}
	return models.MenuItem{}, false, nil
}

// menuWithout lists available dishes free of allergen.
func (s *Supervisor) menuWithout(ctx context.Context, allergen string) ([]models.MenuItem, map[string]string, error) {
	items, err := s.deps.Catalog.ListMenuItems(ctx, store.MenuFilter{AvailableOnly: true})
	if err != nil {
		return nil, nil, err
	}
	names, err := s.restaurantNames(ctx)
	if err != nil {
		return nil, nil, err
	}
	return utility.Filter(items, utility.Criteria{ExcludeAllergens: []string{allergen}, AvailableOnly: true}), names, nil
}

func (s *Supervisor) restaurantNames(ctx context.Context) (map[string]string, error) {
	restaurants, err := s.deps.Catalog.ListRestaurants(ctx, store.RestaurantFilter{})
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(restaurants))
	for _, r := range restaurants {
		names[r.ID] = r.Name
	}
	return names, nil
}

// renderMenuItems numbers dishes with price and rating, naming the
// restaurant when the list spans more than one.
func renderMenuItems(items []models.MenuItem, restaurants map[string]string, withRestaurant bool, limit int) string {
	var b strings.Builder
	for i, item := range items {
		if limit > 0 && i >= limit {
			fmt.Fprintf(&b, "\n...and %d more", len(items)-limit)
			break
		}
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%d. %s", i+1, item.Name)
		if name := restaurants[item.RestaurantID]; withRestaurant && name != "" {
			fmt.Fprintf(&b, " (%s)", name)
		}
		fmt.Fprintf(&b, " - ₹%.0f", item.Price)
		if item.Rating > 0 {
			fmt.Fprintf(&b, " ★%.1f", item.Rating)
		}
	}
	return b.String()
}
