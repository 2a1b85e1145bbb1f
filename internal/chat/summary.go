package chat

import (
	"context"
	"fmt"
	"strings"

	"dialogue-orchestrator/internal/models"
	"dialogue-orchestrator/internal/store"
)

// BuildCatalogSummary renders restaurants and their available dishes as
// plain text for the system prompt. It is built once at startup.
func BuildCatalogSummary(ctx context.Context, catalog store.Catalog) (string, error) {
	restaurants, err := catalog.ListRestaurants(ctx, store.RestaurantFilter{})
	if err != nil {
		return "", err
	}
	items, err := catalog.ListMenuItems(ctx, store.MenuFilter{AvailableOnly: true})
	if err != nil {
		return "", err
	}

	byRestaurant := make(map[string][]models.MenuItem)
	for _, item := range items {
		byRestaurant[item.RestaurantID] = append(byRestaurant[item.RestaurantID], item)
	}

	var b strings.Builder
	b.WriteString("Catalog:")
	for _, r := range restaurants {
		fmt.Fprintf(&b, "\n- %s (%s, rated %.1f, ~%d min delivery)", r.Name, r.Cuisine, r.Rating, r.DeliveryTimeMinutes)
		dishes := byRestaurant[r.ID]
		if len(dishes) == 0 {
			continue
		}
		parts := make([]string, 0, len(dishes))
		for _, d := range dishes {
			parts = append(parts, fmt.Sprintf("%s ₹%.0f", d.Name, d.Price))
		}
		b.WriteString(": " + strings.Join(parts, ", "))
	}
	return b.String(), nil
}
