package profile

import (
	"context"
	"sort"

	"dialogue-orchestrator/internal/models"
)

// Usuals ranks the items the user orders most. Ties go to the item ordered
// most recently, then by name, so repeated calls over the same history give
// the same list.
func (b *Builder) Usuals(ctx context.Context, userID string, limit int) ([]models.Usual, error) {
	lines, err := b.orders.ListOrderLines(ctx, userID, usualsLineWindow)
	if err != nil {
		return nil, err
	}
	return AggregateUsuals(lines, limit), nil
}

func AggregateUsuals(lines []models.OrderLine, limit int) []models.Usual {
	byItem := make(map[string]*models.Usual)
	var order []string
	for _, l := range lines {
		u, ok := byItem[l.MenuItemID]
		if !ok {
			u = &models.Usual{
				MenuItemID:     l.MenuItemID,
				Name:           l.Name,
				RestaurantID:   l.RestaurantID,
				RestaurantName: l.RestaurantName,
			}
			byItem[l.MenuItemID] = u
			order = append(order, l.MenuItemID)
		}
		u.OrderCount++
		if l.OrderedAt.After(u.LastOrderedAt) {
			u.LastOrderedAt = l.OrderedAt
		}
	}

	usuals := make([]models.Usual, 0, len(order))
	for _, id := range order {
		usuals = append(usuals, *byItem[id])
	}
	sort.SliceStable(usuals, func(i, j int) bool {
		a, b := usuals[i], usuals[j]
		if a.OrderCount != b.OrderCount {
			return a.OrderCount > b.OrderCount
		}
		if !a.LastOrderedAt.Equal(b.LastOrderedAt) {
			return a.LastOrderedAt.After(b.LastOrderedAt)
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.MenuItemID < b.MenuItemID
	})

	if limit > 0 && len(usuals) > limit {
		usuals = usuals[:limit]
	}
	return usuals
}
