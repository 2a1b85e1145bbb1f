package profile

import (
	"context"
	"errors"
	"testing"
	"time"

	"dialogue-orchestrator/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregateUsuals(t *testing.T) {
	t0 := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	lines := []models.OrderLine{
		{MenuItemID: "m-lassi", Name: "Sweet Lassi", RestaurantID: "r-paradise", RestaurantName: "Paradise", OrderedAt: t0.Add(3 * time.Hour)},
		{MenuItemID: "m-chicken-biryani", Name: "Chicken Biryani", RestaurantID: "r-paradise", RestaurantName: "Paradise", OrderedAt: t0.Add(3 * time.Hour)},
		{MenuItemID: "m-margherita", Name: "Margherita Pizza", RestaurantID: "r-pizzaria", RestaurantName: "Napoli Pizzeria", OrderedAt: t0.Add(2 * time.Hour)},
		{MenuItemID: "m-chicken-biryani", Name: "Chicken Biryani", RestaurantID: "r-paradise", RestaurantName: "Paradise", OrderedAt: t0.Add(time.Hour)},
		{MenuItemID: "m-tiramisu", Name: "Tiramisu", RestaurantID: "r-pizzaria", RestaurantName: "Napoli Pizzeria", OrderedAt: t0.Add(3 * time.Hour)},
	}

	got := AggregateUsuals(lines, 3)
	require.Len(t, got, 3)

	assert.Equal(t, "m-chicken-biryani", got[0].MenuItemID)
	assert.Equal(t, 2, got[0].OrderCount)
	assert.Equal(t, t0.Add(3*time.Hour), got[0].LastOrderedAt)

	// Lassi and Tiramisu tie on count and recency, broken by name.
	assert.Equal(t, "Sweet Lassi", got[1].Name)
	assert.Equal(t, "Tiramisu", got[2].Name)

	again := AggregateUsuals(lines, 3)
	assert.Equal(t, got, again)
}

func TestAggregateUsuals_Empty(t *testing.T) {
	assert.Empty(t, AggregateUsuals(nil, 5))
}

func TestBuilder_Usuals(t *testing.T) {
	b, _, backing := setup(t)
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	biryani := models.OrderItem{MenuItemID: "m-chicken-biryani", Name: "Chicken Biryani", Quantity: 2, Price: 280}

	placeOrder(t, backing, "o-1", "r-paradise", "Hyderabadi", base, biryani)
	placeOrder(t, backing, "o-2", "r-paradise", "Hyderabadi", base.Add(time.Hour), biryani)

	usuals, err := b.Usuals(context.Background(), "u-1", 5)
	require.NoError(t, err)
	require.Len(t, usuals, 1)
	assert.Equal(t, 2, usuals[0].OrderCount)
	assert.Equal(t, "r-paradise", usuals[0].RestaurantID)

	backing.Fail["ListOrderLines"] = errors.New("unavailable")
	_, err = b.Usuals(context.Background(), "u-1", 5)
	assert.Error(t, err)
}
