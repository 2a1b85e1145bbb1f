package memstore

import (
	"context"
	"errors"
	"testing"

	"dialogue-orchestrator/internal/models"
	"dialogue-orchestrator/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindRestaurantByName(t *testing.T) {
	db := New().Seed()
	ctx := context.Background()

	tests := []struct {
		name    string
		query   string
		wantID  string
		wantErr error
	}{
		{name: "exact match ignores case", query: "paradise", wantID: "r-paradise"},
		{name: "partial name", query: "napoli", wantID: "r-pizzaria"},
		{name: "name inside a longer phrase", query: "green bowl salads", wantID: "r-greenbowl"},
		{name: "unknown", query: "nowhere", wantErr: store.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := db.FindRestaurantByName(ctx, tt.query)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, r.ID)
		})
	}
}

func TestListMenuItems(t *testing.T) {
	db := New().Seed()
	ctx := context.Background()
	maxPrice := 200.0
	veg := true

	tests := []struct {
		name           string
		filter         store.MenuFilter
		validateOutput func(t *testing.T, items []models.MenuItem)
	}{
		{
			name:   "available only drops unavailable dishes",
			filter: store.MenuFilter{RestaurantID: "r-dragon", AvailableOnly: true},
			validateOutput: func(t *testing.T, items []models.MenuItem) {
				require.Len(t, items, 2)
				for _, item := range items {
					assert.NotEqual(t, "Spring Rolls", item.Name)
				}
			},
		},
		{
			name:   "price ceiling sorted descending",
			filter: store.MenuFilter{MaxPrice: &maxPrice, Vegetarian: &veg, OrderBy: "price", Descending: true, Limit: 2},
			validateOutput: func(t *testing.T, items []models.MenuItem) {
				require.Len(t, items, 2)
				assert.Equal(t, "Tiramisu", items[0].Name)
				assert.Equal(t, "Veg Hakka Noodles", items[1].Name)
			},
		},
		{
			name:   "category substring",
			filter: store.MenuFilter{Category: "biryani"},
			validateOutput: func(t *testing.T, items []models.MenuItem) {
				assert.Len(t, items, 2)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items, err := db.ListMenuItems(ctx, tt.filter)
			require.NoError(t, err)
			tt.validateOutput(t, items)
		})
	}
}

func TestListMenuItems_ReturnsCopies(t *testing.T) {
	db := New().Seed()
	ctx := context.Background()

	items, err := db.ListMenuItems(ctx, store.MenuFilter{NameContains: "tiramisu"})
	require.NoError(t, err)
	require.Len(t, items, 1)
	items[0].Allergens[0] = "changed"

	again, err := db.GetMenuItem(ctx, "m-tiramisu")
	require.NoError(t, err)
	assert.Equal(t, "dairy", again.Allergens[0])
}

func TestCartLines(t *testing.T) {
	db := New()
	ctx := context.Background()

	line, err := db.GetCartLine(ctx, "u-1", "m-lassi")
	require.NoError(t, err)
	assert.Nil(t, line)

	require.NoError(t, db.UpsertCartLine(ctx, models.CartLine{UserID: "u-1", MenuItemID: "m-lassi", Quantity: 1}))
	require.NoError(t, db.UpsertCartLine(ctx, models.CartLine{UserID: "u-1", MenuItemID: "m-lassi", Quantity: 3}))
	require.NoError(t, db.UpsertCartLine(ctx, models.CartLine{UserID: "u-1", MenuItemID: "m-tiramisu", Quantity: 1}))

	lines, err := db.ListCart(ctx, "u-1")
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Equal(t, 3, lines[0].Quantity)

	require.NoError(t, db.RemoveCartLine(ctx, "u-1", "m-lassi"))
	lines, err = db.ListCart(ctx, "u-1")
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, "m-tiramisu", lines[0].MenuItemID)

	require.NoError(t, db.ClearCart(ctx, "u-1"))
	lines, err = db.ListCart(ctx, "u-1")
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestFailureInjection(t *testing.T) {
	db := New().Seed()
	db.Fail["ListRestaurants"] = errors.New("connection refused")

	_, err := db.ListRestaurants(context.Background(), store.RestaurantFilter{})
	assert.EqualError(t, err, "connection refused")

	_, err = db.ListMenuItems(context.Background(), store.MenuFilter{})
	assert.NoError(t, err)
}
