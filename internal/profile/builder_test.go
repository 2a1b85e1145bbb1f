package profile

import (
	"context"
	"errors"
	"testing"
	"time"

	"dialogue-orchestrator/internal/common/logger"
	"dialogue-orchestrator/internal/memory"
	"dialogue-orchestrator/internal/models"
	"dialogue-orchestrator/internal/store/memstore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testLogger struct {
	t *testing.T
}

func (tl *testLogger) Debug(msg string, fields map[string]interface{}) {
	tl.t.Logf("DEBUG: %s %v", msg, fields)
}

func (tl *testLogger) Info(msg string, fields map[string]interface{}) {
	tl.t.Logf("INFO: %s %v", msg, fields)
}

func (tl *testLogger) Warn(msg string, fields map[string]interface{}) {
	tl.t.Logf("WARN: %s %v", msg, fields)
}

func (tl *testLogger) Error(msg string, fields map[string]interface{}) {
	tl.t.Logf("ERROR: %s %v", msg, fields)
}

func (tl *testLogger) WithFields(fields map[string]interface{}) logger.Logger {
	return tl
}

func (tl *testLogger) WithError(err error) logger.Logger {
	return tl
}

func (tl *testLogger) With(fields map[string]interface{}) logger.Logger {
	return tl
}

func setup(t *testing.T) (*Builder, *memory.Store, *memstore.Store) {
	backing := memstore.New().Seed()
	log := &testLogger{t: t}
	mem := memory.NewStore(backing, log)
	return NewBuilder(mem, backing, log), mem, backing
}

func placeOrder(t *testing.T, s *memstore.Store, id, restaurantID, cuisine string, placedAt time.Time, items ...models.OrderItem) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, s.CreateOrder(ctx, models.Order{
		ID:           id,
		UserID:       "u-1",
		RestaurantID: restaurantID,
		Cuisine:      cuisine,
		Status:       models.OrderStatusPlaced,
		PlacedAt:     placedAt,
	}))
	require.NoError(t, s.AddOrderItems(ctx, id, items))
}

func TestBuilder_Build(t *testing.T) {
	tests := []struct {
		name           string
		prefs          map[string]string
		validateOutput func(t *testing.T, p *models.TasteProfile)
	}{
		{
			name:  "defaults when nothing stored",
			prefs: nil,
			validateOutput: func(t *testing.T, p *models.TasteProfile) {
				assert.Equal(t, models.DefaultSpiceLevel, p.SpiceLevel)
				assert.Equal(t, models.DefaultPriceMin, p.PriceMin)
				assert.Equal(t, models.DefaultPriceMax, p.PriceMax)
				assert.Empty(t, p.Cuisines)
				assert.False(t, p.Inferred)
			},
		},
		{
			name: "buckets preferences by type",
			prefs: map[string]string{
				"spice_level":        "4",
				"price_range":        "100-400",
				"cuisine:italian":    "italian",
				"cuisine:chinese":    "chinese",
				"diet:vegetarian":    "vegetarian",
				"allergen:peanuts":   "peanuts",
				"category:dessert":   "dessert",
				"dislike:mushrooms":  "mushrooms",
				"unknown_type:thing": "thing",
			},
			validateOutput: func(t *testing.T, p *models.TasteProfile) {
				assert.Equal(t, 4, p.SpiceLevel)
				assert.Equal(t, 100.0, p.PriceMin)
				assert.Equal(t, 400.0, p.PriceMax)
				assert.Equal(t, []string{"chinese", "italian"}, p.Cuisines)
				assert.Equal(t, []string{"vegetarian"}, p.Dietary)
				assert.Equal(t, []string{"peanuts"}, p.Allergens)
				assert.Equal(t, []string{"dessert"}, p.FavoriteCategories)
				assert.Equal(t, []string{"mushrooms"}, p.Dislikes)
				assert.True(t, p.IsVegetarian())
				assert.False(t, p.Inferred)
			},
		},
		{
			name: "spice level is clamped and price ceiling alone is accepted",
			prefs: map[string]string{
				"spice_level": "9",
				"price_range": "300",
			},
			validateOutput: func(t *testing.T, p *models.TasteProfile) {
				assert.Equal(t, 5, p.SpiceLevel)
				assert.Equal(t, 0.0, p.PriceMin)
				assert.Equal(t, 300.0, p.PriceMax)
			},
		},
		{
			name: "malformed scalar values keep defaults",
			prefs: map[string]string{
				"spice_level": "hot",
				"price_range": "500-100",
			},
			validateOutput: func(t *testing.T, p *models.TasteProfile) {
				assert.Equal(t, models.DefaultSpiceLevel, p.SpiceLevel)
				assert.Equal(t, models.DefaultPriceMax, p.PriceMax)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, mem, _ := setup(t)
			ctx := context.Background()
			for k, v := range tt.prefs {
				require.NoError(t, mem.Set(ctx, "u-1", models.MemoryPreference, k, v))
			}
			tt.validateOutput(t, b.Build(ctx, "u-1"))
		})
	}
}

func TestBuilder_InfersFromHistory(t *testing.T) {
	b, _, backing := setup(t)
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	biryani := models.OrderItem{MenuItemID: "m-chicken-biryani", Name: "Chicken Biryani", Quantity: 1, Price: 280}
	lassi := models.OrderItem{MenuItemID: "m-lassi", Name: "Sweet Lassi", Quantity: 1, Price: 80}
	pizza := models.OrderItem{MenuItemID: "m-margherita", Name: "Margherita Pizza", Quantity: 1, Price: 350}
	noodles := models.OrderItem{MenuItemID: "m-veg-noodles", Name: "Veg Hakka Noodles", Quantity: 1, Price: 190}

	placeOrder(t, backing, "o-1", "r-dragon", "Chinese", base, noodles)
	placeOrder(t, backing, "o-2", "r-paradise", "Hyderabadi", base.Add(time.Hour), biryani, lassi)
	placeOrder(t, backing, "o-3", "r-pizzaria", "Italian", base.Add(2*time.Hour), pizza)
	placeOrder(t, backing, "o-4", "r-paradise", "Hyderabadi", base.Add(3*time.Hour), biryani)

	p := b.Build(context.Background(), "u-1")

	assert.True(t, p.Inferred)
	// Hyderabadi twice; Italian and Chinese once each, Italian seen first
	// because history is read most recent first.
	assert.Equal(t, []string{"Hyderabadi", "Italian", "Chinese"}, p.Cuisines)
	assert.Equal(t, []string{"Biryani", "Pizza", "Beverage", "Noodles"}, p.FavoriteCategories)
}

func TestBuilder_ExplicitPreferencesSkipInference(t *testing.T) {
	b, mem, backing := setup(t)
	ctx := context.Background()
	placeOrder(t, backing, "o-1", "r-dragon", "Chinese", time.Now(),
		models.OrderItem{MenuItemID: "m-veg-noodles", Name: "Veg Hakka Noodles", Quantity: 1, Price: 190})

	require.NoError(t, mem.Set(ctx, "u-1", models.MemoryPreference, "category:salad", "salad"))

	p := b.Build(ctx, "u-1")
	assert.False(t, p.Inferred)
	assert.Empty(t, p.Cuisines)
	assert.Equal(t, []string{"salad"}, p.FavoriteCategories)
}

func TestBuilder_HistoryFailureKeepsDefaults(t *testing.T) {
	b, _, backing := setup(t)
	backing.Fail["ListOrders"] = errors.New("timeout")

	p := b.Build(context.Background(), "u-1")
	assert.False(t, p.Inferred)
	assert.Equal(t, models.DefaultSpiceLevel, p.SpiceLevel)
}

func TestTopByFrequency(t *testing.T) {
	got := topByFrequency([]string{"b", "a", "", "a", "c", "b", "d"}, 3)
	assert.Equal(t, []string{"b", "a", "c"}, got)
	assert.Equal(t, []string{}, topByFrequency(nil, 3))
}
