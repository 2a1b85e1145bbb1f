package recommendation

import (
	"context"
	"errors"
	"testing"
	"time"

	"dialogue-orchestrator/internal/common/logger"
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

type staticProfiles map[string]*models.TasteProfile

func (s staticProfiles) Build(ctx context.Context, userID string) *models.TasteProfile {
	if p, ok := s[userID]; ok {
		return p
	}
	return models.DefaultTasteProfile(userID)
}

var now = time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)

func newEngine(t *testing.T, profiles staticProfiles) (*Engine, *memstore.Store) {
	s := memstore.New().Seed()
	e := NewEngine(s, s, profiles, &testLogger{t: t}).WithClock(func() time.Time { return now })
	return e, s
}

func floatPtr(v float64) *float64 { return &v }

func likesHyderabadiBiryani(p *models.TasteProfile) {
	p.Cuisines = []string{"hyderabadi"}
	p.FavoriteCategories = []string{"biryani"}
}
func intPtr(v int) *int           { return &v }

func ids(items []models.RecommendedItem) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = item.ID
	}
	return out
}

func TestRecommend_NeverExceedsBudget(t *testing.T) {
	e, _ := newEngine(t, staticProfiles{})
	for _, budget := range []float64{100, 150, 250, 300, 1000} {
		recs, err := e.Recommend(context.Background(), "u-1", Options{Budget: floatPtr(budget)})
		require.NoError(t, err)
		for _, r := range recs {
			assert.LessOrEqual(t, r.Price, budget, "budget %.0f returned %s", budget, r.Name)
		}
	}
}

func TestRecommend_ExcludesAllergensUnlessDisabled(t *testing.T) {
	profile := models.DefaultTasteProfile("u-1")
	profile.Allergens = []string{"peanuts"}
	e, _ := newEngine(t, staticProfiles{"u-1": profile})

	recs, err := e.Recommend(context.Background(), "u-1", Options{Limit: 50})
	require.NoError(t, err)
	assert.NotContains(t, ids(recs), "m-peanut-salad")
	assert.NotContains(t, ids(recs), "m-kung-pao")

	recs, err = e.Recommend(context.Background(), "u-1", Options{Limit: 50, DisableAllergenFilter: true})
	require.NoError(t, err)
	assert.Contains(t, ids(recs), "m-peanut-salad")
	assert.Contains(t, ids(recs), "m-kung-pao")
}

func TestRecommend_HardFiltersAndOrdering(t *testing.T) {
	profile := models.DefaultTasteProfile("u-1")
	profile.Cuisines = []string{"hyderabadi"}
	profile.Dislikes = []string{"pizza"}
	e, _ := newEngine(t, staticProfiles{"u-1": profile})

	recs, err := e.Recommend(context.Background(), "u-1", Options{Limit: 50})
	require.NoError(t, err)
	require.NotEmpty(t, recs)

	assert.NotContains(t, ids(recs), "m-spring-rolls", "unavailable items are never recommended")
	assert.NotContains(t, ids(recs), "m-margherita", "disliked categories are excluded")
	assert.Equal(t, "m-chicken-biryani", recs[0].ID)
	for i := 1; i < len(recs); i++ {
		assert.GreaterOrEqual(t, recs[i-1].MatchScore, recs[i].MatchScore)
	}

	veg, err := e.Recommend(context.Background(), "u-1", Options{Vegetarian: func() *bool { b := true; return &b }(), MaxSpice: intPtr(1), Category: "salad"})
	require.NoError(t, err)
	assert.Equal(t, []string{"m-quinoa-bowl"}, ids(veg))
}

func TestRecommend_DefaultLimit(t *testing.T) {
	e, s := newEngine(t, staticProfiles{})
	for i := 0; i < 15; i++ {
		s.AddMenuItem(models.MenuItem{
			ID:           "extra-" + string(rune('a'+i)),
			RestaurantID: "r-newcafe",
			Name:         "Filter Coffee",
			Category:     "Beverage",
			Price:        60,
			Rating:       4.0,
			Available:    true,
		})
	}
	recs, err := e.Recommend(context.Background(), "u-1", Options{})
	require.NoError(t, err)
	assert.Len(t, recs, DefaultLimit)
}

func TestRecommend_EmptyBudgetMatch(t *testing.T) {
	e, _ := newEngine(t, staticProfiles{})
	recs, err := e.Recommend(context.Background(), "u-1", Options{Budget: floatPtr(10)})
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestRecommend_CatalogFailure(t *testing.T) {
	e, s := newEngine(t, staticProfiles{})
	s.Fail["ListMenuItems"] = errors.New("connection refused")
	_, err := e.Recommend(context.Background(), "u-1", Options{})
	assert.Error(t, err)
}

func TestScore(t *testing.T) {
	restaurant := models.Restaurant{ID: "r1", Name: "Paradise", Cuisine: "Hyderabadi"}

	tests := []struct {
		name    string
		item    models.MenuItem
		profile func(p *models.TasteProfile)
		opts    Options
		want    int
	}{
		{
			name: "base only",
			item: models.MenuItem{Category: "Biryani", Rating: 3.5, Price: 900},
			want: 50,
		},
		{
			name: "good rating",
			item: models.MenuItem{Category: "Biryani", Rating: 4.0, Price: 900},
			want: 60,
		},
		{
			name:    "cuisine and category",
			item:    models.MenuItem{Category: "Biryani", Rating: 3.5, Price: 900},
			profile: likesHyderabadiBiryani,
			want:    85,
		},
		{
			name: "budget friendly against option budget",
			item: models.MenuItem{Category: "Biryani", Rating: 3.5, Price: 140},
			opts: Options{Budget: floatPtr(200)},
			want: 55,
		},
		{
			name: "not budget friendly against option budget",
			item: models.MenuItem{Category: "Biryani", Rating: 3.5, Price: 150},
			opts: Options{Budget: floatPtr(200)},
			want: 50,
		},
		{
			name: "spice within one",
			item: models.MenuItem{Category: "Biryani", Rating: 3.5, Price: 900, SpiceLevel: intPtr(4)},
			want: 60,
		},
		{
			name: "healthy request",
			item: models.MenuItem{Category: "Salad", Rating: 3.5, Price: 900, Calories: intPtr(420)},
			opts: Options{Healthy: true},
			want: 60,
		},
		{
			name:    "clamped to 100",
			item:    models.MenuItem{Category: "Biryani", Rating: 4.8, Price: 100, SpiceLevel: intPtr(3), Calories: intPtr(300)},
			profile: likesHyderabadiBiryani,
			opts:    Options{Healthy: true},
			want:    100,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := models.DefaultTasteProfile("u-1")
			if tt.profile != nil {
				tt.profile(p)
			}
			score, reason := Score(tt.item, restaurant, p, tt.opts)
			assert.Equal(t, tt.want, score)
			assert.NotEmpty(t, reason)
			assert.GreaterOrEqual(t, score, 0)
			assert.LessOrEqual(t, score, 100)
		})
	}
}

func TestScore_RatingIncreaseRaisesScore(t *testing.T) {
	restaurant := models.Restaurant{Cuisine: "Italian"}
	p := models.DefaultTasteProfile("u-1")
	item := models.MenuItem{Category: "Pizza", Rating: 4.0, Price: 350, SpiceLevel: intPtr(1)}

	low, _ := Score(item, restaurant, p, Options{})
	item.Rating = 4.6
	high, _ := Score(item, restaurant, p, Options{})
	assert.Greater(t, high, low)
}

func TestTrending(t *testing.T) {
	e, s := newEngine(t, staticProfiles{})
	ctx := context.Background()

	place := func(id string, placedAt time.Time, menuItemIDs ...string) {
		require.NoError(t, s.CreateOrder(ctx, models.Order{ID: id, UserID: "u-9", PlacedAt: placedAt}))
		items := make([]models.OrderItem, len(menuItemIDs))
		for i, m := range menuItemIDs {
			items[i] = models.OrderItem{MenuItemID: m, Quantity: 1}
		}
		require.NoError(t, s.AddOrderItems(ctx, id, items))
	}

	place("o-old", now.Add(-8*24*time.Hour), "m-tiramisu", "m-tiramisu", "m-tiramisu")
	place("o-1", now.Add(-3*24*time.Hour), "m-lassi", "m-margherita")
	place("o-2", now.Add(-2*24*time.Hour), "m-margherita")
	place("o-3", now.Add(-time.Hour), "m-margherita", "m-lassi", "m-quinoa-bowl")

	recs, err := e.Trending(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, []string{"m-margherita", "m-lassi", "m-quinoa-bowl"}, ids(recs))
	assert.Equal(t, 83, recs[0].MatchScore)
	assert.Equal(t, 82, recs[1].MatchScore)
	assert.Equal(t, 81, recs[2].MatchScore)
	assert.Equal(t, "Ordered 3 times this week", recs[0].MatchReason)
	assert.Equal(t, "Ordered once this week", recs[2].MatchReason)

	limited, err := e.Trending(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestTrending_ScoreCapped(t *testing.T) {
	e, s := newEngine(t, staticProfiles{})
	ctx := context.Background()
	for i := 0; i < 30; i++ {
		id := "o-" + string(rune('A'+i))
		require.NoError(t, s.CreateOrder(ctx, models.Order{ID: id, UserID: "u-9", PlacedAt: now.Add(-time.Hour)}))
		require.NoError(t, s.AddOrderItems(ctx, id, []models.OrderItem{{MenuItemID: "m-lassi", Quantity: 1}}))
	}
	recs, err := e.Trending(ctx, 5)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, 100, recs[0].MatchScore)
}

func TestSimilarTo(t *testing.T) {
	e, _ := newEngine(t, staticProfiles{})

	recs, err := e.SimilarTo(context.Background(), "m-chicken-biryani", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"m-veg-biryani"}, ids(recs))
	assert.Equal(t, 75, recs[0].MatchScore)

	recs, err = e.SimilarTo(context.Background(), "m-quinoa-bowl", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"m-peanut-salad"}, ids(recs))

	_, err = e.SimilarTo(context.Background(), "missing", 0)
	assert.Error(t, err)
}

func TestComboSuggestions(t *testing.T) {
	e, _ := newEngine(t, staticProfiles{})
	ctx := context.Background()

	tests := []struct {
		name string
		cart []models.CartLine
		want []string
	}{
		{
			name: "main course alone gets drink and dessert",
			cart: []models.CartLine{{MenuItemID: "m-chicken-biryani"}},
			want: []string{"m-lassi", "m-tiramisu"},
		},
		{
			name: "main course with drink gets dessert only",
			cart: []models.CartLine{{MenuItemID: "m-chicken-biryani"}, {MenuItemID: "m-green-juice"}},
			want: []string{"m-tiramisu"},
		},
		{
			name: "complete meal gets nothing",
			cart: []models.CartLine{{MenuItemID: "m-margherita"}, {MenuItemID: "m-lassi"}, {MenuItemID: "m-double-ka-meetha"}},
			want: []string{},
		},
		{
			name: "no main course gets nothing",
			cart: []models.CartLine{{MenuItemID: "m-quinoa-bowl"}},
			want: []string{},
		},
		{
			name: "empty cart gets nothing",
			cart: nil,
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recs, err := e.ComboSuggestions(ctx, tt.cart)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(recs))
		})
	}
}

func TestCategoryClasses(t *testing.T) {
	assert.True(t, IsMainCourse("Main Course"))
	assert.True(t, IsMainCourse("Biryani"))
	assert.False(t, IsMainCourse("Salad"))
	assert.True(t, IsBeverage("Cold Drinks"))
	assert.True(t, IsDessert("Desserts"))
}
