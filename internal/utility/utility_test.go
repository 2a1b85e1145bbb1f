package utility

import (
	"testing"

	"dialogue-orchestrator/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }
func boolPtr(v bool) *bool        { return &v }

func names(items []models.MenuItem) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = item.Name
	}
	return out
}

func sampleMenu() []models.MenuItem {
	return []models.MenuItem{
		{ID: "1", RestaurantID: "r1", Name: "Chicken Biryani", Category: "Biryani", Price: 280, Rating: 4.7, SpiceLevel: intPtr(4), Calories: intPtr(780), Allergens: []string{"dairy"}, Available: true},
		{ID: "2", RestaurantID: "r1", Name: "Veg Biryani", Category: "Biryani", Price: 220, Rating: 4.3, IsVegetarian: true, SpiceLevel: intPtr(3), Calories: intPtr(620), Available: true},
		{ID: "3", RestaurantID: "r2", Name: "Thai Peanut Salad", Category: "Salad", Price: 240, Rating: 4.5, IsVegetarian: true, SpiceLevel: intPtr(2), Calories: intPtr(380), Allergens: []string{"peanuts"}, Available: true},
		{ID: "4", RestaurantID: "r2", Name: "Green Juice", Category: "Beverage", Price: 150, Rating: 4.2, IsVegetarian: true, Available: true},
		{ID: "5", RestaurantID: "r3", Name: "Spring Rolls", Category: "Starter", Price: 140, Rating: 4.0, IsVegetarian: true, SpiceLevel: intPtr(1), Calories: intPtr(300), Available: false},
	}
}

func TestFilter(t *testing.T) {
	tests := []struct {
		name     string
		criteria Criteria
		want     []string
	}{
		{name: "no criteria keeps everything", criteria: Criteria{}, want: []string{"Chicken Biryani", "Veg Biryani", "Thai Peanut Salad", "Green Juice", "Spring Rolls"}},
		{name: "category substring", criteria: Criteria{Category: "biry"}, want: []string{"Chicken Biryani", "Veg Biryani"}},
		{name: "max price", criteria: Criteria{MaxPrice: floatPtr(200)}, want: []string{"Green Juice", "Spring Rolls"}},
		{name: "vegetarian available", criteria: Criteria{Vegetarian: boolPtr(true), AvailableOnly: true}, want: []string{"Veg Biryani", "Thai Peanut Salad", "Green Juice"}},
		{name: "max spice keeps unknown spice", criteria: Criteria{MaxSpice: intPtr(2)}, want: []string{"Thai Peanut Salad", "Green Juice", "Spring Rolls"}},
		{name: "max calories drops unknown calories", criteria: Criteria{MaxCalories: intPtr(500)}, want: []string{"Thai Peanut Salad", "Spring Rolls"}},
		{name: "allergen either direction", criteria: Criteria{ExcludeAllergens: []string{"Peanut"}}, want: []string{"Chicken Biryani", "Veg Biryani", "Green Juice", "Spring Rolls"}},
		{name: "excluded terms", criteria: Criteria{ExcludeTerms: []string{"biryani"}}, want: []string{"Thai Peanut Salad", "Green Juice", "Spring Rolls"}},
		{name: "min rating", criteria: Criteria{MinRating: 4.5}, want: []string{"Chicken Biryani", "Thai Peanut Salad"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, names(Filter(sampleMenu(), tt.criteria)))
		})
	}
}

func TestSort(t *testing.T) {
	tests := []struct {
		name       string
		key        SortKey
		descending bool
		want       []string
	}{
		{name: "price ascending", key: SortByPrice, want: []string{"Spring Rolls", "Green Juice", "Veg Biryani", "Thai Peanut Salad", "Chicken Biryani"}},
		{name: "rating descending", key: SortByRating, descending: true, want: []string{"Chicken Biryani", "Thai Peanut Salad", "Veg Biryani", "Green Juice", "Spring Rolls"}},
		{name: "calories ascending, unknown last", key: SortByCalories, want: []string{"Spring Rolls", "Thai Peanut Salad", "Veg Biryani", "Chicken Biryani", "Green Juice"}},
		{name: "spice descending, unknown last", key: SortBySpice, descending: true, want: []string{"Chicken Biryani", "Veg Biryani", "Thai Peanut Salad", "Spring Rolls", "Green Juice"}},
		{name: "name", key: SortByName, want: []string{"Chicken Biryani", "Green Juice", "Spring Rolls", "Thai Peanut Salad", "Veg Biryani"}},
		{name: "unknown key keeps order", key: SortKey("popularity"), want: []string{"Chicken Biryani", "Veg Biryani", "Thai Peanut Salad", "Green Juice", "Spring Rolls"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			menu := sampleMenu()
			got := Sort(menu, tt.key, tt.descending)
			assert.Equal(t, tt.want, names(got))
			assert.Equal(t, "Chicken Biryani", menu[0].Name, "input must not be reordered")
		})
	}
}

func TestSort_StableOnTies(t *testing.T) {
	items := []models.MenuItem{
		{Name: "first", Price: 100},
		{Name: "second", Price: 100},
		{Name: "third", Price: 50},
	}
	assert.Equal(t, []string{"third", "first", "second"}, names(Sort(items, SortByPrice, false)))
	assert.Equal(t, []string{"first", "second", "third"}, names(Sort(items, SortByPrice, true)))
}

func TestCheapestAndHighestRated(t *testing.T) {
	assert.Equal(t, []string{"Spring Rolls", "Green Juice"}, names(Cheapest(sampleMenu(), 2)))
	assert.Equal(t, []string{"Chicken Biryani"}, names(HighestRated(sampleMenu(), 1)))
	assert.Len(t, Cheapest(sampleMenu(), 0), 5)
}

func TestCompareItems(t *testing.T) {
	menu := sampleMenu()
	c := CompareItems(menu[0], menu[1])

	assert.Equal(t, "Veg Biryani", c.Cheaper)
	assert.Equal(t, "Chicken Biryani", c.HigherRated)
	assert.Equal(t, "Veg Biryani", c.Lighter)
	assert.Equal(t, "Veg Biryani", c.Milder)
	assert.Equal(t, 60.0, c.PriceDifference)
	assert.Contains(t, c.Summary, "Veg Biryani is cheaper by ₹60")

	same := CompareItems(menu[3], menu[3])
	assert.Empty(t, same.Cheaper)
	assert.Empty(t, same.Lighter)
	assert.Contains(t, same.Summary, "Both cost the same")
}

func TestCompareRestaurants(t *testing.T) {
	a := models.Restaurant{Name: "Paradise", Rating: 4.5, DeliveryTimeMinutes: 35, DeliveryFee: 30, MinOrder: 150}
	b := models.Restaurant{Name: "Green Bowl", Rating: 4.6, DeliveryTimeMinutes: 25, DeliveryFee: 20, MinOrder: 100}

	c := CompareRestaurants(a, b)
	assert.Equal(t, "Green Bowl", c.HigherRated)
	assert.Equal(t, "Green Bowl", c.FasterDelivery)
	assert.Equal(t, "Green Bowl", c.LowerFee)
	assert.Equal(t, "Green Bowl", c.LowerMinOrder)
	assert.NotEmpty(t, c.Summary)

	even := CompareRestaurants(a, a)
	assert.Equal(t, "The two are evenly matched.", even.Summary)
}

func TestNutrition(t *testing.T) {
	menu := sampleMenu()

	info := Nutrition(menu[2])
	assert.Equal(t, CaloriesLight, info.Band)
	assert.Equal(t, []string{"peanuts"}, info.Allergens)
	assert.Contains(t, info.Summary, "380 calories")
	assert.Contains(t, info.Summary, "Contains: peanuts")

	info = Nutrition(menu[0])
	assert.Equal(t, CaloriesHeavy, info.Band)

	info = Nutrition(menu[3])
	require.Nil(t, info.Calories)
	assert.Equal(t, CaloriesUnknown, info.Band)
	assert.Contains(t, info.Summary, "not available")
	assert.Contains(t, info.Summary, "No listed allergens")
}

func TestTimes(t *testing.T) {
	assert.Equal(t, "once", Times(1))
	assert.Equal(t, "2 times", Times(2))
	assert.Equal(t, "0 times", Times(0))
}
