package models

import "time"

type PreferenceType string

const (
	PreferenceSpiceLevel PreferenceType = "spice_level"
	PreferenceCuisine    PreferenceType = "cuisine"
	PreferenceDiet       PreferenceType = "diet"
	PreferenceAllergen   PreferenceType = "allergen"
	PreferencePriceRange PreferenceType = "price_range"
	PreferenceCategory   PreferenceType = "category"
	PreferenceDislike    PreferenceType = "dislike"
)

// IsScalar reports whether a preference type holds a single value per user.
// Scalar preferences are keyed by type alone; set preferences by type and value.
func (p PreferenceType) IsScalar() bool {
	return p == PreferenceSpiceLevel || p == PreferencePriceRange
}

// PreferenceKey is the memory key a preference value is stored under.
func PreferenceKey(prefType PreferenceType, value string) string {
	if prefType.IsScalar() {
		return string(prefType)
	}
	return string(prefType) + ":" + value
}

const (
	DefaultSpiceLevel = 3
	DefaultPriceMin   = 0.0
	DefaultPriceMax   = 1000.0
)

type TasteProfile struct {
	UserID             string   `json:"userId"`
	SpiceLevel         int      `json:"spiceLevel"`
	Cuisines           []string `json:"cuisines"`
	Dietary            []string `json:"dietary"`
	Allergens          []string `json:"allergens"`
	PriceMin           float64  `json:"priceMin"`
	PriceMax           float64  `json:"priceMax"`
	FavoriteCategories []string `json:"favoriteCategories"`
	Dislikes           []string `json:"dislikes,omitempty"`
	Inferred           bool     `json:"inferred"`
}

func DefaultTasteProfile(userID string) *TasteProfile {
	return &TasteProfile{
		UserID:             userID,
		SpiceLevel:         DefaultSpiceLevel,
		Cuisines:           []string{},
		Dietary:            []string{},
		Allergens:          []string{},
		PriceMin:           DefaultPriceMin,
		PriceMax:           DefaultPriceMax,
		FavoriteCategories: []string{},
	}
}

// IsVegetarian reports whether the profile carries a vegetarian or vegan diet.
func (p *TasteProfile) IsVegetarian() bool {
	for _, d := range p.Dietary {
		if d == "vegetarian" || d == "vegan" {
			return true
		}
	}
	return false
}

type Usual struct {
	MenuItemID     string    `json:"menuItemId"`
	Name           string    `json:"name"`
	RestaurantID   string    `json:"restaurantId"`
	RestaurantName string    `json:"restaurantName"`
	OrderCount     int       `json:"orderCount"`
	LastOrderedAt  time.Time `json:"lastOrderedAt"`
}
