package models

import "strings"

type Restaurant struct {
	ID                  string  `json:"id"`
	Name                string  `json:"name"`
	Cuisine             string  `json:"cuisine"`
	Rating              float64 `json:"rating"`
	DeliveryTimeMinutes int     `json:"deliveryTimeMinutes"`
	DeliveryFee         float64 `json:"deliveryFee"`
	MinOrder            float64 `json:"minOrder"`
}

type MenuItem struct {
	ID           string   `json:"id"`
	RestaurantID string   `json:"restaurantId"`
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Price        float64  `json:"price"`
	Category     string   `json:"category"`
	Rating       float64  `json:"rating"`
	IsVegetarian bool     `json:"isVegetarian"`
	SpiceLevel   *int     `json:"spiceLevel,omitempty"`
	Calories     *int     `json:"calories,omitempty"`
	Allergens    []string `json:"allergens,omitempty"`
	Available    bool     `json:"available"`
}

// ContainsAllergen matches case-insensitively in either direction so that
// "peanut" and "peanuts" are treated as the same allergen.
func (m MenuItem) ContainsAllergen(allergen string) bool {
	a := strings.ToLower(strings.TrimSpace(allergen))
	if a == "" {
		return false
	}
	for _, itemAllergen := range m.Allergens {
		ia := strings.ToLower(strings.TrimSpace(itemAllergen))
		if ia == "" {
			continue
		}
		if strings.Contains(ia, a) || strings.Contains(a, ia) {
			return true
		}
	}
	return false
}
