package utility

import (
	"fmt"
	"math"
	"strings"

	"dialogue-orchestrator/internal/models"
)

type ItemComparison struct {
	A               models.MenuItem `json:"a"`
	B               models.MenuItem `json:"b"`
	Cheaper         string          `json:"cheaper,omitempty"`
	HigherRated     string          `json:"higherRated,omitempty"`
	Lighter         string          `json:"lighter,omitempty"`
	Milder          string          `json:"milder,omitempty"`
	PriceDifference float64         `json:"priceDifference"`
	Summary         string          `json:"summary"`
}

type RestaurantComparison struct {
	A              models.Restaurant `json:"a"`
	B              models.Restaurant `json:"b"`
	HigherRated    string            `json:"higherRated,omitempty"`
	FasterDelivery string            `json:"fasterDelivery,omitempty"`
	LowerFee       string            `json:"lowerFee,omitempty"`
	LowerMinOrder  string            `json:"lowerMinOrder,omitempty"`
	Summary        string            `json:"summary"`
}

// CompareItems contrasts two menu items. Fields naming a winner are empty
// when the two are equal or data is missing.
func CompareItems(a, b models.MenuItem) ItemComparison {
	c := ItemComparison{
		A:               a,
		B:               b,
		Cheaper:         lowerOf(a.Name, a.Price, b.Name, b.Price),
		HigherRated:     lowerOf(b.Name, -b.Rating, a.Name, -a.Rating),
		PriceDifference: math.Abs(a.Price - b.Price),
	}
	if a.Calories != nil && b.Calories != nil {
		c.Lighter = lowerOf(a.Name, float64(*a.Calories), b.Name, float64(*b.Calories))
	}
	if a.SpiceLevel != nil && b.SpiceLevel != nil {
		c.Milder = lowerOf(a.Name, float64(*a.SpiceLevel), b.Name, float64(*b.SpiceLevel))
	}

	var parts []string
	if c.Cheaper != "" {
		parts = append(parts, fmt.Sprintf("%s is cheaper by ₹%.0f", c.Cheaper, c.PriceDifference))
	} else {
		parts = append(parts, "both cost the same")
	}
	if c.HigherRated != "" {
		parts = append(parts, fmt.Sprintf("%s is rated higher", c.HigherRated))
	}
	if c.Lighter != "" {
		parts = append(parts, fmt.Sprintf("%s has fewer calories", c.Lighter))
	}
	c.Summary = capitalize(strings.Join(parts, "; ")) + "."
	return c
}

func CompareRestaurants(a, b models.Restaurant) RestaurantComparison {
	c := RestaurantComparison{
		A:              a,
		B:              b,
		HigherRated:    lowerOf(b.Name, -b.Rating, a.Name, -a.Rating),
		FasterDelivery: lowerOf(a.Name, float64(a.DeliveryTimeMinutes), b.Name, float64(b.DeliveryTimeMinutes)),
		LowerFee:       lowerOf(a.Name, a.DeliveryFee, b.Name, b.DeliveryFee),
		LowerMinOrder:  lowerOf(a.Name, a.MinOrder, b.Name, b.MinOrder),
	}

	var parts []string
	if c.HigherRated != "" {
		parts = append(parts, fmt.Sprintf("%s is rated higher", c.HigherRated))
	}
	if c.FasterDelivery != "" {
		parts = append(parts, fmt.Sprintf("%s delivers faster", c.FasterDelivery))
	}
	if c.LowerFee != "" {
		parts = append(parts, fmt.Sprintf("%s charges a lower delivery fee", c.LowerFee))
	}
	if len(parts) == 0 {
		c.Summary = "The two are evenly matched."
	} else {
		c.Summary = capitalize(strings.Join(parts, "; ")) + "."
	}
	return c
}

// lowerOf names whichever side has the smaller value, or "" on a tie.
func lowerOf(aName string, a float64, bName string, b float64) string {
	switch {
	case a < b:
		return aName
	case b < a:
		return bName
	}
	return ""
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
