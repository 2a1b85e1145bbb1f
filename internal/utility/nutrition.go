package utility

import (
	"fmt"
	"strings"

	"dialogue-orchestrator/internal/models"
)

type CalorieBand string

const (
	CaloriesUnknown  CalorieBand = "unknown"
	CaloriesLight    CalorieBand = "light"
	CaloriesModerate CalorieBand = "moderate"
	CaloriesHeavy    CalorieBand = "heavy"
)

type NutritionInfo struct {
	ItemID       string      `json:"itemId"`
	Name         string      `json:"name"`
	Calories     *int        `json:"calories,omitempty"`
	Band         CalorieBand `json:"band"`
	IsVegetarian bool        `json:"isVegetarian"`
	SpiceLevel   *int        `json:"spiceLevel,omitempty"`
	Allergens    []string    `json:"allergens"`
	Summary      string      `json:"summary"`
}

func Nutrition(item models.MenuItem) NutritionInfo {
	info := NutritionInfo{
		ItemID:       item.ID,
		Name:         item.Name,
		Calories:     item.Calories,
		Band:         bandFor(item.Calories),
		IsVegetarian: item.IsVegetarian,
		SpiceLevel:   item.SpiceLevel,
		Allergens:    append([]string{}, item.Allergens...),
	}

	var b strings.Builder
	if item.Calories != nil {
		fmt.Fprintf(&b, "%s has about %d calories (%s)", item.Name, *item.Calories, info.Band)
	} else {
		fmt.Fprintf(&b, "Calorie information for %s is not available", item.Name)
	}
	if item.IsVegetarian {
		b.WriteString(", vegetarian")
	}
	if len(item.Allergens) > 0 {
		fmt.Fprintf(&b, ". Contains: %s", strings.Join(item.Allergens, ", "))
	} else {
		b.WriteString(". No listed allergens")
	}
	b.WriteString(".")
	info.Summary = b.String()
	return info
}

func bandFor(calories *int) CalorieBand {
	switch {
	case calories == nil:
		return CaloriesUnknown
	case *calories < 400:
		return CaloriesLight
	case *calories < 700:
		return CaloriesModerate
	}
	return CaloriesHeavy
}
