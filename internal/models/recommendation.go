package models

type RecommendedItem struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	Description    string  `json:"description"`
	Price          float64 `json:"price"`
	RestaurantID   string  `json:"restaurantId"`
	RestaurantName string  `json:"restaurantName"`
	Category       string  `json:"category"`
	Rating         float64 `json:"rating"`
	IsVegetarian   bool    `json:"isVegetarian"`
	SpiceLevel     *int    `json:"spiceLevel,omitempty"`
	Calories       *int    `json:"calories,omitempty"`
	MatchScore     int     `json:"matchScore"`
	MatchReason    string  `json:"matchReason"`
}

// NewRecommendedItem copies the catalog fields of item; score and reason are
// left for the caller.
func NewRecommendedItem(item MenuItem, restaurantName string) RecommendedItem {
	return RecommendedItem{
		ID:             item.ID,
		Name:           item.Name,
		Description:    item.Description,
		Price:          item.Price,
		RestaurantID:   item.RestaurantID,
		RestaurantName: restaurantName,
		Category:       item.Category,
		Rating:         item.Rating,
		IsVegetarian:   item.IsVegetarian,
		SpiceLevel:     item.SpiceLevel,
		Calories:       item.Calories,
	}
}
