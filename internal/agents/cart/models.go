package cart

import "dialogue-orchestrator/internal/models"

type Input struct {
	UserID       string               `json:"userId"`
	Action       models.Action        `json:"action,omitempty"`
	Items        []models.ItemMention `json:"items,omitempty"`
	RestaurantID string               `json:"restaurantId,omitempty"`
}

type Output struct {
	Response  string            `json:"response"`
	Action    models.Action     `json:"action,omitempty"`
	Lines     []models.CartLine `json:"lines"`
	Total     float64           `json:"total"`
	Changed   []string          `json:"changed,omitempty"`
	Unmatched []string          `json:"unmatched,omitempty"`
}
