package query

import "dialogue-orchestrator/internal/models"

type Input struct {
	UserID     string   `json:"userId,omitempty"`
	Utterance  string   `json:"utterance"`
	Restaurant string   `json:"restaurant,omitempty"`
	Category   string   `json:"category,omitempty"`
	Cuisine    string   `json:"cuisine,omitempty"`
	Vegetarian *bool    `json:"vegetarian,omitempty"`
	MaxPrice   *float64 `json:"maxPrice,omitempty"`
}

const (
	SourceCatalog = "catalog"
	SourceSearch  = "search"
	SourceCache   = "cache"
)

type Output struct {
	Response    string              `json:"response"`
	Type        models.ResultType   `json:"type"`
	Terms       string              `json:"terms,omitempty"`
	Restaurant  *models.Restaurant  `json:"restaurant,omitempty"`
	Restaurants []models.Restaurant `json:"restaurants,omitempty"`
	MenuItems   []models.MenuItem   `json:"menuItems,omitempty"`
	Source      string              `json:"source"`
}
