package order

import "dialogue-orchestrator/internal/models"

type Action string

const (
	ActionAddItems Action = "add_items"
	ActionPlace    Action = "place"
	ActionReplay   Action = "replay"
)

// Outcome tags which branch of the agent produced the output.
type Outcome string

const (
	OutcomeAdded             Outcome = "added"
	OutcomePartial           Outcome = "partial"
	OutcomeNoMatch           Outcome = "no_match"
	OutcomeMenu              Outcome = "menu"
	OutcomeRestaurantUnknown Outcome = "restaurant_unknown"
	OutcomeNoMenu            Outcome = "no_menu"
	OutcomeNeedRestaurant    Outcome = "need_restaurant"
	OutcomePlaced            Outcome = "placed"
	OutcomePending           Outcome = "pending"
	OutcomeEmptyCart         Outcome = "empty_cart"
)

type Input struct {
	UserID         string                    `json:"userId"`
	Action         Action                    `json:"action"`
	RestaurantName string                    `json:"restaurantName,omitempty"`
	Items          []models.ItemMention      `json:"items,omitempty"`
	Address        string                    `json:"address,omitempty"`
	Snapshot       *models.LastOrderSnapshot `json:"snapshot,omitempty"`
}

type Output struct {
	Response   string             `json:"response"`
	Outcome    Outcome            `json:"outcome"`
	Restaurant *models.Restaurant `json:"restaurant,omitempty"`
	Matched    []models.CartLine  `json:"matched,omitempty"`
	Unmatched  []string           `json:"unmatched,omitempty"`
	Menu       []models.MenuItem  `json:"menu,omitempty"`
	Orders     []models.Order     `json:"orders,omitempty"`
	Draft      *models.OrderDraft `json:"draft,omitempty"`
}

// Placed reports whether at least one order was written.
func (o *Output) Placed() bool {
	return o.Outcome == OutcomePlaced && len(o.Orders) > 0
}
