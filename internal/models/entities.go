package models

type Action string

const (
	ActionNone     Action = ""
	ActionAdd      Action = "add"
	ActionRemove   Action = "remove"
	ActionUpdate   Action = "update"
	ActionClear    Action = "clear"
	ActionCheckout Action = "checkout"
	ActionRepeat   Action = "repeat"
)

// IsMutation reports whether the action changes cart or wishlist contents.
func (a Action) IsMutation() bool {
	switch a {
	case ActionAdd, ActionRemove, ActionUpdate, ActionClear:
		return true
	}
	return false
}

type ItemMention struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

// Entities is what the extractor found in an utterance. Zero values and nil
// pointers mean the field was not mentioned.
type Entities struct {
	Restaurant            string        `json:"restaurant,omitempty"`
	RestaurantFromHistory bool          `json:"restaurantFromHistory,omitempty"`
	Items                 []ItemMention `json:"items,omitempty"`
	Budget                *float64      `json:"budget,omitempty"`
	Category              string        `json:"category,omitempty"`
	Cuisine               string        `json:"cuisine,omitempty"`
	SpiceLevel            *int          `json:"spiceLevel,omitempty"`
	Vegetarian            *bool         `json:"vegetarian,omitempty"`
	SortKey               string        `json:"sortKey,omitempty"`
	SortDescending        *bool         `json:"sortDescending,omitempty"`
	OrderID               string        `json:"orderId,omitempty"`
	Action                Action        `json:"action,omitempty"`
	CompareTargets        []string      `json:"compareTargets,omitempty"`
	Address               string        `json:"address,omitempty"`
}

func (e Entities) HasItems() bool {
	return len(e.Items) > 0
}
