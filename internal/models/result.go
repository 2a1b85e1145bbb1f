package models

type ResultType string

const (
	ResultText            ResultType = "text"
	ResultGreeting        ResultType = "greeting"
	ResultHelp            ResultType = "help"
	ResultUsuals          ResultType = "usuals"
	ResultRecommendations ResultType = "recommendations"
	ResultMenu            ResultType = "menu"
	ResultMenuItems       ResultType = "menu_items"
	ResultRestaurants     ResultType = "restaurants"
	ResultRestaurantInfo  ResultType = "restaurant_info"
	ResultCart            ResultType = "cart"
	ResultWishlist        ResultType = "wishlist"
	ResultOrderPlaced     ResultType = "order_placed"
	ResultOrderPending    ResultType = "order_pending"
	ResultTracking        ResultType = "tracking"
	ResultComparison      ResultType = "comparison"
	ResultNutrition       ResultType = "nutrition"
	ResultAllergen        ResultType = "allergen"
	ResultPreferenceSaved ResultType = "preference_saved"
	ResultGuidance        ResultType = "guidance"
	ResultClarification   ResultType = "clarification"
	ResultNotFound        ResultType = "not_found"
	ResultChatFallback    ResultType = "chat_fallback"
	ResultError           ResultType = "error"
)

// OrchestrationResult is the only value the supervisor hands back to callers.
// An empty Response with Type ResultChatFallback means the caller must forward
// the turn to the open-ended chat capability.
type OrchestrationResult struct {
	Type            ResultType  `json:"type"`
	Response        string      `json:"response"`
	Intent          *Intent     `json:"intent,omitempty"`
	Data            interface{} `json:"data,omitempty"`
	OrderInProgress *OrderDraft `json:"orderInProgress,omitempty"`
}

func (r OrchestrationResult) NeedsChatFallback() bool {
	return r.Response == ""
}
