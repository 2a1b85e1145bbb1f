package models

type Intent string

const (
	IntentGreeting           Intent = "greeting"
	IntentHelp               Intent = "help"
	IntentUsuals             Intent = "usuals"
	IntentOrder              Intent = "order"
	IntentTrack              Intent = "track"
	IntentCart               Intent = "cart"
	IntentWishlist           Intent = "wishlist"
	IntentQuery              Intent = "query"
	IntentClarify            Intent = "clarify"
	IntentRecommend          Intent = "recommend"
	IntentSuggestByTaste     Intent = "suggest_by_taste"
	IntentSuggestByBudget    Intent = "suggest_by_budget"
	IntentTrending           Intent = "trending"
	IntentHealthyOptions     Intent = "healthy_options"
	IntentCombos             Intent = "combos"
	IntentNutritionInfo      Intent = "nutrition_info"
	IntentAllergenCheck      Intent = "allergen_check"
	IntentSavePreference     Intent = "save_preference"
	IntentCompareItems       Intent = "compare_items"
	IntentCompareRestaurants Intent = "compare_restaurants"
	IntentSortMenu           Intent = "sort_menu"
	IntentFilterMenu         Intent = "filter_menu"
	IntentCheapest           Intent = "cheapest"
	IntentHighestRated       Intent = "highest_rated"
	IntentRestaurantInfo     Intent = "restaurant_info"
	IntentConversation       Intent = "conversation"
)

// AllIntents lists every intent the extractor can emit.
var AllIntents = []Intent{
	IntentGreeting, IntentHelp, IntentUsuals, IntentOrder, IntentTrack, IntentCart,
	IntentWishlist, IntentQuery, IntentClarify, IntentRecommend, IntentSuggestByTaste,
	IntentSuggestByBudget, IntentTrending, IntentHealthyOptions, IntentCombos,
	IntentNutritionInfo, IntentAllergenCheck, IntentSavePreference, IntentCompareItems,
	IntentCompareRestaurants, IntentSortMenu, IntentFilterMenu, IntentCheapest,
	IntentHighestRated, IntentRestaurantInfo, IntentConversation,
}

func (i Intent) String() string {
	return string(i)
}
