package supervisor

var greetings = []string{
	"Hi there! Hungry? Tell me what you're craving or ask for a recommendation.",
	"Hello! I can help you order food, track deliveries or find something new to try.",
	"Hey! Want your usuals, or shall I suggest something based on your taste?",
}

var helpMessages = []string{
	"Here's what I can do:\n" +
		"- Order: \"order 2 biryanis from Paradise\"\n" +
		"- Cart: \"show my cart\", \"remove the lassi\"\n" +
		"- Track: \"where is my order?\"\n" +
		"- Discover: \"recommend something healthy\", \"what's trending?\"\n" +
		"- Preferences: \"I'm allergic to peanuts\", \"I love Italian food\"",
	"You can ask me to find dishes (\"do you have pizza?\"), compare them (\"compare margherita vs pepperoni\"), " +
		"sort or filter a menu (\"cheapest desserts\", \"veg only at Dragon Wok\") or place and track orders. " +
		"Say \"same as last time\" to repeat your previous order.",
}

const (
	msgApology           = "Sorry, something went wrong on my side. Please try again in a moment."
	msgNoUsuals          = "You don't have any order history yet. Once you've ordered a few times I'll remember your usuals."
	msgNoCombos          = "Add a main course to your cart and I'll suggest drinks and desserts to go with it."
	msgNothingTrending   = "Nothing is trending right now. Try asking for a recommendation instead."
	msgNoMenuMatches     = "No dishes match those filters. Try relaxing them, for example a higher budget or a different category."
	msgCompareItems      = "Which two dishes should I compare? Try \"compare Chicken Biryani and Veg Biryani\"."
	msgCompareRestaurant = "Which two restaurants should I compare? Try \"compare Paradise and Dragon Wok\"."
	msgRestaurantInfo    = "Which restaurant would you like to know about? Try \"tell me about Green Bowl\"."

	msgPreferenceGuidance = "I can remember your preferences. Try saying:\n" +
		"- \"I'm allergic to peanuts\"\n" +
		"- \"I don't like mushrooms\"\n" +
		"- \"I'm vegetarian\"\n" +
		"- \"I love Italian food\"\n" +
		"- \"My address is 12 Park Street\""
	msgNutritionGuidance = "Ask me about a specific dish, for example \"how many calories in the Chicken Biryani?\"."
	msgAllergenGuidance  = "Ask me about a dish or an allergen, for example \"does the Kung Pao Chicken contain peanuts?\" or \"which dishes are gluten-free?\"."
)
