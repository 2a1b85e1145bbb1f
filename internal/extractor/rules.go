package extractor

import (
	"regexp"
	"strings"

	"dialogue-orchestrator/internal/models"
)

// Rule is one lexical check. Rules are evaluated in order and the first
// match decides the intent.
type Rule struct {
	Name   string
	Intent models.Intent
	Match  func(text string) bool
}

func pattern(expr string) func(string) bool {
	re := regexp.MustCompile(expr)
	return re.MatchString
}

var (
	helpRe = pattern(`^(help|help me|help please|i need help|commands)$|` +
		`\bwhat can you do\b|\bhow (do|does) (i|this|it) (use|work)\b|\bwhat are (the|your) (commands|features)\b|\bhow can you help\b`)

	trackRe = pattern(`\btrack\b|\bwhere('s| is) my (order|food|delivery)\b|\border status\b|\bstatus of my order\b|` +
		`\bdelivery status\b|\bwhen will (my order|my food|it) (arrive|come|be delivered)\b|\bhow long (until|till|for) my (order|food)\b`)

	clarifyRe = pattern(`\b(not sure|unsure|i don'?t know|i do not know|idk|confused|what do you mean|no idea|can'?t decide)\b`)

	savePreferenceRe = pattern(`\b(i'?m|i am) allergic to\b|\ballergic to\b|\bi (don'?t|do not|can'?t|cannot) (like|eat)\b|` +
		`\bi (hate|dislike)\b|\b(i'?m|i am) (a )?(vegetarian|vegan|pescatarian)\b|\bi (like|love|prefer|enjoy)\b|` +
		`\bremember (that )?(i|my)\b|\bmy favou?rite (cuisine|food|dish|category) is\b|\bsave (my )?preferences?\b|` +
		`\bmy address is\b|\bset my (default )?address\b|\bmy budget is\b|\bi (want|like) (it|food|things) (mild|spicy|very spicy)\b`)

	allergenRe = pattern(`\ballergens?\b|\bcontains? (any )?(nuts|peanuts?|dairy|milk|gluten|eggs?|soy|sesame|shellfish)\b|` +
		`\b(nut|peanut|gluten|dairy|egg|soy)[- ]free\b|\bsafe for (my )?allerg`)

	nutritionRe = pattern(`\b(calories|calorie|nutrition|nutritional|protein|carbs|kcal|macros)\b|\bhow healthy is\b`)

	compareRe = pattern(`\bcompare\b|\bvs\.?\b|\bversus\b|\bdifference between\b|\bwhich is better\b`)

	restaurantInfoRe = pattern(`\btell me about\b|\binfo(rmation)? (about|on)\b|\bdetails (of|about|for|on)\b|` +
		`\b(opening|open) hours\b|\bdelivery (fee|charge|time)\b|\bminimum order\b|\brating of\b|\bhow (good|far) is\b`)

	usualsRe = pattern(`\b(my|the) usuals?\b|\busuals\b|\bwhat (do|did) i (usually|normally|always) (order|get|eat)\b|` +
		`\bmy regulars\b|\bmy favou?rites\b|\bfrequently ordered\b|\border history\b|\bmy (past|previous) orders\b`)

	wishlistRe = pattern(`\bwish ?list\b|\bsave (it|this|that|them)? ?for later\b|\bsaved items\b|\bbookmark`)

	cartRe = pattern(`\b(cart|basket)\b|^(remove|delete|take out|drop) `)
	// Quantity changes that name a setting rather than a dish.
	settingRe = regexp.MustCompile(`\b(spice|spicy|budget|address|price|limit|level)\b`)

	checkoutRe = pattern(`\bcheck ?out\b|\bplace (my|the|an|this) order\b|\bconfirm (my|the) order\b|\bsame as last time\b|` +
		`\brepeat (my )?(last |previous )?order\b|\breorder\b|\border (it )?again\b|\bpay now\b`)

	sortRe = pattern(`\bsort(ed)?\b|\barrange\b|\brank(ed)? by\b|\border(ed)? by\b|\b(low|high|lowest|highest) to (high|low|lowest|highest)\b`)

	filterRe = pattern(`\bfilter\b|\bonly (show|veg|vegetarian|vegan|non[- ]?veg)\b|\bshow (me )?only\b|\bwithout\b|\bexcluding\b|` +
		`\bveg only\b|\b(vegetarian|vegan|non[- ]?veg|veg) (dishes|options|items|food)\b|\bspice level\b|\bnot spicy\b|\bmild (dishes|options|food)\b`)

	cheapestRe = pattern(`\bcheapest\b|\bleast expensive\b|\blowest price(d)?\b|\bmost affordable\b`)

	highestRatedRe = pattern(`\b(highest|top|best)[- ]rated\b|\bbest reviewed\b|\bhighest rating\b|\bbest rating\b`)

	trendingRe = pattern(`\btrending\b|\bpopular\b|\bwhat'?s hot\b|\bbest ?sellers?\b|\bmost ordered\b|\beveryone('s| is)? ordering\b`)

	combosRe = pattern(`\bcombos?\b|\bgoes? (well )?with\b|\bpair(s|ing)? (well )?with\b|\bcomplete (my|the) meal\b|\bmeal deal\b|\bside dish`)

	healthyRe = pattern(`\bhealth(y|ier)\b|\blow[- ]?cal(orie)?\b|\blight (meal|food|snack)\b|\blow[- ]fat\b|\bnutritious\b|\bguilt[- ]free\b`)

	budgetRe = pattern(`\b(under|below|less than|within|up ?to|max(imum)?)\s*(₹|rs\.?|inr|\$)?\s*\d+|\bbudget\b|\bcheap\b|\bpocket[- ]friendly\b|\baffordable\b`)

	tasteRe = pattern(`\bbased on my (taste|preferences|history|likes)\b|\baccording to my (taste|preferences)\b|\bmy kind of food\b|` +
		`\bsomething i('d| would) (like|enjoy|love)\b|\b(matches|suits) my (taste|preferences)\b`)

	recommendRe = pattern(`\brecommend(ation|ations|ed)?\b|\bsuggest(ion|ions)?\b|\bwhat should i (eat|order|have|get|try)\b|` +
		`\bany ideas\b|\bsurprise me\b|\bi'?m (so )?hungry\b|\bwhat'?s good\b|\bwhat do you (suggest|recommend)\b`)

	orderRe = pattern(`\border\b|\bi want\b|\bi'?d like\b|\bi would like\b|\bget me\b|\bgive me\b|\bbuy\b|\bi'?ll have\b|` +
		`\bcan i (get|have)\b|^add\b|^(\d+|one|two|three|four|five|six|seven|eight|nine|ten) [a-z]`)

	queryRe = pattern(`\b(show|list|find|search|browse)\b|\blook(ing)? for\b|\bdo you have\b|\b(is|are) there\b|\bmenu\b|` +
		`\brestaurants?\b|\bdishes\b|\bwhat (restaurants|dishes|food|items|options)\b|\bwhere can i get\b`)

	greetingRe = pattern(`^(hi|hii+|hello|hey|hiya|howdy|namaste|yo|greetings|good (morning|afternoon|evening))\b`)
)

// buildRules returns the classification rules, most specific first. Later
// rules are broader and would shadow earlier ones if reordered.
func (e *Extractor) buildRules() []Rule {
	return []Rule{
		{Name: "help", Intent: models.IntentHelp, Match: helpRe},
		{Name: "track", Intent: models.IntentTrack, Match: trackRe},
		{Name: "clarify-markers", Intent: models.IntentClarify, Match: clarifyRe},
		{Name: "save-preference", Intent: models.IntentSavePreference, Match: savePreferenceRe},
		{Name: "allergen-check", Intent: models.IntentAllergenCheck, Match: allergenRe},
		{Name: "nutrition-info", Intent: models.IntentNutritionInfo, Match: nutritionRe},
		{Name: "compare-restaurants", Intent: models.IntentCompareRestaurants, Match: e.matchCompareRestaurants},
		{Name: "compare-items", Intent: models.IntentCompareItems, Match: compareRe},
		{Name: "restaurant-info", Intent: models.IntentRestaurantInfo, Match: e.matchRestaurantInfo},
		{Name: "usuals", Intent: models.IntentUsuals, Match: usualsRe},
		{Name: "wishlist", Intent: models.IntentWishlist, Match: wishlistRe},
		{Name: "cart", Intent: models.IntentCart, Match: cartRe},
		{Name: "cart-update", Intent: models.IntentCart, Match: e.matchCartUpdate},
		{Name: "order-checkout-repeat", Intent: models.IntentOrder, Match: checkoutRe},
		{Name: "sort-menu", Intent: models.IntentSortMenu, Match: sortRe},
		{Name: "filter-menu", Intent: models.IntentFilterMenu, Match: filterRe},
		{Name: "cheapest", Intent: models.IntentCheapest, Match: cheapestRe},
		{Name: "highest-rated", Intent: models.IntentHighestRated, Match: highestRatedRe},
		{Name: "trending", Intent: models.IntentTrending, Match: trendingRe},
		{Name: "combos", Intent: models.IntentCombos, Match: combosRe},
		{Name: "healthy-options", Intent: models.IntentHealthyOptions, Match: healthyRe},
		{Name: "suggest-by-budget", Intent: models.IntentSuggestByBudget, Match: budgetRe},
		{Name: "suggest-by-taste", Intent: models.IntentSuggestByTaste, Match: tasteRe},
		{Name: "recommend", Intent: models.IntentRecommend, Match: recommendRe},
		{Name: "order", Intent: models.IntentOrder, Match: orderRe},
		{Name: "query", Intent: models.IntentQuery, Match: queryRe},
		{Name: "greeting", Intent: models.IntentGreeting, Match: greetingRe},
	}
}

// matchCompareRestaurants needs a comparison marker plus either the word
// restaurant or two known restaurant names.
func (e *Extractor) matchCompareRestaurants(text string) bool {
	if !compareRe(text) {
		return false
	}
	if strings.Contains(text, "restaurant") {
		return true
	}
	return len(e.findAll(e.lexicon.Restaurants, text)) >= 2
}

// matchCartUpdate catches "change X to N" without the word cart, as long
// as X reads like a dish.
func (e *Extractor) matchCartUpdate(text string) bool {
	m := updateItemRe.FindStringSubmatch(text)
	if m == nil || settingRe.MatchString(m[1]) {
		return false
	}
	return !vagueNames[e.cleanItemName(m[1])]
}

// matchRestaurantInfo needs an info marker plus a restaurant reference.
func (e *Extractor) matchRestaurantInfo(text string) bool {
	if !restaurantInfoRe(text) {
		return false
	}
	return strings.Contains(text, "restaurant") || len(e.findAll(e.lexicon.Restaurants, text)) > 0
}
