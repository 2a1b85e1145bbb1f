package extractor

import (
	"regexp"
	"strconv"
	"strings"

	"dialogue-orchestrator/internal/models"
)

var wordNumbers = map[string]int{
	"a": 1, "an": 1, "one": 1, "two": 2, "three": 3, "four": 4, "five": 5,
	"six": 6, "seven": 7, "eight": 8, "nine": 9, "ten": 10,
}

var (
	currencyRe = regexp.MustCompile(`(?:₹|\brs\.?|\binr|\$)\s*(\d+(?:\.\d+)?)|(\d+(?:\.\d+)?)\s*(?:rupees|rs\b|inr\b|bucks|dollars)`)
	ceilingRe  = regexp.MustCompile(`\b(?:under|below|less than|within|up ?to|max(?:imum)?|budget(?: of| is)?)\s*(?:₹|rs\.?|inr|\$)?\s*(\d+(?:\.\d+)?)`)

	fromClauseRe = regexp.MustCompile(`\b(?:from|at)\s+(?:the\s+)?([a-z0-9'& ]+?)(?:\s+(?:please|now|today|tonight|for|with|and|to)\b|,|$)`)
	segmentSepRe = regexp.MustCompile(`,|\s+and\s+|\s+&\s+|\s+plus\s+|\s+also\s+`)
	leadVerbRe   = regexp.MustCompile(`^(?:please |can you |could you |i want to |i'd like to |i would like to |i want |i'd like |i would like |` +
		`i'll have |ill have |get me |give me |order |add |remove |delete |put |buy |also |take out |drop |me |some |to )+`)
	trailNoiseRe = regexp.MustCompile(`\s+(?:(?:to|in|into|from|on)\s+)?(?:my |the )?(?:cart|basket|wishlist|wish list|order)$|\s+(?:please|now|today|too|as well)$`)
	quantityRe   = regexp.MustCompile(`^(\d+|one|two|three|four|five|six|seven|eight|nine|ten|a|an)\s+(?:x\s+)?(.+)$`)
	updateItemRe = regexp.MustCompile(`\b(?:change|update|set|make|increase|decrease|reduce)\s+(?:the\s+)?(.+?)\s+(?:quantity\s+)?to\s+(\d+|one|two|three|four|five|six|seven|eight|nine|ten)\b`)
	determinerRe = regexp.MustCompile(`^(?:the|my|some|a|an|of)\s+`)

	orderIDRe     = regexp.MustCompile(`\b([0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12})\b|#\s*([a-z0-9-]{3,})|\border\s+(?:id|no\.?|number)\s*:?\s*([a-z0-9-]{3,})`)
	spiceNumberRe = regexp.MustCompile(`\bspice(?: level)?(?: of| is| to)?\s*([1-5])\b`)
	addressRe     = regexp.MustCompile(`(?i)\b(?:deliver(?:y)?(?: it)? to|my address is|send (?:it )?to|address:)\s+(.+?)\s*[.!]*$`)
	fromWordRe    = regexp.MustCompile(`\b(from|at)\b`)
	nonVegRe      = regexp.MustCompile(`\bnon[- ]?veg(etarian)?\b`)
	vegRe         = regexp.MustCompile(`\b(veg|vegetarian|vegan|pure veg|veggie)\b`)

	clearActionRe    = regexp.MustCompile(`\b(clear|empty|reset)\b|\b(remove|delete) (all|everything)\b`)
	repeatActionRe   = regexp.MustCompile(`\bsame as last time\b|\brepeat\b|\breorder\b|\border (it )?again\b`)
	checkoutActionRe = regexp.MustCompile(`\bcheck ?out\b|\bplace (my|the|an|this) order\b|\bconfirm (my|the) order\b|\bpay now\b`)
	removeActionRe   = regexp.MustCompile(`\b(remove|delete|take out|drop|get rid of)\b`)
	updateActionRe   = regexp.MustCompile(`\b(update|change|modify|increase|decrease|reduce|set)\b|\bmake (it|that)\b`)
	addActionRe      = regexp.MustCompile(`\b(add|put|include|throw in)\b|\bsave\b.*\b(wish ?list|for later)\b`)

	compareRes = []*regexp.Regexp{
		regexp.MustCompile(`\bcompare\s+(?:the\s+)?(.+?)\s+(?:and|with|vs\.?|versus|to)\s+(?:the\s+)?(.+)$`),
		regexp.MustCompile(`\bdifference between\s+(?:the\s+)?(.+?)\s+and\s+(?:the\s+)?(.+)$`),
		regexp.MustCompile(`\bwhich is better,?\s+(?:the\s+)?(.+?)\s+or\s+(?:the\s+)?(.+)$`),
		regexp.MustCompile(`^(?:the\s+)?(.+?)\s+(?:vs\.?|versus)\s+(?:the\s+)?(.+)$`),
	}
)

// vagueNames never count as item mentions.
var vagueNames = map[string]bool{
	"": true, "it": true, "that": true, "this": true, "them": true, "something": true, "anything": true,
	"food": true, "stuff": true, "meal": true, "order": true, "items": true, "item": true, "everything": true,
	"all": true, "menu": true, "cart": true, "status": true, "more": true, "same": true, "the same": true,
	"usual": true, "my usual": true, "again": true, "food for me": true,
}

var vagueLead = map[string]bool{
	"something": true, "anything": true, "whatever": true, "stuff": true, "food": true,
}

var notRestaurant = map[string]bool{
	"menu": true, "the menu": true, "cart": true, "my cart": true, "home": true, "here": true, "there": true,
	"wishlist": true, "my wishlist": true, "last time": true, "my place": true, "work": true, "office": true,
}

var categoryAliases = map[string]string{
	"drink": "beverage", "drinks": "beverage", "beverages": "beverage", "juice": "beverage",
	"sweet": "dessert", "sweets": "dessert", "desserts": "dessert",
	"appetizer": "starter", "appetizers": "starter", "starters": "starter", "snack": "starter", "snacks": "starter",
	"mains": "main course", "main": "main course",
}

func (e *Extractor) entities(raw, text string, history models.Conversation) models.Entities {
	ent := models.Entities{
		Budget:         extractBudget(text),
		SpiceLevel:     extractSpice(text),
		Vegetarian:     extractVegetarian(text),
		OrderID:        extractOrderID(text),
		Action:         extractAction(text),
		CompareTargets: extractCompareTargets(text),
		Address:        extractAddress(raw),
	}
	ent.SortKey, ent.SortDescending = extractSort(text)

	ent.Restaurant = e.findFirst(e.lexicon.Restaurants, text)
	if ent.Restaurant == "" {
		ent.Restaurant = extractFromClause(text)
	}
	if ent.Restaurant == "" {
		if r := e.restaurantFromHistory(history); r != "" {
			ent.Restaurant = r
			ent.RestaurantFromHistory = true
		}
	}

	ent.Cuisine = e.findFirst(e.lexicon.Cuisines, text)
	ent.Category = e.extractCategory(text)
	ent.Items = e.extractItems(text)
	return ent
}

func (e *Extractor) restaurantFromHistory(history models.Conversation) string {
	recent := history.Recent(HistoryWindow)
	for i := len(recent) - 1; i >= 0; i-- {
		if r := e.findLast(e.lexicon.Restaurants, Normalize(recent[i].Content)); r != "" {
			return r
		}
	}
	return ""
}

func extractFromClause(text string) string {
	m := fromClauseRe.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	name := strings.TrimSpace(m[1])
	if notRestaurant[name] || vagueNames[name] {
		return ""
	}
	if _, err := strconv.Atoi(name); err == nil {
		return ""
	}
	return name
}

func extractBudget(text string) *float64 {
	for _, re := range []*regexp.Regexp{ceilingRe, currencyRe} {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		for _, g := range m[1:] {
			if g == "" {
				continue
			}
			if v, err := strconv.ParseFloat(g, 64); err == nil && v > 0 {
				return &v
			}
		}
	}
	return nil
}

func extractSpice(text string) *int {
	level := 0
	if m := spiceNumberRe.FindStringSubmatch(text); m != nil {
		level, _ = strconv.Atoi(m[1])
	} else {
		switch {
		case containsAny(text, "very spicy", "extra spicy", "extra hot", "fiery", "super spicy"):
			level = 5
		case containsAny(text, "not spicy", "no spice", "less spicy", "non spicy", "non-spicy", "mild"):
			level = 1
		case containsAny(text, "medium spicy", "medium spice", "bit spicy", "little spicy"):
			level = 3
		case containsWord(text, "spicy") || containsWord(text, "hot"):
			level = 4
		}
	}
	if level == 0 {
		return nil
	}
	return &level
}

func extractVegetarian(text string) *bool {
	var v bool
	switch {
	case nonVegRe.MatchString(text):
		v = false
	case vegRe.MatchString(text):
		v = true
	default:
		return nil
	}
	return &v
}

func extractSort(text string) (string, *bool) {
	key := ""
	switch {
	case containsAny(text, "price", "cheap", "expensive", "cost"):
		key = "price"
	case containsAny(text, "rating", "rated", "reviews"):
		key = "rating"
	case containsAny(text, "calorie"):
		key = "calories"
	case containsAny(text, "spice", "spicy"):
		key = "spice"
	case containsAny(text, "alphabetical", "by name", "a to z", "a-z"):
		key = "name"
	}

	var desc *bool
	setDesc := func(v bool) { desc = &v }
	switch {
	case containsAny(text, "high to low", "highest to lowest", "descending", "most expensive first", "highest first"):
		setDesc(true)
	case containsAny(text, "low to high", "lowest to highest", "ascending", "cheapest first", "lowest first"):
		setDesc(false)
	}
	return key, desc
}

func extractOrderID(text string) string {
	m := orderIDRe.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	for _, g := range m[1:] {
		if g != "" {
			return g
		}
	}
	return ""
}

func extractAction(text string) models.Action {
	switch {
	case clearActionRe.MatchString(text):
		return models.ActionClear
	case repeatActionRe.MatchString(text):
		return models.ActionRepeat
	case checkoutActionRe.MatchString(text):
		return models.ActionCheckout
	case removeActionRe.MatchString(text):
		return models.ActionRemove
	case updateActionRe.MatchString(text):
		return models.ActionUpdate
	case addActionRe.MatchString(text):
		return models.ActionAdd
	}
	return models.ActionNone
}

func extractCompareTargets(text string) []string {
	for _, re := range compareRes {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		a, b := cleanTarget(m[1]), cleanTarget(m[2])
		if a != "" && b != "" && a != b {
			return []string{a, b}
		}
	}
	return nil
}

func cleanTarget(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "the ")
	s = strings.TrimSuffix(s, " restaurant")
	s = strings.TrimSuffix(s, " restaurants")
	return strings.TrimSpace(strings.Trim(s, `"'?`))
}

func extractAddress(raw string) string {
	m := addressRe.FindStringSubmatch(strings.TrimSpace(raw))
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}

func (e *Extractor) extractCategory(text string) string {
	if c := e.findFirst(e.lexicon.Categories, text); c != "" {
		return c
	}
	for _, word := range strings.Fields(text) {
		if c, ok := categoryAliases[word]; ok {
			return c
		}
	}
	return ""
}

// extractItems finds quantity and name pairs. An explicit "set X to N"
// wins; otherwise the utterance is split on conjunctions and each segment
// after an ordering verb, or with a leading quantity, yields one mention.
func (e *Extractor) extractItems(text string) []models.ItemMention {
	if m := updateItemRe.FindStringSubmatch(text); m != nil {
		name := e.cleanItemName(m[1])
		if !vagueNames[name] {
			return []models.ItemMention{{Name: name, Quantity: parseQuantity(m[2])}}
		}
	}

	var items []models.ItemMention
	hadVerb := false
	for _, seg := range segmentSepRe.Split(text, -1) {
		seg = strings.TrimSpace(seg)
		if i := fromWordRe.FindStringIndex(seg); i != nil {
			seg = strings.TrimSpace(seg[:i[0]])
		}
		stripped := leadVerbRe.ReplaceAllString(seg, "")
		if stripped != seg {
			hadVerb = true
		}
		stripped = strings.TrimSpace(trailNoiseRe.ReplaceAllString(stripped, ""))

		qty := 0
		name := stripped
		if m := quantityRe.FindStringSubmatch(stripped); m != nil {
			qty = parseQuantity(m[1])
			name = m[2]
		}
		if qty == 0 {
			if !hadVerb {
				continue
			}
			qty = 1
		}
		name = e.cleanItemName(name)
		if vagueNames[name] || vagueLead[firstWord(name)] || e.isRestaurant(name) {
			continue
		}
		items = append(items, models.ItemMention{Name: name, Quantity: qty})
	}
	return items
}

func (e *Extractor) cleanItemName(name string) string {
	name = strings.TrimSpace(name)
	for {
		next := determinerRe.ReplaceAllString(name, "")
		if next == name {
			break
		}
		name = next
	}
	name = strings.TrimSpace(trailNoiseRe.ReplaceAllString(name, ""))
	return Singularize(name)
}

func (e *Extractor) isRestaurant(name string) bool {
	for _, r := range e.lexicon.Restaurants {
		if r == name {
			return true
		}
	}
	return false
}

func parseQuantity(s string) int {
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return wordNumbers[s]
}

// Singularize turns the last word of name into its singular form using
// plain English suffix rules.
func Singularize(name string) string {
	words := strings.Fields(name)
	if len(words) == 0 {
		return ""
	}
	last := words[len(words)-1]
	switch {
	case len(last) > 4 && strings.HasSuffix(last, "ies"):
		last = last[:len(last)-3] + "y"
	case strings.HasSuffix(last, "ches"), strings.HasSuffix(last, "shes"),
		strings.HasSuffix(last, "sses"), strings.HasSuffix(last, "xes"):
		last = last[:len(last)-2]
	case len(last) > 3 && strings.HasSuffix(last, "s") && !strings.HasSuffix(last, "ss") && !strings.HasSuffix(last, "us"):
		last = last[:len(last)-1]
	}
	words[len(words)-1] = last
	return strings.Join(words, " ")
}

func firstWord(s string) string {
	if i := strings.IndexByte(s, ' '); i >= 0 {
		return s[:i]
	}
	return s
}

func containsAny(text string, terms ...string) bool {
	for _, t := range terms {
		if strings.Contains(text, t) {
			return true
		}
	}
	return false
}

func containsWord(text, word string) bool {
	for _, w := range strings.Fields(text) {
		if w == word {
			return true
		}
	}
	return false
}
