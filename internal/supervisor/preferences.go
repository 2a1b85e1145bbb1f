package supervisor

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"dialogue-orchestrator/internal/extractor"
	"dialogue-orchestrator/internal/models"
	"dialogue-orchestrator/internal/utility"
)

var (
	allergicToRe = regexp.MustCompile(`\ballergic to\s+(.+)$`)
	dietRe       = regexp.MustCompile(`\b(?:i'?m|i am) (?:a )?(vegetarian|vegan|pescatarian)\b`)
	dislikeRe    = regexp.MustCompile(`\bi (?:don'?t|do not|can'?t|cannot) (?:like|eat)\s+(.+)$|\bi (?:hate|dislike)\s+(.+)$`)
	favouriteRe  = regexp.MustCompile(`\bmy favou?rite (cuisine|food|dish|category) is\s+(.+)$`)
	likeRe       = regexp.MustCompile(`\bi (?:really )?(?:like|love|prefer|enjoy|want)\s+(.+)$`)
	budgetIsRe   = regexp.MustCompile(`\bmy budget is\s*(?:around |about )?(?:₹|rs\.?|inr)?\s*(\d+)`)

	// clauseEndRe cuts a captured phrase where the next clause starts.
	clauseEndRe = regexp.MustCompile(`\s*(?:\bbut\b|\bso\b|\band i\b|\bbecause\b|[.;!?]).*$`)
	listSplitRe = regexp.MustCompile(`\s*(?:,|/|\band\b|\bor\b|&)\s*`)

	spiceWords     = regexp.MustCompile(`\b(spicy|mild|hot|fiery|spice)\b`)
	allergenWordRe = regexp.MustCompile(`\b(peanuts?|tree nuts|nuts?|dairy|milk|lactose|gluten|wheat|eggs?|soy|sesame|shellfish|fish)\b`)
)

// preference is one memory write derived from an utterance.
type preference struct {
	kind   models.MemoryKind
	key    string
	value  string
	phrase string
}

func newPreference(prefType models.PreferenceType, value, phrase string) preference {
	return preference{
		kind:   models.MemoryPreference,
		key:    models.PreferenceKey(prefType, value),
		value:  value,
		phrase: phrase,
	}
}

// parsePreferences extracts every preference stated in text. text is the
// normalized utterance; raw case is only needed for the address, which the
// extractor already carries in ent.
func parsePreferences(text string, ent models.Entities) []preference {
	var prefs []preference

	if m := allergicToRe.FindStringSubmatch(text); m != nil {
		// Stored under the catalog's allergen names. The confirmation keeps
		// the user's wording.
		terms := splitTerms(m[1])
		first := len(prefs)
		seen := make(map[string]bool, len(terms))
		for _, term := range terms {
			value := normalizeAllergen(term)
			if seen[value] {
				continue
			}
			seen[value] = true
			prefs = append(prefs, newPreference(models.PreferenceAllergen, value, ""))
		}
		if len(prefs) > first {
			prefs[first].phrase = "you're allergic to " + joinPhrases(terms)
		}
	}

	if m := dietRe.FindStringSubmatch(text); m != nil {
		prefs = append(prefs, newPreference(models.PreferenceDiet, m[1], "you're "+m[1]))
	}

	if m := dislikeRe.FindStringSubmatch(text); m != nil {
		phrase := m[1]
		if phrase == "" {
			phrase = m[2]
		}
		terms := splitTerms(phrase)
		for i, term := range terms {
			terms[i] = extractor.Singularize(term)
			prefs = append(prefs, newPreference(models.PreferenceDislike, terms[i], ""))
		}
		if len(terms) > 0 {
			prefs[len(prefs)-len(terms)].phrase = "you don't like " + joinPhrases(terms)
		}
	}

	if m := favouriteRe.FindStringSubmatch(text); m != nil {
		value := cleanTerm(m[2])
		switch {
		case value == "":
		case m[1] == "cuisine" || ent.Cuisine != "":
			if ent.Cuisine != "" {
				value = ent.Cuisine
			}
			prefs = append(prefs, newPreference(models.PreferenceCuisine, value, "your favourite cuisine is "+value))
		default:
			if ent.Category != "" {
				value = ent.Category
			}
			prefs = append(prefs, newPreference(models.PreferenceCategory, value, "you love "+value))
		}
	} else if m := likeRe.FindStringSubmatch(text); m != nil && !dislikeRe.MatchString(text) {
		prefs = append(prefs, likePreference(m[1], ent)...)
	}

	if m := budgetIsRe.FindStringSubmatch(text); m != nil {
		if ceiling, err := strconv.Atoi(m[1]); err == nil && ceiling > 0 {
			prefs = append(prefs, newPreference(models.PreferencePriceRange,
				fmt.Sprintf("0-%d", ceiling), fmt.Sprintf("your budget is ₹%d", ceiling)))
		}
	}

	if ent.Address != "" {
		prefs = append(prefs, preference{
			kind:   models.MemoryDefaultAddress,
			key:    models.DefaultAddressKey,
			value:  ent.Address,
			phrase: "your address is " + ent.Address,
		})
	}
	return prefs
}

func likePreference(phrase string, ent models.Entities) []preference {
	phrase = cleanTerm(phrase)
	switch {
	case phrase == "":
		return nil
	case spiceWords.MatchString(phrase) && ent.SpiceLevel != nil:
		level := strconv.Itoa(*ent.SpiceLevel)
		return []preference{newPreference(models.PreferenceSpiceLevel, level, "you like your food "+spiceDescription(*ent.SpiceLevel))}
	case ent.Cuisine != "":
		return []preference{newPreference(models.PreferenceCuisine, ent.Cuisine, "you love "+ent.Cuisine+" food")}
	case ent.Category != "":
		return []preference{newPreference(models.PreferenceCategory, ent.Category, "you enjoy "+ent.Category)}
	}
	return []preference{newPreference(models.PreferenceCategory, phrase, "you enjoy "+phrase)}
}

func spiceDescription(level int) string {
	switch {
	case level <= 1:
		return "mild"
	case level <= 3:
		return "medium spicy"
	}
	return "spicy"
}

func splitTerms(phrase string) []string {
	phrase = clauseEndRe.ReplaceAllString(phrase, "")
	var terms []string
	for _, part := range listSplitRe.Split(phrase, -1) {
		if term := cleanTerm(part); term != "" {
			terms = append(terms, term)
		}
	}
	return terms
}

func cleanTerm(s string) string {
	s = clauseEndRe.ReplaceAllString(strings.TrimSpace(s), "")
	for _, prefix := range []string{"eating ", "having ", "the ", "a ", "an ", "any ", "some ", "all "} {
		s = strings.TrimPrefix(s, prefix)
	}
	for _, suffix := range []string{" food", " dishes", " very much", " a lot", " please", " too"} {
		s = strings.TrimSuffix(s, suffix)
	}
	return strings.TrimSpace(s)
}

// joinPhrases renders "a", "a and b" or "a, b and c".
func joinPhrases(parts []string) string {
	switch len(parts) {
	case 0:
		return ""
	case 1:
		return parts[0]
	}
	return strings.Join(parts[:len(parts)-1], ", ") + " and " + parts[len(parts)-1]
}

func (s *Supervisor) savePreference(ctx context.Context, t turn) models.OrchestrationResult {
	prefs := parsePreferences(t.text, t.entities)
	if len(prefs) == 0 {
		return reply(models.ResultGuidance, msgPreferenceGuidance)
	}

	var phrases []string
	hasAllergy := false
	for _, p := range prefs {
		if err := s.deps.Memory.Set(ctx, t.userID, p.kind, p.key, p.value); err != nil {
			// The user still gets a confirmation. The memory layer already
			// counted the failure.
			s.logger.Warn("preference not saved", map[string]interface{}{
				"userId": t.userID,
				"kind":   p.kind,
				"key":    p.key,
				"error":  err.Error(),
			})
		}
		if p.phrase != "" {
			phrases = append(phrases, p.phrase)
		}
		if strings.HasPrefix(p.key, string(models.PreferenceAllergen)+":") {
			hasAllergy = true
		}
	}

	response := "Got it! I'll remember that " + joinPhrases(phrases) + "."
	if hasAllergy {
		response += " I'll keep dishes containing that out of your recommendations."
	}
	return models.OrchestrationResult{Type: models.ResultPreferenceSaved, Response: response, Data: prefsData(prefs)}
}

func prefsData(prefs []preference) map[string]string {
	out := make(map[string]string, len(prefs))
	for _, p := range prefs {
		out[p.key] = p.value
	}
	return out
}

func (s *Supervisor) nutrition(ctx context.Context, t turn) models.OrchestrationResult {
	item, ok, err := s.findItem(ctx, t)
	if err != nil {
		return s.fail(ctx, agentCatalog, t, err)
	}
	if !ok {
		return reply(models.ResultGuidance, msgNutritionGuidance)
	}
	info := utility.Nutrition(item)
	return models.OrchestrationResult{Type: models.ResultNutrition, Response: info.Summary, Data: info}
}

func (s *Supervisor) allergenCheck(ctx context.Context, t turn) models.OrchestrationResult {
	allergen := allergenMention(t.text)
	item, ok, err := s.findItem(ctx, t)
	if err != nil {
		return s.fail(ctx, agentCatalog, t, err)
	}

	if ok {
		var b strings.Builder
		switch {
		case allergen != "" && item.ContainsAllergen(allergen):
			fmt.Fprintf(&b, "Yes, %s contains %s.", item.Name, allergen)
		case allergen != "":
			fmt.Fprintf(&b, "No, %s doesn't list %s as an allergen.", item.Name, allergen)
		case len(item.Allergens) > 0:
			fmt.Fprintf(&b, "%s contains %s.", item.Name, joinPhrases(item.Allergens))
		default:
			fmt.Fprintf(&b, "%s has no listed allergens.", item.Name)
		}
		profile := s.deps.Profiles.Build(ctx, t.userID)
		for _, a := range profile.Allergens {
			if item.ContainsAllergen(a) {
				fmt.Fprintf(&b, " Heads up: you told me you're allergic to %s.", a)
				break
			}
		}
		return models.OrchestrationResult{Type: models.ResultAllergen, Response: b.String(), Data: utility.Nutrition(item)}
	}

	if allergen == "" {
		return reply(models.ResultGuidance, msgAllergenGuidance)
	}
	safe, names, err := s.menuWithout(ctx, allergen)
	if err != nil {
		return s.fail(ctx, agentCatalog, t, err)
	}
	if len(safe) == 0 {
		return reply(models.ResultAllergen, fmt.Sprintf("Every available dish lists %s, sorry.", allergen))
	}
	return models.OrchestrationResult{
		Type:     models.ResultAllergen,
		Response: fmt.Sprintf("Dishes without %s:\n%s", allergen, renderMenuItems(safe, names, true, s.config.MenuLimit)),
		Data:     safe,
	}
}

// allergenMention returns the allergen named in text, normalized so that
// "milk" and "lactose" check for dairy.
func allergenMention(text string) string {
	m := allergenWordRe.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return normalizeAllergen(m[1])
}

// normalizeAllergen maps common synonyms onto the names menu items list.
// Unknown terms pass through unchanged.
func normalizeAllergen(term string) string {
	switch term {
	case "milk", "lactose", "milk products":
		return "dairy"
	case "wheat":
		return "gluten"
	case "nut", "tree nut", "tree nuts":
		return "nuts"
	case "peanut":
		return "peanuts"
	case "egg":
		return "eggs"
	}
	return term
}
