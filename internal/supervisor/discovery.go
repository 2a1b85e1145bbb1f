package supervisor

import (
	"context"
	"fmt"
	"strings"

	"dialogue-orchestrator/internal/models"
	"dialogue-orchestrator/internal/recommendation"
	"dialogue-orchestrator/internal/utility"
)

const (
	agentProfile        = "profile"
	agentRecommendation = "recommendation"

	// usualsFetchLimit is how many distinct dishes are aggregated before the
	// rendered list is capped by Config.UsualsLimit.
	usualsFetchLimit = 10

	// Requests for spice at or below this level are treated as a ceiling.
	mildSpiceCeiling = 2
)

func (s *Supervisor) usuals(ctx context.Context, t turn) models.OrchestrationResult {
	usuals, err := s.deps.Profiles.Usuals(ctx, t.userID, usualsFetchLimit)
	if err != nil {
		return s.fail(ctx, agentProfile, t, err)
	}
	if len(usuals) == 0 {
		return reply(models.ResultUsuals, msgNoUsuals)
	}
	if len(usuals) > s.config.UsualsLimit {
		usuals = usuals[:s.config.UsualsLimit]
	}

	var b strings.Builder
	b.WriteString("Your usuals:")
	for i, u := range usuals {
		fmt.Fprintf(&b, "\n%d. %s from %s (ordered %s)", i+1, u.Name, u.RestaurantName, utility.Times(u.OrderCount))
	}
	b.WriteString("\nSay \"same as last time\" to reorder your most recent meal.")
	return models.OrchestrationResult{Type: models.ResultUsuals, Response: b.String(), Data: usuals}
}

func (s *Supervisor) recommend(ctx context.Context, t turn) models.OrchestrationResult {
	opts := recommendation.Options{
		Budget:     t.entities.Budget,
		Category:   t.entities.Category,
		Cuisine:    t.entities.Cuisine,
		Vegetarian: t.entities.Vegetarian,
		Healthy:    t.intent == models.IntentHealthyOptions,
		Limit:      s.config.RecommendationLimit,
	}
	if lvl := t.entities.SpiceLevel; lvl != nil && *lvl <= mildSpiceCeiling {
		opts.MaxSpice = lvl
	}
	// A "healthy" cuisine term belongs to the healthy intent, not a cuisine filter.
	if opts.Healthy && strings.EqualFold(opts.Cuisine, "healthy") {
		opts.Cuisine = ""
	}

	recs, err := s.deps.Recommender.Recommend(ctx, t.userID, opts)
	if err != nil {
		return s.fail(ctx, agentRecommendation, t, err)
	}
	if len(recs) == 0 {
		return reply(models.ResultRecommendations, noRecommendations(opts))
	}

	heading := "Here are some picks for you:"
	switch {
	case opts.Healthy:
		heading = "Here are some lighter, healthier picks:"
	case opts.Budget != nil:
		heading = fmt.Sprintf("Here's what you can get under ₹%.0f:", *opts.Budget)
	case t.intent == models.IntentSuggestByTaste:
		heading = "Based on your taste, you might enjoy:"
	}
	return models.OrchestrationResult{
		Type:     models.ResultRecommendations,
		Response: heading + "\n" + renderRecommendations(recs, true),
		Data:     recs,
	}
}

func noRecommendations(opts recommendation.Options) string {
	if opts.Budget != nil {
		return fmt.Sprintf("I couldn't find anything under ₹%.0f that fits your preferences. "+
			"Try adjusting your budget or filters.", *opts.Budget)
	}
	return "I couldn't find anything that fits your preferences right now. Try adjusting your filters."
}

func (s *Supervisor) trending(ctx context.Context, t turn) models.OrchestrationResult {
	recs, err := s.deps.Recommender.Trending(ctx, s.config.RecommendationLimit)
	if err != nil {
		return s.fail(ctx, agentRecommendation, t, err)
	}
	if len(recs) == 0 {
		return reply(models.ResultRecommendations, msgNothingTrending)
	}
	return models.OrchestrationResult{
		Type:     models.ResultRecommendations,
		Response: "Trending this week:\n" + renderRecommendations(recs, false),
		Data:     recs,
	}
}

func (s *Supervisor) combos(ctx context.Context, t turn) models.OrchestrationResult {
	lines, err := s.deps.Carts.ListCart(ctx, t.userID)
	if err != nil {
		return s.fail(ctx, agentRecommendation, t, err)
	}
	recs, err := s.deps.Recommender.ComboSuggestions(ctx, lines)
	if err != nil {
		return s.fail(ctx, agentRecommendation, t, err)
	}
	if len(recs) == 0 {
		return reply(models.ResultRecommendations, msgNoCombos)
	}
	return models.OrchestrationResult{
		Type:     models.ResultRecommendations,
		Response: "These would go nicely with your order:\n" + renderRecommendations(recs, false),
		Data:     recs,
	}
}

// renderRecommendations numbers each pick. withScore adds the match
// percentage in front of the reason.
func renderRecommendations(recs []models.RecommendedItem, withScore bool) string {
	lines := make([]string, len(recs))
	for i, r := range recs {
		line := fmt.Sprintf("%d. %s", i+1, r.Name)
		if r.RestaurantName != "" {
			line += " from " + r.RestaurantName
		}
		line += fmt.Sprintf(" - ₹%.0f", r.Price)
		switch {
		case withScore:
			line += fmt.Sprintf(" (%d%% match: %s)", r.MatchScore, r.MatchReason)
		case r.MatchReason != "":
			line += fmt.Sprintf(" (%s)", r.MatchReason)
		}
		lines[i] = line
	}
	return strings.Join(lines, "\n")
}
