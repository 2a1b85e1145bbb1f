// Package supervisor turns one user utterance into one OrchestrationResult.
// It classifies the utterance, loads memory and taste profile when a branch
// needs them, and dispatches to exactly one agent or engine entry point per
// intent. Downstream failures never escape: they become an apology.
package supervisor

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"dialogue-orchestrator/internal/agents/cart"
	"dialogue-orchestrator/internal/agents/clarifier"
	"dialogue-orchestrator/internal/agents/delivery"
	"dialogue-orchestrator/internal/agents/order"
	"dialogue-orchestrator/internal/agents/query"
	"dialogue-orchestrator/internal/agents/wishlist"
	"dialogue-orchestrator/internal/common/logger"
	"dialogue-orchestrator/internal/common/metrics"
	"dialogue-orchestrator/internal/common/observability"
	"dialogue-orchestrator/internal/extractor"
	"dialogue-orchestrator/internal/memory"
	"dialogue-orchestrator/internal/models"
	"dialogue-orchestrator/internal/profile"
	"dialogue-orchestrator/internal/recommendation"
	"dialogue-orchestrator/internal/store"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type Dependencies struct {
	Extractor   *extractor.Extractor
	Catalog     store.Catalog
	Carts       store.Carts
	Memory      *memory.Store
	Profiles    *profile.Builder
	Recommender *recommendation.Engine

	Order     *order.Handler
	Cart      *cart.Handler
	Wishlist  *wishlist.Handler
	Delivery  *delivery.Handler
	Query     *query.Handler
	Clarifier *clarifier.Handler

	Observability *observability.Observability
	// Rand picks canned greetings and help texts. It is guarded by the
	// supervisor since *rand.Rand is not safe for concurrent use.
	Rand *rand.Rand
}

type Supervisor struct {
	deps   Dependencies
	config Config
	logger logger.Logger

	randMu sync.Mutex
}

// turn carries everything one dispatch branch may read.
type turn struct {
	userID    string
	utterance string
	text      string
	history   models.Conversation
	intent    models.Intent
	entities  models.Entities
}

func New(deps Dependencies, config Config, log logger.Logger) *Supervisor {
	if deps.Rand == nil {
		deps.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Supervisor{
		deps:   deps,
		config: config.withDefaults(),
		logger: log.WithFields(map[string]interface{}{"component": "supervisor"}),
	}
}

// Orchestrate never returns an error. history is read, never modified.
func (s *Supervisor) Orchestrate(ctx context.Context, utterance string, history models.Conversation, userID string) models.OrchestrationResult {
	start := time.Now()
	ctx, span := s.deps.Observability.Tracer().Start(ctx, "supervisor.orchestrate")
	defer span.End()

	intent, entities := s.deps.Extractor.Classify(utterance, history)
	t := turn{
		userID:    userID,
		utterance: utterance,
		text:      extractor.Normalize(utterance),
		history:   history,
		intent:    intent,
		entities:  entities,
	}

	// A bare delivery address only makes sense as the answer to a pending checkout.
	if t.intent == models.IntentConversation && t.entities.Address != "" {
		t.intent = models.IntentOrder
		t.entities.Action = models.ActionCheckout
	}

	span.SetAttributes(
		attribute.String("intent", string(t.intent)),
		attribute.String("user.id", userID),
	)

	result := s.dispatch(ctx, t)
	intentTag := t.intent
	result.Intent = &intentTag

	span.SetAttributes(attribute.String("result.type", string(result.Type)))
	if result.Type == models.ResultError {
		span.SetStatus(codes.Error, "degraded to apology")
	}

	elapsed := time.Since(start)
	metrics.DialogueTurns.WithLabelValues(string(t.intent), string(result.Type)).Inc()
	metrics.DialogueTurnDuration.WithLabelValues(string(t.intent)).Observe(elapsed.Seconds())
	s.deps.Observability.RecordTurnProcessed(ctx, string(t.intent), string(result.Type))
	s.deps.Observability.RecordTurnDuration(ctx, elapsed, string(t.intent))

	s.logger.Info("turn orchestrated", map[string]interface{}{
		"userId":     userID,
		"intent":     t.intent,
		"resultType": result.Type,
		"durationMs": elapsed.Milliseconds(),
	})
	return result
}

func (s *Supervisor) dispatch(ctx context.Context, t turn) models.OrchestrationResult {
	switch t.intent {
	case models.IntentGreeting:
		return reply(models.ResultGreeting, s.pick(greetings))
	case models.IntentHelp:
		return reply(models.ResultHelp, s.pick(helpMessages))
	case models.IntentUsuals:
		return s.usuals(ctx, t)
	case models.IntentRecommend, models.IntentSuggestByTaste, models.IntentSuggestByBudget, models.IntentHealthyOptions:
		return s.recommend(ctx, t)
	case models.IntentTrending:
		return s.trending(ctx, t)
	case models.IntentCombos:
		return s.combos(ctx, t)
	case models.IntentSavePreference:
		return s.savePreference(ctx, t)
	case models.IntentNutritionInfo:
		return s.nutrition(ctx, t)
	case models.IntentAllergenCheck:
		return s.allergenCheck(ctx, t)
	case models.IntentCompareItems:
		return s.compareItems(ctx, t)
	case models.IntentCompareRestaurants:
		return s.compareRestaurants(ctx, t)
	case models.IntentRestaurantInfo:
		return s.restaurantInfo(ctx, t)
	case models.IntentSortMenu, models.IntentFilterMenu, models.IntentCheapest, models.IntentHighestRated:
		return s.menuUtility(ctx, t)
	case models.IntentClarify:
		return s.clarify(ctx, t)
	case models.IntentOrder:
		return s.handleOrder(ctx, t)
	case models.IntentTrack:
		return s.track(ctx, t)
	case models.IntentCart:
		return s.handleCart(ctx, t)
	case models.IntentWishlist:
		return s.handleWishlist(ctx, t)
	case models.IntentQuery:
		return s.handleQuery(ctx, t)
	}
	// Unclassified turns go to the open-ended chat capability.
	return models.OrchestrationResult{Type: models.ResultChatFallback}
}

func (s *Supervisor) clarify(ctx context.Context, t turn) models.OrchestrationResult {
	out, err := s.deps.Clarifier.Execute(ctx, &clarifier.Input{
		Utterance: t.utterance,
		History:   t.history,
		Entities:  t.entities,
	})
	if err != nil {
		return s.fail(ctx, clarifier.Name, t, err)
	}
	return models.OrchestrationResult{Type: models.ResultClarification, Response: out.Response, Data: out}
}

// fail degrades a downstream error into the apology reply.
func (s *Supervisor) fail(ctx context.Context, agent string, t turn, err error) models.OrchestrationResult {
	metrics.AgentFailures.WithLabelValues(agent).Inc()
	trace.SpanFromContext(ctx).RecordError(err, trace.WithAttributes(attribute.String("agent", agent)))
	s.logger.Error("agent failed", map[string]interface{}{
		"agent":  agent,
		"userId": t.userID,
		"intent": t.intent,
		"error":  err.Error(),
	})
	return reply(models.ResultError, msgApology)
}

func (s *Supervisor) pick(options []string) string {
	s.randMu.Lock()
	defer s.randMu.Unlock()
	return options[s.deps.Rand.Intn(len(options))]
}

func reply(resultType models.ResultType, response string) models.OrchestrationResult {
	return models.OrchestrationResult{Type: resultType, Response: response}
}
