package supervisor

import (
	"context"
	"errors"

	"dialogue-orchestrator/internal/agents/cart"
	"dialogue-orchestrator/internal/agents/delivery"
	"dialogue-orchestrator/internal/agents/order"
	"dialogue-orchestrator/internal/agents/query"
	"dialogue-orchestrator/internal/agents/wishlist"
	"dialogue-orchestrator/internal/memory"
	"dialogue-orchestrator/internal/models"
	"dialogue-orchestrator/internal/store"
)

func (s *Supervisor) handleOrder(ctx context.Context, t turn) models.OrchestrationResult {
	switch t.entities.Action {
	case models.ActionRepeat:
		snap, ok := memory.LastOrder(s.deps.Memory.Get(ctx, t.userID))
		if ok {
			return s.runOrder(ctx, t, &order.Input{
				UserID:   t.userID,
				Action:   order.ActionReplay,
				Address:  t.entities.Address,
				Snapshot: snap,
			})
		}
		// Nothing to repeat: resolve the utterance like any other order.
	case models.ActionCheckout:
		return s.checkout(ctx, t)
	}

	return s.runOrder(ctx, t, &order.Input{
		UserID:         t.userID,
		Action:         order.ActionAddItems,
		RestaurantName: t.entities.Restaurant,
		Items:          t.entities.Items,
	})
}

func (s *Supervisor) checkout(ctx context.Context, t turn) models.OrchestrationResult {
	return s.runOrder(ctx, t, &order.Input{
		UserID:  t.userID,
		Action:  order.ActionPlace,
		Address: t.entities.Address,
	})
}

func (s *Supervisor) runOrder(ctx context.Context, t turn, input *order.Input) models.OrchestrationResult {
	out, err := s.deps.Order.Execute(ctx, input)
	if err != nil {
		return s.fail(ctx, order.Name, t, err)
	}
	result := models.OrchestrationResult{
		Type:     orderResultType(out),
		Response: out.Response,
		Data:     out,
	}
	if out.Outcome == order.OutcomePending {
		result.OrderInProgress = out.Draft
	}
	return result
}

func orderResultType(out *order.Output) models.ResultType {
	switch out.Outcome {
	case order.OutcomeAdded, order.OutcomePartial, order.OutcomeEmptyCart:
		return models.ResultCart
	case order.OutcomeMenu:
		return models.ResultMenu
	case order.OutcomeNoMatch:
		if len(out.Menu) > 0 {
			return models.ResultMenu
		}
		return models.ResultNotFound
	case order.OutcomeNoMenu:
		return models.ResultNotFound
	case order.OutcomeRestaurantUnknown, order.OutcomeNeedRestaurant:
		return models.ResultClarification
	case order.OutcomePlaced:
		return models.ResultOrderPlaced
	case order.OutcomePending:
		return models.ResultOrderPending
	}
	return models.ResultText
}

func (s *Supervisor) track(ctx context.Context, t turn) models.OrchestrationResult {
	out, err := s.deps.Delivery.Execute(ctx, &delivery.Input{UserID: t.userID, OrderID: t.entities.OrderID})
	if err != nil {
		return s.fail(ctx, delivery.Name, t, err)
	}
	resultType := models.ResultTracking
	if !out.Found {
		resultType = models.ResultNotFound
	}
	return models.OrchestrationResult{Type: resultType, Response: out.Response, Data: out}
}

func (s *Supervisor) handleCart(ctx context.Context, t turn) models.OrchestrationResult {
	if t.entities.Action == models.ActionCheckout {
		return s.checkout(ctx, t)
	}

	input := &cart.Input{UserID: t.userID}
	if t.entities.Action.IsMutation() {
		input.Action = t.entities.Action
		input.Items = t.entities.Items
	}
	if input.Action == models.ActionAdd && t.entities.Restaurant != "" && !t.entities.RestaurantFromHistory {
		id, ok, err := s.restaurantID(ctx, t.entities.Restaurant)
		if err != nil {
			return s.fail(ctx, cart.Name, t, err)
		}
		if ok {
			input.RestaurantID = id
		}
	}

	out, err := s.deps.Cart.Execute(ctx, input)
	if err != nil {
		return s.fail(ctx, cart.Name, t, err)
	}
	return models.OrchestrationResult{Type: models.ResultCart, Response: out.Response, Data: out}
}

func (s *Supervisor) handleWishlist(ctx context.Context, t turn) models.OrchestrationResult {
	input := &wishlist.Input{UserID: t.userID}
	switch t.entities.Action {
	case models.ActionAdd, models.ActionRemove:
		input.Action = t.entities.Action
		input.Items = t.entities.Items
	}
	out, err := s.deps.Wishlist.Execute(ctx, input)
	if err != nil {
		return s.fail(ctx, wishlist.Name, t, err)
	}
	return models.OrchestrationResult{Type: models.ResultWishlist, Response: out.Response, Data: out}
}

func (s *Supervisor) handleQuery(ctx context.Context, t turn) models.OrchestrationResult {
	input := &query.Input{
		UserID:     t.userID,
		Utterance:  t.utterance,
		Category:   t.entities.Category,
		Cuisine:    t.entities.Cuisine,
		Vegetarian: t.entities.Vegetarian,
		MaxPrice:   t.entities.Budget,
	}
	// A restaurant carried over from history must not narrow a fresh search.
	if !t.entities.RestaurantFromHistory {
		input.Restaurant = t.entities.Restaurant
	}
	out, err := s.deps.Query.Execute(ctx, input)
	if err != nil {
		return s.fail(ctx, query.Name, t, err)
	}
	return models.OrchestrationResult{Type: out.Type, Response: out.Response, Data: out}
}

// restaurantID resolves a spoken restaurant name. A missing restaurant is
// not an error.
func (s *Supervisor) restaurantID(ctx context.Context, name string) (string, bool, error) {
	r, err := s.deps.Catalog.FindRestaurantByName(ctx, name)
	if errors.Is(err, store.ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return r.ID, true, nil
}
