// Package order implements the order task agent. It resolves a restaurant and
// the dishes named for it into cart lines, places orders from the cart, and
// replays the user's last order.
package order

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"dialogue-orchestrator/internal/agents/cart"
	commonerrors "dialogue-orchestrator/internal/common/errors"
	"dialogue-orchestrator/internal/common/logger"
	"dialogue-orchestrator/internal/memory"
	"dialogue-orchestrator/internal/models"
	"dialogue-orchestrator/internal/notify"
	"dialogue-orchestrator/internal/store"
	"dialogue-orchestrator/internal/utility"

	"github.com/google/uuid"
)

const (
	Name = "order"
)

var (
	ErrOrderPlacementFailed = errors.New("ORDER_PLACEMENT_FAILED")
	ErrCatalogUnavailable   = errors.New("CATALOG_UNAVAILABLE")
	ErrMissingUser          = errors.New("MISSING_USER")
	ErrMissingSnapshot      = errors.New("MISSING_SNAPSHOT")
)

// Placement stages reported in ORDER_PLACEMENT_FAILED errors.
const (
	StageCreateOrder = "create_order"
	StageAddItems    = "add_items"
	StageReadCart    = "read_cart"
)

// Memory is the slice of the memory store the agent reads and writes.
type Memory interface {
	Get(ctx context.Context, userID string) *models.UserMemory
	Set(ctx context.Context, userID string, kind models.MemoryKind, key, value string) error
	SetJSON(ctx context.Context, userID string, kind models.MemoryKind, key string, v interface{}) error
}

type Dependencies struct {
	Catalog  store.Catalog
	Carts    store.Carts
	Orders   store.Orders
	Memory   Memory
	Notifier notify.Notifier
	NewID    func() string
	Now      func() time.Time
}

type Handler struct {
	config *Config
	deps   Dependencies
	logger logger.Logger
}

func NewHandler(config *Config, deps Dependencies, log logger.Logger) *Handler {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.NewID == nil {
		deps.NewID = uuid.NewString
	}
	if deps.Notifier == nil {
		deps.Notifier = notify.Disabled{}
	}
	return &Handler{
		config: config,
		deps:   deps,
		logger: log.WithFields(map[string]interface{}{"agent": Name}),
	}
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	if input == nil || input.UserID == "" {
		return nil, ErrMissingUser
	}
	if h.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.config.Timeout)
		defer cancel()
	}
	return h.execute(ctx, input)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	var (
		out *Output
		err error
	)
	switch input.Action {
	case ActionPlace:
		out, err = h.place(ctx, input)
	case ActionReplay:
		out, err = h.replay(ctx, input)
	default:
		out, err = h.addItems(ctx, input)
	}
	if err != nil {
		h.logger.Error("order action failed", map[string]interface{}{
			"userId": input.UserID,
			"action": input.Action,
			"error":  err.Error(),
		})
		return nil, err
	}

	out.Response = h.render(out)

	h.logger.Info("order processed", map[string]interface{}{
		"userId":    input.UserID,
		"action":    input.Action,
		"outcome":   out.Outcome,
		"matched":   len(out.Matched),
		"unmatched": len(out.Unmatched),
		"orders":    len(out.Orders),
	})
	return out, nil
}

func (h *Handler) addItems(ctx context.Context, input *Input) (*Output, error) {
	out := &Output{}

	if input.RestaurantName == "" {
		if len(input.Items) == 0 {
			out.Outcome = OutcomeNeedRestaurant
			return out, nil
		}
		return h.addFromCatalog(ctx, input, out)
	}

	restaurant, err := h.deps.Catalog.FindRestaurantByName(ctx, input.RestaurantName)
	if errors.Is(err, store.ErrNotFound) {
		out.Outcome = OutcomeRestaurantUnknown
		out.Unmatched = []string{input.RestaurantName}
		return out, nil
	}
	if err != nil {
		return nil, catalogError(err)
	}
	out.Restaurant = restaurant

	menu, err := h.deps.Catalog.ListMenuItems(ctx, store.MenuFilter{
		RestaurantID:  restaurant.ID,
		AvailableOnly: true,
	})
	if err != nil {
		return nil, catalogError(err)
	}
	if len(menu) == 0 {
		out.Outcome = OutcomeNoMenu
		return out, nil
	}
	out.Menu = menu

	if len(input.Items) == 0 {
		out.Outcome = OutcomeMenu
		return out, nil
	}

	if err := h.addMatched(ctx, input.UserID, menu, input.Items, out); err != nil {
		return nil, err
	}
	if len(out.Matched) > 0 {
		if err := h.deps.Memory.Set(ctx, input.UserID, models.MemoryRestaurantPreference, restaurant.ID, restaurant.Name); err != nil {
			h.logger.Warn("restaurant preference not saved", map[string]interface{}{
				"userId":       input.UserID,
				"restaurantId": restaurant.ID,
				"error":        err,
			})
		}
		h.refreshCartState(ctx, input.UserID)
	}
	out.Outcome = matchOutcome(out)
	return out, nil
}

// addFromCatalog matches dish mentions against every available item when no
// restaurant was named.
func (h *Handler) addFromCatalog(ctx context.Context, input *Input, out *Output) (*Output, error) {
	menu, err := h.deps.Catalog.ListMenuItems(ctx, store.MenuFilter{AvailableOnly: true})
	if err != nil {
		return nil, catalogError(err)
	}
	if err := h.addMatched(ctx, input.UserID, menu, input.Items, out); err != nil {
		return nil, err
	}
	if len(out.Matched) == 0 {
		out.Outcome = OutcomeNeedRestaurant
		return out, nil
	}
	h.refreshCartState(ctx, input.UserID)
	out.Outcome = matchOutcome(out)
	return out, nil
}

func (h *Handler) addMatched(ctx context.Context, userID string, menu []models.MenuItem, mentions []models.ItemMention, out *Output) error {
	for _, mention := range mentions {
		item, ok := utility.MatchItem(menu, mention.Name)
		if !ok {
			out.Unmatched = append(out.Unmatched, mention.Name)
			continue
		}
		qty := mention.Quantity
		if qty <= 0 {
			qty = 1
		}
		if err := cart.AddLine(ctx, h.deps.Carts, userID, item, qty); err != nil {
			return fmt.Errorf("%w: %v", cart.ErrCartUpdateFailed, commonerrors.NewCartUpdateFailedError(err))
		}
		out.Matched = append(out.Matched, models.CartLine{
			UserID:       userID,
			MenuItemID:   item.ID,
			RestaurantID: item.RestaurantID,
			Name:         item.Name,
			Price:        item.Price,
			Quantity:     qty,
		})
	}
	return nil
}

func matchOutcome(out *Output) Outcome {
	switch {
	case len(out.Matched) == 0:
		return OutcomeNoMatch
	case len(out.Unmatched) > 0:
		return OutcomePartial
	default:
		return OutcomeAdded
	}
}

func (h *Handler) place(ctx context.Context, input *Input) (*Output, error) {
	out := &Output{}

	lines, err := h.deps.Carts.ListCart(ctx, input.UserID)
	if err != nil {
		return nil, placementError(StageReadCart, err)
	}
	if len(lines) == 0 {
		out.Outcome = OutcomeEmptyCart
		return out, nil
	}

	groups := groupByRestaurant(lines)
	address, ok := h.resolveAddress(ctx, input)
	if !ok {
		out.Outcome = OutcomePending
		out.Draft = h.draft(ctx, groups)
		return out, nil
	}

	for i, g := range groups {
		order, err := h.placeGroup(ctx, input.UserID, g.restaurantID, g.items, address)
		if err != nil {
			// Lines of groups already placed must not be ordered twice.
			for _, placed := range groups[:i] {
				h.removeLines(ctx, input.UserID, placed.items)
			}
			return nil, err
		}
		out.Orders = append(out.Orders, *order)
	}

	if err := h.deps.Carts.ClearCart(ctx, input.UserID); err != nil {
		h.logger.Warn("cart not cleared after placement", map[string]interface{}{
			"userId": input.UserID,
			"error":  err,
		})
	}
	h.afterPlacement(ctx, input.UserID, out.Orders)
	out.Outcome = OutcomePlaced
	return out, nil
}

func (h *Handler) replay(ctx context.Context, input *Input) (*Output, error) {
	if input.Snapshot == nil || len(input.Snapshot.Items) == 0 {
		return nil, ErrMissingSnapshot
	}
	out := &Output{}
	snap := input.Snapshot

	var items []models.OrderItem
	var menuItems []models.MenuItem
	for _, prev := range snap.Items {
		item, err := h.deps.Catalog.GetMenuItem(ctx, prev.MenuItemID)
		if errors.Is(err, store.ErrNotFound) || (err == nil && !item.Available) {
			out.Unmatched = append(out.Unmatched, prev.Name)
			continue
		}
		if err != nil {
			return nil, catalogError(err)
		}
		qty := prev.Quantity
		if qty <= 0 {
			qty = 1
		}
		items = append(items, models.OrderItem{
			MenuItemID: item.ID,
			Name:       item.Name,
			Quantity:   qty,
			Price:      item.Price,
		})
		menuItems = append(menuItems, *item)
	}
	if len(items) == 0 {
		out.Outcome = OutcomeNoMatch
		return out, nil
	}
	if r, err := h.deps.Catalog.GetRestaurant(ctx, snap.RestaurantID); err == nil {
		out.Restaurant = r
	}

	address, ok := h.resolveAddress(ctx, input)
	if !ok {
		// Stage the items in the cart so a later checkout can place them.
		for i, item := range menuItems {
			if err := cart.AddLine(ctx, h.deps.Carts, input.UserID, item, items[i].Quantity); err != nil {
				return nil, fmt.Errorf("%w: %v", cart.ErrCartUpdateFailed, commonerrors.NewCartUpdateFailedError(err))
			}
		}
		h.refreshCartState(ctx, input.UserID)
		out.Outcome = OutcomePending
		out.Draft = &models.OrderDraft{
			RestaurantID:   snap.RestaurantID,
			RestaurantName: h.restaurantName(out.Restaurant, snap.RestaurantName),
			Items:          items,
			Total:          itemsTotal(items),
			MissingFields:  []string{"address"},
		}
		return out, nil
	}

	order, err := h.placeGroup(ctx, input.UserID, snap.RestaurantID, items, address)
	if err != nil {
		return nil, err
	}
	out.Orders = []models.Order{*order}
	h.afterPlacement(ctx, input.UserID, out.Orders)
	out.Outcome = OutcomePlaced
	return out, nil
}

// placeGroup writes one order and its items. Order rows are written before
// item rows; callers clear the cart only after this returns nil.
func (h *Handler) placeGroup(ctx context.Context, userID, restaurantID string, items []models.OrderItem, address string) (*models.Order, error) {
	order := models.Order{
		ID:           h.deps.NewID(),
		UserID:       userID,
		RestaurantID: restaurantID,
		Status:       models.OrderStatusPlaced,
		Total:        itemsTotal(items),
		Address:      address,
		PlacedAt:     h.deps.Now(),
	}
	r, err := h.deps.Catalog.GetRestaurant(ctx, restaurantID)
	if err == nil {
		order.RestaurantName = r.Name
		order.Cuisine = r.Cuisine
	} else {
		order.RestaurantName = restaurantID
	}

	if err := h.deps.Orders.CreateOrder(ctx, order); err != nil {
		return nil, placementError(StageCreateOrder, err)
	}

	orderItems := make([]models.OrderItem, len(items))
	for i, item := range items {
		item.OrderID = order.ID
		orderItems[i] = item
	}
	if err := h.deps.Orders.AddOrderItems(ctx, order.ID, orderItems); err != nil {
		return nil, placementError(StageAddItems, err)
	}
	order.Items = orderItems

	h.logger.Info("order placed", map[string]interface{}{
		"userId":       userID,
		"orderId":      order.ID,
		"restaurantId": restaurantID,
		"total":        order.Total,
	})
	return &order, nil
}

// afterPlacement records the last order, notifies, and refreshes the cart
// snapshot. None of these steps can fail the placement.
func (h *Handler) afterPlacement(ctx context.Context, userID string, orders []models.Order) {
	last := orders[len(orders)-1]
	snap := models.LastOrderSnapshot{
		OrderID:        last.ID,
		RestaurantID:   last.RestaurantID,
		RestaurantName: last.RestaurantName,
		Items:          last.Items,
		PlacedAt:       last.PlacedAt,
	}
	if err := h.deps.Memory.SetJSON(ctx, userID, models.MemoryLastOrder, models.LastOrderKey, snap); err != nil {
		h.logger.Warn("last order not saved", map[string]interface{}{
			"userId": userID,
			"error":  err,
		})
	}

	for _, o := range orders {
		receipt, err := h.deps.Notifier.OrderPlaced(ctx, o)
		if err != nil {
			h.logger.Warn("order notification failed", map[string]interface{}{
				"orderId": o.ID,
				"error":   err.Error(),
			})
			continue
		}
		h.logger.Debug("order notification processed", map[string]interface{}{
			"orderId": o.ID,
			"status":  receipt.Status,
		})
	}

	h.refreshCartState(ctx, userID)
}

func (h *Handler) resolveAddress(ctx context.Context, input *Input) (string, bool) {
	addr := strings.TrimSpace(input.Address)
	if addr != "" {
		if err := h.deps.Memory.Set(ctx, input.UserID, models.MemoryDefaultAddress, models.DefaultAddressKey, addr); err != nil {
			h.logger.Warn("default address not saved", map[string]interface{}{
				"userId": input.UserID,
				"error":  err,
			})
		}
		return addr, true
	}
	return memory.DefaultAddress(h.deps.Memory.Get(ctx, input.UserID))
}

func (h *Handler) refreshCartState(ctx context.Context, userID string) {
	lines, err := h.deps.Carts.ListCart(ctx, userID)
	if err != nil {
		h.logger.Warn("cart state not refreshed", map[string]interface{}{
			"userId": userID,
			"error":  err,
		})
		return
	}
	snap := cart.NewSnapshot(lines, h.deps.Now())
	if err := h.deps.Memory.SetJSON(ctx, userID, models.MemoryCartState, models.CartStateKey, snap); err != nil {
		h.logger.Warn("cart snapshot not saved", map[string]interface{}{
			"userId": userID,
			"error":  err,
		})
	}
}

func (h *Handler) removeLines(ctx context.Context, userID string, items []models.OrderItem) {
	for _, item := range items {
		if err := h.deps.Carts.RemoveCartLine(ctx, userID, item.MenuItemID); err != nil {
			h.logger.Warn("placed line left in cart", map[string]interface{}{
				"userId":     userID,
				"menuItemId": item.MenuItemID,
				"error":      err,
			})
		}
	}
}

func (h *Handler) draft(ctx context.Context, groups []lineGroup) *models.OrderDraft {
	d := &models.OrderDraft{MissingFields: []string{"address"}}
	var names []string
	for _, g := range groups {
		d.Items = append(d.Items, g.items...)
		var r *models.Restaurant
		if found, err := h.deps.Catalog.GetRestaurant(ctx, g.restaurantID); err == nil {
			r = found
		}
		names = append(names, h.restaurantName(r, g.restaurantID))
	}
	d.RestaurantID = groups[0].restaurantID
	d.RestaurantName = strings.Join(names, ", ")
	d.Total = itemsTotal(d.Items)
	return d
}

func (h *Handler) restaurantName(r *models.Restaurant, fallback string) string {
	if r != nil {
		return r.Name
	}
	return fallback
}

type lineGroup struct {
	restaurantID string
	items        []models.OrderItem
}

// groupByRestaurant keeps restaurants in first-seen cart order.
func groupByRestaurant(lines []models.CartLine) []lineGroup {
	var groups []lineGroup
	index := make(map[string]int)
	for _, l := range lines {
		i, ok := index[l.RestaurantID]
		if !ok {
			i = len(groups)
			index[l.RestaurantID] = i
			groups = append(groups, lineGroup{restaurantID: l.RestaurantID})
		}
		groups[i].items = append(groups[i].items, models.OrderItem{
			MenuItemID: l.MenuItemID,
			Name:       l.Name,
			Quantity:   l.Quantity,
			Price:      l.Price,
		})
	}
	return groups
}

func itemsTotal(items []models.OrderItem) float64 {
	var total float64
	for _, item := range items {
		total += item.Price * float64(item.Quantity)
	}
	return total
}

func placementError(stage string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrOrderPlacementFailed, stage, commonerrors.NewOrderPlacementFailedError(stage, err))
}

func catalogError(err error) error {
	return fmt.Errorf("%w: %v", ErrCatalogUnavailable, commonerrors.NewCatalogUnavailableError(err))
}
