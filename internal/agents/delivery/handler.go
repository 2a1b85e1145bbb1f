// Package delivery reports order status. There is no dispatch integration:
// status is derived from the time elapsed since the order was placed.
package delivery

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	commonerrors "dialogue-orchestrator/internal/common/errors"
	"dialogue-orchestrator/internal/common/logger"
	"dialogue-orchestrator/internal/models"
	"dialogue-orchestrator/internal/store"
)

const (
	Name = "delivery"
)

var (
	ErrTrackingFailed = errors.New("TRACKING_FAILED")
	ErrMissingUser    = errors.New("MISSING_USER")
)

type Handler struct {
	config *Config
	orders store.Orders
	now    func() time.Time
	logger logger.Logger
}

func NewHandler(config *Config, orders store.Orders, now func() time.Time, log logger.Logger) *Handler {
	if now == nil {
		now = time.Now
	}
	return &Handler{
		config: config,
		orders: orders,
		now:    now,
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
	order, err := h.lookup(ctx, input)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			out := notFound(input.OrderID)
			out.Error = commonerrors.NewOrderNotFoundError(input.OrderID).WithMetadata("userId", input.UserID)
			h.logger.Info("order not found", map[string]interface{}{
				"userId":  input.UserID,
				"orderId": input.OrderID,
				"code":    out.Error.Code,
			})
			return out, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrTrackingFailed, commonerrors.NewExternalServiceError("orders", err))
	}

	status := h.simulate(order)
	if status != order.Status && h.config.PersistStatus {
		if err := h.orders.UpdateOrderStatus(ctx, order.ID, status); err != nil {
			h.logger.Warn("order status not persisted", map[string]interface{}{
				"orderId": order.ID,
				"status":  status,
				"error":   err,
			})
		}
	}

	out := &Output{
		Found:          true,
		OrderID:        order.ID,
		RestaurantName: order.RestaurantName,
		Status:         status,
		PlacedAt:       order.PlacedAt,
		ETAMinutes:     h.eta(order, status),
	}
	out.Response = render(out)
	return out, nil
}

// lookup resolves an explicit id, or the user's most recent order. Orders of
// other users are reported as not found.
func (h *Handler) lookup(ctx context.Context, input *Input) (*models.Order, error) {
	if input.OrderID != "" {
		order, err := h.orders.GetOrder(ctx, input.OrderID)
		if err != nil {
			return nil, err
		}
		if order.UserID != input.UserID {
			return nil, fmt.Errorf("%w: order %s", store.ErrNotFound, input.OrderID)
		}
		return order, nil
	}

	orders, err := h.orders.ListOrders(ctx, input.UserID, 1)
	if err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return nil, store.ErrNotFound
	}
	return &orders[0], nil
}

// Status returns the simulated status of an order placed at placedAt.
func (h *Handler) Status(placedAt time.Time) models.OrderStatus {
	elapsed := h.now().Sub(placedAt)
	switch {
	case elapsed < h.config.PlacedFor:
		return models.OrderStatusPlaced
	case elapsed < h.config.PreparingUntil:
		return models.OrderStatusPreparing
	case elapsed < h.config.OutForDeliveryEnd:
		return models.OrderStatusOutForDelivery
	default:
		return models.OrderStatusDelivered
	}
}

func (h *Handler) simulate(order *models.Order) models.OrderStatus {
	if order.Status == models.OrderStatusFailed || order.Status == models.OrderStatusDelivered {
		return order.Status
	}
	return h.Status(order.PlacedAt)
}

func (h *Handler) eta(order *models.Order, status models.OrderStatus) int {
	if status == models.OrderStatusDelivered || status == models.OrderStatusFailed {
		return 0
	}
	remaining := order.PlacedAt.Add(h.config.OutForDeliveryEnd).Sub(h.now())
	return int(math.Ceil(remaining.Minutes()))
}

func notFound(orderID string) *Output {
	if orderID != "" {
		return &Output{Response: fmt.Sprintf("I couldn't find an order with ID %s.", orderID)}
	}
	return &Output{Response: "You don't have any orders yet. Want me to help you place one?"}
}

func render(out *Output) string {
	ref := shortID(out.OrderID)
	switch out.Status {
	case models.OrderStatusPlaced:
		return fmt.Sprintf("Order %s from %s has been placed and the restaurant is confirming it. Estimated delivery in %d minutes.", ref, out.RestaurantName, out.ETAMinutes)
	case models.OrderStatusPreparing:
		return fmt.Sprintf("%s is preparing order %s. Estimated delivery in %d minutes.", out.RestaurantName, ref, out.ETAMinutes)
	case models.OrderStatusOutForDelivery:
		return fmt.Sprintf("Order %s from %s is out for delivery and should arrive in about %d minutes.", ref, out.RestaurantName, out.ETAMinutes)
	case models.OrderStatusFailed:
		return fmt.Sprintf("Order %s from %s could not be completed. Please try ordering again.", ref, out.RestaurantName)
	default:
		return fmt.Sprintf("Order %s from %s has been delivered. Enjoy your meal!", ref, out.RestaurantName)
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
