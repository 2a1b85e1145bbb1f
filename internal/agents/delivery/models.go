package delivery

import (
	"time"

	commonerrors "dialogue-orchestrator/internal/common/errors"
	"dialogue-orchestrator/internal/models"
)

type Input struct {
	UserID  string `json:"userId"`
	OrderID string `json:"orderId,omitempty"`
}

type Output struct {
	Response       string             `json:"response"`
	Found          bool               `json:"found"`
	OrderID        string             `json:"orderId,omitempty"`
	RestaurantName string             `json:"restaurantName,omitempty"`
	Status         models.OrderStatus `json:"status,omitempty"`
	PlacedAt       time.Time          `json:"placedAt,omitempty"`
	ETAMinutes     int                `json:"etaMinutes"`

	// Error is set when no order matched.
	Error *commonerrors.StandardError `json:"error,omitempty"`
}
