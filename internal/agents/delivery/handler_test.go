package delivery

import (
	"context"
	"errors"
	"testing"
	"time"

	commonerrors "dialogue-orchestrator/internal/common/errors"
	"dialogue-orchestrator/internal/common/logger"
	"dialogue-orchestrator/internal/models"
	"dialogue-orchestrator/internal/store/memstore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testLogger struct {
	t *testing.T
}

func (tl *testLogger) Debug(msg string, fields map[string]interface{}) {
	tl.t.Logf("DEBUG: %s %v", msg, fields)
}

func (tl *testLogger) Info(msg string, fields map[string]interface{}) {
	tl.t.Logf("INFO: %s %v", msg, fields)
}

func (tl *testLogger) Warn(msg string, fields map[string]interface{}) {
	tl.t.Logf("WARN: %s %v", msg, fields)
}

func (tl *testLogger) Error(msg string, fields map[string]interface{}) {
	tl.t.Logf("ERROR: %s %v", msg, fields)
}

func (tl *testLogger) WithFields(fields map[string]interface{}) logger.Logger {
	return tl
}

func (tl *testLogger) WithError(err error) logger.Logger {
	return tl.WithFields(map[string]interface{}{"error": err})
}

func (tl *testLogger) With(fields map[string]interface{}) logger.Logger {
	return tl
}

func newTestLogger(t *testing.T) logger.Logger {
	return &testLogger{t: t}
}

var now = time.Date(2026, 3, 1, 20, 0, 0, 0, time.UTC)

func placeOrder(t *testing.T, db *memstore.Store, id, userID string, ago time.Duration) {
	t.Helper()
	require.NoError(t, db.CreateOrder(context.Background(), models.Order{
		ID:             id,
		UserID:         userID,
		RestaurantID:   "r-paradise",
		RestaurantName: "Paradise",
		Status:         models.OrderStatusPlaced,
		Total:          280,
		PlacedAt:       now.Add(-ago),
	}))
}

func newHandler(t *testing.T, db *memstore.Store) *Handler {
	return NewHandler(LoadConfig(), db, func() time.Time { return now }, newTestLogger(t))
}

func TestHandler_Execute_SimulatedStatus(t *testing.T) {
	tests := []struct {
		name       string
		ago        time.Duration
		wantStatus models.OrderStatus
		wantETA    int
		wantText   string
	}{
		{name: "just placed", ago: time.Minute, wantStatus: models.OrderStatusPlaced, wantETA: 34, wantText: "has been placed"},
		{name: "preparing at the boundary", ago: 2 * time.Minute, wantStatus: models.OrderStatusPreparing, wantETA: 33, wantText: "is preparing"},
		{name: "out for delivery", ago: 20 * time.Minute, wantStatus: models.OrderStatusOutForDelivery, wantETA: 15, wantText: "out for delivery"},
		{name: "delivered", ago: 40 * time.Minute, wantStatus: models.OrderStatusDelivered, wantETA: 0, wantText: "has been delivered"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := memstore.New()
			placeOrder(t, db, "order-0001-abcdef", "u1", tt.ago)

			output, err := newHandler(t, db).Execute(context.Background(), &Input{UserID: "u1"})
			require.NoError(t, err)
			assert.True(t, output.Found)
			assert.Equal(t, tt.wantStatus, output.Status)
			assert.Equal(t, tt.wantETA, output.ETAMinutes)
			assert.Contains(t, output.Response, tt.wantText)
			assert.Contains(t, output.Response, "order-00")

			stored, err := db.GetOrder(context.Background(), "order-0001-abcdef")
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, stored.Status)
		})
	}
}

func TestHandler_Execute_Lookup(t *testing.T) {
	db := memstore.New()
	placeOrder(t, db, "older", "u1", 50*time.Minute)
	placeOrder(t, db, "newer", "u1", 5*time.Minute)
	placeOrder(t, db, "someone-else", "u2", 5*time.Minute)
	h := newHandler(t, db)

	t.Run("most recent order by default", func(t *testing.T) {
		output, err := h.Execute(context.Background(), &Input{UserID: "u1"})
		require.NoError(t, err)
		assert.Equal(t, "newer", output.OrderID)
		assert.Nil(t, output.Error)
	})

	t.Run("explicit id", func(t *testing.T) {
		output, err := h.Execute(context.Background(), &Input{UserID: "u1", OrderID: "older"})
		require.NoError(t, err)
		assert.Equal(t, "older", output.OrderID)
		assert.Equal(t, models.OrderStatusDelivered, output.Status)
	})

	t.Run("unknown id", func(t *testing.T) {
		output, err := h.Execute(context.Background(), &Input{UserID: "u1", OrderID: "nope"})
		require.NoError(t, err)
		assert.False(t, output.Found)
		assert.Equal(t, "I couldn't find an order with ID nope.", output.Response)
		require.NotNil(t, output.Error)
		assert.True(t, commonerrors.HasCode(output.Error, commonerrors.ErrCodeOrderNotFound))
		assert.Equal(t, "orderId: nope", output.Error.Details)
		assert.Equal(t, "u1", output.Error.Metadata["userId"])
	})

	t.Run("another user's order", func(t *testing.T) {
		output, err := h.Execute(context.Background(), &Input{UserID: "u1", OrderID: "someone-else"})
		require.NoError(t, err)
		assert.False(t, output.Found)
		assert.True(t, commonerrors.HasCode(output.Error, commonerrors.ErrCodeOrderNotFound))
	})

	t.Run("no orders at all", func(t *testing.T) {
		output, err := h.Execute(context.Background(), &Input{UserID: "u3"})
		require.NoError(t, err)
		assert.False(t, output.Found)
		assert.Contains(t, output.Response, "You don't have any orders yet")
	})
}

func TestHandler_Execute_FailedOrderKeepsStatus(t *testing.T) {
	db := memstore.New()
	placeOrder(t, db, "o1", "u1", 5*time.Minute)
	require.NoError(t, db.UpdateOrderStatus(context.Background(), "o1", models.OrderStatusFailed))

	output, err := newHandler(t, db).Execute(context.Background(), &Input{UserID: "u1"})
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusFailed, output.Status)
	assert.Contains(t, output.Response, "could not be completed")
}

func TestHandler_Execute_Failures(t *testing.T) {
	t.Run("read failure", func(t *testing.T) {
		db := memstore.New()
		db.Fail["ListOrders"] = errors.New("connection refused")

		_, err := newHandler(t, db).Execute(context.Background(), &Input{UserID: "u1"})
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrTrackingFailed))
	})

	t.Run("status write failure is not fatal", func(t *testing.T) {
		db := memstore.New()
		placeOrder(t, db, "o1", "u1", 20*time.Minute)
		db.Fail["UpdateOrderStatus"] = errors.New("read only")

		output, err := newHandler(t, db).Execute(context.Background(), &Input{UserID: "u1"})
		require.NoError(t, err)
		assert.Equal(t, models.OrderStatusOutForDelivery, output.Status)
	})
}
