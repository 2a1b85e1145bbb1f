package cart

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"dialogue-orchestrator/internal/common/logger"
	"dialogue-orchestrator/internal/memory"
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

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func setupHandler(t *testing.T) (*Handler, *memstore.Store, *memory.Store) {
	t.Helper()
	db := memstore.New().Seed()
	mem := memory.NewStore(db, newTestLogger(t))
	h := NewHandler(LoadConfig(), Dependencies{
		Carts:   db,
		Catalog: db,
		Memory:  mem,
		Now:     func() time.Time { return fixedNow },
	}, newTestLogger(t))
	return h, db, mem
}

func TestHandler_Execute(t *testing.T) {
	tests := []struct {
		name           string
		prepare        func(t *testing.T, h *Handler)
		input          *Input
		validateOutput func(t *testing.T, output *Output)
	}{
		{
			name:  "add matched item from named restaurant",
			input: &Input{UserID: "u1", Action: models.ActionAdd, RestaurantID: "r-paradise", Items: []models.ItemMention{{Name: "biryani", Quantity: 2}}},
			validateOutput: func(t *testing.T, output *Output) {
				require.Len(t, output.Lines, 1)
				assert.Equal(t, "m-chicken-biryani", output.Lines[0].MenuItemID)
				assert.Equal(t, 2, output.Lines[0].Quantity)
				assert.Equal(t, 560.0, output.Total)
				assert.Equal(t, []string{"2 x Chicken Biryani"}, output.Changed)
				assert.Contains(t, output.Response, "Updated your cart: 2 x Chicken Biryani.")
				assert.Contains(t, output.Response, "Total: ₹560")
			},
		},
		{
			name: "add increments an existing line",
			prepare: func(t *testing.T, h *Handler) {
				_, err := h.Execute(context.Background(), &Input{UserID: "u1", Action: models.ActionAdd, Items: []models.ItemMention{{Name: "lassi", Quantity: 1}}})
				require.NoError(t, err)
			},
			input: &Input{UserID: "u1", Action: models.ActionAdd, Items: []models.ItemMention{{Name: "lassis", Quantity: 2}}},
			validateOutput: func(t *testing.T, output *Output) {
				require.Len(t, output.Lines, 1)
				assert.Equal(t, "Sweet Lassi", output.Lines[0].Name)
				assert.Equal(t, 3, output.Lines[0].Quantity)
			},
		},
		{
			name:  "unmatched mention is reported",
			input: &Input{UserID: "u1", Action: models.ActionAdd, RestaurantID: "r-paradise", Items: []models.ItemMention{{Name: "pizza", Quantity: 1}}},
			validateOutput: func(t *testing.T, output *Output) {
				assert.Empty(t, output.Lines)
				assert.Equal(t, []string{"pizza"}, output.Unmatched)
				assert.Contains(t, output.Response, "I couldn't find pizza.")
				assert.Contains(t, output.Response, "Your cart is empty.")
			},
		},
		{
			name: "remove a line",
			prepare: func(t *testing.T, h *Handler) {
				_, err := h.Execute(context.Background(), &Input{UserID: "u1", Action: models.ActionAdd, Items: []models.ItemMention{{Name: "tiramisu", Quantity: 1}, {Name: "lassi", Quantity: 1}}})
				require.NoError(t, err)
			},
			input: &Input{UserID: "u1", Action: models.ActionRemove, Items: []models.ItemMention{{Name: "tiramisu", Quantity: 1}}},
			validateOutput: func(t *testing.T, output *Output) {
				require.Len(t, output.Lines, 1)
				assert.Equal(t, "Sweet Lassi", output.Lines[0].Name)
				assert.Contains(t, output.Response, "Removed Tiramisu from your cart.")
			},
		},
		{
			name: "update quantity",
			prepare: func(t *testing.T, h *Handler) {
				_, err := h.Execute(context.Background(), &Input{UserID: "u1", Action: models.ActionAdd, Items: []models.ItemMention{{Name: "tiramisu", Quantity: 1}}})
				require.NoError(t, err)
			},
			input: &Input{UserID: "u1", Action: models.ActionUpdate, Items: []models.ItemMention{{Name: "tiramisu", Quantity: 4}}},
			validateOutput: func(t *testing.T, output *Output) {
				require.Len(t, output.Lines, 1)
				assert.Equal(t, 4, output.Lines[0].Quantity)
				assert.Equal(t, 800.0, output.Total)
			},
		},
		{
			name: "update to zero removes the line",
			prepare: func(t *testing.T, h *Handler) {
				_, err := h.Execute(context.Background(), &Input{UserID: "u1", Action: models.ActionAdd, Items: []models.ItemMention{{Name: "tiramisu", Quantity: 1}}})
				require.NoError(t, err)
			},
			input: &Input{UserID: "u1", Action: models.ActionUpdate, Items: []models.ItemMention{{Name: "tiramisu", Quantity: 0}}},
			validateOutput: func(t *testing.T, output *Output) {
				assert.Empty(t, output.Lines)
			},
		},
		{
			name: "clear",
			prepare: func(t *testing.T, h *Handler) {
				_, err := h.Execute(context.Background(), &Input{UserID: "u1", Action: models.ActionAdd, Items: []models.ItemMention{{Name: "tiramisu", Quantity: 1}}})
				require.NoError(t, err)
			},
			input: &Input{UserID: "u1", Action: models.ActionClear},
			validateOutput: func(t *testing.T, output *Output) {
				assert.Empty(t, output.Lines)
				assert.Equal(t, "Your cart is now empty.", output.Response)
			},
		},
		{
			name:  "list an empty cart",
			input: &Input{UserID: "u1"},
			validateOutput: func(t *testing.T, output *Output) {
				assert.Equal(t, models.ActionNone, output.Action)
				assert.Equal(t, "Your cart is empty.", output.Response)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, _, _ := setupHandler(t)
			if tt.prepare != nil {
				tt.prepare(t, h)
			}
			output, err := h.Execute(context.Background(), tt.input)
			require.NoError(t, err)
			tt.validateOutput(t, output)
		})
	}
}

func TestHandler_Execute_WritesCartSnapshot(t *testing.T) {
	h, _, mem := setupHandler(t)

	_, err := h.Execute(context.Background(), &Input{UserID: "u1", Action: models.ActionAdd, RestaurantID: "r-paradise", Items: []models.ItemMention{{Name: "biryani", Quantity: 2}, {Name: "lassi", Quantity: 1}}})
	require.NoError(t, err)

	raw, ok := mem.Get(context.Background(), "u1").Get(models.MemoryCartState, models.CartStateKey)
	require.True(t, ok)
	var snap models.CartSnapshot
	require.NoError(t, json.Unmarshal([]byte(raw), &snap))
	assert.Equal(t, 2, snap.Lines)
	assert.Equal(t, 3, snap.Items)
	assert.Equal(t, 640.0, snap.Total)
	assert.True(t, fixedNow.Equal(snap.UpdatedAt))
}

func TestHandler_Execute_ListDoesNotWriteSnapshot(t *testing.T) {
	h, _, mem := setupHandler(t)

	_, err := h.Execute(context.Background(), &Input{UserID: "u1"})
	require.NoError(t, err)
	assert.True(t, mem.Get(context.Background(), "u1").IsEmpty())
}

func TestHandler_Execute_Failures(t *testing.T) {
	t.Run("store write failure", func(t *testing.T) {
		h, db, _ := setupHandler(t)
		db.Fail["UpsertCartLine"] = errors.New("connection reset")

		_, err := h.Execute(context.Background(), &Input{UserID: "u1", Action: models.ActionAdd, Items: []models.ItemMention{{Name: "tiramisu", Quantity: 1}}})
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrCartUpdateFailed))
	})

	t.Run("snapshot failure is not fatal", func(t *testing.T) {
		h, db, _ := setupHandler(t)
		db.Fail["UpsertMemory"] = errors.New("read only")

		output, err := h.Execute(context.Background(), &Input{UserID: "u1", Action: models.ActionAdd, Items: []models.ItemMention{{Name: "tiramisu", Quantity: 1}}})
		require.NoError(t, err)
		assert.Len(t, output.Lines, 1)
	})

	t.Run("missing user", func(t *testing.T) {
		h, _, _ := setupHandler(t)
		_, err := h.Execute(context.Background(), &Input{})
		assert.ErrorIs(t, err, ErrMissingUser)
	})
}

func TestRenderLines_Limit(t *testing.T) {
	lines := []models.CartLine{
		{Name: "A", Price: 10, Quantity: 1},
		{Name: "B", Price: 20, Quantity: 2},
		{Name: "C", Price: 30, Quantity: 1},
	}
	out := RenderLines(lines, 2)
	assert.Contains(t, out, "1. A x1 - ₹10")
	assert.Contains(t, out, "2. B x2 - ₹40")
	assert.Contains(t, out, "...and 1 more")
	assert.Contains(t, out, "Total: ₹80")
}
