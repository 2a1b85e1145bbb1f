package order

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"dialogue-orchestrator/internal/common/logger"
	"dialogue-orchestrator/internal/memory"
	"dialogue-orchestrator/internal/models"
	"dialogue-orchestrator/internal/notify"
	"dialogue-orchestrator/internal/store"
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

type fakeNotifier struct {
	orders []models.Order
	err    error
}

func (f *fakeNotifier) OrderPlaced(ctx context.Context, order models.Order) (*notify.Receipt, error) {
	f.orders = append(f.orders, order)
	if f.err != nil {
		return nil, f.err
	}
	return &notify.Receipt{NotificationID: "n-" + order.ID, Status: notify.StatusSent}, nil
}

// failingOrders fails the nth CreateOrder call.
type failingOrders struct {
	store.Orders
	failOn int
	calls  int
}

func (f *failingOrders) CreateOrder(ctx context.Context, order models.Order) error {
	f.calls++
	if f.calls == f.failOn {
		return errors.New("connection reset")
	}
	return f.Orders.CreateOrder(ctx, order)
}

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type fixture struct {
	h        *Handler
	db       *memstore.Store
	mem      *memory.Store
	notifier *fakeNotifier
}

func setup(t *testing.T, opts ...func(*Dependencies)) *fixture {
	t.Helper()
	db := memstore.New().Seed()
	mem := memory.NewStore(db, newTestLogger(t))
	notifier := &fakeNotifier{}
	seq := 0
	deps := Dependencies{
		Catalog:  db,
		Carts:    db,
		Orders:   db,
		Memory:   mem,
		Notifier: notifier,
		NewID: func() string {
			seq++
			return fmt.Sprintf("a1b2c3d4-%04d", seq)
		},
		Now: func() time.Time { return fixedNow },
	}
	for _, opt := range opts {
		opt(&deps)
	}
	return &fixture{
		h:        NewHandler(LoadConfig(), deps, newTestLogger(t)),
		db:       db,
		mem:      mem,
		notifier: notifier,
	}
}

func (f *fixture) addToCart(t *testing.T, restaurant string, items ...models.ItemMention) {
	t.Helper()
	_, err := f.h.Execute(context.Background(), &Input{UserID: "u1", Action: ActionAddItems, RestaurantName: restaurant, Items: items})
	require.NoError(t, err)
}

func TestHandler_AddItems(t *testing.T) {
	tests := []struct {
		name           string
		input          *Input
		wantOutcome    Outcome
		validateOutput func(t *testing.T, f *fixture, output *Output)
	}{
		{
			name:        "named restaurant with a matching dish",
			input:       &Input{UserID: "u1", RestaurantName: "paradise", Items: []models.ItemMention{{Name: "biryani", Quantity: 2}}},
			wantOutcome: OutcomeAdded,
			validateOutput: func(t *testing.T, f *fixture, output *Output) {
				lines, err := f.db.ListCart(context.Background(), "u1")
				require.NoError(t, err)
				require.Len(t, lines, 1)
				assert.Equal(t, "m-chicken-biryani", lines[0].MenuItemID)
				assert.Equal(t, 2, lines[0].Quantity)

				pref, ok := f.mem.Get(context.Background(), "u1").Get(models.MemoryRestaurantPreference, "r-paradise")
				assert.True(t, ok)
				assert.Equal(t, "Paradise", pref)

				assert.Equal(t, "Added 2 x Chicken Biryani from Paradise to your cart.", output.Response)
			},
		},
		{
			name:        "unknown restaurant asks which one",
			input:       &Input{UserID: "u1", RestaurantName: "joe's diner", Items: []models.ItemMention{{Name: "burger", Quantity: 1}}},
			wantOutcome: OutcomeRestaurantUnknown,
			validateOutput: func(t *testing.T, f *fixture, output *Output) {
				assert.Contains(t, output.Response, `I couldn't find a restaurant called "joe's diner".`)
			},
		},
		{
			name:        "restaurant listed without a menu",
			input:       &Input{UserID: "u1", RestaurantName: "new cafe"},
			wantOutcome: OutcomeNoMenu,
			validateOutput: func(t *testing.T, f *fixture, output *Output) {
				assert.Equal(t, "New Cafe is listed, but its menu isn't available yet.", output.Response)
			},
		},
		{
			name:        "restaurant without dishes shows the menu",
			input:       &Input{UserID: "u1", RestaurantName: "dragon wok"},
			wantOutcome: OutcomeMenu,
			validateOutput: func(t *testing.T, f *fixture, output *Output) {
				require.Len(t, output.Menu, 2)
				assert.Contains(t, output.Response, "1. Kung Pao Chicken - ₹300")
				assert.Contains(t, output.Response, "2. Veg Hakka Noodles - ₹190 (veg)")
				assert.NotContains(t, output.Response, "Spring Rolls")
			},
		},
		{
			name: "partial match lists the real menu",
			input: &Input{UserID: "u1", RestaurantName: "paradise", Items: []models.ItemMention{
				{Name: "lassi", Quantity: 1},
				{Name: "pizza", Quantity: 1},
			}},
			wantOutcome: OutcomePartial,
			validateOutput: func(t *testing.T, f *fixture, output *Output) {
				assert.Equal(t, []string{"pizza"}, output.Unmatched)
				assert.Contains(t, output.Response, "Added 1 x Sweet Lassi from Paradise to your cart.")
				assert.Contains(t, output.Response, "I couldn't find pizza at Paradise. Here's what they have:")
				assert.Contains(t, output.Response, "1. Chicken Biryani - ₹280")
			},
		},
		{
			name:        "no match leaves cart and preferences untouched",
			input:       &Input{UserID: "u1", RestaurantName: "paradise", Items: []models.ItemMention{{Name: "pizza", Quantity: 1}}},
			wantOutcome: OutcomeNoMatch,
			validateOutput: func(t *testing.T, f *fixture, output *Output) {
				lines, err := f.db.ListCart(context.Background(), "u1")
				require.NoError(t, err)
				assert.Empty(t, lines)
				assert.True(t, f.mem.Get(context.Background(), "u1").IsEmpty())
				assert.Contains(t, output.Response, "I couldn't find pizza at Paradise. Here's the menu:")
			},
		},
		{
			name:        "nothing named asks for a restaurant",
			input:       &Input{UserID: "u1"},
			wantOutcome: OutcomeNeedRestaurant,
			validateOutput: func(t *testing.T, f *fixture, output *Output) {
				assert.Equal(t, msgNeedRestaurant, output.Response)
			},
		},
		{
			name:        "dish without restaurant matches across the catalog",
			input:       &Input{UserID: "u1", Items: []models.ItemMention{{Name: "tiramisu", Quantity: 1}}},
			wantOutcome: OutcomeAdded,
			validateOutput: func(t *testing.T, f *fixture, output *Output) {
				require.Len(t, output.Matched, 1)
				assert.Equal(t, "r-pizzaria", output.Matched[0].RestaurantID)
				assert.Equal(t, "Added 1 x Tiramisu to your cart.", output.Response)
			},
		},
		{
			name:        "unknown dish without restaurant",
			input:       &Input{UserID: "u1", Items: []models.ItemMention{{Name: "unicorn steak", Quantity: 1}}},
			wantOutcome: OutcomeNeedRestaurant,
			validateOutput: func(t *testing.T, f *fixture, output *Output) {
				assert.Contains(t, output.Response, "I couldn't find unicorn steak on any menu.")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setup(t)
			output, err := f.h.Execute(context.Background(), tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.wantOutcome, output.Outcome)
			if tt.validateOutput != nil {
				tt.validateOutput(t, f, output)
			}
		})
	}
}

func TestHandler_AddItems_IncrementsCartSnapshot(t *testing.T) {
	f := setup(t)
	f.addToCart(t, "paradise", models.ItemMention{Name: "biryani", Quantity: 1})
	f.addToCart(t, "paradise", models.ItemMention{Name: "chicken biryani", Quantity: 2})

	lines, err := f.db.ListCart(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, 3, lines[0].Quantity)

	raw, ok := f.mem.Get(context.Background(), "u1").Get(models.MemoryCartState, models.CartStateKey)
	require.True(t, ok)
	assert.Contains(t, raw, `"items":3`)
}

func TestHandler_Place(t *testing.T) {
	ctx := context.Background()

	t.Run("empty cart", func(t *testing.T) {
		f := setup(t)
		output, err := f.h.Execute(ctx, &Input{UserID: "u1", Action: ActionPlace})
		require.NoError(t, err)
		assert.Equal(t, OutcomeEmptyCart, output.Outcome)
		assert.Equal(t, msgEmptyCart, output.Response)
	})

	t.Run("missing address returns a pending draft", func(t *testing.T) {
		f := setup(t)
		f.addToCart(t, "paradise", models.ItemMention{Name: "biryani", Quantity: 2})

		output, err := f.h.Execute(ctx, &Input{UserID: "u1", Action: ActionPlace})
		require.NoError(t, err)
		assert.Equal(t, OutcomePending, output.Outcome)
		require.NotNil(t, output.Draft)
		assert.Equal(t, []string{"address"}, output.Draft.MissingFields)
		assert.Equal(t, "Paradise", output.Draft.RestaurantName)
		assert.Equal(t, 560.0, output.Draft.Total)
		assert.Contains(t, output.Response, "comes to ₹560")

		lines, err := f.db.ListCart(ctx, "u1")
		require.NoError(t, err)
		assert.Len(t, lines, 1)
		assert.Empty(t, f.notifier.orders)
	})

	t.Run("explicit address places and clears the cart", func(t *testing.T) {
		f := setup(t)
		f.addToCart(t, "paradise", models.ItemMention{Name: "biryani", Quantity: 2}, models.ItemMention{Name: "lassi", Quantity: 1})

		output, err := f.h.Execute(ctx, &Input{UserID: "u1", Action: ActionPlace, Address: "12 Park Street"})
		require.NoError(t, err)
		assert.Equal(t, OutcomePlaced, output.Outcome)
		assert.True(t, output.Placed())
		require.Len(t, output.Orders, 1)

		order := output.Orders[0]
		assert.Equal(t, "a1b2c3d4-0001", order.ID)
		assert.Equal(t, "Paradise", order.RestaurantName)
		assert.Equal(t, "Hyderabadi", order.Cuisine)
		assert.Equal(t, 640.0, order.Total)
		assert.Equal(t, models.OrderStatusPlaced, order.Status)
		assert.Equal(t, fixedNow, order.PlacedAt)

		stored, err := f.db.GetOrder(ctx, order.ID)
		require.NoError(t, err)
		assert.Len(t, stored.Items, 2)

		lines, err := f.db.ListCart(ctx, "u1")
		require.NoError(t, err)
		assert.Empty(t, lines)

		mem := f.mem.Get(ctx, "u1")
		addr, ok := memory.DefaultAddress(mem)
		assert.True(t, ok)
		assert.Equal(t, "12 Park Street", addr)
		last, ok := memory.LastOrder(mem)
		require.True(t, ok)
		assert.Equal(t, order.ID, last.OrderID)
		assert.Len(t, last.Items, 2)

		require.Len(t, f.notifier.orders, 1)
		assert.Equal(t, order.ID, f.notifier.orders[0].ID)
		assert.Equal(t, "Order placed!\nParadise order #a1b2c3d4 for ₹640 will be delivered to 12 Park Street.", output.Response)
	})

	t.Run("saved default address is used", func(t *testing.T) {
		f := setup(t)
		require.NoError(t, f.mem.Set(ctx, "u1", models.MemoryDefaultAddress, models.DefaultAddressKey, "221B Baker Street"))
		f.addToCart(t, "green bowl", models.ItemMention{Name: "quinoa", Quantity: 1})

		output, err := f.h.Execute(ctx, &Input{UserID: "u1", Action: ActionPlace})
		require.NoError(t, err)
		require.True(t, output.Placed())
		assert.Equal(t, "221B Baker Street", output.Orders[0].Address)
	})

	t.Run("one order per restaurant", func(t *testing.T) {
		f := setup(t)
		f.addToCart(t, "paradise", models.ItemMention{Name: "biryani", Quantity: 1})
		f.addToCart(t, "napoli pizzeria", models.ItemMention{Name: "tiramisu", Quantity: 1})

		output, err := f.h.Execute(ctx, &Input{UserID: "u1", Action: ActionPlace, Address: "12 Park Street"})
		require.NoError(t, err)
		require.Len(t, output.Orders, 2)
		assert.Equal(t, "r-paradise", output.Orders[0].RestaurantID)
		assert.Equal(t, "r-pizzaria", output.Orders[1].RestaurantID)
		assert.Len(t, f.notifier.orders, 2)

		last, ok := memory.LastOrder(f.mem.Get(ctx, "u1"))
		require.True(t, ok)
		assert.Equal(t, "r-pizzaria", last.RestaurantID)
	})

	t.Run("draft names every restaurant", func(t *testing.T) {
		f := setup(t)
		f.addToCart(t, "paradise", models.ItemMention{Name: "biryani", Quantity: 1})
		f.addToCart(t, "napoli pizzeria", models.ItemMention{Name: "tiramisu", Quantity: 1})

		output, err := f.h.Execute(ctx, &Input{UserID: "u1", Action: ActionPlace})
		require.NoError(t, err)
		require.NotNil(t, output.Draft)
		assert.Equal(t, "Paradise, Napoli Pizzeria", output.Draft.RestaurantName)
		assert.Len(t, output.Draft.Items, 2)
	})
}

func TestHandler_Place_Failures(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name      string
		failOp    string
		wantErr   error
		wantStage string
		wantLines int
	}{
		{name: "order insert fails", failOp: "CreateOrder", wantErr: ErrOrderPlacementFailed, wantStage: StageCreateOrder, wantLines: 1},
		{name: "item insert fails after order insert", failOp: "AddOrderItems", wantErr: ErrOrderPlacementFailed, wantStage: StageAddItems, wantLines: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setup(t)
			f.addToCart(t, "paradise", models.ItemMention{Name: "biryani", Quantity: 1})
			f.db.Fail[tt.failOp] = errors.New("connection reset")

			output, err := f.h.Execute(ctx, &Input{UserID: "u1", Action: ActionPlace, Address: "12 Park Street"})
			require.Error(t, err)
			assert.Nil(t, output)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Contains(t, err.Error(), tt.wantStage)

			delete(f.db.Fail, tt.failOp)
			lines, err := f.db.ListCart(ctx, "u1")
			require.NoError(t, err)
			assert.Len(t, lines, tt.wantLines)
			assert.Empty(t, f.notifier.orders)
		})
	}

	t.Run("second restaurant fails and first lines leave the cart", func(t *testing.T) {
		var orders *failingOrders
		f := setup(t, func(d *Dependencies) {
			orders = &failingOrders{Orders: d.Orders, failOn: 2}
			d.Orders = orders
		})
		f.addToCart(t, "paradise", models.ItemMention{Name: "biryani", Quantity: 1})
		f.addToCart(t, "napoli pizzeria", models.ItemMention{Name: "tiramisu", Quantity: 1})

		_, err := f.h.Execute(ctx, &Input{UserID: "u1", Action: ActionPlace, Address: "12 Park Street"})
		require.ErrorIs(t, err, ErrOrderPlacementFailed)

		lines, err := f.db.ListCart(ctx, "u1")
		require.NoError(t, err)
		require.Len(t, lines, 1)
		assert.Equal(t, "m-tiramisu", lines[0].MenuItemID)
	})

	t.Run("post placement failures are not fatal", func(t *testing.T) {
		f := setup(t)
		f.addToCart(t, "paradise", models.ItemMention{Name: "biryani", Quantity: 1})
		f.notifier.err = errors.New("ses throttled")
		f.db.Fail["UpsertMemory"] = errors.New("disk full")

		output, err := f.h.Execute(ctx, &Input{UserID: "u1", Action: ActionPlace, Address: "12 Park Street"})
		require.NoError(t, err)
		assert.True(t, output.Placed())
		assert.Len(t, f.notifier.orders, 1)
	})

	t.Run("catalog failure", func(t *testing.T) {
		f := setup(t)
		f.db.Fail["FindRestaurantByName"] = errors.New("timeout")

		_, err := f.h.Execute(ctx, &Input{UserID: "u1", RestaurantName: "paradise"})
		require.ErrorIs(t, err, ErrCatalogUnavailable)
	})

	t.Run("missing user", func(t *testing.T) {
		f := setup(t)
		_, err := f.h.Execute(ctx, &Input{Action: ActionPlace})
		require.ErrorIs(t, err, ErrMissingUser)
	})
}

func TestHandler_Replay(t *testing.T) {
	ctx := context.Background()
	snapshot := func(items ...models.OrderItem) *models.LastOrderSnapshot {
		return &models.LastOrderSnapshot{
			OrderID:        "prev-1",
			RestaurantID:   "r-dragon",
			RestaurantName: "Dragon Wok",
			Items:          items,
			PlacedAt:       fixedNow.Add(-48 * time.Hour),
		}
	}
	kungPao := models.OrderItem{MenuItemID: "m-kung-pao", Name: "Kung Pao Chicken", Quantity: 2, Price: 250}
	springRolls := models.OrderItem{MenuItemID: "m-spring-rolls", Name: "Spring Rolls", Quantity: 1, Price: 140}

	t.Run("missing snapshot", func(t *testing.T) {
		f := setup(t)
		_, err := f.h.Execute(ctx, &Input{UserID: "u1", Action: ActionReplay})
		require.ErrorIs(t, err, ErrMissingSnapshot)
	})

	t.Run("places directly with a saved address at current prices", func(t *testing.T) {
		f := setup(t)
		require.NoError(t, f.mem.Set(ctx, "u1", models.MemoryDefaultAddress, models.DefaultAddressKey, "12 Park Street"))

		output, err := f.h.Execute(ctx, &Input{UserID: "u1", Action: ActionReplay, Snapshot: snapshot(kungPao)})
		require.NoError(t, err)
		require.True(t, output.Placed())
		assert.Equal(t, 600.0, output.Orders[0].Total)
		assert.Equal(t, "Dragon Wok", output.Orders[0].RestaurantName)

		lines, err := f.db.ListCart(ctx, "u1")
		require.NoError(t, err)
		assert.Empty(t, lines)
	})

	t.Run("without address stages the cart", func(t *testing.T) {
		f := setup(t)
		output, err := f.h.Execute(ctx, &Input{UserID: "u1", Action: ActionReplay, Snapshot: snapshot(kungPao)})
		require.NoError(t, err)
		assert.Equal(t, OutcomePending, output.Outcome)
		require.NotNil(t, output.Draft)
		assert.Equal(t, "Dragon Wok", output.Draft.RestaurantName)
		assert.Equal(t, 600.0, output.Draft.Total)

		lines, err := f.db.ListCart(ctx, "u1")
		require.NoError(t, err)
		require.Len(t, lines, 1)
		assert.Equal(t, 2, lines[0].Quantity)
	})

	t.Run("unavailable items are left out", func(t *testing.T) {
		f := setup(t)
		output, err := f.h.Execute(ctx, &Input{UserID: "u1", Action: ActionReplay, Address: "12 Park Street", Snapshot: snapshot(kungPao, springRolls)})
		require.NoError(t, err)
		require.True(t, output.Placed())
		assert.Equal(t, []string{"Spring Rolls"}, output.Unmatched)
		assert.Contains(t, output.Response, "Spring Rolls isn't available anymore")
	})

	t.Run("nothing available", func(t *testing.T) {
		f := setup(t)
		output, err := f.h.Execute(ctx, &Input{UserID: "u1", Action: ActionReplay, Snapshot: snapshot(springRolls)})
		require.NoError(t, err)
		assert.Equal(t, OutcomeNoMatch, output.Outcome)
		assert.Equal(t, msgReplayNoMatch, output.Response)
	})
}

func TestRenderMenu(t *testing.T) {
	items := []models.MenuItem{
		{Name: "A", Price: 100},
		{Name: "B", Price: 200, IsVegetarian: true},
		{Name: "C", Price: 300},
	}
	assert.Equal(t, "1. A - ₹100\n2. B - ₹200 (veg)\n...and 1 more", RenderMenu(items, 2))
	assert.Equal(t, "", RenderMenu(nil, 2))
}
