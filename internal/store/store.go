// Package store defines the data-access capability the dialogue engine
// reads and mutates through. Components take these interfaces explicitly;
// there is no process-wide store.
package store

import (
	"context"
	"errors"
	"time"

	"dialogue-orchestrator/internal/models"
)

var (
	ErrNotFound = errors.New("NOT_FOUND")
)

type RestaurantFilter struct {
	NameContains string
	Cuisine      string
	MinRating    float64
	Limit        int
}

type MenuFilter struct {
	RestaurantID  string
	NameContains  string
	Category      string
	MaxPrice      *float64
	MinRating     float64
	Vegetarian    *bool
	MaxSpice      *int
	AvailableOnly bool
	OrderBy       string // price, rating, name; empty keeps catalog order
	Descending    bool
	Limit         int
}

type Catalog interface {
	ListRestaurants(ctx context.Context, filter RestaurantFilter) ([]models.Restaurant, error)
	GetRestaurant(ctx context.Context, id string) (*models.Restaurant, error)
	// FindRestaurantByName returns ErrNotFound when no restaurant name matches.
	FindRestaurantByName(ctx context.Context, name string) (*models.Restaurant, error)
	ListMenuItems(ctx context.Context, filter MenuFilter) ([]models.MenuItem, error)
	GetMenuItem(ctx context.Context, id string) (*models.MenuItem, error)
}

type Carts interface {
	ListCart(ctx context.Context, userID string) ([]models.CartLine, error)
	// GetCartLine returns (nil, nil) when the item is not in the cart.
	GetCartLine(ctx context.Context, userID, menuItemID string) (*models.CartLine, error)
	UpsertCartLine(ctx context.Context, line models.CartLine) error
	RemoveCartLine(ctx context.Context, userID, menuItemID string) error
	ClearCart(ctx context.Context, userID string) error
}

type Wishlists interface {
	ListWishlist(ctx context.Context, userID string) ([]models.WishlistItem, error)
	AddWishlistItem(ctx context.Context, item models.WishlistItem) error
	RemoveWishlistItem(ctx context.Context, userID, menuItemID string) error
}

type Orders interface {
	CreateOrder(ctx context.Context, order models.Order) error
	AddOrderItems(ctx context.Context, orderID string, items []models.OrderItem) error
	UpdateOrderStatus(ctx context.Context, orderID string, status models.OrderStatus) error
	GetOrder(ctx context.Context, orderID string) (*models.Order, error)
	// ListOrders returns the user's orders, most recent first.
	ListOrders(ctx context.Context, userID string, limit int) ([]models.Order, error)
	// ListOrderLines returns the user's order lines, most recent first.
	ListOrderLines(ctx context.Context, userID string, limit int) ([]models.OrderLine, error)
	// ListOrderLinesSince returns every user's order lines placed at or after since.
	ListOrderLinesSince(ctx context.Context, since time.Time) ([]models.OrderLine, error)
}

type Memories interface {
	ListMemory(ctx context.Context, userID string) ([]models.MemoryEntry, error)
	UpsertMemory(ctx context.Context, entry models.MemoryEntry) error
	DeleteMemoryKind(ctx context.Context, userID string, kind models.MemoryKind) error
}

type Users interface {
	GetContact(ctx context.Context, userID string) (*models.Contact, error)
}

// Store is the full capability set.
type Store interface {
	Catalog
	Carts
	Wishlists
	Orders
	Memories
	Users
	Ping(ctx context.Context) error
}
