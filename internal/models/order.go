package models

import "time"

type OrderStatus string

const (
	OrderStatusPlaced         OrderStatus = "placed"
	OrderStatusPreparing      OrderStatus = "preparing"
	OrderStatusOutForDelivery OrderStatus = "out_for_delivery"
	OrderStatusDelivered      OrderStatus = "delivered"
	OrderStatusFailed         OrderStatus = "failed"
)

type Order struct {
	ID             string      `json:"id"`
	UserID         string      `json:"userId"`
	RestaurantID   string      `json:"restaurantId"`
	RestaurantName string      `json:"restaurantName"`
	Cuisine        string      `json:"cuisine,omitempty"`
	Status         OrderStatus `json:"status"`
	Total          float64     `json:"total"`
	Address        string      `json:"address"`
	PlacedAt       time.Time   `json:"placedAt"`
	Items          []OrderItem `json:"items,omitempty"`
}

type OrderItem struct {
	OrderID    string  `json:"orderId"`
	MenuItemID string  `json:"menuItemId"`
	Name       string  `json:"name"`
	Quantity   int     `json:"quantity"`
	Price      float64 `json:"price"`
}

// OrderLine is an order item joined with its order and menu item, used for
// history aggregation.
type OrderLine struct {
	OrderID        string    `json:"orderId"`
	UserID         string    `json:"userId"`
	MenuItemID     string    `json:"menuItemId"`
	Name           string    `json:"name"`
	Category       string    `json:"category"`
	RestaurantID   string    `json:"restaurantId"`
	RestaurantName string    `json:"restaurantName"`
	Quantity       int       `json:"quantity"`
	Price          float64   `json:"price"`
	OrderedAt      time.Time `json:"orderedAt"`
}

// OrderDraft is an order that still needs user input (usually an address)
// before it can be placed.
type OrderDraft struct {
	RestaurantID   string      `json:"restaurantId"`
	RestaurantName string      `json:"restaurantName"`
	Items          []OrderItem `json:"items"`
	Total          float64     `json:"total"`
	Address        string      `json:"address,omitempty"`
	MissingFields  []string    `json:"missingFields,omitempty"`
}

type Contact struct {
	UserID string `json:"userId"`
	Email  string `json:"email,omitempty"`
	Phone  string `json:"phone,omitempty"`
}
