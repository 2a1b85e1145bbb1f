package models

import "time"

type CartLine struct {
	UserID       string  `json:"userId"`
	MenuItemID   string  `json:"menuItemId"`
	RestaurantID string  `json:"restaurantId"`
	Name         string  `json:"name"`
	Price        float64 `json:"price"`
	Quantity     int     `json:"quantity"`
}

func (l CartLine) Subtotal() float64 {
	return l.Price * float64(l.Quantity)
}

// CartTotal sums every line subtotal.
func CartTotal(lines []CartLine) float64 {
	var total float64
	for _, l := range lines {
		total += l.Subtotal()
	}
	return total
}

type WishlistItem struct {
	UserID       string    `json:"userId"`
	MenuItemID   string    `json:"menuItemId"`
	RestaurantID string    `json:"restaurantId"`
	Name         string    `json:"name"`
	AddedAt      time.Time `json:"addedAt"`
}
