// Package memstore is an in-memory implementation of store.Store. It backs
// tests and the local chat command.
package memstore

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"dialogue-orchestrator/internal/models"
	"dialogue-orchestrator/internal/store"
)

type Store struct {
	mu          sync.RWMutex
	restaurants []models.Restaurant
	menu        []models.MenuItem
	carts       map[string][]models.CartLine
	wishlists   map[string][]models.WishlistItem
	orders      []models.Order
	orderItems  map[string][]models.OrderItem
	memory      map[string][]models.MemoryEntry
	contacts    map[string]models.Contact
	now         func() time.Time

	// Fail injects errors by operation name for failure-path tests.
	Fail map[string]error
}

func New() *Store {
	return &Store{
		carts:      make(map[string][]models.CartLine),
		wishlists:  make(map[string][]models.WishlistItem),
		orderItems: make(map[string][]models.OrderItem),
		memory:     make(map[string][]models.MemoryEntry),
		contacts:   make(map[string]models.Contact),
		now:        time.Now,
		Fail:       make(map[string]error),
	}
}

func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

func (s *Store) AddRestaurant(r models.Restaurant) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.restaurants = append(s.restaurants, r)
}

func (s *Store) AddMenuItem(item models.MenuItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.menu = append(s.menu, item)
}

func (s *Store) SetContact(c models.Contact) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.contacts[c.UserID] = c
}

func (s *Store) failure(op string) error {
	if s.Fail == nil {
		return nil
	}
	if err, ok := s.Fail[op]; ok {
		return err
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.failure("Ping")
}

func (s *Store) ListRestaurants(ctx context.Context, filter store.RestaurantFilter) ([]models.Restaurant, error) {
	if err := s.failure("ListRestaurants"); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.Restaurant
	for _, r := range s.restaurants {
		if filter.NameContains != "" && !containsFold(r.Name, filter.NameContains) {
			continue
		}
		if filter.Cuisine != "" && !containsFold(r.Cuisine, filter.Cuisine) {
			continue
		}
		if r.Rating < filter.MinRating {
			continue
		}
		out = append(out, r)
		if filter.Limit > 0 && len(out) >= filter.Limit {
			break
		}
	}
	return out, nil
}

func (s *Store) GetRestaurant(ctx context.Context, id string) (*models.Restaurant, error) {
	if err := s.failure("GetRestaurant"); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.restaurants {
		if r.ID == id {
			r := r
			return &r, nil
		}
	}
	return nil, fmt.Errorf("%w: restaurant %s", store.ErrNotFound, id)
}

// FindRestaurantByName prefers an exact case-insensitive match and falls
// back to substring matching in either direction.
func (s *Store) FindRestaurantByName(ctx context.Context, name string) (*models.Restaurant, error) {
	if err := s.failure("FindRestaurantByName"); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.restaurants {
		if strings.EqualFold(r.Name, name) {
			r := r
			return &r, nil
		}
	}
	for _, r := range s.restaurants {
		if containsFold(r.Name, name) || containsFold(name, r.Name) {
			r := r
			return &r, nil
		}
	}
	return nil, fmt.Errorf("%w: restaurant %q", store.ErrNotFound, name)
}

func (s *Store) ListMenuItems(ctx context.Context, filter store.MenuFilter) ([]models.MenuItem, error) {
	if err := s.failure("ListMenuItems"); err != nil {
		return nil, err
	}
	s.mu.RLock()
	var out []models.MenuItem
	for _, item := range s.menu {
		if matchesMenuFilter(item, filter) {
			out = append(out, cloneItem(item))
		}
	}
	s.mu.RUnlock()

	switch filter.OrderBy {
	case "price":
		sort.SliceStable(out, func(i, j int) bool {
			if filter.Descending {
				return out[i].Price > out[j].Price
			}
			return out[i].Price < out[j].Price
		})
	case "rating":
		sort.SliceStable(out, func(i, j int) bool {
			if filter.Descending {
				return out[i].Rating > out[j].Rating
			}
			return out[i].Rating < out[j].Rating
		})
	case "name":
		sort.SliceStable(out, func(i, j int) bool {
			if filter.Descending {
				return out[i].Name > out[j].Name
			}
			return out[i].Name < out[j].Name
		})
	}

	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func matchesMenuFilter(item models.MenuItem, f store.MenuFilter) bool {
	if f.RestaurantID != "" && item.RestaurantID != f.RestaurantID {
		return false
	}
	if f.NameContains != "" && !containsFold(item.Name, f.NameContains) {
		return false
	}
	if f.Category != "" && !containsFold(item.Category, f.Category) {
		return false
	}
	if f.MaxPrice != nil && item.Price > *f.MaxPrice {
		return false
	}
	if item.Rating < f.MinRating {
		return false
	}
	if f.Vegetarian != nil && item.IsVegetarian != *f.Vegetarian {
		return false
	}
	if f.MaxSpice != nil && item.SpiceLevel != nil && *item.SpiceLevel > *f.MaxSpice {
		return false
	}
	if f.AvailableOnly && !item.Available {
		return false
	}
	return true
}

func (s *Store) GetMenuItem(ctx context.Context, id string) (*models.MenuItem, error) {
	if err := s.failure("GetMenuItem"); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, item := range s.menu {
		if item.ID == id {
			c := cloneItem(item)
			return &c, nil
		}
	}
	return nil, fmt.Errorf("%w: menu item %s", store.ErrNotFound, id)
}

func (s *Store) ListCart(ctx context.Context, userID string) ([]models.CartLine, error) {
	if err := s.failure("ListCart"); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.CartLine(nil), s.carts[userID]...), nil
}

func (s *Store) GetCartLine(ctx context.Context, userID, menuItemID string) (*models.CartLine, error) {
	if err := s.failure("GetCartLine"); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, l := range s.carts[userID] {
		if l.MenuItemID == menuItemID {
			l := l
			return &l, nil
		}
	}
	return nil, nil
}

func (s *Store) UpsertCartLine(ctx context.Context, line models.CartLine) error {
	if err := s.failure("UpsertCartLine"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	lines := s.carts[line.UserID]
	for i, l := range lines {
		if l.MenuItemID == line.MenuItemID {
			lines[i] = line
			return nil
		}
	}
	s.carts[line.UserID] = append(lines, line)
	return nil
}

func (s *Store) RemoveCartLine(ctx context.Context, userID, menuItemID string) error {
	if err := s.failure("RemoveCartLine"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	lines := s.carts[userID]
	for i, l := range lines {
		if l.MenuItemID == menuItemID {
			s.carts[userID] = append(lines[:i:i], lines[i+1:]...)
			return nil
		}
	}
	return nil
}

func (s *Store) ClearCart(ctx context.Context, userID string) error {
	if err := s.failure("ClearCart"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, userID)
	return nil
}

func (s *Store) ListWishlist(ctx context.Context, userID string) ([]models.WishlistItem, error) {
	if err := s.failure("ListWishlist"); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.WishlistItem(nil), s.wishlists[userID]...), nil
}

func (s *Store) AddWishlistItem(ctx context.Context, item models.WishlistItem) error {
	if err := s.failure("AddWishlistItem"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, w := range s.wishlists[item.UserID] {
		if w.MenuItemID == item.MenuItemID {
			return nil
		}
	}
	if item.AddedAt.IsZero() {
		item.AddedAt = s.now()
	}
	s.wishlists[item.UserID] = append(s.wishlists[item.UserID], item)
	return nil
}

func (s *Store) RemoveWishlistItem(ctx context.Context, userID, menuItemID string) error {
	if err := s.failure("RemoveWishlistItem"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	items := s.wishlists[userID]
	for i, w := range items {
		if w.MenuItemID == menuItemID {
			s.wishlists[userID] = append(items[:i:i], items[i+1:]...)
			return nil
		}
	}
	return nil
}

func (s *Store) CreateOrder(ctx context.Context, order models.Order) error {
	if err := s.failure("CreateOrder"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if order.PlacedAt.IsZero() {
		order.PlacedAt = s.now()
	}
	order.Items = nil
	s.orders = append(s.orders, order)
	return nil
}

func (s *Store) AddOrderItems(ctx context.Context, orderID string, items []models.OrderItem) error {
	if err := s.failure("AddOrderItems"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, item := range items {
		item.OrderID = orderID
		s.orderItems[orderID] = append(s.orderItems[orderID], item)
	}
	return nil
}

func (s *Store) UpdateOrderStatus(ctx context.Context, orderID string, status models.OrderStatus) error {
	if err := s.failure("UpdateOrderStatus"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.orders {
		if s.orders[i].ID == orderID {
			s.orders[i].Status = status
			return nil
		}
	}
	return fmt.Errorf("%w: order %s", store.ErrNotFound, orderID)
}

func (s *Store) GetOrder(ctx context.Context, orderID string) (*models.Order, error) {
	if err := s.failure("GetOrder"); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, o := range s.orders {
		if strings.EqualFold(o.ID, orderID) {
			o.Items = append([]models.OrderItem(nil), s.orderItems[o.ID]...)
			return &o, nil
		}
	}
	return nil, fmt.Errorf("%w: order %s", store.ErrNotFound, orderID)
}

func (s *Store) ListOrders(ctx context.Context, userID string, limit int) ([]models.Order, error) {
	if err := s.failure("ListOrders"); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Order
	for i := len(s.orders) - 1; i >= 0; i-- {
		o := s.orders[i]
		if o.UserID != userID {
			continue
		}
		o.Items = append([]models.OrderItem(nil), s.orderItems[o.ID]...)
		out = append(out, o)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (s *Store) ListOrderLines(ctx context.Context, userID string, limit int) ([]models.OrderLine, error) {
	if err := s.failure("ListOrderLines"); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.OrderLine
	for i := len(s.orders) - 1; i >= 0; i-- {
		o := s.orders[i]
		if o.UserID != userID {
			continue
		}
		for _, item := range s.orderItems[o.ID] {
			out = append(out, s.orderLine(o, item))
			if limit > 0 && len(out) >= limit {
				return out, nil
			}
		}
	}
	return out, nil
}

func (s *Store) ListOrderLinesSince(ctx context.Context, since time.Time) ([]models.OrderLine, error) {
	if err := s.failure("ListOrderLinesSince"); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.OrderLine
	for _, o := range s.orders {
		if o.PlacedAt.Before(since) {
			continue
		}
		for _, item := range s.orderItems[o.ID] {
			out = append(out, s.orderLine(o, item))
		}
	}
	return out, nil
}

// orderLine must be called with s.mu held.
func (s *Store) orderLine(o models.Order, item models.OrderItem) models.OrderLine {
	line := models.OrderLine{
		OrderID:        o.ID,
		UserID:         o.UserID,
		MenuItemID:     item.MenuItemID,
		Name:           item.Name,
		RestaurantID:   o.RestaurantID,
		RestaurantName: o.RestaurantName,
		Quantity:       item.Quantity,
		Price:          item.Price,
		OrderedAt:      o.PlacedAt,
	}
	for _, m := range s.menu {
		if m.ID == item.MenuItemID {
			line.Category = m.Category
			break
		}
	}
	return line
}

func (s *Store) ListMemory(ctx context.Context, userID string) ([]models.MemoryEntry, error) {
	if err := s.failure("ListMemory"); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.MemoryEntry(nil), s.memory[userID]...), nil
}

func (s *Store) UpsertMemory(ctx context.Context, entry models.MemoryEntry) error {
	if err := s.failure("UpsertMemory"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if entry.UpdatedAt.IsZero() {
		entry.UpdatedAt = s.now()
	}
	entries := s.memory[entry.UserID]
	for i, e := range entries {
		if e.Kind == entry.Kind && e.Key == entry.Key {
			entries[i] = entry
			return nil
		}
	}
	s.memory[entry.UserID] = append(entries, entry)
	return nil
}

func (s *Store) DeleteMemoryKind(ctx context.Context, userID string, kind models.MemoryKind) error {
	if err := s.failure("DeleteMemoryKind"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.memory[userID][:0:0]
	for _, e := range s.memory[userID] {
		if e.Kind != kind {
			kept = append(kept, e)
		}
	}
	s.memory[userID] = kept
	return nil
}

func (s *Store) GetContact(ctx context.Context, userID string) (*models.Contact, error) {
	if err := s.failure("GetContact"); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.contacts[userID]
	if !ok {
		return nil, fmt.Errorf("%w: contact %s", store.ErrNotFound, userID)
	}
	return &c, nil
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

func cloneItem(item models.MenuItem) models.MenuItem {
	item.Allergens = append([]string(nil), item.Allergens...)
	return item
}

var _ store.Store = (*Store)(nil)
