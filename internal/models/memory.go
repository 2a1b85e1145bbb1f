package models

import (
	"sort"
	"time"
)

type MemoryKind string

const (
	MemoryPreference           MemoryKind = "preference"
	MemoryLastOrder            MemoryKind = "last_order"
	MemoryDefaultAddress       MemoryKind = "default_address"
	MemoryCartState            MemoryKind = "cart_state"
	MemoryRestaurantPreference MemoryKind = "restaurant_preference"
)

var MemoryKinds = []MemoryKind{
	MemoryPreference, MemoryLastOrder, MemoryDefaultAddress, MemoryCartState, MemoryRestaurantPreference,
}

func (k MemoryKind) Valid() bool {
	for _, known := range MemoryKinds {
		if k == known {
			return true
		}
	}
	return false
}

type MemoryEntry struct {
	UserID    string     `json:"userId"`
	Kind      MemoryKind `json:"kind"`
	Key       string     `json:"key"`
	Value     string     `json:"value"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// UserMemory holds every entry for one user, partitioned by kind.
type UserMemory struct {
	UserID  string                           `json:"userId"`
	Entries map[MemoryKind]map[string]string `json:"entries"`
}

func NewUserMemory(userID string) *UserMemory {
	return &UserMemory{UserID: userID, Entries: make(map[MemoryKind]map[string]string)}
}

// NewUserMemoryFromEntries partitions entries by kind. Later entries for the
// same kind and key win.
func NewUserMemoryFromEntries(userID string, entries []MemoryEntry) *UserMemory {
	mem := NewUserMemory(userID)
	for _, e := range entries {
		mem.Put(e.Kind, e.Key, e.Value)
	}
	return mem
}

func (m *UserMemory) Put(kind MemoryKind, key, value string) {
	if m.Entries == nil {
		m.Entries = make(map[MemoryKind]map[string]string)
	}
	bucket, ok := m.Entries[kind]
	if !ok {
		bucket = make(map[string]string)
		m.Entries[kind] = bucket
	}
	bucket[key] = value
}

func (m *UserMemory) Get(kind MemoryKind, key string) (string, bool) {
	if m == nil {
		return "", false
	}
	v, ok := m.Entries[kind][key]
	return v, ok
}

func (m *UserMemory) Kind(kind MemoryKind) map[string]string {
	if m == nil {
		return nil
	}
	return m.Entries[kind]
}

// Keys returns the keys of one kind in sorted order.
func (m *UserMemory) Keys(kind MemoryKind) []string {
	bucket := m.Kind(kind)
	keys := make([]string, 0, len(bucket))
	for k := range bucket {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (m *UserMemory) IsEmpty() bool {
	if m == nil {
		return true
	}
	for _, bucket := range m.Entries {
		if len(bucket) > 0 {
			return false
		}
	}
	return true
}

// LastOrderSnapshot is the value stored under the last_order memory kind.
type LastOrderSnapshot struct {
	OrderID        string      `json:"orderId"`
	RestaurantID   string      `json:"restaurantId"`
	RestaurantName string      `json:"restaurantName"`
	Items          []OrderItem `json:"items"`
	PlacedAt       time.Time   `json:"placedAt"`
}

// CartSnapshot is the value stored under the cart_state memory kind.
type CartSnapshot struct {
	Lines     int       `json:"lines"`
	Items     int       `json:"items"`
	Total     float64   `json:"total"`
	UpdatedAt time.Time `json:"updatedAt"`
}

const (
	LastOrderKey      = "latest"
	DefaultAddressKey = "default"
	CartStateKey      = "current"
)
