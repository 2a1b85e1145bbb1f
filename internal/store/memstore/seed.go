package memstore

import "dialogue-orchestrator/internal/store"

// Seed loads the demo catalog.
func (s *Store) Seed() *Store {
	restaurants, items := store.DemoCatalog()
	for _, r := range restaurants {
		s.AddRestaurant(r)
	}
	for _, item := range items {
		s.AddMenuItem(item)
	}
	return s
}
