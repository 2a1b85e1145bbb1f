// Package memory keeps the per-user key/value memory the dialogue engine
// reads at the start of a turn and writes as side effects.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"dialogue-orchestrator/internal/common/errors"
	"dialogue-orchestrator/internal/common/logger"
	"dialogue-orchestrator/internal/common/metrics"
	"dialogue-orchestrator/internal/models"
	"dialogue-orchestrator/internal/store"

	"github.com/redis/go-redis/v9"
)

const cacheKeyPrefix = "memory:user:"

type Store struct {
	memories store.Memories
	cache    *redis.Client
	cacheTTL time.Duration
	now      func() time.Time
	logger   logger.Logger
}

type Option func(*Store)

// WithCache puts a read-through redis cache in front of the backing store.
func WithCache(client *redis.Client, ttl time.Duration) Option {
	return func(s *Store) {
		s.cache = client
		s.cacheTTL = ttl
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

func NewStore(memories store.Memories, log logger.Logger, opts ...Option) *Store {
	s := &Store{
		memories: memories,
		now:      time.Now,
		logger:   log.WithFields(map[string]interface{}{"component": "memory"}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func CacheKey(userID string) string {
	return cacheKeyPrefix + userID
}

// Get returns every memory entry for userID. It never fails: a read error is
// logged and an empty memory is returned.
func (s *Store) Get(ctx context.Context, userID string) *models.UserMemory {
	if entries, ok := s.cached(ctx, userID); ok {
		return models.NewUserMemoryFromEntries(userID, entries)
	}

	entries, err := s.memories.ListMemory(ctx, userID)
	if err != nil {
		s.logger.Warn("memory read failed, continuing with empty memory", map[string]interface{}{
			"userId": userID,
			"error":  errors.NewMemoryReadFailedError(userID, err),
		})
		return models.NewUserMemory(userID)
	}

	s.fill(ctx, userID, entries)
	return models.NewUserMemoryFromEntries(userID, entries)
}

// Set upserts one entry keyed by (userID, kind, key).
func (s *Store) Set(ctx context.Context, userID string, kind models.MemoryKind, key, value string) error {
	if !kind.Valid() {
		return errors.NewInvalidRequestError(fmt.Sprintf("unknown memory kind %q", kind))
	}
	entry := models.MemoryEntry{
		UserID:    userID,
		Kind:      kind,
		Key:       key,
		Value:     value,
		UpdatedAt: s.now(),
	}
	if err := s.memories.UpsertMemory(ctx, entry); err != nil {
		metrics.MemoryWriteFailures.Inc()
		return errors.NewMemoryWriteFailedError(userID, err)
	}
	s.invalidate(ctx, userID)
	return nil
}

// SetJSON stores v marshalled as JSON.
func (s *Store) SetJSON(ctx context.Context, userID string, kind models.MemoryKind, key string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return errors.NewMemoryWriteFailedError(userID, err)
	}
	return s.Set(ctx, userID, kind, key, string(data))
}

// Clear deletes every entry of one kind for userID.
func (s *Store) Clear(ctx context.Context, userID string, kind models.MemoryKind) error {
	if err := s.memories.DeleteMemoryKind(ctx, userID, kind); err != nil {
		metrics.MemoryWriteFailures.Inc()
		return errors.NewMemoryWriteFailedError(userID, err)
	}
	s.invalidate(ctx, userID)
	return nil
}

func (s *Store) cached(ctx context.Context, userID string) ([]models.MemoryEntry, bool) {
	if s.cache == nil {
		return nil, false
	}
	val, err := s.cache.Get(ctx, CacheKey(userID)).Result()
	if err != nil {
		if err != redis.Nil {
			s.logger.Debug("memory cache read failed", map[string]interface{}{
				"userId": userID,
				"error":  err,
			})
		}
		return nil, false
	}
	var entries []models.MemoryEntry
	if err := json.Unmarshal([]byte(val), &entries); err != nil {
		return nil, false
	}
	return entries, true
}

func (s *Store) fill(ctx context.Context, userID string, entries []models.MemoryEntry) {
	if s.cache == nil {
		return
	}
	data, err := json.Marshal(entries)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, CacheKey(userID), data, s.cacheTTL).Err(); err != nil {
		s.logger.Debug("memory cache write failed", map[string]interface{}{
			"userId": userID,
			"error":  err,
		})
	}
}

func (s *Store) invalidate(ctx context.Context, userID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, CacheKey(userID)).Err(); err != nil {
		s.logger.Warn("memory cache invalidation failed", map[string]interface{}{
			"userId": userID,
			"error":  err,
		})
	}
}

// LastOrder decodes the last_order snapshot, if one is stored.
func LastOrder(mem *models.UserMemory) (*models.LastOrderSnapshot, bool) {
	raw, ok := mem.Get(models.MemoryLastOrder, models.LastOrderKey)
	if !ok || raw == "" {
		return nil, false
	}
	var snap models.LastOrderSnapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		return nil, false
	}
	if len(snap.Items) == 0 {
		return nil, false
	}
	return &snap, true
}

// DefaultAddress returns the saved delivery address, if any.
func DefaultAddress(mem *models.UserMemory) (string, bool) {
	addr, ok := mem.Get(models.MemoryDefaultAddress, models.DefaultAddressKey)
	return addr, ok && addr != ""
}
