package memory

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"dialogue-orchestrator/internal/common/logger"
	"dialogue-orchestrator/internal/models"
	"dialogue-orchestrator/internal/store/memstore"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
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
	return tl
}

func (tl *testLogger) With(fields map[string]interface{}) logger.Logger {
	return tl
}

var fixedNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func newTestStore(t *testing.T, opts ...Option) (*Store, *memstore.Store) {
	backing := memstore.New()
	opts = append([]Option{WithClock(func() time.Time { return fixedNow })}, opts...)
	return NewStore(backing, &testLogger{t: t}, opts...), backing
}

func TestStore_SetThenGet(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	require.NoError(t, s.Set(ctx, "u-1", models.MemoryPreference, "allergen:peanuts", "peanuts"))

	mem := s.Get(ctx, "u-1")
	val, ok := mem.Get(models.MemoryPreference, "allergen:peanuts")
	assert.True(t, ok)
	assert.Equal(t, "peanuts", val)
}

func TestStore_SetOverwritesSameTriple(t *testing.T) {
	ctx := context.Background()
	s, backing := newTestStore(t)

	require.NoError(t, s.Set(ctx, "u-1", models.MemoryPreference, "spice_level", "2"))
	require.NoError(t, s.Set(ctx, "u-1", models.MemoryPreference, "spice_level", "5"))

	entries, err := backing.ListMemory(ctx, "u-1")
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	val, _ := s.Get(ctx, "u-1").Get(models.MemoryPreference, "spice_level")
	assert.Equal(t, "5", val)
}

func TestStore_SetRejectsUnknownKind(t *testing.T) {
	s, _ := newTestStore(t)
	err := s.Set(context.Background(), "u-1", models.MemoryKind("mood"), "k", "v")
	assert.Error(t, err)
}

func TestStore_Clear(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	require.NoError(t, s.Set(ctx, "u-1", models.MemoryPreference, "cuisine:italian", "italian"))
	require.NoError(t, s.Set(ctx, "u-1", models.MemoryDefaultAddress, models.DefaultAddressKey, "12 Park Lane"))
	require.NoError(t, s.Clear(ctx, "u-1", models.MemoryPreference))

	mem := s.Get(ctx, "u-1")
	assert.Empty(t, mem.Kind(models.MemoryPreference))
	addr, ok := DefaultAddress(mem)
	assert.True(t, ok)
	assert.Equal(t, "12 Park Lane", addr)
}

func TestStore_ReadFailureYieldsEmptyMemory(t *testing.T) {
	s, backing := newTestStore(t)
	backing.Fail["ListMemory"] = errors.New("connection refused")

	mem := s.Get(context.Background(), "u-1")
	require.NotNil(t, mem)
	assert.True(t, mem.IsEmpty())
	assert.Equal(t, "u-1", mem.UserID)
}

func TestStore_WriteFailureReturnsError(t *testing.T) {
	s, backing := newTestStore(t)
	backing.Fail["UpsertMemory"] = errors.New("disk full")

	err := s.Set(context.Background(), "u-1", models.MemoryPreference, "diet:vegan", "vegan")
	assert.Error(t, err)
}

func TestStore_CacheReadThroughAndInvalidate(t *testing.T) {
	ctx := context.Background()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	s, backing := newTestStore(t, WithCache(client, time.Minute))

	require.NoError(t, s.Set(ctx, "u-1", models.MemoryPreference, "cuisine:thai", "thai"))
	assert.False(t, mr.Exists(CacheKey("u-1")))

	_ = s.Get(ctx, "u-1")
	assert.True(t, mr.Exists(CacheKey("u-1")))

	// A cached read does not touch the backing store.
	backing.Fail["ListMemory"] = errors.New("should not be called")
	val, ok := s.Get(ctx, "u-1").Get(models.MemoryPreference, "cuisine:thai")
	assert.True(t, ok)
	assert.Equal(t, "thai", val)

	delete(backing.Fail, "ListMemory")
	require.NoError(t, s.Set(ctx, "u-1", models.MemoryPreference, "cuisine:thai", "thai food"))
	assert.False(t, mr.Exists(CacheKey("u-1")))

	val, _ = s.Get(ctx, "u-1").Get(models.MemoryPreference, "cuisine:thai")
	assert.Equal(t, "thai food", val)
}

func TestStore_CacheMissFillsWithTTL(t *testing.T) {
	ctx := context.Background()
	client, mock := redismock.NewClientMock()

	backing := memstore.New()
	entry := models.MemoryEntry{
		UserID:    "u-2",
		Kind:      models.MemoryRestaurantPreference,
		Key:       "r-paradise",
		Value:     "Paradise",
		UpdatedAt: fixedNow,
	}
	require.NoError(t, backing.UpsertMemory(ctx, entry))

	data, err := json.Marshal([]models.MemoryEntry{entry})
	require.NoError(t, err)

	mock.ExpectGet(CacheKey("u-2")).RedisNil()
	mock.ExpectSet(CacheKey("u-2"), data, 5*time.Minute).SetVal("OK")

	s := NewStore(backing, &testLogger{t: t}, WithCache(client, 5*time.Minute))
	mem := s.Get(ctx, "u-2")

	val, ok := mem.Get(models.MemoryRestaurantPreference, "r-paradise")
	assert.True(t, ok)
	assert.Equal(t, "Paradise", val)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLastOrder(t *testing.T) {
	mem := models.NewUserMemory("u-1")
	_, ok := LastOrder(mem)
	assert.False(t, ok)

	snap := models.LastOrderSnapshot{
		OrderID:        "o-1",
		RestaurantID:   "r-paradise",
		RestaurantName: "Paradise",
		Items:          []models.OrderItem{{MenuItemID: "m-chicken-biryani", Name: "Chicken Biryani", Quantity: 2, Price: 280}},
	}
	raw, err := json.Marshal(snap)
	require.NoError(t, err)
	mem.Put(models.MemoryLastOrder, models.LastOrderKey, string(raw))

	got, ok := LastOrder(mem)
	require.True(t, ok)
	assert.Equal(t, "Paradise", got.RestaurantName)
	assert.Len(t, got.Items, 1)

	mem.Put(models.MemoryLastOrder, models.LastOrderKey, "not json")
	_, ok = LastOrder(mem)
	assert.False(t, ok)
}
