package store

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestStore(t *testing.T) *RedisStore {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
	t.Cleanup(func() { client.Close() })

	return NewRedisStore(client, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestRedisStore_SetAndGet(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	err := s.Set(ctx, "users/admin@klh,edu,in", map[string]string{"role": "admin"})
	require.NoError(t, err)

	raw, err := s.Get(ctx, "users/admin@klh,edu,in")
	require.NoError(t, err)

	var doc map[string]string
	require.NoError(t, json.Unmarshal(raw, &doc))
	assert.Equal(t, "admin", doc["role"])
}

func TestRedisStore_GetAbsentReturnsNil(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	raw, err := s.Get(ctx, "users/nobody")
	require.NoError(t, err)
	assert.Nil(t, raw)

	// Empty collections behave the same way.
	raw, err = s.Get(ctx, "alerts")
	require.NoError(t, err)
	assert.Nil(t, raw)
}

func TestRedisStore_GetCollection(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "alerts/a1", map[string]string{"status": "active"}))
	require.NoError(t, s.Set(ctx, "alerts/a2", map[string]string{"status": "resolved"}))

	raw, err := s.Get(ctx, "alerts")
	require.NoError(t, err)

	var collection map[string]map[string]string
	require.NoError(t, json.Unmarshal(raw, &collection))
	assert.Len(t, collection, 2)
	assert.Equal(t, "active", collection["a1"]["status"])
	assert.Equal(t, "resolved", collection["a2"]["status"])
}

func TestRedisStore_UpdateMergesFields(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "alerts/a1", map[string]any{
		"status":    "active",
		"timestamp": 1700000000000,
	}))

	err := s.Update(ctx, "alerts/a1", map[string]any{"status": "dispatched"})
	require.NoError(t, err)

	raw, err := s.Get(ctx, "alerts/a1")
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(raw, &doc))
	assert.Equal(t, "dispatched", doc["status"])
	assert.Equal(t, float64(1700000000000), doc["timestamp"])
}

func TestRedisStore_SubtreeUpdateLeavesSiblings(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "users/u1", map[string]any{
		"role":     "student",
		"password": "klh@1234",
		"profile":  map[string]any{"name": "Rahul Sharma", "year": "1st Year"},
	}))

	err := s.Update(ctx, "users/u1/profile", map[string]any{"name": "Rahul S"})
	require.NoError(t, err)

	raw, err := s.Get(ctx, "users/u1")
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(raw, &doc))
	assert.Equal(t, "klh@1234", doc["password"])
	profile := doc["profile"].(map[string]any)
	assert.Equal(t, "Rahul S", profile["name"])
	assert.Equal(t, "1st Year", profile["year"])
}

func TestRedisStore_GetSubtree(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "users/u1", map[string]any{
		"role":    "student",
		"profile": map[string]any{"name": "Priya Singh"},
	}))

	raw, err := s.Get(ctx, "users/u1/profile")
	require.NoError(t, err)

	var profile map[string]string
	require.NoError(t, json.Unmarshal(raw, &profile))
	assert.Equal(t, "Priya Singh", profile["name"])
}

func TestRedisStore_GetSubtreeAbsent(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "users/u1", map[string]any{
		"role": "admin",
		"profile": map[string]any{
			"name": "Rahul Sharma",
		},
	}))

	// Missing field.
	raw, err := s.Get(ctx, "users/u1/phone")
	require.NoError(t, err)
	assert.Nil(t, raw)

	// Missing nested field.
	raw, err = s.Get(ctx, "users/u1/profile/phone")
	require.NoError(t, err)
	assert.Nil(t, raw)

	// Addressing into a scalar reads as absent, not as an error.
	raw, err = s.Get(ctx, "users/u1/role/deeper")
	require.NoError(t, err)
	assert.Nil(t, raw)
}

func TestRedisStore_GetNestedSubtree(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "users/u1", map[string]any{
		"profile": map[string]any{
			"contact": map[string]any{"phone": "+91 98765 00098"},
		},
	}))

	raw, err := s.Get(ctx, "users/u1/profile/contact/phone")
	require.NoError(t, err)
	assert.Equal(t, `"+91 98765 00098"`, string(raw))
}

func TestRedisStore_Delete(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "users/u1", map[string]string{"role": "student"}))
	require.NoError(t, s.Delete(ctx, "users/u1"))

	raw, err := s.Get(ctx, "users/u1")
	require.NoError(t, err)
	assert.Nil(t, raw)
}

func TestRedisStore_PushAssignsID(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	id, err := s.Push(ctx, "complaints", map[string]string{"subject": "hostel wifi"})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	raw, err := s.Get(ctx, "complaints/"+id)
	require.NoError(t, err)

	var doc map[string]string
	require.NoError(t, json.Unmarshal(raw, &doc))
	assert.Equal(t, "hostel wifi", doc["subject"])
}

func TestRedisStore_InvalidPaths(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	_, err := s.Get(ctx, "")
	assert.ErrorIs(t, err, ErrInvalidPath)

	err = s.Set(ctx, "alerts", map[string]string{})
	assert.ErrorIs(t, err, ErrInvalidPath)

	err = s.Delete(ctx, "alerts")
	assert.ErrorIs(t, err, ErrInvalidPath)

	_, err = s.Push(ctx, "alerts/a1", map[string]string{})
	assert.ErrorIs(t, err, ErrInvalidPath)
}

func TestRedisStore_SubscribeDeliversChanges(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	var mu sync.Mutex
	var snapshots []json.RawMessage
	unsubscribe, err := s.Subscribe("alerts", func(snap json.RawMessage) {
		mu.Lock()
		snapshots = append(snapshots, snap)
		mu.Unlock()
	})
	require.NoError(t, err)
	defer unsubscribe()

	// The initial delivery happens before Subscribe returns.
	mu.Lock()
	require.Len(t, snapshots, 1)
	assert.Nil(t, snapshots[0])
	mu.Unlock()

	require.NoError(t, s.Set(ctx, "alerts/a1", map[string]string{"status": "active"}))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(snapshots) >= 2
	}, 2*time.Second, 10*time.Millisecond)

	mu.Lock()
	last := snapshots[len(snapshots)-1]
	mu.Unlock()

	var collection map[string]map[string]string
	require.NoError(t, json.Unmarshal(last, &collection))
	assert.Equal(t, "active", collection["a1"]["status"])
}
