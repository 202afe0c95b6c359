package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*goredis.Client, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	require.NoError(t, err)

	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	require.NoError(t, client.Ping(context.Background()).Err())

	t.Cleanup(func() {
		client.Close()
		mr.Close()
	})
	return client, mr
}

func TestPutAndLookup(t *testing.T) {
	client, _ := setupTestRedis(t)
	idx := NewSessionIndex(client, time.Hour)

	require.NoError(t, idx.Put("sess-1", "ord-1"))

	orderID, err := idx.Lookup("sess-1")
	require.NoError(t, err)
	assert.Equal(t, "ord-1", orderID)
}

func TestLookupMissingIsNotAnError(t *testing.T) {
	client, _ := setupTestRedis(t)
	idx := NewSessionIndex(client, time.Hour)

	orderID, err := idx.Lookup("never-stored")
	require.NoError(t, err)
	assert.Empty(t, orderID)
}

func TestDrop(t *testing.T) {
	client, _ := setupTestRedis(t)
	idx := NewSessionIndex(client, time.Hour)

	require.NoError(t, idx.Put("sess-1", "ord-1"))
	require.NoError(t, idx.Drop("sess-1"))

	orderID, err := idx.Lookup("sess-1")
	require.NoError(t, err)
	assert.Empty(t, orderID)
}

func TestPutSetsTTL(t *testing.T) {
	client, mr := setupTestRedis(t)
	idx := NewSessionIndex(client, time.Hour)

	require.NoError(t, idx.Put("sess-1", "ord-1"))
	assert.Greater(t, mr.TTL(KeyPrefix+"sess-1"), time.Duration(0))
}

func TestTouchSlidesTTL(t *testing.T) {
	client, mr := setupTestRedis(t)
	idx := NewSessionIndex(client, 120*time.Minute)

	require.NoError(t, idx.Put("sess-1", "ord-1"))

	// Let most of the TTL elapse, then touch: the entry must survive the
	// original deadline.
	mr.FastForward(119 * time.Minute)
	require.NoError(t, idx.Touch("sess-1"))
	mr.FastForward(2 * time.Minute)

	orderID, err := idx.Lookup("sess-1")
	require.NoError(t, err)
	assert.Equal(t, "ord-1", orderID)
}

func TestEntryExpiresWithoutActivity(t *testing.T) {
	client, mr := setupTestRedis(t)
	idx := NewSessionIndex(client, 120*time.Minute)

	require.NoError(t, idx.Put("sess-1", "ord-1"))
	mr.FastForward(121 * time.Minute)

	orderID, err := idx.Lookup("sess-1")
	require.NoError(t, err)
	assert.Empty(t, orderID)
}

func TestNonPositiveTTLFallsBackToDefault(t *testing.T) {
	client, _ := setupTestRedis(t)

	assert.Equal(t, defaultTTL, NewSessionIndex(client, 0).TTL)
	assert.Equal(t, defaultTTL, NewSessionIndex(client, -time.Minute).TTL)
}
