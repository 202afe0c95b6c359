package redis

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
)

// KeyPrefix namespaces session index entries. The expiry reaper matches
// on it when keyspace notifications fire.
const KeyPrefix = "order_session:"

const defaultTTL = 120 * time.Minute

// SessionIndex maps session tokens to order IDs with a sliding TTL.
// When an entry expires without the order ever leaving draft, the order
// is considered abandoned.
type SessionIndex struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewSessionIndex(client *redis.Client, ttl time.Duration) *SessionIndex {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &SessionIndex{
		Client: client,
		TTL:    ttl,
	}
}

// Put indexes a session token against its order.
func (r *SessionIndex) Put(sessionID, orderID string) error {
	return r.Client.Set(context.Background(), KeyPrefix+sessionID, orderID, r.TTL).Err()
}

// Lookup resolves a session token to an order ID. A missing entry is not
// an error; the database query by session is the caller's fallback.
func (r *SessionIndex) Lookup(sessionID string) (string, error) {
	val, err := r.Client.Get(context.Background(), KeyPrefix+sessionID).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return val, nil
}

// Touch slides the TTL forward on activity.
func (r *SessionIndex) Touch(sessionID string) error {
	return r.Client.Expire(context.Background(), KeyPrefix+sessionID, r.TTL).Err()
}

// Drop removes the index entry, e.g. once an order is paid or cancelled.
func (r *SessionIndex) Drop(sessionID string) error {
	return r.Client.Del(context.Background(), KeyPrefix+sessionID).Err()
}
