package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"bistro/internal/cache"
)

const (
	idempotencyKeyPrefix = "payment:idem:"
	idempotencyPending   = "pending"
	// a claim left pending by a crashed request expires quickly
	idempotencyPendingTTL = time.Minute
)

// IdempotencyStore collapses repeated finalize calls for the same cart onto
// one payment.
type IdempotencyStore interface {
	// Claim reserves key. When the key is already held it returns the
	// payment id stored under it, or "" while the holder is still running.
	Claim(ctx context.Context, key string) (paymentID string, claimed bool, err error)
	Complete(ctx context.Context, key, paymentID string) error
	Release(ctx context.Context, key string) error
}

// IdempotencyKey derives the key for email settling cartIDs. The cart set
// is order-insensitive.
func IdempotencyKey(email string, cartIDs []primitive.ObjectID) string {
	hexIDs := make([]string, len(cartIDs))
	for i, id := range cartIDs {
		hexIDs[i] = id.Hex()
	}
	sort.Strings(hexIDs)

	sum := sha256.Sum256([]byte(strings.ToLower(email) + "|" + strings.Join(hexIDs, ",")))
	return idempotencyKeyPrefix + hex.EncodeToString(sum[:])
}

// keyValueStore is the slice of the redis cache the store relies on.
type keyValueStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	SetNX(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error)
	Delete(ctx context.Context, key string) error
}

type redisIdempotencyStore struct {
	cache keyValueStore
	ttl   time.Duration
}

// NewIdempotencyStore keeps claims in redis. Completed claims live for ttl.
// When redis is unreachable every claim succeeds.
func NewIdempotencyStore(c *cache.Client, ttl time.Duration) IdempotencyStore {
	return &redisIdempotencyStore{cache: c, ttl: ttl}
}

func (s *redisIdempotencyStore) Claim(ctx context.Context, key string) (string, bool, error) {
	ok, err := s.cache.SetNX(ctx, key, []byte(idempotencyPending), idempotencyPendingTTL)
	if err != nil {
		return "", false, err
	}
	if ok {
		return "", true, nil
	}

	data, _ := s.cache.Get(ctx, key)
	switch {
	case data == nil:
		// expired between SETNX and GET, or the read failed
		ok, err := s.cache.SetNX(ctx, key, []byte(idempotencyPending), idempotencyPendingTTL)
		if err != nil {
			return "", false, err
		}
		return "", ok, nil
	case string(data) == idempotencyPending:
		return "", false, nil
	default:
		return string(data), false, nil
	}
}

func (s *redisIdempotencyStore) Complete(ctx context.Context, key, paymentID string) error {
	return s.cache.Set(ctx, key, []byte(paymentID), s.ttl)
}

func (s *redisIdempotencyStore) Release(ctx context.Context, key string) error {
	return s.cache.Delete(ctx, key)
}
