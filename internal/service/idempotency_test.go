package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"bistro/internal/cache"
)

func TestIdempotencyKey(t *testing.T) {
	a, b := primitive.NewObjectID(), primitive.NewObjectID()

	k1 := IdempotencyKey("Ann@Example.com", []primitive.ObjectID{a, b})
	k2 := IdempotencyKey("ann@example.com", []primitive.ObjectID{b, a})
	assert.Equal(t, k1, k2)
	assert.True(t, strings.HasPrefix(k1, idempotencyKeyPrefix))

	assert.NotEqual(t, k1, IdempotencyKey("bob@example.com", []primitive.ObjectID{a, b}))
	assert.NotEqual(t, k1, IdempotencyKey("ann@example.com", []primitive.ObjectID{a}))
}

func TestIdempotencyStore_FailsOpenWithoutRedis(t *testing.T) {
	store := NewIdempotencyStore(cache.New("127.0.0.1:1", "", 0), time.Hour)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	id, claimed, err := store.Claim(ctx, "payment:idem:test")
	require.NoError(t, err)
	assert.True(t, claimed)
	assert.Empty(t, id)
	assert.NoError(t, store.Complete(ctx, "payment:idem:test", "65f000000000000000000001"))
	assert.NoError(t, store.Release(ctx, "payment:idem:test"))
}

type MockKeyValueStore struct {
	mock.Mock
}

func (m *MockKeyValueStore) Get(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockKeyValueStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return m.Called(ctx, key, value, ttl).Error(0)
}

func (m *MockKeyValueStore) SetNX(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, key, value, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *MockKeyValueStore) Delete(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

func TestIdempotencyStore_Claim(t *testing.T) {
	const key = "payment:idem:k"
	pending := []byte(idempotencyPending)

	tests := []struct {
		name        string
		setup       func(kv *MockKeyValueStore)
		wantID      string
		wantClaimed bool
	}{
		{
			name: "fresh key",
			setup: func(kv *MockKeyValueStore) {
				kv.On("SetNX", mock.Anything, key, pending, idempotencyPendingTTL).Return(true, nil).Once()
			},
			wantClaimed: true,
		},
		{
			name: "holder still running",
			setup: func(kv *MockKeyValueStore) {
				kv.On("SetNX", mock.Anything, key, pending, idempotencyPendingTTL).Return(false, nil).Once()
				kv.On("Get", mock.Anything, key).Return(pending, nil)
			},
		},
		{
			name: "completed key",
			setup: func(kv *MockKeyValueStore) {
				kv.On("SetNX", mock.Anything, key, pending, idempotencyPendingTTL).Return(false, nil).Once()
				kv.On("Get", mock.Anything, key).Return([]byte("65f000000000000000000001"), nil)
			},
			wantID: "65f000000000000000000001",
		},
		{
			name: "unreadable key is retried and still held",
			setup: func(kv *MockKeyValueStore) {
				kv.On("SetNX", mock.Anything, key, pending, idempotencyPendingTTL).Return(false, nil).Twice()
				kv.On("Get", mock.Anything, key).Return(nil, nil)
			},
		},
		{
			name: "expired key is reclaimed",
			setup: func(kv *MockKeyValueStore) {
				kv.On("SetNX", mock.Anything, key, pending, idempotencyPendingTTL).Return(false, nil).Once()
				kv.On("Get", mock.Anything, key).Return(nil, nil)
				kv.On("SetNX", mock.Anything, key, pending, idempotencyPendingTTL).Return(true, nil).Once()
			},
			wantClaimed: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kv := new(MockKeyValueStore)
			tt.setup(kv)
			store := &redisIdempotencyStore{cache: kv, ttl: time.Hour}

			id, claimed, err := store.Claim(context.Background(), key)
			require.NoError(t, err)
			assert.Equal(t, tt.wantClaimed, claimed)
			assert.Equal(t, tt.wantID, id)
			kv.AssertExpectations(t)
		})
	}
}
