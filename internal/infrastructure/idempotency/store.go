// Package idempotency provides replay protection for claim mutations.
//
// Clients send an Idempotency-Key header with mutating requests. The first
// request under a key records its outcome; retries under the same key get the
// recorded outcome back instead of re-running the transition.
package idempotency

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

// ErrInFlight indicates another request holds the key and has not finished.
var ErrInFlight = errors.New("idempotency key is already being processed")

// Record is the stored outcome of a completed request.
type Record struct {
	ClaimID    string `json:"claimId"`
	StatusCode int    `json:"statusCode"`
	Body       []byte `json:"body"`
}

// Store reserves idempotency keys and records their outcomes.
type Store interface {
	// Reserve claims the key for this request. It returns the recorded
	// outcome when the key was already completed, ErrInFlight when another
	// request holds it, and (nil, nil) when the reservation succeeded.
	Reserve(ctx context.Context, key string) (*Record, error)
	// Complete records the outcome for a reserved key.
	Complete(ctx context.Context, key string, record Record) error
	// Release frees a reserved key after a failed request so the client
	// can retry.
	Release(ctx context.Context, key string) error
}

type memoryEntry struct {
	record   *Record
	inFlight bool
}

// InMemoryStore provides an in-memory idempotency store.
type InMemoryStore struct {
	mu      sync.Mutex
	entries map[string]*memoryEntry
}

// NewInMemoryStore creates a new in-memory idempotency store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{entries: make(map[string]*memoryEntry)}
}

// Reserve claims the key.
func (s *InMemoryStore) Reserve(_ context.Context, key string) (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, exists := s.entries[key]
	if !exists {
		s.entries[key] = &memoryEntry{inFlight: true}
		return nil, nil
	}
	if entry.inFlight {
		return nil, ErrInFlight
	}
	return entry.record, nil
}

// Complete records the outcome.
func (s *InMemoryStore) Complete(_ context.Context, key string, record Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[key] = &memoryEntry{record: &record}
	return nil
}

// Release frees the key.
func (s *InMemoryStore) Release(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, key)
	return nil
}

const inFlightMarker = "__in_flight__"

// RedisStore backs the idempotency protocol with Redis so replay protection
// survives restarts and spans replicas.
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisStore creates a Redis-backed idempotency store.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisStore{client: client, prefix: "idempotency:", ttl: ttl}
}

// Reserve claims the key via SETNX.
func (s *RedisStore) Reserve(ctx context.Context, key string) (*Record, error) {
	ok, err := s.client.SetNX(ctx, s.prefix+key, inFlightMarker, s.ttl).Result()
	if err != nil {
		return nil, err
	}
	if ok {
		return nil, nil
	}

	value, err := s.client.Get(ctx, s.prefix+key).Result()
	if err == redis.Nil {
		// The holder released between SetNX and Get; treat as in flight
		// and let the client retry.
		return nil, ErrInFlight
	}
	if err != nil {
		return nil, err
	}
	if value == inFlightMarker {
		return nil, ErrInFlight
	}

	var record Record
	if err := json.Unmarshal([]byte(value), &record); err != nil {
		return nil, err
	}
	return &record, nil
}

// Complete records the outcome.
func (s *RedisStore) Complete(ctx context.Context, key string, record Record) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.prefix+key, payload, s.ttl).Err()
}

// Release frees the key.
func (s *RedisStore) Release(ctx context.Context, key string) error {
	return s.client.Del(ctx, s.prefix+key).Err()
}
