package claims

import (
	"context"
	"sync"

	domainClaims "github.com/trannhatgiahuygit/OEM-EV-Warranty-Management-System-sub002/internal/domain/claims"
)

// EventStore persists the audit trail of claim lifecycle events. Append is
// version-checked against the last stored event for the aggregate so the
// trail stays consistent with the optimistic-concurrency versioning of the
// aggregate itself.
type EventStore interface {
	Append(ctx context.Context, event *domainClaims.ClaimEvent) error
	EventsForClaim(ctx context.Context, claimID string) ([]*domainClaims.ClaimEvent, error)
	EventsMatching(ctx context.Context, filter domainClaims.EventFilter) ([]*domainClaims.ClaimEvent, error)
}

// InMemoryEventStore provides an in-memory event store.
type InMemoryEventStore struct {
	mu     sync.RWMutex
	events map[string][]*domainClaims.ClaimEvent
}

// NewInMemoryEventStore creates a new in-memory event store.
func NewInMemoryEventStore() *InMemoryEventStore {
	return &InMemoryEventStore{
		events: make(map[string][]*domainClaims.ClaimEvent),
	}
}

// Append stores an event. The event version must be strictly greater than the
// version of the last stored event for the same aggregate.
func (s *InMemoryEventStore) Append(_ context.Context, event *domainClaims.ClaimEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stream := s.events[event.AggregateID]
	if len(stream) > 0 {
		last := stream[len(stream)-1]
		if event.Version <= last.Version {
			return domainClaims.ErrConcurrencyConflict
		}
	}
	s.events[event.AggregateID] = append(stream, event)
	return nil
}

// EventsForClaim returns all events for a claim in append order.
func (s *InMemoryEventStore) EventsForClaim(_ context.Context, claimID string) ([]*domainClaims.ClaimEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stream := s.events[claimID]
	result := make([]*domainClaims.ClaimEvent, len(stream))
	copy(result, stream)
	return result, nil
}

// EventsMatching returns all stored events accepted by the filter.
func (s *InMemoryEventStore) EventsMatching(_ context.Context, filter domainClaims.EventFilter) ([]*domainClaims.ClaimEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domainClaims.ClaimEvent, 0)
	for _, stream := range s.events {
		for _, event := range stream {
			if filter.Matches(event) {
				result = append(result, event)
			}
		}
	}
	return result, nil
}
