// Package claims provides persistence infrastructure for warranty claims.
package claims

import (
	"context"
	"sync"

	domainClaims "github.com/trannhatgiahuygit/OEM-EV-Warranty-Management-System-sub002/internal/domain/claims"
)

// ListFilter narrows a claim listing. Zero values mean "no filter".
type ListFilter struct {
	Status          domainClaims.ClaimStatus
	TechnicianID    string
	ServiceCenterID string
}

// ClaimRepository defines durable storage of claim aggregates. Writes use
// compare-and-swap semantics: Save fails with ErrConcurrencyConflict when the
// stored version no longer matches the version read alongside the aggregate,
// and the caller retries from a fresh load.
type ClaimRepository interface {
	Create(ctx context.Context, claim *domainClaims.Claim) error
	FindByID(ctx context.Context, id string) (*domainClaims.Claim, error)
	Save(ctx context.Context, claim *domainClaims.Claim, expectedVersion int) error
	List(ctx context.Context, filter ListFilter) ([]*domainClaims.Claim, error)
	NextClaimSequence(ctx context.Context, year int) (int64, error)
}

// InMemoryClaimRepository provides an in-memory claim repository.
type InMemoryClaimRepository struct {
	mu        sync.RWMutex
	claims    map[string]*domainClaims.Claim
	sequences map[int]int64
}

// NewInMemoryClaimRepository creates a new in-memory claim repository.
func NewInMemoryClaimRepository() *InMemoryClaimRepository {
	return &InMemoryClaimRepository{
		claims:    make(map[string]*domainClaims.Claim),
		sequences: make(map[int]int64),
	}
}

// Create stores a new claim.
func (r *InMemoryClaimRepository) Create(_ context.Context, claim *domainClaims.Claim) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.claims[claim.ID]; exists {
		return domainClaims.ErrConcurrencyConflict
	}
	r.claims[claim.ID] = claim.Clone()
	return nil
}

// FindByID returns a copy of the claim with the given id.
func (r *InMemoryClaimRepository) FindByID(_ context.Context, id string) (*domainClaims.Claim, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	claim, exists := r.claims[id]
	if !exists {
		return nil, domainClaims.ErrClaimNotFound
	}
	return claim.Clone(), nil
}

// Save persists the claim iff the stored version still matches
// expectedVersion.
func (r *InMemoryClaimRepository) Save(_ context.Context, claim *domainClaims.Claim, expectedVersion int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, exists := r.claims[claim.ID]
	if !exists {
		return domainClaims.ErrClaimNotFound
	}
	if stored.Version != expectedVersion {
		return domainClaims.ErrConcurrencyConflict
	}
	r.claims[claim.ID] = claim.Clone()
	return nil
}

// List returns claims matching the filter.
func (r *InMemoryClaimRepository) List(_ context.Context, filter ListFilter) ([]*domainClaims.Claim, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*domainClaims.Claim, 0)
	for _, claim := range r.claims {
		if !matchesFilter(claim, filter) {
			continue
		}
		result = append(result, claim.Clone())
	}
	return result, nil
}

// NextClaimSequence returns the next number of the yearly claim sequence.
func (r *InMemoryClaimRepository) NextClaimSequence(_ context.Context, year int) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sequences[year]++
	return r.sequences[year], nil
}

// Count returns the total number of claims.
func (r *InMemoryClaimRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.claims)
}

func matchesFilter(claim *domainClaims.Claim, filter ListFilter) bool {
	if filter.Status != "" && claim.Status != filter.Status {
		return false
	}
	if filter.TechnicianID != "" {
		if claim.AssignedTechnician == nil || claim.AssignedTechnician.ID != filter.TechnicianID {
			return false
		}
	}
	if filter.ServiceCenterID != "" && claim.ServiceCenterID != filter.ServiceCenterID {
		return false
	}
	return true
}
