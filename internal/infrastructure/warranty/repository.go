// Package warranty provides persistence for vehicles and warranty conditions.
package warranty

import (
	"context"
	"sync"

	domainWarranty "github.com/trannhatgiahuygit/OEM-EV-Warranty-Management-System-sub002/internal/domain/warranty"
)

// VehicleRepository stores registered vehicles.
type VehicleRepository interface {
	FindByID(ctx context.Context, id string) (*domainWarranty.Vehicle, error)
	FindByVIN(ctx context.Context, vin string) (*domainWarranty.Vehicle, error)
	Upsert(ctx context.Context, vehicle *domainWarranty.Vehicle) error
}

// ConditionRepository stores warranty conditions per vehicle model.
type ConditionRepository interface {
	ActiveForModel(ctx context.Context, model string) ([]*domainWarranty.WarrantyCondition, error)
	Save(ctx context.Context, condition *domainWarranty.WarrantyCondition) error
}

// InMemoryVehicleRepository provides an in-memory vehicle repository.
type InMemoryVehicleRepository struct {
	mu       sync.RWMutex
	vehicles map[string]*domainWarranty.Vehicle
	byVIN    map[string]string
}

// NewInMemoryVehicleRepository creates a new in-memory vehicle repository.
func NewInMemoryVehicleRepository() *InMemoryVehicleRepository {
	return &InMemoryVehicleRepository{
		vehicles: make(map[string]*domainWarranty.Vehicle),
		byVIN:    make(map[string]string),
	}
}

// FindByID returns a copy of the vehicle with the given id.
func (r *InMemoryVehicleRepository) FindByID(_ context.Context, id string) (*domainWarranty.Vehicle, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	vehicle, exists := r.vehicles[id]
	if !exists {
		return nil, domainWarranty.ErrVehicleNotFound
	}
	copied := *vehicle
	return &copied, nil
}

// FindByVIN returns a copy of the vehicle with the given VIN.
func (r *InMemoryVehicleRepository) FindByVIN(_ context.Context, vin string) (*domainWarranty.Vehicle, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, exists := r.byVIN[vin]
	if !exists {
		return nil, domainWarranty.ErrVehicleNotFound
	}
	copied := *r.vehicles[id]
	return &copied, nil
}

// Upsert stores or replaces a vehicle.
func (r *InMemoryVehicleRepository) Upsert(_ context.Context, vehicle *domainWarranty.Vehicle) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	copied := *vehicle
	if existing, ok := r.vehicles[vehicle.ID]; ok && existing.VIN != vehicle.VIN {
		delete(r.byVIN, existing.VIN)
	}
	r.vehicles[vehicle.ID] = &copied
	r.byVIN[vehicle.VIN] = vehicle.ID
	return nil
}

// InMemoryConditionRepository provides an in-memory condition repository.
type InMemoryConditionRepository struct {
	mu         sync.RWMutex
	conditions map[string]*domainWarranty.WarrantyCondition
}

// NewInMemoryConditionRepository creates a new in-memory condition repository.
func NewInMemoryConditionRepository() *InMemoryConditionRepository {
	return &InMemoryConditionRepository{
		conditions: make(map[string]*domainWarranty.WarrantyCondition),
	}
}

// ActiveForModel returns all active conditions covering the given model.
func (r *InMemoryConditionRepository) ActiveForModel(_ context.Context, model string) ([]*domainWarranty.WarrantyCondition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*domainWarranty.WarrantyCondition, 0)
	for _, condition := range r.conditions {
		if !condition.Active || condition.Model != model {
			continue
		}
		copied := *condition
		result = append(result, &copied)
	}
	return result, nil
}

// Save stores or replaces a condition.
func (r *InMemoryConditionRepository) Save(_ context.Context, condition *domainWarranty.WarrantyCondition) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	copied := *condition
	r.conditions[condition.ID] = &copied
	return nil
}
