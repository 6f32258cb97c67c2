// Package warranty provides the application service for eligibility checks.
package warranty

import (
	"context"
	"time"

	"go.uber.org/zap"

	domainWarranty "github.com/trannhatgiahuygit/OEM-EV-Warranty-Management-System-sub002/internal/domain/warranty"
	infraWarranty "github.com/trannhatgiahuygit/OEM-EV-Warranty-Management-System-sub002/internal/infrastructure/warranty"
)

// EligibilityService resolves a vehicle and its model's warranty conditions
// and runs the eligibility evaluation.
type EligibilityService struct {
	vehicles   infraWarranty.VehicleRepository
	conditions infraWarranty.ConditionRepository
	logger     *zap.Logger
	now        func() time.Time
}

// NewEligibilityService creates a new eligibility service.
func NewEligibilityService(vehicles infraWarranty.VehicleRepository, conditions infraWarranty.ConditionRepository, logger *zap.Logger) *EligibilityService {
	return &EligibilityService{
		vehicles:   vehicles,
		conditions: conditions,
		logger:     logger,
		now:        time.Now,
	}
}

// WithClock overrides the evaluation clock, used by tests.
func (s *EligibilityService) WithClock(now func() time.Time) *EligibilityService {
	s.now = now
	return s
}

// Check evaluates warranty eligibility for the vehicle as of the given time.
func (s *EligibilityService) Check(ctx context.Context, vehicleID string, asOf time.Time) (*domainWarranty.EligibilityResult, error) {
	vehicle, err := s.vehicles.FindByID(ctx, vehicleID)
	if err != nil {
		return nil, err
	}

	stored, err := s.conditions.ActiveForModel(ctx, vehicle.Model)
	if err != nil {
		return nil, err
	}
	conditions := make([]domainWarranty.WarrantyCondition, len(stored))
	for i, c := range stored {
		conditions[i] = *c
	}

	result := domainWarranty.EvaluateAll(*vehicle, conditions, asOf)
	s.logger.Info("eligibility evaluated",
		zap.String("vehicleId", vehicleID),
		zap.String("model", vehicle.Model),
		zap.Bool("eligible", result.IsEligible),
		zap.Int("conditions", len(conditions)),
	)
	return &result, nil
}

// CheckByVIN evaluates eligibility for the vehicle with the given VIN.
func (s *EligibilityService) CheckByVIN(ctx context.Context, vin string, asOf time.Time) (*domainWarranty.EligibilityResult, error) {
	vehicle, err := s.vehicles.FindByVIN(ctx, vin)
	if err != nil {
		return nil, err
	}
	return s.Check(ctx, vehicle.ID, asOf)
}

// CheckEligibility adapts the service to the claim state machine's guard
// interface. An unknown vehicle reports as blocked rather than as an error so
// intake cannot proceed on an unregistered vehicle.
func (s *EligibilityService) CheckEligibility(vehicleID string, asOf time.Time) (bool, []string, error) {
	result, err := s.Check(context.Background(), vehicleID, asOf)
	if err == domainWarranty.ErrVehicleNotFound {
		return false, []string{domainWarranty.ReasonVehicleNotRegistered}, nil
	}
	if err != nil {
		return false, nil, err
	}
	return result.IsEligible, result.Reasons, nil
}
