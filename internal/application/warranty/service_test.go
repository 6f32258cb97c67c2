package warranty

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	domainWarranty "github.com/trannhatgiahuygit/OEM-EV-Warranty-Management-System-sub002/internal/domain/warranty"
	infraWarranty "github.com/trannhatgiahuygit/OEM-EV-Warranty-Management-System-sub002/internal/infrastructure/warranty"
)

func intPtr(v int) *int { return &v }

func newTestEligibilityService(t *testing.T) *EligibilityService {
	t.Helper()
	vehicles := infraWarranty.NewInMemoryVehicleRepository()
	conditions := infraWarranty.NewInMemoryConditionRepository()
	ctx := context.Background()

	require.NoError(t, vehicles.Upsert(ctx, &domainWarranty.Vehicle{
		ID:                "veh-1",
		VIN:               "RLMEV3000TEST0001",
		Model:             "EV3000",
		WarrantyStartDate: time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC),
		CurrentMileageKm:  40_000,
		OwnerCustomerID:   "cust-1",
	}))
	require.NoError(t, conditions.Save(ctx, &domainWarranty.WarrantyCondition{
		ID:            "cond-1",
		Model:         "EV3000",
		Description:   "Standard vehicle warranty",
		CoverageYears: intPtr(3),
		CoverageKm:    intPtr(100_000),
		EffectiveFrom: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
		Active:        true,
	}))

	return NewEligibilityService(vehicles, conditions, zap.NewNop())
}

func TestCheckEligibleVehicle(t *testing.T) {
	svc := newTestEligibilityService(t)

	result, err := svc.Check(context.Background(), "veh-1", time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.True(t, result.IsEligible)
	assert.Empty(t, result.Reasons)
	assert.Equal(t, "EV3000", result.VehicleInfo.Model)
}

func TestCheckExpiredWarranty(t *testing.T) {
	svc := newTestEligibilityService(t)

	result, err := svc.Check(context.Background(), "veh-1", time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.False(t, result.IsEligible)
	assert.Contains(t, result.Reasons, "Bảo hành đã hết hạn từ ngày 01/01/2025")
}

func TestCheckByVIN(t *testing.T) {
	svc := newTestEligibilityService(t)

	result, err := svc.CheckByVIN(context.Background(), "RLMEV3000TEST0001", time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.True(t, result.IsEligible)

	_, err = svc.CheckByVIN(context.Background(), "UNKNOWNVIN000000", time.Now())
	assert.ErrorIs(t, err, domainWarranty.ErrVehicleNotFound)
}

func TestCheckUnknownVehicle(t *testing.T) {
	svc := newTestEligibilityService(t)

	_, err := svc.Check(context.Background(), "ghost", time.Now())
	assert.ErrorIs(t, err, domainWarranty.ErrVehicleNotFound)
}

func TestGuardAdapterBlocksUnknownVehicle(t *testing.T) {
	svc := newTestEligibilityService(t)

	eligible, reasons, err := svc.CheckEligibility("ghost", time.Now())
	require.NoError(t, err)
	assert.False(t, eligible)
	assert.Contains(t, reasons, domainWarranty.ReasonVehicleNotRegistered)
}

func TestGuardAdapterPassesEligibleVehicle(t *testing.T) {
	svc := newTestEligibilityService(t)

	eligible, reasons, err := svc.CheckEligibility("veh-1", time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.True(t, eligible)
	assert.Empty(t, reasons)
}
