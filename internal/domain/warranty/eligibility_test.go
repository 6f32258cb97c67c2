package warranty

import (
	"strings"
	"testing"
	"time"
)

func intPtr(v int) *int { return &v }

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func baseVehicle() Vehicle {
	return Vehicle{
		ID:                "veh-1",
		VIN:               "RLLVF8EV000012345",
		Model:             "VF8",
		WarrantyStartDate: date(2020, time.January, 1),
		CurrentMileageKm:  40_000,
	}
}

func baseCondition() WarrantyCondition {
	return WarrantyCondition{
		ID:            "cond-1",
		Model:         "VF8",
		CoverageYears: intPtr(5),
		CoverageKm:    intPtr(100_000),
		EffectiveFrom: date(2019, time.January, 1),
		Active:        true,
	}
}

func TestEvaluateExpiredWarranty(t *testing.T) {
	// 5 years from 2020-01-01 ends 2025-01-01; checking on 2025-06-01 is too late.
	result := Evaluate(baseVehicle(), baseCondition(), date(2025, time.June, 1))

	if result.IsEligible {
		t.Fatal("expected ineligible after warranty end date")
	}
	if len(result.Reasons) != 1 {
		t.Fatalf("expected exactly one reason, got %v", result.Reasons)
	}
	if result.Reasons[0] != "Bảo hành đã hết hạn từ ngày 01/01/2025" {
		t.Fatalf("unexpected reason: %q", result.Reasons[0])
	}
}

func TestEvaluateEndDateIsInclusive(t *testing.T) {
	// Checking exactly on the warranty end date still passes: the bound is
	// "must not exceed".
	result := Evaluate(baseVehicle(), baseCondition(), date(2025, time.January, 1))
	if !result.IsEligible {
		t.Fatalf("expected eligible on the end date itself, reasons: %v", result.Reasons)
	}
}

func TestEvaluateMileageBoundIsInclusive(t *testing.T) {
	vehicle := baseVehicle()
	vehicle.CurrentMileageKm = 100_000

	result := Evaluate(vehicle, baseCondition(), date(2023, time.June, 1))
	if !result.IsEligible {
		t.Fatalf("expected eligible at exactly the km limit, reasons: %v", result.Reasons)
	}

	vehicle.CurrentMileageKm = 100_001
	result = Evaluate(vehicle, baseCondition(), date(2023, time.June, 1))
	if result.IsEligible {
		t.Fatal("expected ineligible one km over the limit")
	}
	if len(result.Reasons) != 1 || !strings.Contains(result.Reasons[0], "100000 km") {
		t.Fatalf("unexpected reasons: %v", result.Reasons)
	}
}

func TestEvaluateAccumulatesEveryFailingCheck(t *testing.T) {
	vehicle := baseVehicle()
	vehicle.CurrentMileageKm = 150_000

	result := Evaluate(vehicle, baseCondition(), date(2026, time.January, 1))
	if result.IsEligible {
		t.Fatal("expected ineligible")
	}
	if len(result.Reasons) != 2 {
		t.Fatalf("expected both time and mileage reasons, got %v", result.Reasons)
	}
}

func TestEvaluateInactiveCondition(t *testing.T) {
	condition := baseCondition()
	condition.Active = false

	result := Evaluate(baseVehicle(), condition, date(2023, time.June, 1))
	if result.IsEligible {
		t.Fatal("expected ineligible for inactive condition")
	}
	if len(result.Reasons) != 1 {
		t.Fatalf("expected one reason, got %v", result.Reasons)
	}
}

func TestEvaluateEffectiveWindow(t *testing.T) {
	condition := baseCondition()
	to := date(2024, time.December, 31)
	condition.EffectiveTo = &to

	// Inside the window.
	if r := Evaluate(baseVehicle(), condition, date(2024, time.June, 1)); !r.IsEligible {
		t.Fatalf("expected eligible inside window, reasons: %v", r.Reasons)
	}
	// EffectiveFrom is inclusive.
	if r := Evaluate(baseVehicle(), condition, condition.EffectiveFrom); !r.IsEligible {
		t.Fatalf("expected eligible on effectiveFrom, reasons: %v", r.Reasons)
	}
	// After the window closes.
	if r := Evaluate(baseVehicle(), condition, date(2025, time.January, 1)); r.IsEligible {
		t.Fatal("expected ineligible after effectiveTo")
	}
	// Before the window opens.
	if r := Evaluate(baseVehicle(), condition, date(2018, time.June, 1)); r.IsEligible {
		t.Fatal("expected ineligible before effectiveFrom")
	}
}

func TestEvaluateNoUsageLimits(t *testing.T) {
	// A condition with neither year nor km limits imposes only the
	// active-date window.
	condition := baseCondition()
	condition.CoverageYears = nil
	condition.CoverageKm = nil

	vehicle := baseVehicle()
	vehicle.CurrentMileageKm = 999_999

	result := Evaluate(vehicle, condition, date(2040, time.January, 1))
	if !result.IsEligible {
		t.Fatalf("expected eligible with no usage limits, reasons: %v", result.Reasons)
	}
}

func TestEvaluateMileageMonotonicity(t *testing.T) {
	// Increasing mileage never flips ineligible back to eligible.
	condition := baseCondition()
	asOf := date(2023, time.June, 1)

	wasEligible := true
	for km := 99_998; km <= 100_010; km++ {
		vehicle := baseVehicle()
		vehicle.CurrentMileageKm = km
		eligible := Evaluate(vehicle, condition, asOf).IsEligible
		if eligible && !wasEligible {
			t.Fatalf("eligibility regained at %d km", km)
		}
		wasEligible = eligible
	}
}

func TestEvaluateDateMonotonicity(t *testing.T) {
	// Moving the as-of date later never flips ineligible back to eligible.
	condition := baseCondition()
	condition.CoverageKm = nil

	wasEligible := true
	for day := 0; day < 40; day++ {
		asOf := date(2024, time.December, 15).AddDate(0, 0, day)
		eligible := Evaluate(baseVehicle(), condition, asOf).IsEligible
		if eligible && !wasEligible {
			t.Fatalf("eligibility regained at %s", asOf.Format("2006-01-02"))
		}
		wasEligible = eligible
	}
}

func TestEvaluateIsPure(t *testing.T) {
	vehicle := baseVehicle()
	condition := baseCondition()
	asOf := date(2025, time.June, 1)

	first := Evaluate(vehicle, condition, asOf)
	second := Evaluate(vehicle, condition, asOf)

	if first.IsEligible != second.IsEligible {
		t.Fatal("eligibility differs between identical calls")
	}
	if len(first.Reasons) != len(second.Reasons) {
		t.Fatal("reasons differ between identical calls")
	}
	for i := range first.Reasons {
		if first.Reasons[i] != second.Reasons[i] {
			t.Fatalf("reason %d differs: %q vs %q", i, first.Reasons[i], second.Reasons[i])
		}
	}
}

func TestEvaluateAllPassesOnAnyCondition(t *testing.T) {
	expired := baseCondition()
	expired.ID = "cond-expired"
	to := date(2021, time.January, 1)
	expired.EffectiveTo = &to

	current := baseCondition()
	current.ID = "cond-current"
	current.EffectiveFrom = date(2021, time.January, 2)

	result := EvaluateAll(baseVehicle(), []WarrantyCondition{expired, current}, date(2023, time.June, 1))
	if !result.IsEligible {
		t.Fatalf("expected eligible via the current condition, reasons: %v", result.Reasons)
	}
	if len(result.Reasons) != 0 {
		t.Fatalf("eligible result must carry no reasons, got %v", result.Reasons)
	}
}

func TestEvaluateAllNoConditions(t *testing.T) {
	result := EvaluateAll(baseVehicle(), nil, date(2023, time.June, 1))
	if result.IsEligible {
		t.Fatal("expected ineligible without conditions")
	}
	if len(result.Reasons) != 1 {
		t.Fatalf("expected a single explanatory reason, got %v", result.Reasons)
	}
}
