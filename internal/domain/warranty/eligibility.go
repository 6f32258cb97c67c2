package warranty

import (
	"fmt"
	"time"
)

// EligibilityResult is the value object returned by an eligibility check.
// It is never persisted.
type EligibilityResult struct {
	IsEligible         bool                `json:"isEligible"`
	Reasons            []string            `json:"reasons"`
	CheckedAt          time.Time           `json:"checkedAt"`
	VehicleInfo        VehicleInfo         `json:"vehicleInfo"`
	WarrantyConditions []WarrantyCondition `json:"warrantyConditions"`
}

// User-facing reason messages, rendered the way the service center client
// presents them.
const dateLayout = "02/01/2006"

// ReasonVehicleNotRegistered is reported when a check references a vehicle
// the system has no record of.
const ReasonVehicleNotRegistered = "Xe chưa được đăng ký trong hệ thống"

func reasonExpired(endDate time.Time) string {
	return fmt.Sprintf("Bảo hành đã hết hạn từ ngày %s", endDate.Format(dateLayout))
}

func reasonMileageExceeded(currentKm, limitKm int) string {
	return fmt.Sprintf("Số km hiện tại (%d km) đã vượt quá giới hạn bảo hành %d km", currentKm, limitKm)
}

func reasonConditionNotInEffect() string {
	return "Điều kiện bảo hành không có hiệu lực tại thời điểm kiểm tra"
}

// Evaluate computes warranty eligibility for a vehicle against one warranty
// condition at a point in time. It is pure and idempotent: identical inputs
// always yield the same IsEligible and Reasons, differing only in CheckedAt.
//
// The vehicle is eligible iff all checks pass. Reasons accumulates every
// failing check, not just the first, so the caller can present a complete
// explanation. Numeric bounds are inclusive: a vehicle at exactly the
// mileage limit is still eligible; an as-of date strictly after the warranty
// end date is not.
func Evaluate(vehicle Vehicle, condition WarrantyCondition, asOf time.Time) EligibilityResult {
	reasons := make([]string, 0, 3)

	// Time-based coverage. Skipped when the condition has no year limit.
	if endDate, ok := condition.WarrantyEndDate(vehicle.WarrantyStartDate); ok {
		if asOf.After(endDate) {
			reasons = append(reasons, reasonExpired(endDate))
		}
	}

	// Mileage-based coverage. Skipped when the condition has no km limit.
	if condition.CoverageKm != nil {
		if vehicle.CurrentMileageKm > *condition.CoverageKm {
			reasons = append(reasons, reasonMileageExceeded(vehicle.CurrentMileageKm, *condition.CoverageKm))
		}
	}

	// Active-date window of the condition itself.
	if !condition.InEffect(asOf) {
		reasons = append(reasons, reasonConditionNotInEffect())
	}

	return EligibilityResult{
		IsEligible:         len(reasons) == 0,
		Reasons:            reasons,
		CheckedAt:          time.Now(),
		VehicleInfo:        vehicle.Info(),
		WarrantyConditions: []WarrantyCondition{condition},
	}
}

// EvaluateAll evaluates a vehicle against every condition attached to its
// model. The vehicle is eligible when at least one condition passes all
// checks; otherwise the reasons of every failing condition are merged so the
// customer sees the full picture.
func EvaluateAll(vehicle Vehicle, conditions []WarrantyCondition, asOf time.Time) EligibilityResult {
	result := EligibilityResult{
		IsEligible:         false,
		Reasons:            []string{},
		CheckedAt:          time.Now(),
		VehicleInfo:        vehicle.Info(),
		WarrantyConditions: conditions,
	}

	if len(conditions) == 0 {
		result.Reasons = append(result.Reasons, "Không tìm thấy điều kiện bảo hành cho dòng xe này")
		return result
	}

	for _, condition := range conditions {
		r := Evaluate(vehicle, condition, asOf)
		if r.IsEligible {
			result.IsEligible = true
			result.Reasons = []string{}
			return result
		}
		result.Reasons = append(result.Reasons, r.Reasons...)
	}

	return result
}
