package warranty

import "time"

// WarrantyCondition is one coverage rule attached to a vehicle model.
// If both CoverageYears and CoverageKm are nil the condition imposes no usage
// limits, only an active-date window.
type WarrantyCondition struct {
	ID            string     `json:"id"`
	Model         string     `json:"model"`
	Description   string     `json:"description,omitempty"`
	CoverageYears *int       `json:"coverageYears,omitempty"`
	CoverageKm    *int       `json:"coverageKm,omitempty"`
	EffectiveFrom time.Time  `json:"effectiveFrom"`
	EffectiveTo   *time.Time `json:"effectiveTo,omitempty"`
	Active        bool       `json:"active"`
}

// WarrantyEndDate computes when time-based coverage runs out for a vehicle
// warranty start date. Returns false if the condition has no year limit.
func (c WarrantyCondition) WarrantyEndDate(warrantyStart time.Time) (time.Time, bool) {
	if c.CoverageYears == nil {
		return time.Time{}, false
	}
	return warrantyStart.AddDate(*c.CoverageYears, 0, 0), true
}

// InEffect reports whether the condition's active-date window covers the given
// instant. EffectiveFrom is inclusive; a nil EffectiveTo leaves the window
// open-ended.
func (c WarrantyCondition) InEffect(at time.Time) bool {
	if !c.Active {
		return false
	}
	if at.Before(c.EffectiveFrom) {
		return false
	}
	if c.EffectiveTo != nil && at.After(*c.EffectiveTo) {
		return false
	}
	return true
}
