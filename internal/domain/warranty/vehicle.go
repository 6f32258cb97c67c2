// Package warranty provides warranty eligibility evaluation for vehicles.
package warranty

import "time"

// Vehicle carries the fields eligibility evaluation needs. The full vehicle
// record is owned by an external collaborator.
type Vehicle struct {
	ID                string    `json:"id"`
	VIN               string    `json:"vin"`
	Model             string    `json:"model"`
	WarrantyStartDate time.Time `json:"warrantyStartDate"`
	CurrentMileageKm  int       `json:"currentMileageKm"`
	OwnerCustomerID   string    `json:"ownerCustomerId,omitempty"`
}

// VehicleInfo is the display snapshot embedded in an eligibility result.
type VehicleInfo struct {
	VIN               string    `json:"vin"`
	Model             string    `json:"model"`
	WarrantyStartDate time.Time `json:"warrantyStartDate"`
	CurrentMileageKm  int       `json:"currentMileageKm"`
}

// Info returns the display snapshot for the vehicle.
func (v Vehicle) Info() VehicleInfo {
	return VehicleInfo{
		VIN:               v.VIN,
		Model:             v.Model,
		WarrantyStartDate: v.WarrantyStartDate,
		CurrentMileageKm:  v.CurrentMileageKm,
	}
}
