package warranty

import "errors"

var (
	// ErrVehicleNotFound indicates the referenced vehicle does not exist.
	ErrVehicleNotFound = errors.New("vehicle not found")

	// ErrConditionNotFound indicates no warranty condition exists for a model.
	ErrConditionNotFound = errors.New("warranty condition not found")
)
