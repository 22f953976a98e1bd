package vehicle

import (
	"fmt"
	"strings"

	"github.com/thoas/go-funk"
)

// ensureVehicle resolves the configured VIN against the vehicles available on
// the api. An empty VIN matches iff the account has exactly one vehicle.
func ensureVehicle[T any](vin string, list func() ([]T, error), extract func(T) string) (T, error) {
	var zero T

	vehicles, err := list()
	if err != nil {
		return zero, fmt.Errorf("cannot get vehicles: %w", err)
	}

	vins := funk.Map(vehicles, extract).([]string)

	if vin = strings.ToUpper(strings.TrimSpace(vin)); vin != "" {
		// vin defined but doesn't exist
		if idx := funk.IndexOf(vins, vin); idx >= 0 {
			return vehicles[idx], nil
		}

		return zero, fmt.Errorf("cannot find vehicle: %s", vin)
	}

	// vin empty
	if len(vehicles) == 1 {
		return vehicles[0], nil
	}

	return zero, fmt.Errorf("cannot find vehicle: %v", vins)
}
