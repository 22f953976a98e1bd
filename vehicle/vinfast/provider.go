package vinfast

import (
	"context"
	"fmt"
	"time"

	"github.com/andig/vinfast/api"
	"github.com/andig/vinfast/provider"
)

// Provider exposes the upstream endpoints for a single vehicle.
// Master data is cached- it changes rarely and must not burden the
// user-vehicle endpoint on every poll cycle.
type Provider struct {
	api  *API
	vin  string
	info func() (api.VehicleInfo, error)
}

// NewProvider creates the vehicle provider
func NewProvider(vehicleAPI *API, vin string, cache time.Duration) *Provider {
	v := &Provider{
		api: vehicleAPI,
		vin: vin,
	}

	v.info = provider.Cached(func() (api.VehicleInfo, error) {
		vehicles, err := vehicleAPI.Vehicles(context.Background())
		if err != nil {
			return api.VehicleInfo{}, err
		}

		for _, vehicle := range vehicles {
			if vehicle.VinCode == vin {
				return api.VehicleInfo{
					VIN:      vehicle.VinCode,
					Name:     vehicle.Name(),
					Model:    vehicle.Model(),
					Year:     vehicle.YearOfProduct,
					Color:    vehicle.ExteriorColor,
					Odometer: vehicle.Odometer,
				}, nil
			}
		}

		return api.VehicleInfo{}, fmt.Errorf("vehicle not found: %s", vin)
	}, cache)

	return v
}

// VIN returns the vehicle identification number
func (v *Provider) VIN() string {
	return v.vin
}

// Reauth discards the cached access token and obtains a fresh one
func (v *Provider) Reauth() error {
	return v.api.Reauth()
}

// Telemetry returns the realtime vehicle state
func (v *Provider) Telemetry(ctx context.Context) (api.Telemetry, error) {
	return v.api.Telemetry(ctx, v.vin)
}

// Info returns the vehicle master data. Served from cache- ctx applies to
// the underlying fetch only when the cache is cold.
func (v *Provider) Info(_ context.Context) (api.VehicleInfo, error) {
	return v.info()
}
