package vehicle

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/andig/vinfast/util"
	"github.com/andig/vinfast/vehicle/vinfast"
)

// VinFast is a vehicle connected through the VinFast Connected Car cloud
type VinFast struct {
	*vinfast.Provider
}

// NewVinFastFromConfig creates the vehicle from generic config
func NewVinFastFromConfig(other map[string]interface{}) (*VinFast, error) {
	cc := struct {
		User, Password string
		VIN            string
		Cache          time.Duration
	}{
		Cache: 15 * time.Minute,
	}

	if err := util.DecodeOther(other, &cc); err != nil {
		return nil, err
	}

	if cc.User == "" || cc.Password == "" {
		return nil, errors.New("missing credentials")
	}

	log := util.NewLogger("vinfast").Redact(cc.User, cc.Password)

	identity := vinfast.NewIdentity(log, cc.User, cc.Password)
	if err := identity.Login(); err != nil {
		return nil, fmt.Errorf("login failed: %w", err)
	}

	api := vinfast.NewAPI(log, identity)

	vehicle, err := ensureVehicle(cc.VIN,
		func() ([]vinfast.Vehicle, error) {
			return api.Vehicles(context.Background())
		},
		func(v vinfast.Vehicle) string {
			return v.VinCode
		},
	)
	if err != nil {
		return nil, err
	}

	return &VinFast{
		Provider: vinfast.NewProvider(api, vehicle.VinCode, cc.Cache),
	}, nil
}
