package core

import (
	"time"

	"github.com/andig/vinfast/api"
	"github.com/andig/vinfast/util/units"
)

// merge combines both upstream sources into a display-unit snapshot. A failed
// source marks its fields unknown rather than failing the whole cycle.
func merge(now time.Time, tel api.Telemetry, haveTel bool, info api.VehicleInfo, haveInfo bool) *api.Snapshot {
	res := &api.Snapshot{
		Time:           now,
		OdometerSource: api.OdometerUnknown,
	}

	if haveInfo {
		res.VIN = info.VIN
		res.Name = info.Name
		res.Model = info.Model
		res.Year = info.Year
		res.Color = info.Color
	}

	if haveTel {
		res.Soc = clone(tel.Soc)
		res.Range = miles(tel.Range)
		res.ChargeStatus = clone(tel.ChargeStatus)
		res.TimeToFull = clone(tel.TimeToFull)
		res.TargetSoc = clone(tel.TargetSoc)
		res.Ignition = clone(tel.Ignition)
		res.Gear = clone(tel.Gear)
		res.Speed = miles(tel.Speed)
		res.Handbrake = clone(tel.Handbrake)
		res.OutsideTemp = fahrenheit(tel.OutsideTemp)
		res.InsideTemp = fahrenheit(tel.InsideTemp)
		res.ClimateActive = clone(tel.ClimateActive)
		res.TirePressureFL = psi(tel.TirePressureFL)
		res.TirePressureFR = psi(tel.TirePressureFR)
		res.TirePressureRL = psi(tel.TirePressureRL)
		res.TirePressureRR = psi(tel.TirePressureRR)
		res.DoorFL = clone(tel.DoorFL)
		res.DoorFR = clone(tel.DoorFR)
		res.DoorRL = clone(tel.DoorRL)
		res.DoorRR = clone(tel.DoorRR)
		res.TrunkOpen = clone(tel.TrunkOpen)
		res.HoodOpen = clone(tel.HoodOpen)
		res.WindowsOpen = clone(tel.WindowsOpen)
		res.Locked = clone(tel.Locked)
		res.PluggedIn = clone(tel.PluggedIn)
		res.AuxBattery = clone(tel.AuxBattery)
		res.Latitude = clone(tel.Latitude)
		res.Longitude = clone(tel.Longitude)
		res.Heading = clone(tel.Heading)
	}

	// realtime odometer preferred- master data may be server-side cached
	switch {
	case haveTel && tel.Odometer != nil:
		res.Odometer = miles(tel.Odometer)
		res.OdometerSource = api.OdometerFromTelemetry
	case haveInfo && info.Odometer != nil:
		res.Odometer = miles(info.Odometer)
		res.OdometerSource = api.OdometerFromVehicle
	}

	return res
}

// clone copies an optional value so the published snapshot never aliases raw payloads
func clone[T any](v *T) *T {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func miles(km *float64) *float64 {
	if km == nil {
		return nil
	}
	mi := units.KmToMiles(*km)
	return &mi
}

func fahrenheit(c *float64) *float64 {
	if c == nil {
		return nil
	}
	f := units.CelsiusToFahrenheit(*c)
	return &f
}

func psi(kpa *float64) *float64 {
	if kpa == nil {
		return nil
	}
	p := units.KpaToPsi(*kpa)
	return &p
}
