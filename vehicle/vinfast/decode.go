package vinfast

import (
	"strconv"

	"github.com/andig/vinfast/api"
)

// decodeTelemetry converts the ping resource list into the typed telemetry
// record. Unknown paths and unparseable values are skipped- the payload is
// vendor-versioned and must tolerate additive change.
func decodeTelemetry(data []PingResource, pathToAlias map[string]string) api.Telemetry {
	var res api.Telemetry

	for _, r := range data {
		alias, ok := pathToAlias[r.Path()]
		if !ok {
			continue
		}

		f, err := strconv.ParseFloat(r.Value, 64)
		if err != nil {
			continue
		}

		switch alias {
		case aliasSoc:
			res.Soc = &f
		case aliasRange:
			res.Range = &f
		case aliasOdometer:
			res.Odometer = &f
		case aliasChargeStatus:
			res.ChargeStatus = chargeStatus(f)
		case aliasTimeToFull:
			min := int64(f)
			res.TimeToFull = &min
		case aliasTargetSoc:
			res.TargetSoc = &f
		case aliasIgnition:
			res.Ignition = boolVal(f == 1)
		case aliasGear:
			res.Gear = gear(f)
		case aliasSpeed:
			res.Speed = &f
		case aliasHandbrake:
			res.Handbrake = boolVal(f == 1)
		case aliasOutsideTemp:
			res.OutsideTemp = &f
		case aliasInsideTemp:
			res.InsideTemp = &f
		case aliasClimateStatus:
			res.ClimateActive = boolVal(f == 1)
		case aliasTirePressureFL:
			res.TirePressureFL = &f
		case aliasTirePressureFR:
			res.TirePressureFR = &f
		case aliasTirePressureRL:
			res.TirePressureRL = &f
		case aliasTirePressureRR:
			res.TirePressureRR = &f
		case aliasDoorFL:
			res.DoorFL = boolVal(f == 1)
		case aliasDoorFR:
			res.DoorFR = boolVal(f == 1)
		case aliasDoorRL:
			res.DoorRL = boolVal(f == 1)
		case aliasDoorRR:
			res.DoorRR = boolVal(f == 1)
		case aliasTrunk:
			res.TrunkOpen = boolVal(f == 1)
		case aliasHood:
			res.HoodOpen = boolVal(f == 1)
		case aliasWindow:
			// 0 all closed, otherwise at least one window open
			res.WindowsOpen = boolVal(f != 0)
		case aliasLockStatus:
			// 0 unlocked, 1 locked
			res.Locked = boolVal(f == 1)
		case aliasChargePort:
			res.PluggedIn = boolVal(f == 1)
		case aliasAuxBattery:
			res.AuxBattery = &f
		case aliasLatitude:
			res.Latitude = &f
		case aliasLongitude:
			res.Longitude = &f
		case aliasHeading:
			res.Heading = &f
		}
	}

	return res
}

func boolVal(b bool) *bool {
	return &b
}

func chargeStatus(f float64) *api.ChargeStatus {
	cs := api.ChargeStatus(int(f))
	if cs < api.ChargeNotCharging || cs > api.ChargeError {
		return nil
	}
	return &cs
}

func gear(f float64) *api.Gear {
	g := api.Gear(int(f))
	if g < api.GearOff || g > api.GearDrive {
		return nil
	}
	return &g
}
