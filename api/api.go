package api

import "time"

// ChargeStatus is the vehicle charging state
type ChargeStatus int

const (
	ChargeNotCharging ChargeStatus = iota
	ChargeCharging
	ChargeComplete
	ChargeScheduled
	ChargeError
)

func (c ChargeStatus) String() string {
	switch c {
	case ChargeNotCharging:
		return "not charging"
	case ChargeCharging:
		return "charging"
	case ChargeComplete:
		return "complete"
	case ChargeScheduled:
		return "scheduled"
	case ChargeError:
		return "error"
	default:
		return "unknown"
	}
}

// Gear is the gear selector position
type Gear int

const (
	GearOff Gear = iota
	GearPark
	GearReverse
	GearNeutral
	GearDrive
)

func (g Gear) String() string {
	switch g {
	case GearOff:
		return "OFF"
	case GearPark:
		return "P"
	case GearReverse:
		return "R"
	case GearNeutral:
		return "N"
	case GearDrive:
		return "D"
	default:
		return "unknown"
	}
}

// Telemetry is the realtime endpoint payload in vendor units (km, km/h, °C, kPa).
// Nil fields were not reported by the vehicle.
type Telemetry struct {
	Soc            *float64      // %
	Range          *float64      // km
	Odometer       *float64      // km
	ChargeStatus   *ChargeStatus //
	TimeToFull     *int64        // min
	TargetSoc      *float64      // %
	Ignition       *bool         //
	Gear           *Gear         //
	Speed          *float64      // km/h
	Handbrake      *bool         //
	OutsideTemp    *float64      // °C
	InsideTemp     *float64      // °C
	ClimateActive  *bool         //
	TirePressureFL *float64      // kPa
	TirePressureFR *float64      // kPa
	TirePressureRL *float64      // kPa
	TirePressureRR *float64      // kPa
	DoorFL         *bool         // open
	DoorFR         *bool         // open
	DoorRL         *bool         // open
	DoorRR         *bool         // open
	TrunkOpen      *bool         //
	HoodOpen       *bool         //
	WindowsOpen    *bool         //
	Locked         *bool         //
	PluggedIn      *bool         //
	AuxBattery     *float64      // V
	Latitude       *float64      // °
	Longitude      *float64      // °
	Heading        *float64      // °
}

// VehicleInfo is the slower-changing vehicle master data
type VehicleInfo struct {
	VIN      string
	Name     string
	Model    string
	Year     int
	Color    string
	Odometer *float64 // km, may lag behind telemetry
}

// OdometerSource identifies which upstream endpoint the snapshot odometer was taken from
type OdometerSource string

const (
	OdometerFromTelemetry OdometerSource = "telemetry"
	OdometerFromVehicle   OdometerSource = "vehicle"
	OdometerUnknown       OdometerSource = "unknown"
)

// Snapshot is the merged, unit-converted vehicle state (mi, mph, °F, psi).
// A snapshot is immutable once published. Nil fields are unknown.
type Snapshot struct {
	Time time.Time `json:"time"`

	VIN   string `json:"vin,omitempty"`
	Name  string `json:"name,omitempty"`
	Model string `json:"model,omitempty"`
	Year  int    `json:"year,omitempty"`
	Color string `json:"color,omitempty"`

	Soc            *float64       `json:"soc,omitempty"`            // %
	Range          *float64       `json:"range,omitempty"`          // mi
	Odometer       *float64       `json:"odometer,omitempty"`       // mi
	OdometerSource OdometerSource `json:"odometerSource"`           //
	ChargeStatus   *ChargeStatus  `json:"chargeStatus,omitempty"`   //
	TimeToFull     *int64         `json:"timeToFull,omitempty"`     // min
	TargetSoc      *float64       `json:"targetSoc,omitempty"`      // %
	Ignition       *bool          `json:"ignition,omitempty"`       //
	Gear           *Gear          `json:"gear,omitempty"`           //
	Speed          *float64       `json:"speed,omitempty"`          // mph
	Handbrake      *bool          `json:"handbrake,omitempty"`      //
	OutsideTemp    *float64       `json:"outsideTemp,omitempty"`    // °F
	InsideTemp     *float64       `json:"insideTemp,omitempty"`     // °F
	ClimateActive  *bool          `json:"climateActive,omitempty"`  //
	TirePressureFL *float64       `json:"tirePressureFl,omitempty"` // psi
	TirePressureFR *float64       `json:"tirePressureFr,omitempty"` // psi
	TirePressureRL *float64       `json:"tirePressureRl,omitempty"` // psi
	TirePressureRR *float64       `json:"tirePressureRr,omitempty"` // psi
	DoorFL         *bool          `json:"doorFl,omitempty"`         //
	DoorFR         *bool          `json:"doorFr,omitempty"`         //
	DoorRL         *bool          `json:"doorRl,omitempty"`         //
	DoorRR         *bool          `json:"doorRr,omitempty"`         //
	TrunkOpen      *bool          `json:"trunkOpen,omitempty"`      //
	HoodOpen       *bool          `json:"hoodOpen,omitempty"`       //
	WindowsOpen    *bool          `json:"windowsOpen,omitempty"`    //
	Locked         *bool          `json:"locked,omitempty"`         //
	PluggedIn      *bool          `json:"pluggedIn,omitempty"`      //
	AuxBattery     *float64       `json:"auxBattery,omitempty"`     // V
	Latitude       *float64       `json:"latitude,omitempty"`       // °
	Longitude      *float64       `json:"longitude,omitempty"`      // °
	Heading        *float64       `json:"heading,omitempty"`        // °
}

// Update notifies subscribers of a completed fetch cycle. Snapshot is the
// latest published snapshot- unchanged if the cycle failed.
type Update struct {
	Snapshot *Snapshot
	Ok       bool // cycle produced usable data
	Degraded bool // one of two endpoints failed
	Failures int  // consecutive failed cycles
}
