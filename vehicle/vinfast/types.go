package vinfast

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	// OAuthURI is the Auth0 tenant handling the credential exchange
	OAuthURI = "https://vinfast-us-prod.us.auth0.com"

	// ApiURI is the connected-car API gateway
	ApiURI = "https://mobile.connected-car.vinfastauto.us"

	ClientID = "xhGY7XKDFSk1Q22rxidvwujfz0EPAbUP"
	Audience = "https://vinfast-us-prod.us.auth0.com/api/v2/"
	Scopes   = "offline_access openid profile email"
)

// aliasVersion selects the vehicle-model alias mapping revision
const aliasVersion = "1.0"

// Response is the common api envelope
type Response struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Err returns an error unless the envelope code indicates success
func (r Response) Err() error {
	if r.Code != 0 && r.Code != 200000 {
		return fmt.Errorf("unexpected response: %d (%s)", r.Code, r.Message)
	}
	return nil
}

type VehiclesResponse struct {
	Response
	Data []Vehicle `json:"data"` // /ccarusermgnt/api/v1/user-vehicle
}

// Vehicle is the user-vehicle master data record
type Vehicle struct {
	VinCode               string   `json:"vinCode"`
	UserID                string   `json:"userId"`
	VehicleName           string   `json:"vehicleName"`
	CustomizedVehicleName string   `json:"customizedVehicleName"`
	VehicleType           string   `json:"vehicleType"`
	VehicleVariant        string   `json:"vehicleVariant"`
	ExteriorColor         string   `json:"exteriorColor"`
	YearOfProduct         int      `json:"yearOfProduct"`
	Odometer              *float64 `json:"odometer"` // km, server-side cached
}

// Name returns the user-assigned vehicle name, falling back to the factory name
func (v Vehicle) Name() string {
	if v.CustomizedVehicleName != "" {
		return v.CustomizedVehicleName
	}
	return v.VehicleName
}

// Model returns type and variant as single model designation
func (v Vehicle) Model() string {
	return strings.TrimSpace(v.VehicleType + " " + v.VehicleVariant)
}

type AliasResponse struct {
	Response
	Data struct {
		Resources []AliasResource `json:"resources"`
	} `json:"data"` // /modelmgmt/.../get-alias
}

// AliasResource maps a telemetry alias to a LwM2M resource
type AliasResource struct {
	Alias      string `json:"alias"`
	ObjectID   string `json:"devObjID"`
	InstanceID string `json:"devObjInstID"`
	ResourceID string `json:"devRsrcID"`
	Name       string `json:"name"`
	Units      string `json:"units"`
	Type       string `json:"type"`
}

// Path returns the /object/instance/resource path of the alias
func (r AliasResource) Path() string {
	inst := r.InstanceID
	if inst == "" {
		inst = "0"
	}
	rsrc := r.ResourceID
	if rsrc == "" {
		rsrc = "0"
	}
	return "/" + r.ObjectID + "/" + inst + "/" + rsrc
}

// Ref returns the resource reference expected by the ping endpoint
func (r AliasResource) Ref() ResourceRef {
	inst := r.InstanceID
	if inst == "" {
		inst = "0"
	}
	rsrc := r.ResourceID
	if rsrc == "" {
		rsrc = "0"
	}
	return ResourceRef{ObjectID: r.ObjectID, InstanceID: inst, ResourceID: rsrc}
}

// ResourceRef is a requested telemetry resource
type ResourceRef struct {
	ObjectID   string `json:"objectId"`
	InstanceID string `json:"instanceId"`
	ResourceID string `json:"resourceId"`
}

type PingResponse struct {
	Response
	Data []PingResource `json:"data"` // /ccaraccessmgmt/api/v1/telemetry/app/ping
}

// PingResource is a single cached telemetry value
type PingResource struct {
	ObjectID       int    `json:"objectId"`
	InstanceID     int    `json:"instanceId"`
	ResourceID     int    `json:"resourceId"`
	DeviceKey      string `json:"deviceKey"` // {objectId}_{instanceId:05d}_{resourceId:05d}
	Value          string `json:"value"`
	LastUpdateTime string `json:"lastUpdateTime"`
}

// Path returns the /object/instance/resource path, preferring the device key
func (r PingResource) Path() string {
	if parts := strings.Split(r.DeviceKey, "_"); len(parts) == 3 {
		obj, err1 := strconv.Atoi(parts[0])
		inst, err2 := strconv.Atoi(parts[1])
		rsrc, err3 := strconv.Atoi(parts[2])
		if err1 == nil && err2 == nil && err3 == nil {
			return fmt.Sprintf("/%d/%d/%d", obj, inst, rsrc)
		}
	}
	return fmt.Sprintf("/%d/%d/%d", r.ObjectID, r.InstanceID, r.ResourceID)
}

// telemetry aliases as defined by the vehicle model (VehicleDeviceKeyAlias)
const (
	aliasSoc            = "VEHICLE_STATUS_HV_BATTERY_SOC"
	aliasRange          = "VEHICLE_STATUS_REMAINING_DISTANCE"
	aliasOdometer       = "VEHICLE_STATUS_ODOMETER"
	aliasChargeStatus   = "CHARGING_STATUS_CHARGING_STATUS"
	aliasTimeToFull     = "CHARGING_STATUS_CHARGING_REMAINING_TIME"
	aliasTargetSoc      = "CHARGE_CONTROL_CURRENT_TARGET_SOC"
	aliasIgnition       = "VEHICLE_STATUS_IGNITION_STATUS"
	aliasGear           = "VEHICLE_STATUS_GEAR_POSITION"
	aliasSpeed          = "VEHICLE_STATUS_VEHICLE_SPEED"
	aliasHandbrake      = "VEHICLE_STATUS_HANDBRAKE_STATUS"
	aliasOutsideTemp    = "VEHICLE_STATUS_AMBIENT_TEMPERATURE"
	aliasInsideTemp     = "CLIMATE_INFORMATION_DRIVER_TEMPERATURE"
	aliasClimateStatus  = "CLIMATE_INFORMATION_STATUS"
	aliasTirePressureFL = "VEHICLE_STATUS_FRONT_LEFT_TIRE_PRESSURE"
	aliasTirePressureFR = "VEHICLE_STATUS_FRONT_RIGHT_TIRE_PRESSURE"
	aliasTirePressureRL = "VEHICLE_STATUS_REAR_LEFT_TIRE_PRESSURE"
	aliasTirePressureRR = "VEHICLE_STATUS_REAR_RIGHT_TIRE_PRESSURE"
	aliasDoorFL         = "DOOR_AJAR_FRONT_LEFT_DOOR_STATUS"
	aliasDoorFR         = "DOOR_AJAR_FRONT_RIGHT_DOOR_STATUS"
	aliasDoorRL         = "DOOR_AJAR_REAR_LEFT_DOOR_STATUS"
	aliasDoorRR         = "DOOR_AJAR_REAR_RIGHT_DOOR_STATUS"
	aliasTrunk          = "DOOR_TRUNK_DOOR_STATUS"
	aliasLockStatus     = "REMOTE_CONTROL_DOOR_STATUS"
	aliasHood           = "REMOTE_CONTROL_BONNET_CONTROL_STATUS"
	aliasWindow         = "REMOTE_CONTROL_WINDOW_STATUS"
	aliasChargePort     = "REMOTE_CONTROL_CHARGE_PORT_STATUS"
	aliasAuxBattery     = "VEHICLE_STATUS_LV_BATTERY_VOLTAGE"
	aliasLatitude       = "LOCATION_LATITUDE"
	aliasLongitude      = "LOCATION_LONGITUDE"
	aliasHeading        = "VEHICLE_BEARING_DEGREE"
)

// telemetryAliases are the resources requested from the ping endpoint
var telemetryAliases = []string{
	aliasSoc, aliasRange, aliasOdometer,
	aliasChargeStatus, aliasTimeToFull, aliasTargetSoc,
	aliasIgnition, aliasGear, aliasSpeed, aliasHandbrake,
	aliasOutsideTemp, aliasInsideTemp, aliasClimateStatus,
	aliasTirePressureFL, aliasTirePressureFR, aliasTirePressureRL, aliasTirePressureRR,
	aliasDoorFL, aliasDoorFR, aliasDoorRL, aliasDoorRR,
	aliasTrunk, aliasLockStatus, aliasHood, aliasWindow, aliasChargePort,
	aliasAuxBattery,
	aliasLatitude, aliasLongitude, aliasHeading,
}

// fallbackAliases are static LwM2M paths observed in the mobile app,
// used when the get-alias mapping is unavailable
var fallbackAliases = map[string]string{
	"/34196/0/0": aliasSoc,
	"/34196/0/1": aliasRange,
	"/34197/0/0": aliasChargeStatus,
	"/34197/0/2": aliasTimeToFull,
	"/34193/0/0": aliasTargetSoc,
	"/34200/0/0": aliasLatitude,
	"/34200/0/1": aliasLongitude,
	"/34201/0/0": aliasLockStatus,
	"/34202/0/0": aliasClimateStatus,
}
