// Package units converts between the vehicle API's metric units and display units.
// All conversions are exact floating point arithmetic- rounding is left to the caller.
package units

const (
	milesPerKm = 0.621371
	psiPerKpa  = 0.145038
)

// KmToMiles converts kilometers to miles
func KmToMiles(km float64) float64 {
	return km * milesPerKm
}

// MilesToKm converts miles to kilometers
func MilesToKm(mi float64) float64 {
	return mi / milesPerKm
}

// KmhToMph converts kilometers per hour to miles per hour
func KmhToMph(kmh float64) float64 {
	return kmh * milesPerKm
}

// MphToKmh converts miles per hour to kilometers per hour
func MphToKmh(mph float64) float64 {
	return mph / milesPerKm
}

// CelsiusToFahrenheit converts °C to °F
func CelsiusToFahrenheit(c float64) float64 {
	return c*9/5 + 32
}

// FahrenheitToCelsius converts °F to °C
func FahrenheitToCelsius(f float64) float64 {
	return (f - 32) * 5 / 9
}

// KpaToPsi converts kilopascal to pounds per square inch
func KpaToPsi(kpa float64) float64 {
	return kpa * psiPerKpa
}

// PsiToKpa converts pounds per square inch to kilopascal
func PsiToKpa(psi float64) float64 {
	return psi / psiPerKpa
}
