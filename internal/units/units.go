// Package units provides shared constants and validation for length units
package units

// Unit constants
const (
	UM  = "um"
	MM  = "mm"
	DVA = "dva"
)

// MicronsPerDegree is the linear approximation for converting retinal
// distance to degrees of visual angle (280 um per degree).
const MicronsPerDegree = 280.0

// ValidUnits contains all valid unit values
var ValidUnits = []string{UM, MM, DVA}

// IsValid checks if the given unit is in the list of valid units
func IsValid(unit string) bool {
	for _, validUnit := range ValidUnits {
		if unit == validUnit {
			return true
		}
	}
	return false
}

// GetValidUnitsString returns a comma-separated string of valid units for error messages
func GetValidUnitsString() string {
	return "um, mm, dva"
}

// ConvertLength converts a length from microns to the target units.
// Electrode coordinates are stored in microns.
func ConvertLength(lengthUM float64, targetUnits string) float64 {
	switch targetUnits {
	case MM:
		return lengthUM / 1000.0 // um to mm
	case DVA:
		return lengthUM / MicronsPerDegree // um to degrees of visual angle
	case UM:
		return lengthUM // no conversion needed
	default:
		return lengthUM // default to um if unknown unit
	}
}
