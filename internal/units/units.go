// Package units converts raw analog-to-digital sensor codes into physical
// distances and provides the display units those distances are reported in.
package units

// Distance unit constants. Sensor curves produce centimetres.
const (
	CM = "cm"
	MM = "mm"
	M  = "m"
	IN = "in"
)

// ValidUnits contains all valid unit values
var ValidUnits = []string{CM, MM, M, IN}

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
	return "cm, mm, m, in"
}

// ConvertDistance converts a distance in centimetres to the target units.
func ConvertDistance(distanceCM float64, targetUnits string) float64 {
	switch targetUnits {
	case MM:
		return distanceCM * 10
	case M:
		return distanceCM / 100
	case IN:
		return distanceCM / 2.54
	default:
		return distanceCM // default to cm if unknown unit
	}
}
