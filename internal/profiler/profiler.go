// Package profiler infers the propulsion class of a vehicle from the fuel and
// connector types it reports in its energy profile.
package profiler

// Profile is the inferred propulsion class.
type Profile int

const (
	Unknown Profile = iota
	EV
	PHEV
	ICE
)

func (p Profile) String() string {
	switch p {
	case EV:
		return "EV"
	case PHEV:
		return "PHEV"
	case ICE:
		return "ICE"
	default:
		return "UNKNOWN"
	}
}

// MarshalText lets profiles appear by name in JSON payloads.
func (p Profile) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

func isGasolineFamily(f FuelType) bool {
	return f == FuelUnleaded || f == FuelDiesel1 || f == FuelDiesel2
}

// Classify maps a fuel/connector snapshot to a Profile. Rules are evaluated
// in order and the first match wins:
//  1. electric, no gasoline-family fuel, at least one connector → EV
//  2. electric, gasoline-family fuel, at least one connector   → PHEV
//  3. no electric, gasoline-family fuel, no connector          → ICE
//  4. anything else                                             → Unknown
//
// Empty inputs (profile unavailable or unimplemented) fall through to Unknown.
func Classify(fuelTypes []FuelType, connectors []ConnectorType) Profile {
	hasElectric, hasGasoline := false, false
	for _, f := range fuelTypes {
		if f == FuelElectric {
			hasElectric = true
		}
		if isGasolineFamily(f) {
			hasGasoline = true
		}
	}
	hasConnector := len(connectors) > 0

	switch {
	case hasElectric && !hasGasoline && hasConnector:
		return EV
	case hasElectric && hasGasoline && hasConnector:
		return PHEV
	case !hasElectric && hasGasoline && !hasConnector:
		return ICE
	default:
		return Unknown
	}
}
