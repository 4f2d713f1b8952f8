package profiler

import (
	"fmt"
	"strconv"
	"strings"
)

// FuelType identifies a fuel the vehicle reports in its energy profile.
// Numeric values follow the car-app platform codes so raw profiles can be
// decoded without a lookup table.
type FuelType int

const (
	FuelUnknown   FuelType = 0
	FuelUnleaded  FuelType = 1
	FuelLeaded    FuelType = 2
	FuelDiesel1   FuelType = 3
	FuelDiesel2   FuelType = 4
	FuelBiodiesel FuelType = 5
	FuelE85       FuelType = 6
	FuelLPG       FuelType = 7
	FuelCNG       FuelType = 8
	FuelLNG       FuelType = 9
	FuelElectric  FuelType = 10
	FuelHydrogen  FuelType = 11
	FuelOther     FuelType = 12
)

var fuelNames = map[FuelType]string{
	FuelUnknown:   "unknown",
	FuelUnleaded:  "unleaded",
	FuelLeaded:    "leaded",
	FuelDiesel1:   "diesel_1",
	FuelDiesel2:   "diesel_2",
	FuelBiodiesel: "biodiesel",
	FuelE85:       "e85",
	FuelLPG:       "lpg",
	FuelCNG:       "cng",
	FuelLNG:       "lng",
	FuelElectric:  "electric",
	FuelHydrogen:  "hydrogen",
	FuelOther:     "other",
}

func (f FuelType) String() string {
	if n, ok := fuelNames[f]; ok {
		return n
	}
	return "fuel(" + strconv.Itoa(int(f)) + ")"
}

// ConnectorType identifies an EV charging connector.
type ConnectorType int

const (
	ConnectorUnknown           ConnectorType = 0
	ConnectorJ1772             ConnectorType = 1
	ConnectorMennekes          ConnectorType = 2
	ConnectorChademo           ConnectorType = 3
	ConnectorCombo1            ConnectorType = 4
	ConnectorCombo2            ConnectorType = 5
	ConnectorTeslaRoadster     ConnectorType = 6
	ConnectorTeslaHPWC         ConnectorType = 7
	ConnectorTeslaSupercharger ConnectorType = 8
	ConnectorGBT               ConnectorType = 9
	ConnectorGBTDC             ConnectorType = 10
	ConnectorScame             ConnectorType = 11
	ConnectorOther             ConnectorType = 101
)

var connectorNames = map[ConnectorType]string{
	ConnectorUnknown:           "unknown",
	ConnectorJ1772:             "j1772",
	ConnectorMennekes:          "type2",
	ConnectorChademo:           "chademo",
	ConnectorCombo1:            "ccs1",
	ConnectorCombo2:            "ccs2",
	ConnectorTeslaRoadster:     "tesla_roadster",
	ConnectorTeslaHPWC:         "tesla_hpwc",
	ConnectorTeslaSupercharger: "tesla_supercharger",
	ConnectorGBT:               "gbt",
	ConnectorGBTDC:             "gbt_dc",
	ConnectorScame:             "scame",
	ConnectorOther:             "other",
}

func (c ConnectorType) String() string {
	if n, ok := connectorNames[c]; ok {
		return n
	}
	return "connector(" + strconv.Itoa(int(c)) + ")"
}

// ParseFuelTypes parses a comma separated list such as "electric,unleaded".
// Entries may be names or numeric codes.
func ParseFuelTypes(s string) ([]FuelType, error) {
	var out []FuelType
	for _, part := range splitList(s) {
		if v, err := strconv.Atoi(part); err == nil {
			out = append(out, FuelType(v))
			continue
		}
		found := false
		for code, name := range fuelNames {
			if name == part {
				out = append(out, code)
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("unknown fuel type %q", part)
		}
	}
	return out, nil
}

// ParseConnectorTypes parses a comma separated list such as "type2,ccs2".
func ParseConnectorTypes(s string) ([]ConnectorType, error) {
	var out []ConnectorType
	for _, part := range splitList(s) {
		if v, err := strconv.Atoi(part); err == nil {
			out = append(out, ConnectorType(v))
			continue
		}
		found := false
		for code, name := range connectorNames {
			if name == part {
				out = append(out, code)
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("unknown connector type %q", part)
		}
	}
	return out, nil
}

func splitList(s string) []string {
	var parts []string
	for _, p := range strings.Split(s, ",") {
		p = strings.ToLower(strings.TrimSpace(p))
		if p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}
