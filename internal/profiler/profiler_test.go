package profiler

import "testing"

func TestClassify(t *testing.T) {
	tests := []struct {
		name       string
		fuels      []FuelType
		connectors []ConnectorType
		want       Profile
	}{
		{"empty", nil, nil, Unknown},
		{"electric without connector", []FuelType{FuelElectric}, nil, Unknown},
		{"battery electric", []FuelType{FuelElectric}, []ConnectorType{ConnectorCombo2}, EV},
		{"plug-in hybrid", []FuelType{FuelElectric, FuelUnleaded}, []ConnectorType{ConnectorMennekes}, PHEV},
		{"diesel plug-in hybrid", []FuelType{FuelDiesel2, FuelElectric}, []ConnectorType{ConnectorJ1772}, PHEV},
		{"petrol", []FuelType{FuelUnleaded}, nil, ICE},
		{"diesel", []FuelType{FuelDiesel1}, nil, ICE},
		{"petrol with connector", []FuelType{FuelUnleaded}, []ConnectorType{ConnectorMennekes}, Unknown},
		{"lpg only", []FuelType{FuelLPG}, nil, Unknown},
		{"leaded is not gasoline family", []FuelType{FuelLeaded}, nil, Unknown},
		{"connector only", nil, []ConnectorType{ConnectorChademo}, Unknown},
		{"unknown connector still counts", []FuelType{FuelElectric}, []ConnectorType{ConnectorUnknown}, EV},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.fuels, tt.connectors); got != tt.want {
				t.Errorf("Classify(%v, %v) = %s, want %s", tt.fuels, tt.connectors, got, tt.want)
			}
		})
	}
}

func TestClassifyIsTotal(t *testing.T) {
	fuels := []FuelType{FuelUnknown, FuelUnleaded, FuelDiesel1, FuelDiesel2, FuelElectric, FuelHydrogen}
	connectors := []ConnectorType{ConnectorMennekes, ConnectorCombo1}

	// Every subset of fuels against every subset of connectors.
	for fm := 0; fm < 1<<len(fuels); fm++ {
		var fs []FuelType
		for i, f := range fuels {
			if fm&(1<<i) != 0 {
				fs = append(fs, f)
			}
		}
		for cm := 0; cm < 1<<len(connectors); cm++ {
			var cs []ConnectorType
			for i, c := range connectors {
				if cm&(1<<i) != 0 {
					cs = append(cs, c)
				}
			}
			switch p := Classify(fs, cs); p {
			case EV, PHEV, ICE, Unknown:
			default:
				t.Fatalf("Classify(%v, %v) returned %d", fs, cs, p)
			}
		}
	}
}

func TestParseFuelTypes(t *testing.T) {
	got, err := ParseFuelTypes(" Electric, unleaded ,3")
	if err != nil {
		t.Fatalf("ParseFuelTypes: %v", err)
	}
	want := []FuelType{FuelElectric, FuelUnleaded, FuelDiesel1}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("index %d: got %s, want %s", i, got[i], want[i])
		}
	}

	if _, err := ParseFuelTypes("kerosene"); err == nil {
		t.Error("expected error for unknown fuel type")
	}
	if got, _ := ParseFuelTypes(""); len(got) != 0 {
		t.Errorf("empty input parsed to %v", got)
	}
}

func TestParseConnectorTypes(t *testing.T) {
	got, err := ParseConnectorTypes("type2,ccs2")
	if err != nil {
		t.Fatalf("ParseConnectorTypes: %v", err)
	}
	if len(got) != 2 || got[0] != ConnectorMennekes || got[1] != ConnectorCombo2 {
		t.Errorf("got %v", got)
	}
	if _, err := ParseConnectorTypes("usb"); err == nil {
		t.Error("expected error for unknown connector")
	}
}
