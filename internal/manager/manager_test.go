package manager

import (
	"io"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/jkaberg/carinfo/internal/hardware"
	"github.com/jkaberg/carinfo/internal/profiler"
	"github.com/jkaberg/carinfo/internal/vehicle"
	"github.com/sirupsen/logrus"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

var fixedNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func newTestManager(t *testing.T) (*Manager, *hardware.Fake) {
	t.Helper()
	car := hardware.NewFake()
	m := newManager(quietLogger(), func() time.Time { return fixedNow })
	m.register(car)
	return m, car
}

func TestInitialStateIsEmpty(t *testing.T) {
	m, _ := newTestManager(t)

	if diff := cmp.Diff(vehicle.Snapshot{}, m.Snapshot().Get()); diff != "" {
		t.Errorf("initial snapshot (-want +got):\n%s", diff)
	}
	if p := m.Profile().Get(); p != profiler.Unknown {
		t.Errorf("initial profile = %s", p)
	}
	for _, st := range m.Statuses() {
		if st.Active || st.LastUpdated != nil || st.Availability != vehicle.AvailabilityUnknown {
			t.Errorf("status %s not pristine: %+v", st.Name, st)
		}
	}
}

func TestEnergyLevelUpdatesOnlyPowertrain(t *testing.T) {
	m, car := newTestManager(t)
	car.EmitSpeed(hardware.Speed{RawSpeedMetersPerSecond: hardware.Ok(12.5)})

	car.EmitEnergyLevel(hardware.EnergyLevel{
		BatteryPercent:       hardware.Ok(76.0),
		FuelPercent:          hardware.Missing[float64](hardware.StatusUnimplemented),
		RangeRemainingMeters: hardware.Ok(310000.0),
	})

	want := vehicle.Snapshot{
		Powertrain: vehicle.PowertrainState{
			StateOfChargePercent: vehicle.Float(76),
			RemainingRangeMeters: vehicle.Float(310000),
		},
		Dynamics: vehicle.DrivingDynamics{SpeedMetersPerSecond: vehicle.Float(12.5)},
	}
	if diff := cmp.Diff(want, m.Snapshot().Get()); diff != "" {
		t.Errorf("snapshot (-want +got):\n%s", diff)
	}

	st := m.Status(SignalEnergyLevel).Get()
	if !st.Active || st.Availability != vehicle.Available || st.LastUpdated == nil || !st.LastUpdated.Equal(fixedNow) {
		t.Errorf("energy status = %+v", st)
	}
	if m.Status(SignalMileage).Get().Active {
		t.Error("mileage marked active without a callback")
	}
}

func TestMileageKeepsModelIdentity(t *testing.T) {
	m, car := newTestManager(t)
	car.SetModel(hardware.Model{
		Manufacturer: hardware.Ok("BYD"),
		Name:         hardware.Ok("Atto 3"),
		Year:         hardware.Ok(2023),
	})
	car.EmitMileage(hardware.Mileage{OdometerMeters: hardware.Ok(42000.0)})

	want := vehicle.VehicleInfo{
		Make:           vehicle.String("BYD"),
		Model:          vehicle.String("Atto 3"),
		Year:           vehicle.Int(2023),
		OdometerMeters: vehicle.Float(42000),
	}
	if diff := cmp.Diff(want, m.Snapshot().Get().Info); diff != "" {
		t.Errorf("info (-want +got):\n%s", diff)
	}
}

func TestUpdatesAreIdempotent(t *testing.T) {
	ev := hardware.EvStatus{
		ChargePortConnected: hardware.Ok(true),
		ChargePortOpen:      hardware.Ok(false),
	}
	once := applyEvStatus(vehicle.Snapshot{}, ev)
	twice := applyEvStatus(once, ev)
	if diff := cmp.Diff(once, twice); diff != "" {
		t.Errorf("applying twice differs (-once +twice):\n%s", diff)
	}
}

func TestDisjointUpdatesCommute(t *testing.T) {
	sp := hardware.Speed{RawSpeedMetersPerSecond: hardware.Ok(20.0)}
	mi := hardware.Mileage{OdometerMeters: hardware.Ok(1000.0)}
	base := applyModel(vehicle.Snapshot{}, hardware.Model{Manufacturer: hardware.Ok("BYD")})

	a := applyMileage(applySpeed(base, sp), mi)
	b := applySpeed(applyMileage(base, mi), sp)
	if diff := cmp.Diff(a, b); diff != "" {
		t.Errorf("order matters (-speed first +mileage first):\n%s", diff)
	}
}

func TestUnavailableValueClearsOwnedField(t *testing.T) {
	m, car := newTestManager(t)
	car.EmitSpeed(hardware.Speed{RawSpeedMetersPerSecond: hardware.Ok(9.0)})
	car.EmitSpeed(hardware.Speed{RawSpeedMetersPerSecond: hardware.Missing[float64](hardware.StatusUnavailable)})

	if got := m.Snapshot().Get().Dynamics.SpeedMetersPerSecond; got != nil {
		t.Errorf("speed = %v, want not reported", *got)
	}
	if st := m.Status(SignalSpeed).Get(); st.Availability != vehicle.Unavailable {
		t.Errorf("speed availability = %s", st.Availability)
	}
}

func TestEnergyProfileClassifies(t *testing.T) {
	tests := []struct {
		name    string
		profile hardware.EnergyProfile
		want    profiler.Profile
		raw     string
		avail   vehicle.Availability
	}{
		{
			name: "ice",
			profile: hardware.EnergyProfile{
				FuelTypes:        hardware.Ok([]profiler.FuelType{profiler.FuelUnleaded}),
				EVConnectorTypes: hardware.Ok([]profiler.ConnectorType{}),
			},
			want:  profiler.ICE,
			raw:   "Fuel: unleaded, EV: ",
			avail: vehicle.Available,
		},
		{
			name: "phev",
			profile: hardware.EnergyProfile{
				FuelTypes:        hardware.Ok([]profiler.FuelType{profiler.FuelElectric, profiler.FuelUnleaded}),
				EVConnectorTypes: hardware.Ok([]profiler.ConnectorType{profiler.ConnectorMennekes}),
			},
			want:  profiler.PHEV,
			raw:   "Fuel: electric, unleaded, EV: type2",
			avail: vehicle.Available,
		},
		{
			name: "unimplemented",
			profile: hardware.EnergyProfile{
				FuelTypes:        hardware.Missing[[]profiler.FuelType](hardware.StatusUnimplemented),
				EVConnectorTypes: hardware.Missing[[]profiler.ConnectorType](hardware.StatusUnimplemented),
			},
			want:  profiler.Unknown,
			raw:   "Fuel: N/A, EV: N/A",
			avail: vehicle.Unimplemented,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, car := newTestManager(t)
			car.SetEnergyProfile(tt.profile)

			if got := m.Profile().Get(); got != tt.want {
				t.Errorf("profile = %s, want %s", got, tt.want)
			}
			if got := m.RawEnergyProfile().Get(); got != tt.raw {
				t.Errorf("raw = %q, want %q", got, tt.raw)
			}
			if got := m.Status(SignalEnergyProfile).Get().Availability; got != tt.avail {
				t.Errorf("availability = %s, want %s", got, tt.avail)
			}
		})
	}
}

func TestSilentSignalStaysUnreported(t *testing.T) {
	m, car := newTestManager(t)
	for i := 0; i < 5; i++ {
		car.EmitSpeed(hardware.Speed{RawSpeedMetersPerSecond: hardware.Ok(float64(i))})
	}
	s := m.Snapshot().Get()
	if s.Charging.PortConnected != nil || s.Charging.PortOpen != nil {
		t.Errorf("charging reported without EV status: %+v", s.Charging)
	}
	if st := m.Status(SignalEvStatus).Get(); st.Active {
		t.Errorf("ev status active: %+v", st)
	}
}
