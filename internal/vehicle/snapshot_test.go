package vehicle

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestWithHelpersLeaveOtherGroupsUntouched(t *testing.T) {
	base := Snapshot{
		Powertrain: PowertrainState{StateOfChargePercent: Float(80)},
		Info:       VehicleInfo{Make: String("BYD"), OdometerMeters: Float(1200)},
		Charging:   ChargingState{PortConnected: Bool(true)},
		Dynamics:   DrivingDynamics{SpeedMetersPerSecond: Float(3)},
	}

	got := base.WithDynamics(DrivingDynamics{SpeedMetersPerSecond: Float(10)})
	want := base
	want.Dynamics = DrivingDynamics{SpeedMetersPerSecond: Float(10)}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("WithDynamics mismatch (-want +got):\n%s", diff)
	}

	// The receiver is a copy; base must not change.
	if *base.Dynamics.SpeedMetersPerSecond != 3 {
		t.Errorf("base mutated: speed=%v", *base.Dynamics.SpeedMetersPerSecond)
	}
}

func TestWithOdometerKeepsIdentity(t *testing.T) {
	s := Snapshot{}.WithIdentity(String("BYD"), String("Atto 3"), Int(2023))
	s = s.WithOdometer(Float(5000))

	want := VehicleInfo{Make: String("BYD"), Model: String("Atto 3"), Year: Int(2023), OdometerMeters: Float(5000)}
	if diff := cmp.Diff(want, s.Info); diff != "" {
		t.Errorf("info mismatch (-want +got):\n%s", diff)
	}

	s = s.WithIdentity(String("BYD"), String("Seal"), nil)
	if s.Info.OdometerMeters == nil || *s.Info.OdometerMeters != 5000 {
		t.Errorf("WithIdentity cleared odometer: %+v", s.Info)
	}
}

func TestZeroSnapshotEncodesEmptyGroups(t *testing.T) {
	b, err := json.Marshal(Snapshot{})
	if err != nil {
		t.Fatal(err)
	}
	want := `{"powertrain":{},"info":{},"charging":{},"dynamics":{}}`
	if string(b) != want {
		t.Errorf("got %s, want %s", b, want)
	}
}

func TestAvailabilityString(t *testing.T) {
	for a, want := range map[Availability]string{
		Available:           "Available",
		Unavailable:         "Unavailable",
		Unimplemented:       "Unimplemented",
		AvailabilityUnknown: "Unknown",
	} {
		if a.String() != want {
			t.Errorf("%d: got %q, want %q", a, a.String(), want)
		}
	}
}
