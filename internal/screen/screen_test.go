package screen

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/jkaberg/carinfo/internal/hardware"
	"github.com/jkaberg/carinfo/internal/manager"
	"github.com/jkaberg/carinfo/internal/permission"
	"github.com/jkaberg/carinfo/internal/profiler"
	"github.com/jkaberg/carinfo/internal/vehicle"
	"github.com/sirupsen/logrus"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

type fixture struct {
	car    *hardware.Fake
	mgr    *manager.Manager
	perms  *permission.Store
	screen *MainScreen
}

func newFixture(granted, grantable []permission.Permission) *fixture {
	logger := quietLogger()
	car := hardware.NewFake()
	mgr := manager.New(car, logger)
	perms := permission.NewStore(granted, grantable, logger)
	session := NewSession(mgr, perms, HostInfo{Platform: "test", PackageName: "com.example.host"}, logger)
	return &fixture{car: car, mgr: mgr, perms: perms, screen: session.OnCreateScreen()}
}

func rowsByTitle(t *testing.T, tpl Template) map[string]string {
	t.Helper()
	tabs, ok := tpl.(TabTemplate)
	if !ok {
		t.Fatalf("template is %T, want TabTemplate", tpl)
	}
	pane, ok := tabs.Tabs[0].Contents.(PaneTemplate)
	if !ok {
		t.Fatalf("dashboard contents is %T", tabs.Tabs[0].Contents)
	}
	out := make(map[string]string)
	for _, r := range pane.Pane.Rows {
		out[r.Title] = strings.Join(r.Texts, " ")
	}
	return out
}

func TestPermissionPromptWhenMissing(t *testing.T) {
	f := newFixture(nil, permission.Required)

	msg, ok := f.screen.Template().(MessageTemplate)
	if !ok {
		t.Fatalf("template is %T, want MessageTemplate", f.screen.Template())
	}
	if msg.Title != "carinfo Needs Permissions" {
		t.Errorf("title = %q", msg.Title)
	}
	ids := []string{msg.Actions[0].ID, msg.Actions[1].ID}
	if diff := cmp.Diff([]string{ActionRequestPermissions, ActionContinueWithout}, ids); diff != "" {
		t.Errorf("actions (-want +got):\n%s", diff)
	}

	before := f.screen.Version().Get()
	if err := f.screen.OnAction(ActionRequestPermissions); err != nil {
		t.Fatal(err)
	}
	if f.screen.Version().Get() == before {
		t.Error("request did not invalidate")
	}
	if _, ok := f.screen.Template().(TabTemplate); !ok {
		t.Errorf("after grant template is %T", f.screen.Template())
	}
}

func TestMileageDeniedScenario(t *testing.T) {
	f := newFixture([]permission.Permission{permission.CarEnergy, permission.CarSpeed, permission.CarEnergyPorts}, nil)
	f.car.SetEnergyProfile(hardware.EnergyProfile{
		FuelTypes:        hardware.Ok([]profiler.FuelType{profiler.FuelElectric}),
		EVConnectorTypes: hardware.Ok([]profiler.ConnectorType{profiler.ConnectorCombo2}),
	})
	f.car.EmitSpeed(hardware.Speed{RawSpeedMetersPerSecond: hardware.Ok(10.0)})
	f.car.EmitMileage(hardware.Mileage{OdometerMeters: hardware.Ok(12345.0)})
	f.car.EmitEnergyLevel(hardware.EnergyLevel{BatteryPercent: hardware.Ok(64.0)})

	// denied mileage blocks the full view until the user opts into it
	if _, ok := f.screen.Template().(MessageTemplate); !ok {
		t.Fatalf("template is %T, want MessageTemplate", f.screen.Template())
	}
	if err := f.screen.OnAction(ActionContinueWithout); err != nil {
		t.Fatal(err)
	}

	rows := rowsByTitle(t, f.screen.Template())
	want := map[string]string{
		"Odometer":      "Permission Denied: CAR_MILEAGE",
		"Speed":         "36.0 km/h",
		"Battery Level": "64%",
		"Vehicle Make":  "N/A",
	}
	for title, text := range want {
		if rows[title] != text {
			t.Errorf("%s = %q, want %q", title, rows[title], text)
		}
	}
}

func TestICEDashboardOmitsBatteryRows(t *testing.T) {
	f := newFixture(permission.Required, nil)
	f.car.SetEnergyProfile(hardware.EnergyProfile{
		FuelTypes:        hardware.Ok([]profiler.FuelType{profiler.FuelUnleaded}),
		EVConnectorTypes: hardware.Ok([]profiler.ConnectorType{}),
	})
	f.car.EmitEnergyLevel(hardware.EnergyLevel{
		FuelPercent:          hardware.Ok(55.0),
		RangeRemainingMeters: hardware.Ok(480000.0),
	})

	rows := rowsByTitle(t, f.screen.Template())
	if rows["Fuel Level"] != "55%" {
		t.Errorf("Fuel Level = %q", rows["Fuel Level"])
	}
	if rows["Remaining Range"] != "480.0 km" {
		t.Errorf("Remaining Range = %q", rows["Remaining Range"])
	}
	for _, title := range []string{"Battery Level", "EV Port Connected", "EV Port Open", "Vehicle Profile"} {
		if _, ok := rows[title]; ok {
			t.Errorf("ICE dashboard shows %q", title)
		}
	}
}

func TestUnknownProfileShowsNotice(t *testing.T) {
	f := newFixture(permission.Required, nil)
	rows := rowsByTitle(t, f.screen.Template())
	if rows["Vehicle Profile"] != "Unknown or not yet determined" {
		t.Errorf("Vehicle Profile = %q", rows["Vehicle Profile"])
	}
	if rows["Battery Level"] != NotAvailable {
		t.Errorf("Battery Level = %q", rows["Battery Level"])
	}
}

func TestTabSelection(t *testing.T) {
	f := newFixture(permission.Required, nil)
	if err := f.screen.OnAction("tab:" + TabDiagnostics); err != nil {
		t.Fatal(err)
	}
	tabs := f.screen.Template().(TabTemplate)
	if tabs.ActiveTabID != TabDiagnostics {
		t.Errorf("active tab = %q", tabs.ActiveTabID)
	}
	if err := f.screen.OnAction("tab:settings"); !errors.Is(err, ErrUnknownAction) {
		t.Errorf("unknown tab err = %v", err)
	}
	if err := f.screen.OnAction("launch"); !errors.Is(err, ErrUnknownAction) {
		t.Errorf("unknown action err = %v", err)
	}
}

func TestDiagnosticsRows(t *testing.T) {
	f := newFixture(permission.Required, nil)
	f.car.EmitSpeed(hardware.Speed{RawSpeedMetersPerSecond: hardware.Missing[float64](hardware.StatusUnimplemented)})

	pane := NewDiagnosticsScreen(f.mgr, HostInfo{PackageName: "com.example.host"}).Template()
	got := make(map[string]string)
	for _, r := range pane.Pane.Rows {
		got[r.Title] = strings.Join(r.Texts, " ")
	}
	if got["Host Version"] != NotAvailable {
		t.Errorf("Host Version = %q", got["Host Version"])
	}
	if got["Detected Profile"] != "UNKNOWN" {
		t.Errorf("Detected Profile = %q", got["Detected Profile"])
	}
	if !strings.HasPrefix(got[manager.SignalSpeed], "Active (Unimplemented)") {
		t.Errorf("Speed status = %q", got[manager.SignalSpeed])
	}
	if got[manager.SignalMileage] != "Inactive" {
		t.Errorf("Mileage status = %q", got[manager.SignalMileage])
	}
}

func TestChangesFiresPerSource(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(f *fixture)
	}{
		{"snapshot", func(f *fixture) {
			f.mgr.Snapshot().Update(func(s vehicle.Snapshot) vehicle.Snapshot {
				return s.WithOdometer(vehicle.Float(1000))
			})
		}},
		{"profile", func(f *fixture) { f.mgr.Profile().Set(profiler.ICE) }},
		{"raw energy profile", func(f *fixture) { f.mgr.RawEnergyProfile().Set("Fuel: unleaded, EV: N/A") }},
		{"status", func(f *fixture) {
			f.mgr.Status(manager.SignalMileage).Set(vehicle.ListenerStatus{Name: manager.SignalMileage, Active: true})
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(permission.Required, nil)
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			changed := f.screen.changes(ctx)
			select {
			case <-changed:
				t.Fatal("fired before any change")
			case <-time.After(50 * time.Millisecond):
			}

			tt.mutate(f)
			select {
			case <-changed:
			case <-time.After(2 * time.Second):
				t.Fatalf("no change reported for %s", tt.name)
			}
		})
	}
}

func TestWatchInvalidatesOnSnapshotChange(t *testing.T) {
	f := newFixture(permission.Required, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go f.screen.Watch(ctx)

	// Watch does not invalidate on start; keep emitting until its
	// subscriptions are in place and a change gets through.
	deadline := time.After(2 * time.Second)
	for speed := 1.0; f.screen.Version().Get() == 0; speed++ {
		f.car.EmitSpeed(hardware.Speed{RawSpeedMetersPerSecond: hardware.Ok(speed)})
		select {
		case <-deadline:
			t.Fatal("no invalidation after snapshot change")
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestTemplateJSONHasType(t *testing.T) {
	f := newFixture(permission.Required, nil)
	b, err := json.Marshal(f.screen.Template())
	if err != nil {
		t.Fatal(err)
	}
	var decoded struct {
		Type string `json:"type"`
		Tabs []struct {
			Contents struct {
				Type string `json:"type"`
			} `json:"contents"`
		} `json:"tabs"`
	}
	if err := json.Unmarshal(b, &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded.Type != "tab" || len(decoded.Tabs) != 2 || decoded.Tabs[0].Contents.Type != "pane" {
		t.Errorf("unexpected encoding: %s", b)
	}
}

func TestDashboardLoadingUntilEnergyProfile(t *testing.T) {
	f := newFixture(permission.Required, nil)
	loading := func() bool {
		t.Helper()
		tabs, ok := f.screen.Template().(TabTemplate)
		if !ok {
			t.Fatalf("template is %T", f.screen.Template())
		}
		return tabs.Tabs[0].Contents.(PaneTemplate).Pane.Loading
	}

	if !loading() {
		t.Error("dashboard should be loading before the energy profile arrives")
	}
	f.car.SetEnergyProfile(hardware.EnergyProfile{
		FuelTypes:        hardware.Ok([]profiler.FuelType{profiler.FuelUnleaded}),
		EVConnectorTypes: hardware.Missing[[]profiler.ConnectorType](hardware.StatusUnimplemented),
	})
	if loading() {
		t.Error("dashboard still loading after the energy profile arrived")
	}
}
