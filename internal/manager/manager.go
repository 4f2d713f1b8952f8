// Package manager folds asynchronous vehicle signals into a single published
// Snapshot and tracks per-signal diagnostics.
package manager

import (
	"fmt"
	"strings"
	"time"

	"github.com/jkaberg/carinfo/internal/hardware"
	"github.com/jkaberg/carinfo/internal/profiler"
	"github.com/jkaberg/carinfo/internal/state"
	"github.com/jkaberg/carinfo/internal/vehicle"
	"github.com/sirupsen/logrus"
)

// Signal names double as ListenerStatus names.
const (
	SignalEnergyLevel   = "EnergyLevel"
	SignalEvStatus      = "EvStatus"
	SignalSpeed         = "Speed"
	SignalMileage       = "Mileage"
	SignalModel         = "ModelFetch"
	SignalEnergyProfile = "EnergyProfileFetch"
)

// Signals lists every signal in display order.
var Signals = []string{
	SignalEnergyLevel,
	SignalEvStatus,
	SignalSpeed,
	SignalMileage,
	SignalModel,
	SignalEnergyProfile,
}

// Manager owns the aggregate Snapshot. Each callback replaces only the field
// group its signal owns; last write per group wins.
type Manager struct {
	logger *logrus.Logger
	now    func() time.Time

	snapshot   *state.Observable[vehicle.Snapshot]
	profile    *state.Observable[profiler.Profile]
	rawProfile *state.Observable[string]
	statuses   map[string]*state.Observable[vehicle.ListenerStatus]
}

// New builds a Manager and registers one callback per signal on car.
func New(car hardware.CarInfo, logger *logrus.Logger) *Manager {
	m := newManager(logger, time.Now)
	m.register(car)
	return m
}

func newManager(logger *logrus.Logger, now func() time.Time) *Manager {
	m := &Manager{
		logger:     logger,
		now:        now,
		snapshot:   state.NewObservable(vehicle.Snapshot{}),
		profile:    state.NewObservable(profiler.Unknown),
		rawProfile: state.NewObservable(""),
		statuses:   make(map[string]*state.Observable[vehicle.ListenerStatus], len(Signals)),
	}
	for _, name := range Signals {
		m.statuses[name] = state.NewObservable(vehicle.NewListenerStatus(name))
	}
	return m
}

func (m *Manager) register(car hardware.CarInfo) {
	car.AddEnergyLevelListener(m.onEnergyLevel)
	car.AddEvStatusListener(m.onEvStatus)
	car.AddSpeedListener(m.onSpeed)
	car.AddMileageListener(m.onMileage)
	car.FetchModel(m.onModel)
	car.FetchEnergyProfile(m.onEnergyProfile)
}

// Snapshot is the observable aggregate.
func (m *Manager) Snapshot() *state.Observable[vehicle.Snapshot] { return m.snapshot }

// Profile is the propulsion class, Unknown until the energy profile arrives.
func (m *Manager) Profile() *state.Observable[profiler.Profile] { return m.profile }

// RawEnergyProfile is a human-readable dump of the fetched energy profile.
func (m *Manager) RawEnergyProfile() *state.Observable[string] { return m.rawProfile }

// Status returns the observable diagnostics record for a signal, or nil.
func (m *Manager) Status(signal string) *state.Observable[vehicle.ListenerStatus] {
	return m.statuses[signal]
}

// Statuses returns the current diagnostics records in Signals order.
func (m *Manager) Statuses() []vehicle.ListenerStatus {
	out := make([]vehicle.ListenerStatus, 0, len(Signals))
	for _, name := range Signals {
		out = append(out, m.statuses[name].Get())
	}
	return out
}

func (m *Manager) onEnergyLevel(e hardware.EnergyLevel) {
	m.snapshot.Update(func(s vehicle.Snapshot) vehicle.Snapshot { return applyEnergyLevel(s, e) })
	m.markActive(SignalEnergyLevel, e.BatteryPercent.Status)
}

func (m *Manager) onEvStatus(ev hardware.EvStatus) {
	m.snapshot.Update(func(s vehicle.Snapshot) vehicle.Snapshot { return applyEvStatus(s, ev) })
	m.markActive(SignalEvStatus, ev.ChargePortConnected.Status)
}

func (m *Manager) onSpeed(sp hardware.Speed) {
	m.snapshot.Update(func(s vehicle.Snapshot) vehicle.Snapshot { return applySpeed(s, sp) })
	m.markActive(SignalSpeed, sp.RawSpeedMetersPerSecond.Status)
}

func (m *Manager) onMileage(mi hardware.Mileage) {
	m.snapshot.Update(func(s vehicle.Snapshot) vehicle.Snapshot { return applyMileage(s, mi) })
	m.markActive(SignalMileage, mi.OdometerMeters.Status)
}

func (m *Manager) onModel(md hardware.Model) {
	m.snapshot.Update(func(s vehicle.Snapshot) vehicle.Snapshot { return applyModel(s, md) })
	m.markActive(SignalModel, md.Manufacturer.Status)
}

func (m *Manager) onEnergyProfile(ep hardware.EnergyProfile) {
	fuels, _ := ep.FuelTypes.Get()
	connectors, _ := ep.EVConnectorTypes.Get()

	p := profiler.Classify(fuels, connectors)
	m.rawProfile.Set(describeEnergyProfile(ep))
	m.profile.Set(p)
	m.markActive(SignalEnergyProfile, ep.FuelTypes.Status)

	m.logger.WithFields(logrus.Fields{
		"profile":    p.String(),
		"fuels":      fuels,
		"connectors": connectors,
	}).Info("Vehicle profile inferred")
}

func (m *Manager) markActive(signal string, st hardware.Status) {
	now := m.now()
	m.statuses[signal].Set(vehicle.ListenerStatus{
		Name:         signal,
		Active:       true,
		LastUpdated:  &now,
		Availability: st.Availability(),
	})
	m.logger.WithFields(logrus.Fields{
		"signal":       signal,
		"availability": st.Availability().String(),
	}).Debug("Signal update applied")
}

func applyEnergyLevel(s vehicle.Snapshot, e hardware.EnergyLevel) vehicle.Snapshot {
	return s.WithPowertrain(vehicle.PowertrainState{
		StateOfChargePercent: e.BatteryPercent.Ptr(),
		FuelLevelPercent:     e.FuelPercent.Ptr(),
		RemainingRangeMeters: e.RangeRemainingMeters.Ptr(),
	})
}

func applyEvStatus(s vehicle.Snapshot, ev hardware.EvStatus) vehicle.Snapshot {
	return s.WithCharging(vehicle.ChargingState{
		PortConnected: ev.ChargePortConnected.Ptr(),
		PortOpen:      ev.ChargePortOpen.Ptr(),
	})
}

func applySpeed(s vehicle.Snapshot, sp hardware.Speed) vehicle.Snapshot {
	return s.WithDynamics(vehicle.DrivingDynamics{
		SpeedMetersPerSecond: sp.RawSpeedMetersPerSecond.Ptr(),
	})
}

func applyMileage(s vehicle.Snapshot, mi hardware.Mileage) vehicle.Snapshot {
	return s.WithOdometer(mi.OdometerMeters.Ptr())
}

func applyModel(s vehicle.Snapshot, md hardware.Model) vehicle.Snapshot {
	return s.WithIdentity(md.Manufacturer.Ptr(), md.Name.Ptr(), md.Year.Ptr())
}

func describeEnergyProfile(ep hardware.EnergyProfile) string {
	fuel, ev := "N/A", "N/A"
	if fuels, ok := ep.FuelTypes.Get(); ok {
		names := make([]string, len(fuels))
		for i, f := range fuels {
			names[i] = f.String()
		}
		fuel = strings.Join(names, ", ")
	}
	if connectors, ok := ep.EVConnectorTypes.Get(); ok {
		names := make([]string, len(connectors))
		for i, c := range connectors {
			names[i] = c.String()
		}
		ev = strings.Join(names, ", ")
	}
	return fmt.Sprintf("Fuel: %s, EV: %s", fuel, ev)
}
