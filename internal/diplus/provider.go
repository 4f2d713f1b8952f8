package diplus

import (
	"context"
	"sync"
	"time"

	"github.com/jkaberg/carinfo/internal/cache"
	"github.com/jkaberg/carinfo/internal/hardware"
	"github.com/jkaberg/carinfo/internal/profiler"
	"github.com/sirupsen/logrus"
)

// Fetcher returns one round of readings. *Client implements it.
type Fetcher interface {
	Fetch(ctx context.Context) (Readings, error)
}

// StaticInfo answers the one-shot fetches Di-Plus cannot serve. Zero values
// are reported as unimplemented.
type StaticInfo struct {
	Manufacturer string
	Model        string
	Year         int
	FuelTypes    []profiler.FuelType
	Connectors   []profiler.ConnectorType
}

// Provider is a hardware.CarInfo backed by Di-Plus polling. Each poll is
// split into signal groups and a group's listeners fire only when its
// payload differs from the previous dispatch.
type Provider struct {
	fetcher  Fetcher
	static   StaticInfo
	interval time.Duration
	changes  *cache.Manager
	logger   *logrus.Logger

	mu      sync.Mutex
	energy  []func(hardware.EnergyLevel)
	ev      []func(hardware.EvStatus)
	speed   []func(hardware.Speed)
	mileage []func(hardware.Mileage)
}

var _ hardware.CarInfo = (*Provider)(nil)

// NewProvider returns a provider polling fetcher every interval.
func NewProvider(fetcher Fetcher, static StaticInfo, interval time.Duration, logger *logrus.Logger) *Provider {
	return &Provider{
		fetcher:  fetcher,
		static:   static,
		interval: interval,
		changes:  cache.NewManager(logger),
		logger:   logger,
	}
}

func (p *Provider) AddEnergyLevelListener(fn func(hardware.EnergyLevel)) {
	p.mu.Lock()
	p.energy = append(p.energy, fn)
	p.mu.Unlock()
}

func (p *Provider) AddEvStatusListener(fn func(hardware.EvStatus)) {
	p.mu.Lock()
	p.ev = append(p.ev, fn)
	p.mu.Unlock()
}

func (p *Provider) AddSpeedListener(fn func(hardware.Speed)) {
	p.mu.Lock()
	p.speed = append(p.speed, fn)
	p.mu.Unlock()
}

func (p *Provider) AddMileageListener(fn func(hardware.Mileage)) {
	p.mu.Lock()
	p.mileage = append(p.mileage, fn)
	p.mu.Unlock()
}

// FetchModel answers from StaticInfo immediately.
func (p *Provider) FetchModel(fn func(hardware.Model)) {
	m := hardware.Model{
		Manufacturer: hardware.Missing[string](hardware.StatusUnimplemented),
		Name:         hardware.Missing[string](hardware.StatusUnimplemented),
		Year:         hardware.Missing[int](hardware.StatusUnimplemented),
	}
	if p.static.Manufacturer != "" {
		m.Manufacturer = hardware.Ok(p.static.Manufacturer)
	}
	if p.static.Model != "" {
		m.Name = hardware.Ok(p.static.Model)
	}
	if p.static.Year > 0 {
		m.Year = hardware.Ok(p.static.Year)
	}
	fn(m)
}

// FetchEnergyProfile answers from StaticInfo immediately. A profile with
// neither fuels nor connectors is unimplemented.
func (p *Provider) FetchEnergyProfile(fn func(hardware.EnergyProfile)) {
	if len(p.static.FuelTypes) == 0 && len(p.static.Connectors) == 0 {
		fn(hardware.EnergyProfile{
			FuelTypes:        hardware.Missing[[]profiler.FuelType](hardware.StatusUnimplemented),
			EVConnectorTypes: hardware.Missing[[]profiler.ConnectorType](hardware.StatusUnimplemented),
		})
		return
	}
	fuels := append([]profiler.FuelType{}, p.static.FuelTypes...)
	connectors := append([]profiler.ConnectorType{}, p.static.Connectors...)
	fn(hardware.EnergyProfile{
		FuelTypes:        hardware.Ok(fuels),
		EVConnectorTypes: hardware.Ok(connectors),
	})
}

// Run polls until ctx is cancelled. Poll failures are logged and the next
// tick is awaited; there is no early retry.
func (p *Provider) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		if err := p.Poll(ctx); err != nil {
			p.logger.WithError(err).Warn("diplus: poll failed")
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Poll performs one fetch and dispatches changed signal groups.
func (p *Provider) Poll(ctx context.Context) error {
	readings, err := p.fetcher.Fetch(ctx)
	if err != nil {
		return err
	}
	p.dispatch(readings)
	return nil
}

func (p *Provider) dispatch(r Readings) {
	p.mu.Lock()
	energy := append([]func(hardware.EnergyLevel){}, p.energy...)
	ev := append([]func(hardware.EvStatus){}, p.ev...)
	speed := append([]func(hardware.Speed){}, p.speed...)
	mileage := append([]func(hardware.Mileage){}, p.mileage...)
	p.mu.Unlock()

	if e := energyLevel(r); p.changes.Changed("energy", e) {
		for _, fn := range energy {
			fn(e)
		}
	}
	if s := evStatus(r); p.changes.Changed("ev", s) {
		for _, fn := range ev {
			fn(s)
		}
	}
	if s := speedOf(r); p.changes.Changed("speed", s) {
		for _, fn := range speed {
			fn(s)
		}
	}
	if m := mileageOf(r); p.changes.Changed("mileage", m) {
		for _, fn := range mileage {
			fn(m)
		}
	}
}

func scaled(r Readings, key string, factor float64) hardware.CarValue[float64] {
	v, ok := r.Get(key)
	if !ok {
		return hardware.Missing[float64](hardware.StatusUnavailable)
	}
	return hardware.Ok(v * factor)
}

func energyLevel(r Readings) hardware.EnergyLevel {
	return hardware.EnergyLevel{
		BatteryPercent:       scaled(r, KeyBatteryPercentage, 1),
		FuelPercent:          scaled(r, KeyFuelPercentage, 1),
		RangeRemainingMeters: scaled(r, KeyRangeRemaining, 1000), // km
	}
}

func evStatus(r Readings) hardware.EvStatus {
	s := hardware.EvStatus{
		ChargePortConnected: hardware.Missing[bool](hardware.StatusUnavailable),
		ChargePortOpen:      hardware.Missing[bool](hardware.StatusUnavailable),
	}
	if v, ok := r.Get(KeyChargeGunState); ok {
		s.ChargePortConnected = hardware.Ok(v == chargeGunConnected)
	}
	if v, ok := r.Get(KeyChargePortCover); ok {
		s.ChargePortOpen = hardware.Ok(v != 0)
	}
	return s
}

func speedOf(r Readings) hardware.Speed {
	return hardware.Speed{RawSpeedMetersPerSecond: scaled(r, KeySpeed, 1/3.6)} // km/h
}

func mileageOf(r Readings) hardware.Mileage {
	return hardware.Mileage{OdometerMeters: scaled(r, KeyMileage, 1000)} // km
}
