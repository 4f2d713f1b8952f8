// Package hardware describes the vehicle data capability carinfo consumes:
// change notifications for energy level, EV port status, speed and mileage,
// plus one-shot model and energy-profile fetches. Every delivered value
// carries a status so consumers can tell "zero" from "not available".
package hardware

import (
	"github.com/jkaberg/carinfo/internal/profiler"
	"github.com/jkaberg/carinfo/internal/vehicle"
)

// Status is the per-value result code reported with every reading.
type Status int

const (
	StatusUnknown Status = iota
	StatusSuccess
	StatusUnavailable
	StatusUnimplemented
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusUnavailable:
		return "unavailable"
	case StatusUnimplemented:
		return "unimplemented"
	default:
		return "unknown"
	}
}

// Availability maps a status onto the diagnostics vocabulary.
func (s Status) Availability() vehicle.Availability {
	switch s {
	case StatusSuccess:
		return vehicle.Available
	case StatusUnavailable:
		return vehicle.Unavailable
	case StatusUnimplemented:
		return vehicle.Unimplemented
	default:
		return vehicle.AvailabilityUnknown
	}
}

// CarValue is an optional reading. Value is nil unless Status is
// StatusSuccess.
type CarValue[T any] struct {
	Value  *T
	Status Status
}

// Ok wraps a successful reading.
func Ok[T any](v T) CarValue[T] { return CarValue[T]{Value: &v, Status: StatusSuccess} }

// Missing builds a reading without a value.
func Missing[T any](s Status) CarValue[T] { return CarValue[T]{Status: s} }

// Get returns the value and whether it is usable.
func (c CarValue[T]) Get() (T, bool) {
	if c.Status != StatusSuccess || c.Value == nil {
		var zero T
		return zero, false
	}
	return *c.Value, true
}

// Ptr returns a pointer to a copy of the value, or nil.
func (c CarValue[T]) Ptr() *T {
	v, ok := c.Get()
	if !ok {
		return nil
	}
	return &v
}

type EnergyLevel struct {
	BatteryPercent       CarValue[float64]
	FuelPercent          CarValue[float64]
	RangeRemainingMeters CarValue[float64]
}

type EvStatus struct {
	ChargePortConnected CarValue[bool]
	ChargePortOpen      CarValue[bool]
}

type Speed struct {
	RawSpeedMetersPerSecond CarValue[float64]
}

type Mileage struct {
	OdometerMeters CarValue[float64]
}

type Model struct {
	Manufacturer CarValue[string]
	Name         CarValue[string]
	Year         CarValue[int]
}

type EnergyProfile struct {
	FuelTypes        CarValue[[]profiler.FuelType]
	EVConnectorTypes CarValue[[]profiler.ConnectorType]
}

// CarInfo is the capability a provider exposes. Listeners run on the
// provider's goroutines and different signals may fire concurrently.
type CarInfo interface {
	AddEnergyLevelListener(fn func(EnergyLevel))
	AddEvStatusListener(fn func(EvStatus))
	AddSpeedListener(fn func(Speed))
	AddMileageListener(fn func(Mileage))
	FetchModel(fn func(Model))
	FetchEnergyProfile(fn func(EnergyProfile))
}
