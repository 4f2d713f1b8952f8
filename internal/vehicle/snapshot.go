// Package vehicle holds the unified vehicle data model: one immutable
// Snapshot made of four sub-records plus per-signal listener statuses.
package vehicle

// Pointer fields distinguish "not reported" (nil) from a reported zero.
// Values reachable from a published Snapshot are never mutated; updates
// build a new Snapshot instead.

// PowertrainState holds battery, fuel and range information.
type PowertrainState struct {
	StateOfChargePercent *float64 `json:"state_of_charge_percent,omitempty"`
	FuelLevelPercent     *float64 `json:"fuel_level_percent,omitempty"`
	RemainingRangeMeters *float64 `json:"remaining_range_meters,omitempty"`
}

// VehicleInfo holds identity and odometer.
type VehicleInfo struct {
	Make           *string  `json:"make,omitempty"`
	Model          *string  `json:"model,omitempty"`
	Year           *int     `json:"year,omitempty"`
	OdometerMeters *float64 `json:"odometer_meters,omitempty"`
}

// ChargingState holds the EV charge port status.
type ChargingState struct {
	PortConnected *bool `json:"port_connected,omitempty"`
	PortOpen      *bool `json:"port_open,omitempty"`
}

// DrivingDynamics holds motion data.
type DrivingDynamics struct {
	SpeedMetersPerSecond *float64 `json:"speed_meters_per_second,omitempty"`
}

// Snapshot is the aggregate of everything we track. The zero value is the
// fully constructed "nothing reported yet" default.
type Snapshot struct {
	Powertrain PowertrainState `json:"powertrain"`
	Info       VehicleInfo     `json:"info"`
	Charging   ChargingState   `json:"charging"`
	Dynamics   DrivingDynamics `json:"dynamics"`
}

// WithPowertrain returns a copy of s with the powertrain group replaced.
func (s Snapshot) WithPowertrain(p PowertrainState) Snapshot {
	s.Powertrain = p
	return s
}

// WithCharging returns a copy of s with the charging group replaced.
func (s Snapshot) WithCharging(c ChargingState) Snapshot {
	s.Charging = c
	return s
}

// WithDynamics returns a copy of s with the driving dynamics replaced.
func (s Snapshot) WithDynamics(d DrivingDynamics) Snapshot {
	s.Dynamics = d
	return s
}

// WithOdometer returns a copy of s with only the odometer replaced.
func (s Snapshot) WithOdometer(meters *float64) Snapshot {
	s.Info.OdometerMeters = meters
	return s
}

// WithIdentity returns a copy of s with make, model and year replaced. The
// odometer is left untouched.
func (s Snapshot) WithIdentity(manufacturer, model *string, year *int) Snapshot {
	s.Info.Make = manufacturer
	s.Info.Model = model
	s.Info.Year = year
	return s
}

// Float, String, Int and Bool return pointers to copies of their argument;
// handy for building snapshots in code and tests.
func Float(v float64) *float64 { return &v }
func String(v string) *string  { return &v }
func Int(v int) *int           { return &v }
func Bool(v bool) *bool        { return &v }
