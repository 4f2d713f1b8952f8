package hardware

import (
	"context"
	"math"
	"time"

	"github.com/jkaberg/carinfo/internal/profiler"
)

// Simulator drives a Fake with a plausible plug-in hybrid: it drives,
// discharging, then parks and charges, in a loop.
type Simulator struct {
	car      *Fake
	interval time.Duration
	step     int
}

func NewSimulator(car *Fake, interval time.Duration) *Simulator {
	return &Simulator{car: car, interval: interval}
}

// Run answers the one-shot fetches, then emits one sample per interval until
// ctx is done.
func (s *Simulator) Run(ctx context.Context) error {
	s.car.SetModel(Model{
		Manufacturer: Ok("BYD"),
		Name:         Ok("Seal U DM-i"),
		Year:         Ok(2024),
	})
	s.car.SetEnergyProfile(EnergyProfile{
		FuelTypes:        Ok([]profiler.FuelType{profiler.FuelUnleaded, profiler.FuelElectric}),
		EVConnectorTypes: Ok([]profiler.ConnectorType{profiler.ConnectorMennekes, profiler.ConnectorCombo2}),
	})

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		s.Step()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Step emits the next sample. A cycle is 120 steps: 60 driving, 60 charging.
func (s *Simulator) Step() {
	phase := s.step % 120
	s.step++

	driving := phase < 60
	var soc, speed float64
	if driving {
		soc = 80 - float64(phase)*0.5
		speed = 20 + 8*math.Sin(float64(phase)/6)
	} else {
		soc = 50 + float64(phase-60)*0.5
	}

	s.car.EmitEnergyLevel(EnergyLevel{
		BatteryPercent:       Ok(soc),
		FuelPercent:          Ok(65.0),
		RangeRemainingMeters: Ok(soc * 1000),
	})
	s.car.EmitEvStatus(EvStatus{
		ChargePortConnected: Ok(!driving),
		ChargePortOpen:      Ok(!driving),
	})
	s.car.EmitSpeed(Speed{RawSpeedMetersPerSecond: Ok(speed)})
	s.car.EmitMileage(Mileage{OdometerMeters: Ok(12_345_000 + float64(s.step)*20)})
}
