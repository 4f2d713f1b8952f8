package transmission

import (
	"github.com/jkaberg/carinfo/internal/profiler"
	"github.com/jkaberg/carinfo/internal/vehicle"
)

// Report is what gets transmitted: the snapshot plus the inferred profile.
type Report struct {
	Snapshot vehicle.Snapshot
	Profile  profiler.Profile
}

// Transmitter defines the interface for transmitting reports.
type Transmitter interface {
	Transmit(r Report) error
	IsConnected() bool
}

// Publisher is the slice of the MQTT client the transmitter needs.
type Publisher interface {
	Publish(topic string, payload []byte, retained bool) error
	IsConnected() bool
}
