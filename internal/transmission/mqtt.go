package transmission

import (
	"encoding/json"
	"fmt"

	"github.com/jkaberg/carinfo/internal/mqtt"
	"github.com/sirupsen/logrus"
)

// MQTTTransmitter publishes reports as one JSON state document plus Home
// Assistant discovery configs.
type MQTTTransmitter struct {
	client           Publisher
	deviceID         string
	discoveryPrefix  string
	version          string
	logger           *logrus.Logger
	publishedConfigs map[string]bool
	// identity the published configs carry
	publishedDevice string
}

// HADiscoveryConfig represents Home Assistant MQTT discovery configuration.
type HADiscoveryConfig struct {
	Name              string   `json:"name"`
	UniqueID          string   `json:"unique_id"`
	StateTopic        string   `json:"state_topic"`
	ValueTemplate     string   `json:"value_template,omitempty"`
	DeviceClass       string   `json:"device_class,omitempty"`
	UnitOfMeasurement string   `json:"unit_of_measurement,omitempty"`
	StateClass        string   `json:"state_class,omitempty"`
	PayloadOn         string   `json:"payload_on,omitempty"`
	PayloadOff        string   `json:"payload_off,omitempty"`
	Device            HADevice `json:"device"`
	AvailabilityTopic string   `json:"availability_topic"`
}

// HADevice represents the device information for Home Assistant.
type HADevice struct {
	Identifiers  []string `json:"identifiers"`
	Name         string   `json:"name"`
	Model        string   `json:"model"`
	Manufacturer string   `json:"manufacturer"`
	SWVersion    string   `json:"sw_version,omitempty"`
}

// Entity describes one exported value.
type Entity struct {
	Name        string
	Key         string // key in the state document
	Type        string // "sensor" / "binary_sensor"
	DeviceClass string
	Unit        string
	StateClass  string
}

// Entities is the authoritative list of values published via MQTT.
var Entities = []Entity{
	{"Battery Level", "battery_percent", "sensor", "battery", "%", "measurement"},
	{"Fuel Level", "fuel_percent", "sensor", "", "%", "measurement"},
	{"Remaining Range", "range_km", "sensor", "distance", "km", "measurement"},
	{"Odometer", "odometer_km", "sensor", "distance", "km", "total_increasing"},
	{"Speed", "speed_kmh", "sensor", "speed", "km/h", "measurement"},
	{"EV Port Connected", "port_connected", "binary_sensor", "plug", "", ""},
	{"EV Port Open", "port_open", "binary_sensor", "opening", "", ""},
	{"Vehicle Profile", "profile", "sensor", "", "", ""},
	{"Vehicle State", "state", "sensor", "", "", ""},
}

// NewMQTTTransmitter creates a new MQTT transmitter.
func NewMQTTTransmitter(client Publisher, deviceID, discoveryPrefix, version string, logger *logrus.Logger) *MQTTTransmitter {
	return &MQTTTransmitter{
		client:           client,
		deviceID:         deviceID,
		discoveryPrefix:  discoveryPrefix,
		version:          version,
		logger:           logger,
		publishedConfigs: make(map[string]bool),
	}
}

func (t *MQTTTransmitter) baseTopic() string { return mqtt.BaseTopic(t.deviceID) }

func (t *MQTTTransmitter) device(r Report) HADevice {
	d := HADevice{
		Identifiers:  []string{fmt.Sprintf("carinfo_%s", t.deviceID)},
		Name:         "Car",
		Model:        "Car",
		Manufacturer: "Unknown",
		SWVersion:    t.version,
	}
	if r.Snapshot.Info.Make != nil {
		d.Manufacturer = *r.Snapshot.Info.Make
	}
	if r.Snapshot.Info.Model != nil {
		d.Model = *r.Snapshot.Info.Model
		d.Name = d.Manufacturer + " " + d.Model
	}
	return d
}

// publishDiscoveryConfigs publishes each entity's config once per device
// identity. Make and model usually arrive after the first report, so a change
// republishes every config.
func (t *MQTTTransmitter) publishDiscoveryConfigs(r Report) {
	device := t.device(r)
	if identity := device.Manufacturer + "|" + device.Model; identity != t.publishedDevice {
		if t.publishedDevice != "" {
			t.logger.WithFields(logrus.Fields{
				"manufacturer": device.Manufacturer,
				"model":        device.Model,
			}).Info("Vehicle identity changed; republishing discovery configs")
		}
		t.publishedDevice = identity
		t.publishedConfigs = make(map[string]bool)
	}
	for _, e := range Entities {
		uniqueID := fmt.Sprintf("%s_%s", t.deviceID, e.Key)
		if t.publishedConfigs[uniqueID] {
			continue
		}

		cfg := HADiscoveryConfig{
			Name:              e.Name,
			UniqueID:          uniqueID,
			StateTopic:        t.baseTopic() + "/state",
			ValueTemplate:     fmt.Sprintf("{{ value_json.%s }}", e.Key),
			DeviceClass:       e.DeviceClass,
			UnitOfMeasurement: e.Unit,
			StateClass:        e.StateClass,
			Device:            device,
			AvailabilityTopic: t.baseTopic() + "/availability",
		}
		if e.Type == "binary_sensor" {
			cfg.PayloadOn, cfg.PayloadOff = "True", "False"
		}

		topic := fmt.Sprintf("%s/%s/carinfo_%s/%s/config", t.discoveryPrefix, e.Type, t.deviceID, e.Key)
		payload, err := json.Marshal(cfg)
		if err != nil {
			t.logger.WithError(err).WithField("entity", e.Key).Error("Failed to marshal discovery config")
			continue
		}
		if err := t.client.Publish(topic, payload, true); err != nil {
			t.logger.WithError(err).WithField("entity", e.Key).Error("Failed to publish discovery config")
			continue
		}
		t.publishedConfigs[uniqueID] = true
		t.logger.WithFields(logrus.Fields{
			"entity": e.Key,
			"topic":  topic,
		}).Debug("Published discovery config")
	}
}

// vehicleState summarises the report for the "state" entity.
func vehicleState(r Report) string {
	s := r.Snapshot
	switch {
	case s.Dynamics.SpeedMetersPerSecond != nil && *s.Dynamics.SpeedMetersPerSecond > 0:
		return "moving"
	case s.Charging.PortConnected != nil && *s.Charging.PortConnected:
		return "plugged_in"
	default:
		return "parked"
	}
}

// buildStatePayload flattens the report into the state document. Values the
// vehicle has not reported are omitted.
func buildStatePayload(r Report) ([]byte, error) {
	s := r.Snapshot
	state := map[string]interface{}{
		"profile": r.Profile.String(),
		"state":   vehicleState(r),
	}
	put := func(key string, v *float64, scale float64) {
		if v != nil {
			state[key] = *v * scale
		}
	}
	put("battery_percent", s.Powertrain.StateOfChargePercent, 1)
	put("fuel_percent", s.Powertrain.FuelLevelPercent, 1)
	put("range_km", s.Powertrain.RemainingRangeMeters, 0.001)
	put("odometer_km", s.Info.OdometerMeters, 0.001)
	put("speed_kmh", s.Dynamics.SpeedMetersPerSecond, 3.6)
	if s.Charging.PortConnected != nil {
		state["port_connected"] = *s.Charging.PortConnected
	}
	if s.Charging.PortOpen != nil {
		state["port_open"] = *s.Charging.PortOpen
	}
	return json.Marshal(state)
}

// Transmit sends a report to MQTT.
func (t *MQTTTransmitter) Transmit(r Report) error {
	if !t.client.IsConnected() {
		return fmt.Errorf("MQTT client not connected")
	}

	t.publishDiscoveryConfigs(r)

	payload, err := buildStatePayload(r)
	if err != nil {
		return fmt.Errorf("failed to build state payload: %w", err)
	}
	topic := t.baseTopic() + "/state"
	if err := t.client.Publish(topic, payload, true); err != nil {
		return fmt.Errorf("failed to publish state to %s: %w", topic, err)
	}
	if err := t.client.Publish(t.baseTopic()+"/availability", []byte("online"), true); err != nil {
		return fmt.Errorf("failed to publish availability: %w", err)
	}

	t.logger.WithFields(logrus.Fields{
		"topic":   topic,
		"payload": string(payload),
	}).Info("Published vehicle state")
	return nil
}

// IsConnected checks if the MQTT client is connected.
func (t *MQTTTransmitter) IsConnected() bool { return t.client.IsConnected() }
