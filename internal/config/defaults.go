package config

import "time"

// Application-wide timing defaults.

const (
	// Polling / transmission intervals
	DiplusPollInterval   = 2 * time.Second  // Poll local Di-Plus API
	MQTTTransmitInterval = 60 * time.Second // Publish state to MQTT
	SchedulerTick        = 1 * time.Second  // MQTT scheduler resolution

	// Operation time-outs (to avoid blocking goroutines)
	DiplusTimeout = 5 * time.Second // Di-Plus API call

	// Simulation
	SimulateInterval = 1 * time.Second
)
