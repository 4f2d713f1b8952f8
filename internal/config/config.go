package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/jkaberg/carinfo/internal/permission"
	"github.com/jkaberg/carinfo/internal/profiler"
)

// Config holds all configuration options for carinfo
type Config struct {
	// MQTT Configuration
	MQTTUrl         string        `json:"mqtt_url"`         // MQTT URL (ws, wss, mqtt or mqtts)
	DiscoveryPrefix string        `json:"discovery_prefix"` // Home Assistant discovery prefix
	MQTTInterval    time.Duration `json:"mqtt_interval"`    // Minimum gap between state publishes

	// Device Configuration
	DeviceID string `json:"device_id"`

	// Application Configuration
	Verbose  bool `json:"verbose"`
	Simulate bool `json:"simulate"` // Drive the dashboard from a simulated car

	// Di-Plus Configuration
	DiplusURL    string        `json:"diplus_url"` // Di-Plus host:port
	PollInterval time.Duration `json:"poll_interval"`
	APITimeout   time.Duration `json:"api_timeout"`

	// Template host
	ListenAddr  string `json:"listen_addr"`
	HostPackage string `json:"host_package"`
	HostVersion string `json:"host_version"`

	// Static vehicle facts Di-Plus does not report. Empty means unimplemented.
	VehicleMake    string `json:"vehicle_make"`
	VehicleModel   string `json:"vehicle_model"`
	VehicleYear    int    `json:"vehicle_year"`
	FuelTypes      string `json:"fuel_types"`      // e.g. "electric,unleaded"
	ConnectorTypes string `json:"connector_types"` // e.g. "type2,ccs2"

	// Permissions
	GrantedPermissions   string `json:"granted_permissions"`   // granted at startup
	GrantablePermissions string `json:"grantable_permissions"` // granted on request
}

// GetDefaultConfig returns a configuration with sensible defaults
func GetDefaultConfig() *Config {
	return &Config{
		DiscoveryPrefix:      "homeassistant",
		MQTTInterval:         MQTTTransmitInterval,
		DeviceID:             "carinfo",
		DiplusURL:            "localhost:8988",
		PollInterval:         DiplusPollInterval,
		APITimeout:           DiplusTimeout,
		ListenAddr:           "127.0.0.1:8990",
		HostPackage:          "com.termux",
		GrantablePermissions: "CAR_ENERGY,CAR_SPEED,CAR_MILEAGE,CAR_ENERGY_PORTS",
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.DeviceID == "" {
		return fmt.Errorf("device ID is required")
	}

	if c.MQTTUrl != "" {
		if !strings.HasPrefix(c.MQTTUrl, "ws://") &&
			!strings.HasPrefix(c.MQTTUrl, "wss://") &&
			!strings.HasPrefix(c.MQTTUrl, "mqtt://") &&
			!strings.HasPrefix(c.MQTTUrl, "mqtts://") {
			return fmt.Errorf("MQTT URL must use supported protocol (ws://, wss://, mqtt://, or mqtts://)")
		}
	}

	if _, err := profiler.ParseFuelTypes(c.FuelTypes); err != nil {
		return fmt.Errorf("invalid fuel types: %w", err)
	}
	if _, err := profiler.ParseConnectorTypes(c.ConnectorTypes); err != nil {
		return fmt.Errorf("invalid connector types: %w", err)
	}
	if c.VehicleYear < 0 {
		return fmt.Errorf("vehicle year must not be negative")
	}

	// Set defaults for invalid values
	if c.PollInterval <= 0 {
		c.PollInterval = DiplusPollInterval
	}
	if c.APITimeout <= 0 {
		c.APITimeout = DiplusTimeout
	}
	if c.MQTTInterval <= 0 {
		c.MQTTInterval = MQTTTransmitInterval
	}

	return nil
}

// HasMQTT returns true if MQTT is configured
func (c *Config) HasMQTT() bool {
	return c.MQTTUrl != ""
}

// HasHost returns true if the template host should listen
func (c *Config) HasHost() bool {
	return c.ListenAddr != ""
}

// Granted returns the permissions granted at startup.
func (c *Config) Granted() []permission.Permission {
	return permission.ParseList(c.GrantedPermissions)
}

// Grantable returns the permissions a request may grant.
func (c *Config) Grantable() []permission.Permission {
	return permission.ParseList(c.GrantablePermissions)
}
