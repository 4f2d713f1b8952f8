package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"syscall"
	"time"

	"github.com/jkaberg/carinfo/internal/app"
	"github.com/jkaberg/carinfo/internal/config"
	"github.com/jkaberg/carinfo/internal/diplus"
	"github.com/jkaberg/carinfo/internal/hardware"
	"github.com/jkaberg/carinfo/internal/host"
	"github.com/jkaberg/carinfo/internal/manager"
	"github.com/jkaberg/carinfo/internal/mqtt"
	"github.com/jkaberg/carinfo/internal/notify"
	"github.com/jkaberg/carinfo/internal/permission"
	"github.com/jkaberg/carinfo/internal/profiler"
	"github.com/jkaberg/carinfo/internal/screen"
	"github.com/jkaberg/carinfo/internal/transmission"
	"github.com/sirupsen/logrus"
)

// version is injected at build time via ldflags
var version = "dev"

func main() {
	cfg, probe := parseFlags()

	logger := setupLogger(cfg.Verbose)
	if err := cfg.Validate(); err != nil {
		logger.WithError(err).Fatal("Invalid configuration")
	}

	// Probe path ------------------------------------------------------------------
	if probe {
		runProbe(cfg, logger)
		return
	}

	setupCustomDNSResolver(logger)

	logger.WithFields(logrus.Fields{
		"version":   version,
		"device_id": cfg.DeviceID,
		"poll":      cfg.PollInterval,
		"mqtt_int":  cfg.MQTTInterval,
		"listen":    cfg.ListenAddr,
		"simulate":  cfg.Simulate,
	}).Info("Starting carinfo")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sig
		logger.Info("Shutdown signal received")
		cancel()
	}()

	// Vehicle source ----------------------------------------------------------------
	var car hardware.CarInfo
	var source app.Source
	if cfg.Simulate {
		fake := hardware.NewFake()
		car, source = fake, hardware.NewSimulator(fake, config.SimulateInterval)
		logger.Info("Using simulated vehicle")
	} else {
		provider := diplus.NewProvider(newDiplusClient(cfg, logger), staticInfo(cfg), cfg.PollInterval, logger)
		car, source = provider, provider
	}

	mgr := manager.New(car, logger)
	perms := permission.NewStore(cfg.Granted(), cfg.Grantable(), logger)
	hostInfo := screen.HostInfo{Platform: "Android", PackageName: cfg.HostPackage, HostVersion: cfg.HostVersion}
	mainScreen := screen.NewSession(mgr, perms, hostInfo, logger).OnCreateScreen()

	svc := app.Services{
		Source:      source,
		Manager:     mgr,
		Screen:      mainScreen,
		Permissions: perms,
	}

	if cfg.HasHost() {
		svc.Host = host.NewServer(mainScreen, mgr, hostInfo, logger)
	}

	// Transmitters ---------------------------------------------------------------
	if cfg.HasMQTT() {
		mqttClient, err := mqtt.NewClient(cfg.MQTTUrl, cfg.DeviceID, logger)
		if err != nil {
			logger.WithError(err).Fatal("Failed to create MQTT client")
		}
		defer mqttClient.Disconnect(250)
		svc.Transmitter = transmission.NewMQTTTransmitter(mqttClient, cfg.DeviceID, cfg.DiscoveryPrefix, version, logger)
		logger.Info("MQTT transmitter ready")
	} else {
		logger.Warn("No MQTT broker configured; state is only served locally")
	}

	if notify.Available() {
		svc.Notifier = notify.NewTermuxNotifier(logger)
	} else {
		svc.Notifier = notify.NewLogNotifier(logger)
	}

	// Run application ------------------------------------------------------------
	if err := app.Run(ctx, cfg, svc, logger); err != nil {
		logger.WithError(err).Error("carinfo stopped with error")
		return
	}
	logger.Info("carinfo stopped")
}

// -----------------------------------------------------------------------------
// Helpers & Flags
// -----------------------------------------------------------------------------

func parseFlags() (*config.Config, bool) {
	cfg := config.GetDefaultConfig()

	showVersion := flag.Bool("version", false, "Show version and exit")
	probe := flag.Bool("probe", false, "Fetch Di-Plus once, print raw readings and exit")

	flag.StringVar(&cfg.MQTTUrl, "mqtt-url", getEnv("CARINFO_MQTT_URL", cfg.MQTTUrl), "MQTT URL")
	flag.StringVar(&cfg.DiplusURL, "diplus-url", getEnv("CARINFO_DIPLUS_URL", cfg.DiplusURL), "Di-Plus host:port")
	flag.StringVar(&cfg.DeviceID, "device-id", getEnv("CARINFO_DEVICE_ID", cfg.DeviceID), "Device identifier")
	flag.BoolVar(&cfg.Verbose, "verbose", getEnv("CARINFO_VERBOSE", "false") == "true", "Verbose logging")
	flag.BoolVar(&cfg.Simulate, "simulate", getEnv("CARINFO_SIMULATE", "false") == "true", "Use a simulated vehicle instead of Di-Plus")
	flag.StringVar(&cfg.DiscoveryPrefix, "discovery-prefix", getEnv("CARINFO_DISCOVERY_PREFIX", cfg.DiscoveryPrefix), "HA discovery prefix")
	flag.StringVar(&cfg.ListenAddr, "listen", getEnv("CARINFO_LISTEN", cfg.ListenAddr), "Template host address (empty disables)")
	flag.StringVar(&cfg.HostPackage, "host-package", getEnv("CARINFO_HOST_PACKAGE", cfg.HostPackage), "Host package reported on the diagnostics tab")
	flag.StringVar(&cfg.HostVersion, "host-version", getEnv("CARINFO_HOST_VERSION", cfg.HostVersion), "Host version reported on the diagnostics tab")

	flag.StringVar(&cfg.VehicleMake, "vehicle-make", getEnv("CARINFO_VEHICLE_MAKE", cfg.VehicleMake), "Vehicle make")
	flag.StringVar(&cfg.VehicleModel, "vehicle-model", getEnv("CARINFO_VEHICLE_MODEL", cfg.VehicleModel), "Vehicle model")
	vehicleYear := flag.String("vehicle-year", getEnv("CARINFO_VEHICLE_YEAR", ""), "Vehicle model year")
	flag.StringVar(&cfg.FuelTypes, "fuel-types", getEnv("CARINFO_FUEL_TYPES", cfg.FuelTypes), "Fuel types, e.g. electric,unleaded")
	flag.StringVar(&cfg.ConnectorTypes, "connector-types", getEnv("CARINFO_CONNECTOR_TYPES", cfg.ConnectorTypes), "EV connector types, e.g. type2,ccs2")

	flag.StringVar(&cfg.GrantedPermissions, "granted-permissions", getEnv("CARINFO_GRANTED_PERMISSIONS", cfg.GrantedPermissions), "Permissions granted at startup")
	flag.StringVar(&cfg.GrantablePermissions, "grantable-permissions", getEnv("CARINFO_GRANTABLE_PERMISSIONS", cfg.GrantablePermissions), "Permissions a request may grant")

	pollIntervalStr := flag.String("poll-interval", getEnv("CARINFO_POLL_INTERVAL", ""), "Di-Plus poll interval (e.g. 2s)")
	mqttIntervalStr := flag.String("mqtt-interval", getEnv("CARINFO_MQTT_INTERVAL", ""), "MQTT interval (e.g. 60s)")

	flag.Parse()

	if *showVersion {
		fmt.Printf("carinfo %s\n", version)
		os.Exit(0)
	}

	if *vehicleYear != "" {
		if y, err := strconv.Atoi(*vehicleYear); err == nil {
			cfg.VehicleYear = y
		}
	}
	if d, ok := parseInterval(*pollIntervalStr); ok {
		cfg.PollInterval = d
	}
	if d, ok := parseInterval(*mqttIntervalStr); ok {
		cfg.MQTTInterval = d
	}

	return cfg, *probe
}

// parseInterval accepts a Go duration or a plain number of seconds.
func parseInterval(s string) (time.Duration, bool) {
	if s == "" {
		return 0, false
	}
	if d, err := time.ParseDuration(s); err == nil && d > 0 {
		return d, true
	}
	if v, err := strconv.Atoi(s); err == nil && v > 0 {
		return time.Duration(v) * time.Second, true
	}
	return 0, false
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func setupLogger(verbose bool) *logrus.Logger {
	l := logrus.New()
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, TimestampFormat: time.RFC3339})
	if verbose {
		l.SetLevel(logrus.DebugLevel)
	} else {
		l.SetLevel(logrus.InfoLevel)
	}
	return l
}

func setupCustomDNSResolver(logger *logrus.Logger) {
	net.DefaultResolver = &net.Resolver{
		PreferGo: true,
		Dial: func(ctx context.Context, network, address string) (net.Conn, error) {
			d := net.Dialer{Timeout: time.Second}
			return d.DialContext(ctx, network, "1.1.1.1:53")
		},
	}
	logger.Debug("Custom DNS resolver installed (1.1.1.1)")
}

func newDiplusClient(cfg *config.Config, logger *logrus.Logger) *diplus.Client {
	return diplus.NewClient(fmt.Sprintf("http://%s/api/getDiPars", cfg.DiplusURL), cfg.APITimeout, logger)
}

// staticInfo converts the validated vehicle facts for the provider.
func staticInfo(cfg *config.Config) diplus.StaticInfo {
	fuels, _ := profiler.ParseFuelTypes(cfg.FuelTypes)
	connectors, _ := profiler.ParseConnectorTypes(cfg.ConnectorTypes)
	return diplus.StaticInfo{
		Manufacturer: cfg.VehicleMake,
		Model:        cfg.VehicleModel,
		Year:         cfg.VehicleYear,
		FuelTypes:    fuels,
		Connectors:   connectors,
	}
}

func runProbe(cfg *config.Config, logger *logrus.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.APITimeout)
	defer cancel()

	readings, err := newDiplusClient(cfg, logger).Fetch(ctx)
	if err != nil {
		logger.WithError(err).Fatal("Probe failed")
	}
	keys := make([]string, 0, len(readings))
	for k := range readings {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Printf("%-20s %v\n", k, readings[k])
	}
}
