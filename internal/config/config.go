package config

import (
	"fmt"
	"os"
	"time"
)

// Config lists the tunable parameters for the contact agent.
type Config struct {
	DatabasePath string
	LogLevel     string
	ScanPeriod   time.Duration
	// MQTTBrokerAddress enables the contact-event uplink when non-empty.
	MQTTBrokerAddress string
	APIBaseURL        string
	DeviceID          string
	// RetentionDays bounds how long captured contact events are kept.
	RetentionDays int
}

const (
	defaultDatabasePath  = "data/contacts.db"
	defaultLogLevel      = "info"
	defaultScanPeriod    = 10 * time.Second
	defaultAPIBaseURL    = "https://sonar.example.org"
	defaultDeviceID      = "contact-agent"
	defaultRetentionDays = 28
)

// Load derives configuration values from environment variables, falling back to defaults.
func Load() (Config, error) {
	cfg := Config{
		DatabasePath:  defaultDatabasePath,
		LogLevel:      defaultLogLevel,
		ScanPeriod:    defaultScanPeriod,
		APIBaseURL:    defaultAPIBaseURL,
		DeviceID:      defaultDeviceID,
		RetentionDays: defaultRetentionDays,
	}

	if v := os.Getenv("COLOCATE_DATABASE_PATH"); v != "" {
		cfg.DatabasePath = v
	}

	if v := os.Getenv("COLOCATE_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}

	if v := os.Getenv("COLOCATE_SCAN_PERIOD"); v != "" {
		period, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid COLOCATE_SCAN_PERIOD: %w", err)
		}
		if period <= 0 {
			return Config{}, fmt.Errorf("COLOCATE_SCAN_PERIOD must be positive")
		}
		cfg.ScanPeriod = period
	}

	if v := os.Getenv("COLOCATE_MQTT_BROKER"); v != "" {
		cfg.MQTTBrokerAddress = v
	}

	if v := os.Getenv("COLOCATE_API_BASE_URL"); v != "" {
		cfg.APIBaseURL = v
	}

	if v := os.Getenv("COLOCATE_DEVICE_ID"); v != "" {
		cfg.DeviceID = v
	}

	return cfg, nil
}
