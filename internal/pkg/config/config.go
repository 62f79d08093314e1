// Package config holds the process configuration, read from the environment.
package config

import (
	"errors"
	"time"

	"github.com/caarlos0/env/v11"
)

var (
	ErrNoStructureFile = errors.New("a structure file is required")
	ErrNoRelayURL      = errors.New("a relay url is required")
)

type Config struct {
	LogLevel      string `env:"LOG_LEVEL" envDefault:"INFO"`
	StructureFile string `env:"STRUCTURE_FILE"`
	HTTPAddr      string `env:"HTTP_ADDR" envDefault:"0.0.0.0:8000"`

	RelayCfg    RelayConfig    `envPrefix:"RELAY_"`
	MqttCfg     MqttConfig     `envPrefix:"MQTT_"`
	DatabaseCfg DatabaseConfig
}

type RelayConfig struct {
	URL                string        `env:"URL"`
	InsecureSkipVerify bool          `env:"INSECURE_SKIP_VERIFY"`
	PingInterval       time.Duration `env:"PING_INTERVAL" envDefault:"30s"`
	ReconnectDelay     time.Duration `env:"RECONNECT_DELAY" envDefault:"5s"`
}

// MqttConfig is optional; Home Assistant publishing is off without a host.
type MqttConfig struct {
	Host            string `env:"HOST"`
	Username        string `env:"USER"`
	Password        string `env:"PASS"`
	ClientID        string `env:"CLIENT_ID" envDefault:"loxone-integration"`
	DiscoveryPrefix string `env:"DISCOVERY_PREFIX" envDefault:"homeassistant"`
}

// DatabaseConfig is optional; state history is off without a url.
type DatabaseConfig struct {
	URL              string `env:"DATABASE_URL"`
	MigrationsFolder string `env:"MIGRATIONS_FOLDER" envDefault:"migrations"`
	CleanupSchedule  string `env:"CLEANUP_SCHEDULE" envDefault:"0 3 * * *"`
	RetentionDays    int    `env:"RETENTION_DAYS" envDefault:"8"`
}

func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	if c.StructureFile == "" {
		errs = append(errs, ErrNoStructureFile)
	}
	if c.RelayCfg.URL == "" {
		errs = append(errs, ErrNoRelayURL)
	}
	return errors.Join(errs...)
}

func (c *DatabaseConfig) Retention() time.Duration {
	return time.Duration(c.RetentionDays) * 24 * time.Hour
}
