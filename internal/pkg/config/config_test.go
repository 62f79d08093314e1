package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "INFO", cfg.LogLevel)
	assert.Equal(t, "0.0.0.0:8000", cfg.HTTPAddr)
	assert.Equal(t, 30*time.Second, cfg.RelayCfg.PingInterval)
	assert.Equal(t, "loxone-integration", cfg.MqttCfg.ClientID)
	assert.Equal(t, "0 3 * * *", cfg.DatabaseCfg.CleanupSchedule)
	assert.Equal(t, 8*24*time.Hour, cfg.DatabaseCfg.Retention())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("STRUCTURE_FILE", "/data/structure.json")
	t.Setenv("RELAY_URL", "ws://relay:8080/events")
	t.Setenv("RELAY_RECONNECT_DELAY", "1s")
	t.Setenv("MQTT_HOST", "tcp://broker:1883")
	t.Setenv("MQTT_USER", "ha")
	t.Setenv("MQTT_DISCOVERY_PREFIX", "ha")
	t.Setenv("DATABASE_URL", "postgres://lights@db/lights")
	t.Setenv("RETENTION_DAYS", "3")

	cfg, err := Load()
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "DEBUG", cfg.LogLevel)
	assert.Equal(t, "ws://relay:8080/events", cfg.RelayCfg.URL)
	assert.Equal(t, time.Second, cfg.RelayCfg.ReconnectDelay)
	assert.Equal(t, "tcp://broker:1883", cfg.MqttCfg.Host)
	assert.Equal(t, "ha", cfg.MqttCfg.Username)
	assert.Equal(t, "ha", cfg.MqttCfg.DiscoveryPrefix)
	assert.Equal(t, "postgres://lights@db/lights", cfg.DatabaseCfg.URL)
	assert.Equal(t, 3*24*time.Hour, cfg.DatabaseCfg.Retention())
}

func TestValidate(t *testing.T) {
	err := (&Config{}).Validate()
	assert.ErrorIs(t, err, ErrNoStructureFile)
	assert.ErrorIs(t, err, ErrNoRelayURL)

	err = (&Config{StructureFile: "s.json", RelayCfg: RelayConfig{URL: "ws://r"}}).Validate()
	assert.NoError(t, err)
}

func TestLoadInvalid(t *testing.T) {
	t.Setenv("RETENTION_DAYS", "soon")
	_, err := Load()
	assert.Error(t, err)
}
