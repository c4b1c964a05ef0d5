package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// validJWTSecret meets the 32-character minimum requirement.
const validJWTSecret = "test-secret-key-at-least-32-chars!"

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	configPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0600))
	return configPath
}

func TestLoad_ValidConfig(t *testing.T) {
	configPath := writeConfig(t, `
database:
  path: "/tmp/test.db"
  wal_mode: true
  busy_timeout: 5
api:
  host: "0.0.0.0"
  port: 8080
security:
  jwt:
    secret: "test-secret-key-at-least-32-chars!"
    token_ttl: 60
  password:
    bcrypt_cost: 12
`)

	cfg, err := Load(configPath)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/test.db", cfg.Database.Path)
	assert.Equal(t, 8080, cfg.API.Port)
	assert.Equal(t, 12, cfg.Security.Password.BcryptCost)
	assert.Equal(t, time.Hour, cfg.TokenTTL())
}

func TestLoad_Defaults(t *testing.T) {
	configPath := writeConfig(t, `
security:
  jwt:
    secret: "test-secret-key-at-least-32-chars!"
`)

	cfg, err := Load(configPath)
	require.NoError(t, err)

	assert.Equal(t, 24*time.Hour, cfg.TokenTTL())
	assert.Equal(t, 10, cfg.Security.Password.BcryptCost)
	assert.False(t, cfg.MQTT.Enabled, "MQTT should be disabled by default")
	assert.False(t, cfg.InfluxDB.Enabled, "InfluxDB should be disabled by default")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	assert.Error(t, err)
}

func TestLoad_InvalidYAML(t *testing.T) {
	configPath := writeConfig(t, "invalid: [yaml: content")

	_, err := Load(configPath)
	assert.Error(t, err)
}

func TestLoad_EnvOverrides(t *testing.T) {
	configPath := writeConfig(t, `
database:
  path: "/tmp/file.db"
`)

	t.Setenv("GATEHOUSE_JWT_SECRET", validJWTSecret)
	t.Setenv("GATEHOUSE_DATABASE_PATH", "/tmp/env.db")
	t.Setenv("GATEHOUSE_API_PORT", "9090")

	cfg, err := Load(configPath)
	require.NoError(t, err)

	assert.Equal(t, validJWTSecret, cfg.Security.JWT.Secret)
	assert.Equal(t, "/tmp/env.db", cfg.Database.Path)
	assert.Equal(t, 9090, cfg.API.Port)
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config {
		cfg := defaultConfig()
		cfg.Security.JWT.Secret = validJWTSecret
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:    "valid config",
			mutate:  func(*Config) {},
			wantErr: false,
		},
		{
			name:    "missing database path",
			mutate:  func(c *Config) { c.Database.Path = "" },
			wantErr: true,
		},
		{
			name:    "port out of range",
			mutate:  func(c *Config) { c.API.Port = 70000 },
			wantErr: true,
		},
		{
			name:    "missing JWT secret",
			mutate:  func(c *Config) { c.Security.JWT.Secret = "" },
			wantErr: true,
		},
		{
			name:    "short JWT secret",
			mutate:  func(c *Config) { c.Security.JWT.Secret = "too-short" },
			wantErr: true,
		},
		{
			name:    "bcrypt cost below 10",
			mutate:  func(c *Config) { c.Security.Password.BcryptCost = 4 },
			wantErr: true,
		},
		{
			name:    "zero token ttl",
			mutate:  func(c *Config) { c.Security.JWT.TokenTTL = 0 },
			wantErr: true,
		},
		{
			name:    "bootstrap admin without password",
			mutate:  func(c *Config) { c.Security.BootstrapAdmin.Username = "root" },
			wantErr: true,
		},
		{
			name: "enabled influxdb without url",
			mutate: func(c *Config) {
				c.InfluxDB.Enabled = true
				c.InfluxDB.URL = ""
			},
			wantErr: true,
		},
		{
			name: "disabled mqtt ignores qos",
			mutate: func(c *Config) {
				c.MQTT.Enabled = false
				c.MQTT.QoS = 7
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoad_ShippedExample(t *testing.T) {
	t.Setenv("GATEHOUSE_JWT_SECRET", "example-secret-that-is-at-least-32-chars")

	cfg, err := Load("../../../configs/config.yaml")
	require.NoError(t, err)

	assert.False(t, cfg.MQTT.Enabled || cfg.InfluxDB.Enabled, "optional sinks should be disabled in the shipped example")
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL())
}
