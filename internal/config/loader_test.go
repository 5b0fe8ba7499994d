package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()

	for _, name := range []string{
		"OPENWEATHER_API_KEY", "OPENWEATHER_BASE_URL", "OPENWEATHER_GEO_URL",
		"MCP_SERVER_HOST", "MCP_SERVER_PORT",
		"WEATHER_MCP_WEATHER_API_KEY", "WEATHER_MCP_SERVER_PORT", "WEATHER_MCP_LOGGING_LEVEL",
	} {
		t.Setenv(name, "")
		require.NoError(t, os.Unsetenv(name))
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(LoadOptions{})
	require.NoError(t, err)

	assert.Equal(t, "local", cfg.Environment)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 8000, cfg.Server.Port)
	assert.Equal(t, "localhost", cfg.Client.Host)
	assert.Equal(t, 8000, cfg.Client.Port)
	assert.Equal(t, DefaultBaseURL, cfg.Weather.BaseURL)
	assert.Equal(t, DefaultGeoURL, cfg.Weather.GeoURL)
	assert.Equal(t, "metric", cfg.Weather.Units)
	assert.Equal(t, "en", cfg.Weather.Lang)
	assert.Equal(t, 10*time.Second, cfg.Weather.Timeout)
	assert.Equal(t, 30*time.Second, cfg.MCP.ToolTimeout)
	assert.Equal(t, "weather-mcp-server", cfg.MCP.ServerName)
	assert.Equal(t, "JWT_SECRET_KEY", cfg.Auth.JWT.SecretKeyEnv)
	assert.Equal(t, "local", cfg.Tracing.Environment)
	assert.False(t, cfg.Auth.Enabled)

	require.Error(t, cfg.RequireAPIKey())
}

func TestLoadEnvironmentAliases(t *testing.T) {
	clearEnv(t)
	t.Setenv("OPENWEATHER_API_KEY", "abc123")
	t.Setenv("OPENWEATHER_BASE_URL", "http://127.0.0.1:9999/onecall")
	t.Setenv("MCP_SERVER_HOST", "127.0.0.1")
	t.Setenv("MCP_SERVER_PORT", "9001")
	t.Setenv("WEATHER_MCP_LOGGING_LEVEL", "debug")

	cfg, err := Load(LoadOptions{})
	require.NoError(t, err)

	assert.Equal(t, "abc123", cfg.Weather.APIKey)
	assert.Equal(t, "http://127.0.0.1:9999/onecall", cfg.Weather.BaseURL)
	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, 9001, cfg.Server.Port)
	assert.Equal(t, 9001, cfg.Client.Port)
	assert.Equal(t, "debug", cfg.Logging.Level)
	require.NoError(t, cfg.RequireAPIKey())
}

func TestPrefixedVariableWinsOverAlias(t *testing.T) {
	clearEnv(t)
	t.Setenv("OPENWEATHER_API_KEY", "from-alias")
	t.Setenv("WEATHER_MCP_WEATHER_API_KEY", "from-prefix")

	cfg, err := Load(LoadOptions{})
	require.NoError(t, err)
	assert.Equal(t, "from-prefix", cfg.Weather.APIKey)
}

func TestLoadDotEnvAndConfigFile(t *testing.T) {
	clearEnv(t)

	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("OPENWEATHER_API_KEY=dotenv-key\n"), 0o600))
	t.Cleanup(func() { _ = os.Unsetenv("OPENWEATHER_API_KEY") })

	configFile := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(configFile, []byte(`
weather:
  units: imperial
  timeout: 5s
mcp:
  tool_timeout: 12s
tracing:
  enabled: true
  exporter_type: zipkin
`), 0o600))

	cfg, err := Load(LoadOptions{
		ConfigPath:  configFile,
		DotEnvPaths: []string{filepath.Join(dir, "missing.env"), envFile},
	})
	require.NoError(t, err)

	assert.Equal(t, "dotenv-key", cfg.Weather.APIKey)
	assert.Equal(t, "imperial", cfg.Weather.Units)
	assert.Equal(t, 5*time.Second, cfg.Weather.Timeout)
	assert.Equal(t, 12*time.Second, cfg.MCP.ToolTimeout)
	assert.Equal(t, ExporterZipkin, cfg.Tracing.ExporterType)
}

func TestLoadMissingConfigFile(t *testing.T) {
	clearEnv(t)

	_, err := Load(LoadOptions{ConfigPath: filepath.Join(t.TempDir(), "nope.yaml")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config file")
}

func TestValidate(t *testing.T) {
	clearEnv(t)

	base, err := Load(LoadOptions{})
	require.NoError(t, err)

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "bad port", mutate: func(c *Config) { c.Server.Port = 70000 }, wantErr: "server.port"},
		{name: "bad client port", mutate: func(c *Config) { c.Client.Port = 0 }, wantErr: "client.port"},
		{name: "bad units", mutate: func(c *Config) { c.Weather.Units = "kelvin" }, wantErr: "weather.units"},
		{name: "zero tool timeout", mutate: func(c *Config) { c.MCP.ToolTimeout = 0 }, wantErr: "mcp.tool_timeout"},
		{name: "zero body size", mutate: func(c *Config) { c.Server.MaxBodySize = 0 }, wantErr: "server.max_body_size"},
		{
			name: "bad exporter",
			mutate: func(c *Config) {
				c.Tracing.Enabled = true
				c.Tracing.ExporterType = "jaeger"
			},
			wantErr: "tracing.exporter_type",
		},
		{
			name: "bad sampler param",
			mutate: func(c *Config) {
				c.Tracing.Enabled = true
				c.Tracing.SamplerParam = 2
			},
			wantErr: "tracing.sampler_param",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := *base
			tt.mutate(&cfg)

			err := Validate(&cfg)
			if tt.wantErr == "" {
				require.NoError(t, err)

				return
			}

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestRedacted(t *testing.T) {
	cfg := Config{Weather: WeatherConfig{APIKey: "secret"}}

	assert.Equal(t, redacted, cfg.Redacted().Weather.APIKey)
	assert.Equal(t, "secret", cfg.Weather.APIKey)
	assert.Empty(t, Config{}.Redacted().Weather.APIKey)
}
