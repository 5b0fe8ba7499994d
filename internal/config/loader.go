package config

import (
	stderrors "errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/actual-software/weather-mcp/internal/errors"
)

const (
	defaultServerPort      = 8000
	defaultReadTimeout     = 15 * time.Second
	defaultWriteTimeout    = 45 * time.Second
	defaultIdleTimeout     = 120 * time.Second
	defaultShutdownTimeout = 30 * time.Second
	defaultMaxBodySize     = 1 << 20
	defaultProviderTimeout = 10 * time.Second
	defaultToolTimeout     = 30 * time.Second

	// DefaultBaseURL is the One Call 3.0 endpoint.
	DefaultBaseURL = "https://api.openweathermap.org/data/3.0/onecall"
	// DefaultGeoURL is the direct geocoding endpoint.
	DefaultGeoURL = "http://api.openweathermap.org/geo/1.0/direct"

	envPrefix = "WEATHER_MCP"
)

// Exporter types accepted by the tracing section.
const (
	ExporterOTLP   = "otlp"
	ExporterStdout = "stdout"
	ExporterZipkin = "zipkin"
)

// envAliases binds the variable names used by existing deployments next to
// the prefixed ones.
var envAliases = map[string][]string{
	"weather.api_key":  {"OPENWEATHER_API_KEY"},
	"weather.base_url": {"OPENWEATHER_BASE_URL"},
	"weather.geo_url":  {"OPENWEATHER_GEO_URL"},
	"server.host":      {"MCP_SERVER_HOST"},
	"server.port":      {"MCP_SERVER_PORT"},
	"client.host":      {"MCP_SERVER_HOST"},
	"client.port":      {"MCP_SERVER_PORT"},
}

// LoadOptions controls where configuration is read from.
type LoadOptions struct {
	// ConfigPath is an optional YAML/JSON/TOML file.
	ConfigPath string
	// DotEnvPaths are loaded into the process environment before anything else.
	// Missing files are ignored.
	DotEnvPaths []string
}

// Load loads configuration from defaults, .env files, the optional config file
// and the environment, in increasing order of precedence.
func Load(opts LoadOptions) (*Config, error) {
	if err := loadDotEnv(opts.DotEnvPaths); err != nil {
		return nil, err
	}

	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := bindEnvAliases(v); err != nil {
		return nil, fmt.Errorf("failed to bind environment: %w", err)
	}

	if opts.ConfigPath != "" {
		v.SetConfigFile(opts.ConfigPath)

		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if cfg.Tracing.Environment == "" {
		cfg.Tracing.Environment = cfg.Environment
	}

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

func loadDotEnv(paths []string) error {
	for _, path := range paths {
		// godotenv never overrides variables that are already set.
		if err := godotenv.Load(path); err != nil {
			if stderrors.Is(err, fs.ErrNotExist) {
				continue
			}

			return fmt.Errorf("failed to load %s: %w", path, err)
		}
	}

	return nil
}

func bindEnvAliases(v *viper.Viper) error {
	for key, aliases := range envAliases {
		prefixed := envPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		names := append([]string{key, prefixed}, aliases...)

		if err := v.BindEnv(names...); err != nil {
			return err
		}
	}

	return nil
}

func setServerDefaults(v *viper.Viper) {
	v.SetDefault("environment", "local")
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", defaultServerPort)
	v.SetDefault("server.read_timeout", defaultReadTimeout)
	v.SetDefault("server.write_timeout", defaultWriteTimeout)
	v.SetDefault("server.idle_timeout", defaultIdleTimeout)
	v.SetDefault("server.shutdown_timeout", defaultShutdownTimeout)
	v.SetDefault("server.max_body_size", defaultMaxBodySize)
	v.SetDefault("server.allowed_origin", "*")
	v.SetDefault("client.host", "localhost")
	v.SetDefault("client.port", defaultServerPort)
	v.SetDefault("client.timeout", defaultToolTimeout)
}

func setServiceDefaults(v *viper.Viper) {
	v.SetDefault("weather.api_key", "")
	v.SetDefault("weather.base_url", DefaultBaseURL)
	v.SetDefault("weather.geo_url", DefaultGeoURL)
	v.SetDefault("weather.units", "metric")
	v.SetDefault("weather.lang", "en")
	v.SetDefault("weather.timeout", defaultProviderTimeout)
	v.SetDefault("mcp.server_name", "weather-mcp-server")
	v.SetDefault("mcp.tool_timeout", defaultToolTimeout)
	v.SetDefault("mcp.backend_url", "")
	v.SetDefault("auth.enabled", false)
	v.SetDefault("auth.jwt.issuer", "weather-mcp")
	v.SetDefault("auth.jwt.audience", "weather-mcp")
	v.SetDefault("auth.jwt.secret_key_env", "JWT_SECRET_KEY")
	v.SetDefault("auth.jwt.public_key_path", "")
}

func setOperationalDefaults(v *viper.Viper) {
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.service_name", "weather-mcp")
	v.SetDefault("tracing.service_version", "dev")
	v.SetDefault("tracing.environment", "")
	v.SetDefault("tracing.sampler_type", "always_on")
	v.SetDefault("tracing.sampler_param", 1.0)
	v.SetDefault("tracing.exporter_type", ExporterOTLP)
	v.SetDefault("tracing.otlp_endpoint", "localhost:4317")
	v.SetDefault("tracing.otlp_insecure", true)
	v.SetDefault("tracing.zipkin_endpoint", "http://localhost:9411/api/v2/spans")
}

func setDefaults(v *viper.Viper) {
	setServerDefaults(v)
	setServiceDefaults(v)
	setOperationalDefaults(v)
}

// Validate checks values that every command depends on. The provider API key
// is checked separately by RequireAPIKey because the CLI client never needs it.
func Validate(cfg *Config) error {
	if err := validatePort("server.port", cfg.Server.Port); err != nil {
		return err
	}

	if err := validatePort("client.port", cfg.Client.Port); err != nil {
		return err
	}

	if err := validateUnits(cfg.Weather.Units); err != nil {
		return err
	}

	timeouts := map[string]time.Duration{
		"weather.timeout":  cfg.Weather.Timeout,
		"mcp.tool_timeout": cfg.MCP.ToolTimeout,
		"client.timeout":   cfg.Client.Timeout,
	}
	for field, timeout := range timeouts {
		if timeout <= 0 {
			return errors.NewConfigError(field, "must be positive")
		}
	}

	if cfg.Server.MaxBodySize <= 0 {
		return errors.NewConfigError("server.max_body_size", "must be positive")
	}

	return validateTracing(&cfg.Tracing)
}

// RequireAPIKey fails when no OpenWeatherMap key is configured.
func (c *Config) RequireAPIKey() error {
	if strings.TrimSpace(c.Weather.APIKey) == "" {
		return errors.NewConfigError("weather.api_key", "OPENWEATHER_API_KEY environment variable is required")
	}

	return nil
}

func validatePort(field string, port int) error {
	if port <= 0 || port > 65535 {
		return errors.NewConfigError(field, fmt.Sprintf("invalid port %d", port))
	}

	return nil
}

func validateUnits(units string) error {
	switch units {
	case "metric", "imperial", "standard":
		return nil
	default:
		return errors.NewConfigError("weather.units", fmt.Sprintf("unsupported units %q", units))
	}
}

func validateTracing(cfg *TracingConfig) error {
	if !cfg.Enabled {
		return nil
	}

	switch cfg.ExporterType {
	case ExporterOTLP, ExporterStdout, ExporterZipkin:
	default:
		return errors.NewConfigError("tracing.exporter_type", fmt.Sprintf("unsupported exporter %q", cfg.ExporterType))
	}

	if cfg.SamplerParam < 0 || cfg.SamplerParam > 1 {
		return errors.NewConfigError("tracing.sampler_param", "must be between 0 and 1")
	}

	return nil
}
