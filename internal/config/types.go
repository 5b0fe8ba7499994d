// Package config defines configuration structures for the weather MCP server.
package config

import (
	"time"
)

// Config represents the complete configuration for the weather server and its CLI.
type Config struct {
	Environment string        `mapstructure:"environment" yaml:"environment"`
	Server      ServerConfig  `mapstructure:"server"      yaml:"server"`
	Client      ClientConfig  `mapstructure:"client"      yaml:"client"`
	Weather     WeatherConfig `mapstructure:"weather"     yaml:"weather"`
	MCP         MCPConfig     `mapstructure:"mcp"         yaml:"mcp"`
	Auth        AuthConfig    `mapstructure:"auth"        yaml:"auth"`
	Metrics     MetricsConfig `mapstructure:"metrics"     yaml:"metrics"`
	Logging     LoggingConfig `mapstructure:"logging"     yaml:"logging"`
	Tracing     TracingConfig `mapstructure:"tracing"     yaml:"tracing"`
}

// ServerConfig represents the HTTP server configuration.
type ServerConfig struct {
	Host            string        `mapstructure:"host"             yaml:"host"`
	Port            int           `mapstructure:"port"             yaml:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"     yaml:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"    yaml:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"     yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
	MaxBodySize     int64         `mapstructure:"max_body_size"    yaml:"max_body_size"`
	AllowedOrigin   string        `mapstructure:"allowed_origin"   yaml:"allowed_origin"`
}

// ClientConfig is where the CLI client looks for a running server.
type ClientConfig struct {
	Host    string        `mapstructure:"host"    yaml:"host"`
	Port    int           `mapstructure:"port"    yaml:"port"`
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

// WeatherConfig configures the OpenWeatherMap provider.
type WeatherConfig struct {
	APIKey  string        `mapstructure:"api_key"  yaml:"api_key"`
	BaseURL string        `mapstructure:"base_url" yaml:"base_url"`
	GeoURL  string        `mapstructure:"geo_url"  yaml:"geo_url"`
	Units   string        `mapstructure:"units"    yaml:"units"`
	Lang    string        `mapstructure:"lang"     yaml:"lang"`
	Timeout time.Duration `mapstructure:"timeout"  yaml:"timeout"`
}

// MCPConfig configures the JSON-RPC dispatcher.
type MCPConfig struct {
	ServerName  string        `mapstructure:"server_name"  yaml:"server_name"`
	ToolTimeout time.Duration `mapstructure:"tool_timeout" yaml:"tool_timeout"`
	BackendURL  string        `mapstructure:"backend_url"  yaml:"backend_url"`
}

// AuthConfig represents the optional bearer authentication on the MCP endpoints.
type AuthConfig struct {
	Enabled bool      `mapstructure:"enabled" yaml:"enabled"`
	JWT     JWTConfig `mapstructure:"jwt"     yaml:"jwt"`
}

// JWTConfig represents the JWT configuration.
type JWTConfig struct {
	Issuer        string `mapstructure:"issuer"          yaml:"issuer"`
	Audience      string `mapstructure:"audience"        yaml:"audience"`
	SecretKeyEnv  string `mapstructure:"secret_key_env"  yaml:"secret_key_env"`
	PublicKeyPath string `mapstructure:"public_key_path" yaml:"public_key_path"`
}

// MetricsConfig represents the metrics configuration.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Path    string `mapstructure:"path"    yaml:"path"`
}

// LoggingConfig represents the logging configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// TracingConfig represents the distributed tracing configuration.
type TracingConfig struct {
	Enabled        bool    `mapstructure:"enabled"         yaml:"enabled"`
	ServiceName    string  `mapstructure:"service_name"    yaml:"service_name"`
	ServiceVersion string  `mapstructure:"service_version" yaml:"service_version"`
	Environment    string  `mapstructure:"environment"     yaml:"environment"`
	SamplerType    string  `mapstructure:"sampler_type"    yaml:"sampler_type"`
	SamplerParam   float64 `mapstructure:"sampler_param"   yaml:"sampler_param"`
	ExporterType   string  `mapstructure:"exporter_type"   yaml:"exporter_type"`
	OTLPEndpoint   string  `mapstructure:"otlp_endpoint"   yaml:"otlp_endpoint"`
	OTLPInsecure   bool    `mapstructure:"otlp_insecure"   yaml:"otlp_insecure"`
	ZipkinEndpoint string  `mapstructure:"zipkin_endpoint" yaml:"zipkin_endpoint"`
}

const redacted = "<redacted>"

// Redacted returns a copy safe for printing.
func (c Config) Redacted() Config {
	if c.Weather.APIKey != "" {
		c.Weather.APIKey = redacted
	}

	return c
}
