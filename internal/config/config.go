package config

import (
	"sync/atomic"
	"time"
)

var configValue atomic.Value

func GetConfig() *Config {
	cfg, _ := configValue.Load().(*Config)
	if cfg == nil {
		return NewDefaultConfig()
	}
	return cfg
}

func SetConfig(cfg *Config) {
	configValue.Store(cfg)
}

type Config struct {
	Version     string          `mapstructure:"version"`
	Environment string          `mapstructure:"environment" validate:"required"`
	Server      ServerConfig    `mapstructure:"server"`
	Lookup      LookupConfig    `mapstructure:"lookup"`
	Geocoding   GeocodingConfig `mapstructure:"geocoding"`
	Forecast    ForecastConfig  `mapstructure:"forecast"`
	Logging     LoggingConfig   `mapstructure:"logging"`
	Telemetry   TelemetryConfig `mapstructure:"telemetry"`
}

type ServerConfig struct {
	Port         int    `mapstructure:"port" validate:"min=1,max=65535"`
	Host         string `mapstructure:"host"`
	ReadTimeout  int    `mapstructure:"read_timeout" validate:"min=0"`
	WriteTimeout int    `mapstructure:"write_timeout" validate:"min=0"`
	IdleTimeout  int    `mapstructure:"idle_timeout" validate:"min=0"`
}

// LookupConfig holds settings shared by both stages of a search.
type LookupConfig struct {
	// Timeout is the per-request HTTP client timeout in seconds.
	Timeout   int    `mapstructure:"timeout" validate:"min=1"`
	Language  string `mapstructure:"language" validate:"oneof=en zh"`
	QueueSize int    `mapstructure:"queue_size" validate:"min=1"`
}

func (c LookupConfig) TimeoutDuration() time.Duration {
	return time.Duration(c.Timeout) * time.Second
}

type GeocodingConfig struct {
	BaseURL string `mapstructure:"base_url" validate:"required,url"`
	APIKey  string `mapstructure:"api_key"`
	// RateLimit is requests per second; zero disables limiting.
	RateLimit float64 `mapstructure:"rate_limit" validate:"min=0"`
	RateBurst int     `mapstructure:"rate_burst" validate:"min=0"`
}

type ForecastConfig struct {
	BaseURL string            `mapstructure:"base_url" validate:"required,url"`
	Params  map[string]string `mapstructure:"params"`
}

type LoggingConfig struct {
	Level      string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format     string `mapstructure:"format" validate:"oneof=json console"`
	OutputPath string `mapstructure:"output_path"`
}

type TelemetryConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	Endpoint    string `mapstructure:"endpoint"`
	ServiceName string `mapstructure:"service_name"`
}

func NewDefaultConfig() *Config {
	return &Config{
		Version:     "1.0.0",
		Environment: "development",
		Server: ServerConfig{
			Port:         8080,
			Host:         "0.0.0.0",
			ReadTimeout:  30,
			WriteTimeout: 30,
			IdleTimeout:  60,
		},
		Lookup: LookupConfig{
			Timeout:   10,
			Language:  "en",
			QueueSize: 8,
		},
		Geocoding: GeocodingConfig{
			BaseURL:   "http://api.openweathermap.org",
			APIKey:    "",
			RateLimit: 1,
			RateBurst: 5,
		},
		Forecast: ForecastConfig{
			BaseURL: "https://api.open-meteo.com",
			Params: map[string]string{
				"forecast_days": "7",
			},
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "json",
			OutputPath: "",
		},
		Telemetry: TelemetryConfig{
			Enabled:     false,
			Endpoint:    "tempo:4317",
			ServiceName: "weather-lookup",
		},
	}
}
