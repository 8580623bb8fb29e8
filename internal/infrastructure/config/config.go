package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/Samarthuday/Automated-Compliance-Risk-Scoring/internal/service/monitoring"
)

type Config struct {
	Version     string `koanf:"version"`
	Environment string `koanf:"environment"`
	LogLevel    string `koanf:"log_level"`

	Server     ServerConfig      `koanf:"server"`
	Model      ModelConfig       `koanf:"model"`
	Monitoring monitoring.Config `koanf:"monitoring"`
	Telemetry  TelemetryConfig   `koanf:"telemetry"`
	Security   SecurityConfig    `koanf:"security"`
}

type ServerConfig struct {
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	RequestTimeout  time.Duration `koanf:"request_timeout"`
}

// ModelConfig locates the model artifact and bounds each scoring call.
type ModelConfig struct {
	MetadataPath string        `koanf:"metadata_path"`
	Threshold    float64       `koanf:"threshold"`
	ScoreTimeout time.Duration `koanf:"score_timeout"`
}

type TelemetryConfig struct {
	Enabled      bool    `koanf:"enabled"`
	OTLPEndpoint string  `koanf:"otlp_endpoint"`
	SampleRate   float64 `koanf:"sample_rate"`
}

type SecurityConfig struct {
	CORS      CORSConfig      `koanf:"cors"`
	RateLimit RateLimitConfig `koanf:"rate_limit"`
}

type CORSConfig struct {
	AllowedOrigins []string `koanf:"allowed_origins"`
}

type RateLimitConfig struct {
	RequestsPerSecond int `koanf:"requests_per_second"`
	BurstSize         int `koanf:"burst_size"`
}

func Load() (*Config, error) {
	k := koanf.New(".")

	// Load defaults
	defaults := &Config{
		Version:     "dev",
		Environment: "development",
		LogLevel:    "info",
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 30 * time.Second,
			RequestTimeout:  15 * time.Second,
		},
		Model: ModelConfig{
			MetadataPath: "configs/model_metadata.json",
			Threshold:    0.5,
			ScoreTimeout: 5 * time.Second,
		},
		Monitoring: monitoring.DefaultConfig(),
		Telemetry: TelemetryConfig{
			Enabled:      false,
			OTLPEndpoint: "localhost:4317",
			SampleRate:   0.1,
		},
		Security: SecurityConfig{
			CORS: CORSConfig{
				AllowedOrigins: []string{"*"},
			},
			RateLimit: RateLimitConfig{
				RequestsPerSecond: 100,
				BurstSize:         200,
			},
		},
	}

	if err := k.Load(structs.Provider(defaults, "koanf"), nil); err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	if err := k.Load(file.Provider("configs/config.yaml"), yaml.Parser()); err != nil {
		// Config file is optional; defaults and env vars still apply
	}

	// Override with environment variables
	if err := k.Load(env.Provider("ACRS_", ".", func(s string) string {
		return strings.Replace(strings.ToLower(
			strings.TrimPrefix(s, "ACRS_")), "_", ".", -1)
	}), nil); err != nil {
		return nil, fmt.Errorf("loading environment variables: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, nil
}
