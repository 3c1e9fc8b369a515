package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// Config is the full gateway configuration. Precedence is defaults, then
// the optional YAML file, then PHISHGUARD_-prefixed environment variables.
type Config struct {
	Version     string `koanf:"version"`
	Environment string `koanf:"environment"`
	LogLevel    string `koanf:"log_level"`

	Server    ServerConfig    `koanf:"server"`
	Database  DatabaseConfig  `koanf:"database"`
	Redis     RedisConfig     `koanf:"redis"`
	Judge     JudgeConfig     `koanf:"judge"`
	Model     ModelConfig     `koanf:"model"`
	Routing   RoutingConfig   `koanf:"routing"`
	Telemetry TelemetryConfig `koanf:"telemetry"`
	RateLimit RateLimitConfig `koanf:"rate_limit"`

	// ThresholdsPath points at the calibration artifact produced by the
	// offline threshold sweep. The gateway refuses to start without it.
	ThresholdsPath string `koanf:"thresholds_path" validate:"required"`

	// TLDProbsPath points at the TLD legitimacy table. Optional; absent
	// file means every TLD scores the neutral default.
	TLDProbsPath string `koanf:"tld_probs_path"`
}

type ServerConfig struct {
	Port            int           `koanf:"port" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

type DatabaseConfig struct {
	// URL empty disables the Postgres audit sink.
	URL             string        `koanf:"url"`
	MaxOpenConns    int           `koanf:"max_open_conns"`
	MaxIdleConns    int           `koanf:"max_idle_conns"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`
}

type RedisConfig struct {
	// URL empty disables the decision cache.
	URL      string        `koanf:"url"`
	Password string        `koanf:"password"`
	DB       int           `koanf:"db"`
	TTL      time.Duration `koanf:"ttl"`
}

type JudgeConfig struct {
	// Backend selects the judge implementation: "stub" or "llm".
	Backend string        `koanf:"backend" validate:"oneof=stub llm"`
	Host    string        `koanf:"host"`
	Model   string        `koanf:"model"`
	Timeout time.Duration `koanf:"timeout"`
}

type ModelConfig struct {
	// URL empty falls back to the local heuristic probability source.
	URL     string        `koanf:"url"`
	Timeout time.Duration `koanf:"timeout"`
}

type RoutingConfig struct {
	ShortDomainLength     int     `koanf:"short_domain_length" validate:"min=1"`
	ShortDomainConfidence float64 `koanf:"short_domain_confidence" validate:"min=0,max=1"`
}

type TelemetryConfig struct {
	Enabled       bool          `koanf:"enabled"`
	OTLPEndpoint  string        `koanf:"otlp_endpoint"`
	SampleRate    float64       `koanf:"sample_rate" validate:"min=0,max=1"`
	ExportTimeout time.Duration `koanf:"export_timeout"`
	BatchTimeout  time.Duration `koanf:"batch_timeout"`
}

type RateLimitConfig struct {
	RequestsPerSecond int `koanf:"requests_per_second" validate:"min=1"`
	BurstSize         int `koanf:"burst_size" validate:"min=1"`
}

// Load reads configuration from defaults, the given YAML file (optional),
// and PHISHGUARD_-prefixed environment variables.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	defaults := &Config{
		Version:     "dev",
		Environment: "development",
		LogLevel:    "info",
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			ShutdownTimeout: 30 * time.Second,
		},
		Database: DatabaseConfig{
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 5 * time.Minute,
		},
		Redis: RedisConfig{
			DB:  0,
			TTL: 10 * time.Minute,
		},
		Judge: JudgeConfig{
			Backend: "stub",
			Host:    "http://localhost:11434",
			Model:   "llama3.2:3b",
			Timeout: 12 * time.Second,
		},
		Model: ModelConfig{
			Timeout: 5 * time.Second,
		},
		Routing: RoutingConfig{
			ShortDomainLength:     10,
			ShortDomainConfidence: 0.5,
		},
		Telemetry: TelemetryConfig{
			Enabled:       false,
			SampleRate:    1.0,
			ExportTimeout: 30 * time.Second,
			BatchTimeout:  5 * time.Second,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 100,
			BurstSize:         200,
		},
		ThresholdsPath: "configs/thresholds.json",
		TLDProbsPath:   "configs/tld_probs.json",
	}

	if err := k.Load(structs.Provider(defaults, "koanf"), nil); err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	// Config file is optional; the env layer can carry everything.
	if path != "" {
		_ = k.Load(file.Provider(path), yaml.Parser())
	}

	if err := k.Load(env.Provider("PHISHGUARD_", ".", func(s string) string {
		return strings.Replace(strings.ToLower(
			strings.TrimPrefix(s, "PHISHGUARD_")), "_", ".", -1)
	}), nil); err != nil {
		return nil, fmt.Errorf("loading environment variables: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}
