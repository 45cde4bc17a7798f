// Package config loads process configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// BootstrapConfig controls first-run seeding.
type BootstrapConfig struct {
	EnsureDefaultTenant bool
	// OperatorUserID receives an application-scope grant at startup so a
	// fresh install has at least one principal that can reach everything.
	OperatorUserID int64
}

// GeneratorConfig controls the recurring bill generator.
type GeneratorConfig struct {
	// HorizonDays is the lookahead window: a schedule is due for a new
	// bill when it has no bill at least this many days in the future.
	HorizonDays int
	// CronSpec drives the periodic trigger.
	CronSpec string
	// SystemActorID stamps audit fields on generated bills.
	SystemActorID int64
}

// TracingConfig configures the OTLP exporter.
type TracingConfig struct {
	Enabled          bool
	ExporterEndpoint string
	ExporterProtocol string
	SamplingRatio    float64
}

// Config is the root configuration for the faktura process.
type Config struct {
	Environment    string
	ServiceName    string
	ServiceVersion string
	HTTPAddr       string
	DatabaseDSN    string

	Generator GeneratorConfig
	Tracing   TracingConfig
	Bootstrap BootstrapConfig
}

// IsProduction reports whether the process runs with production hardening.
func (c Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

// Load reads configuration from the environment with development defaults.
func Load() (Config, error) {
	cfg := Config{
		Environment:    getEnv("FAKTURA_ENV", "development"),
		ServiceName:    getEnv("FAKTURA_SERVICE_NAME", "faktura"),
		ServiceVersion: getEnv("FAKTURA_SERVICE_VERSION", "dev"),
		HTTPAddr:       getEnv("FAKTURA_HTTP_ADDR", ":8080"),
		DatabaseDSN:    getEnv("DATABASE_URL", "postgres://localhost/faktura?sslmode=disable"),
		Generator: GeneratorConfig{
			HorizonDays: 10,
			CronSpec:    getEnv("FAKTURA_GENERATOR_CRON", "5 0 * * *"),
		},
		Tracing: TracingConfig{
			ExporterEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
			ExporterProtocol: getEnv("OTEL_EXPORTER_OTLP_PROTOCOL", "grpc"),
			SamplingRatio:    0.1,
		},
		Bootstrap: BootstrapConfig{},
	}

	horizon, err := getEnvInt("FAKTURA_GENERATOR_HORIZON_DAYS", cfg.Generator.HorizonDays)
	if err != nil {
		return cfg, err
	}
	if horizon <= 0 {
		return cfg, fmt.Errorf("FAKTURA_GENERATOR_HORIZON_DAYS must be positive, got %d", horizon)
	}
	cfg.Generator.HorizonDays = horizon

	systemActor, err := getEnvInt64("FAKTURA_SYSTEM_ACTOR_ID", 1)
	if err != nil {
		return cfg, err
	}
	cfg.Generator.SystemActorID = systemActor

	cfg.Tracing.Enabled = getEnvBool("FAKTURA_TRACING_ENABLED", false)
	if ratio, err := getEnvFloat("FAKTURA_TRACING_SAMPLING_RATIO", cfg.Tracing.SamplingRatio); err != nil {
		return cfg, err
	} else {
		cfg.Tracing.SamplingRatio = ratio
	}

	cfg.Bootstrap.EnsureDefaultTenant = getEnvBool("FAKTURA_BOOTSTRAP_DEFAULT_TENANT", !cfg.IsProduction())
	operatorID, err := getEnvInt64("FAKTURA_BOOTSTRAP_OPERATOR_USER_ID", 0)
	if err != nil {
		return cfg, err
	}
	cfg.Bootstrap.OperatorUserID = operatorID

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}
	return value
}

func getEnvInt(key string, fallback int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback, fmt.Errorf("%s: %w", key, err)
	}
	return value, nil
}

func getEnvInt64(key string, fallback int64) (int64, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return fallback, fmt.Errorf("%s: %w", key, err)
	}
	return value, nil
}

func getEnvFloat(key string, fallback float64) (float64, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fallback, fmt.Errorf("%s: %w", key, err)
	}
	return value, nil
}
