package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the idxadvisor configuration.
type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Database DatabaseConfig `yaml:"database"`
	Catalog  CatalogConfig  `yaml:"catalog"`
	Advisor  AdvisorConfig  `yaml:"advisor"`
	Auth     AuthConfig     `yaml:"auth"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds admin API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// DatabaseConfig holds MongoDB connection settings.
type DatabaseConfig struct {
	URI              string `yaml:"uri"`
	Name             string `yaml:"name"`
	AppName          string `yaml:"app_name"`
	ConnectTimeout   int    `yaml:"connect_timeout_sec"`
	ReadinessTimeout int    `yaml:"readiness_timeout_sec"`
}

// CatalogConfig selects the index catalog. An empty path uses the built-in catalog.
type CatalogConfig struct {
	Path string `yaml:"path"`
}

// AdvisorConfig holds provisioning and analysis settings.
type AdvisorConfig struct {
	MediumThresholdMs   int64 `yaml:"medium_threshold_ms"`
	HighThresholdMs     int64 `yaml:"high_threshold_ms"`
	InFlightThresholdMs int64 `yaml:"in_flight_threshold_ms"`
	OpTimeoutSec        int   `yaml:"op_timeout_sec"`
	AnalyzeConcurrency  int   `yaml:"analyze_concurrency"`
	ProvisionOnStartup  bool  `yaml:"provision_on_startup"`
	ScheduleIntervalSec int   `yaml:"schedule_interval_sec"` // 0 = disabled
	ProfileLimit        int64 `yaml:"profile_limit"`
}

// OpTimeout returns the per-operation timeout.
func (a AdvisorConfig) OpTimeout() time.Duration {
	return time.Duration(a.OpTimeoutSec) * time.Second
}

// InFlightThreshold returns the slow in-flight op threshold.
func (a AdvisorConfig) InFlightThreshold() time.Duration {
	return time.Duration(a.InFlightThresholdMs) * time.Millisecond
}

// ScheduleInterval returns the scheduled job interval, zero when disabled.
func (a AdvisorConfig) ScheduleInterval() time.Duration {
	return time.Duration(a.ScheduleIntervalSec) * time.Second
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	return Parse(data)
}

// Parse decodes, defaults and validates configuration bytes.
func Parse(data []byte) (Config, error) {
	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 60
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Database.AppName == "" {
		c.Database.AppName = "idxadvisor"
	}
	if c.Database.ConnectTimeout <= 0 {
		c.Database.ConnectTimeout = 10
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Advisor.MediumThresholdMs <= 0 {
		c.Advisor.MediumThresholdMs = 500
	}
	if c.Advisor.HighThresholdMs <= 0 {
		c.Advisor.HighThresholdMs = 1000
	}
	if c.Advisor.InFlightThresholdMs <= 0 {
		c.Advisor.InFlightThresholdMs = 100
	}
	if c.Advisor.OpTimeoutSec <= 0 {
		c.Advisor.OpTimeoutSec = 30
	}
	if c.Advisor.AnalyzeConcurrency <= 0 {
		c.Advisor.AnalyzeConcurrency = 4
	}
	if c.Advisor.ProfileLimit <= 0 {
		c.Advisor.ProfileLimit = 100
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if c.Database.URI == "" {
		return fmt.Errorf("database.uri is required")
	}
	if c.Database.Name == "" {
		return fmt.Errorf("database.name is required")
	}
	if c.Advisor.HighThresholdMs < c.Advisor.MediumThresholdMs {
		return fmt.Errorf(
			"advisor.high_threshold_ms (%d) must not be below advisor.medium_threshold_ms (%d)",
			c.Advisor.HighThresholdMs, c.Advisor.MediumThresholdMs,
		)
	}
	if c.Advisor.ScheduleIntervalSec < 0 {
		return fmt.Errorf("advisor.schedule_interval_sec must not be negative, got %d", c.Advisor.ScheduleIntervalSec)
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
