package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/semrouter/internal/db"
	"github.com/kailas-cloud/semrouter/internal/domain"
)

// Config holds the semrouter configuration.
type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Database DatabaseConfig `yaml:"database"`
	Storage  StorageConfig  `yaml:"storage"`
	Router   RouterConfig   `yaml:"router"`
	Routes   []RouteConfig  `yaml:"routes"`
	Events   EventsConfig   `yaml:"events"`
	Auth     AuthConfig     `yaml:"auth"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
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

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	Driver           string   `yaml:"driver"` // redis, valkey (default: redis)
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
	OpTimeoutMs      int      `yaml:"op_timeout_ms"`
}

// StorageConfig holds storage settings.
type StorageConfig struct {
	KeyPrefix string `yaml:"key_prefix"`
}

// RouterConfig holds scoring and index settings.
type RouterConfig struct {
	Normalization     float64 `yaml:"normalization"`
	DefaultConfidence float64 `yaml:"default_confidence"`
	HistoryCap        int     `yaml:"history_cap"`
	QueryLogMaxChars  int     `yaml:"query_log_max_chars"`
	CountOccurrences  bool    `yaml:"count_occurrences"`
	IndexEnabled      *bool   `yaml:"index_enabled"` // nil = true
	IndexMaxTags      int     `yaml:"index_max_tags"`
	MaxBatchSize      int     `yaml:"max_batch_size"`
	BatchConcurrency  int     `yaml:"batch_concurrency"`
}

// IndexOn reports whether the index-backed matcher should be tried.
func (r RouterConfig) IndexOn() bool {
	return r.IndexEnabled == nil || *r.IndexEnabled
}

// RouteConfig declares one route. Order in the file is significant: the
// first route is the default.
type RouteConfig struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Keywords    []string `yaml:"keywords"`
	Weight      int      `yaml:"weight"`
}

// EventsConfig holds Kafka publishing settings. Empty brokers disables events.
type EventsConfig struct {
	Brokers    []string `yaml:"brokers"`
	Topic      string   `yaml:"topic"`
	BufferSize int      `yaml:"buffer_size"`
}

// Enabled reports whether routing events are published.
func (e EventsConfig) Enabled() bool {
	return len(e.Brokers) > 0
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	return LoadFile(findConfigPath(env))
}

// LoadFile reads configuration from an explicit path.
func LoadFile(configPath string) (Config, error) {
	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}
	return Parse(data)
}

// Parse decodes YAML, expands ${VAR} references, applies defaults and validates.
func Parse(data []byte) (Config, error) {
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("%w: parse yaml: %w", domain.ErrConfig, err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
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
		c.HTTP.WriteTimeoutSec = 10
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Database.Driver == "" {
		c.Database.Driver = "redis"
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Database.OpTimeoutMs <= 0 {
		c.Database.OpTimeoutMs = 500
	}
	if c.Storage.KeyPrefix == "" {
		c.Storage.KeyPrefix = "semantic:"
	}
	if c.Router.Normalization <= 0 {
		c.Router.Normalization = 5
	}
	if c.Router.DefaultConfidence <= 0 {
		c.Router.DefaultConfidence = 0.1
	}
	if c.Router.HistoryCap <= 0 {
		c.Router.HistoryCap = 100
	}
	if c.Router.QueryLogMaxChars <= 0 {
		c.Router.QueryLogMaxChars = 50
	}
	if c.Router.IndexMaxTags <= 0 {
		c.Router.IndexMaxTags = 10
	}
	if c.Router.MaxBatchSize <= 0 {
		c.Router.MaxBatchSize = 100
	}
	if c.Router.BatchConcurrency <= 0 {
		c.Router.BatchConcurrency = 8
	}
	if c.Events.Topic == "" {
		c.Events.Topic = "semrouter.decisions"
	}
	if c.Events.BufferSize <= 0 {
		c.Events.BufferSize = 1000
	}
}

// Validate checks the configuration for correctness. Every error wraps
// domain.ErrConfig. Route semantics (duplicates, weights) are checked again
// when the registry is built.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return invalid("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if len(c.Database.Addrs) == 0 {
		return invalid("database.addrs is required")
	}
	switch c.Database.Driver {
	case "redis", "valkey":
	default:
		return invalid("database.driver must be \"redis\" or \"valkey\", got %q", c.Database.Driver)
	}
	// The prefix becomes part of the FT index name.
	if p := c.Storage.KeyPrefix; p != "" && !db.IsValidIdentifier(p) {
		return invalid("storage.key_prefix may only contain [a-zA-Z0-9_:-], got %q", p)
	}
	if c.Router.DefaultConfidence > 1 {
		return invalid("router.default_confidence must be in (0, 1], got %v", c.Router.DefaultConfidence)
	}
	if len(c.Routes) == 0 {
		return invalid("at least one route is required")
	}
	seen := make(map[string]bool, len(c.Routes))
	for i, r := range c.Routes {
		name := strings.TrimSpace(r.Name)
		if name == "" {
			return invalid("routes[%d].name is required", i)
		}
		if seen[name] {
			return invalid("routes[%d]: duplicate route name %q", i, name)
		}
		seen[name] = true
		if r.Weight < 0 {
			return invalid("routes.%s.weight must not be negative, got %d", name, r.Weight)
		}
	}
	return nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", domain.ErrConfig, fmt.Sprintf(format, args...))
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
