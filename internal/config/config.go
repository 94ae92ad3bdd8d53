package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the chroma-explorer configuration.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Relay     RelayConfig     `yaml:"relay"`
	Console   ConsoleConfig   `yaml:"console"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Cache     CacheConfig     `yaml:"cache"`
	Tracing   TracingConfig   `yaml:"tracing"`
	Auth      AuthConfig      `yaml:"auth"`
	Logging   LoggingConfig   `yaml:"logging"`
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

// RelayConfig holds the upstream forwarding settings.
type RelayConfig struct {
	DefaultHost string `yaml:"default_host"`
	DefaultPort string `yaml:"default_port"`
	// AllowedTargets restricts forwarding to "host" or "host:port" entries. Empty allows any target.
	AllowedTargets     []string `yaml:"allowed_targets"`
	UpstreamTimeoutSec int      `yaml:"upstream_timeout_sec"` // 0 = no timeout
}

// ConsoleConfig holds settings of the console API's compatibility client.
type ConsoleConfig struct {
	// RelayURL routes console calls through a relay (e.g. http://127.0.0.1:3000).
	// Empty means the console talks to the upstream directly.
	RelayURL string `yaml:"relay_url"`
	// RelayAPIKey authenticates console calls to an auth-enabled relay.
	// Empty falls back to the first auth.api_keys entry.
	RelayAPIKey        string `yaml:"relay_api_key"`
	DefaultSearchLimit int    `yaml:"default_search_limit"`
	Tenant             string `yaml:"tenant"`
	Database           string `yaml:"database"`
}

// EmbeddingConfig holds the optional OpenAI-compatible embedding provider.
// Search uses it for query_embeddings only when APIKey or BaseURL is set.
type EmbeddingConfig struct {
	Provider   string `yaml:"provider"`
	APIKey     string `yaml:"api_key"`
	BaseURL    string `yaml:"base_url"`
	Model      string `yaml:"model"`
	Dimensions int    `yaml:"dimensions"`
}

// Enabled reports whether an embedding provider is configured.
func (e EmbeddingConfig) Enabled() bool {
	return e.APIKey != "" || e.BaseURL != ""
}

// CacheConfig holds the optional Valkey/Redis store for query embeddings.
// The cache is used only when Addrs is set and an embedding provider is enabled.
type CacheConfig struct {
	Addrs            []string `yaml:"addrs"`
	Username         string   `yaml:"username"`
	Password         string   `yaml:"password"`
	DB               int      `yaml:"db"`
	TTLSec           int      `yaml:"ttl_sec"` // 0 = no expiry
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
	WriteTimeoutMs   int      `yaml:"write_timeout_ms"` // 0 = client default
}

// Enabled reports whether a cache store is configured.
func (c CacheConfig) Enabled() bool {
	return len(c.Addrs) > 0
}

// ConsoleRelayKey returns the bearer key console calls send to the relay, empty when the
// console is not relayed or auth is off.
func (c *Config) ConsoleRelayKey() string {
	if c.Console.RelayURL == "" {
		return ""
	}
	if c.Console.RelayAPIKey != "" {
		return c.Console.RelayAPIKey
	}
	for _, k := range c.Auth.APIKeys {
		if k != "" {
			return k
		}
	}
	return ""
}

// TracingConfig holds the OpenTelemetry exporter settings. Empty OTLPEndpoint disables tracing.
type TracingConfig struct {
	OTLPEndpoint string  `yaml:"otlp_endpoint"` // host:port of an OTLP/HTTP collector
	Insecure     bool    `yaml:"insecure"`
	SampleRate   float64 `yaml:"sample_rate"` // default 1
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

// Parse decodes YAML bytes, expands ${VAR} references, applies defaults and validates.
func Parse(data []byte) (Config, error) {
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
	if c.HTTP.Port == 0 {
		c.HTTP.Port = 3000
	}
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 60
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Relay.DefaultHost == "" {
		c.Relay.DefaultHost = "localhost"
	}
	if c.Relay.DefaultPort == "" {
		c.Relay.DefaultPort = "8000"
	}
	if c.Console.DefaultSearchLimit <= 0 {
		c.Console.DefaultSearchLimit = 5
	}
	if c.Embedding.Provider == "" {
		c.Embedding.Provider = "openai"
	}
	if c.Embedding.Model == "" {
		c.Embedding.Model = "text-embedding-3-small"
	}
	if c.Cache.ReadinessTimeout <= 0 {
		c.Cache.ReadinessTimeout = 10
	}
	if c.Tracing.SampleRate <= 0 {
		c.Tracing.SampleRate = 1
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if err := validatePort(c.Relay.DefaultPort); err != nil {
		return fmt.Errorf("relay.default_port: %w", err)
	}
	if c.Relay.UpstreamTimeoutSec < 0 {
		return fmt.Errorf("relay.upstream_timeout_sec must not be negative, got %d", c.Relay.UpstreamTimeoutSec)
	}
	for i, t := range c.Relay.AllowedTargets {
		if strings.TrimSpace(t) == "" {
			return fmt.Errorf("relay.allowed_targets[%d] is empty", i)
		}
		if host, port, err := net.SplitHostPort(t); err == nil {
			if host == "" {
				return fmt.Errorf("relay.allowed_targets[%d] has no host: %q", i, t)
			}
			if err := validatePort(port); err != nil {
				return fmt.Errorf("relay.allowed_targets[%d]: %w", i, err)
			}
		}
	}
	if c.Console.RelayURL != "" {
		u, err := url.Parse(c.Console.RelayURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("console.relay_url must be an absolute URL, got %q", c.Console.RelayURL)
		}
	}
	if c.Embedding.Dimensions < 0 {
		return fmt.Errorf("embedding.dimensions must not be negative, got %d", c.Embedding.Dimensions)
	}
	for i, a := range c.Cache.Addrs {
		if _, _, err := net.SplitHostPort(a); err != nil {
			return fmt.Errorf("cache.addrs[%d] must be host:port, got %q", i, a)
		}
	}
	if c.Cache.WriteTimeoutMs < 0 {
		return fmt.Errorf("cache.write_timeout_ms must not be negative, got %d", c.Cache.WriteTimeoutMs)
	}
	if c.Cache.TTLSec < 0 {
		return fmt.Errorf("cache.ttl_sec must not be negative, got %d", c.Cache.TTLSec)
	}
	if c.Tracing.SampleRate > 1 {
		return fmt.Errorf("tracing.sample_rate must be within (0, 1], got %g", c.Tracing.SampleRate)
	}
	return nil
}

func validatePort(p string) error {
	n, err := strconv.Atoi(p)
	if err != nil || n <= 0 || n > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %q", p)
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
