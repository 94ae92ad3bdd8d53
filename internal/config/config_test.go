package config

import "testing"

func validConfig() Config {
	cfg := Config{HTTP: HTTPConfig{Port: 8080}}
	cfg.ApplyDefaults()
	return cfg
}

func TestValidate_Defaults(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_InvalidPort(t *testing.T) {
	cfg := validConfig()
	cfg.HTTP.Port = 70000

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for invalid port")
	}
}

func TestValidate_InvalidDefaultPort(t *testing.T) {
	for _, port := range []string{"abc", "0", "65536", "-1"} {
		t.Run("port="+port, func(t *testing.T) {
			cfg := validConfig()
			cfg.Relay.DefaultPort = port
			if err := cfg.Validate(); err == nil {
				t.Fatalf("expected error for default_port %q", port)
			}
		})
	}
}

func TestValidate_AllowedTargets(t *testing.T) {
	tests := []struct {
		target  string
		wantErr bool
	}{
		{"chroma.internal", false},
		{"10.0.0.5:8000", false},
		{"", true},
		{"   ", true},
		{":8000", true},
		{"chroma:notaport", true},
	}

	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			cfg := validConfig()
			cfg.Relay.AllowedTargets = []string{tt.target}
			err := cfg.Validate()
			if tt.wantErr && err == nil {
				t.Fatalf("expected error for target %q", tt.target)
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("unexpected error for target %q: %v", tt.target, err)
			}
		})
	}
}

func TestValidate_RelayURL(t *testing.T) {
	cfg := validConfig()
	cfg.Console.RelayURL = "not a url"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for relative relay_url")
	}

	cfg.Console.RelayURL = "http://127.0.0.1:3000"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_NegativeTimeout(t *testing.T) {
	cfg := validConfig()
	cfg.Relay.UpstreamTimeoutSec = -1
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for negative timeout")
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.HTTP.Port != 3000 {
		t.Errorf("expected Port=3000, got %d", cfg.HTTP.Port)
	}
	if cfg.HTTP.ReadTimeoutSec != 10 {
		t.Errorf("expected ReadTimeoutSec=10, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.HTTP.WriteTimeoutSec != 60 {
		t.Errorf("expected WriteTimeoutSec=60, got %d", cfg.HTTP.WriteTimeoutSec)
	}
	if cfg.HTTP.ShutdownSec != 10 {
		t.Errorf("expected ShutdownSec=10, got %d", cfg.HTTP.ShutdownSec)
	}
	if cfg.Relay.DefaultHost != "localhost" {
		t.Errorf("expected DefaultHost=localhost, got %q", cfg.Relay.DefaultHost)
	}
	if cfg.Relay.DefaultPort != "8000" {
		t.Errorf("expected DefaultPort=8000, got %q", cfg.Relay.DefaultPort)
	}
	if cfg.Console.DefaultSearchLimit != 5 {
		t.Errorf("expected DefaultSearchLimit=5, got %d", cfg.Console.DefaultSearchLimit)
	}
	if cfg.Embedding.Enabled() {
		t.Error("embedding should be disabled without api_key/base_url")
	}
}

func TestApplyDefaults_NoOverride(t *testing.T) {
	cfg := Config{
		HTTP:    HTTPConfig{Port: 9000, ReadTimeoutSec: 30, WriteTimeoutSec: 5, ShutdownSec: 5},
		Relay:   RelayConfig{DefaultHost: "chroma", DefaultPort: "9001"},
		Console: ConsoleConfig{DefaultSearchLimit: 20},
	}
	cfg.ApplyDefaults()

	if cfg.HTTP.Port != 9000 {
		t.Errorf("expected Port=9000, got %d", cfg.HTTP.Port)
	}
	if cfg.HTTP.WriteTimeoutSec != 5 {
		t.Errorf("expected WriteTimeoutSec=5, got %d", cfg.HTTP.WriteTimeoutSec)
	}
	if cfg.Relay.DefaultHost != "chroma" || cfg.Relay.DefaultPort != "9001" {
		t.Errorf("relay defaults overridden: %+v", cfg.Relay)
	}
	if cfg.Console.DefaultSearchLimit != 20 {
		t.Errorf("expected DefaultSearchLimit=20, got %d", cfg.Console.DefaultSearchLimit)
	}
}

func TestParse_ExpandsEnvVars(t *testing.T) {
	t.Setenv("TEST_CHROMA_HOST", "chroma.local")

	data := []byte(`
http:
  port: 8081
relay:
  default_host: ${TEST_CHROMA_HOST}
  default_port: "${TEST_CHROMA_PORT_UNSET:-8123}"
`)
	cfg, err := Parse(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Relay.DefaultHost != "chroma.local" {
		t.Errorf("expected host chroma.local, got %q", cfg.Relay.DefaultHost)
	}
	if cfg.Relay.DefaultPort != "8123" {
		t.Errorf("expected port 8123, got %q", cfg.Relay.DefaultPort)
	}
}

func TestParse_InvalidYAML(t *testing.T) {
	if _, err := Parse([]byte("http: [")); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestValidate_CacheAddrs(t *testing.T) {
	cfg := validConfig()
	cfg.Cache.Addrs = []string{"valkey:6379"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cfg.Cache.Enabled() {
		t.Error("cache with addrs should be enabled")
	}

	cfg.Cache.Addrs = []string{"valkey"}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for addr without port")
	}
}

func TestValidate_NegativeCacheTTL(t *testing.T) {
	cfg := validConfig()
	cfg.Cache.TTLSec = -1
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for negative ttl")
	}
}

func TestValidate_NegativeCacheWriteTimeout(t *testing.T) {
	cfg := validConfig()
	cfg.Cache.WriteTimeoutMs = -1
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for negative write timeout")
	}
}

func TestParse_Cache(t *testing.T) {
	t.Setenv("CACHE_ADDR", "127.0.0.1:6379")
	cfg, err := Parse([]byte("cache:\n  addrs: [\"${CACHE_ADDR}\"]\n  ttl_sec: 3600\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cfg.Cache.Addrs) != 1 || cfg.Cache.Addrs[0] != "127.0.0.1:6379" {
		t.Errorf("addrs = %v", cfg.Cache.Addrs)
	}
	if cfg.Cache.TTLSec != 3600 || cfg.Cache.ReadinessTimeout != 10 {
		t.Errorf("cache = %+v", cfg.Cache)
	}
}

func TestTracing_Defaults(t *testing.T) {
	cfg := validConfig()
	if cfg.Tracing.SampleRate != 1 {
		t.Errorf("sample_rate = %v, want 1", cfg.Tracing.SampleRate)
	}
	cfg.Tracing.SampleRate = 1.5
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for sample_rate > 1")
	}
}

func TestConsoleRelayKey(t *testing.T) {
	cfg := validConfig()
	cfg.Auth.APIKeys = []string{"", "k1", "k2"}
	if got := cfg.ConsoleRelayKey(); got != "" {
		t.Errorf("direct console: key = %q, want empty", got)
	}

	cfg.Console.RelayURL = "http://127.0.0.1:3000"
	if got := cfg.ConsoleRelayKey(); got != "k1" {
		t.Errorf("relayed console: key = %q, want k1", got)
	}

	cfg.Console.RelayAPIKey = "console"
	if got := cfg.ConsoleRelayKey(); got != "console" {
		t.Errorf("explicit key = %q, want console", got)
	}
}
