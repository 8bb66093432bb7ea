package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestMustDuration(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		value    string
		def      time.Duration
		expected time.Duration
	}{
		{
			name:     "valid duration",
			key:      "TABSAVER_TEST_DURATION",
			value:    "5s",
			def:      1 * time.Second,
			expected: 5 * time.Second,
		},
		{
			name:     "invalid duration uses default",
			key:      "TABSAVER_TEST_DURATION_INVALID",
			value:    "invalid",
			def:      10 * time.Second,
			expected: 10 * time.Second,
		},
		{
			name:     "missing variable uses default",
			key:      "TABSAVER_TEST_DURATION_MISSING",
			value:    "",
			def:      15 * time.Second,
			expected: 15 * time.Second,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.value != "" {
				t.Setenv(tt.key, tt.value)
			}

			result := mustDuration(tt.key, tt.def)
			if result != tt.expected {
				t.Errorf("mustDuration() = %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestMustBool(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		value    string
		def      bool
		expected bool
	}{
		{
			name:     "true value",
			key:      "TABSAVER_TEST_BOOL",
			value:    "true",
			def:      false,
			expected: true,
		},
		{
			name:     "false value",
			key:      "TABSAVER_TEST_BOOL_FALSE",
			value:    "false",
			def:      true,
			expected: false,
		},
		{
			name:     "invalid value uses default",
			key:      "TABSAVER_TEST_BOOL_INVALID",
			value:    "invalid",
			def:      true,
			expected: true,
		},
		{
			name:     "missing variable uses default",
			key:      "TABSAVER_TEST_BOOL_MISSING",
			value:    "",
			def:      false,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.value != "" {
				t.Setenv(tt.key, tt.value)
			}

			result := mustBool(tt.key, tt.def)
			if result != tt.expected {
				t.Errorf("mustBool() = %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestGetenvInt(t *testing.T) {
	t.Setenv("TABSAVER_TEST_INT", "42")
	t.Setenv("TABSAVER_TEST_INT_BAD", "forty-two")

	if got := getenvInt("TABSAVER_TEST_INT", 1); got != 42 {
		t.Errorf("getenvInt() = %d, want 42", got)
	}
	if got := getenvInt("TABSAVER_TEST_INT_BAD", 7); got != 7 {
		t.Errorf("getenvInt() with invalid value = %d, want default 7", got)
	}
	if got := getenvInt("TABSAVER_TEST_INT_MISSING", 3); got != 3 {
		t.Errorf("getenvInt() with missing value = %d, want default 3", got)
	}
}

func TestSplitAndTrim(t *testing.T) {
	got := splitAndTrim(` 127.0.0.1/32 , "10.0.0.0/8",, '::1/128' `)
	want := []string{"127.0.0.1/32", "10.0.0.0/8", "::1/128"}

	if len(got) != len(want) {
		t.Fatalf("splitAndTrim() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("splitAndTrim()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("TABSAVER_CONFIG_FILE", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}

	if cfg.ListenAddr != "127.0.0.1:8765" {
		t.Errorf("ListenAddr = %q, want default", cfg.ListenAddr)
	}
	if cfg.MaxConcurrency != 8 {
		t.Errorf("MaxConcurrency = %d, want 8", cfg.MaxConcurrency)
	}
	if cfg.RedisEnabled() {
		t.Error("redis should be disabled without TABSAVER_REDIS_ADDR")
	}
	if !strings.HasSuffix(cfg.DBPath, "bookmarks.db") && cfg.DBPath != "tabsaver.db" {
		t.Errorf("unexpected default DBPath %q", cfg.DBPath)
	}
}

func TestLoadFileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tabsaver.yaml")
	content := `
listen_addr: "127.0.0.1:9000"
log_level: debug
pretty_log: false
cdp_url: "ws://127.0.0.1:9333/devtools/browser/abc"
db_path: /tmp/tabsaver-test.db
max_concurrency: 4
idle_poll_interval: 30s
redis:
  addr: "localhost:6379"
  db: 2
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	t.Setenv("TABSAVER_CONFIG_FILE", path)
	t.Setenv("TABSAVER_MAX_CONCURRENCY", "16")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}

	if cfg.ListenAddr != "127.0.0.1:9000" {
		t.Errorf("ListenAddr = %q, want value from file", cfg.ListenAddr)
	}
	if cfg.PrettyLog {
		t.Error("PrettyLog should be false from file")
	}
	if cfg.IdlePollInterval != 30*time.Second {
		t.Errorf("IdlePollInterval = %v, want 30s", cfg.IdlePollInterval)
	}
	if cfg.MaxConcurrency != 16 {
		t.Errorf("MaxConcurrency = %d, env should win over file", cfg.MaxConcurrency)
	}
	if !cfg.RedisEnabled() || cfg.RedisDB != 2 {
		t.Errorf("redis settings not applied: addr=%q db=%d", cfg.RedisAddr, cfg.RedisDB)
	}
}

func TestLoadInvalidFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "broken.yaml")
	if err := os.WriteFile(path, []byte("idle_poll_interval: soon\n"), 0o644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	t.Setenv("TABSAVER_CONFIG_FILE", path)

	if _, err := Load(); err == nil {
		t.Error("Load() should fail on an invalid duration in the config file")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "zero concurrency", mutate: func(c *Config) { c.MaxConcurrency = 0 }, wantErr: true},
		{name: "zero poll interval", mutate: func(c *Config) { c.IdlePollInterval = 0 }, wantErr: true},
		{name: "empty db path", mutate: func(c *Config) { c.DBPath = "" }, wantErr: true},
		{name: "empty cdp url", mutate: func(c *Config) { c.CDPURL = "" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
