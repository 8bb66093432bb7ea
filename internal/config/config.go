package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	ListenAddr      string        // ex: "127.0.0.1:8765"
	ShutdownTimeout time.Duration // ex: 10s

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	// Browser (Chrome DevTools Protocol)
	CDPURL            string        // http:// or ws:// debugger endpoint
	CDPConnectTimeout time.Duration // how long to wait for the browser at startup

	// Bookmark store
	DBPath string // SQLite file holding folders and entries

	// Pipelines
	MaxConcurrency   int           // cap on concurrent tab queries / bookmark creations
	IdlePollInterval time.Duration // how often the idle prober is consulted

	// Folder-key registry housekeeping
	RegistryGCInterval time.Duration // how often stale folder mappings are pruned
	RegistryRetention  time.Duration // mappings older than this are pruned

	// Trigger endpoint protection
	SaveRateBurst  int      // burst of force saves per client
	SaveRatePerMin int      // refill rate per client per minute
	AllowedCIDRS   []string // clients allowed to reach the API (loopback by default)
	TrustProxy     bool     // true => trust X-Forwarded-For headers

	// Redis (optional, empty address => in-memory registry)
	RedisAddr           string        // ex: "localhost:6379"
	RedisUser           string        // optional
	RedisPassword       string        // optional
	RedisDB             int           // Redis DB number
	RedisDT             time.Duration // Redis dial timeout
	RedisRT             time.Duration // Redis read timeout
	RedisWT             time.Duration // Redis write timeout
	RedisMaxWait        time.Duration // max wait between retries
	RedisPingTimeout    time.Duration // timeout for each ping attempt
	RedisPoolSize       int           // Redis connection pool size
	RedisConnectTimeout time.Duration // total time to retry connecting
	RedisRetryInterval  time.Duration // initial wait between retries (grows exponentially)
	RedisWarnThreshold  int           // warn after this many attempts
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		ListenAddr:      "127.0.0.1:8765",
		ShutdownTimeout: 10 * time.Second,

		LogLevel:  "info",
		PrettyLog: true,

		CDPURL:            "http://127.0.0.1:9222",
		CDPConnectTimeout: 30 * time.Second,

		DBPath: defaultDBPath(),

		MaxConcurrency:   8,
		IdlePollInterval: 15 * time.Second,

		RegistryGCInterval: 24 * time.Hour,
		RegistryRetention:  30 * 24 * time.Hour,

		SaveRateBurst:  5,
		SaveRatePerMin: 30,
		AllowedCIDRS:   []string{"127.0.0.1/32", "::1/128"},
		TrustProxy:     false,

		RedisUser:           "default",
		RedisDT:             5 * time.Second,
		RedisRT:             3 * time.Second,
		RedisWT:             3 * time.Second,
		RedisMaxWait:        10 * time.Second,
		RedisPingTimeout:    5 * time.Second,
		RedisPoolSize:       4,
		RedisConnectTimeout: 30 * time.Second,
		RedisRetryInterval:  2 * time.Second,
		RedisWarnThreshold:  3,
	}
}

// Load builds the configuration from defaults, an optional YAML file
// (TABSAVER_CONFIG_FILE) and environment variables, in that order.
func Load() (*Config, error) {
	cfg := Default()

	if path := getenv("TABSAVER_CONFIG_FILE", ""); path != "" {
		if err := applyFile(cfg, path); err != nil {
			return nil, err
		}
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// Log config only in debug mode with redacted sensitive fields
	if cfg.LogLevel == "debug" {
		cfgCopy := *cfg
		if cfgCopy.RedisPassword != "" {
			cfgCopy.RedisPassword = "***REDACTED***"
		}
		log.Printf("[DEBUG] cfg: %+v\n", cfgCopy)
	}

	return cfg, nil
}

// Validate rejects values the pipelines cannot run with.
func (c *Config) Validate() error {
	if c.MaxConcurrency < 1 {
		return fmt.Errorf("MaxConcurrency must be >= 1, got %d", c.MaxConcurrency)
	}
	if c.IdlePollInterval <= 0 {
		return fmt.Errorf("IdlePollInterval must be > 0, got %v", c.IdlePollInterval)
	}
	if c.RegistryGCInterval <= 0 {
		return fmt.Errorf("RegistryGCInterval must be > 0, got %v", c.RegistryGCInterval)
	}
	if c.DBPath == "" {
		return errors.New("DBPath must not be empty")
	}
	if c.CDPURL == "" {
		return errors.New("CDPURL must not be empty")
	}
	return nil
}

// RedisEnabled reports whether a Redis registry was configured.
func (c *Config) RedisEnabled() bool {
	return c.RedisAddr != ""
}

func applyEnv(cfg *Config) {
	// Server settings
	cfg.ListenAddr = getenv("TABSAVER_LISTEN_ADDR", cfg.ListenAddr)
	cfg.ShutdownTimeout = mustDuration("TABSAVER_SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout)

	// Logging
	cfg.LogLevel = getenv("TABSAVER_LOG_LEVEL", cfg.LogLevel)
	cfg.PrettyLog = mustBool("TABSAVER_PRETTY_LOG", cfg.PrettyLog)

	// Browser + store
	cfg.CDPURL = getenv("TABSAVER_CDP_URL", cfg.CDPURL)
	cfg.CDPConnectTimeout = mustDuration("TABSAVER_CDP_CONNECT_TIMEOUT", cfg.CDPConnectTimeout)
	cfg.DBPath = getenv("TABSAVER_DB_PATH", cfg.DBPath)

	// Pipelines
	cfg.MaxConcurrency = getenvInt("TABSAVER_MAX_CONCURRENCY", cfg.MaxConcurrency)
	cfg.IdlePollInterval = mustDuration("TABSAVER_IDLE_POLL_INTERVAL", cfg.IdlePollInterval)
	cfg.RegistryGCInterval = mustDuration("TABSAVER_REGISTRY_GC_INTERVAL", cfg.RegistryGCInterval)
	cfg.RegistryRetention = mustDuration("TABSAVER_REGISTRY_RETENTION", cfg.RegistryRetention)

	// Access restrictions
	cfg.SaveRateBurst = getenvInt("TABSAVER_SAVE_RATE_BURST", cfg.SaveRateBurst)
	cfg.SaveRatePerMin = getenvInt("TABSAVER_SAVE_RATE_PER_MIN", cfg.SaveRatePerMin)
	if v := getenv("TABSAVER_ALLOWED_CIDRS", ""); v != "" {
		cfg.AllowedCIDRS = parseAllowedIPs(v)
	}
	cfg.TrustProxy = mustBool("TABSAVER_TRUST_PROXY", cfg.TrustProxy)

	// Redis settings
	cfg.RedisAddr = getenv("TABSAVER_REDIS_ADDR", cfg.RedisAddr)
	cfg.RedisUser = getenv("TABSAVER_REDIS_USERNAME", cfg.RedisUser)
	cfg.RedisPassword = getenv("TABSAVER_REDIS_PASSWORD", cfg.RedisPassword)
	cfg.RedisDB = getenvInt("TABSAVER_REDIS_DB", cfg.RedisDB)
	cfg.RedisDT = mustDuration("TABSAVER_REDIS_DIAL_TIMEOUT", cfg.RedisDT)
	cfg.RedisRT = mustDuration("TABSAVER_REDIS_READ_TIMEOUT", cfg.RedisRT)
	cfg.RedisWT = mustDuration("TABSAVER_REDIS_WRITE_TIMEOUT", cfg.RedisWT)
	cfg.RedisMaxWait = mustDuration("TABSAVER_REDIS_MAX_WAIT", cfg.RedisMaxWait)
	cfg.RedisPingTimeout = mustDuration("TABSAVER_REDIS_PING_TIMEOUT", cfg.RedisPingTimeout)
	cfg.RedisPoolSize = getenvInt("TABSAVER_REDIS_POOL_SIZE", cfg.RedisPoolSize)
	cfg.RedisConnectTimeout = mustDuration("TABSAVER_REDIS_CONNECT_TIMEOUT", cfg.RedisConnectTimeout)
	cfg.RedisRetryInterval = mustDuration("TABSAVER_REDIS_RETRY_INTERVAL", cfg.RedisRetryInterval)
	cfg.RedisWarnThreshold = getenvInt("TABSAVER_REDIS_WARN_THRESHOLD", cfg.RedisWarnThreshold)
}

// defaultDBPath returns ~/.config/tabsaver/bookmarks.db, or a file in the
// working directory when no home directory is known.
func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "tabsaver.db"
	}
	return filepath.Join(home, ".config", "tabsaver", "bookmarks.db")
}

// helpers
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func mustBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func mustDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func parseAllowedIPs(allowed string) []string {
	if allowed == "" {
		return nil
	}
	ips := make([]string, 0, 4)
	for _, ip := range splitAndTrim(allowed) {
		if ip != "" {
			ips = append(ips, ip)
		}
	}
	return ips
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	raw := strings.Split(s, ",")
	parts := make([]string, 0, len(raw))
	for _, part := range raw {
		trimmed := strings.TrimSpace(part)
		// Remove surrounding quotes if present
		trimmed = strings.Trim(trimmed, `"'`)
		if trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}

// fileConfig mirrors Config for YAML files. Durations are strings ("15s").
type fileConfig struct {
	ListenAddr       string   `yaml:"listen_addr"`
	LogLevel         string   `yaml:"log_level"`
	PrettyLog        *bool    `yaml:"pretty_log"`
	CDPURL           string   `yaml:"cdp_url"`
	DBPath           string   `yaml:"db_path"`
	MaxConcurrency   int      `yaml:"max_concurrency"`
	IdlePollInterval string   `yaml:"idle_poll_interval"`
	AllowedCIDRS     []string `yaml:"allowed_cidrs"`

	Redis struct {
		Addr     string `yaml:"addr"`
		Username string `yaml:"username"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
}

// applyFile overlays non-empty values from a YAML file onto cfg.
func applyFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("failed to parse config yaml: %w", err)
	}

	if fc.ListenAddr != "" {
		cfg.ListenAddr = fc.ListenAddr
	}
	if fc.LogLevel != "" {
		cfg.LogLevel = fc.LogLevel
	}
	if fc.PrettyLog != nil {
		cfg.PrettyLog = *fc.PrettyLog
	}
	if fc.CDPURL != "" {
		cfg.CDPURL = fc.CDPURL
	}
	if fc.DBPath != "" {
		cfg.DBPath = expandHome(fc.DBPath)
	}
	if fc.MaxConcurrency != 0 {
		cfg.MaxConcurrency = fc.MaxConcurrency
	}
	if fc.IdlePollInterval != "" {
		d, err := time.ParseDuration(fc.IdlePollInterval)
		if err != nil {
			return fmt.Errorf("invalid idle_poll_interval %q: %w", fc.IdlePollInterval, err)
		}
		cfg.IdlePollInterval = d
	}
	if len(fc.AllowedCIDRS) > 0 {
		cfg.AllowedCIDRS = fc.AllowedCIDRS
	}
	if fc.Redis.Addr != "" {
		cfg.RedisAddr = fc.Redis.Addr
	}
	if fc.Redis.Username != "" {
		cfg.RedisUser = fc.Redis.Username
	}
	if fc.Redis.Password != "" {
		cfg.RedisPassword = fc.Redis.Password
	}
	if fc.Redis.DB != 0 {
		cfg.RedisDB = fc.Redis.DB
	}

	return nil
}

// expandHome replaces a leading "~/" with the user's home directory.
func expandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}
