package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix of environment overrides (LEADBOARD_API_BASE_URL, ...)
const EnvPrefix = "LEADBOARD"

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Backend   BackendConfig   `yaml:"backend"`
	LeadSwift LeadSwiftConfig `yaml:"leadswift"`
	Auth      AuthConfig      `yaml:"auth"`
	Storage   StorageConfig   `yaml:"storage"`
	Logging   LoggingConfig   `yaml:"logging"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	CORS      CORSConfig      `yaml:"cors"`
	Mailbox   MailboxConfig   `yaml:"mailbox"`
}

type ServerConfig struct {
	ListenAddr string    `yaml:"listen_addr"`
	TLS        TLSConfig `yaml:"tls"`
	// AllowedIPs restricts the panel to these addresses or CIDRs; empty allows all
	AllowedIPs []string `yaml:"allowed_ips"`
	// Timezone of displayed timestamps and date filters
	Timezone string `yaml:"timezone"`
	// PhoneRegion is the default region of phone numbers without a country code
	PhoneRegion string `yaml:"phone_region"`
}

type TLSConfig struct {
	Enabled  bool   `yaml:"enabled"`
	CertFile string `yaml:"cert_file"`
	KeyFile  string `yaml:"key_file"`
}

// BackendConfig points at the outreach REST API
type BackendConfig struct {
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`
}

// LeadSwiftConfig points at the external lead-discovery service.
// Both fields are optional; search pages report a configuration error when unset.
type LeadSwiftConfig struct {
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`
}

type AuthConfig struct {
	SessionSecret string        `yaml:"session_secret"`
	SessionTTL    time.Duration `yaml:"session_ttl"`
	CookieName    string        `yaml:"cookie_name"`
	CookieSecure  bool          `yaml:"cookie_secure"`
	// Login attempts allowed per client IP
	LoginRateMinute int `yaml:"login_rate_minute"`
	LoginRateHour   int `yaml:"login_rate_hour"`
}

type StorageConfig struct {
	SessionPath string `yaml:"session_path"`
	AuditPath   string `yaml:"audit_path"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// MailboxConfig controls sales-team mailbox checks
type MailboxConfig struct {
	HelloName   string        `yaml:"hello_name"`
	DialTimeout time.Duration `yaml:"dial_timeout"`
}

// envOverrides holds values that may come from the environment or a .env file
type envOverrides struct {
	ListenAddr       string `envconfig:"LISTEN_ADDR"`
	APIBaseURL       string `envconfig:"API_BASE_URL"`
	APIKey           string `envconfig:"API_KEY"`
	LeadSwiftBaseURL string `envconfig:"LEADSWIFT_BASE_URL"`
	LeadSwiftAPIKey  string `envconfig:"LEADSWIFT_API_KEY"`
	SessionSecret    string `envconfig:"SESSION_SECRET"`
	LogLevel         string `envconfig:"LOG_LEVEL"`
}

// Load reads the YAML configuration file, applies environment overrides
// and defaults, and validates the result. A missing file is allowed when
// the environment provides the required values.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	case errors.Is(err, os.ErrNotExist):
		// environment-only configuration
	default:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}

	setDefaults(cfg)

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// applyEnv loads an optional .env file and overrides config values from LEADBOARD_* variables
func applyEnv(cfg *Config) error {
	// .env is optional
	_ = godotenv.Load()

	var env envOverrides
	if err := envconfig.Process(EnvPrefix, &env); err != nil {
		return fmt.Errorf("failed to read environment: %w", err)
	}

	override(&cfg.Server.ListenAddr, env.ListenAddr)
	override(&cfg.Backend.BaseURL, env.APIBaseURL)
	override(&cfg.Backend.APIKey, env.APIKey)
	override(&cfg.LeadSwift.BaseURL, env.LeadSwiftBaseURL)
	override(&cfg.LeadSwift.APIKey, env.LeadSwiftAPIKey)
	override(&cfg.Auth.SessionSecret, env.SessionSecret)
	override(&cfg.Logging.Level, env.LogLevel)
	return nil
}

func override(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setDefaults(cfg *Config) {
	if cfg.Server.ListenAddr == "" {
		cfg.Server.ListenAddr = ":8090"
	}
	if cfg.Server.Timezone == "" {
		cfg.Server.Timezone = "UTC"
	}
	if cfg.Server.PhoneRegion == "" {
		cfg.Server.PhoneRegion = "US"
	}
	if cfg.Backend.BaseURL == "" {
		cfg.Backend.BaseURL = "http://localhost:3000/api"
	}
	if cfg.Auth.SessionTTL == 0 {
		cfg.Auth.SessionTTL = 7 * 24 * time.Hour
	}
	if cfg.Auth.LoginRateMinute == 0 {
		cfg.Auth.LoginRateMinute = 10
	}
	if cfg.Auth.LoginRateHour == 0 {
		cfg.Auth.LoginRateHour = 100
	}
	if cfg.Auth.CookieName == "" {
		cfg.Auth.CookieName = "leadboard_session"
	}
	if cfg.Storage.SessionPath == "" {
		cfg.Storage.SessionPath = "/var/lib/leadboard/sessions.db"
	}
	if cfg.Storage.AuditPath == "" {
		cfg.Storage.AuditPath = "/var/lib/leadboard/audit.db"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = "/metrics"
	}
	if cfg.Mailbox.HelloName == "" {
		cfg.Mailbox.HelloName = "localhost"
	}
	if cfg.Mailbox.DialTimeout == 0 {
		cfg.Mailbox.DialTimeout = 10 * time.Second
	}
}

func validate(cfg *Config) error {
	if cfg.Auth.SessionSecret == "" {
		return fmt.Errorf("auth.session_secret is required")
	}
	if len(cfg.Auth.SessionSecret) < 32 {
		return fmt.Errorf("auth.session_secret must be at least 32 characters")
	}
	if err := validateURL("backend.base_url", cfg.Backend.BaseURL); err != nil {
		return err
	}
	if cfg.LeadSwift.BaseURL != "" {
		if err := validateURL("leadswift.base_url", cfg.LeadSwift.BaseURL); err != nil {
			return err
		}
	}
	if cfg.Server.TLS.Enabled {
		if cfg.Server.TLS.CertFile == "" || cfg.Server.TLS.KeyFile == "" {
			return fmt.Errorf("server.tls.cert_file and server.tls.key_file are required when TLS is enabled")
		}
	}
	if _, err := time.LoadLocation(cfg.Server.Timezone); err != nil {
		return fmt.Errorf("server.timezone: %w", err)
	}
	switch cfg.Logging.Format {
	case "json", "text":
	default:
		return fmt.Errorf("logging.format must be json or text, got %q", cfg.Logging.Format)
	}
	return nil
}

func validateURL(field, raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%s is not a valid URL: %w", field, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%s must use http or https", field)
	}
	if u.Host == "" {
		return fmt.Errorf("%s must include a host", field)
	}
	return nil
}

// LeadSwiftConfigured reports whether the external search service can be used
func (c *Config) LeadSwiftConfigured() bool {
	return c.LeadSwift.BaseURL != "" && c.LeadSwift.APIKey != ""
}

// Location returns the display time zone
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Server.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Redact hides a secret for display, keeping only its length hint
func Redact(secret string) string {
	if secret == "" {
		return "(not set)"
	}
	if len(secret) <= 4 {
		return "****"
	}
	return secret[:2] + "****" + secret[len(secret)-2:]
}
