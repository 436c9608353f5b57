package dojoauth

import (
	"errors"
	"time"
)

// Config is the full runtime configuration. Storage selects and tunes the
// durable backend; it is consumed by whoever constructs the backend (the CLI)
// and validated here so one file describes a whole deployment.
type Config struct {
	Session      SessionConfig      `yaml:"session"`
	Storage      StorageConfig      `yaml:"storage"`
	Auth         AuthConfig         `yaml:"auth"`
	Registration RegistrationConfig `yaml:"registration"`
	Audit        AuditConfig        `yaml:"audit"`
	Metrics      MetricsConfig      `yaml:"metrics"`
}

// SessionConfig controls how the session record is encoded.
type SessionConfig struct {
	Encoding   string        `yaml:"encoding"` // "json" (default) or "signed"
	SigningKey string        `yaml:"signingKey"`
	MaxAge     time.Duration `yaml:"maxAge"` // signed records only; 0 disables expiry
}

// StorageConfig selects the durable backend.
type StorageConfig struct {
	Driver      string        `yaml:"driver"` // "sqlite" (default), "redis" or "memory"
	Profile     string        `yaml:"profile"`
	Path        string        `yaml:"path"`
	RedisAddr   string        `yaml:"redisAddr"`
	RedisPrefix string        `yaml:"redisPrefix"`
	TTL         time.Duration `yaml:"ttl"`
	Sliding     bool          `yaml:"sliding"`
}

// AuthConfig selects the account backend and bounds calls to it.
type AuthConfig struct {
	Backend string        `yaml:"backend"` // "mock" (default) or "remote"
	BaseURL string        `yaml:"baseURL"`
	Timeout time.Duration `yaml:"timeout"`
}

// RegistrationConfig holds the checks applied before a registration is sent.
type RegistrationConfig struct {
	MinPasswordLength int `yaml:"minPasswordLength"`
}

// AuditConfig configures the asynchronous audit dispatcher.
type AuditConfig struct {
	Enabled    bool `yaml:"enabled"`
	BufferSize int  `yaml:"bufferSize"`
	DropIfFull bool `yaml:"dropIfFull"`
}

// MetricsConfig toggles in-process counters and the auth latency histogram.
type MetricsConfig struct {
	Enabled                 bool `yaml:"enabled"`
	EnableLatencyHistograms bool `yaml:"enableLatencyHistograms"`
}

// DefaultMinPasswordLength is the registration password floor in bytes.
const DefaultMinPasswordLength = 8

// DefaultConfig returns a configuration suitable for a local single-user run.
func DefaultConfig() Config {
	return Config{
		Session: SessionConfig{
			Encoding: "json",
		},
		Storage: StorageConfig{
			Driver:      "sqlite",
			Profile:     "default",
			Path:        "dojoauth.db",
			RedisAddr:   "127.0.0.1:6379",
			RedisPrefix: "dojo:session",
		},
		Auth: AuthConfig{
			Backend: "mock",
			Timeout: 10 * time.Second,
		},
		Registration: RegistrationConfig{
			MinPasswordLength: DefaultMinPasswordLength,
		},
		Audit: AuditConfig{
			Enabled:    true,
			BufferSize: 64,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 true,
			EnableLatencyHistograms: true,
		},
	}
}

// Validate rejects configurations the store cannot run with.
func (c *Config) Validate() error {
	switch c.Session.Encoding {
	case "json":
	case "signed":
		if len(c.Session.SigningKey) < 32 {
			return errors.New("Session SigningKey must be at least 32 bytes for signed encoding")
		}
	default:
		return errors.New("Session Encoding must be \"json\" or \"signed\"")
	}
	if c.Session.MaxAge < 0 {
		return errors.New("Session MaxAge must be >= 0")
	}

	switch c.Storage.Driver {
	case "memory":
	case "sqlite":
		if c.Storage.Path == "" {
			return errors.New("Storage Path is required for the sqlite driver")
		}
	case "redis":
		if c.Storage.RedisAddr == "" {
			return errors.New("Storage RedisAddr is required for the redis driver")
		}
	default:
		return errors.New("Storage Driver must be sqlite, redis or memory")
	}
	if c.Storage.Profile == "" {
		return errors.New("Storage Profile must not be empty")
	}
	if c.Storage.TTL < 0 {
		return errors.New("Storage TTL must be >= 0")
	}
	if c.Storage.Sliding && c.Storage.TTL == 0 {
		return errors.New("Storage Sliding requires a TTL")
	}

	switch c.Auth.Backend {
	case "mock":
	case "remote":
		if c.Auth.BaseURL == "" {
			return errors.New("Auth BaseURL is required for the remote backend")
		}
	default:
		return errors.New("Auth Backend must be mock or remote")
	}
	if c.Auth.Timeout <= 0 {
		return errors.New("Auth Timeout must be > 0")
	}

	if c.Registration.MinPasswordLength < 1 {
		return errors.New("Registration MinPasswordLength must be >= 1")
	}

	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return errors.New("Audit BufferSize must be > 0 when audit is enabled")
	}
	if c.Metrics.EnableLatencyHistograms && !c.Metrics.Enabled {
		return errors.New("Metrics EnableLatencyHistograms requires Metrics Enabled")
	}
	return nil
}
