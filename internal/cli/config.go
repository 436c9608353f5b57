package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/MrEthical07/dojoauth"
	"gopkg.in/yaml.v3"
)

// loadConfig starts from the defaults, overlays the YAML file at path (if
// any) and then DOJOAUTH_* environment variables.
func loadConfig(path string, lookup func(string) (string, bool)) (dojoauth.Config, error) {
	cfg := dojoauth.DefaultConfig()

	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return cfg, fmt.Errorf("open config: %w", err)
		}
		defer f.Close()

		if err := decodeConfig(f, &cfg); err != nil {
			return cfg, err
		}
	}

	if err := applyEnv(&cfg, lookup); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func decodeConfig(r io.Reader, cfg *dojoauth.Config) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode config: %w", err)
	}
	return nil
}

func applyEnv(cfg *dojoauth.Config, lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	str("DOJOAUTH_SESSION_ENCODING", &cfg.Session.Encoding)
	str("DOJOAUTH_SESSION_SIGNING_KEY", &cfg.Session.SigningKey)
	str("DOJOAUTH_STORAGE_DRIVER", &cfg.Storage.Driver)
	str("DOJOAUTH_STORAGE_PROFILE", &cfg.Storage.Profile)
	str("DOJOAUTH_STORAGE_PATH", &cfg.Storage.Path)
	str("DOJOAUTH_REDIS_ADDR", &cfg.Storage.RedisAddr)
	str("DOJOAUTH_REDIS_PREFIX", &cfg.Storage.RedisPrefix)
	str("DOJOAUTH_AUTH_BACKEND", &cfg.Auth.Backend)
	str("DOJOAUTH_AUTH_BASE_URL", &cfg.Auth.BaseURL)

	if v, ok := lookup("DOJOAUTH_AUTH_TIMEOUT"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("DOJOAUTH_AUTH_TIMEOUT: %w", err)
		}
		cfg.Auth.Timeout = d
	}
	if v, ok := lookup("DOJOAUTH_STORAGE_TTL"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("DOJOAUTH_STORAGE_TTL: %w", err)
		}
		cfg.Storage.TTL = d
	}
	if v, ok := lookup("DOJOAUTH_MIN_PASSWORD_LENGTH"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("DOJOAUTH_MIN_PASSWORD_LENGTH: %w", err)
		}
		cfg.Registration.MinPasswordLength = n
	}
	if v, ok := lookup("DOJOAUTH_METRICS_ENABLED"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("DOJOAUTH_METRICS_ENABLED: %w", err)
		}
		cfg.Metrics.Enabled = b
		if !b {
			cfg.Metrics.EnableLatencyHistograms = false
		}
	}
	return nil
}
