package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/MrEthical07/dojoauth"
	"github.com/MrEthical07/dojoauth/authclient"
	"github.com/MrEthical07/dojoauth/authclient/mock"
	"github.com/MrEthical07/dojoauth/authclient/remote"
	"github.com/MrEthical07/dojoauth/storage"
	"github.com/MrEthical07/dojoauth/storage/redisstore"
	"github.com/MrEthical07/dojoauth/storage/sqlitestore"
	"github.com/redis/go-redis/v9"
)

func openBackend(cfg dojoauth.StorageConfig) (storage.Backend, error) {
	switch cfg.Driver {
	case "memory":
		return storage.NewMemory(), nil
	case "sqlite":
		return sqlitestore.Open(cfg.Path, cfg.Profile)
	case "redis":
		client := redis.NewUniversalClient(&redis.UniversalOptions{
			Addrs: []string{cfg.RedisAddr},
		})
		backend, err := redisstore.New(client, redisstore.Config{
			Prefix:  cfg.RedisPrefix,
			Name:    cfg.Profile,
			TTL:     cfg.TTL,
			Sliding: cfg.Sliding,
		})
		if err != nil {
			client.Close()
			return nil, err
		}
		return backend, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

func newAuthClient(cfg dojoauth.AuthConfig) (authclient.Client, error) {
	switch cfg.Backend {
	case "mock":
		return mock.New(), nil
	case "remote":
		return remote.New(cfg.BaseURL, remote.WithTimeout(cfg.Timeout))
	default:
		return nil, fmt.Errorf("unknown auth backend %q", cfg.Backend)
	}
}

// openStore builds and initializes a Store for cfg. The caller must Close it.
func openStore(ctx context.Context, cfg dojoauth.Config, logger *slog.Logger) (*dojoauth.Store, error) {
	backend, err := openBackend(cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}
	client, err := newAuthClient(cfg.Auth)
	if err != nil {
		backend.Close()
		return nil, fmt.Errorf("auth client: %w", err)
	}

	b := dojoauth.New().
		WithConfig(cfg).
		WithBackend(backend).
		WithAuthClient(client).
		WithLogger(logger)
	if cfg.Audit.Enabled {
		b = b.WithAuditSink(dojoauth.NewSlogSink(logger))
	}
	store, err := b.Build()
	if err != nil {
		backend.Close()
		return nil, err
	}

	store.Initialize(ctx)
	return store, nil
}
