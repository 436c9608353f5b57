package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MrEthical07/dojoauth/authclient/directory"
	"github.com/MrEthical07/dojoauth/authserver"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func (a *app) authServerCmd() *cobra.Command {
	var (
		addr         string
		accountsPath string
		redisAddr    string
		maxAttempts  int
		window       time.Duration
		bySource     bool
	)

	cmd := &cobra.Command{
		Use:   "auth-server",
		Short: "Run the reference account backend over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var opts []directory.Option
			if redisAddr != "" {
				client := redis.NewUniversalClient(&redis.UniversalOptions{Addrs: []string{redisAddr}})
				defer client.Close()
				opts = append(opts, directory.WithRedisLimiter(client, maxAttempts, window, bySource))
			}

			dir, err := directory.New(opts...)
			if err != nil {
				return err
			}
			if accountsPath != "" {
				n, err := seedAccounts(dir, accountsPath)
				if err != nil {
					return err
				}
				a.logger.Info("seeded accounts", slog.Int("count", n))
			}

			srv := authserver.New(dir, authserver.Config{RequestTimeout: a.cfg.Auth.Timeout}, a.logger)

			ctx, stop := signal.NotifyContext(commandContext(cmd), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() { errCh <- srv.ListenAndServe(addr) }()
			a.logger.Info("auth server listening", slog.String("addr", addr))

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}
	f := cmd.Flags()
	f.StringVar(&addr, "addr", "127.0.0.1:8081", "listen address")
	f.StringVar(&accountsPath, "accounts", "", "YAML list of accounts to seed")
	f.StringVar(&redisAddr, "redis-addr", "", "Redis address for login throttling (disabled when empty)")
	f.IntVar(&maxAttempts, "max-attempts", 5, "failed logins allowed per window")
	f.DurationVar(&window, "window", 15*time.Minute, "login throttling window")
	f.BoolVar(&bySource, "by-source", false, "throttle per email and client address")
	return cmd
}

func seedAccounts(dir *directory.Directory, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open accounts: %w", err)
	}
	defer f.Close()

	var accounts []directory.Account
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&accounts); err != nil {
		return 0, fmt.Errorf("decode accounts: %w", err)
	}
	for _, acc := range accounts {
		if _, err := dir.Seed(acc); err != nil {
			return 0, fmt.Errorf("seed %s: %w", acc.Email, err)
		}
	}
	return len(accounts), nil
}
