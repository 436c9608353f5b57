package cli

import (
	"context"
	"log/slog"
	"os"

	"github.com/MrEthical07/dojoauth"
	"github.com/MrEthical07/dojoauth/internal/logging"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

type app struct {
	configPath string
	logLevel   string
	logFormat  string

	cfg    dojoauth.Config
	logger *slog.Logger
}

// NewRootCmd returns the dojoauth command tree.
func NewRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "dojoauth",
		Short:         "Session store and route guard for the training platform",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := godotenv.Overload(); err != nil && !os.IsNotExist(err) {
				slog.Warn("could not load .env", slog.Any("error", err))
			}

			a.logger = logging.Setup(a.logLevel, a.logFormat)

			cfg, err := loadConfig(a.configPath, os.LookupEnv)
			if err != nil {
				return err
			}
			a.cfg = cfg
			return nil
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&a.configPath, "config", "c", os.Getenv("DOJOAUTH_CONFIG"), "YAML config file")
	flags.StringVar(&a.logLevel, "log-level", "warn", "debug, info, warn or error")
	flags.StringVar(&a.logFormat, "log-format", "text", "text or json")

	root.AddCommand(
		a.loginCmd(),
		a.logoutCmd(),
		a.whoamiCmd(),
		a.registerCmd(),
		a.inviteCmd(),
		a.checkCmd(),
		a.serveCmd(),
		a.authServerCmd(),
	)
	return root
}

// Execute runs the command tree against the process arguments.
func Execute(ctx context.Context) error {
	return NewRootCmd().ExecuteContext(ctx)
}

// withStore opens the configured store for the duration of fn.
func (a *app) withStore(cmd *cobra.Command, fn func(ctx context.Context, store *dojoauth.Store) error) error {
	ctx := commandContext(cmd)
	store, err := openStore(ctx, a.cfg, a.logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			a.logger.Warn("close store", slog.Any("error", err))
		}
	}()
	return fn(ctx, store)
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
