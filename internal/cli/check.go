package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/MrEthical07/dojoauth"
	"github.com/MrEthical07/dojoauth/guard"
	"github.com/spf13/cobra"
)

func (a *app) checkCmd() *cobra.Command {
	var routesPath string

	cmd := &cobra.Command{
		Use:   "check <path>...",
		Short: "Show the guard decision for pages given the stored session",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := loadRoutes(routesPath)
			if err != nil {
				return err
			}
			policy := guard.DefaultPolicy()

			return a.withStore(cmd, func(ctx context.Context, store *dojoauth.Store) error {
				st := store.State()
				for _, p := range args {
					fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", p, table.Evaluate(policy, p, st))
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&routesPath, "routes", "", "YAML route table (default: built-in platform routes)")
	return cmd
}

func loadRoutes(path string) (*guard.Table, error) {
	if path == "" {
		return guard.DefaultTable(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open routes: %w", err)
	}
	defer f.Close()
	return guard.LoadTable(f)
}
