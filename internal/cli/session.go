package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/MrEthical07/dojoauth"
	"github.com/MrEthical07/dojoauth/session"
	"github.com/bytedance/sonic"
	"github.com/spf13/cobra"
)

func (a *app) loginCmd() *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				password = os.Getenv("DOJOAUTH_PASSWORD")
			}
			return a.withStore(cmd, func(ctx context.Context, store *dojoauth.Store) error {
				sess, err := store.Login(ctx, email, password)
				if err != nil {
					return explain("login", err)
				}
				printSession(cmd.OutOrStdout(), sess)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&email, "email", "e", "", "account email")
	cmd.Flags().StringVarP(&password, "password", "p", "", "account password (or DOJOAUTH_PASSWORD)")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func (a *app) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Clear the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(cmd, func(ctx context.Context, store *dojoauth.Store) error {
				if err := store.Logout(ctx); err != nil {
					return explain("logout", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), "signed out")
				return nil
			})
		},
	}
}

func (a *app) whoamiCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(cmd, func(ctx context.Context, store *dojoauth.Store) error {
				st := store.State()
				out := cmd.OutOrStdout()
				if asJSON {
					data, err := sonic.Marshal(st.Session)
					if err != nil {
						return err
					}
					fmt.Fprintln(out, string(data))
					return nil
				}
				if !st.Authenticated {
					fmt.Fprintln(out, "not signed in")
					return nil
				}
				printSession(out, st.Session)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the session as JSON (null when signed out)")
	return cmd
}

func (a *app) registerCmd() *cobra.Command {
	var form dojoauth.RegistrationForm
	var kind string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and sign in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			form.AccountKind = session.AccountKind(kind)
			if err := form.Validate(); err != nil {
				return explain("register", err)
			}
			return a.withStore(cmd, func(ctx context.Context, store *dojoauth.Store) error {
				sess, err := store.Register(ctx, form.Input())
				if err != nil {
					return explain("register", err)
				}
				printSession(cmd.OutOrStdout(), sess)
				return nil
			})
		},
	}
	f := cmd.Flags()
	f.StringVar(&form.Name, "name", "", "full name")
	f.StringVarP(&form.Email, "email", "e", "", "account email")
	f.StringVarP(&form.Password, "password", "p", "", "password")
	f.StringVar(&form.ConfirmPassword, "confirm", "", "password confirmation")
	f.StringVar(&kind, "kind", string(session.KindIndividual), "individual-collaborator or company-account")
	f.StringVar(&form.OrganizationName, "org", "", "organization name (company accounts)")
	return cmd
}

func (a *app) inviteCmd() *cobra.Command {
	var role string
	var paths []string

	cmd := &cobra.Command{
		Use:   "invite <email>",
		Short: "Invite a collaborator on behalf of the signed-in user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(cmd, func(ctx context.Context, store *dojoauth.Store) error {
				id, err := store.SendInvite(ctx, args[0], session.Role(role), paths...)
				if err != nil {
					return explain("invite", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "invite %s sent to %s\n", id, args[0])
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&role, "role", string(session.RoleCollaborator), "admin, manager or collaborator")
	cmd.Flags().StringSliceVar(&paths, "path", nil, "training path id (repeatable)")
	return cmd
}

func printSession(w io.Writer, s *session.Session) {
	fmt.Fprintf(w, "%s <%s>\n", s.DisplayName, s.Email)
	fmt.Fprintf(w, "  user:  %s\n", s.UserID)
	fmt.Fprintf(w, "  kind:  %s\n", s.AccountKind)
	fmt.Fprintf(w, "  role:  %s\n", s.Role)
	if s.OrganizationName != "" {
		fmt.Fprintf(w, "  org:   %s\n", s.OrganizationName)
	}
}

// explain prefixes err with the operation and a retry hint where one helps.
func explain(op string, err error) error {
	var verr *dojoauth.ValidationError
	switch {
	case errors.As(err, &verr):
		return fmt.Errorf("%s: %s %s", op, verr.Field, verr.Reason)
	case dojoauth.Retryable(err):
		return fmt.Errorf("%s: %w (try again)", op, err)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
