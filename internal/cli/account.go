package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newLoginCmd(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "login <username>",
		Short: "Create or resume a player",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer rt.Close()

			identity, err := rt.ctrl.Login(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s (%d/%d)\n", identity.Username, identity.CorrectCount, identity.TotalCount)
			return nil
		},
	}
}

func newWhoamiCmd(opts *Options) *cobra.Command {
	var refresh bool
	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the current player and score",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer rt.Close()

			if refresh {
				if _, err := rt.ctrl.RefreshIdentity(cmd.Context()); err != nil {
					return err
				}
			}
			snap := rt.ctrl.Snapshot()
			if snap.Identity == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "Not logged in.")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%d/%d)\n", snap.Identity.Username, snap.Identity.CorrectCount, snap.Identity.TotalCount)
			return nil
		},
	}
	cmd.Flags().BoolVar(&refresh, "refresh", false, "refetch the score from the backend")
	return cmd
}

func newLogoutCmd(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the current player",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer rt.Close()

			if err := rt.ctrl.Logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out.")
			return nil
		},
	}
}
