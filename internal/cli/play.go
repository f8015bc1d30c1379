package cli

import (
	"errors"
	"fmt"
	"strings"

	"globetrotter/internal/app"
	"globetrotter/internal/domain"

	"github.com/spf13/cobra"
)

func newPlayCmd(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "play",
		Short: "Play a game in the terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer rt.Close()

			return newGameScreen(rt.ctrl, cmd.InOrStdin(), cmd.OutOrStdout(), rt.origin()).run(cmd.Context())
		},
	}
}

func newChallengeCmd(opts *Options) *cobra.Command {
	var (
		as   string
		play bool
	)
	cmd := &cobra.Command{
		Use:   "challenge <link | username [game-id]>",
		Short: "Open a challenge from a friend",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			username, gameID, err := challengeTarget(args)
			if err != nil {
				return err
			}

			rt, err := newRuntime(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer rt.Close()

			out := cmd.OutOrStdout()
			challenge, err := app.ResolveChallenge(cmd.Context(), rt.client, username, gameID)
			if errors.Is(err, domain.ErrNotFound) {
				fmt.Fprintln(out, "Could not find the challenger. The link might be invalid.")
				return nil
			}
			if err != nil {
				return err
			}
			renderChallenge(out, challenge, app.ChallengeLink(rt.origin(), username, gameID))

			screen := newGameScreen(rt.ctrl, cmd.InOrStdin(), out, rt.origin())
			if as == "" && play && rt.ctrl.Snapshot().Identity == nil {
				name, ok := screen.prompt("Enter your name to accept the challenge: ")
				if !ok {
					return nil
				}
				as = name
			}
			if as != "" {
				identity, err := rt.ctrl.AcceptChallenge(cmd.Context(), as)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Playing as %s.\n", identity.Username)
			}
			if !play {
				return nil
			}
			return screen.run(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&as, "as", "", "accept the challenge under this name")
	cmd.Flags().BoolVar(&play, "play", false, "start playing right away")
	return cmd
}

// challengeTarget accepts a full challenge link or a username with an optional game id.
func challengeTarget(args []string) (string, domain.GameID, error) {
	if len(args) == 1 && strings.Contains(args[0], "/challenge/") {
		return app.ParseChallengeLink(args[0])
	}
	var gameID domain.GameID
	if len(args) == 2 {
		gameID = domain.GameID(args[1])
	}
	return args[0], gameID, nil
}
