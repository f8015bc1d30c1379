package cli

import (
	"fmt"
	"log"

	"globetrotter/internal/app"
	"globetrotter/internal/domain"

	"github.com/spf13/cobra"
)

func newShareCmd(opts *Options) *cobra.Command {
	var qr bool
	cmd := &cobra.Command{
		Use:   "share [game-id]",
		Short: "Print a challenge link for a finished game",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer rt.Close()

			snap := rt.ctrl.Snapshot()
			if snap.Identity == nil {
				return domain.ErrNoIdentity
			}
			score := domain.Score{Correct: snap.Identity.CorrectCount, Total: snap.Identity.TotalCount}

			var gameID domain.GameID
			if len(args) == 1 {
				gameID = domain.GameID(args[0])
				if results, err := rt.client.Results(cmd.Context(), gameID); err != nil {
					log.Printf("load results for game %s: %v", gameID, err)
				} else {
					score = app.ResultsScore(results)
				}
			} else {
				entries, err := rt.ctrl.History(cmd.Context(), 1)
				if err != nil {
					return err
				}
				if len(entries) == 0 {
					return fmt.Errorf("%w: pass a game id or finish a game first", domain.ErrNoGame)
				}
				gameID = entries[0].GameID
				score = domain.Score{Correct: entries[0].TotalCorrect, Total: entries[0].TotalQuestions}
			}

			out := cmd.OutOrStdout()
			link := app.ChallengeLink(rt.origin(), snap.Identity.Username, gameID)
			renderShare(out, link, score)
			if qr {
				return renderQR(out, link)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&qr, "qr", true, "print a QR code for the link")
	return cmd
}
