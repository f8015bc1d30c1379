package cli

import (
	"fmt"
	"text/tabwriter"

	"globetrotter/internal/app"

	"github.com/spf13/cobra"
)

func newHistoryCmd(opts *Options) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List finished games and their challenge links",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer rt.Close()

			entries, err := rt.ctrl.History(cmd.Context(), limit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(out, "No finished games yet.")
				return nil
			}

			w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "GAME\tSCORE\tFINISHED\tLINK")
			for _, e := range entries {
				fmt.Fprintf(w, "%s\t%d/%d\t%s\t%s\n",
					e.GameID, e.TotalCorrect, e.TotalQuestions,
					e.FinishedAt.Local().Format("2006-01-02 15:04"),
					app.ChallengeLink(rt.origin(), e.Username, e.GameID))
			}
			return w.Flush()
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 10, "number of games to show, 0 for all")
	return cmd
}
