package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tatianab/dice-battle/internal/models"
)

func (a *app) newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [transcript]",
		Short: "List saved games or print one transcript",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if len(args) == 0 {
				names, err := models.ListTranscripts()
				if err != nil {
					return err
				}
				if len(names) == 0 {
					fmt.Fprintf(out, "No saved games in %s\n", models.SaveDir)
					return nil
				}
				for _, name := range names {
					t, err := models.LoadTranscript(name)
					if err != nil {
						fmt.Fprintf(out, "%s  (unreadable: %v)\n", name, err)
						continue
					}
					fmt.Fprintf(out, "%s  %2d rounds  winner %-10s %s\n", name, t.Summary.Rounds, t.Summary.Winner, t.Summary.Reason)
				}
				return nil
			}

			t, err := models.LoadTranscript(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Session %s: %d rounds, %s. Winner: %s\n\n", t.Summary.SessionID, t.Summary.Rounds, t.Summary.Reason, t.Summary.Winner)
			round := 0
			for _, ev := range t.Events {
				if ev.Round != round {
					round = ev.Round
					fmt.Fprintf(out, "--- Round %d ---\n", round)
				}
				fmt.Fprintln(out, ev.Line)
			}
			fmt.Fprintln(out, "\nStandings:")
			for _, r := range t.Standings {
				fmt.Fprintf(out, "  %d. %-10s %2d VP %2d HP\n", r.Rank, r.PlayerName, r.VPCount, r.HP)
			}
			return nil
		},
	}
	return cmd
}
