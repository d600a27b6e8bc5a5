package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/arbiterlabs/symposium/internal/domain"
	"github.com/arbiterlabs/symposium/internal/engine"
)

func newShowCmd() *cobra.Command {
	var (
		dbPath     string
		transcript bool
	)

	cmd := &cobra.Command{
		Use:   "show <session-id>",
		Short: "Show a session's status, conclusion, and optionally its transcript",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			ds, cleanup, err := openStore(cfg, dbPath)
			if err != nil {
				return err
			}
			defer cleanup()

			id := args[0]
			session, err := ds.GetSession(cmd.Context(), id)
			if err != nil {
				return err
			}
			count, err := ds.MessageCount(cmd.Context(), id)
			if err != nil {
				return err
			}
			report, err := engine.Report(cmd.Context(), ds, id, count, time.Now())
			if err != nil {
				return err
			}

			fmt.Printf("Session:   %s\n", session.ID)
			fmt.Printf("Topic:     %s\n", session.Topic)
			fmt.Printf("Status:    %s\n", report.Status)
			fmt.Printf("Progress:  %.1f%% (round %d of %d)\n", report.Progress, report.CurrentRound, report.TotalRounds)
			fmt.Printf("Messages:  %d\n", report.MessageCount)
			if session.ModeratorID != "" {
				fmt.Printf("Moderator: %s\n", session.ModeratorID)
			}
			if !report.EstimatedCompletion.IsZero() {
				fmt.Printf("Estimated completion: %s\n", report.EstimatedCompletion.Local().Format(time.RFC1123))
			}

			if transcript {
				msgs, err := ds.Messages(cmd.Context(), id)
				if err != nil {
					return err
				}
				printTranscript(msgs)
			}

			if session.Conclusion != nil {
				printConclusion(session.Conclusion)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "", "sqlite database path (overrides config)")
	cmd.Flags().BoolVarP(&transcript, "transcript", "t", false, "print the full transcript")
	return cmd
}

func printTranscript(msgs []domain.Message) {
	round := 0
	for _, m := range msgs {
		if m.Round != round {
			round = m.Round
			fmt.Printf("\n===== Round %d =====\n", round)
		}
		printTurn(m)
	}
}
