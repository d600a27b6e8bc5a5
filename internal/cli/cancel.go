package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arbiterlabs/symposium/internal/engine"
)

func newCancelCmd() *cobra.Command {
	var dbPath string

	cmd := &cobra.Command{
		Use:   "cancel <session-id>",
		Short: "Cancel a running debate session",
		Long:  "Cancel marks a non-terminal session as cancelled. A running debate notices at its next round boundary.",
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

			o := engine.New(engine.Deps{Sink: ds, Log: log})
			if err := o.Cancel(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Printf("session %s cancelled\n", args[0])
			return nil
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "", "sqlite database path (overrides config)")
	return cmd
}
