package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arbiterlabs/symposium/internal/config"
	"github.com/arbiterlabs/symposium/internal/store"
)

func newSessionsCmd() *cobra.Command {
	var dbPath string

	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "List stored debate sessions",
		Args:  cobra.NoArgs,
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

			sessions, err := ds.ListSessions(cmd.Context())
			if err != nil {
				return err
			}
			if len(sessions) == 0 {
				fmt.Println("no sessions")
				return nil
			}

			for _, s := range sessions {
				fmt.Printf("%s  %-9s  %5.1f%%  %d rounds  %s  %s\n",
					s.ID, s.Status, s.Progress, s.Rounds,
					s.CreatedAt.Local().Format("2006-01-02 15:04"), s.Topic)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "", "sqlite database path (overrides config)")
	return cmd
}

// openStore opens the SQLite store. Unlike openSink there is no in-memory
// fallback: the read commands only make sense against persisted sessions.
func openStore(cfg config.Config, override string) (*store.DebateStore, func(), error) {
	path := cfg.Store.Path
	if override != "" {
		path = override
	}
	if path == "" {
		return nil, nil, fmt.Errorf("no store configured: set store.path in %s or pass --db", paths.Config)
	}

	db, err := store.Open(path, log)
	if err != nil {
		return nil, nil, err
	}
	return store.NewDebateStore(db), func() { db.Close() }, nil
}
