// Package cli implements the symposium command line interface.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/arbiterlabs/symposium/internal/config"
	"github.com/arbiterlabs/symposium/internal/logging"
)

var (
	cfgFile  string
	logLevel string

	// loaded at init time
	paths config.Paths
	log   *logging.Logger
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "symposium",
		Short: "Symposium is a multi-agent debate orchestration engine",
		Long:  "Symposium runs structured multi-round debates between LLM agents and synthesizes a conclusion from the transcript.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			paths, err = config.ResolvePaths()
			if err != nil {
				return err
			}
			if cfgFile != "" {
				paths.Config = cfgFile
			}
			level := logLevel
			if level == "" {
				level = "info"
			}
			log = logging.New(nil, level, "pretty")
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ~/.symposium/config.yaml)")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (trace, debug, info, warn, error, fatal, silent)")

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newRunCmd())
	cmd.AddCommand(newSessionsCmd())
	cmd.AddCommand(newShowCmd())
	cmd.AddCommand(newCancelCmd())
	cmd.AddCommand(newAgentsCmd())
	cmd.AddCommand(newConfigCmd())

	return cmd
}

// Execute runs the root command.
func Execute() error {
	return newRootCmd().Execute()
}

// loadConfig loads the config file and rebuilds the logger with the
// configured style. The --log-level flag wins over the config level.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(paths.Config)
	if err != nil {
		return cfg, err
	}
	level := logLevel
	if level == "" {
		level = cfg.Logging.Level
	}
	log = logging.New(nil, level, cfg.Logging.Style)
	return cfg, nil
}
