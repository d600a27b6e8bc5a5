package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newAgentsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "agents",
		Short: "List configured debate agents",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if len(cfg.Agents) == 0 {
				fmt.Println("no agents configured")
				return nil
			}
			for _, a := range cfg.Agents {
				role := a.Role
				if role == "" {
					role = "-"
				}
				fmt.Printf("%-16s %-20s %s\n", a.ID, a.Name, role)
			}
			return nil
		},
	}
}
