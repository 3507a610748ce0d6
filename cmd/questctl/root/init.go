package root

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the quest store if it does not exist",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, cfg, cleanup, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			fmt.Fprintf(cmd.OutOrStdout(), "store ready at %s\n", cfg.Database.Path)
			return nil
		},
	}
}
