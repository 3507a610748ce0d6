package root

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

func newRegisterCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "register [username]",
		Short: "Register a player",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) > 1 {
				return errors.New("at most one username")
			}
			return requireUser(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			a, _, cleanup, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			var username string
			if len(args) == 1 {
				username = args[0]
			}
			created, err := a.Users.Register(cmd.Context(), flags.userID, username)
			if err != nil {
				return err
			}
			if created {
				fmt.Fprintf(cmd.OutOrStdout(), "registered user %d\n", flags.userID)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "user %d already registered\n", flags.userID)
			}
			return nil
		},
	}
}
