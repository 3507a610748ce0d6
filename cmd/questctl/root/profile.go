package root

import (
	"fmt"

	"github.com/spf13/cobra"

	"quest-tracker/internal/domain"
)

func newProfileCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "profile",
		Short: "Show a player's level and experience",
		Args: func(cmd *cobra.Command, args []string) error {
			return requireUser(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			a, _, cleanup, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			u, err := a.Users.Get(cmd.Context(), flags.userID)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s\n", u.Username)
			fmt.Fprintf(out, "level: %d\n", u.Level)
			fmt.Fprintf(out, "xp: %d (next level at %d)\n", u.XP, u.Level*domain.XPPerLevel)
			fmt.Fprintf(out, "tasks completed: %d\n", u.TasksCompleted)
			return nil
		},
	}
}

func newTopCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "top",
		Short: "Show the leaderboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, _, cleanup, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			entries, err := a.Leaderboard.Top(cmd.Context(), limit)
			if err != nil {
				return err
			}
			for i, e := range entries {
				fmt.Fprintf(cmd.OutOrStdout(), "%d. %s  lvl %d  %d xp  %d done\n", i+1, e.Username, e.Level, e.XP, e.TasksCompleted)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", domain.DefaultLeaderboardLimit, "Number of players to show")
	return cmd
}
