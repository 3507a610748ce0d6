package root

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"quest-tracker/internal/app"
	"quest-tracker/internal/config"
)

const Version = "0.1.0"

type globalFlags struct {
	userID int64
}

// NewRootCmd builds the questctl command tree.
func NewRootCmd() *cobra.Command {
	flags := &globalFlags{}

	cmd := &cobra.Command{
		Use:           "questctl",
		Short:         "Manage quests, experience and levels",
		Long:          "questctl drives the quest store directly: register players, add and complete tasks, inspect the leaderboard and ship backups.",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetVersionTemplate("{{.Name}} v{{.Version}}\n")
	cmd.PersistentFlags().Int64VarP(&flags.userID, "user", "u", 0, "User ID")

	cmd.AddCommand(
		newInitCmd(),
		newRegisterCmd(flags),
		newAddCmd(flags),
		newListCmd(flags),
		newDoneCmd(flags),
		newRmCmd(flags),
		newProfileCmd(flags),
		newTopCmd(),
		newBackupCmd(),
		newBackupsCmd(),
	)
	return cmd
}

func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error: "+err.Error())
		os.Exit(1)
	}
}

// openApp loads configuration and initializes the store for one command.
func openApp(ctx context.Context) (*app.App, config.Config, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, cfg, nil, err
	}
	logger := app.NewLogger(cfg.Log.Level)

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		return nil, cfg, nil, err
	}
	cleanup := func() {
		_ = a.Close()
	}
	return a, cfg, cleanup, nil
}

// requireUser checks that --user was given. Any integer, zero included, is
// a valid id.
func requireUser(cmd *cobra.Command) error {
	if !cmd.Flags().Changed("user") {
		return errors.New("--user is required")
	}
	return nil
}

func idArg(name string) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) != 1 {
			return fmt.Errorf("%s is required", name)
		}
		if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
			return fmt.Errorf("%s must be an integer", name)
		}
		return nil
	}
}
