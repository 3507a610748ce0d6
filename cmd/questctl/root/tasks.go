package root

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"quest-tracker/internal/service"
)

func newAddCmd(flags *globalFlags) *cobra.Command {
	var xp int
	var remind string

	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Add a task",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("title is required")
			}
			return requireUser(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			in := service.CreateTaskInput{
				UserID: flags.userID,
				Title:  args[0],
				XP:     xp,
			}
			if remind != "" {
				at, err := time.Parse(time.RFC3339, remind)
				if err != nil {
					return fmt.Errorf("--remind must be RFC3339: %w", err)
				}
				in.RemindAt = &at
			}

			a, _, cleanup, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			id, err := a.Tasks.CreateTask(cmd.Context(), in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "added task #%d\n", id)
			return nil
		},
	}

	cmd.Flags().IntVar(&xp, "xp", 0, "XP reward (defaults to 10)")
	cmd.Flags().StringVar(&remind, "remind", "", "Reminder time (RFC3339)")
	return cmd
}

func newListCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the user's tasks",
		Args: func(cmd *cobra.Command, args []string) error {
			return requireUser(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			a, _, cleanup, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			tasks, err := a.Tasks.ListTasks(cmd.Context(), flags.userID)
			if err != nil {
				return err
			}
			if len(tasks) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no tasks")
				return nil
			}
			for _, task := range tasks {
				mark := " "
				if task.IsDone {
					mark = "x"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "[%s] #%d %s (%d xp)\n", mark, task.ID, task.Title, task.XP)
			}
			return nil
		},
	}
}

func newDoneCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "done <task-id>",
		Short: "Complete a task",
		Args: func(cmd *cobra.Command, args []string) error {
			if err := idArg("task id")(cmd, args); err != nil {
				return err
			}
			return requireUser(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			taskID, _ := strconv.ParseInt(args[0], 10, 64)

			a, _, cleanup, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			c, err := a.Progression.CompleteTask(cmd.Context(), flags.userID, taskID)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "+%d xp (total %d)\n", c.XPGained, c.TotalXP)
			if c.LeveledUp {
				fmt.Fprintf(cmd.OutOrStdout(), "level up! now level %d\n", c.NewLevel)
			}
			return nil
		},
	}
}

func newRmCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <task-id>",
		Short: "Delete a task",
		Args: func(cmd *cobra.Command, args []string) error {
			if err := idArg("task id")(cmd, args); err != nil {
				return err
			}
			return requireUser(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			taskID, _ := strconv.ParseInt(args[0], 10, 64)

			a, _, cleanup, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			removed, err := a.Tasks.DeleteTask(cmd.Context(), flags.userID, taskID)
			if err != nil {
				return err
			}
			if removed {
				fmt.Fprintf(cmd.OutOrStdout(), "deleted task #%d\n", taskID)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "task #%d not found\n", taskID)
			}
			return nil
		},
	}
}
