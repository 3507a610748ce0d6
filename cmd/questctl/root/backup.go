package root

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"quest-tracker/internal/app"
	"quest-tracker/internal/backup"
	"quest-tracker/internal/config"
	"quest-tracker/internal/storage"
)

func openBackup(ctx context.Context, a *app.App, cfg config.Config) (*backup.Service, error) {
	store, err := storage.NewS3ServiceFromConfig(ctx, storage.S3Config{
		Region:   cfg.Storage.Region,
		Endpoint: cfg.Storage.Endpoint,
		Profile:  cfg.AWS.Profile,
	})
	if err != nil {
		return nil, err
	}
	return backup.NewService(a.DB, store, backup.Config{
		Bucket:    cfg.Storage.Bucket,
		KeyPrefix: cfg.Storage.KeyPrefix,
		Logger:    a.Logger,
	})
}

func newBackupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "backup",
		Short: "Snapshot the store and upload it to S3",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, cfg, cleanup, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			svc, err := openBackup(cmd.Context(), a, cfg)
			if err != nil {
				return err
			}
			location, err := svc.Run(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "uploaded %s\n", location)
			return nil
		},
	}
}

func newBackupsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "backups",
		Short: "List uploaded snapshots",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, cfg, cleanup, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			svc, err := openBackup(cmd.Context(), a, cfg)
			if err != nil {
				return err
			}
			objects, err := svc.List(cmd.Context())
			if err != nil {
				return err
			}
			for _, obj := range objects {
				modified := "-"
				if obj.LastModified != nil {
					modified = obj.LastModified.Format("2006-01-02 15:04:05")
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d\t%s\n", obj.Key, obj.Size, modified)
			}
			return nil
		},
	}
}
