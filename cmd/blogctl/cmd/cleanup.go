package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/templui/blogapi/internal/db"
	"github.com/templui/blogapi/internal/logger"
	"github.com/templui/blogapi/internal/repository"
	"github.com/templui/blogapi/internal/service"
	"github.com/templui/blogapi/internal/storage"
)

func CleanupImagesCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "cleanup-images",
		Short: "Delete stored post images that no post references",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, database, err := openDB()
			if err != nil {
				return err
			}
			defer func() { _ = db.Close(database) }()
			defer logger.Flush()

			fileStorage, err := storage.New(cmd.Context(), cfg)
			if err != nil {
				return fmt.Errorf("failed to initialize storage: %w", err)
			}

			cleanup := service.NewCleanupService(fileStorage, repository.NewBlogRepository(database, cfg.DBAcquireTimeout))
			report, err := cleanup.Run(cmd.Context())
			if err != nil {
				return err
			}

			if asJSON {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(report)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "scanned %d, referenced %d, deleted %d, failed %d\n",
				report.Scanned, report.Referenced, report.Deleted, report.Failed)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the report as JSON")
	return cmd
}
