package cmd

import (
	"context"
	"database/sql"
	"fmt"
	"path"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/templui/blogapi/internal/db"
)

func MigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migration commands",
	}

	cmd.AddCommand(migrateStep("up", "Apply all pending migrations",
		func(ctx context.Context, _ *cobra.Command, conn *sql.DB, driver string) error {
			return db.RunMigrations(ctx, conn, driver)
		}))
	cmd.AddCommand(migrateStep("down", "Roll back the most recent migration",
		func(ctx context.Context, _ *cobra.Command, conn *sql.DB, driver string) error {
			return db.MigrateDown(ctx, conn, driver)
		}))
	cmd.AddCommand(migrateStep("status", "Show the applied state of every migration", printStatus))
	return cmd
}

type migrateFunc func(ctx context.Context, cmd *cobra.Command, conn *sql.DB, driver string) error

func migrateStep(use, short string, run migrateFunc) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, database, err := openDB()
			if err != nil {
				return err
			}
			defer func() { _ = db.Close(database) }()

			return run(cmd.Context(), cmd, database.DB, cfg.DBDriver)
		},
	}
}

func printStatus(ctx context.Context, cmd *cobra.Command, conn *sql.DB, driver string) error {
	statuses, err := db.MigrationStatus(ctx, conn, driver)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "VERSION\tSTATE\tAPPLIED AT\tFILE")
	for _, s := range statuses {
		applied := "-"
		if !s.AppliedAt.IsZero() {
			applied = s.AppliedAt.Format("2006-01-02 15:04:05")
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", s.Source.Version, s.State, applied, path.Base(s.Source.Path))
	}
	return w.Flush()
}
