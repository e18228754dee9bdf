package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/templui/blogapi/cmd/blogctl/cmd"
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "blogctl",
		Short:        "Maintenance tools for the blog API",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(cmd.CleanupImagesCmd())
	rootCmd.AddCommand(cmd.MigrateCmd())
	rootCmd.AddCommand(cmd.UserCmd())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
