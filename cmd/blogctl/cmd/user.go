package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"github.com/templui/blogapi/internal/db"
	"github.com/templui/blogapi/internal/repository"
	"github.com/templui/blogapi/internal/validation"
)

func UserCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Account administration",
	}

	cmd.AddCommand(userActiveCmd("disable", "Disable an account; its tokens stop working immediately", false))
	cmd.AddCommand(userActiveCmd("enable", "Re-enable a disabled account", true))
	return cmd
}

func userActiveCmd(use, short string, active bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <email>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, database, err := openDB()
			if err != nil {
				return err
			}
			defer func() { _ = db.Close(database) }()

			users := repository.NewUserRepository(database, cfg.DBAcquireTimeout)
			return setUserActive(cmd.Context(), cmd.OutOrStdout(), users, args[0], active)
		},
	}
}

func setUserActive(ctx context.Context, out io.Writer, users repository.UserRepository, email string, active bool) error {
	user, err := users.ByEmail(ctx, validation.NormalizeEmail(email))
	if errors.Is(err, repository.ErrUserNotFound) {
		return fmt.Errorf("no user with email %q", email)
	}
	if err != nil {
		return fmt.Errorf("failed to find user: %w", err)
	}

	state := "disabled"
	if active {
		state = "enabled"
	}
	if user.IsActive == active {
		fmt.Fprintf(out, "%s is already %s\n", user.Email, state)
		return nil
	}

	err = users.SetActive(ctx, user.ID, active, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}

	fmt.Fprintf(out, "%s %s\n", user.Email, state)
	return nil
}
