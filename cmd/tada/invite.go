// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TADA Contributors

package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/cminter/TADA/internal/auth"
	authpg "github.com/cminter/TADA/internal/auth/postgres"
	"github.com/cminter/TADA/internal/config"
	"github.com/cminter/TADA/internal/store"
)

// NewInviteCmd creates the invite subcommand.
func NewInviteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "invite <user_id>",
		Short: "Issue an invite code for a new account",
		Long: `Issue an invite code reserving the given account name.

The code is printed once; hand it to the prospective player, who supplies
it alongside their chosen password on first login.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInvite(cmd, args[0])
		},
	}

	cmd.Flags().String("database.url", config.Default().Database.URL, "PostgreSQL connection URL")

	return cmd
}

func runInvite(cmd *cobra.Command, userID string) error {
	cfg, err := config.Load(configFile, cmd.Flags())
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	pool, err := store.NewPool(ctx, cfg.Database.URL)
	if err != nil {
		return err
	}
	defer pool.Close()

	repo := authpg.NewInviteRepository(pool)

	// Re-running the command for the same account re-prints the pending code.
	existing, err := repo.Get(ctx, userID)
	if err == nil {
		cmd.Printf("Invite for %s already pending: %s\n", existing.UserID, existing.Code)
		return nil
	}
	if !errors.Is(err, auth.ErrNotFound) {
		return err
	}

	invite, err := auth.NewInvite(userID)
	if err != nil {
		return err
	}
	if err := repo.Create(ctx, invite); err != nil {
		return err
	}

	cmd.Printf("Invite for %s: %s\n", invite.UserID, invite.Code)
	return nil
}
