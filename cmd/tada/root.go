// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TADA Contributors

package main

import (
	"github.com/spf13/cobra"
)

// Global flags available to all subcommands.
var configFile string

// NewRootCmd creates the root command for the TADA CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tada",
		Short: "TADA - a small multi-user text-game server",
		Long: `TADA is a small multi-user text-game server. Clients connect over TCP,
perform a versioned handshake, authenticate (optionally with a one-time
invite code), then exchange line-oriented game commands.`,
	}

	// Global flag for config file path
	cmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path")

	// Add subcommands
	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewMigrateCmd())
	cmd.AddCommand(NewStatusCmd())
	cmd.AddCommand(NewInviteCmd())

	return cmd
}
