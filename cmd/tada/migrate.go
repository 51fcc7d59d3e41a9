// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TADA Contributors

package main

import (
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/cminter/TADA/internal/config"
	"github.com/cminter/TADA/internal/store"
)

// migrateConfig holds configuration for the migrate command.
type migrateConfig struct {
	down  bool
	force int
}

// NewMigrateCmd creates the migrate subcommand.
func NewMigrateCmd() *cobra.Command {
	mcfg := &migrateConfig{}

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		Long:  `Apply all pending database migrations against the PostgreSQL database.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runMigrate(cmd, mcfg)
		},
	}

	cmd.Flags().String("database.url", config.Default().Database.URL, "PostgreSQL connection URL")
	cmd.Flags().BoolVar(&mcfg.down, "down", false, "roll back all migrations (destroys all data)")
	cmd.Flags().IntVar(&mcfg.force, "force", -1, "force the schema version without running migrations")

	return cmd
}

func runMigrate(cmd *cobra.Command, mcfg *migrateConfig) error {
	cfg, err := config.Load(configFile, cmd.Flags())
	if err != nil {
		return err
	}

	migrator, err := store.NewMigrator(cfg.Database.URL)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := migrator.Close(); closeErr != nil {
			cmd.PrintErrln("warning: failed to close migrator:", closeErr)
		}
	}()

	switch {
	case mcfg.force >= 0:
		if err := migrator.Force(mcfg.force); err != nil {
			return err
		}
		cmd.Printf("Schema version forced to %d\n", mcfg.force)
	case mcfg.down:
		cmd.Println("Rolling back all migrations...")
		if err := migrator.Down(); err != nil {
			return err
		}
		cmd.Println("Rollback completed")
	default:
		cmd.Println("Running migrations...")
		if err := migrator.Up(); err != nil {
			return err
		}
		cmd.Println("Migrations completed successfully")
	}

	version, dirty, err := migrator.Version()
	if err != nil {
		return err
	}
	if dirty {
		return oops.Code("MIGRATION_DIRTY").
			With("version", version).
			Errorf("schema is dirty at version %d, manual repair required", version)
	}
	cmd.Printf("Schema version: %d\n", version)
	return nil
}
