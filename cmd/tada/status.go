// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TADA Contributors

package main

import (
	"context"
	"encoding/json"
	"time"

	"github.com/spf13/cobra"

	"github.com/cminter/TADA/internal/config"
	"github.com/cminter/TADA/internal/store"
)

// DatabaseStatus holds the result of a database health check.
type DatabaseStatus struct {
	Reachable     bool   `json:"reachable"`
	SchemaVersion uint   `json:"schema_version,omitempty"`
	SchemaName    string `json:"schema_name,omitempty"`
	Dirty         bool   `json:"dirty,omitempty"`
	Error         string `json:"error,omitempty"`
}

// statusConfig holds configuration for the status command.
type statusConfig struct {
	jsonOutput bool
}

// NewStatusCmd creates the status subcommand.
func NewStatusCmd() *cobra.Command {
	scfg := &statusConfig{}

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Check database connectivity and schema version",
		Long:  `Check that the configured database is reachable and report its migration state.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runStatus(cmd, scfg)
		},
	}

	cmd.Flags().String("database.url", config.Default().Database.URL, "PostgreSQL connection URL")
	cmd.Flags().BoolVar(&scfg.jsonOutput, "json", false, "output status as JSON")

	return cmd
}

func runStatus(cmd *cobra.Command, scfg *statusConfig) error {
	cfg, err := config.Load(configFile, cmd.Flags())
	if err != nil {
		return err
	}

	status := checkDatabase(cmd.Context(), cfg.Database.URL)

	if scfg.jsonOutput {
		out, err := json.MarshalIndent(status, "", "  ")
		if err != nil {
			return err
		}
		cmd.Println(string(out))
	} else {
		if status.Reachable {
			cmd.Println("database: reachable")
			cmd.Printf("schema:   version %d (%s)\n", status.SchemaVersion, status.SchemaName)
			if status.Dirty {
				cmd.Println("warning:  schema is dirty, manual repair required")
			}
		} else {
			cmd.Println("database: unreachable")
			cmd.Println("error:   ", status.Error)
		}
	}

	return nil
}

// checkDatabase pings the database and reads the migration version.
func checkDatabase(ctx context.Context, databaseURL string) DatabaseStatus {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	pool, err := store.NewPool(ctx, databaseURL)
	if err != nil {
		return DatabaseStatus{Error: err.Error()}
	}
	pool.Close()

	migrator, err := store.NewMigrator(databaseURL)
	if err != nil {
		return DatabaseStatus{Reachable: true, Error: err.Error()}
	}
	defer migrator.Close() //nolint:errcheck

	version, dirty, err := migrator.Version()
	if err != nil {
		return DatabaseStatus{Reachable: true, Error: err.Error()}
	}

	name, err := store.MigrationName(version)
	if err != nil {
		name = ""
	}
	return DatabaseStatus{
		Reachable:     true,
		SchemaVersion: version,
		SchemaName:    name,
		Dirty:         dirty,
	}
}
