// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TADA Contributors

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/cminter/TADA/internal/auth"
	authpg "github.com/cminter/TADA/internal/auth/postgres"
	"github.com/cminter/TADA/internal/config"
	"github.com/cminter/TADA/internal/game"
	"github.com/cminter/TADA/internal/logging"
	"github.com/cminter/TADA/internal/observability"
	"github.com/cminter/TADA/internal/server"
	"github.com/cminter/TADA/internal/store"
)

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the game server",
		Long:  `Start the TADA game server and its observability endpoints.`,
		RunE:  runServe,
	}

	// Flag defaults mirror config.Default(): koanf's posflag layer loads
	// unchanged flags too, so a zero default here would mask the built-in.
	defaults := config.Default()
	cmd.Flags().String("server.addr", defaults.Server.Addr, "listen address for the game server")
	cmd.Flags().String("database.url", defaults.Database.URL, "PostgreSQL connection URL")
	cmd.Flags().String("observability.addr", defaults.Observability.Addr, "listen address for metrics and health probes")
	cmd.Flags().String("log.format", defaults.Log.Format, "log format (json or text)")

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger := logging.Setup("tada", version, cfg.Log.Format, nil)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := store.NewPool(ctx, cfg.Database.URL)
	if err != nil {
		return err
	}
	defer pool.Close()

	accounts, err := auth.NewServiceWithLogger(
		authpg.NewUserRepository(pool),
		authpg.NewRegistrar(pool),
		auth.NewArgon2idHasher(),
		logger,
	)
	if err != nil {
		return err
	}
	guard, err := auth.NewGuardWithLogger(authpg.NewHistoryRepository(pool), logger)
	if err != nil {
		return err
	}
	world, err := game.NewWorldWithLogger(logger)
	if err != nil {
		return err
	}

	srv, err := server.NewServer(cfg.Server.Addr, server.Config{
		AppID:    cfg.Server.AppID,
		Key:      cfg.Server.Key,
		Protocol: cfg.Server.Protocol,
	}, accounts, guard, world, logger)
	if err != nil {
		return err
	}

	obs := observability.NewServer(cfg.Observability.Addr, func() bool {
		return srv.Addr() != ""
	})
	server.RegisterMetrics(obs.Registry())
	game.RegisterMetrics(obs.Registry())

	obsErrCh, err := obs.Start()
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if stopErr := obs.Stop(shutdownCtx); stopErr != nil {
			logger.Error("observability shutdown failed", "error", stopErr)
		}
	}()

	runErr := make(chan error, 1)
	go func() {
		runErr <- srv.Run(ctx)
	}()

	select {
	case err := <-runErr:
		return err
	case err := <-obsErrCh:
		stop()
		<-runErr
		return oops.Code("OBSERVABILITY_FAILED").Wrap(err)
	}
}
