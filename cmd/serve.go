package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/desertthunder/cineflix/internal/server"
	"github.com/desertthunder/cineflix/internal/shared"
	"github.com/urfave/cli/v3"
)

// Serve runs the auth and subscription API until interrupted.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	if err := r.ready(ctx); err != nil {
		return err
	}

	if cmd.Bool("seed") {
		created, err := r.accounts.Seed(ctx)
		if err != nil {
			return fmt.Errorf("failed to seed demo accounts: %w", err)
		}
		if created > 0 {
			r.logger.Info("demo accounts seeded", "created", created)
		}
	}

	addr := cmd.String("addr")
	if addr == "" {
		addr = r.config.Server.Addr()
	}

	logger := shared.WithLogger(r.logger, "component", "server")
	router := server.NewRouter(r.accounts, r.config.Server.AllowedOrigin, logger)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	return server.New(addr, router, logger).Run(ctx)
}
