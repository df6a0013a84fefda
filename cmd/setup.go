package main

import (
	"context"
	"fmt"
	"os"

	"github.com/desertthunder/cineflix/internal/shared"
	"github.com/urfave/cli/v3"
)

// SetupDatabase writes config.toml when missing, initializes the profile database and runs migrations.
func (r *Runner) SetupDatabase(ctx context.Context, cmd *cli.Command) error {
	configPath := r.configName()

	if _, err := os.Stat(configPath); err != nil {
		r.logger.Info("config file not found, creating from template", "path", configPath)
		if err := shared.CreateConfigFile(configPath); err != nil {
			r.logger.Warn("failed to create config file, using defaults", "error", err)
		} else {
			r.logger.Info("config file created", "path", configPath)
			r.loadConfig(configPath)
		}
	}

	r.logger.Info("initializing database", "path", r.config.Database.Path)
	if err := r.ready(ctx); err != nil {
		return err
	}

	versions, err := shared.AppliedVersions(ctx, r.db)
	if err != nil {
		return fmt.Errorf("failed to read migrations: %w", err)
	}
	r.logger.Debug("migrations applied", "versions", versions)

	if cmd.Bool("seed") {
		created, err := r.accounts.Seed(ctx)
		if err != nil {
			return fmt.Errorf("failed to seed demo accounts: %w", err)
		}
		r.logger.Info("demo accounts seeded", "created", created)
	}

	r.logger.Infof("setup complete for database: %v", r.config.Database.Path)
	return r.writePlain("✓ Database ready at %s (%d migrations)\n", r.config.Database.Path, len(versions))
}

// SetupRollback reverts the most recent migration.
func (r *Runner) SetupRollback(ctx context.Context, cmd *cli.Command) error {
	if err := r.ready(ctx); err != nil {
		return err
	}

	if err := shared.RollbackMigration(ctx, r.db); err != nil {
		return fmt.Errorf("failed to roll back migration: %w", err)
	}

	versions, err := shared.AppliedVersions(ctx, r.db)
	if err != nil {
		return fmt.Errorf("failed to read migrations: %w", err)
	}
	return r.writePlain("✓ Rolled back, %d migrations remain applied\n", len(versions))
}
