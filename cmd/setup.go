package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/roamly/internal/shared"
	"github.com/desertthunder/roamly/internal/tokens"
)

// Setup creates the config file when missing, then initializes the token database and runs migrations.
func (r *Runner) Setup(ctx context.Context, cmd *cli.Command) error {
	configPath := r.configPath
	if configPath == "" {
		configPath = "config.toml"
	}

	config := r.config
	if _, err := os.Stat(configPath); err != nil {
		r.logger.Info("config file not found, creating from template", "path", configPath)
		if err := shared.CreateConfigFile(configPath); err != nil {
			r.logger.Warn("failed to create config file, using defaults", "error", err)
		} else if loaded, err := shared.LoadConfig(configPath); err != nil {
			r.logger.Warn("failed to load created config, using defaults", "error", err)
		} else {
			config = loaded
		}
	}

	if config.Storage.Driver != "" && config.Storage.Driver != tokens.DriverSQLite {
		r.logger.Info("storage driver needs no database", "driver", config.Storage.Driver)
		return r.writePlain("✓ Setup complete (storage driver: %s)\n", config.Storage.Driver)
	}

	r.logger.Info("initializing database", "path", config.Storage.Path)
	db, err := shared.NewDatabase(config.Storage.Path)
	if err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}
	defer db.Close()

	if cmd.Bool("rollback") {
		r.logger.Info("rolling back last migration")
		if err := shared.RollbackMigration(db); err != nil {
			return fmt.Errorf("failed to roll back migration: %w", err)
		}
		return r.writePlain("✓ Rolled back the last migration\n")
	}

	r.logger.Info("running database migrations")
	if err := shared.RunMigrations(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	r.logger.Infof("setup complete for database: %v", config.Storage.Path)

	r.writePlain("✓ Setup complete\n")
	r.writePlain("Config:   %s\n", configPath)
	r.writePlain("Database: %s\n", shared.ExpandPath(config.Storage.Path))
	r.writePlain("API:      %s\n", config.API.BaseURL)
	return r.writePlainln("Next: run 'roamly auth login' to sign in.")
}
