package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"github.com/desertthunder/roamly/internal/services"
	"github.com/desertthunder/roamly/internal/shared"
	"github.com/desertthunder/roamly/internal/tokens"
)

const version = "0.3.0"

// EnvConfigPath overrides the config file location.
const EnvConfigPath = "ROAMLY_CONFIG"

func main() {
	os.Exit(run(shared.NewLogger(nil)))
}

func run(logger *log.Logger) int {
	configPath := "config.toml"
	if p := os.Getenv(EnvConfigPath); p != "" {
		configPath = p
	}

	config := shared.DefaultConfig()
	if _, err := os.Stat(configPath); err == nil {
		if loadedConfig, err := shared.LoadConfig(configPath); err == nil {
			config = loadedConfig
		} else {
			logger.Warn("failed to load config, using defaults", "path", configPath, "error", err)
		}
	}
	shared.SetLogLevel(logger, shared.ParseLogLevel(config.Log.Level))

	store, closer, err := tokens.Open(config.Storage)
	if err != nil {
		logger.Error("failed to open token storage", "error", err)
		return 1
	}
	defer closer.Close()

	runner := NewRunner(RunnerOpts{
		Config:     config,
		ConfigPath: configPath,
		Tokens:     store,
		Logger:     logger,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = newApp(runner).Run(ctx, os.Args)
	if err == nil {
		return 0
	}

	var apiErr *services.APIError
	switch {
	case errors.Is(err, shared.ErrNotImplemented):
		logger.Warn("not implemented")
		return 0
	case errors.As(err, &apiErr):
		logger.Error("request failed", "status", apiErr.Status, "message", apiErr.Message, "request_id", apiErr.RequestID)
	default:
		logger.Error("application error", "error", err)
	}
	return 1
}

func newApp(r *Runner) *cli.Command {
	return &cli.Command{
		Name:     "roamly",
		Usage:    "Browse, rate and collect movies on a Roamly server",
		Version:  version,
		Commands: r.register(),
	}
}
