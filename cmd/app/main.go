package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/linkvault/internal"
	"github.com/starford/linkvault/internal/apperr"
	"github.com/starford/linkvault/internal/prompt"
	"github.com/starford/linkvault/internal/render"
	pkgconfig "github.com/starford/linkvault/pkg/config"
)

// loadConfig reads the config file, if present, and applies flag overrides.
func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.LoadOptional(cmd.String("config"), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if d := cmd.String("driver"); d != "" {
		cfg.Storage.Driver = d
	}
	if p := cmd.String("data"); p != "" {
		cfg.Storage.Path = p
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

func serve(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := internal.Run(ctx, internal.WithConfig(cfg)); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

func serveMCP(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	return internal.ServeMCP(ctx, internal.WithConfig(cfg))
}

func main() {
	cmd := &cli.Command{
		Name:  "linkvault",
		Usage: "Bookmark organizer with sections, batch moves and an optional edit password",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
			&cli.StringFlag{
				Name:    "data",
				Aliases: []string{"d"},
				Usage:   "Data directory, overrides storage.path",
				Sources: cli.EnvVars("LINKVAULT_DATA"),
			},
			&cli.StringFlag{
				Name:    "driver",
				Usage:   "Storage backend: fs, sqlite, badger, redis or memory",
				Sources: cli.EnvVars("LINKVAULT_DRIVER"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the HTTP API with live events",
				Action: serve,
			},
			{
				Name:   "mcp",
				Usage:  "Serve the vault to MCP clients over stdio",
				Action: serveMCP,
			},
			listCommand(),
			sectionCommand(),
			linkCommand(),
			exportCommand(),
			importCommand(),
			clearCommand(),
			passwordCommand(),
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		if errors.Is(err, prompt.ErrCancelled) {
			render.Error(os.Stderr, "cancelled")
			os.Exit(1)
		}
		render.Error(os.Stderr, apperr.Message(err))
		slog.Debug("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
