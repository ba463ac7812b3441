package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/jera/internal"
	pkgconfig "github.com/starford/jera/pkg/config"
)

// loadConfig builds the effective configuration: defaults overlaid with the
// config file when one exists. The defaults reproduce the published
// repository layout, so a bare invocation needs no file at all.
func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()

	configPath := cmd.String("config")
	if _, err := os.Stat(configPath); errors.Is(err, os.ErrNotExist) {
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("invalid default config: %w", err)
		}
		return cfg, nil
	}
	if err := pkgconfig.Load(configPath, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

func runUpdate(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	return internal.RunUpdate(ctx,
		internal.WithConfig(cfg),
		internal.WithMessage(cmd.String("message")),
		internal.WithDryRun(cmd.Bool("dry-run")),
	)
}

func runVerify(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	return internal.RunVerify(ctx, internal.WithConfig(cfg))
}

func runCheck(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	return internal.RunCheck(ctx, internal.WithConfig(cfg))
}

func runWatch(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	return internal.RunWatch(ctx, internal.WithConfig(cfg))
}

func runServe(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	return internal.RunServe(ctx,
		internal.WithConfig(cfg),
		internal.WithWatch(cmd.Bool("watch")),
	)
}

func main() {
	updateFlags := []cli.Flag{
		&cli.StringFlag{
			Name:    "message",
			Aliases: []string{"m"},
			Usage:   "Release notes message (defaults to JERA_COMMIT_MESSAGE, then the HEAD commit message)",
			Sources: cli.EnvVars("JERA_COMMIT_MESSAGE"),
		},
		&cli.BoolFlag{
			Name:  "dry-run",
			Usage: "Report what would change without writing the manifest",
		},
	}

	cmd := &cli.Command{
		Name:   "jera",
		Usage:  "Release manifest updater for the mod replacements database: hashes the db files, bumps the patch version, and records the triggering commit message",
		Action: runUpdate,
		Flags: append([]cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("JERA_CONFIG_FILE"),
			},
		}, updateFlags...),
		Commands: []*cli.Command{
			{
				Name:   "update",
				Usage:  "Refresh stored hashes, notes, and patch version when any data file changed",
				Action: runUpdate,
				Flags:  updateFlags,
			},
			{
				Name:   "verify",
				Usage:  "Fail when the manifest is stale relative to the data files (writes nothing)",
				Action: runVerify,
			},
			{
				Name:   "check",
				Usage:  "Fail when any replacement entry is obsolete relative to the mod database (writes nothing)",
				Action: runCheck,
			},
			{
				Name:   "watch",
				Usage:  "Re-run the update whenever a tracked data file changes",
				Action: runWatch,
			},
			{
				Name:   "serve",
				Usage:  "Serve the manifest and data files for local preview",
				Action: runServe,
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "watch",
						Usage: "Also watch the data files and push manifest.updated events",
					},
				},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
