package main

import (
	"context"
	"fmt"
	"os"

	"github.com/common-nighthawk/go-figure"
	"github.com/urfave/cli/v2"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/tilejit/runtime/internal/app"
	"github.com/tilejit/runtime/internal/compiler"
	"github.com/tilejit/runtime/internal/config"
	"github.com/tilejit/runtime/internal/jit"
)

func main() {
	var configPath string
	var cfg *config.Config
	var rootLogger *zap.Logger

	cliApp := &cli.App{
		Name:  "tilejit",
		Usage: "Inspect and dispatch tile kernels through the JIT runtime",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Value:       "tilejit.yaml",
				Usage:       "Load configuration from `FILE`",
				EnvVars:     []string{"TILEJIT_CONFIG"},
				Destination: &configPath,
			},
		},
		Before: func(c *cli.Context) error {
			figure.NewFigure("tilejit", "", true).Print()

			loaded, err := config.LoadConfig(configPath)
			if err != nil {
				// a missing config file is not fatal for a demo CLI; fall
				// back to defaults (sim bridge, info logging); the backend
				// is chosen by build tag, not by the config.
				loaded = &config.Config{}
				loaded.Logger.Verbosity = "info"
			}
			cfg = loaded

			logger, err := zap.NewProduction()
			if err != nil {
				return err
			}
			rootLogger = logger.Named("cli")
			return nil
		},
		Commands: []*cli.Command{
			inspectCommand(&cfg, &rootLogger),
			runCommand(&cfg, &rootLogger),
			benchCommand(&cfg, &rootLogger),
		},
	}

	if err := cliApp.Run(os.Args); err != nil {
		if rootLogger != nil {
			rootLogger.Fatal("tilejit: command failed", zap.Error(err))
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}
}

// buildApp constructs the fx graph and populates a *jit.Registry plus the
// compiler.Bridge underneath it, the latter needed by commands (like
// inspect) that register a fabricated signature before resolving an entry
// point.
func buildApp(cfg *config.Config) (*jit.Registry, compiler.Bridge, func(), error) {
	var registry *jit.Registry
	var bridge compiler.Bridge

	fxApp := fx.New(
		fx.Supply(cfg),
		app.Module,
		fx.Populate(&registry, &bridge),
		fx.NopLogger,
	)

	if err := fxApp.Err(); err != nil {
		return nil, nil, nil, err
	}
	ctx := context.Background()
	if err := fxApp.Start(ctx); err != nil {
		return nil, nil, nil, err
	}
	return registry, bridge, func() { _ = fxApp.Stop(ctx) }, nil
}
