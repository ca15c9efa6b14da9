// Package app wires the JIT dispatch runtime's logger, config, Compiler
// Bridge, Backend and Registry into an fx graph, the same role the
// teacher's fx.Provide lists play in test/integration/matrix_challenge_test.go
// and, informally, in cmd/fxn's Before-hook bootstrap — made explicit and
// testable here via fx rather than a sequence of panicking package-level
// calls.
package app

import (
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/tilejit/runtime/internal/backend"
	"github.com/tilejit/runtime/internal/compiler"
	"github.com/tilejit/runtime/internal/config"
	"github.com/tilejit/runtime/internal/jit"
	"github.com/tilejit/runtime/internal/logger"
)

// Module is the fx module other binaries (cmd/tilejit, test/integration)
// depend on to obtain a fully wired *jit.Registry.
var Module = fx.Module("tilejit",
	fx.Provide(
		provideLogger,
		provideBridge,
		provideBackend,
		jit.NewRegistry,
	),
)

func provideLogger(cfg *config.Config) (*zap.Logger, error) {
	return logger.New(cfg.Logger.Verbosity)
}

// provideBridge selects the Compiler Bridge implementation: an external
// toolchain subprocess when the config names one, the fabricating
// simulator otherwise (demos and tests run with no toolchain installed).
func provideBridge(cfg *config.Config, log *zap.Logger) compiler.Bridge {
	if cfg.Compiler.ToolchainPath != "" {
		return compiler.NewExternal(log, cfg.Compiler.ToolchainPath)
	}
	return compiler.NewSim(cfg.Compiler.CacheDir, cfg.Compiler.Arch)
}

func provideBackend(log *zap.Logger) backend.Backend {
	return backend.New(log)
}
