package main

import (
	"fmt"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/tilejit/runtime/internal/compiler"
	"github.com/tilejit/runtime/internal/config"
)

// inspectCommand registers the pointwise demo kernel's static signature
// against the sim bridge and prints the classes the JIT Entry Point would
// see, standing in for what a real toolchain's introspection would report.
func inspectCommand(cfg **config.Config, log **zap.Logger) *cli.Command {
	return &cli.Command{
		Name:  "inspect",
		Usage: "Print the static signature of the bundled pointwise-add demo kernel",
		Action: func(c *cli.Context) error {
			registry, bridge, stop, err := buildApp(*cfg)
			if err != nil {
				return err
			}
			defer stop()

			sim, ok := bridge.(*compiler.Sim)
			if !ok {
				return fmt.Errorf("inspect: only supported against the sim compiler bridge")
			}
			sim.Register("examples/pointwise/add.py", "binary_pointwise_kernel", []string{
				"non_constexpr", "non_constexpr", "non_constexpr", "non_constexpr", "constexpr",
			})

			entry, err := registry.GetInstance("examples/pointwise/add.py", "binary_pointwise_kernel")
			if err != nil {
				return err
			}

			ssig := entry.StaticSignature()
			fmt.Printf("binary_pointwise_kernel: %d arguments\n", ssig.NumArgs)
			for i := 0; i < ssig.NumArgs; i++ {
				class, _ := ssig.At(i)
				fmt.Printf("  arg %d: %s\n", i, class)
			}
			return nil
		},
	}
}
