package main

import (
	"fmt"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/tilejit/runtime/internal/compiler"
	"github.com/tilejit/runtime/internal/config"
	"github.com/tilejit/runtime/internal/demotensor"
	"github.com/tilejit/runtime/internal/refkernel"
)

// runCommand dispatches the pointwise-add demo kernel once through the
// wired fx graph, printing the reference result alongside the dispatch
// outcome.
func runCommand(cfg **config.Config, log **zap.Logger) *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "Dispatch the bundled pointwise-add demo kernel once",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "n", Value: 128, Usage: "element count"},
		},
		Action: func(c *cli.Context) error {
			registry, bridge, stop, err := buildApp(*cfg)
			if err != nil {
				return err
			}
			defer stop()

			sim, ok := bridge.(*compiler.Sim)
			if !ok {
				return fmt.Errorf("run: only supported against the sim compiler bridge")
			}
			sim.Register("examples/pointwise/add.py", "binary_pointwise_kernel", []string{
				"non_constexpr", "non_constexpr", "non_constexpr", "non_constexpr", "constexpr",
			})

			entry, err := registry.GetInstance("examples/pointwise/add.py", "binary_pointwise_kernel")
			if err != nil {
				return err
			}

			n := int32(c.Int("n"))
			x := demotensor.NewFloat32(make([]float32, n))
			y := demotensor.NewFloat32(make([]float32, n))
			out := demotensor.NewFloat32(make([]float32, n))
			for i := range x.Slice() {
				x.Slice()[i] = float32(i)
				y.Slice()[i] = float32(i) * 2
			}

			const blockN = 1024
			grid := uint32((n + blockN - 1) / blockN)
			if err := entry.Launch(0, grid, 1, 1, 8, 1, x, y, out, n, int32(blockN)); err != nil {
				return err
			}

			reference, err := refkernel.ReferenceAdd(x.Slice(), y.Slice())
			if err != nil {
				return err
			}
			limit := 4
			if len(reference) < limit {
				limit = len(reference)
			}
			fmt.Printf("dispatched binary_pointwise_kernel over %d elements\n", n)
			fmt.Printf("reference x+y[:%d] = %v\n", limit, reference[:limit])
			return nil
		},
	}
}
