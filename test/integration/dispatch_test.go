//go:build integration

package integration

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"
	"go.uber.org/zap"

	"github.com/tilejit/runtime/internal/app"
	"github.com/tilejit/runtime/internal/backend/sim"
	"github.com/tilejit/runtime/internal/compiler"
	"github.com/tilejit/runtime/internal/config"
	"github.com/tilejit/runtime/internal/demotensor"
	"github.com/tilejit/runtime/internal/jit"
	"github.com/tilejit/runtime/internal/refkernel"
)

// TestDispatch_EndToEnd wires the full tilejit fx graph (logger, config,
// Compiler Bridge, Backend, Registry) and dispatches the pointwise-add
// demo kernel through it, the way matrix_challenge_test.go wires the
// teacher's HTTP handler graph — here the surface under test is a
// dispatch call instead of an HTTP request.
func TestDispatch_EndToEnd(t *testing.T) {
	var registry *jit.Registry
	var bridge compiler.Bridge

	cfg := &config.Config{}
	cfg.Compiler.CacheDir = t.TempDir()
	cfg.Compiler.Arch = 80

	fxApp := fxtest.New(t,
		fx.Supply(cfg),
		app.Module,
		fx.Populate(&registry, &bridge),
	)

	fxApp.RequireStart()
	defer fxApp.RequireStop()

	sb, ok := bridge.(*compiler.Sim)
	require.True(t, ok, "default app.Module wiring must select the sim compiler bridge")

	sb.Register("examples/pointwise/add.py", "binary_pointwise_kernel", []string{
		"non_constexpr", "non_constexpr", "non_constexpr", "non_constexpr", "constexpr",
	})

	entry, err := registry.GetInstance("examples/pointwise/add.py", "binary_pointwise_kernel")
	require.NoError(t, err)

	n := int32(256)
	x := demotensor.NewFloat32(make([]float32, n))
	y := demotensor.NewFloat32(make([]float32, n))
	out := demotensor.NewFloat32(make([]float32, n))
	for i := range x.Slice() {
		x.Slice()[i] = float32(i)
		y.Slice()[i] = float32(i) * 3
	}

	require.NoError(t, entry.Launch(0, 1, 1, 1, 8, 1, x, y, out, n, int32(1024)))
	require.NoError(t, entry.Launch(0, 1, 1, 1, 8, 1, x, y, out, n, int32(1024)))

	reference, err := refkernel.ReferenceAdd(x.Slice(), y.Slice())
	require.NoError(t, err)
	require.Len(t, reference, int(n))
	require.InDelta(t, float64(0), float64(reference[0]), 1e-9)
	require.InDelta(t, float64(4), float64(reference[1]), 1e-6)
}

// TestDispatch_OverloadCacheIsKeyedByDeviceAndSignature verifies property
// 3 (spec §8): launching two distinct dynamic signatures against the same
// entry point produces two artifacts, each loaded once, and repeating a
// signature reuses the cached overload.
func TestDispatch_OverloadCacheIsKeyedByDeviceAndSignature(t *testing.T) {
	logger := zap.NewNop()
	be := sim.New(logger)
	sb := compiler.NewSim(t.TempDir(), 80)
	sb.Register("examples/reduce/sum_op.cpp", "sum_reduction_kernel", []string{
		"non_constexpr", "non_constexpr", "non_constexpr",
	})

	registry := jit.NewRegistry(sb, be)
	entry, err := registry.GetInstance("examples/reduce/sum_op.cpp", "sum_reduction_kernel")
	require.NoError(t, err)

	small := demotensor.NewFloat32(make([]float32, 16))
	out := demotensor.NewFloat32(make([]float32, 1))

	require.NoError(t, entry.Launch(0, 1, 1, 1, 8, 1, small, out, int32(16)))
	require.NoError(t, entry.Launch(0, 1, 1, 1, 8, 1, small, out, int32(16)))
	require.Equal(t, 2, be.LaunchCount())

	require.NoError(t, entry.Launch(0, 1, 1, 1, 8, 1, small, out, int64(16)))
	require.Equal(t, 3, be.LaunchCount())

	i32Dir, err := sb.Compile("examples/reduce/sum_op.cpp", "sum_reduction_kernel", "*fp32,*fp32,i32", 8, 1, 0)
	require.NoError(t, err)
	i64Dir, err := sb.Compile("examples/reduce/sum_op.cpp", "sum_reduction_kernel", "*fp32,*fp32,i64", 8, 1, 0)
	require.NoError(t, err)
	require.NotEqual(t, i32Dir, i64Dir)
	require.Equal(t, 1, be.LoadCount(i32Dir, "sum_reduction_kernel"))
	require.Equal(t, 1, be.LoadCount(i64Dir, "sum_reduction_kernel"))
}
