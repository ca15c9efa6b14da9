package jit

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tilejit/runtime/internal/backend/sim"
)

func writeMetadataSidecar(t *testing.T, dir, kernelName string, shared uint32) {
	t.Helper()
	path := filepath.Join(dir, kernelName+".json")
	body := fmt.Sprintf(`{"shared":%d,"mix_mode":"mix","target":{"arch":80}}`, shared)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
}

func TestKernelHandle_LazyLoadThenLaunch(t *testing.T) {
	dir := t.TempDir()
	writeMetadataSidecar(t, dir, "add_kernel", 4096)

	be := sim.New(nil)
	k := NewKernelHandle(dir, "add_kernel", be)
	assert.False(t, k.IsLoaded())

	err := k.Launch(0, 1, 1, 1, 4, nil, []byte{1, 2, 3, 4}, "*fp32,*fp32,*fp32,i32")
	require.NoError(t, err)
	assert.True(t, k.IsLoaded())
	assert.Equal(t, 1, be.LoadCount(dir, "add_kernel"))
	assert.Equal(t, 1, be.LaunchCount())

	// a second launch must not reload the artifact.
	require.NoError(t, k.Launch(0, 1, 1, 1, 4, nil, []byte{1, 2, 3, 4}, "*fp32,*fp32,*fp32,i32"))
	assert.Equal(t, 1, be.LoadCount(dir, "add_kernel"))
	assert.Equal(t, 2, be.LaunchCount())
}

func TestKernelHandle_LoadFailureIsNotCached(t *testing.T) {
	dir := t.TempDir()
	be := sim.New(nil)
	k := NewKernelHandle(dir, "missing_kernel", be)

	err := k.Launch(0, 1, 1, 1, 1, nil, nil, "")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDriverLoad)
	assert.False(t, k.IsLoaded())

	writeMetadataSidecar(t, dir, "missing_kernel", 0)
	require.NoError(t, k.Launch(0, 1, 1, 1, 1, nil, nil, ""))
	assert.True(t, k.IsLoaded())
}
