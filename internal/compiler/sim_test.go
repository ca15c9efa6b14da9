package compiler

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSim_ExtractStaticSignatureReturnsRegisteredTags(t *testing.T) {
	s := NewSim(t.TempDir(), 80)
	s.Register("kernels/add.py", "add_kernel", []string{"non_constexpr", "constexpr"})

	tags, err := s.ExtractStaticSignature("kernels/add.py", "add_kernel")
	require.NoError(t, err)
	assert.Equal(t, []string{"non_constexpr", "constexpr"}, tags)
}

func TestSim_ExtractStaticSignatureUnregisteredFails(t *testing.T) {
	s := NewSim(t.TempDir(), 80)
	_, err := s.ExtractStaticSignature("kernels/missing.py", "nope")
	assert.ErrorIs(t, err, ErrCompile)
}

func TestSim_CompileWritesArtifactAndMetadata(t *testing.T) {
	root := t.TempDir()
	s := NewSim(root, 80)

	dir, err := s.Compile("kernels/add.py", "add_kernel", "*fp32,*fp32,i32", 4, 3, 0)
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(dir, "add_kernel.bin"))
	assert.FileExists(t, filepath.Join(dir, "add_kernel.json"))

	raw, err := os.ReadFile(filepath.Join(dir, "add_kernel.json"))
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"arch": 80`)
}

func TestSim_CompileIsContentAddressedAndIdempotent(t *testing.T) {
	root := t.TempDir()
	s := NewSim(root, 80)

	dir1, err := s.Compile("kernels/add.py", "add_kernel", "*fp32,i32", 4, 3, 0)
	require.NoError(t, err)
	dir2, err := s.Compile("kernels/add.py", "add_kernel", "*fp32,i32", 4, 3, 0)
	require.NoError(t, err)

	assert.Equal(t, dir1, dir2)
}

func TestSim_CompileDistinguishesDynamicSignatures(t *testing.T) {
	root := t.TempDir()
	s := NewSim(root, 80)

	dir1, err := s.Compile("kernels/add.py", "add_kernel", "*fp32,i32", 4, 3, 0)
	require.NoError(t, err)
	dir2, err := s.Compile("kernels/add.py", "add_kernel", "*fp64,i32", 4, 3, 0)
	require.NoError(t, err)

	assert.NotEqual(t, dir1, dir2)
}
