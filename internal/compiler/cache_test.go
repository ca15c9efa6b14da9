package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCacheKey_IsDeterministic(t *testing.T) {
	k1 := CacheKey("kernels/add.py", "add_kernel", "*fp32,*fp32,i32", 4, 3, 80)
	k2 := CacheKey("kernels/add.py", "add_kernel", "*fp32,*fp32,i32", 4, 3, 80)
	assert.Equal(t, k1, k2)
}

func TestCacheKey_DiffersOnEachComponent(t *testing.T) {
	base := CacheKey("kernels/add.py", "add_kernel", "*fp32,i32", 4, 3, 80)

	assert.NotEqual(t, base, CacheKey("kernels/sub.py", "add_kernel", "*fp32,i32", 4, 3, 80))
	assert.NotEqual(t, base, CacheKey("kernels/add.py", "sub_kernel", "*fp32,i32", 4, 3, 80))
	assert.NotEqual(t, base, CacheKey("kernels/add.py", "add_kernel", "*fp64,i32", 4, 3, 80))
	assert.NotEqual(t, base, CacheKey("kernels/add.py", "add_kernel", "*fp32,i32", 8, 3, 80))
	assert.NotEqual(t, base, CacheKey("kernels/add.py", "add_kernel", "*fp32,i32", 4, 2, 80))
	assert.NotEqual(t, base, CacheKey("kernels/add.py", "add_kernel", "*fp32,i32", 4, 3, 90))
}

func TestCacheDir_JoinsRootAndKey(t *testing.T) {
	dir := CacheDir("/cache", "kernels/add.py", "add_kernel", "*fp32,i32", 4, 3, 80)
	key := CacheKey("kernels/add.py", "add_kernel", "*fp32,i32", 4, 3, 80)
	assert.Equal(t, "/cache/"+key, dir)
}
