package jit

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOnceCache_ConcurrentMissesShareOneCreation(t *testing.T) {
	c := newOnceCache[string, int]()

	var calls int32
	create := func() (int, error) {
		atomic.AddInt32(&calls, 1)
		return 42, nil
	}

	var wg sync.WaitGroup
	results := make([]int, 32)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, err := c.getOrCreate("k", create)
			require.NoError(t, err)
			results[i] = v
		}(i)
	}
	wg.Wait()

	assert.EqualValues(t, 1, calls)
	for _, v := range results {
		assert.Equal(t, 42, v)
	}
}

func TestOnceCache_FailedCreationIsNotCached(t *testing.T) {
	c := newOnceCache[string, int]()

	var calls int32
	create := func() (int, error) {
		n := atomic.AddInt32(&calls, 1)
		if n == 1 {
			return 0, fmt.Errorf("boom")
		}
		return 7, nil
	}

	_, err := c.getOrCreate("k", create)
	require.Error(t, err)

	v, err := c.getOrCreate("k", create)
	require.NoError(t, err)
	assert.Equal(t, 7, v)
	assert.EqualValues(t, 2, calls)
}

func TestOnceCache_DistinctKeysDoNotShare(t *testing.T) {
	c := newOnceCache[int, int]()

	v1, err := c.getOrCreate(1, func() (int, error) { return 10, nil })
	require.NoError(t, err)
	v2, err := c.getOrCreate(2, func() (int, error) { return 20, nil })
	require.NoError(t, err)

	assert.Equal(t, 10, v1)
	assert.Equal(t, 20, v2)
}
