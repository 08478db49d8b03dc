package pagealloc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSystem_AllocZeroFilled(t *testing.T) {
	var src System

	region, err := src.Alloc(1 << 16)
	require.NoError(t, err)
	require.Len(t, region, 1<<16)

	for i, b := range region {
		if b != 0 {
			t.Fatalf("region byte %d is %#x, want zero", i, b)
		}
	}

	// Region must be writable.
	region[0] = 0xAB
	region[len(region)-1] = 0xCD
	assert.Equal(t, byte(0xAB), region[0])
	assert.Equal(t, byte(0xCD), region[len(region)-1])

	require.NoError(t, src.Drop(region))
}

func TestSystem_AllocRejectsBadSize(t *testing.T) {
	var src System

	_, err := src.Alloc(0)
	require.Error(t, err)

	_, err = src.Alloc(-1)
	require.Error(t, err)
}

func TestSystem_DropNil(t *testing.T) {
	var src System
	require.NoError(t, src.Drop(nil))
}
