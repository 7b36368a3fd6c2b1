package gpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBufferGrowOnly(t *testing.T) {
	dev := NewSimDevice()
	ctx, err := dev.NewContext()
	require.NoError(t, err)
	defer ctx.Close()

	buf := NewBuffer(ctx.Float64)
	require.NoError(t, buf.Reserve(10))
	assert.Equal(t, 10, buf.Cap())
	assert.Equal(t, 10, buf.Size())
	assert.Equal(t, 1, dev.Allocated())

	// Shrinking the logical size keeps the allocation.
	require.NoError(t, buf.Reserve(3))
	assert.Equal(t, 10, buf.Cap())
	assert.Equal(t, 3, buf.Size())
	assert.Equal(t, 1, dev.Allocated())

	// Re-growing within capacity does not reallocate.
	require.NoError(t, buf.Reserve(10))
	assert.Equal(t, 10, buf.Cap())
	assert.Equal(t, 1, dev.Allocated())

	// Growing past capacity swaps the allocation.
	require.NoError(t, buf.Reserve(20))
	assert.Equal(t, 20, buf.Cap())
	assert.Equal(t, 1, dev.Allocated())

	require.NoError(t, buf.Close())
	assert.Zero(t, dev.Allocated())
}

func TestBufferRoundTrip(t *testing.T) {
	dev := NewSimDevice()
	ctx, err := dev.NewContext()
	require.NoError(t, err)
	defer ctx.Close()

	buf := NewBuffer(ctx.Float64)
	defer buf.Close()

	src := []float64{1, 2, 3, 4}
	require.NoError(t, buf.CopyFromHost(src))

	dst := make([]float64, 4)
	require.NoError(t, buf.CopyToHost(dst))
	assert.Equal(t, src, dst)

	// Downloads past the logical size are rejected.
	tooLarge := make([]float64, 5)
	require.ErrorIs(t, buf.CopyToHost(tooLarge), ErrInvalidSize)

	require.ErrorIs(t, buf.Reserve(-1), ErrInvalidSize)
}

func TestBufferAllocationFault(t *testing.T) {
	dev := NewSimDevice()
	ctx, err := dev.NewContext()
	require.NoError(t, err)
	defer ctx.Close()

	dev.Faults.Alloc = true
	buf := NewBuffer(ctx.Float64)
	require.ErrorIs(t, buf.Reserve(5), ErrAlloc)
}
