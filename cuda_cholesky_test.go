package ceres

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmackay2/ceres-solver/gpu"
)

// cudaVariants builds both index-width variants on private simulators.
func cudaVariants(t *testing.T) []testBackend {
	t.Helper()

	dev32 := gpu.NewSimDevice()
	cuda32, err := NewCUDADenseCholesky32(dev32)
	require.NoError(t, err)
	t.Cleanup(func() { _ = cuda32.Close() })

	dev64 := gpu.NewSimDevice()
	cuda64, err := NewCUDADenseCholesky64(dev64)
	require.NoError(t, err)
	t.Cleanup(func() { _ = cuda64.Close() })

	return []testBackend{
		{name: "cuda32", dc: cuda32, dev: dev32},
		{name: "cuda64", dc: cuda64, dev: dev64},
	}
}

func TestCUDABufferGrowthAcrossSizes(t *testing.T) {
	rnd := rand.New(rand.NewSource(17))
	for _, backend := range cudaVariants(t) {
		t.Run(backend.name, func(t *testing.T) {
			var allocatedAfterLargest int
			for i, n := range []int{10, 3, 10} {
				a, b := spdSystem(rnd, n)
				lhs := append([]float64(nil), a...)
				solution := make([]float64, n)

				term, err := FactorAndSolve(backend.dc, n, lhs, b, solution)
				require.NoErrorf(t, err, "step %d n=%d", i, n)
				require.Equal(t, TerminationSuccess, term)
				requireResidualBounded(t, a, solution, b, n)

				// Device buffers grow on the first large solve and are
				// reused as is afterwards.
				if i == 0 {
					allocatedAfterLargest = backend.dev.Allocated()
				} else {
					assert.Equalf(t, allocatedAfterLargest, backend.dev.Allocated(),
						"step %d n=%d must not reallocate device memory", i, n)
				}
			}
		})
	}
}

func TestCUDASyncFailureIsFatal(t *testing.T) {
	const n = 4
	rnd := rand.New(rand.NewSource(19))
	a, b := spdSystem(rnd, n)

	for _, backend := range cudaVariants(t) {
		t.Run(backend.name, func(t *testing.T) {
			lhs := append([]float64(nil), a...)
			term, err := backend.dc.Factorize(n, lhs)
			require.NoError(t, err)
			require.Equal(t, TerminationSuccess, term)

			backend.dev.Faults.DeviceSync = true
			solution := make([]float64, n)
			term, err = backend.dc.Solve(b, solution)
			require.Equal(t, TerminationFatalError, term)
			require.ErrorIs(t, err, gpu.ErrSync)
			backend.dev.Faults.DeviceSync = false
		})
	}
}

func TestCUDAStreamSyncFailureIsFatal(t *testing.T) {
	const n = 4
	rnd := rand.New(rand.NewSource(23))
	a, _ := spdSystem(rnd, n)

	for _, backend := range cudaVariants(t) {
		t.Run(backend.name, func(t *testing.T) {
			backend.dev.Faults.StreamSync = true
			lhs := append([]float64(nil), a...)
			term, err := backend.dc.Factorize(n, lhs)
			require.Equal(t, TerminationFatalError, term)
			require.ErrorIs(t, err, gpu.ErrSync)
			backend.dev.Faults.StreamSync = false
		})
	}
}

func TestCUDAAllocFailureIsFatal(t *testing.T) {
	const n = 4
	rnd := rand.New(rand.NewSource(29))
	a, _ := spdSystem(rnd, n)

	for _, backend := range cudaVariants(t) {
		t.Run(backend.name, func(t *testing.T) {
			backend.dev.Faults.Alloc = true
			lhs := append([]float64(nil), a...)
			term, err := backend.dc.Factorize(n, lhs)
			require.Equal(t, TerminationFatalError, term)
			require.ErrorIs(t, err, gpu.ErrAlloc)
			backend.dev.Faults.Alloc = false
		})
	}
}

func TestCUDACloseReleasesDeviceMemory(t *testing.T) {
	const n = 6
	rnd := rand.New(rand.NewSource(31))
	a, b := spdSystem(rnd, n)

	for _, width := range []IndexWidth{Index32, Index64} {
		dev := gpu.NewSimDevice()
		dc, err := Create(Options{Kind: BackendCUDA, GPUIndexWidth: width, Device: dev})
		require.NoError(t, err)

		lhs := append([]float64(nil), a...)
		solution := make([]float64, n)
		term, err := FactorAndSolve(dc, n, lhs, b, solution)
		require.NoError(t, err)
		require.Equal(t, TerminationSuccess, term)
		require.Greater(t, dev.Allocated(), 0)

		require.NoError(t, dc.Close())
		assert.Zerof(t, dev.Allocated(), "width %d: Close must release all device memory", width)
	}
}

func TestCUDA64HostWorkspaceGrowsOnly(t *testing.T) {
	const n = 4
	rnd := rand.New(rand.NewSource(37))
	a, _ := spdSystem(rnd, n)

	dev := gpu.NewSimDevice()
	dc, err := NewCUDADenseCholesky64(dev)
	require.NoError(t, err)
	defer dc.Close()

	lhs := append([]float64(nil), a...)
	term, err := dc.Factorize(n, lhs)
	require.NoError(t, err)
	require.Equal(t, TerminationSuccess, term)
	require.GreaterOrEqual(t, len(dc.hostWork), 1)

	// A smaller follow-up factorization keeps the host scratch.
	prev := len(dc.hostWork)
	a2, _ := spdSystem(rnd, 2)
	term, err = dc.Factorize(2, a2)
	require.NoError(t, err)
	require.Equal(t, TerminationSuccess, term)
	assert.Equal(t, prev, len(dc.hostWork))
}
