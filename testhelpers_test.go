package ceres

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jmackay2/ceres-solver/gpu"
)

// Shared test helpers used across the backend test files.

type testBackend struct {
	name string
	dc   DenseCholesky
	dev  *gpu.SimDevice // nil for CPU backends
}

// newTestBackends builds one instance of every backend. The GPU variants run
// on private simulated devices so fault injection stays isolated.
func newTestBackends(t *testing.T) []testBackend {
	t.Helper()

	dev32 := gpu.NewSimDevice()
	cuda32, err := NewCUDADenseCholesky32(dev32)
	require.NoError(t, err)

	dev64 := gpu.NewSimDevice()
	cuda64, err := NewCUDADenseCholesky64(dev64)
	require.NoError(t, err)

	backends := []testBackend{
		{name: "reference", dc: NewReferenceDenseCholesky()},
		{name: "lapack", dc: NewLAPACKDenseCholesky()},
		{name: "cuda32", dc: cuda32, dev: dev32},
		{name: "cuda64", dc: cuda64, dev: dev64},
	}
	for _, b := range backends {
		dc := b.dc
		t.Cleanup(func() { _ = dc.Close() })
	}
	return backends
}

// spdSystem builds a well-conditioned symmetric positive-definite system
// A = M·Mᵀ + n·I (full row-major storage) and a random right-hand side.
func spdSystem(rnd *rand.Rand, n int) (a, b []float64) {
	m := make([]float64, n*n)
	for i := range m {
		m[i] = rnd.NormFloat64()
	}
	a = make([]float64, n*n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			var s float64
			for k := 0; k < n; k++ {
				s += m[i*n+k] * m[j*n+k]
			}
			a[i*n+j] = s
		}
		a[i*n+i] += float64(n)
	}
	b = make([]float64, n)
	for i := range b {
		b[i] = rnd.NormFloat64()
	}
	return a, b
}

// notPositiveDefinite is diag(1, -1): the leading minor of order 2 fails.
func notPositiveDefinite() []float64 {
	return []float64{
		1, 0,
		0, -1,
	}
}

func residualInf(a, x, b []float64, n int) float64 {
	var norm float64
	for i := 0; i < n; i++ {
		var s float64
		for j := 0; j < n; j++ {
			s += a[i*n+j] * x[j]
		}
		norm = math.Max(norm, math.Abs(s-b[i]))
	}
	return norm
}

func normInfMatrix(a []float64, n int) float64 {
	var norm float64
	for i := 0; i < n; i++ {
		var row float64
		for j := 0; j < n; j++ {
			row += math.Abs(a[i*n+j])
		}
		norm = math.Max(norm, row)
	}
	return norm
}

func normInfVector(x []float64) float64 {
	var norm float64
	for _, v := range x {
		norm = math.Max(norm, math.Abs(v))
	}
	return norm
}

// requireResidualBounded asserts ‖A·x − b‖∞ ≤ c·n·ε·‖A‖∞·‖x‖∞ with a
// generous constant.
func requireResidualBounded(t *testing.T, a, x, b []float64, n int) {
	t.Helper()
	const eps = 2.220446049250313e-16
	tol := 100*float64(n)*eps*normInfMatrix(a, n)*normInfVector(x) + 1e-14
	res := residualInf(a, x, b, n)
	require.LessOrEqualf(t, res, tol, "residual %g exceeds bound %g for n=%d", res, tol, n)
}
