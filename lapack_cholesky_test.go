package ceres

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLAPACKFactorizesInPlace(t *testing.T) {
	const n = 4
	rnd := rand.New(rand.NewSource(11))
	a, _ := spdSystem(rnd, n)
	lhs := append([]float64(nil), a...)

	dc := NewLAPACKDenseCholesky()
	defer dc.Close()

	term, err := dc.Factorize(n, lhs)
	require.NoError(t, err)
	require.Equal(t, TerminationSuccess, term)
	assert.NotEqual(t, a, lhs, "the caller's buffer holds the factor after Factorize")
}

func TestLAPACKInvalidArgumentIsFatal(t *testing.T) {
	dc := &LAPACKDenseCholesky{routines: lapackRoutines{
		potrf: func(n int, a []float64, lda int) int { return -2 },
		potrs: defaultLAPACKRoutines.potrs,
	}}
	term, err := dc.Factorize(2, make([]float64, 4))
	require.Equal(t, TerminationFatalError, term)
	require.ErrorIs(t, err, ErrInvalidArgument)
	assert.Contains(t, err.Error(), "argument 2")

	// The same classification applies to the solve routine.
	dc = &LAPACKDenseCholesky{routines: lapackRoutines{
		potrf: defaultLAPACKRoutines.potrf,
		potrs: func(n, nrhs int, a []float64, lda int, b []float64, ldb int) int { return -1 },
	}}
	lhs := []float64{
		4, 1,
		1, 3,
	}
	term, err = dc.Factorize(2, lhs)
	require.NoError(t, err)
	require.Equal(t, TerminationSuccess, term)

	term, err = dc.Solve([]float64{1, 2}, make([]float64, 2))
	require.Equal(t, TerminationFatalError, term)
	require.ErrorIs(t, err, ErrInvalidArgument)
}

func TestLAPACKShortVectorsAreFatal(t *testing.T) {
	dc := NewLAPACKDenseCholesky()
	defer dc.Close()

	lhs := []float64{
		4, 1,
		1, 3,
	}
	term, err := dc.Factorize(2, lhs)
	require.NoError(t, err)
	require.Equal(t, TerminationSuccess, term)

	term, err = dc.Solve([]float64{1}, make([]float64, 2))
	require.Equal(t, TerminationFatalError, term)
	require.ErrorIs(t, err, ErrInvalidArgument)
}
