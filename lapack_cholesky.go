package ceres

import (
	"fmt"

	"github.com/jmackay2/ceres-solver/internal/lapack"
)

// lapackRoutines is the vendor routine pair behind the LAPACK backend: an
// in-place lower-triangular Cholesky factorization and the paired triangular
// solve. Both return a LAPACK info code (see classifyInfo). The binding is a
// struct of free functions so tests and accelerated deployments can inject
// their own pair.
type lapackRoutines struct {
	potrf func(n int, a []float64, lda int) int
	potrs func(n, nrhs int, a []float64, lda int, b []float64, ldb int) int
}

var defaultLAPACKRoutines = lapackRoutines{
	potrf: lapack.Dpotrf,
	potrs: lapack.Dpotrs,
}

// LAPACKDenseCholesky factorizes directly in the caller's buffer, destroying
// its contents, and keeps a reference to the factor for later Solve calls.
// The caller must keep the buffer alive and unmodified between Factorize and
// the last Solve.
type LAPACKDenseCholesky struct {
	routines lapackRoutines
	lhs      []float64
	n        int
	state    factorizationState
}

// NewLAPACKDenseCholesky returns an unfactored LAPACK backend using the
// built-in gonum-based routine pair.
func NewLAPACKDenseCholesky() *LAPACKDenseCholesky {
	return &LAPACKDenseCholesky{routines: defaultLAPACKRoutines}
}

func (c *LAPACKDenseCholesky) Factorize(n int, lhs []float64) (TerminationType, error) {
	c.state = factorizeFailed
	c.lhs = lhs
	c.n = n
	info := c.routines.potrf(n, lhs, max(1, n))
	t, err := classifyInfo("dpotrf", int64(info))
	if t == TerminationSuccess {
		c.state = factorizeSucceeded
	}
	return t, err
}

func (c *LAPACKDenseCholesky) Solve(rhs, solution []float64) (TerminationType, error) {
	if c.state != factorizeSucceeded {
		return TerminationFailure, ErrNotFactorized
	}
	if len(rhs) < c.n || len(solution) < c.n {
		return TerminationFatalError, fmt.Errorf("%w: lapack solve: vectors shorter than %d", ErrInvalidArgument, c.n)
	}
	// dpotrs solves in place, so work on a copy of rhs held in solution.
	copy(solution[:c.n], rhs[:c.n])
	info := c.routines.potrs(c.n, 1, c.lhs, max(1, c.n), solution[:c.n], 1)
	return classifyInfo("dpotrs", int64(info))
}

func (c *LAPACKDenseCholesky) Close() error {
	c.lhs = nil
	c.state = unfactored
	return nil
}
