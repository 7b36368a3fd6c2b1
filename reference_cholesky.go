package ceres

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// ReferenceDenseCholesky is the in-process backend. Factorize copies the
// lower triangle into an internal decomposition object, so the caller's
// buffer is never mutated. It is the default backend and the correctness
// oracle for the others.
type ReferenceDenseCholesky struct {
	chol  mat.Cholesky
	n     int
	state factorizationState
}

// NewReferenceDenseCholesky returns an unfactored reference backend.
func NewReferenceDenseCholesky() *ReferenceDenseCholesky {
	return &ReferenceDenseCholesky{}
}

func (c *ReferenceDenseCholesky) Factorize(n int, lhs []float64) (TerminationType, error) {
	c.state = factorizeFailed
	if n < 1 || len(lhs) < n*n {
		return TerminationFatalError, fmt.Errorf("%w: reference factorize: %d×%d matrix in a buffer of %d values", ErrInvalidArgument, n, n, len(lhs))
	}
	sym := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := 0; j <= i; j++ {
			sym.SetSym(i, j, lhs[i*n+j])
		}
	}
	if !c.chol.Factorize(sym) {
		return TerminationFailure, fmt.Errorf("%w: reference factorize: unable to perform dense Cholesky factorization", ErrNotPositiveDefinite)
	}
	c.n = n
	c.state = factorizeSucceeded
	return TerminationSuccess, nil
}

func (c *ReferenceDenseCholesky) Solve(rhs, solution []float64) (TerminationType, error) {
	if c.state != factorizeSucceeded {
		return TerminationFailure, ErrNotFactorized
	}
	if len(rhs) < c.n || len(solution) < c.n {
		return TerminationFatalError, fmt.Errorf("%w: reference solve: vectors shorter than %d", ErrInvalidArgument, c.n)
	}
	b := mat.NewVecDense(c.n, rhs[:c.n:c.n])
	x := mat.NewVecDense(c.n, solution[:c.n])
	if err := c.chol.SolveVecTo(x, b); err != nil {
		// A Condition error flags ill conditioning but still carries a
		// usable solution; anything else is a numeric failure.
		var cond mat.Condition
		if !errors.As(err, &cond) {
			return TerminationFailure, fmt.Errorf("ceres: reference solve: %w", err)
		}
	}
	return TerminationSuccess, nil
}

func (c *ReferenceDenseCholesky) Close() error {
	c.state = unfactored
	return nil
}
