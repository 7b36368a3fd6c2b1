package lapack

import (
	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/blas64"
)

// Dpotrs solves A·X = B for an n×nrhs right-hand side B given the factor
// L computed by Dpotrf. Storage is row-major: a has leading dimension lda,
// b has leading dimension ldb. The solution overwrites b.
//
// Info codes: 0 on success; -1, -2, -3, -4, -5, -6 when n, nrhs, a, lda, b,
// ldb respectively violate the contract.
func Dpotrs(n, nrhs int, a []float64, lda int, b []float64, ldb int) int {
	switch {
	case n < 0:
		return -1
	case nrhs < 0:
		return -2
	case lda < max(1, n):
		return -4
	case ldb < max(1, nrhs):
		return -6
	}
	if n == 0 || nrhs == 0 {
		return 0
	}
	if len(a) < (n-1)*lda+n {
		return -3
	}
	if len(b) < (n-1)*ldb+nrhs {
		return -5
	}

	bi := blas64.Implementation()
	// Solve L·Y = B, then Lᵀ·X = Y, overwriting b at each step.
	bi.Dtrsm(blas.Left, blas.Lower, blas.NoTrans, blas.NonUnit, n, nrhs, 1, a, lda, b, ldb)
	bi.Dtrsm(blas.Left, blas.Lower, blas.Trans, blas.NonUnit, n, nrhs, 1, a, lda, b, ldb)
	return 0
}
