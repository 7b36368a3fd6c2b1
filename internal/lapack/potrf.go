package lapack

import (
	"math"

	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/blas64"
)

// Dpotrf computes the Cholesky factorization A = L·Lᵀ of an n×n symmetric
// matrix stored in row-major order with leading dimension lda. Only the
// lower triangle is read; the factor L overwrites it.
//
// Info codes: 0 on success; -1, -2, -3 when n, a, lda respectively violate
// the contract; k > 0 when the leading minor of order k is not positive
// definite (the factorization is left incomplete).
func Dpotrf(n int, a []float64, lda int) int {
	switch {
	case n < 0:
		return -1
	case lda < max(1, n):
		return -3
	case n > 0 && len(a) < (n-1)*lda+n:
		return -2
	}
	if n == 0 {
		return 0
	}

	bi := blas64.Implementation()
	for j := 0; j < n; j++ {
		// Pivot: A[j,j] minus the squared norm of the factored row.
		ajj := a[j*lda+j]
		if j > 0 {
			ajj -= bi.Ddot(j, a[j*lda:], 1, a[j*lda:], 1)
		}
		if ajj <= 0 || math.IsNaN(ajj) {
			a[j*lda+j] = ajj
			return j + 1
		}
		ajj = math.Sqrt(ajj)
		a[j*lda+j] = ajj
		if j < n-1 {
			// Update and scale the column below the pivot.
			if j > 0 {
				bi.Dgemv(blas.NoTrans, n-j-1, j,
					-1, a[(j+1)*lda:], lda,
					a[j*lda:], 1,
					1, a[(j+1)*lda+j:], lda)
			}
			bi.Dscal(n-j-1, 1/ajj, a[(j+1)*lda+j:], lda)
		}
	}
	return 0
}
