// Package lapack implements the dense Cholesky routine pair dpotrf/dpotrs
// for row-major lower-triangular storage on top of gonum's BLAS kernels.
//
// Unlike gonum's lapack64 surface, which reports factorization failure as a
// bare bool, these routines return the full LAPACK info convention: zero on
// success, -i when the i-th argument is invalid, and k > 0 when the leading
// minor of order k is not positive definite. The solver backends classify
// these codes into their termination taxonomy.
package lapack
