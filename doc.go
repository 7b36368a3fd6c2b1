// Package ceres provides the dense Cholesky solver core used by the Newton
// step of a nonlinear least-squares minimizer.
//
// A single Factorize/Solve contract is implemented by three interchangeable
// backends: a reference in-process decomposition built on gonum, an in-place
// LAPACK-style backend that factorizes directly in the caller's buffer, and a
// GPU-resident backend (32-bit and 64-bit index-width variants) that keeps
// the factor and scratch workspace in device memory. Backends are selected at
// runtime through Create; kinds whose device or binding is missing fail fast
// at construction.
//
// Every Factorize and Solve call reports a TerminationType together with an
// error carrying the human-readable diagnostic. TerminationFailure marks a
// recoverable numeric condition (the matrix is not positive definite at some
// leading minor; the caller may regularize and retry), while
// TerminationFatalError marks a contract violation or device failure that no
// input data can cause.
package ceres
