package ceres

import "errors"

// Sentinel errors returned by the solver core. Diagnostics wrap these with
// context (routine name, argument position, leading-minor index), so callers
// classify with errors.Is and log the full message.
var (
	// ErrUnknownBackend is returned by Create when the configured backend
	// kind does not exist.
	ErrUnknownBackend = errors.New("ceres: unknown dense Cholesky backend")

	// ErrBackendUnavailable is returned by Create when the selected backend
	// kind exists but cannot be used in this deployment (no GPU device
	// registered, device initialization failed). It is a configuration
	// condition, not solver input.
	ErrBackendUnavailable = errors.New("ceres: dense Cholesky backend unavailable")

	// ErrNotPositiveDefinite is the recoverable numeric failure: the matrix
	// is not positive definite at some leading minor.
	ErrNotPositiveDefinite = errors.New("ceres: matrix is not positive definite")

	// ErrInvalidArgument is the contract-violation failure: an underlying
	// routine rejected its arguments. Valid callers never produce it, so it
	// is always escalated as TerminationFatalError.
	ErrInvalidArgument = errors.New("ceres: invalid routine argument")

	// ErrNotFactorized is returned by Solve when the instance holds no
	// successful factorization. No computation is performed.
	ErrNotFactorized = errors.New("ceres: Factorize did not complete successfully previously")
)
