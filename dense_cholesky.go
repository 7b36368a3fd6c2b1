package ceres

import (
	"fmt"

	"github.com/jmackay2/ceres-solver/gpu"
)

// DenseCholesky solves dense symmetric positive-definite systems A·x = b.
//
// Matrices are n×n float64 buffers in row-major order; only the lower
// triangle is authoritative. Whether Factorize mutates the input buffer is
// backend-dependent: the LAPACK backend factorizes in place and destroys it,
// the reference and GPU backends leave it untouched.
//
// Instances are single-owner and not safe for concurrent use. A successful
// Factorize may be followed by any number of Solve calls against different
// right-hand sides. Close releases backend-held resources (device memory for
// the GPU backend) and must be called when the instance is no longer needed.
type DenseCholesky interface {
	// Factorize consumes an n×n symmetric matrix and computes its Cholesky
	// factor. TerminationFailure means the matrix is not positive definite;
	// the caller may regularize and call Factorize again on this instance.
	Factorize(n int, lhs []float64) (TerminationType, error)

	// Solve computes the solution for one right-hand side, writing it into
	// solution. It requires a prior successful Factorize; otherwise it
	// reports a failure immediately and leaves solution untouched.
	Solve(rhs, solution []float64) (TerminationType, error)

	// Close releases resources held by the instance.
	Close() error
}

// Create builds the backend selected by opts, or fails with a configuration
// error (ErrUnknownBackend, ErrBackendUnavailable) if that backend cannot be
// used in this deployment.
func Create(opts Options) (DenseCholesky, error) {
	log := opts.logger()
	switch opts.Kind {
	case BackendReference:
		log.Debug("ceres: using reference dense Cholesky")
		return NewReferenceDenseCholesky(), nil

	case BackendLAPACK:
		log.Debug("ceres: using lapack dense Cholesky")
		return NewLAPACKDenseCholesky(), nil

	case BackendCUDA:
		dev := opts.Device
		if dev == nil {
			dev = gpu.Default()
		}
		if dev == nil {
			return nil, fmt.Errorf("%w: no GPU device registered", ErrBackendUnavailable)
		}
		if !dev.Available() {
			return nil, fmt.Errorf("%w: device %q is not available", ErrBackendUnavailable, dev.Info().Name)
		}
		var (
			dc  DenseCholesky
			err error
		)
		switch opts.GPUIndexWidth {
		case Index64:
			dc, err = NewCUDADenseCholesky64(dev)
		default:
			dc, err = NewCUDADenseCholesky32(dev)
		}
		if err != nil {
			log.Error("ceres: GPU dense Cholesky init failed", "device", dev.Info().Name, "error", err)
			return nil, err
		}
		log.Debug("ceres: using cuda dense Cholesky", "device", dev.Info().Name, "index_width", opts.GPUIndexWidth)
		return dc, nil
	}
	return nil, fmt.Errorf("%w: kind %d", ErrUnknownBackend, int(opts.Kind))
}

// FactorAndSolve composes Factorize and Solve for a single right-hand side.
// Solve runs only if Factorize succeeded; otherwise the factorization status
// is returned as is.
func FactorAndSolve(dc DenseCholesky, n int, lhs, rhs, solution []float64) (TerminationType, error) {
	t, err := dc.Factorize(n, lhs)
	if t != TerminationSuccess {
		return t, err
	}
	return dc.Solve(rhs, solution)
}

// classifyInfo maps a LAPACK-style status code onto the termination taxonomy:
// negative is an argument-contract violation (a bug, fatal), zero is success,
// positive k names the first non-positive-definite leading minor.
func classifyInfo(routine string, info int64) (TerminationType, error) {
	switch {
	case info < 0:
		return TerminationFatalError, fmt.Errorf("%w: %s: argument %d is invalid", ErrInvalidArgument, routine, -info)
	case info > 0:
		return TerminationFailure, fmt.Errorf("%w: %s: the leading minor of order %d is not positive definite", ErrNotPositiveDefinite, routine, info)
	}
	return TerminationSuccess, nil
}
