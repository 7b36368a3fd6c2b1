package ceres

import "fmt"

// TerminationType classifies the outcome of a Factorize or Solve call.
type TerminationType int

const (
	// TerminationSuccess reports that the operation completed and its
	// results are valid.
	TerminationSuccess TerminationType = iota

	// TerminationFailure reports a recoverable numeric failure: the matrix
	// is not positive definite. The caller may regularize the system and
	// retry with a fresh Factorize.
	TerminationFailure

	// TerminationFatalError reports a contract violation or device failure.
	// It indicates a bug or broken deployment, never bad input data.
	TerminationFatalError
)

func (t TerminationType) String() string {
	switch t {
	case TerminationSuccess:
		return "success"
	case TerminationFailure:
		return "failure"
	case TerminationFatalError:
		return "fatal error"
	}
	return "unknown"
}

// BackendKind selects the dense Cholesky implementation built by Create.
type BackendKind int

const (
	// BackendReference is the in-process gonum-based decomposition. It is
	// always available and serves as the correctness oracle.
	BackendReference BackendKind = iota

	// BackendLAPACK is the in-place LAPACK-style routine pair. It
	// factorizes directly in the caller's buffer, destroying it.
	BackendLAPACK

	// BackendCUDA is the GPU-resident backend. It requires a registered
	// device (see package gpu) and fails construction without one.
	BackendCUDA
)

func (k BackendKind) String() string {
	switch k {
	case BackendReference:
		return "reference"
	case BackendLAPACK:
		return "lapack"
	case BackendCUDA:
		return "cuda"
	}
	return "unknown"
}

// ParseBackendKind converts a configuration string into a BackendKind.
func ParseBackendKind(s string) (BackendKind, error) {
	switch s {
	case "reference":
		return BackendReference, nil
	case "lapack":
		return BackendLAPACK, nil
	case "cuda":
		return BackendCUDA, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownBackend, s)
}

// IndexWidth selects the integer width the GPU backend uses for workspace
// sizing and kernel dispatch. The solve protocol is otherwise identical
// between the two widths.
type IndexWidth int

const (
	// Index32 dispatches through the legacy 32-bit solver API. Default.
	Index32 IndexWidth = iota

	// Index64 dispatches through the 64-bit solver API, which additionally
	// uses a host-side scratch workspace.
	Index64
)

// factorizationState tracks the per-instance solve protocol. It transitions
// only inside Factorize; Solve in any state other than factorizeSucceeded is
// an immediate no-op failure report.
type factorizationState uint8

const (
	unfactored factorizationState = iota
	factorizeSucceeded
	factorizeFailed
)
