// Package gpu defines the narrow device binding used by the GPU-resident
// dense Cholesky backend: device discovery, context and stream management,
// typed device memory, and the dense solver kernel entry points in 32-bit
// and 64-bit index widths.
//
// The package knows nothing about the solver's termination taxonomy; it
// reports plain errors. A CPU-backed simulator (SimDevice) satisfies the
// interfaces for tests and machines without an accelerator, and a stub CUDA
// device is registered behind the "cuda" build tag.
package gpu
