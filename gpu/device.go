package gpu

import "sync"

// DeviceInfo describes an accelerator device.
type DeviceInfo struct {
	Name     string
	Driver   string
	MemoryMB int
}

// Device is implemented by accelerator bindings (CUDA, the simulator).
type Device interface {
	Info() DeviceInfo
	Available() bool
	// NewContext acquires an execution context (solver handle) on the
	// device. Contexts are single-owner and not safe for concurrent use.
	NewContext() (Context, error)
}

// Context is a per-owner execution context. Memory and streams created from
// it are exclusively owned by the creator and released with Free/Close.
type Context interface {
	// NewStream creates a private execution stream.
	NewStream() (Stream, error)
	// SetStream binds the stream on which subsequent solver kernels are
	// issued.
	SetStream(s Stream) error
	// Float64 allocates n float64 values of device memory.
	Float64(n int) (Mem[float64], error)
	// Int32 allocates n int32 values of device memory.
	Int32(n int) (Mem[int32], error)
	// Solver32 returns the legacy 32-bit indexed dense solver entry points,
	// or ErrNotSupported.
	Solver32() (Solver32, error)
	// Solver64 returns the 64-bit indexed dense solver entry points, or
	// ErrNotSupported.
	Solver64() (Solver64, error)
	// Synchronize blocks until all outstanding device work has completed.
	Synchronize() error
	Close() error
}

// Stream is an execution queue. Kernels issued on it run asynchronously with
// respect to the host until Synchronize is called.
type Stream interface {
	Synchronize() error
	Close() error
}

// Elem constrains the element types representable in device memory.
type Elem interface {
	~float64 | ~int32
}

// Mem is a raw device allocation of Cap values. It is exclusively owned by
// its creator; Free releases it deterministically.
type Mem[T Elem] interface {
	// Upload copies len(src) values from host to device.
	Upload(src []T) error
	// Download copies len(dst) values from device to host.
	Download(dst []T) error
	Cap() int
	Free() error
}

// Solver32 is the legacy dense solver API: sizes and status codes are
// 32-bit. Matrices are row-major with the lower triangle authoritative.
// Kernels are issued on the stream bound with SetStream and write their
// LAPACK-style info code into a one-element device cell; launch errors are
// reported immediately, numeric outcomes only through the cell.
type Solver32 interface {
	// PotrfBufferSize reports the device scratch size, in float64 values,
	// required to factorize an n×n matrix.
	PotrfBufferSize(n, lda int32) (int32, error)
	// Potrf issues the Cholesky factorization kernel on a.
	Potrf(n int32, a Mem[float64], lda int32, work Mem[float64], lwork int32, info Mem[int32]) error
	// Potrs issues the triangular solve kernel for nrhs right-hand sides in
	// b against the factor previously computed in a.
	Potrs(n, nrhs int32, a Mem[float64], lda int32, b Mem[float64], ldb int32, info Mem[int32]) error
}

// Solver64 is the 64-bit indexed dense solver API. It matches Solver32
// except for the index type and an additional host-side scratch workspace,
// sized in bytes by PotrfBufferSize and supplied to Potrf.
type Solver64 interface {
	PotrfBufferSize(n, lda int64) (device, host int64, err error)
	Potrf(n int64, a Mem[float64], lda int64, work Mem[float64], lwork int64, hostWork []byte, info Mem[int32]) error
	Potrs(n, nrhs int64, a Mem[float64], lda int64, b Mem[float64], ldb int64, info Mem[int32]) error
}

var (
	deviceMu sync.RWMutex
	device   Device
)

// Register registers the process-wide default device. Passing nil clears it.
func Register(d Device) {
	deviceMu.Lock()
	device = d
	deviceMu.Unlock()
}

// Default reports the registered device, or nil if none is registered.
func Default() Device {
	deviceMu.RLock()
	d := device
	deviceMu.RUnlock()
	return d
}
