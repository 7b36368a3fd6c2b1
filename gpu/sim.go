package gpu

import (
	"fmt"
	"sync/atomic"

	"github.com/jmackay2/ceres-solver/internal/lapack"
)

// SimFaults injects failures into a SimDevice. Fields are read at call time,
// so tests can toggle them between operations.
type SimFaults struct {
	// Alloc makes every subsequent device allocation fail.
	Alloc bool
	// StreamSync makes Stream.Synchronize fail.
	StreamSync bool
	// DeviceSync makes Context.Synchronize fail.
	DeviceSync bool
}

// SimDevice is a CPU-backed device: it satisfies the device interfaces but
// executes the solver kernels on the host through internal/lapack. It serves
// tests and development on machines without an accelerator.
//
// Kernels issued on a simulated stream complete synchronously, so the
// asynchronous protocol (issue, synchronize, read the status cell) behaves
// exactly as on hardware, just without overlap.
type SimDevice struct {
	// Faults injects failures; see SimFaults.
	Faults SimFaults

	live atomic.Int64
}

// NewSimDevice returns a simulator with a single fake device.
func NewSimDevice() *SimDevice {
	return &SimDevice{}
}

func (d *SimDevice) Info() DeviceInfo {
	return DeviceInfo{Name: "SimDevice", Driver: "sim"}
}

func (d *SimDevice) Available() bool { return true }

func (d *SimDevice) NewContext() (Context, error) {
	return &simContext{dev: d}, nil
}

// Allocated reports the number of live device allocations. It returns to
// zero once every owner has released its memory.
func (d *SimDevice) Allocated() int {
	return int(d.live.Load())
}

type simContext struct {
	dev    *SimDevice
	stream Stream
}

func (c *simContext) NewStream() (Stream, error) {
	return &simStream{dev: c.dev}, nil
}

func (c *simContext) SetStream(s Stream) error {
	c.stream = s
	return nil
}

func (c *simContext) Float64(n int) (Mem[float64], error) {
	return simAlloc[float64](c.dev, n)
}

func (c *simContext) Int32(n int) (Mem[int32], error) {
	return simAlloc[int32](c.dev, n)
}

func (c *simContext) Solver32() (Solver32, error) {
	return simSolver32{c}, nil
}

func (c *simContext) Solver64() (Solver64, error) {
	return simSolver64{c}, nil
}

func (c *simContext) Synchronize() error {
	if c.dev.Faults.DeviceSync {
		return fmt.Errorf("sim device: %w", ErrSync)
	}
	return nil
}

func (c *simContext) Close() error { return nil }

type simStream struct {
	dev *SimDevice
}

func (s *simStream) Synchronize() error {
	if s.dev.Faults.StreamSync {
		return fmt.Errorf("sim stream: %w", ErrSync)
	}
	return nil
}

func (s *simStream) Close() error { return nil }

func simAlloc[T Elem](d *SimDevice, n int) (Mem[T], error) {
	if n < 0 {
		return nil, ErrInvalidSize
	}
	if d.Faults.Alloc {
		return nil, fmt.Errorf("sim device: out of memory: %w", ErrAlloc)
	}
	d.live.Add(1)
	return &simMem[T]{dev: d, data: make([]T, n)}, nil
}

type simMem[T Elem] struct {
	dev   *SimDevice
	data  []T
	freed bool
}

func (m *simMem[T]) Upload(src []T) error {
	if m.freed {
		return ErrFreed
	}
	if len(src) > len(m.data) {
		return ErrInvalidSize
	}
	copy(m.data, src)
	return nil
}

func (m *simMem[T]) Download(dst []T) error {
	if m.freed {
		return ErrFreed
	}
	if len(dst) > len(m.data) {
		return ErrInvalidSize
	}
	copy(dst, m.data[:len(dst)])
	return nil
}

func (m *simMem[T]) Cap() int { return len(m.data) }

func (m *simMem[T]) Free() error {
	if m.freed {
		return ErrFreed
	}
	m.freed = true
	m.data = nil
	m.dev.live.Add(-1)
	return nil
}

type simSolver32 struct {
	ctx *simContext
}

func (s simSolver32) PotrfBufferSize(n, lda int32) (int32, error) {
	// One column of scratch, like a blocked panel factorization would use.
	return n, nil
}

func (s simSolver32) Potrf(n int32, a Mem[float64], lda int32, work Mem[float64], lwork int32, info Mem[int32]) error {
	return simPotrf(int(n), a, int(lda), info)
}

func (s simSolver32) Potrs(n, nrhs int32, a Mem[float64], lda int32, b Mem[float64], ldb int32, info Mem[int32]) error {
	return simPotrs(int(n), int(nrhs), a, int(lda), b, int(ldb), info)
}

type simSolver64 struct {
	ctx *simContext
}

// simHostWorkspace is the host scratch requirement reported by the 64-bit
// API; nonzero so callers exercise their host-side growth path.
const simHostWorkspace = 256

func (s simSolver64) PotrfBufferSize(n, lda int64) (int64, int64, error) {
	return n, simHostWorkspace, nil
}

func (s simSolver64) Potrf(n int64, a Mem[float64], lda int64, work Mem[float64], lwork int64, hostWork []byte, info Mem[int32]) error {
	if int64(len(hostWork)) < simHostWorkspace {
		return fmt.Errorf("sim potrf: host workspace of %d bytes, need %d: %w", len(hostWork), simHostWorkspace, ErrInvalidSize)
	}
	return simPotrf(int(n), a, int(lda), info)
}

func (s simSolver64) Potrs(n, nrhs int64, a Mem[float64], lda int64, b Mem[float64], ldb int64, info Mem[int32]) error {
	return simPotrs(int(n), int(nrhs), a, int(lda), b, int(ldb), info)
}

// simPotrf runs the factorization on a host copy of the device matrix and
// writes the info code into the device status cell, mirroring how a real
// kernel reports numeric outcomes.
func simPotrf(n int, a Mem[float64], lda int, info Mem[int32]) error {
	var host []float64
	if n > 0 && lda >= n {
		host = make([]float64, (n-1)*lda+n)
		if err := a.Download(host); err != nil {
			return err
		}
	}
	code := lapack.Dpotrf(n, host, lda)
	if host != nil {
		if err := a.Upload(host); err != nil {
			return err
		}
	}
	return info.Upload([]int32{int32(code)})
}

func simPotrs(n, nrhs int, a Mem[float64], lda int, b Mem[float64], ldb int, info Mem[int32]) error {
	var hostA, hostB []float64
	if n > 0 && nrhs > 0 && lda >= n && ldb >= nrhs {
		hostA = make([]float64, (n-1)*lda+n)
		if err := a.Download(hostA); err != nil {
			return err
		}
		hostB = make([]float64, (n-1)*ldb+nrhs)
		if err := b.Download(hostB); err != nil {
			return err
		}
	}
	code := lapack.Dpotrs(n, nrhs, hostA, lda, hostB, ldb)
	if hostB != nil {
		if err := b.Upload(hostB); err != nil {
			return err
		}
	}
	return info.Upload([]int32{int32(code)})
}
