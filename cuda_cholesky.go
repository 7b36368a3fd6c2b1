package ceres

import (
	"fmt"

	"github.com/jmackay2/ceres-solver/gpu"
)

// cudaIndex constrains the index width of the GPU solver dispatch.
type cudaIndex interface {
	~int32 | ~int64
}

// cudaKernels bundles the device solver entry points for one index width.
// The 32-bit binding reports no host workspace; the 64-bit binding forwards
// the host scratch slice to the kernel.
type cudaKernels[I cudaIndex] struct {
	bufferSize func(n, lda I) (device, host I, err error)
	potrf      func(n I, a gpu.Mem[float64], lda I, work gpu.Mem[float64], lwork I, hostWork []byte, info gpu.Mem[int32]) error
	potrs      func(n, nrhs I, a gpu.Mem[float64], lda I, b gpu.Mem[float64], ldb I, info gpu.Mem[int32]) error
}

// CUDADenseCholesky keeps the matrix, right-hand side, scratch workspace and
// a one-element status cell resident on the device. The protocol — grow-only
// buffer reuse, kernel issue on a private stream, synchronize, classify the
// status cell — is implemented once and parameterized by index width.
//
// Kernels are issued asynchronously, but Factorize and Solve synchronize the
// stream and the device before returning, so the external contract is fully
// blocking, identical in shape to the CPU backends. Device memory is private
// to the instance and released by Close.
type CUDADenseCholesky[I cudaIndex] struct {
	ctx    gpu.Context
	stream gpu.Stream
	kern   cudaKernels[I]

	lhs      *gpu.Buffer[float64]
	rhs      *gpu.Buffer[float64]
	work     *gpu.Buffer[float64]
	info     *gpu.Buffer[int32]
	hostWork []byte

	n     int
	state factorizationState
}

// NewCUDADenseCholesky32 builds the GPU backend on the legacy 32-bit indexed
// solver API of dev.
func NewCUDADenseCholesky32(dev gpu.Device) (*CUDADenseCholesky[int32], error) {
	return newCUDADenseCholesky(dev, func(ctx gpu.Context) (cudaKernels[int32], error) {
		s, err := ctx.Solver32()
		if err != nil {
			return cudaKernels[int32]{}, err
		}
		return cudaKernels[int32]{
			bufferSize: func(n, lda int32) (int32, int32, error) {
				device, err := s.PotrfBufferSize(n, lda)
				return device, 0, err
			},
			potrf: func(n int32, a gpu.Mem[float64], lda int32, work gpu.Mem[float64], lwork int32, _ []byte, info gpu.Mem[int32]) error {
				return s.Potrf(n, a, lda, work, lwork, info)
			},
			potrs: s.Potrs,
		}, nil
	})
}

// NewCUDADenseCholesky64 builds the GPU backend on the 64-bit indexed solver
// API of dev.
func NewCUDADenseCholesky64(dev gpu.Device) (*CUDADenseCholesky[int64], error) {
	return newCUDADenseCholesky(dev, func(ctx gpu.Context) (cudaKernels[int64], error) {
		s, err := ctx.Solver64()
		if err != nil {
			return cudaKernels[int64]{}, err
		}
		return cudaKernels[int64]{
			bufferSize: s.PotrfBufferSize,
			potrf:      s.Potrf,
			potrs:      s.Potrs,
		}, nil
	})
}

// newCUDADenseCholesky performs backend Init: acquire a context, a private
// stream and the one-element status cell. Any failure releases what was
// acquired and yields no usable instance.
func newCUDADenseCholesky[I cudaIndex](dev gpu.Device, bind func(gpu.Context) (cudaKernels[I], error)) (*CUDADenseCholesky[I], error) {
	if dev == nil {
		return nil, fmt.Errorf("%w: no GPU device", ErrBackendUnavailable)
	}
	ctx, err := dev.NewContext()
	if err != nil {
		return nil, fmt.Errorf("%w: acquiring device context: %v", ErrBackendUnavailable, err)
	}
	stream, err := ctx.NewStream()
	if err != nil {
		_ = ctx.Close()
		return nil, fmt.Errorf("%w: creating stream: %v", ErrBackendUnavailable, err)
	}
	if err := ctx.SetStream(stream); err != nil {
		_ = stream.Close()
		_ = ctx.Close()
		return nil, fmt.Errorf("%w: binding stream: %v", ErrBackendUnavailable, err)
	}
	kern, err := bind(ctx)
	if err != nil {
		_ = stream.Close()
		_ = ctx.Close()
		return nil, fmt.Errorf("%w: binding solver kernels: %v", ErrBackendUnavailable, err)
	}
	c := &CUDADenseCholesky[I]{
		ctx:    ctx,
		stream: stream,
		kern:   kern,
		lhs:    gpu.NewBuffer(ctx.Float64),
		rhs:    gpu.NewBuffer(ctx.Float64),
		work:   gpu.NewBuffer(ctx.Float64),
		info:   gpu.NewBuffer(ctx.Int32),
	}
	if err := c.info.Reserve(1); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("%w: reserving status cell: %v", ErrBackendUnavailable, err)
	}
	return c, nil
}

func (c *CUDADenseCholesky[I]) Factorize(n int, lhs []float64) (TerminationType, error) {
	c.state = factorizeFailed
	if n < 1 || len(lhs) < n*n {
		return TerminationFatalError, fmt.Errorf("%w: cuda factorize: %d×%d matrix in a buffer of %d values", ErrInvalidArgument, n, n, len(lhs))
	}
	if err := c.lhs.CopyFromHost(lhs[:n*n]); err != nil {
		return TerminationFatalError, fmt.Errorf("ceres: cuda factorize: copying lhs to device: %w", err)
	}
	c.n = n
	deviceSize, hostSize, err := c.kern.bufferSize(I(n), I(n))
	if err != nil {
		return TerminationFatalError, fmt.Errorf("ceres: cuda factorize: querying workspace size: %w", err)
	}
	if err := c.work.Reserve(int(deviceSize)); err != nil {
		return TerminationFatalError, fmt.Errorf("ceres: cuda factorize: reserving device workspace: %w", err)
	}
	if int(hostSize) > len(c.hostWork) {
		// Host scratch mirrors the device policy: grow only.
		c.hostWork = make([]byte, hostSize)
	}
	if err := c.kern.potrf(I(n), c.lhs.Mem(), I(n), c.work.Mem(), deviceSize, c.hostWork, c.info.Mem()); err != nil {
		return TerminationFatalError, fmt.Errorf("ceres: cuda factorize: launching potrf: %w", err)
	}
	if err := c.synchronize(); err != nil {
		return TerminationFatalError, fmt.Errorf("ceres: cuda factorize: %w", err)
	}
	t, err := c.readStatus("cuda potrf")
	if t == TerminationSuccess {
		c.state = factorizeSucceeded
	}
	return t, err
}

func (c *CUDADenseCholesky[I]) Solve(rhs, solution []float64) (TerminationType, error) {
	if c.state != factorizeSucceeded {
		return TerminationFailure, ErrNotFactorized
	}
	if len(rhs) < c.n || len(solution) < c.n {
		return TerminationFatalError, fmt.Errorf("%w: cuda solve: vectors shorter than %d", ErrInvalidArgument, c.n)
	}
	if err := c.rhs.CopyFromHost(rhs[:c.n]); err != nil {
		return TerminationFatalError, fmt.Errorf("ceres: cuda solve: copying rhs to device: %w", err)
	}
	if err := c.kern.potrs(I(c.n), 1, c.lhs.Mem(), I(c.n), c.rhs.Mem(), 1, c.info.Mem()); err != nil {
		return TerminationFatalError, fmt.Errorf("ceres: cuda solve: launching potrs: %w", err)
	}
	if err := c.synchronize(); err != nil {
		return TerminationFatalError, fmt.Errorf("ceres: cuda solve: %w", err)
	}
	t, err := c.readStatus("cuda potrs")
	if t != TerminationSuccess {
		return t, err
	}
	if err := c.rhs.CopyToHost(solution[:c.n]); err != nil {
		return TerminationFatalError, fmt.Errorf("ceres: cuda solve: copying solution to host: %w", err)
	}
	return TerminationSuccess, nil
}

// synchronize blocks until the stream and then the whole device are idle.
// Both results are checked; a failure in either is unrecoverable.
func (c *CUDADenseCholesky[I]) synchronize() error {
	if err := c.stream.Synchronize(); err != nil {
		return fmt.Errorf("stream synchronization failed: %w", err)
	}
	if err := c.ctx.Synchronize(); err != nil {
		return fmt.Errorf("device synchronization failed: %w", err)
	}
	return nil
}

// readStatus copies the one-element status cell back to the host and
// classifies it.
func (c *CUDADenseCholesky[I]) readStatus(routine string) (TerminationType, error) {
	var cell [1]int32
	if err := c.info.CopyToHost(cell[:]); err != nil {
		return TerminationFatalError, fmt.Errorf("ceres: %s: reading status cell: %w", routine, err)
	}
	return classifyInfo(routine, int64(cell[0]))
}

// Close releases all device-resident state. The instance must not be used
// afterwards.
func (c *CUDADenseCholesky[I]) Close() error {
	var firstErr error
	closeAll := []func() error{}
	if c.lhs != nil {
		closeAll = append(closeAll, c.lhs.Close)
	}
	if c.rhs != nil {
		closeAll = append(closeAll, c.rhs.Close)
	}
	if c.work != nil {
		closeAll = append(closeAll, c.work.Close)
	}
	if c.info != nil {
		closeAll = append(closeAll, c.info.Close)
	}
	if c.stream != nil {
		closeAll = append(closeAll, c.stream.Close)
	}
	if c.ctx != nil {
		closeAll = append(closeAll, c.ctx.Close)
	}
	for _, f := range closeAll {
		if err := f(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	c.lhs, c.rhs, c.work, c.info = nil, nil, nil, nil
	c.stream, c.ctx = nil, nil
	c.state = unfactored
	return firstErr
}
