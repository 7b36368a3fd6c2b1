package gpu

// Buffer is a growable device-resident buffer with monotone capacity. It
// exists to amortize device allocation across repeated solves: Reserve only
// reallocates when asked to grow, never shrinks, and growing discards the
// previous contents. The buffer is exclusively owned by its creator and
// released with Close.
type Buffer[T Elem] struct {
	alloc func(int) (Mem[T], error)
	mem   Mem[T]
	size  int
}

// NewBuffer returns an empty buffer allocating through alloc, typically
// Context.Float64 or Context.Int32.
func NewBuffer[T Elem](alloc func(int) (Mem[T], error)) *Buffer[T] {
	return &Buffer[T]{alloc: alloc}
}

// Reserve ensures capacity for n values and sets the logical size to n.
// Shrinking the logical size keeps the existing allocation.
func (b *Buffer[T]) Reserve(n int) error {
	if n < 0 {
		return ErrInvalidSize
	}
	if b.mem != nil && n <= b.mem.Cap() {
		b.size = n
		return nil
	}
	if b.mem != nil {
		if err := b.mem.Free(); err != nil {
			return err
		}
		b.mem = nil
		b.size = 0
	}
	mem, err := b.alloc(n)
	if err != nil {
		return err
	}
	b.mem = mem
	b.size = n
	return nil
}

// CopyFromHost reserves capacity for src and uploads it to the device.
func (b *Buffer[T]) CopyFromHost(src []T) error {
	if err := b.Reserve(len(src)); err != nil {
		return err
	}
	if len(src) == 0 {
		return nil
	}
	return b.mem.Upload(src)
}

// CopyToHost downloads the first len(dst) values from the device.
func (b *Buffer[T]) CopyToHost(dst []T) error {
	if len(dst) == 0 {
		return nil
	}
	if b.mem == nil || len(dst) > b.size {
		return ErrInvalidSize
	}
	return b.mem.Download(dst)
}

// Size reports the logical size set by the last Reserve or CopyFromHost.
func (b *Buffer[T]) Size() int { return b.size }

// Cap reports the allocated device capacity.
func (b *Buffer[T]) Cap() int {
	if b.mem == nil {
		return 0
	}
	return b.mem.Cap()
}

// Mem exposes the underlying allocation for kernel dispatch. The caller must
// not retain it across a Reserve that grows the buffer.
func (b *Buffer[T]) Mem() Mem[T] { return b.mem }

// Close releases the device allocation.
func (b *Buffer[T]) Close() error {
	if b.mem == nil {
		return nil
	}
	err := b.mem.Free()
	b.mem = nil
	b.size = 0
	return err
}
