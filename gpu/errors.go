package gpu

import "errors"

var (
	// ErrDeviceUnavailable is returned when a device is registered but not
	// usable on the current system (no hardware, driver missing).
	ErrDeviceUnavailable = errors.New("gpu: device unavailable")

	// ErrNotSupported is returned when a context does not implement the
	// requested solver API.
	ErrNotSupported = errors.New("gpu: operation not supported by this device")

	// ErrInvalidSize is returned for negative allocation sizes or host
	// slices that exceed the device buffer.
	ErrInvalidSize = errors.New("gpu: invalid size")

	// ErrAlloc is returned when a device allocation fails.
	ErrAlloc = errors.New("gpu: device allocation failed")

	// ErrSync is returned when stream or device synchronization fails.
	ErrSync = errors.New("gpu: synchronization failed")

	// ErrFreed is returned on use of released device memory.
	ErrFreed = errors.New("gpu: use of freed device memory")
)
