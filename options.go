package ceres

import (
	"io"
	"log/slog"

	"github.com/jmackay2/ceres-solver/gpu"
)

// Options controls backend construction in Create.
type Options struct {
	// Kind selects the backend implementation.
	Kind BackendKind

	// GPUIndexWidth selects the index width of the GPU backend. Ignored by
	// the CPU backends. The zero value is Index32.
	GPUIndexWidth IndexWidth

	// Device overrides the process-wide registered GPU device. Leave nil to
	// use gpu.Default.
	Device gpu.Device

	// Logger receives backend selection and initialization diagnostics.
	// Leave nil to discard them.
	Logger *slog.Logger
}

func (o Options) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
