//go:build cuda

package gpu

// CUDADevice is a stub device enabled with the "cuda" build tag. It does not
// provide a working binding yet; requesting a context reports the device as
// unavailable.
type CUDADevice struct{}

func (d *CUDADevice) Info() DeviceInfo {
	return DeviceInfo{Name: "cuda", Driver: "stub"}
}

func (d *CUDADevice) Available() bool { return false }

func (d *CUDADevice) NewContext() (Context, error) {
	return nil, ErrDeviceUnavailable
}

// RegisterCUDADevice registers the CUDA device stub as the process default.
func RegisterCUDADevice() {
	Register(&CUDADevice{})
}
