// Command densebench times the dense Cholesky backends on random symmetric
// positive-definite systems and reports the residual of each solve.
package main

import (
	"flag"
	"fmt"
	"math"
	"math/rand"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sys/cpu"

	ceres "github.com/jmackay2/ceres-solver"
	"github.com/jmackay2/ceres-solver/gpu"
)

func main() {
	var (
		sizeList = flag.String("sizes", "16,64,256", "comma-separated matrix sizes")
		iters    = flag.Int("iters", 20, "benchmark iterations")
		warmup   = flag.Int("warmup", 2, "warmup iterations")
		backends = flag.String("backends", "reference,lapack,cuda", "comma-separated backend kinds")
		seed     = flag.Int64("seed", 1, "rng seed")
	)
	flag.Parse()

	sizes := parseSizes(*sizeList)
	if len(sizes) == 0 {
		fmt.Println("no sizes specified")
		return
	}

	// The cuda kind runs on the simulator unless a real device is registered.
	if gpu.Default() == nil {
		gpu.Register(gpu.NewSimDevice())
	}

	fmt.Printf("arch=%s avx2=%v avx512=%v sse2=%v neon=%v\n",
		runtime.GOARCH, cpu.X86.HasAVX2, cpu.X86.HasAVX512, cpu.X86.HasSSE2, cpu.ARM64.HasASIMD)
	fmt.Printf("iters=%d warmup=%d\n", *iters, *warmup)
	fmt.Printf("%10s  %6s  %12s  %12s\n", "backend", "size", "ns/op", "residual")

	rnd := rand.New(rand.NewSource(*seed))
	for _, name := range strings.Split(*backends, ",") {
		kind, err := ceres.ParseBackendKind(strings.TrimSpace(name))
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		for _, n := range sizes {
			nsPerOp, residual, err := benchBackend(kind, n, *iters, *warmup, rnd)
			if err != nil {
				fmt.Fprintf(os.Stderr, "%s size %d: %v\n", kind, n, err)
				os.Exit(1)
			}
			fmt.Printf("%10s  %6d  %12.0f  %12.3e\n", kind, n, nsPerOp, residual)
		}
	}
}

func benchBackend(kind ceres.BackendKind, n, iters, warmup int, rnd *rand.Rand) (nsPerOp, residual float64, err error) {
	dc, err := ceres.Create(ceres.Options{Kind: kind})
	if err != nil {
		return 0, 0, err
	}
	defer dc.Close()

	a, b := randomSPDSystem(rnd, n)
	lhs := make([]float64, n*n)
	solution := make([]float64, n)

	run := func() error {
		copy(lhs, a)
		if t, err := ceres.FactorAndSolve(dc, n, lhs, b, solution); t != ceres.TerminationSuccess {
			return err
		}
		return nil
	}

	for i := 0; i < warmup; i++ {
		if err := run(); err != nil {
			return 0, 0, err
		}
	}
	start := time.Now()
	for i := 0; i < iters; i++ {
		if err := run(); err != nil {
			return 0, 0, err
		}
	}
	elapsed := time.Since(start)

	return float64(elapsed.Nanoseconds()) / float64(iters), residualNorm(a, solution, b, n), nil
}

// randomSPDSystem builds A = B·Bᵀ + n·I (symmetric positive definite) and a
// right-hand side with random entries.
func randomSPDSystem(rnd *rand.Rand, n int) (a, b []float64) {
	m := make([]float64, n*n)
	for i := range m {
		m[i] = rnd.NormFloat64()
	}
	a = make([]float64, n*n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			var s float64
			for k := 0; k < n; k++ {
				s += m[i*n+k] * m[j*n+k]
			}
			a[i*n+j] = s
		}
		a[i*n+i] += float64(n)
	}
	b = make([]float64, n)
	for i := range b {
		b[i] = rnd.NormFloat64()
	}
	return a, b
}

// residualNorm computes ‖A·x − b‖∞.
func residualNorm(a, x, b []float64, n int) float64 {
	var norm float64
	for i := 0; i < n; i++ {
		var s float64
		for j := 0; j < n; j++ {
			s += a[i*n+j] * x[j]
		}
		norm = math.Max(norm, math.Abs(s-b[i]))
	}
	return norm
}

func parseSizes(list string) []int {
	var sizes []int
	for _, part := range strings.Split(list, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil || n < 1 {
			continue
		}
		sizes = append(sizes, n)
	}
	return sizes
}
