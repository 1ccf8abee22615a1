package analysis

import (
	"math/bits"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	"gonum.org/v1/gonum/stat"
)

// Spectrum returns the magnitude of the first half of the DFT of signal
// with its mean removed, zero-padded to a power of two. Bin k corresponds
// to frequency k / (len(result)*2*dt).
func Spectrum(signal []float64) []float64 {
	if len(signal) < 2 {
		return nil
	}
	n := nextPow2(len(signal))
	mean := stat.Mean(signal, nil)
	padded := make([]float64, n)
	for i, v := range signal {
		padded[i] = v - mean
	}

	coeffs := fft.FFTReal(padded)
	ps := make([]float64, n/2)
	for i := range ps {
		ps[i] = cmplx.Abs(coeffs[i])
	}
	return ps
}

// DominantFrequency returns the frequency of the strongest non-DC bin of
// signal sampled every dt, and that bin's magnitude.
func DominantFrequency(signal []float64, dt float64) (float64, float64) {
	ps := Spectrum(signal)
	if len(ps) < 2 || dt <= 0 {
		return 0, 0
	}
	best := 1
	for k := 2; k < len(ps); k++ {
		if ps[k] > ps[best] {
			best = k
		}
	}
	n := 2 * len(ps)
	return float64(best) / (float64(n) * dt), ps[best]
}

func nextPow2(n int) int {
	if n <= 1 {
		return 1
	}
	return 1 << bits.Len(uint(n-1))
}
