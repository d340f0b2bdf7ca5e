package analysis

import (
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

// PowerSpectrum returns the magnitudes of the first half of the spectrum of
// data after removing its mean and zero-padding to a power of two.
func PowerSpectrum(data []float64) []float64 {
	if len(data) == 0 {
		return nil
	}
	m := mean(data)
	n := nextPow2(len(data))
	buf := make([]float64, n)
	for i, v := range data {
		buf[i] = v - m
	}

	spectrum := fft.FFTReal(buf)
	ps := make([]float64, n/2)
	for i := range ps {
		ps[i] = cmplx.Abs(spectrum[i])
	}
	return ps
}

// DominantPeriod is the period in steps of the strongest non-constant
// component of series. It is 0 for flat or very short series.
func DominantPeriod(series []float64) float64 {
	if len(series) < 4 {
		return 0
	}
	ps := PowerSpectrum(series)
	n := 2 * len(ps)

	best, bestK := 0.0, 0
	for k := 1; k < len(ps); k++ {
		if ps[k] > best {
			best, bestK = ps[k], k
		}
	}
	if bestK == 0 || best < 1e-9*float64(n) {
		return 0
	}
	return float64(n) / float64(bestK)
}

func nextPow2(n int) int {
	if n <= 1 {
		return 1
	}
	return 1 << uint(math.Ceil(math.Log2(float64(n))))
}
