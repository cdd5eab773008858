package testutil

import (
	"fmt"

	algofft "github.com/MeKo-Christian/algo-fft"
	"github.com/cwbudde/algo-vecmath"
)

// PeakFrequency returns the frequency of the strongest non-DC spectral bin
// of samples. The signal is zero-padded to the next power of two before the
// transform, so resolution is sampleRate/paddedLength.
func PeakFrequency(samples []float64, sampleRate float64) (float64, error) {
	if len(samples) < 2 {
		return 0, fmt.Errorf("peak frequency needs at least 2 samples: %d", len(samples))
	}
	if sampleRate <= 0 {
		return 0, fmt.Errorf("sample rate must be > 0: %f", sampleRate)
	}

	fftSize := 1
	for fftSize < len(samples) {
		fftSize *= 2
	}

	inData := make([]complex128, fftSize)
	for i, v := range samples {
		inData[i] = complex(v, 0)
	}

	plan, err := algofft.NewPlan64(fftSize)
	if err != nil {
		return 0, err
	}

	out := make([]complex128, fftSize)
	if err := plan.Forward(out, inData); err != nil {
		return 0, err
	}

	half := fftSize / 2
	re := make([]float64, half)
	im := make([]float64, half)
	for i := 0; i < half; i++ {
		re[i] = real(out[i])
		im[i] = imag(out[i])
	}

	mag := make([]float64, half)
	vecmath.Magnitude(mag, re, im)

	peak := 1
	for i := 2; i < half; i++ {
		if mag[i] > mag[peak] {
			peak = i
		}
	}

	return float64(peak) * sampleRate / float64(fftSize), nil
}
