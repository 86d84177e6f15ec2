package denoise

import (
	"math"
	"math/cmplx"
	"sort"

	"gonum.org/v1/gonum/dsp/fourier"
)

const (
	frameSize = 1024
	hopSize   = frameSize / 2

	// floorFactor scales the spectral floor before subtraction. Bins
	// this close to the floor are broadband noise; speech harmonics and
	// tones sit well above it.
	floorFactor = 1.5
	// gainFloor keeps a residue of every bin so the output never has
	// hard spectral holes.
	gainFloor = 0.1
)

// reduceNoise applies spectral subtraction frame by frame. The noise
// level of each frame is estimated from the frame itself as its
// spectral floor, so stationary speech content is never mistaken for
// noise the way a whole-signal profile would. The output has exactly
// the length of the input.
func reduceNoise(samples []float64) []float64 {
	if len(samples) < frameSize {
		// Too short to frame; pass through unchanged.
		out := make([]float64, len(samples))
		copy(out, samples)
		return out
	}

	window := hannWindow(frameSize)
	fft := fourier.NewFFT(frameSize)

	numFrames := 1 + (len(samples)-1)/hopSize
	padded := make([]float64, (numFrames-1)*hopSize+frameSize)
	copy(padded, samples)

	out := make([]float64, len(padded))
	wsum := make([]float64, len(padded))
	frame := make([]float64, frameSize)

	for i := 0; i < numFrames; i++ {
		off := i * hopSize
		for n := 0; n < frameSize; n++ {
			frame[n] = padded[off+n] * window[n]
		}

		coeffs := fft.Coefficients(nil, frame)
		mags := make([]float64, len(coeffs))
		for b, c := range coeffs {
			mags[b] = cmplx.Abs(c)
		}
		floor := spectralFloor(mags)

		for b, c := range coeffs {
			mag := mags[b]
			if mag == 0 {
				continue
			}
			kept := mag - floorFactor*floor
			if kept < gainFloor*mag {
				kept = gainFloor * mag
			}
			coeffs[b] = c * complex(kept/mag, 0)
		}

		seq := fft.Sequence(nil, coeffs)
		for n := 0; n < frameSize; n++ {
			out[off+n] += seq[n] / frameSize
			wsum[off+n] += window[n]
		}
	}

	// Normalize by the summed window envelope so the first and last
	// hop, covered by a single window, keep full amplitude.
	for n := range out {
		if wsum[n] > 1e-9 {
			out[n] /= wsum[n]
		}
	}

	return out[:len(samples)]
}

// spectralFloor estimates the broadband noise level of one frame as the
// median bin magnitude. Noise bins cluster around it; spectral peaks
// carrying the actual signal sit far above it.
func spectralFloor(mags []float64) float64 {
	sorted := make([]float64, len(mags))
	copy(sorted, mags)
	sort.Float64s(sorted)
	return sorted[len(sorted)/2]
}

func hannWindow(n int) []float64 {
	w := make([]float64, n)
	for i := range w {
		w[i] = 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(n)))
	}
	return w
}
