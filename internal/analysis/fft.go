package analysis

import (
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	"github.com/mjibson/go-dsp/window"

	"github.com/san-kum/lagsim/internal/sim"
)

// Spectrum is the one-sided amplitude spectrum of a uniformly sampled signal.
type Spectrum struct {
	Frequencies []float64
	Amplitudes  []float64
}

// PowerSpectrum returns the magnitudes of the first half of the DFT of
// data after a Hann window. Any length is accepted.
func PowerSpectrum(data []float64) []float64 {
	if len(data) == 0 {
		return nil
	}
	windowed := make([]float64, len(data))
	copy(windowed, data)
	window.Apply(windowed, window.Hann)

	coeffs := fft.FFTReal(windowed)
	ps := make([]float64, len(coeffs)/2)
	for i := range ps {
		ps[i] = cmplx.Abs(coeffs[i])
	}
	return ps
}

// SpectrumOf computes the spectrum of state component idx across tr. The
// records must be evenly spaced in time.
func SpectrumOf(tr *sim.Trajectory, idx int) (*Spectrum, error) {
	if tr == nil || tr.Len() < 4 {
		return nil, errTooShort
	}
	if idx < 0 || idx >= len(tr.States[0]) {
		return nil, errIndex(idx, len(tr.States[0]))
	}

	signal := make([]float64, tr.Len())
	var mean float64
	for i, x := range tr.States {
		signal[i] = x[idx]
		mean += x[idx]
	}
	mean /= float64(len(signal))
	for i := range signal {
		signal[i] -= mean
	}

	dt := (tr.Times[tr.Len()-1] - tr.Times[0]) / float64(tr.Len()-1)
	amps := PowerSpectrum(signal)
	freqs := make([]float64, len(amps))
	df := 1 / (dt * float64(len(signal)))
	for i := range freqs {
		freqs[i] = float64(i) * df
	}
	return &Spectrum{Frequencies: freqs, Amplitudes: amps}, nil
}

// Dominant returns the frequency with the largest amplitude, skipping DC.
func (s *Spectrum) Dominant() float64 {
	best, at := 0.0, 0
	for i := 1; i < len(s.Amplitudes); i++ {
		if s.Amplitudes[i] > best {
			best, at = s.Amplitudes[i], i
		}
	}
	return s.Frequencies[at]
}
