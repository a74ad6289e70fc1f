// Package meter turns decoded audio into spectrum bars and level readings
// for display. It observes the stream on its way to the device and never
// touches the playback path.
package meter

import (
	"math"
	"sync"

	"github.com/argusdusty/gofft"

	"github.com/linuxmatters/wavepool/internal/config"
)

// Meter holds a sliding window of the most recently decoded audio.
// Push is called from the streaming worker via the source's tap; the read
// side runs on the UI goroutine.
type Meter struct {
	numChannels int

	mu     sync.Mutex
	window []float64 // latest mono samples, normalised to [-1, 1]
}

// New creates a meter for interleaved audio with the given channel count.
func New(numChannels int) *Meter {
	if numChannels < 1 {
		numChannels = 1
	}
	return &Meter{
		numChannels: numChannels,
		window:      make([]float64, config.FFTSize),
	}
}

// Push folds an interleaved 16-bit chunk into the analysis window,
// downmixing to mono. Safe to call concurrently with the readers.
func (m *Meter) Push(samples []int16) {
	frames := len(samples) / m.numChannels
	if frames == 0 {
		return
	}
	if frames > config.FFTSize {
		samples = samples[(frames-config.FFTSize)*m.numChannels:]
		frames = config.FFTSize
	}

	mono := make([]float64, frames)
	for i := 0; i < frames; i++ {
		var sum float64
		for ch := 0; ch < m.numChannels; ch++ {
			sum += float64(samples[i*m.numChannels+ch]) / 32768.0
		}
		mono[i] = sum / float64(m.numChannels)
	}

	m.mu.Lock()
	copy(m.window, m.window[frames:])
	copy(m.window[config.FFTSize-frames:], mono)
	m.mu.Unlock()
}

// Bars computes spectrum bar heights in [0, 1] from the current window.
func (m *Meter) Bars(numBars int) []float64 {
	m.mu.Lock()
	windowed := applyHanning(m.window)
	m.mu.Unlock()

	coeffs := gofft.Float64ToComplex128Array(windowed)
	if err := gofft.FFT(coeffs); err != nil {
		return make([]float64, numBars)
	}
	return binFFT(coeffs, numBars)
}

// Levels returns the RMS and peak level of the current window, in [0, 1].
func (m *Meter) Levels() (rms, peak float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var sum float64
	for _, s := range m.window {
		sum += s * s
		if a := math.Abs(s); a > peak {
			peak = a
		}
	}
	return math.Sqrt(sum / float64(len(m.window))), peak
}

// applyHanning applies a Hanning window to the input data
func applyHanning(data []float64) []float64 {
	windowed := make([]float64, len(data))
	n := len(data)
	for i := range data {
		w := 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(n-1)))
		windowed[i] = data[i] * w
	}
	return windowed
}

// binFFT bins FFT coefficients into bars and returns values in [0, 1].
func binFFT(coeffs []complex128, numBars int) []float64 {
	// Use only positive frequencies, and only the first 3/4 of those:
	// most musical content lives below ~16.5kHz and the top bins would
	// render as permanently dead bars.
	halfSize := len(coeffs) / 2
	maxFreqBin := (halfSize * 3) / 4

	bars := make([]float64, numBars)
	binsPerBar := maxFreqBin / numBars
	if binsPerBar == 0 {
		binsPerBar = 1
	}

	for bar := 0; bar < numBars; bar++ {
		start := bar * binsPerBar
		end := start + binsPerBar
		if end > maxFreqBin {
			end = maxFreqBin
		}

		var sum float64
		for i := start; i < end; i++ {
			sum += math.Sqrt(real(coeffs[i])*real(coeffs[i]) + imag(coeffs[i])*imag(coeffs[i]))
		}
		bars[bar] = sum / float64(binsPerBar)
	}

	// Log scale for a usable visual distribution
	const baseScale = 0.0075
	for i := range bars {
		scaled := bars[i] * baseScale
		if scaled < 0.01 {
			bars[i] = 0
			continue
		}
		bars[i] = math.Log10(1 + scaled*9)
		if bars[i] > 1.0 {
			bars[i] = 1.0
		}
	}

	return bars
}
