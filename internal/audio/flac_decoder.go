package audio

import (
	"fmt"
	"io"
	"os"

	"github.com/mewkiz/flac"
)

// FLACDecoder implements Decoder for FLAC files
type FLACDecoder struct {
	stream      *flac.Stream
	file        *os.File
	sampleRate  int
	numChannels int
	totalFrames int64

	// Samples left over from the last parsed FLAC frame. ReadFrames hands
	// out whole decoder chunks, FLAC hands out whole frames; the two rarely
	// line up.
	pending []int16
}

// NewFLACDecoder creates a new FLAC decoder
func NewFLACDecoder(filename string) (*FLACDecoder, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}

	// Parse FLAC stream - reads signature and StreamInfo block
	stream, err := flac.New(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create FLAC decoder: %w", err)
	}

	info := stream.Info
	return &FLACDecoder{
		stream:      stream,
		file:        f,
		sampleRate:  int(info.SampleRate),
		numChannels: int(info.NChannels),
		totalFrames: int64(info.NSamples),
	}, nil
}

// ReadFrames reads up to n frames of interleaved 16-bit samples
func (d *FLACDecoder) ReadFrames(n int) ([]int16, error) {
	want := n * d.numChannels
	samples := make([]int16, 0, want)

	// Drain the leftover from the previous call first
	if len(d.pending) > 0 {
		take := len(d.pending)
		if take > want {
			take = want
		}
		samples = append(samples, d.pending[:take]...)
		d.pending = d.pending[take:]
	}

	for len(samples) < want {
		frame, err := d.stream.ParseNext()
		if err != nil {
			if err == io.EOF {
				if len(samples) == 0 {
					return nil, io.EOF
				}
				return samples, nil
			}
			return nil, fmt.Errorf("failed to parse FLAC frame: %w", err)
		}

		// One subframe per channel; interleave and scale to 16-bit
		frameLen := len(frame.Subframes[0].Samples)
		bps := int(frame.BitsPerSample)
		for i := 0; i < frameLen; i++ {
			for ch := 0; ch < d.numChannels; ch++ {
				s := flacTo16(frame.Subframes[ch].Samples[i], bps)
				if len(samples) < want {
					samples = append(samples, s)
				} else {
					d.pending = append(d.pending, s)
				}
			}
		}
	}

	return samples, nil
}

// Rewind resets the decoder to the start of the stream
func (d *FLACDecoder) Rewind() error {
	if _, err := d.file.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("failed to rewind FLAC file: %w", err)
	}

	stream, err := flac.New(d.file)
	if err != nil {
		return fmt.Errorf("failed to reopen FLAC stream: %w", err)
	}

	d.stream = stream
	d.pending = nil
	return nil
}

// SampleRate returns the sample rate
func (d *FLACDecoder) SampleRate() int {
	return d.sampleRate
}

// NumChannels returns the number of audio channels
func (d *FLACDecoder) NumChannels() int {
	return d.numChannels
}

// TotalFrames returns the total number of frames
func (d *FLACDecoder) TotalFrames() int64 {
	return d.totalFrames
}

// Close closes the decoder and releases resources
func (d *FLACDecoder) Close() error {
	if d.stream != nil {
		d.stream.Close()
	}
	if d.file != nil {
		return d.file.Close()
	}
	return nil
}

// flacTo16 scales a FLAC sample (4-32 bits per sample) to 16-bit signed.
func flacTo16(v int32, bps int) int16 {
	switch {
	case bps == 16:
		return int16(v)
	case bps > 16:
		return int16(v >> (bps - 16))
	default:
		return int16(v << (16 - bps))
	}
}
