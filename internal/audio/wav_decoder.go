package audio

import (
	"fmt"
	"io"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// WAVDecoder implements Decoder for WAV files
type WAVDecoder struct {
	decoder     *wav.Decoder
	file        *os.File
	sampleRate  int
	bitDepth    int
	numChannels int
	totalFrames int64
	position    int64
}

// NewWAVDecoder creates a new WAV decoder
func NewWAVDecoder(filename string) (*WAVDecoder, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}

	decoder := wav.NewDecoder(f)
	if !decoder.IsValidFile() {
		f.Close()
		return nil, fmt.Errorf("invalid WAV file")
	}

	// Get format info without reading all samples
	if err := decoder.FwdToPCM(); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to seek to PCM data: %w", err)
	}

	// PCMLen gives the length of PCM data in bytes
	bytesPerSample := int64(decoder.BitDepth / 8)
	numChannels := int64(decoder.NumChans)
	totalFrames := int64(decoder.PCMLen()) / (bytesPerSample * numChannels)

	return &WAVDecoder{
		decoder:     decoder,
		file:        f,
		sampleRate:  int(decoder.SampleRate),
		bitDepth:    int(decoder.BitDepth),
		numChannels: int(decoder.NumChans),
		totalFrames: totalFrames,
	}, nil
}

// ReadFrames reads up to n frames of interleaved 16-bit samples
func (d *WAVDecoder) ReadFrames(n int) ([]int16, error) {
	if d.position >= d.totalFrames {
		return nil, io.EOF
	}

	// Adjust if requesting more frames than remain
	if d.position+int64(n) > d.totalFrames {
		n = int(d.totalFrames - d.position)
	}

	intBuf := &audio.IntBuffer{
		Data: make([]int, n*d.numChannels),
		Format: &audio.Format{
			NumChannels: d.numChannels,
			SampleRate:  d.sampleRate,
		},
	}

	read, err := d.decoder.PCMBuffer(intBuf)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to read PCM buffer: %w", err)
	}

	if read == 0 {
		return nil, io.EOF
	}

	// Scale whatever bit depth the file carries to 16-bit
	samples := make([]int16, read)
	for i := 0; i < read; i++ {
		samples[i] = scaleTo16(intBuf.Data[i], d.bitDepth)
	}

	d.position += int64(read / d.numChannels)
	return samples, nil
}

// Rewind resets the decoder to the start of the PCM data
func (d *WAVDecoder) Rewind() error {
	if _, err := d.file.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("failed to rewind WAV file: %w", err)
	}

	// The wav decoder keeps internal chunk state, so re-enter the file
	// from scratch rather than trying to unwind it.
	decoder := wav.NewDecoder(d.file)
	if !decoder.IsValidFile() {
		return fmt.Errorf("invalid WAV file on rewind")
	}
	if err := decoder.FwdToPCM(); err != nil {
		return fmt.Errorf("failed to seek to PCM data: %w", err)
	}

	d.decoder = decoder
	d.position = 0
	return nil
}

// SampleRate returns the sample rate
func (d *WAVDecoder) SampleRate() int {
	return d.sampleRate
}

// NumChannels returns the number of audio channels
func (d *WAVDecoder) NumChannels() int {
	return d.numChannels
}

// TotalFrames returns the total number of frames
func (d *WAVDecoder) TotalFrames() int64 {
	return d.totalFrames
}

// Close closes the decoder and releases resources
func (d *WAVDecoder) Close() error {
	if d.file != nil {
		return d.file.Close()
	}
	return nil
}

// scaleTo16 converts a sample of the given bit depth to 16-bit signed.
func scaleTo16(v, bitDepth int) int16 {
	switch {
	case bitDepth == 16:
		return int16(v)
	case bitDepth == 8:
		// 8-bit WAV is unsigned
		return int16((v - 128) << 8)
	case bitDepth > 16:
		return int16(v >> (bitDepth - 16))
	default:
		return int16(v << (16 - bitDepth))
	}
}
