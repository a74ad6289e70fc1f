package audio

import (
	"fmt"
	"io"
	"os"

	"github.com/hajimehoshi/go-mp3"
)

// go-mp3 always yields interleaved 16-bit stereo: 4 bytes per frame.
const mp3BytesPerFrame = 4

// MP3Decoder implements Decoder for MP3 files
type MP3Decoder struct {
	decoder    *mp3.Decoder
	file       *os.File
	sampleRate int
}

// NewMP3Decoder creates a new MP3 decoder
func NewMP3Decoder(filename string) (*MP3Decoder, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}

	decoder, err := mp3.NewDecoder(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create MP3 decoder: %w", err)
	}

	return &MP3Decoder{
		decoder:    decoder,
		file:       f,
		sampleRate: decoder.SampleRate(),
	}, nil
}

// ReadFrames reads up to n frames of interleaved 16-bit samples
func (d *MP3Decoder) ReadFrames(n int) ([]int16, error) {
	buf := make([]byte, n*mp3BytesPerFrame)

	// The decoder returns short reads at MP3 frame boundaries, so keep
	// reading until the chunk is full or the stream runs dry.
	read := 0
	for read < len(buf) {
		m, err := d.decoder.Read(buf[read:])
		read += m
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read MP3 data: %w", err)
		}
	}

	if read == 0 {
		return nil, io.EOF
	}

	frames := read / mp3BytesPerFrame
	samples := make([]int16, frames*2)
	for i := range samples {
		samples[i] = int16(buf[i*2]) | int16(buf[i*2+1])<<8
	}

	return samples, nil
}

// Rewind resets the decoder to the start of the stream
func (d *MP3Decoder) Rewind() error {
	if _, err := d.decoder.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("failed to rewind MP3 stream: %w", err)
	}
	return nil
}

// SampleRate returns the sample rate
func (d *MP3Decoder) SampleRate() int {
	return d.sampleRate
}

// NumChannels returns the number of audio channels
func (d *MP3Decoder) NumChannels() int {
	return 2 // go-mp3 always outputs stereo
}

// TotalFrames returns the total number of frames
func (d *MP3Decoder) TotalFrames() int64 {
	return d.decoder.Length() / mp3BytesPerFrame
}

// Close closes the decoder and releases resources
func (d *MP3Decoder) Close() error {
	if d.file != nil {
		return d.file.Close()
	}
	return nil
}
