package audio

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrUnsupportedFormat is returned by Open for file extensions no decoder handles.
var ErrUnsupportedFormat = errors.New("unsupported audio format")

// Decoder is the frame-read contract all format decoders implement.
//
// Frames are interleaved 16-bit samples, one sample per channel per frame.
// ReadFrames returns io.EOF only when zero frames remain; a short read near
// the end of the file still yields data, and exhaustion signals on the
// following call. After Rewind the next ReadFrames resumes from frame 0.
type Decoder interface {
	// ReadFrames decodes up to n frames and returns them interleaved.
	ReadFrames(n int) ([]int16, error)

	// Rewind resets the read cursor to the start of the stream.
	Rewind() error

	// SampleRate returns the audio sample rate in Hz.
	SampleRate() int

	// NumChannels returns the number of audio channels (1=mono, 2=stereo).
	NumChannels() int

	// TotalFrames returns the total frame count, or 0 if unknown.
	TotalFrames() int64

	// Close closes the decoder and releases resources.
	Close() error
}

// Open creates a decoder for the given file, dispatching on extension.
func Open(filename string) (Decoder, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".wav":
		return NewWAVDecoder(filename)
	case ".mp3":
		return NewMP3Decoder(filename)
	case ".flac":
		return NewFLACDecoder(filename)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filename)
	}
}
