package stream

import (
	"fmt"
	"io"
	"sync"

	"github.com/linuxmatters/wavepool/internal/audio"
	"github.com/linuxmatters/wavepool/internal/config"
	"github.com/linuxmatters/wavepool/internal/device"
)

// BufferedSource is the one-shot playback variant behind the shared Source
// interface: the entire sound is decoded into a single device buffer at
// attach time. Suited to short sounds; anything big belongs on a
// StreamingSource.
type BufferedSource struct {
	voice Voice

	mu       sync.Mutex
	attached bool
	closed   bool
}

var _ Source = (*BufferedSource)(nil)

// NewBufferedSource creates a one-shot source that plays through voice.
func NewBufferedSource(voice Voice) *BufferedSource {
	return &BufferedSource{voice: voice}
}

// Attach decodes the whole sound into one buffer and submits it. The
// decoder is fully drained here and no longer needed, but remains the
// caller's to close.
func (b *BufferedSource) Attach(dec audio.Decoder) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return ErrClosed
	}
	if b.attached {
		return ErrAlreadyAttached
	}

	var samples []int16
	for {
		chunk, err := dec.ReadFrames(config.FramesPerBuffer)
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to decode sound: %w", err)
		}
		samples = append(samples, chunk...)
	}
	if len(samples) == 0 {
		return ErrEmptyStream
	}

	b.voice.Submit(device.NewBuffer(samples, dec.NumChannels()))
	b.attached = true
	return nil
}

// Play starts or resumes playback.
func (b *BufferedSource) Play() error {
	return b.transport(b.voice.Play)
}

// Pause suspends playback, keeping position.
func (b *BufferedSource) Pause() error {
	return b.transport(b.voice.Pause)
}

// Stop ends playback permanently.
func (b *BufferedSource) Stop() error {
	return b.transport(b.voice.Stop)
}

// SetLoop is not valid for one-shot sources.
func (b *BufferedSource) SetLoop(bool) error {
	return ErrInvalidCommand
}

// HasFinished reports whether the sound has been played (or stopped) to
// completion.
func (b *BufferedSource) HasFinished() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.attached && b.voice.Processed() > 0
}

// Close stops playback and reclaims the buffer handle.
func (b *BufferedSource) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true

	if b.attached {
		b.voice.Stop()
		b.voice.Unqueue(b.voice.Processed())
	}
	return nil
}

func (b *BufferedSource) transport(op func()) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return ErrClosed
	}
	if !b.attached {
		return ErrNotAttached
	}
	op()
	return nil
}
