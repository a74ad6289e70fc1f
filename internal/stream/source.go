// Package stream implements the streaming playback engine: a per-source
// background worker decodes audio incrementally into a rotating pool of
// device buffers while the controlling goroutine issues commands and polls
// completion without ever blocking.
package stream

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/linuxmatters/wavepool/internal/audio"
	"github.com/linuxmatters/wavepool/internal/config"
)

var (
	// ErrAlreadyAttached is returned when attaching a sound to a source
	// that already has one.
	ErrAlreadyAttached = errors.New("source already has a sound attached")

	// ErrNotAttached is returned for commands issued before any sound is
	// attached.
	ErrNotAttached = errors.New("no sound attached to source")

	// ErrClosed is returned for operations on a closed source.
	ErrClosed = errors.New("source is closed")

	// ErrInvalidCommand is returned for command types a source kind does
	// not support.
	ErrInvalidCommand = errors.New("command not valid for this source kind")

	// ErrEmptyStream is returned when an attached sound yields no audio.
	ErrEmptyStream = errors.New("stream contains no audio")
)

// Source is the capability surface shared by the playback variants. The
// variant - streaming or one-shot - is chosen at construction time.
//
// HasFinished is poll-only on purpose: the controller stays responsive to
// its own loop instead of blocking on stream completion.
type Source interface {
	Play() error
	Pause() error
	Stop() error
	SetLoop(bool) error
	HasFinished() bool
	Close() error
}

// Config tunes a streaming source. Zero values take the package defaults.
type Config struct {
	// PoolSize is the number of device buffers kept in rotation.
	PoolSize int

	// FramesPerBuffer is the decode chunk size per buffer.
	FramesPerBuffer int

	// CommandPoll bounds how long the worker waits on the command mailbox.
	CommandPoll time.Duration

	// RefillInterval is the worker's sleep between refill passes while
	// playing.
	RefillInterval time.Duration

	// Tap, when set, observes each decoded chunk before upload. The slice
	// must not be retained.
	Tap func([]int16)
}

func (c *Config) applyDefaults() {
	if c.PoolSize <= 0 {
		c.PoolSize = config.PoolSize
	}
	if c.FramesPerBuffer <= 0 {
		c.FramesPerBuffer = config.FramesPerBuffer
	}
	if c.CommandPoll <= 0 {
		c.CommandPoll = config.CommandPollTimeout
	}
	if c.RefillInterval <= 0 {
		c.RefillInterval = config.RefillInterval
	}
}

// StreamingSource plays audio too large to decode and hold in memory at
// once by cycling a small pool of device buffers through a background
// worker. One source owns exactly one decoder and one buffer pool for its
// lifetime; its worker goroutine is spawned at Attach and terminates when
// the stream finishes or is stopped.
//
// The source does not own the voice it plays through - whoever created the
// voice closes it.
type StreamingSource struct {
	voice Voice

	mu       sync.Mutex
	attached bool
	closed   bool

	dec  audio.Decoder
	pool *bufferPool
	cmds chan command
	done chan struct{}

	finished atomic.Bool
}

var _ Source = (*StreamingSource)(nil)

// NewStreamingSource creates a streaming source that plays through voice.
func NewStreamingSource(voice Voice) *StreamingSource {
	return &StreamingSource{voice: voice}
}

// Attach hands a decoder to the source and spawns its worker.
//
// The buffer pool is primed before the worker starts, so playback can begin
// the moment Play arrives. A file shorter than the pool primes fewer
// buffers; a decoder with no audio at all fails here, synchronously, before
// any worker exists. The source owns the decoder from this point on and
// will close it.
func (s *StreamingSource) Attach(dec audio.Decoder, cfg Config) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	if s.attached {
		return ErrAlreadyAttached
	}

	cfg.applyDefaults()
	pool := newBufferPool(dec, cfg.PoolSize, cfg.FramesPerBuffer, cfg.Tap)

	primed := 0
	for i := 0; i < cfg.PoolSize; i++ {
		buf, err := pool.queueBuffer()
		if err == io.EOF {
			break
		}
		if err != nil {
			// Reclaim whatever was primed before the fault
			s.voice.Stop()
			s.voice.Unqueue(s.voice.Processed())
			return fmt.Errorf("failed to prime stream: %w", err)
		}
		s.voice.Submit(buf)
		pool.submitted()
		primed++
	}
	if primed == 0 {
		return ErrEmptyStream
	}

	s.dec = dec
	s.pool = pool
	s.cmds = make(chan command, config.CommandQueueDepth)
	s.done = make(chan struct{})
	s.attached = true

	w := &worker{
		voice:          s.voice,
		pool:           pool,
		cmds:           s.cmds,
		finished:       &s.finished,
		done:           s.done,
		commandPoll:    cfg.CommandPoll,
		refillInterval: cfg.RefillInterval,
	}
	go w.run()

	return nil
}

// Play starts or resumes playback.
func (s *StreamingSource) Play() error {
	return s.send(command{kind: cmdPlay})
}

// Pause suspends playback, keeping the stream position.
func (s *StreamingSource) Pause() error {
	return s.send(command{kind: cmdPause})
}

// Stop ends the stream permanently. Stopping an already finished stream is
// a no-op.
func (s *StreamingSource) Stop() error {
	return s.send(command{kind: cmdStop})
}

// SetLoop enables or disables looping. Orthogonal to playback state.
func (s *StreamingSource) SetLoop(loop bool) error {
	return s.send(command{kind: cmdSetLoop, loop: loop})
}

// HasFinished reports whether the stream has permanently ended, either by
// Stop or by running out of audio with looping disabled. It never reverts
// to false.
func (s *StreamingSource) HasFinished() bool {
	return s.finished.Load()
}

// send enqueues a command for the worker. Sends are fire-and-forget and
// ordered; the mailbox is deep enough that a live worker always drains it
// long before a controller can fill it.
func (s *StreamingSource) send(cmd command) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	if !s.attached {
		return ErrNotAttached
	}

	select {
	case s.cmds <- cmd:
	default:
		// Mailbox full. A finished worker no longer drains it, and every
		// command is inert once finished anyway.
		if !s.finished.Load() {
			s.cmds <- cmd
		}
	}
	return nil
}

// Close stops the worker if it is still running and releases the decoder
// and remaining buffer handles. Cleanup happens here, on the controller
// side - the worker never frees resources itself.
func (s *StreamingSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	if !s.attached {
		return nil
	}

	select {
	case s.cmds <- command{kind: cmdStop}:
	case <-s.done:
	}
	<-s.done

	s.voice.Stop()
	s.pool.release(s.voice.Unqueue(s.voice.Processed()))

	return s.dec.Close()
}
