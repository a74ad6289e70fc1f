package device

import (
	"fmt"

	"github.com/ebitengine/oto/v3"
)

// Context owns the process-wide audio device connection.
//
// oto allows a single context per process, so open one Context up front and
// create voices from it for each sound.
type Context struct {
	ctx         *oto.Context
	sampleRate  int
	numChannels int
}

// NewContext opens the audio device for the given output format.
func NewContext(sampleRate, numChannels int) (*Context, error) {
	op := &oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: numChannels,
		Format:       oto.FormatSignedInt16LE,
	}

	ctx, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, fmt.Errorf("failed to open audio device: %w", err)
	}
	<-ready

	return &Context{
		ctx:         ctx,
		sampleRate:  sampleRate,
		numChannels: numChannels,
	}, nil
}

// SampleRate returns the context's output sample rate in Hz.
func (c *Context) SampleRate() int {
	return c.sampleRate
}

// NumChannels returns the context's output channel count.
func (c *Context) NumChannels() int {
	return c.numChannels
}

// Voice is one playback voice on the device: an oto player pulling PCM from
// a queue of submitted buffers.
type Voice struct {
	bufferQueue
	player *oto.Player
}

// NewVoice creates a playback voice.
//
// The underlying oto player starts pulling immediately and is fed silence
// until transport starts; Play and Pause act on the queue, not the player,
// so pause/resume never tears down backend state.
func (c *Context) NewVoice() *Voice {
	v := &Voice{}
	v.player = c.ctx.NewPlayer(&v.bufferQueue)
	v.player.Play()
	return v
}

// Close stops the voice and releases the backend player.
func (v *Voice) Close() error {
	v.bufferQueue.Stop()
	if v.player != nil {
		return v.player.Close()
	}
	return nil
}
