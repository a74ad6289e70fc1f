package stream

import (
	"sync"

	"github.com/linuxmatters/wavepool/internal/audio"
	"github.com/linuxmatters/wavepool/internal/device"
)

// bufferPool is a fixed ring of buffer slots fed from a decoder.
//
// Every slot is owned at any instant by exactly one of: the voice's playback
// queue, the worker (mid-refill), or the pool's free count. queueBuffer,
// submitted and release move a slot between those owners; the sum of the
// three counts never changes. Native handles are not reused in place - each
// refill wraps a fresh device.Buffer, so a handle still enqueued at the
// voice can never be written to.
type bufferPool struct {
	dec             audio.Decoder
	framesPerBuffer int
	tap             func([]int16)

	mu     sync.Mutex
	free   int
	held   int // filled by the worker, not yet submitted
	queued int // enqueued at the voice
}

func newBufferPool(dec audio.Decoder, size, framesPerBuffer int, tap func([]int16)) *bufferPool {
	return &bufferPool{
		dec:             dec,
		framesPerBuffer: framesPerBuffer,
		tap:             tap,
		free:            size,
	}
}

// queueBuffer pulls one chunk from the decoder into a fresh buffer handle.
//
// io.EOF from the decoder propagates unchanged: it is the worker's
// end-of-stream signal, not a fault. Slot ownership moves free → held only
// on success.
func (p *bufferPool) queueBuffer() (*device.Buffer, error) {
	samples, err := p.dec.ReadFrames(p.framesPerBuffer)
	if err != nil {
		return nil, err
	}

	if p.tap != nil {
		p.tap(samples)
	}

	p.mu.Lock()
	p.free--
	p.held++
	p.mu.Unlock()

	return device.NewBuffer(samples, p.dec.NumChannels()), nil
}

// submitted records that the last filled buffer is now enqueued at the voice.
func (p *bufferPool) submitted() {
	p.mu.Lock()
	p.held--
	p.queued++
	p.mu.Unlock()
}

// release retires spent buffer handles reclaimed from the voice, returning
// their slots to the free pool. The handles themselves are left for the
// garbage collector; a fresh one is created per refill.
func (p *bufferPool) release(bufs []*device.Buffer) {
	if len(bufs) == 0 {
		return
	}
	p.mu.Lock()
	p.queued -= len(bufs)
	p.free += len(bufs)
	p.mu.Unlock()
}

// reset rewinds the decoder to frame 0. Used to implement looping.
func (p *bufferPool) reset() error {
	return p.dec.Rewind()
}

// counts returns the (free, worker-held, queued-at-voice) slot counts.
func (p *bufferPool) counts() (free, held, queued int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.free, p.held, p.queued
}
