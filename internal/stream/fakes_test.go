package stream

import (
	"io"
	"sync"
	"testing"
	"time"

	"github.com/linuxmatters/wavepool/internal/device"
)

// fakeDecoder serves a fixed number of mono frames and counts rewinds.
// Errors can be injected to exercise the decoder-fault paths.
type fakeDecoder struct {
	mu          sync.Mutex
	totalFrames int64
	position    int64
	rewinds     int
	readErr     error
	rewindErr   error
	closed      bool
}

func (d *fakeDecoder) ReadFrames(n int) ([]int16, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.readErr != nil {
		return nil, d.readErr
	}
	remaining := d.totalFrames - d.position
	if remaining <= 0 {
		return nil, io.EOF
	}
	if int64(n) > remaining {
		n = int(remaining)
	}

	samples := make([]int16, n)
	for i := range samples {
		samples[i] = int16((d.position + int64(i)) % 1000)
	}
	d.position += int64(n)
	return samples, nil
}

func (d *fakeDecoder) Rewind() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.rewindErr != nil {
		return d.rewindErr
	}
	d.position = 0
	d.rewinds++
	return nil
}

func (d *fakeDecoder) SampleRate() int    { return 44100 }
func (d *fakeDecoder) NumChannels() int   { return 1 }
func (d *fakeDecoder) TotalFrames() int64 { return d.totalFrames }

func (d *fakeDecoder) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	return nil
}

func (d *fakeDecoder) rewindCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.rewinds
}

func (d *fakeDecoder) wasClosed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.closed
}

func (d *fakeDecoder) setReadErr(err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.readErr = err
}

// fakeVoice is a scripted playback device. The test plays the role of the
// hardware by calling consume to mark queued buffers as played.
type fakeVoice struct {
	mu        sync.Mutex
	queued    []*device.Buffer
	processed []*device.Buffer
	playing   bool
	submits   int
	ops       []string
}

func (v *fakeVoice) Submit(b *device.Buffer) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.queued = append(v.queued, b)
	v.submits++
}

func (v *fakeVoice) Processed() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.processed)
}

func (v *fakeVoice) Unqueue(max int) []*device.Buffer {
	v.mu.Lock()
	defer v.mu.Unlock()

	if max > len(v.processed) {
		max = len(v.processed)
	}
	if max <= 0 {
		return nil
	}
	out := v.processed[:max]
	v.processed = v.processed[max:]
	return out
}

func (v *fakeVoice) Playing() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.playing && len(v.queued) > 0
}

func (v *fakeVoice) Play() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.playing = true
	v.ops = append(v.ops, "play")
}

func (v *fakeVoice) Pause() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.playing = false
	v.ops = append(v.ops, "pause")
}

func (v *fakeVoice) Stop() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.playing = false
	v.processed = append(v.processed, v.queued...)
	v.queued = nil
	v.ops = append(v.ops, "stop")
}

// consume marks up to n queued buffers as played by the device.
// Returns how many were actually consumed.
func (v *fakeVoice) consume(n int) int {
	v.mu.Lock()
	defer v.mu.Unlock()

	if n > len(v.queued) {
		n = len(v.queued)
	}
	v.processed = append(v.processed, v.queued[:n]...)
	v.queued = v.queued[n:]
	if len(v.queued) == 0 {
		// A drained device halts; it needs an explicit Play to restart
		v.playing = false
	}
	return n
}

func (v *fakeVoice) queueDepth() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.queued)
}

func (v *fakeVoice) totalSubmits() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.submits
}

func (v *fakeVoice) opLog() []string {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]string, len(v.ops))
	copy(out, v.ops)
	return out
}

// testConfig keeps worker ticks tight so tests resolve quickly.
func testConfig(poolSize, framesPerBuffer int) Config {
	return Config{
		PoolSize:        poolSize,
		FramesPerBuffer: framesPerBuffer,
		CommandPoll:     time.Millisecond,
		RefillInterval:  time.Millisecond,
	}
}

// waitUntil polls cond until it holds or the deadline passes.
func waitUntil(t *testing.T, timeout time.Duration, cond func() bool, msg string) {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("Timed out waiting for: %s", msg)
}
