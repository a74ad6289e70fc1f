package device

import "sync"

// bufferQueue holds the buffers submitted to a voice and feeds their PCM to
// the audio backend via Read. It is the pure half of a Voice: all queue and
// transport state lives here, behind one mutex, with no backend types, so
// the semantics are testable without a sound card.
//
// Read always fills the output slice completely, substituting silence when
// the queue is drained or transport is paused. The backend is never starved,
// which keeps underruns a stream-level concern rather than a device fault.
type bufferQueue struct {
	mu        sync.Mutex
	queued    []*Buffer
	offset    int // read position within queued[0]
	processed []*Buffer
	playing   bool
}

// Submit appends a filled buffer to the playback queue.
func (q *bufferQueue) Submit(b *Buffer) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.queued = append(q.queued, b)
}

// Processed reports how many submitted buffers have been fully consumed
// and not yet unqueued.
func (q *bufferQueue) Processed() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.processed)
}

// Unqueue removes and returns up to max fully consumed buffer handles,
// oldest first.
func (q *bufferQueue) Unqueue(max int) []*Buffer {
	q.mu.Lock()
	defer q.mu.Unlock()

	if max > len(q.processed) {
		max = len(q.processed)
	}
	if max <= 0 {
		return nil
	}

	out := q.processed[:max]
	q.processed = q.processed[max:]
	return out
}

// Playing reports whether the voice is actively outputting queued audio.
// A started voice with a drained queue is not playing: that is an underrun.
func (q *bufferQueue) Playing() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.playing && len(q.queued) > 0
}

// Play starts or resumes transport.
func (q *bufferQueue) Play() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.playing = true
}

// Pause halts transport without losing the queue position.
func (q *bufferQueue) Pause() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.playing = false
}

// Stop halts transport and retires every queued buffer, consumed or not,
// so the owner can reclaim all handles via Unqueue.
func (q *bufferQueue) Stop() {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.playing = false
	q.processed = append(q.processed, q.queued...)
	q.queued = nil
	q.offset = 0
}

// Read implements io.Reader for the audio backend.
func (q *bufferQueue) Read(p []byte) (int, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	n := 0
	if q.playing {
		for n < len(p) && len(q.queued) > 0 {
			head := q.queued[0]
			copied := copy(p[n:], head.PCM[q.offset:])
			n += copied
			q.offset += copied

			if q.offset >= len(head.PCM) {
				q.processed = append(q.processed, head)
				q.queued = q.queued[1:]
				q.offset = 0
			}
		}
	}

	// Pad with silence so the backend never blocks on us
	for i := n; i < len(p); i++ {
		p[i] = 0
	}
	return len(p), nil
}
