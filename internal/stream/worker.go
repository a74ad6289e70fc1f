package stream

import (
	"io"
	"log"
	"sync/atomic"
	"time"

	"github.com/linuxmatters/wavepool/internal/device"
)

// Voice is the playback-device surface the worker drives. *device.Voice
// satisfies it; tests substitute a scripted fake.
type Voice interface {
	Submit(*device.Buffer)
	Processed() int
	Unqueue(max int) []*device.Buffer
	Playing() bool
	Play()
	Pause()
	Stop()
}

// playState is the worker's position in its state machine.
type playState int

const (
	stateIdle playState = iota
	statePlaying
	statePaused
	stateFinished // terminal
)

// worker drives one streaming source from its own goroutine: it drains the
// command mailbox, refills spent device buffers from the decoder, and owns
// the play/pause/loop state. Once streaming begins, the pool and decoder
// belong exclusively to the worker; the only state shared with the
// controller is the command channel and the finished flag.
//
// Errors inside the worker never cross the goroutine boundary. A decoder
// fault is logged and converted into a finish, so a corrupt stream degrades
// to silent completion rather than a stuck one.
type worker struct {
	voice    Voice
	pool     *bufferPool
	cmds     <-chan command
	finished *atomic.Bool
	done     chan struct{}

	commandPoll    time.Duration
	refillInterval time.Duration

	state playState
	loop  bool
}

// run is the worker loop. It blocks on the command mailbox for at most
// commandPoll so controls stay responsive, performs one refill pass per tick
// while playing, and exits exactly once the Finished state is reached.
// It releases no resources on the way out - cleanup of native handles is
// the source's job once the controller observes completion.
func (w *worker) run() {
	defer close(w.done)

	for {
		select {
		case cmd := <-w.cmds:
			w.apply(cmd)
		case <-time.After(w.commandPoll):
		}

		// Drain any burst of commands before refilling so a rapid
		// Pause-then-Play sequence lands in order within one tick.
		for w.state != stateFinished {
			select {
			case cmd := <-w.cmds:
				w.apply(cmd)
				continue
			default:
			}
			break
		}

		if w.state == statePlaying {
			w.refillPass()
			time.Sleep(w.refillInterval)
		}

		if w.state == stateFinished {
			return
		}
	}
}

func (w *worker) apply(cmd command) {
	switch cmd.kind {
	case cmdPlay:
		if w.state == stateIdle || w.state == statePaused {
			w.voice.Play()
			w.state = statePlaying
		}
	case cmdPause:
		if w.state == statePlaying {
			w.voice.Pause()
			w.state = statePaused
		}
	case cmdStop:
		if w.state != stateFinished {
			w.voice.Stop()
			w.finish()
		}
	case cmdSetLoop:
		// Orthogonal to the state machine
		w.loop = cmd.loop
	}
}

// refillPass reclaims the buffers the voice has finished with and refills
// each one from the decoder, resubmitting in unqueue order.
//
// Looping follows a single-reset-per-pass policy: the first exhausted
// refill rewinds the decoder and every later refill in the same pass reads
// from the rewound stream. A second EOF after that reset means the stream
// has nothing left to give even from frame 0, so it finishes rather than
// rewinding forever.
func (w *worker) refillPass() {
	n := w.voice.Processed()
	if n == 0 {
		w.heal()
		return
	}

	w.pool.release(w.voice.Unqueue(n))

	didReset := false
	for i := 0; i < n; i++ {
		buf, err := w.pool.queueBuffer()
		if err == io.EOF && w.loop && !didReset {
			if rerr := w.pool.reset(); rerr != nil {
				log.Printf("stream: rewind failed, finishing stream: %v", rerr)
				w.finish()
				return
			}
			didReset = true
			buf, err = w.pool.queueBuffer()
		}
		if err == io.EOF {
			// Natural end of stream: stop refilling, let the voice drain
			// what it still holds.
			w.finish()
			return
		}
		if err != nil {
			log.Printf("stream: decoder fault, finishing stream: %v", err)
			w.finish()
			return
		}

		w.voice.Submit(buf)
		w.pool.submitted()
	}

	w.heal()
}

// heal restarts the voice if it drained its queue before we could refill.
func (w *worker) heal() {
	if !w.voice.Playing() {
		w.voice.Play()
	}
}

// finish moves the worker to its terminal state and raises the completion
// flag. The flag is a one-way latch: nothing ever clears it.
func (w *worker) finish() {
	w.state = stateFinished
	w.finished.Store(true)
}
