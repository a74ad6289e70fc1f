package config

import "time"

// Streaming defaults
const (
	// PoolSize is the number of device buffers kept in rotation per stream.
	PoolSize = 4

	// FramesPerBuffer is the chunk size pulled from the decoder per refill.
	// At 44.1kHz this is ~186ms of audio per buffer.
	FramesPerBuffer = 8192

	// CommandQueueDepth bounds the controller→worker mailbox. Commands are
	// fire-and-forget; 64 outstanding commands is practically unbounded for
	// a human-driven controller.
	CommandQueueDepth = 64
)

// Worker timing
//
// These two constants trade refill latency against CPU usage. The command
// poll must stay small so Play/Pause/Stop feel instant; the refill interval
// must beat one buffer's drain time (~186ms at defaults) by a wide margin.
const (
	CommandPollTimeout = 5 * time.Millisecond
	RefillInterval     = 10 * time.Millisecond
)

// Meter settings
const (
	FFTSize = 2048
	NumBars = 64
)

// UI settings
const (
	UITickInterval = 50 * time.Millisecond
)
