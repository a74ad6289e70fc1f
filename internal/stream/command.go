package stream

// commandKind enumerates the closed set of worker commands.
type commandKind int

const (
	cmdPlay commandKind = iota
	cmdPause
	cmdStop
	cmdSetLoop
)

// command is an immutable tagged value sent from the controller to the
// worker. Each command is consumed exactly once, in send order; a Pause
// immediately followed by a Play must leave the stream playing.
type command struct {
	kind commandKind
	loop bool // payload for cmdSetLoop
}
