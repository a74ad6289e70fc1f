// Package device wraps the playback hardware behind a buffer-queue voice.
//
// A Voice accepts filled buffers, reports how many it has finished playing,
// and hands the spent handles back so the streaming layer can recycle them.
package device

// Buffer is one device buffer handle plus the PCM payload written into it.
//
// A fresh Buffer is created per refill cycle and never refilled in place:
// the voice owns the handle from Submit until it reappears from Unqueue.
type Buffer struct {
	// PCM holds interleaved 16-bit little-endian samples.
	PCM []byte

	// Frames is the number of audio frames in PCM.
	Frames int
}

// NewBuffer wraps interleaved 16-bit samples in a fresh buffer handle.
func NewBuffer(samples []int16, numChannels int) *Buffer {
	pcm := make([]byte, len(samples)*2)
	for i, s := range samples {
		pcm[i*2] = byte(s)
		pcm[i*2+1] = byte(uint16(s) >> 8)
	}
	return &Buffer{PCM: pcm, Frames: len(samples) / numChannels}
}
