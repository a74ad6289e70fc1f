package audio

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// writeTestWAV generates a 16-bit stereo WAV fixture with a deterministic
// ramp pattern so tests can verify sample positions after rewinds.
func writeTestWAV(t *testing.T, frames int) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "fixture.wav")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Failed to create fixture file: %v", err)
	}
	defer f.Close()

	enc := wav.NewEncoder(f, 44100, 16, 2, 1)
	buf := &goaudio.IntBuffer{
		Data:   make([]int, frames*2),
		Format: &goaudio.Format{NumChannels: 2, SampleRate: 44100},
	}
	for i := 0; i < frames; i++ {
		buf.Data[i*2] = i % 1000
		buf.Data[i*2+1] = -(i % 1000)
	}

	if err := enc.Write(buf); err != nil {
		t.Fatalf("Failed to write fixture samples: %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("Failed to close encoder: %v", err)
	}
	return path
}

func TestOpenUnsupportedFormat(t *testing.T) {
	_, err := Open("track.ogg")
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("Open(.ogg) = %v, want ErrUnsupportedFormat", err)
	}
}

func TestOpenMissingFile(t *testing.T) {
	_, err := Open("nonexistent.wav")
	if err == nil {
		t.Error("Expected error for nonexistent file, got nil")
	}
}

func TestWAVDecoderFormat(t *testing.T) {
	path := writeTestWAV(t, 4000)

	dec, err := Open(path)
	if err != nil {
		t.Fatalf("Failed to open decoder: %v", err)
	}
	defer dec.Close()

	if dec.SampleRate() != 44100 {
		t.Errorf("SampleRate = %d, want 44100", dec.SampleRate())
	}
	if dec.NumChannels() != 2 {
		t.Errorf("NumChannels = %d, want 2", dec.NumChannels())
	}
	if dec.TotalFrames() != 4000 {
		t.Errorf("TotalFrames = %d, want 4000", dec.TotalFrames())
	}
}

func TestWAVDecoderReadAll(t *testing.T) {
	const frames = 3000
	path := writeTestWAV(t, frames)

	dec, err := NewWAVDecoder(path)
	if err != nil {
		t.Fatalf("Failed to open decoder: %v", err)
	}
	defer dec.Close()

	// 3000 frames in 1024-frame chunks: two full reads, one short read
	var total int
	for {
		chunk, err := dec.ReadFrames(1024)
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("ReadFrames failed: %v", err)
		}
		if len(chunk)%2 != 0 {
			t.Fatalf("Chunk length %d is not a whole number of stereo frames", len(chunk))
		}
		if len(chunk) > 1024*2 {
			t.Errorf("Chunk larger than requested: %d samples", len(chunk))
		}
		total += len(chunk) / 2
	}

	if total != frames {
		t.Errorf("Read %d frames total, want %d", total, frames)
	}

	// Exhausted decoders must keep failing with EOF
	if _, err := dec.ReadFrames(1024); err != io.EOF {
		t.Errorf("ReadFrames after exhaustion = %v, want io.EOF", err)
	}
}

func TestWAVDecoderSampleValues(t *testing.T) {
	path := writeTestWAV(t, 100)

	dec, err := NewWAVDecoder(path)
	if err != nil {
		t.Fatalf("Failed to open decoder: %v", err)
	}
	defer dec.Close()

	chunk, err := dec.ReadFrames(10)
	if err != nil {
		t.Fatalf("ReadFrames failed: %v", err)
	}

	for i := 0; i < 10; i++ {
		if chunk[i*2] != int16(i) {
			t.Errorf("Frame %d left channel = %d, want %d", i, chunk[i*2], i)
		}
		if chunk[i*2+1] != int16(-i) {
			t.Errorf("Frame %d right channel = %d, want %d", i, chunk[i*2+1], -i)
		}
	}
}

func TestWAVDecoderRewind(t *testing.T) {
	path := writeTestWAV(t, 2000)

	dec, err := NewWAVDecoder(path)
	if err != nil {
		t.Fatalf("Failed to open decoder: %v", err)
	}
	defer dec.Close()

	first, err := dec.ReadFrames(512)
	if err != nil {
		t.Fatalf("Initial read failed: %v", err)
	}

	// Drain the rest so the decoder is exhausted before rewinding
	for {
		if _, err := dec.ReadFrames(512); err == io.EOF {
			break
		} else if err != nil {
			t.Fatalf("Drain read failed: %v", err)
		}
	}

	if err := dec.Rewind(); err != nil {
		t.Fatalf("Rewind failed: %v", err)
	}

	again, err := dec.ReadFrames(512)
	if err != nil {
		t.Fatalf("Read after rewind failed: %v", err)
	}

	if len(again) != len(first) {
		t.Fatalf("Read %d samples after rewind, want %d", len(again), len(first))
	}
	for i := range first {
		if first[i] != again[i] {
			t.Fatalf("Sample %d mismatch after rewind: %d != %d", i, again[i], first[i])
		}
	}
}

func TestWAVDecoderInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bogus.wav")
	if err := os.WriteFile(path, []byte("not a wav file"), 0o644); err != nil {
		t.Fatalf("Failed to write bogus file: %v", err)
	}

	if _, err := NewWAVDecoder(path); err == nil {
		t.Error("Expected error for invalid WAV file, got nil")
	}
}

func TestWAVDecoderCloseTwice(t *testing.T) {
	path := writeTestWAV(t, 100)

	dec, err := NewWAVDecoder(path)
	if err != nil {
		t.Fatalf("Failed to open decoder: %v", err)
	}

	if err := dec.Close(); err != nil {
		t.Errorf("First close failed: %v", err)
	}
	if err := dec.Close(); err != nil {
		t.Logf("Second close returned error (acceptable): %v", err)
	}
}

func TestScaleTo16(t *testing.T) {
	tests := []struct {
		v        int
		bitDepth int
		want     int16
	}{
		{0, 16, 0},
		{32767, 16, 32767},
		{-32768, 16, -32768},
		{255, 8, 32512},
		{0, 8, -32768},
		{128, 8, 0},
		{1 << 22, 24, 1 << 14},
		{-(1 << 23), 24, -32768},
	}

	for _, tt := range tests {
		if got := scaleTo16(tt.v, tt.bitDepth); got != tt.want {
			t.Errorf("scaleTo16(%d, %d) = %d, want %d", tt.v, tt.bitDepth, got, tt.want)
		}
	}
}

func TestMP3DecoderInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bogus.mp3")
	if err := os.WriteFile(path, []byte("not an mp3"), 0o644); err != nil {
		t.Fatalf("Failed to write bogus file: %v", err)
	}

	if _, err := NewMP3Decoder(path); err == nil {
		t.Error("Expected error for invalid MP3 file, got nil")
	}
}

func TestFLACDecoderInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bogus.flac")
	if err := os.WriteFile(path, []byte("not a flac"), 0o644); err != nil {
		t.Fatalf("Failed to write bogus file: %v", err)
	}

	if _, err := NewFLACDecoder(path); err == nil {
		t.Error("Expected error for invalid FLAC file, got nil")
	}
}
