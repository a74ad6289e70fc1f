package stream

import (
	"errors"
	"testing"
)

func TestBufferedSourceAttachLoadsOneBuffer(t *testing.T) {
	dec := &fakeDecoder{totalFrames: 150}
	voice := &fakeVoice{}
	src := NewBufferedSource(voice)
	defer src.Close()

	if err := src.Attach(dec); err != nil {
		t.Fatalf("Attach failed: %v", err)
	}

	if got := voice.queueDepth(); got != 1 {
		t.Fatalf("Queue depth = %d, want 1 (whole sound in one buffer)", got)
	}
	if got := voice.totalSubmits(); got != 1 {
		t.Errorf("Total submissions = %d, want 1", got)
	}
}

func TestBufferedSourceAttachTwice(t *testing.T) {
	src := NewBufferedSource(&fakeVoice{})
	defer src.Close()

	if err := src.Attach(&fakeDecoder{totalFrames: 10}); err != nil {
		t.Fatalf("First attach failed: %v", err)
	}
	err := src.Attach(&fakeDecoder{totalFrames: 10})
	if !errors.Is(err, ErrAlreadyAttached) {
		t.Errorf("Second attach = %v, want ErrAlreadyAttached", err)
	}
}

func TestBufferedSourceEmptySound(t *testing.T) {
	src := NewBufferedSource(&fakeVoice{})
	defer src.Close()

	err := src.Attach(&fakeDecoder{totalFrames: 0})
	if !errors.Is(err, ErrEmptyStream) {
		t.Errorf("Attach with empty decoder = %v, want ErrEmptyStream", err)
	}
}

func TestBufferedSourceRejectsLoop(t *testing.T) {
	src := NewBufferedSource(&fakeVoice{})
	defer src.Close()

	if err := src.Attach(&fakeDecoder{totalFrames: 10}); err != nil {
		t.Fatalf("Attach failed: %v", err)
	}
	if err := src.SetLoop(true); !errors.Is(err, ErrInvalidCommand) {
		t.Errorf("SetLoop on one-shot source = %v, want ErrInvalidCommand", err)
	}
}

func TestBufferedSourceTransport(t *testing.T) {
	voice := &fakeVoice{}
	src := NewBufferedSource(voice)
	defer src.Close()

	if err := src.Play(); !errors.Is(err, ErrNotAttached) {
		t.Errorf("Play before attach = %v, want ErrNotAttached", err)
	}

	if err := src.Attach(&fakeDecoder{totalFrames: 10}); err != nil {
		t.Fatalf("Attach failed: %v", err)
	}

	if err := src.Play(); err != nil {
		t.Fatalf("Play failed: %v", err)
	}
	if !voice.Playing() {
		t.Error("Voice not playing after Play")
	}
	if src.HasFinished() {
		t.Error("HasFinished = true while the sound is still queued")
	}

	if err := src.Pause(); err != nil {
		t.Fatalf("Pause failed: %v", err)
	}
	if voice.Playing() {
		t.Error("Voice still playing after Pause")
	}

	// Device finishes the sound
	src.Play()
	voice.consume(1)
	if !src.HasFinished() {
		t.Error("HasFinished = false after the sound was consumed")
	}
}

func TestBufferedSourceStopFinishes(t *testing.T) {
	voice := &fakeVoice{}
	src := NewBufferedSource(voice)
	defer src.Close()

	if err := src.Attach(&fakeDecoder{totalFrames: 10}); err != nil {
		t.Fatalf("Attach failed: %v", err)
	}
	src.Play()

	if err := src.Stop(); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
	if !src.HasFinished() {
		t.Error("HasFinished = false after Stop")
	}

	// Idempotent, like the streaming variant
	if err := src.Stop(); err != nil {
		t.Errorf("Second Stop failed: %v", err)
	}
}
