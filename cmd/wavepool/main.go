package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/linuxmatters/wavepool/internal/audio"
	"github.com/linuxmatters/wavepool/internal/cli"
	"github.com/linuxmatters/wavepool/internal/config"
	"github.com/linuxmatters/wavepool/internal/device"
	"github.com/linuxmatters/wavepool/internal/meter"
	"github.com/linuxmatters/wavepool/internal/stream"
	"github.com/linuxmatters/wavepool/internal/ui"
)

// version is set via ldflags at build time
// Local dev builds: "dev"
// Release builds: git tag (e.g. "v0.1.0")
var version = "dev"

var CLI struct {
	Input       string `arg:"" name:"input" help:"Audio file to play (.wav, .mp3, .flac)" optional:""`
	Loop        bool   `help:"Loop playback until stopped"`
	Buffers     int    `help:"Device buffers kept in rotation" default:"4"`
	ChunkFrames int    `help:"Frames decoded per buffer" default:"8192"`
	NoUI        bool   `name:"no-ui" help:"Play headless without the terminal interface"`
	Version     bool   `help:"Show version information"`
}

func main() {
	kong.Parse(&CLI,
		kong.Name("wavepool"),
		kong.Description("Stream audio through a rotating buffer pool."),
		kong.Vars{"version": version},
		kong.UsageOnError(),
		kong.Help(cli.StyledHelpPrinter(kong.HelpOptions{Compact: true})),
	)

	// Handle version flag
	if CLI.Version {
		cli.PrintVersion(version)
		os.Exit(0)
	}

	if CLI.Input == "" {
		cli.PrintError("<input> is required")
		os.Exit(1)
	}
	if _, err := os.Stat(CLI.Input); os.IsNotExist(err) {
		cli.PrintError(fmt.Sprintf("input file does not exist: %s", CLI.Input))
		os.Exit(1)
	}
	if CLI.Buffers < 2 {
		cli.PrintError(fmt.Sprintf("invalid buffers value: %d (need at least 2)", CLI.Buffers))
		os.Exit(1)
	}
	if CLI.ChunkFrames < 1 {
		cli.PrintError(fmt.Sprintf("invalid chunk-frames value: %d", CLI.ChunkFrames))
		os.Exit(1)
	}

	if err := play(); err != nil {
		cli.PrintError(err.Error())
		os.Exit(1)
	}
}

func play() error {
	dec, err := audio.Open(CLI.Input)
	if err != nil {
		return fmt.Errorf("opening %s: %w", CLI.Input, err)
	}

	ctx, err := device.NewContext(dec.SampleRate(), dec.NumChannels())
	if err != nil {
		dec.Close()
		return fmt.Errorf("opening audio device: %w", err)
	}

	voice := ctx.NewVoice()
	defer voice.Close()

	tap := meter.New(dec.NumChannels())

	src := stream.NewStreamingSource(voice)
	if err := src.Attach(dec, stream.Config{
		PoolSize:        CLI.Buffers,
		FramesPerBuffer: CLI.ChunkFrames,
		Tap:             tap.Push,
	}); err != nil {
		dec.Close()
		return fmt.Errorf("attaching stream: %w", err)
	}
	defer src.Close()

	if CLI.Loop {
		if err := src.SetLoop(true); err != nil {
			return fmt.Errorf("enabling loop: %w", err)
		}
	}

	var duration time.Duration
	if total := dec.TotalFrames(); total > 0 {
		duration = time.Duration(total) * time.Second / time.Duration(dec.SampleRate())
	}

	if CLI.NoUI {
		return playHeadless(src, duration)
	}

	track := ui.TrackInfo{
		Path:        CLI.Input,
		SampleRate:  dec.SampleRate(),
		NumChannels: dec.NumChannels(),
		Duration:    duration,
	}
	model := ui.NewModel(src, tap, track, CLI.Loop)
	if _, err := tea.NewProgram(model).Run(); err != nil {
		return fmt.Errorf("running UI: %w", err)
	}
	if err := model.Err(); err != nil {
		return fmt.Errorf("playback: %w", err)
	}
	return nil
}

// playHeadless runs playback without the terminal interface, polling the
// completion flag until the stream ends or the process is interrupted.
func playHeadless(src stream.Source, duration time.Duration) error {
	cli.PrintBanner()
	cli.PrintInfo("Playing", CLI.Input)
	if duration > 0 {
		cli.PrintInfo("Duration", cli.FormatDuration(duration))
	}
	if CLI.Loop {
		cli.PrintInfo("Loop", "on (Ctrl-C to stop)")
	}

	if err := src.Play(); err != nil {
		return err
	}

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigs)

	ticker := time.NewTicker(config.UITickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-sigs:
			if err := src.Stop(); err != nil {
				return err
			}
			fmt.Println()
			cli.PrintSuccess("Stopped")
			return nil
		case <-ticker.C:
			if src.HasFinished() {
				cli.PrintSuccess("Done")
				return nil
			}
		}
	}
}
