// Package ui implements the interactive terminal player: a Bubbletea model
// showing transport state, a position bar and a live spectrum while the
// streaming engine plays in the background.
package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/linuxmatters/wavepool/internal/config"
	"github.com/linuxmatters/wavepool/internal/meter"
	"github.com/linuxmatters/wavepool/internal/stream"
)

// Wave colour palette 🌊
var (
	waveCyan = lipgloss.Color("#00CED1") // Bright cyan
	waveBlue = lipgloss.Color("#1E90FF") // Dodger blue
	waveDeep = lipgloss.Color("#4169E1") // Royal blue
	seaGray  = lipgloss.Color("#5F9EA0") // Cadet blue for subtle text
)

// TrackInfo describes the attached sound for display.
type TrackInfo struct {
	Path        string
	SampleRate  int
	NumChannels int
	Duration    time.Duration
}

// tickMsg drives the render loop and completion polling.
type tickMsg time.Time

// Model is the Bubbletea model for interactive playback.
type Model struct {
	source stream.Source
	meter  *meter.Meter
	track  TrackInfo

	positionBar progress.Model

	playing  bool
	looping  bool
	stopped  bool
	elapsed  time.Duration
	lastTick time.Time

	bars     []float64
	rms      float64
	peak     float64
	width    int
	err      error
	quitting bool
}

// NewModel creates the player model. The source must already be attached;
// the model takes over its transport from here.
func NewModel(src stream.Source, m *meter.Meter, track TrackInfo, loop bool) *Model {
	// Wave gradient: deep blue → bright cyan
	p := progress.New(
		progress.WithGradient(string(waveDeep), string(waveCyan)),
		progress.WithWidth(40),
		progress.WithoutPercentage(),
	)

	return &Model{
		source:      src,
		meter:       m,
		track:       track,
		positionBar: p,
		looping:     loop,
		bars:        make([]float64, config.NumBars),
	}
}

// Err reports a transport error that ended the session, if any.
func (m *Model) Err() error {
	return m.err
}

// Init starts playback and the tick loop.
func (m *Model) Init() tea.Cmd {
	if err := m.source.Play(); err != nil {
		m.err = err
		return tea.Quit
	}
	m.playing = true
	m.lastTick = time.Now()
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(config.UITickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Update handles messages
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.positionBar.Width = min(msg.Width-30, 50)
		return m, nil

	case tickMsg:
		now := time.Time(msg)
		if m.playing && !m.lastTick.IsZero() {
			m.elapsed += now.Sub(m.lastTick)
			if m.looping && m.track.Duration > 0 {
				m.elapsed %= m.track.Duration
			}
		}
		m.lastTick = now

		m.bars = m.meter.Bars(config.NumBars)
		m.rms, m.peak = m.meter.Levels()

		if m.source.HasFinished() {
			m.quitting = true
			return m, tea.Quit
		}
		return m, tick()

	case tea.KeyMsg:
		switch msg.String() {
		case " ":
			if m.stopped {
				return m, nil
			}
			var err error
			if m.playing {
				err = m.source.Pause()
			} else {
				err = m.source.Play()
			}
			if err != nil {
				m.err = err
				return m, tea.Quit
			}
			m.playing = !m.playing

		case "l":
			if m.stopped {
				return m, nil
			}
			if err := m.source.SetLoop(!m.looping); err != nil {
				// One-shot sounds have no loop mode; leave the toggle alone
				return m, nil
			}
			m.looping = !m.looping

		case "s":
			if err := m.source.Stop(); err != nil {
				m.err = err
				return m, tea.Quit
			}
			m.stopped = true
			m.playing = false

		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		}
	}

	return m, nil
}

// View renders the UI
func (m *Model) View() string {
	if m.quitting {
		return ""
	}

	var s strings.Builder

	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(waveCyan).
		Render("Wavepool 🌊")

	s.WriteString(title)
	s.WriteString("\n")
	s.WriteString(lipgloss.NewStyle().Foreground(waveBlue).Render(m.track.Path))
	s.WriteString("\n\n")

	// Transport state and format line
	s.WriteString(m.renderStatus())
	s.WriteString("\n\n")

	// Position bar
	s.WriteString("Position: ")
	if m.track.Duration > 0 {
		percent := float64(m.elapsed) / float64(m.track.Duration)
		if percent > 1 {
			percent = 1
		}
		s.WriteString(m.positionBar.ViewAs(percent))
		s.WriteString(fmt.Sprintf("  %s / %s",
			formatDuration(m.elapsed),
			formatDuration(m.track.Duration)))
	} else {
		s.WriteString(lipgloss.NewStyle().Faint(true).Render("streaming..."))
	}
	s.WriteString("\n\n")

	// Live spectrum
	spectrumWidth := config.NumBars
	if m.width > 10 {
		spectrumWidth = min(m.width-10, config.NumBars)
	}
	s.WriteString(lipgloss.NewStyle().Foreground(waveBlue).Render("Spectrum:"))
	s.WriteString("\n")
	s.WriteString(renderSpectrum(m.bars, spectrumWidth))
	s.WriteString("\n\n")

	// Levels
	labelStyle := lipgloss.NewStyle().Faint(true)
	s.WriteString(labelStyle.Render(fmt.Sprintf("RMS: %5.1f%%   Peak: %5.1f%%", m.rms*100, m.peak*100)))
	s.WriteString("\n\n")

	s.WriteString(labelStyle.Render("space play/pause · l loop · s stop · q quit"))

	return lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(waveBlue).
		Padding(1, 2).
		Render(s.String())
}

func (m *Model) renderStatus() string {
	var state string
	stateStyle := lipgloss.NewStyle().Bold(true)
	switch {
	case m.stopped:
		state = stateStyle.Foreground(seaGray).Render("■ Stopped")
	case m.playing:
		state = stateStyle.Foreground(waveCyan).Render("▶ Playing")
	default:
		state = stateStyle.Foreground(waveBlue).Render("⏸ Paused")
	}

	loop := "off"
	if m.looping {
		loop = "on"
	}

	format := fmt.Sprintf("%d Hz · %dch · loop %s",
		m.track.SampleRate, m.track.NumChannels, loop)

	return state + "  " + lipgloss.NewStyle().Faint(true).Render(format)
}

// Helper functions

func formatDuration(d time.Duration) string {
	total := int(d.Seconds())
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}

// renderSpectrum creates a wave-coloured visualisation of bar heights,
// two rows tall for better visibility.
func renderSpectrum(barHeights []float64, width int) string {
	if len(barHeights) == 0 || width == 0 {
		return ""
	}

	blocks := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

	// Wave gradient colours from low to high intensity
	waveColors := []lipgloss.Color{
		lipgloss.Color("#191970"), // Midnight blue
		lipgloss.Color("#00008B"), // Dark blue
		lipgloss.Color("#4169E1"), // Royal blue
		lipgloss.Color("#1E90FF"), // Dodger blue
		lipgloss.Color("#00BFFF"), // Deep sky blue
		lipgloss.Color("#00CED1"), // Dark turquoise
		lipgloss.Color("#40E0D0"), // Turquoise
		lipgloss.Color("#AFEEEE"), // Pale turquoise
	}

	// Sample bars to fit width
	stride := len(barHeights) / width
	if stride == 0 {
		stride = 1
	}

	// Find max height for normalisation
	maxHeight := 0.0
	for _, h := range barHeights {
		if h > maxHeight {
			maxHeight = h
		}
	}

	if maxHeight == 0 {
		maxHeight = 1.0 // Avoid division by zero
	}

	// Collect normalised heights for all bars we'll display
	displayHeights := make([]float64, 0, width)
	for i := 0; i < len(barHeights) && len(displayHeights) < width; i += stride {
		displayHeights = append(displayHeights, barHeights[i]/maxHeight)
	}

	var result strings.Builder

	// Top row: the portion of each bar above half height
	for _, normalised := range displayHeights {
		if normalised > 0.5 {
			topPortion := (normalised - 0.5) * 2.0
			blockIdx := int(topPortion * float64(len(blocks)-1))
			if blockIdx >= len(blocks) {
				blockIdx = len(blocks) - 1
			}

			colorIdx := int(normalised * float64(len(waveColors)-1))
			if colorIdx >= len(waveColors) {
				colorIdx = len(waveColors) - 1
			}

			styledBlock := lipgloss.NewStyle().
				Foreground(waveColors[colorIdx]).
				Render(string(blocks[blockIdx]))
			result.WriteString(styledBlock)
		} else {
			result.WriteString(" ")
		}
	}

	result.WriteString("\n")

	// Bottom row: full block when the bar reaches the top row
	for _, normalised := range displayHeights {
		var blockIdx int
		if normalised >= 0.5 {
			blockIdx = len(blocks) - 1
		} else {
			blockIdx = int(normalised * 2.0 * float64(len(blocks)-1))
			if blockIdx >= len(blocks) {
				blockIdx = len(blocks) - 1
			}
		}

		colorIdx := int(normalised * float64(len(waveColors)-1))
		if colorIdx >= len(waveColors) {
			colorIdx = len(waveColors) - 1
		}
		if colorIdx < 0 {
			colorIdx = 0
		}

		styledBlock := lipgloss.NewStyle().
			Foreground(waveColors[colorIdx]).
			Render(string(blocks[blockIdx]))
		result.WriteString(styledBlock)
	}

	return result.String()
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
