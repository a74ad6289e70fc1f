package cli

import "github.com/charmbracelet/lipgloss"

// Wave colour palette 🌊
// Shared ocean theme colours for consistent branding across CLI and TUI
var (
	// Core wave colours (deep to bright)
	WaveCyan = lipgloss.Color("#00CED1") // Bright cyan
	WaveBlue = lipgloss.Color("#1E90FF") // Dodger blue
	WaveDeep = lipgloss.Color("#4169E1") // Royal blue
	WaveFoam = lipgloss.Color("#E0FFFF") // Pale foam

	// Accent colours
	SeaGray = lipgloss.Color("#5F9EA0") // Cadet blue for subtle text
)
