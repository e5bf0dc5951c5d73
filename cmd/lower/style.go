package main

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

type styles struct {
	title    lipgloss.Style
	desc     lipgloss.Style
	stage    lipgloss.Style
	value    lipgloss.Style
	err      lipgloss.Style
	help     lipgloss.Style
	selected lipgloss.Style
}

// useColor resolves a color mode against the output file.
func useColor(mode string, f *os.File) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	}
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

func newStyles(color bool) styles {
	if !color {
		plain := lipgloss.NewStyle()
		return styles{title: plain, desc: plain, stage: plain, value: plain, err: plain, help: plain, selected: plain}
	}
	lipgloss.SetColorProfile(termenv.ANSI256)
	return styles{
		title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1),
		desc: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB")),
		stage: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#98FB98")),
		value: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90")),
		err: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B")),
		help: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666")),
		selected: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")),
	}
}
