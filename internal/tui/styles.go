package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/Zachkp/termfolio/internal/terminal"
)

var (
	darkForeground  = lipgloss.Color("#e5e7eb")
	darkPrompt      = lipgloss.Color("#4ade80")
	darkError       = lipgloss.Color("#f87171")
	darkLink        = lipgloss.Color("#60a5fa")
	darkMuted       = lipgloss.Color("#6b7280")
	lightForeground = lipgloss.Color("#1f2937")
	lightPrompt     = lipgloss.Color("#15803d")
	lightError      = lipgloss.Color("#b91c1c")
	lightLink       = lipgloss.Color("#1d4ed8")
	lightMuted      = lipgloss.Color("#9ca3af")
)

// Styles is the palette for one theme.
type Styles struct {
	Prompt lipgloss.Style
	Input  lipgloss.Style
	Output lipgloss.Style
	Error  lipgloss.Style
	Link   lipgloss.Style
	Status lipgloss.Style
}

func StylesFor(theme terminal.Theme) Styles {
	if theme == terminal.ThemeLight {
		return Styles{
			Prompt: lipgloss.NewStyle().Foreground(lightPrompt).Bold(true),
			Input:  lipgloss.NewStyle().Foreground(lightPrompt),
			Output: lipgloss.NewStyle().Foreground(lightForeground),
			Error:  lipgloss.NewStyle().Foreground(lightError),
			Link:   lipgloss.NewStyle().Foreground(lightLink).Underline(true),
			Status: lipgloss.NewStyle().Foreground(lightMuted).Italic(true),
		}
	}
	return Styles{
		Prompt: lipgloss.NewStyle().Foreground(darkPrompt).Bold(true),
		Input:  lipgloss.NewStyle().Foreground(darkPrompt),
		Output: lipgloss.NewStyle().Foreground(darkForeground),
		Error:  lipgloss.NewStyle().Foreground(darkError),
		Link:   lipgloss.NewStyle().Foreground(darkLink).Underline(true),
		Status: lipgloss.NewStyle().Foreground(darkMuted).Italic(true),
	}
}

func (s Styles) forKind(kind terminal.Kind) lipgloss.Style {
	switch kind {
	case terminal.KindInput:
		return s.Input
	case terminal.KindError:
		return s.Error
	}
	return s.Output
}
