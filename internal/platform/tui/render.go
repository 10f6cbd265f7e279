package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/snowglobe/internal/core"
)

// colorStyles maps the scene palette to lipgloss styles (ANSI 256).
var colorStyles = map[core.Color]lipgloss.Style{
	core.ColorDefault: lipgloss.NewStyle(),
	core.ColorSnow:    lipgloss.NewStyle().Foreground(lipgloss.Color("15")),
	core.ColorFrost:   lipgloss.NewStyle().Foreground(lipgloss.Color("153")),
	core.ColorPine:    lipgloss.NewStyle().Foreground(lipgloss.Color("28")),
	core.ColorHolly:   lipgloss.NewStyle().Foreground(lipgloss.Color("40")),
	core.ColorBerry:   lipgloss.NewStyle().Foreground(lipgloss.Color("160")),
	core.ColorGold:    lipgloss.NewStyle().Foreground(lipgloss.Color("220")),
	core.ColorCoal:    lipgloss.NewStyle().Foreground(lipgloss.Color("238")),
	core.ColorRail:    lipgloss.NewStyle().Foreground(lipgloss.Color("94")),
	core.ColorStone:   lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
	core.ColorFog:     lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
	core.ColorNight:   lipgloss.NewStyle().Foreground(lipgloss.Color("25")),
}

var (
	hudStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("153")).Background(lipgloss.Color("17"))
	alertStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("229")).Background(lipgloss.Color("88"))
)

// RenderScreen converts a Screen buffer to a styled string for display.
// Groups adjacent cells with the same color to minimize ANSI escape sequences.
func RenderScreen(s *core.Screen) string {
	var sb strings.Builder
	sb.Grow(s.Width()*s.Height()*2 + s.Height())

	var run strings.Builder
	for y := range s.Height() {
		if y > 0 {
			sb.WriteRune('\n')
		}

		x := 0
		for x < s.Width() {
			color := s.GetCell(x, y).Color

			run.Reset()
			for x < s.Width() {
				cell := s.GetCell(x, y)
				if cell.Color != color {
					break
				}
				run.WriteRune(cell.Rune)
				x++
			}

			style, ok := colorStyles[color]
			if !ok {
				style = colorStyles[core.ColorDefault]
			}
			sb.WriteString(style.Render(run.String()))
		}
	}
	return sb.String()
}

// fitLine pads or truncates text to exactly width columns.
func fitLine(text string, width int) string {
	if width <= 0 {
		return ""
	}
	r := []rune(text)
	if len(r) > width {
		return string(r[:width])
	}
	return text + strings.Repeat(" ", width-len(r))
}
