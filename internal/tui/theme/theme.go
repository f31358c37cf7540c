package theme

import (
	"image/color"

	"charm.land/lipgloss/v2"

	"github.com/kestrelhq/nfeed/internal/client/kestrel"
)

type Theme struct {
	background color.Color
	foreground color.Color
	base       lipgloss.Style
}

func New() Theme {
	var t Theme

	t.background = ColorBgDark
	t.foreground = ColorWhite
	t.base = lipgloss.NewStyle().Foreground(t.foreground)

	return t
}

func (t Theme) Base() lipgloss.Style {
	return t.base
}

func (t Theme) TextAccent() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(ColorAccent)
}

func (t Theme) TextDim() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(ColorDim)
}

func (t Theme) Background() color.Color {
	return t.background
}

func (t Theme) Foreground() color.Color {
	return t.foreground
}

// Priority maps a notification priority onto the palette.
func Priority(p kestrel.Priority) color.Color {
	switch p {
	case kestrel.PriorityUrgent:
		return ColorUrgent
	case kestrel.PriorityHigh:
		return ColorHigh
	case kestrel.PriorityLow:
		return ColorLow
	default:
		return ColorNormal
	}
}
