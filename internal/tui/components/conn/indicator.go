package conn

import (
	"charm.land/lipgloss/v2"

	"github.com/kestrelhq/nfeed/internal/client/ws"
	"github.com/kestrelhq/nfeed/internal/tui/theme"
)

const statusDot = "●"

type Indicator struct {
	State ws.State
}

func (i Indicator) Render() string {
	switch i.State {
	case ws.StateOpen:
		return lipgloss.NewStyle().
			Foreground(theme.ColorLive).
			Render(statusDot + " live")

	case ws.StateConnecting, ws.StateRetrying:
		return lipgloss.NewStyle().
			Foreground(theme.ColorRetrying).
			Render(statusDot + " reconnecting...")

	case ws.StateClosed:
		return lipgloss.NewStyle().
			Foreground(theme.ColorOffline).
			Render(statusDot + " offline")

	default:
		return lipgloss.NewStyle().
			Foreground(theme.ColorBgLight).
			Render(statusDot + " connecting...")
	}
}
