package theme

import "charm.land/lipgloss/v2"

var (
	ColorBlack = lipgloss.Color("#000000")
	ColorWhite = lipgloss.Color("#FFFFFF")
	ColorDim   = lipgloss.Color("#666666")
)

var (
	ColorAccent   = lipgloss.Color("#00D4AA") // CTA, highlights, unread markers
	ColorUrgent   = lipgloss.Color("#FF0026") // urgent priority
	ColorHigh     = lipgloss.Color("#FFDE00") // high priority
	ColorNormal   = lipgloss.Color("#67AEE6") // normal priority
	ColorLow      = lipgloss.Color("#7BA1BB") // low priority
	ColorLive     = lipgloss.Color("#16EC06") // stream connected
	ColorRetrying = lipgloss.Color("#FFDE00") // stream reconnecting
	ColorOffline  = lipgloss.Color("#FF0026") // stream gave up
)

var (
	ColorBgDark  = lipgloss.Color("#101518") // Darker end of gradient
	ColorBgLight = lipgloss.Color("#283339") // Lighter end of gradient
)
