package tui

import (
	"fmt"
	"strings"
	"time"

	"charm.land/lipgloss/v2"

	"github.com/kestrelhq/nfeed/internal/client/kestrel"
	"github.com/kestrelhq/nfeed/internal/feed"
	"github.com/kestrelhq/nfeed/internal/tui/components/conn"
	"github.com/kestrelhq/nfeed/internal/tui/theme"
)

const (
	notifDot  = "●"
	readDot   = "○"
	feedWidth = 72
)

type FeedState struct {
	Cursor        int
	ConnIndicator conn.Indicator
	AuthChecked   bool
	HasToken      bool
}

func (m *Model) FeedView() string {
	snap := m.deps.Feed.Snapshot()

	var b strings.Builder

	b.WriteString(m.headerView(snap))
	b.WriteString("\n\n")

	if m.state.feed.AuthChecked && !m.state.feed.HasToken {
		b.WriteString(m.theme.TextDim().Render("not logged in - run `nfeed login --token <token>`"))
		return b.String()
	}

	if len(snap.Records) == 0 {
		b.WriteString(m.theme.TextDim().Render("no notifications"))
		return b.String()
	}

	now := time.Now()
	for i, n := range snap.Records {
		b.WriteString(m.rowView(n, i == m.state.feed.Cursor, now))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.statusLine(snap))

	return b.String()
}

func (m *Model) headerView(snap feed.Snapshot) string {
	title := m.theme.Base().Bold(true).Render("NOTIFICATIONS")
	unread := m.theme.TextAccent().Render(fmt.Sprintf("%d unread", snap.Unread))
	return title + "  " + unread
}

func (m *Model) rowView(n kestrel.Notification, selected bool, now time.Time) string {
	dot := lipgloss.NewStyle().
		Foreground(theme.Priority(n.Priority)).
		Render(notifDot)
	if n.Read {
		dot = m.theme.TextDim().Render(readDot)
	}

	title := n.Title
	if lipgloss.Width(title) > 44 {
		title = string([]rune(title)[:43]) + "…"
	}

	titleStyle := m.theme.Base()
	if n.Read {
		titleStyle = m.theme.TextDim()
	}

	category := m.theme.TextDim().Render("[" + string(n.Category) + "]")
	age := m.theme.TextDim().Render(relTime(n.CreatedAt, now))

	line := fmt.Sprintf("%s %-46s %-10s %s", dot, titleStyle.Render(title), category, age)

	if selected {
		return lipgloss.NewStyle().
			Background(theme.ColorBgLight).
			Width(feedWidth).
			Render("> " + line)
	}
	return "  " + line
}

func (m *Model) statusLine(snap feed.Snapshot) string {
	switch {
	case snap.LastError != "":
		return lipgloss.NewStyle().
			Foreground(theme.ColorOffline).
			Render("sync error: " + snap.LastError)
	case snap.Loading:
		return m.theme.TextDim().Render("loading…")
	case snap.HasMore:
		return m.theme.TextDim().Render("m: load older")
	default:
		return m.theme.TextDim().Render("end of feed")
	}
}

func (m *Model) ConnIndicatorView() string {
	return m.state.feed.ConnIndicator.Render()
}

func relTime(t time.Time, now time.Time) string {
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "now"
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh", int(d.Hours()))
	case d < 7*24*time.Hour:
		return fmt.Sprintf("%dd", int(d.Hours()/24))
	default:
		return t.Format("Jan 2")
	}
}
