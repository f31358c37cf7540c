package tui

import (
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/kestrelhq/nfeed/internal/client/kestrel"
	"github.com/kestrelhq/nfeed/internal/client/ws"
	"github.com/kestrelhq/nfeed/internal/tui/components/footer"
	"github.com/kestrelhq/nfeed/internal/tui/theme"
)

var _ tea.Model = (*Model)(nil)

type page uint

const (
	splashPage page = iota
	feedPage
)

type state struct {
	splash SplashState
	feed   FeedState
}

type Model struct {
	ready          bool
	page           page
	viewportWidth  int
	viewportHeight int
	theme          theme.Theme
	state          state
	deps           Deps
}

func New(deps Deps) Model {
	return Model{
		page:  splashPage,
		theme: theme.New(),
		deps:  deps,
		state: state{
			splash: SplashState{},
			feed:   FeedState{},
		},
	}
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		tea.Tick(splashDuration, func(t time.Time) tea.Msg {
			return SplashTickMsg{}
		}),
		checkAuthCmd(m.deps.TokenChecker),
		loadFeedCmd(m.deps.Ctx, m.deps.Feed),
		StartStreamCmd(m.deps.Ctx, m.deps.Stream, m.deps.EventCh),
		ListenEventsCmd(m.deps.Ctx, m.deps.EventCh, m.deps.Feed),
		ListenStateCmd(m.deps.Ctx, m.deps.StateCh),
	)
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.viewportWidth = msg.Width
		m.viewportHeight = msg.Height
		m.ready = true

	case tea.KeyMsg:
		return m.updateKeys(msg)

	// splash timer expired - transition to the feed
	case SplashTickMsg:
		m.page = feedPage

	case AuthStatusMsg:
		m.state.feed.AuthChecked = true
		if msg.Err == nil {
			m.state.feed.HasToken = msg.HasToken
		}

	case FeedLoadedMsg, FeedMoreMsg:
		m.clampCursor()

	case StreamEventMsg:
		m.clampCursor()
		return m, ListenEventsCmd(m.deps.Ctx, m.deps.EventCh, m.deps.Feed)

	case StreamStateMsg:
		m.state.feed.ConnIndicator.State = msg.State
		return m, ListenStateCmd(m.deps.Ctx, m.deps.StateCh)

	case StreamClosedMsg:
		m.state.feed.ConnIndicator.State = ws.StateClosed
	}

	return m, nil
}

func (m *Model) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	snap := m.deps.Feed.Snapshot()

	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit

	case "j", "down":
		if m.state.feed.Cursor < len(snap.Records)-1 {
			m.state.feed.Cursor++
		}

	case "k", "up":
		if m.state.feed.Cursor > 0 {
			m.state.feed.Cursor--
		}

	case "g":
		m.state.feed.Cursor = 0

	case "G":
		m.state.feed.Cursor = max(len(snap.Records)-1, 0)

	case "enter", "r":
		if n, ok := m.selected(snap.Records); ok {
			m.deps.Feed.MarkRead(m.deps.Ctx, n.ID)
		}

	case "u":
		if n, ok := m.selected(snap.Records); ok {
			m.deps.Feed.MarkUnread(m.deps.Ctx, n.ID)
		}

	case "a":
		m.deps.Feed.MarkAllRead(m.deps.Ctx)

	case "x":
		if n, ok := m.selected(snap.Records); ok {
			m.deps.Feed.Delete(m.deps.Ctx, n.ID)
			m.clampCursor()
		}

	case "m":
		return m, loadMoreCmd(m.deps.Ctx, m.deps.Feed)
	}

	return m, nil
}

func (m *Model) View() tea.View {
	view := tea.NewView("")
	view.AltScreen = true

	// splash uses pure black BG, everything else uses default dark
	if m.page == splashPage {
		view.BackgroundColor = theme.ColorBlack
	} else {
		view.BackgroundColor = m.theme.Background()
	}

	if !m.ready {
		return view
	}

	var content string
	switch m.page {
	case splashPage:
		content = lipgloss.Place(
			m.viewportWidth,
			m.viewportHeight,
			lipgloss.Center,
			lipgloss.Center,
			m.SplashView(),
		)
	case feedPage:
		list := lipgloss.Place(
			m.viewportWidth,
			m.viewportHeight,
			lipgloss.Center,
			lipgloss.Center,
			m.FeedView(),
		)

		help := m.theme.TextDim().Render("j/k move  r read  u unread  a all  x delete  q quit")
		bar := footer.New(help, m.ConnIndicatorView(), m.viewportWidth).Render()

		barOverlay := lipgloss.Place(
			m.viewportWidth,
			m.viewportHeight,
			lipgloss.Left,
			lipgloss.Bottom,
			bar,
		)

		content = m.overlayStrings(list, barOverlay)
	}

	view.SetContent(content)
	return view
}

func (m *Model) selected(records []kestrel.Notification) (kestrel.Notification, bool) {
	if m.state.feed.Cursor < 0 || m.state.feed.Cursor >= len(records) {
		return kestrel.Notification{}, false
	}
	return records[m.state.feed.Cursor], true
}

func (m *Model) clampCursor() {
	snap := m.deps.Feed.Snapshot()
	if m.state.feed.Cursor >= len(snap.Records) {
		m.state.feed.Cursor = max(len(snap.Records)-1, 0)
	}
}

func (m *Model) overlayStrings(base, overlay string) string {
	baseLines := splitLines(base)
	overlayLines := splitLines(overlay)

	maxLines := len(baseLines)
	if len(overlayLines) > maxLines {
		maxLines = len(overlayLines)
	}

	result := make([]string, maxLines)
	for i := range maxLines {
		var baseLine, overlayLine string
		if i < len(baseLines) {
			baseLine = baseLines[i]
		}
		if i < len(overlayLines) {
			overlayLine = overlayLines[i]
		}

		baseRunes := []rune(baseLine)
		overlayRunes := []rune(overlayLine)

		maxLen := len(baseRunes)
		if len(overlayRunes) > maxLen {
			maxLen = len(overlayRunes)
		}

		merged := make([]rune, maxLen)
		for j := 0; j < maxLen; j++ {
			baseChar, overlayChar := ' ', ' '
			if j < len(baseRunes) {
				baseChar = baseRunes[j]
			}
			if j < len(overlayRunes) {
				overlayChar = overlayRunes[j]
			}

			if overlayChar != ' ' {
				merged[j] = overlayChar
			} else {
				merged[j] = baseChar
			}
		}
		result[i] = string(merged)
	}

	return joinLines(result)
}

func splitLines(s string) []string {
	var lines []string
	start := 0
	for i := range len(s) {
		if s[i] == '\n' {
			lines = append(lines, s[start:i])
			start = i + 1
		}
	}
	if start < len(s) {
		lines = append(lines, s[start:])
	}
	return lines
}

func joinLines(lines []string) string {
	if len(lines) == 0 {
		return ""
	}
	result := lines[0]
	for i := 1; i < len(lines); i++ {
		result += "\n" + lines[i]
	}
	return result
}
