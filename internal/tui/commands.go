package tui

import (
	"context"

	tea "charm.land/bubbletea/v2"

	"github.com/kestrelhq/nfeed/internal/auth"
	"github.com/kestrelhq/nfeed/internal/feed"
)

func checkAuthCmd(checker auth.TokenChecker) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		hasToken, err := checker.HasToken(ctx)
		return AuthStatusMsg{HasToken: hasToken, Err: err}
	}
}

func loadFeedCmd(ctx context.Context, f *feed.Feed) tea.Cmd {
	return func() tea.Msg {
		return FeedLoadedMsg{Err: f.LoadInitial(ctx)}
	}
}

func loadMoreCmd(ctx context.Context, f *feed.Feed) tea.Cmd {
	return func() tea.Msg {
		return FeedMoreMsg{Err: f.LoadMore(ctx)}
	}
}
