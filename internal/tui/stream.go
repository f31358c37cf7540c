package tui

import (
	"context"

	tea "charm.land/bubbletea/v2"

	"github.com/kestrelhq/nfeed/internal/client/ws"
	"github.com/kestrelhq/nfeed/internal/feed"
)

type StreamStateMsg struct {
	State ws.State
}

type StreamEventMsg struct {
	Event ws.Event
}

type StreamClosedMsg struct {
	Err error
}

// StartStreamCmd launches a goroutine that runs the websocket connect loop
// and pushes decoded events to the provided channel. The channel bridges the
// blocking stream client with bubbletea's message system.
func StartStreamCmd(ctx context.Context, client *ws.Client, eventCh chan<- ws.Event) tea.Cmd {
	return func() tea.Msg {
		err := client.Connect(ctx, func(ev ws.Event) {
			select {
			case eventCh <- ev:
			case <-ctx.Done():
			}
		})

		return StreamClosedMsg{Err: err}
	}
}

// ListenEventsCmd reads one event from the channel, applies it to the feed,
// and returns a StreamEventMsg. Re-invoke after each message to keep
// listening.
func ListenEventsCmd(ctx context.Context, eventCh <-chan ws.Event, f *feed.Feed) tea.Cmd {
	return func() tea.Msg {
		select {
		case ev, ok := <-eventCh:
			if !ok {
				return StreamClosedMsg{Err: nil}
			}
			f.Apply(ctx, ev)
			return StreamEventMsg{Event: ev}
		case <-ctx.Done():
			return StreamClosedMsg{Err: ctx.Err()}
		}
	}
}

// ListenStateCmd reads one connection state transition. Re-invoke after each
// message to keep listening.
func ListenStateCmd(ctx context.Context, stateCh <-chan ws.State) tea.Cmd {
	return func() tea.Msg {
		select {
		case s, ok := <-stateCh:
			if !ok {
				return StreamClosedMsg{Err: nil}
			}
			return StreamStateMsg{State: s}
		case <-ctx.Done():
			return StreamClosedMsg{Err: ctx.Err()}
		}
	}
}
