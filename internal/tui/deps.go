package tui

import (
	"context"
	"log/slog"

	"github.com/kestrelhq/nfeed/internal/auth"
	"github.com/kestrelhq/nfeed/internal/client/ws"
	"github.com/kestrelhq/nfeed/internal/feed"
)

type Deps struct {
	Ctx          context.Context
	Cancel       context.CancelFunc
	Logger       *slog.Logger
	TokenChecker auth.TokenChecker
	Feed         *feed.Feed
	Stream       *ws.Client
	EventCh      chan ws.Event
	StateCh      chan ws.State
}
