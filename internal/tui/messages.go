package tui

import "time"

const splashDuration = 1200 * time.Millisecond

type SplashTickMsg struct{}

type AuthStatusMsg struct {
	HasToken bool
	Err      error
}

type FeedLoadedMsg struct {
	Err error
}

type FeedMoreMsg struct {
	Err error
}
