package config

import (
	"strings"

	"github.com/caarlos0/env/v11"
)

const DefaultServerURL = "http://localhost:8037"

type Config struct {
	// ServerURL is the Kestrel API base URL.
	ServerURL string `env:"NFEED_SERVER_URL" envDefault:"http://localhost:8037"`

	// WSURL overrides the WebSocket base URL. When empty it is derived
	// from ServerURL by swapping the scheme.
	WSURL string `env:"NFEED_WS_URL"`

	PageSize             int `env:"NFEED_PAGE_SIZE" envDefault:"20"`
	MaxReconnectAttempts int `env:"NFEED_MAX_RECONNECT_ATTEMPTS" envDefault:"5"`
}

func Read() (Config, error) {
	return env.ParseAs[Config]()
}

// WebSocketURL returns the base URL for the live notification socket.
func (c Config) WebSocketURL() string {
	if c.WSURL != "" {
		return c.WSURL
	}
	u := c.ServerURL
	u = strings.Replace(u, "https://", "wss://", 1)
	u = strings.Replace(u, "http://", "ws://", 1)
	return u
}
