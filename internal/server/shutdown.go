package server

import (
	"context"
	"time"
)

// ShutdownCoordinator manages graceful shutdown of the HTTP server,
// particularly for long-lived WebSocket connections.
type ShutdownCoordinator struct {
	baseCtx     context.Context
	cancel      context.CancelFunc
	gracePeriod time.Duration
}

// NewShutdownCoordinator creates a coordinator with the given grace period:
// how long active sockets get to send a close frame before http.Shutdown.
func NewShutdownCoordinator(gracePeriod time.Duration) *ShutdownCoordinator {
	ctx, cancel := context.WithCancel(context.Background())
	return &ShutdownCoordinator{
		baseCtx:     ctx,
		cancel:      cancel,
		gracePeriod: gracePeriod,
	}
}

// BaseContext returns the base context for all HTTP requests. It is
// cancelled when shutdown begins, so stream handlers can close cleanly.
func (sc *ShutdownCoordinator) BaseContext() context.Context {
	return sc.baseCtx
}

// InitiateShutdown cancels the base context and blocks for the grace
// period while live connections wind down.
func (sc *ShutdownCoordinator) InitiateShutdown() {
	sc.cancel()
	time.Sleep(sc.gracePeriod)
}
