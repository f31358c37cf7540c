package ws

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"time"

	go_json "github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"github.com/kestrelhq/nfeed/internal/xslog"
	"golang.org/x/oauth2"
)

const (
	initialBackoff     = 1 * time.Second
	maxBackoff         = 30 * time.Second
	DefaultMaxAttempts = 5

	writeWait = 5 * time.Second
)

// ErrRetriesExhausted is returned by Connect once the reconnect attempt
// bound is reached. The client is terminal afterwards; callers decide
// whether to surface an offline state.
var ErrRetriesExhausted = errors.New("reconnect attempts exhausted")

var ErrNotConnected = errors.New("not connected")

type State int

const (
	StateIdle State = iota
	StateConnecting
	StateOpen
	StateRetrying
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	case StateRetrying:
		return "retrying"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

type Handler func(Event)

type StateFunc func(State)

// Client owns a single live socket to the notification stream endpoint.
// It reconnects with bounded exponential backoff and decodes inbound
// frames into Events. A Client is good for one Connect call.
type Client struct {
	baseURL     string
	tokenSource oauth2.TokenSource
	dialer      *websocket.Dialer
	logger      *slog.Logger
	maxAttempts int
	onState     StateFunc

	mu       sync.Mutex
	writeMu  sync.Mutex
	state    State
	conn     *websocket.Conn
	closed   bool
	closedCh chan struct{}
}

func NewClient(baseURL string, tokenSource oauth2.TokenSource, opts ...Option) *Client {
	c := &Client{
		baseURL:     baseURL,
		tokenSource: tokenSource,
		dialer:      websocket.DefaultDialer,
		logger:      slog.Default(),
		maxAttempts: DefaultMaxAttempts,
		state:       StateIdle,
		closedCh:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type Option func(*Client)

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

func WithMaxAttempts(n int) Option {
	return func(c *Client) { c.maxAttempts = n }
}

// WithStateFunc registers a callback invoked on every state transition.
func WithStateFunc(fn StateFunc) Option {
	return func(c *Client) { c.onState = fn }
}

func WithDialer(d *websocket.Dialer) Option {
	return func(c *Client) { c.dialer = d }
}

// Connect establishes the socket and calls the handler for each decoded
// event, reconnecting with exponential backoff on disconnection. It blocks
// until the context is cancelled, Disconnect is called, or the attempt
// bound is exhausted. Without an access token it is a no-op.
func (c *Client) Connect(ctx context.Context, handler Handler) error {
	token, err := c.tokenSource.Token()
	if err != nil || token.AccessToken == "" {
		c.logger.DebugContext(ctx, "no access token, skipping stream connect")
		return nil
	}

	attempts := 0

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-c.closedCh:
			return nil
		default:
		}

		c.setState(StateConnecting)

		opened, err := c.connectOnce(ctx, handler)
		if opened {
			attempts = 0
		}

		if c.isClosed() {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		attempts++
		if attempts > c.maxAttempts {
			c.setState(StateClosed)
			c.logger.WarnContext(ctx, "stream connection gave up", xslog.Attempt(attempts-1))
			return ErrRetriesExhausted
		}

		backoff := reconnectDelay(attempts)
		c.setState(StateRetrying)
		if err != nil {
			c.logger.WarnContext(ctx, "stream connection failed, reconnecting",
				xslog.Error(err),
				xslog.Attempt(attempts),
				xslog.Backoff(backoff),
			)
		}

		// wait before reconnecting using timer to avoid memory leak
		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-c.closedCh:
			timer.Stop()
			return nil
		case <-timer.C:
		}
	}
}

// connectOnce dials the socket and processes frames until disconnection.
// opened reports whether the socket reached the open state, which resets
// the caller's attempt counter.
func (c *Client) connectOnce(ctx context.Context, handler Handler) (opened bool, err error) {
	token, err := c.tokenSource.Token()
	if err != nil {
		return false, fmt.Errorf("getting token: %w", err)
	}

	u := c.baseURL + "/ws/notifications?token=" + url.QueryEscape(token.AccessToken)

	conn, resp, err := c.dialer.DialContext(ctx, u, nil)
	if err != nil {
		if resp != nil {
			_ = resp.Body.Close()
		}
		return false, fmt.Errorf("dialing: %w", err)
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		_ = conn.Close()
		return false, nil
	}
	c.conn = conn
	c.mu.Unlock()

	c.setState(StateOpen)
	c.logger.InfoContext(ctx, "stream connected")

	// unblock ReadMessage when the context is cancelled
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			// errors always funnel into the close path
			c.dropConn(conn)

			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return true, nil
			}
			return true, fmt.Errorf("reading frame: %w", err)
		}

		event, ok := decodeFrame(data)
		if !ok {
			c.logger.DebugContext(ctx, "dropping unrecognized frame", xslog.Frame(string(data)))
			continue
		}
		handler(event)
	}
}

// MarkRead sends a best-effort mark_read command over the live socket.
// There is no acknowledgment contract; the REST call is authoritative.
func (c *Client) MarkRead(id string) error {
	c.mu.Lock()
	conn := c.conn
	state := c.state
	c.mu.Unlock()

	if conn == nil || state != StateOpen {
		return ErrNotConnected
	}

	data, err := go_json.Marshal(command{Action: "mark_read", NotificationID: id})
	if err != nil {
		return fmt.Errorf("encoding command: %w", err)
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return fmt.Errorf("writing command: %w", err)
	}
	return nil
}

// Disconnect closes the socket and suppresses any scheduled reconnect.
// Connect returns nil after Disconnect. Safe to call more than once.
func (c *Client) Disconnect() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	conn := c.conn
	c.conn = nil
	close(c.closedCh)
	c.mu.Unlock()

	if conn != nil {
		_ = conn.Close()
	}
	c.setState(StateClosed)
}

func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Client) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *Client) setState(s State) {
	c.mu.Lock()
	if c.state == s || (c.closed && s != StateClosed) {
		c.mu.Unlock()
		return
	}
	c.state = s
	cb := c.onState
	c.mu.Unlock()

	if cb != nil {
		cb(s)
	}
}

func (c *Client) dropConn(conn *websocket.Conn) {
	_ = conn.Close()
	c.mu.Lock()
	if c.conn == conn {
		c.conn = nil
	}
	c.mu.Unlock()
}

// reconnectDelay returns the backoff for the given attempt, starting at 2s
// for attempt 1 and doubling up to the 30s cap.
func reconnectDelay(attempt int) time.Duration {
	d := initialBackoff << attempt
	if d <= 0 || d > maxBackoff {
		d = maxBackoff
	}
	return d
}
