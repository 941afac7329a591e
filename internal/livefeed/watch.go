package livefeed

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/park285/samarth-chess/internal/obslog"
	"github.com/park285/samarth-chess/pkg/chessdto"
)

type State string

const (
	StateConnecting   State = "connecting"
	StateConnected    State = "connected"
	StateReconnecting State = "reconnecting"
	StateClosed       State = "closed"
	StateFailed       State = "failed"
)

// ErrSessionClosed is returned by Watch when the server ends the feed
// because the session was closed.
var ErrSessionClosed = errors.New("session closed")

type ViewCallback func(chessdto.SessionView)

type StateCallback func(State)

type Watcher struct {
	url            string
	maxReconnect   int
	reconnectDelay time.Duration
	dialTimeout    time.Duration
	onState        StateCallback
}

type WatchOption func(*Watcher)

// WithReconnect sets how many consecutive dial failures are tolerated
// after a dropped connection. 0 disables reconnecting.
func WithReconnect(max int, delay time.Duration) WatchOption {
	return func(w *Watcher) {
		w.maxReconnect = max
		w.reconnectDelay = delay
	}
}

func WithStateCallback(cb StateCallback) WatchOption {
	return func(w *Watcher) { w.onState = cb }
}

func NewWatcher(url string, opts ...WatchOption) *Watcher {
	w := &Watcher{
		url:            url,
		maxReconnect:   5,
		reconnectDelay: 100 * time.Millisecond,
		dialTimeout:    10 * time.Second,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Watch calls fn for every view received from url until ctx is done.
func Watch(ctx context.Context, url string, fn ViewCallback, opts ...WatchOption) error {
	return NewWatcher(url, opts...).Run(ctx, fn)
}

// Run blocks until ctx is cancelled, the session closes, or reconnecting
// gives up. A cancelled ctx returns nil.
func (w *Watcher) Run(ctx context.Context, fn ViewCallback) error {
	w.setState(StateConnecting)
	conn, err := w.dial(ctx)
	if err != nil {
		w.setState(StateFailed)
		return err
	}
	for {
		err := w.listen(ctx, conn, fn)
		switch {
		case ctx.Err() != nil:
			w.setState(StateClosed)
			return nil
		case errors.Is(err, ErrSessionClosed):
			w.setState(StateClosed)
			return err
		}
		obslog.L().Warn("livefeed_watch_dropped", zap.String("url", w.url), zap.Error(err))

		conn, err = w.reconnect(ctx)
		if err != nil {
			if ctx.Err() != nil {
				w.setState(StateClosed)
				return nil
			}
			w.setState(StateFailed)
			return err
		}
	}
}

func (w *Watcher) listen(ctx context.Context, conn *websocket.Conn, fn ViewCallback) error {
	defer conn.CloseNow()
	w.setState(StateConnected)
	for {
		var v chessdto.SessionView
		if err := wsjson.Read(ctx, conn, &v); err != nil {
			if websocket.CloseStatus(err) == websocket.StatusNormalClosure {
				return ErrSessionClosed
			}
			return err
		}
		if fn != nil {
			fn(v)
		}
	}
}

func (w *Watcher) reconnect(ctx context.Context) (*websocket.Conn, error) {
	if w.maxReconnect <= 0 {
		return nil, errors.New("connection lost")
	}
	w.setState(StateReconnecting)
	var lastErr error
	for attempt := 1; attempt <= w.maxReconnect; attempt++ {
		t := time.NewTimer(w.backoff(attempt))
		select {
		case <-ctx.Done():
			t.Stop()
			return nil, ctx.Err()
		case <-t.C:
		}
		conn, err := w.dial(ctx)
		if err == nil {
			return conn, nil
		}
		lastErr = err
	}
	return nil, fmt.Errorf("reconnect after %d attempts: %w", w.maxReconnect, lastErr)
}

func (w *Watcher) dial(ctx context.Context) (*websocket.Conn, error) {
	dctx, cancel := context.WithTimeout(ctx, w.dialTimeout)
	defer cancel()
	conn, _, err := websocket.Dial(dctx, w.url, &websocket.DialOptions{
		CompressionMode: websocket.CompressionNoContextTakeover,
	})
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", w.url, err)
	}
	return conn, nil
}

// backoff doubles the base delay per attempt, capped at 32x.
func (w *Watcher) backoff(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	if attempt > 6 {
		attempt = 6
	}
	return time.Duration(1<<uint(attempt-1)) * w.reconnectDelay
}

func (w *Watcher) setState(s State) {
	if w.onState != nil {
		w.onState(s)
	}
}
