// Package livefeed streams session views to websocket clients.
package livefeed

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/park285/samarth-chess/internal/adapter/chesspresenter"
	"github.com/park285/samarth-chess/internal/game"
	"github.com/park285/samarth-chess/internal/msgcat"
	"github.com/park285/samarth-chess/internal/obslog"
	"github.com/park285/samarth-chess/internal/registry"
)

// Pattern is the route the handler expects to be mounted on.
const Pattern = "GET /ws/sessions/{id}"

const (
	writeTimeout = 5 * time.Second
	pingInterval = 30 * time.Second
)

type Handler struct {
	reg            *registry.Manager
	cat            *msgcat.Catalog
	originPatterns []string
	pingInterval   time.Duration
}

type HandlerOption func(*Handler)

// WithOriginPatterns allows browser clients from the given host patterns.
func WithOriginPatterns(patterns ...string) HandlerOption {
	return func(h *Handler) { h.originPatterns = patterns }
}

func WithPingInterval(d time.Duration) HandlerOption {
	return func(h *Handler) { h.pingInterval = d }
}

func NewHandler(reg *registry.Manager, cat *msgcat.Catalog, opts ...HandlerOption) *Handler {
	if cat == nil {
		cat = msgcat.Default()
	}
	h := &Handler{reg: reg, cat: cat, pingInterval: pingInterval}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Mux returns a ServeMux with the handler mounted at Pattern.
func (h *Handler) Mux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle(Pattern, h)
	return mux
}

// ServeHTTP sends the current view right after the handshake and then one
// view per visible change until the peer leaves or the session closes.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		http.Error(w, "missing session id", http.StatusNotFound)
		return
	}
	// Subscribe before reading the current view so no change is missed.
	views, cancel := h.reg.Subscribe(id)
	defer cancel()

	current, err := h.reg.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, registry.ErrSessionNotFound) {
			http.Error(w, h.cat.Text("error.not_found", map[string]any{"ID": id}), http.StatusNotFound)
			return
		}
		obslog.L().Error("livefeed_get_failed", zap.String("session_id", id), zap.Error(err))
		http.Error(w, h.cat.Text("error.internal", nil), http.StatusInternalServerError)
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns:  h.originPatterns,
		CompressionMode: websocket.CompressionNoContextTakeover,
	})
	if err != nil {
		obslog.L().Warn("livefeed_accept_failed", zap.String("session_id", id), zap.Error(err))
		return
	}
	defer conn.CloseNow()

	logger := obslog.L().With(zap.String("session_id", id))
	logger.Info("livefeed_connected")

	// Clients never send data frames; CloseRead handles control frames and
	// cancels ctx when the peer goes away.
	ctx := conn.CloseRead(r.Context())

	if err := h.send(ctx, conn, id, current); err != nil {
		logger.Debug("livefeed_write_failed", zap.Error(err))
		return
	}

	ticker := time.NewTicker(h.pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			logger.Info("livefeed_disconnected")
			return
		case v, ok := <-views:
			if !ok {
				_ = conn.Close(websocket.StatusNormalClosure, "session closed")
				logger.Info("livefeed_session_closed")
				return
			}
			if err := h.send(ctx, conn, id, v); err != nil {
				logger.Debug("livefeed_write_failed", zap.Error(err))
				return
			}
		case <-ticker.C:
			pctx, pcancel := context.WithTimeout(ctx, writeTimeout)
			err := conn.Ping(pctx)
			pcancel()
			if err != nil {
				logger.Debug("livefeed_ping_failed", zap.Error(err))
				return
			}
		}
	}
}

func (h *Handler) send(ctx context.Context, conn *websocket.Conn, id string, v game.View) error {
	wctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	return wsjson.Write(wctx, conn, chesspresenter.ToSessionView(id, v, h.cat))
}
