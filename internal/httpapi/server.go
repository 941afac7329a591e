// Package httpapi exposes the session registry over a JSON HTTP API served
// by fasthttp.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/park285/samarth-chess/internal/adapter/chesspresenter"
	"github.com/park285/samarth-chess/internal/board"
	"github.com/park285/samarth-chess/internal/fen"
	"github.com/park285/samarth-chess/internal/game"
	"github.com/park285/samarth-chess/internal/msgcat"
	"github.com/park285/samarth-chess/internal/obslog"
	"github.com/park285/samarth-chess/internal/registry"
	"github.com/park285/samarth-chess/internal/render"
	"github.com/park285/samarth-chess/internal/store"
	"github.com/park285/samarth-chess/pkg/chessdto"
)

const (
	apiPrefix      = "/api/sessions"
	requestTimeout = 10 * time.Second
	maxBodyBytes   = 4 << 10
)

type Server struct {
	reg      *registry.Manager
	renderer *render.Renderer
	cat      *msgcat.Catalog
	srv      *fasthttp.Server
}

func New(reg *registry.Manager, renderer *render.Renderer, cat *msgcat.Catalog) *Server {
	if cat == nil {
		cat = msgcat.Default()
	}
	s := &Server{reg: reg, renderer: renderer, cat: cat}
	s.srv = &fasthttp.Server{
		Handler:            s.Handler(),
		Name:               "chess-server",
		ReadTimeout:        15 * time.Second,
		WriteTimeout:       15 * time.Second,
		IdleTimeout:        60 * time.Second,
		MaxRequestBodySize: maxBodyBytes,
	}
	return s
}

func (s *Server) ListenAndServe(addr string) error { return s.srv.ListenAndServe(addr) }

func (s *Server) Shutdown(ctx context.Context) error { return s.srv.ShutdownWithContext(ctx) }

// Handler returns the routing handler wrapped with access logging.
func (s *Server) Handler() fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		start := time.Now()
		s.route(ctx)
		obslog.L().Info("http_request",
			zap.ByteString("method", ctx.Method()),
			zap.ByteString("path", ctx.Path()),
			zap.Int("status", ctx.Response.StatusCode()),
			zap.Duration("elapsed", time.Since(start)),
		)
	}
}

func (s *Server) route(ctx *fasthttp.RequestCtx) {
	path := strings.TrimSuffix(string(ctx.Path()), "/")
	if path == "/healthz" {
		if !ctx.IsGet() {
			s.methodNotAllowed(ctx)
			return
		}
		writeJSON(ctx, fasthttp.StatusOK, chessdto.HealthResponse{Status: "ok", Sessions: s.reg.Len()})
		return
	}
	if path == apiPrefix {
		if !ctx.IsPost() {
			s.methodNotAllowed(ctx)
			return
		}
		s.create(ctx)
		return
	}
	rest, ok := strings.CutPrefix(path, apiPrefix+"/")
	if !ok || rest == "" {
		s.writeError(ctx, fasthttp.StatusNotFound, chessdto.DomainError{Code: chessdto.CodeNotFound, Message: "no such route"})
		return
	}
	id, action, _ := strings.Cut(rest, "/")

	type route struct {
		method string
		fn     func(*fasthttp.RequestCtx, string)
	}
	routes := map[string][]route{
		"":          {{fasthttp.MethodGet, s.get}, {fasthttp.MethodDelete, s.close}},
		"board.png": {{fasthttp.MethodGet, s.boardPNG}},
		"click":     {{fasthttp.MethodPost, s.click}},
		"move":      {{fasthttp.MethodPost, s.move}},
		"undo":      {{fasthttp.MethodPost, s.undo}},
		"reset":     {{fasthttp.MethodPost, s.reset}},
		"flip":      {{fasthttp.MethodPost, s.flip}},
		"fen":       {{fasthttp.MethodGet, s.getFEN}, {fasthttp.MethodPost, s.setFEN}},
	}
	candidates, ok := routes[action]
	if !ok {
		s.writeError(ctx, fasthttp.StatusNotFound, chessdto.DomainError{Code: chessdto.CodeNotFound, Message: "no such route"})
		return
	}
	method := string(ctx.Method())
	for _, r := range candidates {
		if r.method == method {
			r.fn(ctx, id)
			return
		}
	}
	s.methodNotAllowed(ctx)
}

func requestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), requestTimeout)
}

func (s *Server) view(id string, v game.View) chessdto.SessionView {
	return chesspresenter.ToSessionView(id, v, s.cat)
}

func (s *Server) create(ctx *fasthttp.RequestCtx) {
	rctx, cancel := requestContext()
	defer cancel()
	id, v, err := s.reg.Create(rctx)
	if err != nil {
		s.fail(ctx, id, err)
		return
	}
	ctx.Response.Header.Set("Location", apiPrefix+"/"+id)
	writeJSON(ctx, fasthttp.StatusCreated, s.view(id, v))
}

func (s *Server) get(ctx *fasthttp.RequestCtx, id string) {
	rctx, cancel := requestContext()
	defer cancel()
	v, err := s.reg.Get(rctx, id)
	if err != nil {
		s.fail(ctx, id, err)
		return
	}
	writeJSON(ctx, fasthttp.StatusOK, s.view(id, v))
}

func (s *Server) close(ctx *fasthttp.RequestCtx, id string) {
	rctx, cancel := requestContext()
	defer cancel()
	if err := s.reg.Close(rctx, id); err != nil {
		s.fail(ctx, id, err)
		return
	}
	ctx.SetStatusCode(fasthttp.StatusNoContent)
}

func (s *Server) boardPNG(ctx *fasthttp.RequestCtx, id string) {
	rctx, cancel := requestContext()
	defer cancel()
	v, err := s.reg.Get(rctx, id)
	if err != nil {
		s.fail(ctx, id, err)
		return
	}
	opts := render.Options{Header: s.cat.TurnLabel(v.Turn.Title())}
	if raw := ctx.QueryArgs().Peek("size"); len(raw) > 0 {
		n, err := strconv.Atoi(string(raw))
		if err != nil || n < 16 || n > 256 {
			s.writeError(ctx, fasthttp.StatusBadRequest, chessdto.DomainError{
				Code:    chessdto.CodeBadRequest,
				Message: s.cat.Text("error.bad_request", map[string]any{"Detail": "size must be 16..256"}),
			})
			return
		}
		opts.SquarePx = n
	}
	data, err := s.renderer.RenderPNG(rctx, v, opts)
	if err != nil {
		s.fail(ctx, id, err)
		return
	}
	ctx.SetStatusCode(fasthttp.StatusOK)
	ctx.SetContentType("image/png")
	ctx.Response.Header.Set("Cache-Control", "no-store")
	ctx.SetBody(data)
}

func (s *Server) click(ctx *fasthttp.RequestCtx, id string) {
	var req chessdto.ClickRequest
	if !s.decode(ctx, &req) {
		return
	}
	sq, err := board.ParseSquare(req.Square)
	if err != nil {
		s.fail(ctx, id, err)
		return
	}
	rctx, cancel := requestContext()
	defer cancel()
	out, v, err := s.reg.SelectOrMove(rctx, id, sq)
	if err != nil {
		s.fail(ctx, id, err)
		return
	}
	writeJSON(ctx, fasthttp.StatusOK, chessdto.ClickResponse{
		Outcome: chesspresenter.ToOutcome(out, sq, len(v.Candidates), s.cat),
		View:    s.view(id, v),
	})
}

func (s *Server) move(ctx *fasthttp.RequestCtx, id string) {
	var req chessdto.MoveRequest
	if !s.decode(ctx, &req) {
		return
	}
	from, err := board.ParseSquare(req.From)
	if err != nil {
		s.fail(ctx, id, err)
		return
	}
	to, err := board.ParseSquare(req.To)
	if err != nil {
		s.fail(ctx, id, err)
		return
	}
	rctx, cancel := requestContext()
	defer cancel()
	rec, v, err := s.reg.Move(rctx, id, from, to)
	if err != nil {
		s.fail(ctx, id, err)
		return
	}
	writeJSON(ctx, fasthttp.StatusOK, chessdto.MoveResponse{Move: chesspresenter.ToMove(rec), View: s.view(id, v)})
}

func (s *Server) undo(ctx *fasthttp.RequestCtx, id string) {
	rctx, cancel := requestContext()
	defer cancel()
	ok, v, err := s.reg.Undo(rctx, id)
	if err != nil {
		s.fail(ctx, id, err)
		return
	}
	writeJSON(ctx, fasthttp.StatusOK, chessdto.UndoResponse{Undone: ok, View: s.view(id, v)})
}

func (s *Server) reset(ctx *fasthttp.RequestCtx, id string) {
	rctx, cancel := requestContext()
	defer cancel()
	v, err := s.reg.Reset(rctx, id)
	if err != nil {
		s.fail(ctx, id, err)
		return
	}
	writeJSON(ctx, fasthttp.StatusOK, s.view(id, v))
}

func (s *Server) flip(ctx *fasthttp.RequestCtx, id string) {
	rctx, cancel := requestContext()
	defer cancel()
	v, err := s.reg.FlipView(rctx, id)
	if err != nil {
		s.fail(ctx, id, err)
		return
	}
	writeJSON(ctx, fasthttp.StatusOK, s.view(id, v))
}

func (s *Server) getFEN(ctx *fasthttp.RequestCtx, id string) {
	rctx, cancel := requestContext()
	defer cancel()
	out, err := s.reg.FEN(rctx, id)
	if err != nil {
		s.fail(ctx, id, err)
		return
	}
	writeJSON(ctx, fasthttp.StatusOK, chessdto.FENResponse{FEN: out})
}

func (s *Server) setFEN(ctx *fasthttp.RequestCtx, id string) {
	var req chessdto.FENRequest
	if !s.decode(ctx, &req) {
		return
	}
	rctx, cancel := requestContext()
	defer cancel()
	v, err := s.reg.LoadFEN(rctx, id, req.FEN)
	if err != nil {
		s.fail(ctx, id, err)
		return
	}
	writeJSON(ctx, fasthttp.StatusOK, s.view(id, v))
}

func (s *Server) decode(ctx *fasthttp.RequestCtx, dst any) bool {
	if err := json.Unmarshal(ctx.PostBody(), dst); err != nil {
		s.writeError(ctx, fasthttp.StatusBadRequest, chessdto.DomainError{
			Code:    chessdto.CodeBadRequest,
			Message: s.cat.Text("error.bad_request", map[string]any{"Detail": err.Error()}),
		})
		return false
	}
	return true
}

// fail maps domain errors onto status codes and catalog messages.
func (s *Server) fail(ctx *fasthttp.RequestCtx, id string, err error) {
	status, de := s.classify(id, err)
	if status >= fasthttp.StatusInternalServerError {
		obslog.L().Error("http_handler_error", zap.String("session_id", id), zap.Error(err))
	}
	s.writeError(ctx, status, de)
}

func (s *Server) classify(id string, err error) (int, chessdto.DomainError) {
	detail := map[string]any{"ID": id, "Detail": err.Error()}
	switch {
	case errors.Is(err, board.ErrOutOfBounds):
		return fasthttp.StatusBadRequest, chessdto.DomainError{Code: chessdto.CodeInvalidSquare, Message: s.cat.Text("error.invalid_square", detail)}
	case errors.Is(err, game.ErrIllegalMove):
		return fasthttp.StatusUnprocessableEntity, chessdto.DomainError{Code: chessdto.CodeIllegalMove, Message: s.cat.Text("error.illegal_move", detail)}
	case errors.Is(err, fen.ErrInvalidFEN):
		return fasthttp.StatusBadRequest, chessdto.DomainError{Code: chessdto.CodeInvalidFEN, Message: s.cat.Text("error.invalid_fen", detail)}
	case errors.Is(err, registry.ErrSessionNotFound):
		return fasthttp.StatusNotFound, chessdto.DomainError{Code: chessdto.CodeNotFound, Message: s.cat.Text("error.not_found", detail)}
	case errors.Is(err, registry.ErrTooManySessions):
		return fasthttp.StatusServiceUnavailable, chessdto.DomainError{Code: chessdto.CodeTooManySessions, Message: s.cat.Text("error.too_many_sessions", nil), Retryable: true}
	case errors.Is(err, store.ErrConcurrentUpdate):
		return fasthttp.StatusConflict, chessdto.DomainError{Code: chessdto.CodeConcurrentUpdate, Message: s.cat.Text("error.concurrent_update", detail), Retryable: true}
	default:
		return fasthttp.StatusInternalServerError, chessdto.DomainError{Code: chessdto.CodeInternal, Message: s.cat.Text("error.internal", nil), Retryable: true}
	}
}

func (s *Server) methodNotAllowed(ctx *fasthttp.RequestCtx) {
	s.writeError(ctx, fasthttp.StatusMethodNotAllowed, chessdto.DomainError{Code: chessdto.CodeBadRequest, Message: "method not allowed"})
}

func (s *Server) writeError(ctx *fasthttp.RequestCtx, status int, de chessdto.DomainError) {
	writeJSON(ctx, status, chessdto.ErrorResponse{Error: de})
}

func writeJSON(ctx *fasthttp.RequestCtx, status int, body any) {
	raw, err := json.Marshal(body)
	if err != nil {
		ctx.Error(`{"error":{"code":"internal","message":"encode response"}}`, fasthttp.StatusInternalServerError)
		return
	}
	ctx.SetStatusCode(status)
	ctx.SetContentType("application/json; charset=utf-8")
	ctx.SetBody(raw)
}
