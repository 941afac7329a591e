package httpapi

import (
	"bytes"
	"encoding/json"
	"image/png"
	"testing"
	"time"

	"github.com/valyala/fasthttp"

	"github.com/park285/samarth-chess/internal/msgcat"
	"github.com/park285/samarth-chess/internal/registry"
	"github.com/park285/samarth-chess/internal/render"
	"github.com/park285/samarth-chess/internal/store"
	"github.com/park285/samarth-chess/pkg/chessdto"
)

func newTestServer(t *testing.T, cfg registry.Config) *Server {
	t.Helper()
	reg := registry.New(store.NewMemoryStore(time.Hour), cfg)
	return New(reg, render.New(24), msgcat.Default())
}

func do(t *testing.T, s *Server, method, uri string, body any) *fasthttp.RequestCtx {
	t.Helper()
	var ctx fasthttp.RequestCtx
	ctx.Request.Header.SetMethod(method)
	ctx.Request.SetRequestURI(uri)
	if body != nil {
		switch b := body.(type) {
		case string:
			ctx.Request.SetBodyString(b)
		default:
			raw, err := json.Marshal(b)
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}
			ctx.Request.SetBody(raw)
		}
		ctx.Request.Header.SetContentType("application/json")
	}
	s.Handler()(&ctx)
	return &ctx
}

func decodeBody(t *testing.T, ctx *fasthttp.RequestCtx, dst any) {
	t.Helper()
	if err := json.Unmarshal(ctx.Response.Body(), dst); err != nil {
		t.Fatalf("decode %s: %v", ctx.Response.Body(), err)
	}
}

func createSession(t *testing.T, s *Server) chessdto.SessionView {
	t.Helper()
	ctx := do(t, s, "POST", "/api/sessions", nil)
	if ctx.Response.StatusCode() != fasthttp.StatusCreated {
		t.Fatalf("create status = %d", ctx.Response.StatusCode())
	}
	var v chessdto.SessionView
	decodeBody(t, ctx, &v)
	if v.ID == "" {
		t.Fatalf("missing id")
	}
	return v
}

func expectError(t *testing.T, ctx *fasthttp.RequestCtx, status int, code string) {
	t.Helper()
	if ctx.Response.StatusCode() != status {
		t.Fatalf("status = %d want %d (%s)", ctx.Response.StatusCode(), status, ctx.Response.Body())
	}
	var er chessdto.ErrorResponse
	decodeBody(t, ctx, &er)
	if er.Error.Code != code {
		t.Fatalf("code = %q want %q", er.Error.Code, code)
	}
}

func TestCreateAndGet(t *testing.T) {
	s := newTestServer(t, registry.Config{})
	v := createSession(t, s)
	if v.TurnLabel != "White's Turn" || len(v.Rows) != 8 {
		t.Fatalf("unexpected view: %+v", v)
	}
	ctx := do(t, s, "GET", "/api/sessions/"+v.ID, nil)
	if ctx.Response.StatusCode() != fasthttp.StatusOK {
		t.Fatalf("get status = %d", ctx.Response.StatusCode())
	}
}

func TestClickFlow(t *testing.T) {
	s := newTestServer(t, registry.Config{})
	id := createSession(t, s).ID

	var resp chessdto.ClickResponse
	decodeBody(t, do(t, s, "POST", "/api/sessions/"+id+"/click", chessdto.ClickRequest{Square: "b1"}), &resp)
	if resp.Outcome.Kind != "selected" || len(resp.View.Candidates) != 2 {
		t.Fatalf("select response: %+v", resp)
	}

	decodeBody(t, do(t, s, "POST", "/api/sessions/"+id+"/click", chessdto.ClickRequest{Square: "c3"}), &resp)
	if resp.Outcome.Kind != "moved" || resp.Outcome.Move == nil || resp.Outcome.Move.Text != "N: b1 → c3" {
		t.Fatalf("move response: %+v", resp.Outcome)
	}
	if resp.View.Turn != "black" || resp.View.TurnLabel != "Black's Turn" || resp.View.Log[0] != "N: b1 → c3" {
		t.Fatalf("view after move: %+v", resp.View)
	}

	decodeBody(t, do(t, s, "POST", "/api/sessions/"+id+"/click", chessdto.ClickRequest{Square: "e4"}), &resp)
	if resp.Outcome.Kind != "ignored" {
		t.Fatalf("idle click should be ignored: %+v", resp.Outcome)
	}
}

func TestUndoResetFlip(t *testing.T) {
	s := newTestServer(t, registry.Config{})
	id := createSession(t, s).ID

	var undo chessdto.UndoResponse
	decodeBody(t, do(t, s, "POST", "/api/sessions/"+id+"/undo", nil), &undo)
	if undo.Undone {
		t.Fatalf("nothing to undo yet")
	}

	var mv chessdto.MoveResponse
	decodeBody(t, do(t, s, "POST", "/api/sessions/"+id+"/move", chessdto.MoveRequest{From: "e2", To: "e4"}), &mv)
	if mv.Move.Text != "P: e2 → e4" || mv.View.MoveCount != 1 {
		t.Fatalf("move: %+v", mv)
	}
	decodeBody(t, do(t, s, "POST", "/api/sessions/"+id+"/undo", nil), &undo)
	if !undo.Undone || undo.View.MoveCount != 0 || undo.View.Turn != "white" {
		t.Fatalf("undo: %+v", undo)
	}

	var v chessdto.SessionView
	decodeBody(t, do(t, s, "POST", "/api/sessions/"+id+"/flip", nil), &v)
	if !v.Flipped {
		t.Fatalf("flip did not flip")
	}
	decodeBody(t, do(t, s, "POST", "/api/sessions/"+id+"/reset", nil), &v)
	if !v.Flipped || v.MoveCount != 0 {
		t.Fatalf("reset should keep orientation: %+v", v)
	}
}

func TestFENEndpoints(t *testing.T) {
	s := newTestServer(t, registry.Config{})
	id := createSession(t, s).ID

	var f chessdto.FENResponse
	decodeBody(t, do(t, s, "GET", "/api/sessions/"+id+"/fen", nil), &f)
	if f.FEN != "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1" {
		t.Fatalf("fen = %q", f.FEN)
	}

	var v chessdto.SessionView
	decodeBody(t, do(t, s, "POST", "/api/sessions/"+id+"/fen", chessdto.FENRequest{FEN: "4k3/8/8/8/8/8/8/4K3 b - - 0 1"}), &v)
	if v.Turn != "black" || v.Rows[0] != "....k..." {
		t.Fatalf("loaded view: %+v", v)
	}

	expectError(t, do(t, s, "POST", "/api/sessions/"+id+"/fen", chessdto.FENRequest{FEN: "nope"}), fasthttp.StatusBadRequest, chessdto.CodeInvalidFEN)
}

func TestBoardPNG(t *testing.T) {
	s := newTestServer(t, registry.Config{})
	id := createSession(t, s).ID
	ctx := do(t, s, "GET", "/api/sessions/"+id+"/board.png?size=20", nil)
	if ctx.Response.StatusCode() != fasthttp.StatusOK {
		t.Fatalf("status = %d", ctx.Response.StatusCode())
	}
	if ct := string(ctx.Response.Header.ContentType()); ct != "image/png" {
		t.Fatalf("content type = %q", ct)
	}
	img, err := png.Decode(bytes.NewReader(ctx.Response.Body()))
	if err != nil {
		t.Fatalf("decode png: %v", err)
	}
	w, _ := render.New(20).Size()
	if img.Bounds().Dx() != w {
		t.Fatalf("width = %d want %d", img.Bounds().Dx(), w)
	}
	expectError(t, do(t, s, "GET", "/api/sessions/"+id+"/board.png?size=2", nil), fasthttp.StatusBadRequest, chessdto.CodeBadRequest)
}

func TestErrorMapping(t *testing.T) {
	s := newTestServer(t, registry.Config{MaxSessions: 1})
	id := createSession(t, s).ID

	expectError(t, do(t, s, "GET", "/api/sessions/unknown", nil), fasthttp.StatusNotFound, chessdto.CodeNotFound)
	expectError(t, do(t, s, "POST", "/api/sessions/"+id+"/click", chessdto.ClickRequest{Square: "z9"}), fasthttp.StatusBadRequest, chessdto.CodeInvalidSquare)
	expectError(t, do(t, s, "POST", "/api/sessions/"+id+"/click", "{not json"), fasthttp.StatusBadRequest, chessdto.CodeBadRequest)
	expectError(t, do(t, s, "POST", "/api/sessions/"+id+"/move", chessdto.MoveRequest{From: "e2", To: "e5"}), fasthttp.StatusUnprocessableEntity, chessdto.CodeIllegalMove)
	expectError(t, do(t, s, "POST", "/api/sessions", nil), fasthttp.StatusServiceUnavailable, chessdto.CodeTooManySessions)
	expectError(t, do(t, s, "GET", "/api/sessions/"+id+"/click", nil), fasthttp.StatusMethodNotAllowed, chessdto.CodeBadRequest)
	expectError(t, do(t, s, "GET", "/api/sessions/"+id+"/nothing", nil), fasthttp.StatusNotFound, chessdto.CodeNotFound)
}

func TestDeleteAndHealth(t *testing.T) {
	s := newTestServer(t, registry.Config{})
	id := createSession(t, s).ID

	var h chessdto.HealthResponse
	decodeBody(t, do(t, s, "GET", "/healthz", nil), &h)
	if h.Status != "ok" || h.Sessions != 1 {
		t.Fatalf("health = %+v", h)
	}
	if ctx := do(t, s, "DELETE", "/api/sessions/"+id, nil); ctx.Response.StatusCode() != fasthttp.StatusNoContent {
		t.Fatalf("delete status = %d", ctx.Response.StatusCode())
	}
	expectError(t, do(t, s, "GET", "/api/sessions/"+id, nil), fasthttp.StatusNotFound, chessdto.CodeNotFound)
}
