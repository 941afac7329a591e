package render

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/park285/samarth-chess/internal/board"
	"github.com/park285/samarth-chess/internal/game"
)

func selectedView(t *testing.T, flipped bool) game.View {
	t.Helper()
	s := game.New()
	if flipped {
		s.FlipView()
	}
	if _, err := s.SelectOrMove(board.MustSquare("e2")); err != nil {
		t.Fatalf("select: %v", err)
	}
	return s.View()
}

func cornerPixel(img *image.RGBA, r *Renderer, sq board.Square, flipped bool) color.RGBA {
	rect := squareRect(sq, r.squarePx, r.BoardOrigin(), flipped)
	return img.RGBAAt(rect.Min.X+1, rect.Min.Y+1)
}

func centerPixel(img *image.RGBA, r *Renderer, sq board.Square, flipped bool) color.RGBA {
	rect := squareRect(sq, r.squarePx, r.BoardOrigin(), flipped)
	return img.RGBAAt(rect.Min.X+r.squarePx/2, rect.Min.Y+r.squarePx/2)
}

func TestRenderPNGDecodes(t *testing.T) {
	r := New(48)
	data, err := r.RenderPNG(context.Background(), game.New().View(), Options{Header: "White's Turn"})
	if err != nil {
		t.Fatalf("RenderPNG: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	w, h := r.Size()
	if img.Bounds().Dx() != w || img.Bounds().Dy() != h {
		t.Fatalf("size = %v want %dx%d", img.Bounds(), w, h)
	}
}

func TestSquareShading(t *testing.T) {
	r := New(32)
	img, err := r.Render(context.Background(), game.New().View(), Options{})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if got := centerPixel(img, r, board.MustSquare("e4"), false); got != lightSquare {
		t.Fatalf("e4 should be light, got %v", got)
	}
	if got := centerPixel(img, r, board.MustSquare("d4"), false); got != darkSquare {
		t.Fatalf("d4 should be dark, got %v", got)
	}
}

func TestSelectionAndCandidates(t *testing.T) {
	r := New(64)
	v := selectedView(t, false)
	img, err := r.Render(context.Background(), v, Options{})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if got := cornerPixel(img, r, board.MustSquare("e2"), false); got == lightSquare {
		t.Fatalf("selected square not highlighted")
	}
	if got := centerPixel(img, r, board.MustSquare("e4"), false); got == lightSquare {
		t.Fatalf("candidate e4 not marked")
	}
	if got := centerPixel(img, r, board.MustSquare("e5"), false); got != darkSquare {
		t.Fatalf("e5 should be plain, got %v", got)
	}
}

func TestFlippedOrientation(t *testing.T) {
	r := New(64)
	v := selectedView(t, true)
	img, err := r.Render(context.Background(), v, Options{})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	// e2 is drawn at display row 1, col 3 when flipped.
	origin := r.BoardOrigin()
	if got := img.RGBAAt(origin.X+3*64+1, origin.Y+1*64+1); got == lightSquare {
		t.Fatalf("flipped selection not at display (1,3)")
	}
	// display row 6, col 4 now shows d7, unselected.
	if got := img.RGBAAt(origin.X+4*64+1, origin.Y+6*64+1); got != lightSquare {
		t.Fatalf("display (6,4) should be a plain light square, got %v", got)
	}
}

func TestRenderErrors(t *testing.T) {
	r := New(32)
	if _, err := r.Render(context.Background(), game.View{}, Options{}); err == nil {
		t.Fatalf("expected error for nil board")
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := r.RenderPNG(ctx, game.New().View(), Options{}); err == nil {
		t.Fatalf("expected context error")
	}
}
