package fen

import (
	"errors"
	"testing"

	"github.com/park285/samarth-chess/internal/board"
)

func TestEncodeStart(t *testing.T) {
	got := Encode(Input{Board: board.Initial(), Turn: board.White, Castling: board.FullCastling()})
	if got != Start {
		t.Fatalf("Encode = %q want %q", got, Start)
	}
}

func TestEncodeFields(t *testing.T) {
	b := board.Empty()
	_ = b.Set(board.MustSquare("e1"), &board.Piece{Type: board.King, Color: board.White})
	_ = b.Set(board.MustSquare("e8"), &board.Piece{Type: board.King, Color: board.Black})
	_ = b.Set(board.MustSquare("d5"), &board.Piece{Type: board.Pawn, Color: board.Black})
	ep := board.MustSquare("d6")
	got := Encode(Input{
		Board:     b,
		Turn:      board.White,
		Castling:  board.CastlingRights{Black: board.SideCastling{Queenside: true}},
		EnPassant: &ep,
		Plies:     5,
	})
	want := "4k3/8/8/3p4/8/8/8/4K3 w q d6 0 3"
	if got != want {
		t.Fatalf("Encode = %q want %q", got, want)
	}
}

func TestDecodeStart(t *testing.T) {
	pos, err := Decode(Start)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !pos.Board.Equal(board.Initial()) {
		t.Fatalf("decoded board differs from initial:\n%v", pos.Board.EncodeRows())
	}
	if pos.Turn != board.White {
		t.Fatalf("turn = %s", pos.Turn)
	}
	if pos.Castling != board.FullCastling() {
		t.Fatalf("castling = %+v", pos.Castling)
	}
	if pos.EnPassant != nil {
		t.Fatalf("en passant = %v", pos.EnPassant)
	}
}

func TestDecodeRoundTrip(t *testing.T) {
	in := "rnbqkbnr/ppp1pppp/8/3p4/4P3/8/PPPP1PPP/RNBQKBNR b Kq e3 0 2"
	pos, err := Decode(in)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if pos.Turn != board.Black {
		t.Fatalf("turn = %s want black", pos.Turn)
	}
	if pos.EnPassant == nil || pos.EnPassant.Label() != "e3" {
		t.Fatalf("en passant = %v", pos.EnPassant)
	}
	if !pos.Castling.White.Kingside || pos.Castling.White.Queenside || pos.Castling.Black.Kingside || !pos.Castling.Black.Queenside {
		t.Fatalf("castling = %+v", pos.Castling)
	}
	out := Encode(Input{Board: pos.Board, Turn: pos.Turn, Castling: pos.Castling, EnPassant: pos.EnPassant, Plies: 3})
	if out != in {
		t.Fatalf("round trip = %q want %q", out, in)
	}
}

func TestDecodeRejectsMalformed(t *testing.T) {
	for _, s := range []string{"", "   ", "not a fen", "rnbqkbnr/pppppppp/8/8 w KQkq - 0 1"} {
		if _, err := Decode(s); !errors.Is(err, ErrInvalidFEN) {
			t.Fatalf("Decode(%q): expected ErrInvalidFEN, got %v", s, err)
		}
	}
}
