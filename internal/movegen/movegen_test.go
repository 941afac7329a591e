package movegen

import (
	"errors"
	"reflect"
	"testing"

	"github.com/park285/samarth-chess/internal/board"
)

func place(t *testing.T, b *board.Board, label string, pt board.PieceType, c board.Color) board.Square {
	t.Helper()
	sq := board.MustSquare(label)
	if err := b.Set(sq, &board.Piece{Type: pt, Color: c}); err != nil {
		t.Fatalf("place %s: %v", label, err)
	}
	return sq
}

func labels(moves []board.Square) []string {
	out := make([]string, 0, len(moves))
	for _, m := range moves {
		out = append(out, m.Label())
	}
	return out
}

func mustMoves(t *testing.T, b *board.Board, sq board.Square) []board.Square {
	t.Helper()
	moves, err := LegalMoves(b, sq)
	if err != nil {
		t.Fatalf("LegalMoves(%s): %v", sq.Label(), err)
	}
	return moves
}

func TestStartingKnight(t *testing.T) {
	b := board.Initial()
	got := labels(mustMoves(t, b, board.Sq(7, 1)))
	want := []string{"c3", "a3"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("b1 knight: got %v want %v", got, want)
	}
}

func TestStartingPawnPushes(t *testing.T) {
	b := board.Initial()
	got := mustMoves(t, b, board.Sq(6, 4))
	want := []board.Square{board.Sq(5, 4), board.Sq(4, 4)}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("e2 pawn: got %v want %v", labels(got), labels(want))
	}
	black := labels(mustMoves(t, b, board.Sq(1, 3)))
	if !reflect.DeepEqual(black, []string{"d6", "d5"}) {
		t.Fatalf("d7 pawn: got %v", black)
	}
}

func TestPawnBlockedAndCaptures(t *testing.T) {
	b := board.Empty()
	from := place(t, b, "e4", board.Pawn, board.White)
	place(t, b, "e5", board.Knight, board.Black)
	place(t, b, "f5", board.Rook, board.Black)
	place(t, b, "d5", board.Bishop, board.White)

	got := labels(mustMoves(t, b, from))
	if !reflect.DeepEqual(got, []string{"f5"}) {
		t.Fatalf("blocked pawn: got %v want [f5]", got)
	}

	b2 := board.Empty()
	home := place(t, b2, "c7", board.Pawn, board.Black)
	place(t, b2, "c5", board.Pawn, board.White)
	place(t, b2, "d6", board.Queen, board.White)
	place(t, b2, "b6", board.Queen, board.White)
	got = labels(mustMoves(t, b2, home))
	if !reflect.DeepEqual(got, []string{"c6", "d6", "b6"}) {
		t.Fatalf("black pawn with blocked double push: got %v", got)
	}
}

func TestPawnNoDoublePushOffHomeRow(t *testing.T) {
	b := board.Empty()
	from := place(t, b, "e3", board.Pawn, board.White)
	got := labels(mustMoves(t, b, from))
	if !reflect.DeepEqual(got, []string{"e4"}) {
		t.Fatalf("e3 pawn: got %v want [e4]", got)
	}
}

func TestNoEnPassantAfterDoublePush(t *testing.T) {
	b := board.Empty()
	place(t, b, "e4", board.Pawn, board.White)
	black := place(t, b, "d4", board.Pawn, board.Black)
	got := labels(mustMoves(t, b, black))
	if !reflect.DeepEqual(got, []string{"d3"}) {
		t.Fatalf("d4 black pawn should only push: got %v", got)
	}
}

func TestKnightCapturesButNeverSelfCaptures(t *testing.T) {
	b := board.Empty()
	from := place(t, b, "d4", board.Knight, board.White)
	place(t, b, "e6", board.Pawn, board.White)
	place(t, b, "c6", board.Pawn, board.Black)
	got := labels(mustMoves(t, b, from))
	want := []string{"e2", "c2", "c6", "f3", "b3", "f5", "b5"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("d4 knight: got %v want %v", got, want)
	}
}

func TestKingSingleStep(t *testing.T) {
	b := board.Empty()
	from := place(t, b, "a1", board.King, board.White)
	place(t, b, "a2", board.Pawn, board.White)
	place(t, b, "b2", board.Pawn, board.Black)
	got := labels(mustMoves(t, b, from))
	want := []string{"b1", "b2"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("a1 king: got %v want %v", got, want)
	}
}

func TestNoCastlingForKing(t *testing.T) {
	b := board.Empty()
	king := place(t, b, "e1", board.King, board.White)
	place(t, b, "h1", board.Rook, board.White)
	for _, m := range mustMoves(t, b, king) {
		if m.Label() == "g1" {
			t.Fatalf("castling destination generated")
		}
	}
}

func TestRookBlockedByOwnPiece(t *testing.T) {
	b := board.Empty()
	rook := place(t, b, "d4", board.Rook, board.White)
	place(t, b, "d5", board.Pawn, board.White)
	for _, m := range mustMoves(t, b, rook) {
		if m.Col == rook.Col && m.Row < rook.Row {
			t.Fatalf("rook moved through friendly blocker to %s", m.Label())
		}
	}
}

func TestBishopStopsOnCapture(t *testing.T) {
	b := board.Empty()
	bishop := place(t, b, "c1", board.Bishop, board.White)
	place(t, b, "e3", board.Knight, board.Black)
	var upRight []string
	for _, m := range mustMoves(t, b, bishop) {
		if m.Col > bishop.Col && m.Row < bishop.Row {
			upRight = append(upRight, m.Label())
		}
	}
	if !reflect.DeepEqual(upRight, []string{"d2", "e3"}) {
		t.Fatalf("expected walk to stop at capture: got %v", upRight)
	}
	var beyond int
	for _, m := range mustMoves(t, b, bishop) {
		if m.Label() == "f4" || m.Label() == "g5" || m.Label() == "h6" {
			beyond++
		}
	}
	if beyond != 0 {
		t.Fatalf("bishop slid past captured piece")
	}
}

func TestBishopCaptureTwoAway(t *testing.T) {
	b := board.Empty()
	bishop := place(t, b, "d4", board.Bishop, board.Black)
	place(t, b, "f6", board.Pawn, board.White)
	count := 0
	for _, m := range mustMoves(t, b, bishop) {
		if m.Row < bishop.Row && m.Col > bishop.Col {
			count++
		}
	}
	// e5 then the capture on f6
	if count != 2 {
		t.Fatalf("expected 2 destinations toward f6, got %d", count)
	}
}

func TestQueenOrdering(t *testing.T) {
	b := board.Empty()
	q := place(t, b, "a1", board.Queen, board.White)
	place(t, b, "c1", board.Pawn, board.White)
	place(t, b, "a3", board.Pawn, board.Black)
	place(t, b, "c3", board.Pawn, board.Black)
	got := labels(mustMoves(t, b, q))
	want := []string{"b1", "a2", "a3", "b2", "c3"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("queen ordering: got %v want %v", got, want)
	}
}

func TestEmptySquareAndBounds(t *testing.T) {
	b := board.Initial()
	if _, err := LegalMoves(b, board.Sq(4, 4)); !errors.Is(err, ErrEmptySquare) {
		t.Fatalf("expected ErrEmptySquare, got %v", err)
	}
	if _, err := LegalMoves(b, board.Sq(9, 0)); !errors.Is(err, board.ErrOutOfBounds) {
		t.Fatalf("expected ErrOutOfBounds, got %v", err)
	}
}

func TestGenerationIsPure(t *testing.T) {
	b := board.Initial()
	before := b.Clone()
	for r := 0; r < board.Size; r++ {
		for c := 0; c < board.Size; c++ {
			sq := board.Sq(r, c)
			if b.At(sq) == nil {
				continue
			}
			first := mustMoves(t, b, sq)
			second := mustMoves(t, b, sq)
			if !reflect.DeepEqual(first, second) {
				t.Fatalf("non-deterministic moves for %s", sq.Label())
			}
		}
	}
	if !b.Equal(before) {
		t.Fatalf("generation mutated the board")
	}
}

func TestFiltered(t *testing.T) {
	b := board.Initial()
	onlyC := func(_ *board.Board, _, to board.Square) bool { return to.Col == 2 }
	got, err := Filtered(b, board.Sq(7, 1), onlyC)
	if err != nil {
		t.Fatalf("Filtered: %v", err)
	}
	if !reflect.DeepEqual(labels(got), []string{"c3"}) {
		t.Fatalf("Filtered: got %v", labels(got))
	}
	all, _ := Filtered(b, board.Sq(7, 1))
	if len(all) != 2 {
		t.Fatalf("Filtered without filters should match LegalMoves, got %v", labels(all))
	}
}
