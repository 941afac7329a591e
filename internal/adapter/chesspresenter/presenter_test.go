package chesspresenter

import (
	"strings"
	"testing"

	"github.com/park285/samarth-chess/internal/board"
	"github.com/park285/samarth-chess/internal/fen"
	"github.com/park285/samarth-chess/internal/game"
	"github.com/park285/samarth-chess/internal/msgcat"
	"github.com/park285/samarth-chess/pkg/chessdto"
)

func play(t *testing.T, s *game.Session, moves ...[2]string) {
	t.Helper()
	for _, mv := range moves {
		if _, err := s.Move(board.MustSquare(mv[0]), board.MustSquare(mv[1])); err != nil {
			t.Fatalf("%s-%s: %v", mv[0], mv[1], err)
		}
	}
}

func TestToSessionViewInitial(t *testing.T) {
	v := ToSessionView("abc", game.New().View(), msgcat.Default())
	if v.ID != "abc" || v.Turn != "white" || v.TurnLabel != "White's Turn" {
		t.Fatalf("unexpected header fields: %+v", v)
	}
	if v.FEN != fen.Start {
		t.Fatalf("fen = %q", v.FEN)
	}
	if len(v.Rows) != 8 || v.Rows[0] != "rnbqkbnr" || v.Rows[7] != "RNBQKBNR" {
		t.Fatalf("rows = %v", v.Rows)
	}
	if v.Castling != "KQkq" || v.LastMove != nil || v.Selected != "" {
		t.Fatalf("unexpected state: %+v", v)
	}
	if v.Candidates == nil || v.Log == nil {
		t.Fatalf("empty lists should encode as [] not null")
	}
}

func TestToSessionViewCaptures(t *testing.T) {
	s := game.New()
	play(t, s, [2]string{"e2", "e4"}, [2]string{"d7", "d5"}, [2]string{"e4", "d5"})
	v := ToSessionView("x", s.View(), msgcat.Default())
	if v.TurnLabel != "Black's Turn" || v.MoveCount != 3 {
		t.Fatalf("unexpected view: %+v", v)
	}
	if len(v.Captured.White) != 1 || v.Captured.White[0] != "P" || len(v.Captured.Black) != 0 {
		t.Fatalf("captured = %+v", v.Captured)
	}
	if v.LastMove == nil || v.LastMove.Text != "P: e4 → d5" || v.LastMove.Captured != "P" {
		t.Fatalf("last move = %+v", v.LastMove)
	}
	if v.Log[0] != "P: e4 → d5" {
		t.Fatalf("log should be most recent first: %v", v.Log)
	}
}

func TestToOutcomeMessages(t *testing.T) {
	cat := msgcat.Default()
	o := ToOutcome(game.Outcome{Kind: game.Selected}, board.MustSquare("b1"), 2, cat)
	if o.Message != "Selected b1 (2 moves)" {
		t.Fatalf("message = %q", o.Message)
	}
	rec := game.MoveRecord{Piece: board.Knight, Color: board.White, From: board.MustSquare("b1"), To: board.MustSquare("c3")}
	o = ToOutcome(game.Outcome{Kind: game.Moved, Move: &rec}, board.MustSquare("c3"), 0, cat)
	if o.Message != "N: b1 → c3" || o.Move == nil {
		t.Fatalf("moved outcome = %+v", o)
	}
}

func TestFormatterBoardOrientation(t *testing.T) {
	s := game.New()
	if _, err := s.SelectOrMove(board.MustSquare("e2")); err != nil {
		t.Fatalf("select: %v", err)
	}
	f := NewFormatter(nil)
	v := ToSessionView("x", s.View(), msgcat.Default())

	lines := strings.Split(f.Board(v), "\n")
	if len(lines) != 9 {
		t.Fatalf("expected 9 lines, got %d", len(lines))
	}
	if !strings.HasPrefix(lines[0], "8 ") || !strings.HasPrefix(lines[7], "1 ") {
		t.Fatalf("unflipped ranks wrong: %q / %q", lines[0], lines[7])
	}
	if !strings.Contains(lines[6], "[♙]") {
		t.Fatalf("selected pawn not bracketed: %q", lines[6])
	}
	if !strings.Contains(lines[4], " · ") {
		t.Fatalf("e4 candidate not marked: %q", lines[4])
	}
	if strings.Fields(lines[8])[0] != "a" {
		t.Fatalf("files should start at a: %q", lines[8])
	}

	v.Flipped = true
	lines = strings.Split(f.Board(v), "\n")
	if !strings.HasPrefix(lines[0], "1 ") || strings.Fields(lines[8])[0] != "h" {
		t.Fatalf("flipped orientation wrong: %q / %q", lines[0], lines[8])
	}
}

func TestPresenterBoard(t *testing.T) {
	var got []string
	var img []byte
	p := NewPresenter(NewFormatter(nil),
		func(s string) error { got = append(got, s); return nil },
		func(b []byte) error { img = b; return nil })

	v := ToSessionView("x", game.New().View(), msgcat.Default())
	if err := p.Board("New game started", v); err != nil {
		t.Fatalf("Board: %v", err)
	}
	if len(got) != 1 || !strings.HasPrefix(got[0], "New game started\n\nWhite's Turn") {
		t.Fatalf("unexpected text: %q", got)
	}
	_ = p.Text("   ")
	if len(got) != 1 {
		t.Fatalf("blank text should not be sent")
	}
	_ = p.Image([]byte{1})
	if len(img) != 1 {
		t.Fatalf("image not forwarded")
	}
}

func TestCapturedSymbols(t *testing.T) {
	var sb strings.Builder
	appendCapturedLine(&sb, chessdto.CapturedPieces{White: []string{"P", "N"}, Black: []string{"Q"}})
	if got := sb.String(); got != "Captured: White ♟♞ | Black ♕\n" {
		t.Fatalf("captured line = %q", got)
	}
}
