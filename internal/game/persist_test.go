package game

import (
	"encoding/json"
	"testing"

	"github.com/park285/samarth-chess/internal/board"
)

func TestSnapshotRestore(t *testing.T) {
	s := New()
	s.FlipView()
	for _, mv := range [][2]string{{"e2", "e4"}, {"d7", "d5"}, {"e4", "d5"}} {
		if _, err := s.Move(board.MustSquare(mv[0]), board.MustSquare(mv[1])); err != nil {
			t.Fatalf("%s-%s: %v", mv[0], mv[1], err)
		}
	}

	raw, err := json.Marshal(s.Snapshot())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var snap Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	r, err := Restore(snap)
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}

	if !r.Board().Equal(s.Board()) || r.Turn() != s.Turn() || !r.Flipped() {
		t.Fatalf("restored session differs")
	}
	if r.HistoryLen() != 3 {
		t.Fatalf("history = %d want 3", r.HistoryLen())
	}
	if got, want := r.Log(), s.Log(); len(got) != len(want) || got[0] != want[0] {
		t.Fatalf("log = %v want %v", got, want)
	}
	if rec := r.Moves()[2]; rec.Captured == nil || rec.Captured.Type != board.Pawn {
		t.Fatalf("capture lost in round trip: %+v", rec)
	}

	for i := 0; i < 3; i++ {
		r.Undo()
	}
	if !r.Board().Equal(board.Initial()) || r.Turn() != board.White {
		t.Fatalf("undo after restore should reach the start position")
	}
}

func TestRestoreRejectsBadSnapshots(t *testing.T) {
	good := New().Snapshot()

	badTurn := good
	badTurn.Turn = "green"
	if _, err := Restore(badTurn); err == nil {
		t.Fatalf("expected error for invalid turn")
	}

	badRows := good
	badRows.Board = good.Board[:7]
	if _, err := Restore(badRows); err == nil {
		t.Fatalf("expected error for short board")
	}

	mismatch := good
	mismatch.History = [][]string{good.Board}
	if _, err := Restore(mismatch); err == nil {
		t.Fatalf("expected error for history/log mismatch")
	}
}
