package game

import (
	"fmt"

	"github.com/park285/samarth-chess/internal/board"
	"go.uber.org/zap"
)

// Snapshot is the serialisable form of a Session.
type Snapshot struct {
	Board     []string             `json:"board"`
	Turn      board.Color          `json:"turn"`
	Castling  board.CastlingRights `json:"castling"`
	EnPassant *board.Square        `json:"en_passant,omitempty"`
	History   [][]string           `json:"history"`
	Log       []MoveRecord         `json:"log"`
	Flipped   bool                 `json:"flipped"`
}

// Snapshot captures the session for persistence. Selection is transient and
// not included.
func (s *Session) Snapshot() Snapshot {
	hist := make([][]string, 0, len(s.state.History))
	for _, b := range s.state.History {
		hist = append(hist, b.EncodeRows())
	}
	return Snapshot{
		Board:     s.state.Board.EncodeRows(),
		Turn:      s.state.Turn,
		Castling:  s.state.Castling,
		EnPassant: copySquare(s.state.EnPassant),
		History:   hist,
		Log:       s.Moves(),
		Flipped:   s.flipped,
	}
}

// Restore rebuilds a session from a snapshot.
func Restore(snap Snapshot, opts ...Option) (*Session, error) {
	b, err := board.DecodeRows(snap.Board)
	if err != nil {
		return nil, fmt.Errorf("restore board: %w", err)
	}
	if snap.Turn != board.White && snap.Turn != board.Black {
		return nil, fmt.Errorf("restore: invalid turn %q", snap.Turn)
	}
	if len(snap.Log) != len(snap.History) {
		return nil, fmt.Errorf("restore: %d log entries for %d history snapshots", len(snap.Log), len(snap.History))
	}
	hist := make([]*board.Board, 0, len(snap.History))
	for i, rows := range snap.History {
		hb, err := board.DecodeRows(rows)
		if err != nil {
			return nil, fmt.Errorf("restore history %d: %w", i, err)
		}
		hist = append(hist, hb)
	}

	s := &Session{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	s.state = State{
		Board:     b,
		Turn:      snap.Turn,
		Castling:  snap.Castling,
		EnPassant: copySquare(snap.EnPassant),
		History:   hist,
		Log:       append([]MoveRecord(nil), snap.Log...),
	}
	s.flipped = snap.Flipped
	return s, nil
}
