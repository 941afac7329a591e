// Package game applies moves and drives the select/move/undo session that a
// presentation layer talks to.
package game

import (
	"github.com/park285/samarth-chess/internal/board"
)

// State is the mutable game data owned by a Session.
type State struct {
	Board     *board.Board
	Turn      board.Color
	Castling  board.CastlingRights
	EnPassant *board.Square

	// History holds one pre-move board per executed move, oldest first.
	History []*board.Board
	// Log holds one record per executed move, oldest first.
	Log []MoveRecord
}

// NewState returns the starting position with white to move.
func NewState() State {
	return State{
		Board:    board.Initial(),
		Turn:     board.White,
		Castling: board.FullCastling(),
	}
}

// MoveRecord describes one executed move.
type MoveRecord struct {
	Piece    board.PieceType `json:"piece"`
	Color    board.Color     `json:"color"`
	From     board.Square    `json:"from"`
	To       board.Square    `json:"to"`
	Captured *board.Piece    `json:"captured,omitempty"`
	Promoted bool            `json:"promoted,omitempty"`
}

// String is the move log line, e.g. "N: b1 → c3". The letter is the piece
// type before promotion.
func (m MoveRecord) String() string {
	return m.Piece.Letter() + ": " + m.From.Label() + " → " + m.To.Label()
}
