package game

import (
	"errors"
	"fmt"

	"github.com/park285/samarth-chess/internal/board"
	"github.com/park285/samarth-chess/internal/movegen"
)

var ErrIllegalMove = errors.New("illegal move")

// Execute applies from -> to without checking legality. Callers are
// expected to have taken to from LegalMoves. The only failures are an
// off-board square or an empty origin, both reported before any mutation.
func Execute(st *State, from, to board.Square) (MoveRecord, error) {
	piece, err := st.Board.Get(from)
	if err != nil {
		return MoveRecord{}, err
	}
	if piece == nil {
		return MoveRecord{}, fmt.Errorf("execute %s: %w", from.Label(), movegen.ErrEmptySquare)
	}
	target, err := st.Board.Get(to)
	if err != nil {
		return MoveRecord{}, err
	}

	st.History = append(st.History, st.Board.Clone())

	rec := MoveRecord{
		Piece: piece.Type,
		Color: piece.Color,
		From:  from,
		To:    to,
	}
	if target != nil {
		captured := *target
		rec.Captured = &captured
	}

	if piece.Type == board.Pawn && to.Row == movegen.PromotionRow(piece.Color) {
		piece.Type = board.Queen
		rec.Promoted = true
	}

	_ = st.Board.Set(to, piece)
	_ = st.Board.Set(from, nil)
	st.Turn = st.Turn.Opponent()
	st.Log = append(st.Log, rec)
	return rec, nil
}

// ExecuteChecked validates that from holds a piece of the side to move and
// that to is one of its generated destinations, then executes. On failure
// the state is untouched and the error wraps ErrIllegalMove.
func ExecuteChecked(st *State, from, to board.Square, filters ...movegen.Filter) (MoveRecord, error) {
	piece, err := st.Board.Get(from)
	if err != nil {
		return MoveRecord{}, err
	}
	if piece == nil {
		return MoveRecord{}, fmt.Errorf("%w: no piece on %s", ErrIllegalMove, from.Label())
	}
	if piece.Color != st.Turn {
		return MoveRecord{}, fmt.Errorf("%w: %s moves, not %s", ErrIllegalMove, st.Turn, piece.Color)
	}
	moves, err := movegen.Filtered(st.Board, from, filters...)
	if err != nil {
		return MoveRecord{}, err
	}
	if !movegen.Contains(moves, to) {
		return MoveRecord{}, fmt.Errorf("%w: %s cannot reach %s", ErrIllegalMove, from.Label(), to.Label())
	}
	return Execute(st, from, to)
}

// undo pops the last snapshot and log entry and flips the turn back.
func undo(st *State) bool {
	n := len(st.History)
	if n == 0 {
		return false
	}
	st.Board = st.History[n-1]
	st.History[n-1] = nil
	st.History = st.History[:n-1]
	if m := len(st.Log); m > 0 {
		st.Log = st.Log[:m-1]
	}
	st.Turn = st.Turn.Opponent()
	return true
}
