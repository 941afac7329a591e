// Package movegen computes pseudo-legal destinations for a single piece.
// King safety is not considered; castling and en passant are not generated.
package movegen

import (
	"errors"
	"fmt"

	"github.com/park285/samarth-chess/internal/board"
)

var ErrEmptySquare = errors.New("no piece on square")

type offset struct{ dr, dc int }

var (
	rookDirs    = []offset{{0, 1}, {0, -1}, {1, 0}, {-1, 0}}
	bishopDirs  = []offset{{1, 1}, {1, -1}, {-1, 1}, {-1, -1}}
	queenDirs   = append(append([]offset(nil), rookDirs...), bishopDirs...)
	knightJumps = []offset{
		{2, 1}, {2, -1}, {-2, 1}, {-2, -1},
		{1, 2}, {1, -2}, {-1, 2}, {-1, -2},
	}
	pawnCaptureCols = []int{1, -1}
)

// LegalMoves returns the destinations the piece on from may reach, in
// direction order then distance order. The board is not modified.
func LegalMoves(b *board.Board, from board.Square) ([]board.Square, error) {
	p, err := b.Get(from)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("moves from %s: %w", from.Label(), ErrEmptySquare)
	}

	switch p.Type {
	case board.Pawn:
		return pawnMoves(b, from, p.Color), nil
	case board.Knight:
		return steps(b, from, p.Color, knightJumps), nil
	case board.King:
		return steps(b, from, p.Color, queenDirs), nil
	case board.Rook:
		return slides(b, from, p.Color, rookDirs), nil
	case board.Bishop:
		return slides(b, from, p.Color, bishopDirs), nil
	case board.Queen:
		return slides(b, from, p.Color, queenDirs), nil
	default:
		return nil, fmt.Errorf("moves from %s: unknown piece type %q", from.Label(), p.Type)
	}
}

// Forward is the row direction pawns of color c advance in.
func Forward(c board.Color) int {
	if c == board.White {
		return -1
	}
	return 1
}

// HomeRow is the row a pawn of color c may double-push from.
func HomeRow(c board.Color) int {
	if c == board.White {
		return 6
	}
	return 1
}

// PromotionRow is the farthest row for a pawn of color c.
func PromotionRow(c board.Color) int {
	if c == board.White {
		return 0
	}
	return board.Size - 1
}

func pawnMoves(b *board.Board, from board.Square, color board.Color) []board.Square {
	var out []board.Square
	dir := Forward(color)

	one := from.Offset(dir, 0)
	if one.Valid() && b.At(one) == nil {
		out = append(out, one)
		two := from.Offset(2*dir, 0)
		if from.Row == HomeRow(color) && two.Valid() && b.At(two) == nil {
			out = append(out, two)
		}
	}

	for _, dc := range pawnCaptureCols {
		target := from.Offset(dir, dc)
		if !target.Valid() {
			continue
		}
		if victim := b.At(target); victim != nil && victim.Color != color {
			out = append(out, target)
		}
	}
	return out
}

func steps(b *board.Board, from board.Square, color board.Color, offsets []offset) []board.Square {
	var out []board.Square
	for _, o := range offsets {
		to := from.Offset(o.dr, o.dc)
		if !to.Valid() {
			continue
		}
		if occ := b.At(to); occ == nil || occ.Color != color {
			out = append(out, to)
		}
	}
	return out
}

func slides(b *board.Board, from board.Square, color board.Color, dirs []offset) []board.Square {
	var out []board.Square
	for _, d := range dirs {
		for to := from.Offset(d.dr, d.dc); to.Valid(); to = to.Offset(d.dr, d.dc) {
			occ := b.At(to)
			if occ == nil {
				out = append(out, to)
				continue
			}
			if occ.Color != color {
				out = append(out, to)
			}
			break
		}
	}
	return out
}

// Contains reports whether sq is among moves.
func Contains(moves []board.Square, sq board.Square) bool {
	for _, m := range moves {
		if m == sq {
			return true
		}
	}
	return false
}
