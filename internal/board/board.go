package board

import (
	"errors"
	"fmt"
)

var ErrOutOfBounds = errors.New("square out of bounds")

// Board is an 8x8 grid of optional pieces indexed [row][col].
type Board struct {
	cells [Size][Size]*Piece
}

// Empty returns a board with no pieces.
func Empty() *Board { return &Board{} }

var backRank = [Size]PieceType{Rook, Knight, Bishop, Queen, King, Bishop, Knight, Rook}

// Initial returns the standard starting position.
func Initial() *Board {
	b := &Board{}
	for c := 0; c < Size; c++ {
		b.cells[0][c] = &Piece{Type: backRank[c], Color: Black}
		b.cells[1][c] = &Piece{Type: Pawn, Color: Black}
		b.cells[6][c] = &Piece{Type: Pawn, Color: White}
		b.cells[7][c] = &Piece{Type: backRank[c], Color: White}
	}
	return b
}

// Get returns the piece on sq or nil when the square is empty.
func (b *Board) Get(sq Square) (*Piece, error) {
	if !sq.Valid() {
		return nil, fmt.Errorf("get %s: %w", sq.Label(), ErrOutOfBounds)
	}
	return b.cells[sq.Row][sq.Col], nil
}

// Set places p on sq; a nil p clears the square.
func (b *Board) Set(sq Square, p *Piece) error {
	if !sq.Valid() {
		return fmt.Errorf("set %s: %w", sq.Label(), ErrOutOfBounds)
	}
	b.cells[sq.Row][sq.Col] = p
	return nil
}

// At is the unchecked accessor; sq must be valid.
func (b *Board) At(sq Square) *Piece {
	return b.cells[sq.Row][sq.Col]
}

// Clone deep-copies the board. Piece records are never shared between copies.
func (b *Board) Clone() *Board {
	out := &Board{}
	for r := 0; r < Size; r++ {
		for c := 0; c < Size; c++ {
			if p := b.cells[r][c]; p != nil {
				cp := *p
				out.cells[r][c] = &cp
			}
		}
	}
	return out
}

// Equal compares boards by content.
func (b *Board) Equal(o *Board) bool {
	if b == nil || o == nil {
		return b == o
	}
	for r := 0; r < Size; r++ {
		for c := 0; c < Size; c++ {
			p, q := b.cells[r][c], o.cells[r][c]
			if (p == nil) != (q == nil) {
				return false
			}
			if p != nil && *p != *q {
				return false
			}
		}
	}
	return true
}

// Count returns the number of pieces on the board.
func (b *Board) Count() int {
	n := 0
	b.Each(func(Square, Piece) { n++ })
	return n
}

// Each visits occupied squares in row-major order.
func (b *Board) Each(fn func(sq Square, p Piece)) {
	for r := 0; r < Size; r++ {
		for c := 0; c < Size; c++ {
			if p := b.cells[r][c]; p != nil {
				fn(Square{Row: r, Col: c}, *p)
			}
		}
	}
}

// Rows returns a copy of the grid as values, for serialisation and rendering.
func (b *Board) Rows() [Size][Size]*Piece {
	return b.Clone().cells
}
