package board

import (
	"fmt"
	"strings"
)

// Size is the number of rows and columns.
const Size = 8

// Square addresses a board cell. Row 0 is black's home rank, row 7 white's.
type Square struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Sq is shorthand for Square{Row: row, Col: col}.
func Sq(row, col int) Square { return Square{Row: row, Col: col} }

// Valid reports whether both indices are within [0,7].
func (s Square) Valid() bool {
	return s.Row >= 0 && s.Row < Size && s.Col >= 0 && s.Col < Size
}

// Offset returns the square shifted by (dr, dc); the result may be off-board.
func (s Square) Offset(dr, dc int) Square {
	return Square{Row: s.Row + dr, Col: s.Col + dc}
}

// File is the algebraic file letter ('a' + column).
func (s Square) File() string { return string(rune('a' + s.Col)) }

// Rank is the algebraic rank number (8 - row).
func (s Square) Rank() int { return Size - s.Row }

// Label renders the algebraic square label, e.g. "e2".
func (s Square) Label() string {
	if !s.Valid() {
		return fmt.Sprintf("(%d,%d)", s.Row, s.Col)
	}
	return fmt.Sprintf("%s%d", s.File(), s.Rank())
}

func (s Square) String() string { return s.Label() }

// Light reports the square shade used by renderers.
func (s Square) Light() bool { return (s.Row+s.Col)%2 == 0 }

// ParseSquare parses an algebraic label such as "e2".
func ParseSquare(label string) (Square, error) {
	l := strings.ToLower(strings.TrimSpace(label))
	if len(l) != 2 {
		return Square{}, fmt.Errorf("parse square %q: %w", label, ErrOutOfBounds)
	}
	col := int(l[0] - 'a')
	rank := int(l[1] - '0')
	sq := Square{Row: Size - rank, Col: col}
	if !sq.Valid() || rank < 1 || rank > Size {
		return Square{}, fmt.Errorf("parse square %q: %w", label, ErrOutOfBounds)
	}
	return sq, nil
}

// MustSquare is ParseSquare for literals known to be valid.
func MustSquare(label string) Square {
	sq, err := ParseSquare(label)
	if err != nil {
		panic(err)
	}
	return sq
}
