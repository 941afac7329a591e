package board

import (
	"fmt"
	"strings"
)

// EmptyCell marks an empty square in row encodings.
const EmptyCell = '.'

// EncodeRows renders the board as eight strings of FEN piece letters, row 0
// first, with '.' for empty squares.
func (b *Board) EncodeRows() []string {
	rows := make([]string, Size)
	var sb strings.Builder
	for r := 0; r < Size; r++ {
		sb.Reset()
		for c := 0; c < Size; c++ {
			if p := b.cells[r][c]; p != nil {
				sb.WriteRune(p.FENRune())
			} else {
				sb.WriteRune(EmptyCell)
			}
		}
		rows[r] = sb.String()
	}
	return rows
}

// DecodeRows is the inverse of EncodeRows.
func DecodeRows(rows []string) (*Board, error) {
	if len(rows) != Size {
		return nil, fmt.Errorf("decode board: expected %d rows, got %d", Size, len(rows))
	}
	b := &Board{}
	for r, row := range rows {
		cells := []rune(row)
		if len(cells) != Size {
			return nil, fmt.Errorf("decode board: row %d has %d cells", r, len(cells))
		}
		for c, ch := range cells {
			if ch == EmptyCell {
				continue
			}
			p, ok := PieceFromFEN(ch)
			if !ok {
				return nil, fmt.Errorf("decode board: invalid piece %q at row %d col %d", ch, r, c)
			}
			b.cells[r][c] = &p
		}
	}
	return b, nil
}
