package movegen

import "github.com/park285/samarth-chess/internal/board"

// Filter decides whether a pseudo-legal move from -> to is kept. It must not
// retain or mutate b.
type Filter func(b *board.Board, from, to board.Square) bool

// Filtered runs LegalMoves and drops candidates rejected by any filter.
// With no filters it is equivalent to LegalMoves.
func Filtered(b *board.Board, from board.Square, filters ...Filter) ([]board.Square, error) {
	moves, err := LegalMoves(b, from)
	if err != nil || len(filters) == 0 {
		return moves, err
	}
	kept := moves[:0]
next:
	for _, to := range moves {
		for _, f := range filters {
			if f != nil && !f(b, from, to) {
				continue next
			}
		}
		kept = append(kept, to)
	}
	return kept, nil
}
