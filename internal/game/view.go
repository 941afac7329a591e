package game

import "github.com/park285/samarth-chess/internal/board"

// View is an immutable copy of everything a presentation layer draws.
type View struct {
	Board      *board.Board
	Turn       board.Color
	Selected   *board.Square
	Candidates []board.Square
	Flipped    bool
	Log        []string
	Moves      []MoveRecord
	LastMove   *MoveRecord
	HistoryLen int
	Castling   board.CastlingRights
	EnPassant  *board.Square
}

// View captures the current renderable state.
func (s *Session) View() View {
	return View{
		Board:      s.Board(),
		Turn:       s.state.Turn,
		Selected:   copySquare(s.selected),
		Candidates: s.Candidates(),
		Flipped:    s.flipped,
		Log:        s.Log(),
		Moves:      s.Moves(),
		LastMove:   s.lastMove(),
		HistoryLen: len(s.state.History),
		Castling:   s.state.Castling,
		EnPassant:  copySquare(s.state.EnPassant),
	}
}

func (s *Session) lastMove() *MoveRecord {
	n := len(s.state.Log)
	if n == 0 {
		return nil
	}
	rec := s.state.Log[n-1]
	return &rec
}

// IsCandidate reports whether sq is highlighted as a destination.
func (v View) IsCandidate(sq board.Square) bool {
	for _, c := range v.Candidates {
		if c == sq {
			return true
		}
	}
	return false
}

// IsSelected reports whether sq is the selected square.
func (v View) IsSelected(sq board.Square) bool {
	return v.Selected != nil && *v.Selected == sq
}

// DisplayToBoard maps a display cell (top-left origin) to the board square
// shown there given the orientation.
func DisplayToBoard(row, col int, flipped bool) board.Square {
	if flipped {
		return board.Sq(board.Size-1-row, board.Size-1-col)
	}
	return board.Sq(row, col)
}
