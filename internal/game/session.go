package game

import (
	"github.com/park285/samarth-chess/internal/board"
	"github.com/park285/samarth-chess/internal/movegen"
	"go.uber.org/zap"
)

// OutcomeKind names the transition a SelectOrMove call took.
type OutcomeKind string

const (
	Selected  OutcomeKind = "selected"
	Moved     OutcomeKind = "moved"
	Cancelled OutcomeKind = "cancelled"
	Ignored   OutcomeKind = "ignored"
)

// Outcome is the result of SelectOrMove. Move is set only when Kind is Moved.
type Outcome struct {
	Kind OutcomeKind
	Move *MoveRecord
}

// Session is one game as seen by a presentation layer: the state plus the
// current selection and the display orientation. It is not safe for
// concurrent use; hosts with several input sources must serialise calls.
type Session struct {
	state      State
	selected   *board.Square
	candidates []board.Square
	flipped    bool

	filters []movegen.Filter
	logger  *zap.Logger
}

// Option configures a Session.
type Option func(*Session)

// WithLogger attaches a logger; the default discards output.
func WithLogger(l *zap.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithFilters layers extra legality filters over pseudo-legal generation.
func WithFilters(filters ...Filter) Option {
	return func(s *Session) { s.filters = append(s.filters, filters...) }
}

// Filter re-exports movegen.Filter for callers that only import game.
type Filter = movegen.Filter

// New starts a session at the initial position with white to move.
func New(opts ...Option) *Session {
	s := &Session{state: NewState(), logger: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SelectOrMove handles a click on sq. A piece of the side to move is
// (re)selected even if it is also a candidate destination. A cached
// candidate executes the move. Anything else clears the selection.
func (s *Session) SelectOrMove(sq board.Square) (Outcome, error) {
	piece, err := s.state.Board.Get(sq)
	if err != nil {
		return Outcome{}, err
	}

	if piece != nil && piece.Color == s.state.Turn {
		moves, err := movegen.Filtered(s.state.Board, sq, s.filters...)
		if err != nil {
			return Outcome{}, err
		}
		sel := sq
		s.selected = &sel
		s.candidates = moves
		s.logger.Debug("session_select",
			zap.String("square", sq.Label()),
			zap.Int("candidates", len(moves)),
		)
		return Outcome{Kind: Selected}, nil
	}

	if s.selected == nil {
		return Outcome{Kind: Ignored}, nil
	}

	from := *s.selected
	hit := movegen.Contains(s.candidates, sq)
	s.clearSelection()
	if !hit {
		return Outcome{Kind: Cancelled}, nil
	}

	rec, err := Execute(&s.state, from, sq)
	if err != nil {
		return Outcome{}, err
	}
	s.logger.Info("session_move",
		zap.String("move", rec.String()),
		zap.String("turn", string(s.state.Turn)),
		zap.Bool("capture", rec.Captured != nil),
		zap.Bool("promoted", rec.Promoted),
	)
	return Outcome{Kind: Moved, Move: &rec}, nil
}

// Move executes from -> to through the same validation as a click pair,
// for callers that do not model selection. Selection is cleared.
func (s *Session) Move(from, to board.Square) (MoveRecord, error) {
	s.clearSelection()
	rec, err := ExecuteChecked(&s.state, from, to, s.filters...)
	if err != nil {
		return MoveRecord{}, err
	}
	s.logger.Info("session_move", zap.String("move", rec.String()), zap.String("turn", string(s.state.Turn)))
	return rec, nil
}

// Undo reverts the last move. It returns false when there is nothing to undo.
func (s *Session) Undo() bool {
	if !undo(&s.state) {
		return false
	}
	s.clearSelection()
	s.logger.Info("session_undo", zap.Int("history", len(s.state.History)), zap.String("turn", string(s.state.Turn)))
	return true
}

// Reset returns to the starting position. The view orientation is kept.
func (s *Session) Reset() {
	s.state = NewState()
	s.clearSelection()
	s.logger.Info("session_reset")
}

// FlipView toggles the display orientation only.
func (s *Session) FlipView() bool {
	s.flipped = !s.flipped
	return s.flipped
}

// Load replaces the position, discarding history, log and selection.
func (s *Session) Load(b *board.Board, turn board.Color, castling board.CastlingRights, enPassant *board.Square) {
	s.state = State{
		Board:     b.Clone(),
		Turn:      turn,
		Castling:  castling,
		EnPassant: copySquare(enPassant),
	}
	s.clearSelection()
	s.logger.Info("session_load", zap.String("turn", string(turn)), zap.Int("pieces", b.Count()))
}

func (s *Session) clearSelection() {
	s.selected = nil
	s.candidates = nil
}

// Board returns a copy of the current board.
func (s *Session) Board() *board.Board { return s.state.Board.Clone() }

// Turn is the color to move.
func (s *Session) Turn() board.Color { return s.state.Turn }

// Selection returns the selected square, if any.
func (s *Session) Selection() (board.Square, bool) {
	if s.selected == nil {
		return board.Square{}, false
	}
	return *s.selected, true
}

// Candidates returns the cached destinations of the selected piece.
func (s *Session) Candidates() []board.Square {
	return append([]board.Square(nil), s.candidates...)
}

// Flipped reports the display orientation flag.
func (s *Session) Flipped() bool { return s.flipped }

// HistoryLen is the number of undoable moves.
func (s *Session) HistoryLen() int { return len(s.state.History) }

// Castling returns the stored castling rights.
func (s *Session) Castling() board.CastlingRights { return s.state.Castling }

// EnPassant returns the stored en-passant target.
func (s *Session) EnPassant() *board.Square { return copySquare(s.state.EnPassant) }

// Log returns move lines, most recent first.
func (s *Session) Log() []string {
	out := make([]string, 0, len(s.state.Log))
	for i := len(s.state.Log) - 1; i >= 0; i-- {
		out = append(out, s.state.Log[i].String())
	}
	return out
}

// Moves returns move records, oldest first.
func (s *Session) Moves() []MoveRecord {
	return append([]MoveRecord(nil), s.state.Log...)
}

func copySquare(sq *board.Square) *board.Square {
	if sq == nil {
		return nil
	}
	cp := *sq
	return &cp
}
