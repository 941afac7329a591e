package chesspresenter

import (
	"fmt"
	"strings"

	"github.com/park285/samarth-chess/internal/board"
	"github.com/park285/samarth-chess/internal/game"
	"github.com/park285/samarth-chess/internal/msgcat"
	"github.com/park285/samarth-chess/pkg/chessdto"
)

const recentMovesLimit = 6

// Formatter renders chess DTOs into terminal-friendly text blocks.
type Formatter struct {
	cat *msgcat.Catalog
}

func NewFormatter(cat *msgcat.Catalog) *Formatter {
	if cat == nil {
		cat = msgcat.Default()
	}
	return &Formatter{cat: cat}
}

// Board draws the grid as seen from the view's orientation. The selected
// square is bracketed, empty candidates show '·' and capturable ones '×'.
func (f *Formatter) Board(v chessdto.SessionView) string {
	b, err := board.DecodeRows(v.Rows)
	if err != nil {
		return fmt.Sprintf("(unreadable board: %v)", err)
	}
	candidates := make(map[string]bool, len(v.Candidates))
	for _, c := range v.Candidates {
		candidates[c] = true
	}

	var sb strings.Builder
	for row := 0; row < board.Size; row++ {
		sq := game.DisplayToBoard(row, 0, v.Flipped)
		fmt.Fprintf(&sb, "%d ", sq.Rank())
		for col := 0; col < board.Size; col++ {
			sq := game.DisplayToBoard(row, col, v.Flipped)
			sb.WriteString(cell(b.At(sq), sq, sq.Label() == v.Selected, candidates[sq.Label()]))
		}
		sb.WriteByte('\n')
	}
	sb.WriteString("  ")
	for col := 0; col < board.Size; col++ {
		fmt.Fprintf(&sb, " %s ", game.DisplayToBoard(0, col, v.Flipped).File())
	}
	return sb.String()
}

func cell(p *board.Piece, sq board.Square, selected, candidate bool) string {
	mark := " "
	if !sq.Light() {
		mark = "░"
	}
	if p != nil {
		mark = p.Glyph()
	}
	switch {
	case selected:
		return "[" + mark + "]"
	case candidate && p != nil:
		return "×" + mark + " "
	case candidate:
		return " · "
	default:
		return " " + mark + " "
	}
}

// Status is the full screen: turn label, board, captures and recent moves.
func (f *Formatter) Status(v chessdto.SessionView) string {
	var sb strings.Builder
	sb.WriteString(v.TurnLabel)
	if v.Flipped {
		sb.WriteString(" (flipped)")
	}
	sb.WriteString("\n\n")
	sb.WriteString(f.Board(v))
	sb.WriteString("\n\n")
	appendCapturedLine(&sb, v.Captured)
	if recent := formatRecentMoves(v.Log); recent != "" {
		sb.WriteString("Moves: ")
		sb.WriteString(recent)
		sb.WriteByte('\n')
	}
	return strings.TrimRight(sb.String(), "\n")
}

// Outcome is a one-line summary of a click.
func (f *Formatter) Outcome(o chessdto.Outcome) string {
	if strings.TrimSpace(o.Message) != "" {
		return o.Message
	}
	if o.Move != nil {
		return o.Move.Text
	}
	return o.Kind
}

func (f *Formatter) Undo(undone bool) string {
	if !undone {
		return f.cat.Text("session.undo_empty", nil)
	}
	return ""
}

func (f *Formatter) Reset() string { return f.cat.Text("session.reset", nil) }

func (f *Formatter) Flipped() string { return f.cat.Text("session.flipped", nil) }

// Help returns the catalog's description for a CLI command.
func (f *Formatter) Help(command string) string { return f.cat.Text("cli."+command, nil) }

// formatRecentMoves shows the newest moves first, as the log is ordered.
func formatRecentMoves(log []string) string {
	if len(log) == 0 {
		return ""
	}
	n := len(log)
	if n > recentMovesLimit {
		n = recentMovesLimit
	}
	out := strings.Join(log[:n], ", ")
	if len(log) > n {
		out += fmt.Sprintf(" (+%d)", len(log)-n)
	}
	return out
}

func appendCapturedLine(sb *strings.Builder, captured chessdto.CapturedPieces) {
	if len(captured.White) == 0 && len(captured.Black) == 0 {
		return
	}
	fmt.Fprintf(sb, "Captured: White %s | Black %s\n",
		capturedSymbols(captured.White, board.Black), capturedSymbols(captured.Black, board.White))
}

// capturedSymbols renders letters taken from the victim side as glyphs.
func capturedSymbols(letters []string, victim board.Color) string {
	if len(letters) == 0 {
		return "-"
	}
	var sb strings.Builder
	for _, l := range letters {
		r := []rune(strings.ToLower(l))
		if len(r) != 1 {
			continue
		}
		if victim == board.White {
			r[0] = []rune(strings.ToUpper(string(r[0])))[0]
		}
		p, ok := board.PieceFromFEN(r[0])
		if !ok {
			sb.WriteString(l)
			continue
		}
		sb.WriteString(p.Glyph())
	}
	return sb.String()
}
