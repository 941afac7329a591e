package chesspresenter

import (
	"github.com/park285/samarth-chess/internal/board"
	"github.com/park285/samarth-chess/internal/fen"
	"github.com/park285/samarth-chess/internal/game"
	"github.com/park285/samarth-chess/internal/msgcat"
	"github.com/park285/samarth-chess/pkg/chessdto"
)

// ToSessionView converts a session view into its wire form.
func ToSessionView(id string, v game.View, cat *msgcat.Catalog) chessdto.SessionView {
	out := chessdto.SessionView{
		ID:         id,
		Turn:       string(v.Turn),
		TurnLabel:  cat.TurnLabel(v.Turn.Title()),
		Candidates: toLabels(v.Candidates),
		Flipped:    v.Flipped,
		Log:        append([]string{}, v.Log...),
		MoveCount:  v.HistoryLen,
		Captured:   toCaptured(v.Moves),
		Castling:   castlingToken(v.Castling),
	}
	if v.Board != nil {
		out.Rows = v.Board.EncodeRows()
		out.FEN = fen.Encode(fen.Input{
			Board:     v.Board,
			Turn:      v.Turn,
			Castling:  v.Castling,
			EnPassant: v.EnPassant,
			Plies:     v.HistoryLen,
		})
	}
	if v.Selected != nil {
		out.Selected = v.Selected.Label()
	}
	if v.LastMove != nil {
		m := ToMove(*v.LastMove)
		out.LastMove = &m
	}
	if v.EnPassant != nil {
		out.EnPassant = v.EnPassant.Label()
	}
	return out
}

func ToMove(rec game.MoveRecord) chessdto.Move {
	m := chessdto.Move{
		Piece:    rec.Piece.Letter(),
		Color:    string(rec.Color),
		From:     rec.From.Label(),
		To:       rec.To.Label(),
		Promoted: rec.Promoted,
		Text:     rec.String(),
	}
	if rec.Captured != nil {
		m.Captured = rec.Captured.Type.Letter()
	}
	return m
}

// ToOutcome converts a click result. sq is the clicked square and feeds the
// human-readable message.
func ToOutcome(o game.Outcome, sq board.Square, candidates int, cat *msgcat.Catalog) chessdto.Outcome {
	out := chessdto.Outcome{Kind: string(o.Kind)}
	data := map[string]any{"Square": sq.Label(), "Count": candidates}
	if o.Move != nil {
		m := ToMove(*o.Move)
		out.Move = &m
		data["Move"] = m.Text
	}
	out.Message = cat.Text("outcome."+string(o.Kind), data)
	return out
}

func toLabels(sqs []board.Square) []string {
	out := make([]string, 0, len(sqs))
	for _, sq := range sqs {
		out = append(out, sq.Label())
	}
	return out
}

// toCaptured groups captured piece letters by the capturing side.
func toCaptured(moves []game.MoveRecord) chessdto.CapturedPieces {
	out := chessdto.CapturedPieces{White: []string{}, Black: []string{}}
	for _, m := range moves {
		if m.Captured == nil {
			continue
		}
		if m.Color == board.White {
			out.White = append(out.White, m.Captured.Type.Letter())
		} else {
			out.Black = append(out.Black, m.Captured.Type.Letter())
		}
	}
	return out
}

func castlingToken(cr board.CastlingRights) string {
	s := ""
	if cr.White.Kingside {
		s += "K"
	}
	if cr.White.Queenside {
		s += "Q"
	}
	if cr.Black.Kingside {
		s += "k"
	}
	if cr.Black.Queenside {
		s += "q"
	}
	if s == "" {
		return "-"
	}
	return s
}
