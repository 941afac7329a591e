// Package fen converts between board positions and Forsyth-Edwards Notation.
// Parsing is delegated to corentings/chess so malformed input is rejected by
// a well-tested decoder.
package fen

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	nchess "github.com/corentings/chess/v2"

	"github.com/park285/samarth-chess/internal/board"
)

var ErrInvalidFEN = errors.New("invalid fen")

// Start is the standard initial position.
const Start = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// Position is a decoded FEN.
type Position struct {
	Board     *board.Board
	Turn      board.Color
	Castling  board.CastlingRights
	EnPassant *board.Square
}

// Input is what Encode needs. Plies is the number of moves played so far and
// drives the full-move counter.
type Input struct {
	Board     *board.Board
	Turn      board.Color
	Castling  board.CastlingRights
	EnPassant *board.Square
	Plies     int
}

// Encode renders the position. The half-move clock is always 0 because
// captures and pawn moves are not tracked separately.
func Encode(in Input) string {
	var sb strings.Builder
	sb.WriteString(Placement(in.Board))

	sb.WriteByte(' ')
	if in.Turn == board.Black {
		sb.WriteByte('b')
	} else {
		sb.WriteByte('w')
	}

	sb.WriteByte(' ')
	sb.WriteString(castlingField(in.Castling))

	sb.WriteByte(' ')
	if in.EnPassant != nil && in.EnPassant.Valid() {
		sb.WriteString(in.EnPassant.Label())
	} else {
		sb.WriteByte('-')
	}

	sb.WriteString(" 0 ")
	sb.WriteString(strconv.Itoa(in.Plies/2 + 1))
	return sb.String()
}

// Placement is the first FEN field, rank 8 first.
func Placement(b *board.Board) string {
	var sb strings.Builder
	for r := 0; r < board.Size; r++ {
		if r > 0 {
			sb.WriteByte('/')
		}
		gap := 0
		for c := 0; c < board.Size; c++ {
			p := b.At(board.Sq(r, c))
			if p == nil {
				gap++
				continue
			}
			if gap > 0 {
				sb.WriteString(strconv.Itoa(gap))
				gap = 0
			}
			sb.WriteRune(p.FENRune())
		}
		if gap > 0 {
			sb.WriteString(strconv.Itoa(gap))
		}
	}
	return sb.String()
}

func castlingField(cr board.CastlingRights) string {
	var sb strings.Builder
	if cr.White.Kingside {
		sb.WriteByte('K')
	}
	if cr.White.Queenside {
		sb.WriteByte('Q')
	}
	if cr.Black.Kingside {
		sb.WriteByte('k')
	}
	if cr.Black.Queenside {
		sb.WriteByte('q')
	}
	if sb.Len() == 0 {
		return "-"
	}
	return sb.String()
}

// Decode parses s into a Position.
func Decode(s string) (Position, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Position{}, fmt.Errorf("%w: empty", ErrInvalidFEN)
	}
	opt, err := nchess.FEN(s)
	if err != nil {
		return Position{}, fmt.Errorf("%w: %v", ErrInvalidFEN, err)
	}
	pos := nchess.NewGame(opt).Position()

	b := board.Empty()
	for sq, piece := range pos.Board().SquareMap() {
		p, ok := fromLibPiece(piece)
		if !ok {
			continue
		}
		_ = b.Set(fromLibSquare(sq), &p)
	}

	out := Position{
		Board: b,
		Turn:  board.White,
		Castling: board.CastlingRights{
			White: board.SideCastling{
				Kingside:  pos.CastleRights().CanCastle(nchess.White, nchess.KingSide),
				Queenside: pos.CastleRights().CanCastle(nchess.White, nchess.QueenSide),
			},
			Black: board.SideCastling{
				Kingside:  pos.CastleRights().CanCastle(nchess.Black, nchess.KingSide),
				Queenside: pos.CastleRights().CanCastle(nchess.Black, nchess.QueenSide),
			},
		},
	}
	if pos.Turn() == nchess.Black {
		out.Turn = board.Black
	}
	if ep := pos.EnPassantSquare(); ep != nchess.NoSquare {
		sq := fromLibSquare(ep)
		out.EnPassant = &sq
	}
	return out, nil
}

func fromLibSquare(sq nchess.Square) board.Square {
	return board.Sq(board.Size-1-int(sq.Rank()), int(sq.File()))
}

func fromLibPiece(p nchess.Piece) (board.Piece, bool) {
	var color board.Color
	switch p.Color() {
	case nchess.White:
		color = board.White
	case nchess.Black:
		color = board.Black
	default:
		return board.Piece{}, false
	}
	var pt board.PieceType
	switch p.Type() {
	case nchess.Pawn:
		pt = board.Pawn
	case nchess.Knight:
		pt = board.Knight
	case nchess.Bishop:
		pt = board.Bishop
	case nchess.Rook:
		pt = board.Rook
	case nchess.Queen:
		pt = board.Queen
	case nchess.King:
		pt = board.King
	default:
		return board.Piece{}, false
	}
	return board.Piece{Type: pt, Color: color}, true
}
