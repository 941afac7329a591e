package board

// Color identifies a side.
type Color string

const (
	White Color = "white"
	Black Color = "black"
)

// Opponent returns the other side.
func (c Color) Opponent() Color {
	if c == White {
		return Black
	}
	return White
}

// Title returns the capitalised color name ("White", "Black").
func (c Color) Title() string {
	switch c {
	case White:
		return "White"
	case Black:
		return "Black"
	default:
		return ""
	}
}

// ParseColor accepts "white"/"w" and "black"/"b".
func ParseColor(s string) (Color, bool) {
	switch s {
	case "white", "w", "White", "W":
		return White, true
	case "black", "b", "Black", "B":
		return Black, true
	default:
		return "", false
	}
}

// PieceType is one of the six chess piece kinds.
type PieceType string

const (
	Pawn   PieceType = "p"
	Knight PieceType = "n"
	Bishop PieceType = "b"
	Rook   PieceType = "r"
	Queen  PieceType = "q"
	King   PieceType = "k"
)

// Letter is the uppercase letter used in move descriptions.
func (t PieceType) Letter() string {
	switch t {
	case Pawn:
		return "P"
	case Knight:
		return "N"
	case Bishop:
		return "B"
	case Rook:
		return "R"
	case Queen:
		return "Q"
	case King:
		return "K"
	default:
		return "?"
	}
}

// Piece is a (type, color) pair. Type changes only on promotion.
type Piece struct {
	Type  PieceType `json:"type"`
	Color Color     `json:"color"`
}

// FENRune returns the piece letter in FEN case (uppercase white).
func (p Piece) FENRune() rune {
	r := rune(p.Type[0])
	if p.Color == White {
		r -= 'a' - 'A'
	}
	return r
}

// PieceFromFEN is the inverse of FENRune.
func PieceFromFEN(r rune) (Piece, bool) {
	color := Black
	if r >= 'A' && r <= 'Z' {
		color = White
		r += 'a' - 'A'
	}
	switch PieceType(string(r)) {
	case Pawn, Knight, Bishop, Rook, Queen, King:
		return Piece{Type: PieceType(string(r)), Color: color}, true
	}
	return Piece{}, false
}

var glyphs = map[Color]map[PieceType]string{
	White: {King: "♔", Queen: "♕", Rook: "♖", Bishop: "♗", Knight: "♘", Pawn: "♙"},
	Black: {King: "♚", Queen: "♛", Rook: "♜", Bishop: "♝", Knight: "♞", Pawn: "♟"},
}

// Glyph returns the unicode chess symbol for the piece.
func (p Piece) Glyph() string {
	return glyphs[p.Color][p.Type]
}
