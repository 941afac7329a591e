package board

// SideCastling holds the two castling flags of one color.
type SideCastling struct {
	Kingside  bool `json:"kingside"`
	Queenside bool `json:"queenside"`
}

// CastlingRights is carried in game state but not consulted by move
// generation or execution.
type CastlingRights struct {
	White SideCastling `json:"white"`
	Black SideCastling `json:"black"`
}

// FullCastling is the rights set of the starting position.
func FullCastling() CastlingRights {
	return CastlingRights{
		White: SideCastling{Kingside: true, Queenside: true},
		Black: SideCastling{Kingside: true, Queenside: true},
	}
}

// Side returns the flags for color c.
func (cr CastlingRights) Side(c Color) SideCastling {
	if c == White {
		return cr.White
	}
	return cr.Black
}
