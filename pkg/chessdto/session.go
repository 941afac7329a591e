package chessdto

// CapturedPieces lists piece letters taken by each side, in capture order.
type CapturedPieces struct {
	White []string `json:"white"`
	Black []string `json:"black"`
}

// SessionView is the JSON form of a session as the API and live feed send it.
// Rows holds eight strings of FEN letters, rank 8 first, with '.' for empty
// squares, independent of Flipped.
type SessionView struct {
	ID         string         `json:"id"`
	Turn       string         `json:"turn"`
	TurnLabel  string         `json:"turn_label"`
	FEN        string         `json:"fen"`
	Rows       []string       `json:"rows"`
	Selected   string         `json:"selected,omitempty"`
	Candidates []string       `json:"candidates"`
	Flipped    bool           `json:"flipped"`
	Log        []string       `json:"log"`
	LastMove   *Move          `json:"last_move,omitempty"`
	MoveCount  int            `json:"move_count"`
	Captured   CapturedPieces `json:"captured"`
	Castling   string         `json:"castling"`
	EnPassant  string         `json:"en_passant,omitempty"`
}
