package chessdto

// Move is one executed move. Piece is the letter before promotion.
type Move struct {
	Piece    string `json:"piece"`
	Color    string `json:"color"`
	From     string `json:"from"`
	To       string `json:"to"`
	Captured string `json:"captured,omitempty"`
	Promoted bool   `json:"promoted,omitempty"`
	Text     string `json:"text"`
}

// Outcome reports what a click did: selected, moved, cancelled or ignored.
type Outcome struct {
	Kind    string `json:"kind"`
	Move    *Move  `json:"move,omitempty"`
	Message string `json:"message,omitempty"`
}
