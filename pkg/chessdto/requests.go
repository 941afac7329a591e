package chessdto

type ClickRequest struct {
	Square string `json:"square"`
}

type ClickResponse struct {
	Outcome Outcome     `json:"outcome"`
	View    SessionView `json:"view"`
}

type MoveRequest struct {
	From string `json:"from"`
	To   string `json:"to"`
}

type MoveResponse struct {
	Move Move        `json:"move"`
	View SessionView `json:"view"`
}

type UndoResponse struct {
	Undone bool        `json:"undone"`
	View   SessionView `json:"view"`
}

type FENRequest struct {
	FEN string `json:"fen"`
}

type FENResponse struct {
	FEN string `json:"fen"`
}

type HealthResponse struct {
	Status   string `json:"status"`
	Sessions int    `json:"sessions"`
}
