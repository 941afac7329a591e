package chessdto

// Error codes returned by the HTTP API.
const (
	CodeBadRequest       = "bad_request"
	CodeInvalidSquare    = "invalid_square"
	CodeIllegalMove      = "illegal_move"
	CodeInvalidFEN       = "invalid_fen"
	CodeNotFound         = "not_found"
	CodeTooManySessions  = "too_many_sessions"
	CodeConcurrentUpdate = "concurrent_update"
	CodeInternal         = "internal"
)

type DomainError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Retryable bool   `json:"retryable"`
}

func (e DomainError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Code != "" {
		return e.Code
	}
	return "chess service error"
}

// ErrorResponse is the body of every non-2xx API response.
type ErrorResponse struct {
	Error DomainError `json:"error"`
}
