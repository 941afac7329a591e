package chesspresenter

import (
	"strings"

	"github.com/park285/samarth-chess/pkg/chessdto"
)

// Presenter delivers formatted text and board images without coupling to
// the command layer.
type Presenter struct {
	formatter *Formatter
	sendText  func(text string) error
	sendImage func(png []byte) error
}

func NewPresenter(f *Formatter, sendText func(string) error, sendImage func([]byte) error) *Presenter {
	return &Presenter{formatter: f, sendText: sendText, sendImage: sendImage}
}

func (p *Presenter) Formatter() *Formatter { return p.formatter }

// Board sends an optional message line followed by the session screen.
func (p *Presenter) Board(message string, view chessdto.SessionView) error {
	if p == nil || p.sendText == nil {
		return nil
	}
	var sb strings.Builder
	if text := strings.TrimSpace(message); text != "" {
		sb.WriteString(text)
		sb.WriteString("\n\n")
	}
	sb.WriteString(p.formatter.Status(view))
	return p.sendText(sb.String())
}

// Text sends a bare message.
func (p *Presenter) Text(message string) error {
	if p == nil || p.sendText == nil || strings.TrimSpace(message) == "" {
		return nil
	}
	return p.sendText(message)
}

// Image sends PNG bytes.
func (p *Presenter) Image(png []byte) error {
	if p == nil || p.sendImage == nil || len(png) == 0 {
		return nil
	}
	return p.sendImage(png)
}
