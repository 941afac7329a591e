package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/park285/samarth-chess/internal/adapter/chesspresenter"
	"github.com/park285/samarth-chess/internal/chessclient"
	"github.com/park285/samarth-chess/internal/msgcat"
)

// errNoSession is returned when a command needs a session and neither the
// flag nor CHESS_SESSION names one.
var errNoSession = errors.New("no session: pass --session or set CHESS_SESSION")

type app struct {
	server  string
	feed    string
	session string
	timeout time.Duration

	cat       *msgcat.Catalog
	formatter *chesspresenter.Formatter

	// newClient is swapped in tests to reach an in-memory server.
	newClient func(server string, timeout time.Duration) *chessclient.Client
}

func newApp() *app {
	cat := msgcat.Default()
	return &app{
		server:    envDefault("CHESS_SERVER", "http://localhost:8080"),
		feed:      envDefault("CHESS_FEED", "ws://localhost:8081"),
		session:   os.Getenv("CHESS_SESSION"),
		timeout:   10 * time.Second,
		cat:       cat,
		formatter: chesspresenter.NewFormatter(cat),
		newClient: func(server string, timeout time.Duration) *chessclient.Client {
			return chessclient.New(server, chessclient.WithTimeout(timeout))
		},
	}
}

func (a *app) client() *chessclient.Client { return a.newClient(a.server, a.timeout) }

func (a *app) sessionID() (string, error) {
	id := strings.TrimSpace(a.session)
	if id == "" {
		return "", errNoSession
	}
	return id, nil
}

// watchURL prefers the dedicated feed address and falls back to the API host.
func (a *app) watchURL(c *chessclient.Client, id string) string {
	if feed := strings.TrimRight(strings.TrimSpace(a.feed), "/"); feed != "" {
		return feed + "/ws/sessions/" + id
	}
	return c.WatchURL(id)
}

func (a *app) presenter(out io.Writer, imagePath string) *chesspresenter.Presenter {
	return chesspresenter.NewPresenter(a.formatter,
		func(text string) error {
			_, err := fmt.Fprintln(out, text)
			return err
		},
		func(png []byte) error {
			if imagePath == "" {
				return errors.New("no image destination")
			}
			return os.WriteFile(imagePath, png, 0o644)
		},
	)
}

func envDefault(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}
