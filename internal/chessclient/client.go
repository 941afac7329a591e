// Package chessclient is a typed fasthttp client for the session API.
package chessclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/valyala/fasthttp"

	"github.com/park285/samarth-chess/pkg/chessdto"
)

// HeaderProvider supplies extra headers for every request.
type HeaderProvider func() map[string]string

// APIError is returned for non-2xx responses. Domain carries the decoded
// error body when the server sent one.
type APIError struct {
	Status int
	Domain chessdto.DomainError
	Body   string
}

func (e *APIError) Error() string {
	if e.Domain.Code != "" {
		return fmt.Sprintf("chess api error: status=%d code=%s: %s", e.Status, e.Domain.Code, e.Domain.Message)
	}
	return fmt.Sprintf("chess api error: status=%d body=%s", e.Status, e.Body)
}

// Code returns the domain error code of err, or "" if err is not an APIError.
func Code(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Domain.Code
	}
	return ""
}

type Client struct {
	baseURL string
	http    *fasthttp.Client
	headers HeaderProvider

	defaultTimeout time.Duration
	retryMax       int
}

type Option func(*Client)

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.defaultTimeout = d }
}

func WithMaxConnsPerHost(n int) Option {
	return func(c *Client) { c.http.MaxConnsPerHost = n }
}

func WithHeaderProvider(h HeaderProvider) Option {
	return func(c *Client) { c.headers = h }
}

func WithRetry(max int) Option {
	return func(c *Client) { c.retryMax = max }
}

// WithHTTPClient replaces the underlying fasthttp client, e.g. to dial an
// in-memory listener.
func WithHTTPClient(hc *fasthttp.Client) Option {
	return func(c *Client) { c.http = hc }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:        strings.TrimRight(baseURL, "/"),
		http:           &fasthttp.Client{ReadTimeout: 10 * time.Second, WriteTimeout: 10 * time.Second, MaxConnsPerHost: 64},
		defaultTimeout: 10 * time.Second,
		retryMax:       3,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the server root without a trailing slash.
func (c *Client) BaseURL() string { return c.baseURL }

func sessionPath(id, action string) string {
	p := "/api/sessions/" + id
	if action != "" {
		p += "/" + action
	}
	return p
}

func (c *Client) Create(ctx context.Context) (chessdto.SessionView, error) {
	var v chessdto.SessionView
	err := c.doJSON(ctx, fasthttp.MethodPost, "/api/sessions", nil, &v, false)
	return v, err
}

func (c *Client) Get(ctx context.Context, id string) (chessdto.SessionView, error) {
	var v chessdto.SessionView
	err := c.doJSON(ctx, fasthttp.MethodGet, sessionPath(id, ""), nil, &v, true)
	return v, err
}

func (c *Client) Delete(ctx context.Context, id string) error {
	return c.doJSON(ctx, fasthttp.MethodDelete, sessionPath(id, ""), nil, nil, false)
}

func (c *Client) Click(ctx context.Context, id, square string) (chessdto.ClickResponse, error) {
	var resp chessdto.ClickResponse
	err := c.doJSON(ctx, fasthttp.MethodPost, sessionPath(id, "click"), chessdto.ClickRequest{Square: square}, &resp, false)
	return resp, err
}

func (c *Client) Move(ctx context.Context, id, from, to string) (chessdto.MoveResponse, error) {
	var resp chessdto.MoveResponse
	err := c.doJSON(ctx, fasthttp.MethodPost, sessionPath(id, "move"), chessdto.MoveRequest{From: from, To: to}, &resp, false)
	return resp, err
}

func (c *Client) Undo(ctx context.Context, id string) (chessdto.UndoResponse, error) {
	var resp chessdto.UndoResponse
	err := c.doJSON(ctx, fasthttp.MethodPost, sessionPath(id, "undo"), nil, &resp, false)
	return resp, err
}

func (c *Client) Reset(ctx context.Context, id string) (chessdto.SessionView, error) {
	var v chessdto.SessionView
	err := c.doJSON(ctx, fasthttp.MethodPost, sessionPath(id, "reset"), nil, &v, false)
	return v, err
}

func (c *Client) Flip(ctx context.Context, id string) (chessdto.SessionView, error) {
	var v chessdto.SessionView
	err := c.doJSON(ctx, fasthttp.MethodPost, sessionPath(id, "flip"), nil, &v, false)
	return v, err
}

func (c *Client) FEN(ctx context.Context, id string) (string, error) {
	var resp chessdto.FENResponse
	if err := c.doJSON(ctx, fasthttp.MethodGet, sessionPath(id, "fen"), nil, &resp, true); err != nil {
		return "", err
	}
	return resp.FEN, nil
}

func (c *Client) LoadFEN(ctx context.Context, id, fen string) (chessdto.SessionView, error) {
	var v chessdto.SessionView
	err := c.doJSON(ctx, fasthttp.MethodPost, sessionPath(id, "fen"), chessdto.FENRequest{FEN: fen}, &v, false)
	return v, err
}

// BoardPNG fetches the rendered board; size 0 uses the server default.
func (c *Client) BoardPNG(ctx context.Context, id string, size int) ([]byte, error) {
	path := sessionPath(id, "board.png")
	if size > 0 {
		path += "?size=" + strconv.Itoa(size)
	}
	var out []byte
	err := c.do(ctx, fasthttp.MethodGet, path, nil, true, func(resp *fasthttp.Response) error {
		out = append([]byte(nil), resp.Body()...)
		return nil
	})
	return out, err
}

func (c *Client) Health(ctx context.Context) (chessdto.HealthResponse, error) {
	var h chessdto.HealthResponse
	err := c.doJSON(ctx, fasthttp.MethodGet, "/healthz", nil, &h, true)
	return h, err
}

// WatchURL returns the websocket URL of the live feed for id.
func (c *Client) WatchURL(id string) string {
	u := c.baseURL
	switch {
	case strings.HasPrefix(u, "https://"):
		u = "wss://" + strings.TrimPrefix(u, "https://")
	case strings.HasPrefix(u, "http://"):
		u = "ws://" + strings.TrimPrefix(u, "http://")
	}
	return u + "/ws/sessions/" + id
}

func (c *Client) doJSON(ctx context.Context, method, path string, in, out any, retry bool) error {
	var payload []byte
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		payload = b
	}
	return c.do(ctx, method, path, payload, retry, func(resp *fasthttp.Response) error {
		if out == nil || len(resp.Body()) == 0 {
			return nil
		}
		if err := json.Unmarshal(resp.Body(), out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
		return nil
	})
}

// do retries transport errors and retryable statuses only when retry is set,
// which callers reserve for idempotent requests.
func (c *Client) do(ctx context.Context, method, path string, body []byte, retry bool, onOK func(*fasthttp.Response) error) error {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer func() {
		fasthttp.ReleaseRequest(req)
		fasthttp.ReleaseResponse(resp)
	}()

	req.Header.SetMethod(method)
	req.SetRequestURI(c.baseURL + path)
	if body != nil {
		req.Header.SetContentType("application/json")
		req.SetBody(body)
	}
	if c.headers != nil {
		for k, v := range c.headers() {
			if strings.TrimSpace(k) != "" && strings.TrimSpace(v) != "" {
				req.Header.Set(k, v)
			}
		}
	}

	attempts := 1
	if retry && c.retryMax > 1 {
		attempts = c.retryMax
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := c.http.DoDeadline(req, resp, c.computeDeadline(ctx)); err != nil {
			lastErr = fmt.Errorf("request failed: %w", err)
		} else if status := resp.StatusCode(); status < 200 || status >= 300 {
			lastErr = newAPIError(status, resp.Body())
			if !shouldRetryStatus(status) {
				return lastErr
			}
		} else {
			return onOK(resp)
		}
		if attempt == attempts {
			break
		}
		if err := sleepWithContext(ctx, backoffDuration(attempt)); err != nil {
			return lastErr
		}
	}
	return lastErr
}

func newAPIError(status int, body []byte) *APIError {
	e := &APIError{Status: status, Body: truncate(string(body), 512)}
	var er chessdto.ErrorResponse
	if json.Unmarshal(body, &er) == nil {
		e.Domain = er.Error
	}
	return e
}

func (c *Client) computeDeadline(ctx context.Context) time.Time {
	clientDL := time.Now().Add(c.defaultTimeout)
	if dl, ok := ctx.Deadline(); ok && dl.Before(clientDL) {
		return dl
	}
	return clientDL
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func backoffDuration(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	if attempt > 6 {
		attempt = 6
	}
	return time.Duration(1<<uint(attempt-1)) * 100 * time.Millisecond
}

func shouldRetryStatus(code int) bool {
	switch code {
	case fasthttp.StatusConflict, fasthttp.StatusInternalServerError, fasthttp.StatusBadGateway,
		fasthttp.StatusServiceUnavailable, fasthttp.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
