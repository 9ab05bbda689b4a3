package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"rechat/internal/domain"
)

// StatusError is returned for non-2xx responses.
type StatusError struct {
	Method string
	URL    string
	Status string
	Code   int
	Msg    string
}

func (e *StatusError) Error() string {
	if e.Msg == "" {
		return fmt.Sprintf("relay %s %s: %s", e.Method, e.URL, e.Status)
	}
	return fmt.Sprintf("relay %s %s: %s: %s", e.Method, e.URL, e.Status, e.Msg)
}

// Health is the body of GET /healthz.
type Health struct {
	Status string `json:"status"`
	Peers  int    `json:"peers"`
}

type HTTP struct {
	Base string
	HTTP *http.Client
}

// NewHTTP returns a client for the hub at base, e.g. http://127.0.0.1:8080.
// A nil hc uses http.DefaultClient.
func NewHTTP(base string, hc *http.Client) *HTTP {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &HTTP{Base: strings.TrimRight(base, "/"), HTTP: hc}
}

// Roster returns the hub's peers in join order.
func (c *HTTP) Roster(ctx context.Context) ([]domain.RosterEntry, error) {
	var out []domain.RosterEntry
	if err := c.do(ctx, http.MethodGet, "/roster", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Announce broadcasts body to every peer as a message from the hub.
func (c *HTTP) Announce(ctx context.Context, body string) error {
	return c.do(ctx, http.MethodPost, "/announce", struct {
		Body string `json:"body"`
	}{Body: body}, nil)
}

// Health probes the hub.
func (c *HTTP) Health(ctx context.Context) (Health, error) {
	var out Health
	err := c.do(ctx, http.MethodGet, "/healthz", nil, &out)
	return out, err
}

func (c *HTTP) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		buf := new(bytes.Buffer)
		if err := json.NewEncoder(buf).Encode(in); err != nil {
			return err
		}
		body = buf
	}
	u := c.Base + path
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &StatusError{
			Method: method,
			URL:    u,
			Status: resp.Status,
			Code:   resp.StatusCode,
			Msg:    strings.TrimSpace(string(msg)),
		}
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}
