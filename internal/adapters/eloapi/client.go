// Package eloapi is the HTTP client for the remote rating service: the
// roster endpoint and the per-entity history endpoint.
package eloapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/okian/elocompare/internal/domain/model"
)

const (
	defaultTimeout = 30 * time.Second
	maxErrorBody   = 64 << 10
)

// labelLayouts are tried in order when parsing history labels.
var labelLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2006-01",
	"2006",
}

// Client talks to the roster and history endpoints.
type Client struct {
	rosterURL  string
	historyURL string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// NewClient creates a client. historyURL is the base to which the entity id
// is appended as a path segment.
func NewClient(rosterURL, historyURL string, opts ...Option) *Client {
	c := &Client{
		rosterURL:  rosterURL,
		historyURL: strings.TrimRight(historyURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// rosterEntry accepts numeric or string ids.
type rosterEntry struct {
	ID   flexID `json:"id"`
	Name string `json:"name"`
}

type flexID string

func (id *flexID) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*id = flexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("id must be a string or number: %w", err)
	}
	*id = flexID(n.String())
	return nil
}

// historyPayload mirrors the history endpoint's success body.
type historyPayload struct {
	FighterName string            `json:"fighter_name"`
	Labels      []json.RawMessage `json:"labels"`
	Data        []float64         `json:"data"`
}

type errorPayload struct {
	Error string `json:"error"`
}

// Entities fetches the roster.
func (c *Client) Entities(ctx context.Context) ([]model.Entity, error) {
	body, err := c.get(ctx, c.rosterURL, "")
	if err != nil {
		return nil, err
	}

	var entries []rosterEntry
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, &APIError{StatusCode: http.StatusOK, Message: "malformed roster payload: " + err.Error()}
	}

	out := make([]model.Entity, 0, len(entries))
	for _, e := range entries {
		if strings.TrimSpace(string(e.ID)) == "" {
			continue
		}
		out = append(out, model.Entity{ID: string(e.ID), Name: e.Name})
	}
	return out, nil
}

// History fetches one entity's rating history. An entity with no recorded
// history yields a result with no points and a nil error.
func (c *Client) History(ctx context.Context, entityID string) (*model.HistoryResult, error) {
	body, err := c.get(ctx, c.historyURL+"/"+url.PathEscape(entityID), entityID)
	if err != nil {
		return nil, err
	}

	var p historyPayload
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, malformed(entityID, err.Error())
	}
	if len(p.Labels) != len(p.Data) {
		return nil, malformed(entityID, fmt.Sprintf("%d labels for %d data points", len(p.Labels), len(p.Data)))
	}

	res := &model.HistoryResult{
		EntityID:   entityID,
		EntityName: p.FighterName,
		Points:     make([]model.HistoryPoint, len(p.Data)),
	}
	for i, raw := range p.Labels {
		at, err := parseLabel(raw)
		if err != nil {
			return nil, malformed(entityID, fmt.Sprintf("label %d: %v", i, err))
		}
		res.Points[i] = model.HistoryPoint{At: at, Rating: p.Data[i]}
	}
	return res, nil
}

// get performs a GET and returns the body of a 2xx response. Transport
// failures become *NetworkError, non-2xx responses *APIError.
func (c *Client) get(ctx context.Context, target, entityID string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, &NetworkError{EntityID: entityID, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &NetworkError{EntityID: entityID, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &APIError{
			EntityID:   entityID,
			StatusCode: resp.StatusCode,
			Message:    errorMessage(resp, raw),
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{EntityID: entityID, Err: err}
	}
	return body, nil
}

// errorMessage prefers the server's {"error": ...} text over the status text.
func errorMessage(resp *http.Response, raw []byte) string {
	var p errorPayload
	if len(bytes.TrimSpace(raw)) > 0 && json.Unmarshal(raw, &p) == nil && strings.TrimSpace(p.Error) != "" {
		return p.Error
	}
	return statusText(resp)
}

// statusText returns the reason phrase of the status line, e.g. "Not Found".
func statusText(resp *http.Response) string {
	code := strconv.Itoa(resp.StatusCode)
	if text := strings.TrimSpace(strings.TrimPrefix(resp.Status, code)); text != "" {
		return text
	}
	if text := http.StatusText(resp.StatusCode); text != "" {
		return text
	}
	return "HTTP " + code
}

func malformed(entityID, detail string) error {
	return &APIError{EntityID: entityID, StatusCode: http.StatusOK, Message: "malformed history payload: " + detail}
}

// parseLabel accepts date strings in any of labelLayouts, a bare year as a
// number, or a Unix timestamp in milliseconds.
func parseLabel(raw json.RawMessage) (time.Time, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		s = strings.TrimSpace(s)
		for _, layout := range labelLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t, nil
			}
		}
		return time.Time{}, fmt.Errorf("unrecognized date %q", s)
	}

	var n float64
	if err := json.Unmarshal(raw, &n); err != nil {
		return time.Time{}, errors.New("label must be a string or number")
	}
	if n >= 1 && n <= 9999 && n == float64(int(n)) {
		return time.Date(int(n), time.January, 1, 0, 0, 0, 0, time.UTC), nil
	}
	return time.UnixMilli(int64(n)).UTC(), nil
}
