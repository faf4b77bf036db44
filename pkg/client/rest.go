package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Stats mirrors the server's buffer counters.
type Stats struct {
	Size     int    `json:"size"`
	Count    int    `json:"count"`
	Dropped  uint64 `json:"dropped"`
	Sequence uint32 `json:"sequence"`
}

// FetchOptions narrow a read of stored entries.
type FetchOptions struct {
	Cursor    uint32
	Limit     int
	Levels    []string
	ClientID  string
	SessionID string
	Since     string
	Filter    string
}

// ClientOption customizes the REST client.
type ClientOption func(*Client)

// WithRESTToken sends the shared secret on every request.
func WithRESTToken(token string) ClientOption {
	return func(c *Client) { c.token = token }
}

// WithRESTHTTPClient replaces the underlying HTTP client.
func WithRESTHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.httpc = hc }
}

// Client is a thin REST wrapper over the server's JSON endpoints.
type Client struct {
	baseURL string
	token   string
	httpc   *http.Client
}

// NewClient builds a REST client for the server at baseURL.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Push stores one entry and returns it with server-assigned fields.
func (c *Client) Push(ctx context.Context, e Entry) (Entry, error) {
	var resp struct {
		Stored []Entry `json:"stored"`
	}
	if err := c.post(ctx, "/v1/logs/push", e, &resp); err != nil {
		return Entry{}, err
	}
	if len(resp.Stored) == 0 {
		return Entry{}, fmt.Errorf("push: empty response")
	}
	return resp.Stored[0], nil
}

// BatchError reports a rejected member of a batch push.
type BatchError struct {
	Index int    `json:"index"`
	Error string `json:"error"`
}

// PushBatch stores a batch, applying valid members and reporting the rest.
func (c *Client) PushBatch(ctx context.Context, entries []Entry) ([]Entry, []BatchError, error) {
	var resp struct {
		Stored []Entry      `json:"stored"`
		Errors []BatchError `json:"errors"`
	}
	if err := c.post(ctx, "/v1/logs/push", entries, &resp); err != nil {
		return nil, nil, err
	}
	return resp.Stored, resp.Errors, nil
}

// Fetch reads a page of entries from the given cursor.
func (c *Client) Fetch(ctx context.Context, opts FetchOptions) ([]Entry, uint32, error) {
	q := url.Values{}
	if opts.Cursor > 0 {
		q.Set("cursor", strconv.FormatUint(uint64(opts.Cursor), 10))
	}
	if opts.Limit > 0 {
		q.Set("limit", strconv.Itoa(opts.Limit))
	}
	if len(opts.Levels) > 0 {
		q.Set("levels", strings.Join(opts.Levels, ","))
	}
	if opts.ClientID != "" {
		q.Set("clientId", opts.ClientID)
	}
	if opts.SessionID != "" {
		q.Set("sessionId", opts.SessionID)
	}
	if opts.Since != "" {
		q.Set("since", opts.Since)
	}
	if opts.Filter != "" {
		q.Set("filter", opts.Filter)
	}
	path := "/v1/logs"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}
	var resp struct {
		Entries    []Entry `json:"entries"`
		NextCursor uint32  `json:"nextCursor"`
	}
	if err := c.get(ctx, path, &resp); err != nil {
		return nil, 0, err
	}
	return resp.Entries, resp.NextCursor, nil
}

// Clear empties the buffer and returns the fresh session.
func (c *Client) Clear(ctx context.Context, label string) (Session, error) {
	var sess Session
	err := c.post(ctx, "/v1/logs/clear", map[string]string{"label": label}, &sess)
	return sess, err
}

// StartSession begins a new session without clearing the buffer.
func (c *Client) StartSession(ctx context.Context, label string) (Session, error) {
	var sess Session
	err := c.post(ctx, "/v1/sessions/start", map[string]string{"label": label}, &sess)
	return sess, err
}

// Sessions lists all sessions plus the id of the active one.
func (c *Client) Sessions(ctx context.Context) ([]Session, string, error) {
	var resp struct {
		Sessions []Session `json:"sessions"`
		Current  string    `json:"current"`
	}
	if err := c.get(ctx, "/v1/sessions", &resp); err != nil {
		return nil, "", err
	}
	return resp.Sessions, resp.Current, nil
}

// Stats reads the buffer counters.
func (c *Client) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	err := c.get(ctx, "/v1/stats", &st)
	return st, err
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	b, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := c.httpc.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.NewDecoder(resp.Body).Decode(&apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("%s: %s", resp.Status, apiErr.Error)
		}
		return fmt.Errorf("unexpected status %s", resp.Status)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
