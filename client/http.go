// Package client talks to an OSA backend over HTTP. The viewer only reads:
// health, the session list and paged session messages.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// Client is a read-only backend client. The zero Token sends no
// Authorization header.
type Client struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		BaseURL:    baseURL,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *Client) SetToken(token string) {
	c.Token = token
}

func (c *Client) Health(ctx context.Context) (*HealthResponse, error) {
	var h HealthResponse
	if err := c.getJSON(ctx, "/health", nil, &h); err != nil {
		return nil, fmt.Errorf("health check: %w", err)
	}
	return &h, nil
}

func (c *Client) ListSessions(ctx context.Context) ([]SessionInfo, error) {
	var wrapper struct {
		Sessions []SessionInfo `json:"sessions"`
	}
	if err := c.getJSON(ctx, "/api/v1/sessions", nil, &wrapper); err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return wrapper.Sessions, nil
}

func (c *Client) GetSession(ctx context.Context, id string) (*SessionInfo, error) {
	var s SessionInfo
	if err := c.getJSON(ctx, sessionPath(id), nil, &s); err != nil {
		return nil, fmt.Errorf("get session %s: %w", id, err)
	}
	return &s, nil
}

// GetSessionMessages fetches one page of a session's history. Sequence
// numbers are assigned by position when the backend omits them.
func (c *Client) GetSessionMessages(ctx context.Context, id string, q PageQuery) (*MessagePage, error) {
	var page MessagePage
	if err := c.getJSON(ctx, sessionPath(id)+"/messages", q.values(), &page); err != nil {
		return nil, fmt.Errorf("get session %s messages: %w", id, err)
	}
	for i := range page.Messages {
		if page.Messages[i].Seq == 0 {
			page.Messages[i].Seq = page.Offset + int64(i) + 1
		}
	}
	return &page, nil
}

// -- HTTP helpers -------------------------------------------------------------

func sessionPath(id string) string { return "/api/v1/sessions/" + url.PathEscape(id) }

// getJSON decodes a 200 response into out. Any other status becomes an
// *APIError.
func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	u := c.BaseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return parseError(resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func parseError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var apiErr ErrorResponse
	if json.Unmarshal(body, &apiErr) == nil && apiErr.Error != "" {
		return &APIError{Status: resp.StatusCode, Message: apiErr.Error, Details: apiErr.Details}
	}
	return &APIError{Status: resp.StatusCode, Message: string(body)}
}

func (q PageQuery) values() url.Values {
	v := url.Values{}
	if q.Before > 0 {
		v.Set("before", strconv.FormatInt(q.Before, 10))
	}
	if q.After > 0 {
		v.Set("after", strconv.FormatInt(q.After, 10))
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	return v
}
