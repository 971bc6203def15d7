// Package api is the HTTP client of the property management API.
//
// Every call decodes the response envelope. Failures come back as
// *apperr.Error: the server's classified error when it sent one, and
// network-request-failed when the request never got an answer.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/clivebixby0/myapt-2/internal/apperr"
)

// Client talks to the API on behalf of at most one signed-in user.
type Client struct {
	baseURL string
	http    *http.Client

	mu    sync.RWMutex
	token string
}

// New returns a client for the server at baseURL. A nil httpClient uses a
// client with DefaultTimeout.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: httpClient}
}

// SetToken sets the bearer token sent with every request. An empty token
// signs the client out.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// Token returns the current bearer token.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// reply is the decoded response envelope. Data is decoded by the caller.
type reply struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	ID      string          `json:"id"`
	URL     string          `json:"url"`
	Error   *apperr.Error   `json:"error"`
}

// do sends a JSON request and decodes the data of a successful reply into out.
// The reply is returned on failure too, so that callers can read an id
// carried next to the error.
func (c *Client) do(ctx context.Context, method, path string, in, out any) (*reply, error) {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.send(req, out)
}

func (c *Client) send(req *http.Request, out any) (*reply, error) {
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, apperr.Wrap(apperr.Timeout, err)
		}
		return nil, apperr.Wrap(apperr.NetworkRequestFailed, err)
	}
	defer resp.Body.Close()

	var rep reply
	if err := json.NewDecoder(resp.Body).Decode(&rep); err != nil {
		if resp.StatusCode >= http.StatusBadRequest {
			return nil, apperr.Wrap(statusCode(resp.StatusCode), fmt.Errorf("server error: %s", resp.Status))
		}
		return nil, apperr.Wrap(apperr.NetworkRequestFailed, fmt.Errorf("decode response: %w", err))
	}
	if !rep.Success || resp.StatusCode >= http.StatusBadRequest {
		if rep.Error != nil {
			return &rep, rep.Error
		}
		return &rep, apperr.New(statusCode(resp.StatusCode), "")
	}
	if out != nil && len(rep.Data) > 0 {
		if err := json.Unmarshal(rep.Data, out); err != nil {
			return &rep, apperr.Wrap(apperr.Internal, fmt.Errorf("decode data: %w", err))
		}
	}
	return &rep, nil
}

// statusCode classifies a failure reply that carried no error body.
func statusCode(status int) apperr.Code {
	switch status {
	case http.StatusUnauthorized:
		return apperr.Unauthenticated
	case http.StatusForbidden:
		return apperr.PermissionDenied
	case http.StatusNotFound:
		return apperr.NotFound
	case http.StatusTooManyRequests:
		return apperr.TooManyRequests
	case http.StatusBadGateway, http.StatusServiceUnavailable:
		return apperr.Unavailable
	case http.StatusGatewayTimeout:
		return apperr.Timeout
	}
	if status >= 400 && status < 500 {
		return apperr.Validation
	}
	return apperr.Internal
}

func escape(id string) string { return url.PathEscape(id) }
