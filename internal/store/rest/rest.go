// Package rest implements store.Client against the hosted HTTP API. Every
// request carries the public apikey header; requests made with a live session
// also carry its bearer token. Sessions persist to a local file so a restart
// picks up where the previous process signed in.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/tftboard/tftboard/internal/config"
	"github.com/tftboard/tftboard/internal/domain"
	internal_errors "github.com/tftboard/tftboard/internal/errors"
	"github.com/tftboard/tftboard/internal/store"
)

const defaultTimeout = 12 * time.Second

type Options struct {
	Credentials config.ClientCredentials
	// Timeout bounds each request; zero means 12s.
	Timeout time.Duration
	// SessionFile is where the token pair persists between runs. Empty
	// disables persistence.
	SessionFile string
}

type Client struct {
	baseURL     string
	apiKey      string
	httpClient  *http.Client
	sessionFile string

	mu      sync.Mutex
	session *domain.Session
	subs    map[int]func(domain.AuthEvent)
	nextSub int
}

var _ store.Client = (*Client)(nil)

func New(opts Options) *Client {
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}
	c := &Client{
		baseURL:     opts.Credentials.BaseURL,
		apiKey:      opts.Credentials.ApiKey,
		httpClient:  &http.Client{Timeout: timeout},
		sessionFile: opts.SessionFile,
		subs:        make(map[int]func(domain.AuthEvent)),
	}
	if session, err := c.loadSessionFile(); err == nil {
		c.session = session
	}
	return c
}

type apiError struct {
	Message string `json:"message"`
}

// do issues one request and decodes a 2xx JSON body into out (when out is
// non-nil). Non-2xx responses map to ErrorWithStatusCode carrying the body's
// message so callers can branch on status without seeing transport details.
func (c *Client) do(ctx context.Context, method, path string, body interface{}, out interface{}) (http.Header, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.setAuthHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("backend unavailable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var remote apiError
		message := http.StatusText(resp.StatusCode)
		if err := json.NewDecoder(resp.Body).Decode(&remote); err == nil && remote.Message != "" {
			message = remote.Message
		}
		return resp.Header, &internal_errors.ErrorWithStatusCode{Message: message, StatusCode: resp.StatusCode}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.Header, fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return resp.Header, nil
}

func (c *Client) setAuthHeaders(req *http.Request) {
	req.Header.Set("apikey", c.apiKey)
	c.mu.Lock()
	if c.session != nil {
		req.Header.Set("Authorization", "Bearer "+c.session.AccessToken)
	}
	c.mu.Unlock()
}
