// Package client talks to the admin API the way the dashboard does: a cookie session
// obtained from the login endpoint, then JSON requests carrying that cookie.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"

	"mail_admin/internal/model"
)

// APIError is a non-2xx response from the admin API
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("admin api: %d %s", e.StatusCode, e.Message)
}

// SessionRejected reports whether the server refused the session (401 or 403)
func (e *APIError) SessionRejected() bool {
	return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
}

// Client is an admin API client holding one session cookie
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a Client for baseURL with its own cookie jar
func New(baseURL string, timeout time.Duration) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Jar: jar, Timeout: timeout},
	}, nil
}

func (c *Client) post(ctx context.Context, path string, body any) error {
	raw, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("POST %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	var errBody struct {
		Error string `json:"error"`
	}
	_ = json.NewDecoder(resp.Body).Decode(&errBody)
	return &APIError{StatusCode: resp.StatusCode, Message: errBody.Error}
}

// Login opens an admin session; the cookie is kept for later calls
func (c *Client) Login(ctx context.Context, email, password string) error {
	return c.post(ctx, "/api/auth/login", model.LoginRequest{Email: email, Password: password})
}

// SendMail sends one templated email
func (c *Client) SendMail(ctx context.Context, req model.SendMailRequest) error {
	return c.post(ctx, "/api/send-mail", req)
}
