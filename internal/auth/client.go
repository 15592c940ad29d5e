// Package auth exchanges credentials with the backend and keeps the
// terminal's session token.
package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

var (
	ErrMissingCredentials = errors.New("email and password are required")
	ErrMissingUsername    = errors.New("username is required")
)

// User is the backend's view of an operator account.
// swagger:model User
type User struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// loginResponse mirrors the backend's {message, error, token?, user?} shape.
type loginResponse struct {
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
	Token   string `json:"token,omitempty"`
	User    *User  `json:"user,omitempty"`
}

type Client struct {
	HTTP    *http.Client
	BaseURL string
	// Unlock caches credentials for offline re-login; nil disables it.
	Unlock *UnlockCache
}

func NewClient(baseURL string, unlock *UnlockCache) *Client {
	return &Client{
		HTTP:    &http.Client{Timeout: 5 * time.Second},
		BaseURL: strings.TrimRight(baseURL, "/"),
		Unlock:  unlock,
	}
}

// Login exchanges credentials for a session. On success the returned token
// (when the backend issues one) is stored in the session and attached to all
// subsequent backend calls.
func (c *Client) Login(ctx context.Context, session *Session, email, password string) (string, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return "", ErrMissingCredentials
	}

	out, err := c.post(ctx, "/login", map[string]string{"email": email, "password": password})
	if err != nil {
		return "", err
	}

	session.Set(out.Token, out.User)
	if c.Unlock != nil {
		if err := c.Unlock.Remember(email, password); err != nil {
			// Offline unlock is best effort; a full backend login succeeded.
			return out.Message, nil
		}
	}
	return out.Message, nil
}

// LoginOffline verifies credentials against the local unlock cache when the
// backend is unreachable. It never mints a token.
func (c *Client) LoginOffline(email, password string) bool {
	return c.Unlock != nil && c.Unlock.Verify(strings.TrimSpace(email), password)
}

// Register creates an operator account.
func (c *Client) Register(ctx context.Context, username, email, password string) (string, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if username == "" {
		return "", ErrMissingUsername
	}
	if email == "" || password == "" {
		return "", ErrMissingCredentials
	}
	out, err := c.post(ctx, "/register", map[string]string{
		"username": username,
		"email":    email,
		"password": password,
	})
	if err != nil {
		return "", err
	}
	return out.Message, nil
}

func (c *Client) post(ctx context.Context, path string, in map[string]string) (*loginResponse, error) {
	body, err := json.Marshal(in)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	res, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	defer res.Body.Close()

	var out loginResponse
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if res.StatusCode != http.StatusOK && res.StatusCode != http.StatusCreated {
		if out.Error != "" {
			return nil, errors.New(out.Error)
		}
		return nil, fmt.Errorf("%s: backend returned %s", path, res.Status)
	}
	return &out, nil
}
