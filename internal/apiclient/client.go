// Package apiclient talks to the hostel API server over JSON/HTTP.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"hostelportal/internal/model"
)

const maxErrorBody = 64 << 10

// LoginResponse is the body of POST /api/auth/login.
type LoginResponse struct {
	Success bool        `json:"success"`
	Token   string      `json:"token,omitempty"`
	User    *model.User `json:"user,omitempty"`
	Message string      `json:"message,omitempty"`
}

type messageResponse struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

func (m messageResponse) text() string {
	if m.Message != "" {
		return m.Message
	}
	return m.Error
}

// Client is a typed client for the hostel API.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a client for baseURL. timeout bounds every request.
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// Login exchanges credentials for a token. A response with success=false is
// returned as a RejectedError carrying the server's message.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	var resp LoginResponse
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", "", body, &resp); err != nil {
		return nil, err
	}
	if !resp.Success || resp.Token == "" || resp.User == nil {
		msg := resp.Message
		if msg == "" {
			msg = "login failed"
		}
		return nil, &RejectedError{Status: http.StatusOK, Message: msg}
	}
	return &resp, nil
}

// Logout tells the API the token is no longer in use.
func (c *Client) Logout(ctx context.Context, token string) error {
	return c.do(ctx, http.MethodPost, "/api/auth/logout", token, nil, nil)
}

// ForgotPassword asks the API to send a one-time password to email.
func (c *Client) ForgotPassword(ctx context.Context, email string) (string, error) {
	var resp messageResponse
	if err := c.do(ctx, http.MethodPost, "/api/auth/forgotpassword", "", map[string]string{"email": email}, &resp); err != nil {
		return "", err
	}
	return resp.text(), nil
}

// ResetPassword sets a new password using the emailed one-time password.
func (c *Client) ResetPassword(ctx context.Context, email, otp, password string) (string, error) {
	body := map[string]string{"email": email, "otp": otp, "password": password}
	var resp messageResponse
	if err := c.do(ctx, http.MethodPut, "/api/auth/resetpassword", "", body, &resp); err != nil {
		return "", err
	}
	return resp.text(), nil
}

// Me returns the user the token belongs to.
func (c *Client) Me(ctx context.Context, token string) (*model.User, error) {
	var user model.User
	if err := c.do(ctx, http.MethodGet, "/api/auth/me", token, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Users lists all users. Admin only.
func (c *Client) Users(ctx context.Context, token string) ([]model.User, error) {
	var users []model.User
	if err := c.do(ctx, http.MethodGet, "/api/users", token, nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// Rooms lists the rooms visible to the token's user.
func (c *Client) Rooms(ctx context.Context, token string) ([]model.Room, error) {
	var rooms []model.Room
	if err := c.do(ctx, http.MethodGet, "/api/rooms", token, nil, &rooms); err != nil {
		return nil, err
	}
	return rooms, nil
}

// Feedback lists feedback visible to the token's user.
func (c *Client) Feedback(ctx context.Context, token string) ([]model.Feedback, error) {
	var items []model.Feedback
	if err := c.do(ctx, http.MethodGet, "/api/feedback", token, nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (c *Client) do(ctx context.Context, method, path, token string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %v", ErrTransport, method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var msg messageResponse
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		_ = json.Unmarshal(raw, &msg)
		text := msg.text()
		if text == "" {
			text = http.StatusText(resp.StatusCode)
		}
		return &RejectedError{Status: resp.StatusCode, Message: text}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}
