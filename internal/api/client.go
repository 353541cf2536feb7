// Package api is the client for the quiz server's REST endpoints
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/DianeRUT/Multiplayer-Quiz-App-sub001/internal/middleware"
	"github.com/DianeRUT/Multiplayer-Quiz-App-sub001/internal/model"
)

// DefaultTimeout bounds every request
const DefaultTimeout = 30 * time.Second

// Client is an HTTP client for the API
type Client struct {
	baseURL    string
	httpClient *http.Client

	mu    sync.RWMutex
	token string
}

// NewClient creates a new API client. Requests are logged through logger.
func NewClient(baseURL string, logger *slog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout:   DefaultTimeout,
			Transport: middleware.Logging(logger.With(slog.String("component", "api")), nil),
		},
	}
}

// SetToken updates the bearer token sent with requests
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

// Token returns the bearer token in use
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// Login exchanges credentials for a token. Failures are *model.AuthError.
func (c *Client) Login(ctx context.Context, creds model.Credentials) (string, model.Profile, error) {
	var resp LoginResponse
	err := c.Do(ctx, http.MethodPost, "/api/auth/login", LoginRequest{Email: creds.Email, Password: creds.Password}, &resp)
	if err != nil {
		return "", model.Profile{}, toAuthError(err)
	}
	if resp.Token == "" {
		return "", model.Profile{}, &model.AuthError{
			Kind:    model.AuthUnknown,
			Message: "server returned no token",
		}
	}
	return resp.Token, resp.User, nil
}

// ListQuizzes returns the quizzes the current user can host
func (c *Client) ListQuizzes(ctx context.Context) ([]Quiz, error) {
	var quizzes []Quiz
	if err := c.Do(ctx, http.MethodGet, "/api/quizzes", nil, &quizzes); err != nil {
		return nil, err
	}
	return quizzes, nil
}

// CreateSession opens a session for quizID and returns its pin
func (c *Client) CreateSession(ctx context.Context, quizID string) (string, error) {
	var resp SessionResponse
	if err := c.Do(ctx, http.MethodPost, "/api/sessions", CreateSessionRequest{QuizID: quizID}, &resp); err != nil {
		return "", err
	}
	if resp.Pin == "" {
		return "", errors.New("server returned no pin")
	}
	return resp.Pin, nil
}

// Health checks that the server is up
func (c *Client) Health(ctx context.Context) (*HealthResponse, error) {
	var resp HealthResponse
	if err := c.Do(ctx, http.MethodGet, "/api/health", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Do performs an HTTP request
func (c *Client) Do(ctx context.Context, method, path string, body, result any) error {

	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	// Check for error responses
	if resp.StatusCode >= 400 {
		return decodeError(resp.StatusCode, respBody)
	}

	// Parse successful response
	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}
	}

	return nil
}

// toAuthError classifies a login failure
func toAuthError(err error) *model.AuthError {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return &model.AuthError{
			Kind:    model.AuthNetwork,
			Message: "could not reach the server, check your connection",
			Err:     err,
		}
	}

	var apiErr *Error
	if !errors.As(err, &apiErr) {
		return &model.AuthError{Kind: model.AuthUnknown, Message: "login failed", Err: err}
	}

	switch apiErr.Status {
	case http.StatusUnauthorized:
		return &model.AuthError{Kind: model.AuthInvalidCredentials, Message: "invalid email or password", Err: err}
	case http.StatusForbidden:
		return &model.AuthError{Kind: model.AuthUnverified, Message: "please verify your email before logging in", Err: err}
	default:
		return &model.AuthError{Kind: model.AuthUnknown, Message: apiErr.Message, Err: err}
	}
}
