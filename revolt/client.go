// Copyright 2026 The Bloc Authors
// SPDX-License-Identifier: Apache-2.0

package revolt

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/alexispurslane/bloc/lib/netutil"
	"github.com/alexispurslane/bloc/lib/ref"
	"github.com/alexispurslane/bloc/lib/secret"
)

// ClientConfig holds configuration for creating a Client.
type ClientConfig struct {
	// BaseURL is the base URL of the Revolt instance REST API
	// (e.g., "https://api.revolt.chat").
	BaseURL string
	// HTTPClient is used for all requests. If nil, http.DefaultClient
	// is used.
	HTTPClient *http.Client
	// Logger is used for structured logging. If nil, slog.Default()
	// is used.
	Logger *slog.Logger
}

// Client is an unauthenticated Revolt API client. It holds the
// instance base URL and HTTP transport, shared across Sessions.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a new unauthenticated Revolt client.
func NewClient(config ClientConfig) (*Client, error) {
	if config.BaseURL == "" {
		return nil, fmt.Errorf("revolt: BaseURL is required")
	}

	// Validate the URL structure. The string form (trailing slash
	// stripped) is stored and request URLs are built by
	// concatenation.
	if _, err := url.Parse(config.BaseURL); err != nil {
		return nil, fmt.Errorf("revolt: invalid BaseURL %q: %w", config.BaseURL, err)
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		baseURL:    strings.TrimRight(config.BaseURL, "/"),
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

// CloseIdleConnections closes idle HTTP connections in the underlying
// transport's connection pool. Call this after a network disruption to
// force subsequent requests to establish fresh TCP connections instead
// of reusing a poisoned pooled connection.
func (c *Client) CloseIdleConnections() {
	c.httpClient.CloseIdleConnections()
}

// QueryNode fetches the instance's node metadata: protocol version,
// websocket URL, and feature endpoints (Autumn file server). This is
// an unauthenticated endpoint — useful for checking whether the
// instance is reachable before login.
func (c *Client) QueryNode(ctx context.Context) (*NodeInfo, error) {
	body, err := c.doRequest(ctx, http.MethodGet, "/", nil, nil)
	if err != nil {
		return nil, fmt.Errorf("revolt: node query failed: %w", err)
	}

	var info NodeInfo
	if err := json.Unmarshal(body, &info); err != nil {
		return nil, fmt.Errorf("revolt: failed to parse node response: %w", err)
	}
	return &info, nil
}

// Login authenticates with email and password. On success
// (Result == "Success") the caller builds a Session via
// SessionFromToken. When the account requires multi-factor
// authentication, Result is "MFA" and the response carries a ticket
// for LoginMFA.
//
// The password Buffer is read but not closed — the caller retains
// ownership.
func (c *Client) Login(ctx context.Context, email string, password *secret.Buffer, friendlyName string) (*LoginResponse, error) {
	if email == "" {
		return nil, fmt.Errorf("revolt: email is required for login")
	}
	if password == nil {
		return nil, fmt.Errorf("revolt: password is required for login")
	}

	// Password is converted to string at the JSON serialization
	// boundary. The heap copy is short-lived.
	request := LoginRequest{
		Email:        email,
		Password:     password.String(),
		FriendlyName: friendlyName,
	}

	body, err := c.doRequest(ctx, http.MethodPost, "/auth/session/login", nil, request)
	if err != nil {
		return nil, fmt.Errorf("revolt: login failed: %w", err)
	}

	var response LoginResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("revolt: failed to parse login response: %w", err)
	}

	if response.Result == "Success" {
		c.logger.Info("logged in to revolt instance",
			"user_id", response.UserID,
			"session_id", response.ID,
		)
	}
	return &response, nil
}

// LoginMFA completes a login that returned an MFA ticket.
func (c *Client) LoginMFA(ctx context.Context, request MFALoginRequest) (*LoginResponse, error) {
	if request.MFATicket == "" {
		return nil, fmt.Errorf("revolt: MFA ticket is required")
	}

	body, err := c.doRequest(ctx, http.MethodPost, "/auth/session/login", nil, request)
	if err != nil {
		return nil, fmt.Errorf("revolt: MFA login failed: %w", err)
	}

	var response LoginResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("revolt: failed to parse login response: %w", err)
	}
	return &response, nil
}

// SessionFromToken creates a Session from an existing session token
// string. The token is moved into mmap-backed memory (locked against
// swap, excluded from core dumps).
//
// This does NOT validate the token — the first API call will fail if
// it is invalid. The caller must call Close on the returned Session
// when done.
func (c *Client) SessionFromToken(userID ref.UserID, token string) (*Session, error) {
	tokenBuffer, err := secret.NewFromString(token)
	if err != nil {
		return nil, fmt.Errorf("revolt: protecting session token: %w", err)
	}
	return &Session{
		client: c,
		token:  tokenBuffer,
		userID: userID,
	}, nil
}

// doRequest performs an HTTP request against the instance and returns
// the response body. On 2xx, returns the body. On 4xx/5xx, returns a
// *APIError. token may be nil for unauthenticated endpoints; query may
// be nil for endpoints without query parameters.
func (c *Client) doRequest(ctx context.Context, method, path string, token *secret.Buffer, requestBody any, query ...url.Values) ([]byte, error) {
	requestURL := c.baseURL + path
	if len(query) > 0 && query[0] != nil {
		requestURL += "?" + query[0].Encode()
	}

	var bodyReader io.Reader
	if requestBody != nil {
		encoded, err := json.Marshal(requestBody)
		if err != nil {
			return nil, fmt.Errorf("revolt: failed to encode request body: %w", err)
		}
		bodyReader = bytes.NewReader(encoded)
	}

	request, err := http.NewRequestWithContext(ctx, method, requestURL, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("revolt: failed to create request: %w", err)
	}

	if requestBody != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	request.Header.Set("Accept", "application/json")
	if token != nil {
		request.Header.Set("X-Session-Token", token.String())
	}

	response, err := c.httpClient.Do(request)
	if err != nil {
		return nil, fmt.Errorf("revolt: request to %s %s failed: %w", method, path, err)
	}
	defer response.Body.Close()

	responseBody, err := netutil.ReadResponse(response.Body)
	if err != nil {
		return nil, fmt.Errorf("revolt: failed to read response body: %w", err)
	}

	if response.StatusCode >= 200 && response.StatusCode < 300 {
		return responseBody, nil
	}

	// Revolt error responses carry a JSON body with a "type" field.
	// A body that does not parse (proxy error pages, empty bodies)
	// degrades to the raw status line.
	apiErr := &APIError{StatusCode: response.StatusCode, Status: response.Status}
	if jsonErr := json.Unmarshal(bytes.TrimSpace(responseBody), apiErr); jsonErr != nil || apiErr.Type == "" {
		apiErr.Type = ""
		return responseBody, apiErr
	}
	return responseBody, apiErr
}
