// Copyright 2026 The Bloc Authors
// SPDX-License-Identifier: Apache-2.0

package account

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/alexispurslane/bloc/lib/ref"
	"github.com/alexispurslane/bloc/lib/secret"
	"github.com/alexispurslane/bloc/revolt"
)

// MFARequiredError is returned by Repository.Login when the account
// requires a second factor. Complete the login with LoginMFA using the
// ticket.
type MFARequiredError struct {
	Ticket         string
	AllowedMethods []string
}

func (e *MFARequiredError) Error() string {
	return fmt.Sprintf("account: multi-factor authentication required (methods: %v)", e.AllowedMethods)
}

// RepositoryConfig carries the dependencies for a Repository.
type RepositoryConfig struct {
	// Store persists the session between runs. Required.
	Store *Store

	// Logger is required.
	Logger *slog.Logger

	// HTTPClient is shared by the revolt clients the repository
	// builds. Defaults to http.DefaultClient.
	HTTPClient *http.Client
}

// Repository manages the account lifecycle: login, session
// persistence and resumption, logout, and user lookups with an
// in-memory profile cache.
//
// The profile cache is never evicted; entries live for the process
// lifetime. Profiles change rarely enough that staleness within one
// run is acceptable.
type Repository struct {
	store      *Store
	logger     *slog.Logger
	httpClient *http.Client

	mu          sync.RWMutex
	session     *revolt.Session
	userSession *UserSession
	profiles    map[ref.UserID]*revolt.User
}

// NewRepository creates a Repository. Call Resume to pick up a
// persisted session, or Login to create one.
func NewRepository(config RepositoryConfig) (*Repository, error) {
	if config.Store == nil {
		return nil, fmt.Errorf("account: store is required")
	}
	if config.Logger == nil {
		return nil, fmt.Errorf("account: logger is required")
	}
	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Repository{
		store:      config.Store,
		logger:     config.Logger,
		httpClient: httpClient,
		profiles:   make(map[ref.UserID]*revolt.User),
	}, nil
}

// Login authenticates against the instance at apiURL and persists the
// resulting session. The node is queried first to capture the
// websocket and Autumn URLs alongside the token.
//
// When the account requires a second factor, Login returns a
// *MFARequiredError carrying the ticket for LoginMFA; nothing is
// persisted.
func (r *Repository) Login(ctx context.Context, apiURL, email string, password *secret.Buffer, friendlyName string) error {
	client, err := revolt.NewClient(revolt.ClientConfig{
		BaseURL:    apiURL,
		HTTPClient: r.httpClient,
		Logger:     r.logger,
	})
	if err != nil {
		return err
	}

	node, err := client.QueryNode(ctx)
	if err != nil {
		return fmt.Errorf("account: instance %s unreachable: %w", apiURL, err)
	}

	response, err := client.Login(ctx, email, password, friendlyName)
	if err != nil {
		return err
	}
	if response.Result == "MFA" {
		return &MFARequiredError{
			Ticket:         response.Ticket,
			AllowedMethods: response.AllowedMethods,
		}
	}

	return r.completeLogin(client, node, apiURL, email, response)
}

// LoginMFA completes a login that returned a *MFARequiredError.
func (r *Repository) LoginMFA(ctx context.Context, apiURL, email string, request revolt.MFALoginRequest) error {
	client, err := revolt.NewClient(revolt.ClientConfig{
		BaseURL:    apiURL,
		HTTPClient: r.httpClient,
		Logger:     r.logger,
	})
	if err != nil {
		return err
	}

	node, err := client.QueryNode(ctx)
	if err != nil {
		return fmt.Errorf("account: instance %s unreachable: %w", apiURL, err)
	}

	response, err := client.LoginMFA(ctx, request)
	if err != nil {
		return err
	}
	return r.completeLogin(client, node, apiURL, email, response)
}

func (r *Repository) completeLogin(client *revolt.Client, node *revolt.NodeInfo, apiURL, email string, response *revolt.LoginResponse) error {
	userSession := UserSession{
		InstanceAPIURL: apiURL,
		WebsocketURL:   node.WebSocketURL,
		AutumnURL:      node.Features.Autumn.URL,
		Email:          email,
		SessionID:      response.ID,
		UserID:         response.UserID,
		SessionToken:   response.Token,
		DisplayName:    response.DisplayName,
		Preferences:    make(map[string]string),
	}

	session, err := client.SessionFromToken(response.UserID, response.Token)
	if err != nil {
		return err
	}

	if err := r.store.SaveLogin(userSession); err != nil {
		session.Close()
		return err
	}

	r.mu.Lock()
	r.session = session
	r.userSession = &userSession
	r.mu.Unlock()
	return nil
}

// Resume loads the persisted session, if any, and builds the live
// Session from it. Returns false when no session is persisted. The
// token is not validated; the first authenticated call surfaces an
// InvalidSession error if the server has revoked it.
func (r *Repository) Resume() (bool, error) {
	userSession, err := r.store.Load()
	if err != nil {
		return false, err
	}
	if userSession == nil {
		return false, nil
	}

	client, err := revolt.NewClient(revolt.ClientConfig{
		BaseURL:    userSession.InstanceAPIURL,
		HTTPClient: r.httpClient,
		Logger:     r.logger,
	})
	if err != nil {
		return false, err
	}
	session, err := client.SessionFromToken(userSession.UserID, userSession.SessionToken)
	if err != nil {
		return false, err
	}

	r.mu.Lock()
	r.session = session
	r.userSession = userSession
	r.mu.Unlock()

	r.logger.Info("resumed session",
		"user_id", userSession.UserID,
		"instance", userSession.InstanceAPIURL)
	return true, nil
}

// Logout clears the persisted session and releases the live one. The
// profile cache is dropped with it.
func (r *Repository) Logout() error {
	r.mu.Lock()
	session := r.session
	r.session = nil
	r.userSession = nil
	r.profiles = make(map[ref.UserID]*revolt.User)
	r.mu.Unlock()

	if session != nil {
		session.Close()
	}
	return r.store.Clear()
}

// Session returns the current authenticated session, or nil when not
// logged in.
func (r *Repository) Session() *revolt.Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.session
}

// UserSession returns the persisted session state for the current
// login, or nil when not logged in.
func (r *Repository) UserSession() *UserSession {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.userSession
}

// SavePreferences merges the given preferences into the persisted
// session.
func (r *Repository) SavePreferences(updates map[string]string) error {
	if err := r.store.SavePreferences(updates); err != nil {
		return err
	}
	r.mu.Lock()
	if r.userSession != nil {
		for key, value := range updates {
			r.userSession.Preferences[key] = value
		}
	}
	r.mu.Unlock()
	return nil
}

// FetchUserInformation returns the user record for id, including the
// extended profile. Results are cached for the process lifetime; the
// network is hit at most once per user. A failed profile fetch is
// logged and the user is returned (and cached) without one.
func (r *Repository) FetchUserInformation(ctx context.Context, id ref.UserID) (*revolt.User, error) {
	r.mu.RLock()
	cached, ok := r.profiles[id]
	session := r.session
	r.mu.RUnlock()
	if ok {
		return cached, nil
	}
	if session == nil {
		return nil, fmt.Errorf("account: not logged in")
	}

	user, err := session.FetchUser(ctx, id)
	if err != nil {
		return nil, err
	}
	profile, err := session.FetchUserProfile(ctx, id)
	if err != nil {
		r.logger.Warn("profile fetch failed", "user_id", id, "error", err)
	} else {
		user.Profile = profile
	}

	r.mu.Lock()
	r.profiles[id] = user
	r.mu.Unlock()
	return user, nil
}
