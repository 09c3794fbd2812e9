package flora

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// AuthMode selects between the two credential exchanges.
type AuthMode int

const (
	ModeLogin AuthMode = iota
	ModeRegister
)

func (m AuthMode) String() string {
	if m == ModeRegister {
		return "register"
	}
	return "login"
}

// userMessage is the fixed user-facing failure text per mode. The precise
// backend error is logged, never shown, so backend internals don't leak into
// the UI.
func (m AuthMode) userMessage() string {
	if m == ModeRegister {
		return "Failed to create account"
	}
	return "Invalid username or password"
}

// AuthService exchanges credentials for a session token, persists it, and
// clears it on logout or account deletion.
type AuthService struct {
	store     SessionStore
	client    Doer
	baseURL   string
	endpoints Endpoints
	logger    Logger
}

// NewAuthService creates an AuthService with the provided dependencies.
func NewAuthService(store SessionStore, client Doer, baseURL string, endpoints Endpoints, logger Logger) *AuthService {
	return &AuthService{
		store:     store,
		client:    client,
		baseURL:   baseURL,
		endpoints: endpoints,
		logger:    logger,
	}
}

// tokenResponse is the backend's auth success body. The user id arrives as a
// bare number from some backend revisions, hence json.Number.
type tokenResponse struct {
	AccessToken string      `json:"access_token"`
	TokenType   string      `json:"token_type"`
	UserID      json.Number `json:"user_id"`
	Username    string      `json:"username"`
}

// Login exchanges username/password for a session and persists it,
// overwriting any previous session.
func (s *AuthService) Login(ctx context.Context, username, password string) (*Session, error) {
	return s.authenticate(ctx, username, password, ModeLogin)
}

// Register creates an account and persists the resulting session,
// overwriting any previous session.
func (s *AuthService) Register(ctx context.Context, username, password string) (*Session, error) {
	return s.authenticate(ctx, username, password, ModeRegister)
}

func (s *AuthService) authenticate(ctx context.Context, username, password string, mode AuthMode) (*Session, error) {
	if strings.TrimSpace(username) == "" {
		return nil, &ValidationError{Field: "username", Reason: "must not be empty"}
	}
	if password == "" {
		return nil, &ValidationError{Field: "password", Reason: "must not be empty"}
	}

	path := s.endpoints.Login
	if mode == ModeRegister {
		path = s.endpoints.Register
	}

	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, joinURL(s.baseURL, path), strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.client.Do(req)
	if err != nil {
		s.logger.Error("auth request failed", "mode", mode.String(), "error", err)
		return nil, &AuthError{Message: mode.userMessage(), Detail: err.Error()}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading auth response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		s.logger.Warn("authentication rejected", "mode", mode.String(), "status", resp.StatusCode, "detail", string(body))
		return nil, &AuthError{Message: mode.userMessage(), Detail: string(body)}
	}

	// A success body must carry both the token and the user id; a partial
	// session must never be persisted.
	var tr tokenResponse
	if err := json.Unmarshal(body, &tr); err != nil || tr.AccessToken == "" || tr.UserID.String() == "" {
		s.logger.Warn("unexpected auth response body", "mode", mode.String(), "detail", string(body))
		return nil, &AuthError{Message: mode.userMessage(), Detail: string(body)}
	}

	sess := &Session{
		Token:    tr.AccessToken,
		UserID:   tr.UserID.String(),
		Username: tr.Username,
	}
	if sess.Username == "" {
		sess.Username = username
	}

	if err := s.store.Set(sess); err != nil {
		return nil, fmt.Errorf("persisting session: %w", err)
	}

	s.logger.Info("authenticated", "mode", mode.String(), "username", sess.Username)
	return sess, nil
}

// Logout clears the stored session. It never fails in a user-visible way:
// clearing an already-empty store is fine, and an in-flight authenticated
// call racing the clear either completes on its captured token or comes back
// as a normal auth rejection.
func (s *AuthService) Logout() error {
	if err := s.store.Clear(); err != nil {
		s.logger.Warn("clearing session", "error", err)
	}
	s.logger.Info("logged out")
	return nil
}

// DeleteAccount removes the account behind the current session. On success
// the session is cleared and the caller should drop into the unauthenticated
// state; on failure the session is left intact.
func (s *AuthService) DeleteAccount(ctx context.Context) error {
	sess, err := s.store.Get()
	if err != nil {
		return err
	}
	if sess == nil || sess.Token == "" {
		return &AuthError{Message: "No authentication token"}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, joinURL(s.baseURL, s.endpoints.Account), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+sess.Token)

	resp, err := s.client.Do(req)
	if err != nil {
		s.logger.Error("account deletion request failed", "error", err)
		return &AuthError{Message: "Failed to delete account", Detail: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		s.logger.Warn("account deletion rejected", "status", resp.StatusCode, "detail", string(body))
		return &AuthError{Message: "Failed to delete account", Detail: string(body)}
	}

	if err := s.store.Clear(); err != nil {
		return fmt.Errorf("clearing session after account deletion: %w", err)
	}

	s.logger.Info("account deleted", "username", sess.Username)
	return nil
}
