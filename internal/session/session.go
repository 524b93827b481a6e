// Package session manages the authenticated session persisted in the
// secure store. A missing, malformed, or expired session reads as
// logged-out; it never blocks startup.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"

	"github.com/visitamhara/tourapp/internal/api"
	"github.com/visitamhara/tourapp/internal/models"
	"github.com/visitamhara/tourapp/pkg/securestore"
)

// Secure store keys
const (
	keyToken = "jwtToken"
	keyUser  = "user"
)

// ErrNotAuthenticated indicates an operation requires a valid session and
// none is present. Callers redirect to login instead of calling the API.
var ErrNotAuthenticated = errors.New("not authenticated")

// Service owns the session lifecycle: load on startup, create on login,
// clear on logout or auth failure.
type Service struct {
	store  *securestore.Store
	client *api.Client
	logger *logrus.Logger

	mu      sync.RWMutex
	current *models.Session
}

// NewService creates a session service and installs itself as the API
// client's token source.
func NewService(store *securestore.Store, client *api.Client, logger *logrus.Logger) *Service {
	s := &Service{
		store:  store,
		client: client,
		logger: logger,
	}
	client.SetTokenProvider(s.Token)
	return s
}

// Load reads the persisted session. Any failure (missing keys, malformed
// user blob, expired token) is logged once and treated as logged-out.
func (s *Service) Load() *models.Session {
	tokenBytes, err := s.store.Get(keyToken)
	if err != nil {
		if !errors.Is(err, securestore.ErrKeyNotFound) {
			s.logger.WithError(err).Warn("Failed to read token from secure store")
		}
		return nil
	}

	userBytes, err := s.store.Get(keyUser)
	if err != nil {
		if !errors.Is(err, securestore.ErrKeyNotFound) {
			s.logger.WithError(err).Warn("Failed to read user from secure store")
		}
		return nil
	}

	var user models.User
	if err := json.Unmarshal(userBytes, &user); err != nil {
		s.logger.WithError(err).Warn("Stored user profile is malformed, treating as logged out")
		return nil
	}

	session := &models.Session{
		Token:     string(tokenBytes),
		User:      user,
		ExpiresAt: tokenExpiry(string(tokenBytes)),
	}

	if session.IsExpired() {
		s.logger.WithField("user_id", user.ID).Info("Stored token is expired, treating as logged out")
		return nil
	}

	s.mu.Lock()
	s.current = session
	s.mu.Unlock()

	s.logger.WithField("user_id", user.ID).Debug("Session restored from secure store")
	return session
}

// Require returns the active session or ErrNotAuthenticated.
func (s *Service) Require() (*models.Session, error) {
	s.mu.RLock()
	current := s.current
	s.mu.RUnlock()

	if current == nil || current.IsExpired() {
		return nil, ErrNotAuthenticated
	}
	return current, nil
}

// Token returns the current bearer token, or "" when logged out.
func (s *Service) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.current == nil {
		return ""
	}
	return s.current.Token
}

// Login authenticates against the backend and persists the session.
func (s *Service) Login(ctx context.Context, email, password string) (*models.Session, error) {
	if email == "" || password == "" {
		return nil, &api.ValidationError{Message: "email and password are required"}
	}

	var result models.LoginResult
	err := s.client.Post(ctx, "/api/users/login", &models.LoginRequest{
		Email:    email,
		Password: password,
	}, &result)
	if err != nil {
		return nil, fmt.Errorf("login failed: %w", err)
	}

	session, err := s.persist(&result)
	if err != nil {
		return nil, err
	}

	s.logger.WithField("user_id", result.User.ID).Info("User logged in")
	return session, nil
}

// Register creates a new account and persists the returned session, so a
// fresh signup is logged in without a second round trip.
func (s *Service) Register(ctx context.Context, req *models.RegisterRequest) (*models.Session, error) {
	if err := validateRegistration(req); err != nil {
		return nil, err
	}

	var result models.LoginResult
	if err := s.client.Post(ctx, "/api/users/register", req, &result); err != nil {
		return nil, fmt.Errorf("registration failed: %w", err)
	}

	session, err := s.persist(&result)
	if err != nil {
		return nil, err
	}

	s.logger.WithField("user_id", result.User.ID).Info("User registered")
	return session, nil
}

// validateRegistration rejects incomplete signups before any network call.
func validateRegistration(req *models.RegisterRequest) error {
	switch {
	case req.FirstName == "":
		return &api.ValidationError{Field: "firstName", Message: "first name is required"}
	case req.LastName == "":
		return &api.ValidationError{Field: "lastName", Message: "last name is required"}
	case req.Email == "":
		return &api.ValidationError{Field: "email", Message: "email is required"}
	case req.Password == "":
		return &api.ValidationError{Field: "password", Message: "password is required"}
	case req.Password != req.ConfirmPassword:
		return &api.ValidationError{Field: "confirmPassword", Message: "passwords do not match"}
	case !req.AcceptedTerms:
		return &api.ValidationError{Field: "acceptedTerms", Message: "you must accept the terms"}
	}
	return nil
}

// persist stores the token and user blob and makes the session current.
func (s *Service) persist(result *models.LoginResult) (*models.Session, error) {
	userBytes, err := json.Marshal(&result.User)
	if err != nil {
		return nil, fmt.Errorf("failed to encode user profile: %w", err)
	}

	if err := s.store.Set(keyToken, []byte(result.Token)); err != nil {
		return nil, fmt.Errorf("failed to persist token: %w", err)
	}
	if err := s.store.Set(keyUser, userBytes); err != nil {
		return nil, fmt.Errorf("failed to persist user: %w", err)
	}

	session := &models.Session{
		Token:     result.Token,
		User:      result.User,
		ExpiresAt: tokenExpiry(result.Token),
	}

	s.mu.Lock()
	s.current = session
	s.mu.Unlock()

	return session, nil
}

// Clear drops the in-memory session and removes the persisted keys.
func (s *Service) Clear() {
	s.mu.Lock()
	s.current = nil
	s.mu.Unlock()

	if err := s.store.Delete(keyToken); err != nil {
		s.logger.WithError(err).Warn("Failed to remove token from secure store")
	}
	if err := s.store.Delete(keyUser); err != nil {
		s.logger.WithError(err).Warn("Failed to remove user from secure store")
	}

	s.logger.Info("Session cleared")
}

// HandleAuthError clears the session when err is an auth failure. Returns
// true when the caller should redirect to login.
func (s *Service) HandleAuthError(err error) bool {
	if !api.IsAuth(err) {
		return false
	}
	s.Clear()
	return true
}

// tokenExpiry extracts the exp claim without verifying the signature.
// Verification is the server's job; the claim is only used to skip calls
// that would fail anyway. Tokens without exp return a zero time.
func tokenExpiry(token string) time.Time {
	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return time.Time{}
	}
	exp, err := parsed.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}
	}
	return exp.Time
}
