// Package session holds the per-browser authentication state of the panel.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/foxzi/leadboard/internal/apiclient"
	"github.com/foxzi/leadboard/internal/backend"
	"github.com/foxzi/leadboard/internal/metrics"
	"github.com/foxzi/leadboard/internal/models"
)

// ErrNoUser is returned when the backend accepts a login without
// identifying the user
var ErrNoUser = errors.New("login response carried no user")

// Flash is a one-shot notification shown on the next rendered page
type Flash struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// Session is one browser session. It starts Loading and moves to
// Authenticated or Unauthenticated on Hydrate; Login and Register move it
// to Authenticated, Logout to Unauthenticated.
type Session struct {
	ID string

	kv     Storage
	jar    *Jar
	client *apiclient.Client
	auth   *backend.AuthService
	logger *slog.Logger

	mu    sync.RWMutex
	state State
}

// New creates a session whose backend calls go through api with the
// session's own cookie jar.
func New(id string, kv Storage, api *apiclient.Client, logger *slog.Logger) *Session {
	jar := NewJar(api.BaseURL(), kv, logger)
	client := api.WithJar(jar)
	return &Session{
		ID:     id,
		kv:     kv,
		jar:    jar,
		client: client,
		auth:   backend.NewAuthService(client),
		logger: logger.With("session", shortID(id)),
		state:  State{Status: StatusLoading},
	}
}

// Client returns the API client bound to this session's credentials
func (s *Session) Client() *apiclient.Client {
	return s.client
}

// State returns the current state
func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// User returns the signed-in user or nil
func (s *Session) User() *models.User {
	return s.State().User
}

// Hydrate restores the user persisted under auth:user. A missing or
// unreadable value leaves the session Unauthenticated.
func (s *Session) Hydrate() State {
	var user models.User
	found, err := s.kv.Get(KeyUser, &user)
	if err != nil {
		s.logger.Warn("failed to restore user", "error", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil && found {
		s.state = State{Status: StatusAuthenticated, User: &user}
	} else {
		s.state = State{Status: StatusUnauthenticated}
	}
	return s.state
}

// Login authenticates against the backend and persists the user. A
// response without a user leaves the session signed out and drops any
// cookie the backend set.
func (s *Session) Login(ctx context.Context, creds backend.Credentials) (*models.User, error) {
	user, err := s.auth.Login(ctx, creds)
	if err == nil && user == nil {
		s.jar.Clear()
		err = ErrNoUser
	}
	metrics.IncLogin("login", err == nil)
	if err != nil {
		return nil, err
	}
	if err := s.signIn(user); err != nil {
		return nil, err
	}
	return user, nil
}

// Register creates an account and signs it in
func (s *Session) Register(ctx context.Context, req backend.RegisterRequest) (*models.User, error) {
	user, err := s.auth.Register(ctx, req)
	metrics.IncLogin("signup", err == nil)
	if err != nil {
		return nil, err
	}
	if user == nil {
		user = &models.User{Name: req.Name, Email: req.Email, Role: req.Role}
	}
	if err := s.signIn(user); err != nil {
		return nil, err
	}
	return user, nil
}

// Logout ends the backend session. A failing backend call is logged and
// ignored; local state is always cleared.
func (s *Session) Logout(ctx context.Context) {
	if _, err := s.auth.Logout(ctx); err != nil {
		s.logger.Warn("backend logout failed", "error", err)
	}
	metrics.IncLogout()

	if err := s.kv.Delete(KeyUser); err != nil {
		s.logger.Warn("failed to clear user", "error", err)
	}
	s.jar.Clear()

	s.mu.Lock()
	s.state = State{Status: StatusUnauthenticated}
	s.mu.Unlock()
}

// AddFlash queues a notification for the next page
func (s *Session) AddFlash(f Flash) {
	var flashes []Flash
	if _, err := s.kv.Get(KeyFlash, &flashes); err != nil {
		s.logger.Warn("failed to read flash messages", "error", err)
	}
	flashes = append(flashes, f)
	if err := s.kv.Put(KeyFlash, flashes); err != nil {
		s.logger.Warn("failed to store flash message", "error", err)
	}
}

// Flashes returns and clears queued notifications
func (s *Session) Flashes() []Flash {
	var flashes []Flash
	found, err := s.kv.Get(KeyFlash, &flashes)
	if err != nil {
		s.logger.Warn("failed to read flash messages", "error", err)
	}
	if found || err != nil {
		if err := s.kv.Delete(KeyFlash); err != nil {
			s.logger.Warn("failed to clear flash messages", "error", err)
		}
	}
	return flashes
}

func (s *Session) signIn(user *models.User) error {
	if err := s.kv.Put(KeyUser, user); err != nil {
		return fmt.Errorf("failed to persist user: %w", err)
	}
	s.mu.Lock()
	s.state = State{Status: StatusAuthenticated, User: user}
	s.mu.Unlock()
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
