package backend

import (
	"context"
	"fmt"
	"net/http"

	"github.com/foxzi/leadboard/internal/apiclient"
	"github.com/foxzi/leadboard/internal/models"
)

// Credentials is the login request body
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest is the signup request body
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role,omitempty"`
}

// AuthService calls /auth/*. The backend answers with a session cookie,
// so the client should carry a cookie jar.
type AuthService struct {
	client *apiclient.Client
}

func NewAuthService(client *apiclient.Client) *AuthService {
	return &AuthService{client: client}
}

type userEnvelope struct {
	Data struct {
		User *models.User `json:"user"`
	} `json:"data"`
}

// Register creates an account and returns the signed-in user
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*models.User, error) {
	return s.post(ctx, "/auth/register", req)
}

// Login authenticates and returns the user
func (s *AuthService) Login(ctx context.Context, creds Credentials) (*models.User, error) {
	return s.post(ctx, "/auth/login", creds)
}

// Logout ends the backend session. The user in the response, if any, is returned.
func (s *AuthService) Logout(ctx context.Context) (*models.User, error) {
	return s.post(ctx, "/auth/logout", nil)
}

func (s *AuthService) post(ctx context.Context, path string, body any) (*models.User, error) {
	var env userEnvelope
	if err := s.client.Do(ctx, http.MethodPost, path, nil, body, &env); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return env.Data.User, nil
}

// HealthService calls GET /health
type HealthService struct {
	client *apiclient.Client
}

func NewHealthService(client *apiclient.Client) *HealthService {
	return &HealthService{client: client}
}

// Check returns the backend's health document
func (s *HealthService) Check(ctx context.Context) (map[string]any, error) {
	var out map[string]any
	if err := s.client.Do(ctx, http.MethodGet, "/health", nil, nil, &out); err != nil {
		return nil, fmt.Errorf("health: %w", err)
	}
	return out, nil
}
