package services

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"malonda/internal/gateway"
	"malonda/internal/models"
	"malonda/internal/session"
)

// AuthService handles login, registration and logout against the backend,
// feeding the session store.
type AuthService struct {
	api      gateway.API
	sessions *session.Store
	validate *validator.Validate

	// onLogin fires after a successful authentication, e.g. to re-arm the
	// gateway's 401 signal.
	onLogin func()
}

// NewAuthService creates a new AuthService. onLogin may be nil.
func NewAuthService(api gateway.API, sessions *session.Store, onLogin func()) *AuthService {
	return &AuthService{
		api:      api,
		sessions: sessions,
		validate: validator.New(),
		onLogin:  onLogin,
	}
}

// Login exchanges credentials for a token pair and persists the session.
// When remember is true the email is durably kept for the next login prompt.
func (s *AuthService) Login(ctx context.Context, email, password string, remember bool) (*models.User, error) {
	req := models.LoginRequest{Email: email, Password: password}
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("invalid login input: %w", err)
	}

	var resp models.AuthResponse
	if err := s.api.Post(ctx, "/login/", req, &resp); err != nil {
		return nil, fmt.Errorf("login failed: %s", gateway.ServerMessage(err, "invalid email or password"))
	}
	if resp.Access == "" || resp.User == nil {
		return nil, fmt.Errorf("login failed: missing user data or token in response")
	}

	s.sessions.Login(resp.Access, resp.Refresh, resp.User)
	if remember {
		s.sessions.RememberEmail(email)
	} else {
		s.sessions.RememberEmail("")
	}
	if s.onLogin != nil {
		s.onLogin()
	}

	logrus.WithField("email", resp.User.Email).Info("Login successful")
	return resp.User, nil
}

// Register creates an account. The backend answers with the same token pair
// a login would, so a successful registration is immediately authenticated.
// Field-level validation errors from the backend surface as *gateway.APIError
// with Fields populated.
func (s *AuthService) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("invalid registration input: %w", err)
	}

	var resp models.AuthResponse
	if err := s.api.Post(ctx, "/register/", req, &resp); err != nil {
		return nil, fmt.Errorf("registration failed: %w", err)
	}
	if resp.Access == "" || resp.User == nil {
		return nil, fmt.Errorf("registration failed: missing user data or token in response")
	}

	s.sessions.Login(resp.Access, resp.Refresh, resp.User)
	if s.onLogin != nil {
		s.onLogin()
	}

	logrus.WithField("email", resp.User.Email).Info("Registration successful")
	return resp.User, nil
}

// Logout best-effort notifies the backend to blacklist the refresh token,
// then clears the local session unconditionally. A network failure never
// blocks the local logout; it only leaves the refresh token valid server-side
// until it expires.
func (s *AuthService) Logout(ctx context.Context) {
	if refresh := s.sessions.RefreshToken(); refresh != "" {
		if err := s.api.Post(ctx, "/logout/", models.LogoutRequest{Refresh: refresh}, nil); err != nil {
			logrus.WithError(err).Warn("Backend logout failed, clearing local session anyway")
		}
	}
	s.sessions.Logout()
	logrus.Info("Logged out")
}
