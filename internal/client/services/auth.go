package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/exoscope/internal/client/client"
	"github.com/dmitrijs2005/exoscope/internal/client/models"
	"github.com/dmitrijs2005/exoscope/internal/client/session"
	"github.com/dmitrijs2005/exoscope/internal/common"
	"github.com/dmitrijs2005/exoscope/internal/logging"
)

// ErrNotPersisted is returned alongside a valid user when the session was
// established but the token could not be written to local storage.
var ErrNotPersisted = errors.New("session not persisted")

// Identity is the current user together with what the token itself claims.
// Claims is nil for opaque tokens.
type Identity struct {
	User   *models.User
	Claims *session.Claims
}

// AuthService defines authentication operations for the client.
//
// Contract:
//   - Login/Signup validate input before any network call and, on success,
//     establish the session. A storage failure still leaves the session
//     established and is reported as ErrNotPersisted.
//   - Initialize restores and revalidates a persisted token once.
//   - Logout is safe to call when no session exists.
type AuthService interface {
	Initialize(ctx context.Context) error
	Login(ctx context.Context, email, password string) (*models.User, error)
	Signup(ctx context.Context, username, email, password string) (*models.User, error)
	Logout(ctx context.Context) error
	Whoami(ctx context.Context) (*Identity, error)
	Ping(ctx context.Context) error
	State() session.State
}

type authService struct {
	client  client.Client
	session *session.Manager
	logger  logging.Logger
}

func NewAuthService(c client.Client, m *session.Manager, l logging.Logger) AuthService {
	return &authService{client: c, session: m, logger: l}
}

func (s *authService) Initialize(ctx context.Context) error {
	return s.session.Initialize(ctx, s.client)
}

func (s *authService) Login(ctx context.Context, email, password string) (*models.User, error) {
	email = strings.TrimSpace(email)
	if err := ValidateLogin(email, password); err != nil {
		return nil, err
	}

	resp, err := s.client.Login(ctx, email, password)
	if err != nil {
		return nil, fmt.Errorf("login error: %w", err)
	}
	return s.establish(ctx, resp)
}

func (s *authService) Signup(ctx context.Context, username, email, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if err := ValidateSignup(username, email, password); err != nil {
		return nil, err
	}

	resp, err := s.client.Signup(ctx, models.SignupRequest{Username: username, Email: email, Password: password})
	if err != nil {
		return nil, fmt.Errorf("signup error: %w", err)
	}
	return s.establish(ctx, resp)
}

func (s *authService) establish(ctx context.Context, resp *models.AuthResponse) (*models.User, error) {
	if resp.AccessToken == "" {
		return nil, fmt.Errorf("auth response: %w", session.ErrEmptyToken)
	}
	user := resp.User
	if err := user.Validate(); err != nil {
		return nil, fmt.Errorf("auth response: %w", err)
	}

	if err := s.session.Login(ctx, resp.AccessToken, &user); err != nil {
		s.logger.Warn(ctx, "session not persisted", "error", err)
		return &user, fmt.Errorf("%w: %w", ErrNotPersisted, err)
	}
	return &user, nil
}

func (s *authService) Logout(ctx context.Context) error {
	if err := s.session.Logout(ctx); err != nil {
		return fmt.Errorf("logout error: %w", err)
	}
	return nil
}

func (s *authService) Whoami(ctx context.Context) (*Identity, error) {
	st := s.session.State()
	if st.IsAuthLoading {
		return nil, common.ErrAuthLoading
	}
	if !st.IsAuthenticated {
		return nil, common.ErrNotAuthenticated
	}

	id := &Identity{User: st.User}
	if claims, err := s.session.Claims(); err == nil {
		id.Claims = claims
	} else {
		s.logger.Debug(ctx, "token carries no readable claims", "error", err)
	}
	return id, nil
}

func (s *authService) Ping(ctx context.Context) error {
	return s.client.Ping(ctx)
}

func (s *authService) State() session.State {
	return s.session.State()
}
