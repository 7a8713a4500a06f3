package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/bookshelfapp/bookshelf-server/internal/auth"
	"github.com/bookshelfapp/bookshelf-server/internal/domain"
	domainerrors "github.com/bookshelfapp/bookshelf-server/internal/errors"
	"github.com/bookshelfapp/bookshelf-server/internal/normalize"
	"github.com/bookshelfapp/bookshelf-server/internal/session"
	"github.com/bookshelfapp/bookshelf-server/internal/store"
)

var (
	errInvalidCredentials = domainerrors.InvalidCredentials("Invalid credentials")
	errNotAuthenticated   = domainerrors.Unauthorized("Not authenticated")
)

// LoginRequest contains user credentials.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// AuthService verifies credentials and manages server-side sessions.
type AuthService struct {
	users    store.Users
	sessions session.Store
	activity *ActivityService
	logger   *slog.Logger
}

// NewAuthService creates an authentication service.
func NewAuthService(users store.Users, sessions session.Store, activity *ActivityService, logger *slog.Logger) *AuthService {
	return &AuthService{
		users:    users,
		sessions: sessions,
		activity: activity,
		logger:   orDiscard(logger),
	}
}

// Login checks the credentials and starts a session. Unknown usernames and
// wrong passwords fail with the same error.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*session.Session, error) {
	req.Username = normalize.Username(req.Username)
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	user, err := s.users.GetUserByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.logger.Warn("Login failed", "username", req.Username, "reason", "unknown user")
			return nil, errInvalidCredentials
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	ok, err := auth.VerifyPassword(user.PasswordHash, req.Password)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		s.logger.Warn("Login failed", "username", req.Username, "reason", "wrong password")
		return nil, errInvalidCredentials
	}

	sess, err := s.sessions.Create(ctx, user.SessionUser())
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	s.activity.Record(ctx, user.ID, domain.ActionUserLogin, user.ID, domain.EntityUser)

	s.logger.Info("User logged in", "user_id", user.ID)
	return sess, nil
}

// Logout ends a session. Unknown sessions are ignored.
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// CurrentUser resolves a session to the caller's identity with IsAdmin and
// Username read fresh from the store, so a demotion applies without a new
// login. A session whose user is gone is destroyed.
func (s *AuthService) CurrentUser(ctx context.Context, sessionID string) (*domain.SessionUser, error) {
	if sessionID == "" {
		return nil, errNotAuthenticated
	}

	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return nil, errNotAuthenticated
		}
		return nil, fmt.Errorf("get session: %w", err)
	}

	user, err := s.users.GetUser(ctx, sess.User.ID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			if delErr := s.sessions.Delete(ctx, sessionID); delErr != nil {
				s.logger.Warn("Failed to delete orphaned session", "session_id", sessionID, "error", delErr)
			}
			return nil, errNotAuthenticated
		}
		return nil, fmt.Errorf("lookup session user: %w", err)
	}

	current := user.SessionUser()
	return &current, nil
}
