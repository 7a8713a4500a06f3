package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/bookshelfapp/bookshelf-server/internal/auth"
	"github.com/bookshelfapp/bookshelf-server/internal/domain"
	domainerrors "github.com/bookshelfapp/bookshelf-server/internal/errors"
	"github.com/bookshelfapp/bookshelf-server/internal/id"
	"github.com/bookshelfapp/bookshelf-server/internal/normalize"
	"github.com/bookshelfapp/bookshelf-server/internal/store"
)

// User creation errors, exposed for handlers and tests.
var (
	errBootstrapLost = domainerrors.Conflict("Too late! An admin already exists. Only admins can create new users")
	errNoAdminSession = domainerrors.Forbidden(
		"Only admins can create users. If you are seeing this in the admin onboarding, it means someone else already created an admin")
	errNotAdmin = domainerrors.Forbidden("Only admins can create users")
)

// CreateUserRequest is the body of a user creation.
type CreateUserRequest struct {
	Username string `json:"username" validate:"required,min=1,max=64"`
	Password string `json:"password" validate:"required,min=2,max=1024"`
}

// UserService manages accounts, including first-admin bootstrap.
type UserService struct {
	store  store.Users
	logger *slog.Logger
}

// NewUserService creates a user service.
func NewUserService(store store.Users, logger *slog.Logger) *UserService {
	return &UserService{store: store, logger: orDiscard(logger)}
}

// CreateUser creates an account.
//
// On an empty store the new user becomes admin without any session. The
// count is taken twice, the second time right before the insert, and a
// non-zero second count aborts with a conflict. The two reads narrow the
// window for two first-admin requests but do not close it.
//
// On a non-empty store actor must be an existing admin; the admin flag is
// read from the store, not from the session snapshot.
func (s *UserService) CreateUser(ctx context.Context, actor *domain.SessionUser, req CreateUserRequest) (*domain.User, error) {
	req.Username = normalize.Username(req.Username)
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	count, err := s.store.CountUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}

	isAdmin := false
	if count == 0 {
		isAdmin = true
		recount, err := s.store.CountUsers(ctx)
		if err != nil {
			return nil, fmt.Errorf("recount users: %w", err)
		}
		if recount != 0 {
			s.logger.Warn("First-admin bootstrap lost the race", "username", req.Username)
			return nil, errBootstrapLost
		}
	} else if err := s.requireAdmin(ctx, actor); err != nil {
		return nil, err
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "hash password")
	}

	userID, err := id.Generate(id.User)
	if err != nil {
		return nil, fmt.Errorf("generate user ID: %w", err)
	}

	user := &domain.User{
		ID:           userID,
		Username:     req.Username,
		PasswordHash: passwordHash,
		IsAdmin:      isAdmin,
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil, domainerrors.Conflict("Username already taken")
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	if isAdmin {
		s.logger.Info("First admin created", "user_id", user.ID, "username", user.Username)
	} else {
		s.logger.Info("User created", "user_id", user.ID, "username", user.Username, "created_by", actor.ID)
	}

	return user, nil
}

func (s *UserService) requireAdmin(ctx context.Context, actor *domain.SessionUser) error {
	if actor == nil {
		return errNoAdminSession
	}
	admin, err := s.store.GetUser(ctx, actor.ID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return errNotAdmin
		}
		return fmt.Errorf("lookup caller: %w", err)
	}
	if !admin.IsAdmin {
		return errNotAdmin
	}
	return nil
}

// IsEmpty reports whether no account exists yet.
func (s *UserService) IsEmpty(ctx context.Context) (bool, error) {
	count, err := s.store.CountUsers(ctx)
	if err != nil {
		return false, fmt.Errorf("count users: %w", err)
	}
	return count == 0, nil
}

// ListUsers returns every account, oldest first.
func (s *UserService) ListUsers(ctx context.Context) ([]*domain.User, error) {
	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// GetUser returns one account.
func (s *UserService) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.store.GetUser(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, domainerrors.NotFound("User not found")
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}
