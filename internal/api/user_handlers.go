package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/bookshelfapp/bookshelf-server/internal/domain"
	"github.com/bookshelfapp/bookshelf-server/internal/service"
)

func (s *Server) registerUserRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listUsers",
		Method:      http.MethodGet,
		Path:        "/api/users",
		Summary:     "List users",
		Description: "Returns every account in creation order",
		Tags:        []string{"Users"},
		Security:    []map[string][]string{{"session": {}}},
	}, s.handleListUsers)

	huma.Register(s.api, huma.Operation{
		OperationID: "usersEmpty",
		Method:      http.MethodGet,
		Path:        "/api/users/empty",
		Summary:     "Check for users",
		Description: "Reports whether no account exists yet, so the client can show admin onboarding",
		Tags:        []string{"Users"},
	}, s.handleUsersEmpty)

	huma.Register(s.api, huma.Operation{
		OperationID:   "createUser",
		Method:        http.MethodPost,
		Path:          "/api/users",
		Summary:       "Create user",
		Description:   "Creates the first admin on an empty server; afterwards only admins may create users",
		Tags:          []string{"Users"},
		DefaultStatus: http.StatusCreated,
	}, s.handleCreateUser)

	huma.Register(s.api, huma.Operation{
		OperationID: "getUser",
		Method:      http.MethodGet,
		Path:        "/api/users/{id}",
		Summary:     "Get user",
		Tags:        []string{"Users"},
		Security:    []map[string][]string{{"session": {}}},
	}, s.handleGetUser)
}

// === DTOs ===

// UserResponse is the public view of an account.
type UserResponse struct {
	ID        string `json:"id" doc:"User ID"`
	Username  string `json:"username" doc:"Login name"`
	IsAdmin   bool   `json:"is_admin" doc:"Whether the user can create accounts"`
	CreatedAt string `json:"created_at,omitempty" doc:"Creation time, RFC 3339"`
}

// CreatedUserResponse is returned by user creation.
type CreatedUserResponse struct {
	ID       string `json:"id" doc:"User ID"`
	Username string `json:"username" doc:"Login name"`
	IsAdmin  bool   `json:"is_admin" doc:"Whether the user is the bootstrap admin"`
}

// ListUsersOutput wraps the user list for Huma.
type ListUsersOutput struct {
	Body []UserResponse
}

// UsersEmptyResponse reports whether any account exists.
type UsersEmptyResponse struct {
	Empty bool `json:"empty" doc:"True when no user exists yet"`
}

// UsersEmptyOutput wraps the empty check for Huma.
type UsersEmptyOutput struct {
	Body UsersEmptyResponse
}

// CreateUserInput wraps the user creation request for Huma.
type CreateUserInput struct {
	Body service.CreateUserRequest
}

// CreateUserOutput wraps the created user for Huma.
type CreateUserOutput struct {
	Body CreatedUserResponse
}

// GetUserInput identifies a user.
type GetUserInput struct {
	ID string `path:"id" doc:"User ID"`
}

// GetUserOutput wraps a user for Huma.
type GetUserOutput struct {
	Body UserResponse
}

// === Handlers ===

func (s *Server) handleListUsers(ctx context.Context, _ *struct{}) (*ListUsersOutput, error) {
	if _, err := requireUser(ctx); err != nil {
		return nil, err
	}

	users, err := s.services.Users.ListUsers(ctx)
	if err != nil {
		return nil, err
	}

	resp := make([]UserResponse, len(users))
	for i, u := range users {
		resp[i] = toUserResponse(u)
	}
	return &ListUsersOutput{Body: resp}, nil
}

func (s *Server) handleUsersEmpty(ctx context.Context, _ *struct{}) (*UsersEmptyOutput, error) {
	empty, err := s.services.Users.IsEmpty(ctx)
	if err != nil {
		return nil, err
	}
	return &UsersEmptyOutput{Body: UsersEmptyResponse{Empty: empty}}, nil
}

// handleCreateUser is public: the service decides between bootstrap and
// admin-only creation.
func (s *Server) handleCreateUser(ctx context.Context, input *CreateUserInput) (*CreateUserOutput, error) {
	user, err := s.services.Users.CreateUser(ctx, currentUser(ctx), input.Body)
	if err != nil {
		return nil, err
	}

	return &CreateUserOutput{Body: CreatedUserResponse{
		ID:       user.ID,
		Username: user.Username,
		IsAdmin:  user.IsAdmin,
	}}, nil
}

func (s *Server) handleGetUser(ctx context.Context, input *GetUserInput) (*GetUserOutput, error) {
	if _, err := requireUser(ctx); err != nil {
		return nil, err
	}

	user, err := s.services.Users.GetUser(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &GetUserOutput{Body: toUserResponse(user)}, nil
}

func toUserResponse(u *domain.User) UserResponse {
	resp := UserResponse{ID: u.ID, Username: u.Username, IsAdmin: u.IsAdmin}
	if !u.CreatedAt.IsZero() {
		resp.CreatedAt = u.CreatedAt.UTC().Format(time.RFC3339)
	}
	return resp
}
