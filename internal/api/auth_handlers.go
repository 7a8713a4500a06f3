package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/bookshelfapp/bookshelf-server/internal/domain"
	"github.com/bookshelfapp/bookshelf-server/internal/service"
)

func (s *Server) registerAuthRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "login",
		Method:      http.MethodPost,
		Path:        "/api/auth/login",
		Summary:     "User login",
		Description: "Checks credentials and starts a session held in an HttpOnly cookie",
		Tags:        []string{"Authentication"},
		Middlewares: huma.Middlewares{s.loginRateLimit},
	}, s.handleLogin)

	huma.Register(s.api, huma.Operation{
		OperationID: "getSession",
		Method:      http.MethodGet,
		Path:        "/api/auth/session",
		Summary:     "Current session",
		Description: "Returns the logged-in user with the admin flag read from the store",
		Tags:        []string{"Authentication"},
		Security:    []map[string][]string{{"session": {}}},
	}, s.handleGetSession)

	huma.Register(s.api, huma.Operation{
		OperationID: "logout",
		Method:      http.MethodPost,
		Path:        "/api/auth/logout",
		Summary:     "Logout",
		Description: "Destroys the server-side session and clears the cookie",
		Tags:        []string{"Authentication"},
	}, s.handleLogout)
}

// === DTOs ===

// LoginInput wraps the login request for Huma.
type LoginInput struct {
	Body service.LoginRequest
}

// SessionResponse carries the logged-in user.
type SessionResponse struct {
	User domain.SessionUser `json:"user" doc:"Logged-in user"`
}

// LoginOutput sets the session cookie.
type LoginOutput struct {
	SetCookie http.Cookie `header:"Set-Cookie"`
	Body      SessionResponse
}

// SessionOutput wraps the current session for Huma.
type SessionOutput struct {
	Body SessionResponse
}

// LogoutResponse acknowledges a logout.
type LogoutResponse struct {
	OK bool `json:"ok" doc:"Always true"`
}

// LogoutOutput clears the session cookie.
type LogoutOutput struct {
	SetCookie http.Cookie `header:"Set-Cookie"`
	Body      LogoutResponse
}

// === Handlers ===

func (s *Server) handleLogin(ctx context.Context, input *LoginInput) (*LoginOutput, error) {
	sess, err := s.services.Auth.Login(ctx, input.Body)
	if err != nil {
		return nil, err
	}

	return &LoginOutput{
		SetCookie: s.sessionCookie(s.sealer.Seal(sess.ID), int(s.sealer.TTL().Seconds())),
		Body:      SessionResponse{User: sess.User},
	}, nil
}

func (s *Server) handleGetSession(ctx context.Context, _ *struct{}) (*SessionOutput, error) {
	user, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	return &SessionOutput{Body: SessionResponse{User: user}}, nil
}

func (s *Server) handleLogout(ctx context.Context, _ *struct{}) (*LogoutOutput, error) {
	if id := currentSessionID(ctx); id != "" {
		if err := s.services.Auth.Logout(ctx, id); err != nil {
			return nil, err
		}
	}

	return &LogoutOutput{
		SetCookie: s.sessionCookie("", -1),
		Body:      LogoutResponse{OK: true},
	}, nil
}

// sessionCookie builds the session cookie. A negative maxAge deletes it.
func (s *Server) sessionCookie(value string, maxAge int) http.Cookie {
	return http.Cookie{
		Name:     s.cookie.Name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   s.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}
