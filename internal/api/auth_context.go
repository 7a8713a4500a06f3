package api

import (
	"context"

	"github.com/bookshelfapp/bookshelf-server/internal/domain"
	domainerrors "github.com/bookshelfapp/bookshelf-server/internal/errors"
)

type ctxKey int

const (
	userKey ctxKey = iota
	sessionIDKey
)

var errNotAuthenticated = domainerrors.Unauthorized("Not authenticated")

func withSession(ctx context.Context, user *domain.SessionUser, sessionID string) context.Context {
	ctx = context.WithValue(ctx, userKey, user)
	return context.WithValue(ctx, sessionIDKey, sessionID)
}

// currentUser returns the session user attached by the session middleware, or nil.
func currentUser(ctx context.Context) *domain.SessionUser {
	user, _ := ctx.Value(userKey).(*domain.SessionUser)
	return user
}

func currentSessionID(ctx context.Context) string {
	id, _ := ctx.Value(sessionIDKey).(string)
	return id
}

// requireUser returns the caller or a 401.
func requireUser(ctx context.Context) (domain.SessionUser, error) {
	user := currentUser(ctx)
	if user == nil {
		return domain.SessionUser{}, errNotAuthenticated
	}
	return *user, nil
}
