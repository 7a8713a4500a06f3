package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/bookshelfapp/bookshelf-server/internal/domain"
	"github.com/bookshelfapp/bookshelf-server/internal/search"
	"github.com/bookshelfapp/bookshelf-server/internal/session"
	"github.com/bookshelfapp/bookshelf-server/internal/store/sqlite"
)

// testEnv wires every service against a temp sqlite file, an in-memory
// badger session store and an in-memory search index.
type testEnv struct {
	store    *sqlite.Store
	sessions session.Store
	index    *search.ItemIndex
	users    *UserService
	auth     *AuthService
	tags     *TagService
	items    *ItemService
	activity *ActivityService
}

func setupTest(t *testing.T) *testEnv {
	t.Helper()

	s, err := sqlite.Open(filepath.Join(t.TempDir(), "test.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	sessions, err := session.NewBadgerStore("", time.Hour, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sessions.Close() })

	index, err := search.NewItemIndex(search.Options{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = index.Close() })

	activity := NewActivityService(s, nil)
	tags := NewTagService(s, nil)

	return &testEnv{
		store:    s,
		sessions: sessions,
		index:    index,
		users:    NewUserService(s, nil),
		auth:     NewAuthService(s, sessions, activity, nil),
		tags:     tags,
		items:    NewItemService(s, tags, activity, index, nil),
		activity: activity,
	}
}

// bootstrapAdmin creates the first user, who becomes admin.
func (e *testEnv) bootstrapAdmin(t *testing.T) domain.SessionUser {
	t.Helper()
	u, err := e.users.CreateUser(context.Background(), nil, CreateUserRequest{Username: "admin", Password: "secret"})
	require.NoError(t, err)
	require.True(t, u.IsAdmin)
	return u.SessionUser()
}

// createMember creates a non-admin user through the admin.
func (e *testEnv) createMember(t *testing.T, admin domain.SessionUser, username string) domain.SessionUser {
	t.Helper()
	u, err := e.users.CreateUser(context.Background(), &admin, CreateUserRequest{Username: username, Password: "pw12"})
	require.NoError(t, err)
	return u.SessionUser()
}
