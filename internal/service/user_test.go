package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookshelfapp/bookshelf-server/internal/domain"
	domainerrors "github.com/bookshelfapp/bookshelf-server/internal/errors"
	"github.com/bookshelfapp/bookshelf-server/internal/id"
	"github.com/bookshelfapp/bookshelf-server/internal/store"
)

// interleavedUsers lets a test run code around the bootstrap re-count,
// standing in for a second request scheduled at that moment.
type interleavedUsers struct {
	store.Users

	mu            sync.Mutex
	calls         int
	beforeRecount func()
	afterRecount  func()
}

func (u *interleavedUsers) CountUsers(ctx context.Context) (int, error) {
	u.mu.Lock()
	u.calls++
	call := u.calls
	u.mu.Unlock()

	if call == 2 && u.beforeRecount != nil {
		u.beforeRecount()
	}
	n, err := u.Users.CountUsers(ctx)
	if call == 2 && u.afterRecount != nil {
		u.afterRecount()
	}
	return n, err
}

func TestUserService_FirstUserIsAdmin(t *testing.T) {
	env := setupTest(t)
	ctx := context.Background()

	empty, err := env.users.IsEmpty(ctx)
	require.NoError(t, err)
	assert.True(t, empty)

	u, err := env.users.CreateUser(ctx, nil, CreateUserRequest{Username: "admin", Password: "secret"})
	require.NoError(t, err)
	assert.True(t, u.IsAdmin)
	assert.True(t, id.HasPrefix(u.ID, id.User))
	assert.Equal(t, "admin", u.Username)
	assert.NotEqual(t, "secret", u.PasswordHash)
	assert.NotEmpty(t, u.PasswordHash)

	empty, err = env.users.IsEmpty(ctx)
	require.NoError(t, err)
	assert.False(t, empty)
}

func TestUserService_LaterUsersNeedAdmin(t *testing.T) {
	env := setupTest(t)
	ctx := context.Background()
	admin := env.bootstrapAdmin(t)

	t.Run("no session", func(t *testing.T) {
		_, err := env.users.CreateUser(ctx, nil, CreateUserRequest{Username: "alice", Password: "pw12"})
		require.Error(t, err)
		assert.True(t, domainerrors.Is(err, domainerrors.ErrForbidden))
		assert.Contains(t, err.Error(), "someone else already created an admin")
	})

	t.Run("admin session", func(t *testing.T) {
		alice, err := env.users.CreateUser(ctx, &admin, CreateUserRequest{Username: "alice", Password: "pw12"})
		require.NoError(t, err)
		assert.False(t, alice.IsAdmin)
	})

	t.Run("non-admin session", func(t *testing.T) {
		alice, err := env.store.GetUserByUsername(ctx, "alice")
		require.NoError(t, err)
		actor := alice.SessionUser()

		_, err = env.users.CreateUser(ctx, &actor, CreateUserRequest{Username: "bob", Password: "pw12"})
		require.Error(t, err)
		assert.True(t, domainerrors.Is(err, domainerrors.ErrForbidden))
		assert.Equal(t, "Only admins can create users", err.Error())
	})

	t.Run("stale admin flag in session is ignored", func(t *testing.T) {
		alice, err := env.store.GetUserByUsername(ctx, "alice")
		require.NoError(t, err)
		forged := domain.SessionUser{ID: alice.ID, Username: alice.Username, IsAdmin: true}

		_, err = env.users.CreateUser(ctx, &forged, CreateUserRequest{Username: "carol", Password: "pw12"})
		assert.True(t, domainerrors.Is(err, domainerrors.ErrForbidden))
	})

	t.Run("session for deleted user", func(t *testing.T) {
		ghost := domain.SessionUser{ID: "u_doesnotexist00", Username: "ghost", IsAdmin: true}
		_, err := env.users.CreateUser(ctx, &ghost, CreateUserRequest{Username: "dave", Password: "pw12"})
		assert.True(t, domainerrors.Is(err, domainerrors.ErrForbidden))
	})

	t.Run("duplicate username", func(t *testing.T) {
		_, err := env.users.CreateUser(ctx, &admin, CreateUserRequest{Username: "alice", Password: "pw12"})
		assert.True(t, domainerrors.Is(err, domainerrors.ErrConflict))
	})
}

func TestUserService_SequentialCreatesYieldOneAdmin(t *testing.T) {
	env := setupTest(t)
	ctx := context.Background()
	admin := env.bootstrapAdmin(t)

	for _, name := range []string{"alice", "bob", "carol"} {
		u, err := env.users.CreateUser(ctx, &admin, CreateUserRequest{Username: name, Password: "pw12"})
		require.NoError(t, err)
		assert.False(t, u.IsAdmin, name)
	}

	users, err := env.users.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 4)

	admins := 0
	for _, u := range users {
		if u.IsAdmin {
			admins++
		}
	}
	assert.Equal(t, 1, admins)
}

func TestUserService_Validation(t *testing.T) {
	env := setupTest(t)
	ctx := context.Background()

	tests := []struct {
		name string
		req  CreateUserRequest
	}{
		{"missing username", CreateUserRequest{Password: "secret"}},
		{"blank username", CreateUserRequest{Username: "   ", Password: "secret"}},
		{"short password", CreateUserRequest{Username: "admin", Password: "x"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.users.CreateUser(ctx, nil, tt.req)
			assert.True(t, domainerrors.Is(err, domainerrors.ErrValidation))
		})
	}

	// Nothing was created, so the next user is still the first.
	empty, err := env.users.IsEmpty(ctx)
	require.NoError(t, err)
	assert.True(t, empty)
}

func TestUserService_BootstrapRaceLostAtRecount(t *testing.T) {
	env := setupTest(t)
	ctx := context.Background()

	racing := &interleavedUsers{Users: env.store}
	contender := NewUserService(racing, nil)

	// The other request completes between our first count and the re-count.
	racing.beforeRecount = func() {
		_, err := env.users.CreateUser(ctx, nil, CreateUserRequest{Username: "winner", Password: "secret"})
		require.NoError(t, err)
	}

	_, err := contender.CreateUser(ctx, nil, CreateUserRequest{Username: "loser", Password: "secret"})
	require.Error(t, err)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrConflict))
	assert.Equal(t, "Too late! An admin already exists. Only admins can create new users", err.Error())

	users, err := env.users.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "winner", users[0].Username)
	assert.True(t, users[0].IsAdmin)
}

// Both requests pass the re-count before either inserts. The re-count cannot
// catch this interleaving and two admins are created.
func TestUserService_BootstrapRaceBothPassRecount(t *testing.T) {
	env := setupTest(t)
	ctx := context.Background()

	racing := &interleavedUsers{Users: env.store}
	contender := NewUserService(racing, nil)

	racing.afterRecount = func() {
		_, err := env.users.CreateUser(ctx, nil, CreateUserRequest{Username: "first", Password: "secret"})
		require.NoError(t, err)
	}

	second, err := contender.CreateUser(ctx, nil, CreateUserRequest{Username: "second", Password: "secret"})
	require.NoError(t, err)
	assert.True(t, second.IsAdmin)

	users, err := env.users.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	for _, u := range users {
		assert.True(t, u.IsAdmin, u.Username)
	}
}

func TestUserService_GetUser(t *testing.T) {
	env := setupTest(t)
	ctx := context.Background()
	admin := env.bootstrapAdmin(t)

	got, err := env.users.GetUser(ctx, admin.ID)
	require.NoError(t, err)
	assert.Equal(t, "admin", got.Username)

	_, err = env.users.GetUser(ctx, "u_missing0000000")
	require.Error(t, err)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrNotFound))
	assert.Equal(t, "User not found", err.Error())
}
