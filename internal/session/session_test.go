package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookshelfapp/bookshelf-server/internal/domain"
)

var alice = domain.SessionUser{ID: "u_alice000000000", Username: "alice", IsAdmin: true}

// exerciseStore runs the behaviour every backend must share.
func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	created, err := s.Create(ctx, alice)
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, alice, created.User)
	assert.True(t, created.ExpiresAt.After(created.CreatedAt))

	got, err := s.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, alice, got.User)

	other, err := s.Create(ctx, alice)
	require.NoError(t, err)
	assert.NotEqual(t, created.ID, other.ID)

	require.NoError(t, s.Delete(ctx, created.ID))
	_, err = s.Get(ctx, created.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	// The second session is untouched.
	_, err = s.Get(ctx, other.ID)
	assert.NoError(t, err)

	assert.NoError(t, s.Delete(ctx, "never-existed"))

	_, err = s.Get(ctx, "never-existed")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestBadgerStore(t *testing.T) {
	s, err := NewBadgerStore("", time.Hour, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	exerciseStore(t, s)
}

func TestBadgerStore_OnDisk(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	s, err := NewBadgerStore(dir, time.Hour, nil)
	require.NoError(t, err)
	created, err := s.Create(ctx, alice)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	reopened, err := NewBadgerStore(dir, time.Hour, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = reopened.Close() })

	got, err := reopened.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, alice, got.User)
}

func TestBadgerStore_Expiry(t *testing.T) {
	s, err := NewBadgerStore("", time.Second, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	created, err := s.Create(context.Background(), alice)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		_, err := s.Get(context.Background(), created.ID)
		return err == ErrNotFound
	}, 3*time.Second, 100*time.Millisecond)
}

func TestDecode_RejectsExpired(t *testing.T) {
	data, err := encode(&Session{
		ID:        "s1",
		User:      alice,
		CreatedAt: time.Now().Add(-2 * time.Hour),
		ExpiresAt: time.Now().Add(-time.Hour),
	})
	require.NoError(t, err)

	_, err = decode(data)
	assert.ErrorIs(t, err, ErrNotFound)
}

func newTestRedisStore(t *testing.T, ttl time.Duration) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)

	s, err := NewRedisStore(context.Background(), RedisOptions{Addr: mr.Addr()}, ttl, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s, mr
}

func TestRedisStore(t *testing.T) {
	s, _ := newTestRedisStore(t, time.Hour)
	exerciseStore(t, s)
}

func TestRedisStore_KeyExpiresWithTTL(t *testing.T) {
	s, mr := newTestRedisStore(t, time.Minute)
	ctx := context.Background()

	created, err := s.Create(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, time.Minute, mr.TTL(string(key(created.ID))))

	mr.FastForward(2 * time.Minute)

	_, err = s.Get(ctx, created.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestNewRedisStore_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := NewRedisStore(context.Background(), RedisOptions{Addr: addr}, time.Hour, nil)
	assert.Error(t, err)
}
