package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bookshelfapp/bookshelf-server/internal/domain"
	"github.com/bookshelfapp/bookshelf-server/internal/store"
)

func TestCreateAndGetUser(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	user := makeTestUser(t, s, "u_admin", "admin")

	got, err := s.GetUser(ctx, "u_admin")
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if got.Username != "admin" {
		t.Errorf("Username: got %q, want %q", got.Username, "admin")
	}
	if got.PasswordHash != user.PasswordHash {
		t.Errorf("PasswordHash: got %q, want %q", got.PasswordHash, user.PasswordHash)
	}
	if got.IsAdmin {
		t.Error("IsAdmin: expected false")
	}
	if got.CreatedAt.IsZero() {
		t.Error("CreatedAt: expected non-zero")
	}

	byName, err := s.GetUserByUsername(ctx, "admin")
	if err != nil {
		t.Fatalf("GetUserByUsername: %v", err)
	}
	if byName.ID != "u_admin" {
		t.Errorf("ID: got %q, want u_admin", byName.ID)
	}
}

func TestCreateUser_AdminFlag(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u := &domain.User{ID: "u_3", Username: "root", PasswordHash: "x", IsAdmin: true, CreatedAt: time.Now()}
	if err := s.CreateUser(ctx, u); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	got, err := s.GetUser(ctx, "u_3")
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if !got.IsAdmin {
		t.Error("IsAdmin: expected true")
	}
}

func TestCreateUser_DuplicateUsername(t *testing.T) {
	s := newTestStore(t)
	makeTestUser(t, s, "u_1", "alice")

	dup := &domain.User{ID: "u_2", Username: "alice", PasswordHash: "x", CreatedAt: time.Now()}
	err := s.CreateUser(context.Background(), dup)
	if !errors.Is(err, store.ErrAlreadyExists) {
		t.Errorf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestGetUser_NotFound(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.GetUser(ctx, "u_missing"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("GetUser: expected ErrNotFound, got %v", err)
	}
	if _, err := s.GetUserByUsername(ctx, "nobody"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("GetUserByUsername: expected ErrNotFound, got %v", err)
	}
}

func TestCountAndListUsers(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	n, err := s.CountUsers(ctx)
	if err != nil {
		t.Fatalf("CountUsers: %v", err)
	}
	if n != 0 {
		t.Errorf("expected empty table, got %d", n)
	}

	users, err := s.ListUsers(ctx)
	if err != nil {
		t.Fatalf("ListUsers: %v", err)
	}
	if users == nil || len(users) != 0 {
		t.Errorf("expected empty non-nil slice, got %v", users)
	}

	makeTestUser(t, s, "u_1", "admin")
	makeTestUser(t, s, "u_2", "alice")

	n, err = s.CountUsers(ctx)
	if err != nil {
		t.Fatalf("CountUsers: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 users, got %d", n)
	}

	users, err = s.ListUsers(ctx)
	if err != nil {
		t.Fatalf("ListUsers: %v", err)
	}
	if len(users) != 2 || users[0].Username != "admin" || users[1].Username != "alice" {
		t.Errorf("unexpected order: %+v", users)
	}
}
