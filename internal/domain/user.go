package domain

import "time"

// User is an account able to log in. PasswordHash never leaves the server.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	IsAdmin      bool      `json:"is_admin"`
	CreatedAt    time.Time `json:"created_at"`
}

// SessionUser returns the public identity stored in a session.
func (u *User) SessionUser() SessionUser {
	return SessionUser{ID: u.ID, Username: u.Username, IsAdmin: u.IsAdmin}
}

// SessionUser is the minimal identity of an authenticated caller.
// IsAdmin is a snapshot from login time; authorization re-reads the user.
type SessionUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	IsAdmin  bool   `json:"is_admin"`
}
