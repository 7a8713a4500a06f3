package auth

import (
	"errors"
	"fmt"
	"time"

	"aidanwoods.dev/go-paseto"
)

const (
	cookieIssuer   = "bookshelf-server"
	cookieAudience = "bookshelf-web"
)

// ErrInvalidCookie is returned when a cookie value cannot be opened.
var ErrInvalidCookie = errors.New("invalid session cookie")

// CookieSealer encrypts session ids into PASETO v4.local tokens so the cookie
// value is opaque and tamper-evident. The session itself lives server-side.
type CookieSealer struct {
	key paseto.V4SymmetricKey
	ttl time.Duration
}

// NewCookieSealer creates a sealer from a 32-byte key.
func NewCookieSealer(key []byte, ttl time.Duration) (*CookieSealer, error) {
	if len(key) != keyLength {
		return nil, fmt.Errorf("session key must be exactly %d bytes, got %d", keyLength, len(key))
	}
	k, err := paseto.V4SymmetricKeyFromBytes(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create PASETO symmetric key: %w", err)
	}
	return &CookieSealer{key: k, ttl: ttl}, nil
}

// Seal returns the cookie value for sessionID.
func (c *CookieSealer) Seal(sessionID string) string {
	now := time.Now()

	token := paseto.NewToken()
	token.SetIssuer(cookieIssuer)
	token.SetAudience(cookieAudience)
	token.SetSubject(sessionID)
	token.SetIssuedAt(now)
	token.SetNotBefore(now)
	token.SetExpiration(now.Add(c.ttl))

	return token.V4Encrypt(c.key, nil)
}

// Open returns the session id sealed in value.
func (c *CookieSealer) Open(value string) (string, error) {
	parser := paseto.NewParser()
	parser.AddRule(paseto.ForAudience(cookieAudience))
	parser.AddRule(paseto.IssuedBy(cookieIssuer))
	parser.AddRule(paseto.NotExpired())
	parser.AddRule(paseto.ValidAt(time.Now()))

	token, err := parser.ParseV4Local(c.key, value, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidCookie, err)
	}
	sessionID, err := token.GetSubject()
	if err != nil || sessionID == "" {
		return "", ErrInvalidCookie
	}
	return sessionID, nil
}

// TTL returns the cookie lifetime.
func (c *CookieSealer) TTL() time.Duration {
	return c.ttl
}
