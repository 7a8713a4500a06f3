// Package id mints prefixed entity identifiers.
package id

import (
	"fmt"
	"strings"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Prefix identifies the entity kind an identifier belongs to.
type Prefix string

// Entity prefixes. Tags and authors share a table and are told apart only by prefix.
const (
	User     Prefix = "u_"
	Item     Prefix = "i_"
	Topic    Prefix = "t_"
	Human    Prefix = "h_"
	Comment  Prefix = "c_"
	Activity Prefix = "a_"
	Stream   Prefix = "s_" // live event stream connections
)

// suffixLength is the nanoid length appended to every prefix.
const suffixLength = 14

// Generate returns prefix followed by a 14 character URL-safe nanoid,
// e.g. "h_V1StGXR8_Z5jdH".
func Generate(prefix Prefix) (string, error) {
	suffix, err := gonanoid.New(suffixLength)
	if err != nil {
		return "", fmt.Errorf("generate nanoid: %w", err)
	}
	return string(prefix) + suffix, nil
}

// MustGenerate is like Generate but panics if the system has no entropy.
func MustGenerate(prefix Prefix) string {
	id, err := Generate(prefix)
	if err != nil {
		panic(fmt.Sprintf("failed to generate ID: %v", err))
	}
	return id
}

// HasPrefix reports whether id was minted with prefix.
func HasPrefix(id string, prefix Prefix) bool {
	return strings.HasPrefix(id, string(prefix))
}
