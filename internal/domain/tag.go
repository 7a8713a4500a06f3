package domain

import (
	"time"

	"github.com/bookshelfapp/bookshelf-server/internal/id"
)

// TagKind distinguishes topic tags from authors. Both live in one table and
// the kind is carried by the id prefix (t_ or h_).
type TagKind string

const (
	TagKindTopic  TagKind = "tag"
	TagKindAuthor TagKind = "author"
)

// Valid reports whether k is a known kind.
func (k TagKind) Valid() bool {
	return k == TagKindTopic || k == TagKindAuthor
}

// Prefix returns the id prefix used for k. Anything that is not an author is a topic.
func (k TagKind) Prefix() id.Prefix {
	if k == TagKindAuthor {
		return id.Human
	}
	return id.Topic
}

// KindOf derives the kind from a stored id.
func KindOf(tagID string) TagKind {
	if id.HasPrefix(tagID, id.Human) {
		return TagKindAuthor
	}
	return TagKindTopic
}

// Tag is a topic tag or an author.
type Tag struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Type      TagKind   `json:"type"`
	CreatedAt time.Time `json:"created_at"`
}

// TagRef references a tag or author by id, or by name when the id is unknown.
type TagRef struct {
	ID   string  `json:"id,omitempty"`
	Name string  `json:"name"`
	Type TagKind `json:"type"`
}
