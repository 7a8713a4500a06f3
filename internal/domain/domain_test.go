package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bookshelfapp/bookshelf-server/internal/id"
)

func TestItemType_Valid(t *testing.T) {
	for _, typ := range []ItemType{ItemTypeArticle, ItemTypeBook, ItemTypeEssay, ItemTypePoem, ItemTypeOther} {
		assert.True(t, typ.Valid(), typ)
	}
	assert.False(t, ItemType("podcast").Valid())
	assert.False(t, ItemType("").Valid())
}

func TestTagKind_PrefixAndKindOf(t *testing.T) {
	assert.Equal(t, id.Human, TagKindAuthor.Prefix())
	assert.Equal(t, id.Topic, TagKindTopic.Prefix())
	assert.Equal(t, id.Topic, TagKind("").Prefix(), "unknown kinds resolve as topics")

	assert.Equal(t, TagKindAuthor, KindOf(id.MustGenerate(id.Human)))
	assert.Equal(t, TagKindTopic, KindOf(id.MustGenerate(id.Topic)))
}

func TestUser_SessionUser(t *testing.T) {
	u := &User{ID: "u_1", Username: "admin", PasswordHash: "$argon2id$...", IsAdmin: true}

	assert.Equal(t, SessionUser{ID: "u_1", Username: "admin", IsAdmin: true}, u.SessionUser())
}

func TestItemUpdate_Empty(t *testing.T) {
	assert.True(t, ItemUpdate{}.Empty())

	title := "New"
	assert.False(t, ItemUpdate{Title: &title}.Empty())
}
