package domain

import "time"

// ItemType enumerates the kinds of content an item can be.
type ItemType string

const (
	ItemTypeArticle ItemType = "article"
	ItemTypeBook    ItemType = "book"
	ItemTypeEssay   ItemType = "essay"
	ItemTypePoem    ItemType = "poem"
	ItemTypeOther   ItemType = "other"
)

// DefaultItemType is used when a new item does not say what it is.
const DefaultItemType = ItemTypeArticle

// Valid reports whether t is a known item type.
func (t ItemType) Valid() bool {
	switch t {
	case ItemTypeArticle, ItemTypeBook, ItemTypeEssay, ItemTypePoem, ItemTypeOther:
		return true
	}
	return false
}

// Item is a bookmarked piece of content owned by the user who added it.
type Item struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	SourceURL *string   `json:"source_url"`
	ItemType  ItemType  `json:"item_type"`
	AddedBy   string    `json:"added_by"`
	CreatedAt time.Time `json:"created_at"`
}

// ItemWithMeta is an item hydrated with its linked tags and authors.
type ItemWithMeta struct {
	Item
	Tags    []Tag `json:"tags"`
	Authors []Tag `json:"authors"`
}

// ItemUpdate holds the fields a PATCH may change. Nil means untouched.
// SourceURL set to a pointer to "" clears the URL.
type ItemUpdate struct {
	Title     *string
	SourceURL *string
	ItemType  *ItemType
}

// Empty reports whether the update changes nothing.
func (u ItemUpdate) Empty() bool {
	return u.Title == nil && u.SourceURL == nil && u.ItemType == nil
}
