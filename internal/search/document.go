package search

import (
	"github.com/bookshelfapp/bookshelf-server/internal/domain"
)

// ItemDocument is the indexed form of an item.
type ItemDocument struct {
	ID       string
	Title    string
	ItemType string
	AddedBy  string
	Tags     []string // tag names
	Authors  []string // author names
}

// NewItemDocument builds the document for a hydrated item.
func NewItemDocument(item *domain.ItemWithMeta) *ItemDocument {
	doc := &ItemDocument{
		ID:       item.ID,
		Title:    item.Title,
		ItemType: string(item.ItemType),
		AddedBy:  item.AddedBy,
		Tags:     make([]string, 0, len(item.Tags)),
		Authors:  make([]string, 0, len(item.Authors)),
	}
	for _, t := range item.Tags {
		doc.Tags = append(doc.Tags, t.Name)
	}
	for _, a := range item.Authors {
		doc.Authors = append(doc.Authors, a.Name)
	}
	return doc
}

// ToMap converts the document to the field layout of the mapping.
// title is written twice: stemmed for matching and unstemmed for prefixes.
func (d *ItemDocument) ToMap() map[string]any {
	return map[string]any{
		"id":          d.ID,
		"title":       d.Title,
		"title_words": d.Title,
		"item_type":   d.ItemType,
		"added_by":    d.AddedBy,
		"tags":        d.Tags,
		"authors":     d.Authors,
	}
}
