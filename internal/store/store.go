// Package store defines the persistence contracts used by bookshelf services.
// Implementations live in subpackages; sqlite is the production backend.
package store

import (
	"context"
	"time"

	"github.com/bookshelfapp/bookshelf-server/internal/domain"
)

// Users persists accounts.
type Users interface {
	// CountUsers returns the number of accounts. Used by first-admin bootstrap.
	CountUsers(ctx context.Context) (int, error)
	// CreateUser inserts u. Returns ErrAlreadyExists on a duplicate id or username.
	CreateUser(ctx context.Context, u *domain.User) error
	GetUser(ctx context.Context, id string) (*domain.User, error)
	GetUserByUsername(ctx context.Context, username string) (*domain.User, error)
	ListUsers(ctx context.Context) ([]*domain.User, error)
}

// Items persists bookmarked items.
type Items interface {
	CreateItem(ctx context.Context, item *domain.Item) error
	GetItem(ctx context.Context, id string) (*domain.Item, error)
	// GetItemOwner returns the added_by of an item, or ErrNotFound.
	GetItemOwner(ctx context.Context, id string) (string, error)
	// ListItems returns all items, newest first.
	ListItems(ctx context.Context) ([]*domain.Item, error)
	// UpdateItem applies the non-nil fields of update and returns the stored item.
	UpdateItem(ctx context.Context, id string, update domain.ItemUpdate) (*domain.Item, error)
	// DeleteItem removes the item row only. Tag and author links stay behind.
	DeleteItem(ctx context.Context, id string) error
	// SearchItemTitles is a case-insensitive substring match over titles.
	SearchItemTitles(ctx context.Context, query string) ([]*domain.Item, error)
	// GetItems returns the items with the given ids, skipping unknown ones.
	GetItems(ctx context.Context, ids []string) ([]*domain.Item, error)
}

// ItemMeta holds the tags and authors linked to one item.
type ItemMeta struct {
	Tags    []domain.Tag
	Authors []domain.Tag
}

// Tags persists topic tags and authors, which share one table.
type Tags interface {
	CreateTag(ctx context.Context, tag *domain.Tag) error
	GetTag(ctx context.Context, id string) (*domain.Tag, error)
	// FindTagByName returns the first row named exactly name whose id carries
	// the prefix for kind, or ErrNotFound.
	FindTagByName(ctx context.Context, name string, kind domain.TagKind) (*domain.Tag, error)
	ListTags(ctx context.Context) ([]*domain.Tag, error)
	// SearchTags matches names case-insensitively, prefix matches first.
	SearchTags(ctx context.Context, query string) ([]*domain.Tag, error)
	// LinkItemTags and LinkItemAuthors insert link rows, ignoring duplicates.
	LinkItemTags(ctx context.Context, itemID string, tagIDs []string) error
	LinkItemAuthors(ctx context.Context, itemID string, authorIDs []string) error
	// ItemMeta returns linked tags and authors keyed by item id. Links to
	// ids with no tag row are skipped.
	ItemMeta(ctx context.Context, itemIDs []string) (map[string]ItemMeta, error)
}

// Activities persists the activity feed and read receipts.
type Activities interface {
	CreateActivity(ctx context.Context, a *domain.Activity) error
	// ListFeed returns the newest activities with Seen set for userID.
	ListFeed(ctx context.Context, userID string, limit int) ([]*domain.FeedEntry, error)
	// MarkActivitySeen records a receipt once; repeats are no-ops.
	// Returns ErrNotFound if the activity does not exist.
	MarkActivitySeen(ctx context.Context, activityID, userID string, seenAt time.Time) error
}

// Store is the full persistence surface.
type Store interface {
	Users
	Items
	Tags
	Activities

	Ping(ctx context.Context) error
	Close() error
}
