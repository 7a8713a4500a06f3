package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/bookshelfapp/bookshelf-server/internal/domain"
	"github.com/bookshelfapp/bookshelf-server/internal/store"
)

// itemColumns must match the scan order in scanItem.
const itemColumns = `id, title, source_url, item_type, added_by, created_at`

func scanItem(scanner interface{ Scan(dest ...any) error }) (*domain.Item, error) {
	var (
		item      domain.Item
		sourceURL sql.NullString
		itemType  string
		createdAt string
	)
	if err := scanner.Scan(&item.ID, &item.Title, &sourceURL, &itemType, &item.AddedBy, &createdAt); err != nil {
		return nil, err
	}

	var err error
	if item.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if sourceURL.Valid {
		item.SourceURL = &sourceURL.String
	}
	item.ItemType = domain.ItemType(itemType)
	return &item, nil
}

func (s *Store) queryItems(ctx context.Context, query string, args ...any) ([]*domain.Item, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []*domain.Item{}
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// CreateItem inserts a new item.
func (s *Store) CreateItem(ctx context.Context, item *domain.Item) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO items (id, title, source_url, item_type, added_by, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		item.ID,
		item.Title,
		nullableString(item.SourceURL),
		string(item.ItemType),
		item.AddedBy,
		formatTime(item.CreatedAt),
	)
	if isUniqueViolation(err) {
		return store.ErrAlreadyExists.WithCause(err)
	}
	return err
}

// GetItem retrieves an item by id.
// Returns store.ErrNotFound if the item does not exist.
func (s *Store) GetItem(ctx context.Context, id string) (*domain.Item, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+itemColumns+` FROM items WHERE id = ?`, id)
	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	return item, err
}

// GetItemOwner returns the id of the user who added the item.
func (s *Store) GetItemOwner(ctx context.Context, id string) (string, error) {
	var addedBy string
	err := s.db.QueryRowContext(ctx, `SELECT added_by FROM items WHERE id = ?`, id).Scan(&addedBy)
	if errors.Is(err, sql.ErrNoRows) {
		return "", store.ErrNotFound
	}
	return addedBy, err
}

// ListItems returns every item, newest first.
func (s *Store) ListItems(ctx context.Context) ([]*domain.Item, error) {
	return s.queryItems(ctx, `SELECT `+itemColumns+` FROM items ORDER BY created_at DESC, rowid DESC`)
}

// GetItems returns the items with the given ids, newest first.
func (s *Store) GetItems(ctx context.Context, ids []string) ([]*domain.Item, error) {
	if len(ids) == 0 {
		return []*domain.Item{}, nil
	}
	//#nosec G202 -- only placeholders are interpolated
	return s.queryItems(ctx,
		`SELECT `+itemColumns+` FROM items WHERE id IN (`+placeholders(len(ids))+`) ORDER BY created_at DESC, rowid DESC`,
		stringArgs(ids)...)
}

// SearchItemTitles returns items whose title contains query, ignoring case.
func (s *Store) SearchItemTitles(ctx context.Context, query string) ([]*domain.Item, error) {
	return s.queryItems(ctx,
		`SELECT `+itemColumns+` FROM items WHERE fold(title) LIKE ? ESCAPE '\' ORDER BY created_at DESC, rowid DESC`,
		likePattern(query, false))
}

// UpdateItem applies the set fields of update.
// Returns store.ErrInvalidInput for an empty update and store.ErrNotFound for a missing item.
func (s *Store) UpdateItem(ctx context.Context, id string, update domain.ItemUpdate) (*domain.Item, error) {
	if update.Empty() {
		return nil, store.ErrInvalidInput.WithMessage("no fields to update")
	}

	var (
		sets []string
		args []any
	)
	if update.Title != nil {
		sets = append(sets, "title = ?")
		args = append(args, *update.Title)
	}
	if update.SourceURL != nil {
		sets = append(sets, "source_url = ?")
		if *update.SourceURL == "" {
			args = append(args, nil)
		} else {
			args = append(args, *update.SourceURL)
		}
	}
	if update.ItemType != nil {
		sets = append(sets, "item_type = ?")
		args = append(args, string(*update.ItemType))
	}
	args = append(args, id)

	//#nosec G202 -- column names come from a fixed set
	res, err := s.db.ExecContext(ctx, `UPDATE items SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return nil, err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, store.ErrNotFound
	}
	return s.GetItem(ctx, id)
}

// DeleteItem removes an item row. Link rows in entity_tags and item_authors are kept.
func (s *Store) DeleteItem(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM items WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return store.ErrNotFound
	}
	return nil
}
