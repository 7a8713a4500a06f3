package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/bookshelfapp/bookshelf-server/internal/domain"
	"github.com/bookshelfapp/bookshelf-server/internal/store"
)

// tagColumns must match the scan order in scanTag.
const tagColumns = `id, name, created_at`

// scanTag fills Type from the id prefix.
func scanTag(scanner interface{ Scan(dest ...any) error }) (*domain.Tag, error) {
	var (
		t         domain.Tag
		createdAt string
	)
	if err := scanner.Scan(&t.ID, &t.Name, &createdAt); err != nil {
		return nil, err
	}

	var err error
	if t.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	t.Type = domain.KindOf(t.ID)
	return &t, nil
}

func (s *Store) queryTags(ctx context.Context, query string, args ...any) ([]*domain.Tag, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tags := []*domain.Tag{}
	for rows.Next() {
		t, err := scanTag(rows)
		if err != nil {
			return nil, err
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}

// CreateTag inserts a tag or author row. Names are not unique; only the id is.
func (s *Store) CreateTag(ctx context.Context, t *domain.Tag) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO tags (id, name, created_at) VALUES (?, ?, ?)`,
		t.ID, t.Name, formatTime(t.CreatedAt))
	if isUniqueViolation(err) {
		return store.ErrAlreadyExists.WithCause(err)
	}
	return err
}

// GetTag retrieves a tag or author by id.
// Returns store.ErrNotFound if it does not exist.
func (s *Store) GetTag(ctx context.Context, id string) (*domain.Tag, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+tagColumns+` FROM tags WHERE id = ?`, id)
	t, err := scanTag(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	return t, err
}

// FindTagByName returns the oldest row with exactly this name and the id
// prefix of kind. The prefix is compared literally rather than with LIKE,
// since "_" is a LIKE wildcard.
func (s *Store) FindTagByName(ctx context.Context, name string, kind domain.TagKind) (*domain.Tag, error) {
	prefix := string(kind.Prefix())
	row := s.db.QueryRowContext(ctx, `
		SELECT `+tagColumns+` FROM tags
		WHERE name = ? AND substr(id, 1, ?) = ?
		ORDER BY created_at ASC, rowid ASC
		LIMIT 1`,
		name, len(prefix), prefix)
	t, err := scanTag(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	return t, err
}

// ListTags returns all tags and authors ordered by name.
func (s *Store) ListTags(ctx context.Context) ([]*domain.Tag, error) {
	return s.queryTags(ctx, `SELECT `+tagColumns+` FROM tags ORDER BY LOWER(name) ASC, id ASC`)
}

// SearchTags returns tags whose name contains query, ignoring case.
// Names starting with query sort first, then alphabetically.
func (s *Store) SearchTags(ctx context.Context, query string) ([]*domain.Tag, error) {
	return s.queryTags(ctx, `
		SELECT `+tagColumns+` FROM tags
		WHERE fold(name) LIKE ? ESCAPE '\'
		ORDER BY
			CASE WHEN fold(name) LIKE ? ESCAPE '\' THEN 0 ELSE 1 END,
			fold(name) ASC`,
		likePattern(query, false), likePattern(query, true))
}

// LinkItemTags links tags to an item. Existing links are left alone.
func (s *Store) LinkItemTags(ctx context.Context, itemID string, tagIDs []string) error {
	return s.insertLinks(ctx, `INSERT OR IGNORE INTO entity_tags (entity_id, tag_id) VALUES (?, ?)`, itemID, tagIDs)
}

// LinkItemAuthors links authors to an item. Existing links are left alone.
func (s *Store) LinkItemAuthors(ctx context.Context, itemID string, authorIDs []string) error {
	return s.insertLinks(ctx, `INSERT OR IGNORE INTO item_authors (item_id, author_id) VALUES (?, ?)`, itemID, authorIDs)
}

func (s *Store) insertLinks(ctx context.Context, stmt, itemID string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	prepared, err := tx.PrepareContext(ctx, stmt)
	if err != nil {
		return err
	}
	defer prepared.Close()

	for _, linkID := range ids {
		if _, err := prepared.ExecContext(ctx, itemID, linkID); err != nil {
			return fmt.Errorf("link %s to %s: %w", linkID, itemID, err)
		}
	}
	return tx.Commit()
}

// ItemMeta returns the tags and authors linked to each of itemIDs.
// Every requested id is present in the result, possibly with empty slices.
func (s *Store) ItemMeta(ctx context.Context, itemIDs []string) (map[string]store.ItemMeta, error) {
	meta := make(map[string]store.ItemMeta, len(itemIDs))
	for _, itemID := range itemIDs {
		meta[itemID] = store.ItemMeta{Tags: []domain.Tag{}, Authors: []domain.Tag{}}
	}
	if len(itemIDs) == 0 {
		return meta, nil
	}

	in := placeholders(len(itemIDs))
	args := stringArgs(itemIDs)

	//#nosec G202 -- only placeholders are interpolated
	tagQuery := `
		SELECT l.entity_id, t.id, t.name, t.created_at
		FROM entity_tags l JOIN tags t ON t.id = l.tag_id
		WHERE l.entity_id IN (` + in + `)
		ORDER BY LOWER(t.name) ASC, t.id ASC`
	if err := s.collectLinks(ctx, tagQuery, args, func(itemID string, t domain.Tag) {
		m := meta[itemID]
		m.Tags = append(m.Tags, t)
		meta[itemID] = m
	}); err != nil {
		return nil, fmt.Errorf("load item tags: %w", err)
	}

	//#nosec G202 -- only placeholders are interpolated
	authorQuery := `
		SELECT l.item_id, t.id, t.name, t.created_at
		FROM item_authors l JOIN tags t ON t.id = l.author_id
		WHERE l.item_id IN (` + in + `)
		ORDER BY LOWER(t.name) ASC, t.id ASC`
	if err := s.collectLinks(ctx, authorQuery, args, func(itemID string, t domain.Tag) {
		m := meta[itemID]
		m.Authors = append(m.Authors, t)
		meta[itemID] = m
	}); err != nil {
		return nil, fmt.Errorf("load item authors: %w", err)
	}

	return meta, nil
}

func (s *Store) collectLinks(ctx context.Context, query string, args []any, add func(itemID string, t domain.Tag)) error {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			itemID    string
			t         domain.Tag
			createdAt string
		)
		if err := rows.Scan(&itemID, &t.ID, &t.Name, &createdAt); err != nil {
			return err
		}
		if t.CreatedAt, err = parseTime(createdAt); err != nil {
			return err
		}
		t.Type = domain.KindOf(t.ID)
		add(itemID, t)
	}
	return rows.Err()
}
