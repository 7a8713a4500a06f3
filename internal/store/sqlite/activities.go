package sqlite

import (
	"context"
	"time"

	"github.com/bookshelfapp/bookshelf-server/internal/domain"
	"github.com/bookshelfapp/bookshelf-server/internal/store"
)

// CreateActivity inserts an activity row.
func (s *Store) CreateActivity(ctx context.Context, a *domain.Activity) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO activities (id, user_id, action_type, entity_id, entity_type, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		a.ID,
		a.UserID,
		string(a.ActionType),
		a.EntityID,
		string(a.EntityType),
		formatTime(a.CreatedAt),
	)
	return err
}

// ListFeed returns up to limit activities, newest first, flagged as seen when
// userID has a receipt for them.
func (s *Store) ListFeed(ctx context.Context, userID string, limit int) ([]*domain.FeedEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT a.id, a.user_id, a.action_type, a.entity_id, a.entity_type, a.created_at,
			r.activity_id IS NOT NULL
		FROM activities a
		LEFT JOIN activity_receipts r ON r.activity_id = a.id AND r.user_id = ?
		ORDER BY a.created_at DESC, a.rowid DESC
		LIMIT ?`,
		userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []*domain.FeedEntry{}
	for rows.Next() {
		var (
			e          domain.FeedEntry
			actionType string
			entityType string
			createdAt  string
			seen       int
		)
		if err := rows.Scan(&e.ID, &e.UserID, &actionType, &e.EntityID, &entityType, &createdAt, &seen); err != nil {
			return nil, err
		}
		if e.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		e.ActionType = domain.ActionType(actionType)
		e.EntityType = domain.EntityType(entityType)
		e.Seen = seen != 0
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}

// MarkActivitySeen records that userID has seen activityID.
func (s *Store) MarkActivitySeen(ctx context.Context, activityID, userID string, seenAt time.Time) error {
	res, err := s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO activity_receipts (activity_id, user_id, seen_at)
		SELECT id, ?, ? FROM activities WHERE id = ?`,
		userID, formatTime(seenAt), activityID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		var exists int
		if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM activities WHERE id = ?`, activityID).Scan(&exists); err != nil {
			return err
		}
		if exists == 0 {
			return store.ErrNotFound
		}
	}
	return nil
}
