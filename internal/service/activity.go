package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/bookshelfapp/bookshelf-server/internal/domain"
	domainerrors "github.com/bookshelfapp/bookshelf-server/internal/errors"
	"github.com/bookshelfapp/bookshelf-server/internal/id"
	"github.com/bookshelfapp/bookshelf-server/internal/store"
)

// Feed limits.
const (
	DefaultFeedLimit = 50
	MaxFeedLimit     = 200
)

// ActivityPublisher receives every recorded activity, for live delivery.
type ActivityPublisher interface {
	PublishActivity(a *domain.Activity)
}

// ActivityService records and serves the shared activity feed.
type ActivityService struct {
	store     store.Activities
	publisher ActivityPublisher
	logger    *slog.Logger
	now       func() time.Time
}

// NewActivityService creates an activity service.
func NewActivityService(store store.Activities, logger *slog.Logger) *ActivityService {
	return &ActivityService{
		store:  store,
		logger: orDiscard(logger),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// SetPublisher makes Record forward stored activities to p.
func (s *ActivityService) SetPublisher(p ActivityPublisher) {
	s.publisher = p
}

// Record appends an activity. Failures are logged and swallowed: the feed is
// secondary to the action that produced it. A nil service records nothing.
func (s *ActivityService) Record(ctx context.Context, userID string, action domain.ActionType, entityID string, entityType domain.EntityType) {
	if s == nil {
		return
	}
	activityID, err := id.Generate(id.Activity)
	if err != nil {
		s.logger.Error("Failed to generate activity ID", "action", action, "error", err)
		return
	}

	a := &domain.Activity{
		ID:         activityID,
		UserID:     userID,
		ActionType: action,
		EntityID:   entityID,
		EntityType: entityType,
		CreatedAt:  s.now(),
	}
	if err := s.store.CreateActivity(ctx, a); err != nil {
		s.logger.Error("Failed to record activity",
			"action", action,
			"user_id", userID,
			"entity_id", entityID,
			"error", err,
		)
		return
	}

	if s.publisher != nil {
		s.publisher.PublishActivity(a)
	}
}

// Feed returns the newest activities with Seen set for the caller.
// A non-positive limit means DefaultFeedLimit; larger than MaxFeedLimit is clamped.
func (s *ActivityService) Feed(ctx context.Context, actor domain.SessionUser, limit int) ([]*domain.FeedEntry, error) {
	switch {
	case limit <= 0:
		limit = DefaultFeedLimit
	case limit > MaxFeedLimit:
		limit = MaxFeedLimit
	}

	entries, err := s.store.ListFeed(ctx, actor.ID, limit)
	if err != nil {
		return nil, fmt.Errorf("list feed: %w", err)
	}
	return entries, nil
}

// MarkSeen records that the caller has seen an activity. Repeats are no-ops.
func (s *ActivityService) MarkSeen(ctx context.Context, actor domain.SessionUser, activityID string) error {
	err := s.store.MarkActivitySeen(ctx, activityID, actor.ID, s.now())
	if errors.Is(err, store.ErrNotFound) {
		return domainerrors.NotFound("Activity not found")
	}
	if err != nil {
		return fmt.Errorf("mark activity seen: %w", err)
	}
	return nil
}
