package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/bookshelfapp/bookshelf-server/internal/domain"
)

func (s *Server) registerActivityRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "activityFeed",
		Method:      http.MethodGet,
		Path:        "/api/activity",
		Summary:     "Activity feed",
		Description: "Recent activity across all users, newest first, flagged with whether the caller has seen it",
		Tags:        []string{"Activity"},
		Security:    []map[string][]string{{"session": {}}},
	}, s.handleActivityFeed)

	huma.Register(s.api, huma.Operation{
		OperationID:   "markActivitySeen",
		Method:        http.MethodPost,
		Path:          "/api/activity/{id}/seen",
		Summary:       "Mark activity seen",
		Tags:          []string{"Activity"},
		DefaultStatus: http.StatusNoContent,
		Security:      []map[string][]string{{"session": {}}},
	}, s.handleMarkActivitySeen)
}

// ActivityFeedInput carries the page size.
type ActivityFeedInput struct {
	Limit int `query:"limit" doc:"Maximum entries, default 50, capped at 200"`
}

// ActivityFeedOutput wraps the feed for Huma.
type ActivityFeedOutput struct {
	Body []*domain.FeedEntry
}

// ActivityIDInput identifies an activity.
type ActivityIDInput struct {
	ID string `path:"id" doc:"Activity ID"`
}

func (s *Server) handleActivityFeed(ctx context.Context, input *ActivityFeedInput) (*ActivityFeedOutput, error) {
	user, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}

	feed, err := s.services.Activity.Feed(ctx, user, input.Limit)
	if err != nil {
		return nil, err
	}
	return &ActivityFeedOutput{Body: feed}, nil
}

func (s *Server) handleMarkActivitySeen(ctx context.Context, input *ActivityIDInput) (*struct{}, error) {
	user, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.services.Activity.MarkSeen(ctx, user, input.ID); err != nil {
		return nil, err
	}
	return nil, nil
}
