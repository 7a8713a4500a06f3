package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/bookshelfapp/bookshelf-server/internal/domain"
)

func (s *Server) registerTagRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listTags",
		Method:      http.MethodGet,
		Path:        "/api/tags",
		Summary:     "List tags",
		Description: "Returns every tag and author, each with its type",
		Tags:        []string{"Tags"},
		Security:    []map[string][]string{{"session": {}}},
	}, s.handleListTags)

	// Registered before /{id} so "search" is never taken for an id.
	huma.Register(s.api, huma.Operation{
		OperationID: "searchTags",
		Method:      http.MethodGet,
		Path:        "/api/tags/search",
		Summary:     "Search tags",
		Description: "Case-insensitive substring match; prefix matches come first",
		Tags:        []string{"Tags"},
		Security:    []map[string][]string{{"session": {}}},
	}, s.handleSearchTags)

	huma.Register(s.api, huma.Operation{
		OperationID: "getTag",
		Method:      http.MethodGet,
		Path:        "/api/tags/{id}",
		Summary:     "Get tag",
		Tags:        []string{"Tags"},
		Security:    []map[string][]string{{"session": {}}},
	}, s.handleGetTag)
}

// === DTOs ===

// TagListOutput wraps a list of tags for Huma.
type TagListOutput struct {
	Body []*domain.Tag
}

// SearchTagsInput carries the tag search query.
type SearchTagsInput struct {
	Query string `query:"query" doc:"Substring to match; blank returns no results"`
}

// GetTagInput identifies a tag or author.
type GetTagInput struct {
	ID string `path:"id" doc:"Tag or author ID"`
}

// TagOutput wraps a single tag for Huma.
type TagOutput struct {
	Body *domain.Tag
}

// === Handlers ===

func (s *Server) handleListTags(ctx context.Context, _ *struct{}) (*TagListOutput, error) {
	if _, err := requireUser(ctx); err != nil {
		return nil, err
	}

	tags, err := s.services.Tags.ListTags(ctx)
	if err != nil {
		return nil, err
	}
	return &TagListOutput{Body: tags}, nil
}

func (s *Server) handleSearchTags(ctx context.Context, input *SearchTagsInput) (*TagListOutput, error) {
	if _, err := requireUser(ctx); err != nil {
		return nil, err
	}

	tags, err := s.services.Tags.SearchTags(ctx, input.Query)
	if err != nil {
		return nil, err
	}
	return &TagListOutput{Body: tags}, nil
}

func (s *Server) handleGetTag(ctx context.Context, input *GetTagInput) (*TagOutput, error) {
	if _, err := requireUser(ctx); err != nil {
		return nil, err
	}

	tag, err := s.services.Tags.GetTag(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &TagOutput{Body: tag}, nil
}
