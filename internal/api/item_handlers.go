package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/bookshelfapp/bookshelf-server/internal/domain"
	"github.com/bookshelfapp/bookshelf-server/internal/service"
)

func (s *Server) registerItemRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listItems",
		Method:      http.MethodGet,
		Path:        "/api/items",
		Summary:     "List items",
		Description: "Returns every item, newest first, with its tags and authors",
		Tags:        []string{"Items"},
		Security:    []map[string][]string{{"session": {}}},
	}, s.handleListItems)

	huma.Register(s.api, huma.Operation{
		OperationID: "searchItems",
		Method:      http.MethodGet,
		Path:        "/api/items/search",
		Summary:     "Search items",
		Description: "Full-text search over titles, tag names and author names",
		Tags:        []string{"Items"},
		Security:    []map[string][]string{{"session": {}}},
	}, s.handleSearchItems)

	huma.Register(s.api, huma.Operation{
		OperationID: "getItem",
		Method:      http.MethodGet,
		Path:        "/api/items/{id}",
		Summary:     "Get item",
		Tags:        []string{"Items"},
		Security:    []map[string][]string{{"session": {}}},
	}, s.handleGetItem)

	huma.Register(s.api, huma.Operation{
		OperationID:   "createItem",
		Method:        http.MethodPost,
		Path:          "/api/items",
		Summary:       "Create item",
		Description:   "Adds an item owned by the caller, creating any tags and authors referenced by name",
		Tags:          []string{"Items"},
		DefaultStatus: http.StatusCreated,
		Security:      []map[string][]string{{"session": {}}},
	}, s.handleCreateItem)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateItem",
		Method:      http.MethodPatch,
		Path:        "/api/items/{id}",
		Summary:     "Update item",
		Description: "Edits an item the caller added. Tags and authors in the body are added to the existing ones",
		Tags:        []string{"Items"},
		Security:    []map[string][]string{{"session": {}}},
	}, s.handleUpdateItem)

	huma.Register(s.api, huma.Operation{
		OperationID:   "deleteItem",
		Method:        http.MethodDelete,
		Path:          "/api/items/{id}",
		Summary:       "Delete item",
		Description:   "Deletes an item the caller added",
		Tags:          []string{"Items"},
		DefaultStatus: http.StatusNoContent,
		Security:      []map[string][]string{{"session": {}}},
	}, s.handleDeleteItem)
}

// === DTOs ===

// CreateItemBody is the request body for item creation. Unknown fields,
// including a client-supplied added_by, are accepted and ignored.
type CreateItemBody struct {
	_         struct{}           `json:"-" additionalProperties:"true"`
	Title     string             `json:"title" doc:"Item title"`
	SourceURL *string            `json:"source_url,omitempty" nullable:"true" doc:"http(s) link to the text"`
	ItemType  domain.ItemType    `json:"item_type,omitempty" doc:"article, book, essay, poem or other; defaults to article"`
	Tags      []service.TagInput `json:"tags,omitempty" doc:"Tags by id or name"`
	Authors   []service.TagInput `json:"authors,omitempty" doc:"Authors by id or name"`
}

// UpdateItemBody is the request body for item edits. Omitted fields are
// left unchanged; an empty source_url clears the link.
type UpdateItemBody struct {
	_         struct{}           `json:"-" additionalProperties:"true"`
	Title     *string            `json:"title,omitempty" doc:"New title"`
	SourceURL *string            `json:"source_url,omitempty" nullable:"true" doc:"New link, or empty to clear"`
	ItemType  *domain.ItemType   `json:"item_type,omitempty" doc:"New item type"`
	Tags      []service.TagInput `json:"tags,omitempty" doc:"Tags to add"`
	Authors   []service.TagInput `json:"authors,omitempty" doc:"Authors to add"`
}

// ItemIDInput identifies an item.
type ItemIDInput struct {
	ID string `path:"id" doc:"Item ID"`
}

// CreateItemInput wraps the item creation request for Huma.
type CreateItemInput struct {
	Body CreateItemBody
}

// UpdateItemInput wraps the item edit request for Huma.
type UpdateItemInput struct {
	ID   string `path:"id" doc:"Item ID"`
	Body UpdateItemBody
}

// SearchItemsInput carries the search query.
type SearchItemsInput struct {
	Q string `query:"q" doc:"Search text; blank returns no results"`
}

// ItemOutput wraps a single item for Huma.
type ItemOutput struct {
	Body *domain.ItemWithMeta
}

// ItemListOutput wraps a list of items for Huma.
type ItemListOutput struct {
	Body []*domain.ItemWithMeta
}

// === Handlers ===

func (s *Server) handleListItems(ctx context.Context, _ *struct{}) (*ItemListOutput, error) {
	if _, err := requireUser(ctx); err != nil {
		return nil, err
	}

	items, err := s.services.Items.ListItems(ctx)
	if err != nil {
		return nil, err
	}
	return &ItemListOutput{Body: items}, nil
}

func (s *Server) handleSearchItems(ctx context.Context, input *SearchItemsInput) (*ItemListOutput, error) {
	if _, err := requireUser(ctx); err != nil {
		return nil, err
	}

	items, err := s.services.Items.SearchItems(ctx, input.Q)
	if err != nil {
		return nil, err
	}
	return &ItemListOutput{Body: items}, nil
}

func (s *Server) handleGetItem(ctx context.Context, input *ItemIDInput) (*ItemOutput, error) {
	if _, err := requireUser(ctx); err != nil {
		return nil, err
	}

	item, err := s.services.Items.GetItem(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &ItemOutput{Body: item}, nil
}

func (s *Server) handleCreateItem(ctx context.Context, input *CreateItemInput) (*ItemOutput, error) {
	user, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}

	body := input.Body
	req := service.CreateItemRequest{
		Title:    body.Title,
		ItemType: body.ItemType,
		Tags:     body.Tags,
		Authors:  body.Authors,
	}
	if body.SourceURL != nil {
		req.SourceURL = *body.SourceURL
	}

	item, err := s.services.Items.CreateItem(ctx, user, req)
	if err != nil {
		return nil, err
	}
	return &ItemOutput{Body: item}, nil
}

func (s *Server) handleUpdateItem(ctx context.Context, input *UpdateItemInput) (*ItemOutput, error) {
	user, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}

	body := input.Body
	item, err := s.services.Items.UpdateItem(ctx, user, input.ID, service.UpdateItemRequest{
		Title:     body.Title,
		SourceURL: body.SourceURL,
		ItemType:  body.ItemType,
		Tags:      body.Tags,
		Authors:   body.Authors,
	})
	if err != nil {
		return nil, err
	}
	return &ItemOutput{Body: item}, nil
}

func (s *Server) handleDeleteItem(ctx context.Context, input *ItemIDInput) (*struct{}, error) {
	user, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.services.Items.DeleteItem(ctx, user, input.ID); err != nil {
		return nil, err
	}
	return nil, nil
}
