package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/bookshelfapp/bookshelf-server/internal/domain"
	domainerrors "github.com/bookshelfapp/bookshelf-server/internal/errors"
	"github.com/bookshelfapp/bookshelf-server/internal/id"
	"github.com/bookshelfapp/bookshelf-server/internal/search"
	"github.com/bookshelfapp/bookshelf-server/internal/store"
	"github.com/bookshelfapp/bookshelf-server/internal/validation"
)

var errItemNotFound = domainerrors.NotFound("Item not found")

// ItemIndex is the full-text index the item service keeps in step with the
// store. *search.ItemIndex implements it.
type ItemIndex interface {
	IndexItem(item *domain.ItemWithMeta) error
	DeleteItem(id string) error
	Reindex(items []*domain.ItemWithMeta) error
	Search(ctx context.Context, params search.Params) ([]search.Hit, error)
}

// TagInput references a tag or author by id or by name. Its kind comes from
// the list it appears in; Type is checked but not consulted.
type TagInput struct {
	ID   string         `json:"id,omitempty" doc:"Existing tag id; trusted as-is"`
	Name string         `json:"name,omitempty" validate:"required_without=ID" doc:"Display name, used when id is empty"`
	Type domain.TagKind `json:"type,omitempty" validate:"omitempty,tag_kind" doc:"tag or author"`
}

// CreateItemRequest is the body of an item creation.
type CreateItemRequest struct {
	Title     string          `json:"title" validate:"required,min=1,max=500"`
	SourceURL string          `json:"source_url,omitempty" validate:"omitempty,source_url"`
	ItemType  domain.ItemType `json:"item_type,omitempty" validate:"omitempty,item_type"`
	Tags      []TagInput      `json:"tags,omitempty" validate:"dive"`
	Authors   []TagInput      `json:"authors,omitempty" validate:"dive"`
}

// UpdateItemRequest is the body of an item edit. Nil fields are untouched;
// an empty SourceURL clears it. Tags and authors are added, never removed.
type UpdateItemRequest struct {
	Title     *string          `json:"title,omitempty" validate:"omitempty,min=1,max=500"`
	SourceURL *string          `json:"source_url,omitempty"`
	ItemType  *domain.ItemType `json:"item_type,omitempty" validate:"omitempty,item_type"`
	Tags      []TagInput       `json:"tags,omitempty" validate:"dive"`
	Authors   []TagInput       `json:"authors,omitempty" validate:"dive"`
}

// ItemService manages items and their tag and author links.
type ItemService struct {
	store    store.Store
	tags     *TagService
	activity *ActivityService
	index    ItemIndex // nil when full-text search is disabled
	logger   *slog.Logger
}

// NewItemService creates an item service. index may be nil.
func NewItemService(store store.Store, tags *TagService, activity *ActivityService, index ItemIndex, logger *slog.Logger) *ItemService {
	return &ItemService{
		store:    store,
		tags:     tags,
		activity: activity,
		index:    index,
		logger:   orDiscard(logger),
	}
}

// ListItems returns every item, newest first, with tags and authors.
func (s *ItemService) ListItems(ctx context.Context) ([]*domain.ItemWithMeta, error) {
	items, err := s.store.ListItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	return s.hydrate(ctx, items)
}

// GetItem returns one item with tags and authors.
func (s *ItemService) GetItem(ctx context.Context, itemID string) (*domain.ItemWithMeta, error) {
	item, err := s.store.GetItem(ctx, itemID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, errItemNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}

	hydrated, err := s.hydrate(ctx, []*domain.Item{item})
	if err != nil {
		return nil, err
	}
	return hydrated[0], nil
}

// CreateItem adds an item owned by actor. Tags and authors are resolved in
// input order; each input list is forced to its own kind.
func (s *ItemService) CreateItem(ctx context.Context, actor domain.SessionUser, req CreateItemRequest) (*domain.ItemWithMeta, error) {
	req.Title = strings.TrimSpace(req.Title)
	req.SourceURL = strings.TrimSpace(req.SourceURL)
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	tagIDs, err := s.tags.resolve(ctx, req.Tags, domain.TagKindTopic)
	if err != nil {
		return nil, err
	}
	authorIDs, err := s.tags.resolve(ctx, req.Authors, domain.TagKindAuthor)
	if err != nil {
		return nil, err
	}

	itemID, err := id.Generate(id.Item)
	if err != nil {
		return nil, fmt.Errorf("generate item ID: %w", err)
	}

	itemType := req.ItemType
	if itemType == "" {
		itemType = domain.DefaultItemType
	}

	item := &domain.Item{
		ID:        itemID,
		Title:     req.Title,
		ItemType:  itemType,
		AddedBy:   actor.ID,
		CreatedAt: time.Now().UTC(),
	}
	if req.SourceURL != "" {
		item.SourceURL = &req.SourceURL
	}

	if err := s.store.CreateItem(ctx, item); err != nil {
		return nil, fmt.Errorf("create item: %w", err)
	}
	if err := s.link(ctx, actor, itemID, tagIDs, authorIDs); err != nil {
		return nil, err
	}

	s.activity.Record(ctx, actor.ID, domain.ActionItemAdded, itemID, domain.EntityItem)

	created, err := s.GetItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	s.reindex(created)

	s.logger.Info("Item created",
		"item_id", itemID,
		"user_id", actor.ID,
		"tags", len(tagIDs),
		"authors", len(authorIDs),
	)
	return created, nil
}

// UpdateItem edits an item the actor added.
func (s *ItemService) UpdateItem(ctx context.Context, actor domain.SessionUser, itemID string, req UpdateItemRequest) (*domain.ItemWithMeta, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	update := domain.ItemUpdate{ItemType: req.ItemType}
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, domainerrors.ValidationWithDetails("Invalid request: title is required",
				map[string]string{"title": "is required"})
		}
		update.Title = &title
	}
	if req.SourceURL != nil {
		u := strings.TrimSpace(*req.SourceURL)
		if u != "" && !validation.ValidSourceURL(u) {
			return nil, domainerrors.ValidationWithDetails("Invalid request: source_url must be an http(s) URL",
				map[string]string{"source_url": "must be an http(s) URL"})
		}
		update.SourceURL = &u
	}

	if err := s.requireOwner(ctx, actor, itemID, "You can only edit items you added"); err != nil {
		return nil, err
	}

	if update.Empty() && len(req.Tags) == 0 && len(req.Authors) == 0 {
		return nil, domainerrors.BadRequest("No valid fields to update")
	}

	// Resolve first so a rejected tag leaves the item untouched.
	tagIDs, err := s.tags.resolve(ctx, req.Tags, domain.TagKindTopic)
	if err != nil {
		return nil, err
	}
	authorIDs, err := s.tags.resolve(ctx, req.Authors, domain.TagKindAuthor)
	if err != nil {
		return nil, err
	}

	if !update.Empty() {
		if _, err := s.store.UpdateItem(ctx, itemID, update); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return nil, errItemNotFound
			}
			return nil, fmt.Errorf("update item: %w", err)
		}
	}

	if err := s.link(ctx, actor, itemID, tagIDs, authorIDs); err != nil {
		return nil, err
	}

	updated, err := s.GetItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	s.reindex(updated)

	s.logger.Info("Item updated", "item_id", itemID, "user_id", actor.ID)
	return updated, nil
}

// DeleteItem removes an item the actor added. Its tag and author link rows
// are left in place.
func (s *ItemService) DeleteItem(ctx context.Context, actor domain.SessionUser, itemID string) error {
	if err := s.requireOwner(ctx, actor, itemID, "You can only delete items you added"); err != nil {
		return err
	}

	if err := s.store.DeleteItem(ctx, itemID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return errItemNotFound
		}
		return fmt.Errorf("delete item: %w", err)
	}

	s.activity.Record(ctx, actor.ID, domain.ActionItemDeleted, itemID, domain.EntityItem)

	if s.index != nil {
		if err := s.index.DeleteItem(itemID); err != nil {
			s.logger.Warn("Failed to remove item from search index", "item_id", itemID, "error", err)
		}
	}

	s.logger.Info("Item deleted", "item_id", itemID, "user_id", actor.ID)
	return nil
}

// SearchItems finds items by title, author or tag. Without an index, or if
// the index fails, it falls back to a substring match over titles.
func (s *ItemService) SearchItems(ctx context.Context, query string) ([]*domain.ItemWithMeta, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []*domain.ItemWithMeta{}, nil
	}

	if s.index != nil {
		items, err := s.searchIndex(ctx, query)
		if err == nil {
			return items, nil
		}
		s.logger.Warn("Search index query failed, falling back to title match", "query", query, "error", err)
	}

	items, err := s.store.SearchItemTitles(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("search item titles: %w", err)
	}
	return s.hydrate(ctx, items)
}

func (s *ItemService) searchIndex(ctx context.Context, query string) ([]*domain.ItemWithMeta, error) {
	hits, err := s.index.Search(ctx, search.Params{Query: query})
	if err != nil {
		return nil, err
	}

	ids := make([]string, len(hits))
	for i, h := range hits {
		ids[i] = h.ID
	}
	items, err := s.store.GetItems(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load search hits: %w", err)
	}

	// Keep relevance order; skip hits deleted since indexing.
	byID := make(map[string]*domain.Item, len(items))
	for _, item := range items {
		byID[item.ID] = item
	}
	ordered := make([]*domain.Item, 0, len(items))
	for _, itemID := range ids {
		if item, ok := byID[itemID]; ok {
			ordered = append(ordered, item)
		}
	}
	return s.hydrate(ctx, ordered)
}

// RebuildIndex indexes every stored item. Called at startup.
func (s *ItemService) RebuildIndex(ctx context.Context) error {
	if s.index == nil {
		return nil
	}
	items, err := s.ListItems(ctx)
	if err != nil {
		return err
	}
	return s.index.Reindex(items)
}

func (s *ItemService) requireOwner(ctx context.Context, actor domain.SessionUser, itemID, denied string) error {
	owner, err := s.store.GetItemOwner(ctx, itemID)
	if errors.Is(err, store.ErrNotFound) {
		return errItemNotFound
	}
	if err != nil {
		return fmt.Errorf("get item owner: %w", err)
	}
	if owner != actor.ID {
		return domainerrors.Forbidden(denied)
	}
	return nil
}

func (s *ItemService) link(ctx context.Context, actor domain.SessionUser, itemID string, tagIDs, authorIDs []string) error {
	if err := s.store.LinkItemTags(ctx, itemID, tagIDs); err != nil {
		return fmt.Errorf("link tags: %w", err)
	}
	if err := s.store.LinkItemAuthors(ctx, itemID, authorIDs); err != nil {
		return fmt.Errorf("link authors: %w", err)
	}
	for _, tagID := range tagIDs {
		s.activity.Record(ctx, actor.ID, domain.ActionTagApplied, tagID, domain.EntityTag)
	}
	return nil
}

func (s *ItemService) reindex(item *domain.ItemWithMeta) {
	if s.index == nil {
		return
	}
	if err := s.index.IndexItem(item); err != nil {
		s.logger.Warn("Failed to index item", "item_id", item.ID, "error", err)
	}
}

// hydrate attaches tags and authors. Lists are never nil so they encode as [].
func (s *ItemService) hydrate(ctx context.Context, items []*domain.Item) ([]*domain.ItemWithMeta, error) {
	ids := make([]string, len(items))
	for i, item := range items {
		ids[i] = item.ID
	}

	meta, err := s.store.ItemMeta(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load item tags: %w", err)
	}

	out := make([]*domain.ItemWithMeta, len(items))
	for i, item := range items {
		m := meta[item.ID]
		hydrated := &domain.ItemWithMeta{Item: *item, Tags: m.Tags, Authors: m.Authors}
		if hydrated.Tags == nil {
			hydrated.Tags = []domain.Tag{}
		}
		if hydrated.Authors == nil {
			hydrated.Authors = []domain.Tag{}
		}
		out[i] = hydrated
	}
	return out, nil
}
