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
	"github.com/bookshelfapp/bookshelf-server/internal/normalize"
	"github.com/bookshelfapp/bookshelf-server/internal/store"
)

// TagService resolves and serves topic tags and authors.
type TagService struct {
	store  store.Tags
	logger *slog.Logger
}

// NewTagService creates a tag service.
func NewTagService(store store.Tags, logger *slog.Logger) *TagService {
	return &TagService{store: store, logger: orDiscard(logger)}
}

// Upsert resolves ref to a tag id, creating the tag if needed.
//
// A supplied id is returned unchanged without checking that it exists.
// Otherwise the name is looked up exactly among ids carrying the kind's
// prefix (h_ for authors, t_ for everything else); on a miss a new row is
// inserted. Lookup and insert are separate statements, so two concurrent
// upserts of a new name can both insert and leave duplicate names behind.
func (s *TagService) Upsert(ctx context.Context, ref domain.TagRef) (string, error) {
	if ref.ID != "" {
		return ref.ID, nil
	}

	name := normalize.Name(ref.Name)
	if name == "" {
		return "", domainerrors.Validation("tag name is required")
	}

	kind := ref.Type
	if kind != domain.TagKindAuthor {
		kind = domain.TagKindTopic
	}

	existing, err := s.store.FindTagByName(ctx, name, kind)
	if err == nil {
		return existing.ID, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return "", domainerrors.Wrapf(err, domainerrors.CodeInternal, "find %s %q", kind, name)
	}

	tagID, err := id.Generate(kind.Prefix())
	if err != nil {
		return "", fmt.Errorf("generate tag ID: %w", err)
	}

	tag := &domain.Tag{ID: tagID, Name: name, Type: kind, CreatedAt: time.Now().UTC()}
	if err := s.store.CreateTag(ctx, tag); err != nil {
		return "", domainerrors.Wrapf(err, domainerrors.CodeInternal, "create %s %q", kind, name)
	}

	s.logger.Debug("Tag created", "tag_id", tagID, "name", name, "type", kind)
	return tagID, nil
}

// resolve upserts refs in order, forcing each to kind.
func (s *TagService) resolve(ctx context.Context, refs []TagInput, kind domain.TagKind) ([]string, error) {
	ids := make([]string, 0, len(refs))
	for _, ref := range refs {
		tagID, err := s.Upsert(ctx, domain.TagRef{ID: ref.ID, Name: ref.Name, Type: kind})
		if err != nil {
			return nil, err
		}
		ids = append(ids, tagID)
	}
	return ids, nil
}

// ListTags returns every tag and author.
func (s *TagService) ListTags(ctx context.Context) ([]*domain.Tag, error) {
	tags, err := s.store.ListTags(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	return tags, nil
}

// GetTag returns one tag or author.
func (s *TagService) GetTag(ctx context.Context, tagID string) (*domain.Tag, error) {
	tag, err := s.store.GetTag(ctx, tagID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, domainerrors.NotFound("Tag not found")
	}
	if err != nil {
		return nil, fmt.Errorf("get tag: %w", err)
	}
	return tag, nil
}

// SearchTags matches names case-insensitively, prefix matches first.
// A blank query returns an empty list.
func (s *TagService) SearchTags(ctx context.Context, query string) ([]*domain.Tag, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []*domain.Tag{}, nil
	}
	tags, err := s.store.SearchTags(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("search tags: %w", err)
	}
	return tags, nil
}
