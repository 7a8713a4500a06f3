package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bookshelfapp/bookshelf-server/internal/domain"
	"github.com/bookshelfapp/bookshelf-server/internal/store"
)

func TestCreateAndGetItem(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	makeTestUser(t, s, "u_1", "admin")

	url := "https://example.com/republic"
	item := &domain.Item{
		ID:        "i_1",
		Title:     "The Republic",
		SourceURL: &url,
		ItemType:  domain.ItemTypeBook,
		AddedBy:   "u_1",
		CreatedAt: time.Now(),
	}
	if err := s.CreateItem(ctx, item); err != nil {
		t.Fatalf("CreateItem: %v", err)
	}

	got, err := s.GetItem(ctx, "i_1")
	if err != nil {
		t.Fatalf("GetItem: %v", err)
	}
	if got.Title != "The Republic" || got.ItemType != domain.ItemTypeBook || got.AddedBy != "u_1" {
		t.Errorf("unexpected item: %+v", got)
	}
	if got.SourceURL == nil || *got.SourceURL != url {
		t.Errorf("SourceURL: got %v, want %q", got.SourceURL, url)
	}

	owner, err := s.GetItemOwner(ctx, "i_1")
	if err != nil {
		t.Fatalf("GetItemOwner: %v", err)
	}
	if owner != "u_1" {
		t.Errorf("owner: got %q, want u_1", owner)
	}
}

func TestCreateItem_NullSourceURL(t *testing.T) {
	s := newTestStore(t)
	makeTestUser(t, s, "u_1", "admin")
	makeTestItem(t, s, "i_1", "Untitled", "u_1")

	got, err := s.GetItem(context.Background(), "i_1")
	if err != nil {
		t.Fatalf("GetItem: %v", err)
	}
	if got.SourceURL != nil {
		t.Errorf("SourceURL: expected nil, got %q", *got.SourceURL)
	}
}

func TestCreateItem_RejectsUnknownType(t *testing.T) {
	s := newTestStore(t)
	makeTestUser(t, s, "u_1", "admin")

	err := s.CreateItem(context.Background(), &domain.Item{
		ID: "i_1", Title: "x", ItemType: "podcast", AddedBy: "u_1", CreatedAt: time.Now(),
	})
	if err == nil {
		t.Error("expected CHECK constraint failure for unknown item type")
	}
}

func TestItemNotFound(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.GetItem(ctx, "i_missing"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("GetItem: expected ErrNotFound, got %v", err)
	}
	if _, err := s.GetItemOwner(ctx, "i_missing"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("GetItemOwner: expected ErrNotFound, got %v", err)
	}
	if err := s.DeleteItem(ctx, "i_missing"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("DeleteItem: expected ErrNotFound, got %v", err)
	}
	title := "x"
	if _, err := s.UpdateItem(ctx, "i_missing", domain.ItemUpdate{Title: &title}); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("UpdateItem: expected ErrNotFound, got %v", err)
	}
}

func TestListItems_NewestFirst(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	makeTestUser(t, s, "u_1", "admin")

	makeTestItem(t, s, "i_1", "First", "u_1")
	makeTestItem(t, s, "i_2", "Second", "u_1")
	makeTestItem(t, s, "i_3", "Third", "u_1")

	items, err := s.ListItems(ctx)
	if err != nil {
		t.Fatalf("ListItems: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(items))
	}
	if items[0].ID != "i_3" || items[2].ID != "i_1" {
		t.Errorf("expected newest first, got %s..%s", items[0].ID, items[2].ID)
	}

	subset, err := s.GetItems(ctx, []string{"i_1", "i_3", "i_missing"})
	if err != nil {
		t.Fatalf("GetItems: %v", err)
	}
	if len(subset) != 2 {
		t.Errorf("expected 2 items, got %d", len(subset))
	}
}

func TestUpdateItem(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	makeTestUser(t, s, "u_1", "admin")
	makeTestItem(t, s, "i_1", "Draft", "u_1")

	title := "Final"
	url := "https://example.com/final"
	typ := domain.ItemTypeEssay
	got, err := s.UpdateItem(ctx, "i_1", domain.ItemUpdate{Title: &title, SourceURL: &url, ItemType: &typ})
	if err != nil {
		t.Fatalf("UpdateItem: %v", err)
	}
	if got.Title != "Final" || got.ItemType != domain.ItemTypeEssay || got.SourceURL == nil || *got.SourceURL != url {
		t.Errorf("unexpected item after update: %+v", got)
	}

	clear := ""
	got, err = s.UpdateItem(ctx, "i_1", domain.ItemUpdate{SourceURL: &clear})
	if err != nil {
		t.Fatalf("UpdateItem clear url: %v", err)
	}
	if got.SourceURL != nil {
		t.Errorf("expected source_url cleared, got %q", *got.SourceURL)
	}
	if got.Title != "Final" {
		t.Errorf("title changed unexpectedly: %q", got.Title)
	}

	if _, err := s.UpdateItem(ctx, "i_1", domain.ItemUpdate{}); !errors.Is(err, store.ErrInvalidInput) {
		t.Errorf("empty update: expected ErrInvalidInput, got %v", err)
	}
}

func TestDeleteItem_LeavesLinks(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	makeTestUser(t, s, "u_1", "admin")
	makeTestItem(t, s, "i_1", "Doomed", "u_1")

	if err := s.LinkItemTags(ctx, "i_1", []string{"t_a"}); err != nil {
		t.Fatalf("LinkItemTags: %v", err)
	}
	if err := s.LinkItemAuthors(ctx, "i_1", []string{"h_a"}); err != nil {
		t.Fatalf("LinkItemAuthors: %v", err)
	}

	if err := s.DeleteItem(ctx, "i_1"); err != nil {
		t.Fatalf("DeleteItem: %v", err)
	}
	if _, err := s.GetItem(ctx, "i_1"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected item gone, got %v", err)
	}

	var tagLinks, authorLinks int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM entity_tags WHERE entity_id = 'i_1'`).Scan(&tagLinks); err != nil {
		t.Fatalf("count entity_tags: %v", err)
	}
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM item_authors WHERE item_id = 'i_1'`).Scan(&authorLinks); err != nil {
		t.Fatalf("count item_authors: %v", err)
	}
	if tagLinks != 1 || authorLinks != 1 {
		t.Errorf("expected orphaned links to remain, got tags=%d authors=%d", tagLinks, authorLinks)
	}
}

func TestSearchItemTitles(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	makeTestUser(t, s, "u_1", "admin")
	makeTestItem(t, s, "i_1", "The Republic", "u_1")
	makeTestItem(t, s, "i_2", "Republic of Letters", "u_1")
	makeTestItem(t, s, "i_3", "Meditations", "u_1")

	items, err := s.SearchItemTitles(ctx, "REPUBLIC")
	if err != nil {
		t.Fatalf("SearchItemTitles: %v", err)
	}
	if len(items) != 2 {
		t.Errorf("expected 2 matches, got %d", len(items))
	}

	makeTestItem(t, s, "i_4", "Über Sinn und Bedeutung", "u_1")
	items, err = s.SearchItemTitles(ctx, "über")
	if err != nil {
		t.Fatalf("SearchItemTitles: %v", err)
	}
	if len(items) != 1 || items[0].ID != "i_4" {
		t.Errorf("expected non-ASCII case to fold, got %v", items)
	}
}
