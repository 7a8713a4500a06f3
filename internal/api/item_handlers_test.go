package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookshelfapp/bookshelf-server/internal/domain"
)

func TestCreateItem(t *testing.T) {
	ts := setupTestServer(t)
	admin := ts.bootstrapAdmin(t)

	item := ts.createItem(t, admin, map[string]any{
		"title":      "Politics and the English Language",
		"source_url": "https://example.com/orwell",
		"item_type":  "essay",
		"added_by":   "u_someone_else",
		"tags":       []map[string]any{{"name": "writing"}, {"name": "  politics  "}},
		"authors":    []map[string]any{{"name": "George Orwell"}},
	})

	assert.Regexp(t, `^i_`, item.ID)
	assert.Equal(t, domain.ItemTypeEssay, item.ItemType)
	require.NotNil(t, item.SourceURL)
	assert.Equal(t, "https://example.com/orwell", *item.SourceURL)

	resp := ts.api.Get("/api/auth/session", admin)
	owner := decodeEnvelope[SessionResponse](t, resp).Data.User
	assert.Equal(t, owner.ID, item.AddedBy, "client-supplied added_by is ignored")

	require.Len(t, item.Tags, 2)
	assert.Equal(t, "politics", item.Tags[0].Name, "names are trimmed, tags sorted by name")
	assert.Equal(t, "writing", item.Tags[1].Name)
	assert.Regexp(t, `^t_`, item.Tags[0].ID)
	require.Len(t, item.Authors, 1)
	assert.Regexp(t, `^h_`, item.Authors[0].ID)
	assert.Equal(t, domain.TagKindAuthor, item.Authors[0].Type)
}

func TestCreateItem_DefaultsAndReuse(t *testing.T) {
	ts := setupTestServer(t)
	admin := ts.bootstrapAdmin(t)

	first := ts.createItem(t, admin, map[string]any{
		"title":   "First",
		"authors": []map[string]any{{"name": "Ursula K. Le Guin", "type": "author"}},
	})
	second := ts.createItem(t, admin, map[string]any{
		"title":      "Second",
		"source_url": nil,
		"authors":    []map[string]any{{"name": "Ursula K. Le Guin"}},
	})

	assert.Equal(t, domain.DefaultItemType, second.ItemType)
	assert.Nil(t, second.SourceURL)
	require.Len(t, second.Authors, 1)
	assert.Equal(t, first.Authors[0].ID, second.Authors[0].ID, "existing author is reused by name")
}

func TestCreateItem_Validation(t *testing.T) {
	ts := setupTestServer(t)
	admin := ts.bootstrapAdmin(t)

	tests := []struct {
		name  string
		body  map[string]any
		field string
	}{
		{"missing title", map[string]any{"item_type": "book"}, ""},
		{"empty title", map[string]any{"title": ""}, "title"},
		{"bad url", map[string]any{"title": "x", "source_url": "ftp://nowhere"}, "source_url"},
		{"bad type", map[string]any{"title": "x", "item_type": "podcast"}, "item_type"},
		{"bad tag type", map[string]any{"title": "x", "tags": []map[string]any{{"name": "x", "type": "genre"}}}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := ts.api.Post("/api/items", admin, tt.body)
			assert.Equal(t, http.StatusBadRequest, resp.Code, resp.Body.String())
			env := decodeEnvelope[any](t, resp)
			assert.Equal(t, "VALIDATION", env.Code)
			if tt.field != "" {
				assert.Contains(t, env.Details, tt.field)
			}
		})
	}
}

func TestGetAndListItems(t *testing.T) {
	ts := setupTestServer(t)
	admin := ts.bootstrapAdmin(t)

	older := ts.createItem(t, admin, map[string]any{"title": "Older"})
	newer := ts.createItem(t, admin, map[string]any{"title": "Newer", "tags": []map[string]any{{"name": "fiction"}}})

	resp := ts.api.Get("/api/items", admin)
	require.Equal(t, http.StatusOK, resp.Code)
	items := decodeEnvelope[[]*domain.ItemWithMeta](t, resp).Data
	require.Len(t, items, 2)
	assert.Equal(t, newer.ID, items[0].ID)
	assert.Equal(t, older.ID, items[1].ID)
	assert.NotNil(t, items[1].Tags)

	resp = ts.api.Get("/api/items/"+newer.ID, admin)
	require.Equal(t, http.StatusOK, resp.Code)
	got := decodeEnvelope[*domain.ItemWithMeta](t, resp).Data
	require.Len(t, got.Tags, 1)
	assert.Equal(t, "fiction", got.Tags[0].Name)

	resp = ts.api.Get("/api/items/i_missing", admin)
	assert.Equal(t, http.StatusNotFound, resp.Code)
	assert.Equal(t, "Item not found", decodeEnvelope[any](t, resp).Error)
}

func TestUpdateItem(t *testing.T) {
	ts := setupTestServer(t)
	admin := ts.bootstrapAdmin(t)
	member := ts.addMember(t, admin, "bob")

	item := ts.createItem(t, admin, map[string]any{
		"title":      "Draft",
		"source_url": "https://example.com/a",
		"tags":       []map[string]any{{"name": "one"}},
	})

	t.Run("owner edits fields and adds tags", func(t *testing.T) {
		resp := ts.api.Patch("/api/items/"+item.ID, admin, map[string]any{
			"title":      "Final",
			"source_url": "",
			"tags":       []map[string]any{{"name": "two"}},
		})
		require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

		got := decodeEnvelope[*domain.ItemWithMeta](t, resp).Data
		assert.Equal(t, "Final", got.Title)
		assert.Nil(t, got.SourceURL)
		assert.Len(t, got.Tags, 2, "tags are added, not replaced")
	})

	t.Run("non-owner is forbidden", func(t *testing.T) {
		resp := ts.api.Patch("/api/items/"+item.ID, member, map[string]any{"title": "Mine now"})
		assert.Equal(t, http.StatusForbidden, resp.Code)
		assert.Equal(t, "You can only edit items you added", decodeEnvelope[any](t, resp).Error)
	})

	t.Run("empty update", func(t *testing.T) {
		resp := ts.api.Patch("/api/items/"+item.ID, admin, map[string]any{})
		assert.Equal(t, http.StatusBadRequest, resp.Code)
		assert.Equal(t, "No valid fields to update", decodeEnvelope[any](t, resp).Error)
	})

	t.Run("missing item", func(t *testing.T) {
		resp := ts.api.Patch("/api/items/i_missing", admin, map[string]any{"title": "x"})
		assert.Equal(t, http.StatusNotFound, resp.Code)
	})
}

func TestDeleteItem(t *testing.T) {
	ts := setupTestServer(t)
	admin := ts.bootstrapAdmin(t)
	member := ts.addMember(t, admin, "bob")

	item := ts.createItem(t, admin, map[string]any{"title": "Doomed"})

	resp := ts.api.Delete("/api/items/"+item.ID, member)
	assert.Equal(t, http.StatusForbidden, resp.Code)
	assert.Equal(t, "You can only delete items you added", decodeEnvelope[any](t, resp).Error)

	resp = ts.api.Delete("/api/items/"+item.ID, admin)
	assert.Equal(t, http.StatusNoContent, resp.Code)
	assert.Empty(t, resp.Body.String())

	resp = ts.api.Delete("/api/items/"+item.ID, admin)
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestSearchItems(t *testing.T) {
	ts := setupTestServer(t)
	admin := ts.bootstrapAdmin(t)

	ts.createItem(t, admin, map[string]any{"title": "The Ones Who Walk Away from Omelas", "authors": []map[string]any{{"name": "Le Guin"}}})
	ts.createItem(t, admin, map[string]any{"title": "Shooting an Elephant", "authors": []map[string]any{{"name": "Orwell"}}})

	resp := ts.api.Get("/api/items/search?q=omelas", admin)
	require.Equal(t, http.StatusOK, resp.Code)
	hits := decodeEnvelope[[]*domain.ItemWithMeta](t, resp).Data
	require.Len(t, hits, 1)
	assert.Contains(t, hits[0].Title, "Omelas")

	resp = ts.api.Get("/api/items/search?q=orwell", admin)
	require.Equal(t, http.StatusOK, resp.Code)
	hits = decodeEnvelope[[]*domain.ItemWithMeta](t, resp).Data
	require.Len(t, hits, 1)
	assert.Equal(t, "Shooting an Elephant", hits[0].Title)

	resp = ts.api.Get("/api/items/search?q=", admin)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Empty(t, decodeEnvelope[[]*domain.ItemWithMeta](t, resp).Data)
}
