package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/bookshelfapp/bookshelf-server/internal/config"
	"github.com/bookshelfapp/bookshelf-server/internal/logger"
	"github.com/bookshelfapp/bookshelf-server/internal/search"
	"github.com/bookshelfapp/bookshelf-server/internal/service"
)

// SearchIndexHandle wraps the search index with shutdown capability.
// Index is nil when full-text search is disabled.
type SearchIndexHandle struct {
	Index *search.ItemIndex
}

// Shutdown implements do.Shutdownable.
func (h *SearchIndexHandle) Shutdown() error {
	if h.Index == nil {
		return nil
	}
	return h.Index.Close()
}

// ProvideSearchIndex provides the Bleve item index.
func ProvideSearchIndex(i do.Injector) (*SearchIndexHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if cfg.Search.DataPath == "" {
		log.Info("Full-text search disabled, item search uses title matching")
		return &SearchIndexHandle{}, nil
	}

	index, err := search.NewItemIndex(search.Options{
		DataPath: cfg.Search.DataPath,
		Logger:   log.Logger,
	})
	if err != nil {
		return nil, err
	}

	docCount, _ := index.DocumentCount()
	log.Info("Search index initialized", "path", cfg.Search.DataPath, "documents", docCount)

	return &SearchIndexHandle{Index: index}, nil
}

// RebuildSearchIndex reindexes every item in the background. The index is a
// cache of the database, so it is rebuilt on every start.
func RebuildSearchIndex(i do.Injector) {
	handle := do.MustInvoke[*SearchIndexHandle](i)
	if handle.Index == nil {
		return
	}

	items := do.MustInvoke[*service.ItemService](i)
	log := do.MustInvoke[*logger.Logger](i)

	go func() {
		if err := items.RebuildIndex(context.Background()); err != nil {
			log.Error("Search reindex failed", "error", err)
			return
		}
		count, _ := handle.Index.DocumentCount()
		log.Info("Search index rebuilt", "documents", count)
	}()
}
