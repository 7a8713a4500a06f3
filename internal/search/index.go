// Package search maintains a bleve full-text index over items so the search
// endpoint can rank by title, author and tag matches.
package search

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/blevesearch/bleve/v2"

	"github.com/bookshelfapp/bookshelf-server/internal/domain"
)

// ItemIndex wraps a bleve index of items. Safe for concurrent use.
type ItemIndex struct {
	index  bleve.Index
	path   string
	logger *slog.Logger
	mu     sync.RWMutex
}

// Options configures the index.
type Options struct {
	DataPath string       // Directory for index storage; empty keeps the index in memory
	Logger   *slog.Logger // Uses a discard logger if nil
}

// mappingVersion is bumped whenever buildIndexMapping changes so stale
// on-disk indexes get rebuilt at startup.
const mappingVersion = "1"

// NewItemIndex creates or opens the item index.
// A corrupt index or one written with another mapping version is recreated
// empty; callers repopulate it with Reindex.
func NewItemIndex(opts Options) (*ItemIndex, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	if opts.DataPath == "" {
		index, err := bleve.NewMemOnly(buildIndexMapping())
		if err != nil {
			return nil, fmt.Errorf("create in-memory index: %w", err)
		}
		return &ItemIndex{index: index, logger: logger}, nil
	}

	if err := os.MkdirAll(opts.DataPath, 0o755); err != nil {
		return nil, fmt.Errorf("create search directory: %w", err)
	}

	indexPath := filepath.Join(opts.DataPath, "items.bleve")
	versionPath := filepath.Join(opts.DataPath, "items.version")

	var index bleve.Index
	if _, err := os.Stat(indexPath); err == nil {
		existing, readErr := os.ReadFile(versionPath)
		switch {
		case readErr != nil || string(existing) != mappingVersion:
			logger.Info("search mapping version changed, rebuilding",
				"old_version", string(existing),
				"new_version", mappingVersion,
			)
		default:
			index, err = bleve.Open(indexPath)
			if err != nil {
				logger.Warn("failed to open search index, recreating", "path", indexPath, "error", err)
				index = nil
			}
		}
		if index == nil {
			if err := os.RemoveAll(indexPath); err != nil {
				return nil, fmt.Errorf("remove old index: %w", err)
			}
		}
	}

	if index == nil {
		var err error
		index, err = bleve.New(indexPath, buildIndexMapping())
		if err != nil {
			return nil, fmt.Errorf("create index: %w", err)
		}
		if err := os.WriteFile(versionPath, []byte(mappingVersion), 0o644); err != nil {
			logger.Warn("failed to write search version file", "error", err)
		}
		logger.Info("Created search index", "path", indexPath, "mapping_version", mappingVersion)
	} else {
		logger.Info("Opened search index", "path", indexPath)
	}

	return &ItemIndex{index: index, path: indexPath, logger: logger}, nil
}

// Close closes the index.
func (s *ItemIndex) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index.Close()
}

// IndexItem adds or replaces one item.
func (s *ItemIndex) IndexItem(item *domain.ItemWithMeta) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc := NewItemDocument(item)
	if err := s.index.Index(doc.ID, doc.ToMap()); err != nil {
		return fmt.Errorf("index item %s: %w", doc.ID, err)
	}
	return nil
}

// DeleteItem removes an item. Unknown ids are ignored.
func (s *ItemIndex) DeleteItem(id string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.Delete(id)
}

// Reindex indexes items in batches of 500. Existing documents with the same
// id are replaced; others are left alone.
func (s *ItemIndex) Reindex(items []*domain.ItemWithMeta) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	const batchSize = 500

	for start := 0; start < len(items); start += batchSize {
		end := min(start+batchSize, len(items))

		batch := s.index.NewBatch()
		for _, item := range items[start:end] {
			doc := NewItemDocument(item)
			if err := batch.Index(doc.ID, doc.ToMap()); err != nil {
				return fmt.Errorf("batch index %s: %w", doc.ID, err)
			}
		}
		if err := s.index.Batch(batch); err != nil {
			return fmt.Errorf("commit batch %d-%d: %w", start, end, err)
		}
	}

	s.logger.Info("Search index populated", "items", len(items))
	return nil
}

// DocumentCount returns the number of indexed items.
func (s *ItemIndex) DocumentCount() (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.DocCount()
}
