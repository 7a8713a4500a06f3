package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/bookshelfapp/bookshelf-server/internal/domain"
)

// BadgerStore keeps sessions in an embedded badger database.
type BadgerStore struct {
	db     *badger.DB
	ttl    time.Duration
	logger *slog.Logger
}

// NewBadgerStore opens (or creates) a badger database at path.
// An empty path keeps sessions in memory, which tests rely on.
func NewBadgerStore(path string, ttl time.Duration, logger *slog.Logger) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path)
	if path == "" {
		opts = opts.WithInMemory(true)
	}
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open session database: %w", err)
	}

	if logger != nil {
		logger.Info("Session store opened", "backend", "badger", "path", path, "ttl", ttl)
	}

	return &BadgerStore{db: db, ttl: ttl, logger: logger}, nil
}

func (b *BadgerStore) Create(_ context.Context, user domain.SessionUser) (*Session, error) {
	s := newSession(user, b.ttl)
	data, err := encode(s)
	if err != nil {
		return nil, err
	}

	err = b.db.Update(func(txn *badger.Txn) error {
		return txn.SetEntry(badger.NewEntry(key(s.ID), data).WithTTL(b.ttl))
	})
	if err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	return s, nil
}

func (b *BadgerStore) Get(_ context.Context, id string) (*Session, error) {
	var data []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key(id))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get session: %w", err)
	}
	return decode(data)
}

func (b *BadgerStore) Delete(_ context.Context, id string) error {
	err := b.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(key(id))
	})
	if err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (b *BadgerStore) Close() error {
	return b.db.Close()
}
