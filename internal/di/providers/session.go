package providers

import (
	"context"
	"fmt"
	"time"

	"github.com/samber/do/v2"

	"github.com/bookshelfapp/bookshelf-server/internal/config"
	"github.com/bookshelfapp/bookshelf-server/internal/logger"
	"github.com/bookshelfapp/bookshelf-server/internal/session"
)

const redisConnectTimeout = 5 * time.Second

// SessionStoreHandle wraps the configured session backend with shutdown capability.
type SessionStoreHandle struct {
	session.Store
}

// Shutdown implements do.Shutdownable.
func (h *SessionStoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideSessionStore opens the badger or redis session store.
func ProvideSessionStore(i do.Injector) (*SessionStoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	switch cfg.Session.Backend {
	case config.SessionBackendRedis:
		ctx, cancel := context.WithTimeout(context.Background(), redisConnectTimeout)
		defer cancel()

		st, err := session.NewRedisStore(ctx, session.RedisOptions{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}, cfg.Session.TTL, log.Logger)
		if err != nil {
			return nil, err
		}
		log.Info("Session store ready", "backend", "redis", "addr", cfg.Redis.Addr)
		return &SessionStoreHandle{Store: st}, nil

	case config.SessionBackendBadger:
		st, err := session.NewBadgerStore(cfg.Session.DataPath, cfg.Session.TTL, log.Logger)
		if err != nil {
			return nil, err
		}
		log.Info("Session store ready", "backend", "badger", "path", cfg.Session.DataPath)
		return &SessionStoreHandle{Store: st}, nil

	default:
		return nil, fmt.Errorf("unknown session backend %q", cfg.Session.Backend)
	}
}
