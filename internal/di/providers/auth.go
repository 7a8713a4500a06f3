package providers

import (
	"os"

	"github.com/samber/do/v2"

	"github.com/bookshelfapp/bookshelf-server/internal/auth"
	"github.com/bookshelfapp/bookshelf-server/internal/config"
	"github.com/bookshelfapp/bookshelf-server/internal/logger"
)

// ProvideCookieSealer loads or generates the session cookie key.
func ProvideCookieSealer(i do.Injector) (*auth.CookieSealer, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if err := os.MkdirAll(cfg.Session.SecretKeyPath, 0o700); err != nil {
		return nil, err
	}

	key, err := auth.LoadOrGenerateKey(cfg.Session.SecretKeyPath)
	if err != nil {
		return nil, err
	}

	log.Info("Session key ready", "path", cfg.Session.SecretKeyPath)

	return auth.NewCookieSealer(key, cfg.Session.TTL)
}
