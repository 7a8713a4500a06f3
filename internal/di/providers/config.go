package providers

import (
	"github.com/samber/do/v2"

	"github.com/bookshelfapp/bookshelf-server/internal/config"
	"github.com/bookshelfapp/bookshelf-server/internal/logger"
)

// ProvideConfig provides the application configuration.
func ProvideConfig(i do.Injector) (*config.Config, error) {
	return config.LoadConfig()
}

// ProvideLogger provides the structured logger.
func ProvideLogger(i do.Injector) (*logger.Logger, error) {
	cfg := do.MustInvoke[*config.Config](i)

	log := logger.New(logger.Config{
		Level:       logger.ParseLevel(cfg.Logger.Level),
		AddSource:   !cfg.App.IsProduction(),
		Environment: cfg.App.Environment,
	})

	log.Info("Starting bookshelf server",
		"environment", cfg.App.Environment,
		"log_level", cfg.Logger.Level,
		"database", cfg.Database.Path,
		"session_backend", cfg.Session.Backend,
	)

	return log, nil
}
