package providers

import (
	"context"
	"errors"
	"net/http"

	"github.com/samber/do/v2"

	"github.com/bookshelfapp/bookshelf-server/internal/api"
	"github.com/bookshelfapp/bookshelf-server/internal/auth"
	"github.com/bookshelfapp/bookshelf-server/internal/config"
	"github.com/bookshelfapp/bookshelf-server/internal/logger"
	"github.com/bookshelfapp/bookshelf-server/internal/ratelimit"
	"github.com/bookshelfapp/bookshelf-server/internal/service"
)

// LoginLimiterHandle wraps the login rate limiter with shutdown capability.
type LoginLimiterHandle struct {
	*ratelimit.KeyedRateLimiter
}

// Shutdown implements do.Shutdownable.
func (h *LoginLimiterHandle) Shutdown() error {
	h.Stop()
	return nil
}

// ProvideLoginLimiter provides the per-IP login rate limiter.
func ProvideLoginLimiter(i do.Injector) (*LoginLimiterHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	return &LoginLimiterHandle{
		KeyedRateLimiter: ratelimit.PerMinute(cfg.RateLimit.LoginPerMinute, cfg.RateLimit.LoginBurst),
	}, nil
}

// HTTPServerHandle wraps http.Server with Shutdownable.
type HTTPServerHandle struct {
	*http.Server
}

// Shutdown implements do.Shutdownable.
func (h *HTTPServerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.Server.Shutdown(ctx)
}

// ProvideHTTPServer builds the API handler and starts listening in the background.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	sealer := do.MustInvoke[*auth.CookieSealer](i)
	limiter := do.MustInvoke[*LoginLimiterHandle](i)
	events := do.MustInvoke[*EventManagerHandle](i)

	services := &api.Services{
		Users:    do.MustInvoke[*service.UserService](i),
		Auth:     do.MustInvoke[*service.AuthService](i),
		Items:    do.MustInvoke[*service.ItemService](i),
		Tags:     do.MustInvoke[*service.TagService](i),
		Activity: do.MustInvoke[*service.ActivityService](i),
		DB:       storeHandle.Store,
	}

	handler := api.NewServer(services, sealer, api.Options{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Cookie: api.CookieConfig{
			Name:   cfg.Session.CookieName,
			Secure: cfg.App.IsProduction(),
		},
		LoginLimiter: limiter.KeyedRateLimiter,
		Events:       events.Manager,
	}, log)

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start in background
	go func() {
		log.Info("HTTP server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server error", "error", err)
		}
	}()

	return &HTTPServerHandle{Server: srv}, nil
}
