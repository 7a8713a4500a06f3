package api

import (
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/go-chi/chi/v5/middleware"

	domainerrors "github.com/bookshelfapp/bookshelf-server/internal/errors"
	"github.com/bookshelfapp/bookshelf-server/internal/http/response"
	"github.com/bookshelfapp/bookshelf-server/internal/logger"
)

var errTooManyLogins = domainerrors.RateLimited("Too many login attempts. Please try again later.")

// requestLogger logs one line per request and hands downstream handlers a
// logger tagged with the request id (see logger.FromContext).
func requestLogger(base *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			log := base.WithField("request_id", middleware.GetReqID(r.Context()))
			r = r.WithContext(logger.IntoContext(r.Context(), log))

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}

			level := slog.LevelInfo
			if status >= http.StatusInternalServerError {
				level = slog.LevelError
			}

			log.Log(r.Context(), level, "HTTP request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", status,
				"duration", time.Since(start),
			)
		})
	}
}

// sessionMiddleware resolves the session cookie to a user. Requests without
// a valid session pass through anonymously; handlers decide whether that is
// allowed.
func (s *Server) sessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(s.cookie.Name)
		if err != nil || cookie.Value == "" {
			next.ServeHTTP(w, r)
			return
		}

		log := logger.FromContext(r.Context(), s.logger)

		sessionID, err := s.sealer.Open(cookie.Value)
		if err != nil {
			log.WithError(err).Debug("Ignoring invalid session cookie")
			next.ServeHTTP(w, r)
			return
		}

		user, err := s.services.Auth.CurrentUser(r.Context(), sessionID)
		if err != nil {
			if errors.Is(err, domainerrors.ErrUnauthorized) {
				next.ServeHTTP(w, r)
				return
			}
			log.WithError(err).Error("Session lookup failed")
			response.InternalError(w, log.Logger)
			return
		}

		next.ServeHTTP(w, r.WithContext(withSession(r.Context(), user, sessionID)))
	})
}

// loginRateLimit is a huma operation middleware throttling logins per client IP.
func (s *Server) loginRateLimit(ctx huma.Context, next func(huma.Context)) {
	if s.loginLimiter != nil && !s.loginLimiter.Allow(clientIP(ctx.RemoteAddr())) {
		logger.FromContext(ctx.Context(), s.logger).Warn("Login rate limit exceeded", "ip", clientIP(ctx.RemoteAddr()))
		_ = huma.WriteErr(s.api, ctx, http.StatusTooManyRequests, errTooManyLogins.Message, errTooManyLogins)
		return
	}
	next(ctx)
}

// clientIP strips the port from a remote address. RealIP has already
// replaced it with X-Forwarded-For when present.
func clientIP(remoteAddr string) string {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		return remoteAddr
	}
	return host
}
