// Package service holds the bookshelf business rules: first-admin bootstrap,
// tag and author resolution, item ownership and authentication. Handlers pass
// the caller's session identity in explicitly; nothing here reads ambient
// request state.
package service

import (
	"log/slog"

	"github.com/bookshelfapp/bookshelf-server/internal/validation"
)

// validate is the shared request validator.
var validate = validation.New()

func orDiscard(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return logger
}
