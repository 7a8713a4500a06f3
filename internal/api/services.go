package api

import (
	"context"

	"github.com/bookshelfapp/bookshelf-server/internal/service"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Services groups the services the HTTP layer calls into.
type Services struct {
	Users    *service.UserService
	Auth     *service.AuthService
	Items    *service.ItemService
	Tags     *service.TagService
	Activity *service.ActivityService
	DB       Pinger
}
