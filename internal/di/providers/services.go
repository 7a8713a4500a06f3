package providers

import (
	"github.com/samber/do/v2"

	"github.com/bookshelfapp/bookshelf-server/internal/logger"
	"github.com/bookshelfapp/bookshelf-server/internal/service"
)

// ProvideActivityService provides the activity feed service.
func ProvideActivityService(i do.Injector) (*service.ActivityService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	events := do.MustInvoke[*EventManagerHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	svc := service.NewActivityService(storeHandle.Store, log.Logger)
	svc.SetPublisher(events.Manager)
	return svc, nil
}

// ProvideUserService provides the user service.
func ProvideUserService(i do.Injector) (*service.UserService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)
	return service.NewUserService(storeHandle.Store, log.Logger), nil
}

// ProvideAuthService provides the login and session service.
func ProvideAuthService(i do.Injector) (*service.AuthService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	sessions := do.MustInvoke[*SessionStoreHandle](i)
	activity := do.MustInvoke[*service.ActivityService](i)
	log := do.MustInvoke[*logger.Logger](i)
	return service.NewAuthService(storeHandle.Store, sessions.Store, activity, log.Logger), nil
}

// ProvideTagService provides the tag and author service.
func ProvideTagService(i do.Injector) (*service.TagService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)
	return service.NewTagService(storeHandle.Store, log.Logger), nil
}

// ProvideItemService provides the item service, wired to the search index when enabled.
func ProvideItemService(i do.Injector) (*service.ItemService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	tags := do.MustInvoke[*service.TagService](i)
	activity := do.MustInvoke[*service.ActivityService](i)
	searchHandle := do.MustInvoke[*SearchIndexHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	// A nil *search.ItemIndex in the interface would not compare equal to nil.
	var index service.ItemIndex
	if searchHandle.Index != nil {
		index = searchHandle.Index
	}

	return service.NewItemService(storeHandle.Store, tags, activity, index, log.Logger), nil
}
