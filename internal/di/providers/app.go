package providers

import (
	"github.com/samber/do/v2"

	"github.com/nextreadapp/nextread-client/internal/logger"
	"github.com/nextreadapp/nextread-client/internal/services"
	"github.com/nextreadapp/nextread-client/internal/session"
	"github.com/nextreadapp/nextread-client/internal/store"
	"github.com/nextreadapp/nextread-client/internal/ui"
)

// ProvideApp provides the root terminal UI model.
func ProvideApp(i do.Injector) (*ui.App, error) {
	manager := do.MustInvoke[*session.Manager](i)
	log := do.MustInvoke[*logger.Logger](i)

	deps := ui.Deps{
		Users:   do.MustInvoke[*services.UserService](i),
		Surveys: do.MustInvoke[*services.SurveyService](i),
		Books:   do.MustInvoke[*services.UserBookService](i),
		Catalog: do.MustInvoke[*services.CatalogService](i),
		Cache:   do.MustInvoke[*store.Cache](i),
		Logger:  log.Logger,
	}
	return ui.New(manager, deps), nil
}
