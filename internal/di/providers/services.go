package providers

import (
	"github.com/samber/do/v2"

	"github.com/nextreadapp/nextread-client/internal/api"
	"github.com/nextreadapp/nextread-client/internal/config"
	"github.com/nextreadapp/nextread-client/internal/logger"
	"github.com/nextreadapp/nextread-client/internal/services"
	"github.com/nextreadapp/nextread-client/internal/session"
	"github.com/nextreadapp/nextread-client/internal/token"
)

// ProvideAPIClient provides the HTTP client for the NextRead backend.
func ProvideAPIClient(i do.Injector) (*api.Client, error) {
	cfg := do.MustInvoke[*config.Config](i)
	tokens := do.MustInvoke[*token.Store](i)
	log := do.MustInvoke[*logger.Logger](i)

	var opts []api.Option
	if cfg.API.Timeout > 0 {
		opts = append(opts, api.WithTimeout(cfg.API.Timeout))
	}
	return api.New(cfg.API.BaseURL, tokens, log.Logger, opts...)
}

// ProvideAuthService provides the authentication endpoints wrapper.
func ProvideAuthService(i do.Injector) (*services.AuthService, error) {
	client := do.MustInvoke[*api.Client](i)
	log := do.MustInvoke[*logger.Logger](i)
	return services.NewAuthService(client, log.Logger), nil
}

// ProvideUserService provides the profile endpoints wrapper.
func ProvideUserService(i do.Injector) (*services.UserService, error) {
	client := do.MustInvoke[*api.Client](i)
	log := do.MustInvoke[*logger.Logger](i)
	return services.NewUserService(client, log.Logger), nil
}

// ProvideSurveyService provides the survey endpoints wrapper.
func ProvideSurveyService(i do.Injector) (*services.SurveyService, error) {
	client := do.MustInvoke[*api.Client](i)
	log := do.MustInvoke[*logger.Logger](i)
	return services.NewSurveyService(client, log.Logger), nil
}

// ProvideUserBookService provides the user library endpoints wrapper.
func ProvideUserBookService(i do.Injector) (*services.UserBookService, error) {
	client := do.MustInvoke[*api.Client](i)
	log := do.MustInvoke[*logger.Logger](i)
	return services.NewUserBookService(client, log.Logger), nil
}

// ProvideCatalogService provides the recommendations and genres wrapper.
func ProvideCatalogService(i do.Injector) (*services.CatalogService, error) {
	client := do.MustInvoke[*api.Client](i)
	log := do.MustInvoke[*logger.Logger](i)
	return services.NewCatalogService(client, log.Logger), nil
}

// ProvideSessionManager provides the session manager, the single source of
// truth for authentication state.
func ProvideSessionManager(i do.Injector) (*session.Manager, error) {
	auth := do.MustInvoke[*services.AuthService](i)
	users := do.MustInvoke[*services.UserService](i)
	tokens := do.MustInvoke[*token.Store](i)
	log := do.MustInvoke[*logger.Logger](i)
	return session.NewManager(auth, users, tokens, log.Logger), nil
}
